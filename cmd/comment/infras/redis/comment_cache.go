package redis

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"UniShare.com/cmd/model"
	"UniShare.com/pkg/constants"
	"UniShare.com/pkg/utils"
	"github.com/go-redis/redis"
)

// Redis key templates for the comment system
const (
	// 逐条发布物的回复树缓存 Key：comment:forest:{publication_id}
	CommentForestKeyTemplate = "comment:forest:%d"

	// 评论频率限制 Key：comment_rate_limit:{user_id}
	CommentRateLimitKeyTemplate = "comment_rate_limit:%d"

	// 评论内容哈希 Key：comment_hash:{user_id}:{hash}
	CommentHashKeyTemplate = "comment_hash:%d:%s"
)

// GetCommentForest returns the cached reply forest for a publication, or
// (nil, false) on a miss. Cache errors degrade to a miss, the DB is the
// source of truth.
func GetCommentForest(publicationId int64) ([]*model.CommentNode, bool) {
	key := fmt.Sprintf(CommentForestKeyTemplate, publicationId)
	raw, err := RedisDBComment.Get(key).Result()
	if err != nil {
		return nil, false
	}
	forest := make([]*model.CommentNode, 0)
	if err := json.Unmarshal([]byte(raw), &forest); err != nil {
		return nil, false
	}
	return forest, true
}

func SetCommentForest(publicationId int64, forest []*model.CommentNode) error {
	body, err := json.Marshal(forest)
	if err != nil {
		return fmt.Errorf("failed to marshal comment forest: %w", err)
	}
	key := fmt.Sprintf(CommentForestKeyTemplate, publicationId)
	if err := RedisDBComment.Set(key, body, constants.CommentForestCacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache comment forest: %w", err)
	}
	return nil
}

// InvalidateCommentForest drops the cached forest after any mutation.
func InvalidateCommentForest(publicationId int64) error {
	key := fmt.Sprintf(CommentForestKeyTemplate, publicationId)
	if err := RedisDBComment.Del(key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate comment forest: %w", err)
	}
	return nil
}

// GetCommentRateLimit returns the user's comment count in the current
// rate window.
func GetCommentRateLimit(userId int64) (int64, error) {
	key := fmt.Sprintf(CommentRateLimitKeyTemplate, userId)
	countStr, err := RedisDBComment.Get(key).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get comment rate limit: %w", err)
	}

	count, err := strconv.ParseInt(countStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse comment rate limit: %w", err)
	}
	return count, nil
}

// IncrementCommentRateLimit bumps the window counter; the INCR and EXPIRE
// run in one pipeline so the key cannot stick around without a TTL.
func IncrementCommentRateLimit(userId int64, window time.Duration) error {
	key := fmt.Sprintf(CommentRateLimitKeyTemplate, userId)
	pipe := RedisDBComment.TxPipeline()
	pipe.Incr(key)
	pipe.Expire(key, window)
	if _, err := pipe.Exec(); err != nil {
		return fmt.Errorf("failed to increment comment rate limit: %w", err)
	}
	return nil
}

// CheckDuplicateComment reports whether the user posted identical content
// inside the dedup window.
func CheckDuplicateComment(userId int64, content string) (bool, error) {
	key := fmt.Sprintf(CommentHashKeyTemplate, userId, utils.MD5(content))
	exists, err := RedisDBComment.Exists(key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check duplicate comment: %w", err)
	}
	return exists > 0, nil
}

func StoreCommentHash(userId int64, content string, window time.Duration) error {
	key := fmt.Sprintf(CommentHashKeyTemplate, userId, utils.MD5(content))
	if err := RedisDBComment.Set(key, "1", window).Err(); err != nil {
		return fmt.Errorf("failed to store comment hash: %w", err)
	}
	return nil
}
