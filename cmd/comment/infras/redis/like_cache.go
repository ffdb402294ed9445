package redis

import (
	"fmt"
	"strconv"
	"time"

	"UniShare.com/pkg/constants"
	"github.com/go-redis/redis"
)

const (
	// 点赞数缓存 Key：like:count:{target_kind}:{target_id}
	LikeCountKeyTemplate = "like:count:%s:%d"
)

// LikeCacheManager keeps denormalized like counters warm in Redis. The
// database row stays authoritative; the cache is refreshed from like
// events off the queue.
type LikeCacheManager struct {
	client     redis.Cmdable
	defaultTTL time.Duration
}

func NewLikeCacheManager(client redis.Cmdable) *LikeCacheManager {
	return &LikeCacheManager{
		client:     client,
		defaultTTL: constants.LikeCountCacheTTL,
	}
}

func likeCountKey(targetKind string, targetId int64) string {
	return fmt.Sprintf(LikeCountKeyTemplate, targetKind, targetId)
}

// GetLikeCount returns the cached count; (0, false) means a miss, not a
// zero count.
func (lcm *LikeCacheManager) GetLikeCount(targetKind string, targetId int64) (int64, bool) {
	raw, err := lcm.client.Get(likeCountKey(targetKind, targetId)).Result()
	if err != nil {
		return 0, false
	}
	count, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return count, true
}

func (lcm *LikeCacheManager) SetLikeCount(targetKind string, targetId, count int64) error {
	err := lcm.client.Set(likeCountKey(targetKind, targetId), count, lcm.defaultTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to set like count: %w", err)
	}
	return nil
}

// AdjustLikeCount applies a +1/-1 delta if the counter is cached; a miss
// is left as a miss so the next read repopulates from the database.
func (lcm *LikeCacheManager) AdjustLikeCount(targetKind string, targetId, delta int64) error {
	key := likeCountKey(targetKind, targetId)
	exists, err := lcm.client.Exists(key).Result()
	if err != nil {
		return fmt.Errorf("failed to probe like count: %w", err)
	}
	if exists == 0 {
		return nil
	}
	if err := lcm.client.IncrBy(key, delta).Err(); err != nil {
		return fmt.Errorf("failed to adjust like count: %w", err)
	}
	return nil
}

func (lcm *LikeCacheManager) InvalidateLikeCount(targetKind string, targetId int64) error {
	if err := lcm.client.Del(likeCountKey(targetKind, targetId)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate like count: %w", err)
	}
	return nil
}
