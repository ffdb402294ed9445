package service

import (
	"context"
	"time"

	"UniShare.com/cmd/comment/dal/db"
	"UniShare.com/cmd/comment/infras/redis"
	"UniShare.com/cmd/model"
	"UniShare.com/pkg/constants"
	"UniShare.com/pkg/errno"
	"UniShare.com/pkg/mq"
	"UniShare.com/pkg/utils"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type LikeActionService struct {
	ctx          context.Context
	cacheManager *redis.LikeCacheManager
	producer     *mq.Producer
}

func NewLikeActionService(ctx context.Context, producer *mq.Producer) *LikeActionService {
	return &LikeActionService{
		ctx:          ctx,
		cacheManager: redis.NewLikeCacheManager(redis.RedisDBLike),
		producer:     producer,
	}
}

// ToggleLike flips the like state for (userId, target) and returns the
// resulting state: true when the call created a like, false when it
// removed one. The like row and the denormalized counter move in one
// transaction; the unique index absorbs concurrent double-taps.
func (service *LikeActionService) ToggleLike(ctx context.Context, userId, targetId int64, targetKind string) (bool, error) {
	if targetKind != constants.TargetPublication && targetKind != constants.TargetComment {
		return false, errno.ParamErr.WithMessage("target kind must be publication or comment")
	}
	if err := service.checkTargetExists(ctx, targetId, targetKind); err != nil {
		return false, err
	}

	existing, err := db.GetLike(ctx, userId, targetId, targetKind)
	if err != nil {
		hlog.CtxErrorf(ctx, "Failed to check like status: %v", err)
		return false, errno.MysqlErr
	}

	if existing == nil {
		like := &model.Like{
			LikeId:    utils.GenerateLikeID(),
			UserId:    userId,
			CreatedAt: time.Now(),
		}
		if targetKind == constants.TargetComment {
			like.CommentId = &targetId
		} else {
			like.PublicationId = &targetId
		}

		if err := db.AddLikeWithTransaction(ctx, like, targetId, targetKind); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// Lost a race against an identical tap; the winner
				// already incremented the counter.
				return true, nil
			}
			hlog.CtxErrorf(ctx, "Failed to add like: %v", err)
			return false, errno.WriteErr
		}
		service.afterToggle(ctx, userId, targetId, targetKind, "like", +1)
		return true, nil
	}

	removed, err := db.RemoveLikeWithTransaction(ctx, userId, targetId, targetKind)
	if err != nil {
		hlog.CtxErrorf(ctx, "Failed to remove like: %v", err)
		return false, errno.WriteErr
	}
	if removed {
		service.afterToggle(ctx, userId, targetId, targetKind, "unlike", -1)
	}
	return false, nil
}

func (service *LikeActionService) checkTargetExists(ctx context.Context, targetId int64, targetKind string) error {
	if targetKind == constants.TargetComment {
		exists, err := db.CheckCommentExists(ctx, targetId)
		if err != nil {
			hlog.CtxErrorf(ctx, "Failed to check comment %d: %v", targetId, err)
			return errno.MysqlErr
		}
		if !exists {
			return errno.CommentNotFoundErr
		}
		return nil
	}
	if _, err := db.GetPublicationInfo(ctx, targetId); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errno.PublicationNotFoundErr
		}
		hlog.CtxErrorf(ctx, "Failed to check publication %d: %v", targetId, err)
		return errno.MysqlErr
	}
	return nil
}

func (service *LikeActionService) afterToggle(ctx context.Context, userId, targetId int64, targetKind, actionType string, delta int64) {
	if err := service.cacheManager.AdjustLikeCount(targetKind, targetId, delta); err != nil {
		hlog.Warnf("Failed to adjust cached like count for %s %d: %v", targetKind, targetId, err)
	}

	if service.producer == nil {
		return
	}
	event := &mq.LikeEvent{
		UserID:     userId,
		ActionType: actionType,
		TargetKind: targetKind,
		Timestamp:  time.Now().Unix(),
		EventID:    uuid.New().String(),
	}
	if targetKind == constants.TargetComment {
		event.CommentID = targetId
	} else {
		event.PublicationID = targetId
	}
	if err := service.producer.PublishLikeEvent(ctx, event); err != nil {
		hlog.CtxErrorf(ctx, "Failed to publish like event: %v", err)
	}
}

// GetLikeCount reads through the cache to the authoritative counter row.
func (service *LikeActionService) GetLikeCount(ctx context.Context, targetId int64, targetKind string) (int64, error) {
	if count, ok := service.cacheManager.GetLikeCount(targetKind, targetId); ok {
		return count, nil
	}

	var count int64
	var err error
	if targetKind == constants.TargetComment {
		count, err = db.GetCommentLikeCount(ctx, targetId)
	} else {
		count, err = db.GetPublicationLikeCount(ctx, targetId)
	}
	if err != nil {
		hlog.CtxErrorf(ctx, "Failed to read like count for %s %d: %v", targetKind, targetId, err)
		return 0, errno.RetrievalErr
	}

	if err := service.cacheManager.SetLikeCount(targetKind, targetId, count); err != nil {
		hlog.Warnf("Failed to cache like count for %s %d: %v", targetKind, targetId, err)
	}
	return count, nil
}

// LikeCacheSyncer refreshes cached like counters from the database as
// like events drain off the queue. It backs the read side after
// toggles coming from other instances.
type LikeCacheSyncer struct {
	cacheManager *redis.LikeCacheManager
}

func NewLikeCacheSyncer() *LikeCacheSyncer {
	return &LikeCacheSyncer{cacheManager: redis.NewLikeCacheManager(redis.RedisDBLike)}
}

func (s *LikeCacheSyncer) HandleLikeEvent(ctx context.Context, event *mq.LikeEvent) error {
	var targetId int64
	var count int64
	var err error

	switch event.TargetKind {
	case constants.TargetComment:
		targetId = event.CommentID
		count, err = db.GetCommentLikeCount(ctx, targetId)
	case constants.TargetPublication:
		targetId = event.PublicationID
		count, err = db.GetPublicationLikeCount(ctx, targetId)
	default:
		hlog.Warnf("Ignoring like event with unknown target kind %q", event.TargetKind)
		return nil
	}
	if err != nil {
		return errors.WithMessage(err, "failed to read like count for cache sync")
	}

	return s.cacheManager.SetLikeCount(event.TargetKind, targetId, count)
}
