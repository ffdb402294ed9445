package db

import (
	"context"

	"UniShare.com/cmd/model"
	"UniShare.com/pkg/constants"
	"gorm.io/gorm"
)

func likeTargetQuery(tx *gorm.DB, userId, targetId int64, targetKind string) *gorm.DB {
	q := tx.Where("user_id = ?", userId)
	if targetKind == constants.TargetComment {
		return q.Where("comment_id = ?", targetId)
	}
	return q.Where("publication_id = ?", targetId)
}

func counterTarget(tx *gorm.DB, targetId int64, targetKind string) *gorm.DB {
	if targetKind == constants.TargetComment {
		return tx.Model(&model.Comment{}).Where("comment_id = ?", targetId)
	}
	return tx.Model(&model.Publication{}).Where("publication_id = ?", targetId)
}

// GetLike returns the user's like on a target, or nil when there is none.
func GetLike(ctx context.Context, userId, targetId int64, targetKind string) (*model.Like, error) {
	like := &model.Like{}
	err := likeTargetQuery(DB.WithContext(ctx).Model(&model.Like{}), userId, targetId, targetKind).
		First(like).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return like, nil
}

// AddLikeWithTransaction inserts the like row and increments the target's
// like counter atomically. The unique index on (user, target) makes a
// concurrent double-tap fail with gorm.ErrDuplicatedKey instead of
// double-counting.
func AddLikeWithTransaction(ctx context.Context, like *model.Like, targetId int64, targetKind string) error {
	return DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(like).Error; err != nil {
			return err
		}
		return counterTarget(tx, targetId, targetKind).
			UpdateColumn("like_count", gorm.Expr("like_count + ?", 1)).Error
	})
}

// RemoveLikeWithTransaction deletes the like row and decrements the
// counter only when a row was actually removed.
func RemoveLikeWithTransaction(ctx context.Context, userId, targetId int64, targetKind string) (bool, error) {
	removed := false
	err := DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := likeTargetQuery(tx, userId, targetId, targetKind).Delete(&model.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		removed = true
		return counterTarget(tx, targetId, targetKind).
			UpdateColumn("like_count", gorm.Expr("like_count - ?", 1)).Error
	})
	return removed, err
}

func GetCommentLikeCount(ctx context.Context, commentId int64) (int64, error) {
	var count int64
	if err := DB.WithContext(ctx).Model(&model.Comment{}).
		Where("comment_id = ?", commentId).
		Select("like_count").Find(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func GetPublicationLikeCount(ctx context.Context, publicationId int64) (int64, error) {
	var count int64
	if err := DB.WithContext(ctx).Model(&model.Publication{}).
		Where("publication_id = ?", publicationId).
		Select("like_count").Find(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
