package db

import (
	"context"

	"UniShare.com/cmd/model"
	"UniShare.com/pkg/constants"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// CreateCommentWithTransaction inserts the comment and bumps the
// publication's total_comments in one transaction, so a failure on either
// side leaves both untouched. The old two-sequential-writes version could
// leave a visible comment with a stale counter.
func CreateCommentWithTransaction(ctx context.Context, comment *model.Comment) error {
	return DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		res := tx.Model(&model.Publication{}).
			Where("publication_id = ?", comment.PublicationId).
			UpdateColumn("total_comments", gorm.Expr("total_comments + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.New("publication not found")
		}
		return nil
	})
}

// SoftDeleteComment flips an active comment to deleted and decrements the
// publication counter. Deleting an already-deleted or missing comment is a
// no-op, so the counter never drops below the number of active comments.
// Returns whether a row actually flipped.
func SoftDeleteComment(ctx context.Context, commentId, publicationId int64) (bool, error) {
	deleted := false
	err := DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Comment{}).
			Where("comment_id = ? AND publication_id = ? AND status = ?",
				commentId, publicationId, constants.CommentStatusActive).
			UpdateColumn("status", constants.CommentStatusDeleted)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		deleted = true
		return tx.Model(&model.Publication{}).
			Where("publication_id = ?", publicationId).
			UpdateColumn("total_comments", gorm.Expr("total_comments - ?", 1)).Error
	})
	return deleted, err
}

// ListActiveComments returns the flat comment list for a publication,
// oldest first. The tree builder relies on this ordering.
func ListActiveComments(ctx context.Context, publicationId int64) ([]*model.Comment, error) {
	list := make([]*model.Comment, 0)
	if err := DB.WithContext(ctx).Model(&model.Comment{}).
		Where("publication_id = ? AND status = ?", publicationId, constants.CommentStatusActive).
		Order("created_at ASC, comment_id ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func GetCommentInfo(ctx context.Context, commentId int64) (*model.Comment, error) {
	comment := &model.Comment{}
	if err := DB.WithContext(ctx).Model(&model.Comment{}).
		Where("comment_id = ?", commentId).First(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

func CheckCommentExists(ctx context.Context, commentId int64) (bool, error) {
	var count int64
	if err := DB.WithContext(ctx).Model(&model.Comment{}).
		Where("comment_id = ? AND status = ?", commentId, constants.CommentStatusActive).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count != 0, nil
}

// GetChildCommentCount counts active direct replies.
func GetChildCommentCount(ctx context.Context, commentId int64) (int64, error) {
	var count int64
	if err := DB.WithContext(ctx).Model(&model.Comment{}).
		Where("parent_comment_id = ? AND status = ?", commentId, constants.CommentStatusActive).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GetActiveCommentCount counts active comments on a publication, used to
// cross-check the denormalized total_comments counter.
func GetActiveCommentCount(ctx context.Context, publicationId int64) (int64, error) {
	var count int64
	if err := DB.WithContext(ctx).Model(&model.Comment{}).
		Where("publication_id = ? AND status = ?", publicationId, constants.CommentStatusActive).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
