package db

import (
	"context"

	"UniShare.com/cmd/model"
)

func CreatePublication(ctx context.Context, publication *model.Publication) error {
	return DB.WithContext(ctx).Create(publication).Error
}

func GetPublicationInfo(ctx context.Context, publicationId int64) (*model.Publication, error) {
	publication := &model.Publication{}
	if err := DB.WithContext(ctx).Model(&model.Publication{}).
		Where("publication_id = ?", publicationId).First(publication).Error; err != nil {
		return nil, err
	}
	return publication, nil
}

func GetPublicationCommentCount(ctx context.Context, publicationId int64) (int64, error) {
	var count int64
	if err := DB.WithContext(ctx).Model(&model.Publication{}).
		Where("publication_id = ?", publicationId).
		Select("total_comments").Find(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
