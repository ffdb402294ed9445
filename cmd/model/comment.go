package model

import "time"

// Comment is the flat storage record. Author fields are a denormalized
// snapshot taken at creation time and are never re-synced when the
// author's profile changes afterwards.
type Comment struct {
	CommentId       int64     `gorm:"primaryKey;column:comment_id" json:"comment_id"`
	PublicationId   int64     `gorm:"not null;index:idx_pub_status;column:publication_id" json:"publication_id"`
	AuthorId        int64     `gorm:"not null;index;column:author_id" json:"author_id"`
	AuthorName      string    `gorm:"size:128;not null" json:"author_name"`
	AuthorPhoto     *string   `gorm:"size:512" json:"author_photo"`
	Content         string    `gorm:"type:text;not null" json:"content"`
	Status          string    `gorm:"size:16;not null;default:active;index:idx_pub_status" json:"status"`
	LikeCount       int64     `gorm:"not null;default:0" json:"like_count"`
	ParentCommentId *int64    `gorm:"index;column:parent_comment_id" json:"parent_comment_id"`
	Level           int32     `gorm:"not null;default:0" json:"level"`
	CreatedAt       time.Time `json:"created_at"`
}

// CommentNode is a Comment plus its direct replies, produced by the tree
// builder. It only ever exists in memory and in serialized cache entries.
type CommentNode struct {
	Comment
	Replies []*CommentNode `json:"replies"`
}

// Like records that a user liked exactly one of a publication or a
// comment. Uniqueness per (user, target) is enforced by the composite
// indexes, not by a query-before-insert.
type Like struct {
	LikeId        int64     `gorm:"primaryKey;column:like_id" json:"like_id"`
	UserId        int64     `gorm:"not null;uniqueIndex:idx_user_pub;uniqueIndex:idx_user_comment;column:user_id" json:"user_id"`
	PublicationId *int64    `gorm:"uniqueIndex:idx_user_pub;column:publication_id" json:"publication_id"`
	CommentId     *int64    `gorm:"uniqueIndex:idx_user_comment;column:comment_id" json:"comment_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// Publication carries the denormalized counters the comment and like
// mutations keep in sync. The rest of the publication lives with the
// publishing side and is out of this service's hands.
type Publication struct {
	PublicationId int64     `gorm:"primaryKey;column:publication_id" json:"publication_id"`
	AuthorId      int64     `gorm:"not null;index;column:author_id" json:"author_id"`
	Title         string    `gorm:"size:256" json:"title"`
	TotalComments int64     `gorm:"not null;default:0" json:"total_comments"`
	LikeCount     int64     `gorm:"not null;default:0" json:"like_count"`
	CreatedAt     time.Time `json:"created_at"`
}
