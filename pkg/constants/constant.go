package constants

import "time"

const (
	CommentServiceName = "Comment"

	DefaultLimit = 10

	// MaxReplyLevel is the deepest level a reply may be created at.
	// Level 0 is a top-level comment, level 1 a reply, level 2 a
	// reply-to-reply. Anything deeper is rejected server side.
	MaxReplyLevel = 2

	MaxCommentLength = 500
	MinCommentLength = 1

	// CommentRateLimit is the number of comments a user may create per
	// rate window.
	CommentRateLimit       = 10
	CommentRateWindow      = time.Minute
	DuplicateCommentWindow = 5 * time.Minute

	CommentForestCacheTTL = 10 * time.Minute
	LikeCountCacheTTL     = 24 * time.Hour
)

const (
	CommentStatusActive  = "active"
	CommentStatusDeleted = "deleted"
)

const (
	TargetPublication = "publication"
	TargetComment     = "comment"
)
