package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

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

type CommentService struct {
	ctx      context.Context
	producer *mq.Producer
}

func NewCommentService(ctx context.Context, producer *mq.Producer) *CommentService {
	return &CommentService{ctx: ctx, producer: producer}
}

// CreateCommentParams carries everything the client may set. The author
// fields are denormalized into the comment row as a point-in-time
// snapshot. Level is never taken from the client; it is derived from the
// parent.
type CreateCommentParams struct {
	PublicationId   int64
	AuthorId        int64
	AuthorName      string
	AuthorPhoto     *string
	Content         string
	ParentCommentId *int64
}

// validateCommentContent rejects empty, oversized and trivially spammy
// content before anything touches the database.
func (service *CommentService) validateCommentContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return errno.ParamErr.WithMessage("Comment content cannot be empty")
	}

	contentLength := utf8.RuneCountInString(content)
	if contentLength < constants.MinCommentLength {
		return errno.ParamErr.WithMessage("Comment too short")
	}
	if contentLength > constants.MaxCommentLength {
		return errno.ParamErr.WithMessage("Comment too long, maximum 500 characters allowed")
	}

	if hasExcessiveRepetition(strings.ToLower(content)) {
		return errno.ParamErr.WithMessage("Comment contains excessive repetition")
	}

	return nil
}

// hasExcessiveRepetition flags more than five consecutive identical runes.
func hasExcessiveRepetition(content string) bool {
	if utf8.RuneCountInString(content) < 10 {
		return false
	}

	var prevChar rune
	var count int
	for _, char := range content {
		if char == prevChar {
			count++
			if count > 5 {
				return true
			}
		} else {
			count = 1
			prevChar = char
		}
	}
	return false
}

func (service *CommentService) checkRateLimit(userId int64) error {
	count, err := redis.GetCommentRateLimit(userId)
	if err != nil {
		hlog.Warnf("Failed to check rate limit for user %d: %v", userId, err)
		// Redis being down must not block commenting.
		return nil
	}
	if count >= constants.CommentRateLimit {
		return errno.ParamErr.WithMessage("Comment rate limit exceeded, please try again later")
	}
	return nil
}

func (service *CommentService) checkDuplicateComment(userId int64, content string) error {
	isDuplicate, err := redis.CheckDuplicateComment(userId, content)
	if err != nil {
		hlog.Warnf("Failed to check duplicate comment for user %d: %v", userId, err)
		return nil
	}
	if isDuplicate {
		return errno.ParamErr.WithMessage("Duplicate comment detected, please wait before posting similar content")
	}
	return nil
}

// resolveParent loads and validates the parent comment for a reply and
// returns the level the reply must carry. A parent must be active, belong
// to the same publication, and must not already sit at the maximum reply
// depth.
func (service *CommentService) resolveParent(ctx context.Context, params *CreateCommentParams) (int32, *model.Comment, error) {
	if params.ParentCommentId == nil {
		return 0, nil, nil
	}

	parent, err := db.GetCommentInfo(ctx, *params.ParentCommentId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil, errno.CommentNotFoundErr.WithMessage("Parent comment does not exist")
		}
		hlog.CtxErrorf(ctx, "Failed to load parent comment %d: %v", *params.ParentCommentId, err)
		return 0, nil, errno.MysqlErr
	}
	if parent.Status != constants.CommentStatusActive {
		return 0, nil, errno.CommentNotFoundErr.WithMessage("Parent comment was deleted")
	}
	if parent.PublicationId != params.PublicationId {
		return 0, nil, errno.ParamErr.WithMessage("Parent comment belongs to another publication")
	}
	if parent.Level >= constants.MaxReplyLevel {
		return 0, nil, errno.ParamErr.WithMessage("Maximum reply depth reached")
	}
	return parent.Level + 1, parent, nil
}

// CreateComment validates, persists and announces a new comment or reply.
// The insert and the publication's total_comments increment share one
// transaction.
func (service *CommentService) CreateComment(ctx context.Context, params *CreateCommentParams) (*model.Comment, error) {
	if params.PublicationId == 0 {
		return nil, errno.ParamErr.WithMessage("PublicationId must be provided")
	}
	if err := service.validateCommentContent(params.Content); err != nil {
		return nil, err
	}
	if err := service.checkRateLimit(params.AuthorId); err != nil {
		return nil, err
	}
	if err := service.checkDuplicateComment(params.AuthorId, params.Content); err != nil {
		return nil, err
	}

	if _, err := db.GetPublicationInfo(ctx, params.PublicationId); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errno.PublicationNotFoundErr
		}
		hlog.CtxErrorf(ctx, "Failed to load publication %d: %v", params.PublicationId, err)
		return nil, errno.MysqlErr
	}

	level, parent, err := service.resolveParent(ctx, params)
	if err != nil {
		return nil, err
	}

	comment := &model.Comment{
		CommentId:       utils.GenerateCommentID(),
		PublicationId:   params.PublicationId,
		AuthorId:        params.AuthorId,
		AuthorName:      params.AuthorName,
		AuthorPhoto:     params.AuthorPhoto,
		Content:         strings.TrimSpace(params.Content),
		Status:          constants.CommentStatusActive,
		ParentCommentId: params.ParentCommentId,
		Level:           level,
		CreatedAt:       time.Now(),
	}

	if err := db.CreateCommentWithTransaction(ctx, comment); err != nil {
		hlog.CtxErrorf(ctx, "Failed to create comment: %v", errors.Cause(err))
		return nil, errno.WriteErr
	}

	if err := redis.InvalidateCommentForest(params.PublicationId); err != nil {
		hlog.Warnf("Failed to invalidate comment forest for publication %d: %v", params.PublicationId, err)
	}

	service.publishCommentEvent(ctx, "create", comment)
	if parent != nil && parent.AuthorId != comment.AuthorId {
		service.publishReplyNotification(ctx, comment, parent)
	}

	// Window bookkeeping is best effort and off the request path.
	go func() {
		if err := redis.IncrementCommentRateLimit(params.AuthorId, constants.CommentRateWindow); err != nil {
			hlog.Warnf("Failed to update rate limit for user %d: %v", params.AuthorId, err)
		}
		if err := redis.StoreCommentHash(params.AuthorId, params.Content, constants.DuplicateCommentWindow); err != nil {
			hlog.Warnf("Failed to store comment hash for user %d: %v", params.AuthorId, err)
		}
	}()

	return comment, nil
}

// ListComments returns the publication's reply forest, cache first.
func (service *CommentService) ListComments(ctx context.Context, publicationId int64) ([]*model.CommentNode, error) {
	if publicationId == 0 {
		return nil, errno.ParamErr.WithMessage("PublicationId must be provided")
	}

	if forest, ok := redis.GetCommentForest(publicationId); ok {
		return forest, nil
	}

	flat, err := db.ListActiveComments(ctx, publicationId)
	if err != nil {
		hlog.CtxErrorf(ctx, "Failed to list comments for publication %d: %v", publicationId, err)
		return nil, errno.RetrievalErr
	}

	forest := BuildCommentForest(flat, nil)

	if err := redis.SetCommentForest(publicationId, forest); err != nil {
		hlog.Warnf("Failed to cache comment forest for publication %d: %v", publicationId, err)
	}

	return forest, nil
}

// DeleteComment soft-deletes the caller's own comment. Replies to a
// deleted comment stay visible and keep referencing it by id; only the
// status flips. Re-deleting is a no-op.
func (service *CommentService) DeleteComment(ctx context.Context, commentId, fromUserId int64) error {
	commentInfo, err := db.GetCommentInfo(ctx, commentId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errno.CommentNotFoundErr
		}
		hlog.CtxErrorf(ctx, "Failed to load comment %d: %v", commentId, err)
		return errno.MysqlErr
	}
	if commentInfo.AuthorId != fromUserId {
		return errno.AuthorizationFailedErr.WithMessage("Only the author may delete a comment")
	}

	deleted, err := db.SoftDeleteComment(ctx, commentId, commentInfo.PublicationId)
	if err != nil {
		hlog.CtxErrorf(ctx, "Failed to delete comment %d: %v", commentId, err)
		return errno.WriteErr
	}
	if !deleted {
		// Already deleted; nothing changed, nothing to announce.
		return nil
	}

	if err := redis.InvalidateCommentForest(commentInfo.PublicationId); err != nil {
		hlog.Warnf("Failed to invalidate comment forest for publication %d: %v", commentInfo.PublicationId, err)
	}

	commentInfo.Status = constants.CommentStatusDeleted
	service.publishCommentEvent(ctx, "delete", commentInfo)
	return nil
}

func (service *CommentService) publishCommentEvent(ctx context.Context, eventType string, comment *model.Comment) {
	if service.producer == nil {
		return
	}
	event := &mq.CommentEvent{
		Type:          eventType,
		Comment:       comment,
		UserID:        comment.AuthorId,
		PublicationID: comment.PublicationId,
		Timestamp:     time.Now().Unix(),
		EventID:       uuid.New().String(),
	}
	if err := service.producer.PublishCommentEvent(ctx, event); err != nil {
		hlog.CtxErrorf(ctx, "Failed to publish comment event: %v", err)
	}
}

func (service *CommentService) publishReplyNotification(ctx context.Context, reply *model.Comment, parent *model.Comment) {
	if service.producer == nil {
		return
	}
	event := &mq.NotificationEvent{
		ReceiverID:    parent.AuthorId,
		SenderID:      reply.AuthorId,
		Type:          "reply",
		CommentID:     reply.CommentId,
		PublicationID: reply.PublicationId,
		Content:       reply.Content,
		Timestamp:     time.Now().Unix(),
		EventID:       uuid.New().String(),
	}
	if err := service.producer.PublishNotificationEvent(ctx, event); err != nil {
		hlog.CtxErrorf(ctx, "Failed to publish reply notification: %v", err)
	}
}
