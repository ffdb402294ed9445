package main

import (
	"context"
	"sync"

	"UniShare.com/cmd/comment/service"
	"UniShare.com/cmd/model"
	"UniShare.com/pkg/constants"
	"UniShare.com/pkg/errno"
	"UniShare.com/pkg/mq"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/google/uuid"
	"github.com/hertz-contrib/websocket"
)

type Response struct {
	Code    int64       `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// SendResponse pack response
func SendResponse(c *app.RequestContext, err error, data interface{}) {
	Err := errno.ConvertErr(err)
	c.JSON(consts.StatusOK, Response{
		Code:    Err.ErrCode,
		Message: Err.ErrMsg,
		Data:    data,
	})
}

type CreateCommentParam struct {
	PublicationId   int64   `form:"publication_id" json:"publication_id"`
	ParentCommentId *int64  `form:"parent_comment_id" json:"parent_comment_id"`
	Content         string  `form:"content" json:"content"`
	AuthorName      string  `form:"author_name" json:"author_name"`
	AuthorPhoto     *string `form:"author_photo" json:"author_photo"`
}

type ListCommentParam struct {
	PublicationId int64 `query:"publication_id" form:"publication_id"`
}

type DeleteCommentParam struct {
	CommentId int64 `form:"comment_id" json:"comment_id"`
}

type LikeParam struct {
	PublicationId int64 `form:"publication_id" json:"publication_id"`
	CommentId     int64 `form:"comment_id" json:"comment_id"`
}

type LikeCountParam struct {
	PublicationId int64 `query:"publication_id" form:"publication_id"`
	CommentId     int64 `query:"comment_id" form:"comment_id"`
}

// currentUserId pulls the acting user out of the JWT identity set by the
// auth middleware.
func currentUserId(c *app.RequestContext) (int64, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return 0, false
	}
	userId, ok := v.(int64)
	return userId, ok
}

func CreateComment(ctx context.Context, c *app.RequestContext) {
	var param CreateCommentParam
	if err := c.BindAndValidate(&param); err != nil {
		hlog.Info(err)
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}
	userId, ok := currentUserId(c)
	if !ok {
		SendResponse(c, errno.AuthorizationFailedErr, nil)
		return
	}

	comment, err := service.NewCommentService(ctx, globalProducer).CreateComment(ctx, &service.CreateCommentParams{
		PublicationId:   param.PublicationId,
		AuthorId:        userId,
		AuthorName:      param.AuthorName,
		AuthorPhoto:     param.AuthorPhoto,
		Content:         param.Content,
		ParentCommentId: param.ParentCommentId,
	})
	if err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}
	SendResponse(c, errno.Success, comment)
}

func ListComment(ctx context.Context, c *app.RequestContext) {
	var param ListCommentParam
	if err := c.BindAndValidate(&param); err != nil {
		hlog.Info(err)
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}

	forest, err := service.NewCommentService(ctx, globalProducer).ListComments(ctx, param.PublicationId)
	if err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}
	SendResponse(c, errno.Success, forest)
}

func DeleteComment(ctx context.Context, c *app.RequestContext) {
	var param DeleteCommentParam
	if err := c.BindAndValidate(&param); err != nil {
		hlog.Info(err)
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}
	userId, ok := currentUserId(c)
	if !ok {
		SendResponse(c, errno.AuthorizationFailedErr, nil)
		return
	}

	if err := service.NewCommentService(ctx, globalProducer).DeleteComment(ctx, param.CommentId, userId); err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}
	SendResponse(c, errno.Success, nil)
}

func LikeAction(ctx context.Context, c *app.RequestContext) {
	var param LikeParam
	if err := c.BindAndValidate(&param); err != nil {
		hlog.Info(err)
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}
	userId, ok := currentUserId(c)
	if !ok {
		SendResponse(c, errno.AuthorizationFailedErr, nil)
		return
	}

	targetId, targetKind, err := likeTarget(&param)
	if err != nil {
		SendResponse(c, err, nil)
		return
	}

	liked, err := service.NewLikeActionService(ctx, globalProducer).ToggleLike(ctx, userId, targetId, targetKind)
	if err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}
	SendResponse(c, errno.Success, map[string]interface{}{"liked": liked})
}

func LikeCount(ctx context.Context, c *app.RequestContext) {
	var param LikeCountParam
	if err := c.BindAndValidate(&param); err != nil {
		hlog.Info(err)
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}

	targetId, targetKind, err := likeTarget(&LikeParam{
		PublicationId: param.PublicationId,
		CommentId:     param.CommentId,
	})
	if err != nil {
		SendResponse(c, err, nil)
		return
	}

	count, err := service.NewLikeActionService(ctx, globalProducer).GetLikeCount(ctx, targetId, targetKind)
	if err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}
	SendResponse(c, errno.Success, map[string]interface{}{"like_count": count})
}

func likeTarget(param *LikeParam) (int64, string, error) {
	switch {
	case param.CommentId != 0 && param.PublicationId != 0:
		return 0, "", errno.ParamErr.WithMessage("Provide either publication_id or comment_id, not both")
	case param.CommentId != 0:
		return param.CommentId, constants.TargetComment, nil
	case param.PublicationId != 0:
		return param.PublicationId, constants.TargetPublication, nil
	default:
		return 0, "", errno.ParamErr.WithMessage("Either publication_id or comment_id must be provided")
	}
}

var upgrader = websocket.HertzUpgrader{
	CheckOrigin: func(ctx *app.RequestContext) bool {
		return true
	},
}

type liveUpdate struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// LiveComments streams the rebuilt reply forest over a WebSocket: one
// message on connect, one per comment mutation. The connection closing,
// for any reason, tears the subscription down.
func LiveComments(ctx context.Context, c *app.RequestContext) {
	var param ListCommentParam
	if err := c.BindAndValidate(&param); err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}
	if param.PublicationId == 0 {
		SendResponse(c, errno.ParamErr.WithMessage("publication_id must be provided"), nil)
		return
	}

	err := upgrader.Upgrade(c, func(conn *websocket.Conn) {
		var writeMu sync.Mutex
		send := func(update liveUpdate) {
			writeMu.Lock()
			defer writeMu.Unlock()
			if err := conn.WriteJSON(update); err != nil {
				hlog.Warnf("Failed to push live update: %v", err)
			}
		}

		key := uuid.New().String()
		unsubscribe, err := globalSubscriptions.Subscribe(key, param.PublicationId,
			func(forest []*model.CommentNode) { send(liveUpdate{Type: "snapshot", Data: forest}) },
			func(err error) { send(liveUpdate{Type: "error", Error: errno.ConvertErr(err).ErrMsg}) },
		)
		if err != nil {
			send(liveUpdate{Type: "error", Error: errno.ConvertErr(err).ErrMsg})
			return
		}
		defer unsubscribe()

		// Hold the connection open until the peer goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	if err != nil {
		hlog.Errorf("Failed to upgrade live comment stream: %v", err)
	}
}

var globalProducer *mq.Producer

func SetGlobalProducer(producer *mq.Producer) {
	globalProducer = producer
}

var globalSubscriptions *service.SubscriptionManager

func SetGlobalSubscriptions(manager *service.SubscriptionManager) {
	globalSubscriptions = manager
}
