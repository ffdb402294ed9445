package mq

import "UniShare.com/cmd/model"

// CommentEvent is published on every comment mutation. The live
// subscription side rebuilds the reply forest of the affected
// publication for each one of these.
type CommentEvent struct {
	Type          string         `json:"type"` // create, delete
	Comment       *model.Comment `json:"comment"`
	UserID        int64          `json:"user_id"`
	PublicationID int64          `json:"publication_id"`
	Timestamp     int64          `json:"timestamp"`
	EventID       string         `json:"event_id"`
}

// LikeEvent is published on every like toggle, for cache sync.
type LikeEvent struct {
	UserID        int64  `json:"user_id"`
	PublicationID int64  `json:"publication_id"`
	CommentID     int64  `json:"comment_id"`
	ActionType    string `json:"action_type"` // "like" or "unlike"
	TargetKind    string `json:"target_kind"` // "publication" or "comment"
	Timestamp     int64  `json:"timestamp"`
	EventID       string `json:"event_id"`
}

// NotificationEvent tells the notification side a reply landed. Delivery
// to devices is somebody else's job; this service only emits the event.
type NotificationEvent struct {
	ReceiverID    int64  `json:"receiver_id"`
	SenderID      int64  `json:"sender_id"`
	Type          string `json:"type"` // comment, reply
	CommentID     int64  `json:"comment_id"`
	PublicationID int64  `json:"publication_id"`
	Content       string `json:"content"`
	Timestamp     int64  `json:"timestamp"`
	EventID       string `json:"event_id"`
}

const (
	CommentEventExchange      = "comment_events"
	LikeEventExchange         = "like_events"
	NotificationEventExchange = "notification_events"

	CommentEventQueue      = "comment_event_queue"
	LikeEventQueue         = "like_event_queue"
	NotificationEventQueue = "notification_event_queue"
)
