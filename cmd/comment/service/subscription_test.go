package service

import (
	"context"
	"testing"

	"UniShare.com/cmd/model"
	"UniShare.com/pkg/errno"
	"UniShare.com/pkg/mq"
	"github.com/pkg/errors"
)

// fakeFetcher returns a canned forest and records how often it ran.
type fakeFetcher struct {
	forest []*model.CommentNode
	err    error
	calls  int
}

func (f *fakeFetcher) fetch(ctx context.Context, publicationId int64) ([]*model.CommentNode, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.forest, nil
}

func singleNodeForest(commentId int64) []*model.CommentNode {
	return []*model.CommentNode{
		{Comment: model.Comment{CommentId: commentId, PublicationId: 100}},
	}
}

func TestSubscribeDeliversInitialSnapshot(t *testing.T) {
	fetcher := &fakeFetcher{forest: singleNodeForest(1)}
	manager := NewSubscriptionManager(fetcher.fetch)

	var got []*model.CommentNode
	unsubscribe, err := manager.Subscribe("conn-1", 100, func(forest []*model.CommentNode) {
		got = forest
	}, nil)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer unsubscribe()

	if fetcher.calls != 1 {
		t.Errorf("expected 1 fetch for the initial snapshot, got %d", fetcher.calls)
	}
	if len(got) != 1 || got[0].CommentId != 1 {
		t.Errorf("unexpected initial snapshot: %+v", got)
	}
	if manager.SubscriberCount(100) != 1 {
		t.Errorf("expected 1 subscriber, got %d", manager.SubscriberCount(100))
	}
}

func TestSubscribeRejectsDuplicateKey(t *testing.T) {
	fetcher := &fakeFetcher{forest: singleNodeForest(1)}
	manager := NewSubscriptionManager(fetcher.fetch)

	unsubscribe, err := manager.Subscribe("conn-1", 100, func([]*model.CommentNode) {}, nil)
	if err != nil {
		t.Fatalf("first Subscribe failed: %v", err)
	}

	_, err = manager.Subscribe("conn-1", 100, func([]*model.CommentNode) {}, nil)
	if err == nil {
		t.Fatal("expected duplicate key to be rejected")
	}
	e := errno.ConvertErr(err)
	if e.ErrCode != errno.ParamErrCode {
		t.Errorf("expected ParamErr for duplicate key, got code %d", e.ErrCode)
	}

	// The key frees up once the first subscription tears down.
	unsubscribe()
	unsubscribe2, err := manager.Subscribe("conn-1", 100, func([]*model.CommentNode) {}, nil)
	if err != nil {
		t.Fatalf("re-Subscribe after unsubscribe failed: %v", err)
	}
	unsubscribe2()
}

func TestSubscribeValidatesArguments(t *testing.T) {
	manager := NewSubscriptionManager((&fakeFetcher{}).fetch)

	if _, err := manager.Subscribe("", 100, func([]*model.CommentNode) {}, nil); err == nil {
		t.Error("expected empty key to be rejected")
	}
	if _, err := manager.Subscribe("conn-1", 100, nil, nil); err == nil {
		t.Error("expected nil update callback to be rejected")
	}
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	fetcher := &fakeFetcher{forest: singleNodeForest(1)}
	manager := NewSubscriptionManager(fetcher.fetch)

	unsubscribe, err := manager.Subscribe("conn-1", 100, func([]*model.CommentNode) {}, nil)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	unsubscribe()
	unsubscribe()
	unsubscribe()

	if manager.SubscriberCount(100) != 0 {
		t.Errorf("expected 0 subscribers after unsubscribe, got %d", manager.SubscriberCount(100))
	}
}

func TestHandleCommentEventFansOut(t *testing.T) {
	fetcher := &fakeFetcher{forest: singleNodeForest(1)}
	manager := NewSubscriptionManager(fetcher.fetch)

	updates := make(map[string]int)
	for _, key := range []string{"conn-1", "conn-2"} {
		key := key
		unsubscribe, err := manager.Subscribe(key, 100, func([]*model.CommentNode) {
			updates[key]++
		}, nil)
		if err != nil {
			t.Fatalf("Subscribe(%s) failed: %v", key, err)
		}
		defer unsubscribe()
	}

	// A listener on another publication must not receive this event.
	otherUpdates := 0
	unsubscribe, err := manager.Subscribe("conn-3", 200, func([]*model.CommentNode) {
		otherUpdates++
	}, nil)
	if err != nil {
		t.Fatalf("Subscribe(conn-3) failed: %v", err)
	}
	defer unsubscribe()

	event := &mq.CommentEvent{Type: "create", PublicationID: 100}
	if err := manager.HandleCommentEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleCommentEvent failed: %v", err)
	}

	for _, key := range []string{"conn-1", "conn-2"} {
		// One initial snapshot plus one event-driven update.
		if updates[key] != 2 {
			t.Errorf("%s: expected 2 deliveries, got %d", key, updates[key])
		}
	}
	if otherUpdates != 1 {
		t.Errorf("conn-3: expected only the initial snapshot, got %d deliveries", otherUpdates)
	}
}

func TestHandleCommentEventWithoutListenersSkipsFetch(t *testing.T) {
	fetcher := &fakeFetcher{forest: singleNodeForest(1)}
	manager := NewSubscriptionManager(fetcher.fetch)

	event := &mq.CommentEvent{Type: "create", PublicationID: 100}
	if err := manager.HandleCommentEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleCommentEvent failed: %v", err)
	}
	if fetcher.calls != 0 {
		t.Errorf("expected no fetch with zero listeners, got %d", fetcher.calls)
	}
}

func TestFetchErrorGoesToErrorCallback(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("database unavailable")}
	manager := NewSubscriptionManager(fetcher.fetch)

	var gotErr error
	updates := 0
	unsubscribe, err := manager.Subscribe("conn-1", 100, func([]*model.CommentNode) {
		updates++
	}, func(err error) {
		gotErr = err
	})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer unsubscribe()

	if gotErr == nil {
		t.Fatal("expected initial snapshot failure on the error callback")
	}
	if updates != 0 {
		t.Errorf("expected no updates on fetch failure, got %d", updates)
	}

	// The event is still considered handled; the queue must not requeue.
	event := &mq.CommentEvent{Type: "create", PublicationID: 100}
	if err := manager.HandleCommentEvent(context.Background(), event); err != nil {
		t.Errorf("expected fetch failure to be swallowed, got %v", err)
	}
}

func TestCloseDropsAllSubscriptions(t *testing.T) {
	fetcher := &fakeFetcher{forest: singleNodeForest(1)}
	manager := NewSubscriptionManager(fetcher.fetch)

	unsubscribe, err := manager.Subscribe("conn-1", 100, func([]*model.CommentNode) {}, nil)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	manager.Close()

	if manager.SubscriberCount(100) != 0 {
		t.Errorf("expected 0 subscribers after Close, got %d", manager.SubscriberCount(100))
	}
	if _, err := manager.Subscribe("conn-2", 100, func([]*model.CommentNode) {}, nil); err == nil {
		t.Error("expected Subscribe after Close to fail")
	}

	// Unsubscribing a subscription Close already tore down stays safe.
	unsubscribe()
}
