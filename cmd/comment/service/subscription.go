package service

import (
	"context"
	"sync"

	"UniShare.com/cmd/model"
	"UniShare.com/pkg/errno"
	"UniShare.com/pkg/mq"
	"github.com/cloudwego/hertz/pkg/common/hlog"
)

// ForestFetcher loads the current reply forest of a publication. The
// manager re-runs it on every comment event.
type ForestFetcher func(ctx context.Context, publicationId int64) ([]*model.CommentNode, error)

type subscriber struct {
	key           string
	publicationId int64
	onUpdate      func([]*model.CommentNode)
	onError       func(error)
	closed        bool
}

// SubscriptionManager fans rebuilt reply forests out to live listeners.
// One subscription per subscriber key: a second concurrent Subscribe with
// the same key is rejected instead of silently stacking listeners, which
// is the leak the old client code invited.
//
// Updates are delivered synchronously inside the comment event handler;
// a fetch failure is delivered on the subscriber's error callback and is
// not retried; re-subscribing is the recovery path.
type SubscriptionManager struct {
	mu     sync.RWMutex
	fetch  ForestFetcher
	subs   map[string]*subscriber
	byPub  map[int64]map[string]*subscriber
	closed bool
}

func NewSubscriptionManager(fetch ForestFetcher) *SubscriptionManager {
	return &SubscriptionManager{
		fetch: fetch,
		subs:  make(map[string]*subscriber),
		byPub: make(map[int64]map[string]*subscriber),
	}
}

// Subscribe registers a listener and synchronously delivers the initial
// snapshot. The returned function tears the subscription down and is
// safe to call any number of times.
func (m *SubscriptionManager) Subscribe(key string, publicationId int64,
	onUpdate func([]*model.CommentNode), onError func(error)) (func(), error) {

	if key == "" || onUpdate == nil {
		return nil, errno.ParamErr.WithMessage("subscriber key and update callback are required")
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, errno.ServiceErr.WithMessage("subscription manager is closed")
	}
	if _, exists := m.subs[key]; exists {
		m.mu.Unlock()
		return nil, errno.ParamErr.WithMessage("subscriber key already has an active subscription")
	}

	sub := &subscriber{
		key:           key,
		publicationId: publicationId,
		onUpdate:      onUpdate,
		onError:       onError,
	}
	m.subs[key] = sub
	if m.byPub[publicationId] == nil {
		m.byPub[publicationId] = make(map[string]*subscriber)
	}
	m.byPub[publicationId][key] = sub
	m.mu.Unlock()

	// Initial snapshot, mirroring a live query's first delivery.
	m.deliver(context.Background(), publicationId, []*subscriber{sub})

	unsubscribe := func() { m.remove(key) }
	return unsubscribe, nil
}

func (m *SubscriptionManager) remove(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.subs[key]
	if !ok {
		return
	}
	sub.closed = true
	delete(m.subs, key)
	if peers, ok := m.byPub[sub.publicationId]; ok {
		delete(peers, key)
		if len(peers) == 0 {
			delete(m.byPub, sub.publicationId)
		}
	}
}

// SubscriberCount reports the number of live listeners for a publication.
func (m *SubscriptionManager) SubscriberCount(publicationId int64) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byPub[publicationId])
}

// HandleCommentEvent implements mq.CommentEventHandler: every comment
// mutation triggers one fetch and a synchronous fan-out to the
// publication's listeners.
func (m *SubscriptionManager) HandleCommentEvent(ctx context.Context, event *mq.CommentEvent) error {
	m.mu.RLock()
	peers := make([]*subscriber, 0, len(m.byPub[event.PublicationID]))
	for _, sub := range m.byPub[event.PublicationID] {
		peers = append(peers, sub)
	}
	m.mu.RUnlock()

	if len(peers) == 0 {
		return nil
	}
	m.deliver(ctx, event.PublicationID, peers)
	return nil
}

func (m *SubscriptionManager) deliver(ctx context.Context, publicationId int64, peers []*subscriber) {
	forest, err := m.fetch(ctx, publicationId)
	if err != nil {
		hlog.CtxErrorf(ctx, "Failed to fetch forest for publication %d: %v", publicationId, err)
		for _, sub := range peers {
			if sub.onError != nil {
				sub.onError(err)
			}
		}
		return
	}
	for _, sub := range peers {
		m.mu.RLock()
		closed := sub.closed
		m.mu.RUnlock()
		if closed {
			continue
		}
		sub.onUpdate(forest)
	}
}

// Start attaches the manager to the comment event queue.
func (m *SubscriptionManager) Start(ctx context.Context, consumer *mq.Consumer) error {
	return consumer.ConsumeCommentEvents(ctx, m)
}

// Close drops every subscription; subsequent Subscribe calls fail.
func (m *SubscriptionManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	for _, sub := range m.subs {
		sub.closed = true
	}
	m.subs = make(map[string]*subscriber)
	m.byPub = make(map[int64]map[string]*subscriber)
}
