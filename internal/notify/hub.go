// Package notify fans a payloadless "orders changed" signal out to every
// connected observer. Transports (SSE, WebSocket, Redis, Kafka) are
// observers registered against one Hub.
package notify

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Observer interface {
	Notify(ctx context.Context) error
}

type ObserverFunc func(ctx context.Context) error

func (f ObserverFunc) Notify(ctx context.Context) error { return f(ctx) }

// Subscription is the handle returned by Subscribe. Each one owns a
// single-slot signal buffer and a delivery goroutine, so a slow observer
// only ever delays itself.
type Subscription struct {
	id     string
	obs    Observer
	signal chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	exited chan struct{}
}

func (s *Subscription) ID() string { return s.id }

// Done is closed once the subscription stops receiving signals, either
// through Unsubscribe or because its observer failed.
func (s *Subscription) Done() <-chan struct{} { return s.ctx.Done() }

type Hub struct {
	mu      sync.Mutex
	subs    []*Subscription
	closed  bool
	log     *zap.Logger
	metrics *Metrics
}

func NewHub(log *zap.Logger, m *Metrics) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{log: log, metrics: m}
}

func (h *Hub) Subscribe(obs Observer) *Subscription {
	ctx, cancel := context.WithCancel(context.Background())
	sub := &Subscription{
		id:     uuid.NewString(),
		obs:    obs,
		signal: make(chan struct{}, 1),
		ctx:    ctx,
		cancel: cancel,
		exited: make(chan struct{}),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		cancel()
		close(sub.exited)
		return sub
	}
	h.subs = append(h.subs, sub)
	n := len(h.subs)
	h.mu.Unlock()

	h.metrics.setSubscribers(n)
	go h.deliver(sub)

	h.log.Debug("observer subscribed", zap.String("subscription_id", sub.id))
	return sub
}

// Unsubscribe is idempotent and waits until the observer will not be
// called again. It must not be called from inside Observer.Notify.
func (h *Hub) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	h.remove(sub)
	sub.cancel()
	<-sub.exited
}

// Broadcast signals every subscription in registration order without
// blocking. A signal still pending for an observer absorbs the new one.
func (h *Hub) Broadcast() {
	h.mu.Lock()
	subs := make([]*Subscription, len(h.subs))
	copy(subs, h.subs)
	h.mu.Unlock()

	h.metrics.broadcast()

	for _, sub := range subs {
		select {
		case sub.signal <- struct{}{}:
		default:
		}
	}
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	subs := h.subs
	h.subs = nil
	h.mu.Unlock()

	for _, sub := range subs {
		sub.cancel()
		<-sub.exited
	}
	h.metrics.setSubscribers(0)
}

func (h *Hub) deliver(sub *Subscription) {
	defer close(sub.exited)

	for {
		select {
		case <-sub.ctx.Done():
			return
		case <-sub.signal:
		}

		if err := sub.obs.Notify(sub.ctx); err != nil {
			if sub.ctx.Err() != nil {
				return
			}
			h.metrics.failed()
			h.log.Warn("dropping observer after failed notify",
				zap.String("subscription_id", sub.id), zap.Error(err))
			h.remove(sub)
			sub.cancel()
			return
		}
		h.metrics.delivered()
	}
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	for i, s := range h.subs {
		if s == sub {
			h.subs = append(h.subs[:i], h.subs[i+1:]...)
			break
		}
	}
	n := len(h.subs)
	h.mu.Unlock()

	h.metrics.setSubscribers(n)
}

// Tolerant keeps an observer subscribed through failed deliveries, logging
// them instead. Use it for relays to external systems that may recover.
func Tolerant(obs Observer, name string, log *zap.Logger) Observer {
	if log == nil {
		log = zap.NewNop()
	}
	return ObserverFunc(func(ctx context.Context) error {
		if err := obs.Notify(ctx); err != nil {
			log.Warn("relay notify failed", zap.String("relay", name), zap.Error(err))
		}
		return nil
	})
}
