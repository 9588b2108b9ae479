package db

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// ChangeChannel is the NOTIFY channel written by the row triggers in schema.sql.
const ChangeChannel = "partybus_changes"

// Change is one row-level change notification.
type Change struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
	Op         string `json:"op"`
}

const subscriberBuffer = 64

type subscriber struct {
	ch          chan Change
	collections []string
}

// Hub fans change notifications out to subscribers.
// Slow subscribers lose notifications rather than block the feed.
type Hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]*subscriber
	log    *logrus.Logger
}

func NewHub(log *logrus.Logger) *Hub {
	return &Hub{subs: make(map[int]*subscriber), log: log}
}

// Subscribe returns a channel of changes for the given collections (all when none are given)
// and a function that unsubscribes and closes the channel. The function is safe to call twice.
func (h *Hub) Subscribe(collections ...string) (<-chan Change, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	sub := &subscriber{ch: make(chan Change, subscriberBuffer), collections: collections}
	h.subs[id] = sub

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs, id)
			close(sub.ch)
		})
	}
}

// Publish delivers c to every interested subscriber without blocking.
func (h *Hub) Publish(c Change) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, sub := range h.subs {
		if len(sub.collections) > 0 && !slices.Contains(sub.collections, c.Collection) {
			continue
		}
		select {
		case sub.ch <- c:
		default:
			h.log.WithField("collection", c.Collection).Warn("change feed subscriber is full, dropping notification")
		}
	}
}

// Subscribers returns the number of active subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Listener pumps PostgreSQL notifications into a Hub.
type Listener struct {
	pool       *pgxpool.Pool
	hub        *Hub
	log        *logrus.Logger
	retryDelay time.Duration
}

func NewListener(pool *pgxpool.Pool, hub *Hub, log *logrus.Logger) *Listener {
	return &Listener{pool: pool, hub: hub, log: log, retryDelay: 2 * time.Second}
}

// Run listens until ctx is cancelled, reconnecting after connection errors.
func (l *Listener) Run(ctx context.Context) {
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return
		}
		l.log.WithError(err).Warn("change feed listener disconnected, retrying")

		select {
		case <-ctx.Done():
			return
		case <-time.After(l.retryDelay):
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+ChangeChannel); err != nil {
		return err
	}
	l.log.Info("change feed listening")

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		var c Change
		if err := json.Unmarshal([]byte(n.Payload), &c); err != nil {
			l.log.WithError(err).WithField("payload", n.Payload).Warn("ignoring malformed change notification")
			continue
		}
		l.hub.Publish(c)
	}
}
