package storage

import (
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/adred-codev/adwatch/internal/metrics"
	"github.com/adred-codev/adwatch/internal/models"
	"github.com/rs/zerolog"
)

// SubscriptionStore is the in-memory catalog of subscriptions, backed by
// Persistence for durability. All mutating operations persist the full
// collection inside the same critical section that mutates it.
type SubscriptionStore struct {
	mu            sync.Mutex
	subscriptions map[uint64]models.Subscription
	persistence   Persistence
	nextId        uint64
	logger        zerolog.Logger
	metrics       *metrics.Metrics
}

// NewSubscriptionStore loads all subscriptions from persistence and seeds
// the id allocator at max(existing ids)+1, or 1 when empty.
func NewSubscriptionStore(persistence Persistence, logger zerolog.Logger, m *metrics.Metrics) (*SubscriptionStore, error) {
	loaded, err := persistence.LoadSubscriptions()
	if err != nil {
		return nil, err
	}

	subs := make(map[uint64]models.Subscription, len(loaded))
	nextId := uint64(1)
	for _, sub := range loaded {
		subs[sub.Id] = sub
		if sub.Id >= nextId {
			nextId = sub.Id + 1
		}
	}

	return &SubscriptionStore{
		subscriptions: subs,
		persistence:   persistence,
		nextId:        nextId,
		logger:        logger,
		metrics:       m,
	}, nil
}

// deriveName implements the name-derivation rule: prefer a non-empty
// "stext" query parameter, else the second-to-last path segment, else nil.
func deriveName(rawUrl string) *string {
	parsed, err := url.Parse(rawUrl)
	if err != nil {
		return nil
	}

	if stext := parsed.Query().Get("stext"); stext != "" {
		return &stext
	}

	trimmed := strings.TrimPrefix(parsed.Path, "/")
	parts := strings.Split(trimmed, "/")
	if len(parts) >= 2 {
		name := parts[len(parts)-2]
		return &name
	}
	return nil
}

// Add inserts a new subscription created from url with channel as its sole
// channel, persists the full collection, and returns the assigned id. A
// persistence failure is logged but does not undo the in-memory insert
// (save errors are a data-at-risk event, not a failed operation).
func (s *SubscriptionStore) Add(rawUrl string, channel models.ChannelId, owner models.OwnerId) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextId
	sub := models.Subscription{
		Id:        id,
		Name:      deriveName(rawUrl),
		Channels:  []models.ChannelId{channel},
		Owner:     owner,
		Url:       rawUrl,
		Config:    models.DefaultSubscriptionConfig(),
		CreatedAt: time.Now(),
	}

	s.subscriptions[id] = sub
	s.nextId++

	s.persist()
	return id
}

// Remove drops id if present, persists, and reports whether it removed anything.
func (s *SubscriptionStore) Remove(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, existed := s.subscriptions[id]
	if !existed {
		return false
	}
	delete(s.subscriptions, id)

	s.persist()
	return true
}

// RemoveForChannel removes id only when it exists and contains channel
// among its channels, preventing cross-channel deletion.
func (s *SubscriptionStore) RemoveForChannel(id uint64, channel models.ChannelId) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, existed := s.subscriptions[id]
	if !existed || !sub.HasChannel(channel) {
		return false
	}
	delete(s.subscriptions, id)

	s.persist()
	return true
}

// Get returns a copy of the subscription with id, and whether it existed.
func (s *SubscriptionStore) Get(id uint64) (models.Subscription, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.subscriptions[id]
	return sub, ok
}

// ListByChannel returns every subscription whose channels contain channel.
// Order is unspecified (linear scan).
func (s *SubscriptionStore) ListByChannel(channel models.ChannelId) []models.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Subscription
	for _, sub := range s.subscriptions {
		if sub.HasChannel(channel) {
			out = append(out, sub)
		}
	}
	return out
}

// All returns a snapshot of every subscription currently in the catalog.
// Used by startup replay to spawn monitors without holding the lock across
// the spawn sequence's per-iteration sleep.
func (s *SubscriptionStore) All() []models.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Subscription, 0, len(s.subscriptions))
	for _, sub := range s.subscriptions {
		out = append(out, sub)
	}
	return out
}

// persist must be called with s.mu held. Save failures are logged, not
// propagated: the in-memory catalog is the source of truth for the
// running process, and a failed save only puts durability at risk.
func (s *SubscriptionStore) persist() {
	all := make([]models.Subscription, 0, len(s.subscriptions))
	for _, sub := range s.subscriptions {
		all = append(all, sub)
	}
	if err := s.persistence.SaveSubscriptions(all); err != nil {
		s.logger.Error().Err(err).Msg("failed to save subscriptions")
		s.metrics.PersistenceSavesTotal.WithLabelValues("subscriptions", "error").Inc()
		return
	}
	s.metrics.PersistenceSavesTotal.WithLabelValues("subscriptions", "ok").Inc()
}
