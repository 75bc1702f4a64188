package storage

import (
	"sync"

	"github.com/adred-codev/adwatch/internal/metrics"
	"github.com/adred-codev/adwatch/internal/models"
	"github.com/rs/zerolog"
)

// RuntimeStateStore holds the per-subscription watermark: the highest
// listing id ever observed. It is shared by reference across a Monitor's
// goroutine and the command handler.
type RuntimeStateStore struct {
	mu          sync.Mutex
	states      map[uint64]models.SubscriptionState
	persistence Persistence
	logger      zerolog.Logger
	metrics     *metrics.Metrics
}

func NewRuntimeStateStore(persistence Persistence, logger zerolog.Logger, m *metrics.Metrics) (*RuntimeStateStore, error) {
	loaded, err := persistence.LoadStates()
	if err != nil {
		return nil, err
	}

	states := make(map[uint64]models.SubscriptionState, len(loaded))
	for _, st := range loaded {
		states[st.SubscriptionId] = st
	}

	return &RuntimeStateStore{
		states:      states,
		persistence: persistence,
		logger:      logger,
		metrics:     m,
	}, nil
}

// Get returns a copy of the state for id, and whether an entry exists.
func (r *RuntimeStateStore) Get(id uint64) (models.SubscriptionState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.states[id]
	return st, ok
}

// UpdateLastSeen upserts the watermark for id to listingId and persists the
// full collection. Monotonicity (never passing a value lower than the
// current watermark) is the caller's (Monitor's) responsibility; this
// store enforces nothing beyond "the value it is given".
func (r *RuntimeStateStore) UpdateLastSeen(id uint64, listingId models.ListingId) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.states[id] = models.SubscriptionState{
		SubscriptionId: id,
		LastSeen:       &listingId,
	}
	r.persist()
}

// Remove drops the state entry for id and persists.
func (r *RuntimeStateStore) Remove(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.states, id)
	r.persist()
}

// persist must be called with r.mu held.
func (r *RuntimeStateStore) persist() {
	all := make([]models.SubscriptionState, 0, len(r.states))
	for _, st := range r.states {
		all = append(all, st)
	}
	if err := r.persistence.SaveStates(all); err != nil {
		r.logger.Error().Err(err).Msg("failed to save runtime state")
		r.metrics.PersistenceSavesTotal.WithLabelValues("runtime_state", "error").Inc()
		return
	}
	r.metrics.PersistenceSavesTotal.WithLabelValues("runtime_state", "ok").Inc()
}
