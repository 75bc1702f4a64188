package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/adred-codev/adwatch/internal/metrics"
	"github.com/adred-codev/adwatch/internal/notifier"
	"github.com/adred-codev/adwatch/internal/storage"
)

// startupStagger is the minimum spacing between consecutive monitor starts
// during the initial replay, so a catalog of many subscriptions doesn't
// fire their first fetch in the same instant.
const startupStagger = 1250 * time.Millisecond

// Manager owns the set of currently running Monitors, keyed by
// subscription id, and the goroutines that back them.
type Manager struct {
	mu       sync.Mutex
	handles  map[uint64]*handle
	states   *storage.RuntimeStateStore
	subs     *storage.SubscriptionStore
	notifier notifier.Registry
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

type handle struct {
	monitor *Monitor
	cancel  context.CancelFunc
}

func NewManager(
	states *storage.RuntimeStateStore,
	subs *storage.SubscriptionStore,
	notifiers notifier.Registry,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Manager {
	return &Manager{
		handles:  make(map[uint64]*handle),
		states:   states,
		subs:     subs,
		notifier: notifiers,
		metrics:  m,
		logger:   logger,
	}
}

// Start spawns a Monitor goroutine for subscriptionId, replacing any
// already running for the same id. ctx is the parent cancellation
// context (process shutdown); the monitor's own lifetime is also bound
// to its Stop method.
func (mgr *Manager) Start(ctx context.Context, subscriptionId uint64) {
	mgr.mu.Lock()
	if existing, ok := mgr.handles[subscriptionId]; ok {
		existing.monitor.Stop()
		existing.cancel()
	}

	monCtx, cancel := context.WithCancel(ctx)
	mon := New(subscriptionId, mgr.states, mgr.subs, mgr.notifier, mgr.metrics, mgr.logger)
	mgr.handles[subscriptionId] = &handle{monitor: mon, cancel: cancel}
	mgr.mu.Unlock()

	go mon.Run(monCtx)
}

// Stop halts and forgets the monitor for subscriptionId, if running.
func (mgr *Manager) Stop(subscriptionId uint64) {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	h, ok := mgr.handles[subscriptionId]
	if !ok {
		return
	}
	h.monitor.Stop()
	h.cancel()
	delete(mgr.handles, subscriptionId)
}

// StopAll halts every running monitor. Used during process shutdown.
func (mgr *Manager) StopAll() {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	for id, h := range mgr.handles {
		h.monitor.Stop()
		h.cancel()
		delete(mgr.handles, id)
	}
}

// StartAll replays the full subscription catalog at startup, spawning one
// monitor per subscription with a fixed pause between consecutive starts.
// The pause happens without holding any store lock, so concurrently
// running monitors are never blocked by the replay sequence.
func (mgr *Manager) StartAll(ctx context.Context) {
	all := mgr.subs.All()
	for i, sub := range all {
		if i > 0 {
			time.Sleep(startupStagger)
		}
		mgr.Start(ctx, sub.Id)
	}
	mgr.logger.Info().Int("count", len(all)).Msg("replayed subscription catalog, monitors started")
}
