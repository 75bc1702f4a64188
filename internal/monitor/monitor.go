// Package monitor runs one scrape-and-notify loop per subscription: fetch
// the subscription's URL on its configured interval, parse the page,
// diff against the watermark in RuntimeStateStore, and fan out any new
// listings to the subscription's channels.
package monitor

import (
	"context"
	"runtime/debug"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/adred-codev/adwatch/internal/fetcher"
	"github.com/adred-codev/adwatch/internal/metrics"
	"github.com/adred-codev/adwatch/internal/models"
	"github.com/adred-codev/adwatch/internal/notifier"
	"github.com/adred-codev/adwatch/internal/parser"
	"github.com/adred-codev/adwatch/internal/storage"
)

// interMessageStagger is the pause between successive notification sends
// within one scrape cycle, so a subscription with many channels (or many
// new listings) doesn't hammer a notifier's rate limit in a tight loop.
const interMessageStagger = 100 * time.Millisecond

// Monitor owns the fetch/parse/diff/notify loop for exactly one
// subscription. Its goroutine is started by Manager.Start and stopped by
// closing the shutdown channel; Monitor never mutates the Subscription
// itself, only SubscriptionState.
type Monitor struct {
	subscriptionId uint64
	states         *storage.RuntimeStateStore
	subscriptions  *storage.SubscriptionStore
	fetcher        *fetcher.Fetcher
	notifiers      notifier.Registry
	metrics        *metrics.Metrics
	logger         zerolog.Logger

	shutdown chan struct{}
}

func New(
	subscriptionId uint64,
	states *storage.RuntimeStateStore,
	subscriptions *storage.SubscriptionStore,
	notifiers notifier.Registry,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
) *Monitor {
	return &Monitor{
		subscriptionId: subscriptionId,
		states:         states,
		subscriptions:  subscriptions,
		fetcher:        fetcher.New(),
		notifiers:      notifiers,
		metrics:        metrics,
		logger:         logger.With().Uint64("subscription_id", subscriptionId).Logger(),
		shutdown:       make(chan struct{}),
	}
}

// Stop signals the monitor's loop to exit. Safe to call more than once.
func (m *Monitor) Stop() {
	select {
	case <-m.shutdown:
		// already stopped
	default:
		close(m.shutdown)
	}
}

// Run executes the poll loop until ctx is cancelled or Stop is called.
// Intended to be launched as `go m.Run(ctx)`; recovers from any panic in
// a single scrape cycle so one bad page never kills the goroutine.
func (m *Monitor) Run(ctx context.Context) {
	sub, ok := m.subscriptions.Get(m.subscriptionId)
	if !ok {
		m.logger.Warn().Msg("monitor started for unknown subscription, exiting")
		return
	}

	interval := time.Duration(sub.Config.IntervalSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.metrics.MonitorsRunning.Inc()
	defer m.metrics.MonitorsRunning.Dec()

	m.runCycleSafely(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.shutdown:
			return
		case <-ticker.C:
			m.runCycleSafely(ctx)
		}
	}
}

func (m *Monitor) runCycleSafely(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error().
				Interface("panic_value", r).
				Str("stack_trace", string(debug.Stack())).
				Msg("scrape cycle panicked, monitor continues")
			m.metrics.ScrapeCyclesTotal.WithLabelValues("panic").Inc()
		}
	}()
	m.runCycle(ctx)
}

func (m *Monitor) runCycle(ctx context.Context) {
	sub, ok := m.subscriptions.Get(m.subscriptionId)
	if !ok {
		// Subscription was deleted since the last tick; the manager will
		// stop this monitor shortly, nothing to do this cycle.
		return
	}

	body, err := m.fetcher.Fetch(ctx, sub.Url)
	if err != nil {
		m.logger.Warn().Err(err).Msg("fetch failed, skipping cycle")
		m.metrics.ScrapeCyclesTotal.WithLabelValues("fetch_error").Inc()
		return
	}

	page := parser.ParseHardverapro(body)
	m.metrics.ListingsParsedTotal.Add(float64(len(page.Listings)))
	m.metrics.ListingsFailedTotal.Add(float64(len(page.Failures)))
	for _, f := range page.Failures {
		m.logger.Debug().
			Str("field", string(f.Field)).
			Str("kind", string(f.Kind)).
			Msg("listing field parse failure")
	}

	state, hadState := m.states.Get(m.subscriptionId)

	fresh := filterByType(page.Listings, sub.Config)
	sort.Slice(fresh, func(i, j int) bool { return fresh[i].Id < fresh[j].Id })

	maxSeen := page.MaxListingId()

	if !hadState || state.LastSeen == nil {
		// First observation establishes the watermark without notifying;
		// only listings newer than this baseline are ever reported.
		if maxSeen != nil {
			m.states.UpdateLastSeen(m.subscriptionId, *maxSeen)
		}
		m.metrics.ScrapeCyclesTotal.WithLabelValues("baseline").Inc()
		return
	}

	var toNotify []models.Listing
	for _, listing := range fresh {
		if listing.Id > *state.LastSeen {
			toNotify = append(toNotify, listing)
		}
	}

	if maxSeen != nil && *maxSeen > *state.LastSeen {
		m.states.UpdateLastSeen(m.subscriptionId, *maxSeen)
	}

	if len(toNotify) == 0 {
		m.metrics.ScrapeCyclesTotal.WithLabelValues("no_new").Inc()
		return
	}

	m.deliver(ctx, sub, page.Metadata, toNotify)
	m.metrics.ScrapeCyclesTotal.WithLabelValues("delivered").Inc()
}

// filterByType drops listing categories the subscription has not opted into.
func filterByType(listings []models.Listing, cfg models.SubscriptionConfig) []models.Listing {
	out := make([]models.Listing, 0, len(listings))
	for _, l := range listings {
		switch l.ListingType {
		case models.ListingBazar:
			if !cfg.ShowBazar {
				continue
			}
		case models.ListingFeatured:
			if !cfg.ShowFeatured {
				continue
			}
		default:
			if !cfg.ShowRegular {
				continue
			}
		}
		out = append(out, l)
	}
	return out
}

// deliver sends every listing to every channel, staggering sends so a
// burst of new listings doesn't flood any one notifier. Channels are the
// outer loop: a delivery error aborts that channel's fan-out for the rest
// of this cycle, but every other channel still gets its full listing run.
func (m *Monitor) deliver(ctx context.Context, sub models.Subscription, meta models.ScrapeMetadata, listings []models.Listing) {
	first := true
	for _, channel := range sub.Channels {
		n := m.notifiers.NotifierFor(channel)
		if n == nil {
			continue
		}

		for _, listing := range listings {
			if !first {
				time.Sleep(interMessageStagger)
			}
			first = false

			if err := n.NotifyNewListing(ctx, sub, meta, listing, channel); err != nil {
				m.logger.Warn().Err(err).Str("channel", channel.String()).Msg("notification delivery failed, aborting channel for this cycle")
				m.metrics.NotificationsFailedTotal.WithLabelValues(string(channel.Kind)).Inc()
				break
			}
			m.metrics.NotificationsSentTotal.WithLabelValues(string(channel.Kind)).Inc()
		}
	}
}
