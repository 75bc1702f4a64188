package monitor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adred-codev/adwatch/internal/metrics"
	"github.com/adred-codev/adwatch/internal/models"
	"github.com/adred-codev/adwatch/internal/notifier"
	"github.com/adred-codev/adwatch/internal/storage"
)

func TestFilterByTypeRespectsConfig(t *testing.T) {
	listings := []models.Listing{
		{Id: 1, ListingType: models.ListingRegular},
		{Id: 2, ListingType: models.ListingBazar},
		{Id: 3, ListingType: models.ListingFeatured},
	}

	cfg := models.SubscriptionConfig{ShowRegular: true, ShowBazar: false, ShowFeatured: true}
	filtered := filterByType(listings, cfg)

	var ids []int64
	for _, l := range filtered {
		ids = append(ids, l.Id)
	}
	assert.Equal(t, []int64{1, 3}, ids)
}

type captureNotifier struct {
	calls []models.Listing
}

func (c *captureNotifier) NotifyNewListing(_ context.Context, _ models.Subscription, _ models.ScrapeMetadata, listing models.Listing, _ models.ChannelId) error {
	c.calls = append(c.calls, listing)
	return nil
}

func listingPage(ids ...string) string {
	html := `<html><body>`
	for _, id := range ids {
		html += `<li class="media" data-uadid="` + id + `">
			<div class="uad-col-title"><h1><a href="/hirdetes/` + id + `">Item ` + id + `</a></h1></div>
			<div class="uad-price"><span>1000</span></div>
			<div class="uad-cities">Budapest</div>
			<span class="uad-user-text"><a href="/tag/s">s</a></span>
			<div class="uad-time"><time>2024-01-01</time></div>
		</li>`
	}
	html += `</body></html>`
	return html
}

func newTestMonitor(t *testing.T, url string, notify *captureNotifier) (*Monitor, *storage.SubscriptionStore, *storage.RuntimeStateStore) {
	t.Helper()
	m := metrics.New()

	subs, err := storage.NewSubscriptionStore(storage.NullPersistence{}, zerolog.Nop(), m)
	require.NoError(t, err)
	states, err := storage.NewRuntimeStateStore(storage.NullPersistence{}, zerolog.Nop(), m)
	require.NoError(t, err)

	id := subs.Add(url, models.TerminalChannel(), models.OwnerId{})

	reg := notifier.Registry{Terminal: notify}
	mon := New(id, states, subs, reg, m, zerolog.Nop())
	return mon, subs, states
}

func TestMonitorFirstCycleEstablishesBaselineWithoutNotifying(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(listingPage("10", "20")))
	}))
	defer server.Close()

	notify := &captureNotifier{}
	mon, _, states := newTestMonitor(t, server.URL, notify)

	mon.runCycle(context.Background())

	assert.Empty(t, notify.calls)
	state, ok := states.Get(mon.subscriptionId)
	require.True(t, ok)
	assert.Equal(t, models.ListingId(20), *state.LastSeen)
}

func TestMonitorSecondCycleNotifiesOnlyNewListings(t *testing.T) {
	ids := []string{"10", "20"}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(listingPage(ids...)))
	}))
	defer server.Close()

	notify := &captureNotifier{}
	mon, _, states := newTestMonitor(t, server.URL, notify)

	mon.runCycle(context.Background())
	assert.Empty(t, notify.calls)

	ids = []string{"10", "20", "30"}
	mon.runCycle(context.Background())

	require.Len(t, notify.calls, 1)
	assert.Equal(t, models.ListingId(30), notify.calls[0].Id)

	state, _ := states.Get(mon.subscriptionId)
	assert.Equal(t, models.ListingId(30), *state.LastSeen)
}
