package controller

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adred-codev/adwatch/internal/metrics"
	"github.com/adred-codev/adwatch/internal/models"
	"github.com/adred-codev/adwatch/internal/monitor"
	"github.com/adred-codev/adwatch/internal/notifier"
	"github.com/adred-codev/adwatch/internal/storage"
)

func newTestHandler(t *testing.T) (*Handler, context.Context, context.CancelFunc) {
	t.Helper()
	m := metrics.New()

	subs, err := storage.NewSubscriptionStore(storage.NullPersistence{}, zerolog.Nop(), m)
	require.NoError(t, err)
	states, err := storage.NewRuntimeStateStore(storage.NullPersistence{}, zerolog.Nop(), m)
	require.NoError(t, err)

	mgr := monitor.NewManager(states, subs, notifier.Registry{}, m, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())

	return NewHandler(subs, states, mgr, zerolog.Nop()), ctx, cancel
}

func TestHandleStartAndHelp(t *testing.T) {
	h, ctx, cancel := newTestHandler(t)
	defer cancel()

	assert.Equal(t, greeting, h.Handle(ctx, IncomingMessage{Text: "/start"}))
	assert.Equal(t, helpText, h.Handle(ctx, IncomingMessage{Text: "/help"}))
}

func TestHandleUnrecognizedAndUnknownCommandAreSilent(t *testing.T) {
	h, ctx, cancel := newTestHandler(t)
	defer cancel()

	assert.Equal(t, "", h.Handle(ctx, IncomingMessage{Text: "hello there"}))
	assert.Equal(t, "", h.Handle(ctx, IncomingMessage{Text: "/bogus"}))
}

func TestHandleAddCreatesSubscriptionAndStartsMonitor(t *testing.T) {
	h, ctx, cancel := newTestHandler(t)
	defer cancel()

	channel := models.TerminalChannel()
	reply := h.Handle(ctx, IncomingMessage{Channel: channel, Text: "/add https://hardverapro.hu/aprohirdetesek/alaplap.html"})
	assert.Contains(t, reply, "New subscription added with ID:")

	list := h.Handle(ctx, IncomingMessage{Channel: channel, Text: "/list"})
	assert.Contains(t, list, "aprohirdetesek")
}

func TestHandleAddWithoutPayloadReturnsUsage(t *testing.T) {
	h, ctx, cancel := newTestHandler(t)
	defer cancel()

	assert.Equal(t, "Usage: /add <URL>", h.Handle(ctx, IncomingMessage{Text: "/add"}))
}

func TestHandleDelIsScopedToTheRequestingChannel(t *testing.T) {
	h, ctx, cancel := newTestHandler(t)
	defer cancel()

	owner := models.TerminalChannel()
	other := models.TelegramChannel(999)

	addReply := h.Handle(ctx, IncomingMessage{Channel: owner, Text: "/add https://hardverapro.hu/aprohirdetesek/alaplap.html"})
	require.Contains(t, addReply, "ID:")
	id := strings.TrimSpace(strings.Split(addReply, "ID:")[1])

	// A different channel cannot delete a subscription it isn't on.
	reply := h.Handle(ctx, IncomingMessage{Channel: other, Text: "/del " + id})
	assert.Contains(t, reply, "Not removed")

	// The owning channel can.
	reply = h.Handle(ctx, IncomingMessage{Channel: owner, Text: "/del " + id})
	assert.Contains(t, reply, "Removed: "+id)
}

func TestHandleDelRejectsNonNumericId(t *testing.T) {
	h, ctx, cancel := newTestHandler(t)
	defer cancel()

	reply := h.Handle(ctx, IncomingMessage{Text: "/del abc"})
	assert.Contains(t, reply, "Invalid id")
}

func TestHandleListEmpty(t *testing.T) {
	h, ctx, cancel := newTestHandler(t)
	defer cancel()

	assert.Equal(t, "No subscriptions found", h.Handle(ctx, IncomingMessage{Text: "/list"}))
}

func TestHandleInfoUnknownId(t *testing.T) {
	h, ctx, cancel := newTestHandler(t)
	defer cancel()

	assert.Contains(t, h.Handle(ctx, IncomingMessage{Text: "/info 42"}), "does not exist")
}

func TestHandleInfoUsageOnBadId(t *testing.T) {
	h, ctx, cancel := newTestHandler(t)
	defer cancel()

	assert.Equal(t, "Usage: /info <id>", h.Handle(ctx, IncomingMessage{Text: "/info"}))
}
