// Package controller implements the command-handling surface shared by
// every chat-platform ingress (Telegram, Discord, Terminal): parse an
// incoming command, mutate the subscription catalog, and produce the
// reply text. Transport-specific code lives in the per-platform files;
// this file is the one place command semantics are decided.
package controller

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/adred-codev/adwatch/internal/models"
	"github.com/adred-codev/adwatch/internal/monitor"
	"github.com/adred-codev/adwatch/internal/storage"
)

const (
	greeting = "Welcome to adwatch. Use /add <URL> to start watching a search, /help for the full command list."

	helpText = `Commands:
/start - show the welcome message
/help - show this text
/add <URL> - subscribe to a hardverapro search URL
/del <id> [id...] - remove one or more subscriptions by id
/list or /ls - list your subscriptions
/info <id> - show full detail for one subscription`
)

// IncomingMessage normalizes a platform message into the shape the
// handler needs: which channel it arrived on, who sent it, and its text.
type IncomingMessage struct {
	Channel models.ChannelId
	Owner   models.OwnerId
	Text    string
}

// Handler implements every command in the table shared across transports.
// It holds no transport-specific state.
type Handler struct {
	subs     *storage.SubscriptionStore
	states   *storage.RuntimeStateStore
	monitors *monitor.Manager
	logger   zerolog.Logger
}

func NewHandler(subs *storage.SubscriptionStore, states *storage.RuntimeStateStore, monitors *monitor.Manager, logger zerolog.Logger) *Handler {
	return &Handler{subs: subs, states: states, monitors: monitors, logger: logger}
}

// Handle dispatches msg to the matching command and returns the reply
// text. Unrecognized input (no leading "/", or an unknown command) is
// ignored silently: it returns "", and callers must treat an empty reply
// as "send nothing".
func (h *Handler) Handle(ctx context.Context, msg IncomingMessage) string {
	text := strings.TrimSpace(msg.Text)
	if !strings.HasPrefix(text, "/") {
		return ""
	}

	fields := strings.Fields(text)
	cmd := fields[0]
	payload := strings.TrimSpace(strings.TrimPrefix(text, cmd))

	switch cmd {
	case "/start":
		return greeting
	case "/help":
		return helpText
	case "/add":
		return h.handleAdd(ctx, msg, payload)
	case "/del":
		return h.handleDel(msg, payload)
	case "/list", "/ls":
		return h.handleList(msg)
	case "/info":
		return h.handleInfo(payload)
	default:
		return ""
	}
}

func (h *Handler) handleAdd(ctx context.Context, msg IncomingMessage, payload string) string {
	if payload == "" {
		return "Usage: /add <URL>"
	}

	id := h.subs.Add(payload, msg.Channel, msg.Owner)
	h.monitors.Start(ctx, id)
	return fmt.Sprintf("New subscription added with ID: %d", id)
}

func (h *Handler) handleDel(msg IncomingMessage, payload string) string {
	if payload == "" {
		return "Usage: /del <id> [id...]"
	}

	var removed, rejected []string
	for _, field := range strings.Fields(payload) {
		id, err := strconv.ParseUint(field, 10, 64)
		if err != nil {
			return fmt.Sprintf("Invalid id: %q is not a number", field)
		}

		h.monitors.Stop(id)
		h.states.Remove(id)
		if h.subs.RemoveForChannel(id, msg.Channel) {
			removed = append(removed, field)
		} else {
			rejected = append(rejected, field)
		}
	}

	var b strings.Builder
	if len(removed) > 0 {
		fmt.Fprintf(&b, "Removed: %s", strings.Join(removed, ", "))
	}
	if len(rejected) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Not removed (not found or not yours): %s", strings.Join(rejected, ", "))
	}
	return b.String()
}

func (h *Handler) handleList(msg IncomingMessage) string {
	subs := h.subs.ListByChannel(msg.Channel)
	if len(subs) == 0 {
		return "No subscriptions found"
	}

	var b strings.Builder
	for i, sub := range subs {
		if i > 0 {
			b.WriteString("\n")
		}
		name := "(unnamed)"
		if sub.Name != nil {
			name = *sub.Name
		}
		fmt.Fprintf(&b, "ID:\t%d\t(%s): %s", sub.Id, sub.CreatedAt.Format("2006-01-02 15:04"), name)
	}
	return b.String()
}

func (h *Handler) handleInfo(payload string) string {
	id, err := strconv.ParseUint(strings.TrimSpace(payload), 10, 64)
	if err != nil {
		return "Usage: /info <id>"
	}

	sub, ok := h.subs.Get(id)
	if !ok {
		return fmt.Sprintf("Subscription with ID %d does not exist", id)
	}

	name := "(unnamed)"
	if sub.Name != nil {
		name = *sub.Name
	}

	channels := make([]string, 0, len(sub.Channels))
	for _, c := range sub.Channels {
		channels = append(channels, c.String())
	}

	return fmt.Sprintf(
		"ID: %d\nName: %s\nURL: %s\nCreated: %s\nInterval: %ds\nShow regular/bazar/featured: %t/%t/%t\nChannels: %s",
		sub.Id, name, sub.Url, sub.CreatedAt.Format("2006-01-02 15:04"),
		sub.Config.IntervalSeconds, sub.Config.ShowRegular, sub.Config.ShowBazar, sub.Config.ShowFeatured,
		strings.Join(channels, ", "),
	)
}
