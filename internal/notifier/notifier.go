// Package notifier implements the Notifier capability: formatting and
// delivering a new-listing notification to a specific chat platform
// channel, plus the registry that routes a ChannelId to the right
// implementation.
package notifier

import (
	"context"

	"github.com/adred-codev/adwatch/internal/models"
)

// Notifier delivers one new-listing notification to one channel.
// Implementations must be safe to call from many goroutines concurrently.
type Notifier interface {
	NotifyNewListing(ctx context.Context, sub models.Subscription, meta models.ScrapeMetadata, listing models.Listing, channel models.ChannelId) error
}

// Registry holds the (at most three) configured notifier implementations
// and routes a channel to the matching one. It is cheap to copy: all
// fields are already reference types.
type Registry struct {
	Telegram Notifier
	Discord  Notifier
	Terminal Notifier
}

// NotifierFor returns the notifier matching channel's kind, or nil if that
// integration was not enabled.
func (r Registry) NotifierFor(channel models.ChannelId) Notifier {
	switch channel.Kind {
	case models.ChannelTelegram:
		return r.Telegram
	case models.ChannelDiscord:
		return r.Discord
	case models.ChannelTerminal:
		return r.Terminal
	default:
		return nil
	}
}
