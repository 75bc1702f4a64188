package models

import "time"

// SubscriptionConfig holds the per-subscription polling and filter
// settings. Zero value is not valid on its own; use DefaultSubscriptionConfig.
type SubscriptionConfig struct {
	IntervalSeconds uint64 `json:"interval_seconds"`
	ShowBazar       bool   `json:"show_bazar"`
	ShowFeatured    bool   `json:"show_featured"`
	ShowRegular     bool   `json:"show_regular"`
}

func DefaultSubscriptionConfig() SubscriptionConfig {
	return SubscriptionConfig{
		IntervalSeconds: 60,
		ShowBazar:       false,
		ShowFeatured:    true,
		ShowRegular:     true,
	}
}

// Subscription is the user-visible, persisted catalog entry: a URL plus
// polling configuration and the set of channels to notify.
type Subscription struct {
	Id uint64 `json:"id"`

	// Name is auto-derived from the URL; absent when derivation fails.
	Name *string `json:"name,omitempty"`

	// Channels is non-empty; ordered list of fan-out destinations.
	Channels []ChannelId `json:"channels"`

	Owner OwnerId `json:"owner"`

	Url string `json:"url"`

	Config SubscriptionConfig `json:"config"`

	CreatedAt time.Time `json:"created_at"`
}

// HasChannel reports whether c appears in s.Channels.
func (s Subscription) HasChannel(c ChannelId) bool {
	for _, existing := range s.Channels {
		if existing == c {
			return true
		}
	}
	return false
}

// SubscriptionState is the 1:1 runtime counterpart of a Subscription,
// tracking the newest listing id ever observed for it.
type SubscriptionState struct {
	SubscriptionId uint64      `json:"subscription_id"`
	LastSeen       *ListingId  `json:"last_seen"`
}
