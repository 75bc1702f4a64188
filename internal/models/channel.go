package models

import (
	"encoding/json"
	"fmt"
)

// ChannelKind discriminates the ChannelId tagged union.
type ChannelKind string

const (
	ChannelTerminal ChannelKind = "terminal"
	ChannelTelegram ChannelKind = "telegram"
	ChannelDiscord  ChannelKind = "discord"
)

// ChannelId identifies a destination a subscription can notify. It is a
// small value type (all fields are comparable scalars) so it can be used
// directly as a map key and compared with ==, matching the tagged-enum
// equality/hashability the data model requires.
type ChannelId struct {
	Kind ChannelKind

	// TelegramChatId is set when Kind == ChannelTelegram.
	TelegramChatId int64
	// DiscordChannelId is set when Kind == ChannelDiscord.
	DiscordChannelId int64
}

func TerminalChannel() ChannelId {
	return ChannelId{Kind: ChannelTerminal}
}

func TelegramChannel(chatID int64) ChannelId {
	return ChannelId{Kind: ChannelTelegram, TelegramChatId: chatID}
}

func DiscordChannel(channelID int64) ChannelId {
	return ChannelId{Kind: ChannelDiscord, DiscordChannelId: channelID}
}

func (c ChannelId) String() string {
	switch c.Kind {
	case ChannelTelegram:
		return fmt.Sprintf("telegram:%d", c.TelegramChatId)
	case ChannelDiscord:
		return fmt.Sprintf("discord:%d", c.DiscordChannelId)
	default:
		return "terminal"
	}
}

type channelJSON struct {
	Kind      ChannelKind `json:"kind"`
	ChatId    *int64      `json:"chat_id,omitempty"`
	ChannelId *int64      `json:"channel_id,omitempty"`
}

func (c ChannelId) MarshalJSON() ([]byte, error) {
	out := channelJSON{Kind: c.Kind}
	switch c.Kind {
	case ChannelTelegram:
		out.ChatId = &c.TelegramChatId
	case ChannelDiscord:
		out.ChannelId = &c.DiscordChannelId
	}
	return json.Marshal(out)
}

func (c *ChannelId) UnmarshalJSON(data []byte) error {
	var in channelJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	c.Kind = in.Kind
	if in.ChatId != nil {
		c.TelegramChatId = *in.ChatId
	}
	if in.ChannelId != nil {
		c.DiscordChannelId = *in.ChannelId
	}
	return nil
}

// OwnerKind discriminates the OwnerId tagged union.
type OwnerKind string

const (
	OwnerTelegram OwnerKind = "telegram"
	OwnerDiscord  OwnerKind = "discord"
)

// OwnerId identifies who created a subscription. Currently informational,
// kept for a future authorization layer (per design notes).
type OwnerId struct {
	Kind OwnerKind

	// TelegramUserId is nil when Telegram didn't report a sender (e.g. channel posts).
	TelegramUserId *int64
	DiscordUserId  int64
}

func TelegramOwner(userID *int64) OwnerId {
	return OwnerId{Kind: OwnerTelegram, TelegramUserId: userID}
}

func DiscordOwner(userID int64) OwnerId {
	return OwnerId{Kind: OwnerDiscord, DiscordUserId: userID}
}

type ownerJSON struct {
	Kind    OwnerKind `json:"kind"`
	UserId  *int64    `json:"user_id,omitempty"`
	OwnerId *int64    `json:"owner_id,omitempty"`
}

func (o OwnerId) MarshalJSON() ([]byte, error) {
	out := ownerJSON{Kind: o.Kind}
	switch o.Kind {
	case OwnerTelegram:
		out.UserId = o.TelegramUserId
	case OwnerDiscord:
		v := o.DiscordUserId
		out.OwnerId = &v
	}
	return json.Marshal(out)
}

func (o *OwnerId) UnmarshalJSON(data []byte) error {
	var in ownerJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	o.Kind = in.Kind
	o.TelegramUserId = in.UserId
	if in.OwnerId != nil {
		o.DiscordUserId = *in.OwnerId
	}
	return nil
}
