package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelIdJSONRoundTrip(t *testing.T) {
	cases := []ChannelId{
		TerminalChannel(),
		TelegramChannel(12345),
		DiscordChannel(67890),
	}

	for _, c := range cases {
		data, err := json.Marshal(c)
		require.NoError(t, err)

		var decoded ChannelId
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, c, decoded)
	}
}

func TestChannelIdEqualityAsMapKey(t *testing.T) {
	m := map[ChannelId]bool{}
	m[TelegramChannel(1)] = true

	assert.True(t, m[TelegramChannel(1)])
	assert.False(t, m[TelegramChannel(2)])
	assert.False(t, m[DiscordChannel(1)])
}

func TestOwnerIdJSONRoundTrip(t *testing.T) {
	userID := int64(42)
	cases := []OwnerId{
		TelegramOwner(&userID),
		TelegramOwner(nil),
		DiscordOwner(7),
	}

	for _, o := range cases {
		data, err := json.Marshal(o)
		require.NoError(t, err)

		var decoded OwnerId
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, o.Kind, decoded.Kind)
		assert.Equal(t, o.DiscordUserId, decoded.DiscordUserId)
		if o.TelegramUserId == nil {
			assert.Nil(t, decoded.TelegramUserId)
		} else {
			require.NotNil(t, decoded.TelegramUserId)
			assert.Equal(t, *o.TelegramUserId, *decoded.TelegramUserId)
		}
	}
}
