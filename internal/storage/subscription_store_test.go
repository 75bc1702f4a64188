package storage

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/adred-codev/adwatch/internal/metrics"
	"github.com/adred-codev/adwatch/internal/models"
)

func TestDeriveName(t *testing.T) {
	cases := []struct {
		url  string
		want *string
	}{
		{"https://hardverapro.hu/aprohirdetesek/alaplap?stext=gigabyte", strPtr("gigabyte")},
		{"https://hardverapro.hu/aprohirdetesek/alaplap", strPtr("aprohirdetesek")},
		{"https://hardverapro.hu/aprohirdetesek", nil},
		{"not a url :://", nil},
	}

	for _, c := range cases {
		got := deriveName(c.url)
		if c.want == nil {
			assert.Nil(t, got)
		} else {
			assert.NotNil(t, got)
			assert.Equal(t, *c.want, *got)
		}
	}
}

func strPtr(s string) *string { return &s }

func TestSubscriptionStoreAddRemove(t *testing.T) {
	store, err := NewSubscriptionStore(NullPersistence{}, zerolog.Nop(), metrics.New())
	assert.NoError(t, err)

	channel := models.TerminalChannel()
	owner := models.OwnerId{}

	id := store.Add("https://hardverapro.hu/aprohirdetesek/alaplap?stext=foo", channel, owner)
	assert.Equal(t, uint64(1), id)

	sub, ok := store.Get(id)
	assert.True(t, ok)
	assert.Equal(t, "foo", *sub.Name)
	assert.True(t, sub.HasChannel(channel))

	assert.True(t, store.Remove(id))
	_, ok = store.Get(id)
	assert.False(t, ok)
	assert.False(t, store.Remove(id))
}

func TestSubscriptionStoreRemoveForChannelIsScoped(t *testing.T) {
	store, err := NewSubscriptionStore(NullPersistence{}, zerolog.Nop(), metrics.New())
	assert.NoError(t, err)

	channelA := models.TelegramChannel(1)
	channelB := models.TelegramChannel(2)

	id := store.Add("https://hardverapro.hu/aprohirdetesek/alaplap", channelA, models.OwnerId{})

	assert.False(t, store.RemoveForChannel(id, channelB))
	_, ok := store.Get(id)
	assert.True(t, ok)

	assert.True(t, store.RemoveForChannel(id, channelA))
	_, ok = store.Get(id)
	assert.False(t, ok)
}

func TestSubscriptionStoreNextIdSeededFromPersistence(t *testing.T) {
	mem := &memoryPersistence{
		subs: []models.Subscription{{Id: 5, Url: "https://hardverapro.hu/x/y"}},
	}
	store, err := NewSubscriptionStore(mem, zerolog.Nop(), metrics.New())
	assert.NoError(t, err)

	id := store.Add("https://hardverapro.hu/a/b", models.TerminalChannel(), models.OwnerId{})
	assert.Equal(t, uint64(6), id)
}

// memoryPersistence is a minimal in-test Persistence that starts pre-seeded.
type memoryPersistence struct {
	subs   []models.Subscription
	states []models.SubscriptionState
}

func (m *memoryPersistence) LoadSubscriptions() ([]models.Subscription, error) { return m.subs, nil }
func (m *memoryPersistence) SaveSubscriptions(all []models.Subscription) error {
	m.subs = all
	return nil
}
func (m *memoryPersistence) LoadStates() ([]models.SubscriptionState, error) { return m.states, nil }
func (m *memoryPersistence) SaveStates(all []models.SubscriptionState) error {
	m.states = all
	return nil
}
