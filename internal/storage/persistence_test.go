package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adred-codev/adwatch/internal/models"
)

func TestFilePersistenceRoundTrip(t *testing.T) {
	dir := t.TempDir()
	fp, err := NewFilePersistence(dir)
	require.NoError(t, err)

	subs := []models.Subscription{
		{Id: 1, Url: "https://hardverapro.hu/a/b", Channels: []models.ChannelId{models.TerminalChannel()}},
	}
	require.NoError(t, fp.SaveSubscriptions(subs))

	loaded, err := fp.LoadSubscriptions()
	require.NoError(t, err)
	assert.Equal(t, subs, loaded)

	assert.NoFileExists(t, filepath.Join(dir, "subscriptions.json.tmp"))
}

func TestFilePersistenceLoadMissingFileReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	fp, err := NewFilePersistence(dir)
	require.NoError(t, err)

	subs, err := fp.LoadSubscriptions()
	require.NoError(t, err)
	assert.Nil(t, subs)
}

func TestNullPersistenceDiscardsEverything(t *testing.T) {
	var np NullPersistence
	assert.NoError(t, np.SaveSubscriptions([]models.Subscription{{Id: 1}}))

	loaded, err := np.LoadSubscriptions()
	assert.NoError(t, err)
	assert.Nil(t, loaded)
}
