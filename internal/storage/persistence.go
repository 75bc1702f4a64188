// Package storage implements the dual-store persistence described in the
// design: a subscription catalog and a runtime watermark table, each kept
// consistent with on-disk JSON via atomic rename.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adred-codev/adwatch/internal/models"
)

// Persistence loads and saves the two persisted collections. Each save
// receives the full collection; there is no incremental diff. Calls are
// expected to be serialized by the caller (always made under the owning
// store's lock).
type Persistence interface {
	LoadSubscriptions() ([]models.Subscription, error)
	SaveSubscriptions(all []models.Subscription) error

	LoadStates() ([]models.SubscriptionState, error)
	SaveStates(all []models.SubscriptionState) error
}

// NullPersistence discards everything; used when DISABLE_SAVING=true.
type NullPersistence struct{}

func (NullPersistence) LoadSubscriptions() ([]models.Subscription, error) {
	return nil, nil
}

func (NullPersistence) SaveSubscriptions(all []models.Subscription) error {
	return nil
}

func (NullPersistence) LoadStates() ([]models.SubscriptionState, error) {
	return nil, nil
}

func (NullPersistence) SaveStates(all []models.SubscriptionState) error {
	return nil
}

// FilePersistence stores each collection as a single JSON array under a
// data directory, using atomic write-then-rename so a reader never
// observes a partially-written file.
type FilePersistence struct {
	subscriptionsPath string
	statePath         string
}

// NewFilePersistence creates dataDir if missing and returns a
// FilePersistence rooted at it.
func NewFilePersistence(dataDir string) (*FilePersistence, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FilePersistence{
		subscriptionsPath: filepath.Join(dataDir, "subscriptions.json"),
		statePath:         filepath.Join(dataDir, "state.json"),
	}, nil
}

func (f *FilePersistence) LoadSubscriptions() ([]models.Subscription, error) {
	var out []models.Subscription
	err := loadJSON(f.subscriptionsPath, &out)
	return out, err
}

func (f *FilePersistence) SaveSubscriptions(all []models.Subscription) error {
	return saveJSON(f.subscriptionsPath, all)
}

func (f *FilePersistence) LoadStates() ([]models.SubscriptionState, error) {
	var out []models.SubscriptionState
	err := loadJSON(f.statePath, &out)
	return out, err
}

func (f *FilePersistence) SaveStates(all []models.SubscriptionState) error {
	return saveJSON(f.statePath, all)
}

func loadJSON(path string, out any) error {
	bytes, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(bytes, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// saveJSON serializes data and writes it atomically: write to path+".tmp",
// then rename over path. A reader opening path at any instant sees either
// the previous complete file or the new one, never a partial write.
func saveJSON(path string, data any) error {
	bytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("serialize %s: %w", path, err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, bytes, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename %s to %s: %w", tmpPath, path, err)
	}
	return nil
}
