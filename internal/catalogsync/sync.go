// Package catalogsync replaces the local product catalog with a snapshot
// fetched from the back office.
package catalogsync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/lector/internal/logger"
	"github.com/mesh-intelligence/lector/internal/remote"
	"github.com/mesh-intelligence/lector/pkg/types"
)

// ErrNoSettings is returned when no server settings have been saved.
var ErrNoSettings = errors.New("server settings not configured")

// FetchFunc returns a complete catalog snapshot.
type FetchFunc func(ctx context.Context) ([]types.Product, error)

// Fetcher is a remote catalog source that needs the saved settings.
// *remote.Client satisfies it.
type Fetcher interface {
	FetchProducts(ctx context.Context, settings types.ServerSettings) ([]types.Product, error)
}

// CatalogStore is the subset of types.Store the engine uses.
type CatalogStore interface {
	GetConfig(key string) ([]byte, error)
	PutConfig(key string, value []byte) error
	ReplaceCatalog(products []types.Product) error
	ProductCount() (int, error)
	LastSync() (time.Time, bool, error)
}

// Env is the reachability signal supplied by the caller.
type Env struct {
	Online bool
}

// Engine runs catalog syncs against one store.
type Engine struct {
	store  CatalogStore
	env    Env
	logger *zap.Logger
}

// New returns an Engine. A nil logger discards output.
func New(store CatalogStore, env Env, log *zap.Logger) *Engine {
	return &Engine{store: store, env: env, logger: logger.OrNop(log)}
}

// Sync fetches a snapshot and replaces the catalog with it, returning the
// number of products stored. A fetch error is returned unchanged and leaves
// the store untouched. Offline, Sync fails with remote.ErrUnreachable
// without calling fetch.
func (e *Engine) Sync(ctx context.Context, fetch FetchFunc) (int, error) {
	if !e.env.Online {
		return 0, fmt.Errorf("sync requires network: %w", remote.ErrUnreachable)
	}

	products, err := fetch(ctx)
	if err != nil {
		e.logger.Warn("catalog fetch failed", zap.Error(err))
		return 0, err
	}

	if err := e.store.ReplaceCatalog(products); err != nil {
		e.logger.Error("catalog replacement failed", zap.Int("products", len(products)), zap.Error(err))
		return 0, fmt.Errorf("replacing catalog: %w", err)
	}

	e.logger.Info("catalog synced", zap.Int("products", len(products)))
	return len(products), nil
}

// SyncFrom loads the saved server settings and syncs from f with them.
func (e *Engine) SyncFrom(ctx context.Context, f Fetcher) (int, error) {
	settings, err := LoadSettings(e.store)
	if err != nil {
		return 0, err
	}
	return e.Sync(ctx, func(ctx context.Context) ([]types.Product, error) {
		return f.FetchProducts(ctx, *settings)
	})
}

// Status is the catalog summary shown to the operator.
type Status struct {
	Products int       `json:"products"`
	Synced   bool      `json:"synced"`
	LastSync time.Time `json:"last_sync,omitzero"`
	Online   bool      `json:"online"`
}

// Status reports the catalog size and when it was last synced.
func (e *Engine) Status() (*Status, error) {
	n, err := e.store.ProductCount()
	if err != nil {
		return nil, err
	}
	last, ok, err := e.store.LastSync()
	if err != nil {
		return nil, err
	}
	return &Status{Products: n, Synced: ok, LastSync: last, Online: e.env.Online}, nil
}

// SettingsStore reads and writes config blobs.
type SettingsStore interface {
	GetConfig(key string) ([]byte, error)
	PutConfig(key string, value []byte) error
}

// LoadSettings returns the saved server settings, or ErrNoSettings.
func LoadSettings(s SettingsStore) (*types.ServerSettings, error) {
	data, err := s.GetConfig(types.ConfigKeyServer)
	if errors.Is(err, types.ErrNotFound) {
		return nil, ErrNoSettings
	}
	if err != nil {
		return nil, err
	}
	var settings types.ServerSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("decoding server settings: %w", err)
	}
	return &settings, nil
}

// SaveSettings stores settings as the server config blob.
func SaveSettings(s SettingsStore, settings types.ServerSettings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encoding server settings: %w", err)
	}
	return s.PutConfig(types.ConfigKeyServer, data)
}
