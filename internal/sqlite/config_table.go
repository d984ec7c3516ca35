package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/mesh-intelligence/lector/pkg/types"
)

// GetConfig returns the value stored under key, or ErrNotFound.
func (b *Backend) GetConfig(key string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	var value []byte
	err := b.db.Get(&value, "SELECT value FROM config WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("config %q: %w", key, types.ErrNotFound)
	}
	if err != nil {
		return nil, ioErr("reading config "+key, err)
	}
	return value, nil
}

// PutConfig stores value under key. The last write wins.
func (b *Backend) PutConfig(key string, value []byte) error {
	if key == "" {
		return types.ErrInvalidID
	}
	if value == nil {
		value = []byte{}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}

	if err := putConfig(b.db, key, value, b.now()); err != nil {
		return ioErr("writing config "+key, err)
	}
	return nil
}

// LastSync returns when the catalog was last replaced.
func (b *Backend) LastSync() (time.Time, bool, error) {
	value, err := b.GetConfig(types.ConfigKeyLastSync)
	if errors.Is(err, types.ErrNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	t, err := parseTime(string(value))
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parsing last sync %q: %w", value, err)
	}
	return t, true, nil
}

func putConfig(e sqlx.Execer, key string, value []byte, now time.Time) error {
	_, err := e.Exec(
		`INSERT INTO config (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, formatTime(now),
	)
	return err
}
