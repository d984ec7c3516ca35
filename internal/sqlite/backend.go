// Package sqlite implements the lector Store on a single SQLite file.
// The file is the source of truth: it survives restarts, so counting can
// continue offline and resume where it stopped.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/lector/pkg/types"
)

// DBFileName is the database file created inside Config.DataDir.
const DBFileName = "lector.db"

// timeLayout is fixed width so that lexical order of stored timestamps is
// chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Compile-time interface check.
var _ types.Store = (*Backend)(nil)

// Backend implements types.Store. A sync.RWMutex serializes mutations and a
// single connection serializes SQLite access, so each transaction is one
// atomic unit for every reader.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sqlx.DB

	// now is the clock used for created_at, scanned_at and lastSync.
	now func() time.Time
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{now: time.Now}
}

// Attach opens (or creates) DataDir/lector.db and prepares the schema.
// Returns ErrAlreadyAttached if already attached and ErrSchemaVersion if the
// file was written by an unsupported schema version.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return ioErr("creating data dir", err)
	}

	dbPath := filepath.Join(dataDir, DBFileName)
	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return ioErr("opening database", err)
	}
	db.SetMaxOpenConns(1)

	if err := ensureSchema(db); err != nil {
		db.Close()
		return err
	}

	b.db = db
	b.config = config
	b.attached = true
	return nil
}

// Detach closes the database. After Detach, all operations return
// ErrStoreDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	b.attached = false
	if b.db != nil {
		err := b.db.Close()
		b.db = nil
		if err != nil {
			return ioErr("closing database", err)
		}
	}
	return nil
}

// Path returns the database file path, or "" when detached.
func (b *Backend) Path() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return ""
	}
	dataDir := b.config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	return filepath.Join(dataDir, DBFileName)
}

// ensureSchema creates the schema on a fresh file and checks the version of
// an existing one.
func ensureSchema(db *sqlx.DB) error {
	var version int
	if err := db.Get(&version, "PRAGMA user_version"); err != nil {
		return ioErr("reading schema version", err)
	}
	switch version {
	case schemaVersion:
		return nil
	case 0:
	default:
		return fmt.Errorf("%w: %d (expected %d)", types.ErrSchemaVersion, version, schemaVersion)
	}

	tx, err := db.Beginx()
	if err != nil {
		return ioErr("beginning schema transaction", err)
	}
	defer tx.Rollback()

	for _, ddl := range schemaDDL {
		if _, err := tx.Exec(ddl); err != nil {
			return ioErr("creating schema", err)
		}
	}
	for _, ddl := range indexDDL {
		if _, err := tx.Exec(ddl); err != nil {
			return ioErr("creating index", err)
		}
	}
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return ioErr("setting schema version", err)
	}
	if err := tx.Commit(); err != nil {
		return ioErr("committing schema", err)
	}
	return nil
}

// inTx runs fn in a transaction and commits it if fn succeeds. The caller
// must hold b.mu.
func (b *Backend) inTx(op string, fn func(tx *sqlx.Tx) error) error {
	tx, err := b.db.Beginx()
	if err != nil {
		return ioErr(op, err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return ioErr(op, err)
	}
	return nil
}

// Reset clears every table in one transaction. ID sequences are kept, so
// session and item IDs are never reused.
func (b *Backend) Reset() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}

	return b.inTx("resetting store", func(tx *sqlx.Tx) error {
		for _, table := range []string{"inventory_items", "inventories", "products", "config"} {
			if _, err := tx.Exec("DELETE FROM " + table); err != nil {
				return ioErr("clearing "+table, err)
			}
		}
		return nil
	})
}

// ioErr tags a driver or filesystem error with types.ErrIO.
func ioErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, types.ErrIO, err)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// exists reports whether a row with the given id is in table.
func exists(q sqlx.Queryer, table string, id int64) (bool, error) {
	var one int
	err := sqlx.Get(q, &one, "SELECT 1 FROM "+table+" WHERE id = ?", id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
