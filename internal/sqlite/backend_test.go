// Tests for the SQLite backend lifecycle and schema handling.
package sqlite

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/lector/pkg/types"
)

// newTestBackend attaches a backend to a fresh temp dir with a manual clock
// that advances one second per call.
func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	b := NewBackend()
	clock := time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC)
	b.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	require.NoError(t, b.Attach(types.Config{
		Backend: types.BackendSQLite,
		DataDir: t.TempDir(),
	}))
	t.Cleanup(func() { b.Detach() })
	return b
}

func TestBackend_Attach(t *testing.T) {
	tmpDir := t.TempDir()

	b := NewBackend()
	config := types.Config{
		Backend: types.BackendSQLite,
		DataDir: filepath.Join(tmpDir, "nested", "data"),
	}

	require.NoError(t, b.Attach(config))
	defer b.Detach()

	dbPath := filepath.Join(tmpDir, "nested", "data", DBFileName)
	_, err := os.Stat(dbPath)
	require.NoError(t, err, "lector.db not created")
	assert.Equal(t, dbPath, b.Path())

	assert.ErrorIs(t, b.Attach(config), types.ErrAlreadyAttached)
}

func TestBackend_AttachInvalidConfig(t *testing.T) {
	b := NewBackend()
	assert.ErrorIs(t, b.Attach(types.Config{DataDir: t.TempDir()}), types.ErrBackendEmpty)
	assert.ErrorIs(t, b.Attach(types.Config{Backend: "dexie", DataDir: t.TempDir()}), types.ErrBackendUnknown)
}

func TestBackend_Detach(t *testing.T) {
	b := newTestBackend(t)

	require.NoError(t, b.Detach())
	require.NoError(t, b.Detach(), "second Detach should not error")
	assert.Equal(t, "", b.Path())

	_, err := b.CreateSession("001")
	assert.ErrorIs(t, err, types.ErrStoreDetached)
	_, err = b.GetConfig(types.ConfigKeyServer)
	assert.ErrorIs(t, err, types.ErrStoreDetached)
	assert.ErrorIs(t, b.ReplaceCatalog(nil), types.ErrStoreDetached)
	_, err = b.FindProduct("1")
	assert.ErrorIs(t, err, types.ErrStoreDetached)
	_, err = b.ListSessions()
	assert.ErrorIs(t, err, types.ErrStoreDetached)
	_, err = b.AppendItem(1, &types.Item{RawBarcode: validRaw})
	assert.ErrorIs(t, err, types.ErrStoreDetached)
	_, err = b.DeleteLastItem(1)
	assert.ErrorIs(t, err, types.ErrStoreDetached)
	assert.ErrorIs(t, b.Reset(), types.ErrStoreDetached)
}

func TestBackend_DataSurvivesReattach(t *testing.T) {
	dir := t.TempDir()
	config := types.Config{Backend: types.BackendSQLite, DataDir: dir}

	b := NewBackend()
	require.NoError(t, b.Attach(config))
	id, err := b.CreateSession("DOC-7")
	require.NoError(t, err)
	_, err = b.AppendItem(id, newItem("0000000123"))
	require.NoError(t, err)
	require.NoError(t, b.ReplaceCatalog([]types.Product{{Code: "123", Description: "Queso"}}))
	require.NoError(t, b.Detach())

	b2 := NewBackend()
	require.NoError(t, b2.Attach(config))
	defer b2.Detach()

	s, err := b2.GetSession(id)
	require.NoError(t, err)
	assert.Equal(t, "DOC-7", s.DocumentNumber)
	assert.Equal(t, 1, s.TotalItems)

	p, err := b2.FindProduct("123")
	require.NoError(t, err)
	assert.Equal(t, "Queso", p.Description)
}

func TestBackend_RefusesOtherSchemaVersion(t *testing.T) {
	dir := t.TempDir()
	db, err := sqlx.Open("sqlite", filepath.Join(dir, DBFileName))
	require.NoError(t, err)
	_, err = db.Exec("PRAGMA user_version = 7")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	b := NewBackend()
	err = b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir})
	assert.ErrorIs(t, err, types.ErrSchemaVersion)
}

func TestBackend_Reset(t *testing.T) {
	b := newTestBackend(t)

	require.NoError(t, b.PutConfig(types.ConfigKeyServer, []byte(`{"server":"x"}`)))
	require.NoError(t, b.ReplaceCatalog([]types.Product{{Code: "1", Description: "a"}}))
	id, err := b.CreateSession("001")
	require.NoError(t, err)
	_, err = b.AppendItem(id, newItem("0000000001"))
	require.NoError(t, err)

	require.NoError(t, b.Reset())

	_, err = b.GetConfig(types.ConfigKeyServer)
	assert.ErrorIs(t, err, types.ErrNotFound)
	n, err := b.ProductCount()
	require.NoError(t, err)
	assert.Zero(t, n)
	sessions, err := b.ListSessions()
	require.NoError(t, err)
	assert.Empty(t, sessions)
	_, ok, err := b.LastSync()
	require.NoError(t, err)
	assert.False(t, ok)

	next, err := b.CreateSession("002")
	require.NoError(t, err)
	assert.Greater(t, next, id, "session IDs are not reused after reset")
}

func TestConfig_PutGet(t *testing.T) {
	b := newTestBackend(t)

	_, err := b.GetConfig(types.ConfigKeyServer)
	require.ErrorIs(t, err, types.ErrNotFound)

	require.NoError(t, b.PutConfig(types.ConfigKeyServer, []byte(`{"server":"a"}`)))
	require.NoError(t, b.PutConfig(types.ConfigKeyServer, []byte(`{"server":"b"}`)))

	got, err := b.GetConfig(types.ConfigKeyServer)
	require.NoError(t, err)
	assert.JSONEq(t, `{"server":"b"}`, string(got))

	assert.ErrorIs(t, b.PutConfig("", []byte("x")), types.ErrInvalidID)
}
