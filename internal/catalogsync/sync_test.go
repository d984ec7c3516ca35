package catalogsync

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mesh-intelligence/lector/internal/remote"
	"github.com/mesh-intelligence/lector/internal/sqlite"
	"github.com/mesh-intelligence/lector/pkg/types"
)

func newStore(t *testing.T) *sqlite.Backend {
	t.Helper()
	b := sqlite.NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	t.Cleanup(func() { b.Detach() })
	return b
}

func staticFetch(products ...types.Product) FetchFunc {
	return func(context.Context) ([]types.Product, error) { return products, nil }
}

func TestSync_ReplacesCatalog(t *testing.T) {
	store := newStore(t)
	e := New(store, Env{Online: true}, zaptest.NewLogger(t))

	n, err := e.Sync(context.Background(), staticFetch(
		types.Product{Code: "1", Description: "uno"},
		types.Product{Code: "2", Description: "dos"},
	))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	st, err := e.Status()
	require.NoError(t, err)
	assert.Equal(t, 2, st.Products)
	assert.True(t, st.Synced)
	assert.False(t, st.LastSync.IsZero())
	assert.True(t, st.Online)
}

func TestSync_FetchErrorLeavesStoreUntouched(t *testing.T) {
	store := newStore(t)
	e := New(store, Env{Online: true}, zaptest.NewLogger(t))
	_, err := e.Sync(context.Background(), staticFetch(types.Product{Code: "1", Description: "uno"}))
	require.NoError(t, err)
	before, _, err := store.LastSync()
	require.NoError(t, err)

	fetchErr := errors.New("boom")
	n, err := e.Sync(context.Background(), func(context.Context) ([]types.Product, error) {
		return nil, fetchErr
	})
	assert.Same(t, fetchErr, err, "fetch error is returned unchanged")
	assert.Zero(t, n)

	products, err := store.ListProducts()
	require.NoError(t, err)
	assert.Equal(t, []types.Product{{Code: "1", Description: "uno"}}, products)
	after, _, err := store.LastSync()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSync_StoreFailure(t *testing.T) {
	store := newStore(t)
	e := New(store, Env{Online: true}, nil)

	_, err := e.Sync(context.Background(), staticFetch(
		types.Product{Code: "1"}, types.Product{Code: "1"},
	))
	assert.ErrorIs(t, err, types.ErrIO)

	st, err := e.Status()
	require.NoError(t, err)
	assert.False(t, st.Synced)
	assert.Zero(t, st.Products)
}

func TestSync_OfflineDoesNotFetch(t *testing.T) {
	store := newStore(t)
	e := New(store, Env{Online: false}, nil)

	called := false
	_, err := e.Sync(context.Background(), func(context.Context) ([]types.Product, error) {
		called = true
		return nil, nil
	})
	assert.ErrorIs(t, err, remote.ErrUnreachable)
	assert.False(t, called)
}

type fakeFetcher struct {
	got      types.ServerSettings
	products []types.Product
}

func (f *fakeFetcher) FetchProducts(_ context.Context, s types.ServerSettings) ([]types.Product, error) {
	f.got = s
	return f.products, nil
}

func TestSyncFrom(t *testing.T) {
	store := newStore(t)
	e := New(store, Env{Online: true}, nil)
	f := &fakeFetcher{products: []types.Product{{Code: "9", Description: "nueve"}}}

	_, err := e.SyncFrom(context.Background(), f)
	require.ErrorIs(t, err, ErrNoSettings)

	settings := types.ServerSettings{Server: "db", Database: "ventas", User: "u", Password: "p"}
	require.NoError(t, SaveSettings(store, settings))

	n, err := e.SyncFrom(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, settings, f.got)
}

func TestSettingsRoundTrip(t *testing.T) {
	store := newStore(t)

	_, err := LoadSettings(store)
	require.ErrorIs(t, err, ErrNoSettings)

	want := types.ServerSettings{Server: "s", Port: "1433", Database: "d", User: "u", Password: "p", TrustServerCertificate: true}
	require.NoError(t, SaveSettings(store, want))
	got, err := LoadSettings(store)
	require.NoError(t, err)
	assert.Equal(t, want, *got)

	require.NoError(t, store.PutConfig(types.ConfigKeyServer, []byte("not json")))
	_, err = LoadSettings(store)
	assert.Error(t, err)
}
