package scan

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mesh-intelligence/lector/internal/sqlite"
	"github.com/mesh-intelligence/lector/pkg/barcode"
	"github.com/mesh-intelligence/lector/pkg/types"
)

const fixture = "900000001230003340000200B1234CONSEC0001"

func newStore(t *testing.T) *sqlite.Backend {
	t.Helper()
	b := sqlite.NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	t.Cleanup(func() { b.Detach() })
	return b
}

func newController(t *testing.T, store Store) (*Controller, *Metrics) {
	t.Helper()
	m := NewMetrics(prometheus.NewRegistry())
	return NewController(store, m, zaptest.NewLogger(t)), m
}

func TestScan_Accepted(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.ReplaceCatalog([]types.Product{{Code: "1230", Description: "Jamon"}}))
	sid, err := store.CreateSession("001")
	require.NoError(t, err)

	c, m := newController(t, store)
	res := c.Scan("  "+fixture+"\n", sid)

	require.True(t, res.Success, "err: %v", res.Err)
	assert.NoError(t, res.Err)
	assert.Equal(t, Reported, res.State)
	assert.NotEqual(t, [16]byte{}, [16]byte(res.ID))
	assert.Equal(t, fixture, res.RawBarcode)
	require.NotNil(t, res.Product)
	assert.Equal(t, "Jamon", res.Product.Description)
	assert.Positive(t, res.ItemID)

	items, err := store.ListItems(sid)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, res.ItemID, items[0].ID)
	assert.Equal(t, "0000001230", items[0].ProductCode)
	assert.Equal(t, "B1234", items[0].Batch)

	s, err := store.GetSession(sid)
	require.NoError(t, err)
	assert.Equal(t, 1, s.TotalItems)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Scans.WithLabelValues(OutcomeAccepted)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ProductMisses))
}

func TestScan_RejectedLeavesStoreUntouched(t *testing.T) {
	store := newStore(t)
	sid, err := store.CreateSession("")
	require.NoError(t, err)
	c, m := newController(t, store)

	tests := []struct {
		name string
		raw  string
		want error
	}{
		{"short", "9000", barcode.ErrInvalidLength},
		{"prefix", "80" + fixture[2:], barcode.ErrInvalidPrefix},
		{"numeric", fixture[:12] + "00A3" + fixture[16:], barcode.ErrInvalidNumeric},
		{"multibyte short", "90" + "0000001230" + "003340" + "000200" + "B12é" + "CONSEC0001", barcode.ErrInvalidLength},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.Scan(tt.raw, sid)
			assert.False(t, res.Success)
			assert.ErrorIs(t, res.Err, tt.want)
			assert.Equal(t, tt.raw, res.RawBarcode)
			assert.Equal(t, Rejected, res.State)
			assert.Nil(t, res.Decoded)
			assert.Zero(t, res.ItemID)
		})
	}

	items, err := store.ListItems(sid)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, 4.0, testutil.ToFloat64(m.Scans.WithLabelValues(OutcomeRejected)))
	assert.Equal(t, Rejected, c.State())
}

func TestScan_UnknownProductStillStored(t *testing.T) {
	store := newStore(t)
	sid, err := store.CreateSession("")
	require.NoError(t, err)
	c, m := newController(t, store)

	res := c.Scan(fixture, sid)
	require.True(t, res.Success)
	assert.Nil(t, res.Product)
	assert.Positive(t, res.ItemID)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProductMisses))
}

func TestScan_NoSessionSkipsPersistence(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.ReplaceCatalog([]types.Product{{Code: "0000001230", Description: "Jamon"}}))
	c, _ := newController(t, store)

	res := c.Scan(fixture, NoSession)
	require.True(t, res.Success)
	require.NotNil(t, res.Product)
	assert.Equal(t, "Jamon", res.Product.Description, "zero-stripped lookup finds the padded row")
	assert.Zero(t, res.ItemID)

	sessions, err := store.ListSessions()
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestScan_StoreFailureIsFatal(t *testing.T) {
	store := newStore(t)
	c, m := newController(t, store)

	res := c.Scan(fixture, 777)
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, types.ErrNotFound)
	assert.NotNil(t, res.Decoded)
	assert.Zero(t, res.ItemID)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Scans.WithLabelValues(OutcomeFailed)))
}

// lookupErrStore fails product lookups with an I/O error.
type lookupErrStore struct{ Store }

func (lookupErrStore) FindProduct(string) (*types.Product, error) {
	return nil, errors.New("catalog unreadable")
}

func TestScan_LookupFailureIsNotFatal(t *testing.T) {
	store := newStore(t)
	sid, err := store.CreateSession("")
	require.NoError(t, err)
	c, _ := newController(t, lookupErrStore{store})

	res := c.Scan(fixture, sid)
	assert.True(t, res.Success)
	assert.Nil(t, res.Product)
	assert.Positive(t, res.ItemID)
}

func TestScan_ConcurrentCallersAreSerialized(t *testing.T) {
	store := newStore(t)
	sid, err := store.CreateSession("")
	require.NoError(t, err)
	c, m := newController(t, store)

	const n = 20
	var wg sync.WaitGroup
	ids := make(chan int64, n)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := c.Scan(fixture, sid)
			if res.Success {
				ids <- res.ItemID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[int64]bool{}
	for id := range ids {
		assert.False(t, seen[id], "duplicate item id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)

	s, err := store.GetSession(sid)
	require.NoError(t, err)
	assert.Equal(t, n, s.TotalItems)
	assert.Equal(t, float64(n), testutil.ToFloat64(m.Scans.WithLabelValues(OutcomeAccepted)))
}

func TestProcess(t *testing.T) {
	store := newStore(t)
	sid, err := store.CreateSession("")
	require.NoError(t, err)
	c, _ := newController(t, store)

	input := strings.Join([]string{fixture, "", "   ", "garbage", fixture + "\r"}, "\n")
	var results []Result
	err = c.Process(context.Background(), strings.NewReader(input), sid, func(r Result) {
		results = append(results, r)
	})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.True(t, results[2].Success)

	items, err := store.ListItems(sid)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestProcess_StopsOnCancel(t *testing.T) {
	store := newStore(t)
	c, _ := newController(t, store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := c.Process(ctx, strings.NewReader(fixture+"\n"), NoSession, func(Result) { called = true })
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestProcess_CancelWhileWaitingForInput(t *testing.T) {
	store := newStore(t)
	sid, err := store.CreateSession("")
	require.NoError(t, err)
	c, _ := newController(t, store)

	pr, pw := io.Pipe()
	t.Cleanup(func() { pw.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	scanned := make(chan Result, 1)
	errc := make(chan error, 1)
	go func() {
		errc <- c.Process(ctx, pr, sid, func(r Result) { scanned <- r })
	}()

	_, err = io.WriteString(pw, fixture+"\n")
	require.NoError(t, err)
	select {
	case r := <-scanned:
		assert.True(t, r.Success)
	case <-time.After(5 * time.Second):
		t.Fatal("scan was not processed")
	}

	cancel()
	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Process still waiting for input after cancel")
	}

	items, err := store.ListItems(sid)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

// blockingStore holds product lookups until release is closed.
type blockingStore struct {
	Store
	entered chan struct{}
	release chan struct{}
}

func (s blockingStore) FindProduct(code string) (*types.Product, error) {
	close(s.entered)
	<-s.release
	return s.Store.FindProduct(code)
}

func TestState_VisibleWhileScanRuns(t *testing.T) {
	store := newStore(t)
	bs := blockingStore{Store: store, entered: make(chan struct{}), release: make(chan struct{})}
	c, _ := newController(t, bs)
	assert.Equal(t, Idle, c.State())

	done := make(chan Result, 1)
	go func() { done <- c.Scan(fixture, NoSession) }()

	select {
	case <-bs.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("scan never reached product lookup")
	}
	assert.Equal(t, Resolving, c.State())

	close(bs.release)
	res := <-done
	assert.True(t, res.Success)
	assert.Equal(t, Reported, c.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "reported", Reported.String())
	assert.Equal(t, "State(42)", State(42).String())
}
