package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/lector/pkg/types"
)

func TestCreateSession(t *testing.T) {
	b := newTestBackend(t)

	id, err := b.CreateSession("DOC-1")
	require.NoError(t, err)
	assert.Positive(t, id)

	s, err := b.GetSession(id)
	require.NoError(t, err)
	assert.Equal(t, id, s.ID)
	assert.Equal(t, "DOC-1", s.DocumentNumber)
	assert.Zero(t, s.TotalItems)
	assert.False(t, s.CreatedAt.IsZero())

	blank, err := b.CreateSession("")
	require.NoError(t, err)
	assert.Greater(t, blank, id)
}

func TestGetSession_Errors(t *testing.T) {
	b := newTestBackend(t)

	_, err := b.GetSession(0)
	assert.ErrorIs(t, err, types.ErrInvalidID)
	_, err = b.GetSession(42)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestListSessions_NewestFirstWithCounts(t *testing.T) {
	b := newTestBackend(t)

	a, err := b.CreateSession("A")
	require.NoError(t, err)
	c, err := b.CreateSession("B")
	require.NoError(t, err)
	d, err := b.CreateSession("C")
	require.NoError(t, err)

	for range 3 {
		_, err := b.AppendItem(c, newItem("0000000001"))
		require.NoError(t, err)
	}
	_, err = b.AppendItem(a, newItem("0000000002"))
	require.NoError(t, err)

	sessions, err := b.ListSessions()
	require.NoError(t, err)
	require.Len(t, sessions, 3)

	assert.Equal(t, []int64{d, c, a}, []int64{sessions[0].ID, sessions[1].ID, sessions[2].ID})
	assert.Equal(t, []int{0, 3, 1}, []int{sessions[0].TotalItems, sessions[1].TotalItems, sessions[2].TotalItems})
}

func TestUpdateSessionDocument(t *testing.T) {
	b := newTestBackend(t)

	id, err := b.CreateSession("")
	require.NoError(t, err)

	require.NoError(t, b.UpdateSessionDocument(id, "INV-2024-01"))
	s, err := b.GetSession(id)
	require.NoError(t, err)
	assert.Equal(t, "INV-2024-01", s.DocumentNumber)

	assert.ErrorIs(t, b.UpdateSessionDocument(id+100, "x"), types.ErrNotFound)
	assert.ErrorIs(t, b.UpdateSessionDocument(-1, "x"), types.ErrInvalidID)
}

func TestDeleteSession_CascadesItems(t *testing.T) {
	b := newTestBackend(t)

	keep, err := b.CreateSession("keep")
	require.NoError(t, err)
	drop, err := b.CreateSession("drop")
	require.NoError(t, err)

	_, err = b.AppendItem(keep, newItem("0000000001"))
	require.NoError(t, err)
	for range 2 {
		_, err = b.AppendItem(drop, newItem("0000000002"))
		require.NoError(t, err)
	}

	require.NoError(t, b.DeleteSession(drop))

	_, err = b.GetSession(drop)
	assert.ErrorIs(t, err, types.ErrNotFound)
	items, err := b.ListItems(drop)
	require.NoError(t, err)
	assert.Empty(t, items)

	items, err = b.ListItems(keep)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	var orphans int
	require.NoError(t, b.db.Get(&orphans, "SELECT COUNT(*) FROM inventory_items WHERE inventory_id = ?", drop))
	assert.Zero(t, orphans)

	assert.ErrorIs(t, b.DeleteSession(drop), types.ErrNotFound)
}
