package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mesh-intelligence/lector/pkg/types"
)

// sessionRow is the inventories row shape.
type sessionRow struct {
	ID             int64  `db:"id"`
	DocumentNumber string `db:"document_number"`
	CreatedAt      string `db:"created_at"`
	TotalItems     int    `db:"total_items"`
}

func hydrateSession(r sessionRow) (types.Session, error) {
	createdAt, err := parseTime(r.CreatedAt)
	if err != nil {
		return types.Session{}, fmt.Errorf("parsing session %d created_at: %w", r.ID, err)
	}
	return types.Session{
		ID:             r.ID,
		DocumentNumber: r.DocumentNumber,
		CreatedAt:      createdAt,
		TotalItems:     r.TotalItems,
	}, nil
}

// CreateSession inserts a session with no items and returns its ID. IDs are
// never reused, even after the session is deleted.
func (b *Backend) CreateSession(documentNumber string) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return 0, types.ErrStoreDetached
	}

	res, err := b.db.Exec(
		"INSERT INTO inventories (document_number, created_at, total_items) VALUES (?, ?, 0)",
		documentNumber, formatTime(b.now()),
	)
	if err != nil {
		return 0, ioErr("creating session", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, ioErr("reading session id", err)
	}
	return id, nil
}

// GetSession returns one session with its maintained item count.
func (b *Backend) GetSession(id int64) (*types.Session, error) {
	if id <= 0 {
		return nil, types.ErrInvalidID
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	var row sessionRow
	err := b.db.Get(&row,
		"SELECT id, document_number, created_at, total_items FROM inventories WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %d: %w", id, types.ErrNotFound)
	}
	if err != nil {
		return nil, ioErr(fmt.Sprintf("getting session %d", id), err)
	}
	s, err := hydrateSession(row)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListSessions returns every session, newest first, each with its item
// count computed at read time.
func (b *Backend) ListSessions() ([]types.Session, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	var rows []sessionRow
	err := b.db.Select(&rows, `
		SELECT s.id, s.document_number, s.created_at,
		       (SELECT COUNT(*) FROM inventory_items i WHERE i.inventory_id = s.id) AS total_items
		FROM inventories s
		ORDER BY s.created_at DESC, s.id DESC`)
	if err != nil {
		return nil, ioErr("listing sessions", err)
	}

	sessions := make([]types.Session, 0, len(rows))
	for _, r := range rows {
		s, err := hydrateSession(r)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

// UpdateSessionDocument sets the document number of a session.
func (b *Backend) UpdateSessionDocument(id int64, documentNumber string) error {
	if id <= 0 {
		return types.ErrInvalidID
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}

	res, err := b.db.Exec("UPDATE inventories SET document_number = ? WHERE id = ?", documentNumber, id)
	if err != nil {
		return ioErr(fmt.Sprintf("updating session %d", id), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return ioErr(fmt.Sprintf("updating session %d", id), err)
	}
	if n == 0 {
		return fmt.Errorf("session %d: %w", id, types.ErrNotFound)
	}
	return nil
}

// DeleteSession removes a session and cascades to its items in the same
// transaction.
func (b *Backend) DeleteSession(id int64) error {
	if id <= 0 {
		return types.ErrInvalidID
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}

	op := fmt.Sprintf("deleting session %d", id)
	return b.inTx(op, func(tx *sqlx.Tx) error {
		ok, err := exists(tx, "inventories", id)
		if err != nil {
			return ioErr(op, err)
		}
		if !ok {
			return fmt.Errorf("session %d: %w", id, types.ErrNotFound)
		}
		if _, err := tx.Exec("DELETE FROM inventory_items WHERE inventory_id = ?", id); err != nil {
			return ioErr("deleting session items", err)
		}
		if _, err := tx.Exec("DELETE FROM inventories WHERE id = ?", id); err != nil {
			return ioErr(op, err)
		}
		return nil
	})
}
