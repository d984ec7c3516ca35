package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/mesh-intelligence/lector/pkg/barcode"
	"github.com/mesh-intelligence/lector/pkg/types"
)

// itemRow is the inventory_items row shape.
type itemRow struct {
	ID          int64           `db:"id"`
	InventoryID int64           `db:"inventory_id"`
	RawBarcode  string          `db:"raw_barcode"`
	ProductCode string          `db:"product_code"`
	Weight      decimal.Decimal `db:"weight"`
	Units       decimal.Decimal `db:"units"`
	Batch       string          `db:"batch"`
	Consecutive string          `db:"consecutive"`
	ScannedAt   string          `db:"scanned_at"`
}

func hydrateItem(r itemRow) (types.Item, error) {
	scannedAt, err := parseTime(r.ScannedAt)
	if err != nil {
		return types.Item{}, fmt.Errorf("parsing item %d scanned_at: %w", r.ID, err)
	}
	return types.Item{
		ID:          r.ID,
		SessionID:   r.InventoryID,
		RawBarcode:  r.RawBarcode,
		ProductCode: r.ProductCode,
		Weight:      r.Weight,
		Units:       r.Units,
		Batch:       r.Batch,
		Consecutive: r.Consecutive,
		ScannedAt:   scannedAt,
	}, nil
}

// AppendItem inserts item into the session and refreshes the session's
// total_items in the same transaction. item.ID and item.SessionID are set on
// success; a zero ScannedAt is stamped with the current time.
func (b *Backend) AppendItem(sessionID int64, item *types.Item) (int64, error) {
	if sessionID <= 0 {
		return 0, types.ErrInvalidID
	}
	if item == nil || utf8.RuneCountInString(item.RawBarcode) != barcode.Length {
		return 0, types.ErrInvalidData
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return 0, types.ErrStoreDetached
	}

	scannedAt := item.ScannedAt
	if scannedAt.IsZero() {
		scannedAt = b.now()
	}

	var id int64
	op := fmt.Sprintf("appending item to session %d", sessionID)
	err := b.inTx(op, func(tx *sqlx.Tx) error {
		ok, err := exists(tx, "inventories", sessionID)
		if err != nil {
			return ioErr(op, err)
		}
		if !ok {
			return fmt.Errorf("session %d: %w", sessionID, types.ErrNotFound)
		}

		res, err := tx.Exec(
			`INSERT INTO inventory_items
			 (inventory_id, raw_barcode, product_code, weight, units, batch, consecutive, scanned_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			sessionID, item.RawBarcode, item.ProductCode,
			item.Weight.String(), item.Units.String(),
			item.Batch, item.Consecutive, formatTime(scannedAt),
		)
		if err != nil {
			return ioErr(op, err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return ioErr(op, err)
		}
		return recount(tx, sessionID)
	})
	if err != nil {
		return 0, err
	}

	item.ID = id
	item.SessionID = sessionID
	item.ScannedAt = scannedAt
	return id, nil
}

// ListItems returns the items of a session in scan order. An unknown
// session has no items.
func (b *Backend) ListItems(sessionID int64) ([]types.Item, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	var rows []itemRow
	err := b.db.Select(&rows, `
		SELECT id, inventory_id, raw_barcode, product_code, weight, units, batch, consecutive, scanned_at
		FROM inventory_items WHERE inventory_id = ? ORDER BY id ASC`, sessionID)
	if err != nil {
		return nil, ioErr(fmt.Sprintf("listing items of session %d", sessionID), err)
	}

	items := make([]types.Item, 0, len(rows))
	for _, r := range rows {
		it, err := hydrateItem(r)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, nil
}

// DeleteLastItem removes the session's item with the highest ID and
// refreshes total_items. It returns false when there is nothing to remove.
func (b *Backend) DeleteLastItem(sessionID int64) (bool, error) {
	if sessionID <= 0 {
		return false, types.ErrInvalidID
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return false, types.ErrStoreDetached
	}

	removed := false
	op := fmt.Sprintf("deleting last item of session %d", sessionID)
	err := b.inTx(op, func(tx *sqlx.Tx) error {
		ok, err := exists(tx, "inventories", sessionID)
		if err != nil {
			return ioErr(op, err)
		}
		if !ok {
			return fmt.Errorf("session %d: %w", sessionID, types.ErrNotFound)
		}

		var last int64
		err = tx.Get(&last,
			"SELECT id FROM inventory_items WHERE inventory_id = ? ORDER BY id DESC LIMIT 1", sessionID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return ioErr(op, err)
		}

		if _, err := tx.Exec("DELETE FROM inventory_items WHERE id = ?", last); err != nil {
			return ioErr(op, err)
		}
		if err := recount(tx, sessionID); err != nil {
			return err
		}
		removed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

// recount stores the live item count of a session in total_items.
func recount(tx *sqlx.Tx, sessionID int64) error {
	_, err := tx.Exec(
		`UPDATE inventories
		 SET total_items = (SELECT COUNT(*) FROM inventory_items WHERE inventory_id = ?)
		 WHERE id = ?`,
		sessionID, sessionID,
	)
	if err != nil {
		return ioErr(fmt.Sprintf("recounting session %d", sessionID), err)
	}
	return nil
}
