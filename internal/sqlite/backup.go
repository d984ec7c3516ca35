package sqlite

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"

	"github.com/mesh-intelligence/lector/pkg/types"
)

// Backup file names written by Backup.
const (
	BackupProductsFile = "products.jsonl"
	BackupSessionsFile = "sessions.jsonl"
	BackupItemsFile    = "items.jsonl"
)

// BackupSummary counts the records Backup wrote.
type BackupSummary struct {
	Dir      string `json:"dir"`
	Products int    `json:"products"`
	Sessions int    `json:"sessions"`
	Items    int    `json:"items"`
}

// Backup writes the catalog, sessions and items into dir as JSONL files,
// one record per line. All three are read in one transaction, so they
// describe the same moment. Config rows, which hold credentials, are not
// written.
func (b *Backend) Backup(dir string) (*BackupSummary, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	var (
		products []types.Product
		sessions []types.Session
		items    []types.Item
	)
	err := b.inTx("reading backup snapshot", func(tx *sqlx.Tx) error {
		if err := tx.Select(&products, "SELECT code, description FROM products ORDER BY rowid"); err != nil {
			return ioErr("reading products", err)
		}

		var srows []sessionRow
		if err := tx.Select(&srows,
			"SELECT id, document_number, created_at, total_items FROM inventories ORDER BY id"); err != nil {
			return ioErr("reading sessions", err)
		}
		for _, r := range srows {
			s, err := hydrateSession(r)
			if err != nil {
				return err
			}
			sessions = append(sessions, s)
		}

		var irows []itemRow
		if err := tx.Select(&irows, `
			SELECT id, inventory_id, raw_barcode, product_code, weight, units, batch, consecutive, scanned_at
			FROM inventory_items ORDER BY id`); err != nil {
			return ioErr("reading items", err)
		}
		for _, r := range irows {
			it, err := hydrateItem(r)
			if err != nil {
				return err
			}
			items = append(items, it)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, ioErr("creating backup dir", err)
	}
	if err := writeJSONL(filepath.Join(dir, BackupProductsFile), products); err != nil {
		return nil, fmt.Errorf("backing up products: %w", err)
	}
	if err := writeJSONL(filepath.Join(dir, BackupSessionsFile), sessions); err != nil {
		return nil, fmt.Errorf("backing up sessions: %w", err)
	}
	if err := writeJSONL(filepath.Join(dir, BackupItemsFile), items); err != nil {
		return nil, fmt.Errorf("backing up items: %w", err)
	}

	return &BackupSummary{
		Dir:      dir,
		Products: len(products),
		Sessions: len(sessions),
		Items:    len(items),
	}, nil
}
