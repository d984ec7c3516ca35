package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/mesh-intelligence/lector/pkg/types"
)

// ReplaceCatalog stages products in a fresh table, swaps it in for the
// current catalog and records lastSync, all in one transaction. A failure at
// any step rolls back to the previous catalog and lastSync.
func (b *Backend) ReplaceCatalog(products []types.Product) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}

	now := b.now()
	return b.inTx("replacing catalog", func(tx *sqlx.Tx) error {
		if err := stageProducts(tx, products); err != nil {
			return err
		}
		if _, err := tx.Exec("DROP TABLE products"); err != nil {
			return ioErr("dropping old catalog", err)
		}
		if _, err := tx.Exec("ALTER TABLE products_stage RENAME TO products"); err != nil {
			return ioErr("swapping catalog", err)
		}
		if err := putConfig(tx, types.ConfigKeyLastSync, []byte(formatTime(now)), now); err != nil {
			return ioErr("recording last sync", err)
		}
		return nil
	})
}

// stageProducts creates products_stage and fills it. The insert statement is
// closed before returning so the table can be renamed.
func stageProducts(tx *sqlx.Tx, products []types.Product) error {
	if _, err := tx.Exec("DROP TABLE IF EXISTS products_stage"); err != nil {
		return ioErr("clearing catalog stage", err)
	}
	if _, err := tx.Exec(createProductsStage); err != nil {
		return ioErr("creating catalog stage", err)
	}

	stmt, err := tx.Preparex("INSERT INTO products_stage (code, description) VALUES (?, ?)")
	if err != nil {
		return ioErr("preparing catalog insert", err)
	}
	defer stmt.Close()

	for i, p := range products {
		if _, err := stmt.Exec(p.Code, p.Description); err != nil {
			return ioErr(fmt.Sprintf("staging product %d (%q)", i, p.Code), err)
		}
	}
	return nil
}

// FindProduct returns the product keyed exactly by code. Failing that, it
// compares codes with leading zeros stripped on both sides and returns the
// first such match in catalog order.
func (b *Backend) FindProduct(code string) (*types.Product, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	var p types.Product
	err := b.db.Get(&p, "SELECT code, description FROM products WHERE code = ?", code)
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, ioErr("finding product "+code, err)
	}

	err = b.db.Get(&p,
		"SELECT code, description FROM products WHERE ltrim(code, '0') = ? ORDER BY rowid LIMIT 1",
		strings.TrimLeft(code, "0"),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %q: %w", code, types.ErrNotFound)
	}
	if err != nil {
		return nil, ioErr("finding product "+code, err)
	}
	return &p, nil
}

// ListProducts returns the whole catalog in the order it was synced.
func (b *Backend) ListProducts() ([]types.Product, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	products := []types.Product{}
	if err := b.db.Select(&products, "SELECT code, description FROM products ORDER BY rowid"); err != nil {
		return nil, ioErr("listing products", err)
	}
	return products, nil
}

// ProductCount returns the number of products in the catalog.
func (b *Backend) ProductCount() (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return 0, types.ErrStoreDetached
	}

	var n int
	if err := b.db.Get(&n, "SELECT COUNT(*) FROM products"); err != nil {
		return 0, ioErr("counting products", err)
	}
	return n, nil
}
