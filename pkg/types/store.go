package types

import "time"

// Store defines the data-access contract for an inventory count. Callers
// attach to a backend, run operations, and detach when done. Every
// multi-step mutation is one atomic unit: a concurrent reader never sees an
// item without its updated session count, nor a half-replaced catalog.
type Store interface {
	// Attach connects the Store to the backend described by config.
	// Creates the DataDir if it does not exist. Returns ErrAlreadyAttached
	// if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, operations return ErrStoreDetached.
	Detach() error

	// GetConfig returns the value saved under key, or ErrNotFound.
	GetConfig(key string) ([]byte, error)
	// PutConfig saves value under key, overwriting any previous value.
	PutConfig(key string, value []byte) error

	// ReplaceCatalog swaps the whole product catalog for products and
	// records the sync time. On failure neither the catalog nor the sync
	// time changes.
	ReplaceCatalog(products []Product) error
	// FindProduct looks up code exactly, then by code with leading zeros
	// stripped on both sides. Returns ErrNotFound when neither matches.
	FindProduct(code string) (*Product, error)
	// ListProducts returns the catalog in insertion order.
	ListProducts() ([]Product, error)
	// ProductCount returns the number of catalog rows.
	ProductCount() (int, error)
	// LastSync returns the time of the last completed catalog replacement.
	// ok is false when the catalog was never synced.
	LastSync() (t time.Time, ok bool, err error)

	// CreateSession starts a new inventory session and returns its ID.
	CreateSession(documentNumber string) (int64, error)
	// GetSession returns the session with the given ID, or ErrNotFound.
	GetSession(id int64) (*Session, error)
	// ListSessions returns all sessions, newest first.
	ListSessions() ([]Session, error)
	// UpdateSessionDocument changes a session's document number.
	UpdateSessionDocument(id int64, documentNumber string) error
	// DeleteSession removes a session together with all of its items.
	DeleteSession(id int64) error

	// AppendItem adds item to the session and returns the new item ID.
	// Returns ErrNotFound if the session does not exist.
	AppendItem(sessionID int64, item *Item) (int64, error)
	// ListItems returns the session's items in scan order.
	ListItems(sessionID int64) ([]Item, error)
	// DeleteLastItem removes the most recent item of the session. It
	// reports false, without error, when the session has no items.
	DeleteLastItem(sessionID int64) (bool, error)

	// Reset clears every table, including config.
	Reset() error
}
