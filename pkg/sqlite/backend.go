// Package sqlite provides the public API for the SQLite lector Store.
// This package exposes the factory function for creating SQLite backends
// while keeping implementation details internal.
package sqlite

import (
	"github.com/mesh-intelligence/lector/internal/sqlite"
	"github.com/mesh-intelligence/lector/pkg/types"
)

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	store := sqlite.NewBackend()
//	err := store.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".lector-db",
//	})
//	defer store.Detach()
func NewBackend() types.Store {
	return sqlite.NewBackend()
}
