package types

import "errors"

// Store lifecycle errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
	ErrSchemaVersion   = errors.New("unsupported schema version")
)

// Store operation errors. ErrIO marks a storage failure; the underlying
// driver or filesystem error is wrapped alongside it.
var (
	ErrNotFound     = errors.New("entity not found")
	ErrInvalidID    = errors.New("invalid entity ID")
	ErrInvalidData  = errors.New("invalid entity data")
	ErrIO           = errors.New("store i/o failure")
	ErrEmptySession = errors.New("session has no items")
)
