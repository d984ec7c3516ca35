// Package types defines the Store interface, the entity types of an inventory
// count (products, sessions, items), the scanner's connection settings, and
// the standard errors shared by every lector backend.
package types
