// Package lector holds build metadata for the lector tools.
package lector

// Version is the release version. Overridden at build time with
// -ldflags "-X github.com/mesh-intelligence/lector/pkg/lector.Version=...".
var Version = "0.1.0-dev"
