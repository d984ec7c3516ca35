package types

import "errors"

// Config holds backend selection and parameters for Store.Attach.
type Config struct {
	Backend string `json:"backend" yaml:"backend"`
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	return nil
}

// Well-known config keys. Values stored under them are opaque to the store.
const (
	ConfigKeyServer   = "sqlserver"
	ConfigKeyLastSync = "lastSync"
)

// ServerSettings are the remote catalog connection parameters saved under
// ConfigKeyServer. They are passed through to the remote service untouched;
// the JSON names match what that service expects.
type ServerSettings struct {
	Server                 string `json:"server" yaml:"server"`
	Port                   string `json:"port" yaml:"port"`
	Database               string `json:"database" yaml:"database"`
	User                   string `json:"user" yaml:"user"`
	Password               string `json:"password" yaml:"password"`
	TrustServerCertificate bool   `json:"trustServerCertificate" yaml:"trust_server_certificate"`
}
