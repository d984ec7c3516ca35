// Config loading for the lector CLI.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/lector/internal/logger"
	"github.com/mesh-intelligence/lector/internal/paths"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	envPrefix = "LECTOR"

	cfgKeyBackend     = "backend"
	cfgKeyDataDir     = "data_dir"
	cfgKeyAPIURL      = "api_url"
	cfgKeyOnline      = "online"
	cfgKeyLogLevel    = "log.level"
	cfgKeyLogEncoding = "log.encoding"
	cfgKeyTimezone    = "timezone"

	defaultBackend = "sqlite"
	defaultAPIURL  = "http://localhost:3002"
)

// fileConfig is the shape of the config.yaml written on first run.
type fileConfig struct {
	Backend  string        `yaml:"backend"`
	DataDir  string        `yaml:"data_dir,omitempty"`
	APIURL   string        `yaml:"api_url"`
	Online   bool          `yaml:"online"`
	Timezone string        `yaml:"timezone,omitempty"`
	Log      fileLogConfig `yaml:"log"`
}

type fileLogConfig struct {
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding"`
}

func defaultFileConfig() fileConfig {
	d := logger.DefaultConfig()
	return fileConfig{
		Backend: defaultBackend,
		APIURL:  defaultAPIURL,
		Online:  true,
		Log:     fileLogConfig{Level: d.Level, Encoding: d.Encoding},
	}
}

// loadConfig reads config.yaml from configDir, creating the directory and a
// default file on first run. LECTOR_* environment variables override file
// values, e.g. LECTOR_API_URL or LECTOR_LOG_LEVEL.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := ensureConfigDir(configDir); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	def := defaultFileConfig()
	v := viper.New()
	v.SetDefault(cfgKeyBackend, def.Backend)
	v.SetDefault(cfgKeyAPIURL, def.APIURL)
	v.SetDefault(cfgKeyOnline, def.Online)
	v.SetDefault(cfgKeyLogLevel, def.Log.Level)
	v.SetDefault(cfgKeyLogEncoding, def.Log.Encoding)
	v.SetDefault(cfgKeyTimezone, "")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// ensureConfigDir creates the config directory if it does not exist.
func ensureConfigDir(configDir string) error {
	return os.MkdirAll(configDir, 0o755)
}

// ensureDefaultConfigFile writes a default config.yaml unless one exists.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, paths.ConfigFileName)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	data, err := yaml.Marshal(defaultFileConfig())
	if err != nil {
		return fmt.Errorf("encode default config: %w", err)
	}
	header := "# lector configuration. LECTOR_* environment variables override these keys.\n"
	return os.WriteFile(path, append([]byte(header), data...), 0o644)
}

// loggerConfig builds the logger settings from v.
func loggerConfig(v *viper.Viper, verbose bool) *logger.ZapLoggerConfig {
	cfg := logger.DefaultConfig()
	cfg.Level = v.GetString(cfgKeyLogLevel)
	cfg.Encoding = v.GetString(cfgKeyLogEncoding)
	if verbose {
		cfg.Level = "debug"
		cfg.DisableCaller = false
	}
	return cfg
}

// exportLocation returns the zone export dates render in. Empty means the
// local zone.
func exportLocation(v *viper.Viper) (*time.Location, error) {
	name := v.GetString(cfgKeyTimezone)
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", name, err)
	}
	return loc, nil
}
