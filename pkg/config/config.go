package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

// envPrefix is stripped from environment variables before they're mapped onto
// config keys, e.g. SHELFTRACK_SERVER_PORT -> server.port.
const envPrefix = "SHELFTRACK_"

type Config struct {
	Environment string `koanf:"environment"`

	ServerHost string `koanf:"server.host"`
	ServerPort int    `koanf:"server.port"`

	DatabaseFilePath          string        `koanf:"database.filepath"`
	DatabaseDebug             bool          `koanf:"database.debug"`
	DatabaseBusyTimeout       time.Duration `koanf:"database.busy_timeout"`
	DatabaseMaxRetries        int           `koanf:"database.max_retries"`
	DatabaseConnectRetryCount int           `koanf:"database.connect_retry_count"`
	DatabaseConnectRetryDelay time.Duration `koanf:"database.connect_retry_delay"`

	JWTSecret string `koanf:"jwt.secret"`
}

// New loads the configuration from defaults, an optional YAML file (pointed at
// by SHELFTRACK_CONFIG_FILE), and SHELFTRACK_-prefixed environment variables,
// in that order of precedence.
func New() (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"environment":                  "development",
		"server.host":                  "127.0.0.1",
		"server.port":                  4000,
		"database.filepath":            "./tmp/shelftrack.sqlite",
		"database.debug":               false,
		"database.busy_timeout":        5 * time.Second,
		"database.max_retries":         5,
		"database.connect_retry_count": 5,
		"database.connect_retry_delay": 2 * time.Second,
		"jwt.secret":                   "",
	}
	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, errors.WithStack(err)
	}

	if path := os.Getenv(envPrefix + "CONFIG_FILE"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "failed to load config file %s", path)
		}
	}

	// Only the first underscore becomes a section separator, so
	// SHELFTRACK_DATABASE_BUSY_TIMEOUT maps to database.busy_timeout.
	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".", 1)
	}), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	// The struct is flat with dotted tags, so unmarshal against flattened
	// key paths rather than the nested map.
	cfg := &Config{}
	err = k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: true})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	switch cfg.Environment {
	case "test":
		loadTestConfig(cfg)
	case "development":
		loadDevelopmentConfig(cfg)
	}

	if cfg.Environment == "production" && cfg.JWTSecret == "" {
		return nil, errors.New("jwt.secret must be set in production")
	}

	return cfg, nil
}
