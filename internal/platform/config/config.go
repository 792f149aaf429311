// Package config assembles runtime settings from defaults, an optional YAML
// file, STOCK_INGEST_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"stock_ingest/internal/platform/db"
	"stock_ingest/internal/platform/externalapi/dart"
	"stock_ingest/internal/platform/externalapi/kis"
	"stock_ingest/internal/platform/redis"
)

// Keys understood by Load. Flags are bound to these names.
const (
	KeyDBDriver      = "store.driver"
	KeySQLitePath    = "store.sqlite_path"
	KeyDBDSN         = "store.dsn"
	KeyTimeout       = "http.timeout"
	KeyKISBaseURL    = "kis.base_url"
	KeyKISMaxPages   = "kis.max_price_pages"
	KeyKISTokenTTL   = "kis.token_ttl"
	KeyKISRateLimit  = "kis.rate_limit"
	KeyDARTBaseURL   = "dart.base_url"
	KeyDARTRateLimit = "dart.rate_limit"
	KeyRedisAddr     = "redis.addr"
	KeyWorkers       = "workers"
	KeyLogLevel      = "log.level"
)

// EnvPrefix prefixes environment overrides, e.g. STOCK_INGEST_STORE_DRIVER.
const EnvPrefix = "STOCK_INGEST"

// Settings is the fully resolved runtime configuration.
type Settings struct {
	DB            db.Config
	KIS           kis.Config
	DART          dart.Config
	Redis         redis.Config
	Timeout       time.Duration
	MaxPricePages int
	Workers       int
	LogLevel      string
}

// DefaultSQLitePath is the store file used when none is configured.
func DefaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".stock_ingest", "data", "stock_ingest.db")
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyDBDriver, db.DriverSQLite)
	v.SetDefault(KeySQLitePath, DefaultSQLitePath())
	v.SetDefault(KeyTimeout, 20*time.Second)
	v.SetDefault(KeyKISBaseURL, kis.DefaultBaseURL)
	v.SetDefault(KeyKISMaxPages, 3)
	v.SetDefault(KeyKISRateLimit, 15)
	v.SetDefault(KeyDARTBaseURL, dart.DefaultBaseURL)
	v.SetDefault(KeyDARTRateLimit, 10)
	v.SetDefault(KeyWorkers, 1)
	v.SetDefault(KeyLogLevel, "info")
	return v
}

// Load reads configFile (when non-empty) into v and resolves Settings.
// Provider credentials come only from their own environment variables.
func Load(v *viper.Viper, configFile string) (Settings, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	timeout := v.GetDuration(KeyTimeout)
	if timeout <= 0 {
		return Settings{}, errors.New("http timeout must be positive")
	}

	s := Settings{
		DB: db.Config{
			Driver:         strings.ToLower(v.GetString(KeyDBDriver)),
			Path:           expandHome(v.GetString(KeySQLitePath)),
			DSN:            v.GetString(KeyDBDSN),
			ConnectTimeout: timeout,
		},
		KIS:           kis.LoadConfig(),
		DART:          dart.LoadConfig(),
		Redis:         redis.LoadConfig(),
		Timeout:       timeout,
		MaxPricePages: v.GetInt(KeyKISMaxPages),
		Workers:       v.GetInt(KeyWorkers),
		LogLevel:      v.GetString(KeyLogLevel),
	}
	s.KIS.BaseURL = v.GetString(KeyKISBaseURL)
	s.KIS.Timeout = timeout
	s.KIS.RateLimit = v.GetInt(KeyKISRateLimit)
	if ttl := v.GetDuration(KeyKISTokenTTL); ttl > 0 {
		s.KIS.TokenTTL = ttl
	}
	s.DART.BaseURL = v.GetString(KeyDARTBaseURL)
	s.DART.Timeout = timeout
	s.DART.RateLimit = v.GetInt(KeyDARTRateLimit)
	if addr := v.GetString(KeyRedisAddr); addr != "" {
		s.Redis.Addr = addr
	}

	if s.MaxPricePages < 1 {
		s.MaxPricePages = 1
	}
	if s.Workers < 1 {
		s.Workers = 1
	}
	return s, nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
