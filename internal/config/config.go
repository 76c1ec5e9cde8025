package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Cache backend names accepted by Config.CacheBackend.
const (
	BackendSQLite    = "sqlite"
	BackendInMemory  = "in_memory"
	BackendMemcached = "memcached"
	BackendOff       = "off"
)

// Config holds tool configuration assembled from built-in defaults, an
// optional YAML file and env overrides.
type Config struct {
	ForecastURL string
	GeocodeURL  string

	HTTPTimeout  time.Duration
	RateLimitRPS float64

	CacheBackend string // sqlite, in_memory, memcached or off
	CacheTTL     time.Duration
	SQLitePath   string

	MemcachedAddrs        string
	MemcachedTimeout      time.Duration
	MemcachedMaxIdleConns int
}

type fileConfig struct {
	Endpoints struct {
		Forecast string `yaml:"forecast"`
		Geocode  string `yaml:"geocode"`
	} `yaml:"endpoints"`

	HTTP struct {
		Timeout      string  `yaml:"timeout"`
		RateLimitRPS float64 `yaml:"rate_limit_rps"`
	} `yaml:"http"`

	Cache struct {
		Backend string `yaml:"backend"`
		TTL     string `yaml:"ttl"`
		SQLite  struct {
			Path string `yaml:"path"`
		} `yaml:"sqlite"`
		Memcached struct {
			Addrs        string `yaml:"addrs"`
			Timeout      string `yaml:"timeout"`
			MaxIdleConns int    `yaml:"max_idle_conns"`
		} `yaml:"memcached"`
	} `yaml:"cache"`
}

// Load assembles configuration. path names an explicit YAML file; when empty,
// OPENMETEO_STATS_CONFIG is consulted, and when that is also empty the
// built-in defaults apply. An explicitly named file must exist; the env one
// is skipped silently when absent so the tool always works out of the box.
func Load(path string) (*Config, error) {
	var fc fileConfig

	explicit := path != ""
	if path == "" {
		path = strings.TrimSpace(os.Getenv("OPENMETEO_STATS_CONFIG"))
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &fc); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		case os.IsNotExist(err) && !explicit:
			// env-named file missing: run on defaults
		case os.IsNotExist(err):
			return nil, fmt.Errorf("config file not found: %s", path)
		default:
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{}

	cfg.ForecastURL = fc.Endpoints.Forecast
	if cfg.ForecastURL == "" {
		cfg.ForecastURL = "https://api.open-meteo.com/v1/forecast"
	}
	cfg.GeocodeURL = fc.Endpoints.Geocode
	if cfg.GeocodeURL == "" {
		cfg.GeocodeURL = "https://geocoding-api.open-meteo.com/v1/search"
	}

	cfg.HTTPTimeout = parseDuration(fc.HTTP.Timeout, 10*time.Second)
	cfg.RateLimitRPS = fc.HTTP.RateLimitRPS
	if cfg.RateLimitRPS <= 0 {
		cfg.RateLimitRPS = 4
	}

	cfg.CacheBackend = strings.TrimSpace(strings.ToLower(os.Getenv("CACHE_BACKEND")))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = strings.TrimSpace(strings.ToLower(fc.Cache.Backend))
	}
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = BackendSQLite
	}
	cfg.CacheTTL = parseDuration(fc.Cache.TTL, 300*time.Second)

	cfg.SQLitePath = strings.TrimSpace(fc.Cache.SQLite.Path)
	if cfg.SQLitePath == "" {
		cfg.SQLitePath = defaultSQLitePath()
	}

	cfg.MemcachedAddrs = strings.TrimSpace(os.Getenv("MEMCACHED_ADDRS"))
	if cfg.MemcachedAddrs == "" {
		cfg.MemcachedAddrs = strings.TrimSpace(fc.Cache.Memcached.Addrs)
	}
	if cfg.MemcachedAddrs == "" {
		cfg.MemcachedAddrs = "localhost:11211"
	}
	cfg.MemcachedTimeout = parseDuration(fc.Cache.Memcached.Timeout, 500*time.Millisecond)
	cfg.MemcachedMaxIdleConns = fc.Cache.Memcached.MaxIdleConns
	if cfg.MemcachedMaxIdleConns <= 0 {
		cfg.MemcachedMaxIdleConns = 2
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// defaultSQLitePath places the response cache under the user cache dir,
// falling back to the working directory when that cannot be resolved.
func defaultSQLitePath() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "openmeteo-stats", "openmeteo_cache.db")
	}
	return "openmeteo_cache.db"
}

// parseDuration parses a duration string and returns defaultVal if parsing
// fails or the result is <= 0.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func validate(cfg *Config) error {
	if cfg.HTTPTimeout <= 0 {
		return fmt.Errorf("http.timeout must be positive")
	}
	switch cfg.CacheBackend {
	case BackendSQLite, BackendInMemory, BackendMemcached, BackendOff:
		// valid
	default:
		return fmt.Errorf("cache.backend must be sqlite, in_memory, memcached or off, got %q", cfg.CacheBackend)
	}
	return nil
}
