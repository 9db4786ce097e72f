package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Providers ProvidersConfig `yaml:"providers"`
	Quotes    QuotesConfig    `yaml:"quotes"`
	Market    MarketConfig    `yaml:"market"`
	Store     StoreConfig     `yaml:"store"`
	Prefetch  PrefetchConfig  `yaml:"prefetch"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type ProvidersConfig struct {
	Primary string         `yaml:"primary"`
	Finnhub ProviderConfig `yaml:"finnhub"`
	Polygon ProviderConfig `yaml:"polygon"`
}

type ProviderConfig struct {
	BaseURL   string `yaml:"base_url"`
	APIKey    string `yaml:"api_key"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

type QuotesConfig struct {
	TTLSeconds      int `yaml:"ttl_seconds"`
	RefreshMs       int `yaml:"refresh_ms"`
	MaxCandleWindow int `yaml:"max_candle_window"`
}

type MarketConfig struct {
	Timezone  string `yaml:"timezone"`
	Premarket string `yaml:"premarket"`
	Regular   string `yaml:"regular"`
	After     string `yaml:"after"`
}

type StoreConfig struct {
	Sqlite SqliteConfig `yaml:"sqlite"`
}

type SqliteConfig struct {
	Path string `yaml:"path"`
}

type PrefetchConfig struct {
	Cron string `yaml:"cron"`
}

// Load reads the YAML file over a fully-defaulted config, then applies
// environment overrides. A missing file leaves the defaults in place.
func Load(path string) (*Config, error) {
	cfg := Config{
		Server: ServerConfig{Port: 8080},
		Providers: ProvidersConfig{
			Primary: "FINNHUB",
			Finnhub: ProviderConfig{BaseURL: "https://finnhub.io/api/v1", TimeoutMs: 10000},
			Polygon: ProviderConfig{BaseURL: "https://api.polygon.io", TimeoutMs: 30000},
		},
		Quotes: QuotesConfig{
			TTLSeconds:      120,
			RefreshMs:       2000,
			MaxCandleWindow: 1000,
		},
		Market: MarketConfig{
			Timezone:  "America/New_York",
			Premarket: "06:00-09:30",
			Regular:   "09:30-16:00",
			After:     "16:00-20:00",
		},
		Store: StoreConfig{
			Sqlite: SqliteConfig{Path: "data/pricefetcher.db"},
		},
	}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p <= 0 || p > 65535 {
			return fmt.Errorf("invalid PORT: %q", v)
		}
		cfg.Server.Port = p
	}
	if v := os.Getenv("PRIMARY_PROVIDER"); v != "" {
		cfg.Providers.Primary = v
	}
	if v := os.Getenv("FINNHUB_BASE_URL"); v != "" {
		cfg.Providers.Finnhub.BaseURL = v
	}
	if v := os.Getenv("FINNHUB_API_KEY"); v != "" {
		cfg.Providers.Finnhub.APIKey = v
	}
	if v := os.Getenv("POLYGON_BASE_URL"); v != "" {
		cfg.Providers.Polygon.BaseURL = v
	}
	if v := os.Getenv("POLYGON_API_KEY"); v != "" {
		cfg.Providers.Polygon.APIKey = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Store.Sqlite.Path = v
	}
	return nil
}
