// Package config handles configuration loading for techlens.
// It supports YAML config files with environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. TECHLENS_ANALYSIS_RISK_FREE_RATE.
const EnvPrefix = "TECHLENS"

// Data and rate source names.
const (
	SourceCSV    = "csv"
	SourceYahoo  = "yahoo"
	SourceFRED   = "fred"
	SourceStatic = "static"
)

// Config represents the complete application configuration.
type Config struct {
	Analysis  AnalysisConfig           `mapstructure:"analysis"  yaml:"analysis"`
	Scoring   ScoringConfig            `mapstructure:"scoring"   yaml:"scoring"`
	Companies map[string]CompanyConfig `mapstructure:"companies" yaml:"companies"`
	Data      DataConfig               `mapstructure:"data"      yaml:"data"`
	Rates     RatesConfig              `mapstructure:"rates"     yaml:"rates"`
	Schedule  ScheduleConfig           `mapstructure:"schedule"  yaml:"schedule"`
	Logging   LoggingConfig            `mapstructure:"logging"   yaml:"logging"`
}

// AnalysisConfig holds metrics engine settings.
type AnalysisConfig struct {
	Tickers             []string  `mapstructure:"tickers"               yaml:"tickers"`
	RiskFreeRate        float64   `mapstructure:"risk_free_rate"        yaml:"risk_free_rate"` // decimal, 0.0425 = 4.25%
	ConfidenceLevels    []float64 `mapstructure:"confidence_levels"     yaml:"confidence_levels"`
	HoldingPeriod       int       `mapstructure:"holding_period"        yaml:"holding_period"` // days
	RollingWindow       int       `mapstructure:"rolling_window"        yaml:"rolling_window"` // days
	MinBetaObservations int       `mapstructure:"min_beta_observations" yaml:"min_beta_observations"`
	MaxAbsBeta          float64   `mapstructure:"max_abs_beta"          yaml:"max_abs_beta"`
	DefaultBeta         float64   `mapstructure:"default_beta"          yaml:"default_beta"`
	HistoryPeriod       string    `mapstructure:"history_period"        yaml:"history_period"` // e.g. "3y"
	ConcurrentFetches   int       `mapstructure:"concurrent_fetches"    yaml:"concurrent_fetches"`
}

// ScoringConfig holds the five-lens weights. Keys are lens names; sector keys
// are matched case-insensitively.
type ScoringConfig struct {
	Weights       map[string]float64            `mapstructure:"weights"        yaml:"weights"`
	SectorWeights map[string]map[string]float64 `mapstructure:"sector_weights" yaml:"sector_weights"`
}

// CompanyConfig is static metadata for a tracked ticker. Beta feeds the
// lookup tier of the beta fallback chain; zero means no entry.
type CompanyConfig struct {
	Name   string  `mapstructure:"name"   yaml:"name"`
	Sector string  `mapstructure:"sector" yaml:"sector"`
	Beta   float64 `mapstructure:"beta"   yaml:"beta"`
}

// DataConfig selects and tunes the market data source.
type DataConfig struct {
	Source            string        `mapstructure:"source"              yaml:"source"`   // "csv" or "yahoo"
	Fallback          string        `mapstructure:"fallback"            yaml:"fallback"` // optional second source
	Dir               string        `mapstructure:"dir"                 yaml:"dir"`
	MarketTicker      string        `mapstructure:"market_ticker"       yaml:"market_ticker"`
	CacheTTL          time.Duration `mapstructure:"cache_ttl"           yaml:"cache_ttl"`
	RequestsPerSecond int           `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	YahooBaseURL      string        `mapstructure:"yahoo_base_url"      yaml:"yahoo_base_url"`
}

// RatesConfig selects where the risk-free rate comes from.
type RatesConfig struct {
	Source     string `mapstructure:"source"       yaml:"source"` // "fred" or "static"
	FREDSeries string `mapstructure:"fred_series"  yaml:"fred_series"`
	FREDAPIKey string `mapstructure:"fred_api_key" yaml:"fred_api_key"`
}

// ScheduleConfig holds the watch loop schedule.
type ScheduleConfig struct {
	Cron string `mapstructure:"cron" yaml:"cron"` // robfig/cron spec, e.g. "@every 4h"
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.techlens/config.yaml (home directory)
//  3. /etc/techlens/config.yaml (system)
//
// Environment variables override config file values.
// Format: TECHLENS_<SECTION>_<KEY>, e.g., TECHLENS_DATA_SOURCE
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".techlens"))
	v.AddConfigPath("/etc/techlens")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	cfg.normalize()
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Analysis defaults
	v.SetDefault("analysis.tickers", []string{"NVDA", "MSFT", "AAPL", "GOOGL", "AMZN"})
	v.SetDefault("analysis.risk_free_rate", 0.0425)
	v.SetDefault("analysis.confidence_levels", []float64{0.90, 0.95, 0.99})
	v.SetDefault("analysis.holding_period", 1)
	v.SetDefault("analysis.rolling_window", 252)
	v.SetDefault("analysis.min_beta_observations", 30)
	v.SetDefault("analysis.max_abs_beta", 5.0)
	v.SetDefault("analysis.default_beta", 1.0)
	v.SetDefault("analysis.history_period", "3y")
	v.SetDefault("analysis.concurrent_fetches", 5)

	// Scoring defaults
	v.SetDefault("scoring.weights", map[string]any{
		"valuation":        0.20,
		"quality":          0.25,
		"growth":           0.20,
		"financial_health": 0.20,
		"risk_momentum":    0.15,
	})

	// Company registry
	v.SetDefault("companies", map[string]any{
		"NVDA":  map[string]any{"name": "NVIDIA Corporation", "sector": "Semiconductors", "beta": 1.85},
		"MSFT":  map[string]any{"name": "Microsoft Corporation", "sector": "Cloud & Software", "beta": 0.90},
		"AAPL":  map[string]any{"name": "Apple Inc.", "sector": "Consumer Electronics", "beta": 1.25},
		"GOOGL": map[string]any{"name": "Alphabet Inc.", "sector": "Search & Advertising", "beta": 1.05},
		"AMZN":  map[string]any{"name": "Amazon.com Inc.", "sector": "E-commerce & Cloud", "beta": 1.15},
	})

	// Data defaults
	v.SetDefault("data.source", SourceYahoo)
	v.SetDefault("data.fallback", "")
	v.SetDefault("data.dir", "./data")
	v.SetDefault("data.market_ticker", "^GSPC")
	v.SetDefault("data.cache_ttl", 4*time.Hour)
	v.SetDefault("data.requests_per_second", 5)
	v.SetDefault("data.yahoo_base_url", "https://query1.finance.yahoo.com")

	// Rates defaults
	v.SetDefault("rates.source", SourceStatic)
	v.SetDefault("rates.fred_series", "DGS10")
	v.SetDefault("rates.fred_api_key", "")

	// Schedule defaults
	v.SetDefault("schedule.cron", "@every 4h")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv(fredKeyEnv); key != "" {
		cfg.Rates.FREDAPIKey = key
	}
}

// normalize upper-cases tickers; viper lower-cases map keys on the way in.
func (c *Config) normalize() {
	companies := make(map[string]CompanyConfig, len(c.Companies))
	for t, cc := range c.Companies {
		companies[strings.ToUpper(strings.TrimSpace(t))] = cc
	}
	c.Companies = companies

	for i, t := range c.Analysis.Tickers {
		c.Analysis.Tickers[i] = strings.ToUpper(strings.TrimSpace(t))
	}
	c.Data.Source = strings.ToLower(strings.TrimSpace(c.Data.Source))
	c.Data.Fallback = strings.ToLower(strings.TrimSpace(c.Data.Fallback))
	c.Rates.Source = strings.ToLower(strings.TrimSpace(c.Rates.Source))
}

// Validate reports every configuration problem found.
func (c *Config) Validate() error {
	var errs []error

	if c.Analysis.RiskFreeRate < 0 || c.Analysis.RiskFreeRate >= 1 {
		errs = append(errs, fmt.Errorf("analysis.risk_free_rate %v must be a decimal in [0, 1)", c.Analysis.RiskFreeRate))
	}
	if len(c.Analysis.ConfidenceLevels) == 0 {
		errs = append(errs, errors.New("analysis.confidence_levels must not be empty"))
	}
	for _, cl := range c.Analysis.ConfidenceLevels {
		if cl <= 0 || cl >= 1 {
			errs = append(errs, fmt.Errorf("analysis.confidence_levels: %v is outside (0, 1)", cl))
		}
	}
	if c.Analysis.MinBetaObservations < 2 {
		errs = append(errs, fmt.Errorf("analysis.min_beta_observations %d must be at least 2", c.Analysis.MinBetaObservations))
	}
	if c.Analysis.MaxAbsBeta <= 0 {
		errs = append(errs, fmt.Errorf("analysis.max_abs_beta %v must be positive", c.Analysis.MaxAbsBeta))
	}
	if c.Analysis.RollingWindow < 2 {
		errs = append(errs, fmt.Errorf("analysis.rolling_window %d must be at least 2", c.Analysis.RollingWindow))
	}

	for lens, w := range c.Scoring.Weights {
		if w < 0 {
			errs = append(errs, fmt.Errorf("scoring.weights.%s is negative", lens))
		}
	}
	for sector, ws := range c.Scoring.SectorWeights {
		for lens, w := range ws {
			if w < 0 {
				errs = append(errs, fmt.Errorf("scoring.sector_weights.%s.%s is negative", sector, lens))
			}
		}
	}

	switch c.Data.Source {
	case SourceCSV, SourceYahoo:
	default:
		errs = append(errs, fmt.Errorf("data.source %q: want %q or %q", c.Data.Source, SourceCSV, SourceYahoo))
	}
	switch c.Data.Fallback {
	case "", SourceCSV, SourceYahoo:
	default:
		errs = append(errs, fmt.Errorf("data.fallback %q: want %q, %q or empty", c.Data.Fallback, SourceCSV, SourceYahoo))
	}
	switch c.Rates.Source {
	case SourceFRED, SourceStatic:
	default:
		errs = append(errs, fmt.Errorf("rates.source %q: want %q or %q", c.Rates.Source, SourceFRED, SourceStatic))
	}

	return errors.Join(errs...)
}

// BetaTable returns the static beta lookup built from the company registry.
func (c *Config) BetaTable() map[string]float64 {
	table := make(map[string]float64, len(c.Companies))
	for t, cc := range c.Companies {
		if cc.Beta != 0 {
			table[t] = cc.Beta
		}
	}
	return table
}

// Company returns registry metadata for ticker.
func (c *Config) Company(ticker string) (CompanyConfig, bool) {
	cc, ok := c.Companies[strings.ToUpper(ticker)]
	return cc, ok
}

// RegisteredTickers returns the registry tickers in sorted order.
func (c *Config) RegisteredTickers() []string {
	out := make([]string, 0, len(c.Companies))
	for t := range c.Companies {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
