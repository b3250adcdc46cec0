package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the momentum proxy.
// Every environment variable is read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// External API
	FMP FMPConfig

	// Exchange session clock
	Exchange ExchangeConfig

	// Universe scan
	Scanner ScannerConfig

	// Derivation engine
	Engine EngineConfig

	// Snapshot refresh
	RefreshInterval time.Duration
	SnapshotNote    string

	// Logging
	LogLevel  string
	LogFormat string
	LogFile   string

	// Monitoring
	MetricsEnabled bool

	// Optional YAML file overriding the presentation bin thresholds
	BinsFile string
}

// FMPConfig holds Financial Modeling Prep API configuration.
type FMPConfig struct {
	APIKey  string
	BaseURL string

	// Requests per second allowed against the FMP API, with burst.
	RateLimit float64
	Burst     int
}

// ExchangeConfig holds exchange calendar/clock configuration.
type ExchangeConfig struct {
	// IANA timezone of the exchange, e.g. America/New_York.
	Timezone string

	// Resolved at Load time.
	Location *time.Location
}

// ScannerConfig holds universe scan and ranking configuration.
type ScannerConfig struct {
	MaxSymbols int
	BatchSize  int
	TopN       int
	MinPrice   float64

	// Float-size bucket boundaries (shares).
	LowFloatMax  int64
	HighFloatMin int64
}

// EngineConfig holds derivation thresholds.
type EngineConfig struct {
	// Minimum intraday bar count before falling back to the EOD VWAP.
	MinIntradayBars int

	// Entry-signal thresholds (percent, except RVol which is a ratio).
	ReversionPct  float64
	BouncePct     float64
	RVolThreshold float64
}

// Load reads configuration from environment variables.
// Only this function calls os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		FMP: FMPConfig{
			APIKey:    getEnv("FMP_API_KEY", ""),
			BaseURL:   getEnv("FMP_BASE_URL", "https://financialmodelingprep.com/api/v3"),
			RateLimit: getEnvAsFloat("FMP_RATE_LIMIT", 5),
			Burst:     getEnvAsInt("FMP_RATE_BURST", 10),
		},

		Exchange: ExchangeConfig{
			Timezone: getEnv("EXCHANGE_TIMEZONE", "America/New_York"),
		},

		Scanner: ScannerConfig{
			MaxSymbols:   getEnvAsInt("SCAN_MAX_SYMBOLS", 5000),
			BatchSize:    getEnvAsInt("SCAN_BATCH_SIZE", 100),
			TopN:         getEnvAsInt("SCAN_TOP_N", 15),
			MinPrice:     getEnvAsFloat("SCAN_MIN_PRICE", 1.0),
			LowFloatMax:  getEnvAsInt64("SCAN_LOW_FLOAT_MAX", 50_000_000),
			HighFloatMin: getEnvAsInt64("SCAN_HIGH_FLOAT_MIN", 100_000_000),
		},

		Engine: EngineConfig{
			MinIntradayBars: getEnvAsInt("ENGINE_MIN_INTRADAY_BARS", 20),
			ReversionPct:    getEnvAsFloat("ENGINE_REVERSION_PCT", 2.0),
			BouncePct:       getEnvAsFloat("ENGINE_BOUNCE_PCT", 0.2),
			RVolThreshold:   getEnvAsFloat("ENGINE_RVOL_THRESHOLD", 2.0),
		},

		RefreshInterval: getEnvAsDuration("REFRESH_INTERVAL", "60s"),
		SnapshotNote:    getEnv("SNAPSHOT_NOTE", ""),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
		LogFile:   getEnv("LOG_FILE", ""),

		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),

		BinsFile: getEnv("BINS_FILE", ""),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	loc, err := time.LoadLocation(cfg.Exchange.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid EXCHANGE_TIMEZONE %q: %w", cfg.Exchange.Timezone, err)
	}
	cfg.Exchange.Location = loc

	return cfg, nil
}

// validate checks if required configuration values are set.
func (c *Config) validate() error {
	if c.FMP.APIKey == "" {
		return fmt.Errorf("FMP_API_KEY is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.RefreshInterval < time.Second {
		return fmt.Errorf("REFRESH_INTERVAL must be at least 1s")
	}

	if c.Scanner.TopN <= 0 {
		return fmt.Errorf("SCAN_TOP_N must be positive")
	}

	if c.Scanner.LowFloatMax > c.Scanner.HighFloatMin {
		return fmt.Errorf("SCAN_LOW_FLOAT_MAX must not exceed SCAN_HIGH_FLOAT_MIN")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations.
func loadEnvFile() {
	paths := []string{
		".env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		fallback, _ := time.ParseDuration(defaultValue)
		return fallback
	}
	return value
}
