package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Workers WorkersConfig `toml:"workers"`
	Scraper ScraperConfig `toml:"scraper"`
	Browser BrowserConfig `toml:"browser"`
	SMTP    SMTPConfig    `toml:"smtp"`
	Logging LoggingConfig `toml:"logging"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

// WorkersConfig controls per-job fan-out
type WorkersConfig struct {
	Count int `toml:"count"` // Number of parallel workers per job
}

// ScraperConfig contains settings for the stateless HTTP scraper
type ScraperConfig struct {
	UserAgent      string        `toml:"user_agent"`      // Override user agent (empty = rotate)
	RequestTimeout time.Duration `toml:"request_timeout"` // HTTP request timeout
	MaxRetries     int           `toml:"max_retries"`     // Retry attempts per request
	MinDelay       time.Duration `toml:"min_delay"`       // Minimum post-lookup delay
	MaxDelay       time.Duration `toml:"max_delay"`       // Maximum post-lookup delay
	RequestsPerSec float64       `toml:"requests_per_sec"`
}

// BrowserConfig contains settings for the chromedp-driven scraper
type BrowserConfig struct {
	Enabled          bool          `toml:"enabled"`           // Enable the browser-driven source
	Headless         bool          `toml:"headless"`          // Must be false to solve challenges manually
	ChallengeTimeout time.Duration `toml:"challenge_timeout"` // Max wait for human challenge resolution
	RenderWait       time.Duration `toml:"render_wait"`       // Settle time after navigation
	PageTimeout      time.Duration `toml:"page_timeout"`      // Max time for a single lookup
	UserAgent        string        `toml:"user_agent"`
}

type SMTPConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	From     string `toml:"from"`
	FromName string `toml:"from_name"`
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// DefaultConfig returns the configuration defaults applied before file and
// environment overrides.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 5000,
			Host: "0.0.0.0",
		},
		Workers: WorkersConfig{
			Count: 4,
		},
		Scraper: ScraperConfig{
			RequestTimeout: 15 * time.Second,
			MaxRetries:     3,
			MinDelay:       1 * time.Second,
			MaxDelay:       3 * time.Second,
			RequestsPerSec: 1,
		},
		Browser: BrowserConfig{
			Enabled:          true,
			Headless:         false,
			ChallengeTimeout: 120 * time.Second,
			RenderWait:       5 * time.Second,
			PageTimeout:      90 * time.Second,
			UserAgent:        "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		},
		SMTP: SMTPConfig{
			Host:     "smtp.gmail.com",
			Port:     587,
			FromName: "Price Scraper",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
	}
}

// LoadConfig loads configuration in priority order:
// defaults -> optional TOML file -> environment variables.
// CLI flag overrides are applied separately via ApplyFlagOverrides.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if config.Workers.Count < 1 {
		return nil, fmt.Errorf("workers.count must be at least 1, got %d", config.Workers.Count)
	}

	return config, nil
}

// applyEnvOverrides reads environment variables over the loaded configuration.
// SMTP credentials come from the environment by convention so they stay out of
// config files (main loads .env before this runs).
func applyEnvOverrides(config *Config) {
	if port := os.Getenv("SCRAPER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("SCRAPER_HOST"); host != "" {
		config.Server.Host = host
	}
	if level := os.Getenv("SCRAPER_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if workers := os.Getenv("SCRAPER_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil {
			config.Workers.Count = w
		}
	}

	if host := os.Getenv("SMTP_SERVER"); host != "" {
		config.SMTP.Host = host
	}
	if port := os.Getenv("SMTP_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.SMTP.Port = p
		}
	}
	if from := os.Getenv("EMAIL_FROM"); from != "" {
		config.SMTP.From = from
		if config.SMTP.Username == "" {
			config.SMTP.Username = from
		}
	}
	if password := os.Getenv("EMAIL_PASSWORD"); password != "" {
		config.SMTP.Password = password
	}
}

// ApplyFlagOverrides applies command-line flag values (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}
