package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string        `toml:"environment"` // "development" or "production"
	Auth        AuthConfig    `toml:"auth"`
	Browser     BrowserConfig `toml:"browser"`
	Scan        ScanConfig    `toml:"scan"`
	Delete      DeleteConfig  `toml:"delete"`
	Storage     StorageConfig `toml:"storage"`
	Logging     LoggingConfig `toml:"logging"`
}

// AuthConfig locates the persisted credential snapshot.
type AuthConfig struct {
	CookiesFile string        `toml:"cookies_file" validate:"required"` // JSON cookie snapshot path
	LoginWait   time.Duration `toml:"login_wait"`                       // How long to wait for a manual login
}

// BrowserConfig controls how Chrome sessions are launched.
type BrowserConfig struct {
	Headless       bool          `toml:"headless"`
	UserAgent      string        `toml:"user_agent"`
	StartupTimeout time.Duration `toml:"startup_timeout"` // Budget for launch + about:blank probe
	NoSandbox      bool          `toml:"no_sandbox"`
	DisableGPU     bool          `toml:"disable_gpu"`
}

// ScanConfig contains the listing-scan parameters.
type ScanConfig struct {
	MaxPages          int           `toml:"max_pages" validate:"min=1"`
	TitleFilter       string        `toml:"title_filter"`       // Empty = unfiltered (requires confirm_unfiltered)
	ConfirmUnfiltered bool          `toml:"confirm_unfiltered"` // Explicit opt-in to the slow unfiltered path
	RowLimit          int           `toml:"row_limit" validate:"min=1"`
	PageTimeout       time.Duration `toml:"page_timeout"`       // Wait for the listing container
	SettleDelay       time.Duration `toml:"settle_delay"`       // Pause between page batches
	ThumbnailTimeout  time.Duration `toml:"thumbnail_timeout"`  // Per-thumbnail HTTP fetch budget
	ThumbnailPerSec   float64       `toml:"thumbnails_per_sec"` // Image-host politeness rate
}

// DeleteConfig contains the delete-run parameters.
type DeleteConfig struct {
	Workers        int           `toml:"workers" validate:"min=1,max=10"`
	NavTimeout     time.Duration `toml:"nav_timeout"`     // Listing-page navigation budget
	PopTimeout     time.Duration `toml:"pop_timeout"`     // Queue wait before a worker treats the run as drained
	AnchorTimeout  time.Duration `toml:"anchor_timeout"`  // Wait for the item's stored DOM anchor
	MenuTimeout    time.Duration `toml:"menu_timeout"`    // Wait for the delete action in the open menu
	ConfirmTimeout time.Duration `toml:"confirm_timeout"` // Wait for the confirm dialog (and its dismissal)
	MenuSettle     time.Duration `toml:"menu_settle"`     // Pause after scrolling the menu trigger into view
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "production",
		Auth: AuthConfig{
			CookiesFile: "rumble_cookies.json",
			LoginWait:   60 * time.Second,
		},
		Browser: BrowserConfig{
			Headless:       true,
			StartupTimeout: 30 * time.Second,
			DisableGPU:     true,
		},
		Scan: ScanConfig{
			MaxPages:         50,
			RowLimit:         2000,
			PageTimeout:      8 * time.Second,
			SettleDelay:      300 * time.Millisecond,
			ThumbnailTimeout: 5 * time.Second,
			ThumbnailPerSec:  4,
		},
		Delete: DeleteConfig{
			Workers:        4,
			NavTimeout:     30 * time.Second,
			PopTimeout:     time.Second,
			AnchorTimeout:  5 * time.Second,
			MenuTimeout:    3 * time.Second,
			ConfirmTimeout: 5 * time.Second,
			MenuSettle:     500 * time.Millisecond,
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/history",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> env.
// An empty path skips the file layer.
func LoadFromFile(path string) (*Config, error) {
	config := NewDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies RUMBLEDEL_* environment variable overrides
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("RUMBLEDEL_ENV"); env != "" {
		config.Environment = env
	}
	if v := os.Getenv("RUMBLEDEL_COOKIES_FILE"); v != "" {
		config.Auth.CookiesFile = v
	}
	if v := os.Getenv("RUMBLEDEL_HEADLESS"); v != "" {
		if headless, err := strconv.ParseBool(v); err == nil {
			config.Browser.Headless = headless
		}
	}
	if v := os.Getenv("RUMBLEDEL_MAX_PAGES"); v != "" {
		if pages, err := strconv.Atoi(v); err == nil {
			config.Scan.MaxPages = pages
		}
	}
	if v := os.Getenv("RUMBLEDEL_ROW_LIMIT"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil {
			config.Scan.RowLimit = limit
		}
	}
	if v := os.Getenv("RUMBLEDEL_DELETE_WORKERS"); v != "" {
		if workers, err := strconv.Atoi(v); err == nil {
			config.Delete.Workers = workers
		}
	}
	if v := os.Getenv("RUMBLEDEL_BADGER_PATH"); v != "" {
		config.Storage.Badger.Path = v
	}
	if v := os.Getenv("RUMBLEDEL_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
}

// Validate checks operator parameters against their allowed ranges.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
