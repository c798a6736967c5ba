package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	config := NewDefaultConfig()

	assert.Equal(t, "production", config.Environment)
	assert.True(t, config.Browser.Headless)
	assert.Equal(t, 50, config.Scan.MaxPages)
	assert.Equal(t, 2000, config.Scan.RowLimit)
	assert.Equal(t, 4, config.Delete.Workers)
	assert.Equal(t, time.Second, config.Delete.PopTimeout)
	require.NoError(t, config.Validate())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rumbledel.toml")
	content := `
environment = "development"

[auth]
cookies_file = "test_cookies.json"

[scan]
max_pages = 5
title_filter = "cats"
page_timeout = "10s"

[delete]
workers = 2

[logging]
level = "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "development", config.Environment)
	assert.Equal(t, "test_cookies.json", config.Auth.CookiesFile)
	assert.Equal(t, 5, config.Scan.MaxPages)
	assert.Equal(t, "cats", config.Scan.TitleFilter)
	assert.Equal(t, 10*time.Second, config.Scan.PageTimeout)
	assert.Equal(t, 2, config.Delete.Workers)
	assert.Equal(t, "debug", config.Logging.Level)
	// Unset values keep their defaults.
	assert.Equal(t, 2000, config.Scan.RowLimit)
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("RUMBLEDEL_ENV", "development")
	t.Setenv("RUMBLEDEL_COOKIES_FILE", "/tmp/env_cookies.json")
	t.Setenv("RUMBLEDEL_HEADLESS", "false")
	t.Setenv("RUMBLEDEL_MAX_PAGES", "7")
	t.Setenv("RUMBLEDEL_DELETE_WORKERS", "3")
	t.Setenv("RUMBLEDEL_LOG_LEVEL", "warn")

	config, err := LoadFromFile("")
	require.NoError(t, err)

	assert.Equal(t, "development", config.Environment)
	assert.Equal(t, "/tmp/env_cookies.json", config.Auth.CookiesFile)
	assert.False(t, config.Browser.Headless)
	assert.Equal(t, 7, config.Scan.MaxPages)
	assert.Equal(t, 3, config.Delete.Workers)
	assert.Equal(t, "warn", config.Logging.Level)
}

func TestEnvOverrideIgnoresMalformedValues(t *testing.T) {
	t.Setenv("RUMBLEDEL_MAX_PAGES", "lots")
	t.Setenv("RUMBLEDEL_HEADLESS", "maybe")

	config, err := LoadFromFile("")
	require.NoError(t, err)

	assert.Equal(t, 50, config.Scan.MaxPages)
	assert.True(t, config.Browser.Headless)
}

func TestValidateRejectsOutOfRangeValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero max_pages", func(c *Config) { c.Scan.MaxPages = 0 }},
		{"zero row_limit", func(c *Config) { c.Scan.RowLimit = 0 }},
		{"zero workers", func(c *Config) { c.Delete.Workers = 0 }},
		{"too many workers", func(c *Config) { c.Delete.Workers = 11 }},
		{"missing cookies file", func(c *Config) { c.Auth.CookiesFile = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := NewDefaultConfig()
			tt.mutate(config)
			assert.Error(t, config.Validate())
		})
	}
}
