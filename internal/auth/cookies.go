package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ternarybob/arbor"

	"github.com/therealtombi/RumbleVideoDeleteManager/internal/models"
)

// ErrNoSnapshot is returned when no credential snapshot has been captured
// yet. A missing snapshot is a hard precondition failure for scan and delete
// runs, not a retryable error.
var ErrNoSnapshot = errors.New("credential snapshot not found, log in first")

// Source provides the persisted credential snapshot to the orchestrators.
type Source interface {
	// Exists reports whether a snapshot has been captured.
	Exists() bool

	// Load reads the snapshot. Returns ErrNoSnapshot when absent.
	Load() ([]models.CookieRecord, error)
}

// FileStore persists the credential snapshot as a JSON cookie list on disk.
type FileStore struct {
	path   string
	logger arbor.ILogger
}

// NewFileStore creates a snapshot store at the given path.
func NewFileStore(path string, logger arbor.ILogger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

// Path returns the snapshot file location.
func (f *FileStore) Path() string {
	return f.path
}

// Exists reports whether the snapshot file is present.
func (f *FileStore) Exists() bool {
	info, err := os.Stat(f.path)
	return err == nil && !info.IsDir()
}

// Load reads and decodes the snapshot.
func (f *FileStore) Load() ([]models.CookieRecord, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("failed to read cookie snapshot %s: %w", f.path, err)
	}

	var cookies []models.CookieRecord
	if err := json.Unmarshal(data, &cookies); err != nil {
		return nil, fmt.Errorf("failed to parse cookie snapshot %s: %w", f.path, err)
	}
	return cookies, nil
}

// Save writes the snapshot atomically (write to temp file, then rename).
func (f *FileStore) Save(cookies []models.CookieRecord) error {
	data, err := json.MarshalIndent(cookies, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cookie snapshot: %w", err)
	}

	dir := filepath.Dir(f.path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create snapshot directory: %w", err)
		}
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write cookie snapshot: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace cookie snapshot: %w", err)
	}

	if f.logger != nil {
		f.logger.Info().
			Str("path", f.path).
			Int("cookies", len(cookies)).
			Msg("Cookie snapshot saved")
	}
	return nil
}
