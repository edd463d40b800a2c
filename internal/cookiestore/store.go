// Package cookiestore persists the Netatmo session cookies between runs.
//
// The record is a single JSON object mapping cookie names to values. The file
// is written with 0600 permissions inside a directory created with 0700, and
// every write goes through a temp file and rename so a crash never leaves a
// half-written record behind. A record that cannot be read or parsed is
// treated as absent and removed, so it is never retried.
package cookiestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/muurk/truetemp/internal/logging"
)

const (
	fileMode = 0600
	dirMode  = 0700
)

// Record maps cookie names to cookie values
type Record map[string]string

// Store is a file-backed cookie record
type Store struct {
	path string
	mu   sync.Mutex
}

// New creates a store for the given file path. Nothing is touched on disk.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the file path of the record
func (s *Store) Path() string {
	return s.path
}

// Load reads the record. The second return value is false when the file is
// missing, empty, unreadable, corrupt or holds no cookies; the last two are
// deleted.
func (s *Store) Load() (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logging.Warn("Cannot read cookie file", zap.String("path", s.path), zap.Error(err))
		}
		return nil, false
	}

	if strings.TrimSpace(string(data)) == "" {
		return nil, false
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		s.discard("Discarding corrupt cookie file", err)
		return nil, false
	}

	// "null" and "{}" decode cleanly but hold no session
	if len(record) == 0 {
		s.discard("Discarding cookie file without cookies", nil)
		return nil, false
	}

	logging.LogCacheEvent("loaded", s.path, len(record))
	return record, true
}

// discard removes a file that can never yield a record. Callers hold s.mu.
func (s *Store) discard(msg string, cause error) {
	logging.Warn(msg, zap.String("path", s.path), zap.Error(cause))
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logging.Warn("Cannot remove cookie file", zap.String("path", s.path), zap.Error(err))
	}
}

// Save writes the record atomically, creating parent directories as needed
func (s *Store) Save(record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal cookies: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("failed to create cookie directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary cookie file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set cookie file permissions: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temporary cookie file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temporary cookie file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save cookie file: %w", err)
	}

	logging.LogCacheEvent("saved", s.path, len(record))
	return nil
}

// Clear removes the record. A missing file is not an error.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove cookie file: %w", err)
	}

	logging.LogCacheEvent("cleared", s.path, 0)
	return nil
}
