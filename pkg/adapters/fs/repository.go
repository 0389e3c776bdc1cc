// Package fs stores each key as a file inside a data directory.
package fs

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/noteease/pkg/core"
)

// DefaultExtension is appended to keys to build file names.
const DefaultExtension = ".json"

// Repository implements core.KV using the filesystem.
// Writes are atomic: a reader sees either the previous or the next blob.
type Repository struct {
	Path   string
	config Config

	mu            sync.RWMutex
	readOnly      bool
	lastWritten   map[string][]byte
	lastWrite     *time.Time
	watcherActive bool
}

// Config holds the configuration for the filesystem backend.
type Config struct {
	Path         string
	MustExist    bool
	ReadOnly     bool
	Extension    string // e.g. ".json"; defaults to DefaultExtension
	Logger       *slog.Logger
	ErrorHandler func(error) // Receives watcher errors; optional.
}

// NewRepository creates a new filesystem-backed key-value store.
func NewRepository(config Config) *Repository {
	if config.Extension == "" {
		config.Extension = DefaultExtension
	}
	if !strings.HasPrefix(config.Extension, ".") {
		config.Extension = "." + config.Extension
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	return &Repository{
		Path:        config.Path,
		config:      config,
		readOnly:    config.ReadOnly,
		lastWritten: make(map[string][]byte),
	}
}

// Initialize ensures the data directory exists.
func (r *Repository) Initialize(ctx context.Context) error {
	if r.config.MustExist || r.readOnly {
		info, err := os.Stat(r.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("data path does not exist: %s", r.Path)
		}
		if err != nil {
			return fmt.Errorf("failed to stat data path: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("data path is not a directory: %s", r.Path)
		}
		return nil
	}

	if err := os.MkdirAll(r.Path, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}

// Get reads the file backing key.
func (r *Repository) Get(ctx context.Context, key string) ([]byte, bool, error) {
	filename, err := r.filename(key)
	if err != nil {
		return nil, false, err
	}

	data, err := os.ReadFile(filepath.Join(r.Path, filename))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	return data, true, nil
}

// Set atomically replaces the file backing key.
func (r *Repository) Set(ctx context.Context, key string, value []byte) error {
	if r.readOnly {
		return core.ErrReadOnly
	}
	filename, err := r.filename(key)
	if err != nil {
		return err
	}

	fullPath := filepath.Join(r.Path, filename)
	r.config.Logger.Debug("writing blob to disk", "key", key, "path", fullPath, "bytes", len(value))

	if err := writeFileAtomic(fullPath, value, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	r.mu.Lock()
	r.lastWritten[filename] = bytes.Clone(value)
	now := time.Now()
	r.lastWrite = &now
	r.mu.Unlock()
	return nil
}

// Close implements core.KV. Watchers stop with their context.
func (r *Repository) Close() error {
	return nil
}

// filename maps a key to a file name inside the data directory.
// Keys are flat: separators and traversal are rejected.
func (r *Repository) filename(key string) (string, error) {
	if key == "" || key == "." || key == ".." ||
		strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, TempFilePrefix) {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return key + r.config.Extension, nil
}

// isOwnWrite reports whether the file content is what this process last wrote.
func (r *Repository) isOwnWrite(filename string) bool {
	r.mu.RLock()
	last, ok := r.lastWritten[filename]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	current, err := os.ReadFile(filepath.Join(r.Path, filename))
	if err != nil {
		return false
	}
	return bytes.Equal(current, last)
}

var _ core.KV = (*Repository)(nil)
var _ core.Initializer = (*Repository)(nil)
var _ core.Watchable = (*Repository)(nil)
