package noteease

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/noteease/internal/platform"
	"github.com/aretw0/noteease/pkg/adapters/redis"
	"github.com/aretw0/noteease/pkg/adapters/s3"
	"github.com/aretw0/noteease/pkg/core"
)

// Version of the library and CLI.
const Version = "0.1.0"

// --- Types ---

// Note is a single note.
type Note = core.Note

// Store is the in-memory note collection.
type Store = core.Store

// Event is a change notification from the store or a backend.
type Event = core.Event

// --- Configuration ---

// Option defines a functional option for configuring noteease.
type Option = platform.Option

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithAdapter selects the backend by name ("fs", "memory", "sqlite", "s3", "redis").
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithKV injects a custom key-value backend.
func WithKV(kv core.KV) Option {
	return platform.WithKV(kv)
}

// WithKey sets the key the collection is stored under.
func WithKey(key string) Option {
	return platform.WithKey(key)
}

// WithFormat selects the blob encoding ("json" or "yaml").
func WithFormat(format string) Option {
	return platform.WithFormat(format)
}

// WithEventBuffer sets the buffer size of store subscriptions.
func WithEventBuffer(size int) Option {
	return platform.WithEventBuffer(size)
}

// WithWriteErrorHandler registers a callback for failed background writes.
func WithWriteErrorHandler(fn func(error)) Option {
	return platform.WithWriteErrorHandler(fn)
}

// WithWatcherErrorHandler registers a callback for fs watcher errors.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// WithReadOnly rejects every write.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithDevSafety controls the temporary sandbox used under `go run` and `go test`.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// WithForceTemp forces the use of the temporary sandbox.
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithMustExist requires the fs data directory to exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithS3 configures the s3 backend.
func WithS3(cfg s3.Config) Option {
	return platform.WithS3(cfg)
}

// WithRedis configures the redis backend.
func WithRedis(cfg redis.Config) Option {
	return platform.WithRedis(cfg)
}

// --- Factory ---

// New opens the backend at uri and returns a loaded Store.
func New(ctx context.Context, uri string, opts ...Option) (*Store, error) {
	return platform.New(ctx, uri, opts...)
}

// OpenKV opens the backend at uri without a Store.
func OpenKV(ctx context.Context, uri string, opts ...Option) (core.KV, error) {
	return platform.OpenKV(ctx, uri, opts...)
}

// --- Notes ---

// NewNote builds a note stamped with now.
func NewNote(title, content string, now time.Time) Note {
	return core.NewNote(title, content, now)
}

// ShouldCreate reports whether a draft is worth saving.
func ShouldCreate(title, content string) bool {
	return core.ShouldCreate(title, content)
}

// --- Safety & Utils ---

// ResolveDataPath determines the actual data path based on safety rules.
func ResolveDataPath(userPath string, forceTemp bool) string {
	return platform.ResolveDataPath(userPath, forceTemp)
}

// IsDevRun checks if the current process is running via `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}

// FindDataDir looks upwards from startDir for a .noteease directory.
func FindDataDir(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}
