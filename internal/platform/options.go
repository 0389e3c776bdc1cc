package platform

import (
	"log/slog"

	"github.com/aretw0/noteease/pkg/adapters/redis"
	"github.com/aretw0/noteease/pkg/adapters/s3"
	"github.com/aretw0/noteease/pkg/core"
)

// Adapter names accepted by WithAdapter.
const (
	AdapterFS     = "fs"
	AdapterMemory = "memory"
	AdapterSQLite = "sqlite"
	AdapterS3     = "s3"
	AdapterRedis  = "redis"
)

// Adapters lists the built-in adapters.
var Adapters = []string{AdapterFS, AdapterMemory, AdapterSQLite, AdapterS3, AdapterRedis}

// options holds the internal configuration for noteease.
type options struct {
	kv          core.KV
	logger      *slog.Logger
	adapter     string
	key         string
	format      string
	eventBuffer int

	readOnly  bool
	devSafety bool
	forceTemp bool
	mustExist bool

	onWriteError   func(error)
	onWatcherError func(error)

	s3    s3.Config
	redis redis.Config
}

// Option defines a functional option for configuring noteease.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		logger:    slog.New(slog.DiscardHandler),
		adapter:   AdapterFS,
		format:    "json",
		devSafety: true,
	}
}

func apply(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithKV injects a key-value backend (e.g. a test double). If provided, the
// adapter selection is skipped.
func WithKV(kv core.KV) Option {
	return func(o *options) {
		o.kv = kv
	}
}

// WithAdapter selects the key-value backend by name. Defaults to "fs".
func WithAdapter(name string) Option {
	return func(o *options) {
		if name != "" {
			o.adapter = name
		}
	}
}

// WithKey sets the key the collection is stored under. Defaults to "notes".
func WithKey(key string) Option {
	return func(o *options) {
		o.key = key
	}
}

// WithFormat selects the blob encoding: "json" (default) or "yaml".
func WithFormat(format string) Option {
	return func(o *options) {
		if format != "" {
			o.format = format
		}
	}
}

// WithEventBuffer sets the buffer size of store subscriptions.
// Zero means default (16).
func WithEventBuffer(size int) Option {
	return func(o *options) {
		o.eventBuffer = size
	}
}

// WithWriteErrorHandler registers a callback for failed background writes.
func WithWriteErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.onWriteError = fn
	}
}

// WithWatcherErrorHandler registers a callback for errors of the fs watch
// loop, which are otherwise only logged.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.onWatcherError = fn
	}
}

// WithReadOnly enables read-only mode.
// In this mode:
// 1. Writes fail with core.ErrReadOnly (reported to the write error handler).
// 2. No directory is created.
// 3. The dev sandbox is BYPASSED (uses the real path).
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.readOnly = enabled
	}
}

// WithDevSafety controls the sandbox used when running via `go run` or
// `go test`. By default (true) file-based adapters are redirected into a
// temporary directory.
//
// CAUTION: Only disable this if you are sure your code is safe.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.devSafety = enabled
	}
}

// WithForceTemp forces the use of the temporary sandbox.
func WithForceTemp(force bool) Option {
	return func(o *options) {
		o.forceTemp = force
	}
}

// WithMustExist makes the fs adapter fail when the data directory is missing.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.mustExist = must
	}
}

// WithS3 configures the s3 adapter. A non-empty uri passed to New overrides
// the bucket.
func WithS3(cfg s3.Config) Option {
	return func(o *options) {
		o.s3 = cfg
	}
}

// WithRedis configures the redis adapter. A non-empty uri passed to New
// overrides the address.
func WithRedis(cfg redis.Config) Option {
	return func(o *options) {
		o.redis = cfg
	}
}
