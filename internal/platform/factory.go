package platform

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/noteease/pkg/adapters/fs"
	"github.com/aretw0/noteease/pkg/adapters/memory"
	"github.com/aretw0/noteease/pkg/adapters/redis"
	"github.com/aretw0/noteease/pkg/adapters/s3"
	"github.com/aretw0/noteease/pkg/adapters/sqlite"
	"github.com/aretw0/noteease/pkg/core"
	"github.com/aretw0/noteease/pkg/storage"
)

// New opens the configured backend, loads the collection and returns a
// ready Store. The uri argument is adapter-specific: a directory for "fs", a
// database file for "sqlite", a bucket for "s3", an address for "redis";
// "memory" ignores it.
//
//	store, err := platform.New(ctx, "./notes", platform.WithFormat("yaml"))
func New(ctx context.Context, uri string, opts ...Option) (*core.Store, error) {
	o := apply(opts)

	codec, err := storage.CodecByName(o.format)
	if err != nil {
		return nil, err
	}

	kv, err := openKV(ctx, uri, o, codec)
	if err != nil {
		return nil, err
	}

	persister := storage.NewAdapter(kv, storage.Config{
		Key:    o.key,
		Codec:  codec,
		Logger: o.logger,
	})

	store := core.NewStore(persister,
		core.WithStoreLogger(o.logger),
		core.WithWriteErrorHandler(o.writeErrorHandler()),
		core.WithEventBuffer(o.eventBuffer),
	)
	store.Refresh(ctx)

	o.logger.Debug("store opened", "adapter", o.adapter, "key", persister.Key(), "count", len(store.List()))
	return store, nil
}

// OpenKV opens and initializes the configured backend without a Store.
func OpenKV(ctx context.Context, uri string, opts ...Option) (core.KV, error) {
	o := apply(opts)
	codec, err := storage.CodecByName(o.format)
	if err != nil {
		return nil, err
	}
	return openKV(ctx, uri, o, codec)
}

func openKV(ctx context.Context, uri string, o *options, codec storage.Codec) (core.KV, error) {
	kv := o.kv
	if kv == nil {
		var err error
		switch o.adapter {
		case AdapterFS:
			kv = newFS(uri, o, "."+codec.Name())
		case AdapterMemory:
			kv = memory.New()
		case AdapterSQLite:
			kv, err = openSQLite(uri, o)
		case AdapterS3:
			kv, err = openS3(ctx, uri, o)
		case AdapterRedis:
			kv = openRedis(uri, o)
		default:
			return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to open %s adapter: %w", o.adapter, err)
		}
	}

	if initializer, ok := kv.(core.Initializer); ok {
		if err := initializer.Initialize(ctx); err != nil {
			_ = kv.Close()
			return nil, err
		}
	}

	// fs enforces read-only itself.
	if o.readOnly && o.adapter != AdapterFS {
		kv = readOnly(kv)
	}
	return kv, nil
}

// dataPath applies the dev sandbox to file-based adapters.
func dataPath(path string, o *options) string {
	bypass := o.readOnly || !o.devSafety
	useTemp := o.forceTemp || (IsDevRun() && !bypass)
	resolved := ResolveDataPath(path, useTemp)

	if IsDevRun() {
		switch {
		case bypass && o.readOnly:
			o.logger.Debug("running in READ-ONLY mode (bypassing dev sandbox)", "path", resolved)
		case bypass:
			o.logger.Warn("running in UNSAFE mode (bypassing dev sandbox)", "path", resolved)
		default:
			o.logger.Debug("running in SAFE mode (dev sandbox enabled)", "path", resolved)
		}
	}
	if useTemp && resolved != path {
		o.logger.Warn("running in SAFE MODE (Dev/Test)", "original_path", path, "resolved_path", resolved)
	}
	return resolved
}

func newFS(path string, o *options, ext string) *fs.Repository {
	return fs.NewRepository(fs.Config{
		Path:         dataPath(path, o),
		MustExist:    o.mustExist,
		ReadOnly:     o.readOnly,
		Extension:    ext,
		Logger:       o.logger,
		ErrorHandler: o.onWatcherError,
	})
}

func openSQLite(path string, o *options) (*sqlite.KV, error) {
	if path == "" {
		path = filepath.Join(DataDirName, "notes.db")
	}
	path = dataPath(path, o)
	if !o.readOnly {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	return sqlite.Open(path)
}

func openS3(ctx context.Context, bucket string, o *options) (*s3.KV, error) {
	cfg := o.s3
	if bucket != "" {
		cfg.Bucket = bucket
	}
	return s3.New(ctx, cfg)
}

func openRedis(addr string, o *options) *redis.KV {
	cfg := o.redis
	if addr != "" {
		cfg.Addr = addr
	}
	return redis.New(cfg)
}

func (o *options) writeErrorHandler() func(error) {
	logger := o.logger
	user := o.onWriteError
	return func(err error) {
		logger.Error("background write failed", "adapter", o.adapter, "error", err)
		if user != nil {
			user(err)
		}
	}
}
