// Package noteease is the composition root for the noteease application.
//
// It connects the note store (pkg/core) with a persistence adapter
// (pkg/storage) and one of the key-value backends under pkg/adapters.
//
// The whole note collection is kept in memory and written back as a single
// blob after every change. Reads never fail: a missing or damaged blob is an
// empty collection. Writes happen in the background and are awaited only by
// Flush and Close.
//
// Backends:
//
//   - fs: one file per key in a data directory, with change watching (default).
//   - memory: process-local map, for tests and demos.
//   - sqlite: one row per key.
//   - s3: one object per key in an S3-compatible bucket.
//   - redis: one string per key.
//
// Usage:
//
//	store, err := noteease.New(ctx, "./notes",
//		noteease.WithFormat("yaml"),
//		noteease.WithLogger(logger),
//	)
//	if err != nil {
//		return err
//	}
//	defer store.Close(ctx)
//
//	if noteease.ShouldCreate(title, content) {
//		store.Create(noteease.NewNote(title, content, time.Now()))
//	}
package noteease
