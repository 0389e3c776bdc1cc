package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/noteease/pkg/adapters/fs"
	"github.com/aretw0/noteease/pkg/core"
)

func TestWatch_ReportsExternalWrites(t *testing.T) {
	repo, path := setupRepo(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := repo.Watch(ctx)
	require.NoError(t, err)

	// Another process rewrites the blob.
	require.NoError(t, os.WriteFile(filepath.Join(path, "notes.json"), []byte(`[{"id":"9"}]`), 0644))

	select {
	case e := <-events:
		assert.Equal(t, core.EventExternalChange, e.Type)
		assert.Equal(t, "notes", e.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for external change event")
	}
}

func TestWatch_IgnoresOwnWrites(t *testing.T) {
	repo, path := setupRepo(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := repo.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, repo.Set(ctx, "notes", []byte(`[]`)))
	require.NoError(t, os.WriteFile(filepath.Join(path, "ignored.txt"), []byte("x"), 0644))

	select {
	case e := <-events:
		t.Fatalf("unexpected event %v", e)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatch_ClosesOnCancel(t *testing.T) {
	repo, _ := setupRepo(t)

	ctx, cancel := context.WithCancel(context.Background())
	events, err := repo.Watch(ctx)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		state := repo.State().(fs.RepositoryState)
		return state.WatcherActive
	}, time.Second, 10*time.Millisecond)

	cancel()

	select {
	case _, ok := <-events:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("events channel not closed")
	}
	assert.False(t, repo.State().(fs.RepositoryState).WatcherActive)
}
