package watch_test

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dedene/tungsten-cli/internal/watch"
)

func TestFile_CallsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "post.txt")
	require.NoError(t, os.WriteFile(path, []byte("one"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32

	done := make(chan error, 1)
	go func() {
		done <- watch.File(ctx, path, 20*time.Millisecond, func() error {
			calls.Add(1)

			return nil
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("two"), 0o644))

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestFile_MissingDir(t *testing.T) {
	err := watch.File(context.Background(), filepath.Join(t.TempDir(), "nope", "post.txt"), 0, func() error { return nil })
	require.Error(t, err)
}

func TestFile_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path := filepath.Join(t.TempDir(), "post.txt")
	assert.NoError(t, watch.File(ctx, path, 0, func() error { return nil }))
}
