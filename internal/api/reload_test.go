package api

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingReloader struct {
	calls atomic.Int32
}

func (c *countingReloader) ReloadPolicy() error {
	c.calls.Add(1)
	return nil
}

func TestReloaderTriggersOnWrite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scope: extended\n"), 0o600))

	target := &countingReloader{}
	r, err := NewReloader(target, slog.New(slog.DiscardHandler), path)
	require.NoError(t, err)
	r.debounce = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	// Other files in the directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(path, []byte("scope: none\n"), 0o600))

	assert.Eventually(t, func() bool { return target.calls.Load() >= 1 }, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("reloader did not stop")
	}
}

func TestReloaderSkipsMissingDirectory(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "gone", "policy.yaml")
	r, err := NewReloader(&countingReloader{}, slog.New(slog.DiscardHandler), "", missing)
	require.NoError(t, err)
	assert.Empty(t, r.files)
	require.NoError(t, r.watcher.Close())
}
