package commands

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/leapstack-labs/leapasp/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestWatchFiles_RerunsOnChange(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "prog.lp")
	other := filepath.Join(dir, "other.lp")
	require.NoError(t, os.WriteFile(watched, []byte("a."), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runs := make(chan struct{}, 10)
	done := make(chan error, 1)
	go func() {
		done <- watchFiles(ctx, []string{watched}, testutil.NewTestLogger(t), func(context.Context) {
			runs <- struct{}{}
		})
	}()

	// The watcher starts asynchronously; keep writing until a run is seen.
	// Writes are spaced well beyond the debounce so that each one can fire.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(3 * watchDebounce)
	defer tick.Stop()
	seen := false
	for !seen {
		select {
		case <-runs:
			seen = true
		case <-tick.C:
			require.NoError(t, os.WriteFile(other, []byte("b."), 0o644))
			require.NoError(t, os.WriteFile(watched, []byte("a. b."), 0o644))
		case <-deadline:
			t.Fatal("no run after file change")
		}
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watchFiles did not return after cancel")
	}
}

func TestWatchFiles_MissingDirectory(t *testing.T) {
	err := watchFiles(context.Background(), []string{filepath.Join(t.TempDir(), "missing", "x.lp")},
		testutil.NewTestLogger(t), func(context.Context) {})
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to watch")
}
