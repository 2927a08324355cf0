package daemon

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type changeRecorder struct {
	mu    sync.Mutex
	names []string
}

func (r *changeRecorder) record(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = append(r.names, name)
}

func (r *changeRecorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.names...)
}

func (r *changeRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.names)
}

func startTestWatcher(t *testing.T, root string) *changeRecorder {
	t.Helper()

	recorder := &changeRecorder{}
	watcher, err := NewWatcher(disabledLogger(), root, 30*time.Millisecond, recorder.record)
	require.NoError(t, err)
	require.NoError(t, watcher.Start())
	t.Cleanup(watcher.Stop)
	return recorder
}

func TestNewWatcher(t *testing.T) {
	t.Run("requires a callback", func(t *testing.T) {
		_, err := NewWatcher(disabledLogger(), t.TempDir(), time.Second, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "change callback is required")
	})

	t.Run("start fails on a missing root", func(t *testing.T) {
		watcher, err := NewWatcher(disabledLogger(), filepath.Join(t.TempDir(), "missing"), time.Second, func(string) {})
		require.NoError(t, err)
		assert.Error(t, watcher.Start())
	})
}

func TestWatcher_DetectsChanges(t *testing.T) {
	t.Run("reports a new artifact directory", func(t *testing.T) {
		root := t.TempDir()
		recorder := startTestWatcher(t, root)

		require.NoError(t, os.MkdirAll(filepath.Join(root, "orders"), 0o755))

		require.Eventually(t, func() bool {
			return recorder.count() >= 1
		}, 2*time.Second, 10*time.Millisecond)
		assert.Contains(t, recorder.all(), "orders")
	})

	t.Run("reports a change inside an existing artifact", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(root, "orders"), 0o755))
		recorder := startTestWatcher(t, root)

		require.NoError(t, os.WriteFile(filepath.Join(root, "orders", "artifact.json"), []byte("{}"), 0o644))

		require.Eventually(t, func() bool {
			return recorder.count() >= 1
		}, 2*time.Second, 10*time.Millisecond)
		assert.Equal(t, []string{"orders"}, recorder.all())
	})

	t.Run("reports a removed artifact", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(root, "orders"), 0o755))
		recorder := startTestWatcher(t, root)

		require.NoError(t, os.RemoveAll(filepath.Join(root, "orders")))

		require.Eventually(t, func() bool {
			return recorder.count() >= 1
		}, 2*time.Second, 10*time.Millisecond)
		assert.Contains(t, recorder.all(), "orders")
	})

	t.Run("collapses rapid writes into one notification", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(root, "orders"), 0o755))
		recorder := startTestWatcher(t, root)

		for i := 0; i < 5; i++ {
			name := filepath.Join(root, "orders", "file"+string(rune('a'+i)))
			require.NoError(t, os.WriteFile(name, []byte("x"), 0o644))
		}

		require.Eventually(t, func() bool {
			return recorder.count() >= 1
		}, 2*time.Second, 10*time.Millisecond)

		// Allow any stray timers to fire before counting.
		time.Sleep(100 * time.Millisecond)
		assert.Equal(t, 1, recorder.count())
	})

	t.Run("ignores hidden entries", func(t *testing.T) {
		root := t.TempDir()
		recorder := startTestWatcher(t, root)

		require.NoError(t, os.WriteFile(filepath.Join(root, ".staging"), []byte("x"), 0o644))

		time.Sleep(150 * time.Millisecond)
		assert.Equal(t, 0, recorder.count())
	})
}

func TestWatcher_Stop(t *testing.T) {
	root := t.TempDir()
	recorder := &changeRecorder{}
	watcher, err := NewWatcher(disabledLogger(), root, 200*time.Millisecond, recorder.record)
	require.NoError(t, err)
	require.NoError(t, watcher.Start())

	require.NoError(t, os.MkdirAll(filepath.Join(root, "orders"), 0o755))
	time.Sleep(50 * time.Millisecond)

	watcher.Stop()
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, 0, recorder.count())
}

func TestWatcher_ArtifactFor(t *testing.T) {
	watcher, err := NewWatcher(disabledLogger(), "/data/artifacts", time.Second, func(string) {})
	require.NoError(t, err)
	defer watcher.Stop()

	tests := []struct {
		path string
		name string
		ok   bool
	}{
		{"/data/artifacts/orders", "orders", true},
		{"/data/artifacts/orders/artifact.json", "orders", true},
		{"/data/artifacts/orders/plugins/http/plugin.json", "orders", true},
		{"/data/artifacts", "", false},
		{"/data/artifacts/.staging", "", false},
		{"/elsewhere/file", "", false},
	}
	for _, tt := range tests {
		name, ok := watcher.artifactFor(tt.path)
		assert.Equal(t, tt.ok, ok, tt.path)
		assert.Equal(t, tt.name, name, tt.path)
	}
}
