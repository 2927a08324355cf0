package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/harun/atrium/internal/observability"
)

// Watcher monitors the artifacts directory and reports changed artifacts
// after a debounce window, so that a batch of file writes triggers a single
// redeployment.
type Watcher struct {
	watcher  *fsnotify.Watcher
	logger   zerolog.Logger
	root     string
	debounce time.Duration
	onChange func(name string)

	mu     sync.Mutex
	timers map[string]*time.Timer
	stopCh chan struct{}
}

// NewWatcher creates a watcher over the artifacts directory root. onChange
// receives the name of the changed artifact directory.
func NewWatcher(logger zerolog.Logger, root string, debounce time.Duration, onChange func(name string)) (*Watcher, error) {
	if onChange == nil {
		return nil, fmt.Errorf("change callback is required")
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &Watcher{
		watcher:  fsw,
		logger:   logger.With().Str("component", "artifact-watcher").Logger(),
		root:     root,
		debounce: debounce,
		onChange: onChange,
		timers:   make(map[string]*time.Timer),
		stopCh:   make(chan struct{}),
	}, nil
}

// Start begins watching the artifacts directory and the artifact directories
// already present under it.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(w.root); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.root, err)
	}

	entries, err := os.ReadDir(w.root)
	if err != nil {
		return fmt.Errorf("failed to read artifacts directory %s: %w", w.root, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if err := w.watcher.Add(filepath.Join(w.root, entry.Name())); err != nil {
			w.logger.Warn().Err(err).Str("artifact", entry.Name()).Msg("Failed to watch artifact directory")
		}
	}

	go w.run()

	w.logger.Info().Str("root", w.root).Dur("debounce", w.debounce).Msg("Artifact watcher started")
	return nil
}

// Stop stops watching and cancels pending notifications.
func (w *Watcher) Stop() {
	close(w.stopCh)
	_ = w.watcher.Close()

	w.mu.Lock()
	for name, timer := range w.timers {
		timer.Stop()
		delete(w.timers, name)
	}
	w.mu.Unlock()
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error().Err(err).Msg("Artifact watcher error")

		case <-w.stopCh:
			return
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	name, ok := w.artifactFor(event.Name)
	if !ok {
		return
	}

	observability.RecordWatcherEvent(opLabel(event.Op))

	// A directory created at the top level is a new artifact; watch inside
	// it so later descriptor edits are seen too.
	if event.Has(fsnotify.Create) {
		path := filepath.Join(w.root, name)
		if info, err := os.Stat(path); err == nil && info.IsDir() && event.Name == path {
			if err := w.watcher.Add(path); err != nil {
				w.logger.Warn().Err(err).Str("artifact", name).Msg("Failed to watch artifact directory")
			}
		}
	}

	w.logger.Debug().
		Str("artifact", name).
		Str("op", event.Op.String()).
		Str("path", event.Name).
		Msg("Artifact change detected")

	w.scheduleNotify(name)
}

// artifactFor maps an event path to the artifact directory it belongs to.
// Paths outside the root and hidden entries are ignored.
func (w *Watcher) artifactFor(path string) (string, bool) {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}

	name := rel
	if idx := strings.IndexByte(rel, filepath.Separator); idx >= 0 {
		name = rel[:idx]
	}
	if name == "" || strings.HasPrefix(name, ".") {
		return "", false
	}
	return name, true
}

// scheduleNotify arms the per-artifact debounce timer, replacing any pending
// one so rapid successive writes collapse into a single notification.
func (w *Watcher) scheduleNotify(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.timers[name]; ok {
		timer.Stop()
	}
	w.timers[name] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, name)
		w.mu.Unlock()

		select {
		case <-w.stopCh:
			return
		default:
		}
		w.onChange(name)
	})
}

func opLabel(op fsnotify.Op) string {
	switch {
	case op.Has(fsnotify.Create):
		return "create"
	case op.Has(fsnotify.Write):
		return "write"
	case op.Has(fsnotify.Remove):
		return "remove"
	case op.Has(fsnotify.Rename):
		return "rename"
	default:
		return "other"
	}
}
