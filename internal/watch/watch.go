package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/ib-77/memosum/internal/memo"
	"github.com/ib-77/memosum/pkg/memocalc"
)

// Event is one settled change of the watched file.
type Event struct {
	Path   string
	Text   string
	Result memocalc.Result
	Err    error
}

type Options struct {
	Debounce time.Duration
	Engine   *memocalc.Engine
	Logger   *zap.Logger
}

// Watcher re-extracts a text file whenever it changes. The parent directory is watched
// rather than the file so that editors replacing the file on save are followed.
type Watcher struct {
	path      string
	opts      Options
	onChange  func(Event)
	watcher   *fsnotify.Watcher
	debouncer *memo.Debouncer

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func New(path string, opts Options, onChange func(Event)) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 300 * time.Millisecond
	}
	if opts.Engine == nil {
		opts.Engine = memocalc.New()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		path:      abs,
		opts:      opts,
		onChange:  onChange,
		watcher:   w,
		debouncer: memo.NewDebouncer(opts.Debounce),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}, nil
}

// Start reports the current content of the file, then watches it until ctx is done or Stop
// is called. It does not block.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	w.opts.Logger.Debug("watching file", zap.String("path", w.path))

	w.emit()
	go w.run(ctx)
	return nil
}

// Stop ends watching and waits for the event loop and any running callback.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		_ = w.watcher.Close()
		w.debouncer.Close()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	w.debouncer.Close()
	if err := w.watcher.Close(); err != nil {
		w.opts.Logger.Error("closing watcher", zap.Error(err))
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			w.debouncer.Schedule(w.path, w.emit)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.opts.Logger.Error("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) emit() {
	data, err := os.ReadFile(w.path)
	if err != nil {
		w.onChange(Event{Path: w.path, Result: memocalc.Empty(), Err: err})
		return
	}
	text := string(data)
	w.onChange(Event{Path: w.path, Text: text, Result: w.opts.Engine.Extract(text)})
}
