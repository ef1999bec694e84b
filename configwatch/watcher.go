// Package configwatch reloads configuration when its files change.
//
// Directories rather than files are watched, because editors commonly save
// by writing a temporary file and renaming it over the original. Bursts of
// events are collapsed with a debounce delay before OnChange runs.
package configwatch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/GoCodeAlone/taskmaster"
)

// DefaultDebounce is used when Options.Debounce is zero.
const DefaultDebounce = 250 * time.Millisecond

var (
	ErrNoPaths        = errors.New("configwatch: no paths to watch")
	ErrNoCallback     = errors.New("configwatch: no change callback")
	ErrAlreadyStarted = errors.New("configwatch: already started")
)

// Options configure a Watcher.
type Options struct {
	Paths    []string
	Debounce time.Duration
	// OnChange runs after a burst of changes settles. Calls never overlap.
	OnChange func(ctx context.Context) error
	Logger   taskmaster.Logger
}

// Watcher watches a fixed set of files.
type Watcher struct {
	opts    Options
	files   map[string]bool
	logger  taskmaster.Logger
	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	cancel  context.CancelFunc
	done    chan struct{}
	reloads int
}

// New validates opts. Nothing is watched until Start.
func New(opts Options) (*Watcher, error) {
	if len(opts.Paths) == 0 {
		return nil, ErrNoPaths
	}
	if opts.OnChange == nil {
		return nil, ErrNoCallback
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	files := make(map[string]bool, len(opts.Paths))
	for _, p := range opts.Paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("configwatch: resolve %s: %w", p, err)
		}
		files[abs] = true
	}
	return &Watcher{opts: opts, files: files, logger: taskmaster.LoggerOrNop(opts.Logger)}, nil
}

// Start begins watching. The watcher stops when ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fsw != nil {
		return ErrAlreadyStarted
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("configwatch: create watcher: %w", err)
	}
	dirs := make(map[string]bool)
	for f := range w.files {
		dirs[filepath.Dir(f)] = true
	}
	for d := range dirs {
		if err := fsw.Add(d); err != nil {
			_ = fsw.Close()
			return fmt.Errorf("configwatch: watch %s: %w", d, err)
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.fsw, w.cancel, w.done = fsw, cancel, make(chan struct{})
	go w.loop(runCtx, fsw, w.done)

	w.logger.Info("Watching configuration", "paths", w.opts.Paths)
	return nil
}

// Stop ends watching and waits for a running OnChange to return.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	fsw, cancel, done := w.fsw, w.cancel, w.done
	w.fsw, w.cancel, w.done = nil, nil, nil
	w.mu.Unlock()

	if fsw == nil {
		return nil
	}
	cancel()
	err := fsw.Close()
	<-done
	return err
}

// Reloads counts completed OnChange calls.
func (w *Watcher) Reloads() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reloads
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher, done chan struct{}) {
	defer close(done)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("Configuration file changed", "path", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.opts.Debounce)
			} else {
				timer.Reset(w.opts.Debounce)
			}
			fire = timer.C

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Configuration watch error", "error", err)

		case <-fire:
			fire = nil
			if err := w.opts.OnChange(ctx); err != nil {
				w.logger.Error("Configuration reload failed", "error", err)
				continue
			}
			w.mu.Lock()
			w.reloads++
			w.mu.Unlock()
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return w.files[abs]
}
