// Package dropzone picks the CSV file for batch analysis, either from an
// explicit path or from files dropped into a watched inbox directory.
package dropzone

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// ErrNotCSV rejects anything that is not a .csv file.
var ErrNotCSV = errors.New("Please drop a .csv file")

// Selection is the chosen batch file.
type Selection struct {
	Name string
	Path string
	Size int64
}

// Label is "name (N KB)".
func (s Selection) Label() string {
	return fmt.Sprintf("%s (%d KB)", s.Name, int(math.Round(float64(s.Size)/1024)))
}

// Classify accepts a path by extension.
func Classify(path string, size int64) (Selection, error) {
	name := filepath.Base(path)
	if !strings.HasSuffix(name, ".csv") {
		return Selection{}, ErrNotCSV
	}
	return Selection{Name: name, Path: path, Size: size}, nil
}

// Select stats path and classifies it.
func Select(path string) (Selection, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Selection{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	if info.IsDir() {
		return Selection{}, ErrNotCSV
	}
	return Classify(path, info.Size())
}

// Event is one drop: either a usable selection or the reason it was refused.
type Event struct {
	Selection Selection
	Name      string
	Err       error
}

// Watcher reports files that land in an inbox directory. Writes are debounced
// so a file is reported once it stops changing.
type Watcher struct {
	dir      string
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   zerolog.Logger
	events   chan Event

	mu      sync.Mutex
	pending map[string]time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWatcher creates a watcher for dir
func NewWatcher(dir string, debounce time.Duration, logger zerolog.Logger) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		dir:      dir,
		watcher:  watcher,
		debounce: debounce,
		logger:   logger,
		events:   make(chan Event, 16),
		pending:  make(map[string]time.Time),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Events delivers drops. The channel is closed by Close.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Watch starts watching, creating the inbox if needed.
func (w *Watcher) Watch() error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("failed to create inbox: %w", err)
	}
	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}

	w.wg.Add(2)
	go w.processEvents()
	go w.processPending()
	return nil
}

// Close stops watching.
func (w *Watcher) Close() error {
	w.cancel()
	err := w.watcher.Close()
	w.wg.Wait()
	close(w.events)
	return err
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if strings.HasPrefix(filepath.Base(event.Name), ".") {
				continue
			}
			w.mu.Lock()
			w.pending[event.Name] = time.Now()
			w.mu.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Str("dir", w.dir).Msg("inbox watch error")
		}
	}
}

func (w *Watcher) processPending() {
	defer w.wg.Done()
	tick := w.debounce / 2
	if tick <= 0 {
		tick = 50 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case <-ticker.C:
			now := time.Now()
			var ready []string
			w.mu.Lock()
			for path, changed := range w.pending {
				if now.Sub(changed) >= w.debounce {
					ready = append(ready, path)
					delete(w.pending, path)
				}
			}
			w.mu.Unlock()

			for _, path := range ready {
				w.emit(path)
			}
		}
	}
}

func (w *Watcher) emit(path string) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}

	ev := Event{Name: filepath.Base(path)}
	ev.Selection, ev.Err = Classify(path, info.Size())
	w.logger.Debug().Str("file", ev.Name).Bool("accepted", ev.Err == nil).Msg("inbox drop")

	select {
	case w.events <- ev:
	case <-w.ctx.Done():
	}
}
