// Package watch reports changed Markdown files under a directory tree.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/leonardomso/mdlinks/internal/scanner"
)

// DefaultDebounce is how long the tree must be quiet before changes are
// reported.
const DefaultDebounce = 300 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	Root       string
	Extensions []string // scanner.MarkdownExtensions when empty
	Debounce   time.Duration
}

// Watcher batches filesystem events into sets of changed files.
type Watcher struct {
	fs   *fsnotify.Watcher
	opts Options
	exts map[string]bool

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
	flush   chan struct{}
}

// New starts watching every non-hidden directory under opts.Root.
func New(opts Options) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = scanner.MarkdownExtensions
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	w := &Watcher{
		fs:      fw,
		opts:    opts,
		exts:    make(map[string]bool, len(opts.Extensions)),
		pending: make(map[string]struct{}),
		flush:   make(chan struct{}, 1),
	}
	for _, ext := range opts.Extensions {
		w.exts[strings.ToLower(ext)] = true
	}
	if err := w.addDirsRecursive(opts.Root); err != nil {
		_ = fw.Close()
		return nil, err
	}
	return w, nil
}

// Close stops watching.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.fs.Close()
}

// Run delivers batches of changed file paths, sorted, to fn until ctx is
// done or the watcher is closed. A path in a batch may no longer exist.
func (w *Watcher) Run(ctx context.Context, fn func(paths []string)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", "error", err)
		case <-w.flush:
			if paths := w.takePending(); len(paths) > 0 {
				fn(paths)
			}
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if strings.HasPrefix(filepath.Base(ev.Name), ".") {
		return
	}
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			_ = w.addDirsRecursive(ev.Name)
			return
		}
	}
	if !w.exts[strings.ToLower(filepath.Ext(ev.Name))] {
		return
	}
	if ev.Op == fsnotify.Chmod {
		return
	}
	slog.Debug("file change detected", "path", ev.Name, "op", ev.Op.String())
	w.trigger(ev.Name)
}

// trigger records path and restarts the debounce timer.
func (w *Watcher) trigger(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[path] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.opts.Debounce, func() {
		select {
		case w.flush <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) takePending() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	clear(w.pending)
	slices.Sort(paths)
	return paths
}

func (w *Watcher) addDirsRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return fmt.Errorf("watching %s: %w", root, err)
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			slog.Warn("watch add failed", "dir", path, "error", err)
		}
		return nil
	})
}
