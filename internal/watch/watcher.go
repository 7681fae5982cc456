// Package watch turns filesystem changes under a directory into debounced
// per-file notifications.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDelay is the per-path debounce applied when Watcher.Delay is zero.
const DefaultDelay = 50 * time.Millisecond

// Watcher watches a directory tree and notifies its Broadcaster with
// "./<relative path>" once a file has stopped changing for Delay.
type Watcher struct {
	Root    string
	Delay   time.Duration
	Changes *Broadcaster

	logger    *zap.Logger
	fsw       *fsnotify.Watcher
	debouncer *Debouncer
}

// New creates a Watcher over root and adds every directory below it.
// Directories whose name starts with "." are skipped.
func New(root string, b *Broadcaster, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve watch root: %w", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	w := &Watcher{
		Root:      abs,
		Delay:     DefaultDelay,
		Changes:   b,
		logger:    logger,
		fsw:       fsw,
		debouncer: NewDebouncer(),
	}
	if err := w.addTree(abs); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to add directories to watch: %w", err)
	}
	return w, nil
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		w.logger.Debug("Adding directory to watch", zap.String("path", path))
		return w.fsw.Add(path)
	})
}

// Run processes events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Info("Watching for changes", zap.String("root", w.Root))
	defer w.debouncer.Stop()
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watcher error", zap.Error(err))

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	rel, ok := w.relative(event.Name)
	if !ok {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.logger.Warn("Failed to watch new directory", zap.String("path", rel), zap.Error(err))
			}
			// Files created before the watch was added, or moved in with
			// the directory, produce no events of their own.
			w.scheduleTree(event.Name)
			return
		}
	}

	w.logger.Debug("File change detected", zap.String("file", rel), zap.String("op", event.Op.String()))
	w.schedule(rel)
}

func (w *Watcher) schedule(rel string) {
	delay := w.Delay
	if delay <= 0 {
		delay = DefaultDelay
	}
	w.debouncer.Do(rel, delay, func() {
		w.Changes.Notify("./" + rel)
	})
}

// scheduleTree schedules every file below dir.
func (w *Watcher) scheduleTree(dir string) {
	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if rel, ok := w.relative(path); ok {
			w.schedule(rel)
		}
		return nil
	})
}

// relative returns name relative to the root with forward slashes, and
// false for paths outside the root or under a dot-prefixed segment.
func (w *Watcher) relative(name string) (string, bool) {
	rel, err := filepath.Rel(w.Root, name)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if rel == "." || strings.HasPrefix(rel, "../") || rel == ".." {
		return "", false
	}
	for _, seg := range strings.Split(rel, "/") {
		if strings.HasPrefix(seg, ".") {
			return "", false
		}
	}
	return rel, true
}

// Close stops watching.
func (w *Watcher) Close() error {
	w.debouncer.Stop()
	return w.fsw.Close()
}
