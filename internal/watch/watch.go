// Package watch re-runs ingestion for a directory whenever its documents change.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/thywilljoshua/studyaid/internal/ingest"
)

const DefaultDebounce = 500 * time.Millisecond

// Handler receives the full, sorted list of supported files in the directory.
type Handler func(ctx context.Context, paths []string)

type Watcher struct {
	dir      string
	debounce time.Duration
	logger   *slog.Logger
	fsw      *fsnotify.Watcher
}

func New(dir string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	return &Watcher{dir: dir, debounce: debounce, logger: logger, fsw: fsw}, nil
}

// Run calls fn once for the current contents and again after every burst of
// changes settles. It returns when ctx is done or the watcher fails.
func (w *Watcher) Run(ctx context.Context, fn Handler) error {
	defer w.fsw.Close()
	if err := w.fire(ctx, fn); err != nil {
		return err
	}

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !relevant(ev) {
				continue
			}
			w.logger.Debug("document changed", "path", ev.Name, "op", ev.Op.String())
			timer.Reset(w.debounce)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "dir", w.dir, "error", err)
		case <-timer.C:
			if err := w.fire(ctx, fn); err != nil {
				return err
			}
		}
	}
}

func (w *Watcher) fire(ctx context.Context, fn Handler) error {
	paths, err := ingest.ScanDir(w.dir)
	if err != nil {
		return fmt.Errorf("scan %s: %w", w.dir, err)
	}
	fn(ctx, paths)
	return nil
}

func relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	base := filepath.Base(ev.Name)
	return !strings.HasPrefix(base, ".") && ingest.Accepts(base)
}
