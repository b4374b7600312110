package audit

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher monitors the audit directory for out-of-band modification of the
// live log files. The logger's own appends grow the file; any removal,
// rename, or shrink of a .jsonl file can only come from outside and is
// raised as a warning.
type Watcher struct {
	watcher *fsnotify.Watcher
	logger  *Logger
	log     *zap.Logger
}

// NewWatcher creates a watcher over the audit logger's directory.
func NewWatcher(logger *Logger, log *zap.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{watcher: w, logger: logger, log: log}, nil
}

// Watch starts monitoring until ctx is cancelled.
func (w *Watcher) Watch(ctx context.Context) error {
	if err := w.watcher.Add(filepath.Dir(w.logger.File())); err != nil {
		return err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if filepath.Ext(event.Name) != ".jsonl" {
					continue
				}
				w.inspect(event)
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				w.log.Error("audit watcher error", zap.Error(err))
			}
		}
	}()
	return nil
}

func (w *Watcher) inspect(event fsnotify.Event) {
	switch {
	case event.Op&fsnotify.Remove == fsnotify.Remove,
		event.Op&fsnotify.Rename == fsnotify.Rename:
		w.log.Warn("audit file removed or renamed out of band",
			zap.String("file", event.Name))
	case event.Op&fsnotify.Write == fsnotify.Write:
		if event.Name != w.logger.File() {
			return
		}
		fi, err := os.Stat(event.Name)
		if err != nil {
			return
		}
		if fi.Size() < w.logger.ExpectedFileSize() {
			w.log.Warn("audit file shrank, possible tampering",
				zap.String("file", event.Name),
				zap.Int64("size", fi.Size()),
				zap.Int64("expected", w.logger.ExpectedFileSize()))
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}
