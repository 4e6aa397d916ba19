// Package watch re-runs a handler whenever a watched model file changes.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/voxgeo/pkg/formats"
)

// ErrClosed is returned when adding paths to a stopped watcher.
var ErrClosed = errors.New("watcher closed")

// Handler is called with the path of a model that was created or written.
type Handler func(ctx context.Context, path string) error

// Watcher watches model files and directories. Bursts of events for the
// same file are coalesced: the handler runs once the file has been quiet
// for the debounce interval.
type Watcher struct {
	// OnRemove, when set, is called with the path of a watched model that
	// was removed or renamed away. Set it before Run.
	OnRemove func(path string)

	fs       *fsnotify.Watcher
	handler  Handler
	debounce time.Duration
	log      *zap.Logger

	// files restricts events in a directory to explicitly added files.
	// Directories added as a whole map to nil.
	files map[string]map[string]bool
	done  bool
}

// New creates a watcher. log may be nil.
func New(handler Handler, debounce time.Duration, log *zap.Logger) (*Watcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{
		fs:       fsWatch,
		handler:  handler,
		debounce: debounce,
		log:      log,
		files:    make(map[string]map[string]bool),
	}, nil
}

// Add watches path. A file is watched through its parent directory so that
// editors which replace files on save are still seen. A directory is
// watched recursively for every supported model format. Add must be called
// before Run.
func (w *Watcher) Add(path string) error {
	if w.done {
		return ErrClosed
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return err
	}

	if info.IsDir() {
		// Filters below a whole directory no longer apply.
		for dir, only := range w.files {
			if only != nil && within(abs, dir) {
				delete(w.files, dir)
			}
		}
		w.files[abs] = nil
		return w.addRecursive(abs)
	}

	dir := filepath.Dir(abs)
	only, watched := w.files[dir]
	switch {
	case w.covered(dir):
		// Already watched as a whole.
		return nil
	case watched:
		only[abs] = true
	default:
		w.files[dir] = map[string]bool{abs: true}
	}
	return w.fs.Add(dir)
}

// addRecursive adds all directories under root to the watch list.
func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.fs.Add(path)
		}
		return nil
	})
}

// covered reports whether dir lies in a directory tree that is watched
// as a whole.
func (w *Watcher) covered(dir string) bool {
	d := dir
	for !w.wholeDir(d) {
		parent := filepath.Dir(d)
		if parent == d {
			return false
		}
		d = parent
	}
	return true
}

// within reports whether path is root or lies below it.
func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// wholeDir reports whether dir is watched for every model it contains.
func (w *Watcher) wholeDir(dir string) bool {
	only, ok := w.files[dir]
	return ok && only == nil
}

// wanted reports whether an event for path should trigger the handler.
func (w *Watcher) wanted(path string) bool {
	if !formats.IsSupported(path) {
		return false
	}
	only, ok := w.files[filepath.Dir(path)]
	if !ok || only == nil {
		return true
	}
	return only[path]
}

// Run delivers events until ctx is done, then closes the watcher. Handler
// errors are logged and do not stop the loop.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() {
		w.done = true
		w.fs.Close()
	}()

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case e, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			name := filepath.Clean(e.Name)

			if e.Op&fsnotify.Create != 0 {
				if s, err := os.Stat(name); err == nil && s.IsDir() {
					if w.wholeDir(filepath.Dir(name)) {
						w.files[name] = nil
						if err := w.addRecursive(name); err != nil {
							w.log.Warn("watching new directory", zap.String("path", name), zap.Error(err))
						}
					}
					continue
				}
			}
			if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				delete(pending, name)
				if w.OnRemove != nil && w.wanted(name) {
					w.log.Debug("model removed", zap.String("path", name), zap.Stringer("op", e.Op))
					w.OnRemove(name)
				}
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) == 0 || !w.wanted(name) {
				continue
			}
			w.log.Debug("model changed", zap.String("path", name), zap.Stringer("op", e.Op))
			pending[name] = struct{}{}
			timer.Reset(w.debounce)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("file watcher error", zap.Error(err))

		case <-timer.C:
			w.flush(ctx, pending)

		case <-ctx.Done():
			return nil
		}
	}
}

func (w *Watcher) flush(ctx context.Context, pending map[string]struct{}) {
	paths := make([]string, 0, len(pending))
	for p := range pending {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	clear(pending)

	for _, p := range paths {
		if ctx.Err() != nil {
			return
		}
		if err := w.handler(ctx, p); err != nil {
			w.log.Error("handling change", zap.String("path", p), zap.Error(err))
		}
	}
}
