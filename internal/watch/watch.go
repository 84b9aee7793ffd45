// Package watch regenerates a project's lock file whenever its manifest
// content changes.
package watch

import (
	"context"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
	"go.trai.ch/zerr"
	"go.uber.org/zap"

	"github.com/frederic-klein/dustpkg/internal/lockfile"
	"github.com/frederic-klein/dustpkg/internal/project"
)

// DefaultDebounce coalesces the burst of events editors emit on save.
const DefaultDebounce = 100 * time.Millisecond

// ErrWatchFailed is returned when the project directory cannot be watched.
var ErrWatchFailed = zerr.New("failed to watch project directory")

// Watcher re-resolves a project on manifest changes. The project must live
// on the OS filesystem.
type Watcher struct {
	proj     *project.Project
	seed     *uint64
	log      *zap.SugaredLogger
	debounce time.Duration
	onUpdate func(*lockfile.Lockfile)

	primed bool
	last   uint64
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long the manifest must be quiet before resolving.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// OnUpdate registers a callback invoked after each lock file write.
func OnUpdate(fn func(*lockfile.Lockfile)) Option {
	return func(w *Watcher) {
		w.onUpdate = fn
	}
}

// New creates a watcher for p. seed is applied to every resolution.
func New(p *project.Project, seed *uint64, log *zap.SugaredLogger, opts ...Option) *Watcher {
	w := &Watcher{
		proj:     p,
		seed:     seed,
		log:      log,
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run resolves once, then on every manifest change, until ctx is done.
// Resolution failures are logged and do not stop the loop.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return zerr.Wrap(err, ErrWatchFailed.Error())
	}
	defer fw.Close() //nolint:errcheck // Best effort close in defer

	// Watch the directory: editors often replace the file rather than write it.
	dir := w.proj.Dir()
	if err := fw.Add(dir); err != nil {
		return zerr.With(zerr.Wrap(err, ErrWatchFailed.Error()), "dir", dir)
	}
	target := filepath.Clean(w.proj.ManifestPath())
	w.log.Infow("watching manifest", "path", target)

	w.refresh()

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				timer.Reset(w.debounce)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warnw("watch error", "error", err)

		case <-timer.C:
			w.refresh()
		}
	}
}

// refresh resolves the project if the manifest bytes differ from the last
// successful resolution. It reports whether a lock file was written.
func (w *Watcher) refresh() bool {
	path := w.proj.ManifestPath()
	data, err := afero.ReadFile(w.proj.FS(), path)
	if err != nil {
		w.log.Warnw("cannot read manifest", "path", path, "error", err)
		return false
	}

	sum := xxhash.Sum64(data)
	if w.primed && sum == w.last {
		w.log.Debugw("manifest unchanged", "hash", sum)
		return false
	}

	lock, err := w.proj.Update(w.seed)
	if err != nil {
		w.log.Errorw("resolve failed", "error", err)
		return false
	}
	w.primed = true
	w.last = sum

	if w.onUpdate != nil {
		w.onUpdate(lock)
	}
	return true
}
