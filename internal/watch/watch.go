// Package watch re-converts scene files when they change on disk.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/meshconv/internal/batch"
	"github.com/Faultbox/meshconv/internal/convert"
	"github.com/Faultbox/meshconv/pkg/meshasset"
	"github.com/Faultbox/meshconv/pkg/scene"
)

// ErrNotDirectory is returned by New when the watched path is not a directory.
var ErrNotDirectory = errors.New("watch path is not a directory")

// Config holds watch settings.
type Config struct {
	Dir       string
	OutputDir string
	Debounce  time.Duration
	Options   convert.Options
	Writer    meshasset.Writer
	Log       *zap.Logger

	// OnResult is called after every conversion attempt, from the Run goroutine.
	OnResult func(batch.Result)
}

// Watcher converts every scene file below a directory on start and again
// whenever it is created or written.
type Watcher struct {
	cfg     Config
	log     *zap.Logger
	conv    *convert.Converter
	fs      *fsnotify.Watcher
	cache   *Cache
	pending map[string]*debounce
	ready   chan scheduled
	gen     uint64
}

// debounce is the timer of a pending conversion. gen identifies the timer so
// a delivery from a replaced timer can be told apart.
type debounce struct {
	timer *time.Timer
	gen   uint64
}

type scheduled struct {
	path string
	gen  uint64
}

// New creates a watcher for cfg.Dir.
func New(cfg Config) (*Watcher, error) {
	info, err := os.Stat(cfg.Dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, ErrNotDirectory
	}
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}

	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		cfg:     cfg,
		log:     cfg.Log,
		conv:    convert.New(cfg.Log.Named("convert"), cfg.Options),
		fs:      fsWatch,
		cache:   NewCache(),
		pending: make(map[string]*debounce),
		ready:   make(chan scheduled),
	}, nil
}

// Cache returns the content cache.
func (w *Watcher) Cache() *Cache {
	return w.cache
}

// Run watches until ctx is done. The watcher cannot be reused afterwards.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fs.Close()

	var initial []string
	if err := w.watchRecursive(w.cfg.Dir, &initial); err != nil {
		return err
	}
	w.log.Info("watching", zap.String("dir", w.cfg.Dir), zap.Int("scenes", len(initial)))
	for _, path := range initial {
		w.convert(ctx, path)
	}

	for {
		select {
		case <-ctx.Done():
			for _, p := range w.pending {
				p.timer.Stop()
			}
			return nil

		case e, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, e)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.Error("watch error", zap.Error(err))

		case s := <-w.ready:
			if w.due(s) {
				w.convert(ctx, s.path)
			}
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, e fsnotify.Event) {
	if w.isOutputDir(e.Name) {
		return
	}
	if e.Op&fsnotify.Create != 0 {
		if s, err := os.Stat(e.Name); err == nil && s.IsDir() {
			var found []string
			if err := w.watchRecursive(e.Name, &found); err != nil {
				w.log.Error("watching new directory", zap.String("dir", e.Name), zap.Error(err))
			}
			for _, path := range found {
				w.schedule(ctx, path)
			}
			return
		}
	}

	if !scene.IsSceneFile(e.Name) {
		return
	}

	if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
		w.schedule(ctx, e.Name)
	}
	if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		w.cache.Remove(e.Name)
	}
}

// schedule converts path once no event for it arrived for the debounce period.
// A timer that already fired is replaced rather than re-armed, so its pending
// delivery is ignored by due.
func (w *Watcher) schedule(ctx context.Context, path string) {
	if p, ok := w.pending[path]; ok && p.timer.Stop() {
		p.timer.Reset(w.cfg.Debounce)
		return
	}

	w.gen++
	s := scheduled{path: path, gen: w.gen}
	timer := time.AfterFunc(w.cfg.Debounce, func() {
		select {
		case w.ready <- s:
		case <-ctx.Done():
		}
	})
	w.pending[path] = &debounce{timer: timer, gen: s.gen}
}

// due reports whether s comes from the current timer of its path and clears it.
func (w *Watcher) due(s scheduled) bool {
	p, ok := w.pending[s.path]
	if !ok || p.gen != s.gen {
		return false
	}
	delete(w.pending, s.path)
	return true
}

func (w *Watcher) convert(ctx context.Context, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		// Removed before the debounce period ended.
		w.log.Debug("skipping unreadable scene", zap.String("path", path), zap.Error(err))
		return
	}
	if w.cache.Unchanged(path, data) {
		w.log.Debug("scene unchanged", zap.String("path", path))
		return
	}

	rel, err := filepath.Rel(w.cfg.Dir, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	job := batch.Job{
		Input:  path,
		Output: batch.OutputPath(w.cfg.OutputDir, rel, w.cfg.Writer.Extension()),
	}

	res := batch.ConvertJob(ctx, w.conv, w.cfg.Writer, w.log, job)
	if res.Err == nil {
		w.cache.Set(path, data)
	}
	if w.cfg.OnResult != nil {
		w.cfg.OnResult(res)
	}
}

// watchRecursive adds dir and its subdirectories to the watch list and
// appends the scene files found to scenes.
func (w *Watcher) watchRecursive(dir string, scenes *[]string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && w.isOutputDir(path) {
				return filepath.SkipDir
			}
			return w.fs.Add(path)
		}
		if scene.IsSceneFile(path) {
			*scenes = append(*scenes, path)
		}
		return nil
	})
}

// isOutputDir reports whether path is the output directory, which may live
// inside the watched tree.
func (w *Watcher) isOutputDir(path string) bool {
	a, err1 := filepath.Abs(path)
	b, err2 := filepath.Abs(w.cfg.OutputDir)
	return err1 == nil && err2 == nil && a == b
}
