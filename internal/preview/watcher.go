package preview

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	ferrors "git.home.luguber.info/inful/sitecfg/internal/foundation/errors"
	"git.home.luguber.info/inful/sitecfg/internal/logfields"
	"git.home.luguber.info/inful/sitecfg/internal/util/sets"
)

// Watch reloads the configuration whenever one of the watched files
// changes, until ctx is canceled. The directories holding the files are
// watched rather than the files, so editors that replace a file on save
// are still seen. Bursts of events are debounced into one reload.
func (s *Server) Watch(ctx context.Context) error {
	if len(s.opts.WatchPaths) == 0 {
		<-ctx.Done()
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create file watcher").Build()
	}
	defer func() { _ = watcher.Close() }()

	files := sets.New[string]()
	dirs := sets.New[string]()
	for _, p := range s.opts.WatchPaths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to resolve config path").
				WithContext(ferrors.ContextSource, p).Build()
		}
		files.Add(abs)
		dirs.Add(filepath.Dir(abs))
	}
	for _, dir := range sets.Sorted(dirs) {
		if err := watcher.Add(dir); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to watch config directory").
				WithContext(ferrors.ContextSource, dir).Build()
		}
		s.logger.Info("Watching configuration", logfields.Path(dir))
	}

	trigger, stop := s.debouncer()
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isConfigEvent(event, files) {
				continue
			}
			s.logger.Debug("Config change detected", logfields.Path(event.Name), slog.String("op", event.Op.String()))
			trigger()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("Config watcher error", logfields.Error(err))
		}
	}
}

// isConfigEvent reports whether event touches a watched file in a way that
// can change its content. Removal alone is ignored; the following create
// triggers the reload.
func isConfigEvent(event fsnotify.Event, files sets.Set[string]) bool {
	if shouldIgnoreEvent(event.Name) {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil || !files.Has(abs) {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

// debouncer returns a trigger that schedules one Reload after the debounce
// window has passed without further triggers.
func (s *Server) debouncer() (trigger, stop func()) {
	var mu sync.Mutex
	var timer *time.Timer
	stopped := false
	trigger = func() {
		mu.Lock()
		defer mu.Unlock()
		if stopped {
			return
		}
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(s.opts.Debounce, func() { _ = s.Reload() })
	}
	stop = func() {
		mu.Lock()
		defer mu.Unlock()
		stopped = true
		if timer != nil {
			timer.Stop()
		}
	}
	return trigger, stop
}

// shouldIgnoreEvent filters editor swap files and other hidden files.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)

	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}
	return base == "Thumbs.db"
}
