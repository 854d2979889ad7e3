// Package confwatcher revalidates catalog files changed outside the editor.
package confwatcher

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gofrs/uuid"
	"github.com/kedro-org/kedro-lsp/src/catalog-lib/resolver"
	catalogvalidation "github.com/kedro-org/kedro-lsp/src/klsp/controller/catalog-validation"
	klspplugin "github.com/kedro-org/kedro-lsp/src/klsp/entity/klsp-plugin"
	"github.com/kedro-org/kedro-lsp/src/klsp/internal/clock"
	"github.com/kedro-org/kedro-lsp/src/klsp/repository/session"
	"github.com/uber-go/tally"
	"go.lsp.dev/protocol"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	_nameKey         = "conf-watcher"
	_debounceTimeout = 500 * time.Millisecond
)

// Controller watches the configuration directories of every open project.
type Controller interface {
	StartupInfo(ctx context.Context) (klspplugin.PluginInfo, error)
}

// Params are inbound parameters to initialize a new plugin.
type Params struct {
	fx.In

	Sessions   session.Repository
	Validation catalogvalidation.Controller
	Clock      clock.Clock
	Logger     *zap.SugaredLogger
	Stats      tally.Scope
	Lifecycle  fx.Lifecycle
}

// watcher is the subset of *fsnotify.Watcher used by the controller.
type watcher interface {
	Add(name string) error
	Remove(name string) error
	Close() error
	Events() <-chan fsnotify.Event
	Errors() <-chan error
}

type fsnotifyWatcher struct {
	*fsnotify.Watcher
}

func (w fsnotifyWatcher) Events() <-chan fsnotify.Event { return w.Watcher.Events }
func (w fsnotifyWatcher) Errors() <-chan error          { return w.Watcher.Errors }

type controller struct {
	sessions   session.Repository
	validation catalogvalidation.Controller
	clock      clock.Clock
	logger     *zap.SugaredLogger
	stats      tally.Scope

	newWatcher func() (watcher, error)
	watcher    watcher
	once       sync.Once
	closer     chan struct{}
	done       chan struct{}

	mu             sync.Mutex
	roots          map[string][]string
	debounceTimers map[string]clock.Timer
}

// New creates the configuration watcher. The underlying fsnotify watcher is created on first use.
func New(p Params) Controller {
	c := &controller{
		sessions:   p.Sessions,
		validation: p.Validation,
		clock:      p.Clock,
		logger:     p.Logger.With("plugin", _nameKey),
		stats:      p.Stats.SubScope("conf_watcher"),
		newWatcher: func() (watcher, error) {
			w, err := fsnotify.NewWatcher()
			if err != nil {
				return nil, err
			}
			return fsnotifyWatcher{w}, nil
		},
		roots:          make(map[string][]string),
		debounceTimers: make(map[string]clock.Timer),
	}
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			c.close()
			return nil
		},
	})
	return c
}

// StartupInfo returns PluginInfo for this controller.
func (c *controller) StartupInfo(ctx context.Context) (klspplugin.PluginInfo, error) {
	priorities := map[string]klspplugin.Priority{
		protocol.MethodInitialized:  klspplugin.PriorityAsync,
		klspplugin.MethodEndSession: klspplugin.PriorityRegular,
	}

	methods := &klspplugin.Methods{
		PluginNameKey: _nameKey,

		Initialized: c.initialized,
		EndSession:  c.endSession,
	}

	return klspplugin.PluginInfo{
		Priorities: priorities,
		Methods:    methods,
		NameKey:    _nameKey,
	}, nil
}

func (c *controller) initialized(ctx context.Context, params *protocol.InitializedParams) error {
	s, err := c.sessions.GetFromContext(ctx)
	if err != nil {
		return fmt.Errorf("getting session from context: %w", err)
	}
	if !s.HasProject() {
		return nil
	}

	var startErr error
	c.once.Do(func() {
		startErr = c.start()
	})
	if startErr != nil {
		c.logger.Warnf("File watcher unavailable, continuing without watching for changes: %v", startErr)
		return nil
	}
	if c.watcher == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.roots[s.WorkspaceRoot]; ok {
		return nil
	}

	base, env := s.Project.ConfDirs()
	var watched []string
	for _, dir := range []string{base, env} {
		if dir == "" {
			continue
		}
		for _, d := range subdirectories(dir) {
			if err := c.watcher.Add(d); err != nil {
				c.logger.Warnf("Failed to watch for changes in %q: %v", d, err)
				continue
			}
			watched = append(watched, d)
		}
	}
	c.roots[s.WorkspaceRoot] = watched
	c.stats.Gauge("watched_dirs").Update(float64(c.watchedCount()))
	return nil
}

func (c *controller) endSession(ctx context.Context, id uuid.UUID) error {
	s, err := c.sessions.Get(ctx, id)
	if err != nil {
		return nil
	}

	remaining, err := c.sessions.GetAllFromWorkspaceRoot(ctx, s.WorkspaceRoot)
	if err != nil {
		return err
	}
	for _, other := range remaining {
		if other.UUID != id && other.KedroEnabled {
			return nil
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range c.roots[s.WorkspaceRoot] {
		if err := c.watcher.Remove(d); err != nil {
			c.logger.Debugf("Failed to stop watching %q: %v", d, err)
		}
	}
	delete(c.roots, s.WorkspaceRoot)
	if timer, ok := c.debounceTimers[s.WorkspaceRoot]; ok {
		timer.Stop()
		delete(c.debounceTimers, s.WorkspaceRoot)
	}
	c.stats.Gauge("watched_dirs").Update(float64(c.watchedCount()))
	return nil
}

func (c *controller) start() error {
	w, err := c.newWatcher()
	if err != nil {
		return err
	}
	c.watcher = w
	c.closer = make(chan struct{})
	c.done = make(chan struct{})
	go c.handleChanges()
	return nil
}

func (c *controller) close() {
	// No watcher can be started once shutdown begins.
	c.once.Do(func() {})
	if c.closer == nil {
		return
	}
	close(c.closer)
	<-c.done
}

func (c *controller) handleChanges() {
	defer close(c.done)
	for {
		select {
		case event := <-c.watcher.Events():
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			c.handleDebounce(event)

		case err := <-c.watcher.Errors():
			c.logger.Warnf("Failure in configuration watcher: %v", err)

		case <-c.closer:
			c.mu.Lock()
			for _, timer := range c.debounceTimers {
				timer.Stop()
			}
			c.debounceTimers = make(map[string]clock.Timer)
			c.mu.Unlock()

			if err := c.watcher.Close(); err != nil {
				c.logger.Warnf("Failed to close configuration watcher: %v", err)
			}
			return
		}
	}
}

// handleDebounce collapses bursts of events into a single sweep per workspace root.
func (c *controller) handleDebounce(event fsnotify.Event) {
	if !isCatalogPath(event.Name) {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	root, ok := c.rootOf(event.Name)
	if !ok {
		return
	}
	c.stats.Counter("events").Inc(1)

	if timer, exists := c.debounceTimers[root]; exists {
		timer.Stop()
	}
	c.debounceTimers[root] = c.clock.AfterFunc(_debounceTimeout, func() {
		c.mu.Lock()
		delete(c.debounceTimers, root)
		c.mu.Unlock()

		if err := c.validation.Sweep(context.Background(), root); err != nil {
			c.logger.Warnf("Failed to revalidate %q after configuration change: %v", root, err)
		}
	})
}

// rootOf returns the workspace root whose watched directories contain name. Callers hold mu.
func (c *controller) rootOf(name string) (string, bool) {
	dir := filepath.Dir(name)
	for root, dirs := range c.roots {
		for _, d := range dirs {
			if d == dir {
				return root, true
			}
		}
	}
	return "", false
}

// watchedCount returns the number of watched directories. Callers hold mu.
func (c *controller) watchedCount() int {
	n := 0
	for _, dirs := range c.roots {
		n += len(dirs)
	}
	return n
}

// isCatalogPath reports whether a changed file could hold catalog configuration.
func isCatalogPath(name string) bool {
	p := filepath.ToSlash(name)
	if resolver.IsHidden(p) || !resolver.IsValidConfigPath(p) {
		return false
	}
	return resolver.IsCatalogFile(p) || strings.Contains(p, "/"+resolver.CategoryCatalog)
}

// subdirectories lists dir and every non-hidden directory below it, since fsnotify watches are not recursive.
func subdirectories(dir string) []string {
	var dirs []string
	_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		dirs = append(dirs, p)
		return nil
	})
	return dirs
}
