// Package catalogvalidation runs the catalog validators over catalog files and publishes their diagnostics.
package catalogvalidation

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/uuid"
	"github.com/kedro-org/kedro-lsp/src/catalog-lib/model"
	"github.com/kedro-org/kedro-lsp/src/catalog-lib/parser"
	"github.com/kedro-org/kedro-lsp/src/catalog-lib/resolver"
	"github.com/kedro-org/kedro-lsp/src/catalog-lib/validator"
	"github.com/kedro-org/kedro-lsp/src/klsp/controller/diagnostics"
	docsync "github.com/kedro-org/kedro-lsp/src/klsp/controller/doc-sync"
	"github.com/kedro-org/kedro-lsp/src/klsp/entity"
	klspplugin "github.com/kedro-org/kedro-lsp/src/klsp/entity/klsp-plugin"
	"github.com/kedro-org/kedro-lsp/src/klsp/internal/clock"
	"github.com/kedro-org/kedro-lsp/src/klsp/internal/kedro"
	"github.com/kedro-org/kedro-lsp/src/klsp/repository/session"
	"github.com/uber-go/tally"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	_nameKey   = "catalog-validation"
	_configKey = "catalogValidation"

	_defaultSweepInterval  = 30 * time.Second
	_defaultParseCacheSize = 256
)

// Controller validates catalog files and publishes the resulting diagnostics.
type Controller interface {
	StartupInfo(ctx context.Context) (klspplugin.PluginInfo, error)
	// Validate runs one validation pass over text and publishes its diagnostics for docURI.
	// Files that are not catalog files are ignored.
	Validate(ctx context.Context, workspaceRoot string, docURI uri.URI, text string) error
	// Sweep validates every catalog file of the project at workspaceRoot.
	Sweep(ctx context.Context, workspaceRoot string) error
}

// Params are inbound parameters to initialize a new plugin.
type Params struct {
	fx.In

	Sessions    session.Repository
	Diagnostics diagnostics.Controller
	Documents   docsync.Controller
	Kedro       kedro.Service
	Clock       clock.Clock
	Config      config.Provider
	Logger      *zap.SugaredLogger
	Stats       tally.Scope
	Lifecycle   fx.Lifecycle
}

type options struct {
	SweepInterval  string `yaml:"sweepInterval"`
	ParseCacheSize int    `yaml:"parseCacheSize"`
}

type controller struct {
	sessions    session.Repository
	diagnostics diagnostics.Controller
	documents   docsync.Controller
	kedro       kedro.Service
	clock       clock.Clock
	logger      *zap.SugaredLogger
	stats       tally.Scope

	cache         *parser.Cache
	sweepInterval time.Duration
	sweeps        singleflight.Group

	// generations holds a *atomic.Uint64 per document URI.
	generations sync.Map
	publishMu   sync.Mutex

	stop chan struct{}
	done chan struct{}
}

// New creates the catalog validation controller and registers its periodic sweep with the lifecycle.
func New(p Params) (Controller, error) {
	opts := options{ParseCacheSize: _defaultParseCacheSize}
	if err := p.Config.Get(_configKey).Populate(&opts); err != nil {
		return nil, fmt.Errorf("getting %q from config: %w", _configKey, err)
	}

	interval := _defaultSweepInterval
	if opts.SweepInterval != "" {
		d, err := time.ParseDuration(opts.SweepInterval)
		if err != nil {
			return nil, fmt.Errorf("parsing %q: %w", _configKey+".sweepInterval", err)
		}
		interval = d
	}
	if interval <= 0 {
		return nil, fmt.Errorf("%q must be positive", _configKey+".sweepInterval")
	}

	c := &controller{
		sessions:      p.Sessions,
		diagnostics:   p.Diagnostics,
		documents:     p.Documents,
		kedro:         p.Kedro,
		clock:         p.Clock,
		logger:        p.Logger.With("plugin", _nameKey),
		stats:         p.Stats.SubScope("validation"),
		cache:         parser.NewCache(opts.ParseCacheSize),
		sweepInterval: interval,
	}

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			c.start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			c.shutdownLoop()
			return nil
		},
	})
	return c, nil
}

// StartupInfo returns PluginInfo for this controller.
func (c *controller) StartupInfo(ctx context.Context) (klspplugin.PluginInfo, error) {
	priorities := map[string]klspplugin.Priority{
		protocol.MethodInitialized:                    klspplugin.PriorityAsync,
		protocol.MethodTextDocumentDidOpen:            klspplugin.PriorityAsync,
		protocol.MethodTextDocumentDidChange:          klspplugin.PriorityAsync,
		protocol.MethodTextDocumentDidSave:            klspplugin.PriorityAsync,
		protocol.MethodWorkspaceDidChangeWatchedFiles: klspplugin.PriorityAsync,
		protocol.MethodDidDeleteFiles:                 klspplugin.PriorityRegular,
		klspplugin.MethodEndSession:                   klspplugin.PriorityRegular,
	}

	methods := &klspplugin.Methods{
		PluginNameKey: _nameKey,

		Initialized:           c.initialized,
		DidOpen:               c.didOpen,
		DidChange:             c.didChange,
		DidSave:               c.didSave,
		DidChangeWatchedFiles: c.didChangeWatchedFiles,
		DidDeleteFiles:        c.didDeleteFiles,

		EndSession: c.endSession,
	}

	return klspplugin.PluginInfo{
		Priorities: priorities,
		Methods:    methods,
		NameKey:    _nameKey,
	}, nil
}

func (c *controller) Validate(ctx context.Context, workspaceRoot string, docURI uri.URI, text string) error {
	return c.validate(ctx, workspaceRoot, docURI, func(context.Context) (string, error) {
		return text, nil
	})
}

// validate takes the document's generation before read is called.
func (c *controller) validate(ctx context.Context, workspaceRoot string, docURI uri.URI, read func(context.Context) (string, error)) error {
	if !resolver.IsCatalogFile(filepath.ToSlash(docURI.Filename())) {
		return nil
	}

	gen := c.nextGeneration(docURI)
	text, err := read(ctx)
	if err != nil {
		return err
	}

	s, err := c.projectSession(ctx, workspaceRoot)
	if err != nil {
		return err
	}
	if s == nil {
		return nil
	}

	sw := c.stats.Timer("latency").Start()
	result := c.run(ctx, s, docURI, text)
	sw.Stop()
	c.stats.Counter("passes").Inc(1)

	c.publishMu.Lock()
	defer c.publishMu.Unlock()
	if !c.isLatest(docURI, gen) {
		c.stats.Counter("stale_dropped").Inc(1)
		c.logger.Debugf("dropping stale validation of %s (generation %d)", docURI, gen)
		return nil
	}
	return c.diagnostics.ApplyDiagnostics(ctx, workspaceRoot, docURI, result)
}

func (c *controller) Sweep(ctx context.Context, workspaceRoot string) error {
	_, err, _ := c.sweeps.Do(workspaceRoot, func() (interface{}, error) {
		return nil, c.sweep(ctx, workspaceRoot)
	})
	return err
}

func (c *controller) sweep(ctx context.Context, workspaceRoot string) error {
	s, err := c.projectSession(ctx, workspaceRoot)
	if err != nil {
		return err
	}
	if s == nil {
		return nil
	}
	c.stats.SubScope("sweep").Counter("runs").Inc(1)

	r := c.kedro.Resolver(s.Project)
	paths, err := r.Paths(resolver.CategoryCatalog)
	var errs error
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("listing catalog files: %w", err))
	}

	for _, p := range paths {
		if ctx.Err() != nil {
			return multierr.Append(errs, ctx.Err())
		}
		if !resolver.IsCatalogFile(p) {
			continue
		}
		docURI := uri.URI(r.URI(p))
		errs = multierr.Append(errs, c.validate(ctx, workspaceRoot, docURI, c.currentText(workspaceRoot, docURI)))
	}
	return errs
}

// run parses text and applies every validator, isolating validator failures.
func (c *controller) run(ctx context.Context, s *entity.Session, docURI uri.URI, text string) []protocol.Diagnostic {
	tree, err := c.cache.Parse(string(docURI), text)
	if err != nil {
		c.stats.Counter("parse_errors").Inc(1)
		var parseErr *parser.ParseError
		if !errors.As(err, &parseErr) {
			c.logger.Warnf("parsing %s: %v", docURI, err)
		}
		return []protocol.Diagnostic{*validator.NewDiagnostic(protocol.Range{}, err.Error(), protocol.DiagnosticSeverityError)}
	}
	clean := model.Strip(tree)

	provider := c.kedro.DatasetProvider(s.Project, s.Interpreter())
	validators := []validator.Validator{
		&validator.DatasetConfig{Provider: provider},
		&validator.FactoryPattern{},
		&validator.FullCatalog{Provider: provider},
	}

	results := make([][]*protocol.Diagnostic, len(validators))
	g, gctx := errgroup.WithContext(ctx)
	for i, v := range validators {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					c.stats.Counter("validator_panics").Inc(1)
					c.logger.Errorf("validator %s panicked on %s: %v", v.Name(), docURI, r)
				}
			}()
			found, err := v.Validate(gctx, clean, text)
			if err != nil {
				c.stats.Counter("validator_failures").Inc(1)
				c.logger.Warnf("validator %s failed on %s: %v", v.Name(), docURI, err)
				return nil
			}
			results[i] = found
			return nil
		})
	}
	_ = g.Wait()

	diagnostics := make([]protocol.Diagnostic, 0)
	for _, found := range results {
		for _, d := range found {
			diagnostics = append(diagnostics, *d)
		}
	}
	return diagnostics
}

// projectSession returns a session of workspaceRoot with a detected project, or nil when there is none.
// currentText reads the editor text of docURI, falling back to its content on disk.
func (c *controller) currentText(workspaceRoot string, docURI uri.URI) func(context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		return c.documents.ReadText(ctx, workspaceRoot, docURI)
	}
}

func (c *controller) projectSession(ctx context.Context, workspaceRoot string) (*entity.Session, error) {
	sessions, err := c.sessions.GetAllFromWorkspaceRoot(ctx, workspaceRoot)
	if err != nil {
		return nil, err
	}
	for _, s := range sessions {
		if s.HasProject() {
			return s, nil
		}
	}
	return nil, nil
}

func (c *controller) nextGeneration(docURI uri.URI) uint64 {
	counter, _ := c.generations.LoadOrStore(docURI, new(atomic.Uint64))
	return counter.(*atomic.Uint64).Add(1)
}

func (c *controller) isLatest(docURI uri.URI, gen uint64) bool {
	counter, ok := c.generations.Load(docURI)
	return ok && counter.(*atomic.Uint64).Load() == gen
}

func (c *controller) start() {
	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	ticker := c.clock.NewTicker(c.sweepInterval)

	go func() {
		defer close(c.done)
		defer ticker.Stop()
		for {
			select {
			case <-c.stop:
				return
			case <-ticker.C():
				c.sweepAll()
			}
		}
	}()
}

func (c *controller) shutdownLoop() {
	if c.stop == nil {
		return
	}
	close(c.stop)
	<-c.done
	c.stop = nil
}

// sweepAll revalidates every workspace root with a detected project.
func (c *controller) sweepAll() {
	ctx, cancel := context.WithTimeout(context.Background(), c.sweepInterval)
	defer cancel()

	roots, err := c.sessions.KedroWorkspaceRoots(ctx)
	if err != nil {
		c.logger.Warnf("listing workspace roots for sweep: %v", err)
		return
	}
	for _, root := range roots {
		if err := c.Sweep(ctx, root); err != nil {
			c.logger.Warnf("sweeping %s: %v", root, err)
		}
	}
}

func (c *controller) sessionRoot(ctx context.Context) (string, bool) {
	s, err := c.sessions.GetFromContext(ctx)
	if err != nil || !s.HasProject() {
		return "", false
	}
	return s.WorkspaceRoot, true
}

func (c *controller) initialized(ctx context.Context, params *protocol.InitializedParams) error {
	root, ok := c.sessionRoot(ctx)
	if !ok {
		return nil
	}
	if err := c.Sweep(ctx, root); err != nil {
		c.logger.Warnf("initial sweep of %s: %v", root, err)
	}
	return nil
}

func (c *controller) didOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error {
	root, ok := c.sessionRoot(ctx)
	if !ok {
		return nil
	}
	return c.logged(c.Validate(ctx, root, uri.URI(params.TextDocument.URI), params.TextDocument.Text))
}

func (c *controller) didChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) error {
	root, ok := c.sessionRoot(ctx)
	if !ok {
		return nil
	}
	docURI := uri.URI(params.TextDocument.URI)
	c.cache.Invalidate(string(docURI))

	return c.logged(c.validate(ctx, root, docURI, func(ctx context.Context) (string, error) {
		doc, err := c.documents.GetTextDocument(ctx, params.TextDocument.TextDocumentIdentifier)
		return doc.Text, err
	}))
}

func (c *controller) didSave(ctx context.Context, params *protocol.DidSaveTextDocumentParams) error {
	root, ok := c.sessionRoot(ctx)
	if !ok {
		return nil
	}
	docURI := uri.URI(params.TextDocument.URI)
	return c.logged(c.validate(ctx, root, docURI, c.currentText(root, docURI)))
}

func (c *controller) didChangeWatchedFiles(ctx context.Context, params *protocol.DidChangeWatchedFilesParams) error {
	root, ok := c.sessionRoot(ctx)
	if !ok {
		return nil
	}

	for _, change := range params.Changes {
		docURI := uri.URI(change.URI)
		if !resolver.IsCatalogFile(filepath.ToSlash(docURI.Filename())) {
			continue
		}
		if change.Type == protocol.FileChangeTypeDeleted {
			c.forget(ctx, root, docURI)
			continue
		}
		c.logged(c.validate(ctx, root, docURI, c.currentText(root, docURI)))
	}
	return nil
}

func (c *controller) didDeleteFiles(ctx context.Context, params *protocol.DeleteFilesParams) error {
	root, ok := c.sessionRoot(ctx)
	if !ok {
		return nil
	}
	for _, f := range params.Files {
		docURI := uri.URI(f.URI)
		if !resolver.IsCatalogFile(filepath.ToSlash(docURI.Filename())) {
			continue
		}
		c.forget(ctx, root, docURI)
	}
	return nil
}

// forget clears a deleted file's diagnostics and drops any in-flight pass for it.
func (c *controller) forget(ctx context.Context, workspaceRoot string, docURI uri.URI) {
	c.nextGeneration(docURI)
	c.cache.Invalidate(string(docURI))

	c.publishMu.Lock()
	defer c.publishMu.Unlock()
	c.logged(c.diagnostics.Clear(ctx, workspaceRoot, docURI))
}

func (c *controller) endSession(ctx context.Context, id uuid.UUID) error {
	return nil
}

// logged reports err at warn level; catalog features never fail a request.
func (c *controller) logged(err error) error {
	if err != nil {
		c.logger.Warn(err)
	}
	return nil
}
