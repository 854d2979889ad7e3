// Package klspdaemon implements the kedro-lsp session lifecycle and plugin fan-out.
package klspdaemon

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/uuid"
	catalogvalidation "github.com/kedro-org/kedro-lsp/src/klsp/controller/catalog-validation"
	confwatcher "github.com/kedro-org/kedro-lsp/src/klsp/controller/conf-watcher"
	"github.com/kedro-org/kedro-lsp/src/klsp/controller/definition"
	"github.com/kedro-org/kedro-lsp/src/klsp/controller/diagnostics"
	docsync "github.com/kedro-org/kedro-lsp/src/klsp/controller/doc-sync"
	"github.com/kedro-org/kedro-lsp/src/klsp/entity"
	klspplugin "github.com/kedro-org/kedro-lsp/src/klsp/entity/klsp-plugin"
	ideclient "github.com/kedro-org/kedro-lsp/src/klsp/gateway/ide-client"
	"github.com/kedro-org/kedro-lsp/src/klsp/internal/clock"
	"github.com/kedro-org/kedro-lsp/src/klsp/internal/kedro"
	workspaceutils "github.com/kedro-org/kedro-lsp/src/klsp/internal/workspace-utils"
	"github.com/kedro-org/kedro-lsp/src/klsp/mapper"
	"github.com/kedro-org/kedro-lsp/src/klsp/repository/session"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	// Error templates
	_errBadPluginCall       = "calling plugin: %s"
	_errPluginReturnedError = "plugin %q returned error: %s"

	// Configuration keys
	_idleTimeoutMinutesKey = "idleTimeoutMinutes"
	_pluginsKey            = "plugins"

	_asyncTimeout = 5 * time.Minute
)

// Controller orchestrates the business logic for each request.
type Controller interface {
	// LSP Methods defined per protocol.
	Initialize(ctx context.Context, params *protocol.InitializeParams) (*protocol.InitializeResult, error)
	Initialized(ctx context.Context, params *protocol.InitializedParams) error
	Shutdown(ctx context.Context) error
	Exit(ctx context.Context) error

	// Document related methods.
	DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error
	DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) error
	DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error
	DidSave(ctx context.Context, params *protocol.DidSaveTextDocumentParams) error
	DidChangeWatchedFiles(ctx context.Context, params *protocol.DidChangeWatchedFilesParams) error
	DidDeleteFiles(ctx context.Context, params *protocol.DeleteFilesParams) error

	// Codeintel related methods.
	GotoDefinition(ctx context.Context, params *protocol.DefinitionParams) ([]protocol.Location, error)
	References(ctx context.Context, params *protocol.ReferenceParams) ([]protocol.Location, error)
	Hover(ctx context.Context, params *protocol.HoverParams) (*protocol.Hover, error)
	Completion(ctx context.Context, params *protocol.CompletionParams) (*protocol.CompletionList, error)

	// Workspace related methods.
	DidChangeConfiguration(ctx context.Context, params *protocol.DidChangeConfigurationParams) error
	ExecuteCommand(ctx context.Context, params *protocol.ExecuteCommandParams) (interface{}, error)

	// Custom methods for use within this service.
	RequestFullShutdown(ctx context.Context) error
	InitSession(ctx context.Context, conn *jsonrpc2.Conn) (uuid.UUID, error)
	EndSession(ctx context.Context, uuid uuid.UUID) error
}

// Params are inbound parameters to initialize a new controller.
type Params struct {
	fx.In

	Shutdowner     fx.Shutdowner
	Lifecycle      fx.Lifecycle
	Sessions       session.Repository
	IdeGateway     ideclient.Gateway
	Logger         *zap.SugaredLogger
	Config         config.Provider
	Clock          clock.Clock
	Kedro          kedro.Service
	WorkspaceUtils workspaceutils.WorkspaceUtils

	PluginDiagnostics       diagnostics.Controller
	PluginDocSync           docsync.Controller
	PluginCatalogValidation catalogvalidation.Controller
	PluginDefinition        definition.Controller
	PluginConfWatcher       confwatcher.Controller
}

type controller struct {
	sessions       session.Repository
	shutdowner     fx.Shutdowner
	fullShutdown   atomic.Bool
	idleTimer      clock.Timer
	idleTimerMu    sync.Mutex
	idleTimeout    time.Duration
	clock          clock.Clock
	logger         *zap.SugaredLogger
	ideGateway     ideclient.Gateway
	kedro          kedro.Service
	workspaceUtils workspaceutils.WorkspaceUtils
	pluginMu       sync.RWMutex
	pluginMethods  map[uuid.UUID]klspplugin.RuntimePrioritizedMethods
	pluginConfig   map[string]bool
	pluginsAll     []klspplugin.Plugin
	wg             sync.WaitGroup
}

// New constructs a new top-level controller for the service.
func New(p Params) (Controller, error) {
	var timeoutMinutesRaw int64
	if err := p.Config.Get(_idleTimeoutMinutesKey).Populate(&timeoutMinutesRaw); err != nil || timeoutMinutesRaw <= 0 {
		return nil, fmt.Errorf("unable to get idle timeout from config: %v", err)
	}
	var pluginConfig map[string]bool
	if err := p.Config.Get(_pluginsKey).Populate(&pluginConfig); err != nil {
		return nil, fmt.Errorf("unable to get plugin keys from config: %w", err)
	}

	// When creating a new plugin, add it as a dependency in Params, then add it to the list of available plugins here.
	availablePlugins := []klspplugin.Plugin{p.PluginDiagnostics, p.PluginDocSync, p.PluginCatalogValidation, p.PluginDefinition, p.PluginConfWatcher}

	c := &controller{
		sessions:       p.Sessions,
		shutdowner:     p.Shutdowner,
		clock:          p.Clock,
		logger:         p.Logger,
		ideGateway:     p.IdeGateway,
		kedro:          p.Kedro,
		workspaceUtils: p.WorkspaceUtils,

		idleTimeout:   time.Duration(timeoutMinutesRaw) * time.Minute,
		pluginMethods: map[uuid.UUID]klspplugin.RuntimePrioritizedMethods{},
		pluginConfig:  pluginConfig,
		pluginsAll:    availablePlugins,
	}
	if err := c.refreshIdleTimer(context.Background()); err != nil {
		return nil, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			c.stop()
			return nil
		},
	})
	return c, nil
}

func (c *controller) registerSessionPlugins(ctx context.Context) error {
	s, err := c.sessions.GetFromContext(ctx)
	if err != nil {
		return fmt.Errorf("getting session from context: %w", err)
	}

	enabledPlugins := []klspplugin.PluginInfo{}
	for _, plugin := range c.pluginsAll {
		if plugin == nil {
			continue
		}
		info, err := plugin.StartupInfo(ctx)
		if err != nil {
			return fmt.Errorf("getting plugin startup info: %w", err)
		}

		if isEnabled := c.pluginConfig[info.NameKey]; isEnabled {
			c.logger.Infow("plugin registration", "plugin", info.NameKey, "status", "enabled")
			enabledPlugins = append(enabledPlugins, info)
		} else {
			c.logger.Infow("plugin registration", "plugin", info.NameKey, "status", "disabled")
		}
	}

	methods, err := mapper.PluginInfoToRuntimePrioritizedMethods(enabledPlugins)
	if err != nil {
		return fmt.Errorf("prioritizing plugin methods: %w", err)
	}

	c.pluginMu.Lock()
	defer c.pluginMu.Unlock()
	c.pluginMethods[s.UUID] = methods
	return nil
}

// executePluginMethods will execute modules in the order defined for the given method.
// The caller provides handlerSync and handlerAsync, which should call the corresponding method with proper arguments.
// The same function may be passed in for both sync and async if no difference is needed.
func (c *controller) executePluginMethods(ctx context.Context, method string, handlerSync func(ctx context.Context, m *klspplugin.Methods), handlerAsync func(ctx context.Context, m *klspplugin.Methods)) error {
	if handlerSync == nil || handlerAsync == nil {
		return fmt.Errorf("handlers cannot be nil")
	}

	id, err := mapper.ContextToSessionUUID(ctx)
	if err != nil {
		return fmt.Errorf("getting session from context: %w", err)
	}

	c.pluginMu.RLock()
	methodLists, ok := c.pluginMethods[id][method]
	c.pluginMu.RUnlock()
	if !ok {
		// No need to execute if this method has no registered plugins.
		return nil
	}

	for _, current := range methodLists.Sync {
		handlerSync(ctx, current)
	}

	if len(methodLists.Async) == 0 {
		return nil
	}

	// Asynchronous plugin methods outlive the request, so they get a fresh context carrying only the session.
	// Plugins that implement asynchronous methods are responsible for respecting the context timeout.
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		asyncCtx := context.WithValue(context.Background(), entity.SessionContextKey, id)
		asyncCtx, cancel := context.WithTimeout(asyncCtx, _asyncTimeout)
		defer cancel()

		var innerWg sync.WaitGroup
		for _, current := range methodLists.Async {
			innerWg.Add(1)
			go func(m *klspplugin.Methods) {
				defer innerWg.Done()
				handlerAsync(asyncCtx, m)
			}(current)
		}
		innerWg.Wait()
	}()

	return nil
}

// stop cancels the idle timer and waits for in-flight asynchronous plugin calls.
func (c *controller) stop() {
	c.idleTimerMu.Lock()
	if c.idleTimer != nil {
		c.idleTimer.Stop()
	}
	c.idleTimerMu.Unlock()
	c.wg.Wait()
}
