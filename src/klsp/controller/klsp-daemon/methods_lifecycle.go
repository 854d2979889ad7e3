package klspdaemon

import (
	"context"
	"fmt"
	"os"

	"github.com/gofrs/uuid"
	"github.com/kedro-org/kedro-lsp/src/klsp/entity"
	klspplugin "github.com/kedro-org/kedro-lsp/src/klsp/entity/klsp-plugin"
	klsperrors "github.com/kedro-org/kedro-lsp/src/klsp/internal/errors"
	"github.com/kedro-org/kedro-lsp/src/klsp/mapper"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
)

const (
	_serverName = "Kedro Language Server"

	_catalogWatchID   = "kedro-catalog-watcher"
	_catalogWatchGlob = "**/catalog*.y?(a)ml"
)

// Initialize decodes the session settings, detects the Kedro project and registers plugins for it.
func (c *controller) Initialize(ctx context.Context, params *protocol.InitializeParams) (*protocol.InitializeResult, error) {
	result := &protocol.InitializeResult{
		ServerInfo: &protocol.ServerInfo{
			Name: _serverName,
		},
	}

	s, err := c.sessions.GetFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting session from context: %w", err)
	}

	s.InitializeParams = params
	s.KedroEnabled = false
	s.Project = nil
	if s.Config, err = entity.DecodeSessionConfig(params.InitializationOptions); err != nil {
		c.logger.Warnf("ignoring initialization options: %s", err)
		s.Config = &entity.SessionConfig{}
	}

	if s.WorkspaceRoot, err = c.workspaceUtils.GetWorkspaceRoot(ctx, params, s.Config); err != nil {
		c.logger.Warnf("getting workspace root: %s", err)
	} else if project, err := c.kedro.Bootstrap(s.WorkspaceRoot, s.Config.Active().Environment); err != nil {
		c.logger.Infow("kedro features disabled", "workspaceRoot", s.WorkspaceRoot, "reason", err)
	} else {
		s.Project = project
		s.KedroEnabled = true
	}

	if err := c.sessions.Set(ctx, s); err != nil {
		return nil, fmt.Errorf("setting updated session state: %w", err)
	}

	if s.KedroEnabled {
		result.Capabilities = protocol.ServerCapabilities{
			TextDocumentSync: protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindIncremental,
				Save: &protocol.SaveOptions{
					IncludeText: true,
				},
			},
			Workspace: &protocol.ServerCapabilitiesWorkspace{
				FileOperations: &protocol.ServerCapabilitiesWorkspaceFileOperations{
					DidDelete: &protocol.FileOperationRegistrationOptions{Filters: catalogFileFilters()},
				},
			},
		}

		if err := c.registerSessionPlugins(ctx); err != nil {
			return nil, fmt.Errorf("registering session plugins: %w", err)
		}
	}

	callSync := func(ctx context.Context, m *klspplugin.Methods) {
		if err := m.Initialize(ctx, params, result); err != nil {
			c.logger.Errorf(_errPluginReturnedError, m.PluginNameKey, err)
		}
	}
	callAsync := func(ctx context.Context, m *klspplugin.Methods) {
		if err := m.Initialize(ctx, params, &protocol.InitializeResult{}); err != nil {
			c.logger.Errorf(_errPluginReturnedError, m.PluginNameKey, err)
		}
	}
	if err := c.executePluginMethods(ctx, protocol.MethodInitialize, callSync, callAsync); err != nil {
		return nil, fmt.Errorf(_errBadPluginCall, err)
	}

	return result, nil
}

// Initialized registers the catalog file watcher and runs the plugins' post-initialization steps.
func (c *controller) Initialized(ctx context.Context, params *protocol.InitializedParams) error {
	s, err := c.sessions.GetFromContext(ctx)
	if err != nil {
		return fmt.Errorf("getting session from context: %w", err)
	}

	if !s.KedroEnabled {
		c.logger.Infow("no Kedro project found", "workspaceRoot", s.WorkspaceRoot)
		return nil
	}

	if supportsWatcherRegistration(s.InitializeParams) {
		if err := c.ideGateway.RegisterCapability(ctx, catalogWatcherRegistration()); err != nil {
			c.logger.Warnf("registering catalog file watcher: %s", err)
		}
	}

	call := func(ctx context.Context, m *klspplugin.Methods) {
		if err := m.Initialized(ctx, params); err != nil {
			c.logger.Errorf(_errPluginReturnedError, m.PluginNameKey, err)
		}
	}
	if err := c.executePluginMethods(ctx, protocol.MethodInitialized, call, call); err != nil {
		return fmt.Errorf(_errBadPluginCall, err)
	}

	if err := c.ideGateway.LogMessage(ctx, &protocol.LogMessageParams{
		Message: fmt.Sprintf("%s initialized for project %q (environment %q).", _serverName, s.Project.Name, s.Project.Env),
		Type:    protocol.MessageTypeInfo,
	}); err != nil {
		c.logger.Warnf("logging to client: %s", err)
	}
	return nil
}

// Shutdown is sent just before Exit to indicate that the session will exit.
func (c *controller) Shutdown(ctx context.Context) error {
	call := func(ctx context.Context, m *klspplugin.Methods) {
		if err := m.Shutdown(ctx); err != nil {
			c.logger.Errorf(_errPluginReturnedError, m.PluginNameKey, err)
		}
	}
	if err := c.executePluginMethods(ctx, protocol.MethodShutdown, call, call); err != nil {
		return fmt.Errorf(_errBadPluginCall, err)
	}
	return nil
}

// Exit will be used to either clean up from an individual connection, or shutdown the whole server.
func (c *controller) Exit(ctx context.Context) error {
	call := func(ctx context.Context, m *klspplugin.Methods) {
		if err := m.Exit(ctx); err != nil {
			c.logger.Errorf(_errPluginReturnedError, m.PluginNameKey, err)
		}
	}
	if err := c.executePluginMethods(ctx, protocol.MethodExit, call, call); err != nil {
		c.logger.Errorf(_errBadPluginCall, err)
	}

	if c.fullShutdown.Load() {
		// Zero out the timer to trigger immediate shutdown.
		c.idleTimerMu.Lock()
		c.idleTimer.Reset(0)
		c.idleTimerMu.Unlock()
		return nil
	}
	s, err := c.sessions.GetFromContext(ctx)
	if klsperrors.IsSessionMissing(err) {
		// Already ended by the connection closing.
		return nil
	} else if err != nil {
		return fmt.Errorf("error during session exit: %w", err)
	}

	return c.EndSession(ctx, s.UUID)
}

// RequestFullShutdown will set the controller to treat subsequent Shutdown and Exit requests as requests to exit the entire process.
func (c *controller) RequestFullShutdown(ctx context.Context) error {
	c.fullShutdown.Store(true)
	return nil
}

// InitSession creates a new empty session and returns its UUID.
func (c *controller) InitSession(ctx context.Context, conn *jsonrpc2.Conn) (uuid.UUID, error) {
	defer c.refreshIdleTimer(ctx)

	id, err := uuid.NewV4()
	if err != nil {
		return uuid.Nil, err
	}

	s := mapper.UUIDToSession(id, conn)
	if err := c.ideGateway.RegisterClient(ctx, id, conn); err != nil {
		return uuid.Nil, err
	}

	if err := c.sessions.Set(ctx, s); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// EndSession includes any cleanup at the end of the session, during or after the last JSON-RPC request.
func (c *controller) EndSession(ctx context.Context, id uuid.UUID) error {
	defer c.refreshIdleTimer(ctx)

	c.pluginMu.RLock()
	_, registered := c.pluginMethods[id]
	c.pluginMu.RUnlock()

	if registered {
		call := func(ctx context.Context, m *klspplugin.Methods) {
			if err := m.EndSession(ctx, id); err != nil {
				c.logger.Errorf(_errPluginReturnedError, m.PluginNameKey, err)
			}
		}
		if err := c.executePluginMethods(ctx, klspplugin.MethodEndSession, call, call); err != nil {
			c.logger.Errorf(_errBadPluginCall, err)
		}
	}

	if err := c.ideGateway.DeregisterClient(ctx, id); err != nil {
		c.logger.Error(err)
	}

	c.pluginMu.Lock()
	delete(c.pluginMethods, id)
	c.pluginMu.Unlock()
	return c.sessions.Delete(ctx, id)
}

// refreshIdleTimer ensures that the service shuts down after a defined inactivity period with no connections.
func (c *controller) refreshIdleTimer(ctx context.Context) error {
	c.idleTimerMu.Lock()
	defer c.idleTimerMu.Unlock()

	// First call starts the timer prior to the first connection.
	if c.idleTimer == nil {
		c.idleTimer = c.clock.AfterFunc(c.idleTimeout, c.idleShutdown)
		return nil
	}

	// Subsequent calls stop the timer and reset it only if no connections are active.
	currentSessions, err := c.sessions.SessionCount(ctx)
	if err != nil {
		return fmt.Errorf("error resetting timeout: %w", err)
	}

	c.idleTimer.Stop()
	if currentSessions == 0 {
		c.idleTimer.Reset(c.idleTimeout)
	}
	return nil
}

func (c *controller) idleShutdown() {
	c.logger.Info("Shutdown signal received.")
	if err := c.shutdowner.Shutdown(); err != nil {
		c.logger.Errorf("shutting down: %s", err)
		os.Exit(1)
	}
}

func supportsWatcherRegistration(params *protocol.InitializeParams) bool {
	if params == nil || params.Capabilities.Workspace == nil || params.Capabilities.Workspace.DidChangeWatchedFiles == nil {
		return false
	}
	return params.Capabilities.Workspace.DidChangeWatchedFiles.DynamicRegistration
}

// catalogWatcherRegistration asks the client to report catalog file changes.
// Watch kind is left unset, which covers create, change and delete.
func catalogWatcherRegistration() *protocol.RegistrationParams {
	return &protocol.RegistrationParams{
		Registrations: []protocol.Registration{
			{
				ID:     _catalogWatchID,
				Method: protocol.MethodWorkspaceDidChangeWatchedFiles,
				RegisterOptions: protocol.DidChangeWatchedFilesRegistrationOptions{
					Watchers: []protocol.FileSystemWatcher{
						{GlobPattern: _catalogWatchGlob},
					},
				},
			},
		},
	}
}

func catalogFileFilters() []protocol.FileOperationFilter {
	return []protocol.FileOperationFilter{
		{
			Scheme:  "file",
			Pattern: protocol.FileOperationPattern{Glob: _catalogWatchGlob},
		},
	}
}
