package diagnostics

import (
	"context"
	"sync"

	"github.com/gofrs/uuid"
	"github.com/kedro-org/kedro-lsp/src/klsp/entity"
	klspplugin "github.com/kedro-org/kedro-lsp/src/klsp/entity/klsp-plugin"
	ideclient "github.com/kedro-org/kedro-lsp/src/klsp/gateway/ide-client"
	"github.com/kedro-org/kedro-lsp/src/klsp/repository/session"
	"github.com/uber-go/tally"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const _nameKey = "diagnostics"

// Controller publishes diagnostics to every session sharing a workspace root.
type Controller interface {
	StartupInfo(ctx context.Context) (klspplugin.PluginInfo, error)
	// ApplyDiagnostics replaces the diagnostics of docURI and publishes them to each session of workspaceRoot.
	ApplyDiagnostics(ctx context.Context, workspaceRoot string, docURI uri.URI, diagnostics []protocol.Diagnostic) error
	// Clear publishes an empty diagnostic list for docURI and forgets it.
	Clear(ctx context.Context, workspaceRoot string, docURI uri.URI) error
}

// Params are inbound parameters to initialize a new plugin.
type Params struct {
	fx.In

	Sessions   session.Repository
	IdeGateway ideclient.Gateway
	Logger     *zap.SugaredLogger
	Stats      tally.Scope
}

// published diagnostics per workspace root, then per document.
type diagnosticStore map[string]map[uri.URI][]protocol.Diagnostic

type controller struct {
	sessions    session.Repository
	ideGateway  ideclient.Gateway
	logger      *zap.SugaredLogger
	stats       tally.Scope
	mu          sync.Mutex
	diagnostics diagnosticStore
}

// New creates a new diagnostics controller.
func New(p Params) Controller {
	return &controller{
		sessions:    p.Sessions,
		ideGateway:  p.IdeGateway,
		logger:      p.Logger.With("plugin", _nameKey),
		stats:       p.Stats.SubScope(_nameKey),
		diagnostics: make(diagnosticStore),
	}
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

func (c *controller) ApplyDiagnostics(ctx context.Context, workspaceRoot string, docURI uri.URI, diagnostics []protocol.Diagnostic) error {
	if diagnostics == nil {
		diagnostics = []protocol.Diagnostic{}
	}

	c.mu.Lock()
	docs, ok := c.diagnostics[workspaceRoot]
	if !ok {
		docs = make(map[uri.URI][]protocol.Diagnostic)
		c.diagnostics[workspaceRoot] = docs
	}
	if len(diagnostics) == 0 {
		delete(docs, docURI)
	} else {
		docs[docURI] = diagnostics
	}
	c.mu.Unlock()

	return c.publish(ctx, workspaceRoot, docURI, diagnostics)
}

func (c *controller) Clear(ctx context.Context, workspaceRoot string, docURI uri.URI) error {
	return c.ApplyDiagnostics(ctx, workspaceRoot, docURI, nil)
}

func (c *controller) publish(ctx context.Context, workspaceRoot string, docURI uri.URI, diagnostics []protocol.Diagnostic) error {
	sessions, err := c.sessions.GetAllFromWorkspaceRoot(ctx, workspaceRoot)
	if err != nil {
		return err
	}

	for _, s := range sessions {
		sCtx := context.WithValue(ctx, entity.SessionContextKey, s.UUID)
		if err := c.ideGateway.PublishDiagnostics(sCtx, &protocol.PublishDiagnosticsParams{
			URI:         docURI,
			Diagnostics: diagnostics,
		}); err != nil {
			c.logger.Warnf("publishing diagnostics for %s: %v", docURI, err)
			continue
		}
		c.stats.Counter("published").Inc(1)
	}
	c.logger.Debugf("published %d diagnostics for %s to %d sessions", len(diagnostics), docURI, len(sessions))
	return nil
}

// initialized replays the diagnostics already known for the session's workspace root.
func (c *controller) initialized(ctx context.Context, params *protocol.InitializedParams) error {
	s, err := c.sessions.GetFromContext(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	pending := make(map[uri.URI][]protocol.Diagnostic, len(c.diagnostics[s.WorkspaceRoot]))
	for docURI, diagnostics := range c.diagnostics[s.WorkspaceRoot] {
		pending[docURI] = diagnostics
	}
	c.mu.Unlock()

	for docURI, diagnostics := range pending {
		if err := c.ideGateway.PublishDiagnostics(ctx, &protocol.PublishDiagnosticsParams{
			URI:         docURI,
			Diagnostics: diagnostics,
		}); err != nil {
			c.logger.Warnf("replaying diagnostics for %s: %v", docURI, err)
		}
	}
	return nil
}

// endSession forgets a workspace root once its last session is gone.
func (c *controller) endSession(ctx context.Context, id uuid.UUID) error {
	s, err := c.sessions.Get(ctx, id)
	if err != nil {
		return nil
	}

	others, err := c.sessions.GetAllFromWorkspaceRoot(ctx, s.WorkspaceRoot)
	if err != nil {
		return err
	}
	for _, o := range others {
		if o.UUID != id {
			return nil
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.diagnostics, s.WorkspaceRoot)
	return nil
}
