package ideclient

import (
	"context"
	"fmt"
	"sync"

	"github.com/gofrs/uuid"
	"github.com/kedro-org/kedro-lsp/src/klsp/mapper"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const _errSendToClient = "sending call/notification to IDE: %w"

// Module provides the IDE client gateway.
var Module = fx.Provide(New)

// Gateway is used to send outbound notifications and calls to the IDE.
// Every call routes by the session UUID stored in ctx.
type Gateway interface {
	// RegisterClient registers a new client with the gateway. Should be called each time a new IDE connection is initialized.
	RegisterClient(ctx context.Context, id uuid.UUID, conn *jsonrpc2.Conn) error
	// DeregisterClient removes a client from the gateway. Should be called each time an IDE connection is closed.
	DeregisterClient(ctx context.Context, id uuid.UUID) error

	PublishDiagnostics(ctx context.Context, params *protocol.PublishDiagnosticsParams) error
	RegisterCapability(ctx context.Context, params *protocol.RegistrationParams) error
	ShowMessage(ctx context.Context, params *protocol.ShowMessageParams) error
	LogMessage(ctx context.Context, params *protocol.LogMessageParams) error
}

// Params are the inbound parameters for New.
type Params struct {
	fx.In

	Logger *zap.SugaredLogger
}

type gateway struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]protocol.Client
	logger  *zap.Logger
}

// New returns a Gateway for sending IDE notifications and calls.
func New(p Params) Gateway {
	return &gateway{
		clients: make(map[uuid.UUID]protocol.Client),
		logger:  p.Logger.Desugar(),
	}
}

func (g *gateway) RegisterClient(ctx context.Context, id uuid.UUID, conn *jsonrpc2.Conn) error {
	if conn == nil || *conn == nil {
		return fmt.Errorf("registering client %q: nil connection", id)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.clients[id] = protocol.ClientDispatcher(*conn, g.logger)
	return nil
}

func (g *gateway) DeregisterClient(ctx context.Context, id uuid.UUID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.clients, id)
	return nil
}

func (g *gateway) PublishDiagnostics(ctx context.Context, params *protocol.PublishDiagnosticsParams) error {
	c, err := g.client(ctx)
	if err != nil {
		return err
	}
	return c.PublishDiagnostics(ctx, params)
}

func (g *gateway) RegisterCapability(ctx context.Context, params *protocol.RegistrationParams) error {
	c, err := g.client(ctx)
	if err != nil {
		return err
	}
	return c.RegisterCapability(ctx, params)
}

func (g *gateway) ShowMessage(ctx context.Context, params *protocol.ShowMessageParams) error {
	c, err := g.client(ctx)
	if err != nil {
		return err
	}
	return c.ShowMessage(ctx, params)
}

func (g *gateway) LogMessage(ctx context.Context, params *protocol.LogMessageParams) error {
	c, err := g.client(ctx)
	if err != nil {
		return err
	}
	return c.LogMessage(ctx, params)
}

func (g *gateway) client(ctx context.Context) (protocol.Client, error) {
	id, err := mapper.ContextToSessionUUID(ctx)
	if err != nil {
		return nil, fmt.Errorf(_errSendToClient, err)
	}

	g.mu.RLock()
	defer g.mu.RUnlock()
	c, ok := g.clients[id]
	if !ok {
		return nil, fmt.Errorf(_errSendToClient, fmt.Errorf("client with id %q not found", id))
	}
	return c, nil
}
