// Package klspdaemon implements the kedro-lsp JSON-RPC handlers.
package klspdaemon

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid"
	controller "github.com/kedro-org/kedro-lsp/src/klsp/controller/klsp-daemon"
	"github.com/kedro-org/kedro-lsp/src/klsp/entity"
	"github.com/kedro-org/kedro-lsp/src/klsp/internal/jsonrpcfx"
	"github.com/uber-go/tally"
	"go.lsp.dev/jsonrpc2"
)

// Handler manages one router per JSON-RPC connection.
type Handler interface {
	jsonrpcfx.ConnectionManager
}

type jsonRPCConnectionManager struct {
	ctrl  controller.Controller
	stats tally.Scope
}

// New constructs a new kedro-lsp Handler and registers it with the JSON-RPC module.
func New(ctrl controller.Controller, jsonrpcmod jsonrpcfx.JSONRPCModule, stats tally.Scope) (Handler, error) {
	c := &jsonRPCConnectionManager{
		ctrl:  ctrl,
		stats: stats.SubScope("json_rpc"),
	}
	if err := jsonrpcmod.RegisterConnectionManager(c); err != nil {
		return nil, fmt.Errorf("registering connection manager: %w", err)
	}
	return c, nil
}

// NewConnection will store a new connection and return a router that includes its UUID.
func (c *jsonRPCConnectionManager) NewConnection(ctx context.Context, conn *jsonrpc2.Conn) (jsonrpcfx.Router, error) {
	id, err := c.ctrl.InitSession(ctx, conn)
	if err != nil {
		return nil, fmt.Errorf("error while creating new connection: %w", err)
	}
	c.stats.Counter("connections").Inc(1)

	return &jsonRPCRouter{
		klspdaemon: c.ctrl,
		uuid:       id,
		stats:      c.stats,
	}, nil
}

// RemoveConnection cleans up a closed connection.
func (c *jsonRPCConnectionManager) RemoveConnection(ctx context.Context, id uuid.UUID) {
	// Ensure session is removed even if no Exit call has been received.
	ctx = context.WithValue(ctx, entity.SessionContextKey, id)
	c.ctrl.EndSession(ctx, id)
	c.stats.Counter("disconnections").Inc(1)
}
