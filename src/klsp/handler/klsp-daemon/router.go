package klspdaemon

import (
	"context"

	"github.com/gofrs/uuid"
	controller "github.com/kedro-org/kedro-lsp/src/klsp/controller/klsp-daemon"
	"github.com/kedro-org/kedro-lsp/src/klsp/entity"
	"github.com/kedro-org/kedro-lsp/src/klsp/mapper"
	"github.com/uber-go/tally"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
)

// MethodRequestFullShutdown directs the server to shut down on the next JSON-RPC 'exit' method call.
const MethodRequestFullShutdown = "kedro/requestFullShutdown"

type jsonRPCRouter struct {
	klspdaemon controller.Controller
	uuid       uuid.UUID
	stats      tally.Scope
}

// HandleReq handles routing for a single request.
func (r *jsonRPCRouter) HandleReq(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	ctx = context.WithValue(ctx, entity.SessionContextKey, r.uuid)
	if r.stats != nil {
		r.stats.Tagged(map[string]string{"method": req.Method()}).Counter("requests").Inc(1)
	}

	switch req.Method() {
	// Lifecycle.
	case protocol.MethodInitialize:
		return call(ctx, reply, req, mapper.RequestToParams[protocol.InitializeParams], r.klspdaemon.Initialize)
	case protocol.MethodInitialized:
		return notify(ctx, reply, req, r.klspdaemon.Initialized)
	case protocol.MethodShutdown:
		return r.Shutdown(ctx, reply, req)
	case protocol.MethodExit:
		return r.Exit(ctx, reply, req)
	case MethodRequestFullShutdown:
		return r.RequestFullShutdown(ctx, reply, req)

	// Documents.
	case protocol.MethodTextDocumentDidOpen:
		return notify(ctx, reply, req, r.klspdaemon.DidOpen)
	case protocol.MethodTextDocumentDidChange:
		return notify(ctx, reply, req, r.klspdaemon.DidChange)
	case protocol.MethodTextDocumentDidClose:
		return notify(ctx, reply, req, r.klspdaemon.DidClose)
	case protocol.MethodTextDocumentDidSave:
		return notify(ctx, reply, req, r.klspdaemon.DidSave)
	case protocol.MethodWorkspaceDidChangeWatchedFiles:
		return notify(ctx, reply, req, r.klspdaemon.DidChangeWatchedFiles)
	case protocol.MethodDidDeleteFiles:
		return notify(ctx, reply, req, r.klspdaemon.DidDeleteFiles)

	// Code intelligence.
	case protocol.MethodTextDocumentDefinition:
		return call(ctx, reply, req, mapper.RequestToParams[protocol.DefinitionParams], r.klspdaemon.GotoDefinition)
	case protocol.MethodTextDocumentReferences:
		return call(ctx, reply, req, mapper.RequestToParams[protocol.ReferenceParams], r.klspdaemon.References)
	case protocol.MethodTextDocumentHover:
		return call(ctx, reply, req, mapper.RequestToParams[protocol.HoverParams], r.klspdaemon.Hover)
	case protocol.MethodTextDocumentCompletion:
		return call(ctx, reply, req, mapper.RequestToParams[protocol.CompletionParams], r.klspdaemon.Completion)

	// Workspace.
	case protocol.MethodWorkspaceDidChangeConfiguration:
		return notify(ctx, reply, req, r.klspdaemon.DidChangeConfiguration)
	case protocol.MethodWorkspaceExecuteCommand:
		return call(ctx, reply, req, mapper.RequestToExecuteCommandParams, r.klspdaemon.ExecuteCommand)

	default:
		return jsonrpc2.MethodNotFoundHandler(ctx, reply, req)
	}
}

func (r *jsonRPCRouter) UUID() uuid.UUID {
	return r.uuid
}
