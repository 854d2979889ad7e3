package factory

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid"
	klspplugin "github.com/kedro-org/kedro-lsp/src/klsp/entity/klsp-plugin"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
)

// UUID is a user-defined factory for a random uuid.UUID.
func UUID() uuid.UUID {
	return uuid.Must(uuid.NewV4())
}

// JSONRPCRequest is a user-defined factory for a JSON-RPC request containing the specified method and parameters.
func JSONRPCRequest(method string, params interface{}) jsonrpc2.Request {
	req, _ := jsonrpc2.NewCall(jsonrpc2.NewNumberID(5), method, params)
	return req
}

// PluginInfoValid is a factory for PluginInfo that passes validation.
func PluginInfoValid(id int) klspplugin.PluginInfo {
	sampleDidOpenFunc := func(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error {
		return nil
	}
	return klspplugin.PluginInfo{
		Priorities: map[string]klspplugin.Priority{
			protocol.MethodTextDocumentDidOpen: klspplugin.PriorityHigh,
		},
		Methods: &klspplugin.Methods{
			PluginNameKey: fmt.Sprintf("test-plugin-%v", id),

			DidOpen: sampleDidOpenFunc,
		},
		NameKey: fmt.Sprintf("test-plugin-%v", id),
	}
}

// PluginInfoInvalid is a factory for PluginInfo that fails validation.
func PluginInfoInvalid(id int) klspplugin.PluginInfo {
	return klspplugin.PluginInfo{
		Priorities: map[string]klspplugin.Priority{
			protocol.MethodTextDocumentDidOpen: klspplugin.PriorityHigh,
		},
		Methods: &klspplugin.Methods{},
		NameKey: fmt.Sprintf("test-plugin-%v", id),
	}
}
