package klspdaemon

import (
	"context"

	klspplugin "github.com/kedro-org/kedro-lsp/src/klsp/entity/klsp-plugin"
	"go.lsp.dev/protocol"
)

// notifyPlugins delivers params to the handler that each plugin registered for method. Plugin errors are logged, not returned.
func notifyPlugins[T any](ctx context.Context, c *controller, method string, params *T, handler func(m *klspplugin.Methods) func(context.Context, *T) error) error {
	call := func(ctx context.Context, m *klspplugin.Methods) {
		if err := handler(m)(ctx, params); err != nil {
			c.logger.Errorf(_errPluginReturnedError, m.PluginNameKey, err)
		}
	}
	return c.executePluginMethods(ctx, method, call, call)
}

func (c *controller) DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error {
	return notifyPlugins(ctx, c, protocol.MethodTextDocumentDidOpen, params,
		func(m *klspplugin.Methods) func(context.Context, *protocol.DidOpenTextDocumentParams) error { return m.DidOpen })
}

func (c *controller) DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) error {
	return notifyPlugins(ctx, c, protocol.MethodTextDocumentDidChange, params,
		func(m *klspplugin.Methods) func(context.Context, *protocol.DidChangeTextDocumentParams) error { return m.DidChange })
}

func (c *controller) DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error {
	return notifyPlugins(ctx, c, protocol.MethodTextDocumentDidClose, params,
		func(m *klspplugin.Methods) func(context.Context, *protocol.DidCloseTextDocumentParams) error { return m.DidClose })
}

func (c *controller) DidSave(ctx context.Context, params *protocol.DidSaveTextDocumentParams) error {
	return notifyPlugins(ctx, c, protocol.MethodTextDocumentDidSave, params,
		func(m *klspplugin.Methods) func(context.Context, *protocol.DidSaveTextDocumentParams) error { return m.DidSave })
}

func (c *controller) DidChangeWatchedFiles(ctx context.Context, params *protocol.DidChangeWatchedFilesParams) error {
	return notifyPlugins(ctx, c, protocol.MethodWorkspaceDidChangeWatchedFiles, params,
		func(m *klspplugin.Methods) func(context.Context, *protocol.DidChangeWatchedFilesParams) error {
			return m.DidChangeWatchedFiles
		})
}

func (c *controller) DidDeleteFiles(ctx context.Context, params *protocol.DeleteFilesParams) error {
	return notifyPlugins(ctx, c, protocol.MethodDidDeleteFiles, params,
		func(m *klspplugin.Methods) func(context.Context, *protocol.DeleteFilesParams) error { return m.DidDeleteFiles })
}
