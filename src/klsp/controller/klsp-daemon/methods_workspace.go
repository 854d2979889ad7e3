package klspdaemon

import (
	"context"
	"fmt"

	klspplugin "github.com/kedro-org/kedro-lsp/src/klsp/entity/klsp-plugin"
	"go.lsp.dev/protocol"
)

// DidChangeConfiguration is forwarded to plugins. Session settings are fixed at initialize and stay unchanged.
func (c *controller) DidChangeConfiguration(ctx context.Context, params *protocol.DidChangeConfigurationParams) error {
	return notifyPlugins(ctx, c, protocol.MethodWorkspaceDidChangeConfiguration, params,
		func(m *klspplugin.Methods) func(context.Context, *protocol.DidChangeConfigurationParams) error {
			return m.DidChangeConfiguration
		})
}

// ExecuteCommand returns the result stored by the plugin that owns params.Command, or nil.
func (c *controller) ExecuteCommand(ctx context.Context, params *protocol.ExecuteCommandParams) (interface{}, error) {
	var result interface{}

	callSync := func(ctx context.Context, m *klspplugin.Methods) {
		if err := m.ExecuteCommand(ctx, params, &result); err != nil {
			c.logger.Errorf(_errPluginReturnedError, m.PluginNameKey, err)
		}
	}
	callAsync := func(ctx context.Context, m *klspplugin.Methods) {
		var discard interface{}
		if err := m.ExecuteCommand(ctx, params, &discard); err != nil {
			c.logger.Errorf(_errPluginReturnedError, m.PluginNameKey, err)
		}
	}

	if err := c.executePluginMethods(ctx, protocol.MethodWorkspaceExecuteCommand, callSync, callAsync); err != nil {
		return nil, fmt.Errorf(_errBadPluginCall, err)
	}
	return result, nil
}
