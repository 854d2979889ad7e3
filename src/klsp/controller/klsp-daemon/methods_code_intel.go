package klspdaemon

import (
	"context"
	"fmt"

	klspplugin "github.com/kedro-org/kedro-lsp/src/klsp/entity/klsp-plugin"
	"go.lsp.dev/protocol"
)

// Asynchronous plugin methods write into a discarded result, since the response has already been sent.

func (c *controller) GotoDefinition(ctx context.Context, params *protocol.DefinitionParams) ([]protocol.Location, error) {
	result := []protocol.Location{}

	callSync := func(ctx context.Context, m *klspplugin.Methods) {
		if err := m.GotoDefinition(ctx, params, &result); err != nil {
			c.logger.Errorf(_errPluginReturnedError, m.PluginNameKey, err)
		}
	}
	callAsync := func(ctx context.Context, m *klspplugin.Methods) {
		if err := m.GotoDefinition(ctx, params, &[]protocol.Location{}); err != nil {
			c.logger.Errorf(_errPluginReturnedError, m.PluginNameKey, err)
		}
	}

	if err := c.executePluginMethods(ctx, protocol.MethodTextDocumentDefinition, callSync, callAsync); err != nil {
		return nil, fmt.Errorf(_errBadPluginCall, err)
	}

	return result, nil
}

func (c *controller) References(ctx context.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	result := []protocol.Location{}

	callSync := func(ctx context.Context, m *klspplugin.Methods) {
		if err := m.References(ctx, params, &result); err != nil {
			c.logger.Errorf(_errPluginReturnedError, m.PluginNameKey, err)
		}
	}
	callAsync := func(ctx context.Context, m *klspplugin.Methods) {
		if err := m.References(ctx, params, &[]protocol.Location{}); err != nil {
			c.logger.Errorf(_errPluginReturnedError, m.PluginNameKey, err)
		}
	}

	if err := c.executePluginMethods(ctx, protocol.MethodTextDocumentReferences, callSync, callAsync); err != nil {
		return nil, fmt.Errorf(_errBadPluginCall, err)
	}

	return result, nil
}

// Hover returns nil when no plugin produced any content.
func (c *controller) Hover(ctx context.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	result := &protocol.Hover{}

	callSync := func(ctx context.Context, m *klspplugin.Methods) {
		if err := m.Hover(ctx, params, result); err != nil {
			c.logger.Errorf(_errPluginReturnedError, m.PluginNameKey, err)
		}
	}
	callAsync := func(ctx context.Context, m *klspplugin.Methods) {
		if err := m.Hover(ctx, params, &protocol.Hover{}); err != nil {
			c.logger.Errorf(_errPluginReturnedError, m.PluginNameKey, err)
		}
	}

	if err := c.executePluginMethods(ctx, protocol.MethodTextDocumentHover, callSync, callAsync); err != nil {
		return nil, fmt.Errorf(_errBadPluginCall, err)
	}

	if result.Contents.Value == "" {
		return nil, nil
	}
	return result, nil
}

func (c *controller) Completion(ctx context.Context, params *protocol.CompletionParams) (*protocol.CompletionList, error) {
	result := &protocol.CompletionList{Items: []protocol.CompletionItem{}}

	callSync := func(ctx context.Context, m *klspplugin.Methods) {
		if err := m.Completion(ctx, params, result); err != nil {
			c.logger.Errorf(_errPluginReturnedError, m.PluginNameKey, err)
		}
	}
	callAsync := func(ctx context.Context, m *klspplugin.Methods) {
		if err := m.Completion(ctx, params, &protocol.CompletionList{}); err != nil {
			c.logger.Errorf(_errPluginReturnedError, m.PluginNameKey, err)
		}
	}

	if err := c.executePluginMethods(ctx, protocol.MethodTextDocumentCompletion, callSync, callAsync); err != nil {
		return nil, fmt.Errorf(_errBadPluginCall, err)
	}

	return result, nil
}
