package mapper

import (
	"fmt"
	"slices"

	"go.lsp.dev/protocol"
)

// InitializeResultEnsureDefinitionProvider advertises textDocument/definition unless a plugin already did.
func InitializeResultEnsureDefinitionProvider(initResult *protocol.InitializeResult) {
	if initResult != nil && initResult.Capabilities.DefinitionProvider == nil {
		initResult.Capabilities.DefinitionProvider = &protocol.DefinitionOptions{}
	}
}

// InitializeResultEnsureReferencesProvider advertises textDocument/references unless a plugin already did.
func InitializeResultEnsureReferencesProvider(initResult *protocol.InitializeResult) {
	if initResult != nil && initResult.Capabilities.ReferencesProvider == nil {
		initResult.Capabilities.ReferencesProvider = &protocol.ReferencesOptions{}
	}
}

// InitializeResultEnsureHoverProvider advertises textDocument/hover unless a plugin already did.
func InitializeResultEnsureHoverProvider(initResult *protocol.InitializeResult) {
	if initResult != nil && initResult.Capabilities.HoverProvider == nil {
		initResult.Capabilities.HoverProvider = &protocol.HoverOptions{}
	}
}

// InitializeResultAppendCompletionTriggers adds trigger characters to the completion provider, creating it if needed.
func InitializeResultAppendCompletionTriggers(initResult *protocol.InitializeResult, triggers ...string) {
	if initResult == nil {
		return
	}
	provider := initResult.Capabilities.CompletionProvider
	if provider == nil {
		provider = &protocol.CompletionOptions{}
		initResult.Capabilities.CompletionProvider = provider
	}
	for _, c := range triggers {
		if !slices.Contains(provider.TriggerCharacters, c) {
			provider.TriggerCharacters = append(provider.TriggerCharacters, c)
		}
	}
}

// InitializeResultAppendExecuteCommandProvider registers commands on the result.
// A command may only be registered once across all plugins.
func InitializeResultAppendExecuteCommandProvider(initResult *protocol.InitializeResult, opts *protocol.ExecuteCommandOptions) error {
	provider := initResult.Capabilities.ExecuteCommandProvider
	if provider == nil {
		provider = &protocol.ExecuteCommandOptions{WorkDoneProgressOptions: opts.WorkDoneProgressOptions}
		initResult.Capabilities.ExecuteCommandProvider = provider
	}
	for _, cmd := range opts.Commands {
		if slices.Contains(provider.Commands, cmd) {
			return fmt.Errorf("command %q is already registered", cmd)
		}
		provider.Commands = append(provider.Commands, cmd)
	}
	return nil
}
