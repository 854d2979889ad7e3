package klspplugin

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid"
	"go.lsp.dev/protocol"
)

// MethodEndSession is not part of LSP. It runs once the JSON-RPC connection closes,
// whether or not the client sent shutdown and exit first.
const MethodEndSession = "end_session"

// RuntimePrioritizedMethods holds, per method, the plugins to call in order.
type RuntimePrioritizedMethods map[string]MethodLists

// MethodLists splits a method's plugins into those awaited before replying and those run in the background.
type MethodLists struct {
	Sync  []*Methods
	Async []*Methods
}

// Priority represents the ranked priority in which a plugin method will be run for a given method.
type Priority int64

const (
	// PriorityHigh for plugin methods that should be run in the highest priority group.
	PriorityHigh Priority = iota
	// PriorityRegular for plugins methods that should be run with regular priority.
	PriorityRegular
	// PriorityAsync for plugin methods should be run asynchronously and won't be included in the response.
	PriorityAsync
)

// Plugin defines a plugin which contributes a portion of language server functionality.
type Plugin interface {
	StartupInfo(ctx context.Context) (PluginInfo, error)
}

// Methods holds the handlers a plugin implements. Nil handlers are skipped.
type Methods struct {
	// PluginNameKey identifies the name of the plugin that provides these method implementations.
	PluginNameKey string

	// Lifecycle related methods.
	Initialize  func(ctx context.Context, params *protocol.InitializeParams, result *protocol.InitializeResult) error
	Initialized func(ctx context.Context, params *protocol.InitializedParams) error
	Shutdown    func(ctx context.Context) error
	Exit        func(ctx context.Context) error

	// Document related methods.
	DidOpen               func(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error
	DidChange             func(ctx context.Context, params *protocol.DidChangeTextDocumentParams) error
	DidClose              func(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error
	DidSave               func(ctx context.Context, params *protocol.DidSaveTextDocumentParams) error
	DidChangeWatchedFiles func(ctx context.Context, params *protocol.DidChangeWatchedFilesParams) error
	DidDeleteFiles        func(ctx context.Context, params *protocol.DeleteFilesParams) error

	// Codeintel related methods.
	GotoDefinition func(ctx context.Context, params *protocol.DefinitionParams, result *[]protocol.Location) error
	References     func(ctx context.Context, params *protocol.ReferenceParams, result *[]protocol.Location) error
	Hover          func(ctx context.Context, params *protocol.HoverParams, result *protocol.Hover) error
	Completion     func(ctx context.Context, params *protocol.CompletionParams, result *protocol.CompletionList) error

	// Workspace related methods.
	DidChangeConfiguration func(ctx context.Context, params *protocol.DidChangeConfigurationParams) error
	// ExecuteCommand stores the command's response in result. Plugins leave result untouched for commands they do not own.
	ExecuteCommand func(ctx context.Context, params *protocol.ExecuteCommandParams, result *interface{}) error

	// Connection related methods outside of the LSP protocol.
	EndSession func(ctx context.Context, uuid uuid.UUID) error
}

// PluginInfo is what a plugin registers with the daemon at startup.
type PluginInfo struct {
	Priorities map[string]Priority
	Methods    *Methods
	NameKey    string
}

// Validate checks that every prioritized method is a known method with an implementation.
func (m *PluginInfo) Validate() error {
	switch {
	case len(m.Priorities) == 0:
		return missingField("Priorities")
	case m.Methods == nil:
		return missingField("Methods")
	case m.NameKey == "":
		return missingField("NameKey")
	case m.Methods.PluginNameKey != m.NameKey:
		return missingField("Methods.PluginNameKey")
	}

	implemented := m.Methods.implemented()
	for method := range m.Priorities {
		ok, known := implemented[method]
		if !known {
			return fmt.Errorf("plugin %q: %q is not a recognized method", m.NameKey, method)
		}
		if !ok {
			return fmt.Errorf("plugin %q: %q is prioritized but has no implementation in Methods", m.NameKey, method)
		}
	}
	return nil
}

// implemented maps each dispatchable method to whether m provides it.
func (m *Methods) implemented() map[string]bool {
	return map[string]bool{
		protocol.MethodInitialize:  m.Initialize != nil,
		protocol.MethodInitialized: m.Initialized != nil,
		protocol.MethodShutdown:    m.Shutdown != nil,
		protocol.MethodExit:        m.Exit != nil,

		protocol.MethodTextDocumentDidOpen:            m.DidOpen != nil,
		protocol.MethodTextDocumentDidChange:          m.DidChange != nil,
		protocol.MethodTextDocumentDidClose:           m.DidClose != nil,
		protocol.MethodTextDocumentDidSave:            m.DidSave != nil,
		protocol.MethodWorkspaceDidChangeWatchedFiles: m.DidChangeWatchedFiles != nil,
		protocol.MethodDidDeleteFiles:                 m.DidDeleteFiles != nil,

		protocol.MethodTextDocumentDefinition: m.GotoDefinition != nil,
		protocol.MethodTextDocumentReferences: m.References != nil,
		protocol.MethodTextDocumentHover:      m.Hover != nil,
		protocol.MethodTextDocumentCompletion: m.Completion != nil,

		protocol.MethodWorkspaceDidChangeConfiguration: m.DidChangeConfiguration != nil,
		protocol.MethodWorkspaceExecuteCommand:         m.ExecuteCommand != nil,

		MethodEndSession: m.EndSession != nil,
	}
}

func missingField(name string) error {
	return fmt.Errorf("plugin info is missing %q", name)
}
