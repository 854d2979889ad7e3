package docsync

import (
	"context"
	"fmt"
	"sync"

	"github.com/gofrs/uuid"
	klspplugin "github.com/kedro-org/kedro-lsp/src/klsp/entity/klsp-plugin"
	klsperrors "github.com/kedro-org/kedro-lsp/src/klsp/internal/errors"
	"github.com/kedro-org/kedro-lsp/src/klsp/internal/fs"
	"github.com/kedro-org/kedro-lsp/src/klsp/mapper"
	"github.com/kedro-org/kedro-lsp/src/klsp/repository/session"
	"github.com/uber-go/tally"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	_nameKey        = "doc-sync"
	_maxFileSizeKey = "maxFileSizeBytes"
)

// Controller tracks the editor's view of open documents for each session.
type Controller interface {
	StartupInfo(ctx context.Context) (klspplugin.PluginInfo, error)

	// GetTextDocument returns the session's copy of doc as of the last received change.
	GetTextDocument(ctx context.Context, doc protocol.TextDocumentIdentifier) (protocol.TextDocumentItem, error)

	// ReadText returns the editor text of docURI if any session of workspaceRoot has it open, otherwise its content on disk.
	ReadText(ctx context.Context, workspaceRoot string, docURI uri.URI) (string, error)
}

// Params are inbound parameters to initialize a new plugin.
type Params struct {
	fx.In

	Sessions session.Repository
	Logger   *zap.SugaredLogger
	Stats    tally.Scope
	Config   config.Provider
	FS       fs.KlspFS
}

type documentStore map[uuid.UUID]map[uri.URI]protocol.TextDocumentItem

type controller struct {
	sessions         session.Repository
	logger           *zap.SugaredLogger
	stats            tally.Scope
	fs               fs.KlspFS
	maxFileSizeBytes int64

	documentsMu sync.RWMutex
	documents   documentStore
}

// New creates a new controller for document sync.
func New(p Params) (Controller, error) {
	var maxFileSizeBytes int64
	if err := p.Config.Get(_maxFileSizeKey).Populate(&maxFileSizeBytes); err != nil {
		return nil, fmt.Errorf("getting %q from config: %w", _maxFileSizeKey, err)
	}
	if maxFileSizeBytes <= 0 {
		return nil, fmt.Errorf("%q must be positive", _maxFileSizeKey)
	}

	c := &controller{
		sessions:         p.Sessions,
		logger:           p.Logger.With("plugin", _nameKey),
		stats:            p.Stats.SubScope("doc_sync"),
		fs:               p.FS,
		maxFileSizeBytes: maxFileSizeBytes,
		documents:        make(documentStore),
	}
	c.updateMetrics()
	return c, nil
}

// StartupInfo returns PluginInfo for this controller.
func (c *controller) StartupInfo(ctx context.Context) (klspplugin.PluginInfo, error) {
	// Document text must be current before regular priority plugins read it.
	priorities := map[string]klspplugin.Priority{
		protocol.MethodInitialize: klspplugin.PriorityHigh,
		protocol.MethodShutdown:   klspplugin.PriorityAsync,

		protocol.MethodTextDocumentDidOpen:   klspplugin.PriorityHigh,
		protocol.MethodTextDocumentDidChange: klspplugin.PriorityHigh,
		protocol.MethodTextDocumentDidClose:  klspplugin.PriorityAsync,
		protocol.MethodTextDocumentDidSave:   klspplugin.PriorityHigh,
		klspplugin.MethodEndSession:          klspplugin.PriorityRegular,
	}

	methods := &klspplugin.Methods{
		PluginNameKey: _nameKey,

		Initialize: c.initialize,
		Shutdown:   c.shutdown,

		DidOpen:   c.didOpen,
		DidChange: c.didChange,
		DidClose:  c.didClose,
		DidSave:   c.didSave,

		EndSession: c.endSession,
	}

	return klspplugin.PluginInfo{
		Priorities: priorities,
		Methods:    methods,
		NameKey:    _nameKey,
	}, nil
}

func (c *controller) GetTextDocument(ctx context.Context, doc protocol.TextDocumentIdentifier) (protocol.TextDocumentItem, error) {
	s, err := c.sessions.GetFromContext(ctx)
	if err != nil {
		return protocol.TextDocumentItem{}, err
	}

	c.documentsMu.RLock()
	defer c.documentsMu.RUnlock()

	docs, ok := c.documents[s.UUID]
	if !ok {
		return protocol.TextDocumentItem{}, &klsperrors.UUIDNotFoundError{UUID: s.UUID}
	}
	item, ok := docs[uri.URI(doc.URI)]
	if !ok {
		return protocol.TextDocumentItem{}, &klsperrors.DocumentNotFoundError{Document: doc}
	}
	return item, nil
}

func (c *controller) ReadText(ctx context.Context, workspaceRoot string, docURI uri.URI) (string, error) {
	sessions, err := c.sessions.GetAllFromWorkspaceRoot(ctx, workspaceRoot)
	if err != nil {
		return "", err
	}

	c.documentsMu.RLock()
	for _, s := range sessions {
		if item, ok := c.documents[s.UUID][docURI]; ok {
			c.documentsMu.RUnlock()
			return item.Text, nil
		}
	}
	c.documentsMu.RUnlock()

	content, err := c.fs.ReadFile(docURI.Filename())
	if err != nil {
		return "", fmt.Errorf("reading %q: %w", docURI.Filename(), err)
	}
	return string(content), nil
}

// initialize adds an entry to keep track of this session's documents.
func (c *controller) initialize(ctx context.Context, params *protocol.InitializeParams, result *protocol.InitializeResult) error {
	s, err := c.sessions.GetFromContext(ctx)
	if err != nil {
		return err
	}

	c.documentsMu.Lock()
	defer c.documentsMu.Unlock()
	c.documents[s.UUID] = make(map[uri.URI]protocol.TextDocumentItem)
	return nil
}

func (c *controller) shutdown(ctx context.Context) error {
	s, err := c.sessions.GetFromContext(ctx)
	if err != nil {
		return err
	}
	c.disposeSession(s.UUID)
	return nil
}

// endSession removes this session's documents in the event that no shutdown request is received.
func (c *controller) endSession(ctx context.Context, id uuid.UUID) error {
	c.disposeSession(id)
	return nil
}

func (c *controller) didOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error {
	defer c.updateMetrics()
	s, err := c.sessions.GetFromContext(ctx)
	if err != nil {
		return err
	}

	if err := c.validateSize(params.TextDocument.Text); err != nil {
		// Oversized documents are expected occasionally; later lookups fall back to disk.
		c.logger.Warnf("unable to track open document %q: %v", params.TextDocument.URI, err)
		return nil
	}

	c.documentsMu.Lock()
	defer c.documentsMu.Unlock()
	docs, ok := c.documents[s.UUID]
	if !ok {
		return &klsperrors.UUIDNotFoundError{UUID: s.UUID}
	}
	docs[uri.URI(params.TextDocument.URI)] = params.TextDocument
	return nil
}

func (c *controller) didChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) error {
	defer c.updateMetrics()
	s, err := c.sessions.GetFromContext(ctx)
	if err != nil {
		return err
	}

	key := uri.URI(params.TextDocument.URI)

	c.documentsMu.Lock()
	defer c.documentsMu.Unlock()
	item, ok := c.documents[s.UUID][key]
	if !ok {
		return &klsperrors.DocumentNotFoundError{Document: params.TextDocument.TextDocumentIdentifier}
	}

	text, err := mapper.ApplyContentChanges(item.Text, params.ContentChanges)
	if err != nil {
		return fmt.Errorf("adding changes to document %q: %w", item.URI, err)
	}
	if err := c.validateSize(text); err != nil {
		delete(c.documents[s.UUID], key)
		return fmt.Errorf("unable to add changes to document %q: %w", item.URI, err)
	}

	item.Text = text
	item.Version = params.TextDocument.Version
	c.documents[s.UUID][key] = item
	return nil
}

func (c *controller) didClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error {
	defer c.updateMetrics()
	s, err := c.sessions.GetFromContext(ctx)
	if err != nil {
		return err
	}

	c.documentsMu.Lock()
	defer c.documentsMu.Unlock()
	delete(c.documents[s.UUID], uri.URI(params.TextDocument.URI))
	return nil
}

// didSave reconciles the stored text with the saved content when the client includes it.
func (c *controller) didSave(ctx context.Context, params *protocol.DidSaveTextDocumentParams) error {
	if params.Text == "" {
		return nil
	}
	s, err := c.sessions.GetFromContext(ctx)
	if err != nil {
		return err
	}

	key := uri.URI(params.TextDocument.URI)

	c.documentsMu.Lock()
	defer c.documentsMu.Unlock()
	item, ok := c.documents[s.UUID][key]
	if !ok {
		return &klsperrors.DocumentNotFoundError{Document: params.TextDocument}
	}
	item.Text = params.Text
	c.documents[s.UUID][key] = item
	return nil
}

func (c *controller) disposeSession(id uuid.UUID) {
	defer c.updateMetrics()
	c.documentsMu.Lock()
	defer c.documentsMu.Unlock()
	delete(c.documents, id)
}

func (c *controller) validateSize(text string) error {
	size := int64(len(text))
	if size > c.maxFileSizeBytes {
		return &klsperrors.DocumentSizeLimitError{Size: size}
	}
	return nil
}

func (c *controller) updateMetrics() {
	c.documentsMu.RLock()
	defer c.documentsMu.RUnlock()

	openDocs := 0
	openBytes := 0
	for _, docs := range c.documents {
		openDocs += len(docs)
		for _, item := range docs {
			openBytes += len(item.Text)
		}
	}
	c.stats.Gauge("open_docs").Update(float64(openDocs))
	c.stats.Gauge("open_bytes").Update(float64(openBytes))
}
