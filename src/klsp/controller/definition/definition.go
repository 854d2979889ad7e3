// Package definition answers navigation, hover and completion requests for datasets and parameters.
package definition

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kedro-org/kedro-lsp/src/catalog-lib/model"
	"github.com/kedro-org/kedro-lsp/src/catalog-lib/resolver"
	docsync "github.com/kedro-org/kedro-lsp/src/klsp/controller/doc-sync"
	"github.com/kedro-org/kedro-lsp/src/klsp/entity"
	klspplugin "github.com/kedro-org/kedro-lsp/src/klsp/entity/klsp-plugin"
	"github.com/kedro-org/kedro-lsp/src/klsp/internal/kedro"
	"github.com/kedro-org/kedro-lsp/src/klsp/mapper"
	"github.com/kedro-org/kedro-lsp/src/klsp/repository/session"
	"github.com/uber-go/tally"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
	"go.uber.org/fx"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	_nameKey = "definition"

	_completionTrigger = `"`
)

// Commands accepted by workspace/executeCommand. Both spellings are in use by clients.
const (
	CommandGoToDefinition       = "kedro.goToDefinitionFromFlowchart"
	CommandGoToDefinitionLegacy = "gotoDefinitionFromFlowchart"
	CommandProjectData          = "kedro.getProjectData"
	CommandProjectDataLegacy    = "getProjectData"
)

// Commands lists every command served by this controller.
var Commands = []string{
	CommandGoToDefinition,
	CommandGoToDefinitionLegacy,
	CommandProjectData,
	CommandProjectDataLegacy,
}

// Controller resolves dataset and parameter references.
type Controller interface {
	StartupInfo(ctx context.Context) (klspplugin.PluginInfo, error)
}

// Params are inbound parameters to initialize a new plugin.
type Params struct {
	fx.In

	Sessions  session.Repository
	Documents docsync.Controller
	Kedro     kedro.Service
	Logger    *zap.SugaredLogger
	Stats     tally.Scope
}

type controller struct {
	sessions  session.Repository
	documents docsync.Controller
	kedro     kedro.Service
	logger    *zap.SugaredLogger
	stats     tally.Scope
}

// New creates a new controller for definitions and references.
func New(p Params) Controller {
	return &controller{
		sessions:  p.Sessions,
		documents: p.Documents,
		kedro:     p.Kedro,
		logger:    p.Logger.With("plugin", _nameKey),
		stats:     p.Stats.SubScope(_nameKey),
	}
}

// StartupInfo returns PluginInfo for this controller.
func (c *controller) StartupInfo(ctx context.Context) (klspplugin.PluginInfo, error) {
	priorities := map[string]klspplugin.Priority{
		protocol.MethodInitialize:              klspplugin.PriorityRegular,
		protocol.MethodTextDocumentDefinition:  klspplugin.PriorityRegular,
		protocol.MethodTextDocumentReferences:  klspplugin.PriorityRegular,
		protocol.MethodTextDocumentHover:       klspplugin.PriorityRegular,
		protocol.MethodTextDocumentCompletion:  klspplugin.PriorityRegular,
		protocol.MethodWorkspaceExecuteCommand: klspplugin.PriorityRegular,
	}

	methods := &klspplugin.Methods{
		PluginNameKey: _nameKey,

		Initialize: c.initialize,

		GotoDefinition: c.gotoDefinition,
		References:     c.references,
		Hover:          c.hover,
		Completion:     c.completion,

		ExecuteCommand: c.executeCommand,
	}

	return klspplugin.PluginInfo{
		Priorities: priorities,
		Methods:    methods,
		NameKey:    _nameKey,
	}, nil
}

func (c *controller) initialize(ctx context.Context, params *protocol.InitializeParams, result *protocol.InitializeResult) error {
	mapper.InitializeResultEnsureDefinitionProvider(result)
	mapper.InitializeResultEnsureReferencesProvider(result)
	mapper.InitializeResultEnsureHoverProvider(result)
	mapper.InitializeResultAppendCompletionTriggers(result, _completionTrigger)
	if err := mapper.InitializeResultAppendExecuteCommandProvider(result, &protocol.ExecuteCommandOptions{Commands: Commands}); err != nil {
		return fmt.Errorf("failed to append ExecuteCommandProvider: %w", err)
	}
	return nil
}

func (c *controller) gotoDefinition(ctx context.Context, params *protocol.DefinitionParams, result *[]protocol.Location) error {
	s, word, ok := c.wordAt(ctx, params.TextDocument.URI, params.Position)
	if !ok {
		return nil
	}

	loc, found := c.lookup(ctx, s, word)
	if !found {
		// The cursor itself is returned so the editor can jump back from the definition.
		loc = protocol.Location{
			URI:   params.TextDocument.URI,
			Range: mapper.PositionsToRange(params.Position, params.Position),
		}
	}
	*result = append(*result, loc)
	return nil
}

func (c *controller) references(ctx context.Context, params *protocol.ReferenceParams, result *[]protocol.Location) error {
	s, word, ok := c.wordAt(ctx, params.TextDocument.URI, params.Position)
	if !ok {
		return nil
	}

	locations, err := c.kedro.Resolver(s.Project).References(ctx, word)
	if err != nil {
		c.logger.Warnf("scanning pipelines for %q: %v", word, err)
	}
	c.stats.SubScope("references").Counter("results").Inc(int64(len(locations)))
	*result = append(*result, locations...)
	return nil
}

func (c *controller) hover(ctx context.Context, params *protocol.HoverParams, result *protocol.Hover) error {
	if !resolver.IsPipelineFile(string(params.TextDocument.URI)) {
		return nil
	}
	s, word, ok := c.wordAt(ctx, params.TextDocument.URI, params.Position)
	if !ok || word == "" {
		return nil
	}

	catalog, err := c.catalog(ctx, s)
	if err != nil {
		c.logger.Warnf("loading project catalog: %v", err)
		return nil
	}
	value, ok := catalog.Load(word)
	if !ok {
		return nil
	}

	rendered, err := yaml.Marshal(value)
	if err != nil {
		c.logger.Warnf("rendering %q: %v", word, err)
		return nil
	}
	result.Contents = protocol.MarkupContent{
		Kind:  protocol.Markdown,
		Value: "```yaml\n" + strings.TrimRight(string(rendered), "\n") + "\n```",
	}
	rng := mapper.LineRange(params.Position.Line)
	result.Range = &rng
	return nil
}

func (c *controller) completion(ctx context.Context, params *protocol.CompletionParams, result *protocol.CompletionList) error {
	if !resolver.IsPipelineFile(string(params.TextDocument.URI)) {
		return nil
	}
	s, ok := c.session(ctx)
	if !ok || !s.Config.Active().Experimental() {
		return nil
	}

	catalog, err := c.catalog(ctx, s)
	if err != nil {
		c.logger.Warnf("loading project catalog: %v", err)
		return nil
	}

	for _, name := range append(catalog.List(), catalog.FeedKeys()...) {
		result.Items = append(result.Items, protocol.CompletionItem{
			Label: name,
			Kind:  protocol.CompletionItemKindReference,
		})
	}
	return nil
}

func (c *controller) executeCommand(ctx context.Context, params *protocol.ExecuteCommandParams, result *interface{}) error {
	switch params.Command {
	case CommandGoToDefinition, CommandGoToDefinitionLegacy:
		return c.goToDefinitionCommand(ctx, params, result)
	case CommandProjectData, CommandProjectDataLegacy:
		return c.projectDataCommand(ctx, params, result)
	}
	return nil
}

// goToDefinitionCommand resolves a word without cursor context and returns a single location, or nil.
func (c *controller) goToDefinitionCommand(ctx context.Context, params *protocol.ExecuteCommandParams, result *interface{}) error {
	s, ok := c.session(ctx)
	if !ok {
		return nil
	}
	word, err := stringArgument(params.Arguments)
	if err != nil {
		c.logger.Warnf("%s: %v", params.Command, err)
		return nil
	}

	loc, found := c.lookup(ctx, s, word)
	if !found {
		*result = nil
		return nil
	}
	*result = []protocol.Location{loc}
	return nil
}

// projectDataCommand exports flowchart data for the project, or nil on any failure.
func (c *controller) projectDataCommand(ctx context.Context, params *protocol.ExecuteCommandParams, result *interface{}) error {
	s, ok := c.session(ctx)
	if !ok {
		return nil
	}
	pipelineName, err := stringArgument(params.Arguments)
	if err != nil {
		c.logger.Warnf("%s: %v", params.Command, err)
		return nil
	}

	data, err := c.kedro.ProjectData(ctx, s.Project, s.Interpreter(), pipelineName)
	if err != nil {
		c.logger.Warnf("exporting project data: %v", err)
		*result = nil
		return nil
	}
	*result = data
	return nil
}

// lookup resolves word and records the hit or miss.
func (c *controller) lookup(ctx context.Context, s *entity.Session, word string) (protocol.Location, bool) {
	loc, found, err := c.kedro.Resolver(s.Project).Lookup(ctx, word)
	if err != nil {
		c.logger.Warnf("resolving %q: %v", word, err)
	}
	if !found {
		c.stats.Counter("misses").Inc(1)
		c.logger.Debugf("no definition for %q", word)
		return protocol.Location{}, false
	}
	c.stats.Counter("hits").Inc(1)
	return loc, true
}

// catalog merges the project's datasets and parameters.
func (c *controller) catalog(ctx context.Context, s *entity.Session) (*resolver.Catalog, error) {
	loader := c.kedro.ConfigLoader(s.Project)
	datasets, dErr := loader.Load(ctx, resolver.CategoryCatalog)
	params, pErr := loader.Load(ctx, resolver.CategoryParameters)
	if err := multierr.Combine(dErr, pErr); err != nil {
		return nil, err
	}
	return resolver.NewCatalog(model.Strip(datasets), model.Strip(params)), nil
}

// session returns the calling session when it belongs to a Kedro project.
func (c *controller) session(ctx context.Context) (*entity.Session, bool) {
	s, err := c.sessions.GetFromContext(ctx)
	if err != nil || !s.HasProject() {
		return nil, false
	}
	return s, true
}

func (c *controller) wordAt(ctx context.Context, docURI protocol.DocumentURI, pos protocol.Position) (*entity.Session, string, bool) {
	s, ok := c.session(ctx)
	if !ok {
		return nil, "", false
	}
	text, err := c.documents.ReadText(ctx, s.WorkspaceRoot, uri.URI(docURI))
	if err != nil {
		c.logger.Warnf("reading %s: %v", docURI, err)
		return nil, "", false
	}
	word, err := mapper.WordAtPosition(text, pos)
	if err != nil {
		c.logger.Debug(err)
		return nil, "", false
	}
	return s, word, true
}

// stringArgument decodes the first command argument. A missing or null argument is empty.
func stringArgument(args []interface{}) (string, error) {
	if len(args) == 0 {
		return "", nil
	}
	raw, ok := args[0].([]byte)
	if !ok {
		return "", fmt.Errorf("invalid args type, should be provided as raw json")
	}
	var value *string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", fmt.Errorf("decoding argument: %w", err)
	}
	if value == nil {
		return "", nil
	}
	return *value, nil
}
