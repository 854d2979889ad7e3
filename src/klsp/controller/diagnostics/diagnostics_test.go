package diagnostics

import (
	"context"
	"errors"
	"testing"

	"github.com/kedro-org/kedro-lsp/src/klsp/entity"
	"github.com/kedro-org/kedro-lsp/src/klsp/factory"
	"github.com/kedro-org/kedro-lsp/src/klsp/gateway/ide-client/ideclientmock"
	"github.com/kedro-org/kedro-lsp/src/klsp/repository/session/repositorymock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber-go/tally"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

const _root = "/proj"

var _catalogURI = uri.File("/proj/conf/base/catalog.yml")

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type testDeps struct {
	sessions *repositorymock.MockRepository
	ide      *ideclientmock.MockGateway
	scope    tally.TestScope
}

func newTestController(t *testing.T) (*controller, testDeps) {
	ctrl := gomock.NewController(t)
	deps := testDeps{
		sessions: repositorymock.NewMockRepository(ctrl),
		ide:      ideclientmock.NewMockGateway(ctrl),
		scope:    tally.NewTestScope("testing", make(map[string]string, 0)),
	}
	c := New(Params{
		Sessions:   deps.sessions,
		IdeGateway: deps.ide,
		Logger:     zap.NewNop().Sugar(),
		Stats:      deps.scope,
	}).(*controller)
	return c, deps
}

func sampleDiagnostics() []protocol.Diagnostic {
	return []protocol.Diagnostic{{
		Range:    protocol.Range{Start: protocol.Position{Line: 1}, End: protocol.Position{Line: 1, Character: 5}},
		Severity: protocol.DiagnosticSeverityError,
		Source:   "Kedro LSP",
		Message:  "Class 'pandas.CSVDatasett' not found, is this a typo?",
	}}
}

func TestStartupInfo(t *testing.T) {
	c, _ := newTestController(t)
	result, err := c.StartupInfo(context.Background())
	require.NoError(t, err)
	assert.NoError(t, result.Validate())
	assert.Equal(t, _nameKey, result.NameKey)
}

func TestApplyDiagnostics(t *testing.T) {
	t.Run("publishes to every session of the root", func(t *testing.T) {
		c, deps := newTestController(t)
		s1, s2 := &entity.Session{UUID: factory.UUID()}, &entity.Session{UUID: factory.UUID()}
		deps.sessions.EXPECT().GetAllFromWorkspaceRoot(gomock.Any(), _root).Return([]*entity.Session{s1, s2}, nil)

		seen := map[interface{}]bool{}
		deps.ide.EXPECT().PublishDiagnostics(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, params *protocol.PublishDiagnosticsParams) error {
				seen[ctx.Value(entity.SessionContextKey)] = true
				assert.Equal(t, _catalogURI, params.URI)
				assert.Len(t, params.Diagnostics, 1)
				return nil
			}).Times(2)

		require.NoError(t, c.ApplyDiagnostics(context.Background(), _root, _catalogURI, sampleDiagnostics()))
		assert.True(t, seen[s1.UUID])
		assert.True(t, seen[s2.UUID])
		assert.Len(t, c.diagnostics[_root][_catalogURI], 1)
		assert.Equal(t, int64(2), deps.scope.Snapshot().Counters()["testing.diagnostics.published+"].Value())
	})

	t.Run("publish failure is logged", func(t *testing.T) {
		c, deps := newTestController(t)
		deps.sessions.EXPECT().GetAllFromWorkspaceRoot(gomock.Any(), _root).Return([]*entity.Session{{UUID: factory.UUID()}}, nil)
		deps.ide.EXPECT().PublishDiagnostics(gomock.Any(), gomock.Any()).Return(errors.New("closed"))

		assert.NoError(t, c.ApplyDiagnostics(context.Background(), _root, _catalogURI, sampleDiagnostics()))
	})

	t.Run("session lookup failure", func(t *testing.T) {
		c, deps := newTestController(t)
		deps.sessions.EXPECT().GetAllFromWorkspaceRoot(gomock.Any(), _root).Return(nil, errors.New("boom"))

		assert.Error(t, c.ApplyDiagnostics(context.Background(), _root, _catalogURI, sampleDiagnostics()))
	})
}

func TestClear(t *testing.T) {
	c, deps := newTestController(t)
	c.diagnostics[_root] = map[uri.URI][]protocol.Diagnostic{_catalogURI: sampleDiagnostics()}

	deps.sessions.EXPECT().GetAllFromWorkspaceRoot(gomock.Any(), _root).Return([]*entity.Session{{UUID: factory.UUID()}}, nil)
	deps.ide.EXPECT().PublishDiagnostics(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, params *protocol.PublishDiagnosticsParams) error {
			assert.NotNil(t, params.Diagnostics)
			assert.Empty(t, params.Diagnostics)
			return nil
		})

	require.NoError(t, c.Clear(context.Background(), _root, _catalogURI))
	assert.NotContains(t, c.diagnostics[_root], _catalogURI)
}

func TestInitialized(t *testing.T) {
	c, deps := newTestController(t)
	s := &entity.Session{UUID: factory.UUID(), WorkspaceRoot: _root}
	c.diagnostics[_root] = map[uri.URI][]protocol.Diagnostic{_catalogURI: sampleDiagnostics()}
	c.diagnostics["/other"] = map[uri.URI][]protocol.Diagnostic{uri.File("/other/conf/base/catalog.yml"): sampleDiagnostics()}

	deps.sessions.EXPECT().GetFromContext(gomock.Any()).Return(s, nil)
	deps.ide.EXPECT().PublishDiagnostics(gomock.Any(), &protocol.PublishDiagnosticsParams{URI: _catalogURI, Diagnostics: sampleDiagnostics()}).Return(nil)

	ctx := context.WithValue(context.Background(), entity.SessionContextKey, s.UUID)
	assert.NoError(t, c.initialized(ctx, &protocol.InitializedParams{}))

	deps.sessions.EXPECT().GetFromContext(gomock.Any()).Return(nil, errors.New("missing"))
	assert.Error(t, c.initialized(ctx, &protocol.InitializedParams{}))
}

func TestEndSession(t *testing.T) {
	ctx := context.Background()

	t.Run("last session drops the root", func(t *testing.T) {
		c, deps := newTestController(t)
		s := &entity.Session{UUID: factory.UUID(), WorkspaceRoot: _root}
		c.diagnostics[_root] = map[uri.URI][]protocol.Diagnostic{_catalogURI: sampleDiagnostics()}

		deps.sessions.EXPECT().Get(gomock.Any(), s.UUID).Return(s, nil)
		deps.sessions.EXPECT().GetAllFromWorkspaceRoot(gomock.Any(), _root).Return([]*entity.Session{s}, nil)

		require.NoError(t, c.endSession(ctx, s.UUID))
		assert.NotContains(t, c.diagnostics, _root)
	})

	t.Run("other sessions keep the root", func(t *testing.T) {
		c, deps := newTestController(t)
		s := &entity.Session{UUID: factory.UUID(), WorkspaceRoot: _root}
		other := &entity.Session{UUID: factory.UUID(), WorkspaceRoot: _root}
		c.diagnostics[_root] = map[uri.URI][]protocol.Diagnostic{_catalogURI: sampleDiagnostics()}

		deps.sessions.EXPECT().Get(gomock.Any(), s.UUID).Return(s, nil)
		deps.sessions.EXPECT().GetAllFromWorkspaceRoot(gomock.Any(), _root).Return([]*entity.Session{s, other}, nil)

		require.NoError(t, c.endSession(ctx, s.UUID))
		assert.Contains(t, c.diagnostics, _root)
	})

	t.Run("unknown session", func(t *testing.T) {
		c, deps := newTestController(t)
		deps.sessions.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, errors.New("not found"))
		assert.NoError(t, c.endSession(ctx, factory.UUID()))
	})
}
