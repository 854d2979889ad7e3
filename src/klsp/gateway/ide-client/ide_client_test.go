package ideclient

import (
	"context"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/kedro-org/kedro-lsp/src/klsp/entity"
	"github.com/kedro-org/kedro-lsp/src/klsp/factory"
	"github.com/kedro-org/kedro-lsp/src/klsp/internal/jsonrpcfx/jsonrpc2mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestGateway(t *testing.T) (*gateway, *jsonrpc2mock.MockConn, context.Context) {
	ctrl := gomock.NewController(t)
	g := New(Params{Logger: zap.NewNop().Sugar()}).(*gateway)

	id := factory.UUID()
	mockConn := jsonrpc2mock.NewMockConn(ctrl)
	var conn jsonrpc2.Conn = mockConn
	require.NoError(t, g.RegisterClient(context.Background(), id, &conn))

	return g, mockConn, context.WithValue(context.Background(), entity.SessionContextKey, id)
}

func TestRegisterClient(t *testing.T) {
	ctrl := gomock.NewController(t)
	g := New(Params{Logger: zap.NewNop().Sugar()}).(*gateway)

	for i := 0; i < 5; i++ {
		var conn jsonrpc2.Conn = jsonrpc2mock.NewMockConn(ctrl)
		assert.NoError(t, g.RegisterClient(context.Background(), factory.UUID(), &conn))
	}
	assert.Len(t, g.clients, 5)

	assert.Error(t, g.RegisterClient(context.Background(), factory.UUID(), nil))
	var empty jsonrpc2.Conn
	assert.Error(t, g.RegisterClient(context.Background(), factory.UUID(), &empty))
}

func TestDeregisterClient(t *testing.T) {
	g, _, ctx := newTestGateway(t)
	id := ctx.Value(entity.SessionContextKey).(uuid.UUID)

	require.NoError(t, g.DeregisterClient(ctx, id))
	assert.Empty(t, g.clients)
	assert.Error(t, g.ShowMessage(ctx, &protocol.ShowMessageParams{}))
}

func TestNotifications(t *testing.T) {
	uri := protocol.DocumentURI("file:///repo/conf/base/catalog.yml")
	tests := []struct {
		name   string
		method string
		send   func(g Gateway, ctx context.Context) error
	}{
		{
			name:   "publish diagnostics",
			method: protocol.MethodTextDocumentPublishDiagnostics,
			send: func(g Gateway, ctx context.Context) error {
				return g.PublishDiagnostics(ctx, &protocol.PublishDiagnosticsParams{URI: uri})
			},
		},
		{
			name:   "show message",
			method: protocol.MethodWindowShowMessage,
			send: func(g Gateway, ctx context.Context) error {
				return g.ShowMessage(ctx, &protocol.ShowMessageParams{Type: protocol.MessageTypeWarning, Message: "hi"})
			},
		},
		{
			name:   "log message",
			method: protocol.MethodWindowLogMessage,
			send: func(g Gateway, ctx context.Context) error {
				return g.LogMessage(ctx, &protocol.LogMessageParams{Type: protocol.MessageTypeLog, Message: "hi"})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, conn, ctx := newTestGateway(t)
			conn.EXPECT().Notify(gomock.Any(), tt.method, gomock.Any()).Return(nil)
			assert.NoError(t, tt.send(g, ctx))

			assert.Error(t, tt.send(g, context.Background()), "missing session")
			assert.Error(t, tt.send(g, context.WithValue(context.Background(), entity.SessionContextKey, factory.UUID())), "unknown session")
		})
	}
}

func TestRegisterCapability(t *testing.T) {
	g, conn, ctx := newTestGateway(t)
	conn.EXPECT().Call(gomock.Any(), protocol.MethodClientRegisterCapability, gomock.Any(), gomock.Any()).Return(jsonrpc2.NewNumberID(1), nil)

	err := g.RegisterCapability(ctx, &protocol.RegistrationParams{
		Registrations: []protocol.Registration{{ID: "catalog-watch", Method: protocol.MethodWorkspaceDidChangeWatchedFiles}},
	})
	assert.NoError(t, err)
}
