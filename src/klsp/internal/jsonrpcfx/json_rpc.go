package jsonrpcfx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync/atomic"

	"github.com/gofrs/uuid"
	"github.com/kedro-org/kedro-lsp/src/klsp/internal/serverinfofile"
	"go.lsp.dev/jsonrpc2"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	_configKey = "jsonrpc"
	_outputKey = "lsp-address"

	// TransportTCP listens on the configured address and serves one stream per client.
	TransportTCP = "tcp"
	// TransportStdio serves a single stream over the process's stdin and stdout.
	TransportStdio = "stdio"
)

// Module is an fx module to handle JSON-RPC requests.
var Module = fx.Provide(New)

// JSONRPCModule accepts editor connections and hands each one to the registered ConnectionManager.
type JSONRPCModule interface {
	OnStart(ctx context.Context) error
	ServeStream(ctx context.Context, conn jsonrpc2.Conn) error
	RegisterConnectionManager(connectionManager ConnectionManager) error
}

// Router handles the requests of a single connection.
type Router interface {
	HandleReq(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error
	UUID() uuid.UUID
}

// ConnectionManager creates a Router for each new connection and is told when it closes.
type ConnectionManager interface {
	NewConnection(ctx context.Context, conn *jsonrpc2.Conn) (router Router, err error)
	RemoveConnection(ctx context.Context, id uuid.UUID)
}

// Config is the "jsonrpc" block of the service config.
type Config struct {
	Transport string `yaml:"transport"`
	Address   string `yaml:"address"`
}

// Params define values to be used by JSONRPCModule.
type Params struct {
	fx.In

	Config         config.Provider
	Lifecycle      fx.Lifecycle
	Logger         *zap.SugaredLogger
	ServerInfoFile serverinfofile.ServerInfoFile
	Shutdowner     fx.Shutdowner `optional:"true"`
}

type server struct {
	cfg Config

	connections ConnectionManager
	ln          net.Listener
	stopping    atomic.Bool

	logger     *zap.SugaredLogger
	info       serverinfofile.ServerInfoFile
	shutdowner fx.Shutdowner
	stdio      io.ReadWriteCloser
}

// New creates a new server to handle JSON-RPC requests over the configured transport.
func New(p Params) (JSONRPCModule, error) {
	if p.Lifecycle == nil || p.Config == nil {
		return nil, errors.New("required parameters are missing")
	}

	cfg, err := loadConfig(p.Config)
	if err != nil {
		return nil, err
	}

	s := &server{
		cfg:        cfg,
		logger:     p.Logger,
		info:       p.ServerInfoFile,
		shutdowner: p.Shutdowner,
		stdio:      stdioStream{in: os.Stdin, out: os.Stdout},
	}
	p.Lifecycle.Append(fx.Hook{
		OnStart: s.OnStart,
		OnStop:  s.onStop,
	})
	return s, nil
}

// OnStart binds the TCP listener, or attaches to stdio, and serves in the background.
func (s *server) OnStart(ctx context.Context) error {
	if s.cfg.Transport == TransportStdio {
		go s.serveStdio()
		return nil
	}

	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return fmt.Errorf("listening on %q: %w", s.cfg.Address, err)
	}
	s.ln = ln
	go s.serveTCP()
	return nil
}

func (s *server) onStop(ctx context.Context) error {
	s.stopping.Store(true)
	if s.ln == nil {
		return nil
	}
	return s.ln.Close()
}

// ServeStream routes the requests of one connection until it closes.
func (s *server) ServeStream(ctx context.Context, conn jsonrpc2.Conn) error {
	if s.connections == nil {
		s.logger.Errorf("cannot serve connection, no connection manager set")
		return errors.New("cannot serve connection, no connection manager set")
	}

	router, err := s.connections.NewConnection(ctx, &conn)
	if err != nil {
		return err
	}
	id := router.UUID()
	s.logger.Infow("client connected", zap.Stringer("uuid", id))
	conn.Go(ctx, router.HandleReq)

	<-conn.Done()

	s.connections.RemoveConnection(ctx, id)
	s.logger.Infow("client disconnected", zap.Stringer("uuid", id))
	return conn.Err()
}

// RegisterConnectionManager sets the single ConnectionManager for all connections.
func (s *server) RegisterConnectionManager(connections ConnectionManager) error {
	if s.connections != nil {
		return errors.New("cannot register a duplicate connection manager")
	}
	s.connections = connections
	return nil
}

func (s *server) serveTCP() {
	address := s.ln.Addr().String()
	if err := s.info.UpdateField(_outputKey, address); err != nil {
		s.logger.Warnw("recording listen address", zap.Error(err))
	}

	s.logger.Infow("started JSON-RPC inbound", "transport", TransportTCP, "address", address)
	err := jsonrpc2.Serve(context.Background(), s.ln, s, 0)
	if s.stopping.Load() {
		return
	}
	s.logger.Errorw("JSON-RPC listener failed", zap.Error(err))
	s.shutdown()
}

// serveStdio serves the single editor connection on stdin/stdout and stops the app once it closes.
func (s *server) serveStdio() {
	if err := s.info.UpdateField(_outputKey, TransportStdio); err != nil {
		s.logger.Warnw("recording stdio transport", zap.Error(err))
	}

	s.logger.Infow("started JSON-RPC inbound", "transport", TransportStdio)
	conn := jsonrpc2.NewConn(jsonrpc2.NewStream(s.stdio))
	if err := s.ServeStream(context.Background(), conn); err != nil && !errors.Is(err, io.EOF) {
		s.logger.Warnw("stdio stream closed", zap.Error(err))
	}
	s.shutdown()
}

func (s *server) shutdown() {
	if s.shutdowner == nil {
		return
	}
	if err := s.shutdowner.Shutdown(); err != nil {
		s.logger.Warnw("requesting shutdown", zap.Error(err))
	}
}

func loadConfig(provider config.Provider) (Config, error) {
	var cfg Config
	if err := provider.Get(_configKey).Populate(&cfg); err != nil {
		return cfg, fmt.Errorf("getting config field %q: %w", _configKey, err)
	}

	switch cfg.Transport {
	case "":
		cfg.Transport = TransportTCP
	case TransportTCP, TransportStdio:
	default:
		return cfg, fmt.Errorf("unsupported transport %q in field %q", cfg.Transport, _configKey+".transport")
	}
	if cfg.Transport == TransportTCP && cfg.Address == "" {
		return cfg, fmt.Errorf("missing field %q in config", _configKey+".address")
	}
	return cfg, nil
}

// stdioStream joins the process's standard streams into one connection.
type stdioStream struct {
	in  io.ReadCloser
	out io.WriteCloser
}

func (s stdioStream) Read(p []byte) (int, error)  { return s.in.Read(p) }
func (s stdioStream) Write(p []byte) (int, error) { return s.out.Write(p) }

func (s stdioStream) Close() error {
	return multierr.Combine(s.in.Close(), s.out.Close())
}
