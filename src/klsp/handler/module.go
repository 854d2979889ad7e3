package handler

import (
	controller "github.com/kedro-org/kedro-lsp/src/klsp/controller"
	klspdaemon "github.com/kedro-org/kedro-lsp/src/klsp/controller/klsp-daemon"
	handler "github.com/kedro-org/kedro-lsp/src/klsp/handler/klsp-daemon"
	"github.com/kedro-org/kedro-lsp/src/klsp/repository/session"
	"go.uber.org/fx"
)

// Module provides the kedro-lsp JSON-RPC server into an Fx application.
var Module = fx.Options(
	controller.Module,
	fx.Provide(session.New),
	fx.Provide(handler.New),
	fx.Invoke(outputServerInfo),
	fx.Invoke(func(h handler.Handler) {}),
	fx.Invoke(func(c klspdaemon.Controller) {}),
)
