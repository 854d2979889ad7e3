package main

import (
	"github.com/kedro-org/kedro-lsp/src/klsp/app"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Overridden at link time with -ldflags "-X main._version=...".
var _version = "dev"

func opts() fx.Option {
	return fx.Options(
		app.Module,
		fx.Invoke(func(logger *zap.SugaredLogger) {
			logger.Infow("starting kedro-lsp", "version", _version)
		}),
	)
}

func main() {
	fx.New(opts()).Run()
}
