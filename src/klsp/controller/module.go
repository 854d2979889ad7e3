package controller

import (
	catalogvalidation "github.com/kedro-org/kedro-lsp/src/klsp/controller/catalog-validation"
	confwatcher "github.com/kedro-org/kedro-lsp/src/klsp/controller/conf-watcher"
	"github.com/kedro-org/kedro-lsp/src/klsp/controller/definition"
	"github.com/kedro-org/kedro-lsp/src/klsp/controller/diagnostics"
	docsync "github.com/kedro-org/kedro-lsp/src/klsp/controller/doc-sync"
	klspdaemon "github.com/kedro-org/kedro-lsp/src/klsp/controller/klsp-daemon"
	"go.uber.org/fx"
)

// Module provides the session controller and every plugin.
var Module = fx.Options(
	fx.Provide(klspdaemon.New),
	fx.Provide(diagnostics.New),
	fx.Provide(docsync.New),
	fx.Provide(catalogvalidation.New),
	fx.Provide(definition.New),
	fx.Provide(confwatcher.New),
)
