package app

import (
	"context"
	"time"

	"github.com/kedro-org/kedro-lsp/src/klsp/gateway"
	"github.com/kedro-org/kedro-lsp/src/klsp/handler"
	"github.com/kedro-org/kedro-lsp/src/klsp/internal/clock"
	"github.com/kedro-org/kedro-lsp/src/klsp/internal/core"
	"github.com/kedro-org/kedro-lsp/src/klsp/internal/executor"
	"github.com/kedro-org/kedro-lsp/src/klsp/internal/fs"
	"github.com/kedro-org/kedro-lsp/src/klsp/internal/jsonrpcfx"
	"github.com/kedro-org/kedro-lsp/src/klsp/internal/kedro"
	"github.com/kedro-org/kedro-lsp/src/klsp/internal/serverinfofile"
	workspaceutils "github.com/kedro-org/kedro-lsp/src/klsp/internal/workspace-utils"
	"github.com/uber-go/tally"
	"go.uber.org/fx"
)

const _serviceName = "kedro-lsp"

// Module defines the kedro-lsp application module.
var Module = fx.Options(
	gateway.Module, // outbounds
	handler.Module, // inbounds
	jsonrpcfx.Module,
	fs.Module,
	executor.Module,
	serverinfofile.Module,
	workspaceutils.Module,
	kedro.Module,
	core.ConfigModule,
	core.LoggerModule,
	fx.Provide(clock.New),
	fx.Provide(func(lc fx.Lifecycle, env Context) tally.Scope {
		rs, closer := tally.NewRootScope(tally.ScopeOptions{
			Tags: map[string]string{
				"service": _serviceName,
				"env":     env.Environment,
			},
		}, 1*time.Second)

		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return closer.Close()
			},
		})

		return rs
	}),
	fx.Decorate(decorateEnvContext),
	fx.Decorate(decorateConfigProvider),
	fx.Provide(func() Context {
		return Context{
			Environment:        EnvLocal,
			RuntimeEnvironment: EnvLocal,
		}
	}),
)
