package gateway

import (
	ideclient "github.com/kedro-org/kedro-lsp/src/klsp/gateway/ide-client"
	"go.uber.org/fx"
)

// Module provides the outbound gateways.
var Module = fx.Options(
	ideclient.Module,
)
