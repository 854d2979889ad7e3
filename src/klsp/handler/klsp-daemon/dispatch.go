package klspdaemon

import (
	"context"

	"github.com/kedro-org/kedro-lsp/src/klsp/mapper"
	"go.lsp.dev/jsonrpc2"
)

// notify decodes the params and replies with only the controller's error.
func notify[T any](ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request, fn func(context.Context, *T) error) error {
	params, err := mapper.RequestToParams[T](req)
	if err != nil {
		return reply(ctx, nil, err)
	}
	return reply(ctx, nil, fn(ctx, params))
}

// call decodes the params and replies with the controller's result.
func call[T, R any](ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request, decode func(jsonrpc2.Request) (*T, error), fn func(context.Context, *T) (R, error)) error {
	params, err := decode(req)
	if err != nil {
		return reply(ctx, nil, err)
	}
	result, err := fn(ctx, params)
	if err != nil {
		return reply(ctx, nil, err)
	}
	return reply(ctx, result, nil)
}
