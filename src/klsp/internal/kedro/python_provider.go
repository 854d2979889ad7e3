package kedro

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/kedro-org/kedro-lsp/src/catalog-lib/dataset"
	"github.com/kedro-org/kedro-lsp/src/catalog-lib/model"
	"github.com/kedro-org/kedro-lsp/src/klsp/internal/executor"
)

//go:embed scripts/construct.py
var _constructScript string

// DefaultInterpreter is used when a session does not name one.
var DefaultInterpreter = []string{"python3"}

// PythonProvider constructs catalogs with the framework itself, in the project's interpreter.
type PythonProvider struct {
	Executor    executor.Executor
	Interpreter []string
	Dir         string
	Env         []string
	Timeout     time.Duration
	// Output receives the interpreter's stderr.
	Output io.Writer
}

type constructRequest struct {
	Catalog *model.Mapping `json:"catalog"`
	Dataset string         `json:"dataset,omitempty"`
}

type constructResponse struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error"`
	Dataset string `json:"dataset"`
	Fatal   bool   `json:"fatal"`
}

type pythonCatalog struct {
	provider *PythonProvider
	tree     *model.Mapping
}

// Construct implements dataset.Provider.
func (p *PythonProvider) Construct(ctx context.Context, tree *model.Mapping) (dataset.Catalog, error) {
	if err := p.run(ctx, constructRequest{Catalog: tree}); err != nil {
		return nil, err
	}
	return &pythonCatalog{provider: p, tree: tree}, nil
}

// Dataset implements dataset.Catalog.
func (c *pythonCatalog) Dataset(ctx context.Context, name string) error {
	return c.provider.run(ctx, constructRequest{Catalog: c.tree, Dataset: name})
}

func (p *PythonProvider) run(ctx context.Context, request constructRequest) error {
	if request.Catalog == nil {
		request.Catalog = model.NewMapping()
	}
	payload, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("encoding catalog: %w", err)
	}

	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	cmd := interpreterCommand(ctx, p.Interpreter, "-c", _constructScript)
	cmd.Dir = p.Dir
	cmd.Env = append(os.Environ(), p.Env...)
	cmd.Stdin = bytes.NewReader(payload)

	stdout, stderr, _, err := p.Executor.Run(cmd)
	if p.Output != nil && stderr != "" {
		io.WriteString(p.Output, stderr)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("running dataset construction: %w", err)
	}

	var response constructResponse
	if err := json.Unmarshal([]byte(strings.TrimSpace(stdout)), &response); err != nil {
		return fmt.Errorf("decoding dataset construction result: %w", err)
	}
	switch {
	case response.OK:
		return nil
	case response.Fatal:
		return errors.New(response.Error)
	default:
		return &dataset.ConstructionError{Dataset: response.Dataset, Msg: response.Error}
	}
}

func interpreterCommand(ctx context.Context, interpreter []string, args ...string) *exec.Cmd {
	if len(interpreter) == 0 {
		interpreter = DefaultInterpreter
	}
	argv := append(append([]string{}, interpreter[1:]...), args...)
	return exec.CommandContext(ctx, interpreter[0], argv...)
}
