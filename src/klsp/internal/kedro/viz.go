package kedro

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/kedro-org/kedro-lsp/src/klsp/internal/executor"
)

//go:embed scripts/viz.py
var _vizScript string

// VizRunner exports the project's flowchart data.
type VizRunner struct {
	Executor executor.Executor
	// Command replaces the embedded export script when set. The pipeline name is appended as --pipeline.
	Command     []string
	Interpreter []string
	Timeout     time.Duration
	Output      io.Writer
}

// ProjectData runs the export in the project root and decodes its JSON output.
func (v *VizRunner) ProjectData(ctx context.Context, project *Project, pipelineName string) (interface{}, error) {
	if v.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.Timeout)
		defer cancel()
	}

	var cmd *exec.Cmd
	if len(v.Command) > 0 {
		args := append([]string{}, v.Command[1:]...)
		if pipelineName != "" {
			args = append(args, "--pipeline", pipelineName)
		}
		cmd = exec.CommandContext(ctx, v.Command[0], args...)
	} else {
		cmd = interpreterCommand(ctx, v.Interpreter, "-c", _vizScript, pipelineName, project.Env)
	}
	cmd.Dir = project.Root
	cmd.Env = os.Environ()

	stdout, stderr, _, err := v.Executor.Run(cmd)
	if v.Output != nil && stderr != "" {
		io.WriteString(v.Output, stderr)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("exporting project data: %w", err)
	}

	var data interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(stdout)), &data); err != nil {
		return nil, fmt.Errorf("decoding project data: %w", err)
	}
	return data, nil
}
