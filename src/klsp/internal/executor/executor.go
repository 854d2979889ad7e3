// Package executor runs the subprocesses the server depends on: the project's Python interpreter and the
// flowchart export command.
package executor

import (
	"bytes"
	"io"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/uber-go/tally"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// _maxLoggedStdin bounds how much of a command's stdin is copied into the log.
const _maxLoggedStdin = 512

// Module provides a module to inject using fx.
var Module = fx.Provide(func(logger *zap.SugaredLogger, stats tally.Scope) Executor {
	return NewExecutor(
		WithLogger(logger.With("component", "executor")),
		WithStats(stats.SubScope("executor")),
	)
})

// Executor runs a command to completion and captures its output.
type Executor interface {
	// Run executes cmd, overriding its Stdout and Stderr to return their content.
	// The exit code is -1 when the process never started.
	Run(cmd *exec.Cmd) (stdout string, stderr string, exitCode int, err error)
}

type executorImp struct {
	logger *zap.SugaredLogger
	stats  tally.Scope
	// exec may be nil to skip execution in tests.
	exec func(*exec.Cmd) error
}

// Option customizes an Executor.
type Option func(*executorImp)

// WithLogger overrides the default noop logger.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(e *executorImp) {
		e.logger = logger
	}
}

// WithStats records run counts and durations, tagged by program name.
func WithStats(stats tally.Scope) Option {
	return func(e *executorImp) {
		e.stats = stats
	}
}

// WithExecFunc replaces how a prepared command is started and waited on.
func WithExecFunc(execFunc func(*exec.Cmd) error) Option {
	return func(e *executorImp) {
		e.exec = execFunc
	}
}

// NewExecutor creates an Executor that runs commands with (*exec.Cmd).Run.
func NewExecutor(opts ...Option) Executor {
	e := &executorImp{
		logger: zap.NewNop().Sugar(),
		stats:  tally.NoopScope,
		exec:   (*exec.Cmd).Run,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *executorImp) Run(cmd *exec.Cmd) (string, string, int, error) {
	if err := e.logCommand(cmd); err != nil {
		return "", "", -1, err
	}
	if e.exec == nil {
		e.logger.Warn("no exec function configured, skipped execution")
		return "", "", 0, nil
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	scope := e.stats.Tagged(map[string]string{"program": filepath.Base(cmd.Path)})
	start := time.Now()
	err := e.exec(cmd)
	scope.Timer("duration").Record(time.Since(start))
	if err != nil {
		scope.Counter("failures").Inc(1)
		e.logger.Debugw("command failed", "path", cmd.Path, "error", err, "stderr", tail(stderr.String()))
	} else {
		scope.Counter("runs").Inc(1)
	}

	return stdout.String(), stderr.String(), cmd.ProcessState.ExitCode(), err
}

// logCommand logs the path, directory, arguments and truncated stdin of cmd.
// Stdin is buffered and replaced so the command still receives all of it.
func (e *executorImp) logCommand(cmd *exec.Cmd) error {
	keysAndValues := []interface{}{
		"Path", cmd.Path,
		"Dir", cmd.Dir,
	}
	if len(cmd.Args) > 1 {
		keysAndValues = append(keysAndValues, "Args", cmd.Args[1:])
	}

	if cmd.Stdin != nil {
		input, err := io.ReadAll(cmd.Stdin)
		if err != nil {
			return err
		}
		keysAndValues = append(keysAndValues, "Stdin", string(input[:min(len(input), _maxLoggedStdin)]))
		cmd.Stdin = bytes.NewReader(input)
	}

	e.logger.Debugw("Exec", keysAndValues...)
	return nil
}

// tail keeps the end of a long stderr, where interpreters put the actual error.
func tail(s string) string {
	const keep = 1024
	if len(s) <= keep {
		return s
	}
	return "..." + s[len(s)-keep:]
}
