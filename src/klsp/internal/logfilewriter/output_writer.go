package logfilewriter

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kedro-org/kedro-lsp/src/klsp/internal/fs"
	"github.com/kedro-org/kedro-lsp/src/klsp/internal/serverinfofile"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const _fmtOutputKey = "output:%s"

// Params define the dependencies for SetupOutputWriter.
type Params struct {
	FS             fs.KlspFS
	Lifecycle      fx.Lifecycle
	ServerInfoFile serverinfofile.ServerInfoFile
}

// Writer collects human readable output, such as interpreter stderr, in a file the user can tail.
type Writer interface {
	io.Writer
	// Source returns a writer whose lines are tagged with the given source.
	Source(source string) io.Writer
}

// SetupOutputWriter creates a Writer backed by a temporary file under a directory named after name.
// The file path is stored in the server info file so the editor can open it.
func SetupOutputWriter(p Params, name string) (Writer, error) {
	logsDirPath := filepath.Join(os.TempDir(), name)
	if err := p.FS.MkdirAll(logsDirPath); err != nil {
		return nil, err
	}

	logFile, err := p.FS.TempFile(logsDirPath, "")
	if err != nil {
		return nil, err
	}

	if err := p.ServerInfoFile.UpdateField(fmt.Sprintf(_fmtOutputKey, name), logFile.Name()); err != nil {
		logFile.Close()
		return nil, err
	}

	// Write via a logger for formatting, timestamp, and buffering.
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(logFile),
		zap.InfoLevel,
	)
	outputLogger := zap.New(core).Sugar()

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			outputLogger.Sync()
			logFile.Close()
			return p.FS.Remove(logFile.Name())
		},
	})

	return &loggerWriter{logger: outputLogger}, nil
}

// Discard returns a Writer that drops everything.
func Discard() Writer {
	return &loggerWriter{logger: zap.NewNop().Sugar()}
}

type loggerWriter struct {
	logger *zap.SugaredLogger
}

// Write implements the io.Writer interface by sending each non-empty line to the logger.
func (o *loggerWriter) Write(p []byte) (n int, err error) {
	for _, line := range strings.Split(string(p), "\n") {
		if len(strings.TrimSpace(line)) > 0 {
			o.logger.Info(strings.TrimRight(line, "\r"))
		}
	}
	return len(p), nil
}

func (o *loggerWriter) Source(source string) io.Writer {
	return &loggerWriter{logger: o.logger.Named(source)}
}
