package logfilewriter

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/kedro-org/kedro-lsp/src/klsp/internal/fs/fsmock"
	"github.com/kedro-org/kedro-lsp/src/klsp/internal/serverinfofile/serverinfofilemock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestSetupOutputWriter(t *testing.T) {
	ctrl := gomock.NewController(t)
	serverInfoFileMock := serverinfofilemock.NewMockServerInfoFile(ctrl)
	fsMock := fsmock.NewMockKlspFS(ctrl)

	t.Run("success", func(t *testing.T) {
		lifecycle := fxtest.NewLifecycle(t)
		p := Params{Lifecycle: lifecycle, ServerInfoFile: serverInfoFileMock, FS: fsMock}

		fsMock.EXPECT().MkdirAll(gomock.Any()).Return(nil)
		file, err := os.CreateTemp(t.TempDir(), "")
		require.NoError(t, err)
		fsMock.EXPECT().TempFile(gomock.Any(), gomock.Any()).Return(file, nil)
		serverInfoFileMock.EXPECT().UpdateField(fmt.Sprintf(_fmtOutputKey, "kedro"), file.Name()).Return(nil)

		writer, err := SetupOutputWriter(p, "kedro")
		require.NoError(t, err)

		_, err = writer.Source("python").Write([]byte("DatasetError: boom\n"))
		assert.NoError(t, err)

		fsMock.EXPECT().Remove(file.Name()).Return(nil)
		lifecycle.RequireStart().RequireStop()
	})

	t.Run("mkdir fail", func(t *testing.T) {
		p := Params{Lifecycle: fxtest.NewLifecycle(t), ServerInfoFile: serverInfoFileMock, FS: fsMock}
		fsMock.EXPECT().MkdirAll(gomock.Any()).Return(errors.New("sample"))
		_, err := SetupOutputWriter(p, "kedro")
		assert.Error(t, err)
	})

	t.Run("tempfile fail", func(t *testing.T) {
		p := Params{Lifecycle: fxtest.NewLifecycle(t), ServerInfoFile: serverInfoFileMock, FS: fsMock}
		fsMock.EXPECT().MkdirAll(gomock.Any()).Return(nil)
		fsMock.EXPECT().TempFile(gomock.Any(), gomock.Any()).Return(nil, errors.New("sample"))
		_, err := SetupOutputWriter(p, "kedro")
		assert.Error(t, err)
	})

	t.Run("info file fail", func(t *testing.T) {
		p := Params{Lifecycle: fxtest.NewLifecycle(t), ServerInfoFile: serverInfoFileMock, FS: fsMock}
		fsMock.EXPECT().MkdirAll(gomock.Any()).Return(nil)
		file, err := os.CreateTemp(t.TempDir(), "")
		require.NoError(t, err)
		fsMock.EXPECT().TempFile(gomock.Any(), gomock.Any()).Return(file, nil)
		serverInfoFileMock.EXPECT().UpdateField(gomock.Any(), gomock.Any()).Return(errors.New("sample"))
		_, err = SetupOutputWriter(p, "kedro")
		assert.Error(t, err)
	})
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(&buf),
		zap.InfoLevel,
	)
	sampleWriter := loggerWriter{zap.New(core).Sugar()}

	sampleMessage := "sample log message"

	_, err := sampleWriter.Write([]byte(sampleMessage + "\r\n" + sampleMessage + "\n\n  \n"))
	assert.NoError(t, err)
	assert.True(t, strings.Contains(buf.String(), "sample log message"))
	assert.Len(t, strings.Split(strings.TrimSpace(buf.String()), "\n"), 2)
}

func TestSource(t *testing.T) {
	var buf bytes.Buffer
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(&buf),
		zap.InfoLevel,
	)
	w := &loggerWriter{zap.New(core).Sugar()}

	_, err := w.Source("viz").Write([]byte("exporting\n"))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "viz")
	assert.Contains(t, buf.String(), "exporting")
}

func TestDiscard(t *testing.T) {
	n, err := Discard().Source("python").Write([]byte("ignored\n"))
	assert.NoError(t, err)
	assert.Equal(t, len("ignored\n"), n)
}
