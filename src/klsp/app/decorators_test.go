package app

import (
	"errors"
	"testing"

	"github.com/kedro-org/kedro-lsp/src/klsp/internal/fs"
	fsmock "github.com/kedro-org/kedro-lsp/src/klsp/internal/fs/fsmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/mock/gomock"
)

func TestEnv(t *testing.T) {
	tests := []struct {
		name      string
		envVal    string
		expectVal string
	}{
		{
			name:      "unset",
			expectVal: EnvLocal,
		},
		{
			name:      "development",
			envVal:    "development",
			expectVal: EnvDevelopment,
		},
		{
			name:      "unknown value falls back to local",
			envVal:    "staging",
			expectVal: EnvLocal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(_envKlspEnvironment, tt.envVal)

			fxtest.New(
				t,
				fx.Provide(func() Context {
					return Context{
						Environment:        EnvLocal,
						RuntimeEnvironment: EnvLocal,
					}
				}),
				fx.Decorate(decorateEnvContext),
				fx.Invoke(func(ctx Context) {
					require.Equal(t, tt.expectVal, ctx.Environment, "unexpected environment")
					require.Equal(t, tt.expectVal, ctx.RuntimeEnvironment, "unexpected runtime environment")
				}),
			).RequireStart().RequireStop()
		})
	}
}

func TestDecorateConfigProvider(t *testing.T) {
	ctrl := gomock.NewController(t)

	t.Run("no errors", func(t *testing.T) {
		fsMock := fsmock.NewMockKlspFS(ctrl)
		fsMock.EXPECT().MkdirAll("/tmp/foo").Return(nil)
		fsMock.EXPECT().MkdirAll("/tmp/info").Return(nil)

		fxtest.New(
			t,
			fx.Provide(func() fs.KlspFS {
				return fsMock
			}),
			fx.Provide(func() config.Provider {
				return newStaticProvider(t, map[string]interface{}{
					"logging": map[string]interface{}{
						"outputPaths": []string{"/tmp/foo/klsp.log", "stderr"},
					},
					"serverInfoFilePath": "/tmp/info/server-info.json",
				})
			}),
			fx.Decorate(decorateConfigProvider),
			fx.Invoke(func(cfg config.Provider) {}),
		).RequireStart().RequireStop()
	})

	t.Run("info folder error", func(t *testing.T) {
		fsMock := fsmock.NewMockKlspFS(ctrl)
		fsMock.EXPECT().MkdirAll("/tmp/info").Return(errors.New("read-only"))

		_, err := decorateConfigProvider(DecorateConfigParams{
			Cfg: newStaticProvider(t, map[string]interface{}{
				"serverInfoFilePath": "/tmp/info/server-info.json",
			}),
			FS: fsMock,
		})
		assert.ErrorContains(t, err, "ensuring server info folder")
	})
}

func TestEnsureLogFolder(t *testing.T) {
	ctrl := gomock.NewController(t)

	t.Run("no errors", func(t *testing.T) {
		fsMock := fsmock.NewMockKlspFS(ctrl)
		fsMock.EXPECT().MkdirAll("/tmp/foo").Return(nil)
		fsMock.EXPECT().MkdirAll("/tmp/bar").Return(nil)

		p := newStaticProvider(t, map[string]interface{}{
			"logging": map[string]interface{}{
				"outputPaths": []string{"/tmp/foo/myfile1.log", "/tmp/bar/myfile2.log", "stdout"},
			},
		})
		assert.NoError(t, ensureLogFolder(p, fsMock))
	})

	t.Run("error creating directory", func(t *testing.T) {
		fsMock := fsmock.NewMockKlspFS(ctrl)
		fsMock.EXPECT().MkdirAll("/tmp/foo").Return(errors.New("error creating directory"))

		p := newStaticProvider(t, map[string]interface{}{
			"logging": map[string]interface{}{
				"outputPaths": []string{"/tmp/foo/myfile1.log", "/tmp/bar/myfile2.log"},
			},
		})
		assert.Error(t, ensureLogFolder(p, fsMock))
	})
}

func newStaticProvider(t *testing.T, data map[string]interface{}) config.Provider {
	p, err := config.NewStaticProvider(data)
	require.NoError(t, err)
	return p
}
