package klspdaemon

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/kedro-org/kedro-lsp/src/klsp/entity"
	klspplugin "github.com/kedro-org/kedro-lsp/src/klsp/entity/klsp-plugin"
	"github.com/kedro-org/kedro-lsp/src/klsp/entity/klsp-plugin/pluginmock"
	"github.com/kedro-org/kedro-lsp/src/klsp/factory"
	"github.com/kedro-org/kedro-lsp/src/klsp/internal/clock"
	"github.com/kedro-org/kedro-lsp/src/klsp/internal/clock/clockmock"
	"github.com/kedro-org/kedro-lsp/src/klsp/mapper"
	"github.com/kedro-org/kedro-lsp/src/klsp/repository/session/repositorymock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

type sampleConfig map[string]interface{}

type fakeShutdowner struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeShutdowner) Shutdown(...fx.ShutdownOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return nil
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     sampleConfig
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: sampleConfig{
				_idleTimeoutMinutesKey: 5,
				_pluginsKey:            map[string]bool{"definition": true},
			},
		},
		{
			name: "missing timeout",
			cfg: sampleConfig{
				_pluginsKey: map[string]bool{"definition": true},
			},
			wantErr: true,
		},
		{
			name: "malformed plugins",
			cfg: sampleConfig{
				_idleTimeoutMinutesKey: 5,
				_pluginsKey:            []string{"definition"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			provider, err := config.NewStaticProvider(tt.cfg)
			require.NoError(t, err)

			clk := clockmock.NewMockClock(ctrl)
			timer := clockmock.NewMockTimer(ctrl)
			lc := fxtest.NewLifecycle(t)
			if !tt.wantErr {
				clk.EXPECT().AfterFunc(5*time.Minute, gomock.Any()).Return(timer)
				timer.EXPECT().Stop().Return(true)
			}

			c, err := New(Params{
				Shutdowner: &fakeShutdowner{},
				Lifecycle:  lc,
				Config:     provider,
				Clock:      clk,
				Logger:     zap.NewNop().Sugar(),
			})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, c)
			lc.RequireStart()
			lc.RequireStop()
		})
	}
}

func TestIdleShutdown(t *testing.T) {
	ctrl := gomock.NewController(t)
	clk := clockmock.NewMockClock(ctrl)
	timer := clockmock.NewMockTimer(ctrl)

	var fire func()
	clk.EXPECT().AfterFunc(time.Minute, gomock.Any()).DoAndReturn(func(d time.Duration, f func()) clock.Timer {
		fire = f
		return timer
	})

	shutdowner := &fakeShutdowner{}
	c := &controller{
		clock:       clk,
		shutdowner:  shutdowner,
		idleTimeout: time.Minute,
		logger:      zap.NewNop().Sugar(),
	}
	require.NoError(t, c.refreshIdleTimer(context.Background()))
	require.NotNil(t, fire)

	fire()
	assert.Equal(t, 1, shutdowner.calls)
}

func TestRefreshIdleTimer(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		count     int
		countErr  error
		wantReset bool
		wantErr   bool
	}{
		{name: "sessions remain", count: 2},
		{name: "last session ended", count: 0, wantReset: true},
		{name: "count failure", countErr: errors.New("count"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			sessions := repositorymock.NewMockRepository(ctrl)
			sessions.EXPECT().SessionCount(gomock.Any()).Return(tt.count, tt.countErr)
			timer := clockmock.NewMockTimer(ctrl)
			if !tt.wantErr {
				timer.EXPECT().Stop().Return(true)
			}
			if tt.wantReset {
				timer.EXPECT().Reset(time.Minute).Return(false)
			}

			c := &controller{
				sessions:    sessions,
				idleTimer:   timer,
				idleTimeout: time.Minute,
				logger:      zap.NewNop().Sugar(),
			}
			err := c.refreshIdleTimer(ctx)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRegisterPlugins(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := &entity.Session{
		UUID: factory.UUID(),
	}
	ctx := context.WithValue(context.Background(), entity.SessionContextKey, s.UUID)

	sessionRepository := repositorymock.NewMockRepository(ctrl)
	sessionRepository.EXPECT().GetFromContext(gomock.Any()).Return(s, nil).AnyTimes()

	newPlugins := func() ([]klspplugin.Plugin, map[string]bool) {
		plugins := []klspplugin.Plugin{}
		nameKeys := map[string]bool{}
		for i := 0; i < 3; i++ {
			p := pluginmock.NewMockPlugin(ctrl)
			info := factory.PluginInfoValid(i)
			nameKeys[info.NameKey] = true
			p.EXPECT().StartupInfo(gomock.Any()).Return(info, nil).AnyTimes()
			plugins = append(plugins, p)
		}
		return plugins, nameKeys
	}

	t.Run("valid plugins", func(t *testing.T) {
		plugins, nameKeys := newPlugins()
		c := controller{
			logger:        zap.NewNop().Sugar(),
			sessions:      sessionRepository,
			pluginMethods: map[uuid.UUID]klspplugin.RuntimePrioritizedMethods{},
			pluginConfig:  nameKeys,
			pluginsAll:    plugins,
		}

		require.NoError(t, c.registerSessionPlugins(ctx))
		for i := 0; i < 3; i++ {
			original, _ := plugins[i].StartupInfo(ctx)
			assert.Equal(t, original.Methods, c.pluginMethods[s.UUID][protocol.MethodTextDocumentDidOpen].Sync[i])
		}
	})

	t.Run("disabled plugin", func(t *testing.T) {
		plugins, nameKeys := newPlugins()
		nameKeys[factory.PluginInfoValid(1).NameKey] = false
		c := controller{
			logger:        zap.NewNop().Sugar(),
			sessions:      sessionRepository,
			pluginMethods: map[uuid.UUID]klspplugin.RuntimePrioritizedMethods{},
			pluginConfig:  nameKeys,
			pluginsAll:    append(plugins, nil),
		}

		require.NoError(t, c.registerSessionPlugins(ctx))
		assert.Len(t, c.pluginMethods[s.UUID][protocol.MethodTextDocumentDidOpen].Sync, 2)
	})

	t.Run("invalid plugin", func(t *testing.T) {
		plugins, nameKeys := newPlugins()
		invalid := pluginmock.NewMockPlugin(ctrl)
		info := factory.PluginInfoInvalid(10)
		nameKeys[info.NameKey] = true
		invalid.EXPECT().StartupInfo(gomock.Any()).Return(info, nil)
		plugins[1] = invalid

		c := controller{
			logger:        zap.NewNop().Sugar(),
			sessions:      sessionRepository,
			pluginMethods: map[uuid.UUID]klspplugin.RuntimePrioritizedMethods{},
			pluginConfig:  nameKeys,
			pluginsAll:    plugins,
		}
		assert.Error(t, c.registerSessionPlugins(ctx))
	})

	t.Run("StartupInfo error", func(t *testing.T) {
		failing := pluginmock.NewMockPlugin(ctrl)
		failing.EXPECT().StartupInfo(gomock.Any()).Return(klspplugin.PluginInfo{}, errors.New("startup"))

		c := controller{
			logger:        zap.NewNop().Sugar(),
			sessions:      sessionRepository,
			pluginMethods: map[uuid.UUID]klspplugin.RuntimePrioritizedMethods{},
			pluginsAll:    []klspplugin.Plugin{failing},
		}
		assert.Error(t, c.registerSessionPlugins(ctx))
	})
}

func TestExecutePluginMethods(t *testing.T) {
	id := factory.UUID()
	ctx := context.WithValue(context.Background(), entity.SessionContextKey, id)

	var mu sync.Mutex
	order := []string{}
	record := func(name string) func(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error {
		return func(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
			return nil
		}
	}
	info := func(name string, priority klspplugin.Priority) klspplugin.PluginInfo {
		return klspplugin.PluginInfo{
			Priorities: map[string]klspplugin.Priority{protocol.MethodTextDocumentDidOpen: priority},
			Methods:    &klspplugin.Methods{PluginNameKey: name, DidOpen: record(name)},
			NameKey:    name,
		}
	}
	methods, err := mapper.PluginInfoToRuntimePrioritizedMethods([]klspplugin.PluginInfo{
		info("regular", klspplugin.PriorityRegular),
		info("async", klspplugin.PriorityAsync),
		info("high", klspplugin.PriorityHigh),
	})
	require.NoError(t, err)

	c := &controller{
		logger:        zap.NewNop().Sugar(),
		pluginMethods: map[uuid.UUID]klspplugin.RuntimePrioritizedMethods{id: methods},
	}

	call := func(ctx context.Context, m *klspplugin.Methods) {
		assert.NoError(t, m.DidOpen(ctx, &protocol.DidOpenTextDocumentParams{}))
	}

	t.Run("sync before async", func(t *testing.T) {
		require.NoError(t, c.executePluginMethods(ctx, protocol.MethodTextDocumentDidOpen, call, call))
		c.wg.Wait()
		assert.Equal(t, []string{"high", "regular", "async"}, order)
	})

	t.Run("nil handler", func(t *testing.T) {
		assert.Error(t, c.executePluginMethods(ctx, protocol.MethodTextDocumentDidOpen, nil, call))
	})

	t.Run("no session in context", func(t *testing.T) {
		assert.Error(t, c.executePluginMethods(context.Background(), protocol.MethodTextDocumentDidOpen, call, call))
	})

	t.Run("unregistered method", func(t *testing.T) {
		assert.NoError(t, c.executePluginMethods(ctx, protocol.MethodTextDocumentHover, call, call))
	})

	t.Run("unregistered session", func(t *testing.T) {
		other := context.WithValue(context.Background(), entity.SessionContextKey, factory.UUID())
		assert.NoError(t, c.executePluginMethods(other, protocol.MethodTextDocumentDidOpen, call, call))
	})
}
