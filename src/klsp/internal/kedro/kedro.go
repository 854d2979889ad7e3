package kedro

import (
	"context"
	"fmt"
	"time"

	"github.com/kedro-org/kedro-lsp/src/catalog-lib/dataset"
	"github.com/kedro-org/kedro-lsp/src/catalog-lib/resolver"
	"github.com/kedro-org/kedro-lsp/src/klsp/internal/executor"
	"github.com/kedro-org/kedro-lsp/src/klsp/internal/fs"
	"github.com/kedro-org/kedro-lsp/src/klsp/internal/logfilewriter"
	"github.com/kedro-org/kedro-lsp/src/klsp/internal/serverinfofile"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	_configKeyKedro    = "kedro"
	_configKeyDatasets = "datasets"
	_configKeyViz      = "viz"
	_configKeyTimeout  = "executor.timeout"
	_outputName        = "kedro-lsp"

	// ProviderBuiltin validates datasets against the built-in type registry.
	ProviderBuiltin = "builtin"
	// ProviderPython validates datasets by constructing them in the project's interpreter.
	ProviderPython = "python"
)

// Module provides the Kedro project service.
var Module = fx.Provide(New)

// Service creates project-scoped collaborators for a session.
type Service interface {
	// Bootstrap detects the Kedro project at root. Failures wrap ErrNotKedroProject.
	Bootstrap(root string, envSetting string) (*Project, error)
	// ConfigLoader merges the project's configuration.
	ConfigLoader(project *Project) *ConfigLoader
	// Resolver answers definition and reference queries for the project.
	Resolver(project *Project) *resolver.Resolver
	// DatasetProvider returns the configured dataset-construction provider.
	DatasetProvider(project *Project, interpreter []string) dataset.Provider
	// ProjectData exports the project's flowchart data.
	ProjectData(ctx context.Context, project *Project, interpreter []string, pipelineName string) (interface{}, error)
}

// Params are the dependencies of the Kedro service.
type Params struct {
	fx.In

	Config         config.Provider
	Logger         *zap.SugaredLogger
	FS             fs.KlspFS
	Executor       executor.Executor
	Lifecycle      fx.Lifecycle
	ServerInfoFile serverinfofile.ServerInfoFile
}

type kedroConfig struct {
	ConfSource string `yaml:"confSource"`
	BaseEnv    string `yaml:"baseEnv"`
	DefaultEnv string `yaml:"defaultEnv"`
}

type datasetsConfig struct {
	Provider string           `yaml:"provider"`
	Types    dataset.Registry `yaml:"types"`
}

type vizConfig struct {
	Command []string `yaml:"command"`
}

type service struct {
	logger   *zap.SugaredLogger
	fs       fs.KlspFS
	executor executor.Executor
	output   logfilewriter.Writer

	options  Options
	datasets datasetsConfig
	builtin  *dataset.BuiltinProvider
	viz      vizConfig
	timeout  time.Duration
}

// New creates the Kedro service from server configuration.
func New(p Params) (Service, error) {
	s := &service{
		logger:   p.Logger.With("component", "kedro"),
		fs:       p.FS,
		executor: p.Executor,
	}
	if err := s.processConfig(p.Config); err != nil {
		return nil, err
	}
	s.builtin = dataset.NewBuiltinProvider(s.datasets.Types)

	output, err := logfilewriter.SetupOutputWriter(logfilewriter.Params{
		FS:             p.FS,
		Lifecycle:      p.Lifecycle,
		ServerInfoFile: p.ServerInfoFile,
	}, _outputName)
	if err != nil {
		s.logger.Warnw("interpreter output will be discarded", zap.Error(err))
		output = logfilewriter.Discard()
	}
	s.output = output

	return s, nil
}

func (s *service) Bootstrap(root string, envSetting string) (*Project, error) {
	return Bootstrap(s.fs, root, envSetting, s.options)
}

func (s *service) ConfigLoader(project *Project) *ConfigLoader {
	return &ConfigLoader{FS: s.fs.DirFS(project.Root), Layout: project.Layout()}
}

func (s *service) Resolver(project *Project) *resolver.Resolver {
	return &resolver.Resolver{FS: s.fs.DirFS(project.Root), Root: project.Root, Layout: project.Layout()}
}

func (s *service) DatasetProvider(project *Project, interpreter []string) dataset.Provider {
	if s.datasets.Provider != ProviderPython {
		return s.builtin
	}
	return &PythonProvider{
		Executor:    s.executor,
		Interpreter: interpreter,
		Dir:         project.Root,
		Env:         []string{_envVariable + "=" + project.Env},
		Timeout:     s.timeout,
		Output:      s.output.Source("construct"),
	}
}

func (s *service) ProjectData(ctx context.Context, project *Project, interpreter []string, pipelineName string) (interface{}, error) {
	runner := &VizRunner{
		Executor:    s.executor,
		Command:     s.viz.Command,
		Interpreter: interpreter,
		Timeout:     s.timeout,
		Output:      s.output.Source("viz"),
	}
	return runner.ProjectData(ctx, project, pipelineName)
}

func (s *service) processConfig(cfg config.Provider) error {
	var kc kedroConfig
	if err := cfg.Get(_configKeyKedro).Populate(&kc); err != nil {
		return fmt.Errorf("getting config field %q: %w", _configKeyKedro, err)
	}
	s.options = Options{
		ConfSource: withDefault(kc.ConfSource, "conf"),
		BaseEnv:    withDefault(kc.BaseEnv, "base"),
		DefaultEnv: withDefault(kc.DefaultEnv, "local"),
	}

	if err := cfg.Get(_configKeyDatasets).Populate(&s.datasets); err != nil {
		return fmt.Errorf("getting config field %q: %w", _configKeyDatasets, err)
	}
	switch s.datasets.Provider {
	case "":
		s.datasets.Provider = ProviderBuiltin
	case ProviderBuiltin, ProviderPython:
	default:
		return fmt.Errorf("unsupported dataset provider %q", s.datasets.Provider)
	}

	if err := cfg.Get(_configKeyViz).Populate(&s.viz); err != nil {
		return fmt.Errorf("getting config field %q: %w", _configKeyViz, err)
	}

	var timeout string
	if err := cfg.Get(_configKeyTimeout).Populate(&timeout); err != nil {
		return fmt.Errorf("getting config field %q: %w", _configKeyTimeout, err)
	}
	if timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("parsing %q: %w", _configKeyTimeout, err)
		}
		s.timeout = d
	}
	return nil
}

func withDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
