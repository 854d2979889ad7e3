package app

import (
	"fmt"
	"os"
	"path"

	"github.com/kedro-org/kedro-lsp/src/klsp/internal/fs"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Context describes where the server is running.
type Context struct {
	Environment        string `yaml:"environment"`
	RuntimeEnvironment string `yaml:"runtimeEnvironment"`
}

const (
	// EnvLocal indicates that the server is running on a developer machine, launched by an editor.
	EnvLocal = "local"

	// EnvDevelopment indicates that the server is running from a development build.
	EnvDevelopment = "development"

	// Also selects the environment-specific config file listed in meta.yaml.
	_envKlspEnvironment = "KLSP_ENVIRONMENT"

	_configKeyInfoFile = "serverInfoFilePath"
)

func decorateEnvContext(env Context) Context {
	envValue := EnvLocal
	if os.Getenv(_envKlspEnvironment) == EnvDevelopment {
		envValue = EnvDevelopment
	}

	env.Environment = envValue
	env.RuntimeEnvironment = envValue
	return env
}

// DecorateConfigParams is the set of dependencies required to decorate the config.Provider.
type DecorateConfigParams struct {
	fx.In

	Cfg config.Provider
	FS  fs.KlspFS
}

// decorateConfigProvider prepares the filesystem for everything the config says the server will write.
func decorateConfigProvider(p DecorateConfigParams) (config.Provider, error) {
	if err := ensureLogFolder(p.Cfg, p.FS); err != nil {
		return nil, fmt.Errorf("ensuring log folder: %w", err)
	}
	if err := ensureInfoFileFolder(p.Cfg, p.FS); err != nil {
		return nil, fmt.Errorf("ensuring server info folder: %w", err)
	}
	return p.Cfg, nil
}

// ensureLogFolder creates the directory of every file output path. Standard streams are skipped.
func ensureLogFolder(cfg config.Provider, fs fs.KlspFS) error {
	var c zap.Config
	if err := cfg.Get("logging").Populate(&c); err != nil {
		return fmt.Errorf("loading logging config: %w", err)
	}

	for _, outputPath := range c.OutputPaths {
		if outputPath == "stdout" || outputPath == "stderr" {
			continue
		}
		if err := fs.MkdirAll(path.Dir(outputPath)); err != nil {
			return fmt.Errorf("creating logging directory: %w", err)
		}
	}
	return nil
}

func ensureInfoFileFolder(cfg config.Provider, fs fs.KlspFS) error {
	var infoFile string
	if err := cfg.Get(_configKeyInfoFile).Populate(&infoFile); err != nil {
		return fmt.Errorf("loading %q: %w", _configKeyInfoFile, err)
	}
	if infoFile == "" {
		return nil
	}
	return fs.MkdirAll(path.Dir(infoFile))
}
