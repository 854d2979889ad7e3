package core

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	uber_config "go.uber.org/config"
	"go.uber.org/fx"
)

const (
	_envConfigDir     = "KLSP_CONFIG_DIR"
	_defaultConfigDir = "src/klsp/config"
	_metaFile         = "meta.yaml"
)

// ConfigModule provides the merged service configuration.
var ConfigModule = fx.Provide(NewConfig)

// NewConfig loads the config directory named by KLSP_CONFIG_DIR, or src/klsp/config relative to the working directory.
func NewConfig() (uber_config.Provider, error) {
	dir := os.Getenv(_envConfigDir)
	if dir == "" {
		dir = _defaultConfigDir
	}
	return newConfigFromDir(dir)
}

// newConfigFromDir merges the files listed in meta.yaml, later files overriding earlier ones.
// ${VAR:default} references are expanded from the environment.
func newConfigFromDir(dir string) (uber_config.Provider, error) {
	files, err := listedConfigFiles(dir)
	if err != nil {
		return nil, err
	}

	options := make([]uber_config.YAMLOption, 0, len(files)+1)
	for _, file := range files {
		options = append(options, uber_config.File(file))
	}
	options = append(options, uber_config.Expand(os.LookupEnv))

	provider, err := uber_config.NewYAML(options...)
	if err != nil {
		return nil, fmt.Errorf("loading configuration from %s: %w", dir, err)
	}
	return provider, nil
}

// listedConfigFiles returns the existing files named in dir/meta.yaml, in order.
func listedConfigFiles(dir string) ([]string, error) {
	meta, err := uber_config.NewYAML(
		uber_config.File(filepath.Join(dir, _metaFile)),
		uber_config.Expand(os.LookupEnv),
	)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", _metaFile, err)
	}

	var names []string
	if err := meta.Get("files").Populate(&names); err != nil {
		return nil, fmt.Errorf("reading files list from %s: %w", _metaFile, err)
	}

	var files []string
	for _, name := range names {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		} else if err != nil {
			return nil, err
		}
		files = append(files, path)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no configuration files found in %s", dir)
	}
	return files, nil
}
