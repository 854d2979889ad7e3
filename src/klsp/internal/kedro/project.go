// Package kedro connects the server to a Kedro project on disk: its metadata,
// merged configuration and the Python interpreter that can construct datasets.
package kedro

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/kedro-org/kedro-lsp/src/catalog-lib/resolver"
	"github.com/kedro-org/kedro-lsp/src/klsp/internal/fs"
)

const (
	_pyprojectFile    = "pyproject.toml"
	_defaultSourceDir = "src"
	_envVariable      = "KEDRO_ENV"
)

// ErrNotKedroProject is returned when a directory does not hold a Kedro project.
var ErrNotKedroProject = errors.New("not a Kedro project")

// Project describes a bootstrapped Kedro project.
type Project struct {
	Root             string
	Name             string
	Package          string
	SourceDir        string
	KedroInitVersion string
	ConfSource       string
	Env              string
	BaseEnv          string
}

// Layout returns where the project's configuration and pipelines live, relative to Root.
func (p *Project) Layout() resolver.Layout {
	return resolver.Layout{
		ConfSource: p.ConfSource,
		Env:        p.Env,
		BaseEnv:    p.BaseEnv,
		SourceDir:  p.SourceDir,
		Package:    p.Package,
	}
}

// ConfDirs returns the absolute base and active environment directories.
// The second value is empty when the active environment is the base environment.
func (p *Project) ConfDirs() (string, string) {
	base := filepath.Join(p.Root, p.ConfSource, p.BaseEnv)
	if p.Env == "" || p.Env == p.BaseEnv {
		return base, ""
	}
	return base, filepath.Join(p.Root, p.ConfSource, p.Env)
}

type pyproject struct {
	Tool struct {
		Kedro *struct {
			PackageName      string `toml:"package_name"`
			ProjectName      string `toml:"project_name"`
			KedroInitVersion string `toml:"kedro_init_version"`
			SourceDir        string `toml:"source_dir"`
		} `toml:"kedro"`
	} `toml:"tool"`
}

// Options carry server-wide defaults for Bootstrap.
type Options struct {
	ConfSource string
	BaseEnv    string
	DefaultEnv string
}

// Bootstrap reads the [tool.kedro] table of root's pyproject.toml.
// Every failure wraps ErrNotKedroProject.
func Bootstrap(filesystem fs.KlspFS, root string, envSetting string, opts Options) (*Project, error) {
	content, err := filesystem.ReadFile(filepath.Join(root, _pyprojectFile))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrNotKedroProject, _pyprojectFile, err)
	}

	var meta pyproject
	if _, err := toml.Decode(string(content), &meta); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrNotKedroProject, _pyprojectFile, err)
	}
	if meta.Tool.Kedro == nil {
		return nil, fmt.Errorf("%w: no [tool.kedro] table in %s", ErrNotKedroProject, _pyprojectFile)
	}
	if meta.Tool.Kedro.PackageName == "" {
		return nil, fmt.Errorf("%w: [tool.kedro] is missing package_name", ErrNotKedroProject)
	}

	sourceDir := meta.Tool.Kedro.SourceDir
	if sourceDir == "" {
		sourceDir = _defaultSourceDir
	}

	return &Project{
		Root:             root,
		Name:             meta.Tool.Kedro.ProjectName,
		Package:          meta.Tool.Kedro.PackageName,
		SourceDir:        filepath.ToSlash(sourceDir),
		KedroInitVersion: meta.Tool.Kedro.KedroInitVersion,
		ConfSource:       opts.ConfSource,
		BaseEnv:          opts.BaseEnv,
		Env:              SelectEnv(envSetting, opts.DefaultEnv),
	}, nil
}

// SelectEnv picks the active environment: the session setting, then KEDRO_ENV, then the server default.
func SelectEnv(setting string, defaultEnv string) string {
	if setting != "" {
		return setting
	}
	if env := os.Getenv(_envVariable); env != "" {
		return env
	}
	return defaultEnv
}
