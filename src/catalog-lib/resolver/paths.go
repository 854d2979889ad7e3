package resolver

import (
	"errors"
	"io/fs"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/multierr"
)

// Configuration categories.
const (
	CategoryCatalog    = "catalog"
	CategoryParameters = "parameters"
)

// DefaultPatterns are the glob patterns registered per category, relative to an environment directory.
var DefaultPatterns = map[string][]string{
	CategoryCatalog:    {"catalog*", "catalog*/**", "**/catalog*"},
	CategoryParameters: {"parameters*", "parameters*/**", "**/parameters*"},
}

var _configExtensions = []string{".yml", ".yaml", ".json"}

// IsHidden reports whether any segment of a slash-separated path starts with a dot.
func IsHidden(p string) bool {
	for _, part := range strings.Split(p, "/") {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	return false
}

// IsValidConfigPath reports whether p has a configuration file extension.
func IsValidConfigPath(p string) bool {
	ext := path.Ext(p)
	for _, valid := range _configExtensions {
		if ext == valid {
			return true
		}
	}
	return false
}

// ConfigPaths expands patterns under envDir and then baseDir.
// Hidden files are dropped, each directory is deduplicated on its own, and
// the active environment's files come first so its definitions take precedence.
// A missing directory contributes no files.
func ConfigPaths(fsys fs.FS, patterns []string, envDir, baseDir string) ([]string, error) {
	var (
		result []string
		errs   error
	)
	dirs := []string{envDir}
	if baseDir != envDir {
		dirs = append(dirs, baseDir)
	}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		found, err := expand(fsys, patterns, dir)
		errs = multierr.Append(errs, err)
		result = append(result, found...)
	}
	return result, errs
}

func expand(fsys fs.FS, patterns []string, dir string) ([]string, error) {
	info, err := fs.Stat(fsys, dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, nil
	}

	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return nil, err
	}

	var (
		result []string
		seen   = map[string]struct{}{}
		errs   error
	)
	for _, pattern := range patterns {
		matches, err := doublestar.Glob(sub, pattern, doublestar.WithFilesOnly())
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		for _, match := range matches {
			if IsHidden(match) {
				continue
			}
			if _, ok := seen[match]; ok {
				continue
			}
			seen[match] = struct{}{}
			result = append(result, path.Join(dir, match))
		}
	}
	return result, errs
}

// IsCatalogFile reports whether p names a YAML catalog file.
func IsCatalogFile(p string) bool {
	base := path.Base(p)
	ext := path.Ext(base)
	return strings.HasPrefix(base, CategoryCatalog) && (ext == ".yml" || ext == ".yaml")
}
