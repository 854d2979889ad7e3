package kedro

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/kedro-org/kedro-lsp/src/catalog-lib/model"
	"github.com/kedro-org/kedro-lsp/src/catalog-lib/parser"
	"github.com/kedro-org/kedro-lsp/src/catalog-lib/resolver"
	"go.uber.org/multierr"
)

// ConfigLoader merges a project's configuration the way the framework's config loader does:
// files of one environment may not repeat a top-level key, and the active environment
// replaces base entries key by key.
type ConfigLoader struct {
	FS     fs.FS
	Layout resolver.Layout
}

// Load returns the merged tree of a category such as resolver.CategoryCatalog.
func (l *ConfigLoader) Load(ctx context.Context, category string) (*model.Mapping, error) {
	patterns, ok := l.Layout.Patterns[category]
	if !ok {
		patterns = resolver.DefaultPatterns[category]
	}

	baseDir := path.Join(l.Layout.ConfSource, l.Layout.BaseEnv)
	merged, err := l.loadDir(ctx, patterns, baseDir)
	if err != nil {
		return nil, err
	}
	if l.Layout.Env == "" || l.Layout.Env == l.Layout.BaseEnv {
		return merged, nil
	}

	envTree, err := l.loadDir(ctx, patterns, path.Join(l.Layout.ConfSource, l.Layout.Env))
	if err != nil {
		return nil, err
	}
	for _, key := range envTree.Keys {
		value, _ := envTree.Get(key)
		merged.Set(key, value)
	}
	return merged, nil
}

func (l *ConfigLoader) loadDir(ctx context.Context, patterns []string, dir string) (*model.Mapping, error) {
	files, err := resolver.ConfigPaths(l.FS, patterns, "", dir)
	if err != nil {
		return nil, err
	}

	var (
		merged = model.NewMapping()
		owner  = map[string]string{}
		errs   error
	)
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !resolver.IsValidConfigPath(file) {
			continue
		}
		text, err := fs.ReadFile(l.FS, file)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		tree, err := parser.Parse(string(text))
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", file, err))
			continue
		}

		duplicates := map[string][]string{}
		for _, key := range tree.Keys {
			if previous, ok := owner[key]; ok && !strings.HasPrefix(key, "_") {
				duplicates[previous] = append(duplicates[previous], key)
			}
			owner[key] = file
			value, _ := tree.Get(key)
			merged.Set(key, value)
		}
		errs = multierr.Append(errs, duplicateError(file, duplicates))
	}
	if errs != nil {
		return nil, errs
	}
	return merged, nil
}

func duplicateError(file string, duplicates map[string][]string) error {
	if len(duplicates) == 0 {
		return nil
	}
	previous := make([]string, 0, len(duplicates))
	for p := range duplicates {
		previous = append(previous, p)
	}
	sort.Strings(previous)

	var messages []string
	for _, p := range previous {
		keys := duplicates[p]
		sort.Strings(keys)
		messages = append(messages, fmt.Sprintf("Duplicate keys found in %s and %s:\n- %s", p, file, strings.Join(keys, ", ")))
	}
	return errors.New(strings.Join(messages, "\n"))
}
