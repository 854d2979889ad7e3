// Package resolver maps dataset names and parameter references to where they are defined and used.
package resolver

import (
	"bufio"
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/kedro-org/kedro-lsp/src/catalog-lib/parser"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
	"go.uber.org/multierr"
)

const _pipelineGlob = "*/**/*pipeline*.py"

// Layout places a project's configuration and pipeline sources relative to its root.
type Layout struct {
	ConfSource string
	Env        string
	BaseEnv    string
	SourceDir  string
	Package    string
	// Patterns overrides DefaultPatterns per category.
	Patterns map[string][]string
}

// Resolver answers definition and reference queries for one project.
type Resolver struct {
	FS     fs.FS
	Root   string
	Layout Layout
}

// New creates a Resolver reading from the project at root.
func New(root string, layout Layout) *Resolver {
	return &Resolver{FS: os.DirFS(root), Root: root, Layout: layout}
}

// Paths lists the configuration files of a category, active environment first.
func (r *Resolver) Paths(category string) ([]string, error) {
	patterns, ok := r.Layout.Patterns[category]
	if !ok {
		patterns = DefaultPatterns[category]
	}
	envDir, baseDir := "", path.Join(r.Layout.ConfSource, r.Layout.BaseEnv)
	if r.Layout.Env != "" {
		envDir = path.Join(r.Layout.ConfSource, r.Layout.Env)
	}
	return ConfigPaths(r.FS, patterns, envDir, baseDir)
}

// URI converts a path relative to the project root into a document URI.
func (r *Resolver) URI(p string) protocol.DocumentURI {
	return uri.File(filepath.Join(r.Root, filepath.FromSlash(p)))
}

// Definition returns the definition of word, or fallback when it cannot be resolved.
// Problems reading individual files are returned alongside the result.
func (r *Resolver) Definition(ctx context.Context, word string, fallback protocol.Location) (protocol.Location, error) {
	loc, ok, err := r.Lookup(ctx, word)
	if !ok {
		return fallback, err
	}
	return loc, err
}

// Lookup resolves a parameter reference or a dataset name to its defining line.
func (r *Resolver) Lookup(ctx context.Context, word string) (protocol.Location, bool, error) {
	if strings.HasPrefix(word, ParamsPrefix) {
		key := strings.SplitN(strings.TrimPrefix(word, ParamsPrefix), ".", 2)[0]
		if key == "" {
			return protocol.Location{}, false, nil
		}
		return r.lookupParameter(ctx, key)
	}
	if word == "" {
		return protocol.Location{}, false, nil
	}
	return r.lookupDataset(ctx, word)
}

func (r *Resolver) lookupParameter(ctx context.Context, key string) (protocol.Location, bool, error) {
	files, errs := r.Paths(CategoryParameters)
	prefix := key + ":"

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return protocol.Location{}, false, multierr.Append(errs, err)
		}
		text, err := fs.ReadFile(r.FS, file)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		for i, line := range strings.Split(string(text), "\n") {
			if strings.HasPrefix(line, prefix) {
				return r.lineLocation(file, i), true, errs
			}
		}
	}
	return protocol.Location{}, false, errs
}

func (r *Resolver) lookupDataset(ctx context.Context, name string) (protocol.Location, bool, error) {
	files, errs := r.Paths(CategoryCatalog)

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return protocol.Location{}, false, multierr.Append(errs, err)
		}
		if !IsValidConfigPath(file) || path.Ext(file) == ".json" {
			continue
		}
		text, err := fs.ReadFile(r.FS, file)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		tree, err := parser.Parse(string(text))
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if line := tree.KeyLine(name); line >= 0 {
			return r.lineLocation(file, line), true, errs
		}
	}
	return protocol.Location{}, false, errs
}

// References lists every line of the project's pipeline modules quoting word.
// The scan is textual, so occurrences in comments and unrelated strings are included.
func (r *Resolver) References(ctx context.Context, word string) ([]protocol.Location, error) {
	word = strings.TrimRight(word, ":")
	if word == "" {
		return nil, nil
	}
	needles := []string{`"` + word + `"`, `'` + word + `'`}

	dir := path.Join(r.Layout.SourceDir, r.Layout.Package, "pipelines")
	if _, err := fs.Stat(r.FS, dir); err != nil {
		return nil, nil
	}
	sub, err := fs.Sub(r.FS, dir)
	if err != nil {
		return nil, err
	}
	files, err := doublestar.Glob(sub, _pipelineGlob, doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}

	var (
		locations []protocol.Location
		errs      error
	)
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return locations, multierr.Append(errs, err)
		}
		found, err := r.scan(path.Join(dir, file), needles)
		errs = multierr.Append(errs, err)
		locations = append(locations, found...)
	}
	return locations, errs
}

func (r *Resolver) scan(file string, needles []string) ([]protocol.Location, error) {
	f, err := r.FS.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var locations []protocol.Location
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for i := 0; scanner.Scan(); i++ {
		line := scanner.Text()
		for _, needle := range needles {
			if strings.Contains(line, needle) {
				locations = append(locations, r.lineLocation(file, i))
				break
			}
		}
	}
	return locations, scanner.Err()
}

func (r *Resolver) lineLocation(file string, line int) protocol.Location {
	return protocol.Location{
		URI: r.URI(file),
		Range: protocol.Range{
			Start: protocol.Position{Line: uint32(line), Character: 0},
			End:   protocol.Position{Line: uint32(line + 1), Character: 0},
		},
	}
}
