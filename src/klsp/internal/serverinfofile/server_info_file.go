// Package serverinfofile publishes how to reach the running server.
package serverinfofile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"sync"

	"github.com/kedro-org/kedro-lsp/src/klsp/internal/fs"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const _configKeyInfoFile = "serverInfoFilePath"

// Module is the Fx module for this package.
var Module = fx.Provide(New)

// ServerInfoFile is a flat JSON object of server facts (listen address, log files) kept on disk for editor extensions.
// With no configured path the fields live in memory only.
type ServerInfoFile interface {
	UpdateField(key string, value string) error
	Fields() map[string]string
}

// Params define values to be used by ServerInfoFile.
type Params struct {
	fx.In

	Config    config.Provider
	Lifecycle fx.Lifecycle
	Logger    *zap.SugaredLogger
	FS        fs.KlspFS
}

type infoFile struct {
	path   string
	fs     fs.KlspFS
	logger *zap.SugaredLogger

	mu     sync.Mutex
	fields map[string]string
}

// New reads the info file location from config and removes the file when the app stops.
func New(p Params) (ServerInfoFile, error) {
	f := &infoFile{
		fs:     p.FS,
		logger: p.Logger,
		fields: make(map[string]string),
	}
	if err := p.Config.Get(_configKeyInfoFile).Populate(&f.path); err != nil {
		return nil, fmt.Errorf("getting config field %q: %w", _configKeyInfoFile, err)
	}

	p.Lifecycle.Append(fx.Hook{OnStop: f.remove})
	return f, nil
}

func (f *infoFile) UpdateField(key string, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.fields[key] = value
	if f.path == "" {
		return nil
	}

	data, err := json.Marshal(f.fields)
	if err != nil {
		return fmt.Errorf("encoding server info: %w", err)
	}
	if err := f.fs.WriteFileAtomic(f.path, data); err != nil {
		return fmt.Errorf("writing server info to %s: %w", f.path, err)
	}
	f.logger.Infow("server info updated", "file", f.path, key, value)
	return nil
}

func (f *infoFile) Fields() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return maps.Clone(f.fields)
}

func (f *infoFile) remove(context.Context) error {
	if f.path == "" {
		return nil
	}
	if err := f.fs.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
