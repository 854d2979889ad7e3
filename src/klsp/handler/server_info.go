package handler

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/kedro-org/kedro-lsp/src/klsp/internal/serverinfofile"
	"go.uber.org/config"
)

const (
	_configKeyPlugins = "plugins"

	_infoFileKeyPID     = "pid"
	_infoFileKeyPlugins = "plugins"
)

// outputServerInfo records the process id and the enabled plugins in the server info file.
// The JSON-RPC module adds its own address field independently.
func outputServerInfo(cfg config.Provider, infofile serverinfofile.ServerInfoFile) error {
	var plugins map[string]bool
	if err := cfg.Get(_configKeyPlugins).Populate(&plugins); err != nil {
		return fmt.Errorf("loading plugin config: %w", err)
	}

	enabled := make([]string, 0, len(plugins))
	for name, on := range plugins {
		if on {
			enabled = append(enabled, name)
		}
	}
	sort.Strings(enabled)

	if err := infofile.UpdateField(_infoFileKeyPID, strconv.Itoa(os.Getpid())); err != nil {
		return fmt.Errorf("outputting pid to info file: %w", err)
	}
	if err := infofile.UpdateField(_infoFileKeyPlugins, strings.Join(enabled, ",")); err != nil {
		return fmt.Errorf("outputting plugins to info file: %w", err)
	}
	return nil
}
