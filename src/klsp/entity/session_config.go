package entity

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

const (
	_workspaceFolderVar = "${workspaceFolder}"
	_fileDirnameVar     = "${fileDirname}"
	_experimentalYes    = "yes"
)

// WorkspaceSettings are the client's settings for one workspace folder.
type WorkspaceSettings struct {
	Workspace        string   `json:"workspace,omitempty"`
	Cwd              string   `json:"cwd,omitempty"`
	Interpreter      []string `json:"interpreter,omitempty"`
	Args             []string `json:"args,omitempty"`
	ImportStrategy   string   `json:"importStrategy,omitempty"`
	Environment      string   `json:"environment,omitempty"`
	KedroProjectPath string   `json:"kedroProjectPath,omitempty"`
	IsExperimental   string   `json:"isExperimental,omitempty"`
}

// SessionConfig is decoded once from initializationOptions and never mutated afterwards.
type SessionConfig struct {
	GlobalSettings WorkspaceSettings   `json:"globalSettings"`
	Settings       []WorkspaceSettings `json:"settings"`
}

// DecodeSessionConfig reads initializationOptions. A nil value yields an empty config.
func DecodeSessionConfig(options interface{}) (*SessionConfig, error) {
	cfg := &SessionConfig{}
	if options == nil {
		return cfg, nil
	}
	raw, err := json.Marshal(options)
	if err != nil {
		return nil, fmt.Errorf("encoding initialization options: %w", err)
	}
	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("decoding initialization options: %w", err)
	}
	return cfg, nil
}

// Active returns the first workspace's settings with empty fields taken from the global settings.
// Only the first workspace is honored.
func (c *SessionConfig) Active() WorkspaceSettings {
	if c == nil {
		return WorkspaceSettings{}
	}
	if len(c.Settings) == 0 {
		return c.GlobalSettings
	}

	active := c.Settings[0]
	global := c.GlobalSettings
	if active.Cwd == "" {
		active.Cwd = global.Cwd
	}
	if len(active.Interpreter) == 0 {
		active.Interpreter = global.Interpreter
	}
	if len(active.Args) == 0 {
		active.Args = global.Args
	}
	if active.ImportStrategy == "" {
		active.ImportStrategy = global.ImportStrategy
	}
	if active.Environment == "" {
		active.Environment = global.Environment
	}
	if active.KedroProjectPath == "" {
		active.KedroProjectPath = global.KedroProjectPath
	}
	if active.IsExperimental == "" {
		active.IsExperimental = global.IsExperimental
	}
	return active
}

// Experimental reports whether experimental features were requested.
func (s WorkspaceSettings) Experimental() bool {
	return s.IsExperimental == "" || s.IsExperimental == _experimentalYes
}

// ResolveCwd substitutes the editor variables supported in cwd.
// ${fileDirname} has no document at initialize time and resolves to the workspace path.
func (s WorkspaceSettings) ResolveCwd(workspacePath string) string {
	switch s.Cwd {
	case "", _workspaceFolderVar, _fileDirnameVar:
		return workspacePath
	}
	return strings.ReplaceAll(s.Cwd, _workspaceFolderVar, workspacePath)
}

// ResolveProjectPath returns kedroProjectPath as an absolute path, or "" when unset.
func (s WorkspaceSettings) ResolveProjectPath(workspacePath string) string {
	p := strings.TrimSpace(s.KedroProjectPath)
	if p == "" {
		return ""
	}
	p = strings.ReplaceAll(p, _workspaceFolderVar, workspacePath)
	if !filepath.IsAbs(p) && workspacePath != "" {
		p = filepath.Join(workspacePath, p)
	}
	return filepath.Clean(p)
}
