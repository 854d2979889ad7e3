package workspaceutils

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/kedro-org/kedro-lsp/src/klsp/entity"
	ideclient "github.com/kedro-org/kedro-lsp/src/klsp/gateway/ide-client"
	"github.com/kedro-org/kedro-lsp/src/klsp/internal/fs"
	"go.lsp.dev/protocol"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const _projectMarker = "pyproject.toml"

// Module provides a new WorkspaceUtils.
var Module = fx.Provide(New)

// WorkspaceUtils is a utility interface for getting workspace related information.
type WorkspaceUtils interface {
	// GetWorkspaceRoot picks the project root for a session: kedroProjectPath, then the first workspace folder, then rootUri.
	// A folder without pyproject.toml resolves to its nearest ancestor that has one.
	GetWorkspaceRoot(ctx context.Context, params *protocol.InitializeParams, cfg *entity.SessionConfig) (string, error)
}

// Params are the parameters required to create a new WorkspaceUtils.
type Params struct {
	fx.In

	IdeGateway ideclient.Gateway
	Logger     *zap.SugaredLogger
	FS         fs.KlspFS
}

type workspaceUtilsImpl struct {
	ideGateway ideclient.Gateway
	logger     *zap.SugaredLogger
	fs         fs.KlspFS
}

// New creates a new WorkspaceUtils.
func New(p Params) WorkspaceUtils {
	return &workspaceUtilsImpl{
		ideGateway: p.IdeGateway,
		logger:     p.Logger,
		fs:         p.FS,
	}
}

func (c *workspaceUtilsImpl) GetWorkspaceRoot(ctx context.Context, params *protocol.InitializeParams, cfg *entity.SessionConfig) (string, error) {
	if params == nil {
		return "", fmt.Errorf("no initialize params provided")
	}

	workspacePath := c.workspacePath(ctx, params)

	if cfg != nil {
		if projectPath := cfg.Active().ResolveProjectPath(workspacePath); projectPath != "" {
			ok, err := c.fs.DirExists(projectPath)
			if err != nil {
				return "", fmt.Errorf("checking kedroProjectPath %q: %w", projectPath, err)
			}
			if !ok {
				return "", fmt.Errorf("kedroProjectPath %q is not a directory", projectPath)
			}
			return projectPath, nil
		}
	}

	if workspacePath == "" {
		return "", fmt.Errorf("unable to determine a workspace root: no workspace folders or root uri provided")
	}

	ok, err := c.fs.FileExists(filepath.Join(workspacePath, _projectMarker))
	if err == nil && ok {
		return workspacePath, nil
	}

	found, err := c.fs.FindUp(workspacePath, _projectMarker)
	if err != nil {
		if !errors.Is(err, fs.ErrNotFound) {
			c.logger.Warnf("searching for %s above %q: %v", _projectMarker, workspacePath, err)
		}
		return workspacePath, nil
	}
	return found, nil
}

// workspacePath returns the first usable workspace folder, falling back to rootUri and rootPath.
func (c *workspaceUtilsImpl) workspacePath(ctx context.Context, params *protocol.InitializeParams) string {
	result := ""
	for _, folder := range params.WorkspaceFolders {
		// code-workspace files may contain improperly formatted or nonexistent folders.
		p, ok := uriToPath(folder.URI)
		if !ok {
			continue
		}
		if result == "" {
			result = p
			continue
		}
		if p != result {
			msg := fmt.Sprintf("Only the first workspace folder %q is used for Kedro features; %q is ignored.", result, p)
			c.logger.Warn(msg)
			if err := c.ideGateway.ShowMessage(ctx, &protocol.ShowMessageParams{
				Type:    protocol.MessageTypeWarning,
				Message: msg,
			}); err != nil {
				c.logger.Warnf("showing workspace warning: %v", err)
			}
			break
		}
	}
	if result != "" {
		return result
	}

	if p, ok := uriToPath(string(params.RootURI)); ok {
		return p
	}
	return strings.TrimSpace(params.RootPath)
}

func uriToPath(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "" && u.Scheme != "file") || u.Path == "" {
		return "", false
	}
	return filepath.Clean(filepath.FromSlash(u.Path)), true
}
