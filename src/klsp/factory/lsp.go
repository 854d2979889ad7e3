package factory

import (
	"math/rand"
	"path/filepath"

	"github.com/kedro-org/kedro-lsp/src/klsp/entity"
	"github.com/kedro-org/kedro-lsp/src/klsp/internal/kedro"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

// Range returns a random protocol.Range.
func Range() protocol.Range {
	start := protocol.Position{Line: uint32(rand.Intn(100)), Character: uint32(rand.Intn(100))}
	end := protocol.Position{Line: start.Line + uint32(rand.Intn(100)), Character: uint32(rand.Intn(100))}

	if start.Line == end.Line && start.Character > end.Character {
		end.Character = start.Character + uint32(rand.Intn(100))
	}

	return protocol.Range{
		Start: start,
		End:   end,
	}
}

// KedroSession returns a session attached to a default-layout Kedro project at root.
func KedroSession(root string) *entity.Session {
	return &entity.Session{
		UUID:          UUID(),
		WorkspaceRoot: root,
		KedroEnabled:  true,
		Config:        &entity.SessionConfig{},
		Project: &kedro.Project{
			Root:       root,
			Package:    "spaceflights",
			SourceDir:  "src",
			ConfSource: "conf",
			BaseEnv:    "base",
			Env:        "local",
		},
	}
}

// CatalogURI returns the URI of the catalog file in the given environment of the project at root.
func CatalogURI(root, env string) uri.URI {
	return uri.File(filepath.Join(root, "conf", env, "catalog.yml"))
}
