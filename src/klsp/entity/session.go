// Package entity contains the domain types shared by the kedro-lsp handlers and controllers.
package entity

import (
	"github.com/gofrs/uuid"
	"github.com/kedro-org/kedro-lsp/src/klsp/internal/kedro"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
)

type keyType string

// SessionContextKey stores the session UUID in a request context.
const SessionContextKey keyType = "SessionUUID"

// Session is the state of one editor connection.
type Session struct {
	UUID             uuid.UUID                  `json:"uuid" zap:"uuid"`
	InitializeParams *protocol.InitializeParams `json:"-" zap:"-"`
	Conn             *jsonrpc2.Conn             `json:"-" zap:"-"`
	WorkspaceRoot    string                     `json:"workspaceRoot" zap:"workspaceRoot"`
	Config           *SessionConfig             `json:"-" zap:"-"`
	// Project is nil when the workspace root is not a Kedro project.
	Project *kedro.Project `json:"project,omitempty" zap:"project"`
	// KedroEnabled gates every plugin method after initialize.
	KedroEnabled bool `json:"kedroEnabled" zap:"kedroEnabled"`
}

// HasProject reports whether Kedro features are active for the session.
func (s *Session) HasProject() bool {
	return s != nil && s.KedroEnabled && s.Project != nil
}

// Interpreter returns the command used to start the project's Python interpreter.
func (s *Session) Interpreter() []string {
	if s == nil || s.Config == nil {
		return nil
	}
	return s.Config.Active().Interpreter
}
