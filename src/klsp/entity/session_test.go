package entity

import (
	"testing"

	"github.com/kedro-org/kedro-lsp/src/klsp/internal/kedro"
	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestSessionHasProject(t *testing.T) {
	var nilSession *Session
	assert.False(t, nilSession.HasProject())
	assert.False(t, (&Session{KedroEnabled: true}).HasProject())
	assert.False(t, (&Session{Project: &kedro.Project{Root: "/repo"}}).HasProject())
	assert.True(t, (&Session{KedroEnabled: true, Project: &kedro.Project{Root: "/repo"}}).HasProject())
}

func TestSessionInterpreter(t *testing.T) {
	var nilSession *Session
	assert.Nil(t, nilSession.Interpreter())
	assert.Nil(t, (&Session{}).Interpreter())

	s := &Session{Config: &SessionConfig{
		GlobalSettings: WorkspaceSettings{Interpreter: []string{"python3"}},
		Settings:       []WorkspaceSettings{{Workspace: "file:///repo"}},
	}}
	assert.Equal(t, []string{"python3"}, s.Interpreter())
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
