package session

import (
	"context"
	"sort"
	"sync"

	"github.com/gofrs/uuid"
	"github.com/kedro-org/kedro-lsp/src/klsp/entity"
	"github.com/kedro-org/kedro-lsp/src/klsp/internal/errors"
	"github.com/kedro-org/kedro-lsp/src/klsp/mapper"
	"github.com/kedro-org/kedro-lsp/src/klsp/model"
	"github.com/uber-go/tally"
	"go.uber.org/fx"
)

// Module provides the in-memory session repository.
var Module = fx.Provide(New)

// Repository is an entity-scoped repository.
type Repository interface {
	Get(context.Context, uuid.UUID) (*entity.Session, error)
	GetFromContext(ctx context.Context) (*entity.Session, error)
	GetAllFromWorkspaceRoot(ctx context.Context, workspaceRoot string) ([]*entity.Session, error)
	// KedroWorkspaceRoots lists the distinct roots of sessions with a detected Kedro project, sorted.
	KedroWorkspaceRoots(ctx context.Context) ([]string, error)
	Set(context.Context, *entity.Session) error
	Delete(ctx context.Context, id uuid.UUID) error
	SessionCount(ctx context.Context) (int, error)
}

// Params are the inbound parameters for New.
type Params struct {
	fx.In

	Stats tally.Scope
}

type repository struct {
	mu       sync.RWMutex
	memstore map[uuid.UUID]*model.Session
	active   tally.Gauge
}

// New returns a repository to a key-value Session data store.
func New(p Params) Repository {
	return &repository{
		memstore: make(map[uuid.UUID]*model.Session),
		active:   p.Stats.SubScope("sessions").Gauge("active_connections"),
	}
}

// Get returns the Session associated with the given id.
func (r *repository) Get(ctx context.Context, id uuid.UUID) (*entity.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.memstore[id]
	if !ok {
		return nil, &errors.UUIDNotFoundError{UUID: id}
	}
	return mapper.ModelToSession(m)
}

// GetFromContext returns the Session associated with the given context.
func (r *repository) GetFromContext(ctx context.Context) (*entity.Session, error) {
	id, err := mapper.ContextToSessionUUID(ctx)
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

// Set stores the Session under its uuid, replacing any previous value.
func (r *repository) Set(ctx context.Context, s *entity.Session) error {
	if s == nil {
		return errors.ErrNilSession
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.memstore[s.UUID] = mapper.SessionToModel(s)
	r.active.Update(float64(len(r.memstore)))
	return nil
}

// Delete removes the Session associated with the given id.
func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.memstore, id)
	r.active.Update(float64(len(r.memstore)))
	return nil
}

// SessionCount returns the total count of active sessions.
func (r *repository) SessionCount(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.memstore), nil
}

// GetAllFromWorkspaceRoot returns all sessions for a specific workspaceRoot.
func (r *repository) GetAllFromWorkspaceRoot(ctx context.Context, workspaceRoot string) ([]*entity.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	found := make([]*entity.Session, 0)
	for _, m := range r.memstore {
		if m.WorkspaceRoot != workspaceRoot {
			continue
		}
		s, err := mapper.ModelToSession(m)
		if err != nil {
			return nil, err
		}
		found = append(found, s)
	}
	return found, nil
}

func (r *repository) KedroWorkspaceRoots(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	roots := make([]string, 0)
	for _, m := range r.memstore {
		if !m.KedroEnabled || m.Project == nil {
			continue
		}
		if _, ok := seen[m.WorkspaceRoot]; ok {
			continue
		}
		seen[m.WorkspaceRoot] = struct{}{}
		roots = append(roots, m.WorkspaceRoot)
	}
	sort.Strings(roots)
	return roots, nil
}
