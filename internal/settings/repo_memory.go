package settings

import (
	"context"
	"strings"
	"sync"
	"time"

	"phoneline/internal/routing"
)

// MemoryRepo keeps settings, lines and overrides in process.
// It is useful for tests and local runs; it is not intended for production.
type MemoryRepo struct {
	mu        sync.Mutex
	kv        map[string]map[string]string
	lines     map[string]string
	overrides map[string][]ModeOverride
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		kv:        map[string]map[string]string{},
		lines:     map[string]string{},
		overrides: map[string][]ModeOverride{},
	}
}

func (r *MemoryRepo) Get(ctx context.Context, workspaceID string) (routing.Settings, error) {
	if workspaceID == "" {
		return routing.Settings{}, ErrInvalidArgument
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	kv, ok := r.kv[workspaceID]
	if !ok {
		return routing.Settings{}, ErrNotFound
	}
	return FromKV(kv), nil
}

func (r *MemoryRepo) Put(ctx context.Context, workspaceID string, s routing.Settings) error {
	if workspaceID == "" {
		return ErrInvalidArgument
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kv[workspaceID] = ToKV(s)
	return nil
}

// AddLine registers number as belonging to workspaceID.
func (r *MemoryRepo) AddLine(number, workspaceID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines[strings.TrimSpace(number)] = workspaceID
}

func (r *MemoryRepo) WorkspaceForNumber(ctx context.Context, number string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ws, ok := r.lines[strings.TrimSpace(number)]
	if !ok {
		return "", ErrNotFound
	}
	return ws, nil
}

func (r *MemoryRepo) GetActiveOverride(ctx context.Context, workspaceID string, now time.Time) (ModeOverride, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var best ModeOverride
	found := false
	for _, o := range r.overrides[workspaceID] {
		if !o.ExpiresAt.After(now) {
			continue
		}
		if !found || o.CreatedAt.After(best.CreatedAt) {
			best = o
			found = true
		}
	}
	return best, found, nil
}

func (r *MemoryRepo) SaveOverride(ctx context.Context, o ModeOverride) error {
	if o.WorkspaceID == "" {
		return ErrInvalidArgument
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.overrides[o.WorkspaceID] = append(r.overrides[o.WorkspaceID], o)
	return nil
}

func (r *MemoryRepo) ClearOverrides(ctx context.Context, workspaceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.overrides, workspaceID)
	return nil
}
