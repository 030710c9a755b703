package settings

import (
	"context"
	"errors"
	"time"

	"phoneline/internal/routing"

	"github.com/google/uuid"
)

// ModeOverride temporarily replaces a workspace's agent mode, e.g. "voicemail-only
// until Monday" for a bank holiday. Overrides are always time-bounded.
type ModeOverride struct {
	ID          string            `json:"id"`
	WorkspaceID string            `json:"workspace_id"`
	AgentMode   routing.AgentMode `json:"agent_mode"`
	Reason      string            `json:"reason,omitempty"`
	ExpiresAt   time.Time         `json:"expires_at"`
	CreatedAt   time.Time         `json:"created_at"`
}

// OverrideStore resolves currently-active overrides.
type OverrideStore interface {
	// GetActiveOverride returns (ModeOverride{}, false, nil) when none applies.
	GetActiveOverride(ctx context.Context, workspaceID string, now time.Time) (ModeOverride, bool, error)
	SaveOverride(ctx context.Context, o ModeOverride) error
	ClearOverrides(ctx context.Context, workspaceID string) error
}

// Resolved is the snapshot handed to the routing engine plus how it was produced.
type Resolved struct {
	Settings routing.Settings
	// Defaulted is set when the workspace has no stored settings.
	Defaulted bool
	// Override is non-nil when an active mode override replaced AgentMode.
	Override *ModeOverride
}

// Resolver builds the per-call settings snapshot: stored settings with any
// active override applied on top. The engine never sees the override itself.
type Resolver struct {
	Store     Store
	Overrides OverrideStore
	Now       func() time.Time
}

func NewResolver(store Store, overrides OverrideStore) *Resolver {
	return &Resolver{Store: store, Overrides: overrides, Now: time.Now}
}

func (r *Resolver) Resolve(ctx context.Context, workspaceID string) (Resolved, error) {
	if workspaceID == "" {
		return Resolved{}, ErrInvalidArgument
	}
	if r.Store == nil {
		return Resolved{}, errors.New("settings: store not configured")
	}
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}

	var out Resolved
	s, err := r.Store.Get(ctx, workspaceID)
	switch {
	case errors.Is(err, ErrNotFound):
		s = routing.DefaultSettings()
		out.Defaulted = true
	case err != nil:
		return Resolved{}, err
	}

	if r.Overrides != nil {
		o, ok, err := r.Overrides.GetActiveOverride(ctx, workspaceID, now())
		if err != nil {
			return Resolved{}, err
		}
		if ok && o.AgentMode.Valid() {
			s.AgentMode = o.AgentMode
			out.Override = &o
		}
	}
	out.Settings = s
	return out, nil
}

// SetOverride stores a new override for workspaceID that ends at expiresAt.
func (r *Resolver) SetOverride(ctx context.Context, workspaceID string, mode routing.AgentMode, reason string, expiresAt time.Time) (ModeOverride, error) {
	if r.Overrides == nil {
		return ModeOverride{}, errors.New("settings: override store not configured")
	}
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	ts := now().UTC()
	if workspaceID == "" || !mode.Valid() || !expiresAt.After(ts) {
		return ModeOverride{}, ErrInvalidArgument
	}
	o := ModeOverride{
		ID:          uuid.NewString(),
		WorkspaceID: workspaceID,
		AgentMode:   mode,
		Reason:      reason,
		ExpiresAt:   expiresAt.UTC(),
		CreatedAt:   ts,
	}
	if err := r.Overrides.SaveOverride(ctx, o); err != nil {
		return ModeOverride{}, err
	}
	return o, nil
}

// ClearOverride removes every override for workspaceID, active or not.
func (r *Resolver) ClearOverride(ctx context.Context, workspaceID string) error {
	if r.Overrides == nil {
		return errors.New("settings: override store not configured")
	}
	if workspaceID == "" {
		return ErrInvalidArgument
	}
	return r.Overrides.ClearOverrides(ctx, workspaceID)
}
