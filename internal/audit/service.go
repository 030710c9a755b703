package audit

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"phoneline/internal/routing"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
//
// It MUST be append-only.
type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service records routing decisions and configuration changes.
//
// Callers should treat audit logging as best-effort.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.WorkspaceID == "" {
		return ErrInvalidEvent
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}

	now := s.clock().UTC()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	return s.repo.Append(ctx, e)
}

// LogRoutingDecision records the decision made for one webhook hit of a call.
// The full decision and the missed-call flag are kept as a DecisionRecord.
func (s *Service) LogRoutingDecision(ctx context.Context, workspaceID, callSID string, d routing.Decision, vaMissedCall bool) error {
	meta, err := json.Marshal(DecisionRecord{Decision: d, VAMissedCall: vaMissedCall})
	if err != nil {
		return err
	}
	return s.Append(ctx, Event{
		WorkspaceID: workspaceID,
		Type:        EventTypeRoutingDecision,
		CallSID:     callSID,
		Rule:        d.Rule,
		Message:     d.Reason,
		Metadata:    string(meta),
	})
}

// LogSettingsUpdated records an admin change to routing settings.
// metadata should list changed keys only; secrets must not be included.
func (s *Service) LogSettingsUpdated(ctx context.Context, workspaceID, actorUserID, actorRole, ip, metadata string) error {
	return s.Append(ctx, Event{
		WorkspaceID: workspaceID,
		Type:        EventTypeSettingsUpdated,
		ActorUserID: actorUserID,
		ActorRole:   actorRole,
		IPAddress:   ip,
		Message:     "routing settings updated",
		Metadata:    metadata,
	})
}

// LogOverride records a mode override being set or cleared. overrideID is empty on clear.
func (s *Service) LogOverride(ctx context.Context, workspaceID, actorUserID, actorRole, ip, overrideID, message, metadata string) error {
	return s.Append(ctx, Event{
		WorkspaceID: workspaceID,
		Type:        EventTypeModeOverride,
		ActorUserID: actorUserID,
		ActorRole:   actorRole,
		IPAddress:   ip,
		OverrideID:  overrideID,
		Message:     message,
		Metadata:    metadata,
	})
}
