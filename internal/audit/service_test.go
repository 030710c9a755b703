package audit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"phoneline/internal/routing"
)

func TestService_AppendRequiresWorkspaceAndType(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	if err := svc.Append(context.Background(), Event{Type: EventTypeSettingsUpdated}); !errors.Is(err, ErrInvalidEvent) {
		t.Fatalf("expected ErrInvalidEvent, got %v", err)
	}
	if err := svc.Append(context.Background(), Event{WorkspaceID: "w"}); !errors.Is(err, ErrInvalidEvent) {
		t.Fatalf("expected ErrInvalidEvent, got %v", err)
	}
	if err := NewService(nil).Append(context.Background(), Event{WorkspaceID: "w", Type: EventTypeSettingsUpdated}); err == nil {
		t.Fatalf("expected error without repository")
	}
}

func TestService_LogRoutingDecision(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	d := routing.Decision{
		Destination:   routing.DestinationElevenLabs,
		AgentContext:  routing.AgentContextOutOfHours,
		EffectiveMode: routing.ModeOutOfHours,
		Rule:          "out-of-hours",
		Reason:        "outside business hours",
	}
	if err := svc.LogRoutingDecision(context.Background(), "w", "CA123", d, true); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	evs := repo.Events()
	if len(evs) != 1 {
		t.Fatalf("expected 1 event, got %d", len(evs))
	}
	e := evs[0]
	if e.Type != EventTypeRoutingDecision || e.CallSID != "CA123" || e.Rule != "out-of-hours" {
		t.Fatalf("unexpected event: %+v", e)
	}
	if e.ID == "" || e.CreatedAt.IsZero() {
		t.Fatalf("expected id and created_at to be set")
	}
	var got DecisionRecord
	if err := json.Unmarshal([]byte(e.Metadata), &got); err != nil {
		t.Fatalf("metadata is not json: %v", err)
	}
	if got.Destination != routing.DestinationElevenLabs || got.AgentContext != routing.AgentContextOutOfHours {
		t.Fatalf("unexpected metadata decision: %+v", got)
	}
	if !got.VAMissedCall {
		t.Fatalf("expected missed-call flag in metadata")
	}
}

func TestService_LogSettingsUpdatedCapturesActor(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	if err := svc.LogSettingsUpdated(context.Background(), "w", "u1", "owner", "1.2.3.4", `{"changed":["forward_number"]}`); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := svc.LogOverride(context.Background(), "w", "u1", "admin", "1.2.3.4", "", "mode override cleared", ""); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	evs := repo.Events()
	if len(evs) != 2 {
		t.Fatalf("expected 2 events, got %d", len(evs))
	}
	if evs[0].IPAddress != "1.2.3.4" || evs[0].ActorRole != "owner" || evs[0].Type != EventTypeSettingsUpdated {
		t.Fatalf("unexpected settings event: %+v", evs[0])
	}
	if evs[1].Type != EventTypeModeOverride {
		t.Fatalf("expected mode_override, got %q", evs[1].Type)
	}
}
