package audit

import (
	"time"

	"phoneline/internal/routing"
)

// Event is an immutable, append-only audit log record.
//
// Invariants:
// - Events are never updated or deleted.
// - workspace_id is required for tenancy isolation.
// - actor and ip capture are best-effort; do not block call handling on audit failures.
//
// Storage: table audit_events (migrations/0001_init.sql), INSERT-only.
type Event struct {
	ID          string `json:"id" db:"id"`
	WorkspaceID string `json:"workspace_id" db:"workspace_id"`

	Type EventType `json:"type" db:"type"`

	// Actor fields are empty for webhook-driven events.
	ActorUserID string `json:"actor_user_id,omitempty" db:"actor_user_id"`
	ActorRole   string `json:"actor_role,omitempty" db:"actor_role"`
	IPAddress   string `json:"ip_address,omitempty" db:"ip_address"`

	// CallSID is the provider call identifier for routing decisions.
	CallSID    string `json:"call_sid,omitempty" db:"call_sid"`
	Rule       string `json:"rule,omitempty" db:"rule"`
	OverrideID string `json:"override_id,omitempty" db:"override_id"`

	// Message is a short human-readable description for internal ops.
	Message string `json:"message,omitempty" db:"message"`

	// Metadata is optional JSON for full details.
	Metadata string `json:"metadata,omitempty" db:"metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// DecisionRecord is the metadata of a routing_decision event.
type DecisionRecord struct {
	routing.Decision
	// VAMissedCall is set when the decision answered the VA forward's
	// missed-call callback.
	VAMissedCall bool `json:"is_va_missed_call"`
}

type EventType string

const (
	EventTypeRoutingDecision EventType = "routing_decision"
	EventTypeSettingsUpdated EventType = "settings_updated"
	EventTypeModeOverride    EventType = "mode_override"
)
