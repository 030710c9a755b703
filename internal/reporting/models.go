package reporting

import (
	"time"

	"phoneline/internal/routing"
)

type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// RoutingSummaryRequest asks how calls were routed over a window.
// Workspace isolation: WorkspaceID is required.
type RoutingSummaryRequest struct {
	WorkspaceID string    `json:"workspace_id"`
	Range       TimeRange `json:"range"`
}

// RoutingSummary aggregates recorded routing decisions. A call that rang the
// VA and was then missed contributes two decisions.
type RoutingSummary struct {
	WorkspaceID string    `json:"workspace_id"`
	Range       TimeRange `json:"range"`

	TotalDecisions int `json:"total_decisions"`
	DistinctCalls  int `json:"distinct_calls"`

	ByDestination map[routing.Destination]int `json:"by_destination"`
	ByRule        map[string]int              `json:"by_rule"`
	ByMode        map[routing.Mode]int        `json:"by_effective_mode"`

	VAForwards    int `json:"va_forwards"`
	MissedByVA    int `json:"missed_by_va"`
	BusyLineCalls int `json:"busy_line_calls"`

	// MissRate is MissedByVA / VAForwards.
	MissRate float64 `json:"miss_rate"`

	// Undecodable counts events whose metadata could not be read.
	Undecodable int `json:"undecodable,omitempty"`
}
