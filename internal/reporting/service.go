package reporting

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"phoneline/internal/audit"
	"phoneline/internal/routing"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

// MaxRange bounds a single summary query.
const MaxRange = 93 * 24 * time.Hour

// Repository abstracts data access for reporting.
//
// Implementations must filter by workspace and read the append-only audit
// trail; audit.MemoryRepo and audit.PostgresRepo both satisfy it.
type Repository interface {
	ListEvents(ctx context.Context, workspaceID string, typ audit.EventType, from, to time.Time) ([]audit.Event, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

func (s *Service) RoutingSummary(ctx context.Context, req RoutingSummaryRequest) (RoutingSummary, error) {
	if req.WorkspaceID == "" {
		return RoutingSummary{}, ErrInvalidRequest
	}
	if req.Range.From.IsZero() || req.Range.To.IsZero() || !req.Range.To.After(req.Range.From) {
		return RoutingSummary{}, ErrInvalidRequest
	}
	if req.Range.To.Sub(req.Range.From) > MaxRange {
		return RoutingSummary{}, ErrInvalidRequest
	}
	if s.repo == nil {
		return RoutingSummary{}, errors.New("reporting: repository not configured")
	}

	events, err := s.repo.ListEvents(ctx, req.WorkspaceID, audit.EventTypeRoutingDecision, req.Range.From, req.Range.To)
	if err != nil {
		return RoutingSummary{}, err
	}

	out := RoutingSummary{
		WorkspaceID:   req.WorkspaceID,
		Range:         req.Range,
		ByDestination: map[routing.Destination]int{},
		ByRule:        map[string]int{},
		ByMode:        map[routing.Mode]int{},
	}
	callSIDs := map[string]struct{}{}
	for _, e := range events {
		out.TotalDecisions++
		if e.CallSID != "" {
			callSIDs[e.CallSID] = struct{}{}
		}

		var rec audit.DecisionRecord
		if err := json.Unmarshal([]byte(e.Metadata), &rec); err != nil {
			out.Undecodable++
			if e.Rule != "" {
				out.ByRule[e.Rule]++
			}
			continue
		}
		d := rec.Decision
		out.ByDestination[d.Destination]++
		out.ByRule[d.Rule]++
		out.ByMode[d.EffectiveMode]++

		// A miss can be decided by any rule, e.g. out-of-hours once the
		// forward rang past closing time.
		switch {
		case rec.VAMissedCall:
			out.MissedByVA++
		case d.AttemptVAForward:
			out.VAForwards++
		case d.AgentContext == routing.AgentContextBusy:
			out.BusyLineCalls++
		}
	}
	out.DistinctCalls = len(callSIDs)
	if out.VAForwards > 0 {
		out.MissRate = float64(out.MissedByVA) / float64(out.VAForwards)
	}
	return out, nil
}
