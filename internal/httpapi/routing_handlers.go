package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"phoneline/internal/reporting"
	"phoneline/internal/routing"
	"phoneline/internal/settings"

	"github.com/gin-gonic/gin"
)

type previewRequest struct {
	// At defaults to now.
	At              *time.Time `json:"at"`
	IsVAMissedCall  bool       `json:"is_va_missed_call"`
	ActiveCallCount int        `json:"active_call_count"`
	// Settings previews unsaved settings; nil uses the stored ones.
	Settings *routing.Settings `json:"settings"`
}

type previewResponse struct {
	At                  time.Time        `json:"at"`
	Decision            routing.Decision `json:"decision"`
	ContextMessage      string           `json:"context_message,omitempty"`
	BusinessDays        string           `json:"business_days_label"`
	WithinBusinessHours bool             `json:"within_business_hours"`
}

// PreviewRouting runs the engine for a hypothetical call without touching the
// tracker or the audit log.
func (h Handlers) PreviewRouting(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.ActiveCallCount < 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "active_call_count must not be negative"})
		return
	}

	var s routing.Settings
	if req.Settings != nil {
		s = *req.Settings
	} else {
		res, ok := h.resolve(c, id.WorkspaceID)
		if !ok {
			return
		}
		s = res.Settings
	}

	at := h.now()
	if req.At != nil && !req.At.IsZero() {
		at = *req.At
	}
	eng := h.engine()
	d := eng.Decide(s, routing.CallState{
		IsVAMissedCall:  req.IsVAMissedCall,
		ActiveCallCount: req.ActiveCallCount,
		At:              at,
	})
	c.JSON(http.StatusOK, previewResponse{
		At:                  at.In(eng.Location()),
		Decision:            d,
		ContextMessage:      routing.ContextMessage(d.AgentContext, s),
		BusinessDays:        routing.DayNames(s.BusinessDays),
		WithinBusinessHours: eng.IsWithinBusinessHours(s, at),
	})
}

// RoutingStatus reports how a call arriving now would be classified.
func (h Handlers) RoutingStatus(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	res, ok := h.resolve(c, id.WorkspaceID)
	if !ok {
		return
	}
	eng := h.engine()
	now := h.now()
	s := res.Settings
	c.JSON(http.StatusOK, gin.H{
		"workspace_id":          id.WorkspaceID,
		"now":                   now.In(eng.Location()),
		"timezone":              eng.Location().String(),
		"agent_mode":            s.AgentMode,
		"effective_mode":        eng.EffectiveMode(s, now),
		"within_business_hours": eng.IsWithinBusinessHours(s, now),
		"business_hours_start":  s.BusinessHoursStart,
		"business_hours_end":    s.BusinessHoursEnd,
		"business_days_label":   routing.DayNames(s.BusinessDays),
		"defaulted":             res.Defaulted,
		"override":              res.Override,
	})
}

type overrideRequest struct {
	AgentMode routing.AgentMode `json:"agent_mode"`
	Reason    string            `json:"reason"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// SetOverride stores a time-bounded agent mode override.
// RBAC: owner or admin.
func (h Handlers) SetOverride(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	if h.Resolver == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "overrides not configured"})
		return
	}
	var req overrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	req.Reason = strings.TrimSpace(req.Reason)

	ctx := c.Request.Context()
	o, err := h.Resolver.SetOverride(ctx, id.WorkspaceID, req.AgentMode, req.Reason, req.ExpiresAt)
	if errors.Is(err, settings.ErrInvalidArgument) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "agent_mode must be valid and expires_at must be in the future"})
		return
	}
	if err != nil {
		abortStoreError(c, "override update", err)
		return
	}

	if h.Audit != nil {
		meta, _ := json.Marshal(gin.H{"agent_mode": o.AgentMode, "expires_at": o.ExpiresAt})
		auditBestEffort(c, h.Audit.LogOverride(ctx, id.WorkspaceID, id.UserID, id.Role, c.ClientIP(), o.ID, o.Reason, string(meta)))
	}
	c.JSON(http.StatusCreated, o)
}

// ClearOverride removes all overrides for the caller's workspace.
// RBAC: owner or admin.
func (h Handlers) ClearOverride(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	if h.Resolver == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "overrides not configured"})
		return
	}
	ctx := c.Request.Context()
	if err := h.Resolver.ClearOverride(ctx, id.WorkspaceID); err != nil {
		abortStoreError(c, "override clear", err)
		return
	}
	if h.Audit != nil {
		auditBestEffort(c, h.Audit.LogOverride(ctx, id.WorkspaceID, id.UserID, id.Role, c.ClientIP(), "", "override cleared", ""))
	}
	c.Status(http.StatusNoContent)
}

// RoutingSummary aggregates recorded routing decisions. from and to are
// RFC3339 query parameters; the default window is the last 24 hours.
func (h Handlers) RoutingSummary(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	if h.Reports == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "reporting not configured"})
		return
	}
	to, ok := queryTime(c, "to", h.now())
	if !ok {
		return
	}
	from, ok := queryTime(c, "from", to.Add(-24*time.Hour))
	if !ok {
		return
	}

	out, err := h.Reports.RoutingSummary(c.Request.Context(), reporting.RoutingSummaryRequest{
		WorkspaceID: id.WorkspaceID,
		Range:       reporting.TimeRange{From: from, To: to},
	})
	if errors.Is(err, reporting.ErrInvalidRequest) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "from must be before to and the window at most 93 days"})
		return
	}
	if err != nil {
		abortStoreError(c, "routing summary", err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func queryTime(c *gin.Context, name string, def time.Time) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	v, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": name + " must be RFC3339"})
		return time.Time{}, false
	}
	return v, true
}

func (h Handlers) resolve(c *gin.Context, workspaceID string) (settings.Resolved, bool) {
	if h.Resolver == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "settings not configured"})
		return settings.Resolved{}, false
	}
	res, err := h.Resolver.Resolve(c.Request.Context(), workspaceID)
	if err != nil {
		abortStoreError(c, "settings lookup", err)
		return settings.Resolved{}, false
	}
	return res, true
}
