package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"sort"
	"strings"

	"phoneline/internal/routing"
	"phoneline/internal/settings"

	"github.com/gin-gonic/gin"
)

// settingsView is the API representation of routing settings. The ElevenLabs
// API key is write-only.
type settingsView struct {
	WorkspaceID  string           `json:"workspace_id"`
	Settings     routing.Settings `json:"settings"`
	APIKeySet    bool             `json:"eleven_labs_api_key_set"`
	BusinessDays string           `json:"business_days_label"`
	Defaulted    bool             `json:"defaulted"`
}

func newSettingsView(workspaceID string, s routing.Settings, defaulted bool) settingsView {
	v := settingsView{
		WorkspaceID:  workspaceID,
		APIKeySet:    strings.TrimSpace(s.ElevenLabsAPIKey) != "",
		BusinessDays: routing.DayNames(s.BusinessDays),
		Defaulted:    defaulted,
	}
	s.ElevenLabsAPIKey = ""
	v.Settings = s
	return v
}

// GetRoutingSettings returns the stored settings, or the defaults when the
// workspace has never saved any.
func (h Handlers) GetRoutingSettings(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	if h.Settings == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "settings not configured"})
		return
	}
	s, err := h.Settings.Get(c.Request.Context(), id.WorkspaceID)
	defaulted := false
	switch {
	case errors.Is(err, settings.ErrNotFound):
		s, defaulted = routing.DefaultSettings(), true
	case err != nil:
		abortStoreError(c, "settings lookup", err)
		return
	}
	c.JSON(http.StatusOK, newSettingsView(id.WorkspaceID, s, defaulted))
}

// PutRoutingSettings replaces the workspace's routing settings.
// RBAC: owner or admin. A blank API key keeps the stored one.
func (h Handlers) PutRoutingSettings(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	if h.Settings == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "settings not configured"})
		return
	}
	var next routing.Settings
	if err := c.ShouldBindJSON(&next); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	normalizeSettings(&next)
	if msg := validateSettings(next); msg != "" {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": msg})
		return
	}
	slices.Sort(next.BusinessDays)
	next.BusinessDays = slices.Compact(next.BusinessDays)

	ctx := c.Request.Context()
	prev, err := h.Settings.Get(ctx, id.WorkspaceID)
	switch {
	case errors.Is(err, settings.ErrNotFound):
		prev = routing.Settings{}
	case err != nil:
		abortStoreError(c, "settings lookup", err)
		return
	}
	if strings.TrimSpace(next.ElevenLabsAPIKey) == "" {
		next.ElevenLabsAPIKey = prev.ElevenLabsAPIKey
	}

	if err := h.Settings.Put(ctx, id.WorkspaceID, next); err != nil {
		abortStoreError(c, "settings update", err)
		return
	}

	if h.Audit != nil {
		meta, _ := json.Marshal(gin.H{"changed": changedKeys(prev, next)})
		auditBestEffort(c, h.Audit.LogSettingsUpdated(ctx, id.WorkspaceID, id.UserID, id.Role, c.ClientIP(), string(meta)))
	}

	c.JSON(http.StatusOK, newSettingsView(id.WorkspaceID, next, false))
}

func normalizeSettings(s *routing.Settings) {
	s.BusinessHoursStart = strings.TrimSpace(s.BusinessHoursStart)
	s.BusinessHoursEnd = strings.TrimSpace(s.BusinessHoursEnd)
	s.ForwardNumber = strings.TrimSpace(s.ForwardNumber)
	if s.AgentMode == "" {
		s.AgentMode = routing.AgentModeAuto
	}
	if s.FallbackAction == "" {
		s.FallbackAction = routing.FallbackElevenLabs
	}
}

// validateSettings returns a user-facing error message, or "" when valid.
func validateSettings(s routing.Settings) string {
	if !s.AgentMode.Valid() {
		return "Agent mode must be one of auto, force-in-hours, force-out-of-hours, voicemail-only"
	}
	if !s.FallbackAction.Valid() {
		return "Fallback action must be one of eleven-labs, voicemail, whatsapp, none"
	}
	if res := routing.ValidateBusinessHours(s.BusinessHoursStart, s.BusinessHoursEnd, s.BusinessDays); !res.IsValid {
		return res.Error
	}
	if s.ForwardEnabled && s.ForwardNumber == "" {
		return "Forward number is required when forwarding is enabled"
	}
	return ""
}

// changedKeys lists the settings keys whose stored value differs. Values are
// never included so secrets stay out of the audit log.
func changedKeys(prev, next routing.Settings) []string {
	a, b := settings.ToKV(prev), settings.ToKV(next)
	var out []string
	for k, v := range b {
		if a[k] != v {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
