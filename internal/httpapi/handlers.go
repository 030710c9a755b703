package httpapi

import (
	"errors"
	"net/http"
	"time"

	"phoneline/internal/audit"
	"phoneline/internal/auth"
	"phoneline/internal/rbac"
	"phoneline/internal/reporting"
	"phoneline/internal/routing"
	"phoneline/internal/settings"
	"phoneline/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handlers groups the admin API handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Auth     *auth.Manager
	Settings settings.Store
	Resolver *settings.Resolver
	Engine   *routing.Engine
	Audit    *audit.Service
	Reports  *reporting.Service
	Now      func() time.Time
}

func (h Handlers) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h Handlers) engine() *routing.Engine {
	if h.Engine != nil {
		return h.Engine
	}
	return routing.NewEngine()
}

// identity returns the caller or aborts with 401.
func identity(c *gin.Context) (auth.Identity, bool) {
	id, err := auth.IdentityFrom(c.Request.Context())
	if err != nil || id.WorkspaceID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "workspace_id required"})
		return auth.Identity{}, false
	}
	return id, true
}

func abortStoreError(c *gin.Context, op string, err error) {
	if errors.Is(err, settings.ErrInvalidArgument) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid argument"})
		return
	}
	logger.FromGin(c).Error(op+" failed", "err", err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": op + " failed"})
}

// auditBestEffort logs but never fails the request on audit errors.
func auditBestEffort(c *gin.Context, err error) {
	if err != nil {
		logger.FromGin(c).Warn("audit append failed", "err", err)
	}
}

// Me returns the authenticated identity.
func (h Handlers) Me(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": id.UserID, "workspace_id": id.WorkspaceID, "role": id.Role})
}

// Convenience middleware bundles.

func RequireWorkspaceAndAnyRole(roles ...string) []gin.HandlerFunc {
	return []gin.HandlerFunc{rbac.RequireWorkspace(), rbac.RequireAnyRole(roles...)}
}
