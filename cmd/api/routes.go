package main

import (
	"log/slog"

	"phoneline/internal/auth"
	"phoneline/internal/httpapi"
	"phoneline/internal/rbac"
	"phoneline/internal/telephony"
	"phoneline/pkg/utils"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, a app) {
	r.GET("/healthz", utils.ReadinessHandler(func(name string, err error) {
		slog.Warn("health check failed", "dependency", name, "err", err)
	}, a.checks...))

	// Twilio webhooks. Unauthenticated, so signed and rate limited instead.
	hooks := r.Group("/")
	if a.cfg.Line.WebhookRateLimit > 0 {
		hooks.Use(utils.NewIPRateLimiter(a.cfg.Line.WebhookRateLimit, a.cfg.Line.WebhookBurst).Middleware())
	}
	if a.cfg.Twilio.AuthToken != "" {
		hooks.Use(telephony.RequireTwilioSignature(a.cfg.Twilio.AuthToken, a.cfg.Line.PublicBaseURL))
	} else {
		slog.Warn("TWILIO_AUTH_TOKEN not set, webhook signatures are not verified")
	}
	{
		h := telephony.TwilioWebhookHandler{
			Engine:   a.engine,
			Settings: a.resolver,
			Lines:    a.lines,
			Tracker:  a.tracker,
			Audit:    a.audit,
			Notifier: telephony.LogNotifier{},
			Options: telephony.Options{
				PublicBaseURL: a.cfg.Line.PublicBaseURL,
				StreamURL:     a.cfg.Line.ElevenLabsStreamURL,
				DialTimeout:   a.cfg.Line.DialTimeout,
			},
		}
		hooks.POST(telephony.PathVoice, h.HandleVoice)
		hooks.POST(telephony.PathVAMissed, h.HandleVAMissed)
		hooks.POST(telephony.PathStatus, h.HandleStatus)
		hooks.POST(telephony.PathRecorded, h.HandleRecorded)
	}

	v1 := r.Group("/v1")
	v1.Use(auth.RequireAccessToken(a.auth))
	{
		h := httpapi.Handlers{
			Auth:     a.auth,
			Settings: a.store,
			Resolver: a.resolver,
			Engine:   a.engine,
			Audit:    a.audit,
			Reports:  a.reports,
		}
		readers := httpapi.RequireWorkspaceAndAnyRole(rbac.SettingsReaders...)
		editors := httpapi.RequireWorkspaceAndAnyRole(rbac.SettingsEditors...)

		v1.GET("/me", h.Me)

		s := v1.Group("/settings")
		s.GET("/routing", append(readers, h.GetRoutingSettings)...)
		s.PUT("/routing", append(editors, h.PutRoutingSettings)...)

		rt := v1.Group("/routing")
		rt.POST("/preview", append(readers, h.PreviewRouting)...)
		rt.GET("/status", append(readers, h.RoutingStatus)...)
		rt.GET("/summary", append(readers, h.RoutingSummary)...)
		rt.POST("/override", append(editors, h.SetOverride)...)
		rt.DELETE("/override", append(editors, h.ClearOverride)...)
	}
}
