package telephony

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"phoneline/internal/calls"
	"phoneline/internal/routing"
	"phoneline/internal/settings"
	"phoneline/pkg/logger"

	"github.com/gin-gonic/gin"
)

const (
	PathVoice    = "/webhooks/twilio/voice"
	PathVAMissed = "/webhooks/twilio/va-missed"
	PathStatus   = "/webhooks/twilio/status"
	PathRecorded = "/webhooks/twilio/recorded"
)

// SettingsResolver yields the per-call settings snapshot for a workspace.
type SettingsResolver interface {
	Resolve(ctx context.Context, workspaceID string) (settings.Resolved, error)
}

// DecisionRecorder persists routing decisions. audit.Service satisfies it.
type DecisionRecorder interface {
	LogRoutingDecision(ctx context.Context, workspaceID, callSID string, d routing.Decision, vaMissedCall bool) error
}

type Options struct {
	// PublicBaseURL prefixes callback URLs in TwiML. Empty means relative URLs.
	PublicBaseURL string
	StreamURL     string
	DialTimeout   time.Duration
}

// TwilioWebhookHandler converts Twilio webhooks to engine inputs, performs the
// side effects a decision asks for and writes TwiML.
//
// Routing logic lives in internal/routing. Webhooks fail safe: when settings or
// the tracker are unavailable the call is still routed, with zero-value settings
// and an active count of 0, which lands on voicemail.
type TwilioWebhookHandler struct {
	Engine   *routing.Engine
	Settings SettingsResolver
	Lines    settings.LineDirectory
	Tracker  calls.Tracker
	Audit    DecisionRecorder
	Notifier Notifier
	Options  Options
}

// HandleVoice answers the initial ring on a business line.
func (h TwilioWebhookHandler) HandleVoice(c *gin.Context) {
	form, ok := h.parse(c)
	if !ok {
		return
	}
	log := logger.FromGin(c).With("call_sid", form.CallSid, "line", form.To)
	ctx := logger.With(c.Request.Context(), log)

	ws, s := h.load(ctx, log, form.To)

	active := 0
	if h.Tracker != nil {
		n, err := h.Tracker.ActiveCount(ctx, form.To)
		if err != nil {
			log.Warn("active call count failed", "err", err)
		} else {
			active = n
		}
	}

	d := h.engine().Decide(s, routing.CallState{ActiveCallCount: active})
	h.record(ctx, log, ws, form.CallSid, d, false)

	// Only calls ringing the VA occupy the forwarding line.
	if d.AttemptVAForward && h.Tracker != nil && form.CallSid != "" {
		if err := h.Tracker.Start(ctx, form.To, form.CallSid); err != nil {
			log.Warn("call tracking failed", "err", err)
		}
	}

	if d.SendVASms && h.Notifier != nil {
		err := h.Notifier.NotifyVA(ctx, VANotice{
			WorkspaceID: ws,
			VANumber:    strings.TrimSpace(s.ForwardNumber),
			Caller:      form.From,
			Line:        form.To,
			CallSID:     form.CallSid,
		})
		if err != nil {
			log.Warn("va notification failed", "err", err)
		}
	}

	h.respond(c, log, d, s, form)
}

// HandleVAMissed is the <Dial> action callback for the VA forward leg.
func (h TwilioWebhookHandler) HandleVAMissed(c *gin.Context) {
	form, ok := h.parse(c)
	if !ok {
		return
	}
	log := logger.FromGin(c).With("call_sid", form.CallSid, "line", form.To)
	ctx := logger.With(c.Request.Context(), log)

	// The VA leg is over whether it was answered or not.
	h.release(ctx, log, form)

	if form.ForwardAnswered() {
		log.Info("forwarded call answered", "dial_call_status", form.DialCallStatus)
		c.Data(http.StatusOK, "application/xml", []byte(HangupTwiML()))
		return
	}

	ws, s := h.load(ctx, log, form.To)
	d := h.engine().Decide(s, routing.CallState{IsVAMissedCall: true})
	h.record(ctx, log, ws, form.CallSid, d, true)

	if d.Destination == routing.DestinationHangup && s.FallbackAction == routing.FallbackWhatsApp && h.Notifier != nil {
		err := h.Notifier.SendCallerFallback(ctx, CallerFallback{
			WorkspaceID: ws,
			Channel:     string(routing.FallbackWhatsApp),
			To:          form.From,
			Body:        routing.ContextMessage(routing.AgentContextMissedCall, s),
			CallSID:     form.CallSid,
		})
		if err != nil {
			log.Warn("caller fallback message failed", "err", err)
		}
	}

	h.respond(c, log, d, s, form)
}

// HandleStatus releases the line slot once Twilio reports the call has ended.
func (h TwilioWebhookHandler) HandleStatus(c *gin.Context) {
	form, ok := h.parse(c)
	if !ok {
		return
	}
	if calls.ParseProviderStatus(form.CallStatus).IsTerminal() {
		h.release(c.Request.Context(), logger.FromGin(c).With("call_sid", form.CallSid), form)
	}
	c.Status(http.StatusNoContent)
}

func (h TwilioWebhookHandler) release(ctx context.Context, log *slog.Logger, form TwilioVoiceForm) {
	if h.Tracker == nil || form.CallSid == "" || form.To == "" {
		return
	}
	if err := h.Tracker.End(ctx, form.To, form.CallSid); err != nil {
		log.Warn("call release failed", "err", err)
	}
}

// HandleRecorded is the <Record> action callback; the voicemail is stored by Twilio.
func (h TwilioWebhookHandler) HandleRecorded(c *gin.Context) {
	form, ok := h.parse(c)
	if !ok {
		return
	}
	logger.FromGin(c).Info("voicemail recorded", "call_sid", form.CallSid, "line", form.To, "recording_url", form.RecordingURL)
	c.Data(http.StatusOK, "application/xml", []byte(HangupTwiML()))
}

func (h TwilioWebhookHandler) parse(c *gin.Context) (TwilioVoiceForm, bool) {
	form, err := ParseTwilioVoiceWebhook(c.Request)
	if err != nil {
		logger.FromGin(c).Warn("twilio webhook parse failed", "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid form"})
		return TwilioVoiceForm{}, false
	}
	return form, true
}

func (h TwilioWebhookHandler) engine() *routing.Engine {
	if h.Engine != nil {
		return h.Engine
	}
	return routing.NewEngine()
}

// load resolves the owning workspace and its settings. Any failure yields
// zero-value settings; ws is empty when the line is unknown.
func (h TwilioWebhookHandler) load(ctx context.Context, log *slog.Logger, line string) (string, routing.Settings) {
	if h.Lines == nil || h.Settings == nil {
		log.Error("webhook settings source not configured")
		return "", routing.Settings{}
	}
	ws, err := h.Lines.WorkspaceForNumber(ctx, line)
	if err != nil {
		log.Warn("workspace resolution failed", "err", err)
		return "", routing.Settings{}
	}
	res, err := h.Settings.Resolve(ctx, ws)
	if err != nil {
		log.Warn("settings load failed", "workspace_id", ws, "err", err)
		return ws, routing.Settings{}
	}
	if res.Override != nil {
		log.Debug("mode override active", "workspace_id", ws, "override_id", res.Override.ID)
	}
	return ws, res.Settings
}

func (h TwilioWebhookHandler) record(ctx context.Context, log *slog.Logger, ws, callSID string, d routing.Decision, missed bool) {
	log.Info("routing decision",
		"workspace_id", ws,
		"rule", d.Rule,
		"destination", d.Destination,
		"agent_context", d.AgentContext,
		"effective_mode", d.EffectiveMode,
		"missed", missed,
	)
	if h.Audit == nil || ws == "" {
		return
	}
	if err := h.Audit.LogRoutingDecision(ctx, ws, callSID, d, missed); err != nil {
		log.Warn("routing decision audit failed", "err", err)
	}
}

func (h TwilioWebhookHandler) respond(c *gin.Context, log *slog.Logger, d routing.Decision, s routing.Settings, form TwilioVoiceForm) {
	opts := h.renderOptions(form)
	out, err := RenderTwiML(d, s, opts)
	if err != nil {
		log.Error("twiml render failed, using voicemail", "destination", d.Destination, "err", err)
		d.Destination = routing.DestinationVoicemail
		d.AgentContext = routing.AgentContextNone
		if out, err = RenderTwiML(d, s, opts); err != nil {
			out = HangupTwiML()
		}
	}
	c.Data(http.StatusOK, "application/xml", []byte(out))
}

func (h TwilioWebhookHandler) renderOptions(form TwilioVoiceForm) RenderOptions {
	base := strings.TrimRight(h.Options.PublicBaseURL, "/")
	return RenderOptions{
		MissedCallURL: base + PathVAMissed,
		RecordingURL:  base + PathRecorded,
		DialTimeout:   h.Options.DialTimeout,
		StreamURL:     h.Options.StreamURL,
		CallSID:       form.CallSid,
		Caller:        form.From,
	}
}
