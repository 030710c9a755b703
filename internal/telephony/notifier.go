package telephony

import (
	"context"

	"phoneline/pkg/logger"
)

// VANotice tells the virtual assistant a caller is being forwarded to them.
type VANotice struct {
	WorkspaceID string
	VANumber    string
	Caller      string
	Line        string
	CallSID     string
}

// CallerFallback is the message sent to a caller nobody answered.
type CallerFallback struct {
	WorkspaceID string
	Channel     string
	To          string
	Body        string
	CallSID     string
}

// Notifier delivers SMS/WhatsApp messages. Delivery is owned by an external
// messaging service; implementations should return quickly.
type Notifier interface {
	NotifyVA(ctx context.Context, n VANotice) error
	SendCallerFallback(ctx context.Context, m CallerFallback) error
}

// LogNotifier records notifications in the structured log instead of sending them.
type LogNotifier struct{}

func (LogNotifier) NotifyVA(ctx context.Context, n VANotice) error {
	logger.From(ctx).Info("va notification",
		"workspace_id", n.WorkspaceID,
		"va_number", n.VANumber,
		"caller", n.Caller,
		"line", n.Line,
		"call_sid", n.CallSID,
	)
	return nil
}

func (LogNotifier) SendCallerFallback(ctx context.Context, m CallerFallback) error {
	logger.From(ctx).Info("caller fallback message",
		"workspace_id", m.WorkspaceID,
		"channel", m.Channel,
		"to", m.To,
		"call_sid", m.CallSID,
	)
	return nil
}
