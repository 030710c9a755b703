package routing

import "strings"

const (
	DefaultInHoursMessage    = "Hi, thanks for calling. Our team can't get to the phone right now, but I can take your details and help with your enquiry."
	DefaultOutOfHoursMessage = "Hi, thanks for calling. We're closed at the moment, but I can take your details and someone will get back to you during business hours."
	DefaultMissedCallMessage = "Sorry we missed you. Our team is tied up right now, but I can take your details and arrange a call back."
	DefaultVoicemailMessage  = "Thanks for calling. Please leave your name, number and a short message after the tone and we'll get back to you."
)

// ContextMessage returns the opening line for an AI agent in the given context.
// Busy and empty contexts have no message here; the busy agent owns its own script.
func ContextMessage(ctx AgentContext, s Settings) string {
	switch ctx {
	case AgentContextInHours:
		return orDefault(s.InHoursMessage, DefaultInHoursMessage)
	case AgentContextOutOfHours:
		return orDefault(s.OutOfHoursMessage, DefaultOutOfHoursMessage)
	case AgentContextMissedCall:
		return orDefault(s.MissedCallMessage, DefaultMissedCallMessage)
	default:
		return ""
	}
}

// VoicemailMessage returns the prompt played before recording.
func VoicemailMessage(s Settings) string {
	return orDefault(s.VoicemailMessage, DefaultVoicemailMessage)
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
