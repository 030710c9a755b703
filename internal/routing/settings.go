package routing

import (
	"strings"
	"time"
)

// Settings is the per-workspace routing configuration.
//
// It is a plain value supplied fresh on every call by the settings source.
// The engine never stores, caches or mutates it.
type Settings struct {
	AgentMode AgentMode `json:"agent_mode"`

	ForwardEnabled bool   `json:"forward_enabled"`
	ForwardNumber  string `json:"forward_number,omitempty"`

	FallbackAction FallbackAction `json:"fallback_action"`

	// BusinessHoursStart and BusinessHoursEnd are "HH:MM" civil times in the business timezone.
	BusinessHoursStart string `json:"business_hours_start,omitempty"`
	BusinessHoursEnd   string `json:"business_hours_end,omitempty"`
	// BusinessDays uses 1=Monday ... 7=Sunday.
	BusinessDays []int `json:"business_days,omitempty"`

	ElevenLabsAgentID     string `json:"eleven_labs_agent_id,omitempty"`
	ElevenLabsAPIKey      string `json:"eleven_labs_api_key,omitempty"`
	ElevenLabsBusyAgentID string `json:"eleven_labs_busy_agent_id,omitempty"`

	// Agent opening lines. Blank means the built-in default.
	InHoursMessage    string `json:"in_hours_message,omitempty"`
	OutOfHoursMessage string `json:"out_of_hours_message,omitempty"`
	MissedCallMessage string `json:"missed_call_message,omitempty"`

	WelcomeAudioURL  string `json:"welcome_audio_url,omitempty"`
	VoicemailMessage string `json:"voicemail_message,omitempty"`
}

type AgentMode string

const (
	AgentModeAuto            AgentMode = "auto"
	AgentModeForceInHours    AgentMode = "force-in-hours"
	AgentModeForceOutOfHours AgentMode = "force-out-of-hours"
	AgentModeVoicemailOnly   AgentMode = "voicemail-only"
)

// Valid reports whether m is one of the known modes.
func (m AgentMode) Valid() bool {
	switch m {
	case AgentModeAuto, AgentModeForceInHours, AgentModeForceOutOfHours, AgentModeVoicemailOnly:
		return true
	default:
		return false
	}
}

type FallbackAction string

const (
	FallbackElevenLabs FallbackAction = "eleven-labs"
	FallbackVoicemail  FallbackAction = "voicemail"
	FallbackWhatsApp   FallbackAction = "whatsapp"
	FallbackNone       FallbackAction = "none"
)

func (a FallbackAction) Valid() bool {
	switch a {
	case FallbackElevenLabs, FallbackVoicemail, FallbackWhatsApp, FallbackNone:
		return true
	default:
		return false
	}
}

// ElevenLabsConfigured reports whether the default AI agent can be used.
func (s Settings) ElevenLabsConfigured() bool {
	return strings.TrimSpace(s.ElevenLabsAgentID) != "" && strings.TrimSpace(s.ElevenLabsAPIKey) != ""
}

// BusyAgentConfigured reports whether the secondary busy-line agent can be used.
func (s Settings) BusyAgentConfigured() bool {
	return strings.TrimSpace(s.ElevenLabsBusyAgentID) != ""
}

// CanForward reports whether a fresh in-hours call should ring the VA.
func (s Settings) CanForward() bool {
	return s.ForwardEnabled && strings.TrimSpace(s.ForwardNumber) != ""
}

// DefaultSettings mirrors what a freshly provisioned workspace gets.
func DefaultSettings() Settings {
	return Settings{
		AgentMode:          AgentModeAuto,
		ForwardEnabled:     true,
		FallbackAction:     FallbackElevenLabs,
		BusinessHoursStart: DefaultBusinessHoursStart,
		BusinessHoursEnd:   DefaultBusinessHoursEnd,
		BusinessDays:       DefaultBusinessDays(),
	}
}

// CallState is the per-invocation call snapshot.
type CallState struct {
	IsVAMissedCall bool

	// ActiveCallCount is supplied by the live-call tracker. Negative values are treated as zero.
	ActiveCallCount int

	// At overrides the evaluation instant. Zero means now.
	At time.Time
}
