package settings

import (
	"strconv"
	"strings"

	"phoneline/internal/routing"
)

// Keys in the workspace_settings table.
const (
	KeyAgentMode             = "agent_mode"
	KeyForwardEnabled        = "forward_enabled"
	KeyForwardNumber         = "forward_number"
	KeyFallbackAction        = "fallback_action"
	KeyBusinessHoursStart    = "business_hours_start"
	KeyBusinessHoursEnd      = "business_hours_end"
	KeyBusinessDays          = "business_days"
	KeyElevenLabsAgentID     = "eleven_labs_agent_id"
	KeyElevenLabsAPIKey      = "eleven_labs_api_key"
	KeyElevenLabsBusyAgentID = "eleven_labs_busy_agent_id"
	KeyInHoursMessage        = "in_hours_message"
	KeyOutOfHoursMessage     = "out_of_hours_message"
	KeyMissedCallMessage     = "missed_call_message"
	KeyWelcomeAudioURL       = "welcome_audio_url"
	KeyVoicemailMessage      = "voicemail_message"
)

// ToKV flattens settings into key-value rows.
func ToKV(s routing.Settings) map[string]string {
	return map[string]string{
		KeyAgentMode:             string(s.AgentMode),
		KeyForwardEnabled:        strconv.FormatBool(s.ForwardEnabled),
		KeyForwardNumber:         s.ForwardNumber,
		KeyFallbackAction:        string(s.FallbackAction),
		KeyBusinessHoursStart:    s.BusinessHoursStart,
		KeyBusinessHoursEnd:      s.BusinessHoursEnd,
		KeyBusinessDays:          routing.FormatBusinessDays(s.BusinessDays),
		KeyElevenLabsAgentID:     s.ElevenLabsAgentID,
		KeyElevenLabsAPIKey:      s.ElevenLabsAPIKey,
		KeyElevenLabsBusyAgentID: s.ElevenLabsBusyAgentID,
		KeyInHoursMessage:        s.InHoursMessage,
		KeyOutOfHoursMessage:     s.OutOfHoursMessage,
		KeyMissedCallMessage:     s.MissedCallMessage,
		KeyWelcomeAudioURL:       s.WelcomeAudioURL,
		KeyVoicemailMessage:      s.VoicemailMessage,
	}
}

// FromKV rebuilds settings from key-value rows. Unknown keys are ignored and
// unparsable values are left for the engine's defaults to cover.
func FromKV(kv map[string]string) routing.Settings {
	get := func(k string) string { return strings.TrimSpace(kv[k]) }

	s := routing.Settings{
		AgentMode:             routing.AgentMode(get(KeyAgentMode)),
		ForwardNumber:         get(KeyForwardNumber),
		FallbackAction:        routing.FallbackAction(get(KeyFallbackAction)),
		BusinessHoursStart:    get(KeyBusinessHoursStart),
		BusinessHoursEnd:      get(KeyBusinessHoursEnd),
		ElevenLabsAgentID:     get(KeyElevenLabsAgentID),
		ElevenLabsAPIKey:      get(KeyElevenLabsAPIKey),
		ElevenLabsBusyAgentID: get(KeyElevenLabsBusyAgentID),
		InHoursMessage:        kv[KeyInHoursMessage],
		OutOfHoursMessage:     kv[KeyOutOfHoursMessage],
		MissedCallMessage:     kv[KeyMissedCallMessage],
		WelcomeAudioURL:       get(KeyWelcomeAudioURL),
		VoicemailMessage:      kv[KeyVoicemailMessage],
	}
	if s.AgentMode == "" {
		s.AgentMode = routing.AgentModeAuto
	}
	if b, err := strconv.ParseBool(get(KeyForwardEnabled)); err == nil {
		s.ForwardEnabled = b
	}
	if v, ok := kv[KeyBusinessDays]; ok {
		s.BusinessDays = routing.ParseBusinessDays(v)
	}
	return s
}
