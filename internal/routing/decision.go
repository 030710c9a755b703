package routing

// Decision is the provider-agnostic output of the routing engine.
//
// It carries only what the telephony orchestrator needs to act on the call.
// No provider identity and no provider-specific fields belong here.
type Decision struct {
	PlayWelcomeAudio bool `json:"play_welcome_audio"`
	AttemptVAForward bool `json:"attempt_va_forward"`
	SendVASms        bool `json:"send_va_sms"`

	Destination   Destination  `json:"destination"`
	AgentContext  AgentContext `json:"eleven_labs_context,omitempty"`
	EffectiveMode Mode         `json:"effective_mode"`

	// Rule names the table entry that produced the decision.
	Rule string `json:"rule"`
	// Reason is for internal logs only. Nothing branches on it.
	Reason string `json:"reason"`
}

type Destination string

const (
	DestinationVAForward  Destination = "va-forward"
	DestinationElevenLabs Destination = "eleven-labs"
	DestinationBusyAgent  Destination = "busy-agent"
	DestinationVoicemail  Destination = "voicemail"
	DestinationHangup     Destination = "hangup"
)

// UsesAgent reports whether the destination hands the caller to an AI agent.
func (d Destination) UsesAgent() bool {
	return d == DestinationElevenLabs || d == DestinationBusyAgent
}

// AgentContext tags the script an AI agent should open with.
// The empty value means no agent is involved.
type AgentContext string

const (
	AgentContextNone       AgentContext = ""
	AgentContextInHours    AgentContext = "in-hours"
	AgentContextOutOfHours AgentContext = "out-of-hours"
	AgentContextMissedCall AgentContext = "missed-call"
	AgentContextBusy       AgentContext = "busy"
)

// Mode is the effective operating mode after overrides are applied.
type Mode string

const (
	ModeInHours       Mode = "in-hours"
	ModeOutOfHours    Mode = "out-of-hours"
	ModeVoicemailOnly Mode = "voicemail-only"
)
