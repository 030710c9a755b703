package routing

import "fmt"

// Rule is one row of the routing decision table.
//
// Rules are evaluated top to bottom and the first whose Match returns true builds
// the decision. Build must set Destination; the engine fills in EffectiveMode and Rule.
type Rule struct {
	Name  string
	Match func(in RuleInput) bool
	Build func(in RuleInput) Decision
}

// RuleInput is everything a rule may look at. Mode is resolved once per decision.
type RuleInput struct {
	Settings Settings
	Call     CallState
	Mode     Mode
}

func (in RuleInput) inHoursFresh() bool  { return in.Mode == ModeInHours && !in.Call.IsVAMissedCall }
func (in RuleInput) inHoursMissed() bool { return in.Mode == ModeInHours && in.Call.IsVAMissedCall }

const catchAllRule = "direct-voicemail"

// DefaultRules returns the standard routing table in precedence order.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name: "busy-line",
			Match: func(in RuleInput) bool {
				return in.inHoursFresh() && in.Call.ActiveCallCount > 0 && in.Settings.BusyAgentConfigured()
			},
			Build: func(in RuleInput) Decision {
				return Decision{
					PlayWelcomeAudio: true,
					Destination:      DestinationBusyAgent,
					AgentContext:     AgentContextBusy,
					Reason:           fmt.Sprintf("line busy with %d active call(s), routing to busy agent", in.Call.ActiveCallCount),
				}
			},
		},
		{
			Name:  "voicemail-only",
			Match: func(in RuleInput) bool { return in.Mode == ModeVoicemailOnly },
			Build: func(RuleInput) Decision {
				return Decision{Destination: DestinationVoicemail, Reason: "voicemail-only mode"}
			},
		},
		{
			Name:  "out-of-hours",
			Match: func(in RuleInput) bool { return in.Mode == ModeOutOfHours },
			Build: func(in RuleInput) Decision {
				if in.Settings.ElevenLabsConfigured() {
					return Decision{
						Destination:  DestinationElevenLabs,
						AgentContext: AgentContextOutOfHours,
						Reason:       "out of hours, AI agent configured",
					}
				}
				return Decision{Destination: DestinationVoicemail, Reason: "out of hours, no AI agent configured"}
			},
		},
		{
			Name: "missed-busy-agent",
			Match: func(in RuleInput) bool {
				return in.inHoursMissed() && in.Settings.BusyAgentConfigured()
			},
			Build: func(RuleInput) Decision {
				return Decision{
					Destination:  DestinationBusyAgent,
					AgentContext: AgentContextBusy,
					Reason:       "VA missed call, routing to busy agent",
				}
			},
		},
		{
			Name: "missed-eleven-labs",
			Match: func(in RuleInput) bool {
				return in.inHoursMissed() && in.Settings.FallbackAction == FallbackElevenLabs && in.Settings.ElevenLabsConfigured()
			},
			Build: func(RuleInput) Decision {
				return Decision{
					Destination:  DestinationElevenLabs,
					AgentContext: AgentContextMissedCall,
					Reason:       "VA missed call, falling back to AI agent",
				}
			},
		},
		{
			Name: "missed-voicemail",
			Match: func(in RuleInput) bool {
				return in.inHoursMissed() && in.Settings.FallbackAction == FallbackVoicemail
			},
			Build: func(RuleInput) Decision {
				return Decision{Destination: DestinationVoicemail, Reason: "VA missed call, falling back to voicemail"}
			},
		},
		{
			Name:  "missed-hangup",
			Match: RuleInput.inHoursMissed,
			Build: func(in RuleInput) Decision {
				return Decision{
					Destination: DestinationHangup,
					Reason:      fmt.Sprintf("VA missed call, fallback %q ends the call", fallbackLabel(in.Settings.FallbackAction)),
				}
			},
		},
		{
			Name:  "va-forward",
			Match: func(in RuleInput) bool { return in.inHoursFresh() && in.Settings.CanForward() },
			Build: func(RuleInput) Decision {
				return Decision{
					PlayWelcomeAudio: true,
					AttemptVAForward: true,
					SendVASms:        true,
					Destination:      DestinationVAForward,
					Reason:           "in hours, forwarding to VA",
				}
			},
		},
		{
			Name: "direct-eleven-labs",
			Match: func(in RuleInput) bool {
				return in.inHoursFresh() && in.Settings.ElevenLabsConfigured() && in.Settings.FallbackAction == FallbackElevenLabs
			},
			Build: func(RuleInput) Decision {
				return Decision{
					PlayWelcomeAudio: true,
					Destination:      DestinationElevenLabs,
					AgentContext:     AgentContextInHours,
					Reason:           "in hours, forwarding disabled, direct to AI agent",
				}
			},
		},
		{
			Name:  catchAllRule,
			Match: func(RuleInput) bool { return true },
			Build: func(RuleInput) Decision {
				return Decision{
					PlayWelcomeAudio: true,
					Destination:      DestinationVoicemail,
					Reason:           "in hours, no forward or AI agent available, direct to voicemail",
				}
			},
		},
	}
}

func fallbackLabel(a FallbackAction) string {
	if a == "" {
		return string(FallbackNone)
	}
	return string(a)
}
