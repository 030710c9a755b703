package routing

import (
	"time"
	_ "time/tzdata" // business timezone must not depend on host zoneinfo
)

// DefaultTimezone is the civil timezone business hours are expressed in.
const DefaultTimezone = "Europe/London"

// Engine decides what to do with an inbound call event.
//
// Decide is pure: no I/O, no side effects, no state mutated after construction.
// A single Engine is safe for concurrent use.
type Engine struct {
	loc   *time.Location
	now   func() time.Time
	rules []Rule
}

type Option func(*Engine)

// WithLocation sets the business timezone. A nil location is ignored.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// WithClock replaces the wall clock used when CallState.At is zero.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithRules inserts extra rules ahead of the catch-all voicemail rule.
func WithRules(extra ...Rule) Option {
	return func(e *Engine) {
		n := len(e.rules)
		if n == 0 || e.rules[n-1].Name != catchAllRule {
			e.rules = append(e.rules, extra...)
			return
		}
		last := e.rules[n-1]
		e.rules = append(append(e.rules[:n-1:n-1], extra...), last)
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		loc:   defaultLocation(),
		now:   time.Now,
		rules: DefaultRules(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// LoadLocation resolves a timezone name, falling back to the default business timezone.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return defaultLocation(), nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return defaultLocation(), err
	}
	return loc, nil
}

func defaultLocation() *time.Location {
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (e *Engine) location() *time.Location {
	if e.loc == nil {
		return defaultLocation()
	}
	return e.loc
}

// Location returns the business timezone.
func (e *Engine) Location() *time.Location { return e.location() }

// Rules returns a copy of the decision table in evaluation order.
func (e *Engine) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// Decide runs the rule table for one call event. The clock is sampled at most once.
func (e *Engine) Decide(s Settings, call CallState) Decision {
	if call.At.IsZero() {
		now := e.now
		if now == nil {
			now = time.Now
		}
		call.At = now()
	}
	if call.ActiveCallCount < 0 {
		call.ActiveCallCount = 0
	}

	in := RuleInput{Settings: s, Call: call, Mode: e.EffectiveMode(s, call.At)}
	for _, r := range e.rules {
		if r.Match == nil || r.Build == nil || !r.Match(in) {
			continue
		}
		return finalize(r.Build(in), r.Name, in.Mode)
	}

	// Only reachable when the table has no catch-all rule.
	return finalize(Decision{Destination: DestinationVoicemail, Reason: "no rule matched"}, "fallback", in.Mode)
}

func finalize(d Decision, rule string, mode Mode) Decision {
	d.Rule = rule
	d.EffectiveMode = mode
	switch d.Destination {
	case DestinationVAForward, DestinationElevenLabs, DestinationBusyAgent, DestinationVoicemail, DestinationHangup:
	default:
		d.Destination = DestinationVoicemail
	}
	// Agent destinations always carry a context.
	switch {
	case !d.Destination.UsesAgent():
		d.AgentContext = AgentContextNone
	case d.AgentContext != AgentContextNone:
	case d.Destination == DestinationBusyAgent:
		d.AgentContext = AgentContextBusy
	default:
		d.Destination = DestinationVoicemail
	}
	return d
}
