package routing

import (
	"strconv"
	"strings"
	"time"
)

const (
	DefaultBusinessHoursStart = "08:00"
	DefaultBusinessHoursEnd   = "18:00"
)

// DefaultBusinessDays returns Monday to Friday.
func DefaultBusinessDays() []int { return []int{1, 2, 3, 4, 5} }

// IsWithinBusinessHours reports whether at falls inside the configured weekly window,
// evaluated in the engine's business timezone. The window is [start, end).
//
// Missing or malformed fields fall back to their defaults one at a time.
func (e *Engine) IsWithinBusinessHours(s Settings, at time.Time) bool {
	local := at.In(e.location())

	start, ok := parseClock(s.BusinessHoursStart)
	if !ok {
		start, _ = parseClock(DefaultBusinessHoursStart)
	}
	end, ok := parseClock(s.BusinessHoursEnd)
	if !ok {
		end, _ = parseClock(DefaultBusinessHoursEnd)
	}

	if !activeDays(s.BusinessDays)[isoWeekday(local.Weekday())] {
		return false
	}
	minute := local.Hour()*60 + local.Minute()
	return minute >= start && minute < end
}

// EffectiveMode resolves the operating mode. Forced modes ignore the clock.
func (e *Engine) EffectiveMode(s Settings, at time.Time) Mode {
	switch s.AgentMode {
	case AgentModeVoicemailOnly:
		return ModeVoicemailOnly
	case AgentModeForceInHours:
		return ModeInHours
	case AgentModeForceOutOfHours:
		return ModeOutOfHours
	}
	if e.IsWithinBusinessHours(s, at) {
		return ModeInHours
	}
	return ModeOutOfHours
}

// parseClock turns "HH:MM" into minutes since midnight. It accepts exactly
// what ValidateBusinessHours accepts, after trimming spaces.
func parseClock(v string) (int, bool) {
	v = strings.TrimSpace(v)
	if !clockPattern.MatchString(v) {
		return 0, false
	}
	hour, _ := strconv.Atoi(v[:2])
	minute, _ := strconv.Atoi(v[3:])
	return hour*60 + minute, true
}

func activeDays(days []int) map[int]bool {
	set := make(map[int]bool, 7)
	for _, d := range days {
		if validDay(d) {
			set[d] = true
		}
	}
	if len(set) == 0 {
		for _, d := range DefaultBusinessDays() {
			set[d] = true
		}
	}
	return set
}

// isoWeekday maps time.Weekday (Sunday=0) to 1=Monday ... 7=Sunday.
func isoWeekday(d time.Weekday) int {
	if d == time.Sunday {
		return 7
	}
	return int(d)
}

func validDay(d int) bool { return d >= 1 && d <= 7 }
