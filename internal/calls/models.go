package calls

import "strings"

// CallStatus is the lifecycle state reported by the provider's status callback.
type CallStatus string

const (
	CallStatusQueued     CallStatus = "queued"
	CallStatusRinging    CallStatus = "ringing"
	CallStatusInProgress CallStatus = "in_progress"
	CallStatusCompleted  CallStatus = "completed"
	CallStatusFailed     CallStatus = "failed"
	CallStatusNoAnswer   CallStatus = "no_answer"
	CallStatusBusy       CallStatus = "busy"
	CallStatusCanceled   CallStatus = "canceled"
)

// IsTerminal reports whether the call has ended and should release its line slot.
func (s CallStatus) IsTerminal() bool {
	switch s {
	case CallStatusCompleted, CallStatusFailed, CallStatusNoAnswer, CallStatusBusy, CallStatusCanceled:
		return true
	default:
		return false
	}
}

// ParseProviderStatus maps Twilio's hyphenated status values ("in-progress",
// "no-answer") onto CallStatus. Unknown values map to "".
func ParseProviderStatus(v string) CallStatus {
	s := CallStatus(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(v)), "-", "_"))
	switch s {
	case CallStatusQueued, CallStatusRinging, CallStatusInProgress, CallStatusCompleted,
		CallStatusFailed, CallStatusNoAnswer, CallStatusBusy, CallStatusCanceled:
		return s
	default:
		return ""
	}
}
