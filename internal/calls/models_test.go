package calls

import "testing"

func TestCallStatus_IsTerminal(t *testing.T) {
	terminal := []CallStatus{CallStatusCompleted, CallStatusFailed, CallStatusNoAnswer, CallStatusBusy, CallStatusCanceled}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Fatalf("expected %q to be terminal", s)
		}
	}
	for _, s := range []CallStatus{CallStatusQueued, CallStatusRinging, CallStatusInProgress, ""} {
		if s.IsTerminal() {
			t.Fatalf("expected %q to be non-terminal", s)
		}
	}
}

func TestParseProviderStatus(t *testing.T) {
	cases := map[string]CallStatus{
		"in-progress": CallStatusInProgress,
		"no-answer":   CallStatusNoAnswer,
		" Completed ": CallStatusCompleted,
		"canceled":    CallStatusCanceled,
		"answered":    "",
		"":            "",
	}
	for in, want := range cases {
		if got := ParseProviderStatus(in); got != want {
			t.Fatalf("ParseProviderStatus(%q)=%q want %q", in, got, want)
		}
	}
}
