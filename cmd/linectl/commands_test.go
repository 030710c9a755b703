package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"phoneline/internal/routing"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestValidate(t *testing.T) {
	out, err := run(t, "validate", "--start", "09:00", "--end", "17:00", "--days", "1,2,3")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	var res routing.ValidationResult
	if err := json.Unmarshal([]byte(out), &res); err != nil || !res.IsValid {
		t.Fatalf("unexpected output %q (%v)", out, err)
	}

	out, err = run(t, "validate", "--start", "09:00", "--end", "17:00", "--days", "1,9")
	if !errors.Is(err, errInvalidHours) {
		t.Fatalf("expected invalid hours error, got %v", err)
	}
	if !strings.Contains(out, "Business days must be between") {
		t.Fatalf("expected reason in output, got %q", out)
	}

	if _, err := run(t, "validate", "--days", "mon"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestDays(t *testing.T) {
	out, err := run(t, "days", "format", "5", "1", "3")
	if err != nil || strings.TrimSpace(out) != "1,3,5" {
		t.Fatalf("format: %q %v", out, err)
	}

	out, err = run(t, "days", "parse", "3, 1,x,8")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var days []int
	if err := json.Unmarshal([]byte(out), &days); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if routing.FormatBusinessDays(days) != "1,3" {
		t.Fatalf("unexpected days: %v", days)
	}

	out, err = run(t, "days", "names", "6,7")
	if err != nil || strings.TrimSpace(out) != "Saturday, Sunday" {
		t.Fatalf("names: %q %v", out, err)
	}
}

func TestPreview(t *testing.T) {
	// Monday 15 January 2024 10:00 GMT.
	out, err := run(t, "preview", "--at", "2024-01-15T10:00:00Z", "--forward", "+447700900123")
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	var got previewOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Decision.Destination != routing.DestinationVAForward || got.Decision.Rule != "va-forward" {
		t.Fatalf("unexpected decision: %+v", got.Decision)
	}

	out, err = run(t, "preview", "--at", "2024-01-15T10:00:00Z", "--busy-agent", "busy_1", "--active", "2")
	if err != nil {
		t.Fatalf("preview busy: %v", err)
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Decision.Destination != routing.DestinationBusyAgent {
		t.Fatalf("expected busy agent, got %+v", got.Decision)
	}

	if _, err := run(t, "preview", "--at", "yesterday"); err == nil {
		t.Fatalf("expected bad --at to fail")
	}
	if _, err := run(t, "preview", "--active", "-1"); err == nil {
		t.Fatalf("expected negative --active to fail")
	}
}

func TestToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	out, err := run(t, "token", "--user", "u1", "--workspace", "w1", "--role", "admin")
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if strings.Count(strings.TrimSpace(out), ".") != 2 {
		t.Fatalf("expected a JWT, got %q", out)
	}

	if _, err := run(t, "token", "--user", "u1", "--workspace", "w1", "--role", "root"); err == nil {
		t.Fatalf("expected unknown role to fail")
	}
}
