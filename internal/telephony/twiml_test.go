package telephony

import (
	"errors"
	"strings"
	"testing"
	"time"

	"phoneline/internal/routing"
)

func renderSettings() routing.Settings {
	s := routing.DefaultSettings()
	s.ForwardNumber = "+447700900123"
	s.WelcomeAudioURL = "https://cdn.example.com/welcome.mp3"
	s.ElevenLabsAgentID = "agent_default"
	s.ElevenLabsAPIKey = "xi-key"
	s.ElevenLabsBusyAgentID = "agent_busy"
	return s
}

func mustRender(t *testing.T, d routing.Decision, s routing.Settings, opts RenderOptions) string {
	t.Helper()
	out, err := RenderTwiML(d, s, opts)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasPrefix(out, "<?xml") || !strings.Contains(out, "<Response>") {
		t.Fatalf("expected a TwiML document, got %s", out)
	}
	return out
}

func TestRenderTwiML_VAForward(t *testing.T) {
	d := routing.Decision{PlayWelcomeAudio: true, AttemptVAForward: true, SendVASms: true, Destination: routing.DestinationVAForward}
	out := mustRender(t, d, renderSettings(), RenderOptions{MissedCallURL: "https://api.example.com" + PathVAMissed, DialTimeout: 20 * time.Second})

	for _, want := range []string{
		"<Play>https://cdn.example.com/welcome.mp3</Play>",
		`<Dial action="https://api.example.com/webhooks/twilio/va-missed" method="POST" timeout="20">`,
		"<Number>+447700900123</Number>",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in xml: %s", want, out)
		}
	}
	if strings.Index(out, "<Play>") > strings.Index(out, "<Dial") {
		t.Fatalf("welcome audio must play before dialing: %s", out)
	}
}

func TestRenderTwiML_NoWelcomeWhenFlagFalse(t *testing.T) {
	d := routing.Decision{Destination: routing.DestinationHangup}
	out := mustRender(t, d, renderSettings(), RenderOptions{})
	if strings.Contains(out, "<Play>") {
		t.Fatalf("unexpected welcome audio: %s", out)
	}
	if !strings.Contains(out, "<Hangup>") {
		t.Fatalf("expected hangup: %s", out)
	}
}

func TestRenderTwiML_AgentStream(t *testing.T) {
	s := renderSettings()
	s.OutOfHoursMessage = "We're closed & back at 8."
	d := routing.Decision{Destination: routing.DestinationElevenLabs, AgentContext: routing.AgentContextOutOfHours}

	out := mustRender(t, d, s, RenderOptions{StreamURL: "wss://bridge.example.com/stream", CallSID: "CA1", Caller: "+15551234567"})
	for _, want := range []string{
		`<Stream url="wss://bridge.example.com/stream">`,
		`<Parameter name="agent_id" value="agent_default">`,
		`<Parameter name="context" value="out-of-hours">`,
		`value="We&#39;re closed &amp; back at 8."`,
		`<Parameter name="caller" value="+15551234567">`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in xml: %s", want, out)
		}
	}
	if strings.Contains(out, "xi-key") {
		t.Fatalf("api key must never be rendered: %s", out)
	}
}

func TestRenderTwiML_BusyAgentUsesBusyAgentID(t *testing.T) {
	d := routing.Decision{PlayWelcomeAudio: true, Destination: routing.DestinationBusyAgent, AgentContext: routing.AgentContextBusy}
	out := mustRender(t, d, renderSettings(), RenderOptions{StreamURL: "wss://bridge.example.com/stream"})
	if !strings.Contains(out, `<Parameter name="agent_id" value="agent_busy">`) {
		t.Fatalf("expected busy agent id: %s", out)
	}
}

func TestRenderTwiML_AgentRequiresStreamURL(t *testing.T) {
	d := routing.Decision{Destination: routing.DestinationElevenLabs, AgentContext: routing.AgentContextInHours}
	if _, err := RenderTwiML(d, renderSettings(), RenderOptions{}); !errors.Is(err, ErrStreamNotConfigured) {
		t.Fatalf("expected ErrStreamNotConfigured, got %v", err)
	}
}

func TestRenderTwiML_Voicemail(t *testing.T) {
	s := renderSettings()
	s.VoicemailMessage = "Leave us a message."
	out := mustRender(t, routing.Decision{Destination: routing.DestinationVoicemail}, s, RenderOptions{RecordingURL: PathRecorded})

	for _, want := range []string{
		"<Say>Leave us a message.</Say>",
		`<Record action="/webhooks/twilio/recorded" method="POST" maxLength="120" playBeep="true">`,
		"<Hangup>",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in xml: %s", want, out)
		}
	}
}

func TestRenderTwiML_RejectsBadInput(t *testing.T) {
	s := renderSettings()
	s.ForwardNumber = " "
	if _, err := RenderTwiML(routing.Decision{Destination: routing.DestinationVAForward}, s, RenderOptions{}); err == nil {
		t.Fatalf("expected error for empty forward number")
	}
	if _, err := RenderTwiML(routing.Decision{Destination: "carrier-pigeon"}, s, RenderOptions{}); err == nil {
		t.Fatalf("expected error for unknown destination")
	}
}

func TestHangupTwiML(t *testing.T) {
	if out := HangupTwiML(); !strings.Contains(out, "<Hangup>") {
		t.Fatalf("expected hangup: %s", out)
	}
}
