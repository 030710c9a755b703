package telephony

import (
	"bytes"
	"encoding/xml"
	"errors"
	"strings"
	"time"

	"phoneline/internal/routing"
)

// TwiML is a minimal Twilio Markup Language response builder.
// It intentionally avoids any provider SDK dependency.

var ErrStreamNotConfigured = errors.New("telephony: agent stream url not configured")

type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any    `xml:",any"`
}

type twimlPlay struct {
	XMLName xml.Name `xml:"Play"`
	URL     string   `xml:",chardata"`
}

type twimlSay struct {
	XMLName xml.Name `xml:"Say"`
	Text    string   `xml:",chardata"`
}

type twimlDial struct {
	XMLName xml.Name `xml:"Dial"`
	Action  string   `xml:"action,attr,omitempty"`
	Method  string   `xml:"method,attr,omitempty"`
	Timeout int      `xml:"timeout,attr,omitempty"`
	Number  string   `xml:"Number"`
}

type twimlConnect struct {
	XMLName xml.Name    `xml:"Connect"`
	Stream  twimlStream `xml:"Stream"`
}

type twimlStream struct {
	URL        string           `xml:"url,attr"`
	Parameters []twimlParameter `xml:"Parameter"`
}

type twimlParameter struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type twimlRecord struct {
	XMLName   xml.Name `xml:"Record"`
	Action    string   `xml:"action,attr,omitempty"`
	Method    string   `xml:"method,attr,omitempty"`
	MaxLength int      `xml:"maxLength,attr,omitempty"`
	PlayBeep  bool     `xml:"playBeep,attr"`
}

type twimlHangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

// RenderOptions carries the per-deployment and per-call values TwiML needs
// beyond the decision itself.
type RenderOptions struct {
	// MissedCallURL receives the <Dial> action callback when the VA leg ends.
	MissedCallURL string
	// RecordingURL receives the <Record> action callback. Without it Twilio
	// would re-request the voice webhook after recording.
	RecordingURL string
	DialTimeout  time.Duration
	// StreamURL is the websocket bridge to the conversational agent.
	StreamURL string

	CallSID string
	Caller  string
}

const voicemailMaxLengthSeconds = 120

// RenderTwiML maps a routing decision to TwiML. s must be the same settings
// snapshot the decision was made from.
func RenderTwiML(d routing.Decision, s routing.Settings, opts RenderOptions) (string, error) {
	var r twimlResponse

	if d.PlayWelcomeAudio && strings.TrimSpace(s.WelcomeAudioURL) != "" {
		r.Verbs = append(r.Verbs, twimlPlay{URL: strings.TrimSpace(s.WelcomeAudioURL)})
	}

	switch d.Destination {
	case routing.DestinationVAForward:
		if strings.TrimSpace(s.ForwardNumber) == "" {
			return "", errors.New("telephony: forward number required for va-forward")
		}
		r.Verbs = append(r.Verbs, twimlDial{
			Action:  opts.MissedCallURL,
			Method:  methodIf(opts.MissedCallURL),
			Timeout: int(opts.DialTimeout / time.Second),
			Number:  strings.TrimSpace(s.ForwardNumber),
		})
	case routing.DestinationElevenLabs, routing.DestinationBusyAgent:
		if strings.TrimSpace(opts.StreamURL) == "" {
			return "", ErrStreamNotConfigured
		}
		agentID := s.ElevenLabsAgentID
		if d.Destination == routing.DestinationBusyAgent {
			agentID = s.ElevenLabsBusyAgentID
		}
		r.Verbs = append(r.Verbs, twimlConnect{Stream: twimlStream{
			URL: opts.StreamURL,
			Parameters: []twimlParameter{
				{Name: "agent_id", Value: strings.TrimSpace(agentID)},
				{Name: "context", Value: string(d.AgentContext)},
				{Name: "first_message", Value: routing.ContextMessage(d.AgentContext, s)},
				{Name: "caller", Value: opts.Caller},
				{Name: "call_sid", Value: opts.CallSID},
			},
		}})
	case routing.DestinationVoicemail:
		r.Verbs = append(r.Verbs,
			twimlSay{Text: routing.VoicemailMessage(s)},
			twimlRecord{
				Action:    opts.RecordingURL,
				Method:    methodIf(opts.RecordingURL),
				MaxLength: voicemailMaxLengthSeconds,
				PlayBeep:  true,
			},
			twimlHangup{},
		)
	case routing.DestinationHangup:
		r.Verbs = append(r.Verbs, twimlHangup{})
	default:
		return "", errors.New("telephony: unknown destination")
	}

	return encodeTwiML(r)
}

// HangupTwiML is the response for callbacks that only need to end the call.
func HangupTwiML() string {
	out, err := encodeTwiML(twimlResponse{Verbs: []any{twimlHangup{}}})
	if err != nil {
		return xml.Header + "<Response><Hangup></Hangup></Response>"
	}
	return out
}

func encodeTwiML(r twimlResponse) (string, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(r); err != nil {
		return "", err
	}
	if err := enc.Flush(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func methodIf(u string) string {
	if u == "" {
		return ""
	}
	return "POST"
}
