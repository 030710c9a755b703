package telephony

import (
	"net/http"
	"strings"
)

// TwilioVoiceForm captures the subset of voice webhook fields we care about.
// Twilio sends application/x-www-form-urlencoded by default.
// Ref: https://www.twilio.com/docs/voice/twiml
//
// The same shape serves the initial ring, the <Dial> action callback and the
// status callback; fields that do not apply to a hit are empty.
type TwilioVoiceForm struct {
	CallSid    string
	AccountSid string
	From       string
	// To is the dialed business line.
	To            string
	Direction     string
	CallStatus    string
	CallerName    string
	ForwardedFrom string

	// DialCallStatus is only set on the <Dial> action callback.
	DialCallStatus string
	DialCallSid    string

	// RecordingURL is only set on the <Record> action callback.
	RecordingURL string
}

func ParseTwilioVoiceWebhook(r *http.Request) (TwilioVoiceForm, error) {
	if err := r.ParseForm(); err != nil {
		return TwilioVoiceForm{}, err
	}
	f := TwilioVoiceForm{
		CallSid:        strings.TrimSpace(r.PostFormValue("CallSid")),
		AccountSid:     r.PostFormValue("AccountSid"),
		From:           normalizePhone(r.PostFormValue("From")),
		To:             normalizePhone(r.PostFormValue("To")),
		Direction:      r.PostFormValue("Direction"),
		CallStatus:     strings.TrimSpace(r.PostFormValue("CallStatus")),
		CallerName:     r.PostFormValue("CallerName"),
		ForwardedFrom:  normalizePhone(r.PostFormValue("ForwardedFrom")),
		DialCallStatus: strings.TrimSpace(r.PostFormValue("DialCallStatus")),
		DialCallSid:    r.PostFormValue("DialCallSid"),
		RecordingURL:   r.PostFormValue("RecordingUrl"),
	}
	return f, nil
}

// ForwardAnswered reports whether the VA picked up the forwarded leg.
func (f TwilioVoiceForm) ForwardAnswered() bool {
	return strings.EqualFold(f.DialCallStatus, "completed") || strings.EqualFold(f.DialCallStatus, "answered")
}

func normalizePhone(s string) string {
	s = strings.TrimSpace(s)
	// Twilio sometimes sends "anonymous" or empty; keep as-is.
	return s
}
