package telephony

import (
	"errors"
	"strings"
	"testing"
)

func TestParseWebhook_CallEnded(t *testing.T) {
	body := `{"interaction_type":"call_ended","call":{"call_id":"rc-1","call_length_seconds":95},
"transcript":[{"role":"agent","content":"Hi"},{"role":"user","content":"Arrived"}]}`

	ev, err := ParseWebhook(strings.NewReader(body))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if ev.InteractionType != InteractionCallEnded || ev.Call.CallID != "rc-1" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if ev.Call.CallLengthSeconds == nil || *ev.Call.CallLengthSeconds != 95 {
		t.Fatalf("expected call length 95")
	}
	if ev.ScenarioType() != "" {
		t.Fatalf("expected no scenario without metadata")
	}
	if got := JoinTranscript(ev.Transcript); got != "agent: Hi\nuser: Arrived" {
		t.Fatalf("unexpected transcript %q", got)
	}
}

func TestParseWebhook_Metadata(t *testing.T) {
	body := `{"interaction_type":"update_only","call":{"call_id":"rc-1","metadata":{"call_log_id":"log-1","scenario_type":"emergency_protocol","driver_name":"Sam","load_number":"789-B"}}}`

	ev, err := ParseWebhook(strings.NewReader(body))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if ev.ScenarioType() != "emergency_protocol" || ev.Call.Metadata.CallLogID != "log-1" {
		t.Fatalf("unexpected metadata: %+v", ev.Call.Metadata)
	}
}

func TestParseWebhook_Malformed(t *testing.T) {
	for _, body := range []string{
		"",
		"{not json",
		`{"call":{"call_length_seconds":"long"}}`,
		"null",
		`"call_ended"`,
		`[{"interaction_type":"call_ended"}]`,
		`{"interaction_type":"call_ended","call":{"call_id":"rc-1"}} }garbage{`,
		`{"interaction_type":"call_ended"}{"interaction_type":"call_ended"}`,
	} {
		if _, err := ParseWebhook(strings.NewReader(body)); !errors.Is(err, ErrMalformedWebhook) {
			t.Fatalf("body %q: expected ErrMalformedWebhook, got %v", body, err)
		}
	}
}

func TestParseWebhook_AllowsTrailingWhitespace(t *testing.T) {
	ev, err := ParseWebhook(strings.NewReader("{\"interaction_type\":\"update_only\",\"call\":{\"call_id\":\"rc-1\"}}\n\n"))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if ev.InteractionType != InteractionUpdateOnly {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestJoinTranscript_Empty(t *testing.T) {
	if got := JoinTranscript(nil); got != "" {
		t.Fatalf("expected empty transcript, got %q", got)
	}
}
