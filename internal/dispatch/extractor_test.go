package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"dispatch-voice/internal/scenario"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_DriverCheckin(t *testing.T) {
	gen := &fakeGenerator{out: "```json\n" + `{"call_outcome":"In-Transit Update","driver_status":"Driving","current_location":"I-80 near Reno","eta":"3pm"}` + "\n```"}

	data, err := NewExtractor(gen).Extract(context.Background(), scenario.TypeDriverCheckin, "user: driving")
	require.NoError(t, err)

	var got scenario.CheckinResult
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, scenario.DriverStatusDriving, got.DriverStatus)
	require.NotNil(t, got.ETA)
	assert.Equal(t, "3pm", *got.ETA)
	assert.False(t, IsErrorMarker(data))
}

func TestExtractor_FailuresYieldMarker(t *testing.T) {
	cases := []struct {
		name string
		typ  scenario.Type
		gen  *fakeGenerator
	}{
		{"generator error", scenario.TypeDriverCheckin, &fakeGenerator{err: errors.New("boom")}},
		{"prose", scenario.TypeDriverCheckin, &fakeGenerator{out: "The driver has arrived."}},
		{"bad enum", scenario.TypeEmergencyProtocol, &fakeGenerator{out: `{"call_outcome":"Panic","emergency_type":null,"emergency_location":null,"escalation_status":"No Escalation"}`}},
		{"unknown scenario", scenario.Type("cold_call"), &fakeGenerator{out: "{}"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := NewExtractor(tc.gen).Extract(context.Background(), tc.typ, "agent: Hi\nuser: hello")
			require.ErrorIs(t, err, ErrExtraction)
			assert.JSONEq(t, `{"error":"Failed to extract structured data","raw_transcript":"agent: Hi\nuser: hello"}`, string(data))
			assert.True(t, IsErrorMarker(data))
		})
	}
}
