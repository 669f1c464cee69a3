package agents

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"dispatch-voice/internal/scenario"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_CreateAppliesDefaultSettings(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)
	now := time.Unix(1700000000, 0).UTC()
	svc.clock = func() time.Time { return now }

	c, err := svc.Create(context.Background(), CreateRequest{
		Name:         "  Check-in  ",
		SystemPrompt: "Hi {driver_name}, re load {load_number}",
		ScenarioType: scenario.TypeDriverCheckin,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "Check-in", c.Name)
	assert.Equal(t, DefaultSettings(), c.Settings)
	assert.Equal(t, now, c.CreatedAt)

	stored, err := repo.Get(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, c, stored)
}

func TestService_CreateMergesExplicitSettings(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	c, err := svc.Create(context.Background(), CreateRequest{
		Name:         "Emergency",
		SystemPrompt: "Stay calm",
		ScenarioType: scenario.TypeEmergencyProtocol,
		Settings:     Settings{"voice_id": "11labs-Adrian", "interruption_sensitivity": 0.5, "backchanneling_enabled": false},
	})
	require.NoError(t, err)
	assert.Equal(t, Settings{
		"voice_id":                 "11labs-Adrian",
		"interruption_sensitivity": 0.5,
		"backchanneling_enabled":   false,
		"filler_words_enabled":     true,
		"response_delay_ms":        float64(300),
	}, c.Settings)
}

func TestService_SettingsSurviveJSONRoundTrip(t *testing.T) {
	var req CreateRequest
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Check-in","system_prompt":"Hi","scenario_type":"driver_checkin","settings":{"voice_id":"11labs-Adrian","pronunciation":{"Adrian":"AY-dree-un"}}}`), &req))

	c, err := NewService(NewMemoryRepo()).Create(context.Background(), req)
	require.NoError(t, err)

	raw, err := json.Marshal(c)
	require.NoError(t, err)
	var back Config
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, c.Settings, back.Settings)
	assert.Equal(t, map[string]any{"Adrian": "AY-dree-un"}, back.Settings["pronunciation"])
	assert.Equal(t, float64(300), back.Settings["response_delay_ms"])
}

func TestService_CreateRejectsInvalid(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	_, err := svc.Create(context.Background(), CreateRequest{SystemPrompt: "x", ScenarioType: scenario.TypeDriverCheckin})
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "name is required")

	_, err = svc.Create(context.Background(), CreateRequest{Name: "n", SystemPrompt: "   ", ScenarioType: scenario.TypeDriverCheckin})
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = svc.Create(context.Background(), CreateRequest{Name: "n", SystemPrompt: "x", ScenarioType: "cold_call"})
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestService_ListNewestFirst(t *testing.T) {
	base := time.Unix(1700000000, 0).UTC()
	repo := NewMemoryRepo(
		Config{ID: "old", CreatedAt: base},
		Config{ID: "new", CreatedAt: base.Add(time.Hour)},
		Config{ID: "mid", CreatedAt: base.Add(time.Minute)},
	)
	svc := NewService(repo)

	got, err := svc.List(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "new", got[0].ID)
	assert.Equal(t, "mid", got[1].ID)
}

func TestService_GetUnknown(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	_, err := svc.Get(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}
