package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"dispatch-voice/internal/agents"
	"dispatch-voice/internal/scenario"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleAgents = `
agents:
  - name: Check-in
    system_prompt: "Hi {driver_name}, checking on load {load_number}."
    scenario_type: driver_checkin
  - name: Emergency
    system_prompt: Stay calm and gather details.
    scenario_type: emergency_protocol
    settings:
      backchanneling_enabled: true
      interruption_sensitivity: 0.9
      response_delay_ms: 200
      voice_id: 11labs-Adrian
`

func TestParseAgentFile(t *testing.T) {
	reqs, err := parseAgentFile([]byte(sampleAgents))
	require.NoError(t, err)
	require.Len(t, reqs, 2)

	assert.Equal(t, "Hi {driver_name}, checking on load {load_number}.", reqs[0].SystemPrompt)
	assert.Equal(t, scenario.TypeDriverCheckin, reqs[0].ScenarioType)
	assert.Nil(t, reqs[0].Settings)

	require.NotNil(t, reqs[1].Settings)
	assert.Equal(t, true, reqs[1].Settings["backchanneling_enabled"])
	assert.Equal(t, 0.9, reqs[1].Settings["interruption_sensitivity"])
	assert.Equal(t, 200, reqs[1].Settings["response_delay_ms"])
	assert.Equal(t, "11labs-Adrian", reqs[1].Settings["voice_id"])
}

func TestParseAgentFile_Rejects(t *testing.T) {
	_, err := parseAgentFile([]byte("agents: ["))
	assert.Error(t, err)

	_, err = parseAgentFile([]byte("agents: []"))
	assert.Error(t, err)
}

func TestImportAgents(t *testing.T) {
	reqs, err := parseAgentFile([]byte(sampleAgents))
	require.NoError(t, err)

	repo := agents.NewMemoryRepo()
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	var buf bytes.Buffer
	cmd.SetOut(&buf)

	require.NoError(t, importAgents(cmd, agents.NewService(repo), reqs))

	var out importOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out.Created, 2)

	saved, err := repo.List(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, saved, 2)
}

func TestImportAgents_StopsOnInvalidEntry(t *testing.T) {
	repo := agents.NewMemoryRepo()
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	cmd.SetOut(&bytes.Buffer{})

	err := importAgents(cmd, agents.NewService(repo), []agents.CreateRequest{
		{Name: "Ok", SystemPrompt: "p", ScenarioType: scenario.TypeDriverCheckin},
		{Name: "Bad", SystemPrompt: "p", ScenarioType: "sales"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, agents.ErrInvalidConfig))

	saved, _ := repo.List(context.Background(), 10)
	assert.Len(t, saved, 1)
}

func TestTokenCmd_RejectsUnknownRole(t *testing.T) {
	cmd := newTokenCmd()
	cmd.SetArgs([]string{"--subject", "ops@example.com", "--role", "owner"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --role")
}

func TestTokenCmd_IssuesToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("JWT_ISSUER", "")
	t.Setenv("JWT_AUDIENCE", "")
	t.Setenv("JWT_ACCESS_TTL", "")

	cmd := newTokenCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"--subject", "ops@example.com", "--role", "viewer"})
	require.NoError(t, cmd.Execute())

	var out tokenOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "viewer", out.Role)
	assert.NotEmpty(t, out.AccessToken)
}
