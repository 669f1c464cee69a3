package main

import (
	"fmt"
	"os"

	"dispatch-voice/internal/agents"
	"dispatch-voice/internal/scenario"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// agentFile is the YAML layout accepted by "agents import".
type agentFile struct {
	Agents []agentEntry `yaml:"agents"`
}

type agentEntry struct {
	Name         string         `yaml:"name"`
	SystemPrompt string         `yaml:"system_prompt"`
	ScenarioType string         `yaml:"scenario_type"`
	Settings     map[string]any `yaml:"settings"`
}

func (e agentEntry) request() agents.CreateRequest {
	return agents.CreateRequest{
		Name:         e.Name,
		SystemPrompt: e.SystemPrompt,
		ScenarioType: scenario.Type(e.ScenarioType),
		Settings:     agents.Settings(e.Settings),
	}
}

func parseAgentFile(data []byte) ([]agents.CreateRequest, error) {
	var f agentFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse agents file: %w", err)
	}
	if len(f.Agents) == 0 {
		return nil, fmt.Errorf("agents file lists no agents")
	}
	out := make([]agents.CreateRequest, 0, len(f.Agents))
	for _, e := range f.Agents {
		out = append(out, e.request())
	}
	return out, nil
}

type importOutput struct {
	Created []agents.Config `json:"created"`
}

func newAgentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agents",
		Short: "Manage agent configurations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "import FILE",
		Short: "Create agent configurations from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			reqs, err := parseAgentFile(data)
			if err != nil {
				return err
			}

			db, err := connectDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()
			return importAgents(cmd, agents.NewService(agents.NewPostgresRepo(db)), reqs)
		},
	})

	return cmd
}

// importAgents stops at the first rejected entry; earlier entries stay saved.
func importAgents(cmd *cobra.Command, svc *agents.Service, reqs []agents.CreateRequest) error {
	out := importOutput{Created: make([]agents.Config, 0, len(reqs))}
	for i, req := range reqs {
		c, err := svc.Create(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("agent %d (%q): %w", i+1, req.Name, err)
		}
		out.Created = append(out.Created, c)
	}
	return writeJSON(cmd, out)
}
