package main

import (
	"fmt"
	"strings"
	"time"

	"dispatch-voice/internal/auth"
	"dispatch-voice/internal/config"
	"dispatch-voice/internal/rbac"

	"github.com/spf13/cobra"
)

type tokenOutput struct {
	Subject     string    `json:"subject"`
	Role        string    `json:"role"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func newTokenCmd() *cobra.Command {
	var (
		subject string
		role    string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an operator access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			subject = strings.TrimSpace(subject)
			if subject == "" {
				return fmt.Errorf("--subject is required")
			}
			if !rbac.Known(role) {
				return fmt.Errorf("invalid --role %q: must be one of %s", role, strings.Join(rbac.Roles(), ", "))
			}

			cfg, err := config.LoadAuth()
			if err != nil {
				return err
			}
			m, err := auth.NewManager(cfg)
			if err != nil {
				return err
			}

			now := time.Now().UTC()
			tok, err := m.IssueAccess(now, subject, role)
			if err != nil {
				return err
			}
			return writeJSON(cmd, tokenOutput{
				Subject:     subject,
				Role:        role,
				AccessToken: tok,
				ExpiresAt:   now.Add(cfg.AccessTokenTTL),
			})
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "Operator identifier (required)")
	cmd.Flags().StringVar(&role, "role", rbac.RoleDispatcher, "Operator role")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
