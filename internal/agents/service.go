package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dispatch-voice/internal/scenario"
	"dispatch-voice/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var ErrInvalidConfig = errors.New("agents: invalid config")

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// CreateRequest is the input for saving a new configuration.
type CreateRequest struct {
	Name         string        `json:"name" validate:"required"`
	SystemPrompt string        `json:"system_prompt" validate:"required"`
	ScenarioType scenario.Type `json:"scenario_type" validate:"required"`
	Settings     Settings      `json:"settings,omitempty"`
}

// Service manages agent configurations.
type Service struct {
	repo     Repository
	validate *validator.Validate
	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: utils.NewValidator(), clock: time.Now}
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (Config, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.SystemPrompt = strings.TrimSpace(req.SystemPrompt)

	if err := s.validate.Struct(req); err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrInvalidConfig, utils.DescribeValidation(err))
	}
	if !scenario.Valid(req.ScenarioType) {
		return Config{}, fmt.Errorf("%w: unknown scenario_type %q", ErrInvalidConfig, req.ScenarioType)
	}

	settings := req.Settings.WithDefaults()

	c := Config{
		ID:           uuid.NewString(),
		Name:         req.Name,
		SystemPrompt: req.SystemPrompt,
		ScenarioType: req.ScenarioType,
		Settings:     settings,
		CreatedAt:    s.clock().UTC(),
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, id string) (Config, error) {
	if strings.TrimSpace(id) == "" {
		return Config{}, ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

// List returns configs newest first.
func (s *Service) List(ctx context.Context, limit int) ([]Config, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return s.repo.List(ctx, limit)
}
