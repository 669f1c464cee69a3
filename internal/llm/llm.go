// Package llm wraps the text-generation backends behind one small capability.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dispatch-voice/internal/config"
)

var (
	ErrEmptyResponse  = errors.New("llm: empty response")
	ErrUnknownBackend = errors.New("llm: unknown backend")
)

// Request is one single-turn generation.
type Request struct {
	System      string
	Prompt      string
	Temperature float64
	// MaxTokens of zero lets the backend pick its default.
	MaxTokens int
	// JSON asks the backend for a bare JSON object where it supports that.
	JSON bool
}

// Generator returns generated text for a request, or fails.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// New builds the generator selected by cfg.Provider. Every call is bounded by timeout.
func New(cfg config.LLMConfig, timeout time.Duration) (Generator, error) {
	switch cfg.Provider {
	case config.LLMProviderOpenAI:
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL, timeout), nil
	case config.LLMProviderAnthropic:
		return NewAnthropic(cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.AnthropicBaseURL, timeout), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Provider)
	}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func finish(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
