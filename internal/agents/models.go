package agents

import (
	"time"

	"dispatch-voice/internal/scenario"
)

// Config is a reusable call script plus the scenario it runs.
//
// Configs are created once and never mutated by the call pipeline; that is what
// makes them safe to cache (see CachedRepo).
type Config struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`

	// SystemPrompt may contain the {driver_name} and {load_number} placeholders.
	SystemPrompt string        `json:"system_prompt" db:"system_prompt"`
	ScenarioType scenario.Type `json:"scenario_type" db:"scenario_type"`

	Settings Settings `json:"settings" db:"settings"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Settings is an opaque bag of voice tuning values. Keys are passed through
// untouched; the core never reads them.
type Settings map[string]any

// DefaultSettings are the values a new config starts from. Values are typed the
// way encoding/json decodes them so stored and cached configs compare equal.
func DefaultSettings() Settings {
	return Settings{
		"backchanneling_enabled":   true,
		"filler_words_enabled":     true,
		"interruption_sensitivity": 0.7,
		"response_delay_ms":        float64(300),
	}
}

// WithDefaults returns the defaults overlaid with s. Keys in s win.
func (s Settings) WithDefaults() Settings {
	out := DefaultSettings()
	for k, v := range s {
		out[k] = v
	}
	return out
}
