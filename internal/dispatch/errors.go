package dispatch

import "errors"

// Surfaced to the caller of TriggerCall.
var (
	ErrValidation     = errors.New("dispatch: invalid trigger request")
	ErrConfigNotFound = errors.New("dispatch: agent config not found")
	ErrProvider       = errors.New("dispatch: voice provider failed")
)

// Absorbed inside the webhook path; they only reach logs and metrics.
var (
	ErrExtraction = errors.New("dispatch: structured extraction failed")
	ErrGeneration = errors.New("dispatch: response generation failed")
)
