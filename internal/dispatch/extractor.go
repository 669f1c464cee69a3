package dispatch

import (
	"context"
	"encoding/json"
	"fmt"

	"dispatch-voice/internal/llm"
	"dispatch-voice/internal/scenario"
)

const (
	extractionSystem      = "You are a data extraction specialist. Return only valid JSON objects as requested."
	extractionTemperature = 0.1
	extractionFailedMsg   = "Failed to extract structured data"
)

// Extractor reduces a finished call's transcript to its scenario's structured record.
type Extractor struct {
	gen llm.Generator
}

func NewExtractor(gen llm.Generator) *Extractor {
	return &Extractor{gen: gen}
}

// Extract always returns a usable value. On failure it is the error marker
// carrying the raw transcript, and the returned error wraps ErrExtraction.
func (e *Extractor) Extract(ctx context.Context, typ scenario.Type, transcript string) (json.RawMessage, error) {
	sc, ok := scenario.Lookup(typ)
	if !ok {
		return errorMarker(transcript), fmt.Errorf("%w: unknown scenario %q", ErrExtraction, typ)
	}

	out, err := e.gen.Generate(ctx, llm.Request{
		System:      extractionSystem,
		Prompt:      sc.ExtractionPrompt(transcript),
		Temperature: extractionTemperature,
		JSON:        true,
	})
	if err != nil {
		return errorMarker(transcript), fmt.Errorf("%w: %w", ErrExtraction, err)
	}

	data, err := sc.ParseExtraction(out)
	if err != nil {
		return errorMarker(transcript), fmt.Errorf("%w: %w", ErrExtraction, err)
	}
	return data, nil
}

type extractionError struct {
	Error         string `json:"error"`
	RawTranscript string `json:"raw_transcript"`
}

func errorMarker(transcript string) json.RawMessage {
	raw, _ := json.Marshal(extractionError{Error: extractionFailedMsg, RawTranscript: transcript})
	return raw
}

// IsErrorMarker reports whether data is the extraction failure marker.
func IsErrorMarker(data json.RawMessage) bool {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return false
	}
	msg, _ := m["error"].(string)
	return msg == extractionFailedMsg
}
