// Package scenario holds the closed set of call scenarios.
//
// Each variant owns its live-response instruction, its extraction prompt and the
// schema its extraction output must satisfy. Adding a scenario means adding one
// variant to the registry below; callers never branch on the scenario type.
package scenario

import (
	"encoding/json"
	"errors"
	"strings"
	"unicode"
)

type Type string

const (
	TypeDriverCheckin     Type = "driver_checkin"
	TypeEmergencyProtocol Type = "emergency_protocol"
)

// Participants identifies who the agent is talking to.
type Participants struct {
	DriverName string
	LoadNumber string
}

// Scenario is implemented only by the variants in this package.
type Scenario interface {
	Type() Type

	// ResponseInstruction is the system instruction for live response generation.
	ResponseInstruction(p Participants) string

	// ExtractionPrompt asks for the scenario's JSON shape given the full transcript.
	ExtractionPrompt(transcript string) string

	// ParseExtraction validates model output against the scenario's schema and
	// returns the normalized JSON.
	ParseExtraction(raw string) (json.RawMessage, error)

	sealed()
}

var ErrInvalidExtraction = errors.New("scenario: extraction output does not match schema")

var registry = map[Type]Scenario{
	TypeDriverCheckin:     driverCheckin{},
	TypeEmergencyProtocol: emergencyProtocol{},
}

// Lookup returns the variant for t.
func Lookup(t Type) (Scenario, bool) {
	s, ok := registry[t]
	return s, ok
}

// Valid reports whether t names a known scenario.
func Valid(t Type) bool {
	_, ok := registry[t]
	return ok
}

// Types lists the known scenario types.
func Types() []Type {
	return []Type{TypeDriverCheckin, TypeEmergencyProtocol}
}

// ForReply picks the variant that should produce the next live reply.
// A check-in call escalates to the emergency protocol as soon as the driver's
// latest utterance contains an emergency keyword.
func ForReply(t Type, latestUserTurn string) (Scenario, bool) {
	s, ok := Lookup(t)
	if !ok {
		return nil, false
	}
	if t == TypeDriverCheckin && MentionsEmergency(latestUserTurn) {
		return registry[TypeEmergencyProtocol], true
	}
	return s, true
}

// emergencyKeywords are matched as whole words, so "fire" does not fire on
// "fired" or "Firestone".
var emergencyKeywords = [][]string{
	{"accident"},
	{"crash"},
	{"crashed"},
	{"breakdown"},
	{"broke", "down"},
	{"broken", "down"},
	{"medical"},
	{"injured"},
	{"hurt"},
	{"bleeding"},
	{"fire"},
	{"emergency"},
}

// negations cancel a keyword that directly follows them ("not hurt", "no accident").
var negations = map[string]bool{
	"not": true, "no": true, "never": true, "isn't": true, "wasn't": true, "nobody": true,
}

// MentionsEmergency reports whether text contains an emergency keyword that is
// not directly negated.
func MentionsEmergency(text string) bool {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
	for i := range words {
		if i > 0 && negations[words[i-1]] {
			continue
		}
		for _, k := range emergencyKeywords {
			if hasPhraseAt(words, i, k) {
				return true
			}
		}
	}
	return false
}

func hasPhraseAt(words []string, i int, phrase []string) bool {
	if i+len(phrase) > len(words) {
		return false
	}
	for j, w := range phrase {
		if words[i+j] != w {
			return false
		}
	}
	return true
}

// decodeStrict parses raw model output into dst, tolerating a surrounding
// markdown code fence and rejecting unknown fields.
func decodeStrict(raw string, dst any) error {
	dec := json.NewDecoder(strings.NewReader(stripFence(raw)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.Join(ErrInvalidExtraction, err)
	}
	if dec.More() {
		return errors.Join(ErrInvalidExtraction, errors.New("trailing data after JSON object"))
	}
	return nil
}

func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
