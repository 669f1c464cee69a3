package scenario

import (
	"encoding/json"
	"fmt"
)

// EmergencyResult is the structured outcome of an emergency call.
type EmergencyResult struct {
	CallOutcome       string  `json:"call_outcome"`
	EmergencyType     *string `json:"emergency_type"`
	EmergencyLocation *string `json:"emergency_location"`
	EscalationStatus  string  `json:"escalation_status"`
}

const (
	OutcomeEmergencyDetected = "Emergency Detected"
	OutcomeNormalCall        = "Normal Call"

	EmergencyTypeAccident  = "Accident"
	EmergencyTypeBreakdown = "Breakdown"
	EmergencyTypeMedical   = "Medical"
	EmergencyTypeOther     = "Other"

	EscalationFlagged = "Escalation Flagged"
	EscalationNone    = "No Escalation"
)

type emergencyProtocol struct{}

func (emergencyProtocol) sealed() {}

func (emergencyProtocol) Type() Type { return TypeEmergencyProtocol }

func (emergencyProtocol) ResponseInstruction(p Participants) string {
	return fmt.Sprintf(`You are a dispatch agent handling an EMERGENCY call with driver %s.

Emergency detected! Immediately:
1. Stay calm and professional
2. Ask "What's your exact location?"
3. Ask "What type of emergency is this?"
4. Get essential details quickly
5. End with "A human dispatcher will call you back immediately. Stay safe."

Do NOT follow normal check-in procedures. This is urgent.`, p.DriverName)
}

func (emergencyProtocol) ExtractionPrompt(transcript string) string {
	return `Analyze the following conversation transcript from a logistics emergency call and extract structured data.

Return ONLY a JSON object with these exact fields:
{
  "call_outcome": "Emergency Detected" or "Normal Call",
  "emergency_type": "Accident" or "Breakdown" or "Medical" or "Other" or null,
  "emergency_location": "location string or null",
  "escalation_status": "Escalation Flagged" or "No Escalation"
}

Transcript:
` + transcript
}

func (emergencyProtocol) ParseExtraction(raw string) (json.RawMessage, error) {
	var r EmergencyResult
	if err := decodeStrict(raw, &r); err != nil {
		return nil, err
	}
	if !oneOf(r.CallOutcome, OutcomeEmergencyDetected, OutcomeNormalCall) {
		return nil, fmt.Errorf("%w: call_outcome %q", ErrInvalidExtraction, r.CallOutcome)
	}
	if r.EmergencyType != nil && !oneOf(*r.EmergencyType, EmergencyTypeAccident, EmergencyTypeBreakdown, EmergencyTypeMedical, EmergencyTypeOther) {
		return nil, fmt.Errorf("%w: emergency_type %q", ErrInvalidExtraction, *r.EmergencyType)
	}
	if !oneOf(r.EscalationStatus, EscalationFlagged, EscalationNone) {
		return nil, fmt.Errorf("%w: escalation_status %q", ErrInvalidExtraction, r.EscalationStatus)
	}
	return json.Marshal(r)
}
