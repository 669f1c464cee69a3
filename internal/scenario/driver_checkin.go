package scenario

import (
	"encoding/json"
	"fmt"
)

// CheckinResult is the structured outcome of a driver check-in call.
type CheckinResult struct {
	CallOutcome     string  `json:"call_outcome"`
	DriverStatus    string  `json:"driver_status"`
	CurrentLocation *string `json:"current_location"`
	ETA             *string `json:"eta"`
}

const (
	OutcomeInTransitUpdate     = "In-Transit Update"
	OutcomeArrivalConfirmation = "Arrival Confirmation"

	DriverStatusDriving = "Driving"
	DriverStatusDelayed = "Delayed"
	DriverStatusArrived = "Arrived"
)

type driverCheckin struct{}

func (driverCheckin) sealed() {}

func (driverCheckin) Type() Type { return TypeDriverCheckin }

func (driverCheckin) ResponseInstruction(p Participants) string {
	return fmt.Sprintf(`You are a professional dispatch agent calling driver %[1]s about Load #%[2]s.

Your goal is to get a status update. Start with: "Hi %[1]s, this is Dispatch with a check call on load %[2]s. Can you give me an update on your status?"

Based on their response:
- If driving: Ask about current location and ETA
- If delayed: Ask about reason and new ETA
- If arrived: Confirm arrival and get details

Handle special cases:
- Uncooperative drivers: Probe gently, end call if no response
- Noisy environments: Ask to repeat up to 2 times
- Emergency keywords: Immediately switch to emergency protocol

Keep responses brief and professional. Use natural speech patterns.`, p.DriverName, p.LoadNumber)
}

func (driverCheckin) ExtractionPrompt(transcript string) string {
	return `Analyze the following conversation transcript from a logistics check-in call and extract structured data.

Return ONLY a JSON object with these exact fields:
{
  "call_outcome": "In-Transit Update" or "Arrival Confirmation",
  "driver_status": "Driving" or "Delayed" or "Arrived",
  "current_location": "location string or null",
  "eta": "estimated time string or null"
}

Transcript:
` + transcript
}

func (driverCheckin) ParseExtraction(raw string) (json.RawMessage, error) {
	var r CheckinResult
	if err := decodeStrict(raw, &r); err != nil {
		return nil, err
	}
	if !oneOf(r.CallOutcome, OutcomeInTransitUpdate, OutcomeArrivalConfirmation) {
		return nil, fmt.Errorf("%w: call_outcome %q", ErrInvalidExtraction, r.CallOutcome)
	}
	if !oneOf(r.DriverStatus, DriverStatusDriving, DriverStatusDelayed, DriverStatusArrived) {
		return nil, fmt.Errorf("%w: driver_status %q", ErrInvalidExtraction, r.DriverStatus)
	}
	return json.Marshal(r)
}
