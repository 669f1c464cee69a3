package reporting

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"dispatch-voice/internal/calls"
	"dispatch-voice/internal/scenario"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

// Repository is the read side reporting needs; calls.Repository satisfies it.
type Repository interface {
	ListBetween(ctx context.Context, from, to time.Time) ([]calls.CallLog, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

// structuredFields is the union of what reporting reads from structured_data.
type structuredFields struct {
	Error            string `json:"error"`
	DriverStatus     string `json:"driver_status"`
	EscalationStatus string `json:"escalation_status"`
}

func (s *Service) CallsSummary(ctx context.Context, req CallsSummaryRequest) (CallsSummary, error) {
	if req.Range.From.IsZero() || req.Range.To.IsZero() || !req.Range.To.After(req.Range.From) {
		return CallsSummary{}, ErrInvalidRequest
	}
	if s.repo == nil {
		return CallsSummary{}, errors.New("reporting: repository not configured")
	}

	rows, err := s.repo.ListBetween(ctx, req.Range.From, req.Range.To)
	if err != nil {
		return CallsSummary{}, err
	}

	out := CallsSummary{Range: req.Range, DriverStatuses: map[string]int{}}
	for _, c := range rows {
		out.TotalCalls++
		switch c.Status {
		case calls.CallStatusInitiated:
			out.InitiatedCalls++
		case calls.CallStatusInProgress:
			out.InProgressCalls++
		case calls.CallStatusFailed:
			out.FailedCalls++
		case calls.CallStatusCompleted:
			out.CompletedCalls++
			if c.CallDuration != nil {
				out.TotalDurationSeconds += *c.CallDuration
			}
		}

		if len(c.StructuredData) == 0 {
			continue
		}
		var f structuredFields
		if err := json.Unmarshal(c.StructuredData, &f); err != nil {
			continue
		}
		if f.Error != "" {
			out.ExtractionFailures++
			continue
		}
		if f.DriverStatus != "" {
			out.DriverStatuses[f.DriverStatus]++
		}
		if f.EscalationStatus == scenario.EscalationFlagged {
			out.EmergenciesFlagged++
		}
	}
	if out.CompletedCalls > 0 {
		out.AverageDurationSeconds = out.TotalDurationSeconds / out.CompletedCalls
	}
	return out, nil
}
