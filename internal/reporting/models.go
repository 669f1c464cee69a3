package reporting

import "time"

type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

type CallsSummaryRequest struct {
	Range TimeRange `json:"range"`
}

// CallsSummary aggregates call logs started inside a time range.
type CallsSummary struct {
	Range TimeRange `json:"range"`

	TotalCalls      int `json:"total_calls"`
	InitiatedCalls  int `json:"initiated_calls"`
	InProgressCalls int `json:"in_progress_calls"`
	CompletedCalls  int `json:"completed_calls"`
	FailedCalls     int `json:"failed_calls"`

	// Durations cover completed calls only.
	TotalDurationSeconds   int `json:"total_duration_seconds"`
	AverageDurationSeconds int `json:"average_duration_seconds"`

	ExtractionFailures int `json:"extraction_failures"`
	EmergenciesFlagged int `json:"emergencies_flagged"`

	// DriverStatuses counts check-in results by driver_status.
	DriverStatuses map[string]int `json:"driver_statuses"`
}
