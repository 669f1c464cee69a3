package audit

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidEvent = errors.New("audit: invalid event")

// Service records call lifecycle events.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.CallLogID == "" || e.Type == "" {
		return ErrInvalidEvent
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	return s.repo.Append(ctx, e)
}

// Record appends an event, encoding details as the metadata JSON.
func (s *Service) Record(ctx context.Context, callLogID string, typ EventType, message string, details map[string]any) error {
	e := Event{CallLogID: callLogID, Type: typ, Message: message}
	if len(details) > 0 {
		raw, err := json.Marshal(details)
		if err != nil {
			return err
		}
		e.Metadata = string(raw)
	}
	return s.Append(ctx, e)
}

func (s *Service) ListByCall(ctx context.Context, callLogID string) ([]Event, error) {
	if s.repo == nil {
		return nil, errors.New("audit: repository not configured")
	}
	return s.repo.ListByCall(ctx, callLogID)
}
