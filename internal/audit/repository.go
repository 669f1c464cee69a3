package audit

import (
	"context"
	"database/sql"
)

// Repository is the persistence contract for call events.
//
// It is append-only: there are no Update or Delete methods.
type Repository interface {
	Append(ctx context.Context, e Event) error
	// ListByCall returns a call's events oldest first.
	ListByCall(ctx context.Context, callLogID string) ([]Event, error)
}

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	const q = `
INSERT INTO call_events (id, call_log_id, type, message, metadata, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
`
	var metadata any
	if e.Metadata != "" {
		metadata = e.Metadata
	}
	_, err := r.db.ExecContext(ctx, q, e.ID, e.CallLogID, string(e.Type), e.Message, metadata, e.CreatedAt)
	return err
}

func (r *PostgresRepo) ListByCall(ctx context.Context, callLogID string) ([]Event, error) {
	const q = `
SELECT id, call_log_id, type, message, metadata, created_at
FROM call_events
WHERE call_log_id = $1
ORDER BY created_at, id
`
	rows, err := r.db.QueryContext(ctx, q, callLogID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Event, 0)
	for rows.Next() {
		var (
			e        Event
			typ      string
			metadata sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.CallLogID, &typ, &e.Message, &metadata, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Type = EventType(typ)
		e.Metadata = metadata.String
		out = append(out, e)
	}
	return out, rows.Err()
}
