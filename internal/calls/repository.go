package calls

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var ErrNotFound = errors.New("calls: call log not found")

// Repository is the persistence contract for call logs.
//
// Transitions are conditional: MarkInProgress and Complete report false when
// the log was not in a state that allows the write.
type Repository interface {
	Create(ctx context.Context, c CallLog) error
	Get(ctx context.Context, id string) (CallLog, error)
	GetByProviderCallID(ctx context.Context, providerCallID string) (CallLog, error)

	// MarkInProgress records the provider call id and moves an initiated log to in_progress.
	MarkInProgress(ctx context.Context, id, providerCallID string, at time.Time) (bool, error)
	// Complete writes the completion fields on a non-terminal log.
	Complete(ctx context.Context, id string, c Completion) (bool, error)

	List(ctx context.Context, limit int) ([]CallLog, error)
	// ListBetween returns logs started in [from, to).
	ListBetween(ctx context.Context, from, to time.Time) ([]CallLog, error)
}

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

const selectColumns = `
SELECT id, agent_config_id, provider_call_id, driver_name, driver_phone, load_number,
       call_status, started_at, completed_at, call_duration, full_transcript, structured_data, updated_at
FROM call_logs
`

func (r *PostgresRepo) Create(ctx context.Context, c CallLog) error {
	const q = `
INSERT INTO call_logs (id, agent_config_id, provider_call_id, driver_name, driver_phone, load_number,
                       call_status, started_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`
	_, err := r.db.ExecContext(ctx, q,
		c.ID,
		c.AgentConfigID,
		nullString(c.ProviderCallID),
		c.DriverName,
		c.DriverPhone,
		c.LoadNumber,
		string(c.Status),
		c.StartedAt,
		c.UpdatedAt,
	)
	return err
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (CallLog, error) {
	return r.getOne(ctx, selectColumns+`WHERE id = $1`, id)
}

func (r *PostgresRepo) GetByProviderCallID(ctx context.Context, providerCallID string) (CallLog, error) {
	return r.getOne(ctx, selectColumns+`WHERE provider_call_id = $1`, providerCallID)
}

func (r *PostgresRepo) getOne(ctx context.Context, q string, arg string) (CallLog, error) {
	c, err := scanCallLog(r.db.QueryRowContext(ctx, q, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CallLog{}, ErrNotFound
		}
		return CallLog{}, err
	}
	return c, nil
}

func (r *PostgresRepo) MarkInProgress(ctx context.Context, id, providerCallID string, at time.Time) (bool, error) {
	const q = `
UPDATE call_logs
SET provider_call_id = $2, call_status = 'in_progress', updated_at = $3
WHERE id = $1 AND call_status = 'initiated' AND provider_call_id IS NULL
`
	res, err := r.db.ExecContext(ctx, q, id, providerCallID, at)
	if err != nil {
		return false, err
	}
	return affected(res)
}

func (r *PostgresRepo) Complete(ctx context.Context, id string, c Completion) (bool, error) {
	const q = `
UPDATE call_logs
SET call_status = 'completed',
    completed_at = $2,
    call_duration = $3,
    full_transcript = $4,
    structured_data = $5,
    provider_call_id = COALESCE(provider_call_id, $6::text),
    updated_at = $2
WHERE id = $1
  AND call_status NOT IN ('completed', 'failed')
  AND (provider_call_id IS NULL OR $6::text IS NULL OR provider_call_id = $6)
`
	res, err := r.db.ExecContext(ctx, q,
		id,
		c.CompletedAt,
		c.Duration,
		c.Transcript,
		nullJSON(c.StructuredData),
		nullString(c.ProviderCallID),
	)
	if err != nil {
		return false, err
	}
	return affected(res)
}

func (r *PostgresRepo) List(ctx context.Context, limit int) ([]CallLog, error) {
	return r.query(ctx, selectColumns+`ORDER BY started_at DESC LIMIT $1`, limit)
}

func (r *PostgresRepo) ListBetween(ctx context.Context, from, to time.Time) ([]CallLog, error) {
	return r.query(ctx, selectColumns+`WHERE started_at >= $1 AND started_at < $2 ORDER BY started_at`, from, to)
}

func (r *PostgresRepo) query(ctx context.Context, q string, args ...any) ([]CallLog, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]CallLog, 0)
	for rows.Next() {
		c, err := scanCallLog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCallLog(row rowScanner) (CallLog, error) {
	var (
		c           CallLog
		status      string
		providerID  sql.NullString
		completedAt sql.NullTime
		duration    sql.NullInt64
		transcript  sql.NullString
		structured  []byte
	)
	err := row.Scan(
		&c.ID,
		&c.AgentConfigID,
		&providerID,
		&c.DriverName,
		&c.DriverPhone,
		&c.LoadNumber,
		&status,
		&c.StartedAt,
		&completedAt,
		&duration,
		&transcript,
		&structured,
		&c.UpdatedAt,
	)
	if err != nil {
		return CallLog{}, err
	}
	c.Status = CallStatus(status)
	c.ProviderCallID = providerID.String
	if completedAt.Valid {
		t := completedAt.Time
		c.CompletedAt = &t
	}
	if duration.Valid {
		d := int(duration.Int64)
		c.CallDuration = &d
	}
	if transcript.Valid {
		s := transcript.String
		c.FullTranscript = &s
	}
	if len(structured) > 0 {
		c.StructuredData = structured
	}
	return c, nil
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
