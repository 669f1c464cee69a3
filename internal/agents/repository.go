package agents

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"dispatch-voice/internal/scenario"
)

var ErrNotFound = errors.New("agents: config not found")

// Repository is the persistence contract for agent configurations.
type Repository interface {
	Create(ctx context.Context, c Config) error
	Get(ctx context.Context, id string) (Config, error)
	List(ctx context.Context, limit int) ([]Config, error)
}

// PostgresRepo stores configs in the agent_configurations table.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Create(ctx context.Context, c Config) error {
	const q = `
INSERT INTO agent_configurations (id, name, system_prompt, scenario_type, settings, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
`
	if c.Settings == nil {
		c.Settings = Settings{}
	}
	settings, err := json.Marshal(c.Settings)
	if err != nil {
		return fmt.Errorf("agents: encode settings: %w", err)
	}
	_, err = r.db.ExecContext(ctx, q,
		c.ID,
		c.Name,
		c.SystemPrompt,
		string(c.ScenarioType),
		settings,
		c.CreatedAt,
	)
	return err
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (Config, error) {
	const q = `
SELECT id, name, system_prompt, scenario_type, settings, created_at
FROM agent_configurations
WHERE id = $1
`
	c, err := scanConfig(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Config{}, ErrNotFound
		}
		return Config{}, err
	}
	return c, nil
}

func (r *PostgresRepo) List(ctx context.Context, limit int) ([]Config, error) {
	const q = `
SELECT id, name, system_prompt, scenario_type, settings, created_at
FROM agent_configurations
ORDER BY created_at DESC
LIMIT $1
`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Config, 0)
	for rows.Next() {
		c, err := scanConfig(rows)
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

func scanConfig(row rowScanner) (Config, error) {
	var (
		c        Config
		typ      string
		settings []byte
	)
	if err := row.Scan(&c.ID, &c.Name, &c.SystemPrompt, &typ, &settings, &c.CreatedAt); err != nil {
		return Config{}, err
	}
	c.ScenarioType = scenario.Type(typ)
	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &c.Settings); err != nil {
			return Config{}, fmt.Errorf("agents: decode settings: %w", err)
		}
	}
	return c, nil
}
