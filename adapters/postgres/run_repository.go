package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"rarefy/domain/core"
	"rarefy/domain/rarefaction"
	apperrors "rarefy/internal/errors"
	"rarefy/ports"
)

// runRepository implements the RunRepository interface
type runRepository struct {
	db *sqlx.DB
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *sqlx.DB) ports.RunRepository {
	return &runRepository{db: db}
}

// Migrate creates the rarefaction_runs table if it does not exist.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	schema := `CREATE TABLE IF NOT EXISTS rarefaction_runs (
		id TEXT PRIMARY KEY,
		fingerprint JSONB NOT NULL,
		config JSONB NOT NULL,
		result JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return apperrors.Wrap(err, "creating rarefaction_runs table")
	}
	return nil
}

// Save stores a completed run
func (r *runRepository) Save(ctx context.Context, run *rarefaction.Run) error {
	configJSON, err := json.Marshal(run.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	resultJSON, err := json.Marshal(run.Result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	fingerprintJSON, err := json.Marshal(run.Fingerprint)
	if err != nil {
		return fmt.Errorf("failed to marshal fingerprint: %w", err)
	}

	query := `INSERT INTO rarefaction_runs (
		id, fingerprint, config, result, created_at
	) VALUES ($1, $2, $3, $4, $5)`

	_, err = r.db.ExecContext(ctx, query,
		run.ID.String(), fingerprintJSON, configJSON, resultJSON, run.CreatedAt,
	)
	if err != nil {
		return apperrors.WithCode(apperrors.CodeDatabaseError, fmt.Errorf("failed to save run: %w", err))
	}
	return nil
}

// GetByID retrieves a run by its identifier
func (r *runRepository) GetByID(ctx context.Context, id core.RunID) (*rarefaction.Run, error) {
	query := `SELECT id, fingerprint, config, result, created_at FROM rarefaction_runs WHERE id = $1`

	var (
		run             rarefaction.Run
		idStr           string
		fingerprintJSON []byte
		configJSON      []byte
		resultJSON      []byte
	)
	err := r.db.QueryRowContext(ctx, query, id.String()).Scan(&idStr, &fingerprintJSON, &configJSON, &resultJSON, &run.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound(fmt.Sprintf("run %s", id))
	}
	if err != nil {
		return nil, apperrors.WithCode(apperrors.CodeDatabaseError, fmt.Errorf("failed to fetch run: %w", err))
	}

	run.ID = core.RunID(idStr)
	if err := json.Unmarshal(fingerprintJSON, &run.Fingerprint); err != nil {
		return nil, fmt.Errorf("failed to unmarshal fingerprint: %w", err)
	}
	if err := json.Unmarshal(configJSON, &run.Config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := json.Unmarshal(resultJSON, &run.Result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result: %w", err)
	}
	return &run, nil
}

// List returns the most recent runs, newest first
func (r *runRepository) List(ctx context.Context, limit int) ([]*rarefaction.Run, error) {
	if limit < 1 {
		limit = 20
	}
	query := `SELECT id FROM rarefaction_runs ORDER BY created_at DESC LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, apperrors.WithCode(apperrors.CodeDatabaseError, fmt.Errorf("failed to list runs: %w", err))
	}
	defer rows.Close()

	var runs []*rarefaction.Run
	for rows.Next() {
		var idStr string
		if err := rows.Scan(&idStr); err != nil {
			return nil, apperrors.WithCode(apperrors.CodeDatabaseError, fmt.Errorf("failed to scan run id: %w", err))
		}
		run, err := r.GetByID(ctx, core.RunID(idStr))
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
