package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marketsift/sift/internal/contracts"
)

// ErrNotFound is returned when no stored run matches a lookup.
var ErrNotFound = errors.New("run not found")

// Run is a stored screening run: the full result plus the strategy it
// was produced under. Runs are append-only; re-running a model writes
// a new run rather than touching an old one.
type Run struct {
	ID           int64            `json:"id"`
	StrategyID   string           `json:"strategy_id"`
	StrategyHash string           `json:"strategy_hash"`
	CreatedAt    time.Time        `json:"created_at"`
	Result       contracts.Result `json:"result"`
}

// Repository persists screening runs.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository instance.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var schemaStatements = []string{
	`CREATE SCHEMA IF NOT EXISTS screening`,
	`CREATE TABLE IF NOT EXISTS screening.runs (
		id            BIGSERIAL PRIMARY KEY,
		model         TEXT NOT NULL,
		strategy_id   TEXT NOT NULL,
		strategy_hash TEXT NOT NULL,
		started_at    TIMESTAMPTZ NOT NULL,
		elapsed_ms    BIGINT NOT NULL,
		total_symbols INT NOT NULL,
		included      INT NOT NULL,
		excluded      INT NOT NULL,
		spec          JSONB NOT NULL,
		exclusions    JSONB NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_runs_model_created
		ON screening.runs (model, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS screening.run_rows (
		run_id           BIGINT NOT NULL REFERENCES screening.runs(id) ON DELETE CASCADE,
		rank             INT NOT NULL,
		symbol           TEXT NOT NULL,
		components       JSONB NOT NULL,
		fractional_ranks JSONB,
		combined_rank    DOUBLE PRECISION,
		PRIMARY KEY (run_id, rank)
	)`,
}

// EnsureSchema creates the screening tables when they do not exist
// yet. Statements are idempotent, so running it at every startup is
// safe.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// SaveRun stores a finished result with its strategy identity and
// returns the new run id. The run header and its rows commit
// together or not at all.
func (r *Repository) SaveRun(ctx context.Context, result *contracts.Result, strategyID, strategyHash string) (int64, error) {
	specJSON, err := json.Marshal(result.Spec)
	if err != nil {
		return 0, fmt.Errorf("marshal spec: %w", err)
	}
	exclusionsJSON, err := json.Marshal(result.Stats.Reasons)
	if err != nil {
		return 0, fmt.Errorf("marshal exclusions: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var runID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO screening.runs (
			model, strategy_id, strategy_hash, started_at, elapsed_ms,
			total_symbols, included, excluded, spec, exclusions
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`,
		result.Model, strategyID, strategyHash,
		result.StartedAt, result.Elapsed.Milliseconds(),
		result.Stats.TotalSymbols, result.Stats.Included, result.Stats.Excluded,
		specJSON, exclusionsJSON,
	).Scan(&runID)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}

	rowQuery := `
		INSERT INTO screening.run_rows (
			run_id, rank, symbol, components, fractional_ranks, combined_rank
		) VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, row := range result.Rows {
		componentsJSON, err := json.Marshal(row.Components)
		if err != nil {
			return 0, fmt.Errorf("marshal components for %s: %w", row.Symbol, err)
		}
		var ranksJSON []byte
		if len(row.FractionalRanks) > 0 {
			ranksJSON, err = json.Marshal(row.FractionalRanks)
			if err != nil {
				return 0, fmt.Errorf("marshal ranks for %s: %w", row.Symbol, err)
			}
		}

		if _, err := tx.Exec(ctx, rowQuery,
			runID, row.Rank, row.Symbol, componentsJSON, ranksJSON, row.CombinedRank,
		); err != nil {
			return 0, fmt.Errorf("insert row %s: %w", row.Symbol, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit run: %w", err)
	}

	return runID, nil
}

// LatestRun returns the most recently stored run for a model.
func (r *Repository) LatestRun(ctx context.Context, model string) (*Run, error) {
	return r.queryRun(ctx, `
		SELECT id, model, strategy_id, strategy_hash, started_at, elapsed_ms,
			total_symbols, included, excluded, spec, exclusions, created_at
		FROM screening.runs
		WHERE model = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, model)
}

// GetRun returns a stored run by id.
func (r *Repository) GetRun(ctx context.Context, id int64) (*Run, error) {
	return r.queryRun(ctx, `
		SELECT id, model, strategy_id, strategy_hash, started_at, elapsed_ms,
			total_symbols, included, excluded, spec, exclusions, created_at
		FROM screening.runs
		WHERE id = $1
	`, id)
}

func (r *Repository) queryRun(ctx context.Context, query string, arg interface{}) (*Run, error) {
	run := &Run{}
	var elapsedMS int64
	var specJSON, exclusionsJSON []byte

	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&run.ID, &run.Result.Model, &run.StrategyID, &run.StrategyHash,
		&run.Result.StartedAt, &elapsedMS,
		&run.Result.Stats.TotalSymbols, &run.Result.Stats.Included, &run.Result.Stats.Excluded,
		&specJSON, &exclusionsJSON, &run.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}

	run.Result.Elapsed = time.Duration(elapsedMS) * time.Millisecond
	if err := json.Unmarshal(specJSON, &run.Result.Spec); err != nil {
		return nil, fmt.Errorf("unmarshal spec: %w", err)
	}
	run.Result.Stats.Reasons = make(map[string][]string)
	if len(exclusionsJSON) > 0 {
		if err := json.Unmarshal(exclusionsJSON, &run.Result.Stats.Reasons); err != nil {
			return nil, fmt.Errorf("unmarshal exclusions: %w", err)
		}
	}

	rows, err := r.loadRows(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	run.Result.Rows = rows

	return run, nil
}

func (r *Repository) loadRows(ctx context.Context, runID int64) ([]contracts.Row, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT rank, symbol, components, fractional_ranks, combined_rank
		FROM screening.run_rows
		WHERE run_id = $1
		ORDER BY rank
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run rows: %w", err)
	}
	defer rows.Close()

	result := make([]contracts.Row, 0)
	for rows.Next() {
		var row contracts.Row
		var componentsJSON, ranksJSON []byte

		if err := rows.Scan(&row.Rank, &row.Symbol, &componentsJSON, &ranksJSON, &row.CombinedRank); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		if err := json.Unmarshal(componentsJSON, &row.Components); err != nil {
			return nil, fmt.Errorf("unmarshal components: %w", err)
		}
		if len(ranksJSON) > 0 {
			if err := json.Unmarshal(ranksJSON, &row.FractionalRanks); err != nil {
				return nil, fmt.Errorf("unmarshal ranks: %w", err)
			}
		}

		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}

	return result, nil
}
