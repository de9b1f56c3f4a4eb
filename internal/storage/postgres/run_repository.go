package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Agrid-Dev/heatload/internal/report"
)

const schema = `
CREATE TABLE IF NOT EXISTS heatload_runs (
	id           UUID PRIMARY KEY,
	project_id   TEXT NOT NULL,
	total_load_w DOUBLE PRECISION NOT NULL,
	room_count   INTEGER NOT NULL,
	summary      JSONB NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS heatload_runs_project_created_idx
	ON heatload_runs (project_id, created_at DESC);`

// ErrNoRuns is returned by Latest when a project has no recorded run.
var ErrNoRuns = errors.New("no recorded runs")

// Run is one recorded calculation.
type Run struct {
	ID             string
	ProjectID      string
	TotalHeatLoadW float64
	RoomCount      int
	Summary        report.Summary
	CreatedAt      time.Time
}

// RunRepository persists calculation runs.
type RunRepository struct {
	db  *sql.DB
	now func() time.Time
}

// Open connects through the pgx database/sql driver and checks the
// connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return db, nil
}

func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// EnsureSchema creates the runs table when missing.
func (r *RunRepository) EnsureSchema(ctx context.Context) error {
	if r == nil || r.db == nil {
		return errors.New("run repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

// Save stores s as a new run.
func (r *RunRepository) Save(ctx context.Context, s report.Summary) error {
	_, err := r.Insert(ctx, s)
	return err
}

// Insert stores s and returns the recorded run.
func (r *RunRepository) Insert(ctx context.Context, s report.Summary) (Run, error) {
	if r == nil || r.db == nil {
		return Run{}, errors.New("run repo: nil db")
	}
	payload, err := json.Marshal(s)
	if err != nil {
		return Run{}, fmt.Errorf("run repo: encode summary: %w", err)
	}
	run := Run{
		ID:             uuid.NewString(),
		ProjectID:      s.ProjectID,
		TotalHeatLoadW: s.TotalHeatLoadW,
		RoomCount:      len(s.Rooms),
		Summary:        s,
		CreatedAt:      r.now(),
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO heatload_runs (id, project_id, total_load_w, room_count, summary, created_at)
VALUES ($1,$2,$3,$4,$5,$6)`,
		run.ID, run.ProjectID, run.TotalHeatLoadW, run.RoomCount, payload, run.CreatedAt,
	)
	if err != nil {
		return Run{}, fmt.Errorf("run repo: insert: %w", err)
	}
	return run, nil
}

// Latest returns the newest run of a project.
func (r *RunRepository) Latest(ctx context.Context, projectID string) (Run, error) {
	if r == nil || r.db == nil {
		return Run{}, errors.New("run repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, project_id, total_load_w, room_count, summary, created_at
FROM heatload_runs
WHERE project_id = $1
ORDER BY created_at DESC
LIMIT 1`, projectID)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w for project %q", ErrNoRuns, projectID)
	}
	return run, err
}

// List returns the newest runs first. An empty projectID lists all
// projects.
func (r *RunRepository) List(ctx context.Context, projectID string, limit int) ([]Run, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("run repo: nil db")
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, project_id, total_load_w, room_count, summary, created_at
FROM heatload_runs
WHERE $1 = '' OR project_id = $1
ORDER BY created_at DESC
LIMIT $2`, projectID, limit)
	if err != nil {
		return nil, fmt.Errorf("run repo: list: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run     Run
		payload []byte
	)
	if err := row.Scan(&run.ID, &run.ProjectID, &run.TotalHeatLoadW, &run.RoomCount, &payload, &run.CreatedAt); err != nil {
		return Run{}, err
	}
	if err := json.Unmarshal(payload, &run.Summary); err != nil {
		return Run{}, fmt.Errorf("run repo: decode summary %s: %w", run.ID, err)
	}
	return run, nil
}
