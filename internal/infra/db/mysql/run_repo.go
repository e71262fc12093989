package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	domain "github.com/bryanwahyu/docwiki/internal/domain/runs"
)

type RunRepository struct {
	db *sql.DB
}

func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Save upserts a run row; result columns are overwritten on conflict so the
// same row can move from running to its terminal status.
func (r *RunRepository) Save(ctx context.Context, run *domain.Run) error {
	const q = `
INSERT INTO analysis_runs
  (id, tenant_id, project, triggered_at, status, units_total, units_analyzed, units_failed, artifact_url, duration_ms, metadata_json)
VALUES (?,?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
  status=VALUES(status), units_total=VALUES(units_total), units_analyzed=VALUES(units_analyzed),
  units_failed=VALUES(units_failed), artifact_url=VALUES(artifact_url), duration_ms=VALUES(duration_ms),
  metadata_json=VALUES(metadata_json);
`
	meta := "{}"
	if run.Metadata != nil {
		if b, err := json.Marshal(run.Metadata); err == nil {
			meta = string(b)
		}
	}
	triggered := run.TriggeredAt
	if triggered.IsZero() {
		triggered = time.Now()
	}

	_, err := r.db.ExecContext(ctx, q,
		run.ID,
		stringOrDash(run.TenantID),
		stringOrDash(run.Project),
		triggered,
		run.Status,
		run.Counts.Total,
		run.Counts.Analyzed,
		run.Counts.Failed,
		run.ArtifactURL,
		run.DurationMS,
		meta,
	)
	return err
}

func (r *RunRepository) Get(ctx context.Context, tenant string, id domain.RunID) (*domain.Run, error) {
	const q = `
SELECT id, tenant_id, project, triggered_at, status, units_total, units_analyzed, units_failed, artifact_url, duration_ms
FROM analysis_runs
WHERE tenant_id=? AND id=?;`
	row := r.db.QueryRowContext(ctx, q, tenant, id)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return run, err
}

func (r *RunRepository) Latest(ctx context.Context, tenant string, limit int) ([]*domain.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, tenant_id, project, triggered_at, status, units_total, units_analyzed, units_failed, artifact_url, duration_ms
FROM analysis_runs
WHERE tenant_id=?
ORDER BY triggered_at DESC, id DESC
LIMIT ?;`
	rows, err := r.db.QueryContext(ctx, q, tenant, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

func (r *RunRepository) UpdateStatus(ctx context.Context, tenant string, id domain.RunID, status domain.Status) error {
	const q = `UPDATE analysis_runs SET status=? WHERE tenant_id=? AND id=?;`
	_, err := r.db.ExecContext(ctx, q, status, tenant, id)
	return err
}

func (r *RunRepository) Summary(ctx context.Context, tenant string, sinceDays int) (int, int, int, error) {
	if sinceDays <= 0 {
		sinceDays = 7
	}
	const q = `
SELECT COUNT(*), COALESCE(SUM(units_analyzed),0), COALESCE(SUM(units_failed),0)
FROM analysis_runs
WHERE tenant_id=? AND triggered_at >= DATE_SUB(NOW(), INTERVAL ? DAY);`
	var total, analyzed, failed int
	err := r.db.QueryRowContext(ctx, q, tenant, sinceDays).Scan(&total, &analyzed, &failed)
	return total, analyzed, failed, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*domain.Run, error) {
	var run domain.Run
	var triggered time.Time
	if err := row.Scan(
		&run.ID, &run.TenantID, &run.Project, &triggered, &run.Status,
		&run.Counts.Total, &run.Counts.Analyzed, &run.Counts.Failed,
		&run.ArtifactURL, &run.DurationMS,
	); err != nil {
		return nil, err
	}
	run.TriggeredAt = triggered
	return &run, nil
}
