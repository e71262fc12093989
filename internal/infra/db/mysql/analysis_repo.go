package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	domain "github.com/bryanwahyu/docwiki/internal/domain/analysis"
)

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Save stores one analysis record as JSON, keyed by unit within a run.
func (r *AnalysisRepository) Save(ctx context.Context, tenant, runID string, rec *domain.Record) error {
	const q = `
INSERT INTO unit_analyses
  (unit_id, tenant_id, run_id, result_json, created_at)
VALUES (?,?,?,?,?)
ON DUPLICATE KEY UPDATE
  run_id=VALUES(run_id), result_json=VALUES(result_json), created_at=VALUES(created_at);
`
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, q,
		stringOrDash(rec.ID),
		stringOrDash(tenant),
		stringOrDash(runID),
		string(b),
		time.Now(),
	)
	return err
}

// Paginate returns a page of stored records ordered by created_at desc.
func (r *AnalysisRepository) Paginate(ctx context.Context, tenant string, page, pageSize int) ([]*domain.StoredRecord, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	const q = `
SELECT unit_id, tenant_id, run_id, result_json, created_at
FROM unit_analyses
WHERE tenant_id=?
ORDER BY created_at DESC, unit_id DESC
LIMIT ? OFFSET ?;
`
	rows, err := r.db.QueryContext(ctx, q, tenant, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.StoredRecord
	for rows.Next() {
		var rec domain.StoredRecord
		var created time.Time
		if err := rows.Scan(&rec.UnitID, &rec.TenantID, &rec.RunID, &rec.Result, &created); err != nil {
			return nil, err
		}
		rec.CreatedAt = created
		out = append(out, &rec)
	}
	return out, rows.Err()
}

// LatestByUnit returns the newest stored record for one unit.
func (r *AnalysisRepository) LatestByUnit(ctx context.Context, tenant, unitID string) (*domain.StoredRecord, error) {
	const q = `
SELECT unit_id, tenant_id, run_id, result_json, created_at
FROM unit_analyses
WHERE tenant_id=? AND unit_id=?
ORDER BY created_at DESC
LIMIT 1;`
	row := r.db.QueryRowContext(ctx, q, tenant, unitID)
	var rec domain.StoredRecord
	var created time.Time
	if err := row.Scan(&rec.UnitID, &rec.TenantID, &rec.RunID, &rec.Result, &created); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	rec.CreatedAt = created
	return &rec, nil
}
