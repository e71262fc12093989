package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	_ "github.com/lib/pq"

	domain "github.com/bryanwahyu/docwiki/internal/domain/analysis"
)

// AnalysisRepository is the Postgres twin of the MySQL repository, for
// deployments that already run on Postgres.
type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

func (r *AnalysisRepository) Save(ctx context.Context, tenant, runID string, rec *domain.Record) error {
	const q = `
INSERT INTO unit_analyses
  (unit_id, tenant_id, run_id, result_json, created_at)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (tenant_id, unit_id) DO UPDATE SET
  run_id=EXCLUDED.run_id,
  result_json=EXCLUDED.result_json,
  created_at=EXCLUDED.created_at;
`
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, q, dashIfEmpty(rec.ID), dashIfEmpty(tenant), dashIfEmpty(runID), string(b), time.Now())
	return err
}

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
WHERE tenant_id=$1
ORDER BY created_at DESC, unit_id DESC
LIMIT $2 OFFSET $3;
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

func (r *AnalysisRepository) LatestByUnit(ctx context.Context, tenant, unitID string) (*domain.StoredRecord, error) {
	const q = `
SELECT unit_id, tenant_id, run_id, result_json, created_at
FROM unit_analyses
WHERE tenant_id=$1 AND unit_id=$2
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

func dashIfEmpty(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
