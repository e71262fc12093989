package mysql

import (
	"context"
	"database/sql"
	"strings"
	"time"

	domain "github.com/bryanwahyu/docwiki/internal/domain/unitfailures"
)

type UnitFailureRepository struct {
	db *sql.DB
}

func NewUnitFailureRepository(db *sql.DB) *UnitFailureRepository {
	return &UnitFailureRepository{db: db}
}

func (r *UnitFailureRepository) Save(ctx context.Context, f *domain.UnitFailure) error {
	const q = `
INSERT INTO unit_analysis_failures
  (tenant_id, run_id, unit_id, round, message, raw_snippet, created_at)
VALUES (?,?,?,?,?,?,?)
`
	msg := f.Message
	if strings.TrimSpace(msg) == "" {
		msg = "-"
	}
	created := f.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		stringOrDash(f.TenantID),
		stringOrDash(f.RunID),
		stringOrDash(f.UnitID),
		f.Round,
		msg,
		f.RawSnippet,
		created,
	)
	return err
}

func (r *UnitFailureRepository) ListByRun(ctx context.Context, tenant, runID string, limit int) ([]*domain.UnitFailure, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `
SELECT id, tenant_id, run_id, unit_id, round, message, raw_snippet, created_at
FROM unit_analysis_failures
WHERE tenant_id=? AND run_id=?
ORDER BY created_at DESC, id DESC
LIMIT ?;`
	rows, err := r.db.QueryContext(ctx, q, tenant, runID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.UnitFailure
	for rows.Next() {
		var f domain.UnitFailure
		var created time.Time
		if err := rows.Scan(&f.ID, &f.TenantID, &f.RunID, &f.UnitID, &f.Round, &f.Message, &f.RawSnippet, &created); err != nil {
			return nil, err
		}
		f.CreatedAt = created
		out = append(out, &f)
	}
	return out, rows.Err()
}
