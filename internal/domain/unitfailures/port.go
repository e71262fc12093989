package unitfailures

import "context"

// Repository defines persistence for unit failure diagnostics.
type Repository interface {
	Save(ctx context.Context, f *UnitFailure) error
	ListByRun(ctx context.Context, tenant, runID string, limit int) ([]*UnitFailure, error)
}
