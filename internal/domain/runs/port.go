package runs

import "context"

// Repository port for run persistence.
type Repository interface {
	Save(ctx context.Context, r *Run) error
	Get(ctx context.Context, tenant string, id RunID) (*Run, error)
	Latest(ctx context.Context, tenant string, limit int) ([]*Run, error)
	UpdateStatus(ctx context.Context, tenant string, id RunID, status Status) error
	Summary(ctx context.Context, tenant string, sinceDays int) (total, analyzed, failed int, err error)
}

// ArtifactStore port for the per-run analysis bundle.
type ArtifactStore interface {
	Upload(ctx context.Context, localPath, key string) (string, error)
	UploadAndCleanup(ctx context.Context, localPath, key string) (string, error)
}
