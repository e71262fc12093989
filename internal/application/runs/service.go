package runs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/bryanwahyu/docwiki/internal/application"
	analysisdom "github.com/bryanwahyu/docwiki/internal/domain/analysis"
	domain "github.com/bryanwahyu/docwiki/internal/domain/runs"
	"github.com/bryanwahyu/docwiki/internal/domain/unitfailures"
)

// Orchestrator is the batch analysis entrypoint consumed by this service.
// Satisfied by the application/analysis Service.
type Orchestrator interface {
	Run(ctx context.Context, units []analysisdom.Unit, gctx analysisdom.GraphContext) (analysisdom.BatchResult, error)
}

// Service implements the run use-cases. It is safe for concurrent use.
type Service struct {
	Repo         domain.Repository
	Analyses     analysisdom.Repository
	Failures     unitfailures.Repository
	Artifacts    domain.ArtifactStore
	Orchestrator Orchestrator
	Clock        application.Clock
}

// Command to trigger a batch analysis run.
type TriggerRunCommand struct {
	TenantID          string
	Project           string
	ArchitectureNotes string
	Units             []analysisdom.Unit
	Metadata          any
}

type TriggerRunResult struct {
	ID            string            `json:"id"`
	Status        string            `json:"status"`
	Counts        domain.UnitCounts `json:"counts"`
	ArtifactURL   string            `json:"artifact_url"`
	DurationMS    int64             `json:"duration_ms"`
	FailedUnitIDs []string          `json:"failed_unit_ids"`
}

// TriggerRunUntilDone runs with context.Background() so a run kicked off from
// a request handler keeps going after the response is written.
func (s *Service) TriggerRunUntilDone(cmd TriggerRunCommand) (TriggerRunResult, error) {
	return s.TriggerRun(context.Background(), cmd)
}

// TriggerRun executes the orchestrator, persists every analysis record and
// failure diagnostic, uploads the bundle artifact and stores the final run row.
func (s *Service) TriggerRun(ctx context.Context, cmd TriggerRunCommand) (TriggerRunResult, error) {
	now := s.Clock.Now()
	id := uuid.New().String()

	initial := &domain.Run{
		ID:          domain.RunID(id),
		TenantID:    cmd.TenantID,
		Project:     cmd.Project,
		TriggeredAt: now,
		Status:      domain.StatusRunning,
		Counts:      domain.UnitCounts{Total: len(cmd.Units)},
		Metadata:    cmd.Metadata,
	}
	if err := s.Repo.Save(ctx, initial); err != nil {
		return TriggerRunResult{ID: id, Status: string(domain.StatusError)}, err
	}

	gctx := analysisdom.GraphContext{
		ProjectName:       cmd.Project,
		ArchitectureNotes: cmd.ArchitectureNotes,
	}
	res, err := s.Orchestrator.Run(ctx, cmd.Units, gctx)
	if err != nil {
		_ = s.Repo.UpdateStatus(context.Background(), cmd.TenantID, domain.RunID(id), domain.StatusError)
		return TriggerRunResult{ID: id, Status: string(domain.StatusError)}, err
	}

	for _, rec := range res.Analyses {
		_ = s.Analyses.Save(ctx, cmd.TenantID, id, rec)
	}
	for _, f := range res.FailureDetails {
		_ = s.Failures.Save(ctx, &unitfailures.UnitFailure{
			TenantID:   cmd.TenantID,
			RunID:      id,
			UnitID:     f.UnitID,
			Round:      f.Round,
			Message:    f.Message,
			RawSnippet: f.RawSnippet,
			CreatedAt:  s.Clock.Now(),
		})
	}

	counts := domain.UnitCounts{
		Total:    len(cmd.Units),
		Analyzed: len(res.Analyses),
		Failed:   len(res.FailedUnitIDs),
	}

	url, err := s.uploadBundle(ctx, cmd.TenantID, id, res)
	if err != nil {
		return TriggerRunResult{ID: id, Status: string(domain.StatusError)}, err
	}

	run := &domain.Run{
		ID:          domain.RunID(id),
		TenantID:    cmd.TenantID,
		Project:     cmd.Project,
		TriggeredAt: now,
		Status:      domain.StatusFor(counts),
		Counts:      counts,
		ArtifactURL: url,
		DurationMS:  res.DurationMS,
		Metadata:    cmd.Metadata,
	}
	if err := s.Repo.Save(ctx, run); err != nil {
		return TriggerRunResult{ID: id, Status: string(run.Status)}, err
	}

	return TriggerRunResult{
		ID:            id,
		Status:        string(run.Status),
		Counts:        counts,
		ArtifactURL:   url,
		DurationMS:    res.DurationMS,
		FailedUnitIDs: res.FailedUnitIDs,
	}, nil
}

// uploadBundle writes the whole batch result to a local file and hands it to
// the artifact store, which removes the file after upload.
func (s *Service) uploadBundle(ctx context.Context, tenant, runID string, res analysisdom.BatchResult) (string, error) {
	tempDir := filepath.Join(".", "temp")
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(tempDir, fmt.Sprintf("analyses-%s.json", runID))

	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s/%s/%s", tenant, runID, filepath.Base(path))
	url, err := s.Artifacts.UploadAndCleanup(ctx, path, key)
	if err != nil {
		os.Remove(path)
		return "", err
	}
	return url, nil
}

// Latest returns the last N runs.
func (s *Service) Latest(ctx context.Context, tenant string, limit int) ([]*domain.Run, error) {
	return s.Repo.Latest(ctx, tenant, limit)
}

// Get returns one run by id.
func (s *Service) Get(ctx context.Context, tenant string, id domain.RunID) (*domain.Run, error) {
	return s.Repo.Get(ctx, tenant, id)
}

// FailuresByRun lists the persisted failure diagnostics of a run.
func (s *Service) FailuresByRun(ctx context.Context, tenant, runID string, limit int) ([]*unitfailures.UnitFailure, error) {
	return s.Failures.ListByRun(ctx, tenant, runID, limit)
}

// ListAnalyses pages through stored analysis records.
func (s *Service) ListAnalyses(ctx context.Context, tenant string, page, pageSize int) ([]*analysisdom.StoredRecord, error) {
	return s.Analyses.Paginate(ctx, tenant, page, pageSize)
}

// Summary aggregates unit outcomes over the last N days.
func (s *Service) Summary(ctx context.Context, tenant string, sinceDays int) (map[string]any, error) {
	total, analyzed, failed, err := s.Repo.Summary(ctx, tenant, sinceDays)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"total_runs":     total,
		"units_analyzed": analyzed,
		"units_failed":   failed,
	}, nil
}
