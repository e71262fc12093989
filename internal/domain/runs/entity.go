package runs

import "time"

// RunID identifier type
type RunID string

// Status enum
type Status string

const (
	StatusQueued  Status = "queued"
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusPartial Status = "partial" // some units analyzed, some failed
	StatusFailed  Status = "failed"
	StatusError   Status = "error"
)

// UnitCounts value object
type UnitCounts struct {
	Total    int `json:"total"`
	Analyzed int `json:"analyzed"`
	Failed   int `json:"failed"`
}

// Aggregate root: one batch analysis run for a tenant's project.
type Run struct {
	ID          RunID      `json:"id"`
	TenantID    string     `json:"tenant_id"`
	Project     string     `json:"project"`
	TriggeredAt time.Time  `json:"triggered_at"`
	Status      Status     `json:"status"`
	Counts      UnitCounts `json:"counts"`
	ArtifactURL string     `json:"artifact_url,omitempty"`
	DurationMS  int64      `json:"duration_ms"`
	Metadata    any        `json:"metadata,omitempty"`
}

// StatusFor derives the terminal run status from the unit counts.
func StatusFor(c UnitCounts) Status {
	switch {
	case c.Total == 0 || c.Failed == 0:
		return StatusSuccess
	case c.Analyzed == 0:
		return StatusFailed
	default:
		return StatusPartial
	}
}
