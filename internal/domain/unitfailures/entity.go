package unitfailures

import "time"

// UnitFailure is a persisted diagnostic row for a unit that stayed failed in
// some round of a run.
type UnitFailure struct {
	ID          int64     `json:"id"`
	TenantID    string    `json:"tenant_id"`
	RunID       string    `json:"run_id"`
	UnitID      string    `json:"unit_id"`
	Round       int       `json:"round"`
	Message     string    `json:"message"`
	RawSnippet  string    `json:"raw_snippet,omitempty"` // truncated raw model text
	CreatedAt   time.Time `json:"created_at"`
}
