package analysis

import "time"

// StoredRecord is the persisted form of a Record, kept as the raw JSON string
// for auditing and retrieval.
type StoredRecord struct {
	UnitID    string    `json:"unit_id"`
	TenantID  string    `json:"tenant_id"`
	RunID     string    `json:"run_id"`
	Result    string    `json:"result"` // Record serialized to JSON
	CreatedAt time.Time `json:"created_at"`
}
