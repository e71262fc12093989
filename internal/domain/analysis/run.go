package analysis

import "time"

// ExecConfig carries the per-round settings handed to the task executor.
// Scheduling inside the executor is opaque to this package; only the limits
// are supplied here.
type ExecConfig struct {
	Model       string
	Concurrency int
	Timeout     time.Duration

	// OnProgress, when set, receives monotonically increasing completion
	// counters from the executor. Its contents are not interpreted here.
	OnProgress func(done, total int)
}

// MapResult is the task executor's per-unit outcome. The success flag is
// advisory: RawResponse may still contain a parseable answer when Success is
// false, and any combination of fields must be tolerated.
type MapResult struct {
	Success     bool           `json:"success"`
	RawResponse string         `json:"raw_response,omitempty"`
	Output      map[string]any `json:"output,omitempty"`
	Error       string         `json:"error,omitempty"`
}
