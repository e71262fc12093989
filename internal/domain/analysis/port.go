package analysis

import "context"

// PromptKeyModuleID is the identifier field embedded in every PromptInput.
// The task executor correlates its results back to units through it.
const PromptKeyModuleID = "moduleId"

// TaskExecutor port: runs one round of prompt inputs with bounded concurrency
// and returns one MapResult per input, keyed by the input's moduleId field.
// A nil map with a nil error means the round produced no output at all.
type TaskExecutor interface {
	Execute(ctx context.Context, inputs []PromptInput, cfg ExecConfig) (map[string]MapResult, error)
}

// DiagramValidator port: reports whether a diagram source is syntactically
// well-formed for the target diagram grammar.
type DiagramValidator interface {
	Valid(source string) bool
}

// Repository port for persisting and querying analysis records.
type Repository interface {
	Save(ctx context.Context, tenant, runID string, rec *Record) error
	Paginate(ctx context.Context, tenant string, page, pageSize int) ([]*StoredRecord, error)
	LatestByUnit(ctx context.Context, tenant, unitID string) (*StoredRecord, error)
}
