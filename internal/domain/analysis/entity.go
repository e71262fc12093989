package analysis

// Complexity enum
type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

// Unit is one independently analyzable code component. It is owned by the
// caller and read-only to this package.
type Unit struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Path         string     `json:"path"`
	Purpose      string     `json:"purpose"`
	KeyFiles     []string   `json:"key_files"`
	Dependencies []string   `json:"dependencies"`
	Dependents   []string   `json:"dependents"`
	Complexity   Complexity `json:"complexity"`
	Category     string     `json:"category"`
}

// GraphContext is shared by every unit in a run. It only enriches prompt input.
type GraphContext struct {
	ProjectName       string `json:"project_name"`
	ArchitectureNotes string `json:"architecture_notes,omitempty"`
}

// PromptInput is the flat string form of one unit handed to the task executor.
type PromptInput map[string]string

// KeyConcept value object
type KeyConcept struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	CodeRef     string `json:"codeRef,omitempty"`
}

// PublicAPIEntry value object
type PublicAPIEntry struct {
	Name        string `json:"name"`
	Signature   string `json:"signature"`
	Description string `json:"description"`
}

// LineRange is a [start, end] pair with start >= 0 and end >= start.
type LineRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// CodeExample value object. File is normalized to forward slashes without a
// leading "./" or "/". Lines is nil when the model sent no usable range.
type CodeExample struct {
	Title string     `json:"title"`
	Code  string     `json:"code"`
	File  string     `json:"file,omitempty"`
	Lines *LineRange `json:"lines,omitempty"`
}

// InternalDependency value object
type InternalDependency struct {
	Module string `json:"module"`
	Usage  string `json:"usage"`
}

// ExternalDependency value object
type ExternalDependency struct {
	Package string `json:"package"`
	Usage   string `json:"usage"`
}

// Dependencies groups a record's internal and external dependency lists.
type Dependencies struct {
	Internal []InternalDependency `json:"internal"`
	External []ExternalDependency `json:"external"`
}

// Record is the normalized, fully defaulted analysis produced for one unit.
// Every field has a deterministic value after parsing; object-list fields only
// contain entries whose required key was present and string-typed.
type Record struct {
	ID                   string           `json:"moduleId"`
	Overview             string           `json:"overview"`
	KeyConcepts          []KeyConcept     `json:"keyConcepts"`
	PublicAPI            []PublicAPIEntry `json:"publicApi"`
	InternalArchitecture string           `json:"internalArchitecture"`
	DataFlow             string           `json:"dataFlow"`
	ErrorHandling        string           `json:"errorHandling"`
	Patterns             []string         `json:"patterns"`
	CodeExamples         []CodeExample    `json:"codeExamples"`
	Dependencies         Dependencies     `json:"dependencies"`
	SuggestedDiagram     string           `json:"suggestedDiagram"`
}

// FailureDetail explains why one unit was still failed after its last round.
// Round is zero for the initial round, N for retry round N.
type FailureDetail struct {
	UnitID     string `json:"unit_id"`
	Round      int    `json:"round"`
	Message    string `json:"message"`
	RawSnippet string `json:"raw_snippet,omitempty"`
}

// BatchResult is the orchestrator's final output. Every input unit id appears
// in exactly one of Analyses (by record id) or FailedUnitIDs; FailureDetails
// carries one entry per FailedUnitIDs element.
type BatchResult struct {
	Analyses       []*Record       `json:"analyses"`
	FailedUnitIDs  []string        `json:"failed_unit_ids"`
	FailureDetails []FailureDetail `json:"failure_details"`
	DurationMS     int64           `json:"duration_ms"`
}
