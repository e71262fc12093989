package analysis

import (
	"unicode/utf8"

	domain "github.com/bryanwahyu/docwiki/internal/domain/analysis"
)

// defaultOverview fills the overview when the model sent none.
const defaultOverview = "No overview was provided for this module."

// snippetLen bounds the raw-text snippets carried in errors and log lines.
const snippetLen = 400

// Parser turns raw model output into fully defaulted analysis records.
// Diagram grammar checking is delegated to the validator collaborator.
type Parser struct {
	Diagrams domain.DiagramValidator
}

// Parse extracts a JSON value from text and builds a Record for the unit the
// caller intended. It fails only when no JSON could be extracted at all or the
// extracted value is not an object; every field-level anomaly is resolved by
// dropping or defaulting.
func (p *Parser) Parse(text, expectedUnitID string) (*domain.Record, error) {
	v, ok := ExtractJSON(text)
	if !ok {
		return nil, &domain.ParseError{Reason: domain.ErrNoJSON.Error(), Snippet: truncate(text, snippetLen)}
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, &domain.ParseError{Reason: "extracted JSON is not an object", Snippet: truncate(text, snippetLen)}
	}

	// A present, well-typed id from the model is trusted as-is even when it
	// differs from the caller's; the caller's id only backfills a missing one.
	id := expectedUnitID
	if s, ok := obj[domain.PromptKeyModuleID].(string); ok && s != "" {
		id = s
	}

	rec := &domain.Record{
		ID:                   id,
		Overview:             ensureString(obj["overview"], defaultOverview),
		KeyConcepts:          collect(obj["keyConcepts"], normalizeKeyConcept),
		PublicAPI:            collect(obj["publicApi"], normalizePublicAPIEntry),
		InternalArchitecture: ensureString(obj["internalArchitecture"], ""),
		DataFlow:             ensureString(obj["dataFlow"], ""),
		ErrorHandling:        ensureString(obj["errorHandling"], ""),
		Patterns:             normalizePatterns(obj["patterns"]),
		CodeExamples:         collect(obj["codeExamples"], normalizeCodeExample),
		Dependencies:         p.parseDependencies(obj["dependencies"]),
		SuggestedDiagram:     p.parseDiagram(obj["suggestedDiagram"]),
	}
	return rec, nil
}

// collect maps raw array elements through a per-type normalizer, silently
// dropping the invalid ones.
func collect[T any](v any, normalize func(any) (T, bool)) []T {
	out := []T{}
	for _, item := range ensureArray(v) {
		if t, ok := normalize(item); ok {
			out = append(out, t)
		}
	}
	return out
}

func (p *Parser) parseDependencies(v any) domain.Dependencies {
	deps := domain.Dependencies{
		Internal: []domain.InternalDependency{},
		External: []domain.ExternalDependency{},
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return deps
	}
	deps.Internal = collect(obj["internal"], normalizeInternalDependency)
	deps.External = collect(obj["external"], normalizeExternalDependency)
	return deps
}

// parseDiagram unwraps a fenced diagram and validates its grammar. Invalid or
// non-string input yields an empty string, never an error.
func (p *Parser) parseDiagram(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	src := unwrapDiagramFence(s)
	if src == "" {
		return ""
	}
	if p.Diagrams != nil && !p.Diagrams.Valid(src) {
		return ""
	}
	return src
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
