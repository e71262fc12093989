package analysis

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	domain "github.com/bryanwahyu/docwiki/internal/domain/analysis"
	"github.com/bryanwahyu/docwiki/internal/infra/diagram/mermaid"
)

func newTestParser() *Parser {
	return &Parser{Diagrams: mermaid.New()}
}

func TestParseMinimalObjectDefaultsEverything(t *testing.T) {
	rec, err := newTestParser().Parse(`{"moduleId": "x"}`, "x")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if rec.ID != "x" {
		t.Errorf("expected id x, got %s", rec.ID)
	}
	if rec.Overview != defaultOverview {
		t.Errorf("expected placeholder overview, got %q", rec.Overview)
	}
	if rec.InternalArchitecture != "" || rec.DataFlow != "" || rec.ErrorHandling != "" || rec.SuggestedDiagram != "" {
		t.Error("expected empty optional string fields")
	}
	if len(rec.KeyConcepts) != 0 || len(rec.PublicAPI) != 0 || len(rec.Patterns) != 0 || len(rec.CodeExamples) != 0 {
		t.Error("expected empty list fields")
	}
	if rec.KeyConcepts == nil || rec.PublicAPI == nil || rec.Patterns == nil || rec.CodeExamples == nil {
		t.Error("list fields must be empty, not nil")
	}
	if rec.Dependencies.Internal == nil || rec.Dependencies.External == nil {
		t.Error("dependency lists must be empty, not nil")
	}
}

func TestParseFailsWithoutJSON(t *testing.T) {
	_, err := newTestParser().Parse("nothing to see here", "x")
	if err == nil {
		t.Fatal("expected error")
	}
	var pe *domain.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %T", err)
	}
}

func TestParseFailsOnNonObject(t *testing.T) {
	_, err := newTestParser().Parse(`["an", "array"]`, "x")
	if err == nil {
		t.Fatal("expected error for non-object JSON")
	}
}

func TestParseTrustsExtractedID(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"present id wins over expected", `{"moduleId": "from-model"}`, "from-model"},
		{"missing id falls back", `{"overview": "hi"}`, "expected-id"},
		{"empty id falls back", `{"moduleId": ""}`, "expected-id"},
		{"non-string id falls back", `{"moduleId": 42}`, "expected-id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := newTestParser().Parse(tt.text, "expected-id")
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if rec.ID != tt.want {
				t.Errorf("expected id %q, got %q", tt.want, rec.ID)
			}
		})
	}
}

func TestParseDropsInvalidKeyConcepts(t *testing.T) {
	text := `{
		"moduleId": "x",
		"keyConcepts": [
			{"name": "valid one", "description": "kept"},
			{"description": "missing name"},
			{"name": 42},
			null
		]
	}`
	rec, err := newTestParser().Parse(text, "x")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(rec.KeyConcepts) != 1 {
		t.Fatalf("expected 1 key concept, got %d", len(rec.KeyConcepts))
	}
	if rec.KeyConcepts[0].Name != "valid one" || rec.KeyConcepts[0].Description != "kept" {
		t.Errorf("unexpected concept: %+v", rec.KeyConcepts[0])
	}
}

func TestParsePatternsKeepOnlyNonEmptyStrings(t *testing.T) {
	text := `{"moduleId": "x", "patterns": ["repository", "", 7, null, "worker pool"]}`
	rec, err := newTestParser().Parse(text, "x")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	want := []string{"repository", "worker pool"}
	if len(rec.Patterns) != len(want) {
		t.Fatalf("expected %d patterns, got %v", len(want), rec.Patterns)
	}
	for i := range want {
		if rec.Patterns[i] != want[i] {
			t.Errorf("pattern %d: expected %q, got %q", i, want[i], rec.Patterns[i])
		}
	}
}

func TestParseCodeExamples(t *testing.T) {
	text := `{
		"moduleId": "x",
		"codeExamples": [
			{"title": "windows path", "code": "c", "file": ".\\pkg\\svc.go", "lines": [3, 9]},
			{"title": "leading slash", "file": "/cmd/main.go"},
			{"title": "bad range kept without lines", "lines": [5, 2]},
			{"title": "negative start", "lines": [-1, 4]},
			{"title": "string bounds", "lines": ["0", "12"]},
			{"code": "dropped, no title"}
		]
	}`
	rec, err := newTestParser().Parse(text, "x")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(rec.CodeExamples) != 5 {
		t.Fatalf("expected 5 examples, got %d", len(rec.CodeExamples))
	}
	if rec.CodeExamples[0].File != "pkg/svc.go" {
		t.Errorf("expected normalized windows path, got %q", rec.CodeExamples[0].File)
	}
	if rec.CodeExamples[0].Lines == nil || rec.CodeExamples[0].Lines.Start != 3 || rec.CodeExamples[0].Lines.End != 9 {
		t.Errorf("unexpected lines: %+v", rec.CodeExamples[0].Lines)
	}
	if rec.CodeExamples[1].File != "cmd/main.go" {
		t.Errorf("expected stripped leading slash, got %q", rec.CodeExamples[1].File)
	}
	if rec.CodeExamples[2].Lines != nil {
		t.Error("inverted range must be omitted")
	}
	if rec.CodeExamples[3].Lines != nil {
		t.Error("negative start must be omitted")
	}
	if rec.CodeExamples[4].Lines == nil || rec.CodeExamples[4].Lines.End != 12 {
		t.Errorf("string bounds should parse, got %+v", rec.CodeExamples[4].Lines)
	}
}

func TestParseDependencies(t *testing.T) {
	text := `{
		"moduleId": "x",
		"dependencies": {
			"internal": [{"module": "core", "usage": "types"}, {"usage": "no module"}],
			"external": [{"package": "chi", "usage": "routing"}, "garbage"]
		}
	}`
	rec, err := newTestParser().Parse(text, "x")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(rec.Dependencies.Internal) != 1 || rec.Dependencies.Internal[0].Module != "core" {
		t.Errorf("unexpected internal deps: %+v", rec.Dependencies.Internal)
	}
	if len(rec.Dependencies.External) != 1 || rec.Dependencies.External[0].Package != "chi" {
		t.Errorf("unexpected external deps: %+v", rec.Dependencies.External)
	}
}

func TestParseDependenciesNotAnObject(t *testing.T) {
	rec, err := newTestParser().Parse(`{"moduleId": "x", "dependencies": "nope"}`, "x")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(rec.Dependencies.Internal) != 0 || len(rec.Dependencies.External) != 0 {
		t.Error("expected empty dependency lists")
	}
}

func TestParseSuggestedDiagram(t *testing.T) {
	tests := []struct {
		name    string
		diagram any
		want    string
	}{
		{"fenced mermaid unwrapped", "```mermaid\ngraph TD\n  A-->B\n```", "graph TD\n  A-->B"},
		{"bare diagram kept", "graph TD\n  A-->B", "graph TD\n  A-->B"},
		{"invalid diagram emptied", "not a diagram", ""},
		{"non-string emptied", 12.5, ""},
		{"unbalanced brackets emptied", "graph TD\n  A[start-->B", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := `{"moduleId": "x", "suggestedDiagram": ` + mustJSON(tt.diagram) + `}`
			rec, err := newTestParser().Parse(text, "x")
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if rec.SuggestedDiagram != tt.want {
				t.Errorf("expected %q, got %q", tt.want, rec.SuggestedDiagram)
			}
		})
	}
}

func TestParseErrorSnippetIsTruncated(t *testing.T) {
	_, err := newTestParser().Parse(strings.Repeat("y", 2000), "x")
	if err == nil {
		t.Fatal("expected error")
	}
	var pe *domain.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %T", err)
	}
	if len(pe.Snippet) > snippetLen+3 {
		t.Errorf("snippet not truncated: %d chars", len(pe.Snippet))
	}
}

func TestTruncateKeepsRunesIntact(t *testing.T) {
	// 2-byte runes; an odd byte limit lands mid-rune.
	s := strings.Repeat("é", 10)
	got := truncate(s, 5)
	if !utf8.ValidString(got) {
		t.Fatalf("truncate produced invalid UTF-8: %q", got)
	}
	if got != strings.Repeat("é", 2)+"..." {
		t.Errorf("unexpected cut point: %q", got)
	}
	if truncate("short", 400) != "short" {
		t.Error("strings within the limit must pass through unchanged")
	}
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}
