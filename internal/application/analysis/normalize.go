package analysis

import (
	"strconv"
	"strings"

	domain "github.com/bryanwahyu/docwiki/internal/domain/analysis"
)

// ensureString returns v only when it is already a string, else def.
func ensureString(v any, def string) string {
	if s, ok := v.(string); ok {
		return s
	}
	return def
}

// ensureArray returns v only when it is already an array, else an empty one.
func ensureArray(v any) []any {
	if a, ok := v.([]any); ok {
		return a
	}
	return nil
}

// normalizeKeyConcept drops entries that are not objects or miss a string name.
func normalizeKeyConcept(v any) (domain.KeyConcept, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return domain.KeyConcept{}, false
	}
	name, ok := obj["name"].(string)
	if !ok {
		return domain.KeyConcept{}, false
	}
	return domain.KeyConcept{
		Name:        name,
		Description: ensureString(obj["description"], ""),
		CodeRef:     ensureString(obj["codeRef"], ""),
	}, true
}

func normalizePublicAPIEntry(v any) (domain.PublicAPIEntry, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return domain.PublicAPIEntry{}, false
	}
	name, ok := obj["name"].(string)
	if !ok {
		return domain.PublicAPIEntry{}, false
	}
	return domain.PublicAPIEntry{
		Name:        name,
		Signature:   ensureString(obj["signature"], ""),
		Description: ensureString(obj["description"], ""),
	}, true
}

func normalizeCodeExample(v any) (domain.CodeExample, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return domain.CodeExample{}, false
	}
	title, ok := obj["title"].(string)
	if !ok {
		return domain.CodeExample{}, false
	}
	ex := domain.CodeExample{
		Title: title,
		Code:  ensureString(obj["code"], ""),
	}
	if file, ok := obj["file"].(string); ok {
		ex.File = normalizeFilePath(file)
	}
	// A bad range is omitted, never a reason to drop the whole example.
	ex.Lines = normalizeLineRange(obj["lines"])
	return ex, true
}

func normalizeInternalDependency(v any) (domain.InternalDependency, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return domain.InternalDependency{}, false
	}
	module, ok := obj["module"].(string)
	if !ok {
		return domain.InternalDependency{}, false
	}
	return domain.InternalDependency{
		Module: module,
		Usage:  ensureString(obj["usage"], ""),
	}, true
}

func normalizeExternalDependency(v any) (domain.ExternalDependency, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return domain.ExternalDependency{}, false
	}
	pkg, ok := obj["package"].(string)
	if !ok {
		return domain.ExternalDependency{}, false
	}
	return domain.ExternalDependency{
		Package: pkg,
		Usage:   ensureString(obj["usage"], ""),
	}, true
}

// normalizePatterns keeps only non-empty string entries.
func normalizePatterns(v any) []string {
	out := []string{}
	for _, item := range ensureArray(v) {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// normalizeFilePath converts backslashes to forward slashes and strips one
// leading "./" or "/".
func normalizeFilePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	if strings.HasPrefix(p, "./") {
		return p[2:]
	}
	if strings.HasPrefix(p, "/") {
		return p[1:]
	}
	return p
}

// normalizeLineRange accepts a two-element [start, end] array where both
// bounds parse as numbers, start >= 0 and end >= start. Anything else yields
// nil.
func normalizeLineRange(v any) *domain.LineRange {
	arr, ok := v.([]any)
	if !ok || len(arr) != 2 {
		return nil
	}
	start, ok := toInt(arr[0])
	if !ok {
		return nil
	}
	end, ok := toInt(arr[1])
	if !ok {
		return nil
	}
	if start < 0 || end < start {
		return nil
	}
	return &domain.LineRange{Start: start, End: end}
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return int(f), true
	default:
		return 0, false
	}
}

// unwrapDiagramFence strips a ```mermaid (or bare ```) fence around a diagram.
// Unfenced input passes through trimmed.
func unwrapDiagramFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	body := strings.TrimPrefix(s, "```mermaid")
	if body == s {
		body = strings.TrimPrefix(s, "```")
	}
	body = strings.TrimSuffix(strings.TrimSpace(body), "```")
	return strings.TrimSpace(body)
}
