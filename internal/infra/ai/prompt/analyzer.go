package prompt

import (
	"fmt"
	"sort"
	"strings"

	analysis "github.com/bryanwahyu/docwiki/internal/domain/analysis"
)

// GetSystemPrompt provides strict directions and the schema for JSON output.
func GetSystemPrompt() string {
	return `You are a senior software architect documenting a codebase module by module. You must produce one valid JSON object only (no markdown, no commentary) that follows the schema below. Do not include code fences.

Requirements:
- Output must be a single JSON object.
- moduleId must echo the moduleId you were given.
- keyConcepts, publicApi, patterns, codeExamples and dependency entries must be arrays; use [] when you have nothing to report.
- Every codeExamples entry needs a title; lines, when present, is a [start, end] pair of zero-based line numbers with end >= start.
- suggestedDiagram, when present, must be valid mermaid source without code fences.
- Keep items concise and grounded in the provided module facts; do not invent files.

Schema (example with empty values):
{
  "moduleId": "<string>",
  "overview": "<string>",
  "keyConcepts": [{"name": "<string>", "description": "<string>", "codeRef": "<string>"}],
  "publicApi": [{"name": "<string>", "signature": "<string>", "description": "<string>"}],
  "internalArchitecture": "<string>",
  "dataFlow": "<string>",
  "errorHandling": "<string>",
  "patterns": ["<string>"],
  "codeExamples": [{"title": "<string>", "code": "<string>", "file": "<string>", "lines": [0, 0]}],
  "dependencies": {"internal": [{"module": "<string>", "usage": "<string>"}], "external": [{"package": "<string>", "usage": "<string>"}]},
  "suggestedDiagram": "<string>"
}`
}

// GetUserPrompt renders one unit's flat prompt input as the user message.
// Fields are emitted in a stable order so identical inputs produce identical
// prompts.
func GetUserPrompt(input analysis.PromptInput) string {
	keys := make([]string, 0, len(input))
	for k := range input {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("Analyze this module and respond with the JSON per schema.\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %s\n", k, input[k])
	}
	return b.String()
}
