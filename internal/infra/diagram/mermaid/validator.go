package mermaid

import "strings"

// diagramTypes are the mermaid directives accepted as a first line.
var diagramTypes = map[string]bool{
	"graph":           true,
	"flowchart":       true,
	"sequenceDiagram": true,
	"classDiagram":    true,
	"stateDiagram":    true,
	"stateDiagram-v2": true,
	"erDiagram":       true,
	"journey":         true,
	"gantt":           true,
	"pie":             true,
	"mindmap":         true,
}

// Validator checks mermaid source without rendering it: a known diagram
// directive on the first line and balanced brackets over the whole body.
type Validator struct{}

func New() *Validator { return &Validator{} }

func (v *Validator) Valid(source string) bool {
	src := strings.TrimSpace(source)
	if src == "" {
		return false
	}

	lines := strings.Split(src, "\n")
	first := strings.Fields(strings.TrimSpace(lines[0]))
	if len(first) == 0 || !diagramTypes[first[0]] {
		return false
	}

	return balanced(src)
}

// balanced verifies (), [] and {} nest correctly. Mermaid edge labels like
// -->|text| do not affect bracket nesting, so a simple stack suffices.
func balanced(s string) bool {
	var stack []rune
	pairs := map[rune]rune{')': '(', ']': '[', '}': '{'}
	for _, r := range s {
		switch r {
		case '(', '[', '{':
			stack = append(stack, r)
		case ')', ']', '}':
			if len(stack) == 0 || stack[len(stack)-1] != pairs[r] {
				return false
			}
			stack = stack[:len(stack)-1]
		}
	}
	return len(stack) == 0
}
