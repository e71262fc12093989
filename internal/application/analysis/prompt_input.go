package analysis

import (
	"strings"

	domain "github.com/bryanwahyu/docwiki/internal/domain/analysis"
)

// noArchitectureNotes is substituted when the graph context carries none.
const noArchitectureNotes = "No architecture notes provided."

// ToPromptInput flattens a unit plus the shared graph context into the string
// map handed to the task executor. Pure, no I/O.
func ToPromptInput(u domain.Unit, gctx domain.GraphContext) domain.PromptInput {
	notes := gctx.ArchitectureNotes
	if notes == "" {
		notes = noArchitectureNotes
	}
	return domain.PromptInput{
		domain.PromptKeyModuleID: u.ID,
		"name":                   u.Name,
		"path":                   u.Path,
		"purpose":                u.Purpose,
		"keyFiles":               strings.Join(u.KeyFiles, ", "),
		"dependencies":           joinOrNone(u.Dependencies),
		"dependents":             joinOrNone(u.Dependents),
		"complexity":             string(u.Complexity),
		"category":               u.Category,
		"projectName":            gctx.ProjectName,
		"architectureNotes":      notes,
	}
}

// joinOrNone renders an empty list as the literal "none" so the prompt never
// shows a dangling field.
func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
