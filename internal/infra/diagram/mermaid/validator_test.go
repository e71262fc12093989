package mermaid

import "testing"

func TestValid(t *testing.T) {
	v := New()

	cases := []struct {
		name   string
		source string
		want   bool
	}{
		{"graph with direction", "graph TD\n  A[Start] --> B{Decision}\n  B --> C(End)", true},
		{"flowchart", "flowchart LR\n  a --> b", true},
		{"sequence diagram", "sequenceDiagram\n  Alice->>Bob: hello", true},
		{"state diagram v2", "stateDiagram-v2\n  [*] --> Idle", true},
		{"pie", "pie\n  \"a\": 40\n  \"b\": 60", true},
		{"leading whitespace", "\n\n  graph TD\n  A --> B", true},
		{"empty", "", false},
		{"whitespace only", "   \n\t ", false},
		{"unknown directive", "diagram TD\n  A --> B", false},
		{"prose", "Here is a diagram for you", false},
		{"unclosed bracket", "graph TD\n  A[Start --> B", false},
		{"mismatched pair", "graph TD\n  A[Start) --> B", false},
		{"stray closer", "graph TD\n  A] --> B", false},
		{"edge label pipes", "graph LR\n  A -->|yes| B", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := v.Valid(tc.source); got != tc.want {
				t.Errorf("Valid(%q) = %v, want %v", tc.source, got, tc.want)
			}
		})
	}
}
