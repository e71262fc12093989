package analysis

import (
	"errors"
	"fmt"
)

// ErrNoJSON indicates that no JSON-shaped value could be located in the
// response text by any extraction strategy.
var ErrNoJSON = errors.New("no JSON object found in response")

// ParseError reports why a response could not be turned into a Record. Snippet
// holds a truncated copy of the offending text for diagnostics.
type ParseError struct {
	Reason  string
	Snippet string
}

func (e *ParseError) Error() string {
	if e.Snippet == "" {
		return fmt.Sprintf("parse analysis response: %s", e.Reason)
	}
	return fmt.Sprintf("parse analysis response: %s (text: %q)", e.Reason, e.Snippet)
}
