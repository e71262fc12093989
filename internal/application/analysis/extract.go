package analysis

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	jsonFenceRe    = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")
	genericFenceRe = regexp.MustCompile("(?s)```[a-zA-Z0-9]*\\s*(.*?)\\s*```")
)

// ExtractJSON locates a JSON value inside free-form model output. Strategies
// are tried in order, first success wins, and no partial results are merged:
//
//  1. parse the trimmed text directly
//  2. the first ```json fenced block
//  3. the first generic fenced block, any or no language tag
//  4. every ```json block scanned from last to first (a response often shows
//     an illustrative example before the real answer)
//  5. the substring between the first '{' and the last '}'
//
// The boolean is false when every strategy fails.
func ExtractJSON(text string) (any, bool) {
	trimmed := strings.TrimSpace(text)
	if v, ok := tryParse(trimmed); ok {
		return v, true
	}

	if m := jsonFenceRe.FindStringSubmatch(text); m != nil {
		if v, ok := tryParse(m[1]); ok {
			return v, true
		}
	}

	if m := genericFenceRe.FindStringSubmatch(text); m != nil {
		if v, ok := tryParse(m[1]); ok {
			return v, true
		}
	}

	all := jsonFenceRe.FindAllStringSubmatch(text, -1)
	for i := len(all) - 1; i >= 0; i-- {
		if v, ok := tryParse(all[i][1]); ok {
			return v, true
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		if v, ok := tryParse(text[start : end+1]); ok {
			return v, true
		}
	}

	return nil, false
}

func tryParse(s string) (any, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, false
	}
	return v, true
}
