package ai

import "strings"

// GraphKeyword opens every DOT source we ask the model for.
const GraphKeyword = "digraph"

var (
	jsonFences  = []string{"```json", "```JSON", "```"}
	graphFences = []string{"```dot", "```graphviz", "```DOT", "```"}
)

func stripFences(s string, fences []string) string {
	for _, f := range fences {
		s = strings.ReplaceAll(s, f, "")
	}
	return strings.TrimSpace(s)
}

// ExtractJSONArray returns the span from the first '[' to the last ']' of a
// fence-stripped reply. Without such a span the stripped reply comes back as is;
// decoding is the caller's problem.
func ExtractJSONArray(s string) string {
	s = stripFences(s, jsonFences)
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start == -1 || end == -1 || end < start {
		return s
	}
	return s[start : end+1]
}

// ExtractGraph returns a fence-stripped reply starting at the first "digraph".
func ExtractGraph(s string) string {
	s = stripFences(s, graphFences)
	if i := strings.Index(s, GraphKeyword); i >= 0 {
		return s[i:]
	}
	return s
}

// HasGraph reports whether s contains a graph start keyword at all.
func HasGraph(s string) bool { return strings.Contains(s, GraphKeyword) }
