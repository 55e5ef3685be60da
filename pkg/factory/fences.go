package factory

import (
	"regexp"
	"strings"
)

// fenceLine matches a line that is only a code fence with an optional
// language tag, e.g. "```" or "```python".
var fenceLine = regexp.MustCompile("^`{3,}[\\w.+#-]*$")

// StripFences drops every line that is purely a fence marker. Fences that
// share a line with other text are left alone.
func StripFences(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if fenceLine.MatchString(strings.TrimSpace(line)) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func startsWithFence(text string) bool {
	return strings.HasPrefix(text, "```")
}
