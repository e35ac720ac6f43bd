package vision

import (
	"strings"
)

// FormatReport describes how closely extractor output matches the
// comma-separated list the prompt asks for. It is diagnostic only.
type FormatReport struct {
	CommaSeparated bool
	Entries        []string
}

// CheckFormat inspects raw extractor output. A single line with at least one
// entry and no sentence punctuation counts as comma-separated; prose, bullet
// lists and multi-line answers do not.
func CheckFormat(raw string) FormatReport {
	text := strings.TrimSpace(raw)
	if text == "" {
		return FormatReport{}
	}

	entries := make([]string, 0)
	for _, part := range strings.Split(text, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			entries = append(entries, part)
		}
	}

	ok := len(entries) > 0 &&
		!strings.Contains(text, "\n") &&
		!strings.ContainsAny(text, ":;") &&
		!strings.HasPrefix(text, "-") &&
		!strings.HasPrefix(text, "*")
	if ok {
		for _, e := range entries {
			// A sentence ending mid-list means the model answered in prose.
			if strings.Contains(strings.TrimSuffix(e, "."), ". ") {
				ok = false
				break
			}
		}
	}

	return FormatReport{CommaSeparated: ok, Entries: entries}
}
