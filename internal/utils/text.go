package utils

import (
	"strings"
)

// StripFences removes a surrounding Markdown code fence (``` or ```lang)
// from model output and trims whitespace. Input without fences is returned
// trimmed.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	// drop a language tag on the opening fence line
	if idx := strings.IndexByte(s, '\n'); idx != -1 {
		firstLine := strings.TrimSpace(s[:idx])
		if firstLine == "" || isFenceTag(firstLine) {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func isFenceTag(s string) bool {
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '+' || r == '-') {
			return false
		}
	}
	return true
}

// Truncate shortens s to max runes, appending an ellipsis marker when
// anything was cut.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

func NormalizeDifficulty(difficulty string) string {
	return strings.TrimSpace(difficulty)
}

func NormalizeTopic(topic string) string {
	return strings.TrimSpace(topic)
}
