// Package extract recovers JSON arrays from model output. Providers wrap
// JSON in markdown fences or surround it with prose often enough that a
// plain unmarshal is not enough.
package extract

import (
	"encoding/json"
	"strings"

	"github.com/provaia/knowledge-backend/services"
)

// Parse extracts a JSON array from raw model output. It strips markdown
// fences, tries a direct unmarshal, and falls back to one repair pass that
// cuts the first balanced [...] span out of the text. Unrecoverable output
// yields a malformed-output error carrying the raw text and the reason.
func Parse(raw string) ([]json.RawMessage, error) {
	cleaned := stripFences(raw)

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &items); err == nil {
		return items, nil
	}

	repaired, ok := balancedArray(cleaned)
	if !ok {
		return nil, malformed(raw, "no JSON array found")
	}
	if err := json.Unmarshal([]byte(repaired), &items); err != nil {
		return nil, malformed(raw, "extracted array is not valid JSON")
	}
	return items, nil
}

// stripFences removes a surrounding markdown code fence, with or without a
// language tag.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		// Drop the language tag line (```json etc).
		first := strings.TrimSpace(s[:idx])
		if len(first) <= 10 && !strings.ContainsAny(first, "[{") {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// balancedArray returns the first balanced top-level [...] span, skipping
// brackets inside string literals.
func balancedArray(s string) (string, bool) {
	start := strings.IndexByte(s, '[')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

func malformed(raw, reason string) error {
	return services.NewDomainError(services.ErrorTypeMalformed, "failed to parse model output", nil).
		WithDetail("reason", reason).
		WithDetail("raw", raw)
}
