package suggest

import (
	"encoding/json"
	"errors"
	"strings"
)

type suggestionEnvelope struct {
	Suggestions []Suggestion `json:"suggestions"`
}

// ParseSuggestions decodes model output into ranked suggestions. Both a bare
// JSON array and an object with a "suggestions" array are accepted; Markdown
// code fences around the JSON are ignored.
func ParseSuggestions(raw string) ([]Suggestion, error) {
	clean := cleanModelJSON(raw)
	if clean == "" {
		return nil, &ParseError{Raw: raw, Err: errors.New("empty response")}
	}

	var suggestions []Suggestion
	if strings.HasPrefix(clean, "[") {
		if err := json.Unmarshal([]byte(clean), &suggestions); err != nil {
			return nil, &ParseError{Raw: raw, Err: err}
		}
		return Rank(suggestions), nil
	}

	var envelope suggestionEnvelope
	if err := json.Unmarshal([]byte(clean), &envelope); err != nil {
		return nil, &ParseError{Raw: raw, Err: err}
	}
	if envelope.Suggestions == nil {
		return nil, &ParseError{Raw: raw, Err: errors.New(`missing "suggestions" field`)}
	}
	return Rank(envelope.Suggestions), nil
}

// cleanModelJSON strips Markdown fences and any text around the outermost
// JSON object or array
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		idx := strings.Index(s, "\n")
		if idx == -1 {
			return ""
		}
		s = strings.TrimSpace(s[idx+1:])
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = strings.TrimSpace(s[:idx])
	}

	start := strings.IndexAny(s, "[{")
	if start == -1 {
		return s
	}
	closer := "]"
	if s[start] == '{' {
		closer = "}"
	}
	if end := strings.LastIndex(s, closer); end > start {
		s = s[start : end+1]
	}

	return strings.TrimSpace(s)
}
