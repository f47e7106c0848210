package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StripFences removes markdown code-block fencing that models wrap around
// JSON responses.
func StripFences(s string) string {
	clean := strings.TrimSpace(s)
	if strings.HasPrefix(clean, "```json") {
		clean = clean[7:]
	} else if strings.HasPrefix(clean, "```") {
		clean = clean[3:]
	}
	clean = strings.TrimSuffix(strings.TrimSpace(clean), "```")
	return strings.TrimSpace(clean)
}

// Repair applies cheap heuristics for the failure modes seen in practice:
// leading prose before the JSON and unbalanced trailing braces/brackets.
func Repair(s string) string {
	clean := StripFences(s)
	if clean == "" {
		return "{}"
	}
	if !strings.HasPrefix(clean, "{") && !strings.HasPrefix(clean, "[") {
		objStart := strings.Index(clean, "{")
		arrStart := strings.Index(clean, "[")
		start := objStart
		if start == -1 || (arrStart != -1 && arrStart < start) {
			start = arrStart
		}
		if start != -1 {
			clean = clean[start:]
		}
	}
	if strings.HasPrefix(clean, "{") {
		if open := strings.Count(clean, "{") - strings.Count(clean, "}"); open > 0 {
			clean += strings.Repeat("}", open)
		}
	} else if strings.HasPrefix(clean, "[") {
		if open := strings.Count(clean, "[") - strings.Count(clean, "]"); open > 0 {
			clean += strings.Repeat("]", open)
		}
	}
	return clean
}

// DecodeJSON turns a raw model response into validated JSON, attempting a
// repair pass when the cleaned response does not parse.
func DecodeJSON(s string) (json.RawMessage, error) {
	clean := StripFences(s)
	if json.Valid([]byte(clean)) {
		return json.RawMessage(clean), nil
	}
	repaired := Repair(s)
	if json.Valid([]byte(repaired)) {
		return json.RawMessage(repaired), nil
	}
	return nil, fmt.Errorf("response is not valid json")
}
