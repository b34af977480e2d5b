package usecases

import (
	"encoding/json"
	"strings"
)

// ParseJSONObject makes a best-effort attempt to pull a JSON object out of
// free-form model output. The object may be wrapped in prose or markdown fences.
// It never fails: ok is false when no object could be decoded.
//
// The widest candidate (first '{' to last '}') is tried first, then the first
// balanced object, so trailing braces in surrounding prose do not hide a valid object.
func ParseJSONObject(text string) (map[string]interface{}, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return nil, false
	}
	if end := strings.LastIndexByte(text, '}'); end > start {
		if obj, ok := decodeObject(text[start : end+1]); ok {
			return obj, true
		}
	}
	if end := balancedObjectEnd(text, start); end > start {
		return decodeObject(text[start:end])
	}
	return nil, false
}

func decodeObject(candidate string) (map[string]interface{}, bool) {
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(candidate), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

// balancedObjectEnd returns the index just past the object opened at start,
// or -1 when the braces never balance.
func balancedObjectEnd(s string, start int) int {
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
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}
