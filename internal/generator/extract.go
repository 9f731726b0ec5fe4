package generator

import (
	"encoding/json"
	"errors"
	"strings"
)

var errNoJSONObject = errors.New("no JSON object found in reply")

// extractJSONObject returns the first balanced, well-formed JSON object in
// reply. Prose before and after the object is ignored; braces inside string
// literals do not count toward nesting.
func extractJSONObject(reply string) (string, error) {
	for offset := 0; offset < len(reply); {
		start := strings.IndexByte(reply[offset:], '{')
		if start < 0 {
			break
		}
		start += offset
		if end, ok := matchBrace(reply, start); ok {
			candidate := reply[start : end+1]
			if json.Valid([]byte(candidate)) {
				return candidate, nil
			}
		}
		offset = start + 1
	}
	return "", errNoJSONObject
}

// matchBrace returns the index of the brace closing the one at start.
func matchBrace(s string, start int) (int, bool) {
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
				return i, true
			}
		}
	}
	return 0, false
}
