package usecase

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jibsearch/backend/internal/domain"
)

// decodeModelJSON parses model output into v. It tries the whole reply first,
// then the first balanced {...} span. Code fences are ignored.
func decodeModelJSON(text string, v interface{}) error {
	cleaned := stripCodeFence(strings.TrimSpace(text))
	if cleaned == "" {
		return fmt.Errorf("%w: empty reply", domain.ErrMalformedModelOutput)
	}

	if err := json.Unmarshal([]byte(cleaned), v); err == nil {
		return nil
	}

	span, ok := firstJSONObject(cleaned)
	if !ok {
		return fmt.Errorf("%w: no json object found", domain.ErrMalformedModelOutput)
	}
	if err := json.Unmarshal([]byte(span), v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedModelOutput, err)
	}
	return nil
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:] // drop the language tag line
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// firstJSONObject returns the first brace-balanced object in s. Braces inside
// string literals are skipped.
func firstJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
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
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
