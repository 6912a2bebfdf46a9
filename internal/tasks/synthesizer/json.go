package synthesizer

import (
	"errors"
	"strings"
)

// ExtractJSONArray returns the first top-level JSON array in the text.
// Providers occasionally wrap their output in prose or markdown fences
// despite instructions; this scans for the first bracket-balanced array
// instead of trusting the whole body to be JSON.
func ExtractJSONArray(text string) (string, error) {
	start := strings.IndexByte(text, '[')
	if start < 0 {
		return "", errors.New("no JSON array found in response")
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]

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
				return text[start : i+1], nil
			}
		}
	}

	return "", errors.New("unterminated JSON array in response")
}
