package agent

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Model output rarely arrives as clean JSON. Small instruction-tuned models
// wrap objects in markdown fences, prepend prose, leave keys unquoted, use
// single quotes, or dangle trailing commas. extractObject walks a ladder of
// increasingly aggressive recovery steps and stops at the first one that
// yields a parseable object.

var (
	fenceRe        = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
	unquotedKeyRe  = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)
	trailingComma  = regexp.MustCompile(`,\s*([}\]])`)
	singleQuotes = strings.NewReplacer("'", `"`)
)

// extractObject attempts to recover a JSON object from raw model output.
// The bool reports whether any step succeeded.
func extractObject(raw string) (map[string]any, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, false
	}

	if obj, ok := tryParse(trimmed); ok {
		return obj, true
	}

	// Markdown code fences around the object.
	if m := fenceRe.FindStringSubmatch(trimmed); m != nil {
		if obj, ok := tryParse(strings.TrimSpace(m[1])); ok {
			return obj, true
		}
		trimmed = strings.TrimSpace(m[1])
	}

	// First balanced top-level object inside surrounding prose.
	if candidate, ok := firstBalancedObject(trimmed); ok {
		if obj, ok := tryParse(candidate); ok {
			return obj, true
		}
		if obj, ok := tryParse(repairJSON(candidate)); ok {
			return obj, true
		}
	}

	if obj, ok := tryParse(repairJSON(trimmed)); ok {
		return obj, true
	}
	return nil, false
}

func tryParse(s string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// repairJSON applies textual fixes for the malformations small models
// actually produce: unquoted keys, single-quoted strings, trailing commas.
func repairJSON(s string) string {
	s = unquotedKeyRe.ReplaceAllString(s, `$1"$2":`)
	s = singleQuotes.Replace(s)
	s = trailingComma.ReplaceAllString(s, "$1")
	return s
}

// firstBalancedObject returns the first brace-balanced {...} span. Braces
// inside double-quoted strings are ignored.
func firstBalancedObject(s string) (string, bool) {
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
