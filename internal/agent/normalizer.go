package agent

import (
	"fmt"
	"strconv"
	"strings"
)

// Result is a normalized agent response. Fields always contains exactly the
// schema fields for the request kind. UsedFallback reports that the model
// output was unusable and the entire payload came from the fallback table.
type Result struct {
	Fields       map[string]any `json:"fields"`
	UsedFallback bool           `json:"used_fallback"`
}

// Normalizer repairs model output into the fixed per-kind schemas. It never
// fails: unrecoverable input degrades to the fallback payload for the
// request's kind and target.
type Normalizer struct {
	fallbacks *FallbackTable
}

func NewNormalizer(fallbacks *FallbackTable) *Normalizer {
	return &Normalizer{fallbacks: fallbacks}
}

// Normalize converts raw model output into a schema-complete Result.
// Unknown keys are dropped, missing fields are filled from the fallback
// table, and values are coerced to each field's class. Normalizing an
// already-normalized payload is a no-op.
func (n *Normalizer) Normalize(raw string, kind Kind, target Target) Result {
	obj, ok := extractObject(raw)
	if !ok {
		return n.Fallback(kind, target)
	}
	return n.NormalizeObject(obj, kind, target)
}

// NormalizeObject projects an already-parsed object onto the kind's schema.
func (n *Normalizer) NormalizeObject(obj map[string]any, kind Kind, target Target) Result {
	fields := make(map[string]any, len(Schema(kind)))
	for _, field := range Schema(kind) {
		value, present := obj[field.Name]
		if !present || value == nil {
			fields[field.Name] = n.fallbacks.Value(kind, target, field.Name)
			continue
		}
		coerced, ok := coerce(value, field.Class)
		if !ok {
			coerced = n.fallbacks.Value(kind, target, field.Name)
		}
		if field.Class == FieldImpactMap {
			coerced = n.fillImpactMap(coerced, kind, target, field.Name)
		}
		fields[field.Name] = coerced
	}
	return Result{Fields: fields}
}

// Fallback returns the full fallback result for a kind and target.
func (n *Normalizer) Fallback(kind Kind, target Target) Result {
	return Result{Fields: n.fallbacks.Payload(kind, target), UsedFallback: true}
}

// fillImpactMap backfills missing projected-impact subkeys from the
// fallback payload so the map always carries all four entries.
func (n *Normalizer) fillImpactMap(value any, kind Kind, target Target, field string) any {
	m, ok := value.(map[string]any)
	if !ok {
		return n.fallbacks.Value(kind, target, field)
	}
	fallbackMap, _ := n.fallbacks.Value(kind, target, field).(map[string]any)
	for _, key := range impactKeys {
		if _, present := m[key]; !present {
			m[key] = fallbackMap[key]
		}
	}
	return m
}

// coerce converts a decoded JSON value to the field class. The bool is
// false when the value cannot be represented in the class at all.
func coerce(value any, class FieldClass) (any, bool) {
	switch class {
	case FieldNumber:
		return coerceNumber(value)
	case FieldString:
		return coerceString(value)
	case FieldStringList:
		return coerceStringList(value)
	case FieldImpactMap:
		return coerceImpactMap(value)
	}
	return nil, false
}

func coerceNumber(value any) (any, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, false
		}
		return f, true
	case bool:
		return nil, false
	default:
		return nil, false
	}
}

func coerceString(value any) (any, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case float64:
		return formatNumber(v), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return nil, false
	}
}

func coerceStringList(value any) (any, bool) {
	switch v := value.(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := coerceString(item)
			if !ok {
				return nil, false
			}
			out = append(out, s.(string))
		}
		return out, true
	case []string:
		return v, true
	case string:
		// Models sometimes flatten the list into numbered lines.
		if lines := splitNumberedLines(v); len(lines) > 1 {
			return lines, true
		}
		return []string{v}, true
	default:
		return nil, false
	}
}

func coerceImpactMap(value any) (any, bool) {
	m, ok := value.(map[string]any)
	if !ok {
		return nil, false
	}
	out := make(map[string]any, len(impactKeys))
	for _, key := range impactKeys {
		v, present := m[key]
		if !present {
			continue
		}
		switch tv := v.(type) {
		case string:
			out[key] = tv
		case float64:
			if percentImpactKeys[key] {
				out[key] = formatSignedPercent(tv)
			} else {
				out[key] = formatNumber(tv)
			}
		default:
			// Drop so the normalizer backfills from the fallback map.
		}
	}
	return out, true
}

// formatNumber renders a float the way a person would write it: integers
// without a decimal point, everything else with minimal digits.
func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatSignedPercent(f float64) string {
	if f >= 0 {
		return fmt.Sprintf("+%s%%", formatNumber(f))
	}
	return fmt.Sprintf("%s%%", formatNumber(f))
}

// splitNumberedLines breaks "1. Do X\n2. Do Y" style text into items.
func splitNumberedLines(s string) []string {
	var items []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = strings.TrimLeft(line, "0123456789")
		line = strings.TrimLeft(line, ".) ")
		line = strings.TrimPrefix(line, "- ")
		if line != "" {
			items = append(items, line)
		}
	}
	return items
}
