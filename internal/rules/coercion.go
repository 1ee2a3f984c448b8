// internal/rules/coercion.go
package rules

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

/*
 * Rule value coercion.
 *
 * Folder definitions are decoded from JSON into untyped Rule.Value fields, so a
 * numeric bound may arrive as float64, json.Number, int or a numeric string,
 * and a tag list as []any or []string. Coercion turns those into the concrete
 * shapes the matchers need. It runs once per rule at compile time and never
 * during evaluation.
 *
 * Modes:
 *   - number: strict. Numbers and numeric strings only; booleans and
 *     whitespace-only strings fail.
 *   - text: lenient. Strings pass through, numbers and booleans are
 *     formatted; lists and objects fail.
 *   - list: a JSON array of text-coercible elements, or a single scalar which
 *     becomes a one-element list.
 *   - timestamp: epoch milliseconds as a number, or a date string in
 *     RFC 3339 or YYYY-MM-DD form.
 *
 * A nil value is reported separately from a coercion failure (ok=false with
 * present=false) so callers can decide whether absence is legal.
 */

// coerceNumber converts value to float64.
func coerceNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		// bool included: "true" vs 1 is ambiguous.
		return 0, false
	}
}

// coerceText converts a scalar to its string form.
func coerceText(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", true
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case json.Number:
		return v.String(), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return "", false
	}
}

// coerceList converts an array (or a single scalar) to a list of strings.
func coerceList(value any) ([]string, bool) {
	switch v := value.(type) {
	case nil:
		return nil, true
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, elem := range v {
			s, ok := coerceText(elem)
			if !ok || elem == nil {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		s, ok := coerceText(v)
		if !ok {
			return nil, false
		}
		return []string{s}, true
	}
}

// coerceBounds extracts up to two numeric bounds from a [min, max] array or
// a scalar. The second bound is optional and reported through hasMax.
func coerceBounds(value any, convert func(any) (float64, bool)) (lo, hi float64, hasMax, ok bool) {
	var elems []any
	switch v := value.(type) {
	case []any:
		elems = v
	case []float64:
		for _, f := range v {
			elems = append(elems, f)
		}
	case nil:
		return 0, 0, false, false
	default:
		elems = []any{v}
	}
	if len(elems) == 0 || len(elems) > 2 {
		return 0, 0, false, false
	}

	lo, ok = convert(elems[0])
	if !ok {
		return 0, 0, false, false
	}
	if len(elems) == 2 && elems[1] != nil {
		hi, ok = convert(elems[1])
		if !ok {
			return 0, 0, false, false
		}
		hasMax = true
	}
	return lo, hi, hasMax, true
}

// coerceTimestamp converts an epoch-millisecond number or a date string.
func coerceTimestamp(value any) (float64, bool) {
	if f, ok := coerceNumber(value); ok {
		return f, true
	}
	s, isString := value.(string)
	if !isString {
		return 0, false
	}
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return float64(t.UnixMilli()), true
		}
	}
	return 0, false
}
