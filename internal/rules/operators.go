// internal/rules/operators.go
package rules

import (
	"strings"
)

/*
 * Primitive comparison logic shared by the attribute matchers.
 *
 * Three operator groups, each a plain function over already-resolved values:
 *   - matchString: case-folded text tests (equal, startWith, endWith,
 *     contain, uncontain, empty, not-empty, regex)
 *   - matchNumber: =, >=, <=, >, < against Min, and inclusive between
 *   - matchSet: cardinality and overlap tests over a member set
 *
 * The rule side is case-folded at compile time; the item side is folded here.
 * Every function returns false for a method outside its group. No function
 * panics or returns an error.
 */

// matchString applies a string method to one item value.
// An empty needle never matches except for empty/not-empty.
func matchString(value string, m Method, v *RuleValue) bool {
	value = strings.ToLower(value)

	switch m {
	case MethodEmpty:
		return value == ""
	case MethodNotEmpty:
		return value != ""
	}

	if v.Text == "" {
		return false
	}

	switch m {
	case MethodEqual:
		return value == v.Text
	case MethodStartWith:
		return strings.HasPrefix(value, v.Text)
	case MethodEndWith:
		return strings.HasSuffix(value, v.Text)
	case MethodContain:
		return strings.Contains(value, v.Text)
	case MethodUncontain:
		return !strings.Contains(value, v.Text)
	case MethodRegex:
		if v.Pattern == nil {
			return false
		}
		return v.Pattern.MatchString(value)
	default:
		return false
	}
}

// matchNumber compares value against the rule bounds.
// Callers handle absence before calling.
func matchNumber(value float64, m Method, v *RuleValue) bool {
	switch m {
	case MethodEq:
		return value == v.Min
	case MethodGte:
		return value >= v.Min
	case MethodLte:
		return value <= v.Min
	case MethodGt:
		return value > v.Min
	case MethodLt:
		return value < v.Min
	case MethodBetween:
		return v.HasMax && value >= v.Min && value <= v.Max
	default:
		return false
	}
}

// matchSet tests item members against the rule set.
// A nil or empty members slice is the empty set.
func matchSet(members []string, m Method, v *RuleValue) bool {
	switch m {
	case MethodEmpty:
		return len(members) == 0
	case MethodNotEmpty:
		return len(members) > 0
	}

	have := make(map[string]struct{}, len(members))
	for _, s := range members {
		have[s] = struct{}{}
	}

	shared := 0
	for _, s := range v.List {
		if _, ok := have[s]; ok {
			shared++
		}
	}

	switch m {
	case MethodIntersection, MethodContain:
		return len(v.List) > 0 && shared == len(v.List)
	case MethodEqual:
		// cardinality of the item's tag set, duplicates collapsed
		return len(v.List) > 0 && shared == len(v.List) && len(have) == len(v.List)
	case MethodUnion:
		return shared > 0
	case MethodIdentity:
		return shared == 0
	default:
		return false
	}
}
