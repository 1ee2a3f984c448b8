// internal/rules/cost.go
package rules

/*
 * Cost model for rule ordering inside a condition.
 *
 * Matchers are pure and total, so the order in which a condition evaluates its
 * rules never changes the combined result. It only changes how soon AND can
 * stop on the first false and OR on the first true. Compile sorts each
 * condition's rules by ascending cost with a stable sort, so rules of equal
 * cost keep their authored order.
 *
 * Cost formula: family_cost * method_multiplier
 *
 * Family costs are rough relative figures:
 *   - map lookups and integer compares (set, rating, type, shape, font): 1-2
 *   - float compares after unit conversion and date arithmetic: 3-4
 *   - case-folded string scans, folder-name fan-out over folderMappings: 8-16
 *   - Lab conversion and CIEDE2000 for up to two palette entries: 64
 *
 * Regex search is charged 8x the base string cost. empty/not-empty on any
 * family is a length check and costs 1.
 */

const (
	CostSet      = 1
	CostRating   = 1
	CostType     = 2
	CostShape    = 2
	CostFont     = 2
	CostNumeric  = 3
	CostDate     = 4
	CostString   = 8
	CostFolderFn = 16 // folderName: one string match per item folder
	CostColor    = 64
	CostUnknown  = 0 // never matches; cheapest possible short-circuit

	MultiplierRegex = 8
)

// CalculateRuleCost returns the relative evaluation cost of a rule.
func CalculateRuleCost(p Property, m Method) int {
	if m == MethodEmpty || m == MethodNotEmpty {
		return 1
	}

	base := familyCost(p)
	if m == MethodRegex {
		base *= MultiplierRegex
	}
	return base
}

// familyCost returns the base cost for a property's matcher family.
func familyCost(p Property) int {
	if p == PropertyFolderName {
		return CostFolderFn
	}
	switch p.Family() {
	case FamilySet:
		return CostSet
	case FamilyRating:
		return CostRating
	case FamilyType:
		return CostType
	case FamilyShape:
		return CostShape
	case FamilyFont:
		return CostFont
	case FamilyNumeric:
		return CostNumeric
	case FamilyDate:
		return CostDate
	case FamilyString:
		return CostString
	case FamilyColor:
		return CostColor
	default:
		return CostUnknown
	}
}
