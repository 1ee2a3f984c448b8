// internal/rules/compile.go
package rules

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/KaIKuxy/eagle-library-player/internal/types"
)

/*
 * Smart folder compilation and validation.
 *
 * Compiles types.SmartFolder to CompiledFolder: property and method keys
 * resolved to enums, untyped rule values converted to a tagged RuleValue,
 * regexes compiled, color literals resolved through the engine's cache, and
 * rules inside each condition ordered by the cost model.
 *
 * Compilation workflow:
 *   1. Validate resource limits (conditions per folder, rules per condition)
 *   2. Resolve property/method and check the pair is legal for the family
 *   3. Coerce the value into the family's shape
 *   4. Calculate rule cost and stable-sort each condition
 *
 * Failure policy: resource limit violations fail the whole folder. Anything
 * wrong with an individual rule does not. The rule keeps its error, evaluates
 * to false forever, and is reported as a Diagnostic. One bad rule must not hide
 * a folder from the rest of the library.
 */

// ValueKind tags the variant held by a RuleValue.
type ValueKind int

const (
	ValueNone    ValueKind = iota // no operand (empty, not-empty, grayscale, font)
	ValueText                     // case-folded needle, type target or shape name
	ValuePattern                  // compiled regex
	ValueRange                    // numeric or date bounds
	ValueList                     // set members
	ValueStars                    // rating target or rating set
	ValueShape                    // shape name, or custom width/height
	ValueColor                    // resolved RGB target
)

// RuleValue is the compile-time resolved operand of a rule.
type RuleValue struct {
	Kind ValueKind

	Text    string
	Pattern *regexp.Regexp

	Min, Max float64
	HasMax   bool

	List []string
	Set  map[string]struct{}

	Stars   int
	Unrated bool // rating "none": matches items with no star

	Width, Height float64 // custom shape target

	Color RGB
}

// CompiledRule is one rule ready for evaluation.
type CompiledRule struct {
	Property Property
	Method   Method
	Unit     string
	Value    RuleValue
	Cost     int
	Err      error // non-nil rules never match
}

// CompiledCondition is a pre-processed condition.
type CompiledCondition struct {
	Rules  []CompiledRule // ordered by ascending cost
	All    bool           // "AND"; otherwise any rule suffices
	Negate bool           // boolean == "FALSE"
}

// CompiledFolder is fully pre-processed and ready for evaluation.
type CompiledFolder struct {
	FolderID    types.FolderID
	Name        string
	Conditions  []CompiledCondition
	Diagnostics []Diagnostic
}

// Diagnostic reports a rule that compiled to never-match.
type Diagnostic struct {
	Condition int // index in the authored folder
	Rule      int // index in the authored condition
	Property  string
	Method    string
	Err       error
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("condition %d rule %d (%s %s): %v", d.Condition, d.Rule, d.Property, d.Method, d.Err)
}

func (d Diagnostic) Unwrap() error { return d.Err }

// Compile validates and pre-processes a smart folder for evaluation.
func (e *Engine) Compile(folder *types.SmartFolder) (*CompiledFolder, error) {
	if len(folder.Conditions) > types.MaxConditionsPerFolder {
		return nil, types.ErrTooManyConditions
	}

	compiled := &CompiledFolder{
		FolderID:   folder.ID,
		Name:       folder.Name,
		Conditions: make([]CompiledCondition, 0, len(folder.Conditions)),
	}

	for ci, cond := range folder.Conditions {
		if len(cond.Rules) > types.MaxRulesPerCondition {
			return nil, fmt.Errorf("condition %d: %w", ci, types.ErrTooManyRules)
		}

		cc := CompiledCondition{
			Rules:  make([]CompiledRule, 0, len(cond.Rules)),
			All:    cond.Match == types.MatchAll,
			Negate: cond.Boolean == types.BooleanFalse,
		}
		for ri, rule := range cond.Rules {
			cr := e.compileRule(rule)
			if cr.Err != nil {
				compiled.Diagnostics = append(compiled.Diagnostics, Diagnostic{
					Condition: ci,
					Rule:      ri,
					Property:  rule.Property,
					Method:    rule.Method,
					Err:       cr.Err,
				})
			}
			cc.Rules = append(cc.Rules, cr)
		}

		// Stable sort: equal-cost rules keep authored order
		sort.SliceStable(cc.Rules, func(i, j int) bool {
			return cc.Rules[i].Cost < cc.Rules[j].Cost
		})

		compiled.Conditions = append(compiled.Conditions, cc)
	}

	return compiled, nil
}

// compileRule resolves a single rule. Errors are stored on the result.
func (e *Engine) compileRule(rule types.Rule) CompiledRule {
	cr := CompiledRule{
		Property: ParseProperty(rule.Property),
		Method:   ParseMethod(rule.Method),
		Unit:     rule.Unit,
	}

	fail := func(err error) CompiledRule {
		cr.Err = err
		cr.Value = RuleValue{}
		cr.Cost = CostUnknown
		return cr
	}

	if cr.Property == PropertyUnknown {
		return fail(fmt.Errorf("%w: %q", types.ErrUnknownProperty, rule.Property))
	}
	family := cr.Property.Family()
	if !family.Supports(cr.Method) {
		return fail(fmt.Errorf("%w: %q on %q", types.ErrInvalidMethod, rule.Method, rule.Property))
	}

	var (
		v   RuleValue
		err error
	)
	switch family {
	case FamilyString:
		v, err = compileText(cr.Method, rule.Value)
	case FamilyNumeric:
		v, err = compileRange(cr.Method, rule.Value, coerceNumber)
	case FamilyDate:
		v, err = compileRange(cr.Method, rule.Value, coerceTimestamp)
	case FamilySet:
		v, err = compileSet(cr.Method, rule.Value)
	case FamilyType:
		v, err = compileType(rule.Value)
	case FamilyRating:
		v, err = compileRating(cr.Method, rule.Value)
	case FamilyShape:
		v, err = compileShape(rule)
	case FamilyColor:
		v, err = e.compileColor(cr.Method, rule.Value)
	case FamilyFont:
		v = RuleValue{Kind: ValueNone}
	default:
		err = types.ErrUnknownProperty
	}
	if err != nil {
		return fail(err)
	}

	cr.Value = v
	cr.Cost = CalculateRuleCost(cr.Property, cr.Method)
	return cr
}

// compileText case-folds the needle and compiles regex patterns.
// An empty needle is legal; the string matcher treats it as never-match.
func compileText(m Method, value any) (RuleValue, error) {
	if m == MethodEmpty || m == MethodNotEmpty {
		return RuleValue{Kind: ValueNone}, nil
	}

	text, ok := coerceText(value)
	if !ok {
		return RuleValue{}, fmt.Errorf("%w: expected text, got %T", types.ErrMalformedValue, value)
	}
	text = strings.ToLower(text)

	if m != MethodRegex || text == "" {
		return RuleValue{Kind: ValueText, Text: text}, nil
	}

	if len(text) > types.MaxPatternLength {
		return RuleValue{}, fmt.Errorf("%w: pattern exceeds %d bytes", types.ErrInvalidPattern, types.MaxPatternLength)
	}
	re, err := regexp.Compile(text)
	if err != nil {
		return RuleValue{}, fmt.Errorf("%w: %v", types.ErrInvalidPattern, err)
	}
	return RuleValue{Kind: ValuePattern, Text: text, Pattern: re}, nil
}

// compileRange extracts [min, max]. between requires both bounds.
func compileRange(m Method, value any, convert func(any) (float64, bool)) (RuleValue, error) {
	lo, hi, hasMax, ok := coerceBounds(value, convert)
	if !ok {
		return RuleValue{}, fmt.Errorf("%w: expected numeric bounds, got %v", types.ErrMalformedValue, value)
	}
	if m == MethodBetween && !hasMax {
		return RuleValue{}, fmt.Errorf("%w: between needs two bounds", types.ErrMalformedValue)
	}
	return RuleValue{Kind: ValueRange, Min: lo, Max: hi, HasMax: hasMax}, nil
}

// compileSet deduplicates the rule's members into a lookup set.
func compileSet(m Method, value any) (RuleValue, error) {
	if m == MethodEmpty || m == MethodNotEmpty {
		return RuleValue{Kind: ValueNone}, nil
	}

	list, ok := coerceList(value)
	if !ok {
		return RuleValue{}, fmt.Errorf("%w: expected a list, got %T", types.ErrMalformedValue, value)
	}
	if len(list) > types.MaxSetRuleValues {
		return RuleValue{}, types.ErrTooManyValues
	}

	set := make(map[string]struct{}, len(list))
	uniq := make([]string, 0, len(list))
	for _, s := range list {
		if _, dup := set[s]; dup {
			continue
		}
		set[s] = struct{}{}
		uniq = append(uniq, s)
	}
	return RuleValue{Kind: ValueList, List: uniq, Set: set}, nil
}

func compileType(value any) (RuleValue, error) {
	text, ok := coerceText(value)
	if !ok {
		return RuleValue{}, fmt.Errorf("%w: expected a type name, got %T", types.ErrMalformedValue, value)
	}
	return RuleValue{Kind: ValueText, Text: strings.ToLower(text)}, nil
}

// compileRating handles both the contain list and the equal/unequal target.
func compileRating(m Method, value any) (RuleValue, error) {
	if m == MethodContain {
		var list []string
		if s, isString := value.(string); isString {
			list = strings.Split(s, ",")
		} else {
			var ok bool
			if list, ok = coerceList(value); !ok {
				return RuleValue{}, fmt.Errorf("%w: expected rating list, got %T", types.ErrMalformedValue, value)
			}
		}
		if len(list) > types.MaxSetRuleValues {
			return RuleValue{}, types.ErrTooManyValues
		}

		v := RuleValue{Kind: ValueStars, Set: make(map[string]struct{}, len(list))}
		for _, s := range list {
			s = strings.ToLower(strings.TrimSpace(s))
			if s == "none" {
				v.Unrated = true
				continue
			}
			v.Set[s] = struct{}{}
		}
		return v, nil
	}

	// equal/unequal: anything that is not an integer is the "none" sentinel
	text, _ := coerceText(value)
	stars, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		if f, ok := coerceNumber(value); ok {
			return RuleValue{Kind: ValueStars, Stars: int(f)}, nil
		}
		return RuleValue{Kind: ValueStars, Unrated: true}, nil
	}
	return RuleValue{Kind: ValueStars, Stars: stars}, nil
}

func compileShape(rule types.Rule) (RuleValue, error) {
	name, ok := coerceText(rule.Value)
	if !ok {
		return RuleValue{}, fmt.Errorf("%w: expected a shape name, got %T", types.ErrMalformedValue, rule.Value)
	}
	name = strings.ToLower(name)

	if name != ShapeCustom {
		return RuleValue{Kind: ValueShape, Text: name}, nil
	}
	if rule.Width <= 0 || rule.Height <= 0 {
		return RuleValue{}, fmt.Errorf("%w: custom shape needs positive width and height", types.ErrMalformedValue)
	}
	return RuleValue{Kind: ValueShape, Text: name, Width: rule.Width, Height: rule.Height}, nil
}

// compileColor resolves the hex target through the engine cache.
// grayscale ignores the value.
func (e *Engine) compileColor(m Method, value any) (RuleValue, error) {
	if m == MethodGrayscale {
		return RuleValue{Kind: ValueNone}, nil
	}
	hex, _ := value.(string)
	rgb, ok := e.colors.resolve(hex)
	if !ok {
		return RuleValue{}, fmt.Errorf("%w: %v", types.ErrInvalidColor, value)
	}
	return RuleValue{Kind: ValueColor, Color: rgb}, nil
}
