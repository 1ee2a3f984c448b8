// internal/rules/compile_test.go
package rules

import (
	"errors"
	"testing"

	"github.com/KaIKuxy/eagle-library-player/internal/types"
)

func TestCompile_SimpleFolder(t *testing.T) {
	e := newTestEngine(t)
	folder := &types.SmartFolder{
		ID:   "folder-001",
		Name: "videos",
		Conditions: []types.Condition{
			{
				Match: types.MatchAll,
				Rules: []types.Rule{{Property: "type", Method: "equal", Value: "video"}},
			},
		},
	}

	compiled, err := e.Compile(folder)
	if err != nil {
		t.Fatalf("Compile() error = %v, want nil", err)
	}
	if compiled.FolderID != "folder-001" {
		t.Errorf("FolderID = %v, want %v", compiled.FolderID, "folder-001")
	}
	if len(compiled.Conditions) != 1 {
		t.Fatalf("len(Conditions) = %v, want 1", len(compiled.Conditions))
	}
	cond := compiled.Conditions[0]
	if !cond.All || cond.Negate {
		t.Errorf("condition All/Negate = %v/%v, want true/false", cond.All, cond.Negate)
	}
	rule := cond.Rules[0]
	if rule.Property != PropertyType || rule.Method != MethodEqual {
		t.Errorf("rule = %v %v, want type equal", rule.Property, rule.Method)
	}
	if rule.Value.Kind != ValueText || rule.Value.Text != "video" {
		t.Errorf("Value = %+v, want text video", rule.Value)
	}
	if len(compiled.Diagnostics) != 0 {
		t.Errorf("Diagnostics = %v, want none", compiled.Diagnostics)
	}
}

func TestCompile_DefaultMatchAndBoolean(t *testing.T) {
	e := newTestEngine(t)
	folder := &types.SmartFolder{
		Conditions: []types.Condition{
			{Rules: []types.Rule{{Property: "name", Method: "contain", Value: "x"}}},
			{Boolean: types.BooleanFalse, Match: "and", Rules: nil},
		},
	}

	compiled, err := e.Compile(folder)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if compiled.Conditions[0].All {
		t.Error("missing match should default to any")
	}
	if compiled.Conditions[0].Negate {
		t.Error("missing boolean should not negate")
	}
	if compiled.Conditions[1].All {
		t.Error("lowercase \"and\" is not the AND combinator")
	}
	if !compiled.Conditions[1].Negate {
		t.Error("boolean FALSE should negate")
	}
}

func TestCompile_RuleDiagnostics(t *testing.T) {
	tests := []struct {
		name    string
		rule    types.Rule
		wantErr error
	}{
		{name: "unknown property", rule: types.Rule{Property: "mood", Method: "equal", Value: "happy"}, wantErr: types.ErrUnknownProperty},
		{name: "method not in family", rule: types.Rule{Property: "width", Method: "contain", Value: "1"}, wantErr: types.ErrInvalidMethod},
		{name: "unknown method", rule: types.Rule{Property: "name", Method: "soundsLike", Value: "x"}, wantErr: types.ErrInvalidMethod},
		{name: "numeric garbage", rule: types.Rule{Property: "width", Method: ">", Value: []any{"wide"}}, wantErr: types.ErrMalformedValue},
		{name: "between one bound", rule: types.Rule{Property: "height", Method: "between", Value: []any{1.0}}, wantErr: types.ErrMalformedValue},
		{name: "bad regex", rule: types.Rule{Property: "name", Method: "regex", Value: "(unclosed"}, wantErr: types.ErrInvalidPattern},
		{name: "bad color", rule: types.Rule{Property: "color", Method: "similar", Value: "#zzzzzz"}, wantErr: types.ErrInvalidColor},
		{name: "short color", rule: types.Rule{Property: "color", Method: "accuracy", Value: "#fff"}, wantErr: types.ErrInvalidColor},
		{name: "custom shape without size", rule: types.Rule{Property: "shape", Method: "equal", Value: "custom"}, wantErr: types.ErrMalformedValue},
		{name: "tags as object", rule: types.Rule{Property: "tags", Method: "union", Value: map[string]any{"a": 1.0}}, wantErr: types.ErrMalformedValue},
		{name: "name as list", rule: types.Rule{Property: "name", Method: "equal", Value: []any{"a"}}, wantErr: types.ErrMalformedValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t)
			folder := &types.SmartFolder{Conditions: []types.Condition{{Rules: []types.Rule{tt.rule}}}}

			compiled, err := e.Compile(folder)
			if err != nil {
				t.Fatalf("Compile() error = %v, want nil (rule errors are diagnostics)", err)
			}
			if len(compiled.Diagnostics) != 1 {
				t.Fatalf("len(Diagnostics) = %d, want 1", len(compiled.Diagnostics))
			}
			diag := compiled.Diagnostics[0]
			if !errors.Is(diag, tt.wantErr) {
				t.Errorf("Diagnostic = %v, want %v", diag, tt.wantErr)
			}
			if diag.Condition != 0 || diag.Rule != 0 {
				t.Errorf("Diagnostic position = %d/%d, want 0/0", diag.Condition, diag.Rule)
			}
			if compiled.Conditions[0].Rules[0].Err == nil {
				t.Error("rule Err = nil, want compile error kept on rule")
			}
		})
	}
}

func TestCompile_EmptyMethodsIgnoreValue(t *testing.T) {
	e := newTestEngine(t)
	for _, rule := range []types.Rule{
		{Property: "name", Method: "empty", Value: map[string]any{"junk": true}},
		{Property: "tags", Method: "not-empty", Value: 42.0},
		{Property: "color", Method: "grayscale", Value: "not a color"},
		{Property: "fontActivated", Method: "activate", Value: []any{1.0}},
	} {
		folder := &types.SmartFolder{Conditions: []types.Condition{{Rules: []types.Rule{rule}}}}
		compiled, err := e.Compile(folder)
		if err != nil {
			t.Fatalf("Compile(%s %s) error = %v", rule.Property, rule.Method, err)
		}
		if len(compiled.Diagnostics) != 0 {
			t.Errorf("Compile(%s %s) diagnostics = %v, want none", rule.Property, rule.Method, compiled.Diagnostics)
		}
	}
}

func TestCompile_ResourceLimits(t *testing.T) {
	e := newTestEngine(t)

	t.Run("too many conditions", func(t *testing.T) {
		folder := &types.SmartFolder{Conditions: make([]types.Condition, types.MaxConditionsPerFolder+1)}
		if _, err := e.Compile(folder); !errors.Is(err, types.ErrTooManyConditions) {
			t.Errorf("Compile() error = %v, want %v", err, types.ErrTooManyConditions)
		}
	})

	t.Run("too many rules", func(t *testing.T) {
		rules := make([]types.Rule, types.MaxRulesPerCondition+1)
		for i := range rules {
			rules[i] = types.Rule{Property: "name", Method: "contain", Value: "a"}
		}
		folder := &types.SmartFolder{Conditions: []types.Condition{{Rules: rules}}}
		if _, err := e.Compile(folder); !errors.Is(err, types.ErrTooManyRules) {
			t.Errorf("Compile() error = %v, want %v", err, types.ErrTooManyRules)
		}
	})

	t.Run("too many set values", func(t *testing.T) {
		values := make([]any, types.MaxSetRuleValues+1)
		for i := range values {
			values[i] = float64(i)
		}
		folder := &types.SmartFolder{Conditions: []types.Condition{{
			Rules: []types.Rule{{Property: "tags", Method: "union", Value: values}},
		}}}
		compiled, err := e.Compile(folder)
		if err != nil {
			t.Fatalf("Compile() error = %v", err)
		}
		if len(compiled.Diagnostics) != 1 || !errors.Is(compiled.Diagnostics[0], types.ErrTooManyValues) {
			t.Errorf("Diagnostics = %v, want %v", compiled.Diagnostics, types.ErrTooManyValues)
		}
	})

	t.Run("pattern too long", func(t *testing.T) {
		long := make([]byte, types.MaxPatternLength+1)
		for i := range long {
			long[i] = 'a'
		}
		folder := &types.SmartFolder{Conditions: []types.Condition{{
			Rules: []types.Rule{{Property: "name", Method: "regex", Value: string(long)}},
		}}}
		compiled, err := e.Compile(folder)
		if err != nil {
			t.Fatalf("Compile() error = %v", err)
		}
		if len(compiled.Diagnostics) != 1 || !errors.Is(compiled.Diagnostics[0], types.ErrInvalidPattern) {
			t.Errorf("Diagnostics = %v, want %v", compiled.Diagnostics, types.ErrInvalidPattern)
		}
	})
}

func TestCompile_CostOrdering(t *testing.T) {
	e := newTestEngine(t)
	folder := &types.SmartFolder{Conditions: []types.Condition{{
		Match: types.MatchAll,
		Rules: []types.Rule{
			{Property: "color", Method: "similar", Value: "#ff0000"},
			{Property: "name", Method: "regex", Value: "^a"},
			{Property: "name", Method: "contain", Value: "b"},
			{Property: "width", Method: ">", Value: []any{100.0}},
			{Property: "tags", Method: "union", Value: []any{"x"}},
			{Property: "annotation", Method: "contain", Value: "c"},
		},
	}}}

	compiled, err := e.Compile(folder)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	got := compiled.Conditions[0].Rules
	want := []Property{PropertyTags, PropertyWidth, PropertyName, PropertyAnnotation, PropertyColor, PropertyName}
	for i := range want {
		if got[i].Property != want[i] {
			t.Errorf("Rules[%d].Property = %v, want %v", i, got[i].Property, want[i])
		}
	}
	// Stable: equal-cost string rules keep authored order
	if got[2].Method != MethodContain || got[3].Property != PropertyAnnotation {
		t.Errorf("equal-cost rules reordered: %v %v then %v", got[2].Property, got[2].Method, got[3].Property)
	}
	if got[5].Method != MethodRegex {
		t.Errorf("Rules[5].Method = %v, want regex", got[5].Method)
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Cost > got[i].Cost {
			t.Errorf("Rules not cost-ordered at %d: %d > %d", i, got[i-1].Cost, got[i].Cost)
		}
	}
}

func TestCompile_RatingValues(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		value       any
		wantStars   int
		wantUnrated bool
		wantSet     []string
	}{
		{name: "equal int", method: "equal", value: 3.0, wantStars: 3},
		{name: "equal string", method: "equal", value: "4", wantStars: 4},
		{name: "equal none", method: "equal", value: "none", wantUnrated: true},
		{name: "unequal garbage is none", method: "unequal", value: "lots", wantUnrated: true},
		{name: "contain list", method: "contain", value: []any{"none", "3"}, wantUnrated: true, wantSet: []string{"3"}},
		{name: "contain numbers", method: "contain", value: []any{1.0, 2.0}, wantSet: []string{"1", "2"}},
		{name: "contain comma string", method: "contain", value: "1, 5,none", wantUnrated: true, wantSet: []string{"1", "5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := compileRating(ParseMethod(tt.method), tt.value)
			if err != nil {
				t.Fatalf("compileRating() error = %v", err)
			}
			if v.Unrated != tt.wantUnrated {
				t.Errorf("Unrated = %v, want %v", v.Unrated, tt.wantUnrated)
			}
			if tt.wantSet == nil {
				if v.Stars != tt.wantStars {
					t.Errorf("Stars = %v, want %v", v.Stars, tt.wantStars)
				}
				return
			}
			if len(v.Set) != len(tt.wantSet) {
				t.Fatalf("Set = %v, want %v", v.Set, tt.wantSet)
			}
			for _, s := range tt.wantSet {
				if _, ok := v.Set[s]; !ok {
					t.Errorf("Set missing %q", s)
				}
			}
		})
	}
}

func TestCompile_SetDeduplicates(t *testing.T) {
	v, err := compileSet(MethodEqual, []any{"a", "b", "a"})
	if err != nil {
		t.Fatalf("compileSet() error = %v", err)
	}
	if len(v.List) != 2 {
		t.Errorf("List = %v, want 2 unique members", v.List)
	}
}

func TestCompile_RegexIsCaseFolded(t *testing.T) {
	v, err := compileText(MethodRegex, "^IMG_\\d+")
	if err != nil {
		t.Fatalf("compileText() error = %v", err)
	}
	if v.Kind != ValuePattern {
		t.Fatalf("Kind = %v, want ValuePattern", v.Kind)
	}
	if !v.Pattern.MatchString("img_0042") {
		t.Error("folded pattern should match folded subject")
	}
}
