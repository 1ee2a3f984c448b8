// internal/rules/engine_test.go
package rules

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/KaIKuxy/eagle-library-player/internal/types"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestEngine(t testing.TB) *Engine {
	t.Helper()
	e, err := NewEngine(
		WithClock(func() time.Time { return testNow }),
		WithLocation(time.UTC),
		WithWorkers(4),
		WithColorCacheSize(64),
	)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	t.Cleanup(e.Close)
	return e
}

func numberedItems(n int) []types.Item {
	items := make([]types.Item, n)
	for i := range items {
		items[i] = types.Item{
			ID:    types.ItemID(fmt.Sprintf("item-%03d", i)),
			Name:  fmt.Sprintf("clip %d", i),
			Ext:   "mp4",
			Width: int64(i),
		}
	}
	return items
}

func TestNewEngine_Defaults(t *testing.T) {
	e, err := NewEngine(WithLocation(nil), WithWorkers(-1), WithColorCacheSize(0))
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	defer e.Close()

	if e.loc != time.Local {
		t.Errorf("loc = %v, want time.Local", e.loc)
	}
	if e.workers <= 0 {
		t.Errorf("workers = %d, want > 0", e.workers)
	}
	if e.now == nil {
		t.Error("now = nil, want wall clock")
	}
}

func TestFilter_PreservesOrder(t *testing.T) {
	e := newTestEngine(t)
	compiled, err := e.Compile(oneRule(types.Rule{Property: "width", Method: "=", Value: []any{0.0}}))
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	even, err := e.Compile(&types.SmartFolder{Conditions: []types.Condition{{
		Rules: []types.Rule{
			{Property: "name", Method: "regex", Value: `[02468]$`},
		},
	}}})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	items := numberedItems(101)

	got, err := e.Filter(context.Background(), compiled, items, nil)
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Filter(width = 0) matched %d items, want 0 (zero width is absent)", len(got))
	}

	got, err = e.Filter(context.Background(), even, items, nil)
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	if len(got) != 51 {
		t.Fatalf("len(Filter()) = %d, want 51", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].ID >= got[i].ID {
			t.Fatalf("Filter() out of order at %d: %s then %s", i, got[i-1].ID, got[i].ID)
		}
	}
}

func TestFilter_MatchesSequentialEvaluate(t *testing.T) {
	e := newTestEngine(t)
	compiled, err := e.Compile(oneRule(types.Rule{Property: "width", Method: "between", Value: []any{10.0, 40.0}}))
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	items := numberedItems(64)

	got, err := e.Filter(context.Background(), compiled, items, nil)
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}

	var want []types.ItemID
	for i := range items {
		if e.Evaluate(compiled, &items[i], nil) {
			want = append(want, items[i].ID)
		}
	}
	if len(got) != len(want) {
		t.Fatalf("len(Filter()) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i] {
			t.Errorf("Filter()[%d] = %s, want %s", i, got[i].ID, want[i])
		}
	}
}

func TestFilter_Empty(t *testing.T) {
	e := newTestEngine(t)
	compiled, _ := e.Compile(oneRule(types.Rule{Property: "name", Method: "not-empty"}))

	got, err := e.Filter(context.Background(), compiled, nil, nil)
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Filter(nil) = %v, want empty", got)
	}
}

func TestFilter_Cancelled(t *testing.T) {
	e := newTestEngine(t)
	compiled, _ := e.Compile(oneRule(types.Rule{Property: "name", Method: "not-empty"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Filter(ctx, compiled, numberedItems(10), nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Filter() error = %v, want %v", err, context.Canceled)
	}
}

func TestMatch_CompileFailureNeverMatches(t *testing.T) {
	e := newTestEngine(t)
	folder := &types.SmartFolder{Conditions: make([]types.Condition, types.MaxConditionsPerFolder+1)}
	if e.Match(folder, &types.Item{Name: "x"}, nil) {
		t.Error("Match() = true for folder over the condition limit, want false")
	}
}

func TestEvaluate_NilInputs(t *testing.T) {
	e := newTestEngine(t)
	compiled, _ := e.Compile(oneRule(types.Rule{Property: "name", Method: "empty"}))

	if e.Evaluate(nil, &types.Item{}, nil) {
		t.Error("Evaluate(nil folder) = true, want false")
	}
	if e.Evaluate(compiled, nil, nil) {
		t.Error("Evaluate(nil item) = true, want false")
	}
}

// Property-based test: evaluation is deterministic
func TestEvaluate_PropertyDeterministic(t *testing.T) {
	e := newTestEngine(t)
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	compiled, err := e.Compile(&types.SmartFolder{Conditions: []types.Condition{
		{Match: types.MatchAll, Rules: []types.Rule{
			{Property: "width", Method: "between", Value: []any{100.0, 2000.0}},
			{Property: "tags", Method: "union", Value: []any{"a", "b"}},
		}},
		{Boolean: types.BooleanFalse, Rules: []types.Rule{
			{Property: "rating", Method: "contain", Value: []any{"none", "1"}},
		}},
	}})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	properties.Property("identical inputs give identical results", prop.ForAll(
		func(width int64, star int, tag string) bool {
			item := &types.Item{Width: width, Star: star, Tags: []string{tag}}
			first := e.Evaluate(compiled, item, nil)
			for i := 0; i < 3; i++ {
				if e.Evaluate(compiled, item, nil) != first {
					return false
				}
			}
			return true
		},
		gen.Int64Range(0, 4000),
		gen.IntRange(0, 5),
		gen.OneConstOf("a", "b", "c"),
	))

	properties.TestingRun(t)
}

// Property-based test: set laws
func TestMatchSet_PropertyLaws(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	members := gen.SliceOf(gen.OneConstOf("a", "b", "c", "d", "e"))

	properties.Property("union and identity are complements", prop.ForAll(
		func(item, rule []string) bool {
			v, _ := compileSet(MethodUnion, toAny(rule))
			return matchSet(item, MethodUnion, &v) != matchSet(item, MethodIdentity, &v)
		},
		members, members,
	))

	properties.Property("equal implies intersection", prop.ForAll(
		func(item, rule []string) bool {
			v, _ := compileSet(MethodEqual, toAny(rule))
			if !matchSet(item, MethodEqual, &v) {
				return true
			}
			return matchSet(item, MethodIntersection, &v)
		},
		members, members,
	))

	properties.Property("an item always intersects its own non-empty set", prop.ForAll(
		func(item []string) bool {
			v, _ := compileSet(MethodIntersection, toAny(item))
			return len(v.List) == 0 || matchSet(item, MethodIntersection, &v)
		},
		members,
	))

	properties.Property("empty and not-empty are complements", prop.ForAll(
		func(item []string) bool {
			v := RuleValue{}
			return matchSet(item, MethodEmpty, &v) != matchSet(item, MethodNotEmpty, &v)
		},
		members,
	))

	properties.TestingRun(t)
}

// Property-based test: empty/not-empty ignore the rule value
func TestEvaluate_PropertyEmptyIgnoresValue(t *testing.T) {
	e := newTestEngine(t)
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("value does not change empty/not-empty", prop.ForAll(
		func(name, junk string, method string) bool {
			item := &types.Item{Name: name}
			with := e.Match(oneRule(types.Rule{Property: "name", Method: method, Value: junk}), item, nil)
			without := e.Match(oneRule(types.Rule{Property: "name", Method: method}), item, nil)
			return with == without
		},
		gen.OneConstOf("", "beach", "CITY"),
		gen.AlphaString(),
		gen.OneConstOf("empty", "not-empty"),
	))

	properties.TestingRun(t)
}

// Property-based test: between is inclusive on both ends
func TestMatchNumber_PropertyBetweenInclusive(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("both bounds match", prop.ForAll(
		func(lo, span int) bool {
			v := RuleValue{Kind: ValueRange, Min: float64(lo), Max: float64(lo + span), HasMax: true}
			return matchNumber(v.Min, MethodBetween, &v) && matchNumber(v.Max, MethodBetween, &v)
		},
		gen.IntRange(-10000, 10000),
		gen.IntRange(0, 10000),
	))

	properties.Property("just outside does not match", prop.ForAll(
		func(lo, span int) bool {
			v := RuleValue{Kind: ValueRange, Min: float64(lo), Max: float64(lo + span), HasMax: true}
			return !matchNumber(v.Min-1, MethodBetween, &v) && !matchNumber(v.Max+1, MethodBetween, &v)
		},
		gen.IntRange(-10000, 10000),
		gen.IntRange(0, 10000),
	))

	properties.TestingRun(t)
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
