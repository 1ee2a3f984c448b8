package rules

import (
	"encoding/json"
	"testing"
	"time"
)

func TestCoerceNumber(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		want   float64
		wantOK bool
	}{
		{name: "float64 passthrough", value: 42.5, want: 42.5, wantOK: true},
		{name: "int", value: 100, want: 100, wantOK: true},
		{name: "int64", value: int64(999), want: 999, wantOK: true},
		{name: "json.Number", value: json.Number("12.5"), want: 12.5, wantOK: true},
		{name: "numeric string", value: "25", want: 25, wantOK: true},
		{name: "string with whitespace", value: "  42  ", want: 42, wantOK: true},
		{name: "negative string", value: "-3.5", want: -3.5, wantOK: true},
		{name: "empty string", value: "", wantOK: false},
		{name: "whitespace only", value: "   ", wantOK: false},
		{name: "non-numeric string", value: "abc", wantOK: false},
		{name: "bool rejected", value: true, wantOK: false},
		{name: "nil rejected", value: nil, wantOK: false},
		{name: "list rejected", value: []any{1.0}, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := coerceNumber(tt.value)
			if ok != tt.wantOK {
				t.Fatalf("coerceNumber(%v) ok = %v, want %v", tt.value, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("coerceNumber(%v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestCoerceText(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		want   string
		wantOK bool
	}{
		{name: "string", value: "Hello", want: "Hello", wantOK: true},
		{name: "nil is empty", value: nil, want: "", wantOK: true},
		{name: "integral float", value: 3.0, want: "3", wantOK: true},
		{name: "fractional float", value: 2.5, want: "2.5", wantOK: true},
		{name: "int", value: 7, want: "7", wantOK: true},
		{name: "bool", value: false, want: "false", wantOK: true},
		{name: "list rejected", value: []any{"a"}, wantOK: false},
		{name: "object rejected", value: map[string]any{"a": 1.0}, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := coerceText(tt.value)
			if ok != tt.wantOK {
				t.Fatalf("coerceText(%v) ok = %v, want %v", tt.value, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("coerceText(%v) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestCoerceList(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		want   []string
		wantOK bool
	}{
		{name: "any slice", value: []any{"a", "b"}, want: []string{"a", "b"}, wantOK: true},
		{name: "mixed scalars", value: []any{"a", 3.0}, want: []string{"a", "3"}, wantOK: true},
		{name: "string slice", value: []string{"x"}, want: []string{"x"}, wantOK: true},
		{name: "scalar becomes singleton", value: "solo", want: []string{"solo"}, wantOK: true},
		{name: "nil is empty", value: nil, want: nil, wantOK: true},
		{name: "nil element rejected", value: []any{"a", nil}, wantOK: false},
		{name: "nested list rejected", value: []any{[]any{"a"}}, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := coerceList(tt.value)
			if ok != tt.wantOK {
				t.Fatalf("coerceList(%v) ok = %v, want %v", tt.value, ok, tt.wantOK)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("coerceList(%v) = %v, want %v", tt.value, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("coerceList(%v)[%d] = %q, want %q", tt.value, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestCoerceBounds(t *testing.T) {
	tests := []struct {
		name       string
		value      any
		wantLo     float64
		wantHi     float64
		wantHasMax bool
		wantOK     bool
	}{
		{name: "pair", value: []any{10.0, 20.0}, wantLo: 10, wantHi: 20, wantHasMax: true, wantOK: true},
		{name: "string pair", value: []any{"1", "2"}, wantLo: 1, wantHi: 2, wantHasMax: true, wantOK: true},
		{name: "single element", value: []any{5.0}, wantLo: 5, wantOK: true},
		{name: "null second bound", value: []any{5.0, nil}, wantLo: 5, wantOK: true},
		{name: "scalar", value: 8.0, wantLo: 8, wantOK: true},
		{name: "float slice", value: []float64{1, 2}, wantLo: 1, wantHi: 2, wantHasMax: true, wantOK: true},
		{name: "nil", value: nil, wantOK: false},
		{name: "empty list", value: []any{}, wantOK: false},
		{name: "three elements", value: []any{1.0, 2.0, 3.0}, wantOK: false},
		{name: "bad first bound", value: []any{"x", 2.0}, wantOK: false},
		{name: "bad second bound", value: []any{1.0, "x"}, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi, hasMax, ok := coerceBounds(tt.value, coerceNumber)
			if ok != tt.wantOK {
				t.Fatalf("coerceBounds(%v) ok = %v, want %v", tt.value, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if lo != tt.wantLo || hi != tt.wantHi || hasMax != tt.wantHasMax {
				t.Errorf("coerceBounds(%v) = (%v, %v, %v), want (%v, %v, %v)",
					tt.value, lo, hi, hasMax, tt.wantLo, tt.wantHi, tt.wantHasMax)
			}
		})
	}
}

func TestCoerceTimestamp(t *testing.T) {
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		value  any
		want   float64
		wantOK bool
	}{
		{name: "epoch millis", value: 1700000000000.0, want: 1700000000000, wantOK: true},
		{name: "date only", value: "2024-03-15", want: float64(day.UnixMilli()), wantOK: true},
		{name: "rfc3339", value: "2024-03-15T00:00:00Z", want: float64(day.UnixMilli()), wantOK: true},
		{name: "garbage", value: "last tuesday", wantOK: false},
		{name: "bool", value: true, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := coerceTimestamp(tt.value)
			if ok != tt.wantOK {
				t.Fatalf("coerceTimestamp(%v) ok = %v, want %v", tt.value, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("coerceTimestamp(%v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}
