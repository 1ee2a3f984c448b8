// internal/types/folders.go
package types

/*
 * Domain types for smart folder definitions.
 *
 * Provides SmartFolder, Condition, Rule and the per-call evaluation Context
 * used by internal/rules for compilation and evaluation. The structs mirror the
 * library manager's JSON so definitions decode without a translation layer.
 *
 * Key types:
 *   - SmartFolder: conditions, always AND-ed together
 *   - Condition: rules combined by Match (AND/OR) with optional negation
 *   - Rule: one property/method/value test
 *   - Context: folder names and installed fonts supplied by the caller
 *
 * Rule.Value stays untyped here on purpose: its shape depends on the
 * property/method pair and is resolved once by rules.Compile.
 */

// Condition match modes.
const (
	MatchAll = "AND"
	MatchAny = "OR"
)

// Condition boolean flags. BooleanFalse negates the combined result.
const (
	BooleanTrue  = "TRUE"
	BooleanFalse = "FALSE"
)

// Rule is one atomic attribute test.
type Rule struct {
	Property string  `json:"property"`
	Method   string  `json:"method"`
	Value    any     `json:"value,omitempty"`
	Unit     string  `json:"unit,omitempty"`
	Width    float64 `json:"width,omitempty"`  // custom shape target width
	Height   float64 `json:"height,omitempty"` // custom shape target height
}

// Condition groups rules under one AND/OR combinator.
type Condition struct {
	Rules   []Rule `json:"rules"`
	Match   string `json:"match,omitempty"`   // "AND" or "OR" (default OR)
	Boolean string `json:"boolean,omitempty"` // "FALSE" negates (default TRUE)
}

// SmartFolder is a saved rule-based virtual collection.
type SmartFolder struct {
	ID         FolderID      `json:"id"`
	Name       string        `json:"name"`
	Conditions []Condition   `json:"conditions"`
	Children   []SmartFolder `json:"children,omitempty"`
}

// FolderInfo is the subset of a regular folder the engine needs.
type FolderInfo struct {
	ID   FolderID `json:"id"`
	Name string   `json:"name"`
}

// Context carries read-only auxiliary data for one evaluation batch.
// The engine never retains it across calls.
type Context struct {
	FolderMappings map[FolderID]FolderInfo
	InstalledFonts map[string]bool
}
