// Package types provides domain models shared across eagle-library-player components.
//
// Zero-dependency design: folders.go, item.go and errors.go use only the
// standard library so the rule engine can be embedded without pulling in the
// service stack. ID utilities in ids.go import uuid but are isolated.
//
// Wire-format note: these structs decode directly from the library manager's
// JSON API. Fields the engine never reads are omitted rather than carried.
package types

// FolderID identifies a folder or smart folder in the library manager.
type FolderID string

// ItemID identifies a library item.
type ItemID string

// RunID identifies one filter run recorded by the folder store.
type RunID string

// Resource limits enforced by the rule engine and filter service.
const (
	// MaxConditionsPerFolder bounds compile work for a single smart folder.
	MaxConditionsPerFolder = 64

	// MaxRulesPerCondition bounds per-item evaluation cost.
	MaxRulesPerCondition = 128

	// MaxSetRuleValues limits list-valued rules (tags, folders, ratings).
	MaxSetRuleValues = 256

	// MaxPatternLength caps user regex size before compilation.
	MaxPatternLength = 1024

	// DefaultColorCacheSize is the number of distinct hex literals memoized per engine.
	DefaultColorCacheSize = 4096
)
