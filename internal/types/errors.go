package types

import "errors"

// Sentinel errors for eagle-library-player operations.
var (
	// ErrUnknownProperty indicates a rule property outside the closed property set.
	ErrUnknownProperty = errors.New("unknown rule property")

	// ErrInvalidMethod indicates a method that the rule's property does not support.
	ErrInvalidMethod = errors.New("invalid method for rule property")

	// ErrMalformedValue indicates a rule value whose shape does not fit its property/method.
	ErrMalformedValue = errors.New("malformed rule value")

	// ErrInvalidPattern indicates a regex rule that failed to compile.
	ErrInvalidPattern = errors.New("invalid regex pattern")

	// ErrInvalidColor indicates a color rule whose value is not a #rrggbb literal.
	ErrInvalidColor = errors.New("invalid color literal")

	// ErrTooManyConditions indicates a folder exceeds MaxConditionsPerFolder.
	ErrTooManyConditions = errors.New("smart folder has too many conditions")

	// ErrTooManyRules indicates a condition exceeds MaxRulesPerCondition.
	ErrTooManyRules = errors.New("condition has too many rules")

	// ErrTooManyValues indicates a list-valued rule exceeds MaxSetRuleValues.
	ErrTooManyValues = errors.New("rule has too many values")

	// ErrFolderNotFound indicates a smart folder id is unknown to the store and the library.
	ErrFolderNotFound = errors.New("smart folder not found")

	// ErrLibraryUnavailable indicates the library manager API could not be reached.
	ErrLibraryUnavailable = errors.New("library manager unavailable")

	// ErrLibraryResponse indicates the library manager returned a non-success envelope.
	ErrLibraryResponse = errors.New("library manager returned an error")
)
