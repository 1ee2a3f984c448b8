// internal/rules/evaluate.go
package rules

import (
	"strings"

	"github.com/KaIKuxy/eagle-library-player/internal/types"
)

/*
 * Smart folder evaluation.
 *
 * Evaluates a CompiledFolder against one item: conditions AND-ed together,
 * rules within a condition combined by All (every) or any (some), then the
 * condition's Negate flag applied.
 *
 * Evaluation flow:
 *   1. Folder with zero conditions: no match
 *   2. Per condition: zero rules is vacuously true, negation not applied
 *   3. Per rule: compile error -> false; otherwise dispatch by Property
 *   4. Short-circuit: AND stops on first false, OR on first true; folder
 *      stops on first failing condition
 *
 * Dispatch is a closed switch over Property with an explicit unknown arm.
 * Missing item attributes make the rule false, never an error. Nothing in
 * this file allocates on the hot path except matchSet's lookup map and the
 * joined comment string.
 */

// Evaluate reports whether item belongs to the compiled folder.
// ctx may be nil.
func (e *Engine) Evaluate(folder *CompiledFolder, item *types.Item, ctx *types.Context) bool {
	if folder == nil || item == nil || len(folder.Conditions) == 0 {
		return false
	}
	if ctx == nil {
		ctx = &types.Context{}
	}

	for i := range folder.Conditions {
		if !e.evaluateCondition(&folder.Conditions[i], item, ctx) {
			return false
		}
	}
	return true
}

// evaluateCondition combines the condition's rules and applies negation.
func (e *Engine) evaluateCondition(cond *CompiledCondition, item *types.Item, ctx *types.Context) bool {
	if len(cond.Rules) == 0 {
		return true
	}

	matched := cond.All
	for i := range cond.Rules {
		ok := e.evaluateRule(&cond.Rules[i], item, ctx)
		if cond.All && !ok {
			matched = false
			break
		}
		if !cond.All && ok {
			matched = true
			break
		}
	}

	if cond.Negate {
		return !matched
	}
	return matched
}

// evaluateRule dispatches one rule to its matcher.
func (e *Engine) evaluateRule(rule *CompiledRule, item *types.Item, ctx *types.Context) bool {
	if rule.Err != nil {
		return false
	}
	v := &rule.Value

	switch rule.Property {
	// string
	case PropertyName:
		return matchString(item.Name, rule.Method, v)
	case PropertyURL:
		return matchString(item.URL, rule.Method, v)
	case PropertyAnnotation:
		return matchString(item.Annotation, rule.Method, v)
	case PropertyComments:
		return matchString(joinComments(item.Comments), rule.Method, v)
	case PropertyFolderName:
		return matchFolderName(item, ctx, rule.Method, v)
	case PropertyCamera:
		if item.RawMetas == nil || item.RawMetas.Camera == "" {
			return false
		}
		return matchString(string(item.RawMetas.Camera), rule.Method, v)

	// numeric
	case PropertyWidth:
		return item.Width > 0 && matchNumber(float64(item.Width), rule.Method, v)
	case PropertyHeight:
		return item.Height > 0 && matchNumber(float64(item.Height), rule.Method, v)
	case PropertyFileSize:
		return item.Size > 0 && matchNumber(convertSize(item.Size, rule.Unit), rule.Method, v)
	case PropertyDuration:
		return item.Duration > 0 && matchNumber(convertDuration(item.Duration, rule.Unit), rule.Method, v)
	case PropertyBPM:
		return item.BPM > 0 && matchNumber(item.BPM, rule.Method, v)
	case PropertyISO, PropertyAperture, PropertyFocalLength, PropertyShutter:
		n, ok := exifValue(item, rule.Property)
		return ok && matchNumber(n, rule.Method, v)

	// date
	case PropertyCreateTime, PropertyMTime:
		return e.matchDate(item.ModificationTime, rule.Method, v)
	case PropertyBTime:
		ts := item.Btime
		if ts == 0 {
			ts = item.ModificationTime
		}
		return e.matchDate(ts, rule.Method, v)
	case PropertyTimestamp:
		return e.matchDate(captureTimestamp(item), rule.Method, v)

	// set
	case PropertyTags:
		return matchSet(item.Tags, rule.Method, v)
	case PropertyFolders:
		return matchSet(folderIDs(item.Folders), rule.Method, v)

	case PropertyType:
		return matchType(item.Ext, item.Medium, rule.Method, v)
	case PropertyRating:
		return matchRating(item.Star, rule.Method, v)
	case PropertyShape:
		return matchShape(item.Width, item.Height, rule.Method, v)
	case PropertyColor:
		return matchColor(item.Palettes, rule.Method, v)
	case PropertyFontActivated:
		return matchFont(item, ctx.InstalledFonts, rule.Method)

	case PropertyUnknown:
		return false
	default:
		return false
	}
}

// matchFolderName is true when any of the item's folders has a matching name.
// Folders missing from the mappings are skipped.
func matchFolderName(item *types.Item, ctx *types.Context, m Method, v *RuleValue) bool {
	for _, id := range item.Folders {
		folder, ok := ctx.FolderMappings[id]
		if !ok {
			continue
		}
		if matchString(folder.Name, m, v) {
			return true
		}
	}
	return false
}

func joinComments(comments []types.Comment) string {
	switch len(comments) {
	case 0:
		return ""
	case 1:
		return comments[0].Annotation
	}
	parts := make([]string, len(comments))
	for i, c := range comments {
		parts[i] = c.Annotation
	}
	return strings.Join(parts, " ")
}

func folderIDs(ids []types.FolderID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

// convertSize turns bytes into kb or (default) mb.
func convertSize(bytes int64, unit string) float64 {
	if unit == "kb" {
		return float64(bytes) / 1024
	}
	return float64(bytes) / (1024 * 1024)
}

// convertDuration turns seconds into m, h, or leaves seconds.
func convertDuration(seconds float64, unit string) float64 {
	switch unit {
	case "m":
		return seconds / 60
	case "h":
		return seconds / 3600
	default:
		return seconds
	}
}
