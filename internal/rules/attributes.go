// internal/rules/attributes.go
package rules

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/KaIKuxy/eagle-library-player/internal/types"
)

// Shape names.
const (
	ShapeLandscape          = "landscape"
	ShapePanoramicLandscape = "panoramic-landscape"
	ShapePortrait           = "portrait"
	ShapePanoramicPortrait  = "panoramic-portrait"
	ShapeSquare             = "square"
	ShapeCustom             = "custom"
)

// panoramicRatio is the long/short side ratio at which a shape becomes panoramic.
const panoramicRatio = 2.5

// numericLiteral extracts signed decimal literals from formatted EXIF text.
var numericLiteral = regexp.MustCompile(`[+-]?\d+(\.\d+)?`)

// matchRating applies contain/equal/unequal to an item's star rating.
// Star 0 is unrated.
func matchRating(star int, m Method, v *RuleValue) bool {
	switch m {
	case MethodContain:
		if star == 0 {
			return v.Unrated
		}
		_, ok := v.Set[strconv.Itoa(star)]
		return ok
	case MethodEqual:
		if v.Unrated {
			return star == 0
		}
		return star == v.Stars
	case MethodUnequal:
		if v.Unrated {
			return star != 0
		}
		return star != v.Stars
	default:
		return false
	}
}

// classifyShape names the aspect class of a width x height item.
func classifyShape(width, height int64) string {
	w, h := float64(width), float64(height)
	switch {
	case w > h:
		if w/h >= panoramicRatio {
			return ShapePanoramicLandscape
		}
		return ShapeLandscape
	case w < h:
		if h/w >= panoramicRatio {
			return ShapePanoramicPortrait
		}
		return ShapePortrait
	default:
		return ShapeSquare
	}
}

// matchShape applies equal/unequal to the item's aspect class.
// Items without both dimensions never match, for either method.
func matchShape(width, height int64, m Method, v *RuleValue) bool {
	if width <= 0 || height <= 0 {
		return false
	}

	var same bool
	if v.Text == ShapeCustom {
		same = float64(width)/float64(height) == v.Width/v.Height
	} else {
		same = classifyShape(width, height) == v.Text
	}

	switch m {
	case MethodEqual:
		return same
	case MethodUnequal:
		return !same
	default:
		return false
	}
}

// exifNumber returns the nth numeric literal of a formatted metadata value.
func exifNumber(value types.MetaValue, nth int) (float64, bool) {
	if value == "" {
		return 0, false
	}
	found := numericLiteral.FindAllString(string(value), nth+1)
	if len(found) <= nth {
		return 0, false
	}
	f, err := strconv.ParseFloat(found[nth], 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// exifValue reads the numeric EXIF attribute behind p.
func exifValue(item *types.Item, p Property) (float64, bool) {
	if item.RawMetas == nil {
		return 0, false
	}
	metas := item.RawMetas
	switch p {
	case PropertyISO:
		f, ok := exifNumber(metas.ISOSpeed, 0)
		return float64(int64(f)), ok
	case PropertyAperture:
		return exifNumber(metas.Aperture, 0)
	case PropertyFocalLength:
		return exifNumber(metas.FocalLength, 0)
	case PropertyShutter:
		// "1/250" -> 250
		return exifNumber(metas.Shutter, 1)
	default:
		return 0, false
	}
}

// captureTimestamp parses rawMetas.timestamp as epoch milliseconds.
// Returns 0 when absent or unparseable.
func captureTimestamp(item *types.Item) int64 {
	if item.RawMetas == nil {
		return 0
	}
	raw := strings.TrimSpace(string(item.RawMetas.Timestamp))
	if raw == "" {
		return 0
	}
	if ts, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return ts
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return int64(f)
	}
	return 0
}

// fontKey builds the installed-font lookup key "<postScriptName>_.<ext>".
func fontKey(item *types.Item) (string, bool) {
	if item.FontMetas == nil {
		return "", false
	}
	name := item.FontMetas.PostScriptName.Primary()
	if name == "" {
		return "", false
	}
	return name + "_." + item.Ext, true
}

// matchFont applies activate/deactivate against the installed font set.
func matchFont(item *types.Item, installed map[string]bool, m Method) bool {
	key, ok := fontKey(item)
	if !ok {
		return false
	}
	active := installed[key]
	switch m {
	case MethodActivate:
		return active
	case MethodDeactivate:
		return !active
	default:
		return false
	}
}
