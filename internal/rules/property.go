// internal/rules/property.go
package rules

/*
 * Closed property and method vocabularies.
 *
 * Rule property and method keys arrive as strings from folder definitions.
 * Compile resolves them once into enums so evaluation dispatches through an
 * exhaustive switch instead of a runtime lookup table. Keys outside these
 * vocabularies resolve to PropertyUnknown / MethodUnknown and the rule never
 * matches.
 *
 * Each property belongs to one family, and the family decides which methods
 * are legal and what shape the rule value must have.
 */

// Property identifies the item attribute a rule tests.
type Property int

const (
	PropertyUnknown Property = iota
	PropertyName
	PropertyFolderName
	PropertyURL
	PropertyAnnotation
	PropertyComments
	PropertyCamera
	PropertyWidth
	PropertyHeight
	PropertyFileSize
	PropertyDuration
	PropertyBPM
	PropertyISO
	PropertyAperture
	PropertyFocalLength
	PropertyShutter
	PropertyCreateTime
	PropertyMTime
	PropertyBTime
	PropertyTimestamp
	PropertyTags
	PropertyFolders
	PropertyType
	PropertyRating
	PropertyShape
	PropertyColor
	PropertyFontActivated
)

var propertyKeys = map[string]Property{
	"name":          PropertyName,
	"folderName":    PropertyFolderName,
	"url":           PropertyURL,
	"annotation":    PropertyAnnotation,
	"comments":      PropertyComments,
	"camera":        PropertyCamera,
	"width":         PropertyWidth,
	"height":        PropertyHeight,
	"fileSize":      PropertyFileSize,
	"duration":      PropertyDuration,
	"bpm":           PropertyBPM,
	"iso":           PropertyISO,
	"aperture":      PropertyAperture,
	"focalLength":   PropertyFocalLength,
	"shutter":       PropertyShutter,
	"createTime":    PropertyCreateTime,
	"mtime":         PropertyMTime,
	"btime":         PropertyBTime,
	"timestamp":     PropertyTimestamp,
	"tags":          PropertyTags,
	"folders":       PropertyFolders,
	"type":          PropertyType,
	"rating":        PropertyRating,
	"shape":         PropertyShape,
	"color":         PropertyColor,
	"fontActivated": PropertyFontActivated,
}

// ParseProperty resolves a property key. Unknown keys return PropertyUnknown.
func ParseProperty(key string) Property {
	return propertyKeys[key]
}

// String returns the wire key of the property.
func (p Property) String() string {
	for k, v := range propertyKeys {
		if v == p {
			return k
		}
	}
	return "unknown"
}

// Family groups properties that share a matcher and value shape.
type Family int

const (
	FamilyUnknown Family = iota
	FamilyString
	FamilyNumeric
	FamilyDate
	FamilySet
	FamilyType
	FamilyRating
	FamilyShape
	FamilyColor
	FamilyFont
)

// Family returns the matcher family of p.
func (p Property) Family() Family {
	switch p {
	case PropertyName, PropertyFolderName, PropertyURL, PropertyAnnotation, PropertyComments, PropertyCamera:
		return FamilyString
	case PropertyWidth, PropertyHeight, PropertyFileSize, PropertyDuration, PropertyBPM,
		PropertyISO, PropertyAperture, PropertyFocalLength, PropertyShutter:
		return FamilyNumeric
	case PropertyCreateTime, PropertyMTime, PropertyBTime, PropertyTimestamp:
		return FamilyDate
	case PropertyTags, PropertyFolders:
		return FamilySet
	case PropertyType:
		return FamilyType
	case PropertyRating:
		return FamilyRating
	case PropertyShape:
		return FamilyShape
	case PropertyColor:
		return FamilyColor
	case PropertyFontActivated:
		return FamilyFont
	default:
		return FamilyUnknown
	}
}

// Method identifies the comparison a rule applies.
type Method int

const (
	MethodUnknown Method = iota

	// string
	MethodEqual
	MethodStartWith
	MethodEndWith
	MethodContain
	MethodUncontain
	MethodEmpty
	MethodNotEmpty
	MethodRegex

	// numeric
	MethodEq
	MethodGte
	MethodLte
	MethodGt
	MethodLt
	MethodBetween

	// date
	MethodOn
	MethodBefore
	MethodAfter
	MethodWithin

	// set
	MethodIntersection
	MethodUnion
	MethodIdentity

	// type, rating, shape
	MethodUnequal

	// color
	MethodSimilar
	MethodAccuracy
	MethodGrayscale

	// font
	MethodActivate
	MethodDeactivate
)

var methodKeys = map[string]Method{
	"equal":        MethodEqual,
	"startWith":    MethodStartWith,
	"endWith":      MethodEndWith,
	"contain":      MethodContain,
	"uncontain":    MethodUncontain,
	"empty":        MethodEmpty,
	"not-empty":    MethodNotEmpty,
	"regex":        MethodRegex,
	"=":            MethodEq,
	">=":           MethodGte,
	"<=":           MethodLte,
	">":            MethodGt,
	"<":            MethodLt,
	"between":      MethodBetween,
	"on":           MethodOn,
	"before":       MethodBefore,
	"after":        MethodAfter,
	"within":       MethodWithin,
	"intersection": MethodIntersection,
	"union":        MethodUnion,
	"identity":     MethodIdentity,
	"unequal":      MethodUnequal,
	"similar":      MethodSimilar,
	"accuracy":     MethodAccuracy,
	"grayscale":    MethodGrayscale,
	"activate":     MethodActivate,
	"deactivate":   MethodDeactivate,
}

// ParseMethod resolves a method key. Unknown keys return MethodUnknown.
func ParseMethod(key string) Method {
	return methodKeys[key]
}

// String returns the wire key of the method.
func (m Method) String() string {
	for k, v := range methodKeys {
		if v == m {
			return k
		}
	}
	return "unknown"
}

// Supports reports whether family f accepts method m.
func (f Family) Supports(m Method) bool {
	switch f {
	case FamilyString:
		switch m {
		case MethodEqual, MethodStartWith, MethodEndWith, MethodContain,
			MethodUncontain, MethodEmpty, MethodNotEmpty, MethodRegex:
			return true
		}
	case FamilyNumeric:
		switch m {
		case MethodEq, MethodGte, MethodLte, MethodGt, MethodLt, MethodBetween:
			return true
		}
	case FamilyDate:
		switch m {
		case MethodOn, MethodBefore, MethodAfter, MethodBetween, MethodWithin:
			return true
		}
	case FamilySet:
		switch m {
		case MethodEmpty, MethodNotEmpty, MethodIntersection, MethodEqual,
			MethodUnion, MethodIdentity, MethodContain:
			return true
		}
	case FamilyType, FamilyShape:
		return m == MethodEqual || m == MethodUnequal
	case FamilyRating:
		return m == MethodContain || m == MethodEqual || m == MethodUnequal
	case FamilyColor:
		return m == MethodSimilar || m == MethodAccuracy || m == MethodGrayscale
	case FamilyFont:
		return m == MethodActivate || m == MethodDeactivate
	}
	return false
}
