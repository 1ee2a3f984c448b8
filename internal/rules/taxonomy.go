// internal/rules/taxonomy.go
package rules

import "strings"

/*
 * File type taxonomy.
 *
 * A type rule names either a literal extension ("png") or a category
 * ("video", "word", "youtube"). The literal comparison runs first, so a rule
 * for "ts" matches a .ts file even though "ts" is also a video extension.
 *
 * Web bookmarks are stored with ext "url"; the medium field distinguishes
 * plain links from hosted video. A plain "url" category match requires the
 * medium to be empty.
 */

type extSet map[string]struct{}

func newExtSet(exts ...string) extSet {
	s := make(extSet, len(exts))
	for _, e := range exts {
		s[e] = struct{}{}
	}
	return s
}

func (s extSet) has(ext string) bool {
	_, ok := s[ext]
	return ok
}

var (
	videoExts        = newExtSet("mp4", "mov", "avi", "wmv", "webm", "mkv", "m4v", "3gp", "ts")
	audioExts        = newExtSet("mp3", "wav", "ogg", "flac", "aac", "m4a")
	fontExts         = newExtSet("ttf", "otf", "woff", "ttc")
	presentationExts = newExtSet("ppt", "pptx", "potx", "key")
	spreadsheetExts  = newExtSet("xls", "xlsx")
	documentExts     = newExtSet("doc", "docx")
)

// Hosted-video media recognized on ext "url" items.
var urlMedia = newExtSet("youtube", "vimeo", "bilibili")

// inCategory reports whether ext (with medium) belongs to target.
// target is a case-folded type name.
func inCategory(target, ext, medium string) bool {
	ext = strings.ToLower(ext)
	medium = strings.ToLower(medium)

	if target == "" {
		return false
	}
	if target == ext && target != "url" {
		return true
	}

	switch target {
	case "video", "videos":
		return videoExts.has(ext)
	case "audio":
		return audioExts.has(ext)
	case "font":
		return fontExts.has(ext)
	case "presentation", "powerpoint":
		return presentationExts.has(ext)
	case "excel":
		return spreadsheetExts.has(ext)
	case "word":
		return documentExts.has(ext)
	case "url":
		return ext == "url" && medium == ""
	default:
		if urlMedia.has(target) {
			return ext == "url" && medium == target
		}
		return false
	}
}

// matchType applies equal/unequal to category membership.
func matchType(ext, medium string, m Method, v *RuleValue) bool {
	in := inCategory(v.Text, ext, medium)
	switch m {
	case MethodEqual:
		return in
	case MethodUnequal:
		return !in
	default:
		return false
	}
}
