package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Item is a library item as seen by the rule engine. Read-only to the engine.
//
// Zero values mean "absent" for Duration, BPM, Star, ModificationTime and
// Btime; the library manager omits those fields rather than sending nulls.
type Item struct {
	ID               ItemID     `json:"id"`
	Name             string     `json:"name"`
	URL              string     `json:"url,omitempty"`
	Annotation       string     `json:"annotation,omitempty"`
	Comments         []Comment  `json:"comments,omitempty"`
	Tags             []string   `json:"tags,omitempty"`
	Folders          []FolderID `json:"folders,omitempty"`
	Ext              string     `json:"ext"`
	Width            int64      `json:"width,omitempty"`
	Height           int64      `json:"height,omitempty"`
	Size             int64      `json:"size,omitempty"`     // bytes
	Duration         float64    `json:"duration,omitempty"` // seconds
	BPM              float64    `json:"bpm,omitempty"`
	Star             int        `json:"star,omitempty"` // 0 = unrated
	ModificationTime int64      `json:"modificationTime,omitempty"`
	Btime            int64      `json:"btime,omitempty"`
	Medium           string     `json:"medium,omitempty"`
	Palettes         []Palette  `json:"palettes,omitempty"`
	RawMetas         *RawMetas  `json:"rawMetas,omitempty"`
	FontMetas        *FontMetas `json:"fontMetas,omitempty"`
}

// Comment is one annotation pinned to an item.
type Comment struct {
	Annotation string `json:"annotation"`
}

// Palette is one dominant color of an item, ordered by descending Ratio.
// Ratio is a fraction in [0,1].
type Palette struct {
	Color [3]int  `json:"color"`
	Ratio float64 `json:"ratio"`
}

// RawMetas holds camera metadata as formatted text (e.g. "f/2.8", "1/250").
type RawMetas struct {
	Camera      MetaValue `json:"camera,omitempty"`
	ISOSpeed    MetaValue `json:"isoSpeed,omitempty"`
	Aperture    MetaValue `json:"aperture,omitempty"`
	FocalLength MetaValue `json:"focalLength,omitempty"`
	Shutter     MetaValue `json:"shutter,omitempty"`
	Timestamp   MetaValue `json:"timestamp,omitempty"`
}

// MetaValue is a metadata field the library manager sends as either a JSON
// string or a JSON number. It is kept in its textual form.
type MetaValue string

// UnmarshalJSON implements json.Unmarshaler.
func (m *MetaValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*m = MetaValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("meta value must be string or number: %w", err)
	}
	*m = MetaValue(n.String())
	return nil
}

// FontMetas holds font-specific metadata.
type FontMetas struct {
	PostScriptName LocalizedNames `json:"postScriptName"`
}

// LocalizedName is one variant-key/name pair of a font name table.
type LocalizedName struct {
	Key  string
	Name string
}

// LocalizedNames preserves the document order of a JSON object so the first
// entry can serve as the primary name.
type LocalizedNames []LocalizedName

// Primary returns the first name, or "" when empty.
func (n LocalizedNames) Primary() string {
	if len(n) == 0 {
		return ""
	}
	return n[0].Name
}

// UnmarshalJSON implements json.Unmarshaler, keeping key order.
func (n *LocalizedNames) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*n = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("postScriptName must be an object")
	}

	var out LocalizedNames
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		var name string
		if err := json.Unmarshal(raw, &name); err != nil {
			// Non-string variants are skipped, not fatal.
			continue
		}
		out = append(out, LocalizedName{Key: key, Name: name})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*n = out
	return nil
}

// MarshalJSON implements json.Marshaler, writing entries in order.
func (n LocalizedNames) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range n {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(entry.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		name, err := json.Marshal(entry.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
