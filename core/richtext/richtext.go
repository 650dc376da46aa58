// Package richtext provides the annotated paragraph string used by the
// segmenter and adjuster: UTF-8 text plus property runs carrying the writing
// system, character style and embedded object of every byte.
//
// Offsets are UTF-8 byte offsets. A String is immutable; Slice, Splice and
// Concat return new values.
package richtext

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// AnchorChar is the object replacement character that stands in for an
// embedded footnote or picture.
const AnchorChar = '\uFFFC'

// AnchorText is AnchorChar as a string.
const AnchorText = "\uFFFC"

// ObjectKind identifies what an embedded anchor refers to.
type ObjectKind string

// Object kind constants.
const (
	ObjectFootnote ObjectKind = "footnote"
	ObjectPicture  ObjectKind = "picture"
)

// Object is an embedded object referenced from the text by an anchor.
// Identity is the pointer; ID is stable across serialization.
type Object struct {
	ID   uuid.UUID  `json:"id"`
	Kind ObjectKind `json:"kind"`
}

// NewObject creates an object with a fresh identity.
func NewObject(kind ObjectKind) *Object {
	return &Object{ID: uuid.New(), Kind: kind}
}

// Props are the properties of a run of text.
type Props struct {
	WS     string
	Style  string
	Object *Object
}

// Run is a maximal byte range sharing the same Props.
type Run struct {
	Start int
	End   int
	Props Props
}

// String is annotated text. The zero value is the empty string.
type String struct {
	text string
	runs []Run
}

// Plain returns s as a single run in writing system ws.
func Plain(s, ws string) String {
	var b Builder
	b.Append(s, ws, "")
	return b.String()
}

// Len returns the length in bytes.
func (s String) Len() int {
	return len(s.text)
}

// IsEmpty reports whether the string has no text.
func (s String) IsEmpty() bool {
	return len(s.text) == 0
}

// Text returns the raw text.
func (s String) Text() string {
	return s.text
}

// Runs returns a copy of the property runs.
func (s String) Runs() []Run {
	out := make([]Run, len(s.runs))
	copy(out, s.runs)
	return out
}

// runIndex returns the index of the run containing offset, or -1.
func (s String) runIndex(offset int) int {
	if offset < 0 || offset >= len(s.text) {
		return -1
	}
	i := sort.Search(len(s.runs), func(i int) bool { return s.runs[i].End > offset })
	if i >= len(s.runs) {
		return -1
	}
	return i
}

// PropsAt returns the properties at offset. Offsets at or past the end
// report the properties of the last run, so typing at the end of a paragraph
// inherits them.
func (s String) PropsAt(offset int) Props {
	if len(s.runs) == 0 {
		return Props{}
	}
	if offset >= len(s.text) {
		p := s.runs[len(s.runs)-1].Props
		p.Object = nil
		return p
	}
	if i := s.runIndex(offset); i >= 0 {
		return s.runs[i].Props
	}
	return Props{}
}

// WSAt returns the writing system at offset.
func (s String) WSAt(offset int) string {
	return s.PropsAt(offset).WS
}

// StyleAt returns the character style name at offset.
func (s String) StyleAt(offset int) string {
	return s.PropsAt(offset).Style
}

// ObjectAt returns the embedded object anchored at offset, or nil.
func (s String) ObjectAt(offset int) *Object {
	if offset >= len(s.text) {
		return nil
	}
	return s.PropsAt(offset).Object
}

// Slice returns the substring [begin, end).
func (s String) Slice(begin, end int) String {
	if begin < 0 {
		begin = 0
	}
	if end > len(s.text) {
		end = len(s.text)
	}
	if begin >= end {
		return String{}
	}
	var b Builder
	for _, r := range s.runs {
		if r.End <= begin || r.Start >= end {
			continue
		}
		lo, hi := max(r.Start, begin), min(r.End, end)
		b.appendProps(s.text[lo:hi], r.Props)
	}
	return b.String()
}

// Concat returns s followed by others.
func (s String) Concat(others ...String) String {
	var b Builder
	b.AppendString(s)
	for _, o := range others {
		b.AppendString(o)
	}
	return b.String()
}

// Splice replaces [begin, end) with insert.
func (s String) Splice(begin, end int, insert String) String {
	return s.Slice(0, begin).Concat(insert, s.Slice(end, len(s.text)))
}

// Equal reports whether both strings have the same text and properties.
func (s String) Equal(o String) bool {
	if s.text != o.text || len(s.runs) != len(o.runs) {
		return false
	}
	for i := range s.runs {
		if s.runs[i] != o.runs[i] {
			return false
		}
	}
	return true
}

// IsRuneBoundary reports whether offset falls between runes.
func (s String) IsRuneBoundary(offset int) bool {
	if offset == 0 || offset == len(s.text) {
		return true
	}
	if offset < 0 || offset > len(s.text) {
		return false
	}
	return utf8.RuneStart(s.text[offset])
}

// CommonPrefix returns the length in bytes of the longest rune-aligned
// prefix shared by s and o, comparing both characters and properties.
func (s String) CommonPrefix(o String) int {
	n := min(len(s.text), len(o.text))
	i := 0
	for i < n {
		r1, w1 := utf8.DecodeRuneInString(s.text[i:])
		r2, w2 := utf8.DecodeRuneInString(o.text[i:])
		if r1 != r2 || w1 != w2 || s.PropsAt(i) != o.PropsAt(i) {
			break
		}
		i += w1
	}
	return i
}

// CommonSuffix returns the length in bytes of the longest rune-aligned
// suffix shared by s and o, comparing characters and properties, capped at
// limit bytes.
func (s String) CommonSuffix(o String, limit int) int {
	n := min(len(s.text), len(o.text), limit)
	k := 0
	for k < n {
		r1, w1 := utf8.DecodeLastRuneInString(s.text[:len(s.text)-k])
		r2, w2 := utf8.DecodeLastRuneInString(o.text[:len(o.text)-k])
		if r1 != r2 || w1 != w2 || k+w1 > n {
			break
		}
		if s.PropsAt(len(s.text)-k-w1) != o.PropsAt(len(o.text)-k-w2) {
			break
		}
		k += w1
	}
	return k
}

// String implements fmt.Stringer and returns the raw text.
func (s String) String() string {
	return s.text
}

// Builder assembles a String run by run.
type Builder struct {
	sb   strings.Builder
	runs []Run
}

// Append adds text with the given writing system and style.
func (b *Builder) Append(text, ws, style string) *Builder {
	b.appendProps(text, Props{WS: ws, Style: style})
	return b
}

// AppendObject adds an anchor for obj.
func (b *Builder) AppendObject(obj *Object, ws string) *Builder {
	b.appendProps(AnchorText, Props{WS: ws, Object: obj})
	return b
}

// AppendString adds every run of s.
func (b *Builder) AppendString(s String) *Builder {
	for _, r := range s.runs {
		b.appendProps(s.text[r.Start:r.End], r.Props)
	}
	return b
}

func (b *Builder) appendProps(text string, p Props) {
	if text == "" {
		return
	}
	start := b.sb.Len()
	b.sb.WriteString(text)
	end := b.sb.Len()
	if n := len(b.runs); n > 0 && p.Object == nil && b.runs[n-1].Props == p {
		b.runs[n-1].End = end
		return
	}
	b.runs = append(b.runs, Run{Start: start, End: end, Props: p})
}

// Len returns the number of bytes appended so far.
func (b *Builder) Len() int {
	return b.sb.Len()
}

// String returns the assembled value.
func (b *Builder) String() String {
	runs := make([]Run, len(b.runs))
	copy(runs, b.runs)
	return String{text: b.sb.String(), runs: runs}
}
