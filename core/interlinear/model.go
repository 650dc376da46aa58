package interlinear

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/FocuswithJustin/JuniperText/core/errors"
	"github.com/FocuswithJustin/JuniperText/core/richtext"
)

// MultiString holds one string per writing system.
type MultiString map[string]string

// Get returns the alternative for ws.
func (m MultiString) Get(ws string) string {
	return m[ws]
}

// IsEmpty reports whether every alternative is empty.
func (m MultiString) IsEmpty() bool {
	for _, v := range m {
		if v != "" {
			return false
		}
	}
	return true
}

// WritingSystems returns the writing systems with a non-empty alternative,
// sorted.
func (m MultiString) WritingSystems() []string {
	ids := make([]string, 0, len(m))
	for ws, v := range m {
		if v != "" {
			ids = append(ids, ws)
		}
	}
	sort.Strings(ids)
	return ids
}

// Clone returns a copy of m.
func (m MultiString) Clone() MultiString {
	if m == nil {
		return nil
	}
	out := make(MultiString, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Equal reports whether m and o hold the same non-empty alternatives.
func (m MultiString) Equal(o MultiString) bool {
	a, b := m.WritingSystems(), o.WritingSystems()
	if len(a) != len(b) {
		return false
	}
	for _, ws := range a {
		if m[ws] != o[ws] {
			return false
		}
	}
	return true
}

// JoinMultiStrings concatenates alternatives per writing system in order,
// inserting a single space unless one side already supplies whitespace.
// A single source is returned as is.
func JoinMultiStrings(parts ...MultiString) MultiString {
	var nonEmpty []MultiString
	for _, p := range parts {
		if !p.IsEmpty() {
			nonEmpty = append(nonEmpty, p)
		}
	}
	switch len(nonEmpty) {
	case 0:
		if len(parts) > 0 {
			return parts[0]
		}
		return nil
	case 1:
		return nonEmpty[0]
	}
	out := make(MultiString)
	for _, p := range nonEmpty {
		for _, ws := range p.WritingSystems() {
			out[ws] = joinSpaced(out[ws], p[ws])
		}
	}
	return out
}

func joinSpaced(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	last, _ := utf8.DecodeLastRuneInString(a)
	first, _ := utf8.DecodeRuneInString(b)
	if unicode.IsSpace(last) || unicode.IsSpace(first) {
		return a + b
	}
	return a + " " + b
}

// SpellingStatus is the explicit spelling mark of a wordform.
type SpellingStatus int

// Spelling statuses.
const (
	SpellingUndetermined SpellingStatus = iota
	SpellingCorrect
	SpellingIncorrect
)

func (s SpellingStatus) String() string {
	switch s {
	case SpellingCorrect:
		return "correct"
	case SpellingIncorrect:
		return "incorrect"
	default:
		return "undetermined"
	}
}

// Wordform is a corpus-wide interned surface form in one writing system.
type Wordform struct {
	GUID uuid.UUID

	// Form is the NFD-normalised surface text.
	Form string

	// WS is the writing system id.
	WS string

	// Spelling is the explicit spelling mark. Any mark other than
	// SpellingUndetermined keeps the wordform alive.
	Spelling SpellingStatus

	// Analyses are the analyses owned by this wordform.
	Analyses []*WordAnalysis

	refs    int
	focus   int
	deleted bool
}

// Deleted reports whether the wordform was removed from its repository.
func (w *Wordform) Deleted() bool {
	return w.deleted
}

// WordAnalysis is one analysis of a wordform.
type WordAnalysis struct {
	GUID     uuid.UUID
	Owner    *Wordform
	Category string
	Glosses  []*WordGloss
}

// WordGloss is a gloss of a word analysis.
type WordGloss struct {
	GUID  uuid.UUID
	Owner *WordAnalysis
	Form  MultiString
}

// PunctuationForm is a corpus-wide interned punctuation string.
type PunctuationForm struct {
	GUID uuid.UUID
	Form string
}

// SlotKind identifies which resolution a Slot holds.
type SlotKind int

// Slot kinds.
const (
	SlotWordform SlotKind = iota
	SlotAnalysis
	SlotGloss
	SlotPunctuation
	SlotObject
)

func (k SlotKind) String() string {
	switch k {
	case SlotWordform:
		return "wordform"
	case SlotAnalysis:
		return "analysis"
	case SlotGloss:
		return "gloss"
	case SlotPunctuation:
		return "punctuation"
	case SlotObject:
		return "object"
	default:
		return "unknown"
	}
}

// Slot is one analysis position of a segment. Exactly one of the payload
// pointers matching Kind is set.
type Slot struct {
	Kind SlotKind

	Wordform    *Wordform
	Analysis    *WordAnalysis
	Gloss       *WordGloss
	Punctuation *PunctuationForm
	Object      *richtext.Object

	// Begin and End are the byte offsets of the token in the paragraph.
	Begin int
	End   int

	// Trailing is the spacing recorded after the token.
	Trailing string
}

// WordformSlot resolves a slot to a bare wordform.
func WordformSlot(w *Wordform) Slot {
	return Slot{Kind: SlotWordform, Wordform: w}
}

// AnalysisSlot resolves a slot to a word analysis.
func AnalysisSlot(a *WordAnalysis) Slot {
	return Slot{Kind: SlotAnalysis, Analysis: a}
}

// GlossSlot resolves a slot to a word gloss.
func GlossSlot(g *WordGloss) Slot {
	return Slot{Kind: SlotGloss, Gloss: g}
}

// PunctuationSlot resolves a slot to a punctuation form.
func PunctuationSlot(p *PunctuationForm) Slot {
	return Slot{Kind: SlotPunctuation, Punctuation: p}
}

// ObjectSlot resolves a slot to an embedded object.
func ObjectSlot(o *richtext.Object) Slot {
	return Slot{Kind: SlotObject, Object: o}
}

// RootWordform returns the wordform a word-level slot refers to, or nil.
func (s Slot) RootWordform() *Wordform {
	switch s.Kind {
	case SlotWordform:
		return s.Wordform
	case SlotAnalysis:
		if s.Analysis != nil {
			return s.Analysis.Owner
		}
	case SlotGloss:
		if s.Gloss != nil && s.Gloss.Owner != nil {
			return s.Gloss.Owner.Owner
		}
	}
	return nil
}

// SameResolution reports whether s and o resolve to the same object.
func (s Slot) SameResolution(o Slot) bool {
	if s.Kind != o.Kind {
		return false
	}
	switch s.Kind {
	case SlotWordform:
		return s.Wordform == o.Wordform
	case SlotAnalysis:
		return s.Analysis == o.Analysis
	case SlotGloss:
		return s.Gloss == o.Gloss
	case SlotPunctuation:
		return s.Punctuation == o.Punctuation
	default:
		return s.Object == o.Object
	}
}

// Note is a segment note.
type Note struct {
	GUID    uuid.UUID
	Content MultiString
}

// NewNote creates a note with a single alternative.
func NewNote(ws, text string) *Note {
	return &Note{GUID: uuid.New(), Content: MultiString{ws: text}}
}

// Segment is a sentence-like or label span of a paragraph.
type Segment struct {
	GUID uuid.UUID

	// Begin and End are byte offsets into the paragraph text.
	Begin int
	End   int

	// IsLabel marks verse/chapter-number segments, which never carry
	// translations or notes.
	IsLabel bool

	// Leading is the spacing before the first slot.
	Leading string

	Analyses []Slot

	FreeTranslation    MultiString
	LiteralTranslation MultiString
	Notes              []*Note
}

// NewSegment creates an empty segment.
func NewSegment(begin, end int, isLabel bool) *Segment {
	return &Segment{GUID: uuid.New(), Begin: begin, End: end, IsLabel: isLabel}
}

// HasTranslationOrNotes reports whether any translation or note is set.
func (s *Segment) HasTranslationOrNotes() bool {
	return !s.FreeTranslation.IsEmpty() || !s.LiteralTranslation.IsEmpty() || len(s.Notes) > 0
}

// Baseline returns the segment text reassembled from its slots.
func (s *Segment) Baseline(contents richtext.String) string {
	var b strings.Builder
	b.WriteString(s.Leading)
	text := contents.Text()
	for _, sl := range s.Analyses {
		if sl.Begin >= 0 && sl.End <= len(text) && sl.Begin <= sl.End {
			b.WriteString(text[sl.Begin:sl.End])
		}
		b.WriteString(sl.Trailing)
	}
	return b.String()
}

// Paragraph owns annotated text and its segments.
type Paragraph struct {
	GUID     uuid.UUID
	Contents richtext.String
	Segments []*Segment

	// ParseIsCurrent is false until the paragraph has been parsed, and
	// whenever its contents changed without a reparse.
	ParseIsCurrent bool

	text *Text
}

// Text returns the owning text.
func (p *Paragraph) Text() *Text {
	return p.text
}

// Index returns the paragraph's position in its text, or -1.
func (p *Paragraph) Index() int {
	if p.text == nil {
		return -1
	}
	return p.text.IndexOf(p)
}

// SlotCount returns the number of slots over all segments.
func (p *Paragraph) SlotCount() int {
	n := 0
	for _, s := range p.Segments {
		n += len(s.Analyses)
	}
	return n
}

// Point addresses one slot of a text.
type Point struct {
	Para int `json:"para"`
	Seg  int `json:"seg"`
	Slot int `json:"slot"`
}

// Compare orders points by text position.
func (p Point) Compare(o Point) int {
	switch {
	case p.Para != o.Para:
		return sign(p.Para - o.Para)
	case p.Seg != o.Seg:
		return sign(p.Seg - o.Seg)
	default:
		return sign(p.Slot - o.Slot)
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

// TextTag labels a closed range of slots.
type TextTag struct {
	GUID  uuid.UUID
	Name  string
	Begin Point
	End   Point
}

// ChartCell is a range of slots placed in a chart row and column.
type ChartCell struct {
	GUID   uuid.UUID
	Column int
	Begin  Point
	End    Point
}

// ChartRow is an ordered row of cells.
type ChartRow struct {
	GUID  uuid.UUID
	Label string
	Cells []*ChartCell
}

// Chart is a discourse chart over a text.
type Chart struct {
	GUID    uuid.UUID
	Name    string
	Columns []string
	Rows    []*ChartRow
}

// AddRow appends a row.
func (c *Chart) AddRow(label string) *ChartRow {
	r := &ChartRow{GUID: uuid.New(), Label: label}
	c.Rows = append(c.Rows, r)
	return r
}

// Text is an ordered list of paragraphs plus the ranges over them.
type Text struct {
	GUID       uuid.UUID
	Title      string
	Paragraphs []*Paragraph
	Tags       []*TextTag
	Charts     []*Chart

	corpus *Corpus
}

// Corpus returns the owning corpus.
func (t *Text) Corpus() *Corpus {
	return t.corpus
}

// NewParagraph creates an unparsed paragraph owned by t without inserting it.
func (t *Text) NewParagraph(contents richtext.String) *Paragraph {
	return &Paragraph{GUID: uuid.New(), Contents: contents, text: t}
}

// AddParagraph appends an unparsed paragraph.
func (t *Text) AddParagraph(contents richtext.String) *Paragraph {
	p := t.NewParagraph(contents)
	t.Paragraphs = append(t.Paragraphs, p)
	return p
}

// IndexOf returns the index of p, or -1.
func (t *Text) IndexOf(p *Paragraph) int {
	for i, q := range t.Paragraphs {
		if q == p {
			return i
		}
	}
	return -1
}

// Slot returns the slot at pt.
func (t *Text) Slot(pt Point) (Slot, bool) {
	if pt.Para < 0 || pt.Para >= len(t.Paragraphs) {
		return Slot{}, false
	}
	p := t.Paragraphs[pt.Para]
	if pt.Seg < 0 || pt.Seg >= len(p.Segments) {
		return Slot{}, false
	}
	s := p.Segments[pt.Seg]
	if pt.Slot < 0 || pt.Slot >= len(s.Analyses) {
		return Slot{}, false
	}
	return s.Analyses[pt.Slot], true
}

// AddTag tags the closed range [begin, end].
func (t *Text) AddTag(name string, begin, end Point) (*TextTag, error) {
	if err := t.checkRange(begin, end); err != nil {
		return nil, err
	}
	tag := &TextTag{GUID: uuid.New(), Name: name, Begin: begin, End: end}
	t.Tags = append(t.Tags, tag)
	return tag, nil
}

// AddChart creates an empty chart with the given columns.
func (t *Text) AddChart(name string, columns ...string) *Chart {
	c := &Chart{GUID: uuid.New(), Name: name, Columns: columns}
	t.Charts = append(t.Charts, c)
	return c
}

// AddCell appends a cell to row r. Cells must follow the row's last cell.
func (t *Text) AddCell(r *ChartRow, column int, begin, end Point) (*ChartCell, error) {
	if err := t.checkRange(begin, end); err != nil {
		return nil, err
	}
	if n := len(r.Cells); n > 0 && r.Cells[n-1].End.Compare(begin) >= 0 {
		return nil, errors.NewValidation("cell", "cells in a row must be ordered and disjoint")
	}
	c := &ChartCell{GUID: uuid.New(), Column: column, Begin: begin, End: end}
	r.Cells = append(r.Cells, c)
	return c, nil
}

func (t *Text) checkRange(begin, end Point) error {
	if _, ok := t.Slot(begin); !ok {
		return errors.NewValidation("begin", "no slot at begin point")
	}
	if _, ok := t.Slot(end); !ok {
		return errors.NewValidation("end", "no slot at end point")
	}
	if begin.Compare(end) > 0 {
		return errors.NewValidation("range", "begin follows end")
	}
	return nil
}

// TaggedText returns the surface text of the slots in [begin, end], joined
// by their recorded spacing.
func (t *Text) TaggedText(begin, end Point) string {
	idx := NewSlotIndex(t)
	b, ok1 := idx.Global(begin)
	e, ok2 := idx.Global(end)
	if !ok1 || !ok2 || b > e {
		return ""
	}
	var sb strings.Builder
	for g := b; g <= e; g++ {
		pt, _ := idx.Point(g)
		sl, _ := t.Slot(pt)
		txt := t.Paragraphs[pt.Para].Contents.Text()
		sb.WriteString(txt[sl.Begin:sl.End])
		if g < e {
			sb.WriteString(sl.Trailing)
		}
	}
	return sb.String()
}
