package segment

import "github.com/FocuswithJustin/JuniperText/core/richtext"

// Span is the extent of one segment within its paragraph.
type Span struct {
	Begin   int  `json:"begin"`
	End     int  `json:"end"`
	IsLabel bool `json:"is_label,omitempty"`
}

// Len returns the span length in bytes.
func (s Span) Len() int {
	return s.End - s.Begin
}

// Segmenter splits paragraph text into sentence-like and label segments.
type Segmenter struct {
	cls *Classifier
}

// NewSegmenter creates a segmenter using cls.
func NewSegmenter(cls *Classifier) *Segmenter {
	return &Segmenter{cls: cls}
}

// Segment returns the spans of s in order. The spans partition the text:
// an empty string yields none, a whitespace-only string yields one.
func (sg *Segmenter) Segment(s richtext.String) []Span {
	return sg.spans(sg.cls.Classify(s), s.Len())
}

// scanner holds the state of the segment currently being accumulated.
type scanner struct {
	spans []Span

	start        int
	label        bool
	hasWord      bool
	hasPunct     bool
	hasAnchor    bool
	afterBreak   bool
	spaceInLabel bool
	lastTokenEnd int
}

func (sc *scanner) hasContent() bool {
	return sc.hasWord || sc.hasPunct || sc.hasAnchor
}

func (sc *scanner) emit(end int) {
	sc.spans = append(sc.spans, Span{Begin: sc.start, End: end, IsLabel: sc.label})
	sc.start = end
	sc.label = false
	sc.hasWord, sc.hasPunct, sc.hasAnchor = false, false, false
	sc.afterBreak = false
	sc.spaceInLabel = false
}

func (sg *Segmenter) spans(chars []Char, n int) []Span {
	sc := &scanner{afterBreak: true}

	for i := 0; i < len(chars); {
		c := chars[i]
		switch {
		case c.Class == ClassHardBreak:
			j := i + 1
			for j < len(chars) && (chars[j].Class == ClassWhitespace || chars[j].Class == ClassHardBreak) {
				j++
			}
			end := n
			if j < len(chars) {
				end = chars[j].Offset
			}
			if sc.hasContent() {
				sc.emit(end)
			}
			sc.afterBreak = true
			i = j

		case c.Label:
			if !sc.label {
				switch {
				case sc.hasWord:
					sc.emit(sc.lastTokenEnd)
				case sc.hasAnchor && !sc.hasPunct && sc.afterBreak:
					// Anchors stranded between a break and a verse number
					// get a segment of their own.
					sc.label = true
					sc.emit(sc.lastTokenEnd)
				}
				sc.label = true
			}
			sc.hasPunct = true
			sc.spaceInLabel = false
			sc.lastTokenEnd = c.End()
			i++

		case c.Class == ClassWhitespace:
			if sc.label {
				sc.spaceInLabel = true
			}
			i++

		case c.Class == ClassAnchor:
			sc.hasAnchor = true
			sc.lastTokenEnd = c.End()
			i++

		case c.Class == ClassWordForming:
			if sc.label {
				sc.emit(c.Offset)
			}
			j := i
			for j < len(chars) && chars[j].Class == ClassWordForming {
				j++
			}
			sc.hasWord = true
			sc.lastTokenEnd = chars[j-1].End()
			i = j

		default: // punctuation
			if sc.label {
				if !sc.spaceInLabel {
					sc.lastTokenEnd = c.End()
					i++
					continue
				}
				sc.emit(c.Offset)
			}
			sc.hasPunct = true
			if !sg.cls.IsSentenceFinal(c.Rune) {
				sc.lastTokenEnd = c.End()
				i++
				continue
			}
			j := i + 1
			for j < len(chars) {
				d := chars[j]
				if d.Class == ClassAnchor {
					sc.hasAnchor = true
					j++
					continue
				}
				if d.Class == ClassPunctuation && !d.Label && !isOpening(d.Rune) {
					j++
					continue
				}
				break
			}
			end := chars[j-1].End()
			sc.lastTokenEnd = end
			// A hard break ends the segment itself, keeping the break inside it.
			if j == len(chars) || chars[j].Class == ClassWhitespace || chars[j].Label {
				sc.emit(end)
			}
			i = j
		}
	}

	switch {
	case sc.hasContent():
		sc.emit(n)
	case sc.start < n && len(sc.spans) > 0:
		sc.spans[len(sc.spans)-1].End = n
	case sc.start < n:
		sc.emit(n)
	}
	return sc.spans
}
