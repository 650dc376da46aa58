package segment

import (
	"unicode"
	"unicode/utf8"

	"github.com/FocuswithJustin/JuniperText/core/richtext"
	"github.com/FocuswithJustin/JuniperText/core/wsys"
)

// Class is the classification of a single character.
type Class int

// Character classes.
const (
	ClassWordForming Class = iota
	ClassPunctuation
	ClassWhitespace
	ClassHardBreak
	ClassAnchor
)

func (c Class) String() string {
	switch c {
	case ClassWordForming:
		return "word"
	case ClassPunctuation:
		return "punct"
	case ClassWhitespace:
		return "space"
	case ClassHardBreak:
		return "break"
	case ClassAnchor:
		return "anchor"
	default:
		return "unknown"
	}
}

// Options configures classification.
type Options struct {
	// LabelStyles are character styles marking verse/chapter numbers.
	LabelStyles []string `toml:"label_styles"`

	// SentenceFinal lists the characters that can end a segment.
	SentenceFinal string `toml:"sentence_final"`

	// HardBreaks lists the characters that always end a segment.
	HardBreaks string `toml:"hard_breaks"`
}

// DefaultOptions returns the stock label styles and terminators.
func DefaultOptions() Options {
	return Options{
		LabelStyles:   []string{"Verse Number", "Chapter Number"},
		SentenceFinal: ".?!…।॥։؟።。！？",
		HardBreaks:    "\u2028\n",
	}
}

// Char is one classified character of a paragraph.
type Char struct {
	Offset int
	Size   int
	Rune   rune
	Class  Class
	// Label is set for non-space characters in a label style.
	Label  bool
	WS     string
	Object *richtext.Object
}

// End returns the offset just past the character.
func (c Char) End() int {
	return c.Offset + c.Size
}

// Classifier assigns a Class to every character of an annotated string.
type Classifier struct {
	systems       *wsys.Registry
	labelStyles   map[string]bool
	sentenceFinal map[rune]bool
	hardBreaks    map[rune]bool
}

// NewClassifier creates a classifier. A nil registry classifies every
// writing system by plain Unicode categories.
func NewClassifier(systems *wsys.Registry, opts Options) *Classifier {
	if systems == nil {
		systems = wsys.NewRegistry()
	}
	c := &Classifier{
		systems:       systems,
		labelStyles:   make(map[string]bool),
		sentenceFinal: make(map[rune]bool),
		hardBreaks:    make(map[rune]bool),
	}
	for _, s := range opts.LabelStyles {
		c.labelStyles[s] = true
	}
	for _, r := range opts.SentenceFinal {
		c.sentenceFinal[r] = true
	}
	for _, r := range opts.HardBreaks {
		c.hardBreaks[r] = true
	}
	return c
}

// IsLabelStyle reports whether style marks verse or chapter numbers.
func (c *Classifier) IsLabelStyle(style string) bool {
	return c.labelStyles[style]
}

// IsSentenceFinal reports whether r can end a segment.
func (c *Classifier) IsSentenceFinal(r rune) bool {
	return c.sentenceFinal[r]
}

// Classify classifies every character of s.
func (c *Classifier) Classify(s richtext.String) []Char {
	text := s.Text()
	chars := make([]Char, 0, len(text))
	for off := 0; off < len(text); {
		r, size := utf8.DecodeRuneInString(text[off:])
		props := s.PropsAt(off)
		ch := Char{Offset: off, Size: size, Rune: r, WS: props.WS}
		switch {
		case r == richtext.AnchorChar:
			ch.Class = ClassAnchor
			ch.Object = props.Object
		case c.hardBreaks[r]:
			ch.Class = ClassHardBreak
		case unicode.IsSpace(r):
			ch.Class = ClassWhitespace
		case c.labelStyles[props.Style]:
			ch.Class = ClassPunctuation
			ch.Label = true
		case c.systems.Get(props.WS).IsWordForming(r):
			ch.Class = ClassWordForming
		default:
			ch.Class = ClassPunctuation
		}
		chars = append(chars, ch)
		off += size
	}
	return chars
}

// isOpening reports opening brackets and initial quotes, which never join
// the segment that ends before them.
func isOpening(r rune) bool {
	return unicode.Is(unicode.Ps, r) || unicode.Is(unicode.Pi, r)
}
