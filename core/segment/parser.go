package segment

import (
	"strings"

	"github.com/FocuswithJustin/JuniperText/core/richtext"
	"github.com/FocuswithJustin/JuniperText/core/wsys"
)

// Parser runs the classifier, segmenter and tokenizer over a paragraph.
type Parser struct {
	cls *Classifier
	seg *Segmenter
}

// NewParser creates a parser for the given writing systems and options.
func NewParser(systems *wsys.Registry, opts Options) *Parser {
	cls := NewClassifier(systems, opts)
	return &Parser{cls: cls, seg: NewSegmenter(cls)}
}

// DefaultParser returns a parser with default options and Unicode
// classification for every writing system.
func DefaultParser() *Parser {
	return NewParser(nil, DefaultOptions())
}

// Classifier returns the parser's classifier.
func (p *Parser) Classifier() *Classifier {
	return p.cls
}

// Parse segments and tokenizes s.
func (p *Parser) Parse(s richtext.String) []Skeleton {
	chars := p.cls.Classify(s)
	spans := p.seg.spans(chars, s.Len())
	text := s.Text()

	out := make([]Skeleton, 0, len(spans))
	lo := 0
	for _, sp := range spans {
		hi := lo
		for hi < len(chars) && chars[hi].Offset < sp.End {
			hi++
		}
		out = append(out, tokenize(text, chars[lo:hi], sp))
		lo = hi
	}
	return out
}

// Reassemble rebuilds paragraph text from skeletons.
func Reassemble(sks []Skeleton) string {
	var b strings.Builder
	for _, sk := range sks {
		b.WriteString(sk.Leading)
		for _, t := range sk.Tokens {
			b.WriteString(t.Text)
			b.WriteString(t.Trailing)
		}
	}
	return b.String()
}
