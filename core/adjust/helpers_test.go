package adjust

import (
	"testing"

	"github.com/FocuswithJustin/JuniperText/core/interlinear"
	"github.com/FocuswithJustin/JuniperText/core/richtext"
)

type fixture struct {
	t      *testing.T
	corpus *interlinear.Corpus
	text   *interlinear.Text
	adj    *Adjuster
}

func newFixture(t *testing.T, paras ...string) *fixture {
	t.Helper()
	c := interlinear.NewCorpus(nil)
	f := &fixture{t: t, corpus: c, text: c.NewText("test"), adj: New(c, nil)}
	for _, s := range paras {
		p := f.text.AddParagraph(richtext.Plain(s, "en"))
		if _, err := f.adj.Parse(p); err != nil {
			t.Fatalf("Parse(%q): %v", s, err)
		}
	}
	f.valid()
	return f
}

func (f *fixture) para(i int) *interlinear.Paragraph {
	return f.text.Paragraphs[i]
}

func (f *fixture) seg(p, s int) *interlinear.Segment {
	return f.text.Paragraphs[p].Segments[s]
}

func (f *fixture) valid() {
	f.t.Helper()
	for _, err := range interlinear.ValidateCorpus(f.corpus) {
		f.t.Errorf("invalid corpus: %v", err)
	}
}

func (f *fixture) mustApply(res *Result, err error) *Result {
	f.t.Helper()
	if err != nil {
		f.t.Fatalf("adjust: %v", err)
	}
	f.valid()
	return res
}

func en(s string) richtext.String {
	return richtext.Plain(s, "en")
}

func segTexts(p *interlinear.Paragraph) []string {
	out := make([]string, len(p.Segments))
	for i, s := range p.Segments {
		out[i] = p.Contents.Text()[s.Begin:s.End]
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func translate(s *interlinear.Segment, free string, notes ...string) {
	s.FreeTranslation = interlinear.MultiString{"en": free}
	for _, n := range notes {
		s.Notes = append(s.Notes, interlinear.NewNote("en", n))
	}
}

func pt(p, s, i int) interlinear.Point {
	return interlinear.Point{Para: p, Seg: s, Slot: i}
}
