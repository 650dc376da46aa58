package segment

import (
	"testing"

	"github.com/FocuswithJustin/JuniperText/core/richtext"
	"github.com/FocuswithJustin/JuniperText/core/wsys"
)

func spanTexts(s richtext.String, spans []Span) []string {
	out := make([]string, len(spans))
	for i, sp := range spans {
		out[i] = s.Text()[sp.Begin:sp.End]
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

func segmentAll(s richtext.String) []Span {
	return NewSegmenter(NewClassifier(nil, DefaultOptions())).Segment(s)
}

func TestSegmentSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", []string{}},
		{"whitespace only", "   ", []string{"   "}},
		{"single", "In the beginning.", []string{"In the beginning."}},
		{"no terminator", "no stop here", []string{"no stop here"}},
		{"two", "A. B C.", []string{"A.", " B C."}},
		{"three", "A. B. C.", []string{"A.", " B.", " C."}},
		{"decimal", "3.5 units.", []string{"3.5 units."}},
		{"closing quote joins", `He said "go." Then left.`, []string{`He said "go."`, " Then left."}},
		{"ellipsis", "Wait... what?", []string{"Wait...", " what?"}},
		{"opening bracket starts next", "Done.(aside) more", []string{"Done.(aside) more"}},
		{"trailing space", "One. Two. ", []string{"One.", " Two. "}},
		{"hard break", "abc\ndef", []string{"abc\n", "def"}},
		{"line separator", "abc\u2028 def", []string{"abc\u2028 ", "def"}},
		{"break after stop", "abc.\ndef", []string{"abc.\n", "def"}},
		{
			"end to end",
			"pus yalola nihimbilira. nihimbilira pus yalola. hesyla nihimbilira.",
			[]string{"pus yalola nihimbilira.", " nihimbilira pus yalola.", " hesyla nihimbilira."},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := richtext.Plain(tt.text, "en")
			got := spanTexts(s, segmentAll(s))
			if !equalStrings(got, tt.want) {
				t.Errorf("Segment(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestSegmentLabels(t *testing.T) {
	var b richtext.Builder
	b.Append("1", "en", "Verse Number").
		Append(" In the beginning. ", "en", "").
		Append("2", "en", "Verse Number").
		Append(" And.", "en", "")
	s := b.String()

	spans := segmentAll(s)
	got := spanTexts(s, spans)
	want := []string{"1 ", "In the beginning.", " 2 ", "And."}
	if !equalStrings(got, want) {
		t.Fatalf("Segment = %q, want %q", got, want)
	}
	for i, wantLabel := range []bool{true, false, true, false} {
		if spans[i].IsLabel != wantLabel {
			t.Errorf("spans[%d].IsLabel = %v, want %v", i, spans[i].IsLabel, wantLabel)
		}
	}
}

func TestSegmentLabelMidSentence(t *testing.T) {
	var b richtext.Builder
	b.Append("one ", "en", "").Append("2", "en", "Verse Number").Append(" two", "en", "")
	s := b.String()
	got := spanTexts(s, segmentAll(s))
	want := []string{"one", " 2 ", "two"}
	if !equalStrings(got, want) {
		t.Errorf("Segment = %q, want %q", got, want)
	}
}

func TestSegmentTrailingLabel(t *testing.T) {
	var b richtext.Builder
	b.Append("End. ", "en", "").Append("5", "en", "Verse Number")
	s := b.String()
	spans := segmentAll(s)
	if got := spanTexts(s, spans); !equalStrings(got, []string{"End.", " 5"}) {
		t.Fatalf("Segment = %q", got)
	}
	if !spans[1].IsLabel {
		t.Error("trailing verse number should be a label segment")
	}
}

func TestSegmentAnchors(t *testing.T) {
	t.Run("joins sentence end", func(t *testing.T) {
		var b richtext.Builder
		b.Append("Go.", "en", "").AppendObject(richtext.NewObject(richtext.ObjectFootnote), "en").Append(" Next.", "en", "")
		s := b.String()
		got := spanTexts(s, segmentAll(s))
		want := []string{"Go." + richtext.AnchorText, " Next."}
		if !equalStrings(got, want) {
			t.Errorf("Segment = %q, want %q", got, want)
		}
	})

	t.Run("isolated before label", func(t *testing.T) {
		var b richtext.Builder
		b.Append("abc\n", "en", "").
			AppendObject(richtext.NewObject(richtext.ObjectPicture), "en").
			Append("3", "en", "Verse Number").
			Append(" def", "en", "")
		s := b.String()
		spans := segmentAll(s)
		got := spanTexts(s, spans)
		want := []string{"abc\n", richtext.AnchorText, "3 ", "def"}
		if !equalStrings(got, want) {
			t.Fatalf("Segment = %q, want %q", got, want)
		}
		if !spans[1].IsLabel || !spans[2].IsLabel || spans[3].IsLabel {
			t.Errorf("label flags = %v %v %v", spans[1].IsLabel, spans[2].IsLabel, spans[3].IsLabel)
		}
	})
}

func TestTokenize(t *testing.T) {
	p := DefaultParser()
	sks := p.Parse(richtext.Plain("  Hello, world wait?! ", "en"))
	if len(sks) != 1 {
		t.Fatalf("len(Parse()) = %d, want 1", len(sks))
	}
	sk := sks[0]
	if sk.Leading != "  " {
		t.Errorf("Leading = %q, want %q", sk.Leading, "  ")
	}
	want := []struct {
		kind     TokenKind
		text     string
		trailing string
	}{
		{TokenWord, "Hello", ""},
		{TokenPunctuation, ",", " "},
		{TokenWord, "world", " "},
		{TokenWord, "wait", ""},
		{TokenPunctuation, "?!", " "},
	}
	if len(sk.Tokens) != len(want) {
		t.Fatalf("len(Tokens) = %d, want %d", len(sk.Tokens), len(want))
	}
	for i, w := range want {
		got := sk.Tokens[i]
		if got.Kind != w.kind || got.Text != w.text || got.Trailing != w.trailing {
			t.Errorf("Tokens[%d] = {%v %q %q}, want {%v %q %q}",
				i, got.Kind, got.Text, got.Trailing, w.kind, w.text, w.trailing)
		}
	}
}

func TestTokenizeWritingSystems(t *testing.T) {
	var b richtext.Builder
	b.Append("abc", "en", "").Append("δεф", "grc", "").Append(" x", "en", "")
	s := b.String()
	sks := DefaultParser().Parse(s)
	toks := sks[0].Tokens
	if len(toks) != 2 {
		t.Fatalf("len(Tokens) = %d, want 2", len(toks))
	}
	if toks[0].Text != "abcδεф" || toks[0].WS != "en" {
		t.Errorf("Tokens[0] = %q/%q, want %q/en", toks[0].Text, toks[0].WS, "abcδεф")
	}
}

func TestTokenizeAnchors(t *testing.T) {
	a, c := richtext.NewObject(richtext.ObjectFootnote), richtext.NewObject(richtext.ObjectFootnote)
	var b richtext.Builder
	b.Append("x", "en", "").AppendObject(a, "en").AppendObject(c, "en")
	s := b.String()
	toks := NewTokenizer(NewClassifier(nil, DefaultOptions())).Tokenize(s, Span{Begin: 0, End: s.Len()}).Tokens
	if len(toks) != 3 {
		t.Fatalf("len(Tokens) = %d, want 3", len(toks))
	}
	if toks[1].Kind != TokenAnchor || toks[1].Object != a || toks[2].Object != c {
		t.Error("each anchor should be its own token carrying its object")
	}
}

func TestWritingSystemWordForming(t *testing.T) {
	reg := wsys.NewRegistry(&wsys.WritingSystem{ID: "qaa", WordForming: "'"})
	p := NewParser(reg, DefaultOptions())
	toks := p.Parse(richtext.Plain("don't", "qaa"))[0].Tokens
	if len(toks) != 1 || toks[0].Text != "don't" {
		t.Errorf("apostrophe should be word-forming in qaa, got %d tokens", len(toks))
	}
	toks = p.Parse(richtext.Plain("don't", "en"))[0].Tokens
	if len(toks) != 3 {
		t.Errorf("apostrophe should split words in en, got %d tokens", len(toks))
	}
}

func TestRoundTrip(t *testing.T) {
	p := DefaultParser()
	inputs := []string{
		"",
		" ",
		"\n\n",
		"A. B C.",
		"  leading and trailing  ",
		"Mixed\u2028lines\nand. stops!  ",
		"naïve café, déjà vu… ok",
		"“Quoted.” (Bracketed.) Next",
		"pus yalola nihimbilira. nihimbilira pus yalola. hesyla nihimbilira. ",
		"a\uFFFCb \uFFFC. c",
	}
	for _, in := range inputs {
		if got := Reassemble(p.Parse(richtext.Plain(in, "en"))); got != in {
			t.Errorf("Reassemble(Parse(%q)) = %q", in, got)
		}
	}

	var b richtext.Builder
	b.Append("1", "en", "Verse Number").Append(" In. ", "en", "").
		AppendObject(richtext.NewObject(richtext.ObjectFootnote), "en").
		Append("2", "en", "Chapter Number").Append("x y.", "grc", "")
	s := b.String()
	if got := Reassemble(p.Parse(s)); got != s.Text() {
		t.Errorf("Reassemble(Parse(labels)) = %q, want %q", got, s.Text())
	}
}

func TestSpansPartition(t *testing.T) {
	s := richtext.Plain(" One. Two\nthree four. ", "en")
	spans := segmentAll(s)
	pos := 0
	for i, sp := range spans {
		if sp.Begin != pos {
			t.Errorf("spans[%d].Begin = %d, want %d", i, sp.Begin, pos)
		}
		pos = sp.End
	}
	if pos != s.Len() {
		t.Errorf("last span ends at %d, want %d", pos, s.Len())
	}
}
