package flextext

import (
	"strings"
	"testing"

	"github.com/FocuswithJustin/JuniperText/core/adjust"
	"github.com/FocuswithJustin/JuniperText/core/errors"
	"github.com/FocuswithJustin/JuniperText/core/interlinear"
	"github.com/FocuswithJustin/JuniperText/core/richtext"
)

const sample = `<?xml version="1.0" encoding="UTF-8"?>
<document version="2">
  <interlinear-text guid="5f0c2b7e-1d0a-4c59-9a53-2d3f3c1d7a10">
    <item type="title" lang="en">Kala</item>
    <paragraphs>
      <paragraph guid="0e6f1f44-7c1e-4d37-8f0a-6a1b2c3d4e5f">
        <phrases>
          <phrase guid="a3d2c1b0-0000-4000-8000-000000000001">
            <words>
              <word><item type="txt" lang="qaa">Ka</item><item type="gls" lang="en">he</item></word>
              <word><item type="txt" lang="qaa">nola</item><item type="gls" lang="en">went</item><item type="pos" lang="en">V</item></word>
              <word><item type="punct" lang="qaa">.</item></word>
            </words>
            <item type="gls" lang="en">He went.</item>
            <item type="note" lang="en">past tense</item>
          </phrase>
          <phrase>
            <words>
              <word><item type="punct" lang="qaa">(</item></word>
              <word><item type="txt" lang="qaa">Ka</item><item type="gls" lang="en">he</item></word>
              <word><item type="punct" lang="qaa">)</item></word>
              <word><item type="txt" lang="qaa">yo</item></word>
              <word><item type="punct" lang="qaa">!</item></word>
            </words>
            <item type="gls" lang="en">(He) came!</item>
            <item type="lit" lang="en">he come</item>
          </phrase>
        </phrases>
      </paragraph>
      <paragraph>
        <phrases>
          <phrase>
            <words>
              <word><item type="txt" lang="qaa">A</item></word>
              <word><item type="txt" lang="qaa">b</item></word>
              <word><item type="punct" lang="qaa">.</item></word>
              <word><item type="txt" lang="qaa">C</item></word>
              <word><item type="punct" lang="qaa">.</item></word>
            </words>
            <item type="gls" lang="en">Two sentences in one phrase.</item>
          </phrase>
        </phrases>
      </paragraph>
    </paragraphs>
  </interlinear-text>
</document>`

func TestImport(t *testing.T) {
	c := interlinear.NewCorpus(nil)
	adj := adjust.New(c, nil)
	texts, losses, err := Import([]byte(sample), adj, Options{})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if len(texts) != 1 {
		t.Fatalf("len(texts) = %d, want 1", len(texts))
	}
	text := texts[0]
	if text.Title != "Kala" || text.GUID.String() != "5f0c2b7e-1d0a-4c59-9a53-2d3f3c1d7a10" {
		t.Errorf("text = %q %s", text.Title, text.GUID)
	}
	if len(text.Paragraphs) != 2 {
		t.Fatalf("len(Paragraphs) = %d, want 2", len(text.Paragraphs))
	}

	p := text.Paragraphs[0]
	if got := p.Contents.Text(); got != "Ka nola. (Ka) yo!" {
		t.Errorf("Contents = %q", got)
	}
	if ws := p.Contents.WSAt(0); ws != "qaa" {
		t.Errorf("ws = %q, want qaa", ws)
	}
	if len(p.Segments) != 2 {
		t.Fatalf("len(Segments) = %d, want 2", len(p.Segments))
	}
	s0, s1 := p.Segments[0], p.Segments[1]
	if s0.GUID.String() != "a3d2c1b0-0000-4000-8000-000000000001" {
		t.Errorf("segment guid = %s", s0.GUID)
	}
	if s0.FreeTranslation.Get("en") != "He went." || len(s0.Notes) != 1 || s0.Notes[0].Content.Get("en") != "past tense" {
		t.Errorf("segment 0 = %+v", s0)
	}
	if s1.LiteralTranslation.Get("en") != "he come" {
		t.Errorf("literal = %q", s1.LiteralTranslation.Get("en"))
	}

	first, second := s0.Analyses[0], s1.Analyses[1]
	if first.Kind != interlinear.SlotGloss || second.Kind != interlinear.SlotGloss || first.Gloss != second.Gloss {
		t.Error("both occurrences of Ka should share one gloss")
	}
	ka := c.Repo.Find("Ka", "qaa")
	if len(ka.Analyses) != 1 || c.Repo.OccurrenceCount(ka) != 2 {
		t.Errorf("Ka has %d analyses and %d refs", len(ka.Analyses), c.Repo.OccurrenceCount(ka))
	}
	if nola := s0.Analyses[1]; nola.Gloss == nil || nola.Gloss.Owner.Category != "V" {
		t.Error("nola should carry its part of speech")
	}
	if yo := s1.Analyses[3]; yo.Kind != interlinear.SlotWordform {
		t.Errorf("unglossed word kind = %v", yo.Kind)
	}

	// The second paragraph has one phrase over two segments.
	if got := len(text.Paragraphs[1].Segments); got != 2 {
		t.Errorf("second paragraph segments = %d, want 2", got)
	}
	if losses.Count(interlinear.ElementFreeTranslation) != 1 || len(losses.Warnings) != 1 {
		t.Errorf("losses = %+v", losses)
	}

	for _, err := range interlinear.ValidateCorpus(c) {
		t.Errorf("invalid corpus: %v", err)
	}
}

func TestImportErrors(t *testing.T) {
	adj := adjust.New(interlinear.NewCorpus(nil), nil)
	tests := []struct {
		name string
		data string
	}{
		{"malformed", "<document><interlinear-text></document>"},
		{"no texts", "<document/>"},
		{"entity", `<?xml version="1.0"?><!DOCTYPE d [<!ENTITY x "boom">]><document>&x;</document>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := Import([]byte(tt.data), adj, Options{}); !errors.Is(err, errors.ErrInvalidInput) {
				t.Errorf("Import() error = %v, want invalid input", err)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	c := interlinear.NewCorpus(nil)
	adj := adjust.New(c, nil)
	text := c.NewText("Genesis <1> & more")
	for _, s := range []string{"In the beginning, God created. And it was good!", "Light (came)."} {
		if _, err := adj.Parse(text.AddParagraph(richtext.Plain(s, "en"))); err != nil {
			t.Fatal(err)
		}
	}
	seg := text.Paragraphs[0].Segments[0]
	seg.FreeTranslation = interlinear.MultiString{"fr": "Au commencement", "de": "Am Anfang"}
	seg.Notes = append(seg.Notes, interlinear.NewNote("en", "a & b"))
	god := seg.Analyses[4]
	a := c.Repo.AddAnalysis(god.Wordform, "N")
	g := c.Repo.AddGloss(a, "fr", "Dieu")
	c.Repo.SetSlot(seg, 4, interlinear.GlossSlot(g))

	data := Export(text)
	if !strings.Contains(string(data), "Genesis &lt;1&gt; &amp; more") {
		t.Errorf("export is not escaped:\n%s", data)
	}

	c2 := interlinear.NewCorpus(nil)
	texts, losses, err := Import(data, adjust.New(c2, nil), Options{})
	if err != nil {
		t.Fatalf("Import(Export()) error = %v", err)
	}
	if losses.HasLoss() || len(losses.Warnings) != 0 {
		t.Errorf("round trip losses = %+v", losses)
	}
	got := texts[0]
	if got.GUID != text.GUID || got.Title != text.Title || len(got.Paragraphs) != 2 {
		t.Fatalf("text = %s %q %d", got.GUID, got.Title, len(got.Paragraphs))
	}
	for i, p := range got.Paragraphs {
		want := text.Paragraphs[i]
		if p.GUID != want.GUID || p.Contents.Text() != want.Contents.Text() {
			t.Errorf("Paragraphs[%d] = %q, want %q", i, p.Contents.Text(), want.Contents.Text())
		}
		if len(p.Segments) != len(want.Segments) {
			t.Fatalf("Paragraphs[%d] has %d segments, want %d", i, len(p.Segments), len(want.Segments))
		}
		for j, s := range p.Segments {
			if s.GUID != want.Segments[j].GUID {
				t.Errorf("segment %d/%d guid changed", i, j)
			}
		}
	}
	s := got.Paragraphs[0].Segments[0]
	if !s.FreeTranslation.Equal(seg.FreeTranslation) || len(s.Notes) != 1 || s.Notes[0].Content.Get("en") != "a & b" {
		t.Errorf("segment = %+v", s)
	}
	if sl := s.Analyses[4]; sl.Kind != interlinear.SlotGloss || sl.Gloss.Form.Get("fr") != "Dieu" || sl.Gloss.Owner.Category != "N" {
		t.Errorf("gloss slot = %+v", sl)
	}
}
