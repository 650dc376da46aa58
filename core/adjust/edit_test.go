package adjust

import (
	stderrors "errors"
	"testing"

	"github.com/FocuswithJustin/JuniperText/core/errors"
	"github.com/FocuswithJustin/JuniperText/core/interlinear"
	"github.com/FocuswithJustin/JuniperText/core/richtext"
	"github.com/FocuswithJustin/JuniperText/core/txn"
)

func TestEditValidation(t *testing.T) {
	f := newFixture(t, "Aa. Bb. Cc.", "café")
	p, q := f.para(0), f.para(1)
	other := interlinear.NewCorpus(nil).NewText("other")
	stranger := other.AddParagraph(en("Elsewhere."))

	tests := []struct {
		name string
		edit Edit
		want error
	}{
		{"end past paragraph", ReplaceText{Para: p, Begin: 0, End: 99, Insert: en("x")}, errors.ErrInputInvariant},
		{"begin after end", ReplaceText{Para: p, Begin: 4, End: 2, Insert: en("x")}, errors.ErrInputInvariant},
		{"negative offset", SplitParagraph{Para: p, Offset: -1}, errors.ErrInputInvariant},
		{"inside a character", ReplaceText{Para: q, Begin: 4, End: 4, Insert: en("x")}, errors.ErrInputInvariant},
		{"no paragraph", DeleteParagraph{}, errors.ErrInputInvariant},
		{"merge last paragraph", MergeParagraphs{Para: q}, errors.ErrInputInvariant},
		{"insert index out of range", InsertParagraph{Text: f.text, Index: 5, Contents: en("x")}, errors.ErrInputInvariant},
		{"foreign text", ReplaceText{Para: stranger, Begin: 0, End: 0, Insert: en("x")}, errors.ErrInputInvariant},
		{"move into itself", Move{Src: p, Begin: 3, End: 7, Dst: p, DstOffset: 5}, errors.ErrUnsupported},
		{"across into a segment", ReplaceAcross{StartPara: p, StartOffset: 3, EndPara: q, EndOffset: 1, Insert: en("")}, errors.ErrUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := p.Contents.Text()
			_, err := f.adj.Apply(tt.edit)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Apply() error = %v, want %v", err, tt.want)
			}
			if p.Contents.Text() != before || len(f.text.Paragraphs) != 2 {
				t.Error("rejected edit changed the text")
			}
		})
	}
	f.valid()
}

type failingRecorder struct {
	calls int
}

func (r *failingRecorder) RecordEdit(*Record) error {
	r.calls++
	return stderrors.New("disk full")
}

func TestRecorderFailureRollsBack(t *testing.T) {
	c := interlinear.NewCorpus(nil)
	text := c.NewText("t")
	rec := &failingRecorder{}
	plain := New(c, nil)
	p := text.AddParagraph(en("Aa bb."))
	if _, err := plain.Parse(p); err != nil {
		t.Fatal(err)
	}
	seg := p.Segments[0]
	translate(seg, "T")
	aa := c.Repo.Find("Aa", "en")

	adj := New(c, nil, WithRecorder(rec))
	if _, err := adj.AdjustForReplace(p, 0, 2, en("Zz")); err == nil {
		t.Fatal("expected recorder error")
	}
	if rec.calls != 1 {
		t.Errorf("RecordEdit called %d times, want 1", rec.calls)
	}
	if p.Contents.Text() != "Aa bb." || p.Segments[0] != seg || seg.FreeTranslation.Get("en") != "T" {
		t.Error("failed edit should leave the paragraph untouched")
	}
	if c.Repo.Find("Aa", "en") != aa || aa.Deleted() || c.Repo.Find("Zz", "en") != nil {
		t.Error("failed edit should restore the repository")
	}
	for _, err := range interlinear.ValidateCorpus(c) {
		t.Errorf("invalid corpus: %v", err)
	}
}

type recordingRecorder struct {
	recs []*Record
}

func (r *recordingRecorder) RecordEdit(rec *Record) error {
	r.recs = append(r.recs, rec)
	return nil
}

func TestRecorderSeesFingerprints(t *testing.T) {
	c := interlinear.NewCorpus(nil)
	rec := &recordingRecorder{}
	adj := New(c, nil, WithRecorder(rec), WithScope(txn.None{}))
	text := c.NewText("t")
	p := text.AddParagraph(en("Aa bb."))
	if _, err := adj.Parse(p); err != nil {
		t.Fatal(err)
	}
	res, err := adj.AdjustForReplace(p, 0, 2, en("Zz"))
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.recs) != 2 {
		t.Fatalf("recorded %d edits, want 2", len(rec.recs))
	}
	last := rec.recs[1]
	if last.ID != res.ID || last.Kind != KindReplace || last.Text != text.GUID {
		t.Errorf("record = %+v", last)
	}
	if last.Before[p.GUID] == last.After[p.GUID] {
		t.Error("fingerprint should change with the text")
	}
	if last.After[p.GUID] != interlinear.FingerprintParagraph(p) {
		t.Error("After fingerprint should describe the committed paragraph")
	}
}

func TestChartPolicies(t *testing.T) {
	type cell struct{ b, e int }
	tests := []struct {
		name       string
		policy     ChartPolicy
		begin, end int
		insert     string
		want       []cell
		lost       int
	}{
		{"insert leaves gap", ChartLeaveUnassigned, 6, 6, "xx ", []cell{{0, 1}, {3, 4}}, 0},
		{"insert expands first", ChartExpandFirstCell, 6, 6, "xx ", []cell{{0, 2}, {3, 4}}, 0},
		{"overlap trims second", ChartLeaveUnassigned, 3, 8, "zz", []cell{{0, 1}, {2, 2}}, 0},
		{"overlap merges into first", ChartExpandFirstCell, 3, 8, "zz", []cell{{0, 2}}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "Aa bb cc dd.")
			f.adj.policy = tt.policy
			ch := f.text.AddChart("chart", "pre", "verb")
			row := ch.AddRow("1a")
			if _, err := f.text.AddCell(row, 0, pt(0, 0, 0), pt(0, 0, 1)); err != nil {
				t.Fatal(err)
			}
			if _, err := f.text.AddCell(row, 1, pt(0, 0, 2), pt(0, 0, 3)); err != nil {
				t.Fatal(err)
			}

			res := f.mustApply(f.adj.AdjustForReplace(f.para(0), tt.begin, tt.end, en(tt.insert)))

			if len(row.Cells) != len(tt.want) {
				t.Fatalf("len(Cells) = %d, want %d", len(row.Cells), len(tt.want))
			}
			for i, w := range tt.want {
				c := row.Cells[i]
				if c.Begin != pt(0, 0, w.b) || c.End != pt(0, 0, w.e) {
					t.Errorf("Cells[%d] = %+v..%+v, want %d..%d", i, c.Begin, c.End, w.b, w.e)
				}
			}
			if got := res.Losses.Count(interlinear.ElementChartCell); got != tt.lost {
				t.Errorf("chart cell losses = %d, want %d", got, tt.lost)
			}
		})
	}
}

func TestParseChartPolicy(t *testing.T) {
	tests := []struct {
		in   string
		want ChartPolicy
		ok   bool
	}{
		{"", ChartLeaveUnassigned, true},
		{"leave-unassigned", ChartLeaveUnassigned, true},
		{"expand-first", ChartExpandFirstCell, true},
		{"bogus", ChartLeaveUnassigned, false},
	}
	for _, tt := range tests {
		got, ok := ParseChartPolicy(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseChartPolicy(%q) = %v, %v, want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
		if ok && tt.in != "" && got.String() != tt.in {
			t.Errorf("String() = %q, want %q", got.String(), tt.in)
		}
	}
}

func TestSegmentBecomesLabel(t *testing.T) {
	f := newFixture(t, "Aa. Bb")
	p := f.para(0)
	translate(f.seg(0, 1), "TB", "nb")

	var verse richtext.Builder
	verse.Append("12", "en", "Verse Number")
	res := f.mustApply(f.adj.AdjustForReplace(p, 4, 6, verse.String()))

	if len(p.Segments) != 2 || !p.Segments[1].IsLabel {
		t.Fatalf("segments = %q, want a trailing label", segTexts(p))
	}
	if p.Segments[1].HasTranslationOrNotes() {
		t.Error("label segment should carry no translation")
	}
	if res.Losses.Count(interlinear.ElementFreeTranslation) != 1 || res.Losses.Count(interlinear.ElementNote) != 1 {
		t.Errorf("losses = %v", res.Losses.LostElements)
	}
}

func TestWritingSystemChangeBreaksMatch(t *testing.T) {
	f := newFixture(t, "Aa bb.")
	p := f.para(0)
	bb := f.corpus.Repo.Find("bb", "en")

	var b richtext.Builder
	b.Append("Aa ", "en", "").Append("bb", "fr", "").Append(".", "en", "")
	f.mustApply(f.adj.AdjustForTextChange(p, b.String()))

	if got := p.Segments[0].Analyses[1].Wordform; got == bb || got == nil || got.WS != "fr" {
		t.Errorf("slot 1 should resolve to the fr wordform, got %+v", got)
	}
	if !bb.Deleted() {
		t.Error("en wordform should have been cleaned up")
	}
}

func TestAnchorSurvivesEdit(t *testing.T) {
	c := interlinear.NewCorpus(nil)
	adj := New(c, nil)
	text := c.NewText("t")
	obj := richtext.NewObject(richtext.ObjectFootnote)

	var b richtext.Builder
	b.Append("Aa bb.", "en", "").AppendObject(obj, "en").Append(" Cc.", "en", "")
	p := text.AddParagraph(b.String())
	if _, err := adj.Parse(p); err != nil {
		t.Fatal(err)
	}
	if len(p.Segments) != 2 {
		t.Fatalf("segments = %q, want 2", segTexts(p))
	}

	if _, err := adj.AdjustForReplace(p, 0, 2, en("Zz")); err != nil {
		t.Fatal(err)
	}
	var found bool
	for _, sl := range p.Segments[0].Analyses {
		if sl.Kind == interlinear.SlotObject && sl.Object == obj {
			found = true
		}
	}
	if !found {
		t.Error("anchor should stay in the first segment")
	}
	for _, err := range interlinear.ValidateCorpus(c) {
		t.Errorf("invalid corpus: %v", err)
	}
}

func TestTyped(t *testing.T) {
	var b richtext.Builder
	b.Append("ab", "en", "").Append("cd", "fr", "")
	p := interlinear.NewCorpus(nil).NewText("t").AddParagraph(b.String())

	tests := []struct {
		offset int
		want   string
	}{
		{0, "en"},
		{2, "en"},
		{3, "fr"},
		{4, "fr"},
	}
	for _, tt := range tests {
		if got := Typed(p, tt.offset, "x").WSAt(0); got != tt.want {
			t.Errorf("Typed(%d) ws = %q, want %q", tt.offset, got, tt.want)
		}
	}
}
