package editscript

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/FocuswithJustin/JuniperText/core/adjust"
	"github.com/FocuswithJustin/JuniperText/core/errors"
	"github.com/FocuswithJustin/JuniperText/core/interlinear"
	"github.com/FocuswithJustin/JuniperText/core/richtext"
)

func TestParse(t *testing.T) {
	src := `
# comment line
replace 0 4 7 "two"
set 1 "New contents." as "fr"
split 0 12
merge 0
insert 2 "Line\u2028break"
delete 3
move 0 3 7 to 1 0
across 0 5 2 3 ""
`
	cmds, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	want := []string{
		adjust.KindReplace, adjust.KindSet, adjust.KindSplit, adjust.KindMerge,
		adjust.KindInsert, adjust.KindDelete, adjust.KindMove, adjust.KindAcross,
	}
	if len(cmds) != len(want) {
		t.Fatalf("len(cmds) = %d, want %d", len(cmds), len(want))
	}
	for i, c := range cmds {
		if c.Kind() != want[i] {
			t.Errorf("cmds[%d].Kind() = %q, want %q", i, c.Kind(), want[i])
		}
	}
	if cmds[0].Line() != 3 {
		t.Errorf("cmds[0].Line() = %d, want 3", cmds[0].Line())
	}
	if cmds[1].Set.Text.WS == nil || *cmds[1].Set.Text.WS != "fr" {
		t.Error("set should carry its writing system")
	}
	if got := cmds[4].Insert.Text.Text; got != "Line\u2028break" {
		t.Errorf("insert text = %q", got)
	}
	if m := cmds[6].Move; m.Src != 0 || m.Begin != 3 || m.End != 7 || m.Dst != 1 || m.DstOffset != 0 {
		t.Errorf("move = %+v", m)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []string{
		`replace 0 4 "two"`,
		`frobnicate 1`,
		`move 0 1 2 1 0`,
		`set 0 "unterminated`,
	}
	for _, src := range tests {
		if _, err := Parse(src); !errors.Is(err, errors.ErrInvalidInput) {
			t.Errorf("Parse(%q) error = %v, want invalid input", src, err)
		}
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "edits.txt")
	if err := os.WriteFile(path, []byte("merge 0\nbogus\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := ParseFile(path)
	var pe *errors.ParseError
	if !errors.As(err, &pe) || pe.Path != path {
		t.Errorf("ParseFile() error = %v, want a ParseError for %s", err, path)
	}
	if _, err := ParseFile(filepath.Join(t.TempDir(), "none")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ParseFile(missing) error = %v", err)
	}
}

func TestRun(t *testing.T) {
	c := interlinear.NewCorpus(nil)
	text := c.NewText("t")
	adj := adjust.New(c, nil)
	for _, s := range []string{"One two. Three.", "Four five."} {
		if _, err := adj.Parse(text.AddParagraph(richtext.Plain(s, "en"))); err != nil {
			t.Fatal(err)
		}
	}
	seg := text.Paragraphs[0].Segments[1]
	seg.FreeTranslation = interlinear.MultiString{"en": "T3"}

	cmds, err := Parse(`
replace 0 4 7 "deux"
split 0 9
insert 3 "Six."
merge 1
`)
	if err != nil {
		t.Fatal(err)
	}
	results, err := Run(adj, text, cmds)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("len(results) = %d, want 4", len(results))
	}

	want := []string{"One deux.", " Three.Four five.", "Six."}
	if len(text.Paragraphs) != len(want) {
		t.Fatalf("len(Paragraphs) = %d, want %d", len(text.Paragraphs), len(want))
	}
	for i, p := range text.Paragraphs {
		if got := p.Contents.Text(); got != want[i] {
			t.Errorf("Paragraphs[%d] = %q, want %q", i, got, want[i])
		}
	}
	if text.Paragraphs[1].Segments[0] != seg || seg.FreeTranslation.Get("en") != "T3" {
		t.Error("translated segment should survive split and merge")
	}
	if ws := text.Paragraphs[0].Contents.WSAt(4); ws != "en" {
		t.Errorf("typed text ws = %q, want en", ws)
	}
	for _, err := range interlinear.ValidateCorpus(c) {
		t.Errorf("invalid corpus: %v", err)
	}
}

func TestRunStopsAtFailure(t *testing.T) {
	c := interlinear.NewCorpus(nil)
	text := c.NewText("t")
	adj := adjust.New(c, nil)
	if _, err := adj.Parse(text.AddParagraph(richtext.Plain("Only.", "en"))); err != nil {
		t.Fatal(err)
	}
	cmds, err := Parse("replace 0 0 0 \"Very \"\ndelete 4\n")
	if err != nil {
		t.Fatal(err)
	}
	results, err := Run(adj, text, cmds)
	if !errors.Is(err, errors.ErrInputInvariant) {
		t.Errorf("Run() error = %v, want input invariant", err)
	}
	if len(results) != 1 || text.Paragraphs[0].Contents.Text() != "Very Only." {
		t.Errorf("first command should have applied, got %q", text.Paragraphs[0].Contents.Text())
	}
}
