package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/FocuswithJustin/JuniperText/core/errors"
)

func init() {
	color.NoColor = true
}

const sampleFlex = `<?xml version="1.0" encoding="UTF-8"?>
<document version="2">
  <interlinear-text guid="5f0c2b7e-1d0a-4c59-9a53-2d3f3c1d7a10">
    <item type="title" lang="en">Kala</item>
    <paragraphs>
      <paragraph guid="0e6f1f44-7c1e-4d37-8f0a-6a1b2c3d4e5f">
        <phrases>
          <phrase>
            <words>
              <word><item type="txt" lang="qaa">Ka</item><item type="gls" lang="en">he</item></word>
              <word><item type="txt" lang="qaa">nola</item><item type="gls" lang="en">went</item></word>
              <word><item type="punct" lang="qaa">.</item></word>
            </words>
            <item type="gls" lang="en">He went.</item>
          </phrase>
          <phrase>
            <words>
              <word><item type="txt" lang="qaa">Yo</item></word>
              <word><item type="punct" lang="qaa">!</item></word>
            </words>
            <item type="gls" lang="en">Came!</item>
          </phrase>
        </phrases>
      </paragraph>
    </paragraphs>
  </interlinear-text>
</document>`

func createTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(args, &out)
	return out.String(), err
}

func TestSegmentCmd(t *testing.T) {
	out, err := runCLI(t, "segment", "Aa bb. Cc?")
	if err != nil {
		t.Fatalf("segment error = %v", err)
	}
	if n := strings.Count(out, "segment ["); n != 2 {
		t.Errorf("segments = %d, want 2\n%s", n, out)
	}
	for _, want := range []string{`"Aa" en`, `"Cc" en`, `punct  "?"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestSegmentCmd_File(t *testing.T) {
	dir := t.TempDir()
	path := createTestFile(t, dir, "in.txt", "Aa.\nBb.\n")

	out, err := runCLI(t, "segment", "--ws", "fr", "@"+path)
	if err != nil {
		t.Fatalf("segment error = %v", err)
	}
	if !strings.Contains(out, `"Bb" fr`) {
		t.Errorf("output = %q, want the second line tokenized as fr", out)
	}

	if _, err := runCLI(t, "segment", "@"+filepath.Join(dir, "missing.txt")); err == nil {
		t.Error("segment should fail for a missing file")
	}
}

func TestApplyCmd_PlainText(t *testing.T) {
	dir := t.TempDir()
	in := createTestFile(t, dir, "story.txt", "One two. Three.\nFour five.\n")
	script := createTestFile(t, dir, "edits.txt", "# rename\nreplace 0 4 7 \"deux\"\nmerge 0\n")

	out, err := runCLI(t, "apply", script, "--in", in, "--format", "text")
	if err != nil {
		t.Fatalf("apply error = %v", err)
	}
	if want := "One deux. Three.Four five.\n"; out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestApplyCmd_FlexTextWithJournal(t *testing.T) {
	dir := t.TempDir()
	in := createTestFile(t, dir, "kala.flextext", sampleFlex)
	script := createTestFile(t, dir, "edits.txt", "replace 0 3 7 \"kola\"\n")
	dst := filepath.Join(dir, "out.flextext")
	db := filepath.Join(dir, "journal.db")

	out, err := runCLI(t, "apply", script, "--in", in, "--out", dst, "--journal", db)
	if err != nil {
		t.Fatalf("apply error = %v", err)
	}
	if !strings.Contains(out, "line 1: replace") || !strings.Contains(out, `deleted wordform "nola"`) {
		t.Errorf("summary = %q", out)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{">kola<", ">He went.<", ">Came!<"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("exported flextext missing %q", want)
		}
	}

	hist, err := runCLI(t, "history", "--journal", db, "--snapshot", "0e6f1f44-7c1e-4d37-8f0a-6a1b2c3d4e5f")
	if err != nil {
		t.Fatalf("history error = %v", err)
	}
	if !strings.Contains(hist, "parse") || !strings.Contains(hist, "replace") {
		t.Errorf("history = %q, want parse and replace entries", hist)
	}
	if !strings.Contains(hist, `"Ka kola. Yo!"`) {
		t.Errorf("history = %q, want the latest snapshot", hist)
	}
}

func TestApplyCmd_Errors(t *testing.T) {
	dir := t.TempDir()
	in := createTestFile(t, dir, "story.txt", "One two.\n")
	bad := createTestFile(t, dir, "bad.txt", "replace 0 4\n")
	outOfRange := createTestFile(t, dir, "range.txt", "delete 3\n")
	cfg := createTestFile(t, dir, "interlin.toml", "[adjuster]\nchart_policy = \"sideways\"\n")
	ok := createTestFile(t, dir, "ok.txt", "split 0 4\n")

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"bad script", []string{"apply", bad, "--in", in}, errors.ErrInvalidInput},
		{"paragraph out of range", []string{"apply", outOfRange, "--in", in}, errors.ErrInputInvariant},
		{"bad config", []string{"--config", cfg, "apply", ok, "--in", in}, errors.ErrInvalidInput},
		{"text index", []string{"apply", ok, "--in", in, "--text", "2"}, errors.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestHistoryCmd_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		args []string
	}{
		{"no journal", []string{"history", "0e6f1f44-7c1e-4d37-8f0a-6a1b2c3d4e5f"}},
		{"bad guid", []string{"history", "--journal", filepath.Join(dir, "j.db"), "nope"}},
		{"missing journal", []string{"history", "--journal", filepath.Join(dir, "absent.db"), "0e6f1f44-7c1e-4d37-8f0a-6a1b2c3d4e5f"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runCLI(t, tt.args...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestVersionCmd(t *testing.T) {
	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "interlin version "+version) || !strings.Contains(out, "sqlite driver") {
		t.Errorf("output = %q", out)
	}
}
