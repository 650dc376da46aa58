// Command interlin segments text and applies edit scripts to interlinear
// texts while keeping their annotations aligned.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"
	"github.com/google/uuid"

	"github.com/FocuswithJustin/JuniperText/core/adjust"
	"github.com/FocuswithJustin/JuniperText/core/config"
	"github.com/FocuswithJustin/JuniperText/core/editscript"
	"github.com/FocuswithJustin/JuniperText/core/errors"
	"github.com/FocuswithJustin/JuniperText/core/flextext"
	"github.com/FocuswithJustin/JuniperText/core/interlinear"
	"github.com/FocuswithJustin/JuniperText/core/journal"
	"github.com/FocuswithJustin/JuniperText/core/richtext"
	"github.com/FocuswithJustin/JuniperText/core/segment"
	"github.com/FocuswithJustin/JuniperText/core/sqlite"
	"github.com/FocuswithJustin/JuniperText/internal/fileutil"
	"github.com/FocuswithJustin/JuniperText/internal/logging"
	"github.com/FocuswithJustin/JuniperText/internal/validation"
)

const version = "0.1.0"

var (
	headColor   = color.New(color.FgCyan, color.Bold)
	labelColor  = color.New(color.FgMagenta)
	lossColor   = color.New(color.FgYellow)
	okColor     = color.New(color.FgGreen)
	punctColor  = color.New(color.FgBlue)
	anchorColor = color.New(color.FgRed)
)

// Globals are the flags shared by every command.
type Globals struct {
	Config   string `name:"config" short:"c" help:"Configuration file (TOML)" type:"existingfile"`
	LogLevel string `name:"log-level" help:"Override the configured log level"`
	NoColor  bool   `name:"no-color" help:"Disable colored output"`

	cfg *config.Config
}

// CLI defines the command-line interface for interlin.
type CLI struct {
	Globals

	Segment SegmentCmd `cmd:"" help:"Split text into segments and tokens"`
	Apply   ApplyCmd   `cmd:"" help:"Apply an edit script to a text"`
	History HistoryCmd `cmd:"" help:"Show the journaled edits of a paragraph"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// load reads the configuration once and applies its logging section.
func (g *Globals) load() (*config.Config, error) {
	if g.cfg != nil {
		return g.cfg, nil
	}
	cfg := config.Default()
	if g.Config != "" {
		var err error
		if cfg, err = config.Load(g.Config); err != nil {
			return nil, err
		}
	}
	if g.LogLevel != "" {
		cfg.Logging.Level = g.LogLevel
	}
	cfg.InitLogging()
	if g.NoColor {
		color.NoColor = true
	}
	g.cfg = cfg
	return cfg, nil
}

// SegmentCmd prints the segments and tokens of a text.
type SegmentCmd struct {
	Text string `arg:"" help:"Text to segment, or @file to read it from a file"`
	WS   string `name:"ws" help:"Writing system of the text" default:"en"`
}

func (c *SegmentCmd) Run(g *Globals, out io.Writer) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	text := c.Text
	if strings.HasPrefix(text, "@") {
		data, err := os.ReadFile(text[1:])
		if err != nil {
			return errors.NewIO("read", text[1:], err)
		}
		text = strings.TrimRight(string(data), "\r\n")
	}

	parser := cfg.Parser()
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			fmt.Fprintln(out)
		}
		s := richtext.Plain(line, c.WS)
		for _, sk := range parser.Parse(s) {
			kind := "segment"
			if sk.IsLabel {
				kind = "label"
			}
			head := headColor
			if sk.IsLabel {
				head = labelColor
			}
			head.Fprintf(out, "%s [%d,%d)", kind, sk.Begin, sk.End)
			fmt.Fprintf(out, " %q\n", line[sk.Begin:sk.End])
			for _, tok := range sk.Tokens {
				fmt.Fprint(out, "  ")
				tokenColor(tok.Kind).Fprintf(out, "%-6s", tok.Kind)
				fmt.Fprintf(out, " %q %s\n", tok.Text, tok.WS)
			}
		}
	}
	return nil
}

func tokenColor(k segment.TokenKind) *color.Color {
	switch k {
	case segment.TokenPunctuation:
		return punctColor
	case segment.TokenAnchor:
		return anchorColor
	default:
		return color.New(color.Reset)
	}
}

// ApplyCmd runs an edit script against one text.
type ApplyCmd struct {
	Script  string `arg:"" help:"Edit script" type:"existingfile"`
	In      string `name:"in" short:"i" help:"Input text (.flextext, or plain text with one paragraph per line)" type:"existingfile" required:""`
	Out     string `name:"out" short:"o" help:"Output file (default: stdout)" type:"path"`
	Format  string `name:"format" help:"Output format" enum:"flextext,text" default:"flextext"`
	TextNum int    `name:"text" help:"Index of the text to edit when the input holds several" default:"0"`
	WS      string `name:"ws" help:"Writing system for plain text input" default:"en"`
	Journal string `name:"journal" short:"j" help:"Record edits in this journal database" type:"path"`
}

func (c *ApplyCmd) Run(g *Globals, out io.Writer) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	cmds, err := editscript.ParseFile(c.Script)
	if err != nil {
		return err
	}

	corpus := interlinear.NewCorpus(nil)
	opts := cfg.AdjusterOptions()
	journalPath := c.Journal
	if journalPath == "" {
		journalPath = cfg.Journal.Path
	}
	if journalPath != "" {
		store, err := journal.Open(journalPath)
		if err != nil {
			return err
		}
		defer store.Close()
		sc := store.Scope()
		opts = append(opts, adjust.WithScope(sc), adjust.WithRecorder(sc))
	}
	adj := adjust.New(corpus, cfg.Parser(), opts...)

	texts, err := c.read(adj)
	if err != nil {
		return err
	}
	if c.TextNum < 0 || c.TextNum >= len(texts) {
		return errors.NewValidation("text", fmt.Sprintf("index %d out of range (%d texts)", c.TextNum, len(texts)))
	}

	// Keep stdout clean for the exported data.
	summary := out
	if c.Out == "" {
		summary = io.Discard
	}
	results, err := editscript.Run(adj, texts[c.TextNum], cmds)
	for i, res := range results {
		printResult(summary, cmds[i], res)
	}
	if err != nil {
		return err
	}

	var data []byte
	if c.Format == "text" {
		data = []byte(plainText(texts[c.TextNum]))
	} else {
		data = flextext.Export(texts...)
	}
	if c.Out == "" {
		_, err := out.Write(data)
		return err
	}
	if err := fileutil.WriteFileAtomic(c.Out, data, 0644); err != nil {
		return errors.NewIO("write", c.Out, err)
	}
	okColor.Fprintf(out, "wrote %s\n", c.Out)
	return nil
}

func (c *ApplyCmd) read(adj *adjust.Adjuster) ([]*interlinear.Text, error) {
	kind, err := validation.SniffFile(c.In)
	if err != nil {
		return nil, errors.NewValidation("in", err.Error())
	}
	data, err := os.ReadFile(c.In)
	if err != nil {
		return nil, errors.NewIO("read", c.In, err)
	}
	switch kind {
	case validation.FileTypeFlexText:
		texts, report, err := flextext.Import(data, adj, flextext.Options{DefaultWS: c.WS})
		if err != nil {
			return nil, errors.Wrapf(err, "%s", c.In)
		}
		for _, w := range report.Warnings {
			logging.Warn("flextext import", "file", c.In, "warning", w)
		}
		for _, e := range report.LostElements {
			logging.Warn("flextext import loss", "file", c.In, "path", e.Path, "element", e.ElementType, "reason", e.Reason)
		}
		return texts, nil
	case validation.FileTypeText:
	default:
		return nil, errors.NewValidation("in", fmt.Sprintf("cannot read %s input", kind))
	}

	t := adj.Corpus().NewText(strings.TrimSuffix(filepath.Base(c.In), filepath.Ext(c.In)))
	for _, line := range strings.Split(strings.TrimRight(string(data), "\r\n"), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		t.AddParagraph(richtext.Plain(line, c.WS))
	}
	if err := adj.ParseText(t); err != nil {
		return nil, err
	}
	return []*interlinear.Text{t}, nil
}

func printResult(out io.Writer, cmd *editscript.Command, res *adjust.Result) {
	headColor.Fprintf(out, "line %d: %s", cmd.Line(), res.Kind)
	fmt.Fprintf(out, " (%d paragraphs)\n", len(res.Paragraphs))
	for _, e := range res.Losses.LostElements {
		lossColor.Fprintf(out, "  lost %s at %s: %s\n", e.ElementType, e.Path, e.Reason)
	}
	for _, w := range res.Deleted {
		fmt.Fprintf(out, "  deleted wordform %q (%s)\n", w.Form, w.WS)
	}
}

func plainText(t *interlinear.Text) string {
	var b strings.Builder
	for _, p := range t.Paragraphs {
		b.WriteString(p.Contents.Text())
		b.WriteByte('\n')
	}
	return b.String()
}

// HistoryCmd lists the journal entries of one paragraph.
type HistoryCmd struct {
	Paragraph string `arg:"" help:"Paragraph GUID"`
	Journal   string `name:"journal" short:"j" help:"Journal database (default: from config)" type:"path"`
	Snapshot  bool   `name:"snapshot" help:"Also print the latest stored paragraph text"`
}

func (c *HistoryCmd) Run(g *Globals, out io.Writer) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Paragraph)
	if err != nil {
		return errors.NewValidation("paragraph", "not a GUID: "+c.Paragraph)
	}
	path := c.Journal
	if path == "" {
		path = cfg.Journal.Path
	}
	if path == "" {
		return errors.NewValidation("journal", "no journal given and none configured")
	}
	if kind, err := validation.SniffFile(path); err != nil {
		return errors.NewIO("open", path, err)
	} else if kind != validation.FileTypeSQLite {
		return errors.NewValidation("journal", path+" is not a journal database")
	}
	store, err := journal.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	entries, err := store.History(ctx, id)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return errors.NewNotFound("paragraph history", c.Paragraph)
	}
	for _, e := range entries {
		headColor.Fprintf(out, "%s %-8s", e.At.Format("2006-01-02 15:04:05"), e.Kind)
		fmt.Fprintf(out, " %-7s %s\n", e.Role, e.ID)
		for _, l := range e.Losses {
			lossColor.Fprintf(out, "  lost %s at %s: %s\n", l.ElementType, l.Path, l.Reason)
		}
		if len(e.Deleted) > 0 {
			fmt.Fprintf(out, "  deleted %s\n", strings.Join(e.Deleted, ", "))
		}
	}
	if c.Snapshot {
		snap, err := store.LatestSnapshot(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%q\n", snap.Text)
	}
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(out io.Writer) error {
	info := sqlite.GetInfo()
	fmt.Fprintf(out, "interlin version %s\n", version)
	fmt.Fprintf(out, "sqlite driver %s (%s)\n", info.DriverType, info.Package)
	return nil
}

func newParser(cli *CLI, out io.Writer) (*kong.Kong, error) {
	return kong.New(cli,
		kong.Name("interlin"),
		kong.Description("Interlinear text maintenance"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Writers(out, os.Stderr),
		kong.BindTo(out, (*io.Writer)(nil)),
	)
}

func run(args []string, out io.Writer) error {
	var cli CLI
	parser, err := newParser(&cli, out)
	if err != nil {
		return err
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	return ctx.Run(&cli.Globals)
}

func main() {
	var cli CLI
	parser, err := newParser(&cli, os.Stdout)
	if err != nil {
		panic(err)
	}
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)
	err = ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
