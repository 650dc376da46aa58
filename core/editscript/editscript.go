// Package editscript parses line-oriented scripts of paragraph edits.
//
// Each command names paragraphs by index and offsets in bytes:
//
//	replace 0 4 7 "two"         # replace [4,7) of paragraph 0
//	set 1 "New contents."       # replace the whole paragraph
//	split 0 12                  # split paragraph 0 at offset 12
//	merge 0                     # join paragraphs 0 and 1
//	insert 2 "Fresh paragraph." # insert a paragraph at index 2
//	delete 3
//	move 0 3 7 to 1 0           # move [3,7) of paragraph 0 to paragraph 1
//	across 0 5 2 3 ""           # replace from (0,5) to (2,3)
//
// Inserted text takes the writing system of the text it is typed into,
// unless followed by `as "ws"`.
package editscript

import (
	"os"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/FocuswithJustin/JuniperText/core/adjust"
	"github.com/FocuswithJustin/JuniperText/core/errors"
	"github.com/FocuswithJustin/JuniperText/core/interlinear"
	"github.com/FocuswithJustin/JuniperText/core/richtext"
)

//nolint:govet // participle grammar tags are not standard struct tags
type scriptGrammar struct {
	Commands []*Command `@@*`
}

// Command is one parsed script line. Exactly one of the edit fields is set.
//
//nolint:govet // participle grammar tags are not standard struct tags
type Command struct {
	Pos lexer.Position

	Replace *replaceCmd `  "replace" @@`
	Set     *setCmd     `| "set" @@`
	Split   *splitCmd   `| "split" @@`
	Merge   *mergeCmd   `| "merge" @@`
	Insert  *insertCmd  `| "insert" @@`
	Delete  *deleteCmd  `| "delete" @@`
	Move    *moveCmd    `| "move" @@`
	Across  *acrossCmd  `| "across" @@`
}

//nolint:govet // participle grammar tags are not standard struct tags
type typedText struct {
	Text string  `@String`
	WS   *string `( "as" @String )?`
}

//nolint:govet // participle grammar tags are not standard struct tags
type replaceCmd struct {
	Para  int       `@Int`
	Begin int       `@Int`
	End   int       `@Int`
	Text  typedText `@@`
}

//nolint:govet // participle grammar tags are not standard struct tags
type setCmd struct {
	Para int       `@Int`
	Text typedText `@@`
}

//nolint:govet // participle grammar tags are not standard struct tags
type splitCmd struct {
	Para   int `@Int`
	Offset int `@Int`
}

//nolint:govet // participle grammar tags are not standard struct tags
type mergeCmd struct {
	Para int `@Int`
}

//nolint:govet // participle grammar tags are not standard struct tags
type insertCmd struct {
	Index int       `@Int`
	Text  typedText `@@`
}

//nolint:govet // participle grammar tags are not standard struct tags
type deleteCmd struct {
	Para int `@Int`
}

//nolint:govet // participle grammar tags are not standard struct tags
type moveCmd struct {
	Src       int `@Int`
	Begin     int `@Int`
	End       int `@Int`
	Dst       int `"to" @Int`
	DstOffset int `@Int`
}

//nolint:govet // participle grammar tags are not standard struct tags
type acrossCmd struct {
	StartPara   int       `@Int`
	StartOffset int       `@Int`
	EndPara     int       `@Int`
	EndOffset   int       `@Int`
	Text        typedText `@@`
}

var scriptLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\r\n]*`},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Keyword", Pattern: `[a-z]+`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var scriptParser = participle.MustBuild[scriptGrammar](
	participle.Lexer(scriptLexer),
	participle.Unquote("String"),
	participle.Elide("Comment", "Whitespace"),
)

// Parse parses a script. Commands are resolved against a text only when
// they run, so indices refer to the text as left by the previous command.
func Parse(src string) ([]*Command, error) {
	parsed, err := scriptParser.ParseString("", src)
	if err != nil {
		return nil, &errors.ParseError{Format: "editscript", Message: err.Error(), Err: errors.ErrInvalidInput}
	}
	return parsed.Commands, nil
}

// ParseFile parses the script at path.
func ParseFile(path string) ([]*Command, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIO("read", path, err)
	}
	cmds, err := Parse(string(data))
	if err != nil {
		var pe *errors.ParseError
		if errors.As(err, &pe) {
			pe.Path = path
		}
		return nil, err
	}
	return cmds, nil
}

// Kind returns the adjust edit kind the command produces.
func (c *Command) Kind() string {
	switch {
	case c.Replace != nil:
		return adjust.KindReplace
	case c.Set != nil:
		return adjust.KindSet
	case c.Split != nil:
		return adjust.KindSplit
	case c.Merge != nil:
		return adjust.KindMerge
	case c.Insert != nil:
		return adjust.KindInsert
	case c.Delete != nil:
		return adjust.KindDelete
	case c.Move != nil:
		return adjust.KindMove
	default:
		return adjust.KindAcross
	}
}

// Line returns the script line of the command.
func (c *Command) Line() int {
	return c.Pos.Line
}

// Resolve turns the command into an edit of t.
func (c *Command) Resolve(t *interlinear.Text) (adjust.Edit, error) {
	para := func(i int) (*interlinear.Paragraph, error) {
		if i < 0 || i >= len(t.Paragraphs) {
			return nil, errors.NewInputInvariant(c.Kind(), "paragraph index outside text", i, len(t.Paragraphs))
		}
		return t.Paragraphs[i], nil
	}

	switch {
	case c.Replace != nil:
		p, err := para(c.Replace.Para)
		if err != nil {
			return nil, err
		}
		return adjust.ReplaceText{
			Para:   p,
			Begin:  c.Replace.Begin,
			End:    c.Replace.End,
			Insert: c.Replace.Text.at(p, c.Replace.Begin),
		}, nil

	case c.Set != nil:
		p, err := para(c.Set.Para)
		if err != nil {
			return nil, err
		}
		return adjust.SetContents{Para: p, Contents: c.Set.Text.at(p, 0)}, nil

	case c.Split != nil:
		p, err := para(c.Split.Para)
		if err != nil {
			return nil, err
		}
		return adjust.SplitParagraph{Para: p, Offset: c.Split.Offset}, nil

	case c.Merge != nil:
		p, err := para(c.Merge.Para)
		if err != nil {
			return nil, err
		}
		return adjust.MergeParagraphs{Para: p}, nil

	case c.Insert != nil:
		// The new paragraph takes the writing system of its predecessor.
		var prev *interlinear.Paragraph
		if i := min(c.Insert.Index, len(t.Paragraphs)) - 1; i >= 0 {
			prev = t.Paragraphs[i]
		} else if len(t.Paragraphs) > 0 {
			prev = t.Paragraphs[0]
		}
		return adjust.InsertParagraph{Text: t, Index: c.Insert.Index, Contents: c.Insert.Text.at(prev, 0)}, nil

	case c.Delete != nil:
		p, err := para(c.Delete.Para)
		if err != nil {
			return nil, err
		}
		return adjust.DeleteParagraph{Para: p}, nil

	case c.Move != nil:
		src, err := para(c.Move.Src)
		if err != nil {
			return nil, err
		}
		dst, err := para(c.Move.Dst)
		if err != nil {
			return nil, err
		}
		return adjust.Move{Src: src, Begin: c.Move.Begin, End: c.Move.End, Dst: dst, DstOffset: c.Move.DstOffset}, nil

	case c.Across != nil:
		sp, err := para(c.Across.StartPara)
		if err != nil {
			return nil, err
		}
		ep, err := para(c.Across.EndPara)
		if err != nil {
			return nil, err
		}
		return adjust.ReplaceAcross{
			StartPara:   sp,
			StartOffset: c.Across.StartOffset,
			EndPara:     ep,
			EndOffset:   c.Across.EndOffset,
			Insert:      c.Across.Text.at(sp, c.Across.StartOffset),
		}, nil
	}
	return nil, errors.NewUnsupported("editscript", "empty command")
}

// at returns the text as typed at offset of p. A nil paragraph with no
// explicit writing system yields an undetermined one.
func (tt typedText) at(p *interlinear.Paragraph, offset int) richtext.String {
	switch {
	case tt.WS != nil:
		return richtext.Plain(tt.Text, *tt.WS)
	case p == nil:
		return richtext.Plain(tt.Text, "und")
	}
	return adjust.Typed(p, offset, tt.Text)
}

// Run resolves and applies every command in order. It stops at the first
// failing command and returns the results so far.
func Run(adj *adjust.Adjuster, t *interlinear.Text, cmds []*Command) ([]*adjust.Result, error) {
	results := make([]*adjust.Result, 0, len(cmds))
	for _, c := range cmds {
		edit, err := c.Resolve(t)
		if err != nil {
			return results, errors.Wrapf(err, "line %d", c.Line())
		}
		res, err := adj.Apply(edit)
		if err != nil {
			return results, errors.Wrapf(err, "line %d", c.Line())
		}
		results = append(results, res)
	}
	return results, nil
}
