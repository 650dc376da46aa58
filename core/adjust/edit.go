package adjust

import (
	"github.com/FocuswithJustin/JuniperText/core/errors"
	"github.com/FocuswithJustin/JuniperText/core/interlinear"
	"github.com/FocuswithJustin/JuniperText/core/richtext"
)

// Edit kinds, as reported in results, logs and the journal.
const (
	KindReplace = "replace"
	KindSet     = "set"
	KindMove    = "move"
	KindSplit   = "split"
	KindMerge   = "merge"
	KindInsert  = "insert"
	KindDelete  = "delete"
	KindAcross  = "across"
)

// Edit is a change to the raw text of one or more paragraphs.
type Edit interface {
	// Kind returns the edit kind.
	Kind() string

	// plan validates the edit and describes its effect.
	plan() (*plan, error)
}

// piece maps an unchanged run of old text onto the new text. Paragraph
// numbers are relative to plan.first.
type piece struct {
	oldPara, oldBegin int
	newPara, newBegin int
	length            int
}

type newParagraph struct {
	reuse    *interlinear.Paragraph
	contents richtext.String
}

// plan describes an edit as the replacement of consecutive paragraphs
// [first, first+len(old)) by news.
type plan struct {
	kind   string
	text   *interlinear.Text
	first  int
	old    []*interlinear.Paragraph
	news   []newParagraph
	pieces []piece
}

func (pl *plan) addPiece(oldPara, oldBegin, newPara, newBegin, length int) {
	if length > 0 {
		pl.pieces = append(pl.pieces, piece{oldPara, oldBegin, newPara, newBegin, length})
	}
}

// keep maps old paragraph i unchanged onto new paragraph i.
func (pl *plan) keep(i int) {
	p := pl.old[i]
	pl.news = append(pl.news, newParagraph{reuse: p, contents: p.Contents})
	pl.addPiece(i, 0, i, 0, p.Contents.Len())
}

func paragraphIndex(op string, p *interlinear.Paragraph) (int, error) {
	if p == nil || p.Text() == nil {
		return 0, errors.NewInputInvariant(op, "paragraph is not part of a text", -1, 0)
	}
	i := p.Index()
	if i < 0 {
		return 0, errors.NewInputInvariant(op, "paragraph is not part of its text", -1, 0)
	}
	return i, nil
}

func checkOffset(op string, p *interlinear.Paragraph, off int) error {
	n := p.Contents.Len()
	if off < 0 || off > n {
		return errors.NewInputInvariant(op, "offset outside paragraph", off, n)
	}
	if !p.Contents.IsRuneBoundary(off) {
		return errors.NewInputInvariant(op, "offset splits a character", off, n)
	}
	return nil
}

func checkRange(op string, p *interlinear.Paragraph, begin, end int) error {
	if err := checkOffset(op, p, begin); err != nil {
		return err
	}
	if err := checkOffset(op, p, end); err != nil {
		return err
	}
	if begin > end {
		return errors.NewInputInvariant(op, "range begins after it ends", begin, p.Contents.Len())
	}
	return nil
}

// ReplaceText replaces [Begin, End) of Para with Insert.
type ReplaceText struct {
	Para   *interlinear.Paragraph
	Begin  int
	End    int
	Insert richtext.String
}

func (e ReplaceText) Kind() string { return KindReplace }

func (e ReplaceText) plan() (*plan, error) {
	i, err := paragraphIndex(KindReplace, e.Para)
	if err != nil {
		return nil, err
	}
	if err := checkRange(KindReplace, e.Para, e.Begin, e.End); err != nil {
		return nil, err
	}
	c := e.Para.Contents
	pl := &plan{kind: KindReplace, first: i, old: []*interlinear.Paragraph{e.Para}}
	pl.news = []newParagraph{{reuse: e.Para, contents: c.Splice(e.Begin, e.End, e.Insert)}}
	pl.addPiece(0, 0, 0, 0, e.Begin)
	pl.addPiece(0, e.End, 0, e.Begin+e.Insert.Len(), c.Len()-e.End)
	return pl, nil
}

// SetContents replaces the whole text of Para. The unchanged prefix and
// suffix are found by comparison.
type SetContents struct {
	Para     *interlinear.Paragraph
	Contents richtext.String
}

func (e SetContents) Kind() string { return KindSet }

func (e SetContents) plan() (*plan, error) {
	i, err := paragraphIndex(KindSet, e.Para)
	if err != nil {
		return nil, err
	}
	old, nu := e.Para.Contents, e.Contents
	pre := old.CommonPrefix(nu)
	suf := old.CommonSuffix(nu, min(old.Len(), nu.Len())-pre)
	pl := &plan{kind: KindSet, first: i, old: []*interlinear.Paragraph{e.Para}}
	pl.news = []newParagraph{{reuse: e.Para, contents: nu}}
	pl.addPiece(0, 0, 0, 0, pre)
	pl.addPiece(0, old.Len()-suf, 0, nu.Len()-suf, suf)
	return pl, nil
}

// Move moves [Begin, End) of Src to DstOffset of Dst. DstOffset is an offset
// into Dst before the move.
type Move struct {
	Src       *interlinear.Paragraph
	Begin     int
	End       int
	Dst       *interlinear.Paragraph
	DstOffset int
}

func (e Move) Kind() string { return KindMove }

func (e Move) plan() (*plan, error) {
	si, err := paragraphIndex(KindMove, e.Src)
	if err != nil {
		return nil, err
	}
	di, err := paragraphIndex(KindMove, e.Dst)
	if err != nil {
		return nil, err
	}
	if e.Src.Text() != e.Dst.Text() {
		return nil, errors.NewInputInvariant(KindMove, "source and destination are in different texts", -1, 0)
	}
	if err := checkRange(KindMove, e.Src, e.Begin, e.End); err != nil {
		return nil, err
	}
	if err := checkOffset(KindMove, e.Dst, e.DstOffset); err != nil {
		return nil, err
	}
	if si == di {
		return e.planWithin(si)
	}

	first, last := min(si, di), max(si, di)
	t := e.Src.Text()
	pl := &plan{kind: KindMove, first: first, old: append([]*interlinear.Paragraph(nil), t.Paragraphs[first:last+1]...)}
	s, d := si-first, di-first
	src, dst := e.Src.Contents, e.Dst.Contents
	moved := src.Slice(e.Begin, e.End)
	n := e.End - e.Begin
	for i := range pl.old {
		switch i {
		case s:
			pl.news = append(pl.news, newParagraph{reuse: e.Src, contents: src.Splice(e.Begin, e.End, richtext.String{})})
			pl.addPiece(s, 0, s, 0, e.Begin)
			pl.addPiece(s, e.End, s, e.Begin, src.Len()-e.End)
			pl.addPiece(s, e.Begin, d, e.DstOffset, n)
		case d:
			pl.news = append(pl.news, newParagraph{reuse: e.Dst, contents: dst.Splice(e.DstOffset, e.DstOffset, moved)})
			pl.addPiece(d, 0, d, 0, e.DstOffset)
			pl.addPiece(d, e.DstOffset, d, e.DstOffset+n, dst.Len()-e.DstOffset)
		default:
			pl.keep(i)
		}
	}
	return pl, nil
}

func (e Move) planWithin(i int) (*plan, error) {
	b, en, d := e.Begin, e.End, e.DstOffset
	if d > b && d < en {
		return nil, errors.NewUnsupported("move", "destination lies inside the moved range")
	}
	c := e.Src.Contents
	pl := &plan{kind: KindMove, first: i, old: []*interlinear.Paragraph{e.Src}}
	n := en - b
	if d <= b {
		pl.news = []newParagraph{{reuse: e.Src, contents: c.Slice(0, d).Concat(c.Slice(b, en), c.Slice(d, b), c.Slice(en, c.Len()))}}
		pl.addPiece(0, 0, 0, 0, d)
		pl.addPiece(0, b, 0, d, n)
		pl.addPiece(0, d, 0, d+n, b-d)
		pl.addPiece(0, en, 0, en, c.Len()-en)
		return pl, nil
	}
	pl.news = []newParagraph{{reuse: e.Src, contents: c.Slice(0, b).Concat(c.Slice(en, d), c.Slice(b, en), c.Slice(d, c.Len()))}}
	pl.addPiece(0, 0, 0, 0, b)
	pl.addPiece(0, en, 0, b, d-en)
	pl.addPiece(0, b, 0, b+d-en, n)
	pl.addPiece(0, d, 0, d, c.Len()-d)
	return pl, nil
}

// SplitParagraph splits Para at Offset. The text after Offset becomes a new
// paragraph following Para.
type SplitParagraph struct {
	Para   *interlinear.Paragraph
	Offset int
}

func (e SplitParagraph) Kind() string { return KindSplit }

func (e SplitParagraph) plan() (*plan, error) {
	i, err := paragraphIndex(KindSplit, e.Para)
	if err != nil {
		return nil, err
	}
	if err := checkOffset(KindSplit, e.Para, e.Offset); err != nil {
		return nil, err
	}
	c := e.Para.Contents
	pl := &plan{kind: KindSplit, first: i, old: []*interlinear.Paragraph{e.Para}}
	pl.news = []newParagraph{
		{reuse: e.Para, contents: c.Slice(0, e.Offset)},
		{contents: c.Slice(e.Offset, c.Len())},
	}
	pl.addPiece(0, 0, 0, 0, e.Offset)
	pl.addPiece(0, e.Offset, 1, 0, c.Len()-e.Offset)
	return pl, nil
}

// MergeParagraphs appends the paragraph following Para to Para.
type MergeParagraphs struct {
	Para *interlinear.Paragraph
}

func (e MergeParagraphs) Kind() string { return KindMerge }

func (e MergeParagraphs) plan() (*plan, error) {
	i, err := paragraphIndex(KindMerge, e.Para)
	if err != nil {
		return nil, err
	}
	t := e.Para.Text()
	if i+1 >= len(t.Paragraphs) {
		return nil, errors.NewInputInvariant(KindMerge, "no following paragraph", -1, 0)
	}
	next := t.Paragraphs[i+1]
	a, b := e.Para.Contents, next.Contents
	pl := &plan{kind: KindMerge, first: i, old: []*interlinear.Paragraph{e.Para, next}}
	pl.news = []newParagraph{{reuse: e.Para, contents: a.Concat(b)}}
	pl.addPiece(0, 0, 0, 0, a.Len())
	pl.addPiece(1, 0, 0, a.Len(), b.Len())
	return pl, nil
}

// InsertParagraph inserts a new paragraph at Index of Text.
type InsertParagraph struct {
	Text     *interlinear.Text
	Index    int
	Contents richtext.String
}

func (e InsertParagraph) Kind() string { return KindInsert }

func (e InsertParagraph) plan() (*plan, error) {
	if e.Text == nil {
		return nil, errors.NewInputInvariant(KindInsert, "no text", -1, 0)
	}
	if e.Index < 0 || e.Index > len(e.Text.Paragraphs) {
		return nil, errors.NewInputInvariant(KindInsert, "paragraph index outside text", e.Index, len(e.Text.Paragraphs))
	}
	return &plan{
		kind:  KindInsert,
		text:  e.Text,
		first: e.Index,
		news:  []newParagraph{{contents: e.Contents}},
	}, nil
}

// DeleteParagraph removes Para and everything anchored in it.
type DeleteParagraph struct {
	Para *interlinear.Paragraph
}

func (e DeleteParagraph) Kind() string { return KindDelete }

func (e DeleteParagraph) plan() (*plan, error) {
	i, err := paragraphIndex(KindDelete, e.Para)
	if err != nil {
		return nil, err
	}
	return &plan{kind: KindDelete, first: i, old: []*interlinear.Paragraph{e.Para}}, nil
}

// ReplaceAcross replaces the text from StartOffset of StartPara to EndOffset
// of EndPara with Insert, merging the two paragraphs and dropping those in
// between.
type ReplaceAcross struct {
	StartPara   *interlinear.Paragraph
	StartOffset int
	EndPara     *interlinear.Paragraph
	EndOffset   int
	Insert      richtext.String
}

func (e ReplaceAcross) Kind() string { return KindAcross }

func (e ReplaceAcross) plan() (*plan, error) {
	si, err := paragraphIndex(KindAcross, e.StartPara)
	if err != nil {
		return nil, err
	}
	ei, err := paragraphIndex(KindAcross, e.EndPara)
	if err != nil {
		return nil, err
	}
	if e.StartPara.Text() != e.EndPara.Text() {
		return nil, errors.NewInputInvariant(KindAcross, "paragraphs are in different texts", -1, 0)
	}
	if si == ei {
		pl, err := ReplaceText{Para: e.StartPara, Begin: e.StartOffset, End: e.EndOffset, Insert: e.Insert}.plan()
		if pl != nil {
			pl.kind = KindAcross
		}
		return pl, err
	}
	if si > ei {
		return nil, errors.NewInputInvariant(KindAcross, "start paragraph follows end paragraph", -1, 0)
	}
	if err := checkOffset(KindAcross, e.StartPara, e.StartOffset); err != nil {
		return nil, err
	}
	if err := checkOffset(KindAcross, e.EndPara, e.EndOffset); err != nil {
		return nil, err
	}
	if e.EndPara.ParseIsCurrent {
		for _, s := range e.EndPara.Segments {
			if s.Begin < e.EndOffset && e.EndOffset < s.End {
				return nil, errors.NewUnsupported("across",
					"range ends inside a segment whose remainder would move to another paragraph")
			}
		}
	}

	t := e.StartPara.Text()
	a, b := e.StartPara.Contents, e.EndPara.Contents
	pl := &plan{kind: KindAcross, first: si, old: append([]*interlinear.Paragraph(nil), t.Paragraphs[si:ei+1]...)}
	pl.news = []newParagraph{{
		reuse:    e.StartPara,
		contents: a.Slice(0, e.StartOffset).Concat(e.Insert, b.Slice(e.EndOffset, b.Len())),
	}}
	pl.addPiece(0, 0, 0, 0, e.StartOffset)
	pl.addPiece(ei-si, e.EndOffset, 0, e.StartOffset+e.Insert.Len(), b.Len()-e.EndOffset)
	return pl, nil
}

// Typed returns s as if typed at offset of para: it takes the writing system
// of the character before offset, or of the first character at offset 0.
func Typed(para *interlinear.Paragraph, offset int, s string) richtext.String {
	return richtext.Plain(s, para.Contents.WSAt(max(offset-1, 0)))
}
