// Package adjust keeps interlinear annotations consistent across edits to
// paragraph text.
//
// Every edit is reduced to a plan: a run of old paragraphs, the contents of
// the paragraphs replacing them, and the pieces of text that survive the
// edit unchanged. The new text is parsed from scratch and its tokens are
// matched against the old ones, first through the unchanged pieces and then
// by the longest common prefix and suffix of each unmatched gap. Matched
// slots keep their resolutions; segments, translations, notes, tags and
// chart cells follow the matches. Whatever cannot follow is reported in the
// result's LossReport.
package adjust

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/FocuswithJustin/JuniperText/core/errors"
	"github.com/FocuswithJustin/JuniperText/core/interlinear"
	"github.com/FocuswithJustin/JuniperText/core/richtext"
	"github.com/FocuswithJustin/JuniperText/core/segment"
	"github.com/FocuswithJustin/JuniperText/core/txn"
	"github.com/FocuswithJustin/JuniperText/internal/logging"
)

// KindParse is the kind reported by Adjuster.Parse.
const KindParse = "parse"

// Record describes one committed edit for a Recorder.
type Record struct {
	ID         uuid.UUID
	Kind       string
	Text       uuid.UUID
	Paragraphs []*interlinear.Paragraph
	Removed    []uuid.UUID
	// Before and After hold paragraph fingerprints keyed by paragraph GUID.
	Before  map[uuid.UUID]string
	After   map[uuid.UUID]string
	Losses  *interlinear.LossReport
	Deleted []*interlinear.Wordform
	At      time.Time
}

// Recorder receives every edit before its scope commits. An error aborts the
// edit.
type Recorder interface {
	RecordEdit(rec *Record) error
}

// Result is the outcome of one edit.
type Result struct {
	ID   uuid.UUID
	Kind string

	// Losses lists the annotation the edit could not carry forward.
	Losses *interlinear.LossReport

	// Deleted lists the wordforms removed by orphan cleanup.
	Deleted []*interlinear.Wordform

	// Paragraphs are the paragraphs that replaced the edited ones.
	Paragraphs []*interlinear.Paragraph

	// Removed are edited paragraphs that no longer exist.
	Removed []*interlinear.Paragraph
}

// Adjuster applies edits to the texts of one corpus.
type Adjuster struct {
	corpus   *interlinear.Corpus
	parser   *segment.Parser
	scope    txn.Scope
	policy   ChartPolicy
	recorder Recorder
}

// Option configures an Adjuster.
type Option func(*Adjuster)

// WithScope runs every edit inside s. The default is a memory scope over
// the edited paragraphs and the wordforms the edit touches.
func WithScope(s txn.Scope) Option {
	return func(a *Adjuster) { a.scope = s }
}

// WithChartPolicy sets how chart rows are repaired.
func WithChartPolicy(p ChartPolicy) Option {
	return func(a *Adjuster) { a.policy = p }
}

// WithRecorder records every edit.
func WithRecorder(r Recorder) Option {
	return func(a *Adjuster) { a.recorder = r }
}

// New creates an adjuster for corpus. A nil parser uses segment defaults.
func New(corpus *interlinear.Corpus, parser *segment.Parser, opts ...Option) *Adjuster {
	if parser == nil {
		parser = segment.DefaultParser()
	}
	a := &Adjuster{corpus: corpus, parser: parser}
	for _, opt := range opts {
		opt(a)
	}
	if a.scope == nil {
		a.scope = txn.Memory{}
	}
	return a
}

// Corpus returns the adjusted corpus.
func (a *Adjuster) Corpus() *interlinear.Corpus {
	return a.corpus
}

// Apply validates and applies edit inside the adjuster's scope.
func (a *Adjuster) Apply(edit Edit) (*Result, error) {
	return a.ApplyContext(context.Background(), edit)
}

// ApplyContext is Apply with a logging context.
func (a *Adjuster) ApplyContext(ctx context.Context, edit Edit) (*Result, error) {
	pl, err := edit.plan()
	if err != nil {
		return nil, err
	}
	if pl.text == nil && len(pl.old) > 0 {
		pl.text = pl.old[0].Text()
	}
	if pl.text == nil || pl.text.Corpus() != a.corpus {
		return nil, errors.NewInputInvariant(edit.Kind(), "text does not belong to this corpus", -1, 0)
	}

	id := uuid.New()
	ctx = logging.WithEditID(ctx, id.String())
	region := interlinear.Region{Text: pl.text, Paragraphs: pl.old}
	if region.Paragraphs == nil {
		region.Paragraphs = []*interlinear.Paragraph{}
	}
	var res *Result
	err = a.scope.Run(pl.kind, region, func() error {
		var runErr error
		res, runErr = a.apply(ctx, id, pl)
		return runErr
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (a *Adjuster) apply(ctx context.Context, id uuid.UUID, pl *plan) (*Result, error) {
	before := make(map[uuid.UUID]string, len(pl.old))
	for _, p := range pl.old {
		before[p.GUID] = interlinear.FingerprintParagraph(p)
	}

	losses := &interlinear.LossReport{Operation: pl.kind}
	r := newReconciler(a, pl, losses)
	r.run()
	deleted := a.corpus.Repo.CleanupOrphans(r.touched)

	for _, e := range losses.LostElements {
		logging.AnnotationLoss(ctx, e.ElementType, e.Path, e.Reason)
	}
	for _, w := range deleted {
		logging.WordformDeleted(ctx, w.Form, w.WS)
	}
	logging.EditApplied(ctx, pl.kind, len(r.newParas), r.segCount)

	res := &Result{
		ID:         id,
		Kind:       pl.kind,
		Losses:     losses,
		Deleted:    deleted,
		Paragraphs: r.newParas,
		Removed:    r.removed,
	}
	if a.recorder == nil {
		return res, nil
	}

	rec := &Record{
		ID:         id,
		Kind:       pl.kind,
		Text:       pl.text.GUID,
		Paragraphs: r.newParas,
		Before:     before,
		After:      make(map[uuid.UUID]string, len(r.newParas)),
		Losses:     losses,
		Deleted:    deleted,
		At:         time.Now().UTC(),
	}
	for _, p := range r.newParas {
		rec.After[p.GUID] = interlinear.FingerprintParagraph(p)
	}
	for _, p := range r.removed {
		rec.Removed = append(rec.Removed, p.GUID)
	}
	if err := a.recorder.RecordEdit(rec); err != nil {
		return nil, errors.Wrap(err, "record edit")
	}
	return res, nil
}

type parseEdit struct {
	SetContents
}

func (e parseEdit) Kind() string { return KindParse }

func (e parseEdit) plan() (*plan, error) {
	pl, err := e.SetContents.plan()
	if pl != nil {
		pl.kind = KindParse
	}
	return pl, err
}

// Parse (re)parses para against its current contents. Annotations of a
// current parse are kept; an outdated parse is replaced.
func (a *Adjuster) Parse(para *interlinear.Paragraph) (*Result, error) {
	if para == nil {
		return nil, errors.NewInputInvariant(KindParse, "no paragraph", -1, 0)
	}
	return a.Apply(parseEdit{SetContents{Para: para, Contents: para.Contents}})
}

// ParseText parses every paragraph of t.
func (a *Adjuster) ParseText(t *interlinear.Text) error {
	for _, p := range append([]*interlinear.Paragraph(nil), t.Paragraphs...) {
		if _, err := a.Parse(p); err != nil {
			return err
		}
	}
	return nil
}

// AdjustForTextChange replaces the whole contents of para.
func (a *Adjuster) AdjustForTextChange(para *interlinear.Paragraph, newContents richtext.String) (*Result, error) {
	return a.Apply(SetContents{Para: para, Contents: newContents})
}

// AdjustForReplace replaces [begin, end) of para with insert.
func (a *Adjuster) AdjustForReplace(para *interlinear.Paragraph, begin, end int, insert richtext.String) (*Result, error) {
	return a.Apply(ReplaceText{Para: para, Begin: begin, End: end, Insert: insert})
}

// AdjustForMove moves [begin, end) of src to dstOffset of dst.
func (a *Adjuster) AdjustForMove(src *interlinear.Paragraph, begin, end int, dst *interlinear.Paragraph, dstOffset int) (*Result, error) {
	return a.Apply(Move{Src: src, Begin: begin, End: end, Dst: dst, DstOffset: dstOffset})
}

// AdjustForParagraphInsert inserts a paragraph at index of t.
func (a *Adjuster) AdjustForParagraphInsert(t *interlinear.Text, index int, contents richtext.String) (*Result, error) {
	return a.Apply(InsertParagraph{Text: t, Index: index, Contents: contents})
}

// AdjustForParagraphDelete deletes para.
func (a *Adjuster) AdjustForParagraphDelete(para *interlinear.Paragraph) (*Result, error) {
	return a.Apply(DeleteParagraph{Para: para})
}

// AdjustForParagraphSplit splits para at offset.
func (a *Adjuster) AdjustForParagraphSplit(para *interlinear.Paragraph, offset int) (*Result, error) {
	return a.Apply(SplitParagraph{Para: para, Offset: offset})
}

// AdjustForParagraphMerge merges para with the paragraph after it.
func (a *Adjuster) AdjustForParagraphMerge(para *interlinear.Paragraph) (*Result, error) {
	return a.Apply(MergeParagraphs{Para: para})
}

// AdjustForReplaceAcross replaces text spanning from startPara to endPara.
func (a *Adjuster) AdjustForReplaceAcross(startPara *interlinear.Paragraph, startOffset int, endPara *interlinear.Paragraph, endOffset int, insert richtext.String) (*Result, error) {
	return a.Apply(ReplaceAcross{
		StartPara:   startPara,
		StartOffset: startOffset,
		EndPara:     endPara,
		EndOffset:   endOffset,
		Insert:      insert,
	})
}
