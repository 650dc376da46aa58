package interlinear

import "github.com/google/uuid"

// Corpus is a set of texts sharing one wordform repository.
type Corpus struct {
	Repo  *Repository
	Texts []*Text
}

// NewCorpus creates a corpus over repo. A nil repo gets a fresh one.
func NewCorpus(repo *Repository) *Corpus {
	if repo == nil {
		repo = NewRepository()
	}
	return &Corpus{Repo: repo}
}

// NewText creates an empty text in the corpus.
func (c *Corpus) NewText(title string) *Text {
	t := &Text{GUID: uuid.New(), Title: title, corpus: c}
	c.Texts = append(c.Texts, t)
	return t
}

type segmentState struct {
	seg *Segment
	val Segment
}

type paragraphState struct {
	para *Paragraph
	val  Paragraph
}

type rowState struct {
	row   *ChartRow
	cells []*ChartCell
}

type textState struct {
	text  *Text
	val   Text
	tags  map[*TextTag]TextTag
	cells map[*ChartCell]ChartCell
	rows  []rowState
	paras []paragraphState
	segs  []segmentState
	notes map[*Note]MultiString
}

// Checkpoint captures the corpus and its repository. Calling restore undoes
// every mutation made since, including object identity of segments,
// paragraphs, tags and cells. release keeps the mutations and stops the
// repository recording them.
func (c *Corpus) Checkpoint() (restore, release func()) {
	texts := append([]*Text(nil), c.Texts...)
	states := make([]textState, 0, len(c.Texts))
	for _, t := range c.Texts {
		states = append(states, captureText(t, t.Paragraphs))
	}
	repoRestore, repoRelease := c.Repo.checkpoint()
	return func() {
		c.Texts = texts
		for i := range states {
			states[i].restore()
		}
		repoRestore()
	}, repoRelease
}

// Region is the part of a corpus one edit may change: the paragraphs it
// rewrites, the text's paragraph list, tags and charts, and the wordforms
// the repository touches. A nil Paragraphs covers every paragraph of Text.
type Region struct {
	Text       *Text
	Paragraphs []*Paragraph
}

// Checkpoint captures the region. Its cost follows the size of the region
// and of the text's tags and charts, not of the corpus.
func (g Region) Checkpoint() (restore, release func()) {
	paras := g.Paragraphs
	if paras == nil {
		paras = g.Text.Paragraphs
	}
	st := captureText(g.Text, paras)
	if g.Text.corpus == nil {
		return st.restore, func() {}
	}
	repoRestore, repoRelease := g.Text.corpus.Repo.checkpoint()
	return func() {
		st.restore()
		repoRestore()
	}, repoRelease
}

func captureText(t *Text, paras []*Paragraph) textState {
	st := textState{
		text:  t,
		val:   *t,
		tags:  make(map[*TextTag]TextTag, len(t.Tags)),
		cells: make(map[*ChartCell]ChartCell),
		notes: make(map[*Note]MultiString),
	}
	st.val.Paragraphs = append([]*Paragraph(nil), t.Paragraphs...)
	st.val.Tags = append([]*TextTag(nil), t.Tags...)
	st.val.Charts = append([]*Chart(nil), t.Charts...)
	for _, tag := range t.Tags {
		st.tags[tag] = *tag
	}
	for _, ch := range t.Charts {
		for _, r := range ch.Rows {
			st.rows = append(st.rows, rowState{row: r, cells: append([]*ChartCell(nil), r.Cells...)})
			for _, cell := range r.Cells {
				st.cells[cell] = *cell
			}
		}
	}
	for _, p := range paras {
		pv := *p
		pv.Segments = append([]*Segment(nil), p.Segments...)
		st.paras = append(st.paras, paragraphState{para: p, val: pv})
		for _, s := range p.Segments {
			sv := *s
			sv.Analyses = append([]Slot(nil), s.Analyses...)
			sv.Notes = append([]*Note(nil), s.Notes...)
			sv.FreeTranslation = s.FreeTranslation.Clone()
			sv.LiteralTranslation = s.LiteralTranslation.Clone()
			st.segs = append(st.segs, segmentState{seg: s, val: sv})
			for _, n := range s.Notes {
				st.notes[n] = n.Content.Clone()
			}
		}
	}
	return st
}

func (st *textState) restore() {
	*st.text = st.val
	for tag, v := range st.tags {
		*tag = v
	}
	for cell, v := range st.cells {
		*cell = v
	}
	for _, r := range st.rows {
		r.row.Cells = r.cells
	}
	for _, p := range st.paras {
		*p.para = p.val
	}
	for _, s := range st.segs {
		*s.seg = s.val
	}
	for n, v := range st.notes {
		n.Content = v
	}
}
