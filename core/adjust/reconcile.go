package adjust

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/FocuswithJustin/JuniperText/core/interlinear"
	"github.com/FocuswithJustin/JuniperText/core/richtext"
	"github.com/FocuswithJustin/JuniperText/core/segment"
)

// oldToken is a slot of an old paragraph together with the surface it was
// resolved from. Paragraph numbers are relative to plan.first.
type oldToken struct {
	para, seg int
	slot      interlinear.Slot
	kind      segment.TokenKind
	text      string
	ws        string
	object    *richtext.Object
	// stale tokens come from an outdated parse and never match.
	stale bool
}

type newToken struct {
	para, seg int
	tok       segment.Token
}

type segKey struct {
	para, seg int
}

// reconciler carries one edit from plan to committed paragraphs.
type reconciler struct {
	a      *Adjuster
	pl     *plan
	text   *interlinear.Text
	losses *interlinear.LossReport

	sks   [][]segment.Skeleton
	old   []oldToken
	nu    []newToken
	match []int
	rev   []int

	oldIdx *interlinear.SlotIndex
	gStart int

	newParas []*interlinear.Paragraph
	removed  []*interlinear.Paragraph
	touched  []*interlinear.Wordform
	segCount int
}

func newReconciler(a *Adjuster, pl *plan, losses *interlinear.LossReport) *reconciler {
	return &reconciler{a: a, pl: pl, text: pl.text, losses: losses}
}

func (r *reconciler) run() {
	r.oldIdx = interlinear.NewSlotIndex(r.text)
	r.gStart = r.oldIdx.ParagraphStart(r.pl.first)

	r.collectOld()
	r.parseNew()
	r.alignMatches()
	r.gapMatches()
	gather := r.destinations()
	segs := r.buildSegments(gather)
	r.commit(segs)
	r.remapRanges()
}

func (r *reconciler) collectOld() {
	for i, p := range r.pl.old {
		text := p.Contents.Text()
		for j, s := range p.Segments {
			for _, sl := range s.Analyses {
				ot := oldToken{para: i, seg: j, slot: sl, stale: !p.ParseIsCurrent}
				if sl.Begin < 0 || sl.End > len(text) || sl.Begin >= sl.End {
					ot.stale = true
				} else {
					ot.text = text[sl.Begin:sl.End]
					ot.ws = p.Contents.WSAt(sl.Begin)
				}
				switch sl.Kind {
				case interlinear.SlotPunctuation:
					ot.kind = segment.TokenPunctuation
				case interlinear.SlotObject:
					ot.kind = segment.TokenAnchor
					if !ot.stale {
						ot.object = p.Contents.ObjectAt(sl.Begin)
					}
				default:
					ot.kind = segment.TokenWord
				}
				r.old = append(r.old, ot)
			}
		}
	}
	r.match = make([]int, len(r.old))
	for i := range r.match {
		r.match[i] = -1
	}
}

func (r *reconciler) parseNew() {
	r.sks = make([][]segment.Skeleton, len(r.pl.news))
	for k, np := range r.pl.news {
		r.sks[k] = r.a.parser.Parse(np.contents)
		for j, sk := range r.sks[k] {
			for _, tok := range sk.Tokens {
				r.nu = append(r.nu, newToken{para: k, seg: j, tok: tok})
			}
		}
	}
	r.rev = make([]int, len(r.nu))
	for i := range r.rev {
		r.rev[i] = -1
	}
}

func same(o oldToken, n newToken) bool {
	return !o.stale &&
		o.kind == n.tok.Kind &&
		o.text == n.tok.Text &&
		o.ws == n.tok.WS &&
		o.object == n.tok.Object
}

func (r *reconciler) link(o, n int) {
	r.match[o] = n
	r.rev[n] = o
}

// alignMatches pairs old tokens lying inside unchanged text with the new
// token at the same aligned position.
func (r *reconciler) alignMatches() {
	at := make(map[segKey]int, len(r.nu))
	for n, nt := range r.nu {
		at[segKey{nt.para, nt.tok.Begin}] = n
	}
	for o, ot := range r.old {
		if ot.stale {
			continue
		}
		for _, pc := range r.pl.pieces {
			if pc.oldPara != ot.para || ot.slot.Begin < pc.oldBegin || ot.slot.End > pc.oldBegin+pc.length {
				continue
			}
			nb := pc.newBegin + ot.slot.Begin - pc.oldBegin
			n, ok := at[segKey{pc.newPara, nb}]
			if ok && r.rev[n] < 0 && r.nu[n].tok.End-nb == ot.slot.End-ot.slot.Begin && same(ot, r.nu[n]) {
				r.link(o, n)
			}
			break
		}
	}
}

// gapMatches extends the alignment with the longest common prefix and
// suffix of every run of unmatched tokens between two matched neighbours.
func (r *reconciler) gapMatches() {
	prevO, prevN := -1, -1
	for o := 0; o <= len(r.old); {
		next := o
		for next < len(r.old) && r.match[next] < 0 {
			next++
		}
		nextN := len(r.nu)
		if next < len(r.old) {
			nextN = r.match[next]
		}
		if next > o && prevN < nextN {
			r.matchGap(prevO+1, next, prevN+1, nextN)
		}
		if next == len(r.old) {
			break
		}
		prevO, prevN = next, r.match[next]
		o = next + 1
	}
}

func (r *reconciler) matchGap(oBegin, oEnd, nBegin, nEnd int) {
	for n := nBegin; n < nEnd; n++ {
		if r.rev[n] >= 0 {
			return
		}
	}
	i := 0
	for oBegin+i < oEnd && nBegin+i < nEnd && same(r.old[oBegin+i], r.nu[nBegin+i]) {
		r.link(oBegin+i, nBegin+i)
		i++
	}
	j := 0
	for oEnd-1-j >= oBegin+i && nEnd-1-j >= nBegin+i && same(r.old[oEnd-1-j], r.nu[nEnd-1-j]) {
		r.link(oEnd-1-j, nEnd-1-j)
		j++
	}
}

// destinations maps each new segment to the old segments whose first
// surviving token it holds, in old order.
func (r *reconciler) destinations() map[segKey][]*interlinear.Segment {
	first := make(map[segKey]segKey)
	for o, ot := range r.old {
		if n := r.match[o]; n >= 0 {
			k := segKey{ot.para, ot.seg}
			if _, ok := first[k]; !ok {
				first[k] = segKey{r.nu[n].para, r.nu[n].seg}
			}
		}
	}

	gather := make(map[segKey][]*interlinear.Segment)
	for i, p := range r.pl.old {
		for j, s := range p.Segments {
			k := segKey{i, j}
			dest, ok := first[k]
			if !ok && len(s.Analyses) == 0 && p.ParseIsCurrent {
				dest, ok = r.spanDestination(i, s)
			}
			if !ok {
				r.discard(fmt.Sprintf("para[%d]/seg[%d]", r.pl.first+i, j), s, "segment content replaced")
				continue
			}
			gather[dest] = append(gather[dest], s)
		}
	}
	return gather
}

// spanDestination places a segment without slots by mapping its start
// offset through the unchanged text.
func (r *reconciler) spanDestination(para int, s *interlinear.Segment) (segKey, bool) {
	for _, pc := range r.pl.pieces {
		if pc.oldPara != para || s.Begin < pc.oldBegin || s.End > pc.oldBegin+pc.length {
			continue
		}
		nb := pc.newBegin + s.Begin - pc.oldBegin
		for j, sk := range r.sks[pc.newPara] {
			if sk.Begin <= nb && nb < sk.End {
				return segKey{pc.newPara, j}, true
			}
		}
		break
	}
	return segKey{}, false
}

func (r *reconciler) discard(path string, s *interlinear.Segment, reason string) {
	if !s.FreeTranslation.IsEmpty() {
		r.losses.AddLostValue(path, interlinear.ElementFreeTranslation, reason, s.FreeTranslation.Clone())
	}
	if !s.LiteralTranslation.IsEmpty() {
		r.losses.AddLostValue(path, interlinear.ElementLiteralTranslation, reason, s.LiteralTranslation.Clone())
	}
	for _, n := range s.Notes {
		r.losses.AddLostValue(path, interlinear.ElementNote, reason, n.Content.Clone())
	}
}

// buildSegments creates the populated segments of every new paragraph.
func (r *reconciler) buildSegments(gather map[segKey][]*interlinear.Segment) [][]*interlinear.Segment {
	out := make([][]*interlinear.Segment, len(r.sks))
	n := 0
	for k, sks := range r.sks {
		out[k] = make([]*interlinear.Segment, len(sks))
		for j, sk := range sks {
			srcs := gather[segKey{k, j}]

			var free, lit []interlinear.MultiString
			var notes []*interlinear.Note
			for _, s := range srcs {
				free = append(free, s.FreeTranslation)
				lit = append(lit, s.LiteralTranslation)
				notes = append(notes, s.Notes...)
			}

			var seg *interlinear.Segment
			if len(srcs) > 0 {
				seg = srcs[0]
			} else {
				seg = &interlinear.Segment{GUID: uuid.New()}
			}
			seg.Begin, seg.End, seg.IsLabel, seg.Leading = sk.Begin, sk.End, sk.IsLabel, sk.Leading
			seg.FreeTranslation = interlinear.JoinMultiStrings(free...)
			seg.LiteralTranslation = interlinear.JoinMultiStrings(lit...)
			seg.Notes = notes
			if sk.IsLabel && seg.HasTranslationOrNotes() {
				r.discard(fmt.Sprintf("para[%d]/seg[%d]", r.pl.first+k, j), seg, "segment became a label")
				seg.FreeTranslation, seg.LiteralTranslation, seg.Notes = nil, nil, nil
			}

			slots := make([]interlinear.Slot, len(sk.Tokens))
			for i, tok := range sk.Tokens {
				var sl interlinear.Slot
				if o := r.rev[n]; o >= 0 {
					sl = r.old[o].slot
				} else {
					sl = r.a.corpus.Repo.DefaultResolution(tok)
				}
				sl.Begin, sl.End, sl.Trailing = tok.Begin, tok.End, tok.Trailing
				slots[i] = sl
				n++
			}
			seg.Analyses = slots
			out[k][j] = seg
			r.segCount++
		}
	}
	return out
}

// commit installs the new paragraphs and moves references from the old
// slots to the new ones.
func (r *reconciler) commit(segs [][]*interlinear.Segment) {
	repo := r.a.corpus.Repo
	for _, ps := range segs {
		for _, s := range ps {
			for _, sl := range s.Analyses {
				repo.RetainSlot(sl)
			}
		}
	}
	for o, ot := range r.old {
		repo.ReleaseSlot(ot.slot)
		if r.match[o] < 0 {
			if w := ot.slot.RootWordform(); w != nil {
				r.touched = append(r.touched, w)
			}
		}
	}

	reused := make(map[*interlinear.Paragraph]bool)
	r.newParas = make([]*interlinear.Paragraph, len(r.pl.news))
	for k, np := range r.pl.news {
		p := np.reuse
		if p == nil {
			p = r.text.NewParagraph(np.contents)
		}
		reused[p] = true
		p.Contents = np.contents
		p.Segments = segs[k]
		p.ParseIsCurrent = true
		r.newParas[k] = p
	}
	for _, p := range r.pl.old {
		if !reused[p] {
			r.removed = append(r.removed, p)
		}
	}

	t := r.text
	paras := make([]*interlinear.Paragraph, 0, len(t.Paragraphs)-len(r.pl.old)+len(r.newParas))
	paras = append(paras, t.Paragraphs[:r.pl.first]...)
	paras = append(paras, r.newParas...)
	paras = append(paras, t.Paragraphs[r.pl.first+len(r.pl.old):]...)
	t.Paragraphs = paras
}
