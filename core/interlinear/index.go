package interlinear

import "sort"

// SlotIndex converts between Points and text-global slot indices.
type SlotIndex struct {
	// starts[p][s] is the global index of the first slot of segment s of
	// paragraph p.
	starts [][]int
	counts [][]int
	total  int
}

// NewSlotIndex indexes the current slots of t.
func NewSlotIndex(t *Text) *SlotIndex {
	counts := make([][]int, len(t.Paragraphs))
	for i, p := range t.Paragraphs {
		counts[i] = make([]int, len(p.Segments))
		for j, s := range p.Segments {
			counts[i][j] = len(s.Analyses)
		}
	}
	return NewSlotIndexFromCounts(counts)
}

// NewSlotIndexFromCounts builds an index from per-segment slot counts.
func NewSlotIndexFromCounts(counts [][]int) *SlotIndex {
	idx := &SlotIndex{counts: counts, starts: make([][]int, len(counts))}
	g := 0
	for i, segs := range counts {
		idx.starts[i] = make([]int, len(segs))
		for j, n := range segs {
			idx.starts[i][j] = g
			g += n
		}
	}
	idx.total = g
	return idx
}

// Len returns the number of slots in the text.
func (x *SlotIndex) Len() int {
	return x.total
}

// ParagraphStart returns the global index of the first slot of paragraph p,
// which equals Len() when p is past the end.
func (x *SlotIndex) ParagraphStart(p int) int {
	for ; p < len(x.starts); p++ {
		if len(x.starts[p]) > 0 {
			return x.starts[p][0]
		}
	}
	return x.total
}

// Global returns the global index of pt.
func (x *SlotIndex) Global(pt Point) (int, bool) {
	if pt.Para < 0 || pt.Para >= len(x.counts) {
		return 0, false
	}
	if pt.Seg < 0 || pt.Seg >= len(x.counts[pt.Para]) {
		return 0, false
	}
	if pt.Slot < 0 || pt.Slot >= x.counts[pt.Para][pt.Seg] {
		return 0, false
	}
	return x.starts[pt.Para][pt.Seg] + pt.Slot, true
}

// Point returns the point of global index g.
func (x *SlotIndex) Point(g int) (Point, bool) {
	if g < 0 || g >= x.total {
		return Point{}, false
	}
	p := sort.Search(len(x.starts), func(i int) bool {
		return x.ParagraphStart(i+1) > g
	})
	segs := x.starts[p]
	s := sort.Search(len(segs), func(j int) bool {
		return segs[j]+x.counts[p][j] > g
	})
	return Point{Para: p, Seg: s, Slot: g - segs[s]}, true
}
