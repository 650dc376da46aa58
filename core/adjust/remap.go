package adjust

import (
	"fmt"

	"github.com/FocuswithJustin/JuniperText/core/interlinear"
)

// ChartPolicy decides how chart rows are repaired after an edit.
type ChartPolicy int

const (
	// ChartLeaveUnassigned leaves new slots between two cells outside any
	// cell and trims a cell that overlaps the one before it.
	ChartLeaveUnassigned ChartPolicy = iota

	// ChartExpandFirstCell extends a cell over new slots that separate it
	// from the next cell and merges overlapping cells into the first one.
	ChartExpandFirstCell
)

func (p ChartPolicy) String() string {
	if p == ChartExpandFirstCell {
		return "expand-first"
	}
	return "leave-unassigned"
}

// ParseChartPolicy parses a policy name as written by String.
func ParseChartPolicy(s string) (ChartPolicy, bool) {
	switch s {
	case "", "leave-unassigned":
		return ChartLeaveUnassigned, true
	case "expand-first":
		return ChartExpandFirstCell, true
	}
	return ChartLeaveUnassigned, false
}

// mapPoint maps an old text-global slot index to a new one. Destroyed slots
// snap forward for begin points and backward for end points.
func (r *reconciler) mapPoint(g int, begin bool) int {
	gEnd := r.gStart + len(r.old)
	switch {
	case g < r.gStart:
		return g
	case g >= gEnd:
		return g + len(r.nu) - len(r.old)
	}
	o := g - r.gStart
	if n := r.match[o]; n >= 0 {
		return r.gStart + n
	}
	if begin {
		for q := o - 1; q >= 0; q-- {
			if n := r.match[q]; n >= 0 {
				return r.gStart + n + 1
			}
		}
		return r.gStart
	}
	for q := o + 1; q < len(r.old); q++ {
		if n := r.match[q]; n >= 0 {
			return r.gStart + n - 1
		}
	}
	return r.gStart + len(r.nu) - 1
}

// mapRange maps a closed range. ok is false when the range collapsed.
func (r *reconciler) mapRange(begin, end interlinear.Point, total int) (int, int, bool) {
	gb, ok1 := r.oldIdx.Global(begin)
	ge, ok2 := r.oldIdx.Global(end)
	if !ok1 || !ok2 {
		return 0, 0, false
	}
	nb, ne := r.mapPoint(gb, true), r.mapPoint(ge, false)
	if nb > ne || nb < 0 || ne >= total {
		return 0, 0, false
	}
	return nb, ne, true
}

// inserted reports whether new global index g holds a slot the edit created.
func (r *reconciler) inserted(g int) bool {
	n := g - r.gStart
	return n >= 0 && n < len(r.nu) && r.rev[n] < 0
}

type cellRange struct {
	cell       *interlinear.ChartCell
	begin, end int
}

func (r *reconciler) remapRanges() {
	t := r.text
	newIdx := interlinear.NewSlotIndex(t)
	total := newIdx.Len()
	point := func(g int) interlinear.Point {
		pt, _ := newIdx.Point(g)
		return pt
	}

	tags := make([]*interlinear.TextTag, 0, len(t.Tags))
	for i, tag := range t.Tags {
		b, e, ok := r.mapRange(tag.Begin, tag.End, total)
		if !ok {
			r.losses.AddLostValue(fmt.Sprintf("tag[%d]", i), interlinear.ElementTextTag, "tagged slots were removed", tag.Name)
			continue
		}
		tag.Begin, tag.End = point(b), point(e)
		tags = append(tags, tag)
	}
	t.Tags = tags

	for ci, ch := range t.Charts {
		for ri, row := range ch.Rows {
			path := func(k int) string { return fmt.Sprintf("chart[%d]/row[%d]/cell[%d]", ci, ri, k) }
			var kept []cellRange
			for k, c := range row.Cells {
				b, e, ok := r.mapRange(c.Begin, c.End, total)
				if !ok {
					r.losses.AddLostValue(path(k), interlinear.ElementChartCell, "cell slots were removed", c.Column)
					continue
				}
				cr := cellRange{cell: c, begin: b, end: e}
				if n := len(kept); n > 0 && cr.begin <= kept[n-1].end {
					prev := &kept[n-1]
					if r.a.policy == ChartExpandFirstCell {
						prev.end = max(prev.end, cr.end)
						r.losses.AddLostValue(path(k), interlinear.ElementChartCell, "merged into the preceding cell", c.Column)
						continue
					}
					cr.begin = prev.end + 1
					if cr.begin > cr.end {
						r.losses.AddLostValue(path(k), interlinear.ElementChartCell, "overlapped the preceding cell", c.Column)
						continue
					}
				}
				kept = append(kept, cr)
			}
			if r.a.policy == ChartExpandFirstCell {
				r.expandOverInserted(kept)
			}
			cells := make([]*interlinear.ChartCell, len(kept))
			for k, cr := range kept {
				cr.cell.Begin, cr.cell.End = point(cr.begin), point(cr.end)
				cells[k] = cr.cell
			}
			row.Cells = cells
		}
	}
}

// expandOverInserted extends each cell over a run of newly inserted slots
// that is all that separates it from the next cell of its row.
func (r *reconciler) expandOverInserted(cells []cellRange) {
	for k := 0; k+1 < len(cells); k++ {
		from, to := cells[k].end+1, cells[k+1].begin
		if from >= to {
			continue
		}
		all := true
		for g := from; g < to; g++ {
			if !r.inserted(g) {
				all = false
				break
			}
		}
		if all {
			cells[k].end = to - 1
		}
	}
}
