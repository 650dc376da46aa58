package interlinear

import (
	"fmt"

	"github.com/FocuswithJustin/JuniperText/core/errors"
)

// Validate checks the structural invariants of t and returns every
// violation found.
func Validate(t *Text) []error {
	var errs []error
	for i, p := range t.Paragraphs {
		errs = append(errs, validateParagraph(fmt.Sprintf("para[%d]", i), p)...)
	}
	for i, tag := range t.Tags {
		path := fmt.Sprintf("tag[%d]", i)
		if err := t.checkRange(tag.Begin, tag.End); err != nil {
			errs = append(errs, errors.NewValidation(path, err.Error()))
		}
	}
	for i, ch := range t.Charts {
		for j, r := range ch.Rows {
			for k, c := range r.Cells {
				path := fmt.Sprintf("chart[%d]/row[%d]/cell[%d]", i, j, k)
				if err := t.checkRange(c.Begin, c.End); err != nil {
					errs = append(errs, errors.NewValidation(path, err.Error()))
				}
				if k > 0 && r.Cells[k-1].End.Compare(c.Begin) >= 0 {
					errs = append(errs, errors.NewValidation(path, "overlaps or precedes the previous cell"))
				}
				if c.Column < 0 || (len(ch.Columns) > 0 && c.Column >= len(ch.Columns)) {
					errs = append(errs, errors.NewValidation(path, fmt.Sprintf("column %d out of range", c.Column)))
				}
			}
		}
	}
	return errs
}

func validateParagraph(path string, p *Paragraph) []error {
	if !p.ParseIsCurrent {
		return nil
	}
	var errs []error
	text := p.Contents.Text()
	if len(text) == 0 && len(p.Segments) > 0 {
		errs = append(errs, errors.NewValidation(path, "empty paragraph has segments"))
	}
	pos := 0
	for i, s := range p.Segments {
		spath := fmt.Sprintf("%s/seg[%d]", path, i)
		if s.Begin != pos {
			errs = append(errs, errors.NewValidation(spath,
				fmt.Sprintf("begins at %d, want %d", s.Begin, pos)))
		}
		if s.End < s.Begin || s.End > len(text) {
			errs = append(errs, errors.NewValidation(spath,
				fmt.Sprintf("bad extent [%d,%d)", s.Begin, s.End)))
			return errs
		}
		pos = s.End
		if got := s.Baseline(p.Contents); got != text[s.Begin:s.End] {
			errs = append(errs, errors.NewValidation(spath,
				fmt.Sprintf("slots reassemble to %q, want %q", got, text[s.Begin:s.End])))
		}
		if s.IsLabel && s.HasTranslationOrNotes() {
			errs = append(errs, errors.NewValidation(spath, "label segment carries translation or notes"))
		}
		for j, sl := range s.Analyses {
			if !slotResolved(sl) {
				errs = append(errs, errors.NewValidation(fmt.Sprintf("%s/slot[%d]", spath, j),
					fmt.Sprintf("unresolved %s slot", sl.Kind)))
			}
			if w := sl.RootWordform(); w != nil && w.deleted {
				errs = append(errs, errors.NewValidation(fmt.Sprintf("%s/slot[%d]", spath, j),
					fmt.Sprintf("refers to deleted wordform %q", w.Form)))
			}
		}
	}
	if pos != len(text) {
		errs = append(errs, errors.NewValidation(path,
			fmt.Sprintf("segments end at %d, text length %d", pos, len(text))))
	}
	return errs
}

func slotResolved(s Slot) bool {
	switch s.Kind {
	case SlotWordform:
		return s.Wordform != nil
	case SlotAnalysis:
		return s.Analysis != nil && s.Analysis.Owner != nil
	case SlotGloss:
		return s.Gloss != nil && s.Gloss.Owner != nil && s.Gloss.Owner.Owner != nil
	case SlotPunctuation:
		return s.Punctuation != nil
	case SlotObject:
		return true
	}
	return false
}

// ValidateCorpus validates every text and checks that each wordform holds
// at least as many references as there are slots resolving to it.
func ValidateCorpus(c *Corpus) []error {
	var errs []error
	counts := make(map[*Wordform]int)
	for i, t := range c.Texts {
		for _, err := range Validate(t) {
			errs = append(errs, errors.Wrapf(err, "text[%d]", i))
		}
		for _, p := range t.Paragraphs {
			for _, s := range p.Segments {
				for _, sl := range s.Analyses {
					if w := sl.RootWordform(); w != nil {
						counts[w]++
					}
				}
			}
		}
	}
	for w, n := range counts {
		if w.refs < n {
			errs = append(errs, errors.NewValidation("wordform "+w.Form,
				fmt.Sprintf("holds %d references, %d slots refer to it", w.refs, n)))
		}
	}
	return errs
}
