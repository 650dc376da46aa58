package interlinear

import (
	"github.com/google/uuid"

	"github.com/FocuswithJustin/JuniperText/core/segment"
)

// DefaultResolution returns the resolution a fresh token gets: a wordform for
// words, a punctuation form for punctuation and an object placeholder for
// anchors. The returned slot carries the token geometry but holds no
// reference yet.
func (r *Repository) DefaultResolution(tok segment.Token) Slot {
	var s Slot
	switch tok.Kind {
	case segment.TokenWord:
		s = WordformSlot(r.FindOrCreate(tok.Text, tok.WS))
	case segment.TokenPunctuation:
		s = PunctuationSlot(r.Punctuation(tok.Text))
	default:
		s = ObjectSlot(tok.Object)
	}
	s.Begin, s.End, s.Trailing = tok.Begin, tok.End, tok.Trailing
	return s
}

// BuildSegments creates segments for freshly parsed skeletons with default
// resolutions, retaining every word-level slot.
func (r *Repository) BuildSegments(sks []segment.Skeleton) []*Segment {
	segs := make([]*Segment, 0, len(sks))
	for _, sk := range sks {
		s := &Segment{
			GUID:    uuid.New(),
			Begin:   sk.Begin,
			End:     sk.End,
			IsLabel: sk.IsLabel,
			Leading: sk.Leading,
		}
		for _, tok := range sk.Tokens {
			sl := r.DefaultResolution(tok)
			r.RetainSlot(sl)
			s.Analyses = append(s.Analyses, sl)
		}
		segs = append(segs, s)
	}
	return segs
}
