package interlinear

import (
	"encoding/hex"
	"strconv"

	"github.com/zeebo/blake3"
)

// HashBytes computes the BLAKE3 hash of bytes and returns it as a hex string.
func HashBytes(data []byte) string {
	h := blake3.Sum256(data)
	return hex.EncodeToString(h[:])
}

// HashString computes the BLAKE3 hash of a string and returns it as a hex string.
func HashString(s string) string {
	return HashBytes([]byte(s))
}

// FingerprintParagraph hashes a paragraph's text and segment boundaries.
// Two paragraphs with equal fingerprints segment identically.
func FingerprintParagraph(p *Paragraph) string {
	h := blake3.New()
	h.WriteString(p.Contents.Text())
	for _, s := range p.Segments {
		h.WriteString("\x00")
		h.WriteString(strconv.Itoa(s.Begin))
		h.WriteString(":")
		h.WriteString(strconv.Itoa(s.End))
		if s.IsLabel {
			h.WriteString("L")
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// FingerprintSegment hashes a segment's baseline and annotations: its slot
// resolutions, translations and notes.
func FingerprintSegment(p *Paragraph, s *Segment) string {
	h := blake3.New()
	h.WriteString(s.Baseline(p.Contents))
	for _, sl := range s.Analyses {
		h.WriteString("\x00")
		h.WriteString(sl.Kind.String())
		h.WriteString(slotIdentity(sl))
	}
	writeMulti(h, "free", s.FreeTranslation)
	writeMulti(h, "lit", s.LiteralTranslation)
	for _, n := range s.Notes {
		writeMulti(h, "note", n.Content)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func slotIdentity(s Slot) string {
	switch s.Kind {
	case SlotWordform:
		if s.Wordform != nil {
			return s.Wordform.GUID.String()
		}
	case SlotAnalysis:
		if s.Analysis != nil {
			return s.Analysis.GUID.String()
		}
	case SlotGloss:
		if s.Gloss != nil {
			return s.Gloss.GUID.String()
		}
	case SlotPunctuation:
		if s.Punctuation != nil {
			return s.Punctuation.GUID.String()
		}
	case SlotObject:
		if s.Object != nil {
			return s.Object.ID.String()
		}
	}
	return ""
}

func writeMulti(h *blake3.Hasher, label string, m MultiString) {
	for _, ws := range m.WritingSystems() {
		h.WriteString("\x00" + label + ":" + ws + "=")
		h.WriteString(m[ws])
	}
}
