package journal

import (
	"bytes"
	"io"

	"github.com/google/uuid"
	"github.com/ulikunitz/xz"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/FocuswithJustin/JuniperText/core/interlinear"
	"github.com/FocuswithJustin/JuniperText/core/richtext"
)

// Snapshot is the stored state of one paragraph after an edit.
type Snapshot struct {
	Paragraph   uuid.UUID         `msgpack:"paragraph"`
	Text        string            `msgpack:"text"`
	Runs        []RunSnapshot     `msgpack:"runs"`
	Segments    []SegmentSnapshot `msgpack:"segments"`
	Fingerprint string            `msgpack:"fingerprint"`
}

// RunSnapshot is one property run of the paragraph text.
type RunSnapshot struct {
	Start      int    `msgpack:"start"`
	End        int    `msgpack:"end"`
	WS         string `msgpack:"ws"`
	Style      string `msgpack:"style,omitempty"`
	Object     string `msgpack:"object,omitempty"`
	ObjectKind string `msgpack:"object_kind,omitempty"`
}

// SegmentSnapshot is one segment with its translations and notes.
type SegmentSnapshot struct {
	GUID    uuid.UUID           `msgpack:"guid"`
	Begin   int                 `msgpack:"begin"`
	End     int                 `msgpack:"end"`
	IsLabel bool                `msgpack:"label,omitempty"`
	Free    map[string]string   `msgpack:"free,omitempty"`
	Literal map[string]string   `msgpack:"literal,omitempty"`
	Notes   []map[string]string `msgpack:"notes,omitempty"`
}

// NewSnapshot captures p.
func NewSnapshot(p *interlinear.Paragraph) *Snapshot {
	s := &Snapshot{
		Paragraph:   p.GUID,
		Text:        p.Contents.Text(),
		Fingerprint: interlinear.FingerprintParagraph(p),
	}
	for _, r := range p.Contents.Runs() {
		rs := RunSnapshot{Start: r.Start, End: r.End, WS: r.Props.WS, Style: r.Props.Style}
		if o := r.Props.Object; o != nil {
			rs.Object, rs.ObjectKind = o.ID.String(), string(o.Kind)
		}
		s.Runs = append(s.Runs, rs)
	}
	for _, seg := range p.Segments {
		ss := SegmentSnapshot{
			GUID:    seg.GUID,
			Begin:   seg.Begin,
			End:     seg.End,
			IsLabel: seg.IsLabel,
			Free:    seg.FreeTranslation.Clone(),
			Literal: seg.LiteralTranslation.Clone(),
		}
		for _, n := range seg.Notes {
			ss.Notes = append(ss.Notes, n.Content.Clone())
		}
		s.Segments = append(s.Segments, ss)
	}
	return s
}

// Contents rebuilds the annotated paragraph text. Embedded objects are
// recreated with their stored identity.
func (s *Snapshot) Contents() richtext.String {
	var b richtext.Builder
	for _, r := range s.Runs {
		if r.Object != "" {
			obj := &richtext.Object{ID: uuid.MustParse(r.Object), Kind: richtext.ObjectKind(r.ObjectKind)}
			b.AppendObject(obj, r.WS)
			continue
		}
		b.Append(s.Text[r.Start:r.End], r.WS, r.Style)
	}
	return b.String()
}

func encodeSnapshot(s *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		return nil, err
	}
	if err := msgpack.NewEncoder(w).Encode(s); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeSnapshot(data []byte) (*Snapshot, error) {
	r, err := xz.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var s Snapshot
	if err := msgpack.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
