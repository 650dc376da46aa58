package flextext

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/FocuswithJustin/JuniperText/core/adjust"
	"github.com/FocuswithJustin/JuniperText/core/errors"
	"github.com/FocuswithJustin/JuniperText/core/interlinear"
	"github.com/FocuswithJustin/JuniperText/core/richtext"
	"github.com/FocuswithJustin/JuniperText/core/xml"
)

// Options configures Import.
type Options struct {
	// DefaultWS is used for items without a lang attribute.
	DefaultWS string

	// NFD normalises item text before it is placed in paragraphs.
	NFD bool
}

type item struct {
	kind, lang, text string
}

type word struct {
	guid    string
	text    item
	punct   bool
	glosses []item
	pos     string
}

type phrase struct {
	guid  string
	words []word
	items []item
}

// Import adds every interlinear text of data to the adjuster's corpus. The
// report lists phrase annotation that could not be placed.
func Import(data []byte, adj *adjust.Adjuster, opts Options) ([]*interlinear.Text, *interlinear.LossReport, error) {
	if opts.DefaultWS == "" {
		opts.DefaultWS = "und"
	}
	if r := xml.Validate(data); !r.Valid {
		return nil, nil, errors.NewParse("flextext", "", fmt.Sprintf("line %d: %s", r.Errors[0].Line, r.Errors[0].Message))
	}
	doc, err := xml.Parse(data)
	if err != nil {
		return nil, nil, errors.NewParse("flextext", "", err.Error())
	}
	nodes, err := doc.XPath("//interlinear-text")
	if err != nil {
		return nil, nil, err
	}
	if len(nodes) == 0 {
		return nil, nil, errors.NewParse("flextext", "", "no interlinear-text element")
	}

	im := &importer{adj: adj, opts: opts, losses: &interlinear.LossReport{Operation: "flextext import"}}
	var texts []*interlinear.Text
	for _, n := range nodes {
		t, err := im.text(n)
		if err != nil {
			return texts, im.losses, err
		}
		texts = append(texts, t)
	}
	return texts, im.losses, nil
}

type importer struct {
	adj    *adjust.Adjuster
	opts   Options
	losses *interlinear.LossReport
}

func (im *importer) items(n *xml.Node, expr string) []item {
	nodes, _ := n.XPath(expr)
	out := make([]item, 0, len(nodes))
	for _, it := range nodes {
		lang := it.Attr("lang")
		if lang == "" {
			lang = im.opts.DefaultWS
		}
		text := it.Text()
		if im.opts.NFD {
			text = interlinear.NormalizeForm(text)
		}
		out = append(out, item{kind: it.Attr("type"), lang: lang, text: text})
	}
	return out
}

func (im *importer) text(n *xml.Node) (*interlinear.Text, error) {
	var title string
	if titles := im.items(n, "item[@type='title']"); len(titles) > 0 {
		title = titles[0].text
	}
	t := im.adj.Corpus().NewText(title)
	setGUID(&t.GUID, n.Attr("guid"))

	paras, err := n.XPath("paragraphs/paragraph")
	if err != nil {
		return nil, err
	}
	for i, pn := range paras {
		if err := im.paragraph(t, i, pn); err != nil {
			return nil, errors.Wrapf(err, "paragraph %d", i)
		}
	}
	return t, nil
}

func (im *importer) paragraph(t *interlinear.Text, index int, pn *xml.Node) error {
	phraseNodes, err := pn.XPath("phrases/phrase")
	if err != nil {
		return err
	}
	phrases := make([]phrase, len(phraseNodes))
	for i, ph := range phraseNodes {
		phrases[i] = phrase{guid: ph.Attr("guid"), items: im.items(ph, "item")}
		wordNodes, _ := ph.XPath("words/word")
		for _, wn := range wordNodes {
			w := word{guid: wn.Attr("guid")}
			for _, it := range im.items(wn, "item") {
				switch it.kind {
				case "txt":
					w.text = it
				case "punct":
					w.text, w.punct = it, true
				case "gls":
					w.glosses = append(w.glosses, it)
				case "pos":
					w.pos = it.text
				}
			}
			if w.text.text != "" {
				phrases[i].words = append(phrases[i].words, w)
			}
		}
	}

	p := t.AddParagraph(baseline(phrases))
	setGUID(&p.GUID, pn.Attr("guid"))
	if _, err := im.adj.Parse(p); err != nil {
		return err
	}
	im.glosses(index, p, phrases)
	im.translations(index, p, phrases)
	return nil
}

// baseline rebuilds paragraph text from the word and punctuation items.
func baseline(phrases []phrase) richtext.String {
	var b richtext.Builder
	afterOpening := true
	for _, ph := range phrases {
		for _, w := range ph.words {
			r, _ := utf8.DecodeRuneInString(w.text.text)
			opening := w.punct && (unicode.Is(unicode.Ps, r) || unicode.Is(unicode.Pi, r))
			if !afterOpening && (!w.punct || opening) {
				b.Append(" ", w.text.lang, "")
			}
			b.Append(w.text.text, w.text.lang, "")
			afterOpening = opening
		}
	}
	return b.String()
}

type slotRef struct {
	seg *interlinear.Segment
	i   int
}

// glosses resolves parsed word slots to the glosses of their items. Words
// are paired with slots in order and must agree in surface form.
func (im *importer) glosses(index int, p *interlinear.Paragraph, phrases []phrase) {
	var slots []slotRef
	for _, s := range p.Segments {
		for i, sl := range s.Analyses {
			if sl.Kind != interlinear.SlotObject {
				slots = append(slots, slotRef{s, i})
			}
		}
	}
	var words []word
	for _, ph := range phrases {
		words = append(words, ph.words...)
	}
	if len(words) != len(slots) {
		im.losses.AddWarning(fmt.Sprintf("para[%d]: %d words but %d parsed slots; word glosses skipped", index, len(words), len(slots)))
		return
	}

	repo := im.adj.Corpus().Repo
	text := p.Contents.Text()
	for k, w := range words {
		ref := slots[k]
		sl := ref.seg.Analyses[ref.i]
		if len(w.glosses) == 0 || sl.Kind != interlinear.SlotWordform {
			continue
		}
		if interlinear.NormalizeForm(text[sl.Begin:sl.End]) != interlinear.NormalizeForm(w.text.text) {
			im.losses.AddWarning(fmt.Sprintf("para[%d]: word %q does not match parsed %q", index, w.text.text, text[sl.Begin:sl.End]))
			continue
		}
		g := findGloss(sl.Wordform, w)
		if g == nil {
			a := repo.AddAnalysis(sl.Wordform, w.pos)
			g = repo.AddGloss(a, w.glosses[0].lang, w.glosses[0].text)
			for _, extra := range w.glosses[1:] {
				g.Form[extra.lang] = extra.text
			}
		}
		repo.SetSlot(ref.seg, ref.i, interlinear.GlossSlot(g))
	}
}

// findGloss returns an existing gloss of wf carrying the same alternatives
// and category as w.
func findGloss(wf *interlinear.Wordform, w word) *interlinear.WordGloss {
	want := interlinear.MultiString{}
	for _, g := range w.glosses {
		want[g.lang] = g.text
	}
	for _, a := range wf.Analyses {
		if a.Category != w.pos {
			continue
		}
		for _, g := range a.Glosses {
			if g.Form.Equal(want) {
				return g
			}
		}
	}
	return nil
}

// translations places phrase-level items on segments when phrases and
// segments correspond one to one.
func (im *importer) translations(index int, p *interlinear.Paragraph, phrases []phrase) {
	aligned := len(phrases) == len(p.Segments)
	if !aligned {
		im.losses.AddWarning(fmt.Sprintf("para[%d]: %d phrases but %d segments", index, len(phrases), len(p.Segments)))
	}
	for i, ph := range phrases {
		path := fmt.Sprintf("para[%d]/phrase[%d]", index, i)
		var seg *interlinear.Segment
		if aligned {
			seg = p.Segments[i]
			setGUID(&seg.GUID, ph.guid)
		}
		for _, it := range ph.items {
			elem := ""
			switch it.kind {
			case "gls":
				elem = interlinear.ElementFreeTranslation
			case "lit":
				elem = interlinear.ElementLiteralTranslation
			case "note":
				elem = interlinear.ElementNote
			default:
				continue
			}
			switch {
			case seg == nil:
				im.losses.AddLostValue(path, elem, "phrase does not match a segment", it.text)
				continue
			case seg.IsLabel:
				im.losses.AddLostValue(path, elem, "phrase is a label", it.text)
				continue
			}
			switch it.kind {
			case "gls":
				if seg.FreeTranslation == nil {
					seg.FreeTranslation = interlinear.MultiString{}
				}
				seg.FreeTranslation[it.lang] = it.text
			case "lit":
				if seg.LiteralTranslation == nil {
					seg.LiteralTranslation = interlinear.MultiString{}
				}
				seg.LiteralTranslation[it.lang] = it.text
			case "note":
				seg.Notes = append(seg.Notes, interlinear.NewNote(it.lang, it.text))
			}
		}
	}
}

func setGUID(dst *uuid.UUID, s string) {
	if id, err := uuid.Parse(s); err == nil {
		*dst = id
	}
}
