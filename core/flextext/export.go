package flextext

import (
	"bytes"
	"fmt"

	"github.com/FocuswithJustin/JuniperText/core/encoding"
	"github.com/FocuswithJustin/JuniperText/core/interlinear"
)

// Export writes texts as one .flextext document. Anchors have no FLEx
// representation and are left out.
func Export(texts ...*interlinear.Text) []byte {
	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n<document version=\"2\">\n")
	for _, t := range texts {
		writeText(&buf, t)
	}
	buf.WriteString("</document>\n")
	return buf.Bytes()
}

func writeText(buf *bytes.Buffer, t *interlinear.Text) {
	fmt.Fprintf(buf, "  <interlinear-text guid=\"%s\">\n", t.GUID)
	if t.Title != "" {
		lang := "und"
		if len(t.Paragraphs) > 0 && t.Paragraphs[0].Contents.Len() > 0 {
			lang = t.Paragraphs[0].Contents.WSAt(0)
		}
		writeItem(buf, 4, "title", lang, t.Title)
	}
	buf.WriteString("    <paragraphs>\n")
	for _, p := range t.Paragraphs {
		fmt.Fprintf(buf, "      <paragraph guid=\"%s\">\n", p.GUID)
		buf.WriteString("        <phrases>\n")
		for _, s := range p.Segments {
			writePhrase(buf, p, s)
		}
		buf.WriteString("        </phrases>\n")
		buf.WriteString("      </paragraph>\n")
	}
	buf.WriteString("    </paragraphs>\n")
	buf.WriteString("  </interlinear-text>\n")
}

func writePhrase(buf *bytes.Buffer, p *interlinear.Paragraph, s *interlinear.Segment) {
	text := p.Contents.Text()
	fmt.Fprintf(buf, "          <phrase guid=\"%s\">\n", s.GUID)
	buf.WriteString("            <words>\n")
	for _, sl := range s.Analyses {
		if sl.Kind == interlinear.SlotObject {
			continue
		}
		form := text[sl.Begin:sl.End]
		ws := p.Contents.WSAt(sl.Begin)
		if sl.Kind == interlinear.SlotPunctuation {
			buf.WriteString("              <word>\n")
			writeItem(buf, 16, "punct", ws, form)
			buf.WriteString("              </word>\n")
			continue
		}
		fmt.Fprintf(buf, "              <word guid=\"%s\">\n", sl.RootWordform().GUID)
		writeItem(buf, 16, "txt", ws, form)
		var analysis *interlinear.WordAnalysis
		switch sl.Kind {
		case interlinear.SlotGloss:
			writeMulti(buf, 16, "gls", sl.Gloss.Form)
			analysis = sl.Gloss.Owner
		case interlinear.SlotAnalysis:
			analysis = sl.Analysis
		}
		if analysis != nil && analysis.Category != "" {
			writeItem(buf, 16, "pos", "und", analysis.Category)
		}
		buf.WriteString("              </word>\n")
	}
	buf.WriteString("            </words>\n")
	writeMulti(buf, 12, "gls", s.FreeTranslation)
	writeMulti(buf, 12, "lit", s.LiteralTranslation)
	for _, n := range s.Notes {
		writeMulti(buf, 12, "note", n.Content)
	}
	buf.WriteString("          </phrase>\n")
}

func writeMulti(buf *bytes.Buffer, indent int, kind string, m interlinear.MultiString) {
	for _, ws := range m.WritingSystems() {
		writeItem(buf, indent, kind, ws, m[ws])
	}
}

func writeItem(buf *bytes.Buffer, indent int, kind, lang, text string) {
	fmt.Fprintf(buf, "%*s<item type=\"%s\" lang=\"%s\">%s</item>\n",
		indent, "", kind, encoding.EscapeXMLAttr(lang), encoding.EscapeXMLText(text))
}
