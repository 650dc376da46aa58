// Package encoding provides shared text escaping utilities.
package encoding

import (
	"strings"
)

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", "\r", "&#xD;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", "\"", "&quot;",
		"\r", "&#xD;", "\n", "&#xA;", "\t", "&#x9;")
)

// EscapeXMLText escapes text content. Characters that XML 1.0 cannot carry
// are dropped.
func EscapeXMLText(s string) string {
	return textEscaper.Replace(stripInvalid(s))
}

// EscapeXMLAttr escapes an attribute value. Whitespace other than spaces is
// written as character references so that it survives attribute
// normalisation.
func EscapeXMLAttr(s string) string {
	return attrEscaper.Replace(stripInvalid(s))
}

func stripInvalid(s string) string {
	if strings.IndexFunc(s, invalidXMLChar) < 0 {
		return s
	}
	return strings.Map(func(r rune) rune {
		if invalidXMLChar(r) {
			return -1
		}
		return r
	}, s)
}

func invalidXMLChar(r rune) bool {
	switch {
	case r == '\t' || r == '\n' || r == '\r':
		return false
	case r < 0x20:
		return true
	case r >= 0xD800 && r <= 0xDFFF:
		return true
	case r == 0xFFFE || r == 0xFFFF:
		return true
	}
	return false
}
