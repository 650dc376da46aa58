package segment

import "github.com/FocuswithJustin/JuniperText/core/richtext"

// TokenKind distinguishes word, punctuation and anchor tokens.
type TokenKind int

// Token kinds.
const (
	TokenWord TokenKind = iota
	TokenPunctuation
	TokenAnchor
)

func (k TokenKind) String() string {
	switch k {
	case TokenWord:
		return "word"
	case TokenPunctuation:
		return "punct"
	case TokenAnchor:
		return "anchor"
	default:
		return "unknown"
	}
}

// Token is one analysis position within a segment.
type Token struct {
	Kind  TokenKind `json:"kind"`
	Begin int       `json:"begin"`
	End   int       `json:"end"`
	Text  string    `json:"text"`
	// WS is the writing system of the token's first character.
	WS     string           `json:"ws"`
	Object *richtext.Object `json:"-"`
	// Trailing is the spacing between this token and the next one (or the
	// end of the segment).
	Trailing string `json:"trailing,omitempty"`
}

// Skeleton is an unpopulated segment: its span and its tokens.
type Skeleton struct {
	Span
	// Leading is the spacing before the first token.
	Leading string  `json:"leading,omitempty"`
	Tokens  []Token `json:"tokens"`
}

// Tokenizer splits a segment into tokens.
type Tokenizer struct {
	cls *Classifier
}

// NewTokenizer creates a tokenizer using cls.
func NewTokenizer(cls *Classifier) *Tokenizer {
	return &Tokenizer{cls: cls}
}

// Tokenize returns the tokens of span sp within s.
func (tk *Tokenizer) Tokenize(s richtext.String, sp Span) Skeleton {
	chars := tk.cls.Classify(s)
	lo, hi := charRange(chars, sp)
	return tokenize(s.Text(), chars[lo:hi], sp)
}

// charRange returns the index range of chars inside sp.
func charRange(chars []Char, sp Span) (int, int) {
	lo := 0
	for lo < len(chars) && chars[lo].Offset < sp.Begin {
		lo++
	}
	hi := lo
	for hi < len(chars) && chars[hi].Offset < sp.End {
		hi++
	}
	return lo, hi
}

func tokenize(text string, chars []Char, sp Span) Skeleton {
	sk := Skeleton{Span: sp}
	var toks []Token

	for i := 0; i < len(chars); {
		c := chars[i]
		switch c.Class {
		case ClassWhitespace, ClassHardBreak:
			i++
		case ClassAnchor:
			toks = append(toks, Token{
				Kind:   TokenAnchor,
				Begin:  c.Offset,
				End:    c.End(),
				Text:   text[c.Offset:c.End()],
				WS:     c.WS,
				Object: c.Object,
			})
			i++
		default:
			kind := TokenWord
			if c.Class == ClassPunctuation {
				kind = TokenPunctuation
			}
			j := i + 1
			for j < len(chars) && chars[j].Class == c.Class {
				j++
			}
			end := chars[j-1].End()
			toks = append(toks, Token{
				Kind:  kind,
				Begin: c.Offset,
				End:   end,
				Text:  text[c.Offset:end],
				WS:    c.WS,
			})
			i = j
		}
	}

	if len(toks) == 0 {
		sk.Leading = text[sp.Begin:sp.End]
		return sk
	}
	sk.Leading = text[sp.Begin:toks[0].Begin]
	for k := range toks {
		next := sp.End
		if k+1 < len(toks) {
			next = toks[k+1].Begin
		}
		toks[k].Trailing = text[toks[k].End:next]
	}
	sk.Tokens = toks
	return sk
}
