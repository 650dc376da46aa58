// Package segment splits paragraph text into segments and tokens.
//
// Classification works per character, using the character's writing system
// and style. Segments are sentence-like spans or label spans holding only
// verse and chapter numbers. Within a segment, tokens are maximal
// word-forming runs, maximal punctuation runs, and single embedded-object
// anchors. Whitespace is recorded as spacing and never becomes a token, so
// Reassemble(Parse(s)) == s.Text() for every input.
//
// All offsets are byte offsets into the paragraph text.
package segment
