// Package flextext reads and writes FieldWorks interlinear text documents.
//
// A .flextext file stores a paragraph as phrases of words. Import rebuilds
// the paragraph text from the word and punctuation items, parses it, and
// carries over word glosses and phrase translations and notes where the
// parse lines up with the document. Export writes one phrase per segment.
// Spacing is not stored in the format: words are separated by single spaces
// and punctuation attaches to its neighbour.
package flextext
