// Package wsys defines writing systems and their word-forming character sets.
package wsys

import (
	"sort"
	"unicode"
)

// WritingSystem describes how characters of one language/script are classified.
type WritingSystem struct {
	// ID is the writing system tag (e.g., "en", "grc", "qaa-x-kal").
	ID string `toml:"id"`

	// Name is a human-readable name (optional).
	Name string `toml:"name"`

	// WordForming lists extra characters that form words in this writing
	// system although Unicode classifies them as punctuation (e.g., "'-").
	WordForming string `toml:"word_forming"`

	// NonWordForming lists letters or digits that must be treated as
	// punctuation in this writing system.
	NonWordForming string `toml:"non_word_forming"`

	extra   map[rune]bool
	exclude map[rune]bool
}

// New creates a writing system with default Unicode classification.
func New(id string) *WritingSystem {
	return &WritingSystem{ID: id}
}

func (ws *WritingSystem) compile() {
	ws.extra = make(map[rune]bool)
	for _, r := range ws.WordForming {
		ws.extra[r] = true
	}
	ws.exclude = make(map[rune]bool)
	for _, r := range ws.NonWordForming {
		ws.exclude[r] = true
	}
}

// IsWordForming reports whether r forms part of a word. Letters, marks and
// digits are word-forming unless excluded; listed extras are added.
func (ws *WritingSystem) IsWordForming(r rune) bool {
	if ws.extra == nil {
		ws.compile()
	}
	if ws.exclude[r] {
		return false
	}
	if ws.extra[r] {
		return true
	}
	return unicode.IsLetter(r) || unicode.IsMark(r) || unicode.IsDigit(r)
}

// Registry resolves writing system ids. Unknown ids resolve to a default
// writing system with plain Unicode classification.
type Registry struct {
	systems  map[string]*WritingSystem
	fallback *WritingSystem
}

// NewRegistry creates a registry holding the given writing systems.
func NewRegistry(systems ...*WritingSystem) *Registry {
	r := &Registry{
		systems:  make(map[string]*WritingSystem),
		fallback: New(""),
	}
	for _, ws := range systems {
		r.Add(ws)
	}
	return r
}

// Add registers ws, replacing any writing system with the same id.
func (r *Registry) Add(ws *WritingSystem) {
	ws.compile()
	r.systems[ws.ID] = ws
}

// Get returns the writing system for id, or the default one.
func (r *Registry) Get(id string) *WritingSystem {
	if ws, ok := r.systems[id]; ok {
		return ws
	}
	return r.fallback
}

// Has reports whether id was registered explicitly.
func (r *Registry) Has(id string) bool {
	_, ok := r.systems[id]
	return ok
}

// IDs returns the registered ids in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.systems))
	for id := range r.systems {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
