package interlinear

import (
	"sort"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

type formKey struct {
	form string
	ws   string
}

// Repository interns wordforms and punctuation forms and counts the
// references held on each wordform. It holds no lock; callers serialize
// access through their transaction scope.
type Repository struct {
	wordforms map[formKey]*Wordform
	punct     map[string]*PunctuationForm

	// frames are the open checkpoints, innermost last.
	frames []*undoFrame
}

// NewRepository creates an empty repository.
func NewRepository() *Repository {
	return &Repository{
		wordforms: make(map[formKey]*Wordform),
		punct:     make(map[string]*PunctuationForm),
	}
}

// NormalizeForm returns the canonical (NFD) key form of s.
func NormalizeForm(s string) string {
	return norm.NFD.String(s)
}

// FindOrCreate returns the wordform for (form, ws), creating it if needed.
// A new wordform starts with no references.
func (r *Repository) FindOrCreate(form, ws string) *Wordform {
	key := formKey{NormalizeForm(form), ws}
	if w, ok := r.wordforms[key]; ok {
		return w
	}
	w := &Wordform{GUID: uuid.New(), Form: key.form, WS: ws}
	r.touch(w)
	r.wordforms[key] = w
	return w
}

// Find returns the wordform for (form, ws), or nil.
func (r *Repository) Find(form, ws string) *Wordform {
	return r.wordforms[formKey{NormalizeForm(form), ws}]
}

// Punctuation returns the interned punctuation form for form.
func (r *Repository) Punctuation(form string) *PunctuationForm {
	key := NormalizeForm(form)
	if p, ok := r.punct[key]; ok {
		return p
	}
	p := &PunctuationForm{GUID: uuid.New(), Form: key}
	for _, f := range r.frames {
		f.punct = append(f.punct, key)
	}
	r.punct[key] = p
	return p
}

// AddAnalysis creates an analysis owned by w.
func (r *Repository) AddAnalysis(w *Wordform, category string) *WordAnalysis {
	a := &WordAnalysis{GUID: uuid.New(), Owner: w, Category: category}
	r.touch(w)
	w.Analyses = append(w.Analyses, a)
	return a
}

// AddGloss creates a gloss owned by a.
func (r *Repository) AddGloss(a *WordAnalysis, ws, text string) *WordGloss {
	g := &WordGloss{GUID: uuid.New(), Owner: a, Form: MultiString{ws: text}}
	for _, f := range r.frames {
		if _, ok := f.glosses[a]; !ok {
			f.glosses[a] = a.Glosses
		}
	}
	a.Glosses = append(a.Glosses, g)
	return g
}

// Retain adds one reference to w.
func (r *Repository) Retain(w *Wordform) {
	if w != nil {
		r.touch(w)
		w.refs++
	}
}

// Release drops one reference from w. It never deletes; deletion happens in
// CleanupOrphans or RemoveFocus.
func (r *Repository) Release(w *Wordform) {
	if w != nil && w.refs > 0 {
		r.touch(w)
		w.refs--
	}
}

// RetainSlot adds the reference a word-level slot holds.
func (r *Repository) RetainSlot(s Slot) {
	r.Retain(s.RootWordform())
}

// ReleaseSlot drops the reference a word-level slot holds.
func (r *Repository) ReleaseSlot(s Slot) {
	r.Release(s.RootWordform())
}

// SetSlot replaces the resolution of slot i of seg, keeping the slot's
// geometry and moving the reference from the old wordform to the new one.
func (r *Repository) SetSlot(seg *Segment, i int, res Slot) {
	old := seg.Analyses[i]
	res.Begin, res.End, res.Trailing = old.Begin, old.End, old.Trailing
	r.RetainSlot(res)
	r.ReleaseSlot(old)
	seg.Analyses[i] = res
}

// OccurrenceCount returns the number of references held on w.
func (r *Repository) OccurrenceCount(w *Wordform) int {
	return w.refs
}

// AddFocus takes a focus lock on w. Each holder releases its own lock.
func (r *Repository) AddFocus(w *Wordform) {
	r.touch(w)
	w.focus++
}

// RemoveFocus releases one focus lock on w and reports whether w was
// deleted as a result.
func (r *Repository) RemoveFocus(w *Wordform) bool {
	if w.focus > 0 {
		r.touch(w)
		w.focus--
	}
	if w.focus == 0 && r.IsOrphan(w) {
		r.delete(w)
		return true
	}
	return false
}

// FocusCount returns the number of focus locks held on w.
func (r *Repository) FocusCount(w *Wordform) int {
	return w.focus
}

// SetSpelling marks w's spelling status.
func (r *Repository) SetSpelling(w *Wordform, status SpellingStatus) {
	r.touch(w)
	w.Spelling = status
}

// Wordforms returns all live wordforms ordered by writing system and form.
func (r *Repository) Wordforms() []*Wordform {
	out := make([]*Wordform, 0, len(r.wordforms))
	for _, w := range r.wordforms {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].WS != out[j].WS {
			return out[i].WS < out[j].WS
		}
		return out[i].Form < out[j].Form
	})
	return out
}

// Contains reports whether w is live in the repository.
func (r *Repository) Contains(w *Wordform) bool {
	return r.wordforms[formKey{w.Form, w.WS}] == w
}

func (r *Repository) delete(w *Wordform) {
	r.touch(w)
	key := formKey{w.Form, w.WS}
	if r.wordforms[key] == w {
		delete(r.wordforms, key)
	}
	w.deleted = true
}

// undoFrame holds the state each wordform and analysis had when first
// changed after a checkpoint, so restoring costs only what the run touched.
type undoFrame struct {
	wordforms map[*Wordform]savedWordform
	glosses   map[*WordAnalysis][]*WordGloss
	punct     []string
}

type savedWordform struct {
	val  Wordform
	live bool
}

// touch records w in every open frame that has not seen it yet. It must run
// before w changes.
func (r *Repository) touch(w *Wordform) {
	for _, f := range r.frames {
		if _, ok := f.wordforms[w]; !ok {
			f.wordforms[w] = savedWordform{val: *w, live: r.Contains(w)}
		}
	}
}

// checkpoint opens an undo frame. restore undoes the repository changes made
// since and closes the frame; release closes it keeping the changes. Either
// may be called more than once.
func (r *Repository) checkpoint() (restore, release func()) {
	f := &undoFrame{
		wordforms: make(map[*Wordform]savedWordform),
		glosses:   make(map[*WordAnalysis][]*WordGloss),
	}
	r.frames = append(r.frames, f)

	closed := false
	release = func() {
		if closed {
			return
		}
		closed = true
		for i, g := range r.frames {
			if g == f {
				r.frames = append(r.frames[:i], r.frames[i+1:]...)
				break
			}
		}
	}
	restore = func() {
		if closed {
			return
		}
		// Unlink wordforms created during the run first, so a restored
		// wordform can take back a key a newer one reused.
		for w, s := range f.wordforms {
			if !s.live {
				if key := (formKey{w.Form, w.WS}); r.wordforms[key] == w {
					delete(r.wordforms, key)
				}
			}
		}
		for w, s := range f.wordforms {
			*w = s.val
			if s.live {
				r.wordforms[formKey{w.Form, w.WS}] = w
			} else {
				w.deleted = true
			}
		}
		for a, g := range f.glosses {
			a.Glosses = g
		}
		for _, key := range f.punct {
			delete(r.punct, key)
		}
		release()
	}
	return restore, release
}
