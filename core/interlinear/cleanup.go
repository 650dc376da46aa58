package interlinear

// IsOrphan reports whether w may be deleted: it has no references, no focus
// locks and no explicit spelling mark.
func (r *Repository) IsOrphan(w *Wordform) bool {
	return w.refs == 0 && w.focus == 0 && w.Spelling == SpellingUndetermined
}

// CleanupOrphans deletes each touched wordform that is an orphan, together
// with its analyses and glosses, and returns the deleted wordforms in the
// order they were touched. Untouched orphans are left alone.
func (r *Repository) CleanupOrphans(touched []*Wordform) []*Wordform {
	var deleted []*Wordform
	seen := make(map[*Wordform]bool, len(touched))
	for _, w := range touched {
		if w == nil || seen[w] {
			continue
		}
		seen[w] = true
		if w.deleted || !r.Contains(w) || !r.IsOrphan(w) {
			continue
		}
		r.delete(w)
		deleted = append(deleted, w)
	}
	return deleted
}
