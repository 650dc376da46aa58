package interlinear

// Element types reported when an edit discards annotation content.
const (
	ElementFreeTranslation    = "free_translation"
	ElementLiteralTranslation = "literal_translation"
	ElementNote               = "note"
	ElementTextTag            = "text_tag"
	ElementChartCell          = "chart_cell"
)

// LostElement describes a piece of annotation that an edit could not carry
// forward.
type LostElement struct {
	// Path locates the element (e.g., "para[2]/seg[0]").
	Path string `json:"path"`

	// ElementType describes what was lost (see the Element constants).
	ElementType string `json:"element_type"`

	// Reason explains why the element was lost.
	Reason string `json:"reason"`

	// OriginalValue is the value that was lost (optional).
	OriginalValue interface{} `json:"original_value,omitempty"`
}

// LossReport collects the annotation dropped by one edit. Loss is expected
// behavior, not an error.
type LossReport struct {
	// Operation is the edit kind (e.g., "replace", "merge").
	Operation string `json:"operation"`

	// LostElements lists specific pieces of annotation that were lost.
	LostElements []LostElement `json:"lost_elements,omitempty"`

	// Warnings contains non-fatal issues encountered while adjusting.
	Warnings []string `json:"warnings,omitempty"`
}

// HasLoss returns true if any elements were lost.
func (r *LossReport) HasLoss() bool {
	return len(r.LostElements) > 0
}

// AddLostElement adds a lost element to the report.
func (r *LossReport) AddLostElement(path, elementType, reason string) {
	r.AddLostValue(path, elementType, reason, nil)
}

// AddLostValue adds a lost element together with its original value.
func (r *LossReport) AddLostValue(path, elementType, reason string, value interface{}) {
	r.LostElements = append(r.LostElements, LostElement{
		Path:          path,
		ElementType:   elementType,
		Reason:        reason,
		OriginalValue: value,
	})
}

// AddWarning adds a warning to the report.
func (r *LossReport) AddWarning(warning string) {
	r.Warnings = append(r.Warnings, warning)
}

// Count returns the number of lost elements of the given type.
func (r *LossReport) Count(elementType string) int {
	n := 0
	for _, e := range r.LostElements {
		if e.ElementType == elementType {
			n++
		}
	}
	return n
}
