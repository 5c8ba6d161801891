package form

import (
	"image"

	"github.com/fujilab/surveyscan/internal/schema"
)

// Confidence is a coarse qualitative tier attached to each field result.
// It is not a calibrated probability.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Value is the tagged per-field result value. Each field type carries its
// own value shape with an explicit display formatting, instead of callers
// inspecting a loosely typed payload. A nil Value means no reading.
type Value interface {
	// Display renders the value for the review surface
	Display() string
	// IsEmpty reports whether the value counts as a blank answer for
	// consistency rules
	IsEmpty() bool
}

// BoolValue is a single-checkbox reading
type BoolValue bool

func (v BoolValue) Display() string {
	if v {
		return "checked"
	}
	return "unchecked"
}

func (v BoolValue) IsEmpty() bool { return !bool(v) }

// ChoiceValue is the selected option of a filled-box choice field
type ChoiceValue string

func (v ChoiceValue) Display() string { return string(v) }
func (v ChoiceValue) IsEmpty() bool   { return v == "" }

// TextValue is a recognized free-text reading
type TextValue string

func (v TextValue) Display() string { return string(v) }
func (v TextValue) IsEmpty() bool   { return len(v) == 0 }

// MarkResult is the per-field outcome of detection or recognition
type MarkResult struct {
	Field      string     `json:"field"`
	Value      Value      `json:"-"`
	Confidence Confidence `json:"confidence"`
	// FillRatio is the raw density metric behind a local detection;
	// zero for recognized free-text fields.
	FillRatio float64 `json:"fill_ratio,omitempty"`
}

// Checked reports whether the result is a positive checkbox reading
func (r MarkResult) Checked() bool {
	b, ok := r.Value.(BoolValue)
	return ok && bool(b)
}

// Empty reports whether the result counts as a blank answer
func (r MarkResult) Empty() bool {
	return r.Value == nil || r.Value.IsEmpty()
}

// ExtractedRegion is a named sub-image sliced from the corrected page.
// It is transient: created per document, discarded after detection or
// handed to the review layer as a crop.
type ExtractedRegion struct {
	Field string
	Rect  image.Rectangle
	Image *image.RGBA
}

// Finding is one consistency-rule hit over the aggregated results
type Finding struct {
	RuleID   string          `json:"rule_id"`
	Severity schema.Severity `json:"severity"`
	Message  string          `json:"message"`
	Fields   []string        `json:"fields"`
}

// ExtractResult is the full outcome of processing one page image
type ExtractResult struct {
	// Results holds one entry per interpretable field (review-only regions
	// and schema-invalid fields are absent)
	Results map[string]MarkResult
	// Findings lists consistency-rule hits; empty for a coherent form
	Findings []Finding
	// SubImages holds PNG-encoded crops for every successfully mapped
	// region, keyed by field name, for the external review layer
	SubImages map[string][]byte
	// CorrectedPage is the full skew-corrected page as PNG bytes, for the
	// external review layer
	CorrectedPage []byte
	// SkewAngle is the detected page skew in degrees before correction
	SkewAngle float64
	// SkippedFields names fields dropped with a schema error
	SkippedFields map[string]string
}
