package form

import (
	"image"
)

const (
	// DefaultCheckboxThreshold is the fill ratio above which a standalone
	// checkbox counts as checked. Schema thresholds override it per field.
	DefaultCheckboxThreshold = 0.25
	// DefaultChoiceThreshold is the minimum fill ratio a choice slot needs
	// to count as selected
	DefaultChoiceThreshold = 0.15
	// DefaultLeadingCapPx caps the width of the leading sub-slot inspected
	// inside each choice slot. The box glyph sits at the left edge of the
	// slot; restricting the window keeps the printed option label from
	// inflating the fill ratio. Expressed as a cap over a quarter of the
	// slot width so the window scales down with low-resolution scans.
	DefaultLeadingCapPx = 35
)

// Detector classifies marked regions by pixel density. It holds only
// engine-level defaults and is safe for concurrent use.
type Detector struct {
	CheckboxThreshold float64
	ChoiceThreshold   float64
	LeadingCapPx      int
}

// NewDetector returns a detector with the default thresholds
func NewDetector() *Detector {
	return &Detector{
		CheckboxThreshold: DefaultCheckboxThreshold,
		ChoiceThreshold:   DefaultChoiceThreshold,
		LeadingCapPx:      DefaultLeadingCapPx,
	}
}

// SingleCheckbox decides whether a checkbox region is marked. The region is
// binarized and the foreground ratio compared against the threshold
// (override > 0 wins over the default). A positive detection is medium
// confidence at most; this is a density heuristic, not recognition, so the
// high tier is reserved for the text-recognition capability.
func (d *Detector) SingleCheckbox(roi image.Image, override float64) MarkResult {
	threshold := d.CheckboxThreshold
	if override > 0 {
		threshold = override
	}

	b := roi.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return MarkResult{Value: BoolValue(false), Confidence: ConfidenceLow}
	}

	bin := Binarize(Grayscale(roi))
	ratio := ForegroundRatio(bin)
	if ratio > threshold {
		return MarkResult{Value: BoolValue(true), Confidence: ConfidenceMedium, FillRatio: ratio}
	}
	return MarkResult{Value: BoolValue(false), Confidence: ConfidenceLow, FillRatio: ratio}
}

// FilledBoxChoice selects one of N mutually exclusive options from a row
// region. The row is split into N equal-width slots in option order and
// only the leading sub-slot of each is measured, isolating the mark glyph
// from the printed label next to it. The densest slot above the threshold
// wins; otherwise the result is no selection with low confidence.
func (d *Detector) FilledBoxChoice(roi image.Image, options []string, override float64) MarkResult {
	threshold := d.ChoiceThreshold
	if override > 0 {
		threshold = override
	}

	b := roi.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 || len(options) == 0 {
		return MarkResult{Confidence: ConfidenceLow}
	}

	bin := Binarize(Grayscale(roi))
	bb := bin.Bounds()
	slotWidth := bb.Dx() / len(options)
	if slotWidth == 0 {
		return MarkResult{Confidence: ConfidenceLow}
	}

	leadWidth := slotWidth / 4
	if leadWidth > d.LeadingCapPx {
		leadWidth = d.LeadingCapPx
	}
	if leadWidth < 1 {
		leadWidth = 1
	}

	var maxRatio float64
	selected := ""
	for i, option := range options {
		xStart := bb.Min.X + i*slotWidth
		lead := bin.SubImage(image.Rect(xStart, bb.Min.Y, xStart+leadWidth, bb.Max.Y)).(*image.Gray)
		ratio := ForegroundRatio(lead)
		if ratio > maxRatio {
			maxRatio = ratio
			if ratio > threshold {
				selected = option
			}
		}
	}

	if selected == "" {
		return MarkResult{Confidence: ConfidenceLow, FillRatio: maxRatio}
	}
	return MarkResult{Value: ChoiceValue(selected), Confidence: ConfidenceMedium, FillRatio: maxRatio}
}
