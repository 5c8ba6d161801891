package form

import (
	"bytes"
	"context"
	"image"
	"image/draw"
	"image/png"
	"log"

	"github.com/fujilab/surveyscan/internal/schema"
)

// Recognized is a free-text reading supplied by the recognition capability
type Recognized struct {
	Value      string
	Confidence Confidence
}

// Recognizer is the injected text-recognition capability. Only free-text
// fields reach it; mark fields are decided locally by pixel density. A
// recognizer may return ConfidenceHigh, which the local detector never does.
type Recognizer interface {
	Recognize(ctx context.Context, pngData []byte, field schema.FieldSchema) (Recognized, error)
}

// Service runs the full extraction pipeline for one page image: skew
// correction, schema-driven region extraction, mark detection, free-text
// recognition, and consistency validation. A Service holds no per-document
// state and may process documents concurrently.
type Service struct {
	detector   *Detector
	recognizer Recognizer
}

// NewService creates an extraction service. The recognizer may be nil, in
// which case free-text fields yield low-confidence empty results for the
// reviewer to fill in.
func NewService(recognizer Recognizer) *Service {
	return &Service{
		detector:   NewDetector(),
		recognizer: recognizer,
	}
}

// Detector exposes the detector so callers can adjust engine defaults
// before processing begins.
func (s *Service) Detector() *Detector {
	return s.detector
}

// Extract processes one decoded page raster against a form layout and rule
// table. Per-field schema problems are recorded and skipped; only an
// unusable input image fails the whole document.
func (s *Service) Extract(ctx context.Context, img image.Image, set *schema.Set, rules []schema.ValidationRule) (*ExtractResult, error) {
	if img == nil {
		return nil, NewInputError("nil page image", nil)
	}
	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, NewInputError("empty page image", nil)
	}

	corrected, angle := CorrectSkew(toRGBA(img))
	regions, skipped := ExtractAll(corrected, set)

	results := make(map[string]MarkResult, set.Len())
	subImages := make(map[string][]byte, len(regions))

	for _, field := range set.Fields() {
		if _, bad := skipped[field.Name]; bad {
			continue
		}
		region, ok := regions[field.Name]
		if !ok {
			results[field.Name] = MarkResult{Field: field.Name, Confidence: ConfidenceLow}
			continue
		}

		if data, err := encodePNG(region.Image); err == nil {
			subImages[field.Name] = data
		} else {
			log.Printf("failed to encode crop for %s: %v", field.Name, err)
		}

		switch field.Type {
		case schema.FieldTypeReviewOnly:
			// Cropped for the reviewer, never interpreted.

		case schema.FieldTypeSingleCheckbox:
			r := s.detector.SingleCheckbox(region.Image, field.Threshold)
			r.Field = field.Name
			results[field.Name] = r

		case schema.FieldTypeFilledBoxChoice:
			r := s.detector.FilledBoxChoice(region.Image, field.Options, field.Threshold)
			r.Field = field.Name
			results[field.Name] = r

		case schema.FieldTypeFreeText:
			results[field.Name] = s.recognizeField(ctx, subImages[field.Name], field)
		}
	}

	page, err := encodePNG(corrected)
	if err != nil {
		log.Printf("failed to encode corrected page: %v", err)
	}

	return &ExtractResult{
		Results:       results,
		Findings:      EvaluateRules(rules, results),
		SubImages:     subImages,
		CorrectedPage: page,
		SkewAngle:     angle,
		SkippedFields: skipped,
	}, nil
}

// recognizeField delegates one free-text crop to the recognition
// capability. Recognition failure degrades to a low-confidence empty
// result; it never fails the document.
func (s *Service) recognizeField(ctx context.Context, pngData []byte, field schema.FieldSchema) MarkResult {
	result := MarkResult{Field: field.Name, Confidence: ConfidenceLow}
	if s.recognizer == nil || len(pngData) == 0 {
		return result
	}

	recognized, err := s.recognizer.Recognize(ctx, pngData, field)
	if err != nil {
		log.Printf("recognition failed for %s: %v", field.Name, err)
		return result
	}

	switch recognized.Confidence {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		result.Confidence = recognized.Confidence
	}
	if recognized.Value != "" {
		result.Value = TextValue(recognized.Value)
	}
	return result
}

// toRGBA normalizes any decoded image into the RGBA working format
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// encodePNG renders a crop as PNG bytes for the review layer
func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
