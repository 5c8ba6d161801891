package form

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fujilab/surveyscan/internal/schema"
)

type fakeRecognizer struct {
	readings map[string]string
	err      error
	calls    []string
}

func (f *fakeRecognizer) Recognize(_ context.Context, _ []byte, field schema.FieldSchema) (Recognized, error) {
	f.calls = append(f.calls, field.Name)
	if f.err != nil {
		return Recognized{}, f.err
	}
	if text, ok := f.readings[field.Name]; ok {
		return Recognized{Value: text, Confidence: ConfidenceHigh}, nil
	}
	return Recognized{Confidence: ConfidenceLow}, nil
}

func testSet(t *testing.T) *schema.Set {
	t.Helper()
	set, err := schema.NewSet([]schema.FieldSchema{
		{
			Name:     "consent_box",
			Type:     schema.FieldTypeSingleCheckbox,
			Geometry: schema.Geometry{X: 0.05, Y: 0.05, Width: 0.1, Height: 0.1},
		},
		{
			Name:     "answer_row",
			Type:     schema.FieldTypeFilledBoxChoice,
			Options:  []string{"first", "second"},
			Geometry: schema.Geometry{X: 0.05, Y: 0.3, Width: 0.5, Height: 0.1},
		},
		{
			Name:     "name_field",
			Type:     schema.FieldTypeFreeText,
			Geometry: schema.Geometry{X: 0.05, Y: 0.5, Width: 0.4, Height: 0.1},
		},
		{
			Name:     "full_row",
			Type:     schema.FieldTypeReviewOnly,
			Geometry: schema.Geometry{X: 0.05, Y: 0.7, Width: 0.9, Height: 0.05},
		},
	})
	require.NoError(t, err)
	return set
}

// testPage draws a 400x400 white page with the consent box inked and the
// second choice slot marked.
func testPage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 400, 400))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	// consent_box region is x 20..60, y 20..60
	draw.Draw(img, image.Rect(20, 20, 60, 60), image.NewUniform(color.Black), image.Point{}, draw.Src)
	// answer_row region is x 20..220; slot 1 lead is x 120..145
	draw.Draw(img, image.Rect(120, 120, 145, 160), image.NewUniform(color.Black), image.Point{}, draw.Src)
	return img
}

func TestServiceExtract(t *testing.T) {
	rec := &fakeRecognizer{readings: map[string]string{"name_field": "Tanaka"}}
	svc := NewService(rec)
	set := testSet(t)

	res, err := svc.Extract(context.Background(), testPage(), set, nil)
	require.NoError(t, err)

	assert.InDelta(t, 0, res.SkewAngle, 0.5)
	assert.Empty(t, res.SkippedFields)

	consent := res.Results["consent_box"]
	assert.True(t, consent.Checked())
	assert.Equal(t, ConfidenceMedium, consent.Confidence)

	answer := res.Results["answer_row"]
	assert.Equal(t, ChoiceValue("second"), answer.Value)
	assert.Equal(t, ConfidenceMedium, answer.Confidence)

	name := res.Results["name_field"]
	assert.Equal(t, TextValue("Tanaka"), name.Value)
	assert.Equal(t, ConfidenceHigh, name.Confidence)
	assert.Equal(t, []string{"name_field"}, rec.calls, "only free-text fields reach the recognizer")

	// Review-only regions yield a crop but no interpretation.
	_, interpreted := res.Results["full_row"]
	assert.False(t, interpreted)

	require.Len(t, res.SubImages, 4)
	for name, data := range res.SubImages {
		img, err := png.Decode(bytes.NewReader(data))
		require.NoError(t, err, "crop for %s must be valid PNG", name)
		assert.False(t, img.Bounds().Empty())
	}

	page, err := png.Decode(bytes.NewReader(res.CorrectedPage))
	require.NoError(t, err, "corrected page must be valid PNG")
	assert.Equal(t, 400, page.Bounds().Dx())
}

func TestServiceExtractRunsRules(t *testing.T) {
	rec := &fakeRecognizer{readings: map[string]string{"name_field": "Tanaka"}}
	svc := NewService(rec)
	set := testSet(t)
	rules := []schema.ValidationRule{{
		ID:         "consent_requires_no_name",
		Trigger:    "consent_box",
		Companions: []string{"name_field"},
		Severity:   schema.SeverityWarning,
		Message:    "name should be blank when the consent box is marked",
	}}

	res, err := svc.Extract(context.Background(), testPage(), set, rules)
	require.NoError(t, err)

	require.Len(t, res.Findings, 1)
	assert.Equal(t, "consent_requires_no_name", res.Findings[0].RuleID)
	assert.Equal(t, []string{"consent_box", "name_field"}, res.Findings[0].Fields)
}

func TestServiceExtractWithoutRecognizer(t *testing.T) {
	svc := NewService(nil)
	res, err := svc.Extract(context.Background(), testPage(), testSet(t), nil)
	require.NoError(t, err)

	name := res.Results["name_field"]
	assert.Nil(t, name.Value)
	assert.Equal(t, ConfidenceLow, name.Confidence)
}

func TestServiceExtractRecognizerFailureDegrades(t *testing.T) {
	rec := &fakeRecognizer{err: errors.New("quota exhausted")}
	svc := NewService(rec)

	res, err := svc.Extract(context.Background(), testPage(), testSet(t), nil)
	require.NoError(t, err, "recognition failure must not fail the document")

	name := res.Results["name_field"]
	assert.Nil(t, name.Value)
	assert.Equal(t, ConfidenceLow, name.Confidence)

	// Mark detection is unaffected.
	assert.True(t, res.Results["consent_box"].Checked())
}

func TestServiceExtractBadInput(t *testing.T) {
	svc := NewService(nil)
	set := testSet(t)

	_, err := svc.Extract(context.Background(), nil, set, nil)
	require.Error(t, err)
	assert.True(t, IsInputError(err))

	_, err = svc.Extract(context.Background(), image.NewRGBA(image.Rect(0, 0, 0, 0)), set, nil)
	require.Error(t, err)
	assert.True(t, IsInputError(err))
}

func TestServiceExtractNonRGBAInput(t *testing.T) {
	svc := NewService(nil)
	set := testSet(t)

	gray := image.NewGray(image.Rect(0, 0, 400, 400))
	for i := range gray.Pix {
		gray.Pix[i] = 255
	}

	res, err := svc.Extract(context.Background(), gray, set, nil)
	require.NoError(t, err)
	assert.False(t, res.Results["consent_box"].Checked())
}
