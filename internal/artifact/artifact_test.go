package artifact

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fujilab/surveyscan/internal/form"
	"github.com/fujilab/surveyscan/internal/schema"
)

func testSet(t *testing.T) *schema.Set {
	t.Helper()
	set, err := schema.NewSet([]schema.FieldSchema{
		{Name: "consent", Type: schema.FieldTypeSingleCheckbox,
			Geometry: schema.Geometry{X: 0.1, Y: 0.1, Width: 0.1, Height: 0.1}},
		{Name: "blood_type", Type: schema.FieldTypeFilledBoxChoice, Options: []string{"A", "B"},
			Geometry: schema.Geometry{X: 0.1, Y: 0.3, Width: 0.5, Height: 0.1}},
		{Name: "patient_name", Type: schema.FieldTypeFreeText, Description: "handwritten name",
			Geometry: schema.Geometry{X: 0.1, Y: 0.5, Width: 0.5, Height: 0.1}},
	})
	require.NoError(t, err)
	return set
}

func encodedCrop(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func testResult(t *testing.T) *form.ExtractResult {
	t.Helper()
	return &form.ExtractResult{
		Results: map[string]form.MarkResult{
			"consent":      {Field: "consent", Value: form.BoolValue(true), Confidence: form.ConfidenceMedium, FillRatio: 0.41},
			"blood_type":   {Field: "blood_type", Value: form.ChoiceValue("A"), Confidence: form.ConfidenceMedium, FillRatio: 0.33},
			"patient_name": {Field: "patient_name", Value: form.TextValue("Tanaka"), Confidence: form.ConfidenceHigh},
		},
		Findings: []form.Finding{{
			RuleID:   "some_rule",
			Severity: schema.SeverityWarning,
			Message:  "inconsistent answers",
			Fields:   []string{"consent", "patient_name"},
		}},
		SubImages: map[string][]byte{
			"consent":      encodedCrop(t, 10, 10),
			"blood_type":   encodedCrop(t, 50, 10),
			"patient_name": encodedCrop(t, 50, 10),
		},
		CorrectedPage: encodedCrop(t, 200, 280),
		SkewAngle:     1.25,
	}
}

func TestBuild(t *testing.T) {
	set := testSet(t)
	a := Build("scan-001.pdf", set, testResult(t))

	assert.Equal(t, "scan-001.pdf", a.Source)
	assert.Equal(t, 1.25, a.SkewAngle)
	assert.False(t, a.GeneratedAt.IsZero())

	require.Len(t, a.Fields, 3)
	// Schema order, not map order.
	assert.Equal(t, "consent", a.Fields[0].Name)
	assert.Equal(t, "blood_type", a.Fields[1].Name)
	assert.Equal(t, "patient_name", a.Fields[2].Name)

	assert.Equal(t, true, a.Fields[0].Value)
	assert.Equal(t, "checked", a.Fields[0].Display)
	assert.Equal(t, "medium", a.Fields[0].Confidence)
	assert.Equal(t, 0.41, a.Fields[0].FillRatio)

	assert.Equal(t, "A", a.Fields[1].Value)
	assert.Equal(t, "Tanaka", a.Fields[2].Value)
	assert.Equal(t, "high", a.Fields[2].Confidence)

	require.Len(t, a.Findings, 1)
	assert.Equal(t, "some_rule", a.Findings[0].RuleID)
	assert.Equal(t, "warning", a.Findings[0].Severity)
}

func TestBuildNilValue(t *testing.T) {
	set := testSet(t)
	res := testResult(t)
	res.Results["patient_name"] = form.MarkResult{Field: "patient_name", Confidence: form.ConfidenceLow}

	a := Build("scan.pdf", set, res)
	assert.Nil(t, a.Fields[2].Value)
	assert.Empty(t, a.Fields[2].Display)
	assert.Equal(t, "low", a.Fields[2].Confidence)
}

func TestWriteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "run.json")

	a := Build("scan.pdf", testSet(t), testResult(t))
	require.NoError(t, Write(path, a))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded RunArtifact
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, a.Source, decoded.Source)
	assert.Len(t, decoded.Fields, 3)
	assert.Equal(t, "checked", decoded.Fields[0].Display)
}

func TestWriteSubImages(t *testing.T) {
	dir := t.TempDir()
	res := testResult(t)

	require.NoError(t, WriteSubImages(dir, res.SubImages))

	for name := range res.SubImages {
		data, err := os.ReadFile(filepath.Join(dir, name+".png"))
		require.NoError(t, err)
		_, err = png.Decode(bytes.NewReader(data))
		assert.NoError(t, err)
	}
}

func TestBuildReview(t *testing.T) {
	set := testSet(t)
	b := BuildReview("scan-001.pdf", set, testResult(t))

	assert.Equal(t, "scan-001.pdf", b.Source)
	require.Len(t, b.Fields, 3)

	name := b.Fields[2]
	assert.Equal(t, "patient_name", name.Name)
	assert.Equal(t, "handwritten name", name.Description)
	assert.Equal(t, "Tanaka", name.Display)
	assert.Equal(t, "high", name.Confidence)

	crop, err := base64.StdEncoding.DecodeString(name.ImageBase64)
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(crop))
	assert.NoError(t, err, "embedded crop must be valid PNG")

	page, err := base64.StdEncoding.DecodeString(b.PageBase64)
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(page))
	assert.NoError(t, err, "embedded page must be valid PNG")

	require.Len(t, b.Findings, 1)
	assert.Equal(t, "some_rule", b.Findings[0].RuleID)
}

func TestWriteReview(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "review.json")

	b := BuildReview("scan.pdf", testSet(t), testResult(t))
	require.NoError(t, WriteReview(path, b))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded ReviewBundle
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Len(t, decoded.Fields, 3)
}

func TestThumbnailPNG(t *testing.T) {
	t.Run("narrow crop passes through", func(t *testing.T) {
		crop := encodedCrop(t, 100, 40)
		thumb, err := thumbnailPNG(crop, thumbnailMaxWidth)
		require.NoError(t, err)
		assert.Equal(t, crop, thumb)
	})

	t.Run("wide crop is downscaled", func(t *testing.T) {
		crop := encodedCrop(t, 1600, 200)
		thumb, err := thumbnailPNG(crop, thumbnailMaxWidth)
		require.NoError(t, err)

		img, err := png.Decode(bytes.NewReader(thumb))
		require.NoError(t, err)
		assert.Equal(t, thumbnailMaxWidth, img.Bounds().Dx())
		assert.Equal(t, 40, img.Bounds().Dy(), "aspect ratio preserved")
	})

	t.Run("garbage input", func(t *testing.T) {
		_, err := thumbnailPNG([]byte("nope"), thumbnailMaxWidth)
		assert.Error(t, err)
	})
}
