package form

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fujilab/surveyscan/internal/schema"
)

func TestMapRegionStaysInBounds(t *testing.T) {
	sizes := []image.Point{{100, 100}, {640, 480}, {2481, 3507}, {3, 7}}
	geometries := []schema.Geometry{
		{X: 0, Y: 0, Width: 1, Height: 1},
		{X: 0.5, Y: 0.5, Width: 0.5, Height: 0.5},
		{X: 0.9, Y: 0.9, Width: 0.3, Height: 0.3},
		{X: 0.05, Y: 0.937, Width: 0.62, Height: 0.028},
		{X: 0.999, Y: 0.001, Width: 0.01, Height: 0.999},
	}

	for _, size := range sizes {
		for _, g := range geometries {
			rect := MapRegion(size, g)
			assert.GreaterOrEqual(t, rect.Min.X, 0)
			assert.GreaterOrEqual(t, rect.Min.Y, 0)
			assert.LessOrEqual(t, rect.Max.X, size.X, "geometry %+v at size %v", g, size)
			assert.LessOrEqual(t, rect.Max.Y, size.Y, "geometry %+v at size %v", g, size)
		}
	}
}

func TestMapRegionExactPixels(t *testing.T) {
	rect := MapRegion(image.Pt(1000, 500), schema.Geometry{X: 0.1, Y: 0.2, Width: 0.3, Height: 0.4})
	assert.Equal(t, image.Rect(100, 100, 400, 300), rect)
}

func TestMapRegionZeroImage(t *testing.T) {
	rect := MapRegion(image.Point{}, schema.Geometry{X: 0.1, Y: 0.1, Width: 0.5, Height: 0.5})
	assert.True(t, rect.Empty())
}

func TestExtractAllSkipsBadFields(t *testing.T) {
	set, err := schema.NewSet([]schema.FieldSchema{
		{
			Name:     "good_box",
			Type:     schema.FieldTypeSingleCheckbox,
			Geometry: schema.Geometry{X: 0.1, Y: 0.1, Width: 0.2, Height: 0.2},
		},
		{
			Name:     "degenerate_geometry",
			Type:     schema.FieldTypeSingleCheckbox,
			Geometry: schema.Geometry{X: 0.5, Y: 0.5, Width: 0, Height: 0.1},
		},
		{
			Name:     "sliver",
			Type:     schema.FieldTypeFreeText,
			Geometry: schema.Geometry{X: 0.5, Y: 0.5, Width: 0.0001, Height: 0.0001},
		},
	})
	require.NoError(t, err)

	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	regions, skipped := ExtractAll(img, set)

	assert.Contains(t, regions, "good_box")
	assert.NotContains(t, regions, "degenerate_geometry")
	assert.NotContains(t, regions, "sliver")

	assert.Len(t, skipped, 2)
	assert.Contains(t, skipped["degenerate_geometry"], "SCHEMA_ERROR")
	assert.Contains(t, skipped["sliver"], "zero area")
}

func TestExtractAllCropContents(t *testing.T) {
	set, err := schema.NewSet([]schema.FieldSchema{
		{
			Name:     "patch",
			Type:     schema.FieldTypeFreeText,
			Geometry: schema.Geometry{X: 0.25, Y: 0.25, Width: 0.5, Height: 0.5},
		},
	})
	require.NoError(t, err)

	img := image.NewRGBA(image.Rect(0, 0, 40, 40))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	red := color.RGBA{R: 255, A: 255}
	draw.Draw(img, image.Rect(10, 10, 30, 30), image.NewUniform(red), image.Point{}, draw.Src)

	regions, skipped := ExtractAll(img, set)
	require.Empty(t, skipped)

	region := regions["patch"]
	assert.Equal(t, image.Rect(10, 10, 30, 30), region.Rect)
	require.Equal(t, image.Rect(0, 0, 20, 20), region.Image.Bounds())
	assert.Equal(t, red, region.Image.RGBAAt(0, 0))
	assert.Equal(t, red, region.Image.RGBAAt(19, 19))

	// Crops are standalone copies, not views into the page buffer.
	img.Set(10, 10, color.RGBA{B: 255, A: 255})
	assert.Equal(t, red, region.Image.RGBAAt(0, 0))
}
