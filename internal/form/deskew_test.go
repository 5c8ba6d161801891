package form

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// ruledGrayPage draws a white page with full-width dark rules tilted by
// angleDeg, mimicking the printed lines of a scanned form.
func ruledGrayPage(w, h int, angleDeg float64) *image.Gray {
	g := uniformGray(w, h, 255)
	tan := math.Tan(angleDeg * math.Pi / 180)
	for _, y0 := range []int{h / 4, h / 2, 3 * h / 4} {
		for x := 0; x < w; x++ {
			y := y0 + int(math.Round(float64(x)*tan))
			for dy := 0; dy < 3; dy++ {
				if y+dy >= 0 && y+dy < h {
					g.SetGray(x, y+dy, color.Gray{Y: 0})
				}
			}
		}
	}
	return g
}

func ruledRGBAPage(w, h int, angleDeg float64) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	tan := math.Tan(angleDeg * math.Pi / 180)
	for _, y0 := range []int{h / 4, h / 2, 3 * h / 4} {
		for x := 0; x < w; x++ {
			y := y0 + int(math.Round(float64(x)*tan))
			for dy := 0; dy < 3; dy++ {
				if y+dy >= 0 && y+dy < h {
					img.Set(x, y+dy, color.Black)
				}
			}
		}
	}
	return img
}

func TestDetectSkewAngle(t *testing.T) {
	tests := []struct {
		name  string
		angle float64
	}{
		{name: "aligned page", angle: 0},
		{name: "slight clockwise tilt", angle: 1.5},
		{name: "slight counter-clockwise tilt", angle: -2.0},
		{name: "strong tilt", angle: 4.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := ruledGrayPage(800, 600, tt.angle)
			got := DetectSkewAngle(page)
			assert.InDelta(t, tt.angle, got, 0.5)
		})
	}
}

func TestDetectSkewAngleBlankPage(t *testing.T) {
	assert.Equal(t, 0.0, DetectSkewAngle(uniformGray(400, 300, 255)))
}

func TestDetectSkewAngleIgnoresVerticalRules(t *testing.T) {
	// Vertical lines are outside the near-horizontal band and must not
	// produce a skew estimate on their own.
	g := uniformGray(400, 300, 255)
	for _, x0 := range []int{100, 200, 300} {
		for y := 0; y < 300; y++ {
			g.SetGray(x0, y, color.Gray{Y: 0})
		}
	}
	assert.Equal(t, 0.0, DetectSkewAngle(g))
}

func TestCorrectSkewBelowNoiseFloor(t *testing.T) {
	page := ruledRGBAPage(800, 600, 0)
	corrected, angle := CorrectSkew(page)

	assert.InDelta(t, 0, angle, skewNoiseFloorDeg)
	assert.Same(t, page, corrected, "aligned pages must not be resampled")
}

func TestCorrectSkewStraightens(t *testing.T) {
	page := ruledRGBAPage(800, 600, 2.5)
	corrected, angle := CorrectSkew(page)

	assert.InDelta(t, 2.5, angle, 0.5)
	assert.NotSame(t, page, corrected)
	assert.Equal(t, page.Bounds().Size(), corrected.Bounds().Size())

	residual := DetectSkewAngle(Grayscale(corrected))
	assert.InDelta(t, 0, residual, skewNoiseFloorDeg, "correction should leave the page level")
}

func TestCorrectSkewNearIdempotent(t *testing.T) {
	// A second pass over a corrected page must detect at most the noise
	// floor, including at small angles where thick rules spread votes
	// across neighboring accumulator steps.
	for _, angle := range []float64{-8, -4.3, -2.5, -1, 1, 2.5, 4.3, 8} {
		page := ruledRGBAPage(800, 600, angle)
		corrected, detected := CorrectSkew(page)
		assert.InDelta(t, angle, detected, 0.5)

		residual := DetectSkewAngle(Grayscale(corrected))
		assert.InDelta(t, 0, residual, skewNoiseFloorDeg, "angle %.2f: residual %.2f", angle, residual)
	}
}

func TestRotatePreservesBorderColor(t *testing.T) {
	// Edge replication: corners stay paper-colored after rotation rather
	// than turning black.
	page := ruledRGBAPage(400, 300, 0)
	rotated := rotate(page, 5)

	for _, p := range []image.Point{{0, 0}, {399, 0}, {0, 299}, {399, 299}} {
		r, g, b, _ := rotated.At(p.X, p.Y).RGBA()
		assert.Greater(t, int(r>>8), 200, "corner %v should stay light", p)
		assert.Greater(t, int(g>>8), 200)
		assert.Greater(t, int(b>>8), 200)
	}
}

func TestCatmullRomWeightsSumToOne(t *testing.T) {
	var w [4]float64
	for _, tval := range []float64{0, 0.25, 0.5, 0.75, 0.999} {
		catmullRomWeights(tval, &w)
		assert.InDelta(t, 1.0, w[0]+w[1]+w[2]+w[3], 1e-9)
	}
}
