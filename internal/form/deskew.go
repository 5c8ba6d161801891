package form

import (
	"image"
	"math"
	"sort"
)

const (
	// maxLineDeviationDeg rejects line segments that are not close to
	// horizontal; vertical rules and handwriting strokes would otherwise
	// pollute the skew estimate.
	maxLineDeviationDeg = 10.0
	// skewNoiseFloorDeg is the angle below which correction is skipped to
	// avoid resampling loss on already-aligned scans
	skewNoiseFloorDeg = 0.1
	// angleStepDeg is the resolution of the line-angle accumulator
	angleStepDeg = 0.1
	// edgeMagnitudeThreshold marks a pixel as an edge when the Sobel
	// gradient magnitude clears it
	edgeMagnitudeThreshold = 128
	// maxEdgeSamples bounds the accumulator work on very dense scans
	maxEdgeSamples = 200000
)

// DetectSkewAngle estimates the page skew in degrees from a grayscale image.
// It finds edges, votes near-horizontal line segments into an angle/offset
// accumulator, and returns the vote-weighted median of the surviving segment
// angles. A thick ruled line spreads surviving cells across several adjacent
// angle steps; weighting each angle by its support above the segment
// threshold keeps that spread from pulling the median off the true angle,
// while the median itself keeps a minority of spurious detections from
// dominating. Returns 0 when no segment survives.
func DetectSkewAngle(gray *image.Gray) float64 {
	votes := horizontalSegmentVotes(sobelEdges(gray))
	if len(votes) == 0 {
		return 0
	}
	sort.Slice(votes, func(i, j int) bool { return votes[i].deg < votes[j].deg })

	var total int64
	for _, v := range votes {
		total += v.weight
	}
	var cum int64
	for _, v := range votes {
		cum += v.weight
		if 2*cum >= total {
			return v.deg
		}
	}
	return votes[len(votes)-1].deg
}

// CorrectSkew straightens a page image. Below the noise floor the input is
// returned untouched; otherwise the image is resampled through a rotation
// about its center with Catmull-Rom interpolation and edge-replicating
// border fill, so correction never introduces black borders. The detected
// angle is returned alongside the image.
func CorrectSkew(img *image.RGBA) (*image.RGBA, float64) {
	angle := DetectSkewAngle(Grayscale(img))
	if math.Abs(angle) < skewNoiseFloorDeg {
		return img, angle
	}
	return rotate(img, angle), angle
}

// sobelEdges computes a binary edge mask from gradient magnitude
func sobelEdges(gray *image.Gray) *image.Gray {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	edges := image.NewGray(image.Rect(0, 0, w, h))
	if w < 3 || h < 3 {
		return edges
	}

	at := func(x, y int) int {
		return int(gray.Pix[gray.PixOffset(b.Min.X+x, b.Min.Y+y)])
	}
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := -at(x-1, y-1) - 2*at(x-1, y) - at(x-1, y+1) +
				at(x+1, y-1) + 2*at(x+1, y) + at(x+1, y+1)
			gy := -at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1) +
				at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1)
			if abs(gx)+abs(gy) >= edgeMagnitudeThreshold*4 {
				edges.Pix[y*edges.Stride+x] = 255
			}
		}
	}
	return edges
}

// angleVote is the aggregated line-segment support at one accumulator angle
type angleVote struct {
	deg    float64
	weight int64
}

// horizontalSegmentVotes votes edge pixels into a (angle, intercept)
// accumulator restricted to near-horizontal lines. Each angle step that holds
// at least one cell with enough support to count as a line segment is
// returned with a weight: the total votes those cells gathered beyond the
// segment threshold. Votes concentrate into few intercept cells at the true
// angle and smear across many weaker cells away from it, so the weight peaks
// at the true angle.
func horizontalSegmentVotes(edges *image.Gray) []angleVote {
	b := edges.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	// Collect edge coordinates, thinning when the scan is very dense.
	type pt struct{ x, y int }
	var pts []pt
	for y := 0; y < h; y++ {
		row := edges.Pix[y*edges.Stride : y*edges.Stride+w]
		for x, v := range row {
			if v > 0 {
				pts = append(pts, pt{x, y})
			}
		}
	}
	if len(pts) == 0 {
		return nil
	}
	stride := 1
	if len(pts) > maxEdgeSamples {
		stride = (len(pts) + maxEdgeSamples - 1) / maxEdgeSamples
	}

	nTheta := int(2*maxLineDeviationDeg/angleStepDeg) + 1
	tans := make([]float64, nTheta)
	for i := range tans {
		deg := -maxLineDeviationDeg + float64(i)*angleStepDeg
		tans[i] = math.Tan(deg * math.Pi / 180)
	}

	// Intercept range covers b = y - x*tan(theta) for the whole angle band.
	spread := int(math.Ceil(float64(w) * math.Tan(maxLineDeviationDeg*math.Pi/180)))
	nB := h + 2*spread + 1
	acc := make([]int32, nTheta*nB)

	for i := 0; i < len(pts); i += stride {
		p := pts[i]
		for ti, tan := range tans {
			bi := int(math.Round(float64(p.y)-float64(p.x)*tan)) + spread
			if bi >= 0 && bi < nB {
				acc[ti*nB+bi]++
			}
		}
	}

	// A cell needs support proportional to the page width to count as a
	// line segment; short handwriting strokes fall below it.
	minVotes := int32(w / 8 / stride)
	if minVotes < 32 {
		minVotes = 32
	}

	var votes []angleVote
	for ti := 0; ti < nTheta; ti++ {
		var weight int64
		for bi := 0; bi < nB; bi++ {
			if n := acc[ti*nB+bi]; n >= minVotes {
				weight += int64(n-minVotes) + 1
			}
		}
		if weight > 0 {
			deg := -maxLineDeviationDeg + float64(ti)*angleStepDeg
			votes = append(votes, angleVote{deg: deg, weight: weight})
		}
	}
	return votes
}

// rotate resamples src through a rotation of deg degrees about the image
// center, which removes a content skew of deg. Sampling coordinates are
// clamped to the image, giving border replication instead of black corners.
func rotate(src *image.RGBA, deg float64) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	sin, cos := math.Sincos(deg * math.Pi / 180)
	cx := float64(w-1) / 2
	cy := float64(h-1) / 2

	for y := 0; y < h; y++ {
		dy := float64(y) - cy
		for x := 0; x < w; x++ {
			dx := float64(x) - cx
			sx := cx + cos*dx - sin*dy
			sy := cy + sin*dx + cos*dy
			sampleCatmullRom(src, sx, sy, dst.Pix[dst.PixOffset(x, y):])
		}
	}
	return dst
}

// catmullRomWeights computes the four interpolation weights for offset t
func catmullRomWeights(t float64, w *[4]float64) {
	t2 := t * t
	t3 := t2 * t
	w[0] = -0.5*t3 + t2 - 0.5*t
	w[1] = 1.5*t3 - 2.5*t2 + 1
	w[2] = -1.5*t3 + 2*t2 + 0.5*t
	w[3] = 0.5*t3 - 0.5*t2
}

// sampleCatmullRom writes the bicubic sample of src at (sx, sy) into out,
// clamping out-of-range taps to the nearest edge pixel.
func sampleCatmullRom(src *image.RGBA, sx, sy float64, out []uint8) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	x0 := int(math.Floor(sx))
	y0 := int(math.Floor(sy))
	var wx, wy [4]float64
	catmullRomWeights(sx-float64(x0), &wx)
	catmullRomWeights(sy-float64(y0), &wy)

	var ch [4]float64
	for j := 0; j < 4; j++ {
		yy := clampInt(y0-1+j, 0, h-1)
		for i := 0; i < 4; i++ {
			xx := clampInt(x0-1+i, 0, w-1)
			weight := wx[i] * wy[j]
			off := src.PixOffset(b.Min.X+xx, b.Min.Y+yy)
			for c := 0; c < 4; c++ {
				ch[c] += weight * float64(src.Pix[off+c])
			}
		}
	}
	for c := 0; c < 4; c++ {
		v := math.Round(ch[c])
		if v < 0 {
			v = 0
		} else if v > 255 {
			v = 255
		}
		out[c] = uint8(v)
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
