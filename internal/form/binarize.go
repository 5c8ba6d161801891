package form

import (
	"image"
	"image/color"
)

// Grayscale converts an image to 8-bit grayscale using the standard
// luminance model.
func Grayscale(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	gray := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			gray.Set(x, y, color.GrayModel.Convert(img.At(x, y)))
		}
	}
	return gray
}

// Binarize thresholds a grayscale image with Otsu's method and inverts the
// result so ink is foreground: returned pixels are 255 where the source is
// at or below the threshold (dark) and 0 elsewhere.
//
// A region with no contrast at all (a blank crop, or a fully inked one)
// defeats Otsu, so uniform regions are classified by absolute darkness
// instead.
func Binarize(gray *image.Gray) *image.Gray {
	b := gray.Bounds()
	bin := image.NewGray(b)

	var hist [256]int
	total := 0
	lo, hi := 255, 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := gray.PixOffset(b.Min.X, y)
		row := gray.Pix[off : off+b.Dx()]
		for _, v := range row {
			hist[v]++
			total++
			if int(v) < lo {
				lo = int(v)
			}
			if int(v) > hi {
				hi = int(v)
			}
		}
	}
	if total == 0 {
		return bin
	}

	if lo == hi {
		// No contrast: dark means ink, light means paper.
		if lo < 128 {
			for i := range bin.Pix {
				bin.Pix[i] = 255
			}
		}
		return bin
	}

	thresh := otsuThreshold(hist, total)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		srcOff := gray.PixOffset(b.Min.X, y)
		dstOff := bin.PixOffset(b.Min.X, y)
		src := gray.Pix[srcOff : srcOff+b.Dx()]
		dst := bin.Pix[dstOff : dstOff+b.Dx()]
		for i, v := range src {
			if v <= thresh {
				dst[i] = 255
			}
		}
	}
	return bin
}

// otsuThreshold finds the threshold maximizing between-class variance
func otsuThreshold(hist [256]int, total int) uint8 {
	var sum float64
	for v, n := range hist {
		sum += float64(v) * float64(n)
	}

	var sumBack, weightBack float64
	var best float64
	var thresh uint8
	for t := 0; t < 256; t++ {
		weightBack += float64(hist[t])
		if weightBack == 0 {
			continue
		}
		weightFore := float64(total) - weightBack
		if weightFore == 0 {
			break
		}
		sumBack += float64(t) * float64(hist[t])
		meanBack := sumBack / weightBack
		meanFore := (sum - sumBack) / weightFore
		diff := meanBack - meanFore
		variance := weightBack * weightFore * diff * diff
		if variance > best {
			best = variance
			thresh = uint8(t)
		}
	}
	return thresh
}

// ForegroundRatio is the fill ratio of a binarized image: foreground pixel
// count divided by total pixel count. Returns 0 for an empty image.
func ForegroundRatio(bin *image.Gray) float64 {
	b := bin.Bounds()
	total := b.Dx() * b.Dy()
	if total == 0 {
		return 0
	}
	count := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := bin.PixOffset(b.Min.X, y)
		row := bin.Pix[off : off+b.Dx()]
		for _, v := range row {
			if v > 0 {
				count++
			}
		}
	}
	return float64(count) / float64(total)
}
