package form

import (
	"image"

	"github.com/fujilab/surveyscan/internal/schema"
)

// MapRegion converts a fractional field geometry into a concrete pixel
// rectangle for the given image size. Coordinates are truncated to
// integers, the origin is clamped into the image, and the size is shrunk
// so the rectangle stays fully inside. Schemas authored against a slightly
// different reference resolution or aspect ratio therefore never produce
// an out-of-bounds rectangle.
func MapRegion(size image.Point, g schema.Geometry) image.Rectangle {
	w, h := size.X, size.Y
	if w <= 0 || h <= 0 {
		return image.Rectangle{}
	}

	x := int(g.X * float64(w))
	y := int(g.Y * float64(h))
	rw := int(g.Width * float64(w))
	rh := int(g.Height * float64(h))

	x = clampInt(x, 0, w-1)
	y = clampInt(y, 0, h-1)
	if rw > w-x {
		rw = w - x
	}
	if rh > h-y {
		rh = h - y
	}
	if rw < 0 {
		rw = 0
	}
	if rh < 0 {
		rh = 0
	}

	return image.Rect(x, y, x+rw, y+rh)
}

// ExtractAll slices a sub-image for every field in the set. A field whose
// schema is unusable or whose mapped rectangle has zero area is recorded in
// skipped and left out of the result; one bad field never blocks the rest
// of the document.
func ExtractAll(img *image.RGBA, set *schema.Set) (map[string]ExtractedRegion, map[string]string) {
	regions := make(map[string]ExtractedRegion, set.Len())
	skipped := make(map[string]string)

	size := img.Bounds().Size()
	for _, field := range set.Fields() {
		if err := field.Validate(); err != nil {
			skipped[field.Name] = NewSchemaError(field.Name, err.Error()).Error()
			continue
		}

		rect := MapRegion(size, field.Geometry)
		if rect.Dx() == 0 || rect.Dy() == 0 {
			skipped[field.Name] = NewSchemaError(field.Name, "mapped rectangle has zero area").Error()
			continue
		}

		regions[field.Name] = ExtractedRegion{
			Field: field.Name,
			Rect:  rect,
			Image: cropRGBA(img, rect),
		}
	}
	return regions, skipped
}

// cropRGBA copies a rectangle out of src into a standalone image so region
// buffers stay valid independently of the page image.
func cropRGBA(src *image.RGBA, rect image.Rectangle) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	for y := 0; y < rect.Dy(); y++ {
		srcOff := src.PixOffset(src.Bounds().Min.X+rect.Min.X, src.Bounds().Min.Y+rect.Min.Y+y)
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+rect.Dx()*4], src.Pix[srcOff:srcOff+rect.Dx()*4])
	}
	return dst
}
