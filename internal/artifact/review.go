package artifact

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	xdraw "golang.org/x/image/draw"

	"github.com/fujilab/surveyscan/internal/form"
	"github.com/fujilab/surveyscan/internal/schema"
)

const thumbnailMaxWidth = 320

// ReviewField pairs one field's decision with its crop for manual review
type ReviewField struct {
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	Type            string `json:"type"`
	Display         string `json:"display"`
	Confidence      string `json:"confidence"`
	ImageBase64     string `json:"image_base64,omitempty"`
	ThumbnailBase64 string `json:"thumbnail_base64,omitempty"`
}

// ReviewBundle is a self-contained document for a human reviewer: every
// field decision together with the image evidence, no external files needed.
type ReviewBundle struct {
	Source string `json:"source"`
	// PageBase64 is the full skew-corrected page, so the reviewer can see
	// each crop in context
	PageBase64 string        `json:"page_base64,omitempty"`
	Fields     []ReviewField `json:"fields"`
	Findings   []Finding     `json:"findings"`
}

// BuildReview assembles the review bundle for one processed document
func BuildReview(source string, set *schema.Set, res *form.ExtractResult) *ReviewBundle {
	b := &ReviewBundle{
		Source:   source,
		Fields:   make([]ReviewField, 0, set.Len()),
		Findings: make([]Finding, 0, len(res.Findings)),
	}
	if len(res.CorrectedPage) > 0 {
		b.PageBase64 = base64.StdEncoding.EncodeToString(res.CorrectedPage)
	}

	for _, field := range set.Fields() {
		rf := ReviewField{
			Name:        field.Name,
			Description: field.Description,
			Type:        string(field.Type),
		}
		if r, ok := res.Results[field.Name]; ok {
			rf.Display = displayValue(r)
			rf.Confidence = string(r.Confidence)
		}
		if crop, ok := res.SubImages[field.Name]; ok {
			rf.ImageBase64 = base64.StdEncoding.EncodeToString(crop)
			if thumb, err := thumbnailPNG(crop, thumbnailMaxWidth); err == nil {
				rf.ThumbnailBase64 = base64.StdEncoding.EncodeToString(thumb)
			}
		}
		b.Fields = append(b.Fields, rf)
	}

	for _, f := range res.Findings {
		b.Findings = append(b.Findings, Finding{
			RuleID:   f.RuleID,
			Severity: f.Severity.String(),
			Message:  f.Message,
			Fields:   f.Fields,
		})
	}
	return b
}

// WriteReview persists the review bundle as indented JSON at path
func WriteReview(path string, b *ReviewBundle) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode review bundle: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create review directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write review bundle: %w", err)
	}
	return nil
}

// thumbnailPNG downscales a PNG crop so wide crops stay readable in review
// tooling. Crops already narrower than maxWidth pass through unchanged.
func thumbnailPNG(pngData []byte, maxWidth int) ([]byte, error) {
	src, err := png.Decode(bytes.NewReader(pngData))
	if err != nil {
		return nil, err
	}

	b := src.Bounds()
	if b.Dx() <= maxWidth {
		return pngData, nil
	}

	h := b.Dy() * maxWidth / b.Dx()
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
