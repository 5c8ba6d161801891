// Package raster turns incoming documents into page rasters the extraction
// pipeline can work on. Plain image files decode directly; PDF scans have
// their embedded page image pulled out with pdfcpu.
package raster

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/fujilab/surveyscan/internal/form"
)

// SupportedExtensions lists the document types a scan directory walk accepts
var SupportedExtensions = []string{".pdf", ".png", ".jpg", ".jpeg"}

// Info summarizes a source document before extraction runs
type Info struct {
	Path      string `json:"path"`
	SizeBytes int64  `json:"size_bytes"`
	PageCount int    `json:"page_count"`
	IsPDF     bool   `json:"is_pdf"`
}

// Supported reports whether the path has a loadable document extension
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range SupportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// Stat inspects a document without rendering it. PDFs are opened structurally
// to obtain the page count; plain images always report one page.
func Stat(path string) (Info, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return Info{}, form.NewInputError(fmt.Sprintf("cannot stat %s", path), err)
	}

	info := Info{
		Path:      path,
		SizeBytes: fi.Size(),
		PageCount: 1,
	}
	if strings.ToLower(filepath.Ext(path)) != ".pdf" {
		return info, nil
	}

	info.IsPDF = true
	f, reader, err := pdf.Open(path)
	if err != nil {
		return Info{}, form.NewInputError(fmt.Sprintf("cannot open PDF %s", path), err)
	}
	defer f.Close()
	info.PageCount = reader.NumPage()
	return info, nil
}

// Load decodes the first page of a document into a raster image. A scanned
// PDF is expected to carry its page as one embedded image; the largest image
// on the first page wins when there are several.
func Load(path string) (image.Image, error) {
	if !Supported(path) {
		return nil, form.NewInputError(fmt.Sprintf("unsupported document type: %s", filepath.Ext(path)), nil)
	}
	if strings.ToLower(filepath.Ext(path)) == ".pdf" {
		return loadPDFPage(path)
	}
	return loadImageFile(path)
}

func loadImageFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, form.NewInputError(fmt.Sprintf("cannot open %s", path), err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, form.NewInputError(fmt.Sprintf("cannot decode %s", path), err)
	}
	return img, nil
}

// loadPDFPage validates the PDF, then extracts the embedded images of page 1
// into a scratch directory and decodes the largest one.
func loadPDFPage(path string) (image.Image, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	f, err := os.Open(path)
	if err != nil {
		return nil, form.NewInputError(fmt.Sprintf("cannot open %s", path), err)
	}
	ctx, err := api.ReadContext(f, conf)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, form.NewInputError(fmt.Sprintf("invalid PDF %s", path), err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, form.NewInputError(fmt.Sprintf("invalid PDF %s", path), err)
	}
	if ctx.PageCount < 1 {
		return nil, form.NewInputError(fmt.Sprintf("PDF has no pages: %s", path), nil)
	}

	outDir, err := os.MkdirTemp("", "surveyscan-raster-")
	if err != nil {
		return nil, form.NewInputError("cannot create scratch directory", err)
	}
	defer os.RemoveAll(outDir)

	if err := api.ExtractImagesFile(path, outDir, []string{"1"}, conf); err != nil {
		return nil, form.NewInputError(fmt.Sprintf("cannot extract page image from %s", path), err)
	}

	img, err := largestImage(outDir)
	if err != nil {
		return nil, form.NewInputError(fmt.Sprintf("no usable page image in %s", path), err)
	}
	return img, nil
}

func largestImage(dir string) (image.Image, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var best image.Image
	bestArea := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		f, err := os.Open(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		img, _, err := image.Decode(f)
		f.Close()
		if err != nil {
			continue
		}
		if area := img.Bounds().Dx() * img.Bounds().Dy(); area > bestArea {
			best, bestArea = img, area
		}
	}
	if best == nil {
		return nil, fmt.Errorf("no decodable images extracted")
	}
	return best, nil
}

// ScanDirectory lists supported documents directly under dir, sorted by the
// directory's natural order.
func ScanDirectory(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, form.NewInputError(fmt.Sprintf("cannot read directory %s", dir), err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		p := filepath.Join(dir, entry.Name())
		if Supported(p) {
			paths = append(paths, p)
		}
	}
	return paths, nil
}
