package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fujilab/surveyscan/internal/artifact"
	"github.com/fujilab/surveyscan/internal/form"
	"github.com/fujilab/surveyscan/internal/raster"
	"github.com/fujilab/surveyscan/internal/schema"
)

var (
	outDir       = flag.String("out", "out", "Directory for extraction artifacts")
	schemaFile   = flag.String("schema", "", "YAML form layout file (built-in layout if empty)")
	rulesFile    = flag.String("rules", "", "YAML consistency rule file (built-in rules if empty)")
	writeCrops   = flag.Bool("crops", false, "Also write per-field crop images")
	writeReview  = flag.Bool("review", false, "Also write self-contained review bundles")
	outputFormat = flag.String("format", "text", "Summary output format: text, json")
	help         = flag.Bool("help", false, "Show help message")
)

// DocumentResult summarizes one document's run for the batch report
type DocumentResult struct {
	Source       string  `json:"source"`
	Success      bool    `json:"success"`
	SkewAngle    float64 `json:"skew_angle_deg,omitempty"`
	FieldCount   int     `json:"field_count"`
	FindingCount int     `json:"finding_count"`
	SkippedCount int     `json:"skipped_count"`
	ArtifactPath string  `json:"artifact_path,omitempty"`
	Error        string  `json:"error,omitempty"`
}

// BatchResult is the whole run's report
type BatchResult struct {
	Directory string           `json:"directory"`
	Started   time.Time        `json:"started"`
	Elapsed   string           `json:"elapsed"`
	Processed int              `json:"processed"`
	Failed    int              `json:"failed"`
	Documents []DocumentResult `json:"documents"`
}

func main() {
	flag.Parse()

	if *help {
		printHelp()
		return
	}

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "Error: scan directory required\n\n")
		printUsage()
		os.Exit(1)
	}

	scanDir := flag.Arg(0)
	if _, err := os.Stat(scanDir); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error: directory not found: %s\n", scanDir)
		os.Exit(1)
	}

	set, rules, err := loadLayout()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	result, err := processDirectory(context.Background(), scanDir, set, rules)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error processing directory: %v\n", err)
		os.Exit(1)
	}

	if err := outputResults(result); err != nil {
		fmt.Fprintf(os.Stderr, "Error outputting results: %v\n", err)
		os.Exit(1)
	}

	if result.Failed > 0 {
		os.Exit(1)
	}
}

func loadLayout() (*schema.Set, []schema.ValidationRule, error) {
	set := schema.DefaultSet()
	rules := schema.DefaultRules()

	if *schemaFile != "" {
		loaded, err := schema.Load(*schemaFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load form layout: %w", err)
		}
		set = loaded
	}
	if *rulesFile != "" {
		loaded, err := schema.LoadRules(*rulesFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load rule table: %w", err)
		}
		rules = loaded
	}
	return set, rules, nil
}

// processDirectory runs every supported document through the extraction
// pipeline. A document that fails is recorded and the batch moves on.
func processDirectory(ctx context.Context, scanDir string, set *schema.Set, rules []schema.ValidationRule) (*BatchResult, error) {
	paths, err := raster.ScanDirectory(scanDir)
	if err != nil {
		return nil, err
	}

	svc := form.NewService(nil)
	result := &BatchResult{
		Directory: scanDir,
		Started:   time.Now().UTC(),
	}

	for _, path := range paths {
		doc := processDocument(ctx, svc, path, set, rules)
		if doc.Success {
			result.Processed++
		} else {
			result.Failed++
		}
		result.Documents = append(result.Documents, doc)
	}

	result.Elapsed = time.Since(result.Started).Round(time.Millisecond).String()
	return result, nil
}

func processDocument(ctx context.Context, svc *form.Service, path string, set *schema.Set, rules []schema.ValidationRule) DocumentResult {
	doc := DocumentResult{Source: path}

	img, err := raster.Load(path)
	if err != nil {
		doc.Error = err.Error()
		return doc
	}

	res, err := svc.Extract(ctx, img, set, rules)
	if err != nil {
		doc.Error = err.Error()
		return doc
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	artifactPath := filepath.Join(*outDir, stem+".json")
	if err := artifact.Write(artifactPath, artifact.Build(path, set, res)); err != nil {
		doc.Error = err.Error()
		return doc
	}

	if *writeCrops {
		if err := artifact.WriteSubImages(filepath.Join(*outDir, stem), res.SubImages); err != nil {
			doc.Error = err.Error()
			return doc
		}
	}
	if *writeReview {
		reviewPath := filepath.Join(*outDir, stem+".review.json")
		if err := artifact.WriteReview(reviewPath, artifact.BuildReview(path, set, res)); err != nil {
			doc.Error = err.Error()
			return doc
		}
	}

	doc.Success = true
	doc.SkewAngle = res.SkewAngle
	doc.FieldCount = len(res.Results)
	doc.FindingCount = len(res.Findings)
	doc.SkippedCount = len(res.SkippedFields)
	doc.ArtifactPath = artifactPath
	return doc
}

func outputResults(result *BatchResult) error {
	switch *outputFormat {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	case "text":
		return outputText(result)
	default:
		return fmt.Errorf("unsupported output format: %s", *outputFormat)
	}
}

func outputText(result *BatchResult) error {
	fmt.Printf("Batch extraction: %s\n", result.Directory)
	fmt.Printf("Processed: %d  Failed: %d  Elapsed: %s\n\n", result.Processed, result.Failed, result.Elapsed)

	for i, doc := range result.Documents {
		fmt.Printf("[%d] %s\n", i+1, filepath.Base(doc.Source))
		if !doc.Success {
			fmt.Printf("    ❌ %s\n\n", doc.Error)
			continue
		}
		fmt.Printf("    Skew: %.2f°  Fields: %d  Findings: %d", doc.SkewAngle, doc.FieldCount, doc.FindingCount)
		if doc.SkippedCount > 0 {
			fmt.Printf("  Skipped: %d", doc.SkippedCount)
		}
		fmt.Println()
		fmt.Printf("    Artifact: %s\n\n", doc.ArtifactPath)
	}

	return nil
}

func printHelp() {
	fmt.Println("Batch Process - digitize a directory of scanned survey forms")
	fmt.Println()
	fmt.Println("Runs every supported document (PDF, PNG, JPEG) in a directory through")
	fmt.Println("skew correction, mark detection, and consistency validation, writing one")
	fmt.Println("JSON artifact per document. A bad document is reported and skipped; it")
	fmt.Println("never stops the batch.")
	fmt.Println()
	printUsage()
	fmt.Println()
	fmt.Println("OPTIONS:")
	fmt.Println("  -out       Directory for extraction artifacts (default: out)")
	fmt.Println("  -schema    YAML form layout file (built-in layout if empty)")
	fmt.Println("  -rules     YAML consistency rule file (built-in rules if empty)")
	fmt.Println("  -crops     Also write per-field crop images")
	fmt.Println("  -review    Also write self-contained review bundles")
	fmt.Println("  -format    Summary output format: text (default), json")
	fmt.Println("  -help      Show this help message")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  batch_process /scans/incoming")
	fmt.Println("  batch_process -out /data/artifacts -review /scans/incoming")
	fmt.Println("  batch_process -schema layout.yaml -rules rules.yaml -format json /scans")
}

func printUsage() {
	fmt.Println("USAGE:")
	fmt.Println("  batch_process [OPTIONS] <scan_directory>")
}

func init() {
	// Custom flag usage
	flag.Usage = func() {
		printHelp()
	}
}
