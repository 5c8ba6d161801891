// Package recognize provides handwriting recognition backends for free-text
// survey fields. The production backend sends field crops to Google Document
// AI; a deterministic stub backs tests and offline runs.
package recognize

import (
	"context"
	"fmt"
	"strings"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"

	"github.com/fujilab/surveyscan/internal/form"
	"github.com/fujilab/surveyscan/internal/schema"
)

// DocumentAIConfig identifies the Document AI processor to call
type DocumentAIConfig struct {
	ProjectID       string
	Location        string
	ProcessorID     string
	CredentialsFile string
}

// Validate checks that all processor coordinates are present
func (c DocumentAIConfig) Validate() error {
	if c.ProjectID == "" {
		return fmt.Errorf("documentai project ID is required")
	}
	if c.Location == "" {
		return fmt.Errorf("documentai location is required")
	}
	if c.ProcessorID == "" {
		return fmt.Errorf("documentai processor ID is required")
	}
	return nil
}

func (c DocumentAIConfig) processorName() string {
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s",
		c.ProjectID, c.Location, c.ProcessorID)
}

// DocumentAI recognizes handwriting by sending field crops to a Google
// Document AI OCR processor. It implements form.Recognizer.
type DocumentAI struct {
	client *documentai.DocumentProcessorClient
	name   string
}

// NewDocumentAI dials the regional Document AI endpoint for the configured
// processor. Close the returned recognizer when processing is done.
func NewDocumentAI(ctx context.Context, cfg DocumentAIConfig) (*DocumentAI, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", cfg.Location)
	opts := []option.ClientOption{option.WithEndpoint(endpoint)}
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := documentai.NewDocumentProcessorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Document AI client: %w", err)
	}

	return &DocumentAI{
		client: client,
		name:   cfg.processorName(),
	}, nil
}

// Close releases the underlying gRPC connection
func (d *DocumentAI) Close() error {
	return d.client.Close()
}

// Recognize sends one PNG field crop through the processor and returns the
// transcribed text. Recognized text carries high confidence; an empty
// transcription comes back as a low-confidence blank.
func (d *DocumentAI) Recognize(ctx context.Context, pngData []byte, field schema.FieldSchema) (form.Recognized, error) {
	req := &documentaipb.ProcessRequest{
		Name: d.name,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  pngData,
				MimeType: "image/png",
			},
		},
		SkipHumanReview: true,
	}

	resp, err := d.client.ProcessDocument(ctx, req)
	if err != nil {
		return form.Recognized{}, fmt.Errorf("failed to process %s crop: %w", field.Name, err)
	}

	text := strings.TrimSpace(resp.GetDocument().GetText())
	if text == "" {
		return form.Recognized{Confidence: form.ConfidenceLow}, nil
	}
	return form.Recognized{Value: text, Confidence: form.ConfidenceHigh}, nil
}
