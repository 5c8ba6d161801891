package recognize

import (
	"context"

	"github.com/fujilab/surveyscan/internal/form"
	"github.com/fujilab/surveyscan/internal/schema"
)

// Stub is an offline recognizer that returns canned transcriptions keyed by
// field name. Fields without an entry come back as low-confidence blanks.
type Stub struct {
	Transcriptions map[string]string
	Err            error
}

// NewStub creates an offline recognizer with the given canned readings
func NewStub(transcriptions map[string]string) *Stub {
	return &Stub{Transcriptions: transcriptions}
}

// Recognize returns the canned transcription for the field, if any
func (s *Stub) Recognize(_ context.Context, _ []byte, field schema.FieldSchema) (form.Recognized, error) {
	if s.Err != nil {
		return form.Recognized{}, s.Err
	}
	if text, ok := s.Transcriptions[field.Name]; ok && text != "" {
		return form.Recognized{Value: text, Confidence: form.ConfidenceHigh}, nil
	}
	return form.Recognized{Confidence: form.ConfidenceLow}, nil
}
