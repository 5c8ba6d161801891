// Package artifact persists the outputs of an extraction run: a JSON record
// of every field decision, the cropped field images, and a self-contained
// review bundle for manual verification.
package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fujilab/surveyscan/internal/form"
	"github.com/fujilab/surveyscan/internal/schema"
)

// FieldRecord is one field's decision in the run artifact
type FieldRecord struct {
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	Value      any     `json:"value"`
	Display    string  `json:"display,omitempty"`
	Confidence string  `json:"confidence"`
	FillRatio  float64 `json:"fill_ratio,omitempty"`
}

// Finding mirrors a consistency finding in the artifact
type Finding struct {
	RuleID   string   `json:"rule_id"`
	Severity string   `json:"severity"`
	Message  string   `json:"message"`
	Fields   []string `json:"fields"`
}

// RunArtifact is the durable JSON record of one document's extraction
type RunArtifact struct {
	Source        string            `json:"source"`
	GeneratedAt   time.Time         `json:"generated_at"`
	SkewAngle     float64           `json:"skew_angle_deg"`
	Fields        []FieldRecord     `json:"fields"`
	Findings      []Finding         `json:"findings"`
	SkippedFields map[string]string `json:"skipped_fields,omitempty"`
}

// Build assembles the run artifact for one processed document. Fields appear
// in schema order so artifacts diff cleanly across runs.
func Build(source string, set *schema.Set, res *form.ExtractResult) *RunArtifact {
	a := &RunArtifact{
		Source:        source,
		GeneratedAt:   time.Now().UTC(),
		SkewAngle:     res.SkewAngle,
		Fields:        make([]FieldRecord, 0, len(res.Results)),
		Findings:      make([]Finding, 0, len(res.Findings)),
		SkippedFields: res.SkippedFields,
	}

	for _, field := range set.Fields() {
		r, ok := res.Results[field.Name]
		if !ok {
			continue
		}
		a.Fields = append(a.Fields, FieldRecord{
			Name:       field.Name,
			Type:       string(field.Type),
			Value:      recordValue(r),
			Display:    displayValue(r),
			Confidence: string(r.Confidence),
			FillRatio:  r.FillRatio,
		})
	}

	for _, f := range res.Findings {
		a.Findings = append(a.Findings, Finding{
			RuleID:   f.RuleID,
			Severity: f.Severity.String(),
			Message:  f.Message,
			Fields:   f.Fields,
		})
	}
	return a
}

// recordValue renders a detection value into its JSON-native form
func recordValue(r form.MarkResult) any {
	switch v := r.Value.(type) {
	case form.BoolValue:
		return bool(v)
	case form.ChoiceValue:
		return string(v)
	case form.TextValue:
		return string(v)
	default:
		return nil
	}
}

func displayValue(r form.MarkResult) string {
	if r.Value == nil {
		return ""
	}
	return r.Value.Display()
}

// Write persists the artifact as indented JSON at path
func Write(path string, a *RunArtifact) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode artifact: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	return nil
}

// WriteSubImages saves every field crop as <field>.png under dir
func WriteSubImages(dir string, subImages map[string][]byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create crop directory: %w", err)
	}

	names := make([]string, 0, len(subImages))
	for name := range subImages {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(dir, name+".png")
		if err := os.WriteFile(path, subImages[name], 0o644); err != nil {
			return fmt.Errorf("failed to write crop %s: %w", name, err)
		}
	}
	return nil
}
