package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Set is an immutable collection of field schemas for one form layout.
// A Set is safe to share read-only across concurrently processed documents.
type Set struct {
	fields []FieldSchema
	byName map[string]int
}

// NewSet builds a Set from a slice of field schemas. Duplicate names are
// rejected because the name is the result key for the whole pipeline.
// Per-field geometry/option problems are deliberately NOT rejected here;
// they fail that field alone during extraction.
func NewSet(fields []FieldSchema) (*Set, error) {
	byName := make(map[string]int, len(fields))
	for i, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("field at index %d has no name", i)
		}
		if _, ok := byName[f.Name]; ok {
			return nil, fmt.Errorf("duplicate field name: %s", f.Name)
		}
		byName[f.Name] = i
	}

	copied := make([]FieldSchema, len(fields))
	copy(copied, fields)

	return &Set{fields: copied, byName: byName}, nil
}

// Fields returns the fields in declaration order. The returned slice is a
// copy; callers cannot mutate the Set through it.
func (s *Set) Fields() []FieldSchema {
	out := make([]FieldSchema, len(s.fields))
	copy(out, s.fields)
	return out
}

// Field looks up a field schema by name
func (s *Set) Field(name string) (FieldSchema, bool) {
	i, ok := s.byName[name]
	if !ok {
		return FieldSchema{}, false
	}
	return s.fields[i], true
}

// Len returns the number of fields in the set
func (s *Set) Len() int {
	return len(s.fields)
}

// layoutFile is the on-disk YAML shape for a form layout
type layoutFile struct {
	Fields []FieldSchema `yaml:"fields"`
}

// Load reads a form layout from a YAML file
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout file: %w", err)
	}

	var file layoutFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse layout file %s: %w", path, err)
	}
	if len(file.Fields) == 0 {
		return nil, fmt.Errorf("layout file %s declares no fields", path)
	}

	return NewSet(file.Fields)
}

// rulesFile is the on-disk YAML shape for a validation rule table
type rulesFile struct {
	Rules []ValidationRule `yaml:"rules"`
}

// LoadRules reads a consistency rule table from a YAML file
func LoadRules(path string) ([]ValidationRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var file rulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}

	for i, r := range file.Rules {
		if r.ID == "" {
			return nil, fmt.Errorf("rule at index %d has no id", i)
		}
		if r.Trigger == "" {
			return nil, fmt.Errorf("rule %s has no trigger field", r.ID)
		}
		switch r.Severity {
		case SeverityWarning, SeverityError:
		case "":
			file.Rules[i].Severity = SeverityWarning
		default:
			return nil, fmt.Errorf("rule %s has invalid severity %q", r.ID, r.Severity)
		}
	}

	return file.Rules, nil
}

// IsChoice reports whether the field type selects one of several options
func (t FieldType) IsChoice() bool {
	return t == FieldTypeFilledBoxChoice
}

// Validate checks a single field schema for problems that make the field
// unusable. A failing field is skipped during extraction; it never aborts
// the document.
func (f FieldSchema) Validate() error {
	if f.Geometry.Width <= 0 || f.Geometry.Height <= 0 {
		return fmt.Errorf("field %s: geometry has non-positive size (w=%g h=%g)",
			f.Name, f.Geometry.Width, f.Geometry.Height)
	}
	if f.Type.IsChoice() && len(f.Options) == 0 {
		return fmt.Errorf("field %s: choice field declares no options", f.Name)
	}
	switch f.Type {
	case FieldTypeFreeText, FieldTypeSingleCheckbox, FieldTypeFilledBoxChoice, FieldTypeReviewOnly:
	default:
		return fmt.Errorf("field %s: unknown field type %q", f.Name, f.Type)
	}
	return nil
}
