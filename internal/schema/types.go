package schema

// FieldType identifies how a field region is interpreted
type FieldType string

const (
	FieldTypeFreeText        FieldType = "free_text"
	FieldTypeSingleCheckbox  FieldType = "single_checkbox"
	FieldTypeFilledBoxChoice FieldType = "filled_box_choice"
	FieldTypeReviewOnly      FieldType = "review_only"
)

// Geometry describes a field region as fractions of the page size.
// All four values are expected to lie in [0,1]; the region mapper clamps
// the derived pixel rectangle so authoring drift never causes out-of-bounds
// access at any scan resolution.
type Geometry struct {
	X      float64 `yaml:"x" json:"x"`
	Y      float64 `yaml:"y" json:"y"`
	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`
}

// FieldSchema declares a single named field on the form layout
type FieldSchema struct {
	Name        string    `yaml:"name" json:"name"`
	Geometry    Geometry  `yaml:"geometry" json:"geometry"`
	Type        FieldType `yaml:"type" json:"type"`
	Options     []string  `yaml:"options,omitempty" json:"options,omitempty"`
	Threshold   float64   `yaml:"threshold,omitempty" json:"threshold,omitempty"` // 0 means engine default
	Description string    `yaml:"description,omitempty" json:"description,omitempty"`
}

// Severity classifies a consistency finding
type Severity string

const (
	SeverityNone    Severity = "none"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// String returns the severity label used in artifacts and reports
func (s Severity) String() string {
	return string(s)
}

// ValidationRule is a declarative cross-field consistency rule: when the
// trigger field is checked and any companion field holds a non-empty value,
// a finding with the configured severity and message is emitted.
type ValidationRule struct {
	ID         string   `yaml:"id" json:"id"`
	Trigger    string   `yaml:"trigger" json:"trigger"`
	Companions []string `yaml:"companions" json:"companions"`
	Severity   Severity `yaml:"severity" json:"severity"`
	Message    string   `yaml:"message" json:"message"`
}
