package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fujilab/surveyscan/internal/schema"
)

func TestEvaluateRules(t *testing.T) {
	rule := schema.ValidationRule{
		ID:         "qr_birthdate_consistency",
		Trigger:    "qr_response",
		Companions: []string{"birth_year", "birth_month"},
		Severity:   schema.SeverityWarning,
		Message:    "QR respondents should leave the birthdate row blank",
	}

	tests := []struct {
		name       string
		results    map[string]MarkResult
		wantCount  int
		wantFields []string
	}{
		{
			name: "trigger checked and companion filled",
			results: map[string]MarkResult{
				"qr_response": {Value: BoolValue(true)},
				"birth_year":  {Value: TextValue("1985")},
			},
			wantCount:  1,
			wantFields: []string{"qr_response", "birth_year"},
		},
		{
			name: "trigger checked and both companions filled",
			results: map[string]MarkResult{
				"qr_response": {Value: BoolValue(true)},
				"birth_year":  {Value: TextValue("1985")},
				"birth_month": {Value: TextValue("11")},
			},
			wantCount:  1,
			wantFields: []string{"qr_response", "birth_year", "birth_month"},
		},
		{
			name: "trigger checked but companions empty",
			results: map[string]MarkResult{
				"qr_response": {Value: BoolValue(true)},
				"birth_year":  {Value: TextValue("")},
			},
			wantCount: 0,
		},
		{
			name: "trigger unchecked never fires",
			results: map[string]MarkResult{
				"qr_response": {Value: BoolValue(false)},
				"birth_year":  {Value: TextValue("1985")},
			},
			wantCount: 0,
		},
		{
			name: "trigger absent never fires",
			results: map[string]MarkResult{
				"birth_year": {Value: TextValue("1985")},
			},
			wantCount: 0,
		},
		{
			name: "trigger without value never fires",
			results: map[string]MarkResult{
				"qr_response": {Confidence: ConfidenceLow},
				"birth_year":  {Value: TextValue("1985")},
			},
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings := EvaluateRules([]schema.ValidationRule{rule}, tt.results)
			require.Len(t, findings, tt.wantCount)
			if tt.wantCount > 0 {
				f := findings[0]
				assert.Equal(t, rule.ID, f.RuleID)
				assert.Equal(t, schema.SeverityWarning, f.Severity)
				assert.Equal(t, rule.Message, f.Message)
				assert.ElementsMatch(t, tt.wantFields, f.Fields)
				assert.Equal(t, rule.Trigger, f.Fields[0], "trigger leads the field list")
			}
		})
	}
}

func TestEvaluateRulesSeverityDefault(t *testing.T) {
	results := map[string]MarkResult{
		"flag":  {Value: BoolValue(true)},
		"extra": {Value: TextValue("x")},
	}

	for _, severity := range []schema.Severity{"", schema.SeverityNone} {
		rule := schema.ValidationRule{
			ID:         "r",
			Trigger:    "flag",
			Companions: []string{"extra"},
			Severity:   severity,
		}
		findings := EvaluateRules([]schema.ValidationRule{rule}, results)
		require.Len(t, findings, 1)
		assert.Equal(t, schema.SeverityWarning, findings[0].Severity)
	}
}

func TestEvaluateRulesMultiple(t *testing.T) {
	rules := []schema.ValidationRule{
		{ID: "first", Trigger: "a", Companions: []string{"b"}, Severity: schema.SeverityWarning},
		{ID: "second", Trigger: "c", Companions: []string{"d"}, Severity: schema.SeverityError},
	}
	results := map[string]MarkResult{
		"a": {Value: BoolValue(true)},
		"b": {Value: TextValue("filled")},
		"c": {Value: BoolValue(true)},
		"d": {Value: ChoiceValue("yes")},
	}

	findings := EvaluateRules(rules, results)
	require.Len(t, findings, 2)
	assert.Equal(t, "first", findings[0].RuleID)
	assert.Equal(t, "second", findings[1].RuleID)
	assert.Equal(t, schema.SeverityError, findings[1].Severity)
}

func TestEvaluateRulesEmptyTable(t *testing.T) {
	assert.Empty(t, EvaluateRules(nil, map[string]MarkResult{"a": {Value: BoolValue(true)}}))
}
