package form

import (
	"github.com/fujilab/surveyscan/internal/schema"
)

// EvaluateRules runs the declarative consistency rule table over the
// aggregated field results. A rule fires when its trigger field is checked
// and at least one companion field holds a non-empty value; an unchecked
// trigger never fires regardless of companion state. The rule set is data:
// new skip-pattern or mutual-exclusion checks are added by extending the
// table, not the engine.
func EvaluateRules(rules []schema.ValidationRule, results map[string]MarkResult) []Finding {
	var findings []Finding

	for _, rule := range rules {
		trigger, ok := results[rule.Trigger]
		if !ok || !trigger.Checked() {
			continue
		}

		var filled []string
		for _, name := range rule.Companions {
			if r, ok := results[name]; ok && !r.Empty() {
				filled = append(filled, name)
			}
		}
		if len(filled) == 0 {
			continue
		}

		severity := rule.Severity
		if severity == "" || severity == schema.SeverityNone {
			severity = schema.SeverityWarning
		}
		findings = append(findings, Finding{
			RuleID:   rule.ID,
			Severity: severity,
			Message:  rule.Message,
			Fields:   append([]string{rule.Trigger}, filled...),
		})
	}

	return findings
}
