package schema

// getDefaultFields returns the built-in layout for the glycation survey
// answer sheet. Coordinates are fractions of the page so the same layout
// works at any scan resolution.
func getDefaultFields() []FieldSchema {
	return []FieldSchema{
		{
			Name:        "institution_name",
			Geometry:    Geometry{X: 0.08, Y: 0.035, Width: 0.40, Height: 0.035},
			Type:        FieldTypeFreeText,
			Description: "Medical institution name (header)",
		},
		{
			Name:        "patient_id",
			Geometry:    Geometry{X: 0.62, Y: 0.035, Width: 0.30, Height: 0.035},
			Type:        FieldTypeFreeText,
			Description: "Patient ID (header, handwritten digits)",
		},
		{
			Name:        "q1_family_name",
			Geometry:    Geometry{X: 0.18, Y: 0.095, Width: 0.32, Height: 0.040},
			Type:        FieldTypeFreeText,
			Description: "Q1: family name (katakana)",
		},
		{
			Name:        "q1_given_name",
			Geometry:    Geometry{X: 0.54, Y: 0.095, Width: 0.32, Height: 0.040},
			Type:        FieldTypeFreeText,
			Description: "Q1: given name (katakana)",
		},
		{
			Name:        "q2_era",
			Geometry:    Geometry{X: 0.16, Y: 0.150, Width: 0.14, Height: 0.035},
			Type:        FieldTypeFreeText,
			Description: "Q2: era of birth date (circled)",
		},
		{
			Name:        "q2_year",
			Geometry:    Geometry{X: 0.31, Y: 0.150, Width: 0.08, Height: 0.035},
			Type:        FieldTypeFreeText,
			Description: "Q2: year of birth",
		},
		{
			Name:        "q2_month",
			Geometry:    Geometry{X: 0.41, Y: 0.150, Width: 0.07, Height: 0.035},
			Type:        FieldTypeFreeText,
			Description: "Q2: month of birth",
		},
		{
			Name:        "q2_day",
			Geometry:    Geometry{X: 0.50, Y: 0.150, Width: 0.07, Height: 0.035},
			Type:        FieldTypeFreeText,
			Description: "Q2: day of birth",
		},
		{
			Name:        "q2_qr_response",
			Geometry:    Geometry{X: 0.80, Y: 0.150, Width: 0.030, Height: 0.022},
			Type:        FieldTypeSingleCheckbox,
			Threshold:   0.20,
			Description: "Q2: 'answer via QR code' checkbox",
		},
		{
			Name:        "q2_full_row",
			Geometry:    Geometry{X: 0.06, Y: 0.142, Width: 0.90, Height: 0.050},
			Type:        FieldTypeReviewOnly,
			Description: "Q2: full row crop for reviewer context",
		},
		{
			Name:        "q3_gender",
			Geometry:    Geometry{X: 0.16, Y: 0.205, Width: 0.60, Height: 0.035},
			Type:        FieldTypeFilledBoxChoice,
			Options:     []string{"male", "female", "no_answer"},
			Description: "Q3: gender",
		},
		{
			Name:        "q4_blood_type",
			Geometry:    Geometry{X: 0.16, Y: 0.255, Width: 0.74, Height: 0.035},
			Type:        FieldTypeFilledBoxChoice,
			Options:     []string{"A", "B", "O", "AB", "unknown"},
			Description: "Q4: blood type",
		},
		{
			Name:        "q5_height_cm",
			Geometry:    Geometry{X: 0.18, Y: 0.305, Width: 0.14, Height: 0.035},
			Type:        FieldTypeFreeText,
			Description: "Q5: height in cm",
		},
		{
			Name:        "q5_weight_kg",
			Geometry:    Geometry{X: 0.46, Y: 0.305, Width: 0.14, Height: 0.035},
			Type:        FieldTypeFreeText,
			Description: "Q5: weight in kg",
		},
		{
			Name:        "q6_diabetes_history",
			Geometry:    Geometry{X: 0.16, Y: 0.360, Width: 0.78, Height: 0.035},
			Type:        FieldTypeFilledBoxChoice,
			Options:     []string{"none", "under_5y", "5_to_10y", "over_10y", "unknown"},
			Description: "Q6: diabetes diagnosis history (filled box)",
		},
		{
			Name:        "q7_dyslipidemia_history",
			Geometry:    Geometry{X: 0.16, Y: 0.415, Width: 0.78, Height: 0.035},
			Type:        FieldTypeFilledBoxChoice,
			Options:     []string{"none", "under_5y", "5_to_10y", "over_10y", "unknown"},
			Description: "Q7: dyslipidemia diagnosis history (filled box)",
		},
		{
			Name:        "q8_sibling_diabetes",
			Geometry:    Geometry{X: 0.16, Y: 0.470, Width: 0.54, Height: 0.035},
			Type:        FieldTypeFilledBoxChoice,
			Options:     []string{"yes", "no", "unknown"},
			Description: "Q8: sibling diabetes history",
		},
		{
			Name:        "q9_parent_diabetes",
			Geometry:    Geometry{X: 0.16, Y: 0.520, Width: 0.54, Height: 0.035},
			Type:        FieldTypeFilledBoxChoice,
			Options:     []string{"yes", "no", "unknown"},
			Description: "Q9: parent diabetes history",
		},
		{
			Name:        "q10_no_exercise",
			Geometry:    Geometry{X: 0.16, Y: 0.570, Width: 0.38, Height: 0.035},
			Type:        FieldTypeFilledBoxChoice,
			Options:     []string{"yes", "no"},
			Description: "Q10: no regular exercise",
		},
		{
			Name:        "q11_snack_frequency",
			Geometry:    Geometry{X: 0.16, Y: 0.620, Width: 0.72, Height: 0.035},
			Type:        FieldTypeFilledBoxChoice,
			Options:     []string{"almost_daily", "2_3_per_week", "weekly_or_less"},
			Description: "Q11: snack frequency",
		},
		{
			Name:        "q12_drink_type",
			Geometry:    Geometry{X: 0.16, Y: 0.670, Width: 0.52, Height: 0.035},
			Type:        FieldTypeFilledBoxChoice,
			Options:     []string{"sugared", "unsweetened"},
			Description: "Q12: usual drink type",
		},
		{
			Name:        "q13_alcohol",
			Geometry:    Geometry{X: 0.16, Y: 0.720, Width: 0.40, Height: 0.035},
			Type:        FieldTypeFilledBoxChoice,
			Options:     []string{"drinks", "rarely"},
			Description: "Q13: alcohol habit",
		},
		{
			Name:        "q13_alcohol_detail",
			Geometry:    Geometry{X: 0.16, Y: 0.760, Width: 0.76, Height: 0.045},
			Type:        FieldTypeFreeText,
			Description: "Q13: alcohol detail (free text, only when 'drinks')",
		},
		{
			Name:        "q14_tooth_position",
			Geometry:    Geometry{X: 0.16, Y: 0.825, Width: 0.60, Height: 0.045},
			Type:        FieldTypeFreeText,
			Description: "Q14: extracted tooth position (clinician entry)",
		},
		{
			Name:        "q15_comments",
			Geometry:    Geometry{X: 0.08, Y: 0.890, Width: 0.84, Height: 0.070},
			Type:        FieldTypeFreeText,
			Description: "Q15: comments (clinician entry)",
		},
	}
}

// getDefaultRules returns the built-in consistency rule table
func getDefaultRules() []ValidationRule {
	return []ValidationRule{
		{
			ID:         "qr_birthdate_consistency",
			Trigger:    "q2_qr_response",
			Companions: []string{"q2_era", "q2_year", "q2_month", "q2_day"},
			Severity:   SeverityWarning,
			Message:    "The 'answer via QR code' box is checked but the birth date fields are also filled in.",
		},
	}
}

// DefaultSet returns the built-in form layout. The layout table is data;
// a custom layout loaded with Load replaces it without any engine change.
func DefaultSet() *Set {
	set, err := NewSet(getDefaultFields())
	if err != nil {
		// The built-in table is covered by tests; a duplicate name here is
		// a programming error.
		panic(err)
	}
	return set
}

// DefaultRules returns the built-in consistency rule table
func DefaultRules() []ValidationRule {
	return getDefaultRules()
}
