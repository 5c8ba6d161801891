package descriptions

// Comprehensive tool descriptions with practical examples and use cases

const (
	SurveyProcessFileDescription = `Digitize one scanned survey form into structured field values.

**When to use:** You have a single scanned survey (PDF, PNG, or JPEG) and need its checkbox, multiple-choice, and free-text answers as data.

**Why it's useful:** Runs the full pipeline in one call: skew correction, field region extraction, mark detection, handwriting recognition, and consistency validation.

**Examples:**
• Single intake: "Process /scans/patient-0042.pdf and return the detected answers"
• Spot check: "Digitize survey-photo.jpg and show which fields came back low confidence"
• Rule audit: "Process form.pdf and list any consistency findings"

**Common workflows:**
1. Review Queue: Process file → Inspect low-confidence fields → Correct manually → Store
2. Data Entry Replacement: Process file → Validate findings → Export field values
3. Quality Sampling: Process a handful of scans → Compare against paper originals

**Best practices:** Check each field's confidence tier; low-confidence and review-only fields should go to a human reviewer.`

	SurveyScanDirectoryDescription = `Discover scanned survey documents waiting to be processed.

**When to use:** You want to see which PDFs and images are in the scan directory before processing them.

**Why it's useful:** Lists every supported document with its size and page count, so batch runs can be planned and bad files spotted early.

**Examples:**
• Batch planning: "List the scans in /incoming/ to see how large tonight's run is"
• Sanity check: "Confirm the scanner dropped all 30 forms into the watch directory"
• Triage: "Find unusually small files that may be failed scans"

**Common workflows:**
1. Batch Processing: Scan directory → Process each document → Collect artifacts
2. Intake Monitoring: Scan directory → Compare against expected count → Alert on gaps
3. Cleanup: Scan directory → Identify unsupported files → Move them aside

**Best practices:** Run before batch processing; documents with zero pages or tiny sizes usually indicate scanner problems.`

	SurveySchemaInfoDescription = `Inspect the active form layout and consistency rules.

**When to use:** You need to know which fields the engine will look for, where they sit on the page, and which cross-field rules apply.

**Why it's useful:** Makes the declarative layout visible without reading YAML, so detection results can be interpreted against the exact field definitions in force.

**Examples:**
• Field lookup: "What options does q4_blood_type offer and what is its threshold?"
• Layout debugging: "Show the fractional geometry of q2_qr_response to check a misaligned crop"
• Rule review: "List the consistency rules and their trigger fields"

**Common workflows:**
1. Result Interpretation: Get schema info → Match field types to results → Explain confidences
2. Layout Tuning: Inspect geometry → Adjust the YAML layout → Reprocess a sample
3. Rule Authoring: Review existing rules → Add new trigger/companion pairs

**Best practices:** Consult before changing thresholds; field-level overrides beat engine defaults.`

	SurveyServerInfoDescription = `Get real-time server status, available tools, and system capabilities.

**When to use:** Starting work with the survey server, troubleshooting issues, or checking available functionality.

**Why it's useful:** Provides complete overview of server capabilities, current configuration, scan directory contents, and whether handwriting recognition is enabled.

**Examples:**
• System check: "Verify the server is ready before a batch run"
• Troubleshooting: "Check server info to diagnose why scans aren't being found"
• Capability discovery: "See whether Document AI recognition is configured"

**Common workflows:**
1. Session Startup: Check server info → Verify capabilities → Plan processing approach
2. Debugging: Review server status → Check directory paths → Verify tool availability
3. Planning: Review available tools → Choose appropriate methods → Execute workflow

**Best practices:** Run at start of sessions; recognition being disabled means free-text fields come back empty at low confidence.`
)

// ToolDescriptions maps tool names to their comprehensive descriptions
var ToolDescriptions = map[string]string{
	"survey_process_file":   SurveyProcessFileDescription,
	"survey_scan_directory": SurveyScanDirectoryDescription,
	"survey_schema_info":    SurveySchemaInfoDescription,
	"survey_server_info":    SurveyServerInfoDescription,
}

// GetToolDescription returns the comprehensive description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns a list of all available tool names
func GetAllToolNames() []string {
	var names []string
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	return names
}
