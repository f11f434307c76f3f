package model

// ValidationStatus is the overall outcome reported by the validator.
type ValidationStatus string

// Available ValidationStatus values.
const (
	// ValidationPass means the code validated cleanly.
	ValidationPass ValidationStatus = "PASS"
	// ValidationWarning means non-blocking issues were found, or the
	// validator response could not be parsed.
	ValidationWarning ValidationStatus = "WARNING"
	// ValidationFail means blocking issues were found.
	ValidationFail ValidationStatus = "FAIL"
	// ValidationError means the validator itself failed hard.
	ValidationError ValidationStatus = "ERROR"
)

// ValidationReport is the structured result of validating generated code.
type ValidationReport struct {
	Status            ValidationStatus `json:"validation_status"`
	CriticalIssues    []string         `json:"critical_issues"`
	MissingImports    []string         `json:"missing_imports"`
	UnusedImports     []string         `json:"unused_imports"`
	CompilationErrors []string         `json:"compilation_errors"`
	Recommendations   []string         `json:"recommendations"`
	Assessment        string           `json:"overall_assessment,omitempty"`
}

// BlockingIssueCount returns the number of issues that keep the repair loop
// going: critical issues, missing imports, and compilation errors. Unused
// imports are cosmetic and do not block.
func (r ValidationReport) BlockingIssueCount() int {
	return len(r.CriticalIssues) + len(r.MissingImports) + len(r.CompilationErrors)
}

// TotalIssueCount returns the number of issues of any weight.
func (r ValidationReport) TotalIssueCount() int {
	return r.BlockingIssueCount() + len(r.UnusedImports)
}

// IterationRecord snapshots one pass of the repair loop.
type IterationRecord struct {
	Iteration int
	Code      string
	Report    ValidationReport
	Score     int
}
