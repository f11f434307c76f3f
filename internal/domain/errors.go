// Package domain contains the core test synthesis workflow and logic.
package domain

import (
	"fmt"

	m "gooze.dev/pkg/testforge/internal/model"
)

// AnalysisError means a source unit could not be analyzed. The unit is
// skipped; the batch continues.
type AnalysisError struct {
	Unit m.Path
	Err  error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analyze %s: %v", e.Unit, e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// GenerationError means the generator failed for a unit. The unit is
// aborted; the batch continues.
type GenerationError struct {
	Unit m.Path
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate tests for %s: %v", e.Unit, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// ReconciliationAmbiguity is informational: more than one existing test
// matched a declared method. The first match is kept.
type ReconciliationAmbiguity struct {
	Method  string
	Matches []string
}

func (e *ReconciliationAmbiguity) Error() string {
	return fmt.Sprintf("method %s matched %d existing tests", e.Method, len(e.Matches))
}
