package model

import (
	"time"

	"github.com/google/uuid"
)

// UnitStatus represents the outcome of synthesizing tests for one unit.
type UnitStatus string

// Available UnitStatus values.
const (
	// UnitGenerated means a new test artifact was written.
	UnitGenerated UnitStatus = "generated"
	// UnitUpToDate means every target method was already covered and
	// nothing was written.
	UnitUpToDate UnitStatus = "up-to-date"
	// UnitSkipped means analysis found nothing to test.
	UnitSkipped UnitStatus = "skipped"
	// UnitFailed means analysis or generation failed for the unit.
	UnitFailed UnitStatus = "failed"
)

// UnitOutcome is the per-unit result row of a synthesis run.
type UnitOutcome struct {
	Source           Path             `yaml:"source"`
	SourceHash       string           `yaml:"source_hash,omitempty"`
	ClassName        string           `yaml:"class"`
	Status           UnitStatus       `yaml:"status"`
	Artifact         Path             `yaml:"artifact,omitempty"`
	MethodsTargeted  int              `yaml:"methods_targeted"`
	MethodsUncovered int              `yaml:"methods_uncovered"`
	Iterations       int              `yaml:"iterations"`
	FinalStatus      ValidationStatus `yaml:"validation,omitempty"`
	Err              string           `yaml:"error,omitempty"`
}

// SynthesisReport aggregates the outcomes of one run.
type SynthesisReport struct {
	SessionID string        `yaml:"session_id"`
	StartedAt time.Time     `yaml:"started_at"`
	Outcomes  []UnitOutcome `yaml:"outcomes"`
}

// NewSynthesisReport creates a report with a fresh session id.
func NewSynthesisReport() SynthesisReport {
	return SynthesisReport{
		SessionID: uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
}
