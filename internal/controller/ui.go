// Package controller provides output adapters for displaying synthesis results.
package controller

import (
	"context"

	m "gooze.dev/pkg/testforge/internal/model"
)

// StartMode defines the mode of operation for the UI.
type StartMode int

// Available StartMode values.
const (
	ModeSynth StartMode = iota
	ModeAnalyze
)

// StartOption is a functional option for Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	mode    StartMode
	verbose bool
}

// WithSynthMode sets the UI to synthesis mode.
func WithSynthMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeSynth
	}
}

// WithAnalyzeMode sets the UI to analysis-only mode.
func WithAnalyzeMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeAnalyze
	}
}

// WithVerbose enables extra output such as repair diffs.
func WithVerbose() StartOption {
	return func(c *StartConfig) {
		c.verbose = true
	}
}

// UI defines the interface for displaying synthesis progress and results.
// Implementations can use different output methods.
type UI interface {
	Start(ctx context.Context, options ...StartOption) error
	Close(ctx context.Context)
	DisplayUnitStarted(ctx context.Context, source m.Path, className string)
	DisplayUnitOutcome(ctx context.Context, outcome m.UnitOutcome)
	DisplayRepairDiff(ctx context.Context, className, before, after string)
	DisplayAnalysis(ctx context.Context, units []m.SourceUnit, err error) error
	DisplaySummary(ctx context.Context, report m.SynthesisReport, err error) error
}
