package domain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gooze.dev/pkg/testforge/internal/adapter"
	m "gooze.dev/pkg/testforge/internal/model"
)

// Iteration bounds for the repair loop.
const (
	// MinIterations is the lower clamp bound.
	MinIterations = 1
	// MaxIterationsCap is the upper clamp bound.
	MaxIterationsCap = 10

	// maxIssuesPerPrompt caps how many issues a repair prompt lists.
	maxIssuesPerPrompt = 10
)

// ScoreWeights weight the issue classes of a validation report. Override
// individual fields to tune; zero values mean the class does not count.
type ScoreWeights struct {
	Critical      int
	Compilation   int
	MissingImport int
	UnusedImport  int
}

// DefaultScoreWeights returns the standard weighting.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{Critical: 10, Compilation: 8, MissingImport: 5, UnusedImport: 1}
}

// Score computes the weighted issue score of a report.
func (w ScoreWeights) Score(report m.ValidationReport) int {
	return len(report.CriticalIssues)*w.Critical +
		len(report.CompilationErrors)*w.Compilation +
		len(report.MissingImports)*w.MissingImport +
		len(report.UnusedImports)*w.UnusedImport
}

// ClampIterations bounds a configured iteration limit to the
// [MinIterations, MaxIterationsCap] range.
func ClampIterations(n int) int {
	if n < MinIterations {
		return MinIterations
	}

	if n > MaxIterationsCap {
		return MaxIterationsCap
	}

	return n
}

// betterIteration is the comparator the best-of fold uses: lower score wins,
// the earlier iteration wins ties.
func betterIteration(a, b m.IterationRecord) m.IterationRecord {
	if b.Score < a.Score {
		return b
	}

	return a
}

// BestIteration folds the history down to the winning record.
func BestIteration(records []m.IterationRecord) m.IterationRecord {
	if len(records) == 0 {
		return m.IterationRecord{}
	}

	best := records[0]
	for _, record := range records[1:] {
		best = betterIteration(best, record)
	}

	return best
}

// FixResult is the outcome of a repair loop run.
type FixResult struct {
	Code       string
	Report     m.ValidationReport
	Iterations int
	History    []m.IterationRecord
}

// ValidationFixLoop repairs generated code until validation settles or the
// iteration budget runs out, always returning the best snapshot seen.
type ValidationFixLoop interface {
	Repair(ctx context.Context, code string, unit m.SourceUnit, initial m.ValidationReport) FixResult
}

type fixLoop struct {
	adapter.Generator
	adapter.Validator

	weights       ScoreWeights
	maxIterations int
}

// NewValidationFixLoop creates a ValidationFixLoop with the given iteration
// budget (clamped) and weights.
func NewValidationFixLoop(generator adapter.Generator, validator adapter.Validator, maxIterations int, weights ScoreWeights) ValidationFixLoop {
	return &fixLoop{
		Generator:     generator,
		Validator:     validator,
		weights:       weights,
		maxIterations: ClampIterations(maxIterations),
	}
}

func (f *fixLoop) Repair(ctx context.Context, code string, unit m.SourceUnit, initial m.ValidationReport) FixResult {
	current := code
	report := initial

	history := []m.IterationRecord{{
		Iteration: 0,
		Code:      code,
		Report:    initial,
		Score:     f.weights.Score(initial),
	}}

	iterations := 0

	for iteration := 1; iteration <= f.maxIterations; iteration++ {
		issues := collectIssues(report)
		if len(issues) == 0 {
			slog.Info("repair loop done, no issues left", "class", unit.ClassName, "iterations", iterations)
			break
		}

		slog.Info("repair iteration", "class", unit.ClassName, "iteration", iteration, "issues", len(issues))

		fixed, err := f.Generate(ctx, repairSystemPrompt, buildRepairPrompt(issues, current))
		if err != nil {
			slog.Warn("repair generation failed, keeping best result", "class", unit.ClassName, "iteration", iteration, "error", err)
			break
		}

		current = StripCodeFences(fixed)
		iterations = iteration

		report, err = f.Validate(ctx, current, unit.ClassName)
		if err != nil {
			slog.Warn("revalidation failed, keeping best result", "class", unit.ClassName, "iteration", iteration, "error", err)
			break
		}

		record := m.IterationRecord{
			Iteration: iteration,
			Code:      current,
			Report:    report,
			Score:     f.weights.Score(report),
		}
		history = append(history, record)

		slog.Debug("repair iteration scored",
			"class", unit.ClassName,
			"iteration", iteration,
			"score", record.Score,
			"critical", len(report.CriticalIssues),
			"missing", len(report.MissingImports),
			"compilation", len(report.CompilationErrors),
			"unused", len(report.UnusedImports),
		)

		if report.Status == m.ValidationPass || report.BlockingIssueCount() == 0 {
			break
		}
	}

	best := BestIteration(history)

	return FixResult{
		Code:       best.Code,
		Report:     best.Report,
		Iterations: iterations,
		History:    history,
	}
}

// collectIssues flattens a report into prompt-ready issue lines, ordered by
// weight class.
func collectIssues(report m.ValidationReport) []string {
	issues := make([]string, 0, report.TotalIssueCount())

	for _, issue := range report.CriticalIssues {
		issues = append(issues, "[CRITICAL] "+issue)
	}

	for _, imp := range report.MissingImports {
		issues = append(issues, fmt.Sprintf("[MISSING_IMPORT] Missing import: %s. Add: import %s;", imp, imp))
	}

	for _, compErr := range report.CompilationErrors {
		issues = append(issues, "[COMPILATION] "+compErr)
	}

	for _, imp := range report.UnusedImports {
		issues = append(issues, fmt.Sprintf("[UNUSED_IMPORT] Unused import: %s. Remove it.", imp))
	}

	return issues
}

const repairSystemPrompt = "You are a Java expert. Fix the validation issues in the provided test code. " +
	"For void methods use doNothing().when(mock).method(), never when().thenReturn(). " +
	"Return only the corrected code without explanations."

func buildRepairPrompt(issues []string, code string) string {
	if len(issues) > maxIssuesPerPrompt {
		issues = issues[:maxIssuesPerPrompt]
	}

	var b strings.Builder

	b.WriteString("Fix the following validation issues in this test code.\n\nIssues to fix:\n")

	for i, issue := range issues {
		fmt.Fprintf(&b, "%d. %s\n", i+1, issue)
	}

	b.WriteString("\nCurrent code:\n```java\n")
	b.WriteString(code)
	b.WriteString("\n```\n\n")
	b.WriteString("Instructions:\n")
	b.WriteString("1. Fix all listed issues.\n")
	b.WriteString("2. Add missing imports after the package declaration.\n")
	b.WriteString("3. Remove unused imports.\n")
	b.WriteString("4. Keep the original test logic and structure.\n")
	b.WriteString("5. Return only the corrected code.\n")

	return b.String()
}

// StripCodeFences removes a surrounding markdown code fence from a model
// reply, if present.
func StripCodeFences(reply string) string {
	trimmed := strings.TrimSpace(reply)

	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```java")
	trimmed = strings.TrimPrefix(trimmed, "```kotlin")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")

	return strings.TrimSpace(trimmed)
}
