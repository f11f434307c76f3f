package controller

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"
	m "gooze.dev/pkg/testforge/internal/model"
)

// SimpleUI implements UI using cobra Command's output writer.
type SimpleUI struct {
	cmd     *cobra.Command
	verbose bool
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cfg := StartConfig{}
	for _, option := range options {
		option(&cfg)
	}

	s.verbose = cfg.verbose

	return nil
}

// Close finalizes the UI.
func (s *SimpleUI) Close(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
}

// DisplayUnitStarted announces work on a unit.
func (s *SimpleUI) DisplayUnitStarted(ctx context.Context, source m.Path, className string) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("Synthesizing tests for %s (%s)\n", className, source)
}

// DisplayUnitOutcome prints the per-unit result line.
func (s *SimpleUI) DisplayUnitOutcome(ctx context.Context, outcome m.UnitOutcome) {
	if err := ctx.Err(); err != nil {
		return
	}

	switch outcome.Status {
	case m.UnitGenerated:
		s.printf("  %s -> %s (%d uncovered, %d repair iteration(s), %s)\n",
			outcome.ClassName, outcome.Artifact, outcome.MethodsUncovered, outcome.Iterations, outcome.FinalStatus)
	case m.UnitUpToDate:
		s.printf("  %s is up to date\n", outcome.ClassName)
	case m.UnitSkipped:
		s.printf("  %s skipped (nothing to test)\n", outcome.ClassName)
	case m.UnitFailed:
		s.printf("  %s failed: %s\n", outcome.ClassName, outcome.Err)
	}
}

// DisplayRepairDiff prints a unified diff of what the repair loop changed.
// Verbose mode only.
func (s *SimpleUI) DisplayRepairDiff(ctx context.Context, className, before, after string) {
	if err := ctx.Err(); err != nil {
		return
	}

	if !s.verbose || before == after {
		return
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: className + " (generated)",
		ToFile:   className + " (repaired)",
		Context:  2,
	})
	if err != nil {
		return
	}

	s.printf("%s\n", diff)
}

// DisplayAnalysis renders the analyze-only table.
func (s *SimpleUI) DisplayAnalysis(ctx context.Context, units []m.SourceUnit, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	if err != nil {
		s.printf("analysis error: %v\n", err)
		return err
	}

	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Class", "Language", "Methods", "Constructors", "Flags"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_LEFT})

	for _, unit := range units {
		table.Append([]string{
			unit.ClassName,
			string(unit.Language),
			fmt.Sprintf("%d", len(unit.Methods)),
			fmt.Sprintf("%d", len(unit.Constructors)),
			strings.Join(unitFlags(unit), ","),
		})
	}

	table.SetFooter([]string{fmt.Sprintf("Total %d", len(units)), "", "", "", ""})
	table.Render()

	s.printf("\n%s", tableBuffer.String())

	return nil
}

func unitFlags(unit m.SourceUnit) []string {
	flags := make([]string, 0, 4)

	if unit.HasCollections {
		flags = append(flags, "collections")
	}

	if unit.HasIO {
		flags = append(flags, "io")
	}

	if unit.UsesServlet {
		flags = append(flags, "servlet")
	}

	if unit.UsesConcurrency {
		flags = append(flags, "concurrent")
	}

	if unit.ApplicationClass {
		flags = append(flags, "app")
	}

	return flags
}

// DisplaySummary renders the final run table.
func (s *SimpleUI) DisplaySummary(ctx context.Context, report m.SynthesisReport, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	if err != nil {
		s.printf("synthesis error: %v\n", err)
		return err
	}

	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Class", "Status", "Artifact", "Uncovered", "Iterations"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_CENTER})

	generated := 0

	for _, outcome := range report.Outcomes {
		if outcome.Status == m.UnitGenerated {
			generated++
		}

		table.Append([]string{
			outcome.ClassName,
			string(outcome.Status),
			string(outcome.Artifact),
			fmt.Sprintf("%d", outcome.MethodsUncovered),
			fmt.Sprintf("%d", outcome.Iterations),
		})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Session %s", shortSession(report.SessionID)),
		fmt.Sprintf("%d generated", generated),
		"",
		"",
		fmt.Sprintf("%d total", len(report.Outcomes)),
	})
	table.Render()

	s.printf("\n%s", tableBuffer.String())

	return nil
}

func shortSession(sessionID string) string {
	if len(sessionID) > 8 {
		return sessionID[:8]
	}

	return sessionID
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
