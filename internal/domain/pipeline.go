package domain

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"
	"gooze.dev/pkg/testforge/internal/adapter"
	"gooze.dev/pkg/testforge/internal/controller"
	m "gooze.dev/pkg/testforge/internal/model"
	"gooze.dev/pkg/testforge/pkg"
)

// SynthArgs holds the parameters for a synthesis run.
type SynthArgs struct {
	Root        m.Path
	OutputDir   m.Path
	ReportsDir  m.Path
	Exclude     []string
	Threads     int
	Incremental bool
	Verbose     bool
}

// AnalyzeArgs holds the parameters for an analysis-only run.
type AnalyzeArgs struct {
	Root    m.Path
	Exclude []string
}

// ViewArgs holds the parameters for displaying a saved report. When Report
// is empty the newest report in ReportsDir is shown.
type ViewArgs struct {
	ReportsDir m.Path
	Report     m.Path
}

// Workflow drives the synthesis pipeline end to end.
type Workflow interface {
	Synthesize(args SynthArgs) error
	Analyze(args AnalyzeArgs) error
	View(args ViewArgs) error
}

type workflow struct {
	adapter.SourceFSAdapter
	adapter.ReportStore
	adapter.Generator
	adapter.Validator
	controller.UI
	CoverageReconciler
	IncrementalVersionManager
	ValidationFixLoop
	ImportRuleEngine

	analyzers []StructuralAnalyzer
}

// NewWorkflow creates a Workflow instance with the provided dependencies.
func NewWorkflow(
	fsAdapter adapter.SourceFSAdapter,
	reportStore adapter.ReportStore,
	generator adapter.Generator,
	validator adapter.Validator,
	ui controller.UI,
	reconciler CoverageReconciler,
	versions IncrementalVersionManager,
	fixLoop ValidationFixLoop,
	importEngine ImportRuleEngine,
	analyzers []StructuralAnalyzer,
) Workflow {
	return &workflow{
		SourceFSAdapter:           fsAdapter,
		ReportStore:               reportStore,
		Generator:                 generator,
		Validator:                 validator,
		UI:                        ui,
		CoverageReconciler:        reconciler,
		IncrementalVersionManager: versions,
		ValidationFixLoop:         fixLoop,
		ImportRuleEngine:          importEngine,
		analyzers:                 analyzers,
	}
}

// Analyze scans sources and displays their structure without generating
// anything.
func (w *workflow) Analyze(args AnalyzeArgs) error {
	ctx := context.Background()

	if err := w.Start(ctx, controller.WithAnalyzeMode()); err != nil {
		slog.Error("failed to start UI", "error", err)
		return err
	}

	defer w.Close(ctx)

	sources, err := w.ListSources(ctx, args.Root, args.Exclude...)
	if err != nil {
		return w.DisplayAnalysis(ctx, nil, fmt.Errorf("list sources: %w", err))
	}

	units := make([]m.SourceUnit, 0, len(sources))

	for _, source := range sources {
		content, err := w.ReadFile(ctx, source)
		if err != nil {
			slog.Warn("skipping unreadable source", "path", source, "error", err)
			continue
		}

		analyzer := AnalyzerFor(source, w.analyzers)
		if analyzer == nil {
			continue
		}

		unit, err := analyzer.Analyze(source, string(content))
		if err != nil {
			slog.Warn("skipping unit after analysis failure", "path", source, "error", err)
			continue
		}

		units = append(units, unit)
	}

	return w.DisplayAnalysis(ctx, units, nil)
}

// View loads a previously saved synthesis report and displays its summary.
func (w *workflow) View(args ViewArgs) error {
	ctx := context.Background()

	if err := w.Start(ctx, controller.WithSynthMode()); err != nil {
		slog.Error("failed to start UI", "error", err)
		return err
	}

	defer w.Close(ctx)

	path := args.Report

	if path == "" {
		reports, err := w.ListReports(args.ReportsDir)
		if err != nil {
			return w.DisplaySummary(ctx, m.SynthesisReport{}, fmt.Errorf("list reports: %w", err))
		}

		if len(reports) == 0 {
			return w.DisplaySummary(ctx, m.SynthesisReport{}, fmt.Errorf("no reports found in %s", args.ReportsDir))
		}

		path = reports[len(reports)-1]
	}

	report, err := w.LoadReport(path)
	if err != nil {
		return w.DisplaySummary(ctx, m.SynthesisReport{}, err)
	}

	return w.DisplaySummary(ctx, report, nil)
}

// Synthesize runs the full pipeline: analyze, generate, reconcile, version,
// repair, write. Unit failures never abort the batch.
func (w *workflow) Synthesize(args SynthArgs) error {
	ctx := context.Background()

	startOptions := []controller.StartOption{controller.WithSynthMode()}
	if args.Verbose {
		startOptions = append(startOptions, controller.WithVerbose())
	}

	if err := w.Start(ctx, startOptions...); err != nil {
		slog.Error("failed to start UI", "error", err)
		return err
	}

	defer w.Close(ctx)

	sources, err := w.ListSources(ctx, args.Root, args.Exclude...)
	if err != nil {
		return w.DisplaySummary(ctx, m.SynthesisReport{}, fmt.Errorf("list sources: %w", err))
	}

	report := m.NewSynthesisReport()

	slog.Info("starting synthesis run",
		"session", report.SessionID,
		"sources", len(sources),
		"threads", args.Threads,
		"incremental", args.Incremental,
	)

	// Outcomes spill to disk so large batches never hold every generated
	// artifact in memory at once.
	outcomes, err := pkg.NewFileSpill[m.UnitOutcome]("")
	if err != nil {
		return fmt.Errorf("create outcome spill: %w", err)
	}

	defer func() {
		_ = outcomes.Close()
	}()

	threads := args.Threads
	if threads <= 0 {
		threads = 1
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(threads)

	for _, source := range sources {
		currentSource := source

		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			outcome := w.processUnit(groupCtx, args, currentSource)
			w.DisplayUnitOutcome(groupCtx, outcome)

			return outcomes.Append(outcome)
		})
	}

	if err := group.Wait(); err != nil {
		return w.DisplaySummary(ctx, report, err)
	}

	if err := outcomes.Range(func(_ uint64, outcome m.UnitOutcome) error {
		report.Outcomes = append(report.Outcomes, outcome)
		return nil
	}); err != nil {
		return fmt.Errorf("collect outcomes: %w", err)
	}

	sort.Slice(report.Outcomes, func(i, j int) bool {
		return report.Outcomes[i].Source < report.Outcomes[j].Source
	})

	if args.ReportsDir != "" {
		path, err := w.SaveReport(args.ReportsDir, report)
		if err != nil {
			slog.Error("failed to save report", "error", err)
		} else {
			slog.Info("saved synthesis report", "path", path)
		}
	}

	return w.DisplaySummary(ctx, report, nil)
}

// processUnit runs the per-unit pipeline. Failures are captured in the
// outcome; only context cancellation propagates.
func (w *workflow) processUnit(ctx context.Context, args SynthArgs, source m.Path) m.UnitOutcome {
	outcome := m.UnitOutcome{Source: source}

	content, err := w.ReadFile(ctx, source)
	if err != nil {
		outcome.Status = m.UnitFailed
		outcome.Err = fmt.Sprintf("read source: %v", err)

		return outcome
	}

	if hash, hashErr := w.HashFile(ctx, source); hashErr == nil {
		outcome.SourceHash = hash
	}

	analyzer := AnalyzerFor(source, w.analyzers)
	if analyzer == nil {
		outcome.Status = m.UnitSkipped
		return outcome
	}

	unit, err := analyzer.Analyze(source, string(content))
	if err != nil {
		slog.Warn("analysis failed, skipping unit", "path", source, "error", err)

		outcome.Status = m.UnitFailed
		outcome.Err = err.Error()

		return outcome
	}

	outcome.ClassName = unit.ClassName
	outcome.MethodsTargeted = len(unit.Methods)

	if len(unit.Methods) == 0 {
		slog.Info("no testable methods, skipping unit", "class", unit.ClassName)

		outcome.Status = m.UnitSkipped

		return outcome
	}

	w.DisplayUnitStarted(ctx, source, unit.ClassName)

	basePath, err := w.TestBasePath(source, args.Root, args.OutputDir)
	if err != nil {
		outcome.Status = m.UnitFailed
		outcome.Err = err.Error()

		return outcome
	}

	var versions []m.TestArtifactVersion

	targets := unit.Methods

	if args.Incremental {
		versions, err = w.ScanVersions(ctx, basePath)
		if err != nil {
			outcome.Status = m.UnitFailed
			outcome.Err = err.Error()

			return outcome
		}

		if len(versions) > 0 {
			targets = w.Uncovered(unit.Methods, CoveredTestMethods(versions))
			if len(targets) == 0 {
				slog.Info("all methods covered, nothing to do", "class", unit.ClassName)

				outcome.Status = m.UnitUpToDate

				return outcome
			}
		}
	}

	outcome.MethodsUncovered = len(targets)

	generated, err := w.generateUnit(ctx, unit, targets)
	if err != nil {
		genErr := &GenerationError{Unit: source, Err: err}
		slog.Warn("generation failed, aborting unit", "class", unit.ClassName, "error", err)

		outcome.Status = m.UnitFailed
		outcome.Err = genErr.Error()

		return outcome
	}

	validation, err := w.Validate(ctx, generated, unit.ClassName)
	if err != nil {
		// Validator failures degrade; generated code still ships.
		slog.Warn("validation unavailable, degrading to WARNING", "class", unit.ClassName, "error", err)
		validation = m.ValidationReport{Status: m.ValidationWarning}
	}

	fixed := w.Repair(ctx, generated, unit, validation)
	w.DisplayRepairDiff(ctx, unit.ClassName, generated, fixed.Code)

	outcome.Iterations = fixed.Iterations
	outcome.FinalStatus = fixed.Report.Status

	artifact, status, err := w.writeArtifact(ctx, basePath, versions, fixed.Code)
	if err != nil {
		outcome.Status = m.UnitFailed
		outcome.Err = err.Error()

		return outcome
	}

	outcome.Status = status
	outcome.Artifact = artifact

	return outcome
}

func (w *workflow) generateUnit(ctx context.Context, unit m.SourceUnit, targets []m.MethodSignature) (string, error) {
	strategy := BuildTestStrategy(unit, targets)
	imports := FilterConflicting(w.Detect(unit.Content), unit.ApplicationClasses)

	prompt := BuildGenerationPrompt(unit, targets, strategy, imports)

	code, err := w.Generate(ctx, generationSystemPrompt, prompt)
	if err != nil {
		return "", err
	}

	code = StripCodeFences(code)
	if code == "" {
		return "", fmt.Errorf("generator returned empty code")
	}

	return code, nil
}

// writeArtifact decides between the fresh-artifact and the incremental path.
// With prior versions, only the test methods they do not already define
// survive into the next numbered file.
func (w *workflow) writeArtifact(ctx context.Context, basePath m.Path, versions []m.TestArtifactVersion, code string) (m.Path, m.UnitStatus, error) {
	if len(versions) == 0 {
		if err := w.WriteFile(ctx, basePath, []byte(code)); err != nil {
			return "", m.UnitFailed, fmt.Errorf("write test artifact: %w", err)
		}

		return basePath, m.UnitGenerated, nil
	}

	existing := CoveredTestMethods(versions)
	newMethods := w.ExtractTestMethods(code)
	uncoveredNew := w.UncoveredTestMethods(newMethods, existing)

	if len(uncoveredNew) == 0 {
		slog.Info("generated tests already covered by existing artifacts", "base", basePath)
		return "", m.UnitUpToDate, nil
	}

	nextPath := w.NextVersionPath(basePath, versions)

	filtered := FilterForUncovered(code, uncoveredNew)
	filtered = RenameTestClass(filtered, nextPath)

	if err := w.WriteFile(ctx, nextPath, []byte(filtered)); err != nil {
		return "", m.UnitFailed, fmt.Errorf("write incremental artifact: %w", err)
	}

	return nextPath, m.UnitGenerated, nil
}
