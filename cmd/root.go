// Package cmd provides the root command and CLI setup for testforge.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gooze.dev/pkg/testforge/internal/adapter"
	"gooze.dev/pkg/testforge/internal/controller"
	"gooze.dev/pkg/testforge/internal/domain"
	m "gooze.dev/pkg/testforge/internal/model"
)

var fsAdapter adapter.SourceFSAdapter
var reportStore adapter.ReportStore
var reconciler domain.CoverageReconciler
var ui controller.UI

// outputDirFlag is a root-level flag naming the directory generated test
// artifacts are written to.
var outputDirFlag string

// reportsDirFlag names the directory synthesis run reports land in.
var reportsDirFlag string

// excludePatterns is a root-level flag that filters source files.
var excludePatterns []string

// verboseFlag raises log verbosity and enables repair diffs.
var verboseFlag bool

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	ui = controller.NewSimpleUI(rootCmd)
	fsAdapter = adapter.NewLocalSourceFSAdapter()
	reportStore = adapter.NewReportStore()
	reconciler = domain.NewCoverageReconciler()
}

const rootLongDescription = `Testforge synthesizes unit tests for Java and Kotlin classes by combining
heuristic source analysis with LLM generation. It reconciles new tests
against previously generated artifacts, versions test files incrementally
and repairs generated code in a bounded validation loop.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "testforge",
		Short: "Coverage-aware incremental test synthesis",
		Long:  rootLongDescription,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&outputDirFlag, outputFlagName, "o",
			viper.GetString(outputFlagName),
			"output directory for generated test artifacts",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputFlagName)

	cmd.PersistentFlags().StringVar(&reportsDirFlag, reportsFlagName, viper.GetString(reportsFlagName), "directory for synthesis run reports")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(reportsFlagName), reportsFlagName)

	cmd.PersistentFlags().StringArrayVarP(&excludePatterns, excludeFlagName, "x", viper.GetStringSlice(excludeConfigKey), "exclude files whose path contains the given substring (can be repeated)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(excludeFlagName), excludeConfigKey)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "verbose output (debug logging and repair diffs)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// resolveRoot turns the optional positional argument into the scan root.
func resolveRoot(args []string) m.Path {
	if len(args) == 0 {
		return m.Path(".")
	}

	return m.Path(args[0])
}

// buildAnalyzers constructs the language analyzers for a run.
func buildAnalyzers() []domain.StructuralAnalyzer {
	opts := domain.AnalyzerOptions{
		ExcludePrivate: viper.GetBool(excludePrivateKey),
	}

	return []domain.StructuralAnalyzer{
		domain.NewJavaAnalyzer(opts),
		domain.NewKotlinAnalyzer(opts),
	}
}

// buildImportEngine compiles the built-in rules plus any custom rule file.
func buildImportEngine() (domain.ImportRuleEngine, error) {
	rules := domain.DefaultImportRules()

	if rulesFile := viper.GetString(rulesFileConfigKey); rulesFile != "" {
		custom, err := adapter.LoadImportRules(m.Path(rulesFile))
		if err != nil {
			return nil, err
		}

		rules = append(rules, custom...)
	}

	return domain.NewImportRuleEngine(rules)
}

// buildWorkflow wires the full pipeline from config. The LLM adapter needs
// runtime config (API key, model), so this happens per invocation rather
// than in init.
func buildWorkflow() (domain.Workflow, error) {
	llm, err := adapter.NewOpenAIAdapter(adapter.OpenAIConfig{
		APIKey:      viper.GetString(llmAPIKeyKey),
		BaseURL:     viper.GetString(llmBaseURLKey),
		Model:       viper.GetString(llmModelKey),
		Temperature: float32(viper.GetFloat64(llmTemperatureKey)),
	})
	if err != nil {
		return nil, fmt.Errorf("configure LLM client: %w", err)
	}

	importEngine, err := buildImportEngine()
	if err != nil {
		return nil, fmt.Errorf("configure import rules: %w", err)
	}

	fixLoop := domain.NewValidationFixLoop(
		llm,
		llm,
		viper.GetInt(maxIterationsConfigKey),
		domain.DefaultScoreWeights(),
	)

	return domain.NewWorkflow(
		fsAdapter,
		reportStore,
		llm,
		llm,
		ui,
		reconciler,
		domain.NewVersionManager(fsAdapter, reconciler),
		fixLoop,
		importEngine,
		buildAnalyzers(),
	), nil
}
