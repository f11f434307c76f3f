package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gooze.dev/pkg/testforge/internal/domain"
)

// analyzeCmd represents the analyze command.
var analyzeCmd = newAnalyzeCmd()

func newAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze [root]",
		Short: "Analyze sources and list testable structure without generating",
		RunE: func(_ *cobra.Command, args []string) error {
			configureLogger("", viper.GetBool(logVerboseKey))

			// No LLM involved; wire the workflow with the analysis-side
			// dependencies only.
			importEngine, err := buildImportEngine()
			if err != nil {
				return err
			}

			workflow := domain.NewWorkflow(
				fsAdapter,
				reportStore,
				nil,
				nil,
				ui,
				reconciler,
				domain.NewVersionManager(fsAdapter, reconciler),
				nil,
				importEngine,
				buildAnalyzers(),
			)

			return workflow.Analyze(domain.AnalyzeArgs{
				Root:    resolveRoot(args),
				Exclude: viper.GetStringSlice(excludeConfigKey),
			})
		},
	}
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}
