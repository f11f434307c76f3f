package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gooze.dev/pkg/testforge/internal/domain"
	m "gooze.dev/pkg/testforge/internal/model"
)

// viewCmd represents the view command.
var viewCmd = newViewCmd()

func newViewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "view [report]",
		Short: "View a previously saved synthesis report",
		Long:  "Display the summary of a saved synthesis report. Without an argument the newest report in the reports directory is shown.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			configureLogger("", viper.GetBool(logVerboseKey))

			var report m.Path
			if len(args) > 0 {
				report = m.Path(args[0])
			}

			// Display only; no LLM or analyzers involved.
			workflow := domain.NewWorkflow(
				fsAdapter,
				reportStore,
				nil,
				nil,
				ui,
				reconciler,
				nil,
				nil,
				nil,
				nil,
			)

			return workflow.View(domain.ViewArgs{
				ReportsDir: m.Path(viper.GetString(reportsFlagName)),
				Report:     report,
			})
		},
	}
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
