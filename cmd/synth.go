package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gooze.dev/pkg/testforge/internal/domain"
	m "gooze.dev/pkg/testforge/internal/model"
)

var synthParallelFlag int
var synthMaxIterationsFlag int
var synthIncrementalFlag bool
var synthExcludePrivateFlag bool
var synthRulesFileFlag string

// synthCmd represents the synth command.
var synthCmd = newSynthCmd()

func newSynthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "synth [root]",
		Short: "Synthesize tests for sources under root (default: current directory)",
		RunE: func(_ *cobra.Command, args []string) error {
			configureLogger("", viper.GetBool(logVerboseKey))

			workflow, err := buildWorkflow()
			if err != nil {
				return err
			}

			return workflow.Synthesize(domain.SynthArgs{
				Root:        resolveRoot(args),
				OutputDir:   m.Path(viper.GetString(outputFlagName)),
				ReportsDir:  m.Path(viper.GetString(reportsFlagName)),
				Exclude:     viper.GetStringSlice(excludeConfigKey),
				Threads:     viper.GetInt(synthParallelConfigKey),
				Incremental: viper.GetBool(incrementalConfigKey),
				Verbose:     viper.GetBool(logVerboseKey),
			})
		},
	}

	configureSynthFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(synthCmd)
}

func configureSynthFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&synthParallelFlag, synthParallelFlagName, "p", viper.GetInt(synthParallelConfigKey), "number of source units processed in parallel")
	bindFlagToConfig(cmd.Flags().Lookup(synthParallelFlagName), synthParallelConfigKey)

	cmd.Flags().IntVar(&synthMaxIterationsFlag, maxIterationsFlagName, viper.GetInt(maxIterationsConfigKey), "repair loop iteration budget (clamped to 1..10)")
	bindFlagToConfig(cmd.Flags().Lookup(maxIterationsFlagName), maxIterationsConfigKey)

	cmd.Flags().BoolVar(&synthIncrementalFlag, incrementalFlagName, viper.GetBool(incrementalConfigKey), "reconcile against existing test artifacts instead of regenerating everything")
	bindFlagToConfig(cmd.Flags().Lookup(incrementalFlagName), incrementalConfigKey)

	cmd.Flags().BoolVar(&synthExcludePrivateFlag, excludePrivateFlagName, viper.GetBool(excludePrivateKey), "skip private methods during analysis")
	bindFlagToConfig(cmd.Flags().Lookup(excludePrivateFlagName), excludePrivateKey)

	cmd.Flags().StringVar(&synthRulesFileFlag, rulesFileFlagName, viper.GetString(rulesFileConfigKey), "YAML file with custom import detection rules")
	bindFlagToConfig(cmd.Flags().Lookup(rulesFileFlagName), rulesFileConfigKey)
}
