// Package cli wires the batch jobs to cobra commands.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/BartekS5/batchline/internal/config"
	"github.com/BartekS5/batchline/pkg/logger"
)

// NewRootCmd creates and configures the main "root" command for the
// application. It attaches all job commands.
func NewRootCmd() *cobra.Command {
	var (
		jobFilePath string
		logFile     string
		debug       bool
	)

	rootCmd := &cobra.Command{
		Use:   "batchline",
		Short: "batchline - batch jobs moving records between flat files and tables",
		Long: `batchline runs chunk-oriented batch jobs: export, import, staging,
master/detail synchronization and control-break grouping. Jobs are
restartable: a failed run resumes from its last committed chunk.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			env := config.LoadEnv()
			if logFile == "" {
				logFile = env.LogFile
			}
			return logger.Init(logFile, debug || env.Debug)
		},
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&jobFilePath, "job-file", "j", "configs/jobs.ini", "Path to the INI job-defaults file")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write logs to this file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(
		newExportCmd(),
		newImportCmd(),
		newSynchroCmd(),
		newGroupingCmd(),
		newStagingCmd(),
		newRunAllCmd(),
		newPurgeCmd(),
	)

	return rootCmd
}
