package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/BartekS5/batchline/internal/config"
	"github.com/BartekS5/batchline/pkg/logger"
)

// Job names as used in the job file and the dispatcher.
const (
	jobExport     = "export"
	jobImport     = "import"
	jobTable2File = "table2file-synchro"
	jobFile2Table = "file2table-synchro"
	jobFile2File  = "file2file-synchro"
	jobGrouping   = "grouping"
	jobStage      = "stage"
	jobProcess    = "process"
)

// jobRunE builds a RunE that merges flag values over the job-file defaults
// and dispatches the named job.
func jobRunE(job string, flags func(cmd *cobra.Command) config.Params) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.close()

		params := rt.jobFile.Params(job).Merge(flags(cmd))
		return rt.dispatch(cmd.Context(), job, params)
	}
}

func commonJobFlags(cmd *cobra.Command) {
	cmd.Flags().String("chunk-size", "", "Units committed per chunk (default from job file, else 10)")
	cmd.Flags().Bool("dry-run", false, "Process all units but write nothing")
}

func commonJobParams(cmd *cobra.Command) config.Params {
	chunk, _ := cmd.Flags().GetString("chunk-size")
	params := config.Params{"chunk-size": chunk}
	if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
		params["dry-run"] = "true"
	}
	return params
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the transaction table to a delimited file",
		RunE: jobRunE(jobExport, func(cmd *cobra.Command) config.Params {
			params := commonJobParams(cmd)
			params["output-dir"], _ = cmd.Flags().GetString("output-dir")
			return params
		}),
	}
	cmd.Flags().StringP("output-dir", "o", "", "Directory receiving the export file")
	commonJobFlags(cmd)
	return cmd
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a transaction file into the transaction table",
		RunE: jobRunE(jobImport, func(cmd *cobra.Command) config.Params {
			params := commonJobParams(cmd)
			params["input-file"], _ = cmd.Flags().GetString("input-file")
			return params
		}),
	}
	cmd.Flags().StringP("input-file", "i", "", "Transaction file to import")
	commonJobFlags(cmd)
	return cmd
}

func synchroParams(cmd *cobra.Command) config.Params {
	params := commonJobParams(cmd)
	for _, name := range []string{"customer-file", "transaction-file", "output-file", "archive-collection"} {
		if value, err := cmd.Flags().GetString(name); err == nil {
			params[name] = value
		}
	}
	return params
}

func newSynchroCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "synchro",
		Short: "Master/detail synchronization jobs",
	}

	table2File := &cobra.Command{
		Use:   "table2file",
		Short: "Customer table (master) + transaction file (detail) -> balance file",
		RunE:  jobRunE(jobTable2File, synchroParams),
	}
	table2File.Flags().StringP("transaction-file", "t", "", "Detail transaction file")
	table2File.Flags().StringP("output-file", "o", "", "Output customer balance file")

	file2Table := &cobra.Command{
		Use:   "file2table",
		Short: "Customer file (master) + transaction table (detail) -> balance file",
		RunE:  jobRunE(jobFile2Table, synchroParams),
	}
	file2Table.Flags().StringP("customer-file", "c", "", "Master customer file")
	file2Table.Flags().StringP("output-file", "o", "", "Output customer balance file")

	file2File := &cobra.Command{
		Use:   "file2file",
		Short: "Customer file (master) + transaction file (detail) -> balance file",
		RunE:  jobRunE(jobFile2File, synchroParams),
	}
	file2File.Flags().StringP("customer-file", "c", "", "Master customer file")
	file2File.Flags().StringP("transaction-file", "t", "", "Detail transaction file")
	file2File.Flags().StringP("output-file", "o", "", "Output customer balance file")

	for _, sub := range []*cobra.Command{table2File, file2Table, file2File} {
		sub.Flags().String("archive-collection", "", "Also archive results to this MongoDB collection")
		commonJobFlags(sub)
		cmd.AddCommand(sub)
	}
	return cmd
}

func newGroupingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grouping",
		Short: "Group a transaction file by customer and sum the amounts",
		RunE: jobRunE(jobGrouping, func(cmd *cobra.Command) config.Params {
			params := commonJobParams(cmd)
			params["transaction-file"], _ = cmd.Flags().GetString("transaction-file")
			params["output-file"], _ = cmd.Flags().GetString("output-file")
			return params
		}),
	}
	cmd.Flags().StringP("transaction-file", "t", "", "Transaction file to group")
	cmd.Flags().StringP("output-file", "o", "", "Output aggregate file")
	commonJobFlags(cmd)
	return cmd
}

func newStagingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "staging",
		Short: "Deferred-processing job over the batch_staging table",
	}

	stage := &cobra.Command{
		Use:   "stage",
		Short: "Stage the values of a file into batch_staging",
		RunE: jobRunE(jobStage, func(cmd *cobra.Command) config.Params {
			params := commonJobParams(cmd)
			params["input-file"], _ = cmd.Flags().GetString("input-file")
			return params
		}),
	}
	stage.Flags().StringP("input-file", "i", "", "File of values to stage")
	commonJobFlags(stage)

	process := &cobra.Command{
		Use:   "process",
		Short: "Process staged rows and mark them processed",
		RunE:  jobRunE(jobProcess, commonJobParams),
	}
	commonJobFlags(process)

	cmd.AddCommand(stage, process)
	return cmd
}

func newRunAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run-all",
		Short: "Run the jobs listed in the job file, independent jobs concurrently",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.close()
			return rt.runAll(cmd.Context())
		},
	}
}

func newPurgeCmd() *cobra.Command {
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Remove stale checkpoints from the checkpoint store",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.close()

			removed, err := rt.purger.Purge(olderThan)
			if err != nil {
				return err
			}
			logger.Infof("purged %d stale checkpoint(s)", removed)
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "Age beyond which checkpoints are purged")
	return cmd
}
