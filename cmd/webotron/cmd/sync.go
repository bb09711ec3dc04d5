package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/webotron/webotron/config"
)

var syncCmd = &cobra.Command{
	Use:   "sync <pathname> <bucket>",
	Short: "Sync the contents of a directory to an S3 bucket",
	Long: `Uploads every regular file below pathname to the bucket, keyed by its
path relative to pathname. Symbolic links and unreadable entries are skipped.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		if continueOnError, _ := cmd.Flags().GetBool("continue-on-error"); continueOnError {
			config.SyncFailFast.Set(false)
		}

		s, ok := session(cmd)
		if !ok {
			return
		}

		result, err := s.Sync(cmd.Context(), args[0], args[1])
		if err != nil {
			fail(cmd, err)
			return
		}

		out := cmd.OutOrStdout()

		verb := "Uploaded"
		if config.SyncDryRun.Bool() {
			verb = "Would upload"
		}

		fmt.Fprintf(out, "%s %d files (%s), skipped %d\n",
			verb, result.Files, humanize.Bytes(uint64(result.Bytes)), result.Skipped)

		if result.URL != "" {
			fmt.Fprintln(out, result.URL)
		}
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().Bool("dry-run", false, "Log the uploads without performing them")
	syncCmd.Flags().IntP("concurrency", "c", 1, "Maximum number of concurrent uploads")
	syncCmd.Flags().String("prefix", "", "Key prefix prepended to every uploaded object")
	syncCmd.Flags().Bool("continue-on-error", false, "Attempt every file and report all failures at the end")

	bindFlag("sync.dryRun", syncCmd.Flags().Lookup("dry-run"))
	bindFlag("sync.maxConcurrentUploads", syncCmd.Flags().Lookup("concurrency"))
	bindFlag("sync.keyPrefix", syncCmd.Flags().Lookup("prefix"))
}
