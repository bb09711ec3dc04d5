package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var setupBucketCmd = &cobra.Command{
	Use:   "setup-bucket <bucket>",
	Short: "Create and configure an S3 bucket for static website hosting",
	Long: `Creates the bucket when needed, grants public read access to its objects
and enables static website hosting. Running it again on a bucket you already
own is safe.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s, ok := session(cmd)
		if !ok {
			return
		}

		url, err := s.SetupBucket(cmd.Context(), args[0])
		if err != nil {
			fail(cmd, err)
			return
		}

		fmt.Fprintln(cmd.OutOrStdout(), url)
	},
}

func init() {
	rootCmd.AddCommand(setupBucketCmd)

	setupBucketCmd.Flags().String("index", "", "Index document suffix (default index.html)")
	setupBucketCmd.Flags().String("error-document", "", "Error document key (default error.html)")

	bindFlag("website.indexDocument", setupBucketCmd.Flags().Lookup("index"))
	bindFlag("website.errorDocument", setupBucketCmd.Flags().Lookup("error-document"))
}
