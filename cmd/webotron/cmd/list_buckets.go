package cmd

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var listBucketsCmd = &cobra.Command{
	Use:   "list-buckets",
	Short: "List all S3 buckets",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		s, ok := session(cmd)
		if !ok {
			return
		}

		buckets, err := s.ListBuckets(cmd.Context())
		if err != nil {
			fail(cmd, err)
			return
		}

		long, _ := cmd.Flags().GetBool("long")

		for _, b := range buckets {
			if long && b.CreationDate != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\tcreated %s\n", aws.ToString(b.Name), humanize.Time(*b.CreationDate))
				continue
			}
			fmt.Fprintln(cmd.OutOrStdout(), aws.ToString(b.Name))
		}
	},
}

func init() {
	rootCmd.AddCommand(listBucketsCmd)

	listBucketsCmd.Flags().BoolP("long", "l", false, "Show when each bucket was created")
}
