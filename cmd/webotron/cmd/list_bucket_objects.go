package cmd

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var listBucketObjectsCmd = &cobra.Command{
	Use:   "list-buckets-objects <bucket>",
	Short: "List objects in an S3 bucket",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s, ok := session(cmd)
		if !ok {
			return
		}

		long, _ := cmd.Flags().GetBool("long")
		out := cmd.OutOrStdout()

		var (
			count int
			total int64
		)

		err := s.ListObjects(cmd.Context(), args[0], func(o types.Object) error {
			count++
			size := aws.ToInt64(o.Size)
			total += size

			if !long {
				_, err := fmt.Fprintln(out, aws.ToString(o.Key))
				return err
			}

			_, err := fmt.Fprintf(out, "%10s  %s\n", humanize.Bytes(uint64(size)), aws.ToString(o.Key))
			return err
		})
		if err != nil {
			fail(cmd, err)
			return
		}

		if long {
			fmt.Fprintf(out, "%d objects, %s\n", count, humanize.Bytes(uint64(total)))
		}
	},
}

func init() {
	rootCmd.AddCommand(listBucketObjectsCmd)

	listBucketObjectsCmd.Flags().BoolP("long", "l", false, "Show object sizes and a total")
}
