package commands

import (
	"context"

	"github.com/spf13/cobra"
)

var stageCmd = &cobra.Command{
	Use:   "stage <file>",
	Short: "Upload a file to the staging bucket",
	Long: `Upload a local file to the configured staging bucket and print a
URL a provider can fetch it from.

Buckets with a public CDN return the public URL; private buckets get a
presigned GET valid for one hour. Configure the bucket with
'mediagen config bucket'.

Examples:
  mediagen stage clip.mp4
  mediagen stage voice.wav --json | jq -r '.url'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), stageTimeout)
		defer cancel()

		bucket, err := stagingBucket(ctx)
		if err != nil {
			return err
		}

		url, err := bucket.Stage(ctx, args[0])
		if err != nil {
			return err
		}

		printSuccess("Staged %s", args[0])

		result := map[string]any{
			"file": args[0],
			"url":  url,
		}
		return outputResult(result, getOutputFile(), isJSONOutput())
	},
}
