package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haivivi/mediagen/pkg/cli"
	"github.com/haivivi/mediagen/pkg/runway"
)

var runwayCmd = &cobra.Command{
	Use:   "runway",
	Short: "Runway video generation",
	Long: `Runway video generation.

Example i2v request file (i2v.yaml):
  model: gen4_turbo
  prompt_image: https://example.com/frame.jpg
  prompt_text: Slow dolly forward through the scene
  ratio: "1280:720"
  duration: 5`,
}

// runwayOptions derives adapter options from the context.
func runwayOptions(ctx *cli.Context) []runway.Option {
	var opts []runway.Option
	if ctx.BaseURL != "" {
		opts = append(opts, runway.WithBaseURL(ctx.BaseURL))
	}
	if d := ctx.PollInterval.Duration(); d > 0 {
		opts = append(opts, runway.WithPollInterval(d))
	}
	if d := ctx.MaxWait.Duration(); d > 0 {
		opts = append(opts, runway.WithMaxWait(d))
	}
	return opts
}

var runwayI2VCmd = &cobra.Command{
	Use:   "i2v",
	Short: "Create an image-to-video job",
	Long: `Create an image-to-video generation job.

The request file's prompt_image field takes a URL or a data: URI. Use
--image to read a local file instead.

Examples:
  mediagen runway i2v -f i2v.yaml
  mediagen runway i2v -f i2v.yaml --image frame.jpg --wait --out dolly.mp4`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireInputFile(); err != nil {
			return err
		}

		ctx, err := providerContext("runway")
		if err != nil {
			return err
		}

		var req runway.ImageToVideoRequest
		if err := loadRequest(getInputFile(), &req); err != nil {
			return err
		}

		if imagePath, _ := cmd.Flags().GetString("image"); imagePath != "" {
			uri, err := runway.ImageDataURI(imagePath)
			if err != nil {
				return err
			}
			req.PromptImage = uri
		}
		if req.PromptImage == "" {
			return fmt.Errorf("prompt_image is required, set it in the request file or use --image")
		}

		if req.Model == "" {
			req.Model = ctx.GetExtra("default_model")
		}

		printVerbose("Using context: %s", ctx.Name)
		printVerbose("Model: %s", req.Model)

		return submitJob(cmd, runway.Adapter(ctx.APIKey, runwayOptions(ctx)...), &req, "runway i2v")
	},
}

var runwayStatusCmd = &cobra.Command{
	Use:   "status <task-id>",
	Short: "Check a video generation task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := providerContext("runway")
		if err != nil {
			return err
		}

		printVerbose("Using context: %s", ctx.Name)

		return statusJob(runway.Adapter(ctx.APIKey, runwayOptions(ctx)...), args[0])
	},
}

var runwayWaitCmd = &cobra.Command{
	Use:   "wait <task-id>",
	Short: "Wait for a video generation task",
	Long: `Wait for a video generation task to complete and optionally download
the video.

Examples:
  mediagen runway wait task-123
  mediagen runway wait task-123 --out dolly.mp4`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := providerContext("runway")
		if err != nil {
			return err
		}

		printVerbose("Using context: %s", ctx.Name)
		printVerbose("Waiting for task: %s", args[0])

		out, _ := cmd.Flags().GetString("out")
		return waitJob(runway.Adapter(ctx.APIKey, runwayOptions(ctx)...), args[0], "runway i2v", out)
	},
}

func init() {
	addWaitFlags(runwayI2VCmd)
	runwayI2VCmd.Flags().String("image", "", "Local image file to animate")
	runwayWaitCmd.Flags().String("out", "", "Download the video to this path")

	runwayCmd.AddCommand(runwayI2VCmd)
	runwayCmd.AddCommand(runwayStatusCmd)
	runwayCmd.AddCommand(runwayWaitCmd)
}
