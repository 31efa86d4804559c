package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haivivi/mediagen/pkg/cli"
	"github.com/haivivi/mediagen/pkg/kling"
	"github.com/haivivi/mediagen/pkg/remotejob"
)

var klingCmd = &cobra.Command{
	Use:   "kling",
	Short: "Kling video generation",
	Long: `Kling video generation.

Supports text-to-video (t2v) and image-to-video (i2v). The API key has
the form ACCESS_KEY:SECRET_KEY; requests are authorized with a short
lived signed token minted from it.

Example t2v request file (t2v.yaml):
  model: kling-v1-6
  prompt: A corgi surfing a wave at sunset
  mode: pro
  aspect_ratio: "16:9"
  duration: "5"

Example i2v request file (i2v.yaml):
  model: kling-v1-6
  image: https://example.com/corgi.jpg
  prompt: The corgi starts running`,
}

// klingOptions derives adapter options from the context.
func klingOptions(ctx *cli.Context) []kling.Option {
	var opts []kling.Option
	if ctx.BaseURL != "" {
		opts = append(opts, kling.WithBaseURL(ctx.BaseURL))
	}
	if d := ctx.PollInterval.Duration(); d > 0 {
		opts = append(opts, kling.WithPollInterval(d))
	}
	if d := ctx.MaxWait.Duration(); d > 0 {
		opts = append(opts, kling.WithMaxWait(d))
	}
	return opts
}

// klingAdapter builds the adapter for a task type, for status and wait
// commands that must poll the same endpoint the job was submitted to.
func klingAdapter(ctx *cli.Context, taskType string) (*remotejob.Adapter, error) {
	switch taskType {
	case "t2v":
		return kling.TextToVideoAdapter(ctx.APIKey, klingOptions(ctx)...), nil
	case "i2v":
		return kling.ImageToVideoAdapter(ctx.APIKey, klingOptions(ctx)...), nil
	default:
		return nil, fmt.Errorf("unknown task type %q (want t2v or i2v)", taskType)
	}
}

var klingT2VCmd = &cobra.Command{
	Use:   "t2v",
	Short: "Create a text-to-video job",
	Long: `Create a text-to-video generation job.

Use --wait to poll the job to completion and download the video.

Examples:
  mediagen kling t2v -f t2v.yaml
  mediagen kling t2v -f t2v.yaml --wait
  mediagen kling t2v -f t2v.yaml --wait --out surf.mp4`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireInputFile(); err != nil {
			return err
		}

		ctx, err := providerContext("kling")
		if err != nil {
			return err
		}

		var req kling.TextToVideoRequest
		if err := loadRequest(getInputFile(), &req); err != nil {
			return err
		}

		if req.Model == "" {
			req.Model = ctx.GetExtra("default_model")
		}
		if req.Model == "" {
			req.Model = kling.ModelV16
		}

		printVerbose("Using context: %s", ctx.Name)
		printVerbose("Model: %s", req.Model)
		printVerbose("Prompt: %s", req.Prompt)

		return submitJob(cmd, kling.TextToVideoAdapter(ctx.APIKey, klingOptions(ctx)...), &req, "kling t2v")
	},
}

var klingI2VCmd = &cobra.Command{
	Use:   "i2v",
	Short: "Create an image-to-video job",
	Long: `Create an image-to-video generation job.

The request file's image field takes a URL or raw base64. Use --image
to read a local file instead.

Examples:
  mediagen kling i2v -f i2v.yaml
  mediagen kling i2v -f i2v.yaml --image corgi.jpg --wait --out run.mp4`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireInputFile(); err != nil {
			return err
		}

		ctx, err := providerContext("kling")
		if err != nil {
			return err
		}

		var req kling.ImageToVideoRequest
		if err := loadRequest(getInputFile(), &req); err != nil {
			return err
		}

		if imagePath, _ := cmd.Flags().GetString("image"); imagePath != "" {
			image, err := kling.ImageFromFile(imagePath)
			if err != nil {
				return err
			}
			req.Image = image
		}
		if req.Image == "" {
			return fmt.Errorf("image is required, set it in the request file or use --image")
		}

		if req.Model == "" {
			req.Model = ctx.GetExtra("default_model")
		}
		if req.Model == "" {
			req.Model = kling.ModelV16
		}

		printVerbose("Using context: %s", ctx.Name)
		printVerbose("Model: %s", req.Model)

		return submitJob(cmd, kling.ImageToVideoAdapter(ctx.APIKey, klingOptions(ctx)...), &req, "kling i2v")
	},
}

var klingStatusCmd = &cobra.Command{
	Use:   "status <job-id>",
	Short: "Check a video generation job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := providerContext("kling")
		if err != nil {
			return err
		}

		taskType, _ := cmd.Flags().GetString("type")
		adapter, err := klingAdapter(ctx, taskType)
		if err != nil {
			return err
		}

		printVerbose("Using context: %s", ctx.Name)

		return statusJob(adapter, args[0])
	},
}

var klingWaitCmd = &cobra.Command{
	Use:   "wait <job-id>",
	Short: "Wait for a video generation job",
	Long: `Wait for a video generation job to complete and optionally download
the video.

Examples:
  mediagen kling wait job-123
  mediagen kling wait --type i2v job-456 --out run.mp4`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := providerContext("kling")
		if err != nil {
			return err
		}

		taskType, _ := cmd.Flags().GetString("type")
		adapter, err := klingAdapter(ctx, taskType)
		if err != nil {
			return err
		}

		printVerbose("Using context: %s", ctx.Name)
		printVerbose("Waiting for job: %s", args[0])

		out, _ := cmd.Flags().GetString("out")
		return waitJob(adapter, args[0], "kling "+taskType, out)
	},
}

func init() {
	addWaitFlags(klingT2VCmd, klingI2VCmd)
	klingI2VCmd.Flags().String("image", "", "Local image file to animate")
	klingStatusCmd.Flags().String("type", "t2v", "Task type the job was submitted as (t2v or i2v)")
	klingWaitCmd.Flags().String("type", "t2v", "Task type the job was submitted as (t2v or i2v)")
	klingWaitCmd.Flags().String("out", "", "Download the video to this path")

	klingCmd.AddCommand(klingT2VCmd)
	klingCmd.AddCommand(klingI2VCmd)
	klingCmd.AddCommand(klingStatusCmd)
	klingCmd.AddCommand(klingWaitCmd)
}
