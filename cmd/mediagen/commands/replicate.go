package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/haivivi/mediagen/pkg/cli"
	"github.com/haivivi/mediagen/pkg/replicate"
)

// stageTimeout bounds a staging upload for URL-only model inputs.
const stageTimeout = 5 * time.Minute

var replicateCmd = &cobra.Command{
	Use:   "replicate",
	Short: "Replicate prediction models",
	Long: `Replicate prediction models.

The predict command submits any model version from a request file; the
other commands are presets for pinned versions.

Example predict request file (pred.yaml):
  version: 671ac645ce5e552cc63a54a2bbff63fcf798043ac68f86b6f8d6e7df5c6a5a57
  input:
    prompt: lofi hip hop beat
    duration: 8`,
}

// replicateOptions derives adapter options from the context.
func replicateOptions(ctx *cli.Context) []replicate.Option {
	var opts []replicate.Option
	if ctx.BaseURL != "" {
		opts = append(opts, replicate.WithBaseURL(ctx.BaseURL))
	}
	if d := ctx.PollInterval.Duration(); d > 0 {
		opts = append(opts, replicate.WithPollInterval(d))
	}
	if d := ctx.MaxWait.Duration(); d > 0 {
		opts = append(opts, replicate.WithMaxWait(d))
	}
	return opts
}

// submitPrediction runs the common tail of every replicate command.
func submitPrediction(cmd *cobra.Command, ctx *cli.Context, req *replicate.PredictionRequest, label string) error {
	printVerbose("Using context: %s", ctx.Name)
	printVerbose("Version: %s", req.Version)

	return submitJob(cmd, replicate.Adapter(ctx.APIKey, replicateOptions(ctx)...), req, label)
}

var replicatePredictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Create a prediction from a request file",
	Long: `Create a prediction for any model version.

Examples:
  mediagen replicate predict -f pred.yaml
  mediagen replicate predict -f pred.yaml --wait --out result.mp3`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireInputFile(); err != nil {
			return err
		}

		ctx, err := providerContext("replicate")
		if err != nil {
			return err
		}

		var req replicate.PredictionRequest
		if err := loadRequest(getInputFile(), &req); err != nil {
			return err
		}
		if req.Version == "" {
			return fmt.Errorf("version is required in the request file")
		}

		return submitPrediction(cmd, ctx, &req, "replicate predict")
	},
}

var replicateMusicCmd = &cobra.Command{
	Use:   "music <prompt>",
	Short: "Generate music from a text prompt",
	Long: `Generate music with MusicGen.

Examples:
  mediagen replicate music "lofi hip hop beat" --wait
  mediagen replicate music "epic orchestral rise" --seconds 30 --wait --out rise.mp3`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := providerContext("replicate")
		if err != nil {
			return err
		}

		seconds, _ := cmd.Flags().GetInt("seconds")
		req := replicate.MusicRequest(args[0], seconds)

		return submitPrediction(cmd, ctx, req, "replicate music")
	},
}

var replicateRembgCmd = &cobra.Command{
	Use:   "rembg <image-file>",
	Short: "Remove an image background",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := providerContext("replicate")
		if err != nil {
			return err
		}

		req, err := replicate.RembgRequest(args[0])
		if err != nil {
			return err
		}

		return submitPrediction(cmd, ctx, req, "replicate rembg")
	},
}

var replicateUpscaleCmd = &cobra.Command{
	Use:   "upscale <image-file>",
	Short: "Upscale an image",
	Long: `Upscale an image with Real-ESRGAN.

Examples:
  mediagen replicate upscale photo.jpg --wait
  mediagen replicate upscale photo.jpg --scale 2 --face-enhance --wait --out big.png`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := providerContext("replicate")
		if err != nil {
			return err
		}

		scale, _ := cmd.Flags().GetInt("scale")
		faceEnhance, _ := cmd.Flags().GetBool("face-enhance")
		req, err := replicate.UpscaleRequest(args[0], scale, faceEnhance)
		if err != nil {
			return err
		}

		return submitPrediction(cmd, ctx, req, "replicate upscale")
	},
}

var replicateEnhanceCmd = &cobra.Command{
	Use:   "enhance <audio>",
	Short: "Enhance a speech recording",
	Long: `Denoise and enhance a speech recording with Resemble Enhance.

The audio argument is a local file or a URL.

Examples:
  mediagen replicate enhance noisy.wav --wait --out clean.wav
  mediagen replicate enhance https://example.com/call.mp3 --no-denoise --wait`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := providerContext("replicate")
		if err != nil {
			return err
		}

		source := args[0]
		if !isRemoteURL(source) {
			uri, err := replicate.DataURI(source)
			if err != nil {
				return err
			}
			source = uri
		}

		noDenoise, _ := cmd.Flags().GetBool("no-denoise")
		req := replicate.EnhanceRequest(source, !noDenoise)

		return submitPrediction(cmd, ctx, req, "replicate enhance")
	},
}

var replicateTrackCmd = &cobra.Command{
	Use:   "track <video>",
	Short: "Track objects through a video",
	Long: `Track objects through a video with SAM 2.

The model fetches the video itself, so the argument must be a public
URL. A local file is first uploaded to the configured staging bucket.
The result is structured JSON.

Examples:
  mediagen replicate track https://example.com/clip.mp4 --wait --out masks.json
  mediagen replicate track ./clip.mp4 --prompt "the red car" --wait`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := providerContext("replicate")
		if err != nil {
			return err
		}

		source := args[0]
		if !isRemoteURL(source) {
			stageCtx, cancel := context.WithTimeout(context.Background(), stageTimeout)
			defer cancel()

			bucket, err := stagingBucket(stageCtx)
			if err != nil {
				return fmt.Errorf("object tracking needs a public video URL: %w", err)
			}
			url, err := bucket.Stage(stageCtx, source)
			if err != nil {
				return err
			}
			printInfo("Staged %s as %s", source, url)
			source = url
		}

		prompt, _ := cmd.Flags().GetString("prompt")
		req := replicate.TrackRequest(source, prompt)

		return submitPrediction(cmd, ctx, req, "replicate track")
	},
}

var replicateStatusCmd = &cobra.Command{
	Use:   "status <prediction-id>",
	Short: "Check a prediction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := providerContext("replicate")
		if err != nil {
			return err
		}

		printVerbose("Using context: %s", ctx.Name)

		return statusJob(replicate.Adapter(ctx.APIKey, replicateOptions(ctx)...), args[0])
	},
}

var replicateWaitCmd = &cobra.Command{
	Use:   "wait <prediction-id>",
	Short: "Wait for a prediction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := providerContext("replicate")
		if err != nil {
			return err
		}

		printVerbose("Using context: %s", ctx.Name)
		printVerbose("Waiting for prediction: %s", args[0])

		out, _ := cmd.Flags().GetString("out")
		return waitJob(replicate.Adapter(ctx.APIKey, replicateOptions(ctx)...), args[0], "replicate wait", out)
	},
}

func init() {
	addWaitFlags(replicatePredictCmd, replicateMusicCmd, replicateRembgCmd,
		replicateUpscaleCmd, replicateEnhanceCmd, replicateTrackCmd)

	replicateMusicCmd.Flags().Int("seconds", 8, "Length of the generated audio in seconds")
	replicateUpscaleCmd.Flags().Int("scale", 4, "Upscaling factor")
	replicateUpscaleCmd.Flags().Bool("face-enhance", false, "Run face enhancement on the result")
	replicateEnhanceCmd.Flags().Bool("no-denoise", false, "Skip the denoising pass")
	replicateTrackCmd.Flags().String("prompt", "", "Text prompt guiding what to track")
	replicateWaitCmd.Flags().String("out", "", "Download the result to this path")

	replicateCmd.AddCommand(replicatePredictCmd)
	replicateCmd.AddCommand(replicateMusicCmd)
	replicateCmd.AddCommand(replicateRembgCmd)
	replicateCmd.AddCommand(replicateUpscaleCmd)
	replicateCmd.AddCommand(replicateEnhanceCmd)
	replicateCmd.AddCommand(replicateTrackCmd)
	replicateCmd.AddCommand(replicateStatusCmd)
	replicateCmd.AddCommand(replicateWaitCmd)
}
