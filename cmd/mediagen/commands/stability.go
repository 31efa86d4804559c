package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/haivivi/mediagen/pkg/cli"
	"github.com/haivivi/mediagen/pkg/stability"
)

var stabilityCmd = &cobra.Command{
	Use:   "stability",
	Short: "Stability AI image generation",
}

// stabilityOptions derives client options from the context.
func stabilityOptions(ctx *cli.Context) []stability.Option {
	var opts []stability.Option
	if ctx.BaseURL != "" {
		opts = append(opts, stability.WithBaseURL(ctx.BaseURL))
	}
	return opts
}

var stabilityImageCmd = &cobra.Command{
	Use:   "image <prompt>",
	Short: "Generate an image from a text prompt",
	Long: `Generate an image from a text prompt.

The model takes an alias like sd35-large, sd35-turbo or sd3-medium, or
an endpoint name (core, ultra).

Examples:
  mediagen stability image "a lighthouse in fog" -o lighthouse.png
  mediagen stability image "a lighthouse in fog" --model ultra --aspect 16:9 --format webp`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := providerContext("stability")
		if err != nil {
			return err
		}

		model, _ := cmd.Flags().GetString("model")
		if model == "" {
			model = ctx.GetExtra("default_model")
		}
		negative, _ := cmd.Flags().GetString("negative")
		aspect, _ := cmd.Flags().GetString("aspect")
		stylePreset, _ := cmd.Flags().GetString("style-preset")
		seed, _ := cmd.Flags().GetInt64("seed")
		format, _ := cmd.Flags().GetString("format")

		req := &stability.ImageRequest{
			Prompt:         args[0],
			Model:          model,
			NegativePrompt: negative,
			AspectRatio:    aspect,
			StylePreset:    stylePreset,
			Seed:           seed,
			OutputFormat:   format,
		}

		printVerbose("Using context: %s", ctx.Name)
		printVerbose("Model: %s", req.Model)
		printVerbose("Prompt: %s", req.Prompt)

		client := stability.NewClient(ctx.APIKey, stabilityOptions(ctx)...)

		reqCtx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
		defer cancel()

		data, err := client.Generate(reqCtx, req)
		if err != nil {
			return err
		}

		outputPath := getOutputFile()
		if outputPath == "" {
			ext := format
			if ext == "" {
				ext = "png"
			}
			outputPath = "image." + ext
		}
		if err := outputBytes(data, outputPath); err != nil {
			return err
		}

		printSuccess("Saved %s (%s)", outputPath, formatBytes(int64(len(data))))

		result := map[string]any{
			"output_file": outputPath,
			"image_size":  len(data),
		}
		return outputResult(result, "", isJSONOutput())
	},
}

func init() {
	stabilityImageCmd.Flags().String("model", "", "Model alias (default: sd35-large)")
	stabilityImageCmd.Flags().String("negative", "", "What to avoid in the image")
	stabilityImageCmd.Flags().String("aspect", "", "Aspect ratio, e.g. 16:9")
	stabilityImageCmd.Flags().String("style-preset", "", "Named style, e.g. anime or cinematic")
	stabilityImageCmd.Flags().Int64("seed", 0, "Noise seed (0: random)")
	stabilityImageCmd.Flags().String("format", "", "Output format: png, jpeg or webp")

	stabilityCmd.AddCommand(stabilityImageCmd)
}
