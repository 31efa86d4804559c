package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/haivivi/mediagen/pkg/cli"
	"github.com/haivivi/mediagen/pkg/openai"
)

var openaiCmd = &cobra.Command{
	Use:   "openai",
	Short: "OpenAI image generation",
}

// openaiOptions derives client options from the context.
func openaiOptions(ctx *cli.Context) []openai.Option {
	var opts []openai.Option
	if ctx.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(ctx.BaseURL))
	}
	return opts
}

var openaiImageCmd = &cobra.Command{
	Use:   "image <prompt>",
	Short: "Generate an image from a text prompt",
	Long: `Generate an image from a text prompt.

Examples:
  mediagen openai image "a watercolor fox" -o fox.png
  mediagen openai image "a watercolor fox" --model dall-e-3 --size 1792x1024 --quality hd`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := providerContext("openai")
		if err != nil {
			return err
		}

		model, _ := cmd.Flags().GetString("model")
		if model == "" {
			model = ctx.GetExtra("default_model")
		}
		size, _ := cmd.Flags().GetString("size")
		quality, _ := cmd.Flags().GetString("quality")
		style, _ := cmd.Flags().GetString("style")

		req := &openai.ImageRequest{
			Prompt:  args[0],
			Model:   model,
			Size:    size,
			Quality: quality,
			Style:   style,
		}

		printVerbose("Using context: %s", ctx.Name)
		printVerbose("Model: %s", req.Model)
		printVerbose("Prompt: %s", req.Prompt)

		client := openai.NewClient(ctx.APIKey, openaiOptions(ctx)...)

		reqCtx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
		defer cancel()

		img, err := client.Generate(reqCtx, req)
		if err != nil {
			return err
		}

		outputPath := getOutputFile()
		if outputPath == "" {
			outputPath = "image.png"
		}
		if err := outputBytes(img.Bytes, outputPath); err != nil {
			return err
		}

		printSuccess("Saved %s (%s)", outputPath, formatBytes(int64(len(img.Bytes))))

		result := map[string]any{
			"output_file": outputPath,
			"image_size":  len(img.Bytes),
		}
		if img.RevisedPrompt != "" {
			result["revised_prompt"] = img.RevisedPrompt
		}
		return outputResult(result, "", isJSONOutput())
	},
}

func init() {
	openaiImageCmd.Flags().String("model", "", "Generation model (default: dall-e-3)")
	openaiImageCmd.Flags().String("size", "", "Output resolution, e.g. 1024x1024 or 1792x1024")
	openaiImageCmd.Flags().String("quality", "", "standard or hd (DALL-E 3)")
	openaiImageCmd.Flags().String("style", "", "natural or vivid (DALL-E 3)")

	openaiCmd.AddCommand(openaiImageCmd)
}
