package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/haivivi/mediagen/pkg/gemini"
)

var geminiCmd = &cobra.Command{
	Use:   "gemini",
	Short: "Gemini image generation",
}

var geminiImageCmd = &cobra.Command{
	Use:   "image <prompt>",
	Short: "Generate or edit an image",
	Long: `Generate an image from a text prompt, or edit reference images.

The model takes a short name (flash, pro) or a full model ID. With
--input the prompt describes an edit applied to the given images.

Examples:
  mediagen gemini image "a paper crane on a desk" -o crane.png
  mediagen gemini image "make the sky stormy" --input crane.png -o stormy.png`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := providerContext("gemini")
		if err != nil {
			return err
		}

		model, _ := cmd.Flags().GetString("model")
		if model == "" {
			model = ctx.GetExtra("default_model")
		}
		aspect, _ := cmd.Flags().GetString("aspect")
		inputs, _ := cmd.Flags().GetStringArray("input")

		req := &gemini.ImageRequest{
			Prompt:      args[0],
			Model:       gemini.ResolveModel(model),
			AspectRatio: aspect,
		}
		for _, path := range inputs {
			img, err := gemini.InputImageFromFile(path)
			if err != nil {
				return err
			}
			req.InputImages = append(req.InputImages, img)
		}

		printVerbose("Using context: %s", ctx.Name)
		printVerbose("Model: %s", req.Model)
		printVerbose("Prompt: %s", req.Prompt)

		reqCtx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
		defer cancel()

		client, err := gemini.NewClient(reqCtx, ctx.APIKey)
		if err != nil {
			return err
		}

		img, err := client.Generate(reqCtx, req)
		if err != nil {
			return err
		}

		outputPath := getOutputFile()
		if outputPath == "" {
			outputPath = "image" + extForMIME(img.MIMEType)
		}
		if err := outputBytes(img.Data, outputPath); err != nil {
			return err
		}

		printSuccess("Saved %s (%s)", outputPath, formatBytes(int64(len(img.Data))))
		if img.Text != "" {
			printVerbose("Model commentary: %s", img.Text)
		}

		result := map[string]any{
			"output_file": outputPath,
			"image_size":  len(img.Data),
			"mime_type":   img.MIMEType,
		}
		return outputResult(result, "", isJSONOutput())
	},
}

// extForMIME picks the file extension for a generated image.
func extForMIME(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}

func init() {
	geminiImageCmd.Flags().String("model", "", "Generation model: flash, pro or a model ID")
	geminiImageCmd.Flags().String("aspect", "", "Aspect ratio, e.g. 16:9")
	geminiImageCmd.Flags().StringArray("input", nil, "Reference image file for edits (repeatable)")

	geminiCmd.AddCommand(geminiImageCmd)
}
