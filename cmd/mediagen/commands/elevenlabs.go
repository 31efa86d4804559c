package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/haivivi/mediagen/pkg/cli"
	"github.com/haivivi/mediagen/pkg/elevenlabs"
)

var elevenlabsCmd = &cobra.Command{
	Use:   "elevenlabs",
	Short: "ElevenLabs dubbing, speech and sound effects",
	Long: `ElevenLabs dubbing, speech and sound effects.

Dubbing is an asynchronous job; tts and sfx answer immediately with
audio bytes.`,
}

// elevenlabsOptions derives adapter and client options from the context.
func elevenlabsOptions(ctx *cli.Context) []elevenlabs.Option {
	var opts []elevenlabs.Option
	if ctx.BaseURL != "" {
		opts = append(opts, elevenlabs.WithBaseURL(ctx.BaseURL))
	}
	if d := ctx.PollInterval.Duration(); d > 0 {
		opts = append(opts, elevenlabs.WithPollInterval(d))
	}
	if d := ctx.MaxWait.Duration(); d > 0 {
		opts = append(opts, elevenlabs.WithMaxWait(d))
	}
	return opts
}

var elevenlabsDubCmd = &cobra.Command{
	Use:   "dub <file-or-url>",
	Short: "Dub a recording into another language",
	Long: `Dub an audio or video recording into another language.

A local file is uploaded with the request; a URL is fetched by the
provider. The dubbed track is downloaded through the authenticated
dubbing endpoint, so prefer --out with an audio extension.

Examples:
  mediagen elevenlabs dub talk.mp4 --target es --wait --out talk-es.mp3
  mediagen elevenlabs dub https://example.com/talk.mp3 --target de --source en`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := providerContext("elevenlabs")
		if err != nil {
			return err
		}

		target, _ := cmd.Flags().GetString("target")
		if target == "" {
			return fmt.Errorf("--target is required")
		}
		source, _ := cmd.Flags().GetString("source")
		name, _ := cmd.Flags().GetString("name")
		speakers, _ := cmd.Flags().GetInt("speakers")

		req := &elevenlabs.DubRequest{
			TargetLang:  target,
			SourceLang:  source,
			Name:        name,
			NumSpeakers: speakers,
		}
		if isRemoteURL(args[0]) {
			req.SourceURL = args[0]
		} else {
			req.FilePath = args[0]
		}

		printVerbose("Using context: %s", ctx.Name)
		printVerbose("Target language: %s", target)

		return submitJob(cmd, elevenlabs.DubAdapter(ctx.APIKey, elevenlabsOptions(ctx)...), req, "elevenlabs dub")
	},
}

var elevenlabsTTSCmd = &cobra.Command{
	Use:   "tts <text>",
	Short: "Synthesize speech from text",
	Long: `Synthesize speech from text.

The voice takes a stock name (rachel, adam, bella, antoni, elli, josh)
or a raw voice ID.

Examples:
  mediagen elevenlabs tts "Hello there" -o hello.mp3
  mediagen elevenlabs tts "Hello there" --voice josh --stability 0.7`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := providerContext("elevenlabs")
		if err != nil {
			return err
		}

		voice, _ := cmd.Flags().GetString("voice")
		if voice == "" {
			voice = ctx.GetExtra("default_voice")
		}
		model, _ := cmd.Flags().GetString("model")
		stability, _ := cmd.Flags().GetFloat64("stability")
		similarity, _ := cmd.Flags().GetFloat64("similarity")

		req := &elevenlabs.SpeechRequest{
			Text:       args[0],
			VoiceID:    elevenlabs.ResolveVoice(voice),
			Model:      model,
			Stability:  stability,
			Similarity: similarity,
		}

		printVerbose("Using context: %s", ctx.Name)
		printVerbose("Text length: %d characters", len(req.Text))

		client := elevenlabs.NewClient(ctx.APIKey, elevenlabsOptions(ctx)...)

		reqCtx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
		defer cancel()

		audio, err := client.TextToSpeech(reqCtx, req)
		if err != nil {
			return err
		}

		outputPath := getOutputFile()
		if outputPath == "" {
			outputPath = "speech.mp3"
		}
		if err := outputBytes(audio, outputPath); err != nil {
			return err
		}

		printSuccess("Saved %s (%s)", outputPath, formatBytes(int64(len(audio))))

		result := map[string]any{
			"output_file": outputPath,
			"audio_size":  len(audio),
		}
		return outputResult(result, "", isJSONOutput())
	},
}

var elevenlabsSFXCmd = &cobra.Command{
	Use:   "sfx <text>",
	Short: "Generate a sound effect",
	Long: `Generate a sound effect from a text description.

Examples:
  mediagen elevenlabs sfx "thunder crash" -o thunder.mp3
  mediagen elevenlabs sfx "rain on a tin roof" --seconds 10`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := providerContext("elevenlabs")
		if err != nil {
			return err
		}

		seconds, _ := cmd.Flags().GetFloat64("seconds")
		influence, _ := cmd.Flags().GetFloat64("influence")

		req := &elevenlabs.SoundEffectRequest{
			Text:            args[0],
			Duration:        seconds,
			PromptInfluence: influence,
		}

		printVerbose("Using context: %s", ctx.Name)

		client := elevenlabs.NewClient(ctx.APIKey, elevenlabsOptions(ctx)...)

		reqCtx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
		defer cancel()

		audio, err := client.SoundEffect(reqCtx, req)
		if err != nil {
			return err
		}

		outputPath := getOutputFile()
		if outputPath == "" {
			outputPath = "sfx.mp3"
		}
		if err := outputBytes(audio, outputPath); err != nil {
			return err
		}

		printSuccess("Saved %s (%s)", outputPath, formatBytes(int64(len(audio))))

		result := map[string]any{
			"output_file": outputPath,
			"audio_size":  len(audio),
		}
		return outputResult(result, "", isJSONOutput())
	},
}

var elevenlabsStatusCmd = &cobra.Command{
	Use:   "status <dubbing-id>",
	Short: "Check a dubbing job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := providerContext("elevenlabs")
		if err != nil {
			return err
		}

		printVerbose("Using context: %s", ctx.Name)

		return statusJob(elevenlabs.DubAdapter(ctx.APIKey, elevenlabsOptions(ctx)...), args[0])
	},
}

var elevenlabsWaitCmd = &cobra.Command{
	Use:   "wait <dubbing-id>",
	Short: "Wait for a dubbing job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := providerContext("elevenlabs")
		if err != nil {
			return err
		}

		printVerbose("Using context: %s", ctx.Name)
		printVerbose("Waiting for dubbing: %s", args[0])

		out, _ := cmd.Flags().GetString("out")
		return waitJob(elevenlabs.DubAdapter(ctx.APIKey, elevenlabsOptions(ctx)...), args[0], "elevenlabs dub", out)
	},
}

func init() {
	addWaitFlags(elevenlabsDubCmd)

	elevenlabsDubCmd.Flags().String("target", "", "Language to dub into, e.g. es (required)")
	elevenlabsDubCmd.Flags().String("source", "", "Spoken language of the input (default: detect)")
	elevenlabsDubCmd.Flags().String("name", "", "Project name")
	elevenlabsDubCmd.Flags().Int("speakers", 0, "Number of speakers (default: detect)")

	elevenlabsTTSCmd.Flags().String("voice", "", "Voice name or ID")
	elevenlabsTTSCmd.Flags().String("model", "", "TTS model")
	elevenlabsTTSCmd.Flags().Float64("stability", 0, "Delivery consistency, 0 to 1")
	elevenlabsTTSCmd.Flags().Float64("similarity", 0, "Voice likeness, 0 to 1")

	elevenlabsSFXCmd.Flags().Float64("seconds", 0, "Target length in seconds, 0.5 to 22")
	elevenlabsSFXCmd.Flags().Float64("influence", 0, "How literally to follow the text, 0 to 1")

	elevenlabsWaitCmd.Flags().String("out", "", "Download the dubbed audio to this path")

	elevenlabsCmd.AddCommand(elevenlabsDubCmd)
	elevenlabsCmd.AddCommand(elevenlabsTTSCmd)
	elevenlabsCmd.AddCommand(elevenlabsSFXCmd)
	elevenlabsCmd.AddCommand(elevenlabsStatusCmd)
	elevenlabsCmd.AddCommand(elevenlabsWaitCmd)
}
