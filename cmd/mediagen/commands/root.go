package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/haivivi/mediagen/pkg/cli"
)

var (
	// Global flags
	cfgFile     string
	contextName string
	outputFile  string
	inputFile   string
	outputJSON  bool
	jqExpr      string
	verbose     bool

	// Global configuration
	globalConfig *cli.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mediagen",
	Short: "Generative media API CLI tool",
	Long: `mediagen - A command line interface for generative media APIs.

This tool submits generation jobs to remote providers, polls them to
completion and downloads the results:
  - Video generation (Kling, Runway)
  - Prediction models (Replicate: music, background removal, upscaling,
    speech enhancement, object tracking)
  - Dubbing, speech and sound effects (ElevenLabs)
  - Image generation (OpenAI, Gemini, Stability AI)

Configuration is stored in ~/.mediagen/ and supports multiple contexts,
similar to kubectl's context management. Commands resolve their context
by provider, so a single default context per provider needs no flags.
Without any context, each provider falls back to its usual environment
variable (KLING_API_KEY, REPLICATE_API_TOKEN, ELEVENLABS_API_KEY,
RUNWAY_API_SECRET, OPENAI_API_KEY, GEMINI_API_KEY, STABILITY_API_KEY).

Examples:
  # Set up a context
  mediagen config add kling --provider kling --api-key ACCESS_KEY:SECRET_KEY

  # Submit a job and wait for the result
  mediagen kling t2v -f t2v.yaml --wait --out garden.mp4

  # Pipe job metadata to another command
  mediagen replicate predict -f pred.yaml --json | jq '.job_id'

  # Or filter in place
  mediagen replicate predict -f pred.yaml --jq '.job_id'
`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "", "", "config file (default is ~/.mediagen/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&contextName, "context", "c", "", "context name to use")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "output file for command results (default: stdout)")
	rootCmd.PersistentFlags().StringVarP(&inputFile, "file", "f", "", "input request file (YAML or JSON)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output as JSON (for piping)")
	rootCmd.PersistentFlags().StringVar(&jqExpr, "jq", "", "filter command results through a jq expression")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(klingCmd)
	rootCmd.AddCommand(replicateCmd)
	rootCmd.AddCommand(elevenlabsCmd)
	rootCmd.AddCommand(runwayCmd)
	rootCmd.AddCommand(openaiCmd)
	rootCmd.AddCommand(geminiCmd)
	rootCmd.AddCommand(stabilityCmd)
	rootCmd.AddCommand(stageCmd)
}

func initConfig() {
	var err error
	globalConfig, err = cli.LoadConfigWithPath(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing config: %v\n", err)
		os.Exit(1)
	}
}

// getConfig returns the global configuration
func getConfig() *cli.Config {
	return globalConfig
}

// getInputFile returns the input file path
func getInputFile() string {
	return inputFile
}

// getOutputFile returns the output file path
func getOutputFile() string {
	return outputFile
}

// isJSONOutput returns whether output should be JSON
func isJSONOutput() bool {
	return outputJSON
}

// isVerbose returns whether verbose mode is enabled
func isVerbose() bool {
	return verbose
}

// outputResult outputs the result using cli package
func outputResult(result any, outputPath string, asJSON bool) error {
	format := cli.FormatYAML
	if asJSON {
		format = cli.FormatJSON
	}
	opts := cli.OutputOptions{
		Format: format,
		File:   outputPath,
	}
	if jqExpr != "" {
		return cli.OutputJQ(result, jqExpr, opts)
	}
	return cli.Output(result, opts)
}

// printVerbose prints verbose output if enabled
func printVerbose(format string, args ...any) {
	cli.PrintVerbose(verbose, format, args...)
}
