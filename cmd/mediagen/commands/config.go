package commands

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/haivivi/mediagen/pkg/cli"
	"github.com/haivivi/mediagen/pkg/jsontime"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long: `Manage CLI configuration and contexts.

Contexts bind a provider to its credential, similar to kubectl's
context management. Provider commands pick the matching context
automatically when only one exists.

Configuration is stored in ~/.mediagen/config.yaml`,
}

var configAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a new context",
	Long: `Add a new context with the specified name.

Example:
  mediagen config add kling --provider kling --api-key ACCESS_KEY:SECRET_KEY
  mediagen config add rep --provider replicate --api-key r8_xxx --poll-interval 2s
  mediagen config add el --provider elevenlabs --api-key KEY --default-voice bella`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		provider, err := cmd.Flags().GetString("provider")
		if err != nil {
			return fmt.Errorf("failed to read 'provider' flag: %w", err)
		}
		if provider == "" {
			return fmt.Errorf("--provider is required")
		}
		if _, ok := envKeys[provider]; !ok {
			return fmt.Errorf("unknown provider %q", provider)
		}

		apiKey, err := cmd.Flags().GetString("api-key")
		if err != nil {
			return fmt.Errorf("failed to read 'api-key' flag: %w", err)
		}
		if apiKey == "" {
			return fmt.Errorf("--api-key is required")
		}

		baseURL, err := cmd.Flags().GetString("base-url")
		if err != nil {
			return fmt.Errorf("failed to read 'base-url' flag: %w", err)
		}
		pollInterval, err := cmd.Flags().GetString("poll-interval")
		if err != nil {
			return fmt.Errorf("failed to read 'poll-interval' flag: %w", err)
		}
		maxWait, err := cmd.Flags().GetString("max-wait")
		if err != nil {
			return fmt.Errorf("failed to read 'max-wait' flag: %w", err)
		}
		defaultModel, err := cmd.Flags().GetString("default-model")
		if err != nil {
			return fmt.Errorf("failed to read 'default-model' flag: %w", err)
		}
		defaultVoice, err := cmd.Flags().GetString("default-voice")
		if err != nil {
			return fmt.Errorf("failed to read 'default-voice' flag: %w", err)
		}

		ctx := &cli.Context{
			Provider: provider,
			APIKey:   apiKey,
			BaseURL:  baseURL,
		}
		if pollInterval != "" {
			d, err := time.ParseDuration(pollInterval)
			if err != nil {
				return fmt.Errorf("invalid --poll-interval: %w", err)
			}
			ctx.PollInterval = jsontime.Duration(d)
		}
		if maxWait != "" {
			d, err := time.ParseDuration(maxWait)
			if err != nil {
				return fmt.Errorf("invalid --max-wait: %w", err)
			}
			ctx.MaxWait = jsontime.Duration(d)
		}

		// Store provider-specific settings in Extra
		if defaultModel != "" {
			ctx.SetExtra("default_model", defaultModel)
		}
		if defaultVoice != "" {
			ctx.SetExtra("default_voice", defaultVoice)
		}

		cfg := getConfig()
		if err := cfg.AddContext(name, ctx); err != nil {
			return err
		}

		printSuccess("Context %q added successfully", name)
		return nil
	},
}

var configRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		cfg := getConfig()
		if err := cfg.DeleteContext(name); err != nil {
			return err
		}

		printSuccess("Context %q removed", name)
		return nil
	},
}

var configUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Set the current context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		cfg := getConfig()
		if err := cfg.UseContext(name); err != nil {
			return err
		}

		printSuccess("Switched to context %q", name)
		return nil
	},
}

var configCurrentCmd = &cobra.Command{
	Use:   "current",
	Short: "Display the current context",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()

		if cfg.CurrentContext == "" {
			fmt.Println("No current context set")
			return nil
		}

		fmt.Println(cfg.CurrentContext)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all contexts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()

		if len(cfg.Contexts) == 0 {
			fmt.Println("No contexts configured")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CURRENT\tNAME\tPROVIDER\tBASE_URL")

		for _, name := range cfg.ListContexts() {
			ctx := cfg.Contexts[name]
			current := ""
			if name == cfg.CurrentContext {
				current = "*"
			}
			baseURL := ctx.BaseURL
			if baseURL == "" {
				baseURL = "(default)"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", current, name, ctx.Provider, baseURL)
		}

		w.Flush()
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show the configuration, or one context",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()

		if len(args) == 1 {
			ctx, err := cfg.GetContext(args[0])
			if err != nil {
				return err
			}
			showContext(args[0], ctx)
			return nil
		}

		fmt.Printf("Config file: %s\n", cfg.Path())
		fmt.Printf("Current context: %s\n", cfg.CurrentContext)
		fmt.Printf("Contexts: %d\n", len(cfg.Contexts))

		if len(cfg.Contexts) > 0 {
			fmt.Println("\nContext details:")
			for _, name := range cfg.ListContexts() {
				fmt.Println()
				showContext(name, cfg.Contexts[name])
			}
		}

		if b := cfg.Bucket; b != nil && b.Name != "" {
			fmt.Println("\nStaging bucket:")
			fmt.Printf("  Name: %s\n", b.Name)
			if b.Endpoint != "" {
				fmt.Printf("  Endpoint: %s\n", b.Endpoint)
			}
			if b.PublicURL != "" {
				fmt.Printf("  Public URL: %s\n", b.PublicURL)
			}
		}

		return nil
	},
}

func showContext(name string, ctx *cli.Context) {
	fmt.Printf("  %s:\n", name)
	fmt.Printf("    Provider: %s\n", ctx.Provider)
	fmt.Printf("    API Key: %s\n", cli.MaskAPIKey(ctx.APIKey))
	if ctx.BaseURL != "" {
		fmt.Printf("    Base URL: %s\n", ctx.BaseURL)
	}
	if d := ctx.PollInterval.Duration(); d > 0 {
		fmt.Printf("    Poll Interval: %s\n", d)
	}
	if d := ctx.MaxWait.Duration(); d > 0 {
		fmt.Printf("    Max Wait: %s\n", d)
	}
	if defaultModel := ctx.GetExtra("default_model"); defaultModel != "" {
		fmt.Printf("    Default Model: %s\n", defaultModel)
	}
	if defaultVoice := ctx.GetExtra("default_voice"); defaultVoice != "" {
		fmt.Printf("    Default Voice: %s\n", defaultVoice)
	}
}

var configBucketCmd = &cobra.Command{
	Use:   "bucket",
	Short: "Configure the staging bucket",
	Long: `Configure the S3-compatible bucket used to stage local inputs for
providers that only accept remote media.

Without flags, shows the current bucket settings.

Example:
  mediagen config bucket --name media-staging --endpoint https://ACCOUNT.r2.cloudflarestorage.com \
    --access-key-id KEY --secret-access-key SECRET --public-url https://cdn.example.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()

		b := cfg.Bucket
		if b == nil {
			b = &cli.BucketSettings{}
		}
		updated := false
		setString := func(flag string, dst *string) {
			if cmd.Flags().Changed(flag) {
				v, _ := cmd.Flags().GetString(flag)
				*dst = v
				updated = true
			}
		}
		setString("name", &b.Name)
		setString("endpoint", &b.Endpoint)
		setString("region", &b.Region)
		setString("access-key-id", &b.AccessKeyID)
		setString("secret-access-key", &b.SecretAccessKey)
		setString("public-url", &b.PublicURL)
		setString("prefix", &b.Prefix)

		if updated {
			cfg.Bucket = b
			if err := cfg.Save(); err != nil {
				return err
			}
			printSuccess("Staging bucket updated")
			return nil
		}

		if cfg.Bucket == nil || cfg.Bucket.Name == "" {
			fmt.Println("No staging bucket configured")
			return nil
		}
		fmt.Printf("Name: %s\n", b.Name)
		if b.Endpoint != "" {
			fmt.Printf("Endpoint: %s\n", b.Endpoint)
		}
		if b.Region != "" {
			fmt.Printf("Region: %s\n", b.Region)
		}
		fmt.Printf("Access Key ID: %s\n", cli.MaskAPIKey(b.AccessKeyID))
		if b.PublicURL != "" {
			fmt.Printf("Public URL: %s\n", b.PublicURL)
		}
		if b.Prefix != "" {
			fmt.Printf("Prefix: %s\n", b.Prefix)
		}
		return nil
	},
}

func init() {
	// add flags
	configAddCmd.Flags().String("provider", "", "Provider this context drives (required)")
	configAddCmd.Flags().String("api-key", "", "API key (required)")
	configAddCmd.Flags().String("base-url", "", "API base URL")
	configAddCmd.Flags().String("poll-interval", "", "Status poll cadence, e.g. 5s")
	configAddCmd.Flags().String("max-wait", "", "Polling budget, e.g. 15m")
	configAddCmd.Flags().String("default-model", "", "Default model")
	configAddCmd.Flags().String("default-voice", "", "Default voice for speech commands")

	// bucket flags
	configBucketCmd.Flags().String("name", "", "Bucket name")
	configBucketCmd.Flags().String("endpoint", "", "S3 endpoint (R2, MinIO); empty for AWS")
	configBucketCmd.Flags().String("region", "", "Bucket region (default: auto)")
	configBucketCmd.Flags().String("access-key-id", "", "Static access key ID")
	configBucketCmd.Flags().String("secret-access-key", "", "Static secret access key")
	configBucketCmd.Flags().String("public-url", "", "CDN base URL staged objects are served from")
	configBucketCmd.Flags().String("prefix", "", "Key prefix for staged objects")

	// Add subcommands
	configCmd.AddCommand(configAddCmd)
	configCmd.AddCommand(configRemoveCmd)
	configCmd.AddCommand(configUseCmd)
	configCmd.AddCommand(configCurrentCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configBucketCmd)
}
