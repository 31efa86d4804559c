package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/haivivi/mediagen/pkg/cli"
	"github.com/haivivi/mediagen/pkg/remotejob"
	"github.com/haivivi/mediagen/pkg/storage"
)

const (
	// submitTimeout bounds a submit-only API call.
	submitTimeout = 60 * time.Second

	// statusTimeout bounds a single status query.
	statusTimeout = 30 * time.Second
)

// envKeys maps each provider to its usual credential variable, the
// fallback when no context is configured.
var envKeys = map[string]string{
	"kling":      "KLING_API_KEY",
	"replicate":  "REPLICATE_API_TOKEN",
	"elevenlabs": "ELEVENLABS_API_KEY",
	"runway":     "RUNWAY_API_SECRET",
	"openai":     "OPENAI_API_KEY",
	"gemini":     "GEMINI_API_KEY",
	"stability":  "STABILITY_API_KEY",
}

// loadRequest loads a request from a YAML or JSON file
func loadRequest(path string, v any) error {
	return cli.LoadRequest(path, v)
}

// outputBytes outputs binary data to a file
func outputBytes(data []byte, outputPath string) error {
	return cli.OutputBytes(data, outputPath)
}

// printSuccess prints a success message
func printSuccess(format string, args ...any) {
	cli.PrintSuccess(format, args...)
}

// printInfo prints an info message
func printInfo(format string, args ...any) {
	cli.PrintInfo(format, args...)
}

// requireInputFile checks if input file is provided
func requireInputFile() error {
	if getInputFile() == "" {
		return fmt.Errorf("input file is required, use -f flag")
	}
	return nil
}

// formatBytes formats bytes to human readable string
func formatBytes(bytes int64) string {
	return cli.FormatBytes(bytes)
}

// isRemoteURL reports whether s is an http(s) URL rather than a local path
func isRemoteURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// providerContext resolves the context for a provider command. With no
// -c flag and no context configured for the provider, the provider's
// environment variable supplies the credential.
func providerContext(provider string) (*cli.Context, error) {
	cfg := getConfig()
	if cfg == nil {
		return nil, fmt.Errorf("configuration not initialized")
	}
	if contextName == "" && len(cfg.ContextsFor(provider)) == 0 {
		if key := os.Getenv(envKeys[provider]); key != "" {
			return &cli.Context{Name: "env", Provider: provider, APIKey: key}, nil
		}
		return nil, fmt.Errorf("no context configured for provider %q and %s is not set. Add one with 'mediagen config add'",
			provider, envKeys[provider])
	}
	return cfg.ResolveProvider(contextName, provider)
}

// newRunner builds the shared job runner. Engine logs surface only in
// verbose mode; the progress line covers the quiet path.
func newRunner() *remotejob.Runner {
	log := slog.New(slog.DiscardHandler)
	if isVerbose() {
		log = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return remotejob.NewRunner(remotejob.WithLogger(log))
}

// interruptContext returns a context canceled on SIGINT or SIGTERM, so
// a poll loop stops at the next tick instead of dying mid-write.
func interruptContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// submitJob submits payload through the adapter. With --wait it drives
// the whole pipeline and saves the result; otherwise it prints the job
// ID for a later status/wait call.
func submitJob(cmd *cobra.Command, a *remotejob.Adapter, payload any, label string) error {
	if wait, _ := cmd.Flags().GetBool("wait"); wait {
		out, _ := cmd.Flags().GetString("out")
		return runJob(a, payload, label, out)
	}

	reqCtx, cancel := context.WithTimeout(context.Background(), submitTimeout)
	defer cancel()

	job, err := newRunner().Submit(reqCtx, a, payload)
	if err != nil {
		return err
	}

	printSuccess("Job submitted: %s", job.ID)

	result := map[string]any{
		"job_id":   job.ID,
		"provider": job.Provider,
		"state":    job.State,
	}
	return outputResult(result, getOutputFile(), isJSONOutput())
}

// runJob drives submit, poll and retrieve with a progress line.
// Artifacts land at outPath, or under label-derived names in the
// working directory when outPath is empty.
func runJob(a *remotejob.Adapter, payload any, label, outPath string) error {
	ctx, stop := interruptContext()
	defer stop()

	progress := cli.NewProgress(label)
	opts := []remotejob.RunOption{remotejob.WithTransition(progress.Transition())}

	var sink remotejob.Sink
	var saved []string
	if outPath != "" {
		sink = storage.Local(outPath)
		saved = []string{outPath}
	} else {
		factory := storage.LocalFactory(".", strings.ReplaceAll(label, " ", "-"))
		opts = append(opts, remotejob.WithAllArtifacts(func(index int, locator string) (remotejob.Sink, error) {
			s, err := factory(index, locator)
			if err != nil {
				return nil, err
			}
			saved = append(saved, s.(*storage.LocalSink).Path())
			return s, nil
		}))
	}

	progress.Update(remotejob.StatePending)
	res, err := newRunner().Run(ctx, a, payload, sink, opts...)
	progress.Finish()
	if err != nil {
		return err
	}

	printSuccess("Job %s succeeded", res.Job.ID)
	for i, art := range res.Artifacts {
		if i < len(saved) {
			printSuccess("Saved %s (%s)", saved[i], formatBytes(art.Bytes))
		}
	}

	result := map[string]any{
		"job_id":    res.Job.ID,
		"state":     res.Job.State,
		"artifacts": res.Artifacts,
	}
	return outputResult(result, getOutputFile(), isJSONOutput())
}

// statusJob queries an existing job once and prints its state.
func statusJob(a *remotejob.Adapter, jobID string) error {
	reqCtx, cancel := context.WithTimeout(context.Background(), statusTimeout)
	defer cancel()

	job := &remotejob.Job{ID: jobID, Provider: a.Name}
	res, err := newRunner().Status(reqCtx, a, job)
	if err != nil {
		return err
	}

	result := map[string]any{
		"job_id": jobID,
		"state":  res.State,
		"status": res.Raw,
	}
	return outputResult(result, getOutputFile(), isJSONOutput())
}

// waitJob polls an existing job until it finishes. With outPath set
// the artifacts are downloaded as well; otherwise the locators are
// reported for a separate fetch.
func waitJob(a *remotejob.Adapter, jobID, label, outPath string) error {
	ctx, stop := interruptContext()
	defer stop()

	progress := cli.NewProgress(label)
	opts := []remotejob.RunOption{remotejob.WithTransition(progress.Transition())}

	job := &remotejob.Job{ID: jobID, Provider: a.Name}
	runner := newRunner()
	final, err := runner.Wait(ctx, a, job, opts...)
	progress.Finish()
	if err != nil {
		return err
	}

	printSuccess("Job %s %s", jobID, final.State)

	result := map[string]any{
		"job_id": jobID,
		"state":  final.State,
	}

	if outPath != "" {
		arts, err := runner.Retrieve(ctx, a, final, storage.Local(outPath), opts...)
		if err != nil {
			return err
		}
		for _, art := range arts {
			printSuccess("Saved %s (%s)", outPath, formatBytes(art.Bytes))
		}
		result["artifacts"] = arts
	} else if a.Artifacts != nil {
		if locators, err := a.Artifacts(final.Body); err == nil && len(locators) > 0 {
			result["locators"] = locators
		}
	}

	return outputResult(result, getOutputFile(), isJSONOutput())
}

// stagingBucket connects to the bucket configured for staging local
// inputs that providers must fetch by URL.
func stagingBucket(ctx context.Context) (*storage.Bucket, error) {
	cfg := getConfig()
	if cfg == nil || cfg.Bucket == nil || cfg.Bucket.Name == "" {
		return nil, fmt.Errorf("no staging bucket configured. Set one with 'mediagen config bucket'")
	}
	b := cfg.Bucket
	return storage.NewBucket(ctx, storage.BucketConfig{
		Name:            b.Name,
		Endpoint:        b.Endpoint,
		Region:          b.Region,
		AccessKeyID:     b.AccessKeyID,
		SecretAccessKey: b.SecretAccessKey,
		PublicURL:       b.PublicURL,
		Prefix:          b.Prefix,
	})
}

// addWaitFlags registers the --wait/--out pair on a submit command.
func addWaitFlags(cmds ...*cobra.Command) {
	for _, c := range cmds {
		c.Flags().Bool("wait", false, "Wait for the job to complete and download the result")
		c.Flags().String("out", "", "Artifact output path (default: derived from the command and locator)")
	}
}
