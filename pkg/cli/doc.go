// Package cli provides common utilities for the mediagen command-line tool.
//
// This package includes:
//   - Configuration management (provider contexts, staging bucket)
//   - Output formatting (JSON, YAML, raw) and jq filtering
//   - Request file loading (YAML/JSON, with JSON repair)
//   - Progress rendering for polled jobs
//
// Configuration is stored in ~/.mediagen/config.yaml, supporting
// multiple contexts similar to kubectl. Each context binds one
// provider to its credential and optional overrides.
//
// Example usage:
//
//	cfg, err := cli.LoadConfig()
//
//	// Pick the context for a provider command
//	ctx, err := cfg.ResolveProvider("", "kling")
//
//	// Output result
//	cli.Output(result, cli.OutputOptions{
//	    Format: cli.FormatJSON,
//	    File:   outputPath,
//	})
package cli
