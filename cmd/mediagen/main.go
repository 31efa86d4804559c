// Package main provides the mediagen CLI tool.
//
// Usage:
//
//	mediagen [flags] <provider> <command> [args]
//
// Providers:
//
//	kling       - Kling video generation
//	replicate   - Replicate prediction models
//	elevenlabs  - ElevenLabs dubbing, speech and sound effects
//	runway      - Runway video generation
//	openai      - OpenAI image generation
//	gemini      - Gemini image generation
//	stability   - Stability AI image generation
//	stage       - Upload a local file to the staging bucket
//	config      - Configuration management
//
// Configuration:
//
//	The CLI stores configuration in ~/.mediagen/
//	Use 'mediagen config' commands to manage contexts.
package main

import (
	"fmt"
	"os"

	"github.com/haivivi/mediagen/cmd/mediagen/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
