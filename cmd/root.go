// Package cmd implements the CLI commands for redditrip using Cobra.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "redditrip",
	Short: "redditrip — extract Reddit threads into LLM-optimized outputs",
	Long: `redditrip fetches a Reddit submission and its full comment tree and
renders it as Markdown, JSON, PDF, or Embeddings.

Usage:
  redditrip rip <url> [flags]`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
