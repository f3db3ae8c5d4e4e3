// Package cmd — rip command.
// This is the main command that orchestrates the pipeline:
// fetch → normalize → render → write.
//
// It handles flag validation, renderer selection, and credential loading
// from flags, the environment, or a .env file.
package cmd

import (
	"context"
	"fmt"
	"net/url"
	"os"

	"github.com/gaurav-prasanna/redditrip/core"
	"github.com/gaurav-prasanna/redditrip/core/fetch"
	"github.com/gaurav-prasanna/redditrip/core/normalize"
	"github.com/gaurav-prasanna/redditrip/core/output"
	"github.com/gaurav-prasanna/redditrip/core/render"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Flag variables.
var (
	flagTopLevelOnly bool
	flagMarkdown     bool
	flagJSON         bool
	flagPDF          bool
	flagEmbeddings   bool
	flagModel        string
	flagChunkSize    int
	flagOutputDir    string
	flagClientID     string
	flagClientSecret string
	flagUserAgent    string
)

var ripCmd = &cobra.Command{
	Use:   "rip <url>",
	Short: "Extract a Reddit post and its comments to the chosen format",
	Long: `Rip fetches a Reddit submission, normalizes its comment tree (resolving
all "load more" continuations), and renders it to the chosen output format.
Markdown is the default.

Examples:
  redditrip rip https://www.reddit.com/r/golang/comments/abc123/title/
  redditrip rip https://www.reddit.com/r/golang/comments/abc123/ --top-level-only
  redditrip rip https://www.reddit.com/r/golang/comments/abc123/ --json --output_dir ./out
  redditrip rip https://www.reddit.com/r/golang/comments/abc123/ --embeddings --model nomic-embed-text`,
	Args: cobra.ExactArgs(1),
	RunE: runRip,
}

func init() {
	rootCmd.AddCommand(ripCmd)

	ripCmd.Flags().BoolVar(&flagTopLevelOnly, "top-level-only", false, "Extract only top-level comments, skipping all replies")

	// Output format flags (mutually exclusive; Markdown is the default).
	ripCmd.Flags().BoolVar(&flagMarkdown, "markdown", false, "Output Markdown (default)")
	ripCmd.Flags().BoolVar(&flagJSON, "json", false, "Output structured JSON")
	ripCmd.Flags().BoolVar(&flagPDF, "pdf", false, "Output PDF")
	ripCmd.Flags().BoolVar(&flagEmbeddings, "embeddings", false, "Output embeddings")

	// Embedding-specific flags.
	ripCmd.Flags().StringVar(&flagModel, "model", "", "Embedding model (required with --embeddings)")
	ripCmd.Flags().IntVar(&flagChunkSize, "chunk_size", 512, "Token chunk size for embeddings")

	ripCmd.Flags().StringVar(&flagOutputDir, "output_dir", "", "Output directory (default: ./output)")

	// API credentials. Optional: without them the public JSON endpoints
	// are used, which is fine for light use.
	ripCmd.Flags().StringVar(&flagClientID, "client-id", "", "Reddit API client ID (or REDDIT_CLIENT_ID in .env)")
	ripCmd.Flags().StringVar(&flagClientSecret, "client-secret", "", "Reddit API client secret (or REDDIT_CLIENT_SECRET in .env)")
	ripCmd.Flags().StringVar(&flagUserAgent, "user-agent", "", "User agent string")
}

func runRip(cmd *cobra.Command, args []string) error {
	rawURL := args[0]

	if err := validateFlags(); err != nil {
		return err
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid URL: %s (must include scheme, e.g. https://www.reddit.com/...)", rawURL)
	}
	if _, err := fetch.ExtractPostID(rawURL); err != nil {
		return fmt.Errorf("not a Reddit post URL: %s", rawURL)
	}

	clientID, clientSecret := loadCredentials()

	renderer := selectRenderer()

	fetcher := fetch.New(fetch.Options{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		UserAgent:    flagUserAgent,
	})
	normalizer := normalize.New(fetcher)

	writer, err := output.New(flagOutputDir)
	if err != nil {
		return fmt.Errorf("initializing output writer: %w", err)
	}

	ctx := context.Background()

	thread, data, err := processURL(ctx, rawURL, fetcher, normalizer, renderer, flagTopLevelOnly)
	if err != nil {
		return err
	}

	path, err := writer.Write(thread, data, renderer.Extension())
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Written: %s\n", path)
	return nil
}

// processURL runs a single URL through the full pipeline.
func processURL(
	ctx context.Context,
	rawURL string,
	fetcher core.Fetcher,
	normalizer core.Normalizer,
	renderer core.Renderer,
	topLevelOnly bool,
) (*core.Thread, []byte, error) {
	// 1. Fetch
	raw, err := fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch: %w", err)
	}

	// 2. Normalize the comment tree
	thread, err := normalizer.Normalize(ctx, raw, topLevelOnly)
	if err != nil {
		return nil, nil, fmt.Errorf("normalize: %w", err)
	}

	// 3. Render to output format
	data, err := renderer.Render(thread)
	if err != nil {
		return nil, nil, fmt.Errorf("render: %w", err)
	}

	return thread, data, nil
}

// loadCredentials resolves API credentials from flags first, then the
// environment (including a .env file in the working directory).
func loadCredentials() (string, string) {
	_ = godotenv.Load()

	clientID := flagClientID
	if clientID == "" {
		clientID = os.Getenv("REDDIT_CLIENT_ID")
	}
	clientSecret := flagClientSecret
	if clientSecret == "" {
		clientSecret = os.Getenv("REDDIT_CLIENT_SECRET")
	}
	return clientID, clientSecret
}

// validateFlags checks that at most one output format is chosen and that
// embeddings options are complete.
func validateFlags() error {
	formatCount := 0
	for _, set := range []bool{flagMarkdown, flagJSON, flagPDF, flagEmbeddings} {
		if set {
			formatCount++
		}
	}
	if formatCount > 1 {
		return fmt.Errorf("only one output format allowed per run (got %d)", formatCount)
	}

	if flagEmbeddings && flagModel == "" {
		return fmt.Errorf("--model is required when using --embeddings")
	}

	return nil
}

// selectRenderer creates the appropriate Renderer based on flags.
// Markdown is the default when no format flag is given.
func selectRenderer() core.Renderer {
	switch {
	case flagJSON:
		return render.NewJSONRenderer()
	case flagPDF:
		return render.NewPDFRenderer()
	case flagEmbeddings:
		return render.NewEmbeddingsRenderer(flagModel, flagChunkSize)
	default:
		return render.NewMarkdownRenderer()
	}
}
