// Package render — Embeddings renderer.
// Chunks the canonical Markdown and calls an Ollama-compatible embedding
// API for each chunk. Output is a human-readable .embeddings.txt file.
package render

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gaurav-prasanna/redditrip/core"
	"github.com/gaurav-prasanna/redditrip/core/chunk"
	"github.com/go-resty/resty/v2"
)

const (
	defaultOllamaURL = "http://localhost:11434/api/embeddings"
	embeddingTimeout = 60 * time.Second
)

// EmbeddingsRenderer generates embeddings from Markdown chunks.
type EmbeddingsRenderer struct {
	Model     string
	ChunkSize int
	markdown  *MarkdownRenderer
	client    *resty.Client
}

// NewEmbeddingsRenderer creates an EmbeddingsRenderer.
func NewEmbeddingsRenderer(model string, chunkSize int) *EmbeddingsRenderer {
	return &EmbeddingsRenderer{
		Model:     model,
		ChunkSize: chunkSize,
		markdown:  NewMarkdownRenderer(),
		client:    resty.New().SetTimeout(embeddingTimeout),
	}
}

// ollamaRequest is the request body for the Ollama embeddings API.
type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// ollamaResponse is the response body from the Ollama embeddings API.
type ollamaResponse struct {
	Embedding []float64 `json:"embedding"`
}

// Render builds the canonical Markdown, chunks it, embeds each chunk, and
// produces the human-readable output.
func (r *EmbeddingsRenderer) Render(thread *core.Thread) ([]byte, error) {
	md, err := r.markdown.Render(thread)
	if err != nil {
		return nil, err
	}

	chunks := chunk.New(r.ChunkSize).Chunk(string(md))
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no content to embed")
	}

	var buf strings.Builder
	fmt.Fprintf(&buf, "# source: %s\n", thread.Post.URL)
	fmt.Fprintf(&buf, "# model: %s\n", r.Model)
	fmt.Fprintf(&buf, "# chunk_size: %d\n\n", r.ChunkSize)

	ctx := context.Background()
	for i, chunkText := range chunks {
		embedding, err := r.embed(ctx, chunkText)
		if err != nil {
			return nil, fmt.Errorf("embedding chunk %d: %w", i+1, err)
		}

		fmt.Fprintf(&buf, "--- chunk %d ---\n", i+1)
		fmt.Fprintf(&buf, "TEXT:\n%s\n\n", chunkText)

		vecStrs := make([]string, len(embedding))
		for j, v := range embedding {
			vecStrs[j] = fmt.Sprintf("%.4f", v)
		}
		fmt.Fprintf(&buf, "VECTOR:\n[%s]\n\n", strings.Join(vecStrs, ", "))
	}

	return []byte(buf.String()), nil
}

// Extension returns the file extension for embeddings output.
func (r *EmbeddingsRenderer) Extension() string {
	return ".embeddings.txt"
}

// embed calls the Ollama embedding API for a single text input.
func (r *EmbeddingsRenderer) embed(ctx context.Context, text string) ([]float64, error) {
	resp, err := r.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(ollamaRequest{Model: r.Model, Prompt: text}).
		Post(defaultOllamaURL)
	if err != nil {
		return nil, fmt.Errorf("calling embedding API: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("embedding API returned %d: %s", resp.StatusCode(), resp.String())
	}

	var decoded ollamaResponse
	if err := json.Unmarshal(resp.Body(), &decoded); err != nil {
		return nil, fmt.Errorf("decoding embedding response: %w", err)
	}
	return decoded.Embedding, nil
}
