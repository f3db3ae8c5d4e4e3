// Package render — JSON renderer.
// Emits the full normalized thread as structured JSON: post metadata, the
// recursive comment tree, and summary stats. Meant for programmatic
// pipelines that want the tree rather than a flat document.
package render

import (
	"encoding/json"
	"fmt"

	"github.com/gaurav-prasanna/redditrip/core"
)

// JSONRenderer produces structured JSON output from a Thread.
type JSONRenderer struct{}

// NewJSONRenderer creates a JSONRenderer.
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{}
}

// Render marshals the thread together with computed stats.
func (r *JSONRenderer) Render(thread *core.Thread) ([]byte, error) {
	out := core.ThreadJSON{
		Post:     thread.Post,
		Comments: thread.Comments,
		Stats:    computeStats(thread.Comments),
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling JSON: %w", err)
	}
	return data, nil
}

// Extension returns the file extension for JSON output.
func (r *JSONRenderer) Extension() string {
	return ".json"
}

// computeStats counts nodes at all depths and tracks the deepest one.
func computeStats(forest []*core.CommentNode) core.ThreadStats {
	var stats core.ThreadStats

	var walk func(nodes []*core.CommentNode)
	walk = func(nodes []*core.CommentNode) {
		for _, n := range nodes {
			stats.CommentCount++
			if n.Depth > stats.MaxDepth {
				stats.MaxDepth = n.Depth
			}
			walk(n.Children)
		}
	}
	walk(forest)

	return stats
}
