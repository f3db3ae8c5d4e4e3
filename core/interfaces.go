// Package core defines the pipeline interfaces for redditrip.
// Each stage of the pipeline is a clean, testable interface.
package core

import "context"

// Submission holds the post being extracted. Body is Markdown and may be
// empty for link posts.
type Submission struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Subreddit string `json:"subreddit"`
	Author    string `json:"author"`
	Body      string `json:"body"`
	URL       string `json:"url"`
	Permalink string `json:"permalink"`
}

// CommentNode is one comment in the normalized tree. Author and Body are
// never empty: deleted or removed fields are replaced by sentinel text
// during normalization. Depth is derived during the walk (roots are 0),
// never taken from the wire. Children are fully owned subtrees kept in
// delivery order.
type CommentNode struct {
	Author   string         `json:"author"`
	Body     string         `json:"body"`
	Depth    int            `json:"depth"`
	Children []*CommentNode `json:"children,omitempty"`
}

// Thread is the normalized result of one run: the submission plus its
// comment forest. It is built once and read-only afterwards.
type Thread struct {
	Post     Submission     `json:"post"`
	Comments []*CommentNode `json:"comments"`
}

// ThreadStats summarizes the normalized forest for the JSON renderer.
type ThreadStats struct {
	CommentCount int `json:"comment_count"`
	MaxDepth     int `json:"max_depth"`
}

// ThreadJSON is the complete JSON output for a thread.
type ThreadJSON struct {
	Post     Submission     `json:"post"`
	Comments []*CommentNode `json:"comments"`
	Stats    ThreadStats    `json:"stats"`
}

// Fetcher retrieves the raw submission and comment forest for a post URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*RawThread, error)
}

// MoreFetcher resolves a "more comments" continuation into the flat list
// of things it stands for. Implementations batch ids as the API requires.
type MoreFetcher interface {
	MoreChildren(ctx context.Context, linkID string, ids []string) ([]Thing, error)
}

// Normalizer turns the raw forest into a well-formed Thread.
type Normalizer interface {
	Normalize(ctx context.Context, raw *RawThread, topLevelOnly bool) (*Thread, error)
}

// Renderer converts a normalized Thread into a final output format.
type Renderer interface {
	Render(thread *Thread) ([]byte, error)
	// Extension returns the file extension for this renderer (e.g. ".md", ".pdf").
	Extension() string
}
