// Package normalize implements the Normalizer interface. It walks the raw
// comment forest depth-first in delivery order, substitutes sentinel text
// for deleted or removed fields, and resolves "more comments" continuation
// markers by fetching the comments they stand for and splicing them under
// their parents. The resolve policy matches the original tool: every
// continuation is exhausted, and any fetch failure fails the whole run
// rather than producing a silently truncated tree.
package normalize

import (
	"context"
	"fmt"
	"strings"

	"github.com/gaurav-prasanna/redditrip/core"
)

// Sentinel text substituted for missing fields. Reddit itself reports
// deleted authors and bodies as "[deleted]" (or "[removed]" for moderated
// bodies); those pass through untouched.
const (
	deletedAuthor = "[deleted]"
	deletedBody   = "[deleted]"
)

// TreeNormalizer builds a normalized Thread from a RawThread.
type TreeNormalizer struct {
	more core.MoreFetcher
}

// New creates a TreeNormalizer that resolves continuations via more.
func New(more core.MoreFetcher) *TreeNormalizer {
	return &TreeNormalizer{more: more}
}

// Normalize builds the Thread. With topLevelOnly set, reply listings are
// never traversed and reply continuations never fetched; only depth-0
// comments are emitted, with empty Children. Top-level continuations are
// resolved in both modes since they stand for depth-0 comments.
func (n *TreeNormalizer) Normalize(ctx context.Context, raw *core.RawThread, topLevelOnly bool) (*core.Thread, error) {
	thread := &core.Thread{Post: normalizeSubmission(raw.Link)}

	linkID := raw.LinkFullname()
	index := make(map[string]*core.CommentNode)
	queue := newMoreQueue()

	for _, thing := range raw.Comments {
		switch thing.Kind {
		case core.KindComment:
			c, err := thing.Comment()
			if err != nil {
				return nil, err
			}
			node, err := n.buildNode(c, 0, topLevelOnly, index, queue)
			if err != nil {
				return nil, err
			}
			thread.Comments = append(thread.Comments, node)
		case core.KindMore:
			m, err := thing.More()
			if err != nil {
				return nil, err
			}
			queue.Add(m.Children)
		}
	}

	if err := n.resolve(ctx, thread, linkID, index, queue, topLevelOnly); err != nil {
		return nil, err
	}
	return thread, nil
}

// buildNode converts one raw comment (and, unless topLevelOnly, its reply
// subtree) into a CommentNode. Continuations found among the replies are
// queued for resolution.
func (n *TreeNormalizer) buildNode(c *core.CommentData, depth int, topLevelOnly bool, index map[string]*core.CommentNode, queue *moreQueue) (*core.CommentNode, error) {
	node := &core.CommentNode{
		Author: normalizeAuthor(c.Author),
		Body:   normalizeBody(markdownBody(c.BodyHTML, c.Body)),
		Depth:  depth,
	}
	if c.Name != "" {
		index[c.Name] = node
	}

	if topLevelOnly {
		return node, nil
	}

	for _, reply := range c.Replies.Children() {
		switch reply.Kind {
		case core.KindComment:
			rc, err := reply.Comment()
			if err != nil {
				return nil, err
			}
			child, err := n.buildNode(rc, depth+1, false, index, queue)
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, child)
		case core.KindMore:
			m, err := reply.More()
			if err != nil {
				return nil, err
			}
			queue.Add(m.Children)
		}
	}
	return node, nil
}

// resolve drains the continuation queue. Resolved things arrive flat and
// are spliced under their parents via the fullname index; depth-0 things
// append to the forest in delivery order. With topLevelOnly set, things
// parented below the link are discarded.
func (n *TreeNormalizer) resolve(ctx context.Context, thread *core.Thread, linkID string, index map[string]*core.CommentNode, queue *moreQueue, topLevelOnly bool) error {
	for queue.HasNext() {
		ids := queue.Next()

		things, err := n.more.MoreChildren(ctx, linkID, ids)
		if err != nil {
			return fmt.Errorf("resolving more comments: %w", err)
		}

		for _, thing := range things {
			switch thing.Kind {
			case core.KindComment:
				c, err := thing.Comment()
				if err != nil {
					return err
				}

				if c.ParentID == linkID {
					node, err := n.buildNode(c, 0, topLevelOnly, index, queue)
					if err != nil {
						return err
					}
					thread.Comments = append(thread.Comments, node)
					continue
				}
				if topLevelOnly {
					continue
				}
				parent, ok := index[c.ParentID]
				if !ok {
					// Orphan: its parent was never delivered. Nothing to
					// splice under, so it cannot appear in the tree.
					continue
				}
				node, err := n.buildNode(c, parent.Depth+1, false, index, queue)
				if err != nil {
					return err
				}
				parent.Children = append(parent.Children, node)

			case core.KindMore:
				m, err := thing.More()
				if err != nil {
					return err
				}
				if topLevelOnly && m.ParentID != linkID {
					continue
				}
				queue.Add(m.Children)
			}
		}
	}
	return nil
}

// normalizeSubmission maps the raw link payload onto the Submission model.
// Link posts have no selftext; the body stays empty and the renderer omits
// its section.
func normalizeSubmission(link core.LinkData) core.Submission {
	return core.Submission{
		ID:        link.ID,
		Title:     strings.TrimSpace(link.Title),
		Subreddit: link.Subreddit,
		Author:    normalizeAuthor(link.Author),
		Body:      markdownBody(link.SelftextHTML, link.Selftext),
		URL:       link.URL,
		Permalink: link.Permalink,
	}
}

// normalizeAuthor maps a missing author to the sentinel. The mapping is
// total: every node renders with a non-empty author.
func normalizeAuthor(author string) string {
	if strings.TrimSpace(author) == "" {
		return deletedAuthor
	}
	return author
}

// normalizeBody maps a missing body to the sentinel. Reddit's own
// "[deleted]" and "[removed]" markers pass through unchanged.
func normalizeBody(body string) string {
	if strings.TrimSpace(body) == "" {
		return deletedBody
	}
	return body
}
