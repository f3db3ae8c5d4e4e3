package normalize

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/gaurav-prasanna/redditrip/core"
)

// fakeMore is a canned MoreFetcher keyed by the joined id list.
type fakeMore struct {
	responses map[string][]core.Thing
	calls     [][]string
	err       error
}

func (f *fakeMore) MoreChildren(ctx context.Context, linkID string, ids []string) ([]core.Thing, error) {
	f.calls = append(f.calls, ids)
	if f.err != nil {
		return nil, f.err
	}
	return f.responses[strings.Join(ids, ",")], nil
}

func commentThing(t *testing.T, c core.CommentData) core.Thing {
	t.Helper()
	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshaling comment: %v", err)
	}
	return core.Thing{Kind: core.KindComment, Data: data}
}

func moreThing(t *testing.T, m core.MoreData) core.Thing {
	t.Helper()
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshaling more: %v", err)
	}
	return core.Thing{Kind: core.KindMore, Data: data}
}

func withReplies(things ...core.Thing) core.Replies {
	return core.Replies{Listing: &core.Listing{Children: things}}
}

// exampleThread is the canonical fixture: two top-level comments, the
// second deleted with one nested reply.
func exampleThread(t *testing.T) *core.RawThread {
	t.Helper()
	return &core.RawThread{
		Link: core.LinkData{
			ID:        "x1",
			Title:     "Example Post",
			Subreddit: "Python",
			Author:    "op",
			Selftext:  "Check this out",
			URL:       "https://www.reddit.com/r/Python/comments/x1/example_post/",
		},
		Comments: []core.Thing{
			commentThing(t, core.CommentData{
				ID: "a1", Name: "t1_a1", Author: "alice", Body: "Nice!", ParentID: "t3_x1",
			}),
			commentThing(t, core.CommentData{
				ID: "b1", Name: "t1_b1", Author: "", Body: "[removed]", ParentID: "t3_x1",
				Replies: withReplies(commentThing(t, core.CommentData{
					ID: "b2", Name: "t1_b2", Author: "bob", Body: "Agreed", ParentID: "t1_b1",
				})),
			}),
		},
	}
}

// checkDepths walks the forest verifying each child sits one level below
// its parent.
func checkDepths(t *testing.T, nodes []*core.CommentNode, want int) {
	t.Helper()
	for _, n := range nodes {
		if n.Depth != want {
			t.Fatalf("node %q has depth %d, want %d", n.Author, n.Depth, want)
		}
		checkDepths(t, n.Children, want+1)
	}
}

func countNodes(nodes []*core.CommentNode) int {
	total := 0
	for _, n := range nodes {
		total += 1 + countNodes(n.Children)
	}
	return total
}

func TestNormalizeBuildsNestedForest(t *testing.T) {
	n := New(&fakeMore{})
	thread, err := n.Normalize(context.Background(), exampleThread(t), false)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	if thread.Post.Title != "Example Post" || thread.Post.Subreddit != "Python" {
		t.Fatalf("unexpected submission: %+v", thread.Post)
	}
	if thread.Post.Body != "Check this out" {
		t.Fatalf("unexpected body: %q", thread.Post.Body)
	}

	if len(thread.Comments) != 2 {
		t.Fatalf("expected 2 top-level comments, got %d", len(thread.Comments))
	}
	if got := countNodes(thread.Comments); got != 3 {
		t.Fatalf("expected 3 comments total, got %d", got)
	}

	// Delivery order preserved.
	if thread.Comments[0].Author != "alice" {
		t.Fatalf("expected alice first, got %q", thread.Comments[0].Author)
	}

	// Depth invariant: roots at 0, each child one below its parent.
	checkDepths(t, thread.Comments, 0)

	reply := thread.Comments[1].Children[0]
	if reply.Author != "bob" || reply.Body != "Agreed" || reply.Depth != 1 {
		t.Fatalf("unexpected reply: %+v", reply)
	}
}

func TestTopLevelOnlyDropsReplies(t *testing.T) {
	n := New(&fakeMore{})
	thread, err := n.Normalize(context.Background(), exampleThread(t), true)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	if len(thread.Comments) != 2 {
		t.Fatalf("expected 2 top-level comments, got %d", len(thread.Comments))
	}
	for _, c := range thread.Comments {
		if len(c.Children) != 0 {
			t.Fatalf("comment %q has %d children in top-level-only mode", c.Author, len(c.Children))
		}
		if c.Depth != 0 {
			t.Fatalf("comment %q has depth %d in top-level-only mode", c.Author, c.Depth)
		}
	}
}

func TestSentinelTotality(t *testing.T) {
	raw := &core.RawThread{
		Link: core.LinkData{ID: "x1", Title: "T", Subreddit: "s"},
		Comments: []core.Thing{
			commentThing(t, core.CommentData{ID: "a", Name: "t1_a", Author: "", Body: "[removed]"}),
			commentThing(t, core.CommentData{ID: "b", Name: "t1_b", Author: "[deleted]", Body: ""}),
		},
	}

	n := New(&fakeMore{})
	thread, err := n.Normalize(context.Background(), raw, false)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	first, second := thread.Comments[0], thread.Comments[1]
	if first.Author != "[deleted]" || first.Body != "[removed]" {
		t.Fatalf("unexpected sentinel mapping: %+v", first)
	}
	if second.Author != "[deleted]" || second.Body != "[deleted]" {
		t.Fatalf("unexpected sentinel mapping: %+v", second)
	}
	for _, c := range thread.Comments {
		if c.Author == "" || c.Body == "" {
			t.Fatalf("sentinel mapping not total: %+v", c)
		}
	}
}

func TestResolvesContinuationUnderParent(t *testing.T) {
	raw := exampleThread(t)
	// Attach a continuation under alice's comment.
	raw.Comments[0] = commentThing(t, core.CommentData{
		ID: "a1", Name: "t1_a1", Author: "alice", Body: "Nice!", ParentID: "t3_x1",
		Replies: withReplies(moreThing(t, core.MoreData{
			ID: "m1", Name: "t1_m1", ParentID: "t1_a1", Count: 1, Children: []string{"d1"},
		})),
	})

	fake := &fakeMore{responses: map[string][]core.Thing{
		"d1": {commentThing(t, core.CommentData{
			ID: "d1", Name: "t1_d1", Author: "dana", Body: "Late reply", ParentID: "t1_a1",
		})},
	}}

	thread, err := New(fake).Normalize(context.Background(), raw, false)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	if len(fake.calls) != 1 {
		t.Fatalf("expected 1 more-children call, got %d", len(fake.calls))
	}
	alice := thread.Comments[0]
	if len(alice.Children) != 1 {
		t.Fatalf("expected resolved reply under alice, got %d children", len(alice.Children))
	}
	if got := alice.Children[0]; got.Author != "dana" || got.Depth != 1 {
		t.Fatalf("unexpected resolved reply: %+v", got)
	}
	checkDepths(t, thread.Comments, 0)
}

func TestResolutionChainsNestedContinuations(t *testing.T) {
	raw := &core.RawThread{
		Link: core.LinkData{ID: "x1", Title: "T", Subreddit: "s"},
		Comments: []core.Thing{
			moreThing(t, core.MoreData{ID: "m1", ParentID: "t3_x1", Children: []string{"a1"}}),
		},
	}

	fake := &fakeMore{responses: map[string][]core.Thing{
		"a1": {
			commentThing(t, core.CommentData{ID: "a1", Name: "t1_a1", Author: "alice", Body: "first", ParentID: "t3_x1"}),
			moreThing(t, core.MoreData{ID: "m2", ParentID: "t1_a1", Children: []string{"b1"}}),
		},
		"b1": {
			commentThing(t, core.CommentData{ID: "b1", Name: "t1_b1", Author: "bob", Body: "second", ParentID: "t1_a1"}),
		},
	}}

	thread, err := New(fake).Normalize(context.Background(), raw, false)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	if len(fake.calls) != 2 {
		t.Fatalf("expected 2 more-children calls, got %d", len(fake.calls))
	}
	if len(thread.Comments) != 1 {
		t.Fatalf("expected 1 top-level comment, got %d", len(thread.Comments))
	}
	alice := thread.Comments[0]
	if len(alice.Children) != 1 || alice.Children[0].Author != "bob" {
		t.Fatalf("nested continuation not spliced: %+v", alice.Children)
	}
	checkDepths(t, thread.Comments, 0)
}

func TestContinuationIdsDeduplicated(t *testing.T) {
	raw := &core.RawThread{
		Link: core.LinkData{ID: "x1", Title: "T", Subreddit: "s"},
		Comments: []core.Thing{
			moreThing(t, core.MoreData{ID: "m1", ParentID: "t3_x1", Children: []string{"a1"}}),
			moreThing(t, core.MoreData{ID: "m2", ParentID: "t3_x1", Children: []string{"a1"}}),
		},
	}

	fake := &fakeMore{responses: map[string][]core.Thing{
		"a1": {commentThing(t, core.CommentData{ID: "a1", Name: "t1_a1", Author: "alice", Body: "once", ParentID: "t3_x1"})},
	}}

	thread, err := New(fake).Normalize(context.Background(), raw, false)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(fake.calls) != 1 {
		t.Fatalf("duplicate ids should collapse to one call, got %d", len(fake.calls))
	}
	if len(thread.Comments) != 1 {
		t.Fatalf("expected 1 comment, got %d", len(thread.Comments))
	}
}

func TestContinuationFailureAbortsWholeRun(t *testing.T) {
	raw := &core.RawThread{
		Link: core.LinkData{ID: "x1", Title: "T", Subreddit: "s"},
		Comments: []core.Thing{
			commentThing(t, core.CommentData{ID: "a1", Name: "t1_a1", Author: "alice", Body: "hi", ParentID: "t3_x1"}),
			moreThing(t, core.MoreData{ID: "m1", ParentID: "t3_x1", Children: []string{"b1"}}),
		},
	}

	fetchErr := errors.New("rate limited")
	thread, err := New(&fakeMore{err: fetchErr}).Normalize(context.Background(), raw, false)
	if err == nil {
		t.Fatal("expected error from failed continuation fetch")
	}
	if !errors.Is(err, fetchErr) {
		t.Fatalf("expected wrapped fetch error, got %v", err)
	}
	if thread != nil {
		t.Fatalf("expected no partial tree, got %+v", thread)
	}
}

func TestTopLevelOnlySkipsReplyContinuations(t *testing.T) {
	raw := &core.RawThread{
		Link: core.LinkData{ID: "x1", Title: "T", Subreddit: "s"},
		Comments: []core.Thing{
			commentThing(t, core.CommentData{
				ID: "a1", Name: "t1_a1", Author: "alice", Body: "hi", ParentID: "t3_x1",
				Replies: withReplies(moreThing(t, core.MoreData{
					ID: "m1", ParentID: "t1_a1", Children: []string{"b1"},
				})),
			}),
		},
	}

	fake := &fakeMore{}
	thread, err := New(fake).Normalize(context.Background(), raw, true)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(fake.calls) != 0 {
		t.Fatalf("reply continuations must not be fetched in top-level-only mode, got %d calls", len(fake.calls))
	}
	if len(thread.Comments) != 1 || len(thread.Comments[0].Children) != 0 {
		t.Fatalf("unexpected forest: %+v", thread.Comments)
	}
}

func TestTopLevelOnlyResolvesTopLevelContinuations(t *testing.T) {
	raw := &core.RawThread{
		Link: core.LinkData{ID: "x1", Title: "T", Subreddit: "s"},
		Comments: []core.Thing{
			moreThing(t, core.MoreData{ID: "m1", ParentID: "t3_x1", Children: []string{"a1"}}),
		},
	}

	fake := &fakeMore{responses: map[string][]core.Thing{
		"a1": {
			commentThing(t, core.CommentData{ID: "a1", Name: "t1_a1", Author: "alice", Body: "root", ParentID: "t3_x1"}),
			// Nested things can come back from the same call; they must
			// be discarded in top-level-only mode.
			commentThing(t, core.CommentData{ID: "b1", Name: "t1_b1", Author: "bob", Body: "nested", ParentID: "t1_a1"}),
		},
	}}

	thread, err := New(fake).Normalize(context.Background(), raw, true)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(thread.Comments) != 1 {
		t.Fatalf("expected 1 top-level comment, got %d", len(thread.Comments))
	}
	if got := thread.Comments[0]; got.Author != "alice" || len(got.Children) != 0 {
		t.Fatalf("unexpected comment: %+v", got)
	}
}

func TestLinkPostHasEmptyBody(t *testing.T) {
	raw := &core.RawThread{
		Link: core.LinkData{ID: "x1", Title: "A link", Subreddit: "s", URL: "https://example.com"},
	}
	thread, err := New(&fakeMore{}).Normalize(context.Background(), raw, false)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if thread.Post.Body != "" {
		t.Fatalf("link post should keep an empty body, got %q", thread.Post.Body)
	}
	if len(thread.Comments) != 0 {
		t.Fatalf("expected empty forest, got %d", len(thread.Comments))
	}
}
