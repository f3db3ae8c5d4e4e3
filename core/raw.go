// Raw wire model for Reddit's JSON API. Everything arrives wrapped in a
// "Thing" envelope whose kind selects the payload shape: t3 for the link,
// t1 for comments, "more" for continuation markers, "Listing" for pages.
package core

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Thing kinds used by the comments endpoint.
const (
	KindComment = "t1"
	KindLink    = "t3"
	KindMore    = "more"
	KindListing = "Listing"
)

// Thing is the generic kind/data envelope. Data is decoded lazily because
// its shape depends on Kind.
type Thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// Listing is one page of Things.
type Listing struct {
	Children []Thing `json:"children"`
	After    string  `json:"after"`
	Before   string  `json:"before"`
}

// LinkData is the t3 payload: the submission itself.
type LinkData struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Title        string `json:"title"`
	Author       string `json:"author"`
	Subreddit    string `json:"subreddit"`
	Selftext     string `json:"selftext"`
	SelftextHTML string `json:"selftext_html"`
	Permalink    string `json:"permalink"`
	URL          string `json:"url"`
	NumComments  int    `json:"num_comments"`
}

// CommentData is the t1 payload. Replies needs custom decoding: the API
// sends an empty string when a comment has no replies and a nested
// Listing Thing when it does.
type CommentData struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Author   string  `json:"author"`
	Body     string  `json:"body"`
	BodyHTML string  `json:"body_html"`
	ParentID string  `json:"parent_id"`
	Replies  Replies `json:"replies"`
}

// MoreData is the "more" payload: a continuation marker standing for
// Children ids worth of unfetched sibling comments.
type MoreData struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	ParentID string   `json:"parent_id"`
	Count    int      `json:"count"`
	Children []string `json:"children"`
}

// Replies wraps the replies field of a comment. Listing is nil when the
// comment has none.
type Replies struct {
	Listing *Listing
}

// UnmarshalJSON accepts both the empty-string form and the Listing form.
func (r *Replies) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte(`""`)) || bytes.Equal(trimmed, []byte("null")) {
		r.Listing = nil
		return nil
	}

	var thing struct {
		Kind string  `json:"kind"`
		Data Listing `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &thing); err != nil {
		return fmt.Errorf("decoding replies listing: %w", err)
	}
	r.Listing = &thing.Data
	return nil
}

// MarshalJSON writes the same two forms the API uses.
func (r Replies) MarshalJSON() ([]byte, error) {
	if r.Listing == nil {
		return []byte(`""`), nil
	}
	return json.Marshal(struct {
		Kind string   `json:"kind"`
		Data *Listing `json:"data"`
	}{KindListing, r.Listing})
}

// Children returns the reply Things, or nil when there are none.
func (r Replies) Children() []Thing {
	if r.Listing == nil {
		return nil
	}
	return r.Listing.Children
}

// Comment decodes the Thing as a t1 comment.
func (t Thing) Comment() (*CommentData, error) {
	if t.Kind != KindComment {
		return nil, fmt.Errorf("thing is %q, not a comment", t.Kind)
	}
	var c CommentData
	if err := json.Unmarshal(t.Data, &c); err != nil {
		return nil, fmt.Errorf("decoding comment: %w", err)
	}
	return &c, nil
}

// More decodes the Thing as a continuation marker.
func (t Thing) More() (*MoreData, error) {
	if t.Kind != KindMore {
		return nil, fmt.Errorf("thing is %q, not a more marker", t.Kind)
	}
	var m MoreData
	if err := json.Unmarshal(t.Data, &m); err != nil {
		return nil, fmt.Errorf("decoding more marker: %w", err)
	}
	return &m, nil
}

// Link decodes the Thing as a t3 submission.
func (t Thing) Link() (*LinkData, error) {
	if t.Kind != KindLink {
		return nil, fmt.Errorf("thing is %q, not a link", t.Kind)
	}
	var l LinkData
	if err := json.Unmarshal(t.Data, &l); err != nil {
		return nil, fmt.Errorf("decoding link: %w", err)
	}
	return &l, nil
}

// RawThread is the fetcher's output: the submission payload plus the
// top-level comment Things in delivery order.
type RawThread struct {
	Link     LinkData
	Comments []Thing
}

// LinkFullname returns the t3_<id> fullname of the submission.
func (r *RawThread) LinkFullname() string {
	if r.Link.Name != "" {
		return r.Link.Name
	}
	return KindLink + "_" + r.Link.ID
}
