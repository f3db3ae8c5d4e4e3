// Package fetch implements the Fetcher and MoreFetcher interfaces against
// Reddit's JSON API. With script-app credentials it authenticates via the
// client_credentials grant and talks to oauth.reddit.com; without them it
// falls back to the public www.reddit.com endpoints.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/gaurav-prasanna/redditrip/core"
	"github.com/go-resty/resty/v2"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "redditrip/1.0 (https://github.com/gaurav-prasanna/redditrip)"

	publicBaseURL = "https://www.reddit.com"
	oauthBaseURL  = "https://oauth.reddit.com"
	tokenURL      = "https://www.reddit.com/api/v1/access_token"

	// The morechildren endpoint accepts at most this many ids per call.
	maxMoreBatch = 100

	// Comments fetched per page on the initial request.
	commentPageLimit = 500
)

// postIDPattern matches the post id segment of a submission URL,
// e.g. https://www.reddit.com/r/golang/comments/abc123/some_title/.
var postIDPattern = regexp.MustCompile(`/comments/([A-Za-z0-9]+)`)

// Options configures the RedditFetcher. Credentials are optional; when
// absent the public JSON endpoints are used.
type Options struct {
	ClientID     string
	ClientSecret string
	UserAgent    string
}

// RedditFetcher fetches submissions and comment pages from Reddit.
type RedditFetcher struct {
	client  *resty.Client
	opts    Options
	baseURL string
	token   string
}

// New creates a RedditFetcher with a sensible timeout.
func New(opts Options) *RedditFetcher {
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}

	client := resty.New()
	client.SetTimeout(defaultTimeout)
	client.SetHeader("User-Agent", opts.UserAgent)

	return &RedditFetcher{
		client:  client,
		opts:    opts,
		baseURL: publicBaseURL,
	}
}

// ExtractPostID pulls the post id out of a submission URL.
func ExtractPostID(rawURL string) (string, error) {
	m := postIDPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return "", fmt.Errorf("no post id in URL %s", rawURL)
	}
	return m[1], nil
}

// Fetch retrieves the submission and its first page of comments.
// The comments endpoint answers with a two-element array: a listing
// holding the t3 link, then a listing holding the top-level comments.
func (f *RedditFetcher) Fetch(ctx context.Context, rawURL string) (*core.RawThread, error) {
	postID, err := ExtractPostID(rawURL)
	if err != nil {
		return nil, err
	}

	if err := f.ensureAuth(ctx); err != nil {
		return nil, err
	}

	resp, err := f.request(ctx).
		SetQueryParam("limit", fmt.Sprintf("%d", commentPageLimit)).
		Get(fmt.Sprintf("%s/comments/%s.json", f.baseURL, postID))
	if err != nil {
		return nil, fmt.Errorf("fetching post %s: %w", postID, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("unexpected status %d fetching post %s", resp.StatusCode(), postID)
	}

	var pages []core.Thing
	if err := json.Unmarshal(resp.Body(), &pages); err != nil {
		return nil, fmt.Errorf("decoding comments response: %w", err)
	}
	if len(pages) < 2 {
		return nil, fmt.Errorf("comments response has %d listings, want 2", len(pages))
	}

	var linkPage, commentPage core.Listing
	if err := json.Unmarshal(pages[0].Data, &linkPage); err != nil {
		return nil, fmt.Errorf("decoding link listing: %w", err)
	}
	if err := json.Unmarshal(pages[1].Data, &commentPage); err != nil {
		return nil, fmt.Errorf("decoding comment listing: %w", err)
	}
	if len(linkPage.Children) == 0 {
		return nil, fmt.Errorf("post %s not found", postID)
	}

	link, err := linkPage.Children[0].Link()
	if err != nil {
		return nil, err
	}

	return &core.RawThread{
		Link:     *link,
		Comments: commentPage.Children,
	}, nil
}

// moreResponse is the envelope returned by /api/morechildren.
type moreResponse struct {
	JSON struct {
		Errors [][]string `json:"errors"`
		Data   struct {
			Things []core.Thing `json:"things"`
		} `json:"data"`
	} `json:"json"`
}

// MoreChildren resolves a continuation marker's ids into Things, batching
// requests at the API's per-call cap. Things come back flat; each carries
// a parent_id for splicing.
func (f *RedditFetcher) MoreChildren(ctx context.Context, linkID string, ids []string) ([]core.Thing, error) {
	if err := f.ensureAuth(ctx); err != nil {
		return nil, err
	}

	var things []core.Thing
	for start := 0; start < len(ids); start += maxMoreBatch {
		end := start + maxMoreBatch
		if end > len(ids) {
			end = len(ids)
		}

		resp, err := f.request(ctx).
			SetQueryParams(map[string]string{
				"api_type":       "json",
				"link_id":        linkID,
				"children":       strings.Join(ids[start:end], ","),
				"limit_children": "false",
			}).
			Get(f.baseURL + "/api/morechildren.json")
		if err != nil {
			return nil, fmt.Errorf("fetching more comments: %w", err)
		}
		if resp.StatusCode() != 200 {
			return nil, fmt.Errorf("unexpected status %d fetching more comments", resp.StatusCode())
		}

		var decoded moreResponse
		if err := json.Unmarshal(resp.Body(), &decoded); err != nil {
			return nil, fmt.Errorf("decoding more comments response: %w", err)
		}
		if len(decoded.JSON.Errors) > 0 {
			return nil, fmt.Errorf("more comments API error: %v", decoded.JSON.Errors[0])
		}

		things = append(things, decoded.JSON.Data.Things...)
	}
	return things, nil
}

// request builds a base request with context and the raw_json flag, which
// stops the API from HTML-escaping body text.
func (f *RedditFetcher) request(ctx context.Context) *resty.Request {
	req := f.client.R().
		SetContext(ctx).
		SetQueryParam("raw_json", "1")
	if f.token != "" {
		req.SetAuthToken(f.token)
	}
	return req
}

// tokenResponse is the client_credentials grant response.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// ensureAuth obtains an OAuth token once per run when credentials are
// configured, switching the fetcher onto the oauth host. Without
// credentials the public endpoints are used as-is.
func (f *RedditFetcher) ensureAuth(ctx context.Context) error {
	if f.opts.ClientID == "" || f.opts.ClientSecret == "" || f.token != "" {
		return nil
	}

	resp, err := f.client.R().
		SetContext(ctx).
		SetBasicAuth(f.opts.ClientID, f.opts.ClientSecret).
		SetFormData(map[string]string{"grant_type": "client_credentials"}).
		Post(tokenURL)
	if err != nil {
		return fmt.Errorf("requesting access token: %w", err)
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("access token request returned %d", resp.StatusCode())
	}

	var token tokenResponse
	if err := json.Unmarshal(resp.Body(), &token); err != nil {
		return fmt.Errorf("decoding access token: %w", err)
	}
	if token.AccessToken == "" {
		return fmt.Errorf("access token response missing token")
	}

	f.token = token.AccessToken
	f.baseURL = oauthBaseURL
	return nil
}
