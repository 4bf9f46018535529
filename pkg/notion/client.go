// Package notion wraps the Notion API for database queries, block listing and page updates.
package notion

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Client defines the Notion API operations used by this application.
type Client interface {
	QueryDatabase(ctx context.Context, dbID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error)
	GetBlockChildren(ctx context.Context, blockID string, pagination *notionapi.Pagination) (*notionapi.GetChildrenResponse, error)
	UpdatePage(ctx context.Context, pageID string, req *notionapi.PageUpdateRequest) (*notionapi.Page, error)
}

// ClientOption configures the Notion client.
type ClientOption func(*clientSettings)

type clientSettings struct {
	limiter    *rate.Limiter
	version    string
	httpClient *http.Client
}

// WithRateLimit overrides the default Notion rate limit (3 req/s).
func WithRateLimit(rps float64) ClientOption {
	return func(s *clientSettings) {
		if rps > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		} else {
			s.limiter = nil
		}
	}
}

// WithVersion pins the Notion-Version header sent with every request.
func WithVersion(version string) ClientOption {
	return func(s *clientSettings) {
		s.version = version
	}
}

// WithHTTPClient replaces the transport used for API calls.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(s *clientSettings) {
		s.httpClient = hc
	}
}

// notionClient implements Client by wrapping a *notionapi.Client.
type notionClient struct {
	inner   *notionapi.Client
	limiter *rate.Limiter
}

// NewClient creates a new Notion client with the given integration token.
// By default, API calls are throttled to 3 req/s (Notion's rate limit).
func NewClient(token string, opts ...ClientOption) Client {
	s := &clientSettings{
		limiter: rate.NewLimiter(3, 1),
	}
	for _, opt := range opts {
		opt(s)
	}

	var innerOpts []notionapi.ClientOption
	if s.version != "" {
		innerOpts = append(innerOpts, notionapi.WithVersion(s.version))
	}
	if s.httpClient != nil {
		innerOpts = append(innerOpts, notionapi.WithHTTPClient(s.httpClient))
	}

	return &notionClient{
		inner:   notionapi.NewClient(notionapi.Token(token), innerOpts...),
		limiter: s.limiter,
	}
}

// wait blocks until the rate limiter allows one event, or ctx is cancelled.
func (c *notionClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return ctx.Err()
	}
	return c.limiter.Wait(ctx)
}

func (c *notionClient) QueryDatabase(ctx context.Context, dbID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	if err := c.wait(ctx); err != nil {
		return nil, eris.Wrap(err, "notion: rate limit")
	}
	resp, err := c.inner.Database.Query(ctx, notionapi.DatabaseID(dbID), req)
	if err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("notion: query database %s", dbID))
	}
	return resp, nil
}

func (c *notionClient) GetBlockChildren(ctx context.Context, blockID string, pagination *notionapi.Pagination) (*notionapi.GetChildrenResponse, error) {
	if err := c.wait(ctx); err != nil {
		return nil, eris.Wrap(err, "notion: rate limit")
	}
	resp, err := c.inner.Block.GetChildren(ctx, notionapi.BlockID(blockID), pagination)
	if err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("notion: list children of %s", blockID))
	}
	return resp, nil
}

func (c *notionClient) UpdatePage(ctx context.Context, pageID string, req *notionapi.PageUpdateRequest) (*notionapi.Page, error) {
	if err := c.wait(ctx); err != nil {
		return nil, eris.Wrap(err, "notion: rate limit")
	}
	page, err := c.inner.Page.Update(ctx, notionapi.PageID(pageID), req)
	if err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("notion: update page %s", pageID))
	}
	return page, nil
}
