package main

import (
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"github.com/sells-group/notion-kitchen/internal/config"
	"github.com/sells-group/notion-kitchen/pkg/notion"
)

// newNotionClient builds the Notion client from configuration. Requests go
// through a retryablehttp transport; with client.retries at 0 each call is
// attempted once.
func newNotionClient(c *config.Config) notion.Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = c.Client.Retries
	rc.Logger = retryLogger{zap.L().Sugar().Named("http")}
	// Hand non-2xx responses to notionapi so it can decode the API error.
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	if c.Client.TimeoutSecs > 0 {
		rc.HTTPClient.Timeout = time.Duration(c.Client.TimeoutSecs) * time.Second
	}

	return notion.NewClient(c.APIToken,
		notion.WithVersion(c.NotionVersion),
		notion.WithRateLimit(c.Client.RateLimit),
		notion.WithHTTPClient(rc.StandardClient()),
	)
}

// retryLogger adapts zap to retryablehttp.LeveledLogger.
type retryLogger struct {
	s *zap.SugaredLogger
}

var _ retryablehttp.LeveledLogger = retryLogger{}

func (l retryLogger) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }
func (l retryLogger) Info(msg string, kv ...interface{})  { l.s.Debugw(msg, kv...) }
func (l retryLogger) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
func (l retryLogger) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, kv...) }
