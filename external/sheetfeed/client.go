package sheetfeed

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/cbaclube/portal/internal/platform/cache"
	"github.com/cbaclube/portal/internal/platform/logging"
	"github.com/cbaclube/portal/internal/usecase"
)

const (
	defaultTimeout  = 15 * time.Second
	maxFeedSize     = 8 << 20
	defaultCacheTTL = 30 * time.Second
)

type ClientConfig struct {
	HTTPClient *http.Client
	Timeout    time.Duration
	CacheTTL   time.Duration
	Logger     *logging.Logger
}

// Client fetches published-to-web spreadsheet tabs as CSV. Responses are
// cached briefly so a burst of projections does not hammer the publish
// endpoint, which Google throttles aggressively.
type Client struct {
	httpClient *http.Client
	logger     *logging.Logger
	cache      *cache.Store
	now        func() time.Time
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = defaultTimeout
	}

	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	return &Client{
		httpClient: httpClient,
		logger:     logger,
		cache:      cache.NewStore(ttl),
		now:        time.Now,
	}
}

// Fetch downloads and parses one feed. Ragged rows are expected; quoting in
// the publish endpoint is loose enough that strict CSV parsing rejects real
// sheets.
func (c *Client) Fetch(ctx context.Context, feedURL string) ([][]string, error) {
	if strings.TrimSpace(feedURL) == "" {
		return nil, fmt.Errorf("%w: feed url is not configured", usecase.ErrDependencyUnavailable)
	}

	out, err := c.cache.GetOrLoad(ctx, "feed:"+feedURL, func(ctx context.Context) (any, error) {
		return c.fetch(ctx, feedURL)
	})
	if err != nil {
		return nil, err
	}
	records, ok := out.([][]string)
	if !ok {
		return nil, fmt.Errorf("unexpected cached payload type %T", out)
	}
	return records, nil
}

// Invalidate drops every cached feed body so the next Fetch round-trips.
func (c *Client) Invalidate(ctx context.Context) {
	c.cache.Purge(ctx)
}

func (c *Client) fetch(ctx context.Context, feedURL string) ([][]string, error) {
	fullURL, err := withCacheBust(feedURL, c.now().UnixNano())
	if err != nil {
		return nil, fmt.Errorf("%w: parse feed url: %v", usecase.ErrInvalidInput, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("accept", "text/csv")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, crerr.Wrapf(err, "fetch feed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: feed status=%d", usecase.ErrDependencyUnavailable, resp.StatusCode)
	}

	reader := csv.NewReader(io.LimitReader(resp.Body, maxFeedSize))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: parse feed csv: %v", usecase.ErrDataShape, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: feed is empty", usecase.ErrDataShape)
	}
	stripBOM(records)

	c.logger.DebugContext(ctx, "feed fetched", "rows", len(records))
	return records, nil
}

func withCacheBust(feedURL string, nonce int64) (string, error) {
	parsed, err := url.Parse(feedURL)
	if err != nil {
		return "", err
	}
	query := parsed.Query()
	query.Set("cacheBust", fmt.Sprintf("%d", nonce))
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func stripBOM(records [][]string) {
	if len(records) == 0 || len(records[0]) == 0 {
		return
	}
	records[0][0] = strings.TrimPrefix(records[0][0], "\uFEFF")
}
