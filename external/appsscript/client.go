package appsscript

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/cbaclube/portal/internal/platform/logging"
	"github.com/cbaclube/portal/internal/platform/resilience"
	"github.com/cbaclube/portal/internal/usecase"
)

const (
	defaultTimeout  = 20 * time.Second
	maxResponseSize = 4 << 20
)

var errScriptTransient = crerr.New("apps script transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	ScriptURL      string
	Timeout        time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the club's Apps Script web app. The script is a single
// endpoint dispatching on an action parameter; reads go through GET with a
// cache-busting nonce, writes through POST with an url-encoded text body so
// the script receives it without a CORS preflight.
type Client struct {
	httpClient     *http.Client
	scriptURL      string
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
	now            func() time.Time
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

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		scriptURL:      strings.TrimSpace(cfg.ScriptURL),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
		now:            time.Now,
	}
}

// Result is the canonical shape every script response is normalized into.
// Body keeps the raw payload so typed accessors can pull action-specific
// fields out of it.
type Result struct {
	OK      bool
	Message string
	Body    []byte
}

// scriptEnvelope tolerates both discriminator spellings the script emits.
type scriptEnvelope struct {
	Status  string `json:"status"`
	Result  string `json:"result"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (e scriptEnvelope) outcome() string {
	if e.Status != "" {
		return strings.ToLower(e.Status)
	}
	return strings.ToLower(e.Result)
}

func (e scriptEnvelope) message() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// Get performs a read action. Concurrent identical reads share one in-flight
// request; the cache-busting nonce keeps Google's edge cache out of the way.
func (c *Client) Get(ctx context.Context, action string, params url.Values) (Result, error) {
	if c.scriptURL == "" {
		return Result{}, fmt.Errorf("%w: script url is not configured", usecase.ErrDependencyUnavailable)
	}
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "apps script circuit breaker rejected request", "state", c.breaker.State(), "action", action)
			return Result{}, fmt.Errorf("%w: club backend is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	values := url.Values{}
	for key, list := range params {
		for _, value := range list {
			values.Add(key, value)
		}
	}
	values.Set("action", action)
	flightKey := "get:" + action + "?" + values.Encode()
	values.Set("cacheBust", fmt.Sprintf("%d", c.now().UnixNano()))

	fullURL := c.scriptURL + "?" + values.Encode()

	out, err, _ := c.flight.Do(flightKey, func() (any, error) {
		raw, reqErr := c.execute(ctx, http.MethodGet, fullURL, "", "")
		c.record(reqErr)
		return raw, reqErr
	})
	if err != nil {
		return Result{}, err
	}
	raw, ok := out.([]byte)
	if !ok {
		return Result{}, fmt.Errorf("unexpected response payload type %T", out)
	}

	return c.normalize(ctx, action, raw, false)
}

// Post performs a write action. The payload travels as an url-encoded body
// with a text/plain content type, matching what the script's doPost expects.
// Writes are never retried; the caller rolls back its optimistic state on
// failure.
func (c *Client) Post(ctx context.Context, action string, payload url.Values) (Result, error) {
	if c.scriptURL == "" {
		return Result{}, fmt.Errorf("%w: script url is not configured", usecase.ErrDependencyUnavailable)
	}
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "apps script circuit breaker rejected request", "state", c.breaker.State(), "action", action)
			return Result{}, fmt.Errorf("%w: club backend is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	body := url.Values{}
	for key, list := range payload {
		for _, value := range list {
			body.Add(key, value)
		}
	}
	body.Set("action", action)
	buf.SetString(body.Encode())

	raw, err := c.execute(ctx, http.MethodPost, c.scriptURL, buf.String(), "text/plain;charset=utf-8")
	c.record(err)
	if err != nil {
		return Result{}, err
	}

	return c.normalize(ctx, action, raw, true)
}

func (c *Client) execute(ctx context.Context, method, fullURL, body, contentType string) ([]byte, error) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	if contentType != "" {
		req.Header.Set("content-type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: send request: %v", errScriptTransient, err)
	}
	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, fmt.Errorf("%w: read response body: %v", errScriptTransient, readErr)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("%w: script status=%d body=%s", errScriptTransient, resp.StatusCode, abbreviateBody(raw))
		if looksLikeHTML(raw) {
			err = crerr.WithHint(err, "the web app deployment may be unpublished or require a new version")
		}
		return nil, err
	}
	return raw, nil
}

// normalize maps the script's loose response into a Result. Writes that come
// back as non-JSON 2xx bodies count as success because legacy script
// deployments answer confirmations with an HTML page.
func (c *Client) normalize(ctx context.Context, action string, raw []byte, write bool) (Result, error) {
	var envelope scriptEnvelope
	if err := sonic.Unmarshal(raw, &envelope); err != nil {
		if write {
			c.logger.DebugContext(ctx, "apps script returned non-json success body", "action", action)
			return Result{OK: true, Body: raw}, nil
		}
		err := fmt.Errorf("%w: decode script payload: %v", usecase.ErrDataShape, err)
		if looksLikeHTML(raw) {
			err = crerr.WithHint(err, "the web app deployment may be unpublished or require a new version")
		}
		return Result{}, err
	}

	switch envelope.outcome() {
	case "error":
		message := envelope.message()
		if message == "" {
			message = "script reported an error"
		}
		return Result{}, fmt.Errorf("%w: %s", usecase.ErrBackend, message)
	default:
		return Result{OK: true, Message: envelope.message(), Body: raw}, nil
	}
}

func (c *Client) record(err error) {
	if !c.circuitEnabled {
		return
	}
	if err != nil && crerr.Is(err, errScriptTransient) {
		c.breaker.RecordFailure()
		return
	}
	c.breaker.RecordSuccess()
}

func looksLikeHTML(raw []byte) bool {
	head := strings.ToLower(strings.TrimSpace(string(raw[:min(len(raw), 256)])))
	return strings.HasPrefix(head, "<!doctype") || strings.HasPrefix(head, "<html")
}

func abbreviateBody(raw []byte) string {
	const limit = 200
	body := strings.TrimSpace(string(raw))
	if len(body) > limit {
		return body[:limit] + "..."
	}
	return body
}
