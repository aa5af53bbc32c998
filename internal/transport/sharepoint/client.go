package sharepoint

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/sitetrends/internal/domain"
	"github.com/kailas-cloud/sitetrends/internal/metrics"
	"github.com/kailas-cloud/sitetrends/internal/tracing"
	"github.com/kailas-cloud/sitetrends/internal/version"
)

const (
	breakerName      = "sharepoint"
	defaultTripRatio = 0.6
	maxResponseSize  = 8 << 20
	acceptHeader     = "application/json;odata=nometadata"
)

// Operation names used for metrics, spans and errors.
const (
	OpKeywordSearch = "keyword_search"
	OpGraphSearch   = "graph_search"
	OpListMembers   = "list_members"
)

// Error describes a failed backend call.
type Error struct {
	Op     string
	Status int // 0 when no response was received
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("sharepoint %s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("sharepoint %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// BreakerConfig tunes the circuit breaker around backend calls.
type BreakerConfig struct {
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	TripRatio   float64
	MinRequests uint32 // requests observed before the ratio applies, default 3
}

// Config holds the adapter settings.
type Config struct {
	// AppToken authorizes membership listing only. Searches always run
	// with the caller's token.
	AppToken string
	// AllowedHosts lists the tenant hosts requests may be sent to. No
	// request leaves the client for any other host or over plain http.
	AllowedHosts []string
	Timeout      time.Duration
	Breaker      BreakerConfig
	RateLimit    float64      // outbound requests per second, 0 disables limiting
	Burst        int          // default 1 when RateLimit is set
	HTTPClient   *http.Client // optional, overrides Timeout and trace propagation
	Logger       *zap.Logger
}

// Client talks to the SharePoint REST search and web APIs.
type Client struct {
	http     *http.Client
	appToken string
	sites    domain.SitePolicy
	cb       *gobreaker.CircuitBreaker
	limiter  *rate.Limiter // nil when unlimited
	logger   *zap.Logger
}

// New creates a SharePoint REST client.
func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	minRequests := cfg.Breaker.MinRequests
	if minRequests == 0 {
		minRequests = 3
	}
	tripRatio := cfg.Breaker.TripRatio
	if tripRatio <= 0 {
		tripRatio = defaultTripRatio
	}

	st := gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: cfg.Breaker.MaxRequests,
		Interval:    cfg.Breaker.Interval,
		Timeout:     cfg.Breaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= tripRatio
		},
		IsSuccessful: countsAsSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			open := 0.0
			if to == gobreaker.StateOpen {
				open = 1
				logger.Error("Circuit breaker opened",
					zap.String("breaker", name), zap.String("from", from.String()))
			} else {
				logger.Info("Circuit breaker state changed",
					zap.String("breaker", name), zap.String("from", from.String()), zap.String("to", to.String()))
			}
			metrics.BackendBreakerOpen.WithLabelValues(name).Set(open)
		},
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &Client{
		http:     httpClient,
		appToken: cfg.AppToken,
		sites:    domain.NewSitePolicy(cfg.AllowedHosts),
		cb:       gobreaker.NewCircuitBreaker(st),
		limiter:  limiter,
		logger:   logger,
	}
}

// HealthCheck reports an error while the circuit breaker is open.
func (c *Client) HealthCheck(_ context.Context) error {
	if c.cb.State() == gobreaker.StateOpen {
		return &Error{Op: "health", Err: gobreaker.ErrOpenState}
	}
	return nil
}

// countsAsSuccess keeps caller mistakes (4xx other than throttling) and
// cancellations from tripping the breaker.
func countsAsSuccess(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	var spErr *Error
	if errors.As(err, &spErr) && spErr.Status >= 400 && spErr.Status < 500 {
		return spErr.Status != http.StatusTooManyRequests
	}
	return false
}

// callerToken returns the delegated token from ctx. There is no fallback
// to the app token: "me" in a graph query must be the end user.
func callerToken(ctx context.Context) (string, error) {
	if t := domain.UserTokenFromContext(ctx); t != "" {
		return t, nil
	}
	return "", fmt.Errorf("%w: caller token is required for search", domain.ErrInvalidArgument)
}

// do sends one JSON request through the breaker and decodes the response into out.
func (c *Client) do(ctx context.Context, op, method, url, token string, body, out any) (err error) {
	ctx, end := tracing.StartBackendSpan(ctx, op)
	defer func() { end(err) }()

	if _, perr := c.sites.Check(url); perr != nil {
		metrics.BackendRequestsTotal.WithLabelValues(op, "rejected").Inc()
		c.logger.Warn("Refusing backend request to disallowed site",
			zap.String("operation", op), zap.Error(perr))
		return &Error{Op: op, Err: perr}
	}
	if c.limiter != nil {
		if werr := c.limiter.Wait(ctx); werr != nil {
			metrics.BackendRequestsTotal.WithLabelValues(op, "rejected").Inc()
			return &Error{Op: op, Err: fmt.Errorf("rate limiter: %w", werr)}
		}
	}

	start := time.Now()
	_, err = c.cb.Execute(func() (any, error) {
		return nil, c.roundTrip(ctx, op, method, url, token, body, out)
	})
	duration := time.Since(start)

	switch {
	case err == nil:
		metrics.BackendRequestsTotal.WithLabelValues(op, "success").Inc()
		metrics.BackendRequestDuration.WithLabelValues(op).Observe(duration.Seconds())
		return nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.BackendRequestsTotal.WithLabelValues(op, "rejected").Inc()
		return &Error{Op: op, Err: err}
	default:
		metrics.BackendRequestsTotal.WithLabelValues(op, "error").Inc()
		metrics.BackendRequestDuration.WithLabelValues(op).Observe(duration.Seconds())
		c.logger.Error("Backend request failed",
			zap.String("operation", op), zap.Duration("duration", duration), zap.Error(err))
		return err
	}
}

func (c *Client) roundTrip(ctx context.Context, op, method, url, token string, body, out any) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &Error{Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return &Error{Op: op, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("User-Agent", "sitetrends/"+version.Version)
	if body != nil {
		req.Header.Set("Content-Type", acceptHeader)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return &Error{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{Op: op, Status: resp.StatusCode, Err: errors.New(extractMessage(data, resp.StatusCode))}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// extractMessage pulls the OData error message from a failure body.
func extractMessage(body []byte, status int) string {
	var parsed struct {
		Error struct {
			Message json.RawMessage `json:"message"`
		} `json:"odata.error"`
	}
	if json.Unmarshal(body, &parsed) == nil && len(parsed.Error.Message) > 0 {
		var msg struct {
			Value string `json:"value"`
		}
		if json.Unmarshal(parsed.Error.Message, &msg) == nil && msg.Value != "" {
			return msg.Value
		}
		var plain string
		if json.Unmarshal(parsed.Error.Message, &plain) == nil && plain != "" {
			return plain
		}
	}
	return http.StatusText(status) + " (" + strconv.Itoa(len(body)) + " bytes)"
}
