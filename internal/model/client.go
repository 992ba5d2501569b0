package model

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/AgentOS/uiclient/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/AgentOS/uiclient/internal/infrastructure/tracing"
)

var (
	ErrNotFound    = errors.New("resource not found")
	ErrUnavailable = errors.New("resource server unavailable")
	ErrInvalidHash = errors.New("invalid resource hash")
)

// ClientConfig configures resource downloads
type ClientConfig struct {
	Origin       string
	ResourcePath string
	Timeout      time.Duration
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	// RateLimit is requests per second; zero disables limiting
	RateLimit float64
	UserAgent string
}

// DefaultClientConfig returns sane download settings for origin
func DefaultClientConfig(origin string) ClientConfig {
	return ClientConfig{
		Origin:       origin,
		ResourcePath: "/resources",
		Timeout:      10 * time.Second,
		RetryMax:     3,
		RetryWaitMin: 200 * time.Millisecond,
		RetryWaitMax: 5 * time.Second,
		RateLimit:    5,
		UserAgent:    "uiclient/1.0",
	}
}

// Client downloads immutable resources by hash, with retries, rate
// limiting and a circuit breaker
type Client struct {
	resty   *resty.Client
	limiter *rate.Limiter
	breaker *resilience.Breaker
	base    string
	logger  *zap.Logger
}

// NewClient creates a resource client
func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.RetryMax
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.Logger = leveledLogger{logger.Sugar()}

	restyClient := resty.NewWithClient(retryClient.StandardClient())
	restyClient.
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")
	if cfg.UserAgent != "" {
		restyClient.SetHeader("User-Agent", cfg.UserAgent)
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	breaker := resilience.New("model-fetch", resilience.Settings{
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// a missing document or a cancelled caller says nothing about server health
		IsFailure: func(err error) bool {
			return err != nil && !errors.Is(err, ErrNotFound) && !errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to))
		},
	})

	path := cfg.ResourcePath
	if path == "" {
		path = "/resources"
	}

	return &Client{
		resty:   restyClient,
		limiter: limiter,
		breaker: breaker,
		base:    strings.TrimRight(cfg.Origin, "/") + "/" + strings.Trim(path, "/"),
		logger:  logger,
	}
}

// URL returns the download URL for hash
func (c *Client) URL(hash string) string {
	return c.base + "/" + url.PathEscape(hash)
}

// BreakerState returns the circuit breaker state
func (c *Client) BreakerState() resilience.State {
	return c.breaker.State()
}

// Get downloads the resource named by hash
func (c *Client) Get(ctx context.Context, hash string) ([]byte, error) {
	if !ValidHash(hash) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidHash, hash)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	body, err := resilience.Execute(c.breaker, func() ([]byte, error) {
		req := c.resty.R().SetContext(ctx)
		tracing.InjectTraceContext(ctx, req.Header)

		resp, err := req.Get(c.URL(hash))
		if err != nil {
			return nil, err
		}

		switch {
		case resp.StatusCode() == http.StatusNotFound:
			return nil, fmt.Errorf("%w: %s", ErrNotFound, hash)
		case resp.IsError():
			return nil, fmt.Errorf("GET %s: status %d", c.URL(hash), resp.StatusCode())
		}
		return resp.Body(), nil
	})

	if errors.Is(err, resilience.ErrCircuitOpen) || errors.Is(err, resilience.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return body, err
}

// ValidHash reports whether hash is safe to use in URLs and file names
func ValidHash(hash string) bool {
	if hash == "" || len(hash) > 128 {
		return false
	}
	for _, r := range hash {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '=':
		default:
			return false
		}
	}
	return true
}

// leveledLogger routes retryablehttp logs to zap
type leveledLogger struct {
	s *zap.SugaredLogger
}

func (l leveledLogger) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }
func (l leveledLogger) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, kv...) }
func (l leveledLogger) Info(msg string, kv ...interface{})  { l.s.Debugw(msg, kv...) }
func (l leveledLogger) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }

var _ retryablehttp.LeveledLogger = leveledLogger{}
