package httpx

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrStatus is matched by every *StatusError.
var ErrStatus = errors.New("httpx: unexpected status")

// StatusError reports a non-2xx answer.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%v %d", ErrStatus, e.Code)
	}
	return fmt.Sprintf("%v %d: %s", ErrStatus, e.Code, e.Body)
}

func (e *StatusError) Unwrap() error { return ErrStatus }

type ClientOptions struct {
	BaseURL    string
	Timeout    time.Duration
	UserAgent  string
	Retries    int
	RetryWait  time.Duration
	RetryLimit time.Duration
}

type ClientOption func(*ClientOptions)

func WithBaseURL(url string) ClientOption {
	return func(o *ClientOptions) {
		if url != "" {
			o.BaseURL = strings.TrimSuffix(url, "/")
		}
	}
}

func WithClientTimeout(d time.Duration) ClientOption {
	return func(o *ClientOptions) {
		if d > 0 {
			o.Timeout = d
		}
	}
}

func WithUserAgent(ua string) ClientOption {
	return func(o *ClientOptions) {
		if ua != "" {
			o.UserAgent = ua
		}
	}
}

// WithRetries retries transport failures and 5xx answers up to n times,
// backing off from wait.
func WithRetries(n int, wait time.Duration) ClientOption {
	return func(o *ClientOptions) {
		if n >= 0 {
			o.Retries = n
		}
		if wait > 0 {
			o.RetryWait = wait
			o.RetryLimit = 8 * wait
		}
	}
}

// Client issues JSON requests against a single upstream.
type Client struct {
	resty *resty.Client
}

func NewClient(opts ...ClientOption) *Client {
	cfg := ClientOptions{
		Timeout:    10 * time.Second,
		UserAgent:  "rowcache",
		RetryWait:  100 * time.Millisecond,
		RetryLimit: 2 * time.Second,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	rc := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", cfg.UserAgent)
	if cfg.Retries > 0 {
		rc.SetRetryCount(cfg.Retries).
			SetRetryWaitTime(cfg.RetryWait).
			SetRetryMaxWaitTime(cfg.RetryLimit).
			AddRetryCondition(func(r *resty.Response, err error) bool {
				return err != nil || r.StatusCode() >= 500
			})
	}
	return &Client{resty: rc}
}

// GetJSON decodes the body of GET path?query into out. Non-2xx answers
// return a *StatusError.
func (c *Client) GetJSON(ctx context.Context, path string, query map[string]string, out any) error {
	req := c.resty.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	if out != nil {
		req.SetResult(out)
	}
	resp, err := req.Get(path)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return &StatusError{Code: resp.StatusCode(), Body: strings.TrimSpace(resp.String())}
	}
	return nil
}
