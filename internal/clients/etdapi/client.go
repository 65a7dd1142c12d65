package etdapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/etdpk/etdclient/internal/entity"
	"github.com/etdpk/etdclient/pkg/config"
	"github.com/etdpk/etdclient/pkg/logger"
	"github.com/etdpk/etdclient/pkg/transport"
)

// Result is the normalized outcome of every backend call. Status is the last
// HTTP status observed, or 0 when no response was ever received.
type Result struct {
	Success bool
	Data    json.RawMessage
	Error   string
	Status  int
}

// Decode unmarshals the response payload into v. An empty or unparsable body
// was already normalized to {} so decoding into a struct never fails on it.
func (r Result) Decode(v any) error {
	if len(r.Data) == 0 {
		return json.Unmarshal([]byte("{}"), v)
	}

	return json.Unmarshal(r.Data, v)
}

// Err maps a failed result onto the shared error taxonomy. Successful results
// return nil.
func (r Result) Err() error {
	if r.Success {
		return nil
	}

	switch r.Status {
	case 0:
		return fmt.Errorf("%w: %s", entity.ErrServiceUnavailable, r.Error)
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", entity.ErrUnauthorized, r.Error)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", entity.ErrNotFound, r.Error)
	default:
		return fmt.Errorf("etd api: %s (status %d)", r.Error, r.Status)
	}
}

// RequestInterceptor may mutate the outgoing request before dispatch.
type RequestInterceptor func(req *http.Request) error

// ResponseInterceptor observes the response before it is normalized.
type ResponseInterceptor func(resp *http.Response) error

type ClientInterface interface {
	Request(ctx context.Context, method, endpoint string, body any) Result
	Get(ctx context.Context, endpoint string) Result
	Post(ctx context.Context, endpoint string, body any) Result
	Put(ctx context.Context, endpoint string, body any) Result
	Patch(ctx context.Context, endpoint string, body any) Result
	Delete(ctx context.Context, endpoint string) Result
	Upload(ctx context.Context, endpoint string, files []UploadFile, fields map[string]string, progress chan<- int) Result
}

type Client struct {
	client  *http.Client
	plain   *http.Client
	baseURL string

	reqInterceptors  []RequestInterceptor
	respInterceptors []ResponseInterceptor
}

var _ ClientInterface = (*Client)(nil)

// NewClient builds the backend client. When tokens is non-nil every request
// carries the current session bearer token.
func NewClient(cfg config.Config, tokens transport.TokenSource) *Client {
	rt := transport.NewBearerRoundTripper(http.DefaultTransport, tokens)

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.API.RetryAttempts - 1
	retryClient.HTTPClient.Timeout = cfg.API.Timeout
	retryClient.HTTPClient.Transport = rt

	retryClient.Logger = nil

	// when retries run out the last response must surface as-is; Status 0
	// is reserved for never having received a response at all
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	// 4xx is permanent; transport errors and 5xx are retried.
	retryClient.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}

		if err != nil {
			return true, nil
		}

		if resp != nil && resp.StatusCode >= http.StatusInternalServerError {
			return true, nil
		}

		return false, nil
	}

	// Each retry waits attempt * base, so three attempts observe two
	// growing delays.
	delay := cfg.API.RetryDelay
	retryClient.Backoff = func(_, _ time.Duration, attemptNum int, _ *http.Response) time.Duration {
		return time.Duration(attemptNum+1) * delay
	}

	return &Client{
		client:  retryClient.StandardClient(),
		plain:   &http.Client{Timeout: cfg.API.Timeout, Transport: rt},
		baseURL: strings.TrimRight(cfg.API.BaseURL, "/"),
	}
}

// OnRequest registers an interceptor applied to every outgoing request in
// registration order.
func (c *Client) OnRequest(fn RequestInterceptor) {
	c.reqInterceptors = append(c.reqInterceptors, fn)
}

// OnResponse registers an interceptor applied to every received response in
// registration order.
func (c *Client) OnResponse(fn ResponseInterceptor) {
	c.respInterceptors = append(c.respInterceptors, fn)
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Request(ctx context.Context, method, endpoint string, body any) Result {
	var reader io.Reader

	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return Result{Error: fmt.Sprintf("encode request: %v", err)}
		}

		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return Result{Error: fmt.Sprintf("create request: %v", err)}
	}

	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(ctx, c.client, req)
}

func (c *Client) do(ctx context.Context, hc *http.Client, req *http.Request) Result {
	log := logger.FromContext(ctx)

	for _, fn := range c.reqInterceptors {
		if err := fn(req); err != nil {
			return Result{Error: fmt.Sprintf("request interceptor: %v", err)}
		}
	}

	resp, err := hc.Do(req)
	if err != nil {
		log.WarnContext(ctx, "etd api request failed",
			"method", req.Method, "url", req.URL.String(), "error", err)

		return Result{Error: err.Error()}
	}

	defer resp.Body.Close()

	for _, fn := range c.respInterceptors {
		if err := fn(resp); err != nil {
			return Result{Error: fmt.Sprintf("response interceptor: %v", err), Status: resp.StatusCode}
		}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{Error: fmt.Sprintf("read body: %v", err), Status: resp.StatusCode}
	}

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return Result{Success: true, Data: normalizeBody(raw), Status: resp.StatusCode}
	}

	message := errorMessage(resp.StatusCode, raw)

	log.WarnContext(ctx, "etd api error response",
		"method", req.Method, "url", req.URL.String(),
		"status", resp.StatusCode, "error", message)

	return Result{Error: message, Status: resp.StatusCode}
}

// normalizeBody keeps the payload only when it is valid JSON; everything else
// collapses to an empty object so callers never see a parse failure on 2xx.
func normalizeBody(raw []byte) json.RawMessage {
	if json.Valid(raw) && len(bytes.TrimSpace(raw)) > 0 {
		return json.RawMessage(raw)
	}

	return json.RawMessage("{}")
}

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func errorMessage(statusCode int, raw []byte) string {
	var apiErr apiError
	if err := json.Unmarshal(raw, &apiErr); err == nil {
		if apiErr.Error != "" {
			return apiErr.Error
		}

		if apiErr.Message != "" {
			return apiErr.Message
		}
	}

	return fmt.Sprintf("HTTP %d: %s", statusCode, http.StatusText(statusCode))
}

func (c *Client) Get(ctx context.Context, endpoint string) Result {
	return c.Request(ctx, http.MethodGet, endpoint, nil)
}

func (c *Client) Post(ctx context.Context, endpoint string, body any) Result {
	return c.Request(ctx, http.MethodPost, endpoint, body)
}

func (c *Client) Put(ctx context.Context, endpoint string, body any) Result {
	return c.Request(ctx, http.MethodPut, endpoint, body)
}

func (c *Client) Patch(ctx context.Context, endpoint string, body any) Result {
	return c.Request(ctx, http.MethodPatch, endpoint, body)
}

func (c *Client) Delete(ctx context.Context, endpoint string) Result {
	return c.Request(ctx, http.MethodDelete, endpoint, nil)
}
