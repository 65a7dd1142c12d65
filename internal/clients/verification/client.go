package verification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/etdpk/etdclient/internal/entity"
	"github.com/etdpk/etdclient/pkg/config"
	"github.com/etdpk/etdclient/pkg/logger"
)

const (
	apiVersion          = "1.0"
	defaultRetryWaitMax = time.Second * 5
)

const (
	errCodeTimeout  = "TIMEOUT"
	errCodeAPIError = "API_ERROR"
)

type ClientInterface interface {
	Verify(ctx context.Context, citizenID, passportNumber string) *entity.VerificationResult
}

// Client talks to one identity registry. Registry failures never surface as
// errors; they come back as ERROR-status results so callers can tolerate a
// partial outage while the other registry still answers.
type Client struct {
	client *http.Client

	service          string
	url              string
	apiKey           string
	requesterID      string
	verificationType string

	simulate bool
	simDelay time.Duration
}

var _ ClientInterface = (*Client)(nil)

// NewNADRA builds the national-registry identity lookup client.
func NewNADRA(cfg config.Config) *Client {
	return newClient("nadra", entity.VerificationTypeBasicInfo, cfg.NADRA)
}

// NewPassport builds the passport document-check client.
func NewPassport(cfg config.Config) *Client {
	return newClient("passport", entity.VerificationTypeDocumentCheck, cfg.Passport)
}

func newClient(service, verificationType string, cfg config.VerifierConfig) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.RetryAttempts - 1
	retryClient.RetryWaitMin = 1 * time.Second
	retryClient.RetryWaitMax = defaultRetryWaitMax
	retryClient.HTTPClient.Timeout = cfg.Timeout

	retryClient.Logger = nil

	retryClient.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if err != nil {
			return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
		}

		return false, nil
	}

	return &Client{
		client:           retryClient.StandardClient(),
		service:          service,
		url:              cfg.URL,
		apiKey:           cfg.APIKey,
		requesterID:      cfg.RequesterID,
		verificationType: verificationType,
		simulate:         cfg.UseSimulation || cfg.APIKey == "",
		simDelay:         cfg.SimDelay,
	}
}

func (c *Client) Verify(ctx context.Context, citizenID, passportNumber string) *entity.VerificationResult {
	if c.simulate {
		return c.simulateVerify(ctx, citizenID, passportNumber)
	}

	result, err := c.verify(ctx, citizenID, passportNumber)
	if err != nil {
		logger.FromContext(ctx).WarnContext(ctx, "verification call failed",
			"service", c.service, "citizen_id", citizenID, "error", err)

		code := errCodeAPIError
		if errors.Is(err, context.DeadlineExceeded) {
			code = errCodeTimeout
		}

		return &entity.VerificationResult{
			Status:         entity.VerificationError,
			CitizenID:      citizenID,
			PassportNumber: passportNumber,
			ErrorCode:      code,
			ErrorMessage:   err.Error(),
			Timestamp:      time.Now().UTC().Format(time.RFC3339),
		}
	}

	return result
}

func (c *Client) verify(ctx context.Context, citizenID, passportNumber string) (*entity.VerificationResult, error) {
	payload := entity.VerificationRequest{
		CitizenID:        citizenID,
		VerificationType: c.verificationType,
		RequesterID:      c.requesterID,
		PassportNumber:   passportNumber,
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("X-API-Version", apiVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", entity.ErrVerificationUnavailable, err)
	}

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s api error: %d %s", c.service, resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	var result entity.VerificationResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if result.Status != entity.VerificationSuccess {
		return nil, fmt.Errorf("%w: %s", entity.ErrVerificationFailed, result.ErrorMessage)
	}

	if result.CitizenID == "" {
		result.CitizenID = citizenID
	}

	return &result, nil
}
