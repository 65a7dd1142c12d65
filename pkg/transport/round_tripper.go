package transport

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/etdpk/etdclient/pkg/logger"
)

// TokenSource yields the current bearer credential, empty when the session
// is unauthenticated.
type TokenSource interface {
	Token() string
}

// BearerRoundTripper attaches the session bearer token and the request id to
// every outgoing request and logs the exchange. Requests that already carry
// an Authorization header are left untouched.
type BearerRoundTripper struct {
	Transport http.RoundTripper
	Tokens    TokenSource
}

func NewBearerRoundTripper(transport http.RoundTripper, tokens TokenSource) *BearerRoundTripper {
	return &BearerRoundTripper{Transport: transport, Tokens: tokens}
}

func (b *BearerRoundTripper) RoundTrip(r *http.Request) (*http.Response, error) {
	ctx := r.Context()

	reqID := logger.RequestIDFromCtx(ctx)
	if reqID != "" {
		r.Header.Set("X-Request-Id", reqID)
	}

	if b.Tokens != nil && r.Header.Get("Authorization") == "" {
		if token := b.Tokens.Token(); token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
	}

	slog.InfoContext(ctx, "outgoing request", "request", fmt.Sprintf("%s %s", r.Method, r.URL.Redacted()))

	resp, err := b.Transport.RoundTrip(r)
	if err != nil {
		return nil, fmt.Errorf("round trip: %w", err)
	}

	slog.InfoContext(ctx, "incoming response", "response", fmt.Sprintf("%s %s", r.Method, r.URL.Redacted()))

	return resp, nil
}
