package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/etdpk/etdclient/internal/clients/etdapi"
	"github.com/etdpk/etdclient/internal/entity"
	"github.com/etdpk/etdclient/internal/repository"
	"github.com/etdpk/etdclient/internal/service"
	"github.com/etdpk/etdclient/pkg/config"
)

// stubAPI scripts backend responses per endpoint and records every call.
type stubAPI struct {
	mu        sync.Mutex
	responses map[string][]etdapi.Result
	calls     []string
}

func newStubAPI() *stubAPI {
	return &stubAPI{responses: map[string][]etdapi.Result{}}
}

func (f *stubAPI) respond(endpoint string, results ...etdapi.Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[endpoint] = append(f.responses[endpoint], results...)
}

func (f *stubAPI) Request(_ context.Context, method, endpoint string, _ any) etdapi.Result {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, method+" "+endpoint)

	queued := f.responses[endpoint]
	if len(queued) == 0 {
		return etdapi.Result{Success: true, Data: json.RawMessage("{}"), Status: http.StatusOK}
	}

	res := queued[0]
	f.responses[endpoint] = queued[1:]

	return res
}

func (f *stubAPI) Login(ctx context.Context, req any) etdapi.Result {
	return f.Request(ctx, http.MethodPost, "/auth/login", req)
}

func (f *stubAPI) Logout(ctx context.Context) etdapi.Result {
	return f.Request(ctx, http.MethodPost, "/auth/logout", nil)
}

func (f *stubAPI) Refresh(ctx context.Context) etdapi.Result {
	return f.Request(ctx, http.MethodPost, "/auth/refresh", nil)
}

type stubVerifier struct{}

func (stubVerifier) Verify(_ context.Context, citizenID, passportNumber string) *entity.VerificationResult {
	return &entity.VerificationResult{
		Status:         entity.VerificationSuccess,
		CitizenID:      citizenID,
		PassportNumber: passportNumber,
		Data:           &entity.PersonRecord{FirstName: "John", LastName: "Doe"},
	}
}

// stubUploader reports a fixed progress ramp and succeeds.
type stubUploader struct{}

func (stubUploader) Upload(_ context.Context, _ string, _ []etdapi.UploadFile, _ map[string]string, progress chan<- int) etdapi.Result {
	if progress != nil {
		for _, percent := range []int{30, 70, 100} {
			progress <- percent
		}
		close(progress)
	}

	return etdapi.Result{Success: true, Data: json.RawMessage("{}"), Status: http.StatusOK}
}

type harness struct {
	api    *stubAPI
	auth   *service.AuthManager
	nav    *Navigator
	store  *repository.TokenStore
	server *httptest.Server
	client *http.Client
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	cfg := config.Config{
		Environment: config.EnvDevelopment,
		API: config.APIConfig{
			BaseURL:       "http://localhost:3837/v1/api",
			Timeout:       2 * time.Second,
			RetryAttempts: 3,
			RetryDelay:    time.Millisecond,
		},
		Session: config.SessionConfig{RefreshLeeway: 10 * time.Minute},
		Upload:  config.UploadConfig{MaxFileSize: 1 << 20, MaxConcurrency: 3},
	}

	api := newStubAPI()
	store := repository.NewTokenStore(repository.NewMemoryStore(), repository.NewMemoryStore())
	nav := NewNavigator()

	auth := service.NewAuthManager(cfg, api, store, nav)
	roles := service.NewRoleManager(store, nav)
	apps := service.NewApplicationService(auth, store, stubVerifier{}, stubVerifier{})
	boards := service.NewDashboardService(auth, store)
	uploads := service.NewUploadService(cfg.Upload, auth, stubUploader{})

	handler := NewHandler(auth, roles, apps, boards, uploads, nav)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	mw := NewMiddleware(log, auth, roles)

	server := httptest.NewServer(NewRouter(handler, mw))
	t.Cleanup(server.Close)

	client := server.Client()
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	return &harness{api: api, auth: auth, nav: nav, store: store, server: server, client: client}
}

// loginAs scripts a backend login for the role and signs in through the API.
func (h *harness) loginAs(t *testing.T, role entity.Role) {
	t.Helper()

	body, err := json.Marshal(entity.LoginResponse{
		Token: "token-" + string(role),
		User:  entity.LoginUser{Username: string(role) + "_user", Role: string(role)},
	})
	require.NoError(t, err)

	h.api.respond("/auth/login", etdapi.Result{Success: true, Data: body, Status: http.StatusOK})

	resp := h.postJSON(t, "/api/login", LoginAPIRequest{
		Username: string(role) + "_user",
		Password: "secret",
		Role:     string(role),
	})
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func (h *harness) get(t *testing.T, path string) *http.Response {
	t.Helper()

	resp, err := h.client.Get(h.server.URL + path)
	require.NoError(t, err)

	return resp
}

func (h *harness) postJSON(t *testing.T, path string, body any) *http.Response {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := h.client.Post(h.server.URL+path, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)

	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	defer resp.Body.Close()

	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))

	return out
}

func applicationBody(t *testing.T, app entity.Application) json.RawMessage {
	t.Helper()

	body, err := json.Marshal(app)
	require.NoError(t, err)

	return body
}

func listBody(t *testing.T, apps ...entity.Application) json.RawMessage {
	t.Helper()

	body, err := json.Marshal(map[string]any{"applications": apps})
	require.NoError(t, err)

	return body
}

