package service

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/etdpk/etdclient/internal/clients/etdapi"
	"github.com/etdpk/etdclient/internal/entity"
	"github.com/etdpk/etdclient/internal/repository"
	"github.com/etdpk/etdclient/pkg/config"
)

// fakeAPI scripts backend responses per endpoint and records every call.
type fakeAPI struct {
	mu        sync.Mutex
	responses map[string][]etdapi.Result
	calls     []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{responses: map[string][]etdapi.Result{}}
}

func (f *fakeAPI) respond(endpoint string, results ...etdapi.Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[endpoint] = append(f.responses[endpoint], results...)
}

func (f *fakeAPI) Request(_ context.Context, method, endpoint string, _ any) etdapi.Result {
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

func (f *fakeAPI) Login(ctx context.Context, req any) etdapi.Result {
	return f.Request(ctx, http.MethodPost, "/auth/login", req)
}

func (f *fakeAPI) Logout(ctx context.Context) etdapi.Result {
	return f.Request(ctx, http.MethodPost, "/auth/logout", nil)
}

func (f *fakeAPI) Refresh(ctx context.Context) etdapi.Result {
	return f.Request(ctx, http.MethodPost, "/auth/refresh", nil)
}

func (f *fakeAPI) callCount(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := 0

	for _, c := range f.calls {
		if c == call {
			count++
		}
	}

	return count
}

type fakeNav struct {
	mu    sync.Mutex
	paths []string
}

func (n *fakeNav) NavigateTo(_ context.Context, path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paths = append(n.paths, path)
}

func (n *fakeNav) last() string {
	n.mu.Lock()
	defer n.mu.Unlock()

	if len(n.paths) == 0 {
		return ""
	}

	return n.paths[len(n.paths)-1]
}

func jsonResult(status int, body string) etdapi.Result {
	return etdapi.Result{
		Success: status >= 200 && status < 300,
		Data:    json.RawMessage(body),
		Status:  status,
	}
}

func errorResult(status int, message string) etdapi.Result {
	return etdapi.Result{Error: message, Status: status}
}

func newTestConfig() config.Config {
	return config.Config{
		Environment: config.EnvDevelopment,
		API: config.APIConfig{
			BaseURL: "http://localhost:3837/v1/api",
		},
		Upload: config.UploadConfig{
			MaxFileSize:    1 << 20,
			MaxConcurrency: 3,
		},
	}
}

func newMemoryTokenStore() *repository.TokenStore {
	return repository.NewTokenStore(repository.NewMemoryStore(), repository.NewMemoryStore())
}

// fakeVerifier returns a fixed result and remembers what it was asked.
type fakeVerifier struct {
	mu       sync.Mutex
	result   *entity.VerificationResult
	citizens []string
}

func (v *fakeVerifier) Verify(_ context.Context, citizenID, passportNumber string) *entity.VerificationResult {
	v.mu.Lock()
	v.citizens = append(v.citizens, citizenID)
	v.mu.Unlock()

	if v.result != nil {
		return v.result
	}

	return &entity.VerificationResult{
		Status:         entity.VerificationSuccess,
		CitizenID:      citizenID,
		PassportNumber: passportNumber,
		Data:           &entity.PersonRecord{FirstName: "John"},
	}
}
