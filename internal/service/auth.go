package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/etdpk/etdclient/internal/clients/etdapi"
	"github.com/etdpk/etdclient/internal/entity"
	"github.com/etdpk/etdclient/internal/repository"
	"github.com/etdpk/etdclient/pkg/config"
	"github.com/etdpk/etdclient/pkg/logger"
)

const loginPath = "/pages/login.html"

// Navigator moves the operator to another page. The router implements it;
// services never build URLs themselves.
type Navigator interface {
	NavigateTo(ctx context.Context, path string)
}

// APIClient is the slice of the backend client the auth manager needs.
type APIClient interface {
	Login(ctx context.Context, req any) etdapi.Result
	Logout(ctx context.Context) etdapi.Result
	Refresh(ctx context.Context) etdapi.Result
	Request(ctx context.Context, method, endpoint string, body any) etdapi.Result
}

// AuthManager owns the session state. Everything else reads it through
// accessors; only login, logout and refresh mutate it.
type AuthManager struct {
	cfg   config.Config
	api   APIClient
	store *repository.TokenStore
	nav   Navigator

	mu    sync.RWMutex
	state entity.SessionState
}

func NewAuthManager(cfg config.Config, api APIClient, store *repository.TokenStore, nav Navigator) *AuthManager {
	return &AuthManager{
		cfg:   cfg,
		api:   api,
		store: store,
		nav:   nav,
		state: store.LoadSession(),
	}
}

func (a *AuthManager) Login(ctx context.Context, creds entity.Credentials) error {
	if strings.TrimSpace(creds.Username) == "" || strings.TrimSpace(creds.Password) == "" {
		return entity.ErrMissingCredentials
	}

	if !creds.Role.Valid() {
		return entity.ErrUnknownRole
	}

	req := entity.LoginRequest{
		Username:   creds.Username,
		Password:   creds.Password,
		LocationID: string(creds.Role),
		Role:       string(creds.Role),
	}

	res := a.api.Login(ctx, req)

	if !res.Success {
		if res.Status == 0 && a.devFallbackAllowed() {
			return a.loginDevFallback(ctx, creds)
		}

		if res.Status == http.StatusUnauthorized {
			return fmt.Errorf("%w: %s", entity.ErrInvalidCredentials, res.Error)
		}

		if res.Status == 0 {
			return fmt.Errorf("%w: %s", entity.ErrServiceUnavailable, res.Error)
		}

		return errors.New(res.Error)
	}

	var resp entity.LoginResponse
	if err := res.Decode(&resp); err != nil {
		return fmt.Errorf("decode login response: %w", err)
	}

	if resp.Token == "" {
		return entity.ErrInvalidCredentials
	}

	role := entity.Role(resp.User.Role)
	if !role.Valid() {
		role = creds.Role
	}

	info := entity.RoleInfoFor(role)

	username := resp.User.Username
	if username == "" {
		username = creds.Username
	}

	// Backend-supplied permissions and dashboard override the role defaults.
	permissions := resp.User.Permissions
	if len(permissions) == 0 {
		permissions = info.Permissions
	}

	dashboard := resp.User.DashboardURL
	if dashboard == "" {
		dashboard = info.DashboardURL
	}

	state := entity.SessionState{
		IsAuthenticated: true,
		User:            username,
		Token:           resp.Token,
		Role:            role,
		Permissions:     permissions,
		DashboardURL:    dashboard,
	}

	a.setState(state)
	a.store.SaveSession(state)

	logger.FromContext(ctx).InfoContext(ctx, "login successful",
		"user", username, "role", role, "dashboard", dashboard)

	a.nav.NavigateTo(ctx, dashboard)

	return nil
}

// loginDevFallback synthesizes a session without backend verification. It is
// only reachable in development against a loopback base with the fallback
// flag set; the log line marks the session as unverified.
func (a *AuthManager) loginDevFallback(ctx context.Context, creds entity.Credentials) error {
	info := entity.RoleInfoFor(creds.Role)

	state := entity.SessionState{
		IsAuthenticated: true,
		User:            creds.Username,
		Token:           fmt.Sprintf("dev-token-%d", time.Now().Unix()),
		Role:            creds.Role,
		Permissions:     info.Permissions,
		DashboardURL:    info.DashboardURL,
	}

	a.setState(state)
	a.store.SaveSession(state)

	ctx = logger.SetLogType(ctx, "security")
	logger.FromContext(ctx).WarnContext(ctx, "dev fallback login: session is NOT verified by the backend",
		"user", creds.Username, "role", creds.Role)

	a.nav.NavigateTo(ctx, state.DashboardURL)

	return nil
}

func (a *AuthManager) devFallbackAllowed() bool {
	return a.cfg.Session.AllowDevFallback &&
		a.cfg.Environment == config.EnvDevelopment &&
		a.cfg.API.IsLoopback()
}

// Logout tears the session down unconditionally. The backend call is best
// effort; local state is cleared even when it fails.
func (a *AuthManager) Logout(ctx context.Context) {
	if a.Token() != "" {
		if res := a.api.Logout(ctx); !res.Success {
			logger.FromContext(ctx).WarnContext(ctx, "backend logout failed, clearing local session anyway",
				"status", res.Status, "error", res.Error)
		}
	}

	a.setState(entity.SessionState{})
	a.store.ClearSession()

	a.nav.NavigateTo(ctx, loginPath)
}

// RefreshToken replaces the stored token. Refresh failure is fatal for the
// session: the user is logged out rather than left half-authenticated.
func (a *AuthManager) RefreshToken(ctx context.Context) error {
	if a.Token() == "" {
		return entity.ErrNoToken
	}

	res := a.api.Refresh(ctx)
	if !res.Success {
		logger.FromContext(ctx).WarnContext(ctx, "token refresh failed, forcing logout",
			"status", res.Status, "error", res.Error)
		a.Logout(ctx)

		return fmt.Errorf("%w: %s", entity.ErrUnauthorized, res.Error)
	}

	var resp entity.RefreshResponse
	if err := res.Decode(&resp); err != nil || resp.Token == "" {
		a.Logout(ctx)
		return entity.ErrUnauthorized
	}

	a.mu.Lock()
	a.state.Token = resp.Token
	state := a.state
	a.mu.Unlock()

	a.store.SaveSession(state)

	return nil
}

// AuthFetch performs an authenticated request. On 401 it refreshes the token
// once and retries once; a second 401 is returned as-is.
func (a *AuthManager) AuthFetch(ctx context.Context, method, endpoint string, body any) etdapi.Result {
	res := a.api.Request(ctx, method, endpoint, body)
	if res.Status != http.StatusUnauthorized {
		return res
	}

	if err := a.RefreshToken(ctx); err != nil {
		return res
	}

	return a.api.Request(ctx, method, endpoint, body)
}

func (a *AuthManager) HasPermission(permission string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()

	for _, p := range a.state.Permissions {
		if p == entity.PermissionWildcard || p == permission {
			return true
		}
	}

	return false
}

func (a *AuthManager) IsAuthenticated() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.state.IsAuthenticated
}

// Token implements the transport token source.
func (a *AuthManager) Token() string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.state.Token
}

func (a *AuthManager) Session() entity.SessionState {
	a.mu.RLock()
	defer a.mu.RUnlock()

	state := a.state
	state.Permissions = append([]string(nil), a.state.Permissions...)

	return state
}

func (a *AuthManager) setState(state entity.SessionState) {
	a.mu.Lock()
	a.state = state
	a.mu.Unlock()
}

// TokenExpiresAt decodes the expiry claim without verifying the signature.
// The backend is the authority on token validity; the client only needs the
// claim to schedule proactive refreshes.
func (a *AuthManager) TokenExpiresAt() (time.Time, bool) {
	token := a.Token()
	if token == "" {
		return time.Time{}, false
	}

	claims := jwt.MapClaims{}

	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}

	return exp.Time, true
}

// CurrentUser reads the identity claims out of the bearer token, again
// without verification. Tokens the client cannot decode fall back to the
// stored session fields.
func (a *AuthManager) CurrentUser() entity.LoginUser {
	session := a.Session()

	user := entity.LoginUser{
		Username:     session.User,
		Role:         string(session.Role),
		Permissions:  session.Permissions,
		DashboardURL: session.DashboardURL,
	}

	if session.Token == "" {
		return user
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(session.Token, claims); err != nil {
		return user
	}

	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		user.Username = sub
	}

	if role, ok := claims["role"].(string); ok && role != "" {
		user.Role = role
	}

	return user
}

// RefreshIfExpiring renews the token ahead of its expiry. Tokens without a
// readable expiry claim are left alone until a 401 forces a refresh.
func (a *AuthManager) RefreshIfExpiring(ctx context.Context) error {
	if a.Token() == "" {
		return nil
	}

	expiresAt, ok := a.TokenExpiresAt()
	if !ok {
		return nil
	}

	if time.Until(expiresAt) > a.cfg.Session.RefreshLeeway {
		return nil
	}

	return a.RefreshToken(ctx)
}
