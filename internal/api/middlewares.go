package api

import (
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/etdpk/etdclient/internal/entity"
	"github.com/etdpk/etdclient/internal/service"
	"github.com/etdpk/etdclient/pkg/logger"
)

type Middleware struct {
	log   *slog.Logger
	auth  *service.AuthManager
	roles *service.RoleManager
}

func NewMiddleware(log *slog.Logger, auth *service.AuthManager, roles *service.RoleManager) *Middleware {
	return &Middleware{log: log, auth: auth, roles: roles}
}

func (m *Middleware) Log(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ctx := context.WithValue(r.Context(), entity.CtxKeyLogger{}, m.log)
		ctx = logger.SetRequestID(ctx, uuid.Must(uuid.NewV4()).String())
		ctx = logger.SetMethod(ctx, r.Method)
		ctx = logger.SetURL(ctx, r.URL.Path)
		ctx = logger.SetLogType(ctx, "webrequest")

		if session := m.auth.Session(); session.IsAuthenticated {
			ctx = logger.SetUser(ctx, session.User)
			ctx = logger.SetRole(ctx, string(session.Role))
		}

		m.log.InfoContext(ctx, "incoming request")

		next.ServeHTTP(w, r.WithContext(ctx))

		m.log.InfoContext(ctx, "request completed", "duration_ms", time.Since(start).Milliseconds())
	})
}

func (m *Middleware) Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func(ctx context.Context) {
			if err := recover(); err != nil {
				slog.ErrorContext(ctx, "panic", "error", err, "stack", string(debug.Stack()))
				sendErr(ctx, w, http.StatusInternalServerError, http.ErrAbortHandler, errInternalText)
			}
		}(r.Context())
		next.ServeHTTP(w, r)
	})
}

// RequireAuth gates authenticated routes. Unauthenticated requests to pages
// redirect to login; API calls get a 401.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.auth.IsAuthenticated() {
			next.ServeHTTP(w, r)
			return
		}

		if isAPIRequest(r) {
			sendErr(r.Context(), w, http.StatusUnauthorized, entity.ErrNotAuthenticated, authErrText(entity.ErrNotAuthenticated))
			return
		}

		http.Redirect(w, r, PathFor(entity.PageLogin), http.StatusSeeOther)
	})
}

// PageGate enforces role access for one page and annotates the request
// context with the page name for logging.
func (m *Middleware) PageGate(page entity.Page, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := logger.SetPage(r.Context(), string(page))
		ctx = context.WithValue(ctx, entity.CtxKeyPage{}, page)

		if !m.roles.ValidatePageAccess(ctx, page) {
			http.Redirect(w, r, m.roles.DashboardURL(), http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

func isAPIRequest(r *http.Request) bool {
	return len(r.URL.Path) >= 5 && r.URL.Path[:5] == "/api/"
}
