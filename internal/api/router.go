package api

import (
	"net/http"

	"github.com/etdpk/etdclient/internal/entity"
)

func NewRouter(h *Handler, mw *Middleware) http.Handler {
	router := http.NewServeMux()

	router.HandleFunc("/api/health", h.Health)

	router.HandleFunc("POST /api/login", h.Login)
	router.HandleFunc("POST /api/logout", h.Logout)
	router.HandleFunc("GET /api/session", h.Session)

	// everything past this point needs a live session
	router.Handle("GET /api/dashboard", mw.RequireAuth(http.HandlerFunc(h.Dashboard)))
	router.Handle("GET /api/users", mw.RequireAuth(http.HandlerFunc(h.Users)))

	router.Handle("GET /api/applications", mw.RequireAuth(http.HandlerFunc(h.ListApplications)))
	router.Handle("POST /api/applications", mw.RequireAuth(http.HandlerFunc(h.CreateApplication)))
	router.Handle("GET /api/applications/{id}", mw.RequireAuth(http.HandlerFunc(h.GetApplication)))
	router.Handle("PUT /api/applications/{id}", mw.RequireAuth(http.HandlerFunc(h.UpdateApplication)))
	router.Handle("DELETE /api/applications/{id}", mw.RequireAuth(http.HandlerFunc(h.DeleteApplication)))

	router.Handle("POST /api/applications/{id}/submit", mw.RequireAuth(h.Transition("submit")))
	router.Handle("POST /api/applications/{id}/review", mw.RequireAuth(h.Transition("review")))
	router.Handle("POST /api/applications/{id}/approve", mw.RequireAuth(h.Transition("approve")))
	router.Handle("POST /api/applications/{id}/reject", mw.RequireAuth(h.Transition("reject")))
	router.Handle("POST /api/applications/{id}/tracking", mw.RequireAuth(http.HandlerFunc(h.GenerateTracking)))

	router.Handle("POST /api/draft", mw.RequireAuth(http.HandlerFunc(h.SaveDraft)))
	router.Handle("GET /api/draft", mw.RequireAuth(http.HandlerFunc(h.LoadDraft)))

	router.Handle("POST /api/verify", mw.RequireAuth(http.HandlerFunc(h.Verify)))

	router.Handle("POST /api/uploads", mw.RequireAuth(http.HandlerFunc(h.Upload)))
	router.Handle("POST /api/uploads/multiple", mw.RequireAuth(http.HandlerFunc(h.UploadMany)))
	router.Handle("GET /api/uploads/{id}", mw.RequireAuth(http.HandlerFunc(h.UploadInfo)))
	router.Handle("DELETE /api/uploads/{id}", mw.RequireAuth(http.HandlerFunc(h.DeleteUpload)))

	router.Handle("GET /api/navigation", mw.RequireAuth(http.HandlerFunc(h.Navigation)))
	router.Handle("POST /api/navigation/back", mw.RequireAuth(http.HandlerFunc(h.Back)))

	// pages come from the registry; each one is mounted at its canonical
	// path behind the auth and role gates
	for page, pageHandler := range h.Pages() {
		switch page {
		case entity.PageIndex, entity.PageLogin:
			router.HandleFunc("GET "+PathFor(page), pageHandler)
		default:
			router.Handle("GET "+PathFor(page), mw.RequireAuth(mw.PageGate(page, pageHandler)))
		}
	}

	router.HandleFunc("GET /{$}", h.IndexPage)

	return use(router, mw.Recover, mw.Log)
}

func use(handler http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		handler = mws[i](handler)
	}

	return handler
}
