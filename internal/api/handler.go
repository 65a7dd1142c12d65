package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/etdpk/etdclient/internal/entity"
	"github.com/etdpk/etdclient/internal/service"
	"github.com/etdpk/etdclient/pkg/logger"
)

type Handler struct {
	auth    *service.AuthManager
	roles   *service.RoleManager
	apps    *service.ApplicationService
	boards  *service.DashboardService
	uploads *service.UploadService
	nav     *Navigator
}

func NewHandler(
	auth *service.AuthManager,
	roles *service.RoleManager,
	apps *service.ApplicationService,
	boards *service.DashboardService,
	uploads *service.UploadService,
	nav *Navigator,
) *Handler {
	return &Handler{
		auth:    auth,
		roles:   roles,
		apps:    apps,
		boards:  boards,
		uploads: uploads,
		nav:     nav,
	}
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte("ok\n"))
}

type LoginAPIRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginAPIResponse struct {
	User         string   `json:"user"`
	Role         string   `json:"role"`
	Permissions  []string `json:"permissions"`
	DashboardURL string   `json:"dashboard_url"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := logger.SetLogType(r.Context(), "auth")

	var req LoginAPIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendErr(ctx, w, http.StatusBadRequest, err, "Invalid request")
		return
	}

	err := h.auth.Login(ctx, entity.Credentials{
		Username: req.Username,
		Password: req.Password,
		Role:     entity.Role(req.Role),
	})
	if err != nil {
		sendErr(ctx, w, statusFor(err), err, authErrText(err))
		return
	}

	session := h.auth.Session()

	sendJSON(ctx, w, http.StatusOK, LoginAPIResponse{
		User:         session.User,
		Role:         string(session.Role),
		Permissions:  session.Permissions,
		DashboardURL: session.DashboardURL,
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := logger.SetLogType(r.Context(), "auth")

	h.auth.Logout(ctx)

	sendJSON(ctx, w, http.StatusOK, map[string]string{"redirect": PathFor(entity.PageLogin)})
}

type SessionResponse struct {
	Authenticated bool     `json:"authenticated"`
	User          string   `json:"user,omitempty"`
	Role          string   `json:"role,omitempty"`
	RoleName      string   `json:"role_name,omitempty"`
	Permissions   []string `json:"permissions,omitempty"`
	DashboardURL  string   `json:"dashboard_url,omitempty"`
}

func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	resp := SessionResponse{Authenticated: h.auth.IsAuthenticated()}
	if resp.Authenticated {
		user := h.auth.CurrentUser()

		resp.User = user.Username
		resp.Role = user.Role
		resp.RoleName = entity.RoleInfoFor(entity.Role(user.Role)).Name
		resp.Permissions = user.Permissions
		resp.DashboardURL = user.DashboardURL
	}

	sendJSON(r.Context(), w, http.StatusOK, resp)
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	view, err := h.boards.Summary(ctx)
	if err != nil {
		sendErr(ctx, w, statusFor(err), err, errInternalText)
		return
	}

	sendJSON(ctx, w, http.StatusOK, view)
}

func (h *Handler) Users(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !h.auth.HasPermission("manage_users") {
		sendErr(ctx, w, http.StatusForbidden, entity.ErrPageDenied, "You do not have access to user management")
		return
	}

	users, err := h.boards.Users(ctx)
	if err != nil {
		sendErr(ctx, w, statusFor(err), err, errInternalText)
		return
	}

	sendJSON(ctx, w, http.StatusOK, map[string]any{"users": users})
}

func (h *Handler) ListApplications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	apps, err := h.apps.List(ctx, entity.ApplicationStatus(r.URL.Query().Get("status")))
	if err != nil {
		sendErr(ctx, w, statusFor(err), err, applicationErrText(err))
		return
	}

	sendJSON(ctx, w, http.StatusOK, map[string]any{"applications": apps})
}

func (h *Handler) CreateApplication(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	app, err := decodeApplication(r)
	if err != nil {
		sendErr(ctx, w, http.StatusBadRequest, err, "Invalid request")
		return
	}

	created, err := h.apps.Create(ctx, app)
	if err != nil {
		sendErr(ctx, w, statusFor(err), err, applicationErrText(err))
		return
	}

	sendJSON(ctx, w, http.StatusCreated, created)
}

func (h *Handler) GetApplication(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	app, err := h.apps.Get(ctx, r.PathValue("id"))
	if err != nil {
		sendErr(ctx, w, statusFor(err), err, applicationErrText(err))
		return
	}

	sendJSON(ctx, w, http.StatusOK, app)
}

func (h *Handler) UpdateApplication(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	app, err := decodeApplication(r)
	if err != nil {
		sendErr(ctx, w, http.StatusBadRequest, err, "Invalid request")
		return
	}

	updated, err := h.apps.Update(ctx, r.PathValue("id"), app)
	if err != nil {
		sendErr(ctx, w, statusFor(err), err, applicationErrText(err))
		return
	}

	sendJSON(ctx, w, http.StatusOK, updated)
}

func (h *Handler) DeleteApplication(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.apps.Delete(ctx, r.PathValue("id")); err != nil {
		sendErr(ctx, w, statusFor(err), err, applicationErrText(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type transitionRequest struct {
	Remarks string `json:"remarks"`
}

// Transition moves an application through its lifecycle. The current record
// is fetched first so the transition is checked against live status.
func (h *Handler) Transition(action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		app, err := h.apps.Get(ctx, r.PathValue("id"))
		if err != nil {
			sendErr(ctx, w, statusFor(err), err, applicationErrText(err))
			return
		}

		var req transitionRequest
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&req)
		}

		switch action {
		case "submit":
			err = h.apps.Submit(ctx, app)
		case "review":
			err = h.apps.Review(ctx, app)
		case "approve":
			err = h.apps.Approve(ctx, app, req.Remarks)
		case "reject":
			err = h.apps.Reject(ctx, app, req.Remarks)
		default:
			sendErr(ctx, w, http.StatusBadRequest, fmt.Errorf("unknown action %q", action), "Invalid request")
			return
		}

		if err != nil {
			sendErr(ctx, w, statusFor(err), err, applicationErrText(err))
			return
		}

		sendJSON(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func (h *Handler) GenerateTracking(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	trackingID, err := h.apps.GenerateTracking(ctx, r.PathValue("id"))
	if err != nil {
		sendErr(ctx, w, statusFor(err), err, applicationErrText(err))
		return
	}

	sendJSON(ctx, w, http.StatusOK, map[string]string{"tracking_id": trackingID})
}

func (h *Handler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var app entity.Application
	if err := json.NewDecoder(r.Body).Decode(&app); err != nil {
		sendErr(ctx, w, http.StatusBadRequest, err, "Invalid request")
		return
	}

	h.apps.SaveDraft(app)

	sendJSON(ctx, w, http.StatusOK, map[string]string{"status": "saved"})
}

func (h *Handler) LoadDraft(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	draft, ok := h.apps.LoadDraft()
	if !ok {
		sendErr(ctx, w, http.StatusNotFound, entity.ErrNotFound, "No draft saved")
		return
	}

	sendJSON(ctx, w, http.StatusOK, draft)
}

type VerifyRequest struct {
	CitizenID      string `json:"citizen_id"`
	PassportNumber string `json:"passport_number,omitempty"`
}

type VerifyResponse struct {
	Nadra    *entity.VerificationResult `json:"nadra"`
	Passport *entity.VerificationResult `json:"passport,omitempty"`
}

func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	ctx := logger.SetLogType(r.Context(), "verification")

	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendErr(ctx, w, http.StatusBadRequest, err, "Invalid request")
		return
	}

	outcome, err := h.apps.VerifyIdentity(ctx, req.CitizenID, req.PassportNumber)
	if err != nil {
		sendErr(ctx, w, statusFor(err), err, applicationErrText(err))
		return
	}

	sendJSON(ctx, w, http.StatusOK, VerifyResponse{Nadra: outcome.Nadra, Passport: outcome.Passport})
}

// Upload receives one document and streams progress as server-sent events.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	file, err := readMultipartFile(r, "file")
	if err != nil {
		sendErr(ctx, w, http.StatusBadRequest, err, "Invalid upload")
		return
	}

	applicationID := r.FormValue("application_id")

	progress, done := h.uploads.Upload(ctx, applicationID, file)

	flusher, ok := w.(http.Flusher)
	if !ok {
		// no streaming support, just wait for the result
		for range progress {
		}

		h.finishUpload(w, r, <-done)

		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")

	for percent := range progress {
		fmt.Fprintf(w, "event: progress\ndata: %d\n\n", percent)
		flusher.Flush()
	}

	if err := <-done; err != nil {
		fmt.Fprintf(w, "event: error\ndata: %s\n\n", uploadErrText(err))
	} else {
		fmt.Fprint(w, "event: done\ndata: 100\n\n")
	}

	flusher.Flush()
}

func (h *Handler) finishUpload(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()

	if err != nil {
		sendErr(ctx, w, statusFor(err), err, uploadErrText(err))
		return
	}

	sendJSON(ctx, w, http.StatusOK, map[string]string{"status": "uploaded"})
}

func (h *Handler) UploadInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	info, err := h.uploads.Info(ctx, r.PathValue("id"))
	if err != nil {
		sendErr(ctx, w, statusFor(err), err, uploadErrText(err))
		return
	}

	sendJSON(ctx, w, http.StatusOK, info)
}

func (h *Handler) DeleteUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.uploads.Delete(ctx, r.PathValue("id")); err != nil {
		sendErr(ctx, w, statusFor(err), err, uploadErrText(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type BulkUploadResponse struct {
	Uploaded int                 `json:"uploaded"`
	Failed   int                 `json:"failed"`
	Results  []BulkUploadOutcome `json:"results"`
}

type BulkUploadOutcome struct {
	Name  string `json:"name"`
	Error string `json:"error,omitempty"`
}

func (h *Handler) UploadMany(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		sendErr(ctx, w, http.StatusBadRequest, err, "Invalid upload")
		return
	}

	var files []service.File

	for _, headers := range r.MultipartForm.File {
		for _, header := range headers {
			part, err := header.Open()
			if err != nil {
				sendErr(ctx, w, http.StatusBadRequest, err, "Invalid upload")
				return
			}

			content, err := io.ReadAll(part)
			_ = part.Close()

			if err != nil {
				sendErr(ctx, w, http.StatusBadRequest, err, "Invalid upload")
				return
			}

			files = append(files, service.File{Name: header.Filename, Content: content})
		}
	}

	outcomes := h.uploads.UploadMany(ctx, r.FormValue("application_id"), files)

	resp := BulkUploadResponse{Results: make([]BulkUploadOutcome, 0, len(outcomes))}

	for _, outcome := range outcomes {
		result := BulkUploadOutcome{Name: outcome.Name}

		if outcome.Err != nil {
			result.Error = uploadErrText(outcome.Err)
			resp.Failed++
		} else {
			resp.Uploaded++
		}

		resp.Results = append(resp.Results, result)
	}

	sendJSON(ctx, w, http.StatusOK, resp)
}

type NavigationItem struct {
	Page entity.Page `json:"page"`
	Path string      `json:"path"`
}

func (h *Handler) Navigation(w http.ResponseWriter, r *http.Request) {
	pages := h.roles.AllowedPages()

	items := make([]NavigationItem, 0, len(pages))
	for _, page := range pages {
		items = append(items, NavigationItem{Page: page, Path: PathFor(page)})
	}

	sendJSON(r.Context(), w, http.StatusOK, map[string]any{
		"current": h.nav.Current(),
		"items":   items,
	})
}

func (h *Handler) Back(w http.ResponseWriter, r *http.Request) {
	target := h.nav.Back(r.Context())

	sendJSON(r.Context(), w, http.StatusOK, map[string]string{"redirect": target})
}

// decodeApplication accepts JSON bodies and classic form posts; form fields
// arrive camelCase and are mapped and coerced onto the wire record.
func decodeApplication(r *http.Request) (entity.Application, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			return entity.Application{}, err
		}

		return service.ApplicationFromForm(r.PostForm), nil
	}

	var app entity.Application
	if err := json.NewDecoder(r.Body).Decode(&app); err != nil {
		return entity.Application{}, err
	}

	return app, nil
}

func readMultipartFile(r *http.Request, field string) (service.File, error) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return service.File{}, err
	}

	part, header, err := r.FormFile(field)
	if err != nil {
		return service.File{}, errors.New("missing file field")
	}
	defer part.Close()

	content, err := io.ReadAll(part)
	if err != nil {
		return service.File{}, err
	}

	return service.File{Name: header.Filename, Content: content}, nil
}
