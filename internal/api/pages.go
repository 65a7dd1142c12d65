package api

import (
	"net/http"

	"github.com/etdpk/etdclient/internal/entity"
	"github.com/etdpk/etdclient/internal/service"
)

// PageView is the state a screen renders from. Data carries the
// screen-specific payload.
type PageView struct {
	Page  entity.Page `json:"page"`
	Path  string      `json:"path"`
	Title string      `json:"title"`
	User  string      `json:"user,omitempty"`
	Role  string      `json:"role,omitempty"`
	Data  any         `json:"data,omitempty"`
}

func (h *Handler) pageView(r *http.Request, page entity.Page, title string, data any) PageView {
	if h.nav.Current() != PathFor(page) {
		h.nav.NavigateTo(r.Context(), PathFor(page))
	}

	session := h.auth.Session()

	return PageView{
		Page:  page,
		Path:  PathFor(page),
		Title: title,
		User:  session.User,
		Role:  string(session.Role),
		Data:  data,
	}
}

// Pages builds the page registry. Every screen is registered here against
// its page key at startup; nothing is resolved by matching path fragments.
func (h *Handler) Pages() map[entity.Page]http.HandlerFunc {
	return map[entity.Page]http.HandlerFunc{
		entity.PageIndex: h.IndexPage,
		entity.PageLogin: h.LoginPage,

		entity.PageFMDashboard:     h.DashboardPage(entity.PageFMDashboard, "Foreign Ministry Dashboard"),
		entity.PageAgencyDashboard: h.DashboardPage(entity.PageAgencyDashboard, "Agency Dashboard"),
		// the HQ dashboard doubles as the admin console, so it gains the
		// user management panel when the signed-in role is administrative
		entity.PageHQDashboard: h.withAdminPanel(h.DashboardPage(entity.PageHQDashboard, "Headquarters Dashboard")),

		entity.PageCitizenForm:   h.CitizenFormPage,
		entity.PageNadraPassport: h.VerificationPage,
		entity.PageSpecialBranch: h.applicationListPage(entity.PageSpecialBranch, "Special Branch Review", entity.StatusUnderReview),

		entity.PageHQView:         h.applicationListPage(entity.PageHQView, "Headquarters Applications", entity.StatusSubmitted),
		entity.PageAgencyView:     h.applicationListPage(entity.PageAgencyView, "Agency Applications", entity.StatusSubmitted),
		entity.PageETDApproved:    h.applicationListPage(entity.PageETDApproved, "Approved Documents", entity.StatusApproved),
		entity.PageETDNotApproved: h.applicationListPage(entity.PageETDNotApproved, "Rejected Applications", entity.StatusRejected),

		entity.PageETDRemarks: h.RemarksPage,
	}
}

// IndexPage routes the visitor to the login screen or straight to the
// dashboard of an already restored session.
func (h *Handler) IndexPage(w http.ResponseWriter, r *http.Request) {
	if h.auth.IsAuthenticated() {
		http.Redirect(w, r, h.roles.DashboardURL(), http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, PathFor(entity.PageLogin), http.StatusSeeOther)
}

type LoginPageData struct {
	Roles []RoleOption `json:"roles"`
}

type RoleOption struct {
	Role entity.Role `json:"role"`
	Name string      `json:"name"`
}

func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	roles := entity.AllRoles()

	data := LoginPageData{Roles: make([]RoleOption, 0, len(roles))}
	for _, role := range roles {
		data.Roles = append(data.Roles, RoleOption{Role: role, Name: entity.RoleInfoFor(role).Name})
	}

	sendJSON(r.Context(), w, http.StatusOK, h.pageView(r, entity.PageLogin, "Sign In", data))
}

// DashboardPage renders the summary for whichever dashboard the role lands
// on. The backing endpoint is picked by role, not by page.
func (h *Handler) DashboardPage(page entity.Page, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		view, err := h.boards.Summary(ctx)
		if err != nil {
			sendErr(ctx, w, statusFor(err), err, errInternalText)
			return
		}

		sendJSON(ctx, w, http.StatusOK, h.pageView(r, page, title, view))
	}
}

type adminDashboardData struct {
	service.DashboardView
	Users []entity.LoginUser `json:"users"`
}

// withAdminPanel extends a dashboard page with the user management panel
// for administrative roles. Non-admin visitors get the wrapped page as is.
func (h *Handler) withAdminPanel(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if !h.roles.CurrentRole().IsAdmin() {
			next(w, r)
			return
		}

		view, err := h.boards.Summary(ctx)
		if err != nil {
			sendErr(ctx, w, statusFor(err), err, errInternalText)
			return
		}

		users, err := h.boards.Users(ctx)
		if err != nil {
			sendErr(ctx, w, statusFor(err), err, errInternalText)
			return
		}

		page := entity.PageFromCtx(ctx)

		sendJSON(ctx, w, http.StatusOK, h.pageView(r, page, "Administration",
			adminDashboardData{DashboardView: view, Users: users}))
	}
}

type CitizenFormData struct {
	Draft     *entity.Application `json:"draft,omitempty"`
	Countries []string            `json:"countries"`
}

func (h *Handler) CitizenFormPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	data := CitizenFormData{Countries: departureCountries}
	if draft, ok := h.apps.LoadDraft(); ok {
		data.Draft = &draft
	}

	sendJSON(ctx, w, http.StatusOK, h.pageView(r, entity.PageCitizenForm, "Citizen Application", data))
}

type VerificationPageData struct {
	Draft    *entity.Application        `json:"draft,omitempty"`
	Nadra    *entity.VerificationResult `json:"nadra,omitempty"`
	Passport *entity.VerificationResult `json:"passport,omitempty"`
}

// VerificationPage shows the draft under verification together with any
// registry responses already attached to it.
func (h *Handler) VerificationPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var data VerificationPageData

	if draft, ok := h.apps.LoadDraft(); ok {
		data.Draft = &draft
		data.Nadra = draft.NadraResponse
		data.Passport = draft.PassportResponse
	}

	// the most recent lookup wins over whatever the draft carried
	if cached := h.apps.LastVerification(); cached.Nadra != nil {
		data.Nadra = cached.Nadra
		data.Passport = cached.Passport
	}

	sendJSON(ctx, w, http.StatusOK, h.pageView(r, entity.PageNadraPassport, "NADRA and Passport Verification", data))
}

type ApplicationListData struct {
	Status       entity.ApplicationStatus `json:"status"`
	StatusLabel  string                   `json:"status_label"`
	Applications []entity.Application     `json:"applications"`
}

func (h *Handler) applicationListPage(page entity.Page, title string, status entity.ApplicationStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		apps, err := h.apps.List(ctx, status)
		if err != nil {
			sendErr(ctx, w, statusFor(err), err, applicationErrText(err))
			return
		}

		sendJSON(ctx, w, http.StatusOK, h.pageView(r, page, title, ApplicationListData{
			Status:       status,
			StatusLabel:  status.Label(),
			Applications: apps,
		}))
	}
}

type RemarksPageData struct {
	Application entity.Application `json:"application"`
}

// RemarksPage shows one application in full, selected by the id query
// parameter.
func (h *Handler) RemarksPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := r.URL.Query().Get("id")
	if id == "" {
		sendErr(ctx, w, http.StatusBadRequest, entity.ErrNotFound, "No application selected")
		return
	}

	app, err := h.apps.Get(ctx, id)
	if err != nil {
		sendErr(ctx, w, statusFor(err), err, applicationErrText(err))
		return
	}

	sendJSON(ctx, w, http.StatusOK, h.pageView(r, entity.PageETDRemarks, "Application Remarks",
		RemarksPageData{Application: app}))
}

// departureCountries is the short list the form offers; anything else is
// typed in free text.
var departureCountries = []string{
	"Saudi Arabia",
	"United Arab Emirates",
	"United Kingdom",
	"Turkey",
	"Malaysia",
	"Qatar",
	"Oman",
	"Kuwait",
	"Bahrain",
	"Greece",
	"Italy",
	"Spain",
}
