package service

import (
	"context"

	"github.com/etdpk/etdclient/internal/entity"
	"github.com/etdpk/etdclient/internal/repository"
	"github.com/etdpk/etdclient/pkg/logger"
)

// RoleManager answers permission and page-access queries against the stored
// role. It is read-only; only the auth manager writes session state.
type RoleManager struct {
	store *repository.TokenStore
	nav   Navigator
}

func NewRoleManager(store *repository.TokenStore, nav Navigator) *RoleManager {
	return &RoleManager{store: store, nav: nav}
}

func (r *RoleManager) CurrentRole() entity.Role {
	return r.store.Role()
}

func (r *RoleManager) RoleDisplayName() string {
	return entity.RoleInfoFor(r.store.Role()).Name
}

func (r *RoleManager) DashboardURL() string {
	stored := r.store.DashboardURL()
	if stored != "" {
		return stored
	}

	return entity.RoleInfoFor(r.store.Role()).DashboardURL
}

func (r *RoleManager) CanAccessPage(page entity.Page) bool {
	info := entity.RoleInfoFor(r.store.Role())

	for _, allowed := range info.AllowedPages {
		if allowed == entity.PageWildcard || allowed == page {
			return true
		}
	}

	return false
}

// ValidatePageAccess is the single client-side page gate. Denied access
// redirects to the role's own dashboard. The backend re-checks authorization
// on every call; this gate is a navigation convenience, not a boundary.
func (r *RoleManager) ValidatePageAccess(ctx context.Context, page entity.Page) bool {
	if r.CanAccessPage(page) {
		return true
	}

	logger.FromContext(ctx).WarnContext(ctx, "page access denied, redirecting to dashboard",
		"page", page, "role", r.store.Role())

	r.nav.NavigateTo(ctx, r.DashboardURL())

	return false
}

// AllowedPages lists the navigation items for the stored role. The wildcard
// expands to every known page so the menu stays concrete.
func (r *RoleManager) AllowedPages() []entity.Page {
	info := entity.RoleInfoFor(r.store.Role())

	if len(info.AllowedPages) == 1 && info.AllowedPages[0] == entity.PageWildcard {
		return entity.AllPages()
	}

	return append([]entity.Page(nil), info.AllowedPages...)
}
