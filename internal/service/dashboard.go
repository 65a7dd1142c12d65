package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/etdpk/etdclient/internal/entity"
	"github.com/etdpk/etdclient/internal/repository"
)

// dashboardEndpoints maps each role onto its backend summary endpoint. The
// admin roles share the system-wide stats view.
var dashboardEndpoints = map[entity.Role]string{
	entity.RoleFM:         "/dashboard/mission-operator/summary",
	entity.RoleHQ:         "/dashboard/ministry/applications",
	entity.RoleAgency:     "/dashboard/agency/applications",
	entity.RoleAdmin:      "/dashboard/admin/stats",
	entity.RoleSuperAdmin: "/dashboard/admin/stats",
}

// DashboardStats is the shared shape of every summary endpoint. Endpoints
// omit the counters they do not track.
type DashboardStats struct {
	Total       int `json:"total"`
	Draft       int `json:"draft"`
	Submitted   int `json:"submitted"`
	UnderReview int `json:"under_review"`
	Approved    int `json:"approved"`
	Rejected    int `json:"rejected"`
	Completed   int `json:"completed"`

	Users   int `json:"users,omitempty"`
	Uploads int `json:"uploads,omitempty"`
}

type DashboardView struct {
	Role         entity.Role          `json:"role"`
	RoleName     string               `json:"role_name"`
	Stats        DashboardStats       `json:"stats"`
	Applications []entity.Application `json:"applications"`
}

type DashboardService struct {
	fetch Fetcher
	store *repository.TokenStore
}

func NewDashboardService(fetch Fetcher, store *repository.TokenStore) *DashboardService {
	return &DashboardService{fetch: fetch, store: store}
}

// Summary loads the dashboard for the stored role.
func (s *DashboardService) Summary(ctx context.Context) (DashboardView, error) {
	role := s.store.Role()

	endpoint, ok := dashboardEndpoints[role]
	if !ok {
		return DashboardView{}, fmt.Errorf("no dashboard endpoint for role %q", role)
	}

	res := s.fetch.AuthFetch(ctx, http.MethodGet, endpoint, nil)
	if err := res.Err(); err != nil {
		return DashboardView{}, err
	}

	var payload struct {
		Stats        DashboardStats       `json:"stats"`
		Applications []entity.Application `json:"applications"`
	}
	if err := res.Decode(&payload); err != nil {
		return DashboardView{}, fmt.Errorf("decode dashboard: %w", err)
	}

	return DashboardView{
		Role:         role,
		RoleName:     entity.RoleInfoFor(role).Name,
		Stats:        payload.Stats,
		Applications: payload.Applications,
	}, nil
}

// Users lists system accounts for the admin dashboard extension.
func (s *DashboardService) Users(ctx context.Context) ([]entity.LoginUser, error) {
	res := s.fetch.AuthFetch(ctx, http.MethodGet, "/users", nil)
	if err := res.Err(); err != nil {
		return nil, err
	}

	var payload struct {
		Users []entity.LoginUser `json:"users"`
	}
	if err := res.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	if payload.Users == nil {
		payload.Users = []entity.LoginUser{}
	}

	return payload.Users, nil
}
