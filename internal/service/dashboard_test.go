package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/etdpk/etdclient/internal/entity"
)

func TestDashboardService_Summary_DispatchesByRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		role     entity.Role
		endpoint string
	}{
		{role: entity.RoleFM, endpoint: "/dashboard/mission-operator/summary"},
		{role: entity.RoleHQ, endpoint: "/dashboard/ministry/applications"},
		{role: entity.RoleAgency, endpoint: "/dashboard/agency/applications"},
		{role: entity.RoleAdmin, endpoint: "/dashboard/admin/stats"},
		{role: entity.RoleSuperAdmin, endpoint: "/dashboard/admin/stats"},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			t.Parallel()

			store := newMemoryTokenStore()
			seedRole(store, tt.role)

			api := newFakeAPI()
			api.respond(tt.endpoint, jsonResult(http.StatusOK,
				`{"stats":{"total":7,"approved":2},"applications":[{"id":"a1"}]}`))

			auth := NewAuthManager(newTestConfig(), api, store, &fakeNav{})
			svc := NewDashboardService(auth, store)

			view, err := svc.Summary(context.Background())
			require.NoError(t, err)
			require.Equal(t, tt.role, view.Role)
			require.Equal(t, entity.RoleInfoFor(tt.role).Name, view.RoleName)
			require.Equal(t, 7, view.Stats.Total)
			require.Equal(t, 2, view.Stats.Approved)
			require.Len(t, view.Applications, 1)
			require.Equal(t, 1, api.callCount(http.MethodGet+" "+tt.endpoint))
		})
	}
}

func TestDashboardService_Users(t *testing.T) {
	t.Parallel()

	store := newMemoryTokenStore()
	seedRole(store, entity.RoleAdmin)

	api := newFakeAPI()
	api.respond("/users", jsonResult(http.StatusOK,
		`{"users":[{"username":"op1","role":"fm"},{"username":"op2","role":"agency"}]}`))

	auth := NewAuthManager(newTestConfig(), api, store, &fakeNav{})
	svc := NewDashboardService(auth, store)

	users, err := svc.Users(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	require.Equal(t, "op1", users[0].Username)
}

func TestDashboardService_Users_EmptyBody(t *testing.T) {
	t.Parallel()

	store := newMemoryTokenStore()
	seedRole(store, entity.RoleAdmin)

	api := newFakeAPI()
	api.respond("/users", jsonResult(http.StatusOK, `{}`))

	auth := NewAuthManager(newTestConfig(), api, store, &fakeNav{})
	svc := NewDashboardService(auth, store)

	users, err := svc.Users(context.Background())
	require.NoError(t, err)
	require.NotNil(t, users)
	require.Empty(t, users)
}
