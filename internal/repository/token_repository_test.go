package repository_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/etdpk/etdclient/internal/entity"
	"github.com/etdpk/etdclient/internal/repository"
)

func newTestStore() *repository.TokenStore {
	return repository.NewTokenStore(repository.NewMemoryStore(), repository.NewMemoryStore())
}

func TestTokenStore_SessionRoundTrip(t *testing.T) {
	t.Parallel()

	store := newTestStore()

	state := entity.SessionState{
		IsAuthenticated: true,
		User:            "fm_user",
		Token:           "t1",
		Role:            entity.RoleFM,
		Permissions:     []string{"view_dashboard", "create_form"},
		DashboardURL:    "/pages/dashboards/FMdashboard.html",
	}

	store.SaveSession(state)

	loaded := store.LoadSession()
	require.Equal(t, state, loaded)
}

func TestTokenStore_LoadSession_MissingToken(t *testing.T) {
	t.Parallel()

	store := newTestStore()

	loaded := store.LoadSession()
	require.False(t, loaded.IsAuthenticated)
	require.Empty(t, loaded.Token)
}

func TestTokenStore_Permissions_UnparsableFallsBackToRole(t *testing.T) {
	t.Parallel()

	persistent := repository.NewMemoryStore()
	store := repository.NewTokenStore(persistent, repository.NewMemoryStore())

	persistent.Set(repository.KeyRole, string(entity.RoleAgency))
	persistent.Set(repository.KeyPermissions, "{not json")

	require.Equal(t, entity.RoleInfoFor(entity.RoleAgency).Permissions, store.Permissions())
}

func TestTokenStore_ClearSession_RemovesAllKeys(t *testing.T) {
	t.Parallel()

	persistent := repository.NewMemoryStore()
	store := repository.NewTokenStore(persistent, repository.NewMemoryStore())

	store.SaveSession(entity.SessionState{
		User:         "u",
		Token:        "t",
		Role:         entity.RoleHQ,
		Permissions:  []string{"view_dashboard"},
		DashboardURL: "/pages/dashboards/HQdashboard.html",
	})

	store.ClearSession()

	for _, key := range repository.SessionKeys {
		require.Empty(t, persistent.Get(key), "key %s should be cleared", key)
	}
}

func TestTokenStore_DraftRoundTrip(t *testing.T) {
	t.Parallel()

	store := newTestStore()

	_, ok := store.LoadDraft()
	require.False(t, ok)

	app := entity.Application{
		FirstName: "Ali",
		LastName:  "Khan",
		CitizenID: "12345-1234567-1",
		Status:    entity.StatusDraft,
	}

	store.SaveDraft(app)

	loaded, ok := store.LoadDraft()
	require.True(t, ok)
	require.Equal(t, app, loaded)

	store.ClearDraft()

	_, ok = store.LoadDraft()
	require.False(t, ok)
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.json")

	first := repository.NewFileStore(path)
	first.Set(repository.KeyToken, "t1")
	first.Set(repository.KeyUser, "fm_user")

	second := repository.NewFileStore(path)
	require.Equal(t, "t1", second.Get(repository.KeyToken))
	require.Equal(t, "fm_user", second.Get(repository.KeyUser))
}

func TestFileStore_CorruptFileReadsEmpty(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))

	store := repository.NewFileStore(path)
	require.Empty(t, store.Get(repository.KeyToken))

	// the store stays usable after the bad read
	store.Set(repository.KeyToken, "t2")
	require.Equal(t, "t2", store.Get(repository.KeyToken))
}
