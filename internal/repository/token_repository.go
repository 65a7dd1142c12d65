package repository

import (
	"encoding/json"

	"github.com/etdpk/etdclient/internal/entity"
)

// Persistent session keys.
const (
	KeyToken        = "token"
	KeyUser         = "etd_user"
	KeyRole         = "etd_user_role"
	KeyPermissions  = "etd_user_permissions"
	KeyDashboardURL = "etd_dashboard_url"
)

// Volatile working keys.
const (
	KeyAPIConfig          = "api_config"
	KeyAPIResponseData    = "api_response_data"
	KeyCurrentApplication = "current_etd_application"
)

// SessionKeys lists everything LoadSession reads and ClearSession removes.
var SessionKeys = []string{KeyToken, KeyUser, KeyRole, KeyPermissions, KeyDashboardURL}

// TokenStore is the single gatekeeper for session and working state. No
// other component touches raw storage keys.
type TokenStore struct {
	persistent Store
	volatile   Store
}

func NewTokenStore(persistent, volatile Store) *TokenStore {
	return &TokenStore{
		persistent: persistent,
		volatile:   volatile,
	}
}

func (t *TokenStore) Token() string {
	return t.persistent.Get(KeyToken)
}

func (t *TokenStore) User() string {
	return t.persistent.Get(KeyUser)
}

func (t *TokenStore) Role() entity.Role {
	return entity.Role(t.persistent.Get(KeyRole))
}

// Permissions parses the stored JSON array, treating an unparsable blob as
// absent and falling back to the role defaults.
func (t *TokenStore) Permissions() []string {
	raw := t.persistent.Get(KeyPermissions)
	if raw != "" {
		var perms []string
		if err := json.Unmarshal([]byte(raw), &perms); err == nil {
			return perms
		}
	}

	return entity.RoleInfoFor(t.Role()).Permissions
}

func (t *TokenStore) DashboardURL() string {
	return t.persistent.Get(KeyDashboardURL)
}

func (t *TokenStore) SaveSession(state entity.SessionState) {
	perms, err := json.Marshal(state.Permissions)
	if err != nil {
		perms = []byte("[]")
	}

	t.persistent.Set(KeyToken, state.Token)
	t.persistent.Set(KeyUser, state.User)
	t.persistent.Set(KeyRole, string(state.Role))
	t.persistent.Set(KeyPermissions, string(perms))
	t.persistent.Set(KeyDashboardURL, state.DashboardURL)
}

// LoadSession reconstructs the stored session. A session is only considered
// authenticated when both the token and the user survive.
func (t *TokenStore) LoadSession() entity.SessionState {
	token := t.Token()
	user := t.User()

	if token == "" || user == "" {
		return entity.SessionState{}
	}

	role := t.Role()
	if !role.Valid() {
		role = entity.RoleFM
	}

	dashboard := t.DashboardURL()
	if dashboard == "" {
		dashboard = entity.RoleInfoFor(role).DashboardURL
	}

	return entity.SessionState{
		IsAuthenticated: true,
		User:            user,
		Token:           token,
		Role:            role,
		Permissions:     t.Permissions(),
		DashboardURL:    dashboard,
	}
}

func (t *TokenStore) ClearSession() {
	t.persistent.Clear(SessionKeys...)
	t.volatile.Clear(KeyAPIConfig, KeyAPIResponseData, KeyCurrentApplication)
}

// Draft caching is a convenience, never the source of truth.

func (t *TokenStore) SaveDraft(app entity.Application) {
	data, err := json.Marshal(app)
	if err != nil {
		return
	}

	t.volatile.Set(KeyCurrentApplication, string(data))
}

func (t *TokenStore) LoadDraft() (entity.Application, bool) {
	raw := t.volatile.Get(KeyCurrentApplication)
	if raw == "" {
		return entity.Application{}, false
	}

	var app entity.Application
	if err := json.Unmarshal([]byte(raw), &app); err != nil {
		return entity.Application{}, false
	}

	return app, true
}

func (t *TokenStore) ClearDraft() {
	t.volatile.Clear(KeyCurrentApplication)
}

func (t *TokenStore) SaveResponseData(key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}

	t.volatile.Set(key, string(data))
}

func (t *TokenStore) LoadResponseData(key string, out any) bool {
	raw := t.volatile.Get(key)
	if raw == "" {
		return false
	}

	return json.Unmarshal([]byte(raw), out) == nil
}
