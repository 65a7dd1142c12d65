package entity

// SessionState is owned and mutated exclusively by the authentication
// manager; every other component reads it through accessors.
// IsAuthenticated is true iff Token is non-empty.
type SessionState struct {
	IsAuthenticated bool
	User            string
	Token           string
	Role            Role
	Permissions     []string
	DashboardURL    string
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

// LoginRequest is the wire payload of POST /auth/login. LocationID carries
// the role for legacy backend deployments that key stations by location.
type LoginRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	LocationID string `json:"locationId"`
	Role       string `json:"role"`
}

type LoginUser struct {
	Username     string   `json:"username"`
	Role         string   `json:"role"`
	Permissions  []string `json:"permissions"`
	DashboardURL string   `json:"dashboardUrl"`
}

type LoginResponse struct {
	Token string    `json:"token"`
	User  LoginUser `json:"user"`
}

type RefreshResponse struct {
	Token string `json:"token"`
}
