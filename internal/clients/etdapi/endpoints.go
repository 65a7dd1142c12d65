package etdapi

import "context"

const (
	pathLogin   = "/auth/login"
	pathLogout  = "/auth/logout"
	pathRefresh = "/auth/refresh"
)

// The session endpoints are the only calls made outside AuthFetch: login
// runs before a token exists and logout/refresh manage the token itself.

func (c *Client) Login(ctx context.Context, req any) Result {
	return c.Post(ctx, pathLogin, req)
}

func (c *Client) Logout(ctx context.Context) Result {
	return c.Post(ctx, pathLogout, nil)
}

func (c *Client) Refresh(ctx context.Context) Result {
	return c.Post(ctx, pathRefresh, nil)
}
