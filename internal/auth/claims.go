package auth

import "github.com/golang-jwt/jwt/v5"

type TokenType string

// Only access tokens are issued; operators mint them with linectl.
const TokenTypeAccess TokenType = "access"

// Claims are the only supported JWT claims shape for the admin API.
// Multi-tenant invariant: WorkspaceID is always present; settings are scoped by it.
type Claims struct {
	jwt.RegisteredClaims

	UserID      string    `json:"user_id"`
	WorkspaceID string    `json:"workspace_id"`
	Role        string    `json:"role"`
	TokenType   TokenType `json:"token_type"`
}

func (c Claims) Identity() Identity {
	return Identity{UserID: c.UserID, WorkspaceID: c.WorkspaceID, Role: c.Role}
}
