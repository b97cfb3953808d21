package auth

// Package auth contains domain-level types for client-side authentication
// state. It is pure and free of transport/adapter concerns.

import "time"

// Role represents an application authorization role.
// Keep string form for easy persistence and display.
// Valid values are defined as constants below.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
	RoleGuest Role = "guest"
)

// Identity represents the authenticated principal returned by GET /users/me.
type Identity struct {
	UserID    string   `json:"user_id"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Email     string   `json:"email"`
	Groups    []string `json:"groups"`
}

// Session is the in-process representation of the current authenticated
// identity. It is owned by the session store and mutated only by
// login/logout and by the transport on irrecoverable auth failure.
type Session struct {
	User          Identity
	Role          Role
	Permissions   []string
	Authenticated bool
}

// IsGuest returns true if the session role is guest.
func (s Session) IsGuest() bool { return s.Role == RoleGuest }

// Can reports whether the session carries the named permission.
func (s Session) Can(permission string) bool {
	for _, p := range s.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// DefaultPermissions expands a role into the permission strings the UI
// and CLI gate on.
func DefaultPermissions(role Role) []string {
	switch role {
	case RoleAdmin:
		return []string{
			"sites:read", "sites:write",
			"sources:read", "sources:write",
			"jobs:read", "jobs:write",
			"alerts:read", "alerts:write",
		}
	case RoleUser:
		return []string{
			"sites:read",
			"sources:read",
			"jobs:read",
			"alerts:read",
		}
	default:
		return nil
	}
}

// Credentials is the persisted access/refresh token pair for the token
// variant. The cookie variant persists nothing client-side.
type Credentials struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitzero"`
}

// HasAccess reports whether an access token is present.
func (c Credentials) HasAccess() bool { return c.AccessToken != "" }

// HasRefresh reports whether a refresh token is present.
func (c Credentials) HasRefresh() bool { return c.RefreshToken != "" }
