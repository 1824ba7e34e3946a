// Package principal describes the authenticated caller as read from a
// verified access token.
package principal

import (
	"slices"
	"time"
)

const AdminGroup = "admin"

// Claims are the fields of a verified access token the service relies on.
type Claims struct {
	Subject   string   `json:"sub"`
	Username  string   `json:"username"`
	Email     string   `json:"email,omitempty"`
	ClientID  string   `json:"client_id"`
	TokenUse  string   `json:"token_use"`
	Groups    []string `json:"cognito:groups,omitempty"`
	Role      string   `json:"custom:role,omitempty"`
	Issuer    string   `json:"iss"`
	Scope     string   `json:"scope,omitempty"`
	ExpiresAt int64    `json:"exp"`
}

func (c *Claims) InGroup(group string) bool {
	return c != nil && slices.Contains(c.Groups, group)
}

// IsAdmin reports admin rights from group membership only.
func (c *Claims) IsAdmin() bool { return c.InGroup(AdminGroup) }

// HasAdminRole also accepts the custom:role attribute; used by the admin route gate.
func (c *Claims) HasAdminRole() bool {
	return c != nil && (c.Role == AdminGroup || c.IsAdmin())
}

// Expiry returns the token expiry, zero when the claim is absent.
func (c *Claims) Expiry() time.Time {
	if c == nil || c.ExpiresAt == 0 {
		return time.Time{}
	}
	return time.Unix(c.ExpiresAt, 0)
}
