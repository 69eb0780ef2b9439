package models

import "github.com/golang-jwt/jwt/v5"

// Application permissions
const (
	PermissionRatesRead  = "rates:read"
	PermissionRatesWrite = "rates:write"
)

// Roles
const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
	RoleSystem   = "system"
)

// RateClaims identifies the caller by their on-ledger address.
type RateClaims struct {
	jwt.RegisteredClaims
	Address     string   `json:"address"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// HasPermission checks if the claims include a specific permission
func (c *RateClaims) HasPermission(permission string) bool {
	for _, p := range c.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// GetDefaultPermissions returns default permissions based on role
func GetDefaultPermissions(role string) []string {
	switch role {
	case RoleAdmin, RoleOperator, RoleSystem:
		return []string{PermissionRatesRead, PermissionRatesWrite}
	default:
		return []string{PermissionRatesRead}
	}
}
