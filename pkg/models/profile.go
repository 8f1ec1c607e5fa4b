package models

import "time"

// Role is a per-user capability class within a tenant.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleAnalyst  Role = "analyst"
	RoleReviewer Role = "reviewer"
	RoleOwner    Role = "owner"
	RoleViewer   Role = "viewer"
)

// ParseRole normalizes a stored role string into the closed Role set.
// Legacy rows use "tenant" for analysts and "member" for viewers; the
// alias mapping happens here, once, so capability checks never see it.
func ParseRole(s string) (Role, bool) {
	switch s {
	case "admin":
		return RoleAdmin, true
	case "analyst", "tenant":
		return RoleAnalyst, true
	case "reviewer":
		return RoleReviewer, true
	case "owner":
		return RoleOwner, true
	case "viewer", "member":
		return RoleViewer, true
	}

	return "", false
}

// Profile links an authenticated user to a tenant and a role.
// TenantID is empty while the user is awaiting assignment.
type Profile struct {
	ID        string    `json:"id"        validate:"required"`
	FullName  string    `json:"full_name"`
	Username  string    `json:"username"`
	TenantID  string    `json:"tenant_id"`
	Role      Role      `json:"role"      validate:"required"`
	CreatedAt time.Time `json:"created_at"`
}

// Tenant is an organization, the unit of data isolation.
type Tenant struct {
	ID        string    `json:"id"   validate:"required"`
	Name      string    `json:"name" validate:"required,min=1"`
	Slug      string    `json:"slug" validate:"required,min=1"`
	CreatedAt time.Time `json:"created_at"`
}
