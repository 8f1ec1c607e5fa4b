// Package web provides the HTTP surface of the API. Handlers stay thin:
// all semantics live in the core and service packages.
package web

import "github.com/procanvas/procanvas/pkg/models"

// CreateWorkflowRequest represents the request body for creating a new
// workflow. The tenant comes from the caller's identity, never the body.
type CreateWorkflowRequest struct {
	Name  string         `json:"name"  validate:"required,min=1"`
	Nodes []*models.Node `json:"nodes"`
	Edges []*models.Edge `json:"edges"`
}

// UpdateWorkflowRequest represents the request body for updating an
// existing workflow. All fields are optional to support partial updates;
// lifecycle status is changed only through the transition endpoints.
type UpdateWorkflowRequest struct {
	Name  *string        `json:"name,omitempty"  validate:"omitempty,min=1"`
	Nodes []*models.Node `json:"nodes,omitempty"`
	Edges []*models.Edge `json:"edges,omitempty"`
}

// PostCommentRequest represents the request body for posting to a
// per-node comment thread.
type PostCommentRequest struct {
	Content string `json:"content" validate:"required"`
}

// ProvisionTenantRequest represents the request body for creating an
// organization and linking the caller's profile to it.
type ProvisionTenantRequest struct {
	Name     string `json:"name"      validate:"required,min=1"`
	FullName string `json:"full_name"`
}

// IdentityResponse describes the authenticated caller.
type IdentityResponse struct {
	UserID   string      `json:"user_id"`
	FullName string      `json:"full_name"`
	TenantID string      `json:"tenant_id,omitempty"`
	Role     models.Role `json:"role"`
}
