// Package persistence provides the data storage abstraction consumed by
// the workflow store, the comment controller and the tenant resolver.
package persistence

import (
	"context"

	"github.com/procanvas/procanvas/pkg/models"
)

// ListWorkflowsOptions filters, sorts and paginates workflow listings.
type ListWorkflowsOptions struct {
	// Filtering
	TenantID      string
	CreatedBy     string
	Status        *models.WorkflowStatus
	PublishedOnly bool // Forced on for viewer queries

	// Sorting
	SortBy    string // created_at, updated_at, name
	SortOrder string // asc, desc

	// Pagination
	Limit  int
	Offset int
}

// WorkflowListResult is a page of workflows plus pagination metadata.
type WorkflowListResult struct {
	Workflows   []*models.Workflow `json:"workflows"`
	TotalCount  int64              `json:"total_count"`
	HasNextPage bool               `json:"has_next_page"`
}

// WorkflowRepository persists workflow rows. Create assigns the identity:
// callers pass a workflow with an empty ID and adopt the returned one.
type WorkflowRepository interface {
	ListWorkflows(ctx context.Context, opts ListWorkflowsOptions) (*WorkflowListResult, error)
	GetByID(ctx context.Context, id string) (*models.Workflow, error)
	Create(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error)
	Update(ctx context.Context, workflow *models.Workflow) error
	Delete(ctx context.Context, id string) error
	Metrics(ctx context.Context, tenantID string) (*models.WorkflowMetrics, error)
}

// CommentRepository persists append-only per-node comment threads.
type CommentRepository interface {
	// ListByNode returns the thread for (workflowID, nodeID) ordered by
	// creation time ascending.
	ListByNode(ctx context.Context, workflowID, nodeID string) ([]*models.Comment, error)
	Create(ctx context.Context, comment *models.Comment) (*models.Comment, error)
}

// ProfileRepository persists user profiles and their tenant linkage.
type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	Save(ctx context.Context, profile *models.Profile) error
}

// TenantRepository persists organizations.
type TenantRepository interface {
	GetByID(ctx context.Context, id string) (*models.Tenant, error)
	Create(ctx context.Context, tenant *models.Tenant) (*models.Tenant, error)
}

// Persistence aggregates the repositories behind one backend.
type Persistence interface {
	WorkflowRepository() WorkflowRepository
	CommentRepository() CommentRepository
	ProfileRepository() ProfileRepository
	TenantRepository() TenantRepository
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
