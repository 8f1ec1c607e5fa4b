package models

import "time"

// WorkflowStatus represents the review-lifecycle stage of a workflow.
type WorkflowStatus string

const (
	WorkflowStatusDraft         WorkflowStatus = "draft"          // Editable by analysts
	WorkflowStatusPendingReview WorkflowStatus = "pending_review" // Submitted, awaiting a reviewer
	WorkflowStatusApproved      WorkflowStatus = "approved"       // Reviewed, awaiting owner publication
	WorkflowStatusPublished     WorkflowStatus = "published"      // Visible to viewers
)

// ValidStatus reports whether s is one of the known lifecycle stages.
func ValidStatus(s WorkflowStatus) bool {
	switch s {
	case WorkflowStatusDraft, WorkflowStatusPendingReview, WorkflowStatusApproved, WorkflowStatusPublished:
		return true
	}

	return false
}

// Workflow represents a business-process diagram owned by a tenant.
// An empty ID means the workflow has not been persisted yet; the
// persistence layer assigns the identity on first save.
type Workflow struct {
	ID          string         `json:"id"`
	TenantID    string         `json:"tenant_id"    validate:"required"`
	Name        string         `json:"name"         validate:"required,min=1"`
	Nodes       []*Node        `json:"nodes"`
	Edges       []*Edge        `json:"edges"`
	Status      WorkflowStatus `json:"status"       validate:"required,oneof=draft pending_review approved published"`
	IsPublished bool           `json:"is_published"`
	CreatedBy   string         `json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// WorkflowMetrics aggregates per-status counts for an owner dashboard.
type WorkflowMetrics struct {
	Total          int64 `json:"total"`
	Draft          int64 `json:"draft"`
	PendingReview  int64 `json:"pending_review"`
	Approved       int64 `json:"approved"`
	Published      int64 `json:"published"`
	PublishedTotal int64 `json:"published_total"` // Workflows with is_published set, regardless of status
}
