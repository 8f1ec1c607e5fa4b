package services

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/procanvas/procanvas/pkg/eventbus"
	"github.com/procanvas/procanvas/pkg/events"
	"github.com/procanvas/procanvas/pkg/models"
	"github.com/procanvas/procanvas/pkg/persistence"
)

// ErrWorkflowNotFound is returned when a workflow is not found.
var ErrWorkflowNotFound = persistence.ErrWorkflowNotFound

type Workflow struct {
	persistence persistence.Persistence
	publisher   eventbus.EventPublisher
	validate    *validator.Validate
}

// NewWorkflow creates a new workflow service.
func NewWorkflow(p persistence.Persistence, publisher eventbus.EventPublisher) *Workflow {
	return &Workflow{
		persistence: p,
		publisher:   publisher,
		validate:    validator.New(),
	}
}

// HealthCheck checks the health of the persistence layer.
func (w *Workflow) HealthCheck(ctx context.Context) (string, bool) {
	if w.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := w.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// ListWorkflowsRequest contains options for listing workflows. The
// actor's role shapes the result: Viewer queries are always forced to
// published workflows only.
type ListWorkflowsRequest struct {
	TenantID  string
	ActorRole models.Role

	// Pagination
	Limit  int `validate:"min=0,max=100"`
	Offset int `validate:"min=0"`

	// Filtering
	CreatedBy     string
	Status        *models.WorkflowStatus
	PublishedOnly bool

	// Sorting
	SortBy    string
	SortOrder string
}

// ListWorkflowsResponse contains the result of listing workflows.
type ListWorkflowsResponse struct {
	Workflows   []*models.Workflow `json:"workflows"`
	TotalCount  int64              `json:"total_count"`
	HasNextPage bool               `json:"has_next_page"`
}

// ListWorkflows retrieves workflows with filtering, sorting and
// pagination, scoped to the requesting tenant.
func (w *Workflow) ListWorkflows(ctx context.Context, req ListWorkflowsRequest) (*ListWorkflowsResponse, error) {
	if err := w.validateListWorkflowsRequest(&req); err != nil {
		return nil, err
	}

	opts := persistence.ListWorkflowsOptions{
		TenantID:      req.TenantID,
		CreatedBy:     req.CreatedBy,
		Status:        req.Status,
		PublishedOnly: req.PublishedOnly,
		Limit:         req.Limit,
		Offset:        req.Offset,
		SortBy:        req.SortBy,
		SortOrder:     req.SortOrder,
	}

	// Viewers only ever observe published workflows.
	if req.ActorRole == models.RoleViewer {
		opts.PublishedOnly = true
	}

	result, err := w.persistence.WorkflowRepository().ListWorkflows(ctx, opts)
	if err != nil {
		if persistence.IsInvalidSortField(err) {
			return nil, ErrInvalidSortField
		}

		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	return &ListWorkflowsResponse{
		Workflows:   result.Workflows,
		TotalCount:  result.TotalCount,
		HasNextPage: result.HasNextPage,
	}, nil
}

func (w *Workflow) validateListWorkflowsRequest(req *ListWorkflowsRequest) error {
	if req.Limit <= 0 {
		req.Limit = 20
	}

	if req.Limit > 100 {
		req.Limit = 100
	}

	if req.Offset < 0 {
		req.Offset = 0
	}

	if req.SortBy == "" {
		req.SortBy = "created_at"
	}

	if req.SortOrder == "" {
		req.SortOrder = "desc"
	}

	allowedSorts := []string{"created_at", "updated_at", "name"}
	if !slices.Contains(allowedSorts, req.SortBy) {
		return NewValidationError(
			"validateListWorkflowsRequest",
			"INVALID_SORT_FIELD",
			fmt.Sprintf("invalid sort field '%s', allowed: %s", req.SortBy, strings.Join(allowedSorts, ", ")),
			ErrInvalidSortField,
		)
	}

	if req.SortOrder != "asc" && req.SortOrder != "desc" {
		return NewValidationError(
			"validateListWorkflowsRequest",
			"INVALID_SORT_ORDER",
			fmt.Sprintf("invalid sort order '%s', allowed: asc, desc", req.SortOrder),
			ErrInvalidSortOrder,
		)
	}

	if req.Status != nil && !models.ValidStatus(*req.Status) {
		return NewValidationError(
			"validateListWorkflowsRequest",
			"INVALID_STATUS",
			fmt.Sprintf("invalid status '%s'", *req.Status),
			ErrInvalidStatus,
		)
	}

	return nil
}

// FetchByID retrieves a workflow by its ID.
func (w *Workflow) FetchByID(ctx context.Context, id string) (*models.Workflow, error) {
	workflow, err := w.persistence.WorkflowRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if workflow == nil {
		return nil, ErrWorkflowNotFound
	}

	return workflow, nil
}

// FetchForActor retrieves a workflow on behalf of an actor. Workflows
// outside the actor's tenant are reported as not found rather than
// forbidden, so their IDs leak nothing across tenants. Viewers never
// see unpublished workflows either way.
func (w *Workflow) FetchForActor(ctx context.Context, id string, actor *models.Profile) (*models.Workflow, error) {
	workflow, err := w.FetchByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if actor == nil || workflow.TenantID != actor.TenantID {
		return nil, ErrWorkflowNotFound
	}

	if actor.Role == models.RoleViewer && !workflow.IsPublished {
		return nil, ErrWorkflowNotFound
	}

	return workflow, nil
}

// LatestForUser returns the most recently updated workflow created by
// the user within the tenant, or nil when they have none yet.
func (w *Workflow) LatestForUser(ctx context.Context, tenantID, userID string) (*models.Workflow, error) {
	result, err := w.persistence.WorkflowRepository().ListWorkflows(ctx, persistence.ListWorkflowsOptions{
		TenantID:  tenantID,
		CreatedBy: userID,
		SortBy:    "updated_at",
		SortOrder: "desc",
		Limit:     1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to look up latest workflow: %w", err)
	}

	if len(result.Workflows) == 0 {
		return nil, nil
	}

	return result.Workflows[0], nil
}

// Create adds a new workflow. Identity and timestamps are assigned by
// the persistence layer.
func (w *Workflow) Create(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error) {
	if workflow == nil {
		return nil, ErrWorkflowNil
	}

	if workflow.Status == "" {
		workflow.Status = models.WorkflowStatusDraft
	}

	if strings.TrimSpace(workflow.Name) == "" {
		return nil, ErrWorkflowNameRequired
	}

	if err := w.validate.Struct(workflow); err != nil {
		if workflow.TenantID == "" {
			return nil, ErrTenantRequired
		}

		return nil, NewValidationError("Create", "INVALID_WORKFLOW", err.Error(), ErrInvalidRequest)
	}

	created, err := w.persistence.WorkflowRepository().Create(ctx, workflow)
	if err != nil {
		return nil, fmt.Errorf("failed to create workflow: %w", err)
	}

	return created, nil
}

// Update modifies an existing workflow by its ID. Lifecycle status is
// owned by the transition service; Update preserves it.
func (w *Workflow) Update(ctx context.Context, workflowID string, workflow *models.Workflow) (*models.Workflow, error) {
	if workflow == nil {
		return nil, ErrWorkflowNil
	}

	existing, err := w.persistence.WorkflowRepository().GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		return nil, ErrWorkflowNotFound
	}

	workflow.ID = workflowID
	workflow.TenantID = existing.TenantID
	workflow.Status = existing.Status
	workflow.IsPublished = existing.IsPublished
	workflow.CreatedBy = existing.CreatedBy
	workflow.CreatedAt = existing.CreatedAt

	if strings.TrimSpace(workflow.Name) == "" {
		return nil, ErrWorkflowNameRequired
	}

	if err := w.validate.Struct(workflow); err != nil {
		return nil, NewValidationError("Update", "INVALID_WORKFLOW", err.Error(), ErrInvalidRequest)
	}

	if err := w.persistence.WorkflowRepository().Update(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to update workflow: %w", err)
	}

	return workflow, nil
}

// Delete removes a workflow. This is an administrative action; only
// Admins may call it, and only within their own tenant. Open canvases
// learn about it through the workflow.deleted event.
func (w *Workflow) Delete(ctx context.Context, workflowID string, actor *models.Profile) error {
	if actor == nil || actor.Role != models.RoleAdmin {
		return ErrNotPermitted
	}

	existing, err := w.persistence.WorkflowRepository().GetByID(ctx, workflowID)
	if err != nil {
		return err
	}

	if existing == nil || existing.TenantID != actor.TenantID {
		return ErrWorkflowNotFound
	}

	if err := w.persistence.WorkflowRepository().Delete(ctx, workflowID); err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}

	if w.publisher != nil {
		if err := w.publisher.Publish(ctx, workflowID, events.NewWorkflowDeleted(existing, actor.ID)); err != nil {
			return fmt.Errorf("workflow deleted but event publish failed: %w", err)
		}
	}

	return nil
}

// Metrics aggregates per-status counts for the tenant's dashboard.
func (w *Workflow) Metrics(ctx context.Context, tenantID string) (*models.WorkflowMetrics, error) {
	metrics, err := w.persistence.WorkflowRepository().Metrics(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate metrics: %w", err)
	}

	return metrics, nil
}
