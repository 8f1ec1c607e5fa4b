package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/procanvas/procanvas/pkg/models"
	"github.com/procanvas/procanvas/pkg/persistence"
)

// WorkflowRepository handles workflow-related file operations.
type WorkflowRepository struct {
	root string // File system root for storing workflows
}

// NewWorkflowRepository creates a new workflow repository.
func NewWorkflowRepository(root string) *WorkflowRepository {
	return &WorkflowRepository{root: root}
}

// ListWorkflows returns paginated and filtered workflows with in-memory operations.
func (wr *WorkflowRepository) ListWorkflows(ctx context.Context, opts persistence.ListWorkflowsOptions) (*persistence.WorkflowListResult, error) {
	if opts.Limit <= 0 || opts.Limit > 100 {
		opts.Limit = 20
	}

	if opts.SortBy == "" {
		opts.SortBy = "created_at"
	}

	if opts.SortOrder == "" {
		opts.SortOrder = "desc"
	}

	allowedSorts := map[string]bool{
		"created_at": true,
		"updated_at": true,
		"name":       true,
	}
	if !allowedSorts[opts.SortBy] {
		return nil, fmt.Errorf("%w: %s", persistence.ErrInvalidSortField, opts.SortBy)
	}

	allWorkflows, err := wr.loadAll(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]*models.Workflow, 0, len(allWorkflows))

	for _, workflow := range allWorkflows {
		if opts.TenantID != "" && workflow.TenantID != opts.TenantID {
			continue
		}

		if opts.CreatedBy != "" && workflow.CreatedBy != opts.CreatedBy {
			continue
		}

		if opts.Status != nil && workflow.Status != *opts.Status {
			continue
		}

		if opts.PublishedOnly && !workflow.IsPublished {
			continue
		}

		filtered = append(filtered, workflow)
	}

	wr.sortWorkflows(filtered, opts.SortBy, opts.SortOrder)

	totalCount := int64(len(filtered))
	startIdx := opts.Offset
	endIdx := opts.Offset + opts.Limit

	if startIdx >= len(filtered) {
		return &persistence.WorkflowListResult{
			Workflows:   make([]*models.Workflow, 0),
			TotalCount:  totalCount,
			HasNextPage: false,
		}, nil
	}

	if endIdx > len(filtered) {
		endIdx = len(filtered)
	}

	return &persistence.WorkflowListResult{
		Workflows:   filtered[startIdx:endIdx],
		TotalCount:  totalCount,
		HasNextPage: endIdx < len(filtered),
	}, nil
}

func (wr *WorkflowRepository) loadAll(ctx context.Context) ([]*models.Workflow, error) {
	root := os.DirFS(path.Join(wr.root, "workflows"))

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow files: %w", err)
	}

	workflows := make([]*models.Workflow, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		workflowID := file[:len(file)-5] // Remove .json extension

		workflow, err := wr.GetByID(ctx, workflowID)
		if err != nil {
			return nil, fmt.Errorf("failed to load workflow %s: %w", workflowID, err)
		}

		if workflow != nil {
			workflows = append(workflows, workflow)
		}
	}

	return workflows, nil
}

// sortWorkflows sorts workflows in-place based on the specified field and order.
func (wr *WorkflowRepository) sortWorkflows(workflows []*models.Workflow, sortBy, sortOrder string) {
	sort.SliceStable(workflows, func(i, j int) bool {
		var less bool

		switch sortBy {
		case "updated_at":
			less = workflows[i].UpdatedAt.Before(workflows[j].UpdatedAt)
		case "name":
			less = workflows[i].Name < workflows[j].Name
		default:
			less = workflows[i].CreatedAt.Before(workflows[j].CreatedAt)
		}

		if sortOrder == "desc" {
			return !less
		}

		return less
	})
}

// GetByID retrieves a workflow by its ID from the file system. A missing
// workflow yields (nil, nil).
func (wr *WorkflowRepository) GetByID(_ context.Context, workflowID string) (*models.Workflow, error) {
	filePath := filepath.Clean(path.Join(wr.root, "workflows", workflowID+".json"))

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, persistence.NewWorkflowError("GetByID", workflowID, err)
	}

	var workflow models.Workflow

	err = json.Unmarshal(body, &workflow)
	if err != nil {
		return nil, persistence.NewWorkflowError("GetByID", workflowID, fmt.Errorf("%w: %w", persistence.ErrMalformedRow, err))
	}

	return &workflow, nil
}

// Create assigns an identity and timestamps, then writes the workflow.
func (wr *WorkflowRepository) Create(_ context.Context, workflow *models.Workflow) (*models.Workflow, error) {
	now := time.Now().UTC()

	created := *workflow
	created.ID = uuid.New().String()
	created.CreatedAt = now
	created.UpdatedAt = now

	if err := wr.write(&created); err != nil {
		return nil, persistence.NewWorkflowError("Create", created.ID, err)
	}

	return &created, nil
}

// Update overwrites an existing workflow row by its ID.
func (wr *WorkflowRepository) Update(ctx context.Context, workflow *models.Workflow) error {
	existing, err := wr.GetByID(ctx, workflow.ID)
	if err != nil {
		return err
	}

	if existing == nil {
		return persistence.NewWorkflowError("Update", workflow.ID, persistence.ErrWorkflowNotFound)
	}

	updated := *workflow
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	if err := wr.write(&updated); err != nil {
		return persistence.NewWorkflowError("Update", workflow.ID, err)
	}

	return nil
}

func (wr *WorkflowRepository) write(workflow *models.Workflow) error {
	err := os.MkdirAll(path.Join(wr.root, "workflows"), 0750)
	if err != nil {
		return fmt.Errorf("failed to create workflows directory: %w", err)
	}

	data, err := json.MarshalIndent(workflow, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal workflow %s: %w", workflow.ID, err)
	}

	filePath := path.Join(wr.root, "workflows", workflow.ID+".json")

	return os.WriteFile(filePath, data, 0600)
}

// Delete removes a workflow by its ID.
func (wr *WorkflowRepository) Delete(_ context.Context, id string) error {
	filePath := path.Join(wr.root, "workflows", id+".json")

	err := os.Remove(filePath)

	if err != nil && os.IsNotExist(err) {
		return nil
	}

	if err != nil {
		return persistence.NewWorkflowError("Delete", id, err)
	}

	return nil
}

// Metrics aggregates per-status counts for one tenant.
func (wr *WorkflowRepository) Metrics(ctx context.Context, tenantID string) (*models.WorkflowMetrics, error) {
	workflows, err := wr.loadAll(ctx)
	if err != nil {
		return nil, err
	}

	metrics := &models.WorkflowMetrics{}

	for _, workflow := range workflows {
		if tenantID != "" && workflow.TenantID != tenantID {
			continue
		}

		metrics.Total++

		switch workflow.Status {
		case models.WorkflowStatusDraft:
			metrics.Draft++
		case models.WorkflowStatusPendingReview:
			metrics.PendingReview++
		case models.WorkflowStatusApproved:
			metrics.Approved++
		case models.WorkflowStatusPublished:
			metrics.Published++
		}

		if workflow.IsPublished {
			metrics.PublishedTotal++
		}
	}

	return metrics, nil
}
