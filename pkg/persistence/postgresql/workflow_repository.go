package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/procanvas/procanvas/pkg/models"
	"github.com/procanvas/procanvas/pkg/persistence"
)

// WorkflowRepository handles workflow-related database operations.
type WorkflowRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewWorkflowRepository creates a new workflow repository.
func NewWorkflowRepository(db *sql.DB, logger *slog.Logger) *WorkflowRepository {
	return &WorkflowRepository{db: db, logger: logger}
}

const workflowColumns = `
	id
  , tenant_id
  , name
  , nodes
  , edges
  , status
  , is_published
  , created_by
  , created_at
  , updated_at
`

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *WorkflowRepository) scanWorkflow(row rowScanner) (*models.Workflow, error) {
	var (
		workflow  models.Workflow
		rawNodes  []byte
		rawEdges  []byte
		createdBy sql.NullString
	)

	err := row.Scan(
		&workflow.ID,
		&workflow.TenantID,
		&workflow.Name,
		&rawNodes,
		&rawEdges,
		&workflow.Status,
		&workflow.IsPublished,
		&createdBy,
		&workflow.CreatedAt,
		&workflow.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	workflow.CreatedBy = createdBy.String

	workflow.Nodes, err = decodeNodes(rawNodes)
	if err != nil {
		return nil, err
	}

	workflow.Edges, err = decodeEdges(rawEdges)
	if err != nil {
		return nil, err
	}

	return &workflow, nil
}

// ListWorkflows returns paginated and filtered workflows.
func (r *WorkflowRepository) ListWorkflows(ctx context.Context, opts persistence.ListWorkflowsOptions) (*persistence.WorkflowListResult, error) {
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

	order := "ASC"
	if strings.EqualFold(opts.SortOrder, "desc") {
		order = "DESC"
	}

	where := make([]string, 0, 4)
	args := make([]any, 0, 6)

	addFilter := func(clause string, value any) {
		args = append(args, value)
		where = append(where, clause+"$"+strconv.Itoa(len(args)))
	}

	if opts.TenantID != "" {
		addFilter("tenant_id = ", opts.TenantID)
	}

	if opts.CreatedBy != "" {
		addFilter("created_by = ", opts.CreatedBy)
	}

	if opts.Status != nil {
		addFilter("status = ", string(*opts.Status))
	}

	if opts.PublishedOnly {
		where = append(where, "is_published = TRUE")
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	var totalCount int64

	countQuery := "SELECT COUNT(*) FROM workflows" + whereClause

	err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&totalCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count workflows: %w", err)
	}

	query := "SELECT " + workflowColumns + " FROM workflows" + whereClause +
		" ORDER BY " + opts.SortBy + " " + order +
		" LIMIT $" + strconv.Itoa(len(args)+1) + " OFFSET $" + strconv.Itoa(len(args)+2)
	args = append(args, opts.Limit, opts.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows: %w", err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	workflows := make([]*models.Workflow, 0)

	for rows.Next() {
		workflow, err := r.scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}

		workflows = append(workflows, workflow)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating workflows: %w", err)
	}

	return &persistence.WorkflowListResult{
		Workflows:   workflows,
		TotalCount:  totalCount,
		HasNextPage: int64(opts.Offset+len(workflows)) < totalCount,
	}, nil
}

// GetByID returns a workflow by its ID, or (nil, nil) when missing.
func (r *WorkflowRepository) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	query := "SELECT " + workflowColumns + " FROM workflows WHERE id = $1"

	workflow, err := r.scanWorkflow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, persistence.NewWorkflowError("GetByID", id, err)
	}

	return workflow, nil
}

// Create inserts a workflow, assigning identity and timestamps, and
// returns the stored row.
func (r *WorkflowRepository) Create(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error) {
	now := time.Now().UTC()

	created := *workflow
	created.ID = uuid.New().String()
	created.CreatedAt = now
	created.UpdatedAt = now

	rawNodes, err := encodeNodes(created.Nodes)
	if err != nil {
		return nil, persistence.NewWorkflowError("Create", created.ID, err)
	}

	rawEdges, err := encodeEdges(created.Edges)
	if err != nil {
		return nil, persistence.NewWorkflowError("Create", created.ID, err)
	}

	query := `
		INSERT INTO workflows (id, tenant_id, name, nodes, edges, status, is_published, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = r.db.ExecContext(ctx, query,
		created.ID,
		created.TenantID,
		created.Name,
		rawNodes,
		rawEdges,
		string(created.Status),
		created.IsPublished,
		created.CreatedBy,
		created.CreatedAt,
		created.UpdatedAt,
	)
	if err != nil {
		return nil, persistence.NewWorkflowError("Create", created.ID, err)
	}

	return &created, nil
}

// Update overwrites an existing workflow row keyed by its ID.
func (r *WorkflowRepository) Update(ctx context.Context, workflow *models.Workflow) error {
	rawNodes, err := encodeNodes(workflow.Nodes)
	if err != nil {
		return persistence.NewWorkflowError("Update", workflow.ID, err)
	}

	rawEdges, err := encodeEdges(workflow.Edges)
	if err != nil {
		return persistence.NewWorkflowError("Update", workflow.ID, err)
	}

	query := `
		UPDATE workflows
		SET tenant_id = $2, name = $3, nodes = $4, edges = $5, status = $6, is_published = $7, updated_at = $8
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		workflow.ID,
		workflow.TenantID,
		workflow.Name,
		rawNodes,
		rawEdges,
		string(workflow.Status),
		workflow.IsPublished,
		time.Now().UTC(),
	)
	if err != nil {
		return persistence.NewWorkflowError("Update", workflow.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewWorkflowError("Update", workflow.ID, err)
	}

	if affected == 0 {
		return persistence.NewWorkflowError("Update", workflow.ID, persistence.ErrWorkflowNotFound)
	}

	return nil
}

// Delete removes a workflow by its ID.
func (r *WorkflowRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM workflows WHERE id = $1", id)
	if err != nil {
		return persistence.NewWorkflowError("Delete", id, err)
	}

	return nil
}

// Metrics aggregates per-status counts for one tenant.
func (r *WorkflowRepository) Metrics(ctx context.Context, tenantID string) (*models.WorkflowMetrics, error) {
	query := `
		SELECT
			COUNT(*)
		  , COUNT(*) FILTER (WHERE status = 'draft')
		  , COUNT(*) FILTER (WHERE status = 'pending_review')
		  , COUNT(*) FILTER (WHERE status = 'approved')
		  , COUNT(*) FILTER (WHERE status = 'published')
		  , COUNT(*) FILTER (WHERE is_published)
		FROM workflows
		WHERE ($1 = '' OR tenant_id = $1::uuid)
	`

	metrics := &models.WorkflowMetrics{}

	err := r.db.QueryRowContext(ctx, query, tenantID).Scan(
		&metrics.Total,
		&metrics.Draft,
		&metrics.PendingReview,
		&metrics.Approved,
		&metrics.Published,
		&metrics.PublishedTotal,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate workflow metrics: %w", err)
	}

	return metrics, nil
}
