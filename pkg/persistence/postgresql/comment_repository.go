package postgresql

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/procanvas/procanvas/pkg/models"
	"github.com/procanvas/procanvas/pkg/persistence"
)

// CommentRepository handles comment-related database operations.
type CommentRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewCommentRepository creates a new comment repository.
func NewCommentRepository(db *sql.DB, logger *slog.Logger) *CommentRepository {
	return &CommentRepository{db: db, logger: logger}
}

// ListByNode returns the thread for (workflowID, nodeID) ordered by
// creation time ascending.
func (r *CommentRepository) ListByNode(ctx context.Context, workflowID, nodeID string) ([]*models.Comment, error) {
	query := `
		SELECT
			id
		  , workflow_id
		  , node_id
		  , user_id
		  , user_name
		  , content
		  , created_at
		FROM comments
		WHERE workflow_id = $1 AND node_id = $2
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, workflowID, nodeID)
	if err != nil {
		return nil, &persistence.CommentError{Op: "ListByNode", WorkflowID: workflowID, NodeID: nodeID, Err: err}
	}

	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	comments := make([]*models.Comment, 0)

	for rows.Next() {
		var (
			comment    models.Comment
			authorName sql.NullString
		)

		err := rows.Scan(
			&comment.ID,
			&comment.WorkflowID,
			&comment.NodeID,
			&comment.AuthorID,
			&authorName,
			&comment.Content,
			&comment.CreatedAt,
		)
		if err != nil {
			return nil, &persistence.CommentError{Op: "ListByNode", WorkflowID: workflowID, NodeID: nodeID, Err: err}
		}

		comment.AuthorName = authorName.String
		comments = append(comments, &comment)
	}

	if err := rows.Err(); err != nil {
		return nil, &persistence.CommentError{Op: "ListByNode", WorkflowID: workflowID, NodeID: nodeID, Err: err}
	}

	return comments, nil
}

// Create inserts a comment, assigning identity and creation time.
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	created := *comment
	created.ID = uuid.New().String()

	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO comments (id, workflow_id, node_id, user_id, user_name, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		created.ID,
		created.WorkflowID,
		created.NodeID,
		created.AuthorID,
		created.AuthorName,
		created.Content,
		created.CreatedAt,
	)
	if err != nil {
		return nil, &persistence.CommentError{Op: "Create", WorkflowID: comment.WorkflowID, NodeID: comment.NodeID, Err: err}
	}

	return &created, nil
}
