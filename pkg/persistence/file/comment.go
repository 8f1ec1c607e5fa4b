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

// CommentRepository stores one JSON file per comment.
type CommentRepository struct {
	root string
}

// NewCommentRepository creates a new comment repository.
func NewCommentRepository(root string) *CommentRepository {
	return &CommentRepository{root: root}
}

// ListByNode returns the thread for (workflowID, nodeID) ordered by
// creation time ascending, with the comment id as a stable tie-breaker.
func (cr *CommentRepository) ListByNode(_ context.Context, workflowID, nodeID string) ([]*models.Comment, error) {
	root := os.DirFS(path.Join(cr.root, "comments"))

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, &persistence.CommentError{Op: "ListByNode", WorkflowID: workflowID, NodeID: nodeID, Err: err}
	}

	comments := make([]*models.Comment, 0)

	for _, file := range jsonFiles {
		body, err := os.ReadFile(filepath.Clean(path.Join(cr.root, "comments", file)))
		if err != nil {
			return nil, &persistence.CommentError{Op: "ListByNode", WorkflowID: workflowID, NodeID: nodeID, Err: err}
		}

		var comment models.Comment
		if err := json.Unmarshal(body, &comment); err != nil {
			return nil, &persistence.CommentError{
				Op: "ListByNode", WorkflowID: workflowID, NodeID: nodeID,
				Err: fmt.Errorf("%w: %w", persistence.ErrMalformedRow, err),
			}
		}

		if comment.WorkflowID == workflowID && comment.NodeID == nodeID {
			comments = append(comments, &comment)
		}
	}

	sort.SliceStable(comments, func(i, j int) bool {
		if comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].ID < comments[j].ID
		}

		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})

	return comments, nil
}

// Create assigns an identity and creation time, then appends the comment.
func (cr *CommentRepository) Create(_ context.Context, comment *models.Comment) (*models.Comment, error) {
	err := os.MkdirAll(path.Join(cr.root, "comments"), 0750)
	if err != nil {
		return nil, &persistence.CommentError{Op: "Create", WorkflowID: comment.WorkflowID, NodeID: comment.NodeID, Err: err}
	}

	created := *comment
	created.ID = uuid.New().String()

	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	data, err := json.MarshalIndent(&created, "", "  ")
	if err != nil {
		return nil, &persistence.CommentError{Op: "Create", WorkflowID: comment.WorkflowID, NodeID: comment.NodeID, Err: err}
	}

	filePath := path.Join(cr.root, "comments", created.ID+".json")
	if err := os.WriteFile(filePath, data, 0600); err != nil {
		return nil, &persistence.CommentError{Op: "Create", WorkflowID: comment.WorkflowID, NodeID: comment.NodeID, Err: err}
	}

	return &created, nil
}
