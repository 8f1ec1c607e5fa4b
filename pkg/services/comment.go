package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/procanvas/procanvas/pkg/eventbus"
	"github.com/procanvas/procanvas/pkg/events"
	"github.com/procanvas/procanvas/pkg/lifecycle"
	"github.com/procanvas/procanvas/pkg/models"
	"github.com/procanvas/procanvas/pkg/persistence"
)

// ErrEmptyComment rejects whitespace-only content before any
// persistence call.
var ErrEmptyComment = errors.New("comment content is empty")

// Comment is the server-side counterpart of the canvas comment thread:
// it persists posts, announces them on the bus, and serves thread reads.
type Comment struct {
	persistence persistence.Persistence
	publisher   eventbus.EventPublisher
}

func NewComment(p persistence.Persistence, publisher eventbus.EventPublisher) *Comment {
	return &Comment{
		persistence: p,
		publisher:   publisher,
	}
}

// ListThread returns the comments for one (workflow, node) pair in
// ascending creation order. Threads follow the workflow's visibility:
// actors outside the workflow's tenant, and Viewers before it is
// published, see a missing workflow rather than an empty thread.
func (c *Comment) ListThread(ctx context.Context, workflowID, nodeID string, actor *models.Profile) ([]*models.Comment, error) {
	workflow, err := c.persistence.WorkflowRepository().GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if workflow == nil || actor == nil || workflow.TenantID != actor.TenantID {
		return nil, ErrWorkflowNotFound
	}

	if actor.Role == models.RoleViewer && !workflow.IsPublished {
		return nil, ErrWorkflowNotFound
	}

	return c.persistence.CommentRepository().ListByNode(ctx, workflowID, nodeID)
}

// Post appends a comment, gated by the actor's capabilities at the
// workflow's current status.
func (c *Comment) Post(ctx context.Context, workflowID, nodeID string, actor *models.Profile, content string) (*models.Comment, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, ErrEmptyComment
	}

	workflow, err := c.persistence.WorkflowRepository().GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if workflow == nil || actor == nil || workflow.TenantID != actor.TenantID {
		return nil, ErrWorkflowNotFound
	}

	if !lifecycle.CanComment(actor.Role, workflow.Status) {
		return nil, ErrNotPermitted
	}

	created, err := c.persistence.CommentRepository().Create(ctx, &models.Comment{
		WorkflowID: workflowID,
		NodeID:     nodeID,
		AuthorID:   actor.ID,
		AuthorName: actor.FullName,
		Content:    trimmed,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to post comment: %w", err)
	}

	if c.publisher != nil {
		if err := c.publisher.Publish(ctx, workflowID, events.NewCommentCreated(created)); err != nil {
			return nil, fmt.Errorf("comment stored but event publish failed: %w", err)
		}
	}

	return created, nil
}
