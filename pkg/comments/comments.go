// Package comments drives the per-node discussion thread shown next to
// the canvas. The controller is scoped to one (workflow, node) pair at
// a time and refreshes its list wholesale, never patching incrementally.
package comments

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/procanvas/procanvas/pkg/eventbus"
	"github.com/procanvas/procanvas/pkg/events"
	"github.com/procanvas/procanvas/pkg/models"
	"github.com/procanvas/procanvas/pkg/persistence"
)

var (
	// ErrEmptyContent rejects whitespace-only comments before any
	// persistence call is made.
	ErrEmptyContent = errors.New("comment content is empty")

	// ErrNoScope means Post was called before SetScope.
	ErrNoScope = errors.New("no comment thread is active")
)

// Controller owns the comment list for the active thread. Capability
// gating happens at the caller; the controller trusts it.
type Controller struct {
	repo   persistence.CommentRepository
	bus    eventbus.EventBus
	logger *slog.Logger

	mu         sync.Mutex
	workflowID string
	nodeID     string
	comments   []*models.Comment
	refreshSeq uint64
}

func NewController(repo persistence.CommentRepository, bus eventbus.EventBus, logger *slog.Logger) *Controller {
	return &Controller{
		repo:   repo,
		bus:    bus,
		logger: logger.With("module", "comment_thread"),
	}
}

// Start registers the controller on the event bus. Incoming
// comment.created events are matched against the active scope; events
// for other workflow/node pairs are ignored.
func (c *Controller) Start(ctx context.Context) error {
	err := c.bus.Handle(events.CommentCreatedEvent, func(ctx context.Context, event interface{}) error {
		created, ok := event.(*events.CommentCreated)
		if !ok {
			return nil
		}

		c.mu.Lock()
		match := created.WorkflowID == c.workflowID && created.NodeID == c.nodeID && c.workflowID != ""
		c.mu.Unlock()

		if !match {
			return nil
		}

		return c.Refresh(ctx)
	})
	if err != nil {
		return err
	}

	return c.bus.Subscribe(ctx)
}

// SetScope points the controller at a new (workflow, node) pair and
// refreshes. Responses still in flight for the previous scope are
// discarded rather than applied to the new thread.
func (c *Controller) SetScope(ctx context.Context, workflowID, nodeID string) error {
	c.mu.Lock()
	c.workflowID = workflowID
	c.nodeID = nodeID
	c.comments = nil
	c.mu.Unlock()

	if workflowID == "" || nodeID == "" {
		return nil
	}

	return c.Refresh(ctx)
}

// Refresh re-fetches the active thread wholesale. Each refresh carries
// a request token; a superseded response never overwrites newer state.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.refreshSeq++
	seq := c.refreshSeq
	workflowID, nodeID := c.workflowID, c.nodeID
	c.mu.Unlock()

	if workflowID == "" || nodeID == "" {
		return nil
	}

	fetched, err := c.repo.ListByNode(ctx, workflowID, nodeID)
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to refresh comment thread",
			"workflow_id", workflowID,
			"node_id", nodeID,
			"error", err,
		)

		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.refreshSeq || workflowID != c.workflowID || nodeID != c.nodeID {
		// A newer refresh or a scope change superseded this response.
		return nil
	}

	c.comments = fetched

	return nil
}

// Post appends a comment to the active thread. Empty content after
// trimming is rejected locally. The new comment becomes visible through
// the follow-up refresh, not by direct injection.
func (c *Controller) Post(ctx context.Context, authorID, authorName, content string) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return ErrEmptyContent
	}

	c.mu.Lock()
	workflowID, nodeID := c.workflowID, c.nodeID
	c.mu.Unlock()

	if workflowID == "" || nodeID == "" {
		return ErrNoScope
	}

	created, err := c.repo.Create(ctx, &models.Comment{
		WorkflowID: workflowID,
		NodeID:     nodeID,
		AuthorID:   authorID,
		AuthorName: authorName,
		Content:    trimmed,
	})
	if err != nil {
		return err
	}

	if err := c.bus.Publish(ctx, workflowID, events.NewCommentCreated(created)); err != nil {
		c.logger.ErrorContext(ctx, "failed to publish comment.created",
			"workflow_id", workflowID,
			"node_id", nodeID,
			"error", err,
		)
	}

	return c.Refresh(ctx)
}

// Comments returns the current thread snapshot in ascending creation
// order.
func (c *Controller) Comments() []*models.Comment {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]*models.Comment, len(c.comments))
	copy(out, c.comments)

	return out
}
