package services

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/procanvas/procanvas/pkg/eventbus"
	"github.com/procanvas/procanvas/pkg/events"
	"github.com/procanvas/procanvas/pkg/lifecycle"
	"github.com/procanvas/procanvas/pkg/models"
	"github.com/procanvas/procanvas/pkg/otelhelper"
	"github.com/procanvas/procanvas/pkg/persistence"
)

// Transition moves workflows through the review lifecycle. Every
// successful transition is persisted and announced on the event bus as
// workflow.status.changed.
type Transition struct {
	persistence persistence.Persistence
	publisher   eventbus.EventPublisher
	tracer      trace.Tracer
}

func NewTransition(p persistence.Persistence, publisher eventbus.EventPublisher, tracer trace.Tracer) *Transition {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("transition")
	}

	return &Transition{
		persistence: p,
		publisher:   publisher,
		tracer:      tracer,
	}
}

// Submit moves a draft to pending_review. Analysts only.
func (t *Transition) Submit(ctx context.Context, workflowID string, actor *models.Profile) (*models.Workflow, error) {
	return t.apply(ctx, workflowID, actor, lifecycle.ActionSubmit)
}

// Approve moves a pending review to approved. Reviewers only.
func (t *Transition) Approve(ctx context.Context, workflowID string, actor *models.Profile) (*models.Workflow, error) {
	return t.apply(ctx, workflowID, actor, lifecycle.ActionApprove)
}

// Publish moves an approved workflow to published and marks it visible
// to viewers. Owners only.
func (t *Transition) Publish(ctx context.Context, workflowID string, actor *models.Profile) (*models.Workflow, error) {
	return t.apply(ctx, workflowID, actor, lifecycle.ActionPublish)
}

func (t *Transition) apply(ctx context.Context, workflowID string, actor *models.Profile, action lifecycle.Action) (*models.Workflow, error) {
	if actor == nil {
		return nil, ErrNotPermitted
	}

	ctx, span := otelhelper.StartSpan(ctx, t.tracer, "workflow."+string(action),
		attribute.String(otelhelper.WorkflowIDKey, workflowID),
		attribute.String(otelhelper.RoleKey, string(actor.Role)),
	)
	defer span.End()

	workflow, err := t.persistence.WorkflowRepository().GetByID(ctx, workflowID)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	// A workflow outside the actor's tenant is indistinguishable from a
	// missing one.
	if workflow == nil || workflow.TenantID != actor.TenantID {
		return nil, ErrWorkflowNotFound
	}

	oldStatus := workflow.Status

	// Capability check precedes the attempt; an actor whose role never
	// holds the action gets a 403, an authorized one at the wrong stage
	// gets a 409. Either way the status is left unchanged.
	newStatus, ok := lifecycle.Transition(actor.Role, workflow.Status, action)
	if !ok {
		if roleEverMay(actor.Role, action) {
			return nil, ErrInvalidTransition
		}

		return nil, ErrNotPermitted
	}

	workflow.Status = newStatus
	if newStatus == models.WorkflowStatusPublished {
		workflow.IsPublished = true
	}

	if err := t.persistence.WorkflowRepository().Update(ctx, workflow); err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to persist transition: %w", err)
	}

	if t.publisher != nil {
		event := events.NewWorkflowStatusChanged(workflow, oldStatus, actor.ID)
		if err := t.publisher.Publish(ctx, workflow.ID, event); err != nil {
			otelhelper.SetError(span, err)

			return nil, fmt.Errorf("transition persisted but event publish failed: %w", err)
		}
	}

	return workflow, nil
}

// roleEverMay reports whether the role can perform the action at any
// lifecycle stage, distinguishing wrong-stage from wrong-role attempts.
func roleEverMay(role models.Role, action lifecycle.Action) bool {
	for _, status := range []models.WorkflowStatus{
		models.WorkflowStatusDraft,
		models.WorkflowStatusPendingReview,
		models.WorkflowStatusApproved,
		models.WorkflowStatusPublished,
	} {
		if lifecycle.Can(role, status, action) {
			return true
		}
	}

	return false
}
