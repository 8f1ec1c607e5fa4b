// Package events defines the event types emitted when diagrams and
// comment threads change, so open canvases can react in near real time.
package events

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/procanvas/procanvas/pkg/models"
)

type EventType string

// Topic carries every collaboration event; consumers filter by the
// event_type metadata key.
const Topic = "procanvas.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	CommentCreatedEvent        EventType = "comment.created"
	WorkflowStatusChangedEvent EventType = "workflow.status.changed"
	WorkflowDeletedEvent       EventType = "workflow.deleted"
)

type BaseEvent struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	WorkflowID string    `json:"workflow_id"`
	TenantID   string    `json:"tenant_id,omitempty"`
}

func NewBaseEvent(eventType EventType, workflowID string) BaseEvent {
	return BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		WorkflowID: workflowID,
	}
}

// CommentCreated is published after a comment row has been persisted.
// It carries the full row so subscribers can append without refetching.
type CommentCreated struct {
	BaseEvent

	NodeID  string          `json:"node_id"`
	Comment *models.Comment `json:"comment"`
}

func NewCommentCreated(comment *models.Comment) *CommentCreated {
	return &CommentCreated{
		BaseEvent: NewBaseEvent(CommentCreatedEvent, comment.WorkflowID),
		NodeID:    comment.NodeID,
		Comment:   comment,
	}
}

func (c CommentCreated) GetType() EventType {
	return CommentCreatedEvent
}

func (c CommentCreated) Validate() error {
	if c.WorkflowID == "" {
		return errors.New("workflow_id is required")
	}

	if c.NodeID == "" {
		return errors.New("node_id is required")
	}

	if c.Comment == nil {
		return errors.New("comment payload is required")
	}

	return nil
}

// WorkflowStatusChanged is published after a lifecycle transition has
// been persisted.
type WorkflowStatusChanged struct {
	BaseEvent

	WorkflowName string                `json:"workflow_name"`
	OldStatus    models.WorkflowStatus `json:"old_status"`
	NewStatus    models.WorkflowStatus `json:"new_status"`
	ChangedBy    string                `json:"changed_by"`
}

func NewWorkflowStatusChanged(workflow *models.Workflow, oldStatus models.WorkflowStatus, changedBy string) *WorkflowStatusChanged {
	event := &WorkflowStatusChanged{
		BaseEvent:    NewBaseEvent(WorkflowStatusChangedEvent, workflow.ID),
		WorkflowName: workflow.Name,
		OldStatus:    oldStatus,
		NewStatus:    workflow.Status,
		ChangedBy:    changedBy,
	}
	event.TenantID = workflow.TenantID

	return event
}

func (w WorkflowStatusChanged) GetType() EventType {
	return WorkflowStatusChangedEvent
}

func (w WorkflowStatusChanged) Validate() error {
	if w.WorkflowID == "" {
		return errors.New("workflow_id is required")
	}

	if !models.ValidStatus(w.NewStatus) {
		return errors.New("new_status is not a known status")
	}

	return nil
}

// WorkflowDeleted is published after an administrator removes a
// workflow, so open canvases can close stale editors.
type WorkflowDeleted struct {
	BaseEvent

	WorkflowName string `json:"workflow_name"`
	DeletedBy    string `json:"deleted_by"`
}

func NewWorkflowDeleted(workflow *models.Workflow, deletedBy string) *WorkflowDeleted {
	event := &WorkflowDeleted{
		BaseEvent:    NewBaseEvent(WorkflowDeletedEvent, workflow.ID),
		WorkflowName: workflow.Name,
		DeletedBy:    deletedBy,
	}
	event.TenantID = workflow.TenantID

	return event
}

func (w WorkflowDeleted) GetType() EventType {
	return WorkflowDeletedEvent
}

func (w WorkflowDeleted) Validate() error {
	if w.WorkflowID == "" {
		return errors.New("workflow_id is required")
	}

	return nil
}
