package models

import "time"

// Comment is a single message in a per-node discussion thread.
// Comments are append-only: the core never mutates or deletes them.
type Comment struct {
	ID         string    `json:"id"`
	WorkflowID string    `json:"workflow_id" validate:"required"`
	NodeID     string    `json:"node_id"     validate:"required"`
	AuthorID   string    `json:"user_id"     validate:"required"`
	AuthorName string    `json:"user_name"`
	Content    string    `json:"content"     validate:"required,min=1"`
	CreatedAt  time.Time `json:"created_at"`
}
