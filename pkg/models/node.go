// Package models defines the core domain models for multi-tenant process modeling.
package models

// NodeKind represents the kind of process step a node stands for.
type NodeKind string

const (
	NodeKindStart NodeKind = "start" // Entry point of the process
	NodeKindTask  NodeKind = "task"  // A unit of work
	NodeKindEnd   NodeKind = "end"   // Terminal step
)

// Position is the placement of a node on the canvas.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeData holds the user-editable payload of a node.
type NodeData struct {
	Label       string `json:"label"                 validate:"required,min=1"`
	Description string `json:"description,omitempty"`
}

// Node represents a single process step in a workflow diagram.
// The ID is assigned at creation and never changes afterwards.
type Node struct {
	ID       string   `json:"id"       validate:"required"`
	Kind     NodeKind `json:"kind"     validate:"required,oneof=start task end"`
	Position Position `json:"position"`
	Data     NodeData `json:"data"`
	Selected bool     `json:"selected,omitempty"`
}

// Edge is a directed connection between two nodes of the same workflow.
// Both endpoints must reference nodes present in the graph.
type Edge struct {
	ID       string `json:"id"     validate:"required"`
	Source   string `json:"source" validate:"required"`
	Target   string `json:"target" validate:"required"`
	Selected bool   `json:"selected,omitempty"`
}
