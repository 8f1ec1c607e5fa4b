package graph

import "github.com/procanvas/procanvas/pkg/models"

// ChangeType identifies a single delta produced by canvas interaction.
type ChangeType string

const (
	ChangeTypePosition ChangeType = "position" // Node moved
	ChangeTypeSelect   ChangeType = "select"   // Selection toggled
	ChangeTypeRemove   ChangeType = "remove"   // Element removed
)

// NodeChange is a positional, selection or removal delta for one node.
type NodeChange struct {
	ID       string
	Type     ChangeType
	Position *models.Position // Set for position changes
	Selected bool             // Set for select changes
}

// EdgeChange is a selection or removal delta for one edge.
type EdgeChange struct {
	ID       string
	Type     ChangeType
	Selected bool
}

// ApplyNodeChanges applies a batch of deltas and returns the new node
// sequence. Changes referencing unknown ids are silently ignored.
func ApplyNodeChanges(nodes []*models.Node, changes []NodeChange) []*models.Node {
	out := make([]*models.Node, 0, len(nodes))

	for _, node := range nodes {
		current := node
		removed := false

		for _, change := range changes {
			if change.ID != current.ID {
				continue
			}

			switch change.Type {
			case ChangeTypeRemove:
				removed = true
			case ChangeTypePosition:
				updated := *current
				if change.Position != nil {
					updated.Position = *change.Position
				}

				current = &updated
			case ChangeTypeSelect:
				updated := *current
				updated.Selected = change.Selected
				current = &updated
			}

			if removed {
				break
			}
		}

		if !removed {
			out = append(out, current)
		}
	}

	return out
}

// ApplyEdgeChanges is the edge counterpart of ApplyNodeChanges.
func ApplyEdgeChanges(edges []*models.Edge, changes []EdgeChange) []*models.Edge {
	out := make([]*models.Edge, 0, len(edges))

	for _, edge := range edges {
		current := edge
		removed := false

		for _, change := range changes {
			if change.ID != current.ID {
				continue
			}

			switch change.Type {
			case ChangeTypeRemove:
				removed = true
			case ChangeTypeSelect:
				updated := *current
				updated.Selected = change.Selected
				current = &updated
			case ChangeTypePosition:
				// Edges have no position; ignore.
			}

			if removed {
				break
			}
		}

		if !removed {
			out = append(out, current)
		}
	}

	return out
}
