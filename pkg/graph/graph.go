// Package graph maintains the in-memory node/edge sequences of a single
// workflow diagram and provides consistent mutation primitives. All
// operations are synchronous and return new slices instead of mutating
// their inputs.
package graph

import (
	"github.com/google/uuid"

	"github.com/procanvas/procanvas/pkg/models"
)

// AddNode constructs a node with a freshly generated unique id, appends it
// to the sequence and returns the new sequence together with the node.
// The new node is not selected.
func AddNode(nodes []*models.Node, kind models.NodeKind, pos models.Position, label string) ([]*models.Node, *models.Node) {
	node := &models.Node{
		ID:       uuid.New().String(),
		Kind:     kind,
		Position: pos,
		Data:     models.NodeData{Label: label},
	}

	out := make([]*models.Node, 0, len(nodes)+1)
	out = append(out, nodes...)
	out = append(out, node)

	return out, node
}

// Connect creates an edge between two existing nodes. It returns the input
// sequence unchanged when either endpoint is missing. Duplicate edges
// between the same ordered pair are permitted.
func Connect(edges []*models.Edge, nodes []*models.Node, sourceID, targetID string) ([]*models.Edge, *models.Edge) {
	if findNode(nodes, sourceID) == nil || findNode(nodes, targetID) == nil {
		return edges, nil
	}

	edge := &models.Edge{
		ID:     uuid.New().String(),
		Source: sourceID,
		Target: targetID,
	}

	out := make([]*models.Edge, 0, len(edges)+1)
	out = append(out, edges...)
	out = append(out, edge)

	return out, edge
}

// DataPatch is a partial update of a node's data. Nil fields are left
// untouched, mirroring a shallow merge.
type DataPatch struct {
	Label       *string
	Description *string
}

// UpdateNodeData shallow-merges patch into the data of the node with the
// given id. Unknown ids are a no-op.
func UpdateNodeData(nodes []*models.Node, id string, patch DataPatch) []*models.Node {
	out := make([]*models.Node, len(nodes))

	for i, node := range nodes {
		if node.ID != id {
			out[i] = node

			continue
		}

		updated := *node
		if patch.Label != nil {
			updated.Data.Label = *patch.Label
		}

		if patch.Description != nil {
			updated.Data.Description = *patch.Description
		}

		out[i] = &updated
	}

	return out
}

// DeleteNode removes the node with the given id and cascades removal of
// every edge referencing it, so the result never contains dangling edges.
func DeleteNode(nodes []*models.Node, edges []*models.Edge, id string) ([]*models.Node, []*models.Edge) {
	outNodes := make([]*models.Node, 0, len(nodes))

	for _, node := range nodes {
		if node.ID != id {
			outNodes = append(outNodes, node)
		}
	}

	outEdges := make([]*models.Edge, 0, len(edges))

	for _, edge := range edges {
		if edge.Source != id && edge.Target != id {
			outEdges = append(outEdges, edge)
		}
	}

	return outNodes, outEdges
}

// DeleteEdge removes a single edge by id. Unknown ids are a no-op.
func DeleteEdge(edges []*models.Edge, id string) []*models.Edge {
	out := make([]*models.Edge, 0, len(edges))

	for _, edge := range edges {
		if edge.ID != id {
			out = append(out, edge)
		}
	}

	return out
}

func findNode(nodes []*models.Node, id string) *models.Node {
	for _, node := range nodes {
		if node.ID == id {
			return node
		}
	}

	return nil
}
