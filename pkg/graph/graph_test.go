package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procanvas/procanvas/pkg/models"
)

func TestAddNode(t *testing.T) {
	t.Parallel()

	nodes, node := AddNode(nil, models.NodeKindStart, models.Position{X: 50, Y: 50}, "Begin")
	require.NotNil(t, node)
	require.Len(t, nodes, 1)

	assert.NotEmpty(t, node.ID)
	assert.Equal(t, models.NodeKindStart, node.Kind)
	assert.Equal(t, "Begin", node.Data.Label)
	assert.False(t, node.Selected)

	// Appending does not mutate the input sequence.
	more, second := AddNode(nodes, models.NodeKindTask, models.Position{X: 200, Y: 50}, "Review")
	assert.Len(t, nodes, 1)
	assert.Len(t, more, 2)
	assert.NotEqual(t, node.ID, second.ID)
}

func TestConnect(t *testing.T) {
	t.Parallel()

	nodes, start := AddNode(nil, models.NodeKindStart, models.Position{}, "Begin")
	nodes, task := AddNode(nodes, models.NodeKindTask, models.Position{}, "Work")

	edges, edge := Connect(nil, nodes, start.ID, task.ID)
	require.NotNil(t, edge)
	require.Len(t, edges, 1)
	assert.Equal(t, start.ID, edge.Source)
	assert.Equal(t, task.ID, edge.Target)

	t.Run("missing endpoint is rejected", func(t *testing.T) {
		t.Parallel()

		out, created := Connect(edges, nodes, start.ID, "no-such-node")
		assert.Nil(t, created)
		assert.Len(t, out, 1)
	})

	t.Run("duplicate edges are permitted", func(t *testing.T) {
		t.Parallel()

		out, dup := Connect(edges, nodes, start.ID, task.ID)
		require.NotNil(t, dup)
		assert.Len(t, out, 2)
		assert.NotEqual(t, edge.ID, dup.ID)
	})
}

func TestUpdateNodeData(t *testing.T) {
	t.Parallel()

	nodes, node := AddNode(nil, models.NodeKindTask, models.Position{}, "Old")

	label := "New"
	updated := UpdateNodeData(nodes, node.ID, DataPatch{Label: &label})
	assert.Equal(t, "New", updated[0].Data.Label)
	assert.Equal(t, "Old", nodes[0].Data.Label, "input sequence must stay untouched")

	desc := "details"
	updated = UpdateNodeData(updated, node.ID, DataPatch{Description: &desc})
	assert.Equal(t, "New", updated[0].Data.Label, "unset fields survive the merge")
	assert.Equal(t, "details", updated[0].Data.Description)

	same := UpdateNodeData(updated, "unknown", DataPatch{Label: &label})
	assert.Equal(t, updated, same)
}

func TestDeleteNodeCascadesEdges(t *testing.T) {
	t.Parallel()

	nodes, start := AddNode(nil, models.NodeKindStart, models.Position{}, "Begin")
	nodes, task := AddNode(nodes, models.NodeKindTask, models.Position{}, "Work")
	nodes, end := AddNode(nodes, models.NodeKindEnd, models.Position{}, "Done")

	edges, _ := Connect(nil, nodes, start.ID, task.ID)
	edges, _ = Connect(edges, nodes, task.ID, end.ID)
	edges, keep := Connect(edges, nodes, start.ID, end.ID)

	outNodes, outEdges := DeleteNode(nodes, edges, task.ID)
	require.Len(t, outNodes, 2)
	require.Len(t, outEdges, 1)
	assert.Equal(t, keep.ID, outEdges[0].ID)

	for _, edge := range outEdges {
		assert.NotEqual(t, task.ID, edge.Source)
		assert.NotEqual(t, task.ID, edge.Target)
	}
}

func TestDeleteEdge(t *testing.T) {
	t.Parallel()

	nodes, start := AddNode(nil, models.NodeKindStart, models.Position{}, "Begin")
	nodes, task := AddNode(nodes, models.NodeKindTask, models.Position{}, "Work")
	edges, edge := Connect(nil, nodes, start.ID, task.ID)

	out := DeleteEdge(edges, edge.ID)
	assert.Empty(t, out)

	out = DeleteEdge(edges, "unknown")
	assert.Len(t, out, 1)
}

func TestApplyNodeChanges(t *testing.T) {
	t.Parallel()

	nodes, a := AddNode(nil, models.NodeKindStart, models.Position{X: 1, Y: 1}, "A")
	nodes, b := AddNode(nodes, models.NodeKindTask, models.Position{X: 2, Y: 2}, "B")

	out := ApplyNodeChanges(nodes, []NodeChange{
		{ID: a.ID, Type: ChangeTypePosition, Position: &models.Position{X: 10, Y: 20}},
		{ID: b.ID, Type: ChangeTypeSelect, Selected: true},
		{ID: "ghost", Type: ChangeTypeRemove},
	})

	require.Len(t, out, 2)
	assert.Equal(t, 10.0, out[0].Position.X)
	assert.Equal(t, 20.0, out[0].Position.Y)
	assert.True(t, out[1].Selected)

	// Originals untouched.
	assert.Equal(t, 1.0, nodes[0].Position.X)
	assert.False(t, nodes[1].Selected)

	out = ApplyNodeChanges(out, []NodeChange{{ID: a.ID, Type: ChangeTypeRemove}})
	require.Len(t, out, 1)
	assert.Equal(t, b.ID, out[0].ID)
}

func TestApplyEdgeChanges(t *testing.T) {
	t.Parallel()

	nodes, a := AddNode(nil, models.NodeKindStart, models.Position{}, "A")
	nodes, b := AddNode(nodes, models.NodeKindTask, models.Position{}, "B")
	edges, e1 := Connect(nil, nodes, a.ID, b.ID)
	edges, e2 := Connect(edges, nodes, b.ID, a.ID)

	out := ApplyEdgeChanges(edges, []EdgeChange{
		{ID: e1.ID, Type: ChangeTypeSelect, Selected: true},
		{ID: e2.ID, Type: ChangeTypeRemove},
	})

	require.Len(t, out, 1)
	assert.Equal(t, e1.ID, out[0].ID)
	assert.True(t, out[0].Selected)
}
