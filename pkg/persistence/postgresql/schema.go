package postgresql

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/procanvas/procanvas/pkg/models"
	"github.com/procanvas/procanvas/pkg/persistence"
)

// The nodes/edges columns are free-form JSONB. Rows are validated against
// these schemas before the data is allowed into the typed core models;
// malformed rows are rejected with ErrMalformedRow instead of trusted at
// runtime.
const nodesSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["id", "kind", "position", "data"],
		"properties": {
			"id": {"type": "string", "minLength": 1},
			"kind": {"type": "string", "enum": ["start", "task", "end"]},
			"position": {
				"type": "object",
				"required": ["x", "y"],
				"properties": {
					"x": {"type": "number"},
					"y": {"type": "number"}
				}
			},
			"data": {
				"type": "object",
				"required": ["label"],
				"properties": {
					"label": {"type": "string"},
					"description": {"type": "string"}
				}
			}
		}
	}
}`

const edgesSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["id", "source", "target"],
		"properties": {
			"id": {"type": "string", "minLength": 1},
			"source": {"type": "string", "minLength": 1},
			"target": {"type": "string", "minLength": 1}
		}
	}
}`

var (
	nodesSchemaLoader = gojsonschema.NewStringLoader(nodesSchema)
	edgesSchemaLoader = gojsonschema.NewStringLoader(edgesSchema)
)

func decodeNodes(raw []byte) ([]*models.Node, error) {
	if len(raw) == 0 {
		return []*models.Node{}, nil
	}

	if err := validateColumn(nodesSchemaLoader, raw, "nodes"); err != nil {
		return nil, err
	}

	var nodes []*models.Node
	if err := json.Unmarshal(raw, &nodes); err != nil {
		return nil, fmt.Errorf("%w: nodes column: %w", persistence.ErrMalformedRow, err)
	}

	if nodes == nil {
		nodes = []*models.Node{}
	}

	return nodes, nil
}

func decodeEdges(raw []byte) ([]*models.Edge, error) {
	if len(raw) == 0 {
		return []*models.Edge{}, nil
	}

	if err := validateColumn(edgesSchemaLoader, raw, "edges"); err != nil {
		return nil, err
	}

	var edges []*models.Edge
	if err := json.Unmarshal(raw, &edges); err != nil {
		return nil, fmt.Errorf("%w: edges column: %w", persistence.ErrMalformedRow, err)
	}

	if edges == nil {
		edges = []*models.Edge{}
	}

	return edges, nil
}

func validateColumn(schema gojsonschema.JSONLoader, raw []byte, column string) error {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("%w: %s column: %w", persistence.ErrMalformedRow, column, err)
	}

	if !result.Valid() {
		return fmt.Errorf("%w: %s column: %v", persistence.ErrMalformedRow, column, result.Errors())
	}

	return nil
}

func encodeNodes(nodes []*models.Node) ([]byte, error) {
	if nodes == nil {
		nodes = []*models.Node{}
	}

	return json.Marshal(nodes)
}

func encodeEdges(edges []*models.Edge) ([]byte, error) {
	if edges == nil {
		edges = []*models.Edge{}
	}

	return json.Marshal(edges)
}
