// Package store holds the single source of truth for one open workflow
// canvas: graph content, identity, lifecycle status, selection and the
// transient notification banner. One Store is constructed per editing
// session and handed to collaborators explicitly.
package store

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/procanvas/procanvas/pkg/graph"
	"github.com/procanvas/procanvas/pkg/models"
	"github.com/procanvas/procanvas/pkg/otelhelper"
	"github.com/procanvas/procanvas/pkg/persistence"
)

// ErrTenantRequired is returned by Save when no tenant can be resolved
// for the current user. Nothing is written in that case.
var ErrTenantRequired = errors.New("no tenant is linked to the current user")

const DefaultWorkflowName = "Untitled Workflow"

// TenantResolver re-derives the tenant linkage when the store has none
// cached. An empty result is "pending assignment", not an error.
type TenantResolver interface {
	Resolve(ctx context.Context, userID string) (string, error)
}

// Store owns the active workflow's state. All exported methods are safe
// to call while load/save completions from earlier calls are still in
// flight; an internal mutex serializes them.
type Store struct {
	workflows persistence.WorkflowRepository
	resolver  TenantResolver
	logger    *slog.Logger
	tracer    trace.Tracer

	userID string

	notificationTTL time.Duration
	afterFunc       func(d time.Duration, f func()) *time.Timer

	mu              sync.Mutex
	workflowID      string
	tenantID        string
	name            string
	status          models.WorkflowStatus
	isPublished     bool
	createdBy       string
	nodes           []*models.Node
	edges           []*models.Edge
	selectedNode    *models.Node
	notification    *Notification
	notificationSeq uint64
	loadingID       string
}

type Option func(*Store)

// WithNotificationTTL overrides how long a notification stays visible.
func WithNotificationTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.notificationTTL = ttl
	}
}

// WithAfterFunc overrides the timer used for notification self-clear,
// for deterministic tests.
func WithAfterFunc(afterFunc func(d time.Duration, f func()) *time.Timer) Option {
	return func(s *Store) {
		s.afterFunc = afterFunc
	}
}

// WithTracer traces load and save round trips.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Store) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

func NewStore(workflows persistence.WorkflowRepository, resolver TenantResolver, logger *slog.Logger, userID string, opts ...Option) *Store {
	s := &Store{
		workflows:       workflows,
		resolver:        resolver,
		logger:          logger.With("module", "workflow_store"),
		userID:          userID,
		tracer:          noop.NewTracerProvider().Tracer("workflow_store"),
		name:            DefaultWorkflowName,
		status:          models.WorkflowStatusDraft,
		notificationTTL: 3 * time.Second,
		afterFunc:       time.AfterFunc,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Load fetches the workflow by id and replaces the store's state with
// it. Redundant loads are no-ops: same id already loaded with content,
// or same id currently being fetched. A response arriving after the
// store moved on (reset, or a load for another id) is discarded.
func (s *Store) Load(ctx context.Context, workflowID string) error {
	s.mu.Lock()

	if s.workflowID == workflowID && len(s.nodes) > 0 {
		s.mu.Unlock()

		return nil
	}

	if s.loadingID == workflowID {
		s.mu.Unlock()

		return nil
	}

	s.loadingID = workflowID
	s.mu.Unlock()

	ctx, span := otelhelper.StartSpan(ctx, s.tracer, "store.load",
		attribute.String(otelhelper.WorkflowIDKey, workflowID),
	)
	defer span.End()

	workflow, err := s.workflows.GetByID(ctx, workflowID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loadingID != workflowID {
		// Superseded by a reset or a newer load; prior state stands.
		return nil
	}

	s.loadingID = ""

	if err != nil {
		otelhelper.SetError(span, err)
		s.logger.ErrorContext(ctx, "failed to load workflow", "workflow_id", workflowID, "error", err)
		s.setNotificationLocked("Failed to load workflow: "+err.Error(), NotificationError)

		return err
	}

	if workflow == nil {
		s.setNotificationLocked("Workflow not found", NotificationError)

		return persistence.NewWorkflowError("Load", workflowID, persistence.ErrWorkflowNotFound)
	}

	s.workflowID = workflow.ID
	s.tenantID = workflow.TenantID
	s.name = workflow.Name
	s.status = workflow.Status
	s.isPublished = workflow.IsPublished
	s.createdBy = workflow.CreatedBy
	s.nodes = workflow.Nodes
	s.edges = workflow.Edges
	s.selectedNode = nil

	return nil
}

// Save persists the current content. An unsaved workflow is inserted
// and the assigned identity adopted; a saved one is updated in place.
// When the store has no tenant cached it re-derives one through the
// resolver first; if that also comes up empty the save is aborted
// before anything is written.
func (s *Store) Save(ctx context.Context, targetStatus models.WorkflowStatus, publish bool) error {
	s.mu.Lock()
	snapshot := models.Workflow{
		ID:          s.workflowID,
		TenantID:    s.tenantID,
		Name:        s.name,
		Nodes:       s.nodes,
		Edges:       s.edges,
		Status:      targetStatus,
		IsPublished: publish,
		CreatedBy:   s.createdBy,
	}
	s.mu.Unlock()

	ctx, span := otelhelper.StartSpan(ctx, s.tracer, "store.save",
		attribute.String(otelhelper.WorkflowIDKey, snapshot.ID),
		attribute.String(otelhelper.StatusKey, string(targetStatus)),
	)
	defer span.End()

	if snapshot.CreatedBy == "" {
		snapshot.CreatedBy = s.userID
	}

	if snapshot.TenantID == "" {
		tenantID, err := s.resolver.Resolve(ctx, s.userID)
		if err != nil {
			otelhelper.SetError(span, err)
			s.logger.ErrorContext(ctx, "tenant resolution failed", "user_id", s.userID, "error", err)
			s.ShowNotification("Failed to save workflow: "+err.Error(), NotificationError)

			return err
		}

		if tenantID == "" {
			otelhelper.SetError(span, ErrTenantRequired)
			s.ShowNotification("Your account is not linked to an organization yet", NotificationError)

			return ErrTenantRequired
		}

		snapshot.TenantID = tenantID
	}

	if snapshot.ID == "" {
		created, err := s.workflows.Create(ctx, &snapshot)
		if err != nil {
			otelhelper.SetError(span, err)
			s.logger.ErrorContext(ctx, "failed to create workflow", "error", err)
			s.ShowNotification("Failed to save workflow: "+err.Error(), NotificationError)

			return err
		}

		s.mu.Lock()
		s.workflowID = created.ID
		s.tenantID = created.TenantID
		s.status = created.Status
		s.isPublished = created.IsPublished
		s.createdBy = created.CreatedBy
		s.mu.Unlock()
	} else {
		if err := s.workflows.Update(ctx, &snapshot); err != nil {
			otelhelper.SetError(span, err)
			s.logger.ErrorContext(ctx, "failed to update workflow", "workflow_id", snapshot.ID, "error", err)
			s.ShowNotification("Failed to save workflow: "+err.Error(), NotificationError)

			return err
		}

		s.mu.Lock()
		s.tenantID = snapshot.TenantID
		s.status = targetStatus
		s.isPublished = publish
		s.mu.Unlock()
	}

	s.ShowNotification("Workflow saved", NotificationSuccess)

	return nil
}

// Reset returns the store to the new, unsaved workflow state and
// invalidates any load still in flight.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.workflowID = ""
	s.tenantID = ""
	s.name = DefaultWorkflowName
	s.status = models.WorkflowStatusDraft
	s.isPublished = false
	s.createdBy = ""
	s.nodes = nil
	s.edges = nil
	s.selectedNode = nil
	s.loadingID = ""
}

// SetName renames the workflow locally; persisted on the next Save.
func (s *Store) SetName(name string) {
	s.mu.Lock()
	s.name = name
	s.mu.Unlock()
}

// SetSelectedNode selects the node with the given id, or clears the
// selection when the id is empty or unknown.
func (s *Store) SetSelectedNode(nodeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selectedNode = nil

	for _, node := range s.nodes {
		if node.ID == nodeID {
			copied := *node
			s.selectedNode = &copied

			break
		}
	}
}

// AddNode appends a node to the canvas and returns a copy of it.
func (s *Store) AddNode(kind models.NodeKind, position models.Position, label string) *models.Node {
	s.mu.Lock()
	defer s.mu.Unlock()

	nodes, node := graph.AddNode(s.nodes, kind, position, label)
	s.nodes = nodes

	copied := *node

	return &copied
}

// Connect adds an edge between two existing nodes.
func (s *Store) Connect(sourceID, targetID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	edges, edge := graph.Connect(s.edges, s.nodes, sourceID, targetID)
	s.edges = edges

	return edge != nil
}

// UpdateNodeData merges the patch into the node's data. When the
// selected node is the one mutated, the selection snapshot is refreshed
// in the same step so observers never see a stale copy.
func (s *Store) UpdateNodeData(nodeID string, patch graph.DataPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nodes = graph.UpdateNodeData(s.nodes, nodeID, patch)

	if s.selectedNode != nil && s.selectedNode.ID == nodeID {
		for _, node := range s.nodes {
			if node.ID == nodeID {
				copied := *node
				s.selectedNode = &copied

				break
			}
		}
	}
}

// DeleteNode removes a node and its incident edges. Deleting the
// selected node clears the selection.
func (s *Store) DeleteNode(nodeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nodes, s.edges = graph.DeleteNode(s.nodes, s.edges, nodeID)

	if s.selectedNode != nil && s.selectedNode.ID == nodeID {
		s.selectedNode = nil
	}
}

// DeleteEdge removes a single edge by id.
func (s *Store) DeleteEdge(edgeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.edges = graph.DeleteEdge(s.edges, edgeID)
}

// ApplyNodeChanges applies a batch of position/selection/removal deltas.
func (s *Store) ApplyNodeChanges(changes []graph.NodeChange) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nodes = graph.ApplyNodeChanges(s.nodes, changes)

	if s.selectedNode == nil {
		return
	}

	// Removal deltas may have taken the selected node with them.
	for _, node := range s.nodes {
		if node.ID == s.selectedNode.ID {
			copied := *node
			s.selectedNode = &copied

			return
		}
	}

	s.selectedNode = nil
}

// ApplyEdgeChanges applies a batch of selection/removal deltas to edges.
func (s *Store) ApplyEdgeChanges(changes []graph.EdgeChange) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.edges = graph.ApplyEdgeChanges(s.edges, changes)
}

func (s *Store) WorkflowID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.workflowID
}

func (s *Store) TenantID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.tenantID
}

func (s *Store) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.name
}

func (s *Store) Status() models.WorkflowStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.status
}

func (s *Store) IsPublished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.isPublished
}

// Nodes returns a copy of the node sequence.
func (s *Store) Nodes() []*models.Node {
	s.mu.Lock()
	defer s.mu.Unlock()

	nodes := make([]*models.Node, len(s.nodes))
	copy(nodes, s.nodes)

	return nodes
}

// Edges returns a copy of the edge sequence.
func (s *Store) Edges() []*models.Edge {
	s.mu.Lock()
	defer s.mu.Unlock()

	edges := make([]*models.Edge, len(s.edges))
	copy(edges, s.edges)

	return edges
}

// SelectedNode returns the current selection snapshot, or nil.
func (s *Store) SelectedNode() *models.Node {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selectedNode == nil {
		return nil
	}

	copied := *s.selectedNode

	return &copied
}
