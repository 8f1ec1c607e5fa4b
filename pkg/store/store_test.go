package store_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procanvas/procanvas/pkg/graph"
	"github.com/procanvas/procanvas/pkg/models"
	"github.com/procanvas/procanvas/pkg/persistence"
	"github.com/procanvas/procanvas/pkg/persistence/file"
	"github.com/procanvas/procanvas/pkg/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// spyWorkflowRepository counts writes and optionally blocks reads so
// tests can interleave completions deterministically.
type spyWorkflowRepository struct {
	persistence.WorkflowRepository

	creates atomic.Int64
	updates atomic.Int64
	gets    atomic.Int64

	blockGet chan struct{}
}

func (s *spyWorkflowRepository) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	s.gets.Add(1)

	if s.blockGet != nil {
		<-s.blockGet
	}

	return s.WorkflowRepository.GetByID(ctx, id)
}

func (s *spyWorkflowRepository) Create(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error) {
	s.creates.Add(1)

	return s.WorkflowRepository.Create(ctx, workflow)
}

func (s *spyWorkflowRepository) Update(ctx context.Context, workflow *models.Workflow) error {
	s.updates.Add(1)

	return s.WorkflowRepository.Update(ctx, workflow)
}

type resolverFunc func(ctx context.Context, userID string) (string, error)

func (f resolverFunc) Resolve(ctx context.Context, userID string) (string, error) {
	return f(ctx, userID)
}

func fixedResolver(tenantID string) resolverFunc {
	return func(context.Context, string) (string, error) {
		return tenantID, nil
	}
}

func newTestStore(t *testing.T, resolver store.TenantResolver) (*store.Store, *spyWorkflowRepository) {
	t.Helper()

	repo := &spyWorkflowRepository{
		WorkflowRepository: file.NewPersistence(t.TempDir()).WorkflowRepository(),
	}

	return store.NewStore(repo, resolver, testLogger(), "user-1",
		store.WithNotificationTTL(50*time.Millisecond)), repo
}

func TestSaveInsertsThenUpdates(t *testing.T) {
	ctx := context.Background()
	s, repo := newTestStore(t, fixedResolver("tenant-1"))

	begin := s.AddNode(models.NodeKindStart, models.Position{X: 50, Y: 50}, "Begin")
	task := s.AddNode(models.NodeKindTask, models.Position{X: 200, Y: 50}, "Review request")
	require.True(t, s.Connect(begin.ID, task.ID))

	require.NoError(t, s.Save(ctx, models.WorkflowStatusDraft, false))

	assert.Equal(t, int64(1), repo.creates.Load())
	assert.NotEmpty(t, s.WorkflowID())
	assert.Equal(t, "tenant-1", s.TenantID())

	persisted, err := repo.WorkflowRepository.GetByID(ctx, s.WorkflowID())
	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Len(t, persisted.Nodes, 2)
	assert.Len(t, persisted.Edges, 1)
	assert.Equal(t, models.WorkflowStatusDraft, persisted.Status)

	// Second save goes through the update path, never a second insert.
	s.SetName("Expense Approval")
	require.NoError(t, s.Save(ctx, models.WorkflowStatusDraft, false))

	assert.Equal(t, int64(1), repo.creates.Load())
	assert.Equal(t, int64(1), repo.updates.Load())
}

func TestSaveWithoutTenantIsRejected(t *testing.T) {
	ctx := context.Background()
	s, repo := newTestStore(t, fixedResolver(""))

	s.AddNode(models.NodeKindStart, models.Position{X: 0, Y: 0}, "Begin")

	err := s.Save(ctx, models.WorkflowStatusDraft, false)
	require.ErrorIs(t, err, store.ErrTenantRequired)

	assert.Equal(t, int64(0), repo.creates.Load())
	assert.Equal(t, int64(0), repo.updates.Load())
	assert.Empty(t, s.WorkflowID())

	notification := s.Notification()
	require.NotNil(t, notification)
	assert.Equal(t, store.NotificationError, notification.Kind)
}

func TestSaveSelfHealsTenant(t *testing.T) {
	ctx := context.Background()

	var resolved atomic.Int64

	resolver := resolverFunc(func(context.Context, string) (string, error) {
		resolved.Add(1)

		return "tenant-1", nil
	})

	s, _ := newTestStore(t, resolver)
	s.AddNode(models.NodeKindStart, models.Position{X: 0, Y: 0}, "Begin")

	require.NoError(t, s.Save(ctx, models.WorkflowStatusDraft, false))
	assert.Equal(t, int64(1), resolved.Load())
	assert.Equal(t, "tenant-1", s.TenantID())

	// Tenant is cached now; saving again does not hit the resolver.
	require.NoError(t, s.Save(ctx, models.WorkflowStatusDraft, false))
	assert.Equal(t, int64(1), resolved.Load())
}

func TestSaveResolverFailureProducesNoWrite(t *testing.T) {
	ctx := context.Background()

	resolver := resolverFunc(func(context.Context, string) (string, error) {
		return "", errors.New("profile service unavailable")
	})

	s, repo := newTestStore(t, resolver)
	s.AddNode(models.NodeKindStart, models.Position{X: 0, Y: 0}, "Begin")

	require.Error(t, s.Save(ctx, models.WorkflowStatusDraft, false))
	assert.Equal(t, int64(0), repo.creates.Load())
}

func TestLoadPopulatesState(t *testing.T) {
	ctx := context.Background()
	s, repo := newTestStore(t, fixedResolver("tenant-1"))

	created, err := repo.WorkflowRepository.Create(ctx, &models.Workflow{
		TenantID: "tenant-1",
		Name:     "Onboarding",
		Status:   models.WorkflowStatusPendingReview,
		Nodes:    []*models.Node{{ID: "n1", Kind: models.NodeKindStart, Data: models.NodeData{Label: "Begin"}}},
		Edges:    []*models.Edge{},
	})
	require.NoError(t, err)

	require.NoError(t, s.Load(ctx, created.ID))
	assert.Equal(t, created.ID, s.WorkflowID())
	assert.Equal(t, "Onboarding", s.Name())
	assert.Equal(t, models.WorkflowStatusPendingReview, s.Status())
	assert.Len(t, s.Nodes(), 1)
}

func TestLoadIsReentrancyGuarded(t *testing.T) {
	ctx := context.Background()
	s, repo := newTestStore(t, fixedResolver("tenant-1"))

	created, err := repo.WorkflowRepository.Create(ctx, &models.Workflow{
		TenantID: "tenant-1",
		Name:     "Onboarding",
		Status:   models.WorkflowStatusDraft,
		Nodes:    []*models.Node{{ID: "n1", Kind: models.NodeKindStart, Data: models.NodeData{Label: "Begin"}}},
	})
	require.NoError(t, err)

	require.NoError(t, s.Load(ctx, created.ID))
	require.NoError(t, s.Load(ctx, created.ID))

	assert.Equal(t, int64(1), repo.gets.Load())
}

func TestLoadStaleResponseDiscarded(t *testing.T) {
	ctx := context.Background()

	repo := &spyWorkflowRepository{
		WorkflowRepository: file.NewPersistence(t.TempDir()).WorkflowRepository(),
		blockGet:           make(chan struct{}),
	}
	s := store.NewStore(repo, fixedResolver("tenant-1"), testLogger(), "user-1")

	created, err := repo.WorkflowRepository.Create(ctx, &models.Workflow{
		TenantID: "tenant-1",
		Name:     "Onboarding",
		Status:   models.WorkflowStatusDraft,
		Nodes:    []*models.Node{{ID: "n1", Kind: models.NodeKindStart, Data: models.NodeData{Label: "Begin"}}},
	})
	require.NoError(t, err)

	done := make(chan error, 1)

	go func() {
		done <- s.Load(ctx, created.ID)
	}()

	// Wait for the load to be in flight, then move on before it lands.
	require.Eventually(t, func() bool { return repo.gets.Load() == 1 }, time.Second, time.Millisecond)
	s.Reset()

	close(repo.blockGet)
	require.NoError(t, <-done)

	assert.Empty(t, s.WorkflowID())
	assert.Empty(t, s.Nodes())
}

func TestLoadNotFound(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, fixedResolver("tenant-1"))

	s.AddNode(models.NodeKindStart, models.Position{X: 0, Y: 0}, "Begin")

	err := s.Load(ctx, "missing-id")
	require.Error(t, err)
	assert.True(t, persistence.IsWorkflowNotFound(err))

	// Prior state is untouched.
	assert.Len(t, s.Nodes(), 1)

	notification := s.Notification()
	require.NotNil(t, notification)
	assert.Equal(t, store.NotificationError, notification.Kind)
}

func TestSelectionFollowsNodeData(t *testing.T) {
	s, _ := newTestStore(t, fixedResolver("tenant-1"))

	node := s.AddNode(models.NodeKindTask, models.Position{X: 10, Y: 10}, "Step")
	s.SetSelectedNode(node.ID)

	description := "updated description"
	s.UpdateNodeData(node.ID, graph.DataPatch{Description: &description})

	selected := s.SelectedNode()
	require.NotNil(t, selected)
	assert.Equal(t, "updated description", selected.Data.Description)
}

func TestDeletingSelectedNodeClearsSelection(t *testing.T) {
	s, _ := newTestStore(t, fixedResolver("tenant-1"))

	node := s.AddNode(models.NodeKindTask, models.Position{X: 10, Y: 10}, "Step")
	other := s.AddNode(models.NodeKindEnd, models.Position{X: 20, Y: 20}, "Done")
	require.True(t, s.Connect(node.ID, other.ID))

	s.SetSelectedNode(node.ID)
	s.DeleteNode(node.ID)

	assert.Nil(t, s.SelectedNode())
	assert.Empty(t, s.Edges(), "incident edges cascade with the node")
}

func TestRemovalChangeClearsSelection(t *testing.T) {
	s, _ := newTestStore(t, fixedResolver("tenant-1"))

	node := s.AddNode(models.NodeKindTask, models.Position{X: 10, Y: 10}, "Step")
	s.SetSelectedNode(node.ID)

	s.ApplyNodeChanges([]graph.NodeChange{{ID: node.ID, Type: graph.ChangeTypeRemove}})

	assert.Nil(t, s.SelectedNode())
}

func TestResetClearsEverything(t *testing.T) {
	s, _ := newTestStore(t, fixedResolver("tenant-1"))

	node := s.AddNode(models.NodeKindStart, models.Position{X: 0, Y: 0}, "Begin")
	s.SetSelectedNode(node.ID)
	s.SetName("Something")

	s.Reset()

	assert.Empty(t, s.WorkflowID())
	assert.Equal(t, store.DefaultWorkflowName, s.Name())
	assert.Equal(t, models.WorkflowStatusDraft, s.Status())
	assert.Empty(t, s.Nodes())
	assert.Empty(t, s.Edges())
	assert.Nil(t, s.SelectedNode())
}

func TestNotificationSelfClears(t *testing.T) {
	s, _ := newTestStore(t, fixedResolver("tenant-1"))

	s.ShowNotification("saved", store.NotificationSuccess)
	require.NotNil(t, s.Notification())

	assert.Eventually(t, func() bool {
		return s.Notification() == nil
	}, time.Second, 5*time.Millisecond)
}

func TestNewerNotificationSurvivesOlderTimer(t *testing.T) {
	s, _ := newTestStore(t, fixedResolver("tenant-1"))

	s.ShowNotification("first", store.NotificationInfo)
	time.Sleep(20 * time.Millisecond)
	s.ShowNotification("second", store.NotificationSuccess)

	// The first banner's timer fires around 50ms; the second must survive it.
	time.Sleep(40 * time.Millisecond)

	notification := s.Notification()
	require.NotNil(t, notification)
	assert.Equal(t, "second", notification.Message)

	assert.Eventually(t, func() bool {
		return s.Notification() == nil
	}, time.Second, 5*time.Millisecond)
}
