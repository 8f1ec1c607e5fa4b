package postgresql_test

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/procanvas/procanvas/pkg/models"
	"github.com/procanvas/procanvas/pkg/persistence"
	"github.com/procanvas/procanvas/pkg/persistence/postgresql"
)

var postgresContainer *postgres.PostgresContainer

func dropDb(ctx context.Context, t *testing.T, databaseURL string) {
	t.Helper()

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	// Drop tables in reverse dependency order (children first, parents last)
	for _, table := range []string{"comments", "workflows", "profiles", "tenants", "schema_migrations"} {
		_, err = db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE")
		require.NoError(t, err)
	}

	err = db.Close()
	require.NoError(t, err)
}

func setupTestDB(t *testing.T) (*postgresql.Persistence, context.Context) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)

	if postgresContainer == nil || !postgresContainer.IsRunning() {
		var err error

		postgresContainer, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("procanvas_test"),
			postgres.WithUsername("procanvas"),
			postgres.WithPassword("procanvas"),
			postgres.BasicWaitStrategies(),
		)
		require.NoError(t, err)
	}

	databaseURL, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	dropDb(ctx, t, databaseURL)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
	require.NoError(t, err)

	t.Cleanup(func() {
		dropDb(ctx, t, databaseURL)

		err = p.Close(ctx)
		require.NoError(t, err)

		cancel()
	})

	return p, ctx
}

func seedTenantAndProfile(ctx context.Context, t *testing.T, p *postgresql.Persistence) (*models.Tenant, *models.Profile) {
	t.Helper()

	tenant, err := p.TenantRepository().Create(ctx, &models.Tenant{Name: "Acme", Slug: "acme"})
	require.NoError(t, err)

	profile := &models.Profile{ID: "user-1", FullName: "Ada Analyst", TenantID: tenant.ID, Role: models.RoleAnalyst}
	require.NoError(t, p.ProfileRepository().Save(ctx, profile))

	return tenant, profile
}

func TestWorkflowRoundTrip(t *testing.T) {
	p, ctx := setupTestDB(t)
	tenant, profile := seedTenantAndProfile(ctx, t, p)

	created, err := p.WorkflowRepository().Create(ctx, &models.Workflow{
		TenantID:  tenant.ID,
		Name:      "Onboarding",
		Status:    models.WorkflowStatusDraft,
		CreatedBy: profile.ID,
		Nodes: []*models.Node{
			{ID: "n1", Kind: models.NodeKindStart, Position: models.Position{X: 50, Y: 50}, Data: models.NodeData{Label: "Begin"}},
			{ID: "n2", Kind: models.NodeKindTask, Position: models.Position{X: 200, Y: 50}, Data: models.NodeData{Label: "Work"}},
		},
		Edges: []*models.Edge{{ID: "e1", Source: "n1", Target: "n2"}},
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	fetched, err := p.WorkflowRepository().GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched)

	assert.Equal(t, "Onboarding", fetched.Name)
	require.Len(t, fetched.Nodes, 2)
	require.Len(t, fetched.Edges, 1)
	assert.Equal(t, models.NodeKindStart, fetched.Nodes[0].Kind)
	assert.Equal(t, "n1", fetched.Edges[0].Source)

	fetched.Status = models.WorkflowStatusPendingReview
	require.NoError(t, p.WorkflowRepository().Update(ctx, fetched))

	updated, err := p.WorkflowRepository().GetByID(ctx, fetched.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowStatusPendingReview, updated.Status)
}

func TestWorkflowListPublishedOnly(t *testing.T) {
	p, ctx := setupTestDB(t)
	tenant, profile := seedTenantAndProfile(ctx, t, p)

	for _, workflow := range []*models.Workflow{
		{TenantID: tenant.ID, Name: "draft", Status: models.WorkflowStatusDraft, CreatedBy: profile.ID},
		{TenantID: tenant.ID, Name: "live", Status: models.WorkflowStatusPublished, IsPublished: true, CreatedBy: profile.ID},
	} {
		_, err := p.WorkflowRepository().Create(ctx, workflow)
		require.NoError(t, err)
	}

	result, err := p.WorkflowRepository().ListWorkflows(ctx, persistence.ListWorkflowsOptions{
		TenantID:      tenant.ID,
		PublishedOnly: true,
	})
	require.NoError(t, err)
	require.Len(t, result.Workflows, 1)
	assert.Equal(t, "live", result.Workflows[0].Name)
}

func TestCommentThreadOrdering(t *testing.T) {
	p, ctx := setupTestDB(t)
	tenant, profile := seedTenantAndProfile(ctx, t, p)

	workflow, err := p.WorkflowRepository().Create(ctx, &models.Workflow{
		TenantID: tenant.ID, Name: "wf", Status: models.WorkflowStatusDraft, CreatedBy: profile.ID,
	})
	require.NoError(t, err)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, content := range []string{"first", "second"} {
		_, err := p.CommentRepository().Create(ctx, &models.Comment{
			WorkflowID: workflow.ID,
			NodeID:     "n1",
			AuthorID:   profile.ID,
			AuthorName: profile.FullName,
			Content:    content,
			CreatedAt:  base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}

	comments, err := p.CommentRepository().ListByNode(ctx, workflow.ID, "n1")
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Content)
	assert.Equal(t, "second", comments[1].Content)
}

func TestProfileRoleNormalization(t *testing.T) {
	p, ctx := setupTestDB(t)
	seedTenantAndProfile(ctx, t, p)

	// Legacy rows written by older releases carry the "tenant" role string.
	db, err := sql.Open("postgres", mustConnectionString(ctx, t))
	require.NoError(t, err)

	defer func() { require.NoError(t, db.Close()) }()

	_, err = db.ExecContext(ctx,
		"INSERT INTO profiles (id, full_name, role) VALUES ($1, $2, $3)",
		"legacy-user", "Old Timer", "tenant")
	require.NoError(t, err)

	profile, err := p.ProfileRepository().GetByID(ctx, "legacy-user")
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, models.RoleAnalyst, profile.Role)

	missing, err := p.ProfileRepository().GetByID(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func mustConnectionString(ctx context.Context, t *testing.T) string {
	t.Helper()

	databaseURL, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	return databaseURL
}
