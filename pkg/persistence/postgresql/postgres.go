// Package postgresql provides PostgreSQL persistence for workflows,
// comments, profiles and tenants.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq" // postgres driver

	"github.com/procanvas/procanvas/pkg/persistence"
	"github.com/procanvas/procanvas/pkg/persistence/sqlbase"
)

// Persistence implements the persistence layer for PostgreSQL.
type Persistence struct {
	db           *sql.DB
	logger       *slog.Logger
	workflowRepo *WorkflowRepository
	commentRepo  *CommentRepository
	profileRepo  *ProfileRepository
	tenantRepo   *TenantRepository
}

// NewPersistence creates a new PostgreSQL persistence layer and runs
// pending schema migrations.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	postgres := &Persistence{
		db:           database,
		logger:       logger,
		workflowRepo: NewWorkflowRepository(database, logger),
		commentRepo:  NewCommentRepository(database, logger),
		profileRepo:  NewProfileRepository(database),
		tenantRepo:   NewTenantRepository(database),
	}

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return postgres, nil
}

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

func (p *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return p.workflowRepo
}

func (p *Persistence) CommentRepository() persistence.CommentRepository {
	return p.commentRepo
}

func (p *Persistence) ProfileRepository() persistence.ProfileRepository {
	return p.profileRepo
}

func (p *Persistence) TenantRepository() persistence.TenantRepository {
	return p.tenantRepo
}
