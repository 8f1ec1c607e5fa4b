package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/procanvas/procanvas/pkg/models"
	"github.com/procanvas/procanvas/pkg/persistence"
)

// ProfileRepository handles profile-related database operations.
type ProfileRepository struct {
	db *sql.DB
}

// NewProfileRepository creates a new profile repository.
func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetByID returns a profile by user id, or (nil, nil) when missing. Role
// strings are normalized here so legacy aliases never reach the core.
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	query := `
		SELECT
			id
		  , full_name
		  , username
		  , tenant_id
		  , role
		  , created_at
		FROM profiles
		WHERE id = $1
	`

	var (
		profile  models.Profile
		fullName sql.NullString
		username sql.NullString
		tenantID sql.NullString
		rawRole  string
	)

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&profile.ID,
		&fullName,
		&username,
		&tenantID,
		&rawRole,
		&profile.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to fetch profile %s: %w", id, err)
	}

	profile.FullName = fullName.String
	profile.Username = username.String
	profile.TenantID = tenantID.String

	role, ok := models.ParseRole(rawRole)
	if !ok {
		return nil, fmt.Errorf("%w: profile %s has unknown role %q", persistence.ErrMalformedRow, id, rawRole)
	}

	profile.Role = role

	return &profile, nil
}

// Save upserts a profile keyed by user id.
func (r *ProfileRepository) Save(ctx context.Context, profile *models.Profile) error {
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO profiles (id, full_name, username, tenant_id, role, created_at)
		VALUES ($1, $2, $3, NULLIF($4, '')::uuid, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET full_name = EXCLUDED.full_name, username = EXCLUDED.username,
		    tenant_id = EXCLUDED.tenant_id, role = EXCLUDED.role
	`

	_, err := r.db.ExecContext(ctx, query,
		profile.ID,
		profile.FullName,
		profile.Username,
		profile.TenantID,
		string(profile.Role),
		profile.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save profile %s: %w", profile.ID, err)
	}

	return nil
}

// TenantRepository handles tenant-related database operations.
type TenantRepository struct {
	db *sql.DB
}

// NewTenantRepository creates a new tenant repository.
func NewTenantRepository(db *sql.DB) *TenantRepository {
	return &TenantRepository{db: db}
}

// GetByID returns a tenant by id.
func (r *TenantRepository) GetByID(ctx context.Context, id string) (*models.Tenant, error) {
	query := "SELECT id, name, slug, created_at FROM tenants WHERE id = $1"

	var tenant models.Tenant

	err := r.db.QueryRowContext(ctx, query, id).Scan(&tenant.ID, &tenant.Name, &tenant.Slug, &tenant.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrTenantNotFound
		}

		return nil, fmt.Errorf("failed to fetch tenant %s: %w", id, err)
	}

	return &tenant, nil
}

// Create inserts a tenant, assigning its identity.
func (r *TenantRepository) Create(ctx context.Context, tenant *models.Tenant) (*models.Tenant, error) {
	created := *tenant
	created.ID = uuid.New().String()

	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	query := "INSERT INTO tenants (id, name, slug, created_at) VALUES ($1, $2, $3, $4)"

	_, err := r.db.ExecContext(ctx, query, created.ID, created.Name, created.Slug, created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create tenant %s: %w", created.Name, err)
	}

	return &created, nil
}
