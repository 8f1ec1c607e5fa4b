package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/procanvas/procanvas/pkg/models"
	"github.com/procanvas/procanvas/pkg/persistence"
)

// ProfileRepository stores one JSON file per user profile.
type ProfileRepository struct {
	root string
}

// NewProfileRepository creates a new profile repository.
func NewProfileRepository(root string) *ProfileRepository {
	return &ProfileRepository{root: root}
}

// GetByID retrieves a profile by user id. A missing profile yields (nil, nil).
func (pr *ProfileRepository) GetByID(_ context.Context, id string) (*models.Profile, error) {
	filePath := filepath.Clean(path.Join(pr.root, "profiles", id+".json"))

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to fetch profile %s: %w", id, err)
	}

	var profile models.Profile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, fmt.Errorf("%w: profile %s: %w", persistence.ErrMalformedRow, id, err)
	}

	return &profile, nil
}

// Save writes a profile, creating it when absent.
func (pr *ProfileRepository) Save(_ context.Context, profile *models.Profile) error {
	err := os.MkdirAll(path.Join(pr.root, "profiles"), 0750)
	if err != nil {
		return fmt.Errorf("failed to create profiles directory: %w", err)
	}

	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = time.Now().UTC()
	}

	data, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal profile %s: %w", profile.ID, err)
	}

	filePath := path.Join(pr.root, "profiles", profile.ID+".json")

	return os.WriteFile(filePath, data, 0600)
}

// TenantRepository stores one JSON file per tenant.
type TenantRepository struct {
	root string
}

// NewTenantRepository creates a new tenant repository.
func NewTenantRepository(root string) *TenantRepository {
	return &TenantRepository{root: root}
}

// GetByID retrieves a tenant by id.
func (tr *TenantRepository) GetByID(_ context.Context, id string) (*models.Tenant, error) {
	filePath := filepath.Clean(path.Join(tr.root, "tenants", id+".json"))

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.ErrTenantNotFound
		}

		return nil, fmt.Errorf("failed to fetch tenant %s: %w", id, err)
	}

	var tenant models.Tenant
	if err := json.Unmarshal(body, &tenant); err != nil {
		return nil, fmt.Errorf("%w: tenant %s: %w", persistence.ErrMalformedRow, id, err)
	}

	return &tenant, nil
}

// Create assigns an identity and writes the tenant.
func (tr *TenantRepository) Create(_ context.Context, tenant *models.Tenant) (*models.Tenant, error) {
	err := os.MkdirAll(path.Join(tr.root, "tenants"), 0750)
	if err != nil {
		return nil, fmt.Errorf("failed to create tenants directory: %w", err)
	}

	created := *tenant
	created.ID = uuid.New().String()

	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	data, err := json.MarshalIndent(&created, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tenant %s: %w", created.ID, err)
	}

	filePath := path.Join(tr.root, "tenants", created.ID+".json")
	if err := os.WriteFile(filePath, data, 0600); err != nil {
		return nil, fmt.Errorf("failed to write tenant %s: %w", created.ID, err)
	}

	return &created, nil
}
