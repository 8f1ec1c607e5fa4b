// Package tenant resolves which organization a user belongs to and
// provisions organizations for users that do not have one yet.
package tenant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/procanvas/procanvas/pkg/models"
	"github.com/procanvas/procanvas/pkg/persistence"
)

var ErrTenantNameRequired = errors.New("tenant name is required")

// Resolver answers "which tenant does this user act for". A user with
// no profile, or a profile with no tenant link, resolves to the empty
// string without error; callers decide whether that is fatal.
type Resolver struct {
	profiles persistence.ProfileRepository
	logger   *slog.Logger
}

func NewResolver(profiles persistence.ProfileRepository, logger *slog.Logger) *Resolver {
	return &Resolver{
		profiles: profiles,
		logger:   logger.With("module", "tenant_resolver"),
	}
}

// Resolve returns the tenant id linked to the user's profile.
func (r *Resolver) Resolve(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", nil
	}

	profile, err := r.profiles.GetByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve tenant for user %s: %w", userID, err)
	}

	if profile == nil {
		r.logger.DebugContext(ctx, "user has no profile", "user_id", userID)

		return "", nil
	}

	return profile.TenantID, nil
}

// Provisioner creates a tenant and links the requesting user's profile
// to it in one call, used when a signed-up user has no organization.
type Provisioner struct {
	tenants  persistence.TenantRepository
	profiles persistence.ProfileRepository
	logger   *slog.Logger
}

func NewProvisioner(tenants persistence.TenantRepository, profiles persistence.ProfileRepository, logger *slog.Logger) *Provisioner {
	return &Provisioner{
		tenants:  tenants,
		profiles: profiles,
		logger:   logger.With("module", "tenant_provisioner"),
	}
}

// Provision creates the tenant and points the user's profile at it.
// If the user already belongs to a tenant, that tenant is returned
// unchanged so retries are harmless.
func (p *Provisioner) Provision(ctx context.Context, userID, name string) (*models.Tenant, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrTenantNameRequired
	}

	profile, err := p.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile for user %s: %w", userID, err)
	}

	if profile != nil && profile.TenantID != "" {
		existing, err := p.tenants.GetByID(ctx, profile.TenantID)
		if err != nil {
			return nil, fmt.Errorf("failed to load tenant %s: %w", profile.TenantID, err)
		}

		return existing, nil
	}

	tenant, err := p.tenants.Create(ctx, &models.Tenant{
		Name: strings.TrimSpace(name),
		Slug: Slugify(name),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tenant: %w", err)
	}

	if profile == nil {
		profile = &models.Profile{ID: userID, Role: models.RoleOwner}
	}

	profile.TenantID = tenant.ID
	if profile.Role == "" {
		profile.Role = models.RoleOwner
	}

	if err := p.profiles.Save(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to link profile to tenant %s: %w", tenant.ID, err)
	}

	p.logger.InfoContext(ctx, "provisioned tenant",
		"tenant_id", tenant.ID,
		"user_id", userID,
	)

	return tenant, nil
}

// Slugify lowercases the name and collapses anything that is not a
// letter or digit into single hyphens.
func Slugify(name string) string {
	var builder strings.Builder

	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			builder.WriteRune(r)

			lastHyphen = false
		default:
			if !lastHyphen {
				builder.WriteByte('-')

				lastHyphen = true
			}
		}
	}

	return strings.TrimSuffix(builder.String(), "-")
}
