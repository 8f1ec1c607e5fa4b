// Package config provides bootstrap configuration loading. A bootstrap
// file seeds tenants, profiles and session tokens into a fresh backend,
// which is how single-process deployments with the in-memory session
// store get their users.
package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/procanvas/procanvas/pkg/auth"
	"github.com/procanvas/procanvas/pkg/models"
	"github.com/procanvas/procanvas/pkg/persistence"
	"github.com/procanvas/procanvas/pkg/tenant"
)

// BootstrapFile represents the structure of the bootstrap.yaml file.
type BootstrapFile struct {
	Tenants  []TenantConfig  `yaml:"tenants"`
	Profiles []ProfileConfig `yaml:"profiles"`
	Sessions []SessionConfig `yaml:"sessions"`
}

// TenantConfig declares an organization to create. Profiles reference
// tenants by name, so names must be unique within the file.
type TenantConfig struct {
	Name string `yaml:"name"`
}

// ProfileConfig declares a user profile linked to a tenant by name.
type ProfileConfig struct {
	ID       string `yaml:"id"`
	FullName string `yaml:"full_name"`
	Username string `yaml:"username"`
	Tenant   string `yaml:"tenant"`
	Role     string `yaml:"role"`
}

// SessionConfig declares a pre-issued bearer token for a user. TTL is a
// Go duration string; empty means the default.
type SessionConfig struct {
	Token string `yaml:"token"`
	User  string `yaml:"user"`
	TTL   string `yaml:"ttl"`
}

const defaultSessionTTL = 24 * time.Hour

// LoadBootstrap reads and parses a bootstrap YAML file.
func LoadBootstrap(filepath string) (*BootstrapFile, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read bootstrap file %s: %w", filepath, err)
	}

	var file BootstrapFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse bootstrap YAML: %w", err)
	}

	for _, profile := range file.Profiles {
		if profile.ID == "" {
			return nil, fmt.Errorf("bootstrap profile without an id")
		}

		if _, ok := models.ParseRole(profile.Role); !ok {
			return nil, fmt.Errorf("bootstrap profile %s has unknown role %q", profile.ID, profile.Role)
		}
	}

	for _, session := range file.Sessions {
		if session.Token == "" || session.User == "" {
			return nil, fmt.Errorf("bootstrap session needs both token and user")
		}

		if session.TTL != "" {
			if _, err := time.ParseDuration(session.TTL); err != nil {
				return nil, fmt.Errorf("bootstrap session for %s has invalid ttl: %w", session.User, err)
			}
		}
	}

	return &file, nil
}

// Apply creates the declared tenants, profiles and sessions. It is meant
// for empty backends; existing profiles with the same IDs are
// overwritten.
func (f *BootstrapFile) Apply(ctx context.Context, p persistence.Persistence, sessions auth.SessionStore) error {
	tenantIDs := make(map[string]string, len(f.Tenants))

	for _, tc := range f.Tenants {
		created, err := p.TenantRepository().Create(ctx, &models.Tenant{
			Name: tc.Name,
			Slug: tenant.Slugify(tc.Name),
		})
		if err != nil {
			return fmt.Errorf("failed to create tenant %q: %w", tc.Name, err)
		}

		tenantIDs[tc.Name] = created.ID
	}

	for _, pc := range f.Profiles {
		tenantID := ""

		if pc.Tenant != "" {
			id, ok := tenantIDs[pc.Tenant]
			if !ok {
				return fmt.Errorf("profile %s references undeclared tenant %q", pc.ID, pc.Tenant)
			}

			tenantID = id
		}

		role, _ := models.ParseRole(pc.Role)

		err := p.ProfileRepository().Save(ctx, &models.Profile{
			ID:       pc.ID,
			FullName: pc.FullName,
			Username: pc.Username,
			TenantID: tenantID,
			Role:     role,
		})
		if err != nil {
			return fmt.Errorf("failed to save profile %s: %w", pc.ID, err)
		}
	}

	for _, sc := range f.Sessions {
		ttl := defaultSessionTTL
		if sc.TTL != "" {
			parsed, err := time.ParseDuration(sc.TTL)
			if err != nil {
				return fmt.Errorf("session for %s has invalid ttl: %w", sc.User, err)
			}

			ttl = parsed
		}

		session := &auth.Session{
			UserID:    sc.User,
			IssuedAt:  time.Now().UTC(),
			ExpiresAt: time.Now().UTC().Add(ttl),
		}

		if err := sessions.Put(ctx, sc.Token, session, ttl); err != nil {
			return fmt.Errorf("failed to store session for %s: %w", sc.User, err)
		}
	}

	return nil
}
