package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procanvas/procanvas/pkg/auth"
	"github.com/procanvas/procanvas/pkg/config"
	"github.com/procanvas/procanvas/pkg/models"
	"github.com/procanvas/procanvas/pkg/persistence/file"
)

func writeBootstrap(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "bootstrap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	return path
}

func TestLoadAndApplyBootstrap(t *testing.T) {
	path := writeBootstrap(t, `
tenants:
  - name: Acme Corp
profiles:
  - id: user-1
    full_name: Ada Analyst
    tenant: Acme Corp
    role: analyst
  - id: user-2
    full_name: Olga Owner
    tenant: Acme Corp
    role: owner
sessions:
  - token: dev-token-1
    user: user-1
    ttl: 1h
  - token: dev-token-2
    user: user-2
`)

	loaded, err := config.LoadBootstrap(path)
	require.NoError(t, err)
	require.Len(t, loaded.Tenants, 1)
	require.Len(t, loaded.Profiles, 2)
	require.Len(t, loaded.Sessions, 2)

	ctx := context.Background()
	p := file.NewPersistence(t.TempDir())
	sessions := auth.NewStaticSessionStore()

	require.NoError(t, loaded.Apply(ctx, p, sessions))

	profile, err := p.ProfileRepository().GetByID(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, models.RoleAnalyst, profile.Role)
	assert.NotEmpty(t, profile.TenantID)

	tenant, err := p.TenantRepository().GetByID(ctx, profile.TenantID)
	require.NoError(t, err)
	assert.Equal(t, "acme-corp", tenant.Slug)

	session, err := sessions.Get(ctx, "dev-token-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", session.UserID)
}

func TestLoadBootstrapRejectsUnknownRole(t *testing.T) {
	path := writeBootstrap(t, `
profiles:
  - id: user-1
    role: superuser
`)

	_, err := config.LoadBootstrap(path)
	assert.ErrorContains(t, err, "unknown role")
}

func TestLoadBootstrapRejectsBadTTL(t *testing.T) {
	path := writeBootstrap(t, `
sessions:
  - token: t
    user: u
    ttl: soon
`)

	_, err := config.LoadBootstrap(path)
	assert.ErrorContains(t, err, "invalid ttl")
}

func TestApplyRejectsUndeclaredTenant(t *testing.T) {
	path := writeBootstrap(t, `
profiles:
  - id: user-1
    tenant: Ghost Inc
    role: viewer
`)

	loaded, err := config.LoadBootstrap(path)
	require.NoError(t, err)

	err = loaded.Apply(context.Background(), file.NewPersistence(t.TempDir()), auth.NewStaticSessionStore())
	assert.ErrorContains(t, err, "undeclared tenant")
}
