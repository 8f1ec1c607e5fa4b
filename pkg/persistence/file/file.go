// Package file provides file-based persistence for workflows, comments,
// profiles and tenants. It backs local development and the test suite.
package file

import (
	"context"
	"os"
	"strings"

	"github.com/procanvas/procanvas/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface using the file system.
type Persistence struct {
	root         string
	workflowRepo *WorkflowRepository
	commentRepo  *CommentRepository
	profileRepo  *ProfileRepository
	tenantRepo   *TenantRepository
}

// NewPersistence creates a new instance of Persistence with the specified root directory.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:         cleanRoot,
		workflowRepo: NewWorkflowRepository(cleanRoot),
		commentRepo:  NewCommentRepository(cleanRoot),
		profileRepo:  NewProfileRepository(cleanRoot),
		tenantRepo:   NewTenantRepository(cleanRoot),
	}
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck checks if the file persistence layer is healthy by verifying the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (fp *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return fp.workflowRepo
}

func (fp *Persistence) CommentRepository() persistence.CommentRepository {
	return fp.commentRepo
}

func (fp *Persistence) ProfileRepository() persistence.ProfileRepository {
	return fp.profileRepo
}

func (fp *Persistence) TenantRepository() persistence.TenantRepository {
	return fp.tenantRepo
}
