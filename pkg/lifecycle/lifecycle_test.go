package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/procanvas/procanvas/pkg/models"
)

var allRoles = []models.Role{
	models.RoleAdmin,
	models.RoleAnalyst,
	models.RoleReviewer,
	models.RoleOwner,
	models.RoleViewer,
}

var allStatuses = []models.WorkflowStatus{
	models.WorkflowStatusDraft,
	models.WorkflowStatusPendingReview,
	models.WorkflowStatusApproved,
	models.WorkflowStatusPublished,
}

func TestCapabilityTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		role   models.Role
		status models.WorkflowStatus
		want   []Action
	}{
		{models.RoleAnalyst, models.WorkflowStatusDraft, []Action{ActionEdit, ActionSubmit, ActionComment}},
		{models.RoleAnalyst, models.WorkflowStatusPendingReview, []Action{ActionComment}},
		{models.RoleAnalyst, models.WorkflowStatusApproved, nil},
		{models.RoleAnalyst, models.WorkflowStatusPublished, nil},
		{models.RoleReviewer, models.WorkflowStatusDraft, nil},
		{models.RoleReviewer, models.WorkflowStatusPendingReview, []Action{ActionApprove, ActionComment}},
		{models.RoleReviewer, models.WorkflowStatusApproved, nil},
		{models.RoleOwner, models.WorkflowStatusDraft, []Action{ActionView}},
		{models.RoleOwner, models.WorkflowStatusPendingReview, []Action{ActionView}},
		{models.RoleOwner, models.WorkflowStatusApproved, []Action{ActionPublish}},
		{models.RoleOwner, models.WorkflowStatusPublished, []Action{ActionView}},
		{models.RoleViewer, models.WorkflowStatusDraft, nil},
		{models.RoleViewer, models.WorkflowStatusPublished, []Action{ActionView}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Capabilities(tt.role, tt.status), "%s @ %s", tt.role, tt.status)
	}
}

func TestTransitions(t *testing.T) {
	t.Parallel()

	status, ok := Transition(models.RoleAnalyst, models.WorkflowStatusDraft, ActionSubmit)
	assert.True(t, ok)
	assert.Equal(t, models.WorkflowStatusPendingReview, status)

	status, ok = Transition(models.RoleReviewer, status, ActionApprove)
	assert.True(t, ok)
	assert.Equal(t, models.WorkflowStatusApproved, status)

	status, ok = Transition(models.RoleOwner, status, ActionPublish)
	assert.True(t, ok)
	assert.Equal(t, models.WorkflowStatusPublished, status)
}

// Every (role, status, action) triple outside the three valid transitions
// must leave the status untouched.
func TestInvalidTransitionsAreNoOps(t *testing.T) {
	t.Parallel()

	valid := func(role models.Role, status models.WorkflowStatus, action Action) bool {
		switch {
		case role == models.RoleAnalyst && status == models.WorkflowStatusDraft && action == ActionSubmit:
			return true
		case role == models.RoleReviewer && status == models.WorkflowStatusPendingReview && action == ActionApprove:
			return true
		case role == models.RoleOwner && status == models.WorkflowStatusApproved && action == ActionPublish:
			return true
		}

		return false
	}

	for _, role := range allRoles {
		for _, status := range allStatuses {
			for _, action := range []Action{ActionSubmit, ActionApprove, ActionPublish} {
				if valid(role, status, action) {
					continue
				}

				got, ok := Transition(role, status, action)
				assert.False(t, ok, "%s %s @ %s", role, action, status)
				assert.Equal(t, status, got, "%s %s @ %s", role, action, status)
			}
		}
	}
}

func TestOwnerCannotPublishDraft(t *testing.T) {
	t.Parallel()

	status, ok := Transition(models.RoleOwner, models.WorkflowStatusDraft, ActionPublish)
	assert.False(t, ok)
	assert.Equal(t, models.WorkflowStatusDraft, status)
}

func TestCanHelpers(t *testing.T) {
	t.Parallel()

	assert.True(t, CanEdit(models.RoleAnalyst, models.WorkflowStatusDraft))
	assert.False(t, CanEdit(models.RoleAnalyst, models.WorkflowStatusPendingReview))
	assert.False(t, CanEdit(models.RoleViewer, models.WorkflowStatusDraft))

	assert.True(t, CanComment(models.RoleAnalyst, models.WorkflowStatusPendingReview))
	assert.True(t, CanComment(models.RoleReviewer, models.WorkflowStatusPendingReview))
	assert.False(t, CanComment(models.RoleOwner, models.WorkflowStatusDraft))
	assert.False(t, CanComment(models.RoleViewer, models.WorkflowStatusPublished))
}
