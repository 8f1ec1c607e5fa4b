// Package lifecycle implements the review-lifecycle state machine for
// workflows: which role may perform which action at which status, and how
// transition actions move a workflow forward. Everything in this package
// is a pure function over (role, status); callers check capabilities
// before attempting a transition, and the engine never performs an
// unauthorized one.
package lifecycle

import "github.com/procanvas/procanvas/pkg/models"

// Action is something a user can do to a workflow at a given stage.
type Action string

const (
	ActionEdit    Action = "edit"    // Modify the diagram
	ActionSubmit  Action = "submit"  // draft -> pending_review
	ActionApprove Action = "approve" // pending_review -> approved
	ActionPublish Action = "publish" // approved -> published
	ActionComment Action = "comment" // Post to per-node threads
	ActionView    Action = "view"    // Read-only access, including comment threads
)

// Can reports whether role may perform action on a workflow at status.
func Can(role models.Role, status models.WorkflowStatus, action Action) bool {
	for _, allowed := range Capabilities(role, status) {
		if allowed == action {
			return true
		}
	}

	return false
}

// Capabilities returns the actions available to role at status.
//
// Analysts edit, submit and discuss drafts and can keep discussing while
// review is pending. Reviewers act only on pending reviews. Owners follow
// the whole lifecycle read-only and publish approved workflows. Viewers
// only ever see published workflows. Admins can observe every stage; their
// remaining powers are administrative routes outside this engine.
func Capabilities(role models.Role, status models.WorkflowStatus) []Action {
	switch role {
	case models.RoleAnalyst:
		switch status {
		case models.WorkflowStatusDraft:
			return []Action{ActionEdit, ActionSubmit, ActionComment}
		case models.WorkflowStatusPendingReview:
			return []Action{ActionComment}
		case models.WorkflowStatusApproved, models.WorkflowStatusPublished:
			return nil
		}
	case models.RoleReviewer:
		if status == models.WorkflowStatusPendingReview {
			return []Action{ActionApprove, ActionComment}
		}
	case models.RoleOwner:
		switch status {
		case models.WorkflowStatusDraft, models.WorkflowStatusPendingReview, models.WorkflowStatusPublished:
			return []Action{ActionView}
		case models.WorkflowStatusApproved:
			return []Action{ActionPublish}
		}
	case models.RoleViewer:
		if status == models.WorkflowStatusPublished {
			return []Action{ActionView}
		}
	case models.RoleAdmin:
		return []Action{ActionView}
	}

	return nil
}

// CanEdit reports whether role may modify the diagram at status.
func CanEdit(role models.Role, status models.WorkflowStatus) bool {
	return Can(role, status, ActionEdit)
}

// CanComment reports whether role may post comments at status.
func CanComment(role models.Role, status models.WorkflowStatus) bool {
	return Can(role, status, ActionComment)
}

// Transition applies a lifecycle action for role to a workflow currently
// at status. When the (role, status, action) triple is not a valid
// transition the input status is returned unchanged with ok=false; the
// status is never skipped forward or silently changed.
func Transition(role models.Role, status models.WorkflowStatus, action Action) (models.WorkflowStatus, bool) {
	if !Can(role, status, action) {
		return status, false
	}

	switch action {
	case ActionSubmit:
		if status == models.WorkflowStatusDraft {
			return models.WorkflowStatusPendingReview, true
		}
	case ActionApprove:
		if status == models.WorkflowStatusPendingReview {
			return models.WorkflowStatusApproved, true
		}
	case ActionPublish:
		if status == models.WorkflowStatusApproved {
			return models.WorkflowStatusPublished, true
		}
	case ActionEdit, ActionComment, ActionView:
		// Not transitions.
	}

	return status, false
}
