package services

import (
	"fmt"
	"time"

	"memo-approval-api/models"
)

const (
	// Workflow status labels (exact match with memos.status)
	StatusPendingDirectorLabel = "Pending Director Approval"
	StatusPendingHRLabel       = "Pending HR Approval"
	StatusFullyApprovedLabel   = "Fully Approved"
)

const narrativeDateLayout = "02/01/2006"

// ProjectStatus derives the aggregate status string from the per-role triples
// and the most recent transition. It is a pure function: given the same memo
// fields and latest log entry it always produces the same label, so the
// cached memos.status column can be rebuilt from the transition log at any
// time.
func ProjectStatus(m *models.Memo, latest *models.MemoTransition) string {
	if latest == nil {
		return StatusPendingDirectorLabel
	}

	role, ok := models.ParseRole(latest.Role)
	if !ok {
		// Transition rows are written from the closed role set, so this only
		// trips on hand-edited data.
		return StatusPendingDirectorLabel
	}

	if models.Action(latest.Action) == models.ActionReject {
		return fmt.Sprintf("%s rejected", role.DisplayName())
	}

	// A standing rejection keeps the memo out of the terminal state even
	// when every destination triple reads approved: the status must agree
	// with the per-role fields that still block other roles' approvals.
	if _, rejected := m.RejectedBy(); !rejected && m.AllDestinationsApproved() {
		return StatusFullyApprovedLabel
	}

	// Director sign-off moves the memo on to HR, mirroring the legacy
	// director shortcut.
	if role == models.RoleDirector {
		return StatusPendingHRLabel
	}
	return fmt.Sprintf("%s approved", role.DisplayName())
}

// ApprovalNarrative renders one human-readable line per role for the memo
// listing, in chain order.
func ApprovalNarrative(m *models.Memo) []string {
	lines := make([]string, 0, len(models.AllRoles))
	for _, role := range models.AllRoles {
		lines = append(lines, narrativeLine(role, m.Approval(role)))
	}
	return lines
}

func narrativeLine(role models.Role, t models.ApprovalTriple) string {
	label := role.DisplayName()
	if t.Approved == nil {
		return fmt.Sprintf("Pending approval from %s", label)
	}
	verb := "approved"
	if !*t.Approved {
		verb = "rejected"
	}
	if t.ApprovedAt != nil {
		return fmt.Sprintf("%s %s on: %s", label, verb, t.ApprovedAt.Format(narrativeDateLayout))
	}
	return fmt.Sprintf("%s %s", label, verb)
}

// CommentsByRole collects each role's free-text comment keyed by role name.
func CommentsByRole(m *models.Memo) map[string]*string {
	comments := make(map[string]*string, len(models.AllRoles))
	for _, role := range models.AllRoles {
		comments[role.String()] = m.Approval(role).Comment
	}
	return comments
}

// FormatTimestamp renders timestamps the way the memo listing expects them.
func FormatTimestamp(t time.Time) string {
	return t.Format("02/01/2006 15:04:05")
}
