package services

import (
	"errors"
	"fmt"
	"time"

	"memo-approval-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrMemoNotFound is returned when the memo id does not exist.
	ErrMemoNotFound = errors.New("memo not found")
	// ErrUnknownRole is returned when the acting role is outside the fixed set.
	ErrUnknownRole = errors.New("unknown role")
)

// ConflictError rejects an approval attempt while another role holds a
// standing rejection on the memo.
type ConflictError struct {
	RejectedBy models.Role
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("memo already rejected by %s", e.RejectedBy.DisplayName())
}

// Decide checks whether the given role may take the given action against the
// memo's current state. It performs no I/O.
//
// Policy: a standing rejection blocks approval by every role except the one
// that rejected (a role may reverse its own decision). Rejection is always
// legal; a second role rejecting simply moves the standing rejection to
// itself, with the earlier action preserved in the transition log.
func Decide(m *models.Memo, role models.Role, action models.Action) error {
	if _, ok := role.Columns(); !ok {
		return ErrUnknownRole
	}
	if action != models.ActionApprove && action != models.ActionReject {
		return fmt.Errorf("invalid action %q", action)
	}

	if action == models.ActionApprove {
		if rejectedBy, ok := m.RejectedBy(); ok && rejectedBy != role {
			return &ConflictError{RejectedBy: rejectedBy}
		}
	}
	return nil
}

// ActionResult carries the fields a caller needs to notify the submitter
// after a committed transition.
type ActionResult struct {
	MemoID        int
	Role          models.Role
	Action        models.Action
	Status        string
	Email         string
	ImageFilename string
	SubmittedBy   string
}

// ApprovalService applies approve/reject actions against the memo store.
type ApprovalService struct {
	db *gorm.DB
}

func NewApprovalService(db *gorm.DB) *ApprovalService {
	return &ApprovalService{db: db}
}

// Apply runs one approve/reject action as a single transaction: lock the memo
// row, validate against current state, overwrite the acting role's triple,
// append a transition record and recompute the cached status. Concurrent
// actions on the same memo serialize on the row lock; actions on different
// memos are independent. Apply never sends notifications.
func (s *ApprovalService) Apply(memoID int, role models.Role, action models.Action, comment string) (*ActionResult, error) {
	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("begin transaction: %w", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	var memo models.Memo
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", memoID).
		First(&memo).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemoNotFound
		}
		return nil, fmt.Errorf("load memo: %w", err)
	}

	if err := Decide(&memo, role, action); err != nil {
		tx.Rollback()
		return nil, err
	}

	now := time.Now()
	approved := action == models.ActionApprove

	transition := models.MemoTransition{
		MemoID:    memo.ID,
		Role:      role.String(),
		Action:    string(action),
		Comment:   optional(comment),
		CreatedAt: now,
	}
	if err := tx.Create(&transition).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("record transition: %w", err)
	}

	memo.SetApproval(role, models.ApprovalTriple{
		Approved:   &approved,
		ApprovedAt: &now,
		Comment:    optional(comment),
	})
	status := ProjectStatus(&memo, &transition)

	cols, _ := role.Columns()
	updates := map[string]interface{}{
		cols.Approved:   approved,
		cols.ApprovedAt: now,
		cols.Comment:    optional(comment),
		"status":        status,
	}
	if err := tx.Model(&models.Memo{}).
		Where("id = ?", memo.ID).
		Updates(updates).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("update memo: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("commit transition: %w", err)
	}

	return &ActionResult{
		MemoID:        memo.ID,
		Role:          role,
		Action:        action,
		Status:        status,
		Email:         memo.Email,
		ImageFilename: memo.ImageFilename,
		SubmittedBy:   memo.SubmittedBy,
	}, nil
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
