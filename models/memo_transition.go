package models

import "time"

// Action is what a role did to a memo.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

// MemoTransition is one immutable entry in the per-memo action log. A row is
// appended for every state-machine action, so earlier decisions never
// silently disappear when a role re-acts; the cached memo status is always a
// projection of the latest row.
type MemoTransition struct {
	TransitionID int       `gorm:"primaryKey;column:transition_id" json:"transition_id"`
	MemoID       int       `gorm:"column:memo_id" json:"memo_id"`
	Role         string    `gorm:"column:role" json:"role"`
	Action       string    `gorm:"column:action" json:"action"`
	Comment      *string   `gorm:"column:comment" json:"comment"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName specifies the table name for MemoTransition.
func (MemoTransition) TableName() string {
	return "memo_transitions"
}
