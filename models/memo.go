package models

import (
	"encoding/json"
	"strings"
	"time"
)

// Role is one of the fixed departmental approvers. The set is closed: every
// role maps to three typed columns on the memos table, and storage column
// names are never derived from request input.
type Role string

const (
	RoleDirector    Role = "director"
	RoleHR          Role = "hr"
	RoleCommercial  Role = "commercial"
	RoleAccounts    Role = "accounts"
	RoleICT         Role = "ict"
	RoleEngineering Role = "engineering"
	RoleRegistry    Role = "registry"
)

// AllRoles lists every approver role in chain order.
var AllRoles = []Role{
	RoleDirector,
	RoleHR,
	RoleCommercial,
	RoleAccounts,
	RoleICT,
	RoleEngineering,
	RoleRegistry,
}

var roleDisplayNames = map[Role]string{
	RoleDirector:    "Director",
	RoleHR:          "HR",
	RoleCommercial:  "Commercial",
	RoleAccounts:    "Accounts",
	RoleICT:         "Ict",
	RoleEngineering: "Engineering",
	RoleRegistry:    "Registry",
}

// ParseRole resolves a case-insensitive role name against the fixed role set.
func ParseRole(name string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(name)))
	_, ok := roleDisplayNames[r]
	return r, ok
}

// DisplayName returns the human-readable department label used in statuses,
// emails and the view narrative.
func (r Role) DisplayName() string {
	if label, ok := roleDisplayNames[r]; ok {
		return label
	}
	return string(r)
}

func (r Role) String() string {
	return string(r)
}

// RoleColumns names the three memo columns owned by one role.
type RoleColumns struct {
	Approved   string
	ApprovedAt string
	Comment    string
}

// Columns returns the closed role-to-column mapping. Every entry is a literal
// so no column name can ever be built from untrusted input.
func (r Role) Columns() (RoleColumns, bool) {
	switch r {
	case RoleDirector:
		return RoleColumns{"director_approved", "director_approved_at", "director_comment"}, true
	case RoleHR:
		return RoleColumns{"hr_approved", "hr_approved_at", "hr_comment"}, true
	case RoleCommercial:
		return RoleColumns{"commercial_approved", "commercial_approved_at", "commercial_comment"}, true
	case RoleAccounts:
		return RoleColumns{"accounts_approved", "accounts_approved_at", "accounts_comment"}, true
	case RoleICT:
		return RoleColumns{"ict_approved", "ict_approved_at", "ict_comment"}, true
	case RoleEngineering:
		return RoleColumns{"engineering_approved", "engineering_approved_at", "engineering_comment"}, true
	case RoleRegistry:
		return RoleColumns{"registry_approved", "registry_approved_at", "registry_comment"}, true
	}
	return RoleColumns{}, false
}

// ApprovalTriple is one role's (flag, timestamp, comment) state on a memo.
// A nil Approved means the role has not acted yet.
type ApprovalTriple struct {
	Approved   *bool
	ApprovedAt *time.Time
	Comment    *string
}

// Acted reports whether the role has taken any action on the memo.
func (t ApprovalTriple) Acted() bool {
	return t.Approved != nil
}

// Memo is the central entity: one row per submission, with one approval
// triple per role in the fixed set.
type Memo struct {
	ID            int       `gorm:"primaryKey;column:id" json:"id"`
	SubmittedBy   string    `gorm:"column:submitted_by" json:"submitted_by"`
	Department    string    `gorm:"column:department" json:"department"`
	Destination   string    `gorm:"column:destination" json:"destination"`
	Email         string    `gorm:"column:email" json:"email"`
	ImageFilename string    `gorm:"column:image_filename" json:"image_filename"`
	Status        string    `gorm:"column:status" json:"status"`
	CreatedAt     time.Time `gorm:"column:created_at" json:"created_at"`

	DirectorApproved      *bool      `gorm:"column:director_approved" json:"director_approved"`
	DirectorApprovedAt    *time.Time `gorm:"column:director_approved_at" json:"director_approved_at"`
	DirectorComment       *string    `gorm:"column:director_comment" json:"director_comment"`
	HRApproved            *bool      `gorm:"column:hr_approved" json:"hr_approved"`
	HRApprovedAt          *time.Time `gorm:"column:hr_approved_at" json:"hr_approved_at"`
	HRComment             *string    `gorm:"column:hr_comment" json:"hr_comment"`
	CommercialApproved    *bool      `gorm:"column:commercial_approved" json:"commercial_approved"`
	CommercialApprovedAt  *time.Time `gorm:"column:commercial_approved_at" json:"commercial_approved_at"`
	CommercialComment     *string    `gorm:"column:commercial_comment" json:"commercial_comment"`
	AccountsApproved      *bool      `gorm:"column:accounts_approved" json:"accounts_approved"`
	AccountsApprovedAt    *time.Time `gorm:"column:accounts_approved_at" json:"accounts_approved_at"`
	AccountsComment       *string    `gorm:"column:accounts_comment" json:"accounts_comment"`
	ICTApproved           *bool      `gorm:"column:ict_approved" json:"ict_approved"`
	ICTApprovedAt         *time.Time `gorm:"column:ict_approved_at" json:"ict_approved_at"`
	ICTComment            *string    `gorm:"column:ict_comment" json:"ict_comment"`
	EngineeringApproved   *bool      `gorm:"column:engineering_approved" json:"engineering_approved"`
	EngineeringApprovedAt *time.Time `gorm:"column:engineering_approved_at" json:"engineering_approved_at"`
	EngineeringComment    *string    `gorm:"column:engineering_comment" json:"engineering_comment"`
	RegistryApproved      *bool      `gorm:"column:registry_approved" json:"registry_approved"`
	RegistryApprovedAt    *time.Time `gorm:"column:registry_approved_at" json:"registry_approved_at"`
	RegistryComment       *string    `gorm:"column:registry_comment" json:"registry_comment"`
}

// TableName overrides
func (Memo) TableName() string {
	return "memos"
}

// Approval returns the triple for the given role. Unknown roles read as
// not-acted.
func (m *Memo) Approval(r Role) ApprovalTriple {
	switch r {
	case RoleDirector:
		return ApprovalTriple{m.DirectorApproved, m.DirectorApprovedAt, m.DirectorComment}
	case RoleHR:
		return ApprovalTriple{m.HRApproved, m.HRApprovedAt, m.HRComment}
	case RoleCommercial:
		return ApprovalTriple{m.CommercialApproved, m.CommercialApprovedAt, m.CommercialComment}
	case RoleAccounts:
		return ApprovalTriple{m.AccountsApproved, m.AccountsApprovedAt, m.AccountsComment}
	case RoleICT:
		return ApprovalTriple{m.ICTApproved, m.ICTApprovedAt, m.ICTComment}
	case RoleEngineering:
		return ApprovalTriple{m.EngineeringApproved, m.EngineeringApprovedAt, m.EngineeringComment}
	case RoleRegistry:
		return ApprovalTriple{m.RegistryApproved, m.RegistryApprovedAt, m.RegistryComment}
	}
	return ApprovalTriple{}
}

// SetApproval overwrites the triple for the given role. Each action replaces
// all three fields together.
func (m *Memo) SetApproval(r Role, t ApprovalTriple) {
	switch r {
	case RoleDirector:
		m.DirectorApproved, m.DirectorApprovedAt, m.DirectorComment = t.Approved, t.ApprovedAt, t.Comment
	case RoleHR:
		m.HRApproved, m.HRApprovedAt, m.HRComment = t.Approved, t.ApprovedAt, t.Comment
	case RoleCommercial:
		m.CommercialApproved, m.CommercialApprovedAt, m.CommercialComment = t.Approved, t.ApprovedAt, t.Comment
	case RoleAccounts:
		m.AccountsApproved, m.AccountsApprovedAt, m.AccountsComment = t.Approved, t.ApprovedAt, t.Comment
	case RoleICT:
		m.ICTApproved, m.ICTApprovedAt, m.ICTComment = t.Approved, t.ApprovedAt, t.Comment
	case RoleEngineering:
		m.EngineeringApproved, m.EngineeringApprovedAt, m.EngineeringComment = t.Approved, t.ApprovedAt, t.Comment
	case RoleRegistry:
		m.RegistryApproved, m.RegistryApprovedAt, m.RegistryComment = t.Approved, t.ApprovedAt, t.Comment
	}
}

// RejectedBy returns the role holding a standing rejection, if any. At most
// one role blocks the workflow; when several triples read rejected, chain
// order decides which one is reported.
func (m *Memo) RejectedBy() (Role, bool) {
	for _, r := range AllRoles {
		t := m.Approval(r)
		if t.Approved != nil && !*t.Approved {
			return r, true
		}
	}
	return "", false
}

// DestinationRoles resolves the persisted destination value against the fixed
// role set. Unknown names are dropped.
func (m *Memo) DestinationRoles() []Role {
	roles := make([]Role, 0, len(AllRoles))
	for _, name := range ParseDestinationList(m.Destination) {
		if r, ok := ParseRole(name); ok {
			roles = append(roles, r)
		}
	}
	return roles
}

// AllDestinationsApproved reports whether every destination role has an
// approved triple. False when the memo has no resolvable destination.
func (m *Memo) AllDestinationsApproved() bool {
	roles := m.DestinationRoles()
	if len(roles) == 0 {
		return false
	}
	for _, r := range roles {
		t := m.Approval(r)
		if t.Approved == nil || !*t.Approved {
			return false
		}
	}
	return true
}

// ParseDestinationList accepts either a JSON array of role names or a single
// bare name and returns the trimmed, de-duplicated names in order.
func ParseDestinationList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}
	}

	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		names = []string{raw}
	}

	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		lower := strings.ToLower(trimmed)
		if seen[lower] {
			continue
		}
		seen[lower] = true
		out = append(out, trimmed)
	}
	return out
}
