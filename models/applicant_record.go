package models

import (
	"time"
)

// Applicant record statuses. A record transitions pending ->
// {approved, rejected, revision_required}; revision_required and rejected
// allow resubmission back to pending.
const (
	StatusPending          = "pending"
	StatusRevisionRequired = "revision_required"
	StatusApproved         = "approved"
	StatusRejected         = "rejected"
)

// Document slot names. Each applicant record carries exactly these two slots.
const (
	SlotPreEmployment = "pre_employment"
	SlotPolicyRules   = "policy_rules"
)

type ApplicantRecord struct {
	ApplicantID int    `gorm:"primaryKey;column:applicant_id" json:"applicant_id"`
	UserID      int    `gorm:"column:user_id;uniqueIndex" json:"user_id"`
	Status      string `gorm:"column:status" json:"status"`

	PreEmploymentPath     *string `gorm:"column:pre_employment_path" json:"pre_employment_path,omitempty"`
	PreEmploymentFeedback *string `gorm:"column:pre_employment_feedback" json:"pre_employment_feedback,omitempty"`
	PolicyRulesPath       *string `gorm:"column:policy_rules_path" json:"policy_rules_path,omitempty"`
	PolicyRulesFeedback   *string `gorm:"column:policy_rules_feedback" json:"policy_rules_feedback,omitempty"`

	// Overall reviewer note, independent from the per-slot feedback.
	AdminComment *string `gorm:"column:admin_comment" json:"admin_comment,omitempty"`

	// Decision pairs. Each pair is written exactly once per transition into
	// its outcome and survives a later resubmission, so the retention sweep
	// always has an unambiguous timestamp per outcome.
	ApprovedAt *time.Time `gorm:"column:approved_at" json:"approved_at,omitempty"`
	ApprovedBy *int       `gorm:"column:approved_by" json:"approved_by,omitempty"`
	RejectedAt *time.Time `gorm:"column:rejected_at" json:"rejected_at,omitempty"`
	RejectedBy *int       `gorm:"column:rejected_by" json:"rejected_by,omitempty"`

	CreateAt *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt *time.Time `gorm:"column:update_at" json:"update_at"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName overrides
func (ApplicantRecord) TableName() string {
	return "applicant_records"
}

// IsTerminal reports whether the record has received a final decision.
func (r *ApplicantRecord) IsTerminal() bool {
	return r.Status == StatusApproved || r.Status == StatusRejected
}

// SlotPath returns the stored object path for the named slot.
func (r *ApplicantRecord) SlotPath(slot string) *string {
	switch slot {
	case SlotPreEmployment:
		return r.PreEmploymentPath
	case SlotPolicyRules:
		return r.PolicyRulesPath
	}
	return nil
}

// DocumentPaths returns every stored object path referenced by the record.
func (r *ApplicantRecord) DocumentPaths() []string {
	paths := make([]string, 0, 2)
	if r.PreEmploymentPath != nil && *r.PreEmploymentPath != "" {
		paths = append(paths, *r.PreEmploymentPath)
	}
	if r.PolicyRulesPath != nil && *r.PolicyRulesPath != "" {
		paths = append(paths, *r.PolicyRulesPath)
	}
	return paths
}

// DecidedAt returns the decision timestamp matching the record's current
// terminal status, or nil when the record is not terminal.
func (r *ApplicantRecord) DecidedAt() *time.Time {
	switch r.Status {
	case StatusApproved:
		return r.ApprovedAt
	case StatusRejected:
		return r.RejectedAt
	}
	return nil
}
