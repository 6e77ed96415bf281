package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"onboarding-portal-api/models"

	"gorm.io/gorm"
)

// RecordStore is the persistence capability for applicant records. The
// status-guarded update is the serialization point for transitions: the write
// only lands if the status still equals the one the writer read, so of two
// writers racing on the same record exactly one sees its guard hold.
type RecordStore interface {
	GetByID(ctx context.Context, recordID int) (*models.ApplicantRecord, error)
	GetActiveByUser(ctx context.Context, userID int) (*models.ApplicantRecord, error)
	Create(ctx context.Context, rec *models.ApplicantRecord) error
	UpdateWhereStatus(ctx context.Context, rec *models.ApplicantRecord, observed string) error
	Delete(ctx context.Context, recordID int) error
	ListAll(ctx context.Context) ([]models.ApplicantRecord, error)
	ListDecidedBefore(ctx context.Context, cutoff time.Time) ([]models.ApplicantRecord, error)
}

// GormRecordStore implements RecordStore over the shared MySQL database.
type GormRecordStore struct {
	db *gorm.DB
}

func NewRecordStore(db *gorm.DB) *GormRecordStore {
	return &GormRecordStore{db: db}
}

func (s *GormRecordStore) GetByID(ctx context.Context, recordID int) (*models.ApplicantRecord, error) {
	var rec models.ApplicantRecord
	err := s.db.WithContext(ctx).
		Where("applicant_id = ?", recordID).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *GormRecordStore) GetActiveByUser(ctx context.Context, userID int) (*models.ApplicantRecord, error) {
	var rec models.ApplicantRecord
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *GormRecordStore) Create(ctx context.Context, rec *models.ApplicantRecord) error {
	err := s.db.WithContext(ctx).Create(rec).Error
	if err == nil {
		return nil
	}
	// The unique index on user_id backstops the one-active-record-per-user
	// check in the service.
	if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "Duplicate entry") {
		return ErrConflict
	}
	return err
}

// UpdateWhereStatus writes every mutable column of rec, guarded by the
// record's status still equaling observed, the value read before building the
// update. Returns ErrConflict when the guard does not hold (another write
// landed in between).
func (s *GormRecordStore) UpdateWhereStatus(ctx context.Context, rec *models.ApplicantRecord, observed string) error {
	res := s.db.WithContext(ctx).
		Model(&models.ApplicantRecord{}).
		Where("applicant_id = ? AND status = ?", rec.ApplicantID, observed).
		Updates(map[string]interface{}{
			"status":                  rec.Status,
			"pre_employment_path":     rec.PreEmploymentPath,
			"pre_employment_feedback": rec.PreEmploymentFeedback,
			"policy_rules_path":       rec.PolicyRulesPath,
			"policy_rules_feedback":   rec.PolicyRulesFeedback,
			"admin_comment":           rec.AdminComment,
			"approved_at":             rec.ApprovedAt,
			"approved_by":             rec.ApprovedBy,
			"rejected_at":             rec.RejectedAt,
			"rejected_by":             rec.RejectedBy,
			"update_at":               rec.UpdateAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

func (s *GormRecordStore) Delete(ctx context.Context, recordID int) error {
	res := s.db.WithContext(ctx).
		Where("applicant_id = ?", recordID).
		Delete(&models.ApplicantRecord{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormRecordStore) ListAll(ctx context.Context) ([]models.ApplicantRecord, error) {
	var recs []models.ApplicantRecord
	err := s.db.WithContext(ctx).
		Order("create_at DESC").
		Find(&recs).Error
	return recs, err
}

// ListDecidedBefore selects terminal records whose matching decision
// timestamp is older than cutoff. Used by the retention sweep.
func (s *GormRecordStore) ListDecidedBefore(ctx context.Context, cutoff time.Time) ([]models.ApplicantRecord, error) {
	var recs []models.ApplicantRecord
	err := s.db.WithContext(ctx).
		Where("(status = ? AND approved_at < ?) OR (status = ? AND rejected_at < ?)",
			models.StatusApproved, cutoff, models.StatusRejected, cutoff).
		Find(&recs).Error
	return recs, err
}
