package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"onboarding-portal-api/models"

	"github.com/google/uuid"
)

// Decision outcomes accepted by Decide.
const (
	OutcomeApproved         = models.StatusApproved
	OutcomeRejected         = models.StatusRejected
	OutcomeRevisionRequired = models.StatusRevisionRequired
)

// DocumentUpload carries one document slot's new content into Submit or
// Resubmit.
type DocumentUpload struct {
	Slot     string
	Filename string
	Size     int64
	Content  io.Reader
}

// DecisionInput is an administrator's review of an applicant record.
type DecisionInput struct {
	Outcome               string
	Comment               string
	PreEmploymentFeedback string
	PolicyRulesFeedback   string
}

// ReviewService is the applicant record state machine. All status mutations
// go through here; collaborators (storage, roles, notification) are injected.
type ReviewService struct {
	records  RecordStore
	store    ObjectStore
	roles    RoleDirectory
	notifier Notifier
	now      func() time.Time
}

func NewReviewService(records RecordStore, store ObjectStore, roles RoleDirectory, notifier Notifier) *ReviewService {
	return &ReviewService{
		records:  records,
		store:    store,
		roles:    roles,
		notifier: notifier,
		now:      time.Now,
	}
}

// Submit creates the applicant's record from their first document upload.
// Both slots are required; a user with an active record gets ErrConflict.
func (s *ReviewService) Submit(ctx context.Context, userID int, uploads []DocumentUpload) (*models.ApplicantRecord, error) {
	bySlot, err := indexUploads(uploads)
	if err != nil {
		return nil, err
	}
	for _, slot := range []string{models.SlotPreEmployment, models.SlotPolicyRules} {
		if _, ok := bySlot[slot]; !ok {
			return nil, fmt.Errorf("%w: document slot %q is required", ErrValidation, slot)
		}
	}

	if _, err := s.records.GetActiveByUser(ctx, userID); err == nil {
		return nil, fmt.Errorf("%w: an active submission already exists", ErrConflict)
	} else if !isNotFound(err) {
		return nil, err
	}

	// Upload before persisting anything, so a storage failure never leaves
	// a record referencing a missing object.
	paths, err := s.uploadSlots(ctx, userID, bySlot)
	if err != nil {
		return nil, err
	}

	now := s.now()
	rec := &models.ApplicantRecord{
		UserID:   userID,
		Status:   models.StatusPending,
		CreateAt: &now,
		UpdateAt: &now,
	}
	applySlotPaths(rec, paths)

	if err := s.records.Create(ctx, rec); err != nil {
		s.discardObjects(ctx, pathValues(paths))
		if isConflict(err) {
			return nil, fmt.Errorf("%w: an active submission already exists", ErrConflict)
		}
		return nil, err
	}
	return rec, nil
}

// Decide applies an administrator's outcome to a record in pending or
// revision_required. Approval promotes the applicant to employee before
// returning; a failed promotion rolls the status change back and surfaces
// ErrPromotionFailed, leaving the whole call safe to retry.
func (s *ReviewService) Decide(ctx context.Context, recordID, actorID int, in DecisionInput) (*models.ApplicantRecord, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	switch in.Outcome {
	case OutcomeApproved, OutcomeRejected, OutcomeRevisionRequired:
	default:
		return nil, fmt.Errorf("%w: unknown outcome %q", ErrValidation, in.Outcome)
	}
	if in.Outcome == OutcomeRevisionRequired && strings.TrimSpace(in.Comment) == "" {
		return nil, fmt.Errorf("%w: a comment is required when requesting a revision", ErrValidation)
	}

	rec, err := s.records.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if rec.IsTerminal() {
		return nil, fmt.Errorf("%w: record is already %s", ErrInvalidTransition, rec.Status)
	}

	// Timestamps are taken here, at commit time, not when the admin opened
	// the review screen.
	now := s.now()
	updated := *rec
	updated.Status = in.Outcome
	updated.AdminComment = optionalText(in.Comment)
	updated.PreEmploymentFeedback = optionalText(in.PreEmploymentFeedback)
	updated.PolicyRulesFeedback = optionalText(in.PolicyRulesFeedback)
	updated.UpdateAt = &now

	switch in.Outcome {
	case OutcomeApproved:
		updated.ApprovedAt = &now
		updated.ApprovedBy = &actorID
	case OutcomeRejected:
		updated.RejectedAt = &now
		updated.RejectedBy = &actorID
	}

	// Guard on the exact status read above so any write that slipped in
	// between, including a resubmission back to pending, turns this decision
	// into a conflict instead of overwriting it.
	if err := s.records.UpdateWhereStatus(ctx, &updated, rec.Status); err != nil {
		return nil, err
	}

	if in.Outcome == OutcomeApproved {
		if err := s.roles.Promote(ctx, rec.UserID, models.RoleNameApplicant, models.RoleNameEmployee); err != nil {
			s.rollbackApproval(ctx, rec)
			return nil, fmt.Errorf("%w: %v", ErrPromotionFailed, err)
		}
		s.notifyApproved(ctx, &updated)
	}

	return &updated, nil
}

// rollbackApproval compensates a status write whose promotion side effect
// failed, restoring the record as it was before the decision.
func (s *ReviewService) rollbackApproval(ctx context.Context, prev *models.ApplicantRecord) {
	now := s.now()
	restore := *prev
	restore.UpdateAt = &now
	if err := s.records.UpdateWhereStatus(ctx, &restore, models.StatusApproved); err != nil {
		// The record stays approved with an unpromoted user; the next
		// decide retry is the recovery path.
		log.Printf("failed to roll back approval of record %d: %v", prev.ApplicantID, err)
	}
}

func (s *ReviewService) notifyApproved(ctx context.Context, rec *models.ApplicantRecord) {
	if s.notifier == nil {
		return
	}
	bg := persistentContext(ctx)
	snapshot := *rec
	go func() {
		if err := s.notifier.NotifyApproved(bg, &snapshot); err != nil {
			log.Printf("approval notification for record %d: %v", snapshot.ApplicantID, err)
		}
	}()
}

// Resubmit lets the record's owner re-enter review from revision_required or
// rejected. Only the provided slots are replaced; the overall comment and
// every slot's feedback are cleared, matching the portal's reset-on-resubmit
// behavior.
func (s *ReviewService) Resubmit(ctx context.Context, recordID, actorID int, uploads []DocumentUpload) (*models.ApplicantRecord, error) {
	bySlot, err := indexUploads(uploads)
	if err != nil {
		return nil, err
	}

	rec, err := s.records.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if rec.UserID != actorID {
		return nil, ErrNotFound
	}
	if rec.Status != models.StatusRevisionRequired && rec.Status != models.StatusRejected {
		return nil, fmt.Errorf("%w: cannot resubmit while record is %s", ErrInvalidTransition, rec.Status)
	}

	paths, err := s.uploadSlots(ctx, rec.UserID, bySlot)
	if err != nil {
		return nil, err
	}

	now := s.now()
	updated := *rec
	updated.Status = models.StatusPending
	updated.AdminComment = nil
	updated.PreEmploymentFeedback = nil
	updated.PolicyRulesFeedback = nil
	updated.UpdateAt = &now

	replaced := make([]string, 0, len(paths))
	for slot, path := range paths {
		if old := rec.SlotPath(slot); old != nil && *old != "" {
			replaced = append(replaced, *old)
		}
		p := path
		switch slot {
		case models.SlotPreEmployment:
			updated.PreEmploymentPath = &p
		case models.SlotPolicyRules:
			updated.PolicyRulesPath = &p
		}
	}

	if err := s.records.UpdateWhereStatus(ctx, &updated, rec.Status); err != nil {
		// Lost race: drop the freshly uploaded objects, the record and its
		// prior feedback stay untouched.
		s.discardObjects(ctx, pathValues(paths))
		return nil, err
	}

	s.discardObjects(ctx, replaced)
	return &updated, nil
}

// Delete removes a record and every document it references. Administrator
// only, irreversible.
func (s *ReviewService) Delete(ctx context.Context, recordID, actorID int) error {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return err
	}

	rec, err := s.records.GetByID(ctx, recordID)
	if err != nil {
		return err
	}

	s.discardObjects(ctx, rec.DocumentPaths())
	return s.records.Delete(ctx, recordID)
}

// GetForUser returns the caller's own record.
func (s *ReviewService) GetForUser(ctx context.Context, userID int) (*models.ApplicantRecord, error) {
	return s.records.GetActiveByUser(ctx, userID)
}

// GetByID returns any record; callers gate access to it.
func (s *ReviewService) GetByID(ctx context.Context, recordID int) (*models.ApplicantRecord, error) {
	return s.records.GetByID(ctx, recordID)
}

// ListAll returns every active record, newest first.
func (s *ReviewService) ListAll(ctx context.Context) ([]models.ApplicantRecord, error) {
	return s.records.ListAll(ctx)
}

// SignedDocumentURL issues a time-bounded download URL for one of the
// record's slots, checking the caller may see the record.
func (s *ReviewService) SignedDocumentURL(ctx context.Context, recordID, actorID int, slot string, ttl time.Duration) (string, error) {
	rec, err := s.records.GetByID(ctx, recordID)
	if err != nil {
		return "", err
	}
	if rec.UserID != actorID {
		isAdmin, err := s.roles.HasRole(ctx, actorID, models.RoleNameAdmin)
		if err != nil {
			return "", err
		}
		if !isAdmin {
			return "", ErrNotFound
		}
	}

	path := rec.SlotPath(slot)
	if path == nil || *path == "" {
		return "", fmt.Errorf("%w: slot %q has no document", ErrNotFound, slot)
	}
	return s.store.SignedURL(*path, ttl)
}

func (s *ReviewService) requireAdmin(ctx context.Context, actorID int) error {
	isAdmin, err := s.roles.HasRole(ctx, actorID, models.RoleNameAdmin)
	if err != nil {
		return err
	}
	if !isAdmin {
		return fmt.Errorf("%w: administrator capability required", ErrForbidden)
	}
	return nil
}

// uploadSlots stores each upload and returns slot -> stored path. On any
// failure the objects written so far are removed and ErrStorageFailure
// returned.
func (s *ReviewService) uploadSlots(ctx context.Context, userID int, bySlot map[string]DocumentUpload) (map[string]string, error) {
	paths := make(map[string]string, len(bySlot))
	for slot, up := range bySlot {
		path := storedObjectPath(userID, slot)
		if err := s.store.Put(ctx, path, up.Content, up.Size); err != nil {
			s.discardObjects(ctx, pathValues(paths))
			return nil, fmt.Errorf("%w: upload %s: %v", ErrStorageFailure, slot, err)
		}
		paths[slot] = path
	}
	return paths, nil
}

func (s *ReviewService) discardObjects(ctx context.Context, paths []string) {
	for _, path := range paths {
		if err := s.store.Delete(persistentContext(ctx), path); err != nil {
			log.Printf("failed to delete object %s: %v", path, err)
		}
	}
}

func indexUploads(uploads []DocumentUpload) (map[string]DocumentUpload, error) {
	if len(uploads) == 0 {
		return nil, fmt.Errorf("%w: at least one document is required", ErrValidation)
	}
	bySlot := make(map[string]DocumentUpload, len(uploads))
	for _, up := range uploads {
		switch up.Slot {
		case models.SlotPreEmployment, models.SlotPolicyRules:
		default:
			return nil, fmt.Errorf("%w: unknown document slot %q", ErrValidation, up.Slot)
		}
		if _, dup := bySlot[up.Slot]; dup {
			return nil, fmt.Errorf("%w: duplicate document slot %q", ErrValidation, up.Slot)
		}
		if up.Content == nil {
			return nil, fmt.Errorf("%w: document slot %q has no content", ErrValidation, up.Slot)
		}
		bySlot[up.Slot] = up
	}
	return bySlot, nil
}

func storedObjectPath(userID int, slot string) string {
	return fmt.Sprintf("applicants/%d/%s-%s.pdf", userID, strings.ReplaceAll(slot, "_", "-"), uuid.NewString())
}

func applySlotPaths(rec *models.ApplicantRecord, paths map[string]string) {
	for slot, path := range paths {
		p := path
		switch slot {
		case models.SlotPreEmployment:
			rec.PreEmploymentPath = &p
		case models.SlotPolicyRules:
			rec.PolicyRulesPath = &p
		}
	}
}

func pathValues(paths map[string]string) []string {
	values := make([]string, 0, len(paths))
	for _, p := range paths {
		values = append(values, p)
	}
	return values
}

func optionalText(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func isConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
