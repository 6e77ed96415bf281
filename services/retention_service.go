package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
)

// DefaultRetentionDays is how long terminal records are kept after their
// decision before the sweep purges them.
const DefaultRetentionDays = 45

// SweepReport summarizes one retention sweep.
type SweepReport struct {
	Cutoff   time.Time    `json:"cutoff"`
	Scanned  int          `json:"scanned"`
	Purged   int          `json:"purged"`
	Failures []SweepError `json:"failures,omitempty"`
}

// SweepError records a record the sweep could not fully purge.
type SweepError struct {
	ApplicantID int    `json:"applicant_id"`
	Error       string `json:"error"`
}

// RetentionService purges approved/rejected records whose decision is older
// than the retention window, together with their stored documents. It is
// externally scheduled (cron or an admin endpoint), never self-clocking.
type RetentionService struct {
	records RecordStore
	store   ObjectStore
	window  time.Duration
	now     func() time.Time
}

func NewRetentionService(records RecordStore, store ObjectStore, window time.Duration) *RetentionService {
	if window <= 0 {
		window = DefaultRetentionDays * 24 * time.Hour
	}
	return &RetentionService{
		records: records,
		store:   store,
		window:  window,
		now:     time.Now,
	}
}

// RetentionWindowFromEnv reads RETENTION_DAYS, falling back to the default.
func RetentionWindowFromEnv() time.Duration {
	days, err := strconv.Atoi(os.Getenv("RETENTION_DAYS"))
	if err != nil || days <= 0 {
		days = DefaultRetentionDays
	}
	return time.Duration(days) * 24 * time.Hour
}

// SweepExpired purges every expired terminal record. One bad record never
// aborts the batch: its failure is reported and the sweep moves on. Document
// deletion is best effort; the record row delete is what counts as purged.
func (s *RetentionService) SweepExpired(ctx context.Context) (*SweepReport, error) {
	cutoff := s.now().Add(-s.window)

	expired, err := s.records.ListDecidedBefore(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list expired records: %w", err)
	}

	report := &SweepReport{Cutoff: cutoff, Scanned: len(expired)}
	for i := range expired {
		rec := &expired[i]

		for _, path := range rec.DocumentPaths() {
			if err := s.store.Delete(ctx, path); err != nil {
				log.Printf("retention sweep: delete object %s of record %d: %v", path, rec.ApplicantID, err)
			}
		}

		if err := s.records.Delete(ctx, rec.ApplicantID); err != nil {
			if isNotFound(err) {
				// Already gone (admin delete raced the sweep); nothing left to purge.
				continue
			}
			report.Failures = append(report.Failures, SweepError{
				ApplicantID: rec.ApplicantID,
				Error:       err.Error(),
			})
			continue
		}
		report.Purged++
	}

	if len(report.Failures) > 0 {
		log.Printf("retention sweep: purged %d of %d expired records, %d failures",
			report.Purged, report.Scanned, len(report.Failures))
	}
	return report, nil
}
