package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"onboarding-portal-api/config"
	"onboarding-portal-api/models"

	"gorm.io/gorm"
)

// Notifier is invoked after a successful approval. Delivery is fire and
// forget: a notification failure must never fail the approval itself.
type Notifier interface {
	NotifyApproved(ctx context.Context, rec *models.ApplicantRecord) error
}

// MailNotifier sends the approval email over SMTP with signed download links
// to the applicant's accepted documents.
type MailNotifier struct {
	db      *gorm.DB
	store   ObjectStore
	linkTTL time.Duration
}

func NewMailNotifier(db *gorm.DB, store ObjectStore) *MailNotifier {
	return &MailNotifier{
		db:      db,
		store:   store,
		linkTTL: 7 * 24 * time.Hour,
	}
}

func (n *MailNotifier) NotifyApproved(ctx context.Context, rec *models.ApplicantRecord) error {
	var user models.User
	err := n.db.WithContext(ctx).
		Where("user_id = ? AND delete_at IS NULL", rec.UserID).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("approval mail: user %d not found", rec.UserID)
	}
	if err != nil {
		return err
	}

	name := user.FullName
	if name == "" {
		name = "New Employee"
	}

	links := ""
	for _, path := range rec.DocumentPaths() {
		url, err := n.store.SignedURL(path, n.linkTTL)
		if err != nil {
			log.Printf("approval mail: signed url for %s: %v", path, err)
			continue
		}
		links += fmt.Sprintf(`<li><a href="%s">%s</a></li>`, url, path)
	}

	body := fmt.Sprintf(`
		<h2>Welcome aboard, %s!</h2>
		<p>Your onboarding documents have been approved and your account has
		been upgraded to an employee account.</p>
		<p>Copies of your accepted documents (links valid for 7 days):</p>
		<ul>%s</ul>
		<p>HR Onboarding Team</p>`, name, links)

	return config.SendMail([]string{user.Email}, "Your onboarding application has been approved", body)
}
