// One-shot retention sweep, run from cron:
//
//	0 3 * * *  /opt/onboarding/retention-sweep
//
// Purges approved/rejected records whose decision is older than
// RETENTION_DAYS (default 45), together with their stored documents.
package main

import (
	"context"
	"log"

	"onboarding-portal-api/config"
	"onboarding-portal-api/services"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	logFile, _ := config.InitLogging()
	if logFile != nil {
		defer logFile.Close()
	}

	config.InitDB()

	records := services.NewRecordStore(config.DB)
	store := services.NewLocalObjectStore()
	sweeper := services.NewRetentionService(records, store, services.RetentionWindowFromEnv())

	report, err := sweeper.SweepExpired(context.Background())
	if err != nil {
		log.Fatalf("Retention sweep failed: %v", err)
	}

	log.Printf("Retention sweep done: scanned %d, purged %d, failures %d (cutoff %s)",
		report.Scanned, report.Purged, len(report.Failures), report.Cutoff.Format("2006-01-02"))
	for _, f := range report.Failures {
		log.Printf("  record %d: %s", f.ApplicantID, f.Error)
	}
}
