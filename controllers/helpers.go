package controllers

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"onboarding-portal-api/config"
	"onboarding-portal-api/services"

	"github.com/gin-gonic/gin"
)

var (
	reviewService    *services.ReviewService
	retentionService *services.RetentionService
	objectStore      *services.LocalObjectStore
)

// InitServices wires the workflow services over the shared database. Called
// once from main after config.InitDB.
func InitServices() {
	objectStore = services.NewLocalObjectStore()
	records := services.NewRecordStore(config.DB)
	roles := services.NewPromotionService(config.DB)
	notifier := services.NewMailNotifier(config.DB, objectStore)

	reviewService = services.NewReviewService(records, objectStore, roles, notifier)
	retentionService = services.NewRetentionService(records, objectStore, services.RetentionWindowFromEnv())
}

// requestContext bounds a workflow call with the configured request timeout
// so a stuck upload or role write cannot hold the connection forever.
func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	seconds, _ := strconv.Atoi(os.Getenv("REQUEST_TIMEOUT_SECONDS"))
	if seconds <= 0 {
		seconds = 30
	}
	return context.WithTimeout(c.Request.Context(), time.Duration(seconds)*time.Second)
}

// respondWorkflowError maps a workflow error kind to an HTTP status.
func respondWorkflowError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
	case errors.Is(err, services.ErrConflict), errors.Is(err, services.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrPromotionFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Approval could not be completed, please retry"})
	case errors.Is(err, services.ErrStorageFailure):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Document storage failed, please retry"})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "Request timed out, please retry"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
