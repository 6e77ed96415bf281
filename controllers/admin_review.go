package controllers

import (
	"net/http"
	"strconv"

	"onboarding-portal-api/config"
	"onboarding-portal-api/models"
	"onboarding-portal-api/services"

	"github.com/gin-gonic/gin"
)

// GetApplicants returns every applicant record, newest first (admin only).
func GetApplicants(c *gin.Context) {
	var records []models.ApplicantRecord
	query := config.DB.Preload("User").Preload("User.Role").
		Order("create_at DESC")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch applicant records"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"records": records,
		"total":   len(records),
	})
}

// GetApplicant returns a single applicant record (admin only).
func GetApplicant(c *gin.Context) {
	recordID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid record id"})
		return
	}

	var record models.ApplicantRecord
	if err := config.DB.Preload("User").Preload("User.Role").
		Where("applicant_id = ?", recordID).
		First(&record).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"record": record})
}

// DecideApplicant applies a review outcome to a record (admin only).
func DecideApplicant(c *gin.Context) {
	recordID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid record id"})
		return
	}

	type DecisionRequest struct {
		Outcome               string `json:"outcome" binding:"required"`
		Comment               string `json:"comment"`
		PreEmploymentFeedback string `json:"pre_employment_feedback"`
		PolicyRulesFeedback   string `json:"policy_rules_feedback"`
	}

	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actorID, _ := c.Get("userID")

	ctx, cancel := requestContext(c)
	defer cancel()

	record, err := reviewService.Decide(ctx, recordID, actorID.(int), services.DecisionInput{
		Outcome:               req.Outcome,
		Comment:               req.Comment,
		PreEmploymentFeedback: req.PreEmploymentFeedback,
		PolicyRulesFeedback:   req.PolicyRulesFeedback,
	})
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Decision recorded successfully",
		"record":  record,
	})
}

// DeleteApplicant removes a record and its stored documents (admin only,
// irreversible).
func DeleteApplicant(c *gin.Context) {
	recordID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid record id"})
		return
	}

	actorID, _ := c.Get("userID")

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := reviewService.Delete(ctx, recordID, actorID.(int)); err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Record deleted successfully"})
}

// RunRetentionSweep purges expired terminal records on demand (admin only).
// The same sweep runs from cmd/retention-sweep on a cron schedule.
func RunRetentionSweep(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	report, err := retentionService.SweepExpired(ctx)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Retention sweep completed",
		"report":  report,
	})
}
