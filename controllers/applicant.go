package controllers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"onboarding-portal-api/models"
	"onboarding-portal-api/services"

	"github.com/gin-gonic/gin"
)

// maxDocumentSize caps a single uploaded PDF at 10MB.
const maxDocumentSize = int64(10 * 1024 * 1024)

// SubmitDocuments creates the caller's applicant record from their first
// document upload. Both slots must be present in the multipart form.
func SubmitDocuments(c *gin.Context) {
	userID, _ := c.Get("userID")

	uploads, opened, err := collectUploads(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer closeAll(opened)

	ctx, cancel := requestContext(c)
	defer cancel()

	record, err := reviewService.Submit(ctx, userID.(int), uploads)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Documents submitted successfully",
		"record":  record,
	})
}

// ResubmitDocuments re-enters review from revision_required or rejected.
// Only the provided slots are replaced.
func ResubmitDocuments(c *gin.Context) {
	userID, _ := c.Get("userID")

	recordID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid record id"})
		return
	}

	uploads, opened, err := collectUploads(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer closeAll(opened)

	ctx, cancel := requestContext(c)
	defer cancel()

	record, err := reviewService.Resubmit(ctx, recordID, userID.(int), uploads)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Documents resubmitted successfully",
		"record":  record,
	})
}

// GetMyRecord returns the caller's own applicant record with its current
// status and reviewer feedback.
func GetMyRecord(c *gin.Context) {
	userID, _ := c.Get("userID")

	ctx, cancel := requestContext(c)
	defer cancel()

	record, err := reviewService.GetForUser(ctx, userID.(int))
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"record": record})
}

// collectUploads reads the known slot fields from the multipart form. Slots
// not present in the form are simply omitted; the service decides whether
// that is acceptable.
func collectUploads(c *gin.Context) ([]services.DocumentUpload, []multipart.File, error) {
	var uploads []services.DocumentUpload
	var opened []multipart.File

	for _, slot := range []string{models.SlotPreEmployment, models.SlotPolicyRules} {
		header, err := c.FormFile(slot)
		if err != nil {
			continue
		}

		if err := validateDocument(header); err != nil {
			closeAll(opened)
			return nil, nil, err
		}

		file, err := header.Open()
		if err != nil {
			closeAll(opened)
			return nil, nil, err
		}
		opened = append(opened, file)

		uploads = append(uploads, services.DocumentUpload{
			Slot:     slot,
			Filename: header.Filename,
			Size:     header.Size,
			Content:  file,
		})
	}

	return uploads, opened, nil
}

func validateDocument(header *multipart.FileHeader) error {
	if header.Size > maxDocumentSize {
		return errors.New("File size exceeds 10MB limit")
	}
	if strings.ToLower(filepath.Ext(header.Filename)) != ".pdf" {
		return errors.New("Only PDF documents are accepted")
	}
	return nil
}

func closeAll(files []multipart.File) {
	for _, f := range files {
		f.Close()
	}
}
