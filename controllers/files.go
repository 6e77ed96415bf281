package controllers

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// GetDocumentURL issues a short-lived signed download URL for one slot of a
// record. Owners and admins only; the service enforces that.
func GetDocumentURL(c *gin.Context) {
	recordID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid record id"})
		return
	}
	slot := c.Param("slot")

	actorID, _ := c.Get("userID")

	ctx, cancel := requestContext(c)
	defer cancel()

	url, err := reviewService.SignedDocumentURL(ctx, recordID, actorID.(int), slot, time.Hour)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url, "expires_in": int(time.Hour.Seconds())})
}

// DownloadSigned redeems a signed download token and streams the document.
// The token itself is the authorization, so this route is public.
func DownloadSigned(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing download token"})
		return
	}

	path, err := objectStore.VerifySignedToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired download token"})
		return
	}

	file, err := objectStore.Open(path)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}
	defer file.Close()

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", "inline")
	if _, err := io.Copy(c.Writer, file); err != nil {
		// Headers are already out; nothing sensible left to send.
		return
	}
}
