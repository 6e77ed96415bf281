package routes

import (
	"onboarding-portal-api/controllers"
	"onboarding-portal-api/middleware"
	"onboarding-portal-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			public.POST("/login", controllers.Login)

			// Signed URLs carry their own authorization
			public.GET("/files/signed", controllers.DownloadSigned)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Onboarding Portal API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// User profile
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			// Applicant workflow
			applicants := protected.Group("/applicants")
			{
				applicants.GET("/me", controllers.GetMyRecord)

				// Only applicants submit or resubmit
				applicants.POST("/submit", middleware.RequireRole(models.RoleApplicant), controllers.SubmitDocuments)
				applicants.POST("/resubmit/:id", middleware.RequireRole(models.RoleApplicant), controllers.ResubmitDocuments)
			}

			// Signed URL issuance for a record's stored documents; owners
			// and admins only, enforced by the workflow service
			documents := protected.Group("/documents")
			{
				documents.GET("/:id/:slot/url", controllers.GetDocumentURL)
			}

			// Admin review
			admin := protected.Group("/admin")
			admin.Use(middleware.RequireRole(models.RoleAdmin))
			{
				admin.GET("/applicants", controllers.GetApplicants)
				admin.GET("/applicants/:id", controllers.GetApplicant)
				admin.POST("/applicants/:id/decide", controllers.DecideApplicant)
				admin.DELETE("/applicants/:id", controllers.DeleteApplicant)

				admin.POST("/retention/sweep", controllers.RunRetentionSweep)
			}
		}
	}
}
