package routes

import (
	"memo-approval-api/controllers"
	"memo-approval-api/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// Signed artifact links stay outside the API group so emailed URLs work
	// without a token; the HMAC signature gates access instead.
	router.GET("/uploads/:filename", controllers.ServeUpload)

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Authentication
			public.POST("/login", controllers.Login)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Memo Approval API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// User profile
			protected.GET("/profile", controllers.GetProfile)

			// Memo submission and listing
			protected.POST("/upload", controllers.UploadMemo)
			protected.GET("/view", controllers.ViewMemos)
			protected.GET("/download-all", controllers.DownloadAll)

			// Approval workflow
			protected.POST("/approve", controllers.ApproveMemo)
			protected.POST("/reject", controllers.RejectMemo)

			// Legacy director shortcut, director only
			protected.POST("/approve/director/:memo_id",
				middleware.RequireRole("director"), controllers.ApproveDirector)
		}
	}
}
