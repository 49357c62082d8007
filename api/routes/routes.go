package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/rajesh096/InsightVerify/api/handlers"
	"github.com/rajesh096/InsightVerify/api/middleware"
)

// SetupRoutes wires every endpoint.
func SetupRoutes(r *gin.Engine, h *handlers.Handlers) {
	r.Use(middleware.CORS())

	r.GET("/health", h.Verification.Health)

	v1 := r.Group("/api/v1")
	v1.GET("/health", h.Verification.Health)

	docs := v1.Group("/documents")
	{
		docs.POST("/extract", h.Verification.ExtractText)
		docs.POST("/verify", h.Verification.Verify)
		docs.POST("/verify/async", h.Verification.VerifyAsync)
		docs.GET("/status/:taskId", h.Verification.GetStatus)
		docs.GET("/types", h.Verification.ListDocumentTypes)
	}
}
