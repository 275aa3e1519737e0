package audit

import (
	"dynadoc-api/internal/middlewares"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, auditService *AuditService) {
	auditController := &AuditController{AuditService: auditService}

	auditGroup := r.Group("/api/audit")
	auditGroup.Use(middlewares.AuthMiddleware())
	{
		auditGroup.POST("/search", auditController.GetEntries)
	}
}
