package document

import (
	"dynadoc-api/internal/audit"
	"dynadoc-api/internal/doctype"
	"dynadoc-api/internal/middlewares"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, docService DocumentServiceAPI, typeService doctype.DocTypeServiceAPI, auditService *audit.AuditService) {
	controller := &DocumentController{
		DocumentService: docService,
		DocTypeService:  typeService,
		AuditService:    auditService,
	}

	docs := r.Group("/api/documents")
	docs.Use(middlewares.AuthMiddleware())
	{
		docs.GET("/attachments/:attachmentId", controller.DownloadAttachment)
		docs.POST("/:code", controller.CreateDocument)
		docs.GET("/:code", controller.ListDocuments)
		docs.GET("/:code/export", controller.ExportDocuments)
		docs.GET("/:code/:id", controller.GetDocument)
		docs.PUT("/:code/:id", controller.UpdateDocument)
		docs.POST("/:code/:id/transition", controller.TransitionDocument)
		docs.POST("/:code/:id/attachments/:fieldKey", controller.ReplaceAttachments)
	}
}
