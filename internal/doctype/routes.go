package doctype

import (
	"dynadoc-api/internal/middlewares"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, docTypeService *DocTypeService) {
	docTypeController := &DocTypeController{DocTypeService: docTypeService}

	typeGroup := r.Group("/api/document-types")
	typeGroup.Use(middlewares.AuthMiddleware())
	{
		typeGroup.POST("", docTypeController.CreateType)
		typeGroup.GET("", docTypeController.ListTypes)
		typeGroup.GET("/visible", docTypeController.ListVisible)
		typeGroup.GET("/code/:code", docTypeController.ResolveByCode)
		typeGroup.GET("/:id", docTypeController.GetType)
		typeGroup.PUT("/:id", docTypeController.UpdateType)
		typeGroup.DELETE("/:id", docTypeController.DeleteType)

		typeGroup.POST("/:id/fields", docTypeController.AddField)
		typeGroup.PUT("/:id/fields/reorder", docTypeController.ReorderFields)
		typeGroup.PUT("/:id/fields/:fieldId", docTypeController.UpdateField)
		typeGroup.DELETE("/:id/fields/:fieldId", docTypeController.DeleteField)
	}
}
