package audit

import (
	"net/http"

	"dynadoc-api/internal/rbac"

	"github.com/gin-gonic/gin"
)

type AuditController struct {
	AuditService *AuditService
}

func (ac *AuditController) GetEntries(c *gin.Context) {
	rolesVal, _ := c.Get("roles")
	roles, _ := rolesVal.([]string)
	if !rbac.HasAnyAccess(roles, []string{rbac.AdminRole}) {
		c.JSON(http.StatusForbidden, gin.H{"error": "administrator role required"})
		return
	}

	var input EntryFilterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entries, total, totalPages, err := ac.AuditService.GetEntries(input)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":        entries,
		"page":        input.Page,
		"page_size":   input.PageSize,
		"total":       total,
		"total_pages": totalPages,
	})
}
