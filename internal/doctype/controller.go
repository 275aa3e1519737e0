package doctype

import (
	"net/http"
	"strconv"

	"dynadoc-api/internal/apperrors"
	"dynadoc-api/internal/rbac"

	"github.com/gin-gonic/gin"
)

type DocTypeController struct {
	DocTypeService DocTypeServiceAPI
}

func callerID(c *gin.Context) (int64, bool) {
	v, exists := c.Get("userID")
	if !exists {
		return 0, false
	}
	f, ok := v.(float64)
	if !ok {
		return 0, false
	}
	return int64(f), true
}

func callerRoles(c *gin.Context) []string {
	v, exists := c.Get("roles")
	if !exists {
		return nil
	}
	roles, ok := v.([]string)
	if !ok {
		return nil
	}
	return roles
}

func requireAdmin(c *gin.Context) bool {
	if !rbac.HasAnyAccess(callerRoles(c), []string{rbac.AdminRole}) {
		c.JSON(http.StatusForbidden, gin.H{"error": "administrator role required"})
		return false
	}
	return true
}

func respondErr(c *gin.Context, err error) {
	c.JSON(apperrors.Status(err), apperrors.Body(err))
}

func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

func (tc *DocTypeController) CreateType(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user ID not found"})
		return
	}
	if !requireAdmin(c) {
		return
	}

	var input CreateTypeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t, err := tc.DocTypeService.CreateType(input, userID)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":       "Document type created successfully",
		"document_type": t,
	})
}

func (tc *DocTypeController) UpdateType(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var input UpdateTypeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t, err := tc.DocTypeService.UpdateType(id, input)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Document type updated successfully",
		"document_type": t,
	})
}

func (tc *DocTypeController) DeleteType(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := tc.DocTypeService.DeleteType(id); err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Document type deleted successfully"})
}

func (tc *DocTypeController) GetType(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	t, err := tc.DocTypeService.GetType(id)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"document_type": t})
}

func (tc *DocTypeController) ResolveByCode(c *gin.Context) {
	t, err := tc.DocTypeService.ResolveByCode(c.Param("code"))
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"document_type": t})
}

func (tc *DocTypeController) ListTypes(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}

	types, err := tc.DocTypeService.ListTypes()
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"document_types": types})
}

func (tc *DocTypeController) ListVisible(c *gin.Context) {
	types, err := tc.DocTypeService.ListVisible(callerRoles(c))
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"document_types": types})
}

func (tc *DocTypeController) AddField(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}
	typeID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var input FieldInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	field, err := tc.DocTypeService.AddField(typeID, input)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Field added successfully",
		"field":   field,
	})
}

func (tc *DocTypeController) UpdateField(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}
	typeID, ok := parseID(c, "id")
	if !ok {
		return
	}
	fieldID, ok := parseID(c, "fieldId")
	if !ok {
		return
	}

	var input UpdateFieldInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	field, err := tc.DocTypeService.UpdateField(typeID, fieldID, input)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Field updated successfully",
		"field":   field,
	})
}

func (tc *DocTypeController) DeleteField(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}
	typeID, ok := parseID(c, "id")
	if !ok {
		return
	}
	fieldID, ok := parseID(c, "fieldId")
	if !ok {
		return
	}

	if err := tc.DocTypeService.DeleteField(typeID, fieldID); err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Field deleted successfully"})
}

func (tc *DocTypeController) ReorderFields(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}
	typeID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var input ReorderFieldsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := tc.DocTypeService.ReorderFields(typeID, input.FieldIDs); err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Fields reordered successfully"})
}
