package document

import (
	"fmt"
	"net/http"
	"strconv"

	"dynadoc-api/internal/apperrors"
	"dynadoc-api/internal/audit"
	"dynadoc-api/internal/doctype"
	"dynadoc-api/internal/rbac"

	"github.com/gin-gonic/gin"
)

type DocumentController struct {
	DocumentService DocumentServiceAPI
	DocTypeService  doctype.DocTypeServiceAPI
	AuditService    *audit.AuditService
}

type ReplaceAttachmentsRequest struct {
	Attachments []AttachmentUploadInput `json:"attachments"`
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

// resolveWithAccess loads the type addressed by the :code route param and
// enforces one of its permission role lists against the caller.
func (dc *DocumentController) resolveWithAccess(c *gin.Context, pick func(*doctype.DocumentType) []string) (*doctype.DocumentType, bool) {
	typ, err := dc.DocTypeService.ResolveByCode(c.Param("code"))
	if err != nil {
		respondErr(c, err)
		return nil, false
	}
	if !rbac.HasAnyAccess(callerRoles(c), pick(typ)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient role for this document type"})
		return nil, false
	}
	return typ, true
}

func createRolesOf(t *doctype.DocumentType) []string  { return t.CreateRoles }
func viewRolesOf(t *doctype.DocumentType) []string    { return t.ViewRoles }
func approveRolesOf(t *doctype.DocumentType) []string { return t.ApproveRoles }

func (dc *DocumentController) record(action string, recordID int64, userID int64, oldValues, newValues interface{}) {
	if dc.AuditService == nil {
		return
	}
	uid := userID
	_ = dc.AuditService.Record(action, "document", recordID, &uid, oldValues, newValues)
}

func (dc *DocumentController) CreateDocument(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user ID not found"})
		return
	}
	if _, ok := dc.resolveWithAccess(c, createRolesOf); !ok {
		return
	}

	var req CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, err := dc.DocumentService.Create(c.Param("code"), req, userID)
	if err != nil {
		respondErr(c, err)
		return
	}

	dc.record("created", doc.ID, userID, nil, doc)

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Document created successfully",
		"document": doc,
	})
}

func (dc *DocumentController) ListDocuments(c *gin.Context) {
	if _, ok := dc.resolveWithAccess(c, viewRolesOf); !ok {
		return
	}

	var filter ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	docs, total, totalPages, err := dc.DocumentService.List(c.Param("code"), filter)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":        docs,
		"page":        filter.Page,
		"page_size":   filter.PageSize,
		"total":       total,
		"total_pages": totalPages,
	})
}

func (dc *DocumentController) GetDocument(c *gin.Context) {
	if _, ok := dc.resolveWithAccess(c, viewRolesOf); !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	doc, err := dc.DocumentService.Get(c.Param("code"), id)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"document": doc})
}

func (dc *DocumentController) UpdateDocument(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user ID not found"})
		return
	}
	if _, ok := dc.resolveWithAccess(c, createRolesOf); !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	before, after, err := dc.DocumentService.Update(c.Param("code"), id, req, userID)
	if err != nil {
		respondErr(c, err)
		return
	}

	dc.record("updated", after.ID, userID, before, after)

	c.JSON(http.StatusOK, gin.H{
		"message":  "Document updated successfully",
		"document": after,
	})
}

func (dc *DocumentController) TransitionDocument(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user ID not found"})
		return
	}
	if _, ok := dc.resolveWithAccess(c, approveRolesOf); !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, err := dc.DocumentService.Transition(c.Param("code"), id, req.Status, userID, req.Comment)
	if err != nil {
		respondErr(c, err)
		return
	}

	var oldValues interface{}
	if n := len(doc.History); n > 0 && doc.History[n-1].FromStatus != nil {
		oldValues = gin.H{"status": *doc.History[n-1].FromStatus}
	}
	dc.record("transitioned", doc.ID, userID, oldValues, gin.H{"status": doc.Status})

	c.JSON(http.StatusOK, gin.H{
		"message":  "Document transitioned successfully",
		"document": doc,
	})
}

func (dc *DocumentController) ExportDocuments(c *gin.Context) {
	typ, ok := dc.resolveWithAccess(c, viewRolesOf)
	if !ok {
		return
	}

	var filter ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	data, err := dc.DocumentService.ExportXLSX(c.Param("code"), filter)
	if err != nil {
		respondErr(c, err)
		return
	}

	filename := fmt.Sprintf("%s_export.xlsx", typ.Code)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func (dc *DocumentController) ReplaceAttachments(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user ID not found"})
		return
	}
	if _, ok := dc.resolveWithAccess(c, createRolesOf); !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req ReplaceAttachmentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	attachments, err := dc.DocumentService.ReplaceFieldAttachments(c.Param("code"), id, c.Param("fieldKey"), req.Attachments, userID)
	if err != nil {
		respondErr(c, err)
		return
	}

	dc.record("attachments_replaced", id, userID, nil, attachments)

	c.JSON(http.StatusOK, gin.H{
		"message":     "Attachments replaced successfully",
		"attachments": attachments,
	})
}

func (dc *DocumentController) DownloadAttachment(c *gin.Context) {
	id, ok := parseID(c, "attachmentId")
	if !ok {
		return
	}

	data, contentType, filename, err := dc.DocumentService.GetAttachmentBytes(id)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, data)
}
