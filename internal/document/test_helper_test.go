package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"dynadoc-api/internal/audit"
	"dynadoc-api/internal/doctype"
	"dynadoc-api/internal/numbering"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Unique in-memory DB per test to avoid cross-test contamination
	dsn := fmt.Sprintf("file:%d?mode=memory&cache=shared", time.Now().UnixNano())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.AutoMigrate(
		&doctype.DocumentType{},
		&doctype.FieldDefinition{},
		&numbering.DocumentSequence{},
		&Document{},
		&DocumentLine{},
		&DocumentHistory{},
		&DocumentAttachment{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	sqlDB, err := db.DB()
	if err == nil {
		t.Cleanup(func() { _ = sqlDB.Close() })
	}

	return db
}

func newService(t *testing.T) (*DocumentService, *doctype.DocTypeService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	types := &doctype.DocTypeService{DB: db}
	svc := &DocumentService{
		DB:      db,
		Types:   types,
		Numbers: &numbering.SequenceGenerator{},
		Bucket:  "test-bucket",
	}
	return svc, types, db
}

func seedVisitorPassType(t *testing.T, types *doctype.DocTypeService) *doctype.DocumentType {
	t.Helper()

	typ, err := types.CreateType(doctype.CreateTypeInput{
		Code:     "visitor_pass",
		Name:     "Visitor Pass",
		Category: "security",
		StatusFlow: &doctype.StatusFlow{
			InitialStatus: "draft",
			Statuses: []doctype.Status{
				{Key: "draft", Label: "Draft", Color: "#9e9e9e"},
				{Key: "submitted", Label: "Submitted", Color: "#2196f3"},
				{Key: "approved", Label: "Approved", Color: "#4caf50"},
				{Key: "rejected", Label: "Rejected", Color: "#f44336"},
			},
			Transitions: map[string][]string{
				"draft":     {"submitted"},
				"submitted": {"approved", "rejected"},
				"rejected":  {"draft"},
			},
		},
		CreateRoles:  []string{"reception"},
		ViewRoles:    []string{"reception", "security"},
		ApproveRoles: []string{"security"},
		Settings:     json.RawMessage(`{"numberPrefix": "VP"}`),
		Fields: []doctype.FieldInput{
			{FieldKey: "full_name", Label: "Full Name", FieldType: doctype.FieldTypeText, IsRequired: true, ShowInGrid: true},
			{FieldKey: "visit_date", Label: "Visit Date", FieldType: doctype.FieldTypeDate, IsRequired: true},
			{FieldKey: "badge_count", Label: "Badge Count", FieldType: doctype.FieldTypeNumber},
			{FieldKey: "badge_photo", Label: "Badge Photo", FieldType: doctype.FieldTypeFile},
			{FieldKey: "item_name", Label: "Item", FieldType: doctype.FieldTypeText, IsRequired: true, IsLineItem: true},
			{FieldKey: "qty", Label: "Quantity", FieldType: doctype.FieldTypeNumber, IsLineItem: true},
		},
	}, 1)
	if err != nil {
		t.Fatalf("seed type: %v", err)
	}
	return typ
}

func validCreateRequest() CreateDocumentRequest {
	return CreateDocumentRequest{
		Data: map[string]any{
			"full_name":  "Ada Lovelace",
			"visit_date": "2026-09-01",
		},
		Lines: []map[string]any{
			{"item_name": "Laptop", "qty": 1.0},
			{"item_name": "Hard Hat"},
		},
	}
}

func mustCreateDoc(t *testing.T, svc *DocumentService, userID int64) *DocumentDetail {
	t.Helper()
	doc, err := svc.Create("visitor_pass", validCreateRequest(), userID)
	if err != nil {
		t.Fatalf("create document: %v", err)
	}
	return doc
}

// stubUploads repoints the storage hooks at in-memory fakes for the duration
// of a test and reports every object name uploaded and prefix purged.
func stubUploads(t *testing.T) (*[]string, *[]string) {
	t.Helper()

	origUpload := uploadAttachmentHook
	origDelete := deleteFolderHook
	t.Cleanup(func() {
		uploadAttachmentHook = origUpload
		deleteFolderHook = origDelete
	})

	uploaded := &[]string{}
	purged := &[]string{}

	uploadAttachmentHook = func(base64Data, bucket, objectName, contentType string) (string, int64, error) {
		*uploaded = append(*uploaded, objectName)
		return "gs://" + bucket + "/" + objectName, int64(len(base64Data)), nil
	}
	deleteFolderHook = func(bucket, prefix string) ([]string, error) {
		*purged = append(*purged, prefix)
		return nil, nil
	}

	return uploaded, purged
}

func setupDocumentRouter(svc *DocumentService, types *doctype.DocTypeService, auditService *audit.AuditService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	r.Use(func(c *gin.Context) {
		if v := c.GetHeader("X-UserID"); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				c.Set("userID", f)
			}
		}
		if v := c.GetHeader("X-Roles"); v != "" {
			c.Set("roles", strings.Split(v, ","))
		}
		c.Next()
	})

	controller := &DocumentController{
		DocumentService: svc,
		DocTypeService:  types,
		AuditService:    auditService,
	}

	docs := r.Group("/api/documents")
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

	return r
}

func doJSON(r http.Handler, method, path string, body []byte, userID, roles string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-UserID", userID)
	}
	if roles != "" {
		req.Header.Set("X-Roles", roles)
	}
	r.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, b []byte, out any) {
	t.Helper()
	if err := json.Unmarshal(b, out); err != nil {
		t.Fatalf("json unmarshal: %v body=%s", err, string(b))
	}
}
