package doctype

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

	if err := db.AutoMigrate(&DocumentType{}, &FieldDefinition{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	// Minimal stand-in for the documents table the delete guard counts against.
	if err := db.Exec(`CREATE TABLE IF NOT EXISTS documents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		document_type_id INTEGER NOT NULL
	)`).Error; err != nil {
		t.Fatalf("create documents table: %v", err)
	}

	sqlDB, err := db.DB()
	if err == nil {
		t.Cleanup(func() { _ = sqlDB.Close() })
	}

	return db
}

// setupTypeRouter wires the controller behind a header-driven identity shim so
// handlers see userID/roles the way the JWT middleware would set them.
func setupTypeRouter(svc DocTypeServiceAPI) *gin.Engine {
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

	controller := &DocTypeController{DocTypeService: svc}

	types := r.Group("/api/document-types")
	{
		types.POST("", controller.CreateType)
		types.GET("", controller.ListTypes)
		types.GET("/visible", controller.ListVisible)
		types.GET("/code/:code", controller.ResolveByCode)
		types.GET("/:id", controller.GetType)
		types.PUT("/:id", controller.UpdateType)
		types.DELETE("/:id", controller.DeleteType)
		types.POST("/:id/fields", controller.AddField)
		types.PUT("/:id/fields/reorder", controller.ReorderFields)
		types.PUT("/:id/fields/:fieldId", controller.UpdateField)
		types.DELETE("/:id/fields/:fieldId", controller.DeleteField)
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

func mustCreateType(t *testing.T, svc *DocTypeService, input CreateTypeInput) *DocumentType {
	t.Helper()
	typ, err := svc.CreateType(input, 1)
	if err != nil {
		t.Fatalf("create type %s: %v", input.Code, err)
	}
	return typ
}
