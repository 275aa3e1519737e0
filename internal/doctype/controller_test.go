package doctype

import (
	"encoding/json"
	"net/http"
	"testing"
)

func TestCreateTypeHandler_AdminCreates(t *testing.T) {
	db := newTestDB(t)
	r := setupTypeRouter(&DocTypeService{DB: db})

	body, _ := json.Marshal(visitorPassInput())
	w := doJSON(r, http.MethodPost, "/api/document-types", body, "1", "admin")

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		DocumentType DocumentType `json:"document_type"`
	}
	decodeJSON(t, w.Body.Bytes(), &resp)
	if resp.DocumentType.Code != "visitor_pass" {
		t.Fatalf("unexpected code: %q", resp.DocumentType.Code)
	}
	if len(resp.DocumentType.Fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(resp.DocumentType.Fields))
	}
}

func TestCreateTypeHandler_NonAdminForbidden(t *testing.T) {
	db := newTestDB(t)
	r := setupTypeRouter(&DocTypeService{DB: db})

	body, _ := json.Marshal(visitorPassInput())
	w := doJSON(r, http.MethodPost, "/api/document-types", body, "1", "reception")

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", w.Code, w.Body.String())
	}
}

func TestCreateTypeHandler_DuplicateCodeConflict(t *testing.T) {
	db := newTestDB(t)
	svc := &DocTypeService{DB: db}
	r := setupTypeRouter(svc)

	mustCreateType(t, svc, CreateTypeInput{Code: "memo", Name: "Memo"})

	body, _ := json.Marshal(CreateTypeInput{Code: "memo", Name: "Other"})
	w := doJSON(r, http.MethodPost, "/api/document-types", body, "1", "admin")

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d body=%s", w.Code, w.Body.String())
	}
}

func TestResolveByCodeHandler_UnknownReturns404(t *testing.T) {
	db := newTestDB(t)
	r := setupTypeRouter(&DocTypeService{DB: db})

	w := doJSON(r, http.MethodGet, "/api/document-types/code/nope", nil, "1", "reception")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", w.Code, w.Body.String())
	}
}

func TestListTypesHandler_AdminOnly(t *testing.T) {
	db := newTestDB(t)
	svc := &DocTypeService{DB: db}
	r := setupTypeRouter(svc)

	mustCreateType(t, svc, CreateTypeInput{Code: "memo", Name: "Memo"})

	w := doJSON(r, http.MethodGet, "/api/document-types", nil, "1", "reception")
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}

	w = doJSON(r, http.MethodGet, "/api/document-types", nil, "1", "admin")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}
}

func TestListVisibleHandler_RespectsCallerRoles(t *testing.T) {
	db := newTestDB(t)
	svc := &DocTypeService{DB: db}
	r := setupTypeRouter(svc)

	mustCreateType(t, svc, CreateTypeInput{Code: "hr_type", Name: "HR Only", VisibleToRoles: []string{"hr"}})
	mustCreateType(t, svc, CreateTypeInput{Code: "open_type", Name: "Open"})

	w := doJSON(r, http.MethodGet, "/api/document-types/visible", nil, "1", "reception")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		DocumentTypes []DocumentType `json:"document_types"`
	}
	decodeJSON(t, w.Body.Bytes(), &resp)
	if len(resp.DocumentTypes) != 1 || resp.DocumentTypes[0].Code != "open_type" {
		t.Fatalf("unexpected visible types: %#v", resp.DocumentTypes)
	}
}

func TestDeleteTypeHandler_WithDocumentsReturns400(t *testing.T) {
	db := newTestDB(t)
	svc := &DocTypeService{DB: db}
	r := setupTypeRouter(svc)

	typ := mustCreateType(t, svc, CreateTypeInput{Code: "memo", Name: "Memo"})
	if err := db.Exec("INSERT INTO documents (document_type_id) VALUES (?)", typ.ID).Error; err != nil {
		t.Fatalf("seed document: %v", err)
	}

	w := doJSON(r, http.MethodDelete, "/api/document-types/1", nil, "1", "admin")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", w.Code, w.Body.String())
	}
}
