package document

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestExportXLSX_HeaderAndRows(t *testing.T) {
	svc, types, _ := newService(t)
	seedVisitorPassType(t, types)

	doc := mustCreateDoc(t, svc, 1)
	mustCreateDoc(t, svc, 1)

	data, err := svc.ExportXLSX("visitor_pass", ListFilter{SortBy: "document_number", SortDir: "asc"})
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("expected non-empty workbook")
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	sheet := "Visitor Pass"

	a1, err := f.GetCellValue(sheet, "A1")
	if err != nil {
		t.Fatalf("read A1: %v", err)
	}
	if a1 != "document_number" {
		t.Fatalf("unexpected A1: %q", a1)
	}

	// full_name is the only header field flagged for the grid.
	e1, err := f.GetCellValue(sheet, "E1")
	if err != nil {
		t.Fatalf("read E1: %v", err)
	}
	if e1 != "Full Name" {
		t.Fatalf("unexpected E1: %q", e1)
	}

	a2, err := f.GetCellValue(sheet, "A2")
	if err != nil {
		t.Fatalf("read A2: %v", err)
	}
	if a2 != doc.DocumentNumber {
		t.Fatalf("unexpected A2: %q, want %q", a2, doc.DocumentNumber)
	}

	e2, err := f.GetCellValue(sheet, "E2")
	if err != nil {
		t.Fatalf("read E2: %v", err)
	}
	if e2 != "Ada Lovelace" {
		t.Fatalf("unexpected E2: %q", e2)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
}

func TestExportXLSX_EmptyTypeStillProducesWorkbook(t *testing.T) {
	svc, types, _ := newService(t)
	seedVisitorPassType(t, types)

	data, err := svc.ExportXLSX("visitor_pass", ListFilter{})
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Visitor Pass")
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected header row only, got %d", len(rows))
	}
}

func TestExportXLSX_RespectsStatusFilter(t *testing.T) {
	svc, types, _ := newService(t)
	seedVisitorPassType(t, types)

	a := mustCreateDoc(t, svc, 1)
	mustCreateDoc(t, svc, 1)
	if _, err := svc.Transition("visitor_pass", a.ID, "submitted", 1, ""); err != nil {
		t.Fatalf("transition: %v", err)
	}

	data, err := svc.ExportXLSX("visitor_pass", ListFilter{Status: "submitted"})
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Visitor Pass")
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header + 1 row, got %d", len(rows))
	}
}
