package document

import (
	"encoding/json"
	"fmt"
	"strings"

	"dynadoc-api/internal/doctype"

	"github.com/xuri/excelize/v2"
)

// ExportXLSX renders a type's documents as a spreadsheet. Grid columns come
// from the field definitions flagged show_in_grid (header fields only), after
// the fixed number/status/version/created columns.
func (s *DocumentService) ExportXLSX(typeCode string, filter ListFilter) ([]byte, error) {
	typ, err := s.Types.ResolveByCode(typeCode)
	if err != nil {
		return nil, err
	}

	filter.Page = 1
	filter.PageSize = 100

	var all []Document
	for {
		page, _, totalPages, err := s.List(typeCode, filter)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if filter.Page >= totalPages {
			break
		}
		filter.Page++
	}

	gridFields := make([]doctype.FieldDefinition, 0, len(typ.Fields))
	for _, fd := range typ.Fields {
		if fd.ShowInGrid && !fd.IsLineItem {
			gridFields = append(gridFields, fd)
		}
	}

	f := excelize.NewFile()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#E2E8F0"}},
	})

	sheet := safeSheetName(typ.Name)
	if sheet == "" {
		sheet = "Documents"
	}
	defaultSheet := f.GetSheetName(0)
	f.NewSheet(sheet)

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return nil, err
	}

	header := []interface{}{
		excelize.Cell{Value: "document_number", StyleID: headerStyle},
		excelize.Cell{Value: "status", StyleID: headerStyle},
		excelize.Cell{Value: "version", StyleID: headerStyle},
		excelize.Cell{Value: "created_at", StyleID: headerStyle},
	}
	for _, fd := range gridFields {
		label := fd.Label
		if label == "" {
			label = fd.FieldKey
		}
		header = append(header, excelize.Cell{Value: label, StyleID: headerStyle})
	}
	_ = sw.SetRow("A1", header)

	rowNum := 2
	for _, doc := range all {
		var data map[string]any
		if len(doc.Data) > 0 {
			if err := json.Unmarshal(doc.Data, &data); err != nil {
				return nil, err
			}
		}

		values := []interface{}{
			doc.DocumentNumber,
			doc.Status,
			doc.Version,
			doc.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for _, fd := range gridFields {
			v := data[fd.FieldKey]
			if v == nil {
				values = append(values, "")
			} else {
				values = append(values, fmt.Sprintf("%v", v))
			}
		}

		cell, _ := excelize.CoordinatesToCellName(1, rowNum)
		_ = sw.SetRow(cell, values)
		rowNum++
	}

	if err := sw.Flush(); err != nil {
		return nil, err
	}

	if defaultSheet != "" && defaultSheet != sheet {
		f.DeleteSheet(defaultSheet)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func safeSheetName(name string) string {
	n := strings.TrimSpace(name)
	n = strings.NewReplacer(":", "_", "\\", "_", "/", "_", "?", "_", "*", "_", "[", "_", "]", "_").Replace(n)
	if len(n) > 31 {
		n = n[:31]
	}
	return n
}
