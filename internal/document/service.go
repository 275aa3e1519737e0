package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"dynadoc-api/internal/apperrors"
	"dynadoc-api/internal/doctype"
	"dynadoc-api/internal/numbering"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type DocumentService struct {
	DB      *gorm.DB
	Types   *doctype.DocTypeService
	Numbers numbering.Generator
	Bucket  string
}

// Create validates the payload against the type's schema and, in one
// transaction, inserts the header in the flow's initial status, the lines
// numbered 1..N and the creation history entry. Nothing is written when
// validation fails.
func (s *DocumentService) Create(typeCode string, req CreateDocumentRequest, userID int64) (*DocumentDetail, error) {
	typ, err := s.Types.ResolveByCode(typeCode)
	if err != nil {
		return nil, err
	}
	flow, err := typ.Flow()
	if err != nil {
		return nil, err
	}

	fieldErrs := doctype.ValidateHeader(typ.Fields, req.Data)
	fieldErrs = append(fieldErrs, doctype.ValidateLines(typ.Fields, req.Lines)...)
	if len(fieldErrs) > 0 {
		return nil, &apperrors.ValidationError{Errors: fieldErrs}
	}

	dataJSON, err := marshalData(req.Data)
	if err != nil {
		return nil, err
	}

	var doc Document
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		number, err := s.Numbers.Generate(tx, typ.Code, typ.NumberPrefix())
		if err != nil {
			return err
		}

		doc = Document{
			DocumentTypeID: typ.ID,
			DocumentNumber: number,
			Status:         flow.InitialStatus,
			Data:           dataJSON,
			ProjectID:      req.ProjectID,
			WarehouseID:    req.WarehouseID,
			Version:        1,
			CreatedBy:      userID,
			UpdatedBy:      userID,
		}
		if err := tx.Create(&doc).Error; err != nil {
			return err
		}

		for i, line := range req.Lines {
			lineJSON, err := marshalData(line)
			if err != nil {
				return err
			}
			row := DocumentLine{
				DocumentID: doc.ID,
				LineNumber: i + 1,
				Data:       lineJSON,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}

		hist := DocumentHistory{
			DocumentID:  doc.ID,
			FromStatus:  nil,
			ToStatus:    flow.InitialStatus,
			PerformedBy: userID,
			Comment:     "Document created",
		}
		return tx.Create(&hist).Error
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(doc.ID)
}

// Update mutates header data and/or wholesale-replaces lines, only while the
// document's current status is editable. Returns the pre-update snapshot
// alongside the updated record so callers can diff them.
func (s *DocumentService) Update(typeCode string, id int64, req UpdateDocumentRequest, userID int64) (*DocumentDetail, *DocumentDetail, error) {
	typ, err := s.Types.ResolveByCode(typeCode)
	if err != nil {
		return nil, nil, err
	}

	before, err := s.getForType(typ.ID, id)
	if err != nil {
		return nil, nil, err
	}

	flow, err := typ.Flow()
	if err != nil {
		return nil, nil, err
	}
	if !flow.IsEditable(before.Status) {
		return nil, nil, &apperrors.BusinessRuleError{
			Message: fmt.Sprintf("document in status %s can no longer be edited", before.Status),
		}
	}

	fieldErrs := []apperrors.FieldError{}
	if req.Data != nil {
		fieldErrs = append(fieldErrs, doctype.ValidateHeader(typ.Fields, req.Data)...)
	}
	if req.Lines != nil {
		fieldErrs = append(fieldErrs, doctype.ValidateLines(typ.Fields, *req.Lines)...)
	}
	if len(fieldErrs) > 0 {
		return nil, nil, &apperrors.ValidationError{Errors: fieldErrs}
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"updated_by": userID,
			"version":    gorm.Expr("version + 1"),
		}
		if req.Data != nil {
			dataJSON, err := marshalData(req.Data)
			if err != nil {
				return err
			}
			updates["data"] = dataJSON
		}
		if req.ProjectID != nil {
			updates["project_id"] = *req.ProjectID
		}
		if req.WarehouseID != nil {
			updates["warehouse_id"] = *req.WarehouseID
		}

		if err := tx.Model(&Document{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}

		if req.Lines != nil {
			if err := tx.Where("document_id = ?", id).Delete(&DocumentLine{}).Error; err != nil {
				return err
			}
			for i, line := range *req.Lines {
				lineJSON, err := marshalData(line)
				if err != nil {
					return err
				}
				row := DocumentLine{
					DocumentID: id,
					LineNumber: i + 1,
					Data:       lineJSON,
				}
				if err := tx.Create(&row).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	after, err := s.GetByID(id)
	if err != nil {
		return nil, nil, err
	}
	return before, after, nil
}

// Get loads a document and verifies it belongs to the type the caller
// addressed it under.
func (s *DocumentService) Get(typeCode string, id int64) (*DocumentDetail, error) {
	typ, err := s.Types.ResolveByCode(typeCode)
	if err != nil {
		return nil, err
	}
	return s.getForType(typ.ID, id)
}

func (s *DocumentService) GetByID(id int64) (*DocumentDetail, error) {
	var doc Document
	if err := s.DB.First(&doc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperrors.NotFoundError{Resource: "document"}
		}
		return nil, err
	}
	return s.loadDetail(doc)
}

func (s *DocumentService) getForType(typeID, id int64) (*DocumentDetail, error) {
	var doc Document
	err := s.DB.Where("id = ? AND document_type_id = ?", id, typeID).First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperrors.NotFoundError{Resource: "document"}
		}
		return nil, err
	}
	return s.loadDetail(doc)
}

func (s *DocumentService) loadDetail(doc Document) (*DocumentDetail, error) {
	detail := DocumentDetail{Document: doc}

	if err := s.DB.Where("document_id = ?", doc.ID).
		Order("line_number asc").
		Find(&detail.Lines).Error; err != nil {
		return nil, err
	}

	if err := s.DB.Where("document_id = ?", doc.ID).
		Order("performed_at asc, id asc").
		Find(&detail.History).Error; err != nil {
		return nil, err
	}

	if err := s.DB.Where("document_id = ?", doc.ID).
		Order("id asc").
		Find(&detail.Attachments).Error; err != nil {
		return nil, err
	}

	return &detail, nil
}

var listSortColumns = map[string]string{
	"created_at":      "created_at",
	"document_number": "document_number",
	"status":          "status",
	"version":         "version",
}

// List pages through a type's documents with optional free-text search on the
// document number and equality filters on status and scope tags.
func (s *DocumentService) List(typeCode string, filter ListFilter) ([]Document, int64, int, error) {
	typ, err := s.Types.ResolveByCode(typeCode)
	if err != nil {
		return nil, 0, 0, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	base := s.DB.Model(&Document{}).Where("document_type_id = ?", typ.ID)

	if search := strings.TrimSpace(filter.Search); search != "" {
		base = base.Where("LOWER(document_number) LIKE LOWER(?)", "%"+search+"%")
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		base = base.Where("status = ?", status)
	}
	if filter.ProjectID != nil {
		base = base.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.WarehouseID != nil {
		base = base.Where("warehouse_id = ?", *filter.WarehouseID)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, 0, err
	}

	sortCol, ok := listSortColumns[filter.SortBy]
	if !ok {
		sortCol = "created_at"
	}
	dir := "desc"
	if strings.EqualFold(filter.SortDir, "asc") {
		dir = "asc"
	}

	var docs []Document
	err = base.
		Order(sortCol + " " + dir).
		Limit(filter.PageSize).
		Offset((filter.Page - 1) * filter.PageSize).
		Find(&docs).Error
	if err != nil {
		return nil, 0, 0, err
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.PageSize)))
	return docs, total, totalPages, nil
}

func marshalData(data map[string]any) (datatypes.JSON, error) {
	if data == nil {
		data = map[string]any{}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
