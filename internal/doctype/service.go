package doctype

import (
	"encoding/json"
	"errors"
	"strings"

	"dynadoc-api/internal/apperrors"

	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type DocTypeService struct {
	DB *gorm.DB
}

func isDuplicateErr(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint") || strings.Contains(msg, "unique constraint")
}

func (s *DocTypeService) CreateType(input CreateTypeInput, userID int64) (*DocumentType, error) {
	code := strings.TrimSpace(input.Code)

	var count int64
	if err := s.DB.Model(&DocumentType{}).Where("code = ?", code).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, &apperrors.DuplicateCodeError{Code: code}
	}

	flow := DefaultStatusFlow()
	if input.StatusFlow != nil {
		flow = *input.StatusFlow
	}
	flowJSON, err := json.Marshal(flow)
	if err != nil {
		return nil, err
	}

	t := DocumentType{
		Code:           code,
		Name:           strings.TrimSpace(input.Name),
		LocalName:      strings.TrimSpace(input.LocalName),
		Category:       strings.TrimSpace(input.Category),
		StatusFlow:     datatypes.JSON(flowJSON),
		ApprovalConfig: datatypes.JSON(input.ApprovalConfig),
		CreateRoles:    input.CreateRoles,
		ViewRoles:      input.ViewRoles,
		ApproveRoles:   input.ApproveRoles,
		Settings:       datatypes.JSON(input.Settings),
		VisibleToRoles: input.VisibleToRoles,
		IsActive:       true,
		Version:        1,
		CreatedBy:      userID,
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&t).Error; err != nil {
			return err
		}

		for i, fi := range input.Fields {
			field := fieldFromInput(t.ID, fi, i)
			if err := tx.Create(&field).Error; err != nil {
				return err
			}
			t.Fields = append(t.Fields, field)
		}
		return nil
	})
	if err != nil {
		if isDuplicateErr(err) {
			return nil, &apperrors.DuplicateCodeError{Code: code}
		}
		return nil, err
	}

	return &t, nil
}

func (s *DocTypeService) UpdateType(id int64, input UpdateTypeInput) (*DocumentType, error) {
	var t DocumentType
	if err := s.DB.First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperrors.NotFoundError{Resource: "document type"}
		}
		return nil, err
	}

	updates := map[string]interface{}{
		"version": gorm.Expr("version + 1"),
	}
	if input.Name != nil {
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.LocalName != nil {
		updates["local_name"] = strings.TrimSpace(*input.LocalName)
	}
	if input.Category != nil {
		updates["category"] = strings.TrimSpace(*input.Category)
	}
	if input.StatusFlow != nil {
		flowJSON, err := json.Marshal(*input.StatusFlow)
		if err != nil {
			return nil, err
		}
		updates["status_flow"] = datatypes.JSON(flowJSON)
	}
	if input.ApprovalConfig != nil {
		updates["approval_config"] = datatypes.JSON(input.ApprovalConfig)
	}
	if input.CreateRoles != nil {
		updates["create_roles"] = pqArray(input.CreateRoles)
	}
	if input.ViewRoles != nil {
		updates["view_roles"] = pqArray(input.ViewRoles)
	}
	if input.ApproveRoles != nil {
		updates["approve_roles"] = pqArray(input.ApproveRoles)
	}
	if input.Settings != nil {
		updates["settings"] = datatypes.JSON(input.Settings)
	}
	if input.VisibleToRoles != nil {
		updates["visible_to_roles"] = pqArray(input.VisibleToRoles)
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}

	if err := s.DB.Model(&t).Updates(updates).Error; err != nil {
		return nil, err
	}

	return s.GetType(id)
}

// DeleteType hard-deletes a type and its field definitions. A type with
// existing instances cannot be deleted, only deactivated.
func (s *DocTypeService) DeleteType(id int64) error {
	var t DocumentType
	if err := s.DB.First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &apperrors.NotFoundError{Resource: "document type"}
		}
		return err
	}

	var instances int64
	if err := s.DB.Table("documents").Where("document_type_id = ?", id).Count(&instances).Error; err != nil {
		return err
	}
	if instances > 0 {
		return &apperrors.BusinessRuleError{Message: "cannot delete a document type that has documents; deactivate it instead"}
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_type_id = ?", id).Delete(&FieldDefinition{}).Error; err != nil {
			return err
		}
		return tx.Delete(&DocumentType{}, id).Error
	})
}

func (s *DocTypeService) AddField(typeID int64, input FieldInput) (*FieldDefinition, error) {
	if err := s.typeExists(typeID); err != nil {
		return nil, err
	}

	key := strings.TrimSpace(input.FieldKey)

	var count int64
	if err := s.DB.Model(&FieldDefinition{}).
		Where("document_type_id = ? AND field_key = ?", typeID, key).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, &apperrors.BusinessRuleError{Message: "field key " + key + " already exists on this type"}
	}

	sortOrder := 0
	if input.SortOrder != nil {
		sortOrder = *input.SortOrder
	} else {
		var max int
		err := s.DB.Model(&FieldDefinition{}).
			Where("document_type_id = ?", typeID).
			Select("COALESCE(MAX(sort_order), -1)").
			Scan(&max).Error
		if err != nil {
			return nil, err
		}
		sortOrder = max + 1
	}

	field := fieldFromInput(typeID, input, sortOrder)
	if err := s.DB.Create(&field).Error; err != nil {
		return nil, err
	}
	return &field, nil
}

func (s *DocTypeService) UpdateField(typeID, fieldID int64, input UpdateFieldInput) (*FieldDefinition, error) {
	field, err := s.fieldOfType(typeID, fieldID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Label != nil {
		updates["label"] = *input.Label
	}
	if input.FieldType != nil {
		updates["field_type"] = *input.FieldType
	}
	if input.Options != nil {
		updates["options"] = datatypes.JSON(input.Options)
	}
	if input.IsRequired != nil {
		updates["is_required"] = *input.IsRequired
	}
	if input.ShowInGrid != nil {
		updates["show_in_grid"] = *input.ShowInGrid
	}
	if input.ShowInForm != nil {
		updates["show_in_form"] = *input.ShowInForm
	}
	if input.SectionName != nil {
		updates["section_name"] = *input.SectionName
	}
	if input.SortOrder != nil {
		updates["sort_order"] = *input.SortOrder
	}
	if input.ValidationRules != nil {
		updates["validation_rules"] = datatypes.JSON(input.ValidationRules)
	}
	if input.DefaultValue != nil {
		updates["default_value"] = datatypes.JSON(input.DefaultValue)
	}
	if input.ColSpan != nil {
		updates["col_span"] = *input.ColSpan
	}
	if input.IsLineItem != nil {
		updates["is_line_item"] = *input.IsLineItem
	}
	if input.IsReadOnly != nil {
		updates["is_read_only"] = *input.IsReadOnly
	}
	if input.ConditionalDisplay != nil {
		updates["conditional_display"] = datatypes.JSON(input.ConditionalDisplay)
	}

	if len(updates) > 0 {
		if err := s.DB.Model(field).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	return s.fieldOfType(typeID, fieldID)
}

// DeleteField removes a field definition. Data already stored on instances is
// left untouched; schema and stored data are allowed to drift.
func (s *DocTypeService) DeleteField(typeID, fieldID int64) error {
	field, err := s.fieldOfType(typeID, fieldID)
	if err != nil {
		return err
	}
	return s.DB.Delete(field).Error
}

// ReorderFields assigns sort_order = position for the given ordered id list,
// as one all-or-nothing batch.
func (s *DocTypeService) ReorderFields(typeID int64, fieldIDs []int64) error {
	if err := s.typeExists(typeID); err != nil {
		return err
	}

	var fields []FieldDefinition
	if err := s.DB.Where("document_type_id = ?", typeID).Find(&fields).Error; err != nil {
		return err
	}

	known := make(map[int64]struct{}, len(fields))
	for _, f := range fields {
		known[f.ID] = struct{}{}
	}
	for _, id := range fieldIDs {
		if _, ok := known[id]; !ok {
			return &apperrors.NotFoundError{Resource: "field definition"}
		}
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		for i, id := range fieldIDs {
			if err := tx.Model(&FieldDefinition{}).
				Where("id = ? AND document_type_id = ?", id, typeID).
				Update("sort_order", i).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ResolveByCode is the canonical read every other component uses. Inactive
// and unknown codes are indistinguishable to callers.
func (s *DocTypeService) ResolveByCode(code string) (*DocumentType, error) {
	code = strings.TrimSpace(code)

	var t DocumentType
	err := s.DB.Where("code = ? AND is_active = ?", code, true).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperrors.NotFoundError{Resource: code}
		}
		return nil, err
	}

	if err := s.loadFields(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *DocTypeService) GetType(id int64) (*DocumentType, error) {
	var t DocumentType
	if err := s.DB.First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperrors.NotFoundError{Resource: "document type"}
		}
		return nil, err
	}

	if err := s.loadFields(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *DocTypeService) ListTypes() ([]DocumentType, error) {
	var types []DocumentType
	if err := s.DB.Order("category asc, name asc").Find(&types).Error; err != nil {
		return nil, err
	}
	return types, nil
}

// ListVisible filters active types by navigation visibility. Unlike the RBAC
// capability checks there is no automatic admin bypass here; visibility is
// purely role-list membership (empty list or wildcard means everyone).
func (s *DocTypeService) ListVisible(roles []string) ([]DocumentType, error) {
	var types []DocumentType
	if err := s.DB.Where("is_active = ?", true).Order("category asc, name asc").Find(&types).Error; err != nil {
		return nil, err
	}

	visible := []DocumentType{}
	for _, t := range types {
		if typeVisibleTo(t.VisibleToRoles, roles) {
			visible = append(visible, t)
		}
	}
	return visible, nil
}

func typeVisibleTo(visibleToRoles []string, roles []string) bool {
	if len(visibleToRoles) == 0 {
		return true
	}
	for _, v := range visibleToRoles {
		if v == "*" {
			return true
		}
		for _, r := range roles {
			if v == r {
				return true
			}
		}
	}
	return false
}

func (s *DocTypeService) typeExists(id int64) error {
	var count int64
	if err := s.DB.Model(&DocumentType{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return &apperrors.NotFoundError{Resource: "document type"}
	}
	return nil
}

func (s *DocTypeService) fieldOfType(typeID, fieldID int64) (*FieldDefinition, error) {
	var field FieldDefinition
	err := s.DB.Where("id = ? AND document_type_id = ?", fieldID, typeID).First(&field).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperrors.NotFoundError{Resource: "field definition"}
		}
		return nil, err
	}
	return &field, nil
}

func (s *DocTypeService) loadFields(t *DocumentType) error {
	return s.DB.Where("document_type_id = ?", t.ID).
		Order("sort_order asc, id asc").
		Find(&t.Fields).Error
}

func fieldFromInput(typeID int64, input FieldInput, defaultSort int) FieldDefinition {
	fieldType := strings.TrimSpace(input.FieldType)
	if fieldType == "" {
		fieldType = FieldTypeText
	}

	showInForm := true
	if input.ShowInForm != nil {
		showInForm = *input.ShowInForm
	}

	sortOrder := defaultSort
	if input.SortOrder != nil {
		sortOrder = *input.SortOrder
	}

	colSpan := input.ColSpan
	if colSpan <= 0 {
		colSpan = 1
	}

	return FieldDefinition{
		DocumentTypeID:     typeID,
		FieldKey:           strings.TrimSpace(input.FieldKey),
		Label:              strings.TrimSpace(input.Label),
		FieldType:          fieldType,
		Options:            datatypes.JSON(input.Options),
		IsRequired:         input.IsRequired,
		ShowInGrid:         input.ShowInGrid,
		ShowInForm:         showInForm,
		SectionName:        strings.TrimSpace(input.SectionName),
		SortOrder:          sortOrder,
		ValidationRules:    datatypes.JSON(input.ValidationRules),
		DefaultValue:       datatypes.JSON(input.DefaultValue),
		ColSpan:            colSpan,
		IsLineItem:         input.IsLineItem,
		IsReadOnly:         input.IsReadOnly,
		ConditionalDisplay: datatypes.JSON(input.ConditionalDisplay),
	}
}

func pqArray(values []string) pq.StringArray {
	return pq.StringArray(values)
}
