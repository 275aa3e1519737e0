package doctype

import (
	"encoding/json"
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// DocumentType is a runtime-defined schema for a class of business documents:
// field list, status workflow and permission role lists. Code is immutable
// after creation.
type DocumentType struct {
	ID             int64          `json:"id" gorm:"primaryKey;autoIncrement"`
	Code           string         `json:"code" gorm:"type:varchar(100);uniqueIndex;not null"`
	Name           string         `json:"name" gorm:"type:text;not null"`
	LocalName      string         `json:"local_name" gorm:"type:text"`
	Category       string         `json:"category" gorm:"type:varchar(100)"`
	StatusFlow     datatypes.JSON `json:"status_flow" gorm:"type:jsonb"`
	ApprovalConfig datatypes.JSON `json:"approval_config" gorm:"type:jsonb"`
	CreateRoles    pq.StringArray `json:"create_roles" gorm:"type:text[]"`
	ViewRoles      pq.StringArray `json:"view_roles" gorm:"type:text[]"`
	ApproveRoles   pq.StringArray `json:"approve_roles" gorm:"type:text[]"`
	Settings       datatypes.JSON `json:"settings" gorm:"type:jsonb"`
	VisibleToRoles pq.StringArray `json:"visible_to_roles" gorm:"type:text[]"`
	IsActive       bool           `json:"is_active" gorm:"not null;default:true"`
	Version        int            `json:"version" gorm:"not null;default:1"`
	CreatedBy      int64          `json:"created_by"`
	CreatedAt      time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time      `json:"updated_at" gorm:"autoUpdateTime"`

	Fields []FieldDefinition `json:"fields,omitempty" gorm:"foreignKey:DocumentTypeID"`
}

func (DocumentType) TableName() string { return "document_types" }

// Field kinds the validation engine dispatches on.
const (
	FieldTypeText        = "text"
	FieldTypeTextarea    = "textarea"
	FieldTypeNumber      = "number"
	FieldTypeDate        = "date"
	FieldTypeDatetime    = "datetime"
	FieldTypeSelect      = "select"
	FieldTypeMultiselect = "multiselect"
	FieldTypeRadio       = "radio"
	FieldTypeCheckbox    = "checkbox"
	FieldTypeFile        = "file"
)

type FieldDefinition struct {
	ID                 int64          `json:"id" gorm:"primaryKey;autoIncrement"`
	DocumentTypeID     int64          `json:"document_type_id" gorm:"not null;index;uniqueIndex:uq_field_defs_type_key"`
	FieldKey           string         `json:"field_key" gorm:"type:varchar(150);not null;uniqueIndex:uq_field_defs_type_key"`
	Label              string         `json:"label" gorm:"type:text;not null"`
	FieldType          string         `json:"field_type" gorm:"type:varchar(50);not null;default:'text'"`
	Options            datatypes.JSON `json:"options" gorm:"type:jsonb"`
	IsRequired         bool           `json:"is_required" gorm:"not null;default:false"`
	ShowInGrid         bool           `json:"show_in_grid" gorm:"not null;default:false"`
	ShowInForm         bool           `json:"show_in_form" gorm:"not null;default:true"`
	SectionName        string         `json:"section_name" gorm:"type:text"`
	SortOrder          int            `json:"sort_order" gorm:"not null;default:0"`
	ValidationRules    datatypes.JSON `json:"validation_rules" gorm:"type:jsonb"`
	DefaultValue       datatypes.JSON `json:"default_value" gorm:"type:jsonb"`
	ColSpan            int            `json:"col_span" gorm:"not null;default:1"`
	IsLineItem         bool           `json:"is_line_item" gorm:"not null;default:false"`
	IsReadOnly         bool           `json:"is_read_only" gorm:"not null;default:false"`
	ConditionalDisplay datatypes.JSON `json:"conditional_display" gorm:"type:jsonb"`
	CreatedAt          time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt          time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

func (FieldDefinition) TableName() string { return "document_field_definitions" }

// Status is one node of a type's workflow.
type Status struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Color string `json:"color"`
}

// StatusFlow is the persisted workflow shape. Transitions is an adjacency
// list; a status absent from the map, or mapped to an empty list, is terminal.
type StatusFlow struct {
	InitialStatus string              `json:"initialStatus"`
	Statuses      []Status            `json:"statuses"`
	Transitions   map[string][]string `json:"transitions"`
}

// DefaultStatusFlow is what a type created without a workflow gets: a single
// permanent "draft" status with no transitions.
func DefaultStatusFlow() StatusFlow {
	return StatusFlow{
		InitialStatus: "draft",
		Statuses:      []Status{{Key: "draft", Label: "Draft", Color: "#9e9e9e"}},
		Transitions:   map[string][]string{},
	}
}

// AllowedFrom returns the transition targets reachable directly from status.
func (f StatusFlow) AllowedFrom(status string) []string {
	if f.Transitions == nil {
		return []string{}
	}
	allowed, ok := f.Transitions[status]
	if !ok || allowed == nil {
		return []string{}
	}
	return allowed
}

// HasStatus reports whether key is a member of the flow's status list.
func (f StatusFlow) HasStatus(key string) bool {
	for _, s := range f.Statuses {
		if s.Key == key {
			return true
		}
	}
	return false
}

// IsEditable reports whether an instance in the given status may still be
// mutated: the initial status, or any status with at least one outgoing
// transition. A terminal status in a degenerate one-state flow is never
// editable even though it is the initial status.
func (f StatusFlow) IsEditable(status string) bool {
	if len(f.AllowedFrom(status)) > 0 {
		return true
	}
	if status == f.InitialStatus && len(f.Statuses) > 1 {
		return true
	}
	return false
}

// Flow decodes the type's persisted status flow, falling back to the default
// single-status flow when none was ever configured.
func (t *DocumentType) Flow() (StatusFlow, error) {
	if len(t.StatusFlow) == 0 {
		return DefaultStatusFlow(), nil
	}
	var f StatusFlow
	if err := json.Unmarshal(t.StatusFlow, &f); err != nil {
		return StatusFlow{}, err
	}
	if f.InitialStatus == "" && len(f.Statuses) == 0 {
		return DefaultStatusFlow(), nil
	}
	return f, nil
}

// NumberPrefix reads settings.numberPrefix, used to namespace generated
// document numbers. Empty when unset.
func (t *DocumentType) NumberPrefix() string {
	if len(t.Settings) == 0 {
		return ""
	}
	var settings map[string]any
	if err := json.Unmarshal(t.Settings, &settings); err != nil {
		return ""
	}
	if p, ok := settings["numberPrefix"].(string); ok {
		return p
	}
	return ""
}

type FieldInput struct {
	FieldKey           string          `json:"field_key" binding:"required"`
	Label              string          `json:"label"`
	FieldType          string          `json:"field_type"`
	Options            json.RawMessage `json:"options"`
	IsRequired         bool            `json:"is_required"`
	ShowInGrid         bool            `json:"show_in_grid"`
	ShowInForm         *bool           `json:"show_in_form"`
	SectionName        string          `json:"section_name"`
	SortOrder          *int            `json:"sort_order"`
	ValidationRules    json.RawMessage `json:"validation_rules"`
	DefaultValue       json.RawMessage `json:"default_value"`
	ColSpan            int             `json:"col_span"`
	IsLineItem         bool            `json:"is_line_item"`
	IsReadOnly         bool            `json:"is_read_only"`
	ConditionalDisplay json.RawMessage `json:"conditional_display"`
}

type UpdateFieldInput struct {
	Label              *string         `json:"label"`
	FieldType          *string         `json:"field_type"`
	Options            json.RawMessage `json:"options"`
	IsRequired         *bool           `json:"is_required"`
	ShowInGrid         *bool           `json:"show_in_grid"`
	ShowInForm         *bool           `json:"show_in_form"`
	SectionName        *string         `json:"section_name"`
	SortOrder          *int            `json:"sort_order"`
	ValidationRules    json.RawMessage `json:"validation_rules"`
	DefaultValue       json.RawMessage `json:"default_value"`
	ColSpan            *int            `json:"col_span"`
	IsLineItem         *bool           `json:"is_line_item"`
	IsReadOnly         *bool           `json:"is_read_only"`
	ConditionalDisplay json.RawMessage `json:"conditional_display"`
}

type CreateTypeInput struct {
	Code           string          `json:"code" binding:"required"`
	Name           string          `json:"name" binding:"required"`
	LocalName      string          `json:"local_name"`
	Category       string          `json:"category"`
	StatusFlow     *StatusFlow     `json:"status_flow"`
	ApprovalConfig json.RawMessage `json:"approval_config"`
	CreateRoles    []string        `json:"create_roles"`
	ViewRoles      []string        `json:"view_roles"`
	ApproveRoles   []string        `json:"approve_roles"`
	Settings       json.RawMessage `json:"settings"`
	VisibleToRoles []string        `json:"visible_to_roles"`
	Fields         []FieldInput    `json:"fields"`
}

type UpdateTypeInput struct {
	Name           *string         `json:"name"`
	LocalName      *string         `json:"local_name"`
	Category       *string         `json:"category"`
	StatusFlow     *StatusFlow     `json:"status_flow"`
	ApprovalConfig json.RawMessage `json:"approval_config"`
	CreateRoles    []string        `json:"create_roles"`
	ViewRoles      []string        `json:"view_roles"`
	ApproveRoles   []string        `json:"approve_roles"`
	Settings       json.RawMessage `json:"settings"`
	VisibleToRoles []string        `json:"visible_to_roles"`
	IsActive       *bool           `json:"is_active"`
}

type ReorderFieldsInput struct {
	FieldIDs []int64 `json:"field_ids" binding:"required"`
}
