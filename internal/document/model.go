package document

import (
	"time"

	"gorm.io/datatypes"
)

// Document is one instance created under a runtime-defined document type.
// Version is a logical clock bumped on every successful update or transition.
type Document struct {
	ID             int64          `json:"id" gorm:"primaryKey;autoIncrement"`
	DocumentTypeID int64          `json:"document_type_id" gorm:"not null;index"`
	DocumentNumber string         `json:"document_number" gorm:"type:varchar(100);uniqueIndex;not null"`
	Status         string         `json:"status" gorm:"type:varchar(100);not null"`
	Data           datatypes.JSON `json:"data" gorm:"type:jsonb"`
	ProjectID      *int64         `json:"project_id,omitempty" gorm:"index"`
	WarehouseID    *int64         `json:"warehouse_id,omitempty" gorm:"index"`
	Version        int            `json:"version" gorm:"not null;default:1"`
	CreatedBy      int64          `json:"created_by"`
	UpdatedBy      int64          `json:"updated_by"`
	CreatedAt      time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Document) TableName() string { return "documents" }

// DocumentLine rows are only ever wholesale-replaced, never patched.
type DocumentLine struct {
	ID         int64          `json:"id" gorm:"primaryKey;autoIncrement"`
	DocumentID int64          `json:"document_id" gorm:"not null;index"`
	LineNumber int            `json:"line_number" gorm:"not null"`
	Data       datatypes.JSON `json:"data" gorm:"type:jsonb"`
	CreatedAt  time.Time      `json:"created_at" gorm:"autoCreateTime"`
}

func (DocumentLine) TableName() string { return "document_lines" }

// DocumentHistory is append-only. FromStatus is nil only on the creation
// entry.
type DocumentHistory struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	DocumentID  int64     `json:"document_id" gorm:"not null;index"`
	FromStatus  *string   `json:"from_status,omitempty" gorm:"type:varchar(100)"`
	ToStatus    string    `json:"to_status" gorm:"type:varchar(100);not null"`
	PerformedBy int64     `json:"performed_by" gorm:"not null"`
	Comment     string    `json:"comment" gorm:"type:text"`
	PerformedAt time.Time `json:"performed_at" gorm:"autoCreateTime"`
}

func (DocumentHistory) TableName() string { return "document_history" }

type DocumentAttachment struct {
	ID            int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	DocumentID    int64     `json:"document_id" gorm:"not null;index"`
	FieldKey      string    `json:"field_key" gorm:"type:varchar(150);not null;index"`
	FileName      string    `json:"file_name" gorm:"type:text;not null"`
	MimeType      string    `json:"mime_type" gorm:"type:text;not null;default:''"`
	FileSizeBytes int64     `json:"file_size_bytes" gorm:"not null;default:0"`
	FileURL       string    `json:"file_url" gorm:"type:text;not null"`
	UploadedBy    int64     `json:"uploaded_by" gorm:"not null"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (DocumentAttachment) TableName() string { return "document_attachments" }

type CreateDocumentRequest struct {
	Data        map[string]any   `json:"data"`
	Lines       []map[string]any `json:"lines"`
	ProjectID   *int64           `json:"project_id"`
	WarehouseID *int64           `json:"warehouse_id"`
}

// UpdateDocumentRequest fields are optional; a nil Data leaves the header
// untouched, a non-nil Lines wholesale-replaces every line.
type UpdateDocumentRequest struct {
	Data        map[string]any    `json:"data"`
	Lines       *[]map[string]any `json:"lines"`
	ProjectID   *int64            `json:"project_id"`
	WarehouseID *int64            `json:"warehouse_id"`
}

type TransitionRequest struct {
	Status  string `json:"status" binding:"required"`
	Comment string `json:"comment"`
}

type AttachmentUploadInput struct {
	FileName   string `json:"file_name"`
	MimeType   string `json:"mime_type"`
	DataBase64 string `json:"data_base64"`
}

type ListFilter struct {
	Page        int    `form:"page"`
	PageSize    int    `form:"page_size"`
	Search      string `form:"search"`
	Status      string `form:"status"`
	ProjectID   *int64 `form:"project_id"`
	WarehouseID *int64 `form:"warehouse_id"`
	SortBy      string `form:"sort_by"`
	SortDir     string `form:"sort_dir"`
}

// DocumentDetail is the full read shape: header plus ordered lines, history
// and attachments.
type DocumentDetail struct {
	Document
	Lines       []DocumentLine       `json:"lines"`
	History     []DocumentHistory    `json:"history"`
	Attachments []DocumentAttachment `json:"attachments"`
}
