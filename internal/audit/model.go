package audit

import (
	"time"

	"gorm.io/datatypes"
)

// Entry is one append-only audit record written after a successful engine
// write. Old/new value snapshots let consumers diff what changed.
type Entry struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Action    string         `gorm:"size:100;not null" json:"action"`
	Service   string         `gorm:"size:100;not null" json:"service"`
	RecordID  int64          `gorm:"not null;index" json:"record_id"`
	UserID    *int64         `gorm:"index" json:"user_id,omitempty"`
	OldValues datatypes.JSON `gorm:"type:jsonb" json:"old_values,omitempty"`
	NewValues datatypes.JSON `gorm:"type:jsonb" json:"new_values,omitempty"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (Entry) TableName() string { return "audit_entries" }

type EntryFilterInput struct {
	Action   *string `json:"action"`
	Service  *string `json:"service"`
	RecordID *int64  `json:"record_id"`
	UserID   *int64  `json:"user_id"`

	StartDate *string `json:"start_date"` // "YYYY-MM-DD" or RFC3339
	EndDate   *string `json:"end_date"`

	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}
