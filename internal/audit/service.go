package audit

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"dynadoc-api/internal/util"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AuditService struct {
	DB *gorm.DB
}

// Record appends one audit entry. Callers fire it after their own transaction
// has committed and must treat failures as non-fatal.
func (s *AuditService) Record(action, service string, recordID int64, userID *int64, oldValues, newValues interface{}) error {
	entry := Entry{
		Action:    action,
		Service:   service,
		RecordID:  recordID,
		UserID:    userID,
		CreatedAt: time.Now(),
	}

	if oldValues != nil {
		if b, err := json.Marshal(oldValues); err == nil {
			entry.OldValues = datatypes.JSON(b)
		}
	}
	if newValues != nil {
		if b, err := json.Marshal(newValues); err == nil {
			entry.NewValues = datatypes.JSON(b)
		}
	}

	return s.DB.Create(&entry).Error
}

func (s *AuditService) GetEntries(input EntryFilterInput) ([]Entry, int64, int, error) {
	if input.Page <= 0 {
		input.Page = 1
	}
	if input.PageSize <= 0 || input.PageSize > 100 {
		input.PageSize = 20
	}

	base := s.DB.Model(&Entry{})

	// Default window: last 30 days when no dates given
	if input.StartDate == nil && input.EndDate == nil {
		base = base.Where("created_at >= ?", time.Now().AddDate(0, 0, -30))
	} else {
		start, hasStart, end, hasEnd, err := util.ParseDateRange(input.StartDate, input.EndDate)
		if err != nil {
			return nil, 0, 0, err
		}
		if hasStart {
			base = base.Where("created_at >= ?", start)
		}
		if hasEnd {
			base = base.Where("created_at < ?", end)
		}
	}

	if input.Action != nil && strings.TrimSpace(*input.Action) != "" {
		base = base.Where("action = ?", strings.TrimSpace(*input.Action))
	}
	if input.Service != nil && strings.TrimSpace(*input.Service) != "" {
		base = base.Where("service = ?", strings.TrimSpace(*input.Service))
	}
	if input.RecordID != nil {
		base = base.Where("record_id = ?", *input.RecordID)
	}
	if input.UserID != nil {
		base = base.Where("user_id = ?", *input.UserID)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, 0, err
	}

	var entries []Entry
	err := base.
		Order("created_at desc, id desc").
		Limit(input.PageSize).
		Offset((input.Page - 1) * input.PageSize).
		Find(&entries).Error
	if err != nil {
		return nil, 0, 0, err
	}

	totalPages := int(math.Ceil(float64(total) / float64(input.PageSize)))
	return entries, total, totalPages, nil
}
