package document

import (
	"dynadoc-api/internal/apperrors"
	"dynadoc-api/internal/util"

	"gorm.io/gorm"
)

// Transition walks one edge of the type's status graph. The graph is a plain
// adjacency table; cycles are legal if the type author configured them. An
// illegal target writes nothing and reports the allowed set.
func (s *DocumentService) Transition(typeCode string, id int64, targetStatus string, userID int64, comment string) (*DocumentDetail, error) {
	typ, err := s.Types.ResolveByCode(typeCode)
	if err != nil {
		return nil, err
	}

	doc, err := s.getForType(typ.ID, id)
	if err != nil {
		return nil, err
	}

	flow, err := typ.Flow()
	if err != nil {
		return nil, err
	}

	allowed := flow.AllowedFrom(doc.Status)
	legal := false
	for _, a := range allowed {
		if a == targetStatus {
			legal = true
			break
		}
	}
	if !legal {
		return nil, &apperrors.InvalidTransitionError{
			From:    doc.Status,
			To:      targetStatus,
			Allowed: allowed,
		}
	}

	fromStatus := doc.Status
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":     targetStatus,
			"updated_by": userID,
			"version":    gorm.Expr("version + 1"),
		}
		if err := tx.Model(&Document{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}

		hist := DocumentHistory{
			DocumentID:  id,
			FromStatus:  &fromStatus,
			ToStatus:    targetStatus,
			PerformedBy: userID,
			Comment:     util.ClampComment255(comment),
		}
		return tx.Create(&hist).Error
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(id)
}
