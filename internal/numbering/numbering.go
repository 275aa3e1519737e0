package numbering

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Generator hands out document numbers unique within a namespace (the
// document-type code). A failure aborts the caller's create transaction.
type Generator interface {
	Generate(tx *gorm.DB, namespace, prefix string) (string, error)
}

// DocumentSequence is one counter row per namespace.
type DocumentSequence struct {
	ID         int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Namespace  string `json:"namespace" gorm:"type:varchar(100);uniqueIndex;not null"`
	LastNumber int64  `json:"last_number" gorm:"not null;default:0"`
}

func (DocumentSequence) TableName() string { return "document_sequences" }

// SequenceGenerator issues numbers of the form PREFIX-YYYY-NNNNNN from a
// per-namespace counter bumped inside the caller's transaction, so a rolled
// back create never burns a number silently committed elsewhere.
type SequenceGenerator struct{}

func (g *SequenceGenerator) Generate(tx *gorm.DB, namespace, prefix string) (string, error) {
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		return "", fmt.Errorf("numbering: namespace is required")
	}

	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = strings.ToUpper(namespace)
	}

	var seq DocumentSequence
	err := tx.Where("namespace = ?", namespace).First(&seq).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return "", err
		}
		seq = DocumentSequence{Namespace: namespace}
		if err := tx.Create(&seq).Error; err != nil {
			return "", err
		}
	}

	seq.LastNumber++
	if err := tx.Model(&seq).Update("last_number", seq.LastNumber).Error; err != nil {
		return "", err
	}

	return fmt.Sprintf("%s-%d-%06d", prefix, time.Now().Year(), seq.LastNumber), nil
}
