package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"dynadoc-api/internal/apperrors"
	"dynadoc-api/internal/doctype"
	"dynadoc-api/internal/util"

	"cloud.google.com/go/storage"
	"gorm.io/gorm"
)

// Hooks so tests can stub cloud storage.
var (
	uploadAttachmentHook = util.UploadAttachmentToGCS
	deleteFolderHook     = util.DeleteGCSFolder
	newGCSClientHook     = func(ctx context.Context) (*storage.Client, error) {
		return storage.NewClient(ctx)
	}
)

// ReplaceFieldAttachments wholesale-replaces the attachments of one file
// field, mirroring the line-replacement semantics: every prior object and row
// for the field is dropped, then the new set is uploaded and recorded.
func (s *DocumentService) ReplaceFieldAttachments(typeCode string, id int64, fieldKey string, items []AttachmentUploadInput, userID int64) ([]DocumentAttachment, error) {
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
	if !flow.IsEditable(doc.Status) {
		return nil, &apperrors.BusinessRuleError{
			Message: fmt.Sprintf("document in status %s can no longer be edited", doc.Status),
		}
	}

	var field *doctype.FieldDefinition
	for i := range typ.Fields {
		if typ.Fields[i].FieldKey == fieldKey {
			field = &typ.Fields[i]
			break
		}
	}
	if field == nil {
		return nil, &apperrors.NotFoundError{Resource: "field definition"}
	}
	if field.FieldType != doctype.FieldTypeFile {
		return nil, &apperrors.BusinessRuleError{Message: fieldKey + " is not a file field"}
	}

	for i, item := range items {
		if strings.TrimSpace(item.DataBase64) == "" {
			return nil, &apperrors.BusinessRuleError{
				Message: fmt.Sprintf("attachment %d is missing data_base64", i+1),
			}
		}
	}

	prefix := util.FieldPrefix(typ.Code, doc.DocumentNumber, fieldKey)
	if _, err := deleteFolderHook(s.Bucket, prefix); err != nil {
		return nil, err
	}

	timestamp := time.Now().UTC().Format("20060102150405")
	uploaded := make([]DocumentAttachment, 0, len(items))

	for i, item := range items {
		ext := util.ExtFromFilenameOrMime(item.FileName, item.MimeType)
		objectName := fmt.Sprintf("%s/%s_%d_%s%s", prefix, timestamp, i+1, safeBase(item.FileName), ext)

		url, sizeBytes, err := uploadAttachmentHook(item.DataBase64, s.Bucket, objectName, item.MimeType)
		if err != nil {
			return nil, fmt.Errorf("failed to upload attachment %q: %w", strings.TrimSpace(item.FileName), err)
		}

		uploaded = append(uploaded, DocumentAttachment{
			DocumentID:    doc.ID,
			FieldKey:      fieldKey,
			FileName:      strings.TrimSpace(item.FileName),
			MimeType:      strings.TrimSpace(item.MimeType),
			FileSizeBytes: sizeBytes,
			FileURL:       url,
			UploadedBy:    userID,
		})
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ? AND field_key = ?", doc.ID, fieldKey).
			Delete(&DocumentAttachment{}).Error; err != nil {
			return err
		}
		for i := range uploaded {
			if err := tx.Create(&uploaded[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return uploaded, nil
}

// GetAttachmentBytes streams an attachment back from storage.
func (s *DocumentService) GetAttachmentBytes(id int64) ([]byte, string, string, error) {
	var rec DocumentAttachment
	if err := s.DB.First(&rec, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", "", &apperrors.NotFoundError{Resource: "attachment"}
		}
		return nil, "", "", err
	}

	bucket, objectPath, err := util.ParseGSURL(rec.FileURL)
	if err != nil {
		return nil, "", "", err
	}

	ctx := context.Background()
	client, err := newGCSClientHook(ctx)
	if err != nil {
		return nil, "", "", err
	}
	defer client.Close()

	rc, err := client.Bucket(bucket).Object(objectPath).NewReader(ctx)
	if err != nil {
		return nil, "", "", err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, "", "", err
	}

	contentType := strings.TrimSpace(rc.ContentType())
	if contentType == "" {
		contentType = strings.TrimSpace(rec.MimeType)
	}
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	filename := strings.TrimSpace(rec.FileName)
	if filename == "" {
		filename = path.Base(objectPath)
	}

	return data, contentType, filename, nil
}

func safeBase(name string) string {
	name = strings.TrimSpace(name)
	ext := path.Ext(name)
	base := strings.TrimSpace(strings.TrimSuffix(name, ext))
	base = util.SanitizePart(base)
	if base == "" || base == "unknown" {
		base = "file"
	}
	return base
}
