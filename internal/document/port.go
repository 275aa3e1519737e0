package document

type DocumentServiceAPI interface {
	Create(typeCode string, req CreateDocumentRequest, userID int64) (*DocumentDetail, error)
	Update(typeCode string, id int64, req UpdateDocumentRequest, userID int64) (*DocumentDetail, *DocumentDetail, error)
	Transition(typeCode string, id int64, targetStatus string, userID int64, comment string) (*DocumentDetail, error)
	Get(typeCode string, id int64) (*DocumentDetail, error)
	List(typeCode string, filter ListFilter) ([]Document, int64, int, error)
	ExportXLSX(typeCode string, filter ListFilter) ([]byte, error)
	ReplaceFieldAttachments(typeCode string, id int64, fieldKey string, items []AttachmentUploadInput, userID int64) ([]DocumentAttachment, error)
	GetAttachmentBytes(id int64) ([]byte, string, string, error)
}
