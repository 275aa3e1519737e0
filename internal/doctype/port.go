package doctype

type DocTypeServiceAPI interface {
	CreateType(input CreateTypeInput, userID int64) (*DocumentType, error)
	UpdateType(id int64, input UpdateTypeInput) (*DocumentType, error)
	DeleteType(id int64) error
	AddField(typeID int64, input FieldInput) (*FieldDefinition, error)
	UpdateField(typeID, fieldID int64, input UpdateFieldInput) (*FieldDefinition, error)
	DeleteField(typeID, fieldID int64) error
	ReorderFields(typeID int64, fieldIDs []int64) error
	ResolveByCode(code string) (*DocumentType, error)
	GetType(id int64) (*DocumentType, error)
	ListTypes() ([]DocumentType, error)
	ListVisible(roles []string) ([]DocumentType, error)
}
