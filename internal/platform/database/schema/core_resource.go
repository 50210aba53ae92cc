package schema

// CoreResourceTable represents the 'core.resource' table.
//
// A resource is the metadata record for one uploaded binary object; the
// payload itself lives in object storage under ObjectKey.
type CoreResourceTable struct {
	Table       string
	ID          string
	OwnerID     string
	Kind        string
	ObjectKey   string
	ContentType string
	SizeBytes   string
	Visibility  string
	CreatedAt   string
	UpdatedAt   string
	DeletedAt   string
}

// CoreResource is the schema definition for core.resource
var CoreResource = CoreResourceTable{
	Table:       "core.resource",
	ID:          "id",
	OwnerID:     "ownerid",
	Kind:        "kind",
	ObjectKey:   "objectkey",
	ContentType: "contenttype",
	SizeBytes:   "sizebytes",
	Visibility:  "visibility",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
	DeletedAt:   "deletedat",
}

// Columns returns all standard column names
func (t CoreResourceTable) Columns() []string {
	return []string{
		t.ID, t.OwnerID, t.Kind, t.ObjectKey, t.ContentType, t.SizeBytes,
		t.Visibility, t.CreatedAt, t.UpdatedAt, t.DeletedAt,
	}
}
