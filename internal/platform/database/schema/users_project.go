package schema

// UserProjectTable represents the 'users.project' table
type UserProjectTable struct {
	Table       string
	ID          string
	OwnerID     string
	Name        string
	Description string
	CoverID     string
	CreatedAt   string
	UpdatedAt   string
	DeletedAt   string
}

// UserProject is the schema definition for users.project
var UserProject = UserProjectTable{
	Table:       "users.project",
	ID:          "id",
	OwnerID:     "ownerid",
	Name:        "name",
	Description: "description",
	CoverID:     "coverid",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
	DeletedAt:   "deletedat",
}

// Columns returns all standard column names
func (t UserProjectTable) Columns() []string {
	return []string{
		t.ID, t.OwnerID, t.Name, t.Description, t.CoverID,
		t.CreatedAt, t.UpdatedAt, t.DeletedAt,
	}
}
