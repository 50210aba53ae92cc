package schema

// CoreComicTable represents the 'core.comic' table
type CoreComicTable struct {
	Table       string
	ID          string
	AuthorID    string
	ProjectID   string
	Title       string
	Slug        string
	Description string
	Status      string
	CoverID     string
	CreatedAt   string
	UpdatedAt   string
	DeletedAt   string
}

// CoreComic is the schema definition for core.comic
var CoreComic = CoreComicTable{
	Table:       "core.comic",
	ID:          "id",
	AuthorID:    "authorid",
	ProjectID:   "projectid",
	Title:       "title",
	Slug:        "slug",
	Description: "description",
	Status:      "status",
	CoverID:     "coverid",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
	DeletedAt:   "deletedat",
}

// Columns returns all standard column names
func (t CoreComicTable) Columns() []string {
	return []string{
		t.ID, t.AuthorID, t.ProjectID, t.Title, t.Slug, t.Description,
		t.Status, t.CoverID, t.CreatedAt, t.UpdatedAt, t.DeletedAt,
	}
}
