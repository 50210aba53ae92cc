package schema

// CoreCategoryTable represents the 'core.category' table
type CoreCategoryTable struct {
	Table      string
	ID         string
	Name       string
	Slug       string
	ComicCount string
	CreatedAt  string
	UpdatedAt  string
}

// CoreCategory is the schema definition for core.category
var CoreCategory = CoreCategoryTable{
	Table:      "core.category",
	ID:         "id",
	Name:       "name",
	Slug:       "slug",
	ComicCount: "comiccount",
	CreatedAt:  "createdat",
	UpdatedAt:  "updatedat",
}

// Columns returns all standard column names
func (t CoreCategoryTable) Columns() []string {
	return []string{
		t.ID, t.Name, t.Slug, t.ComicCount, t.CreatedAt, t.UpdatedAt,
	}
}
