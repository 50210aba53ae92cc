package schema

// CoreChapterTable represents the 'core.chapter' table
type CoreChapterTable struct {
	Table       string
	ID          string
	ComicID     string
	Number      string
	Title       string
	PublishedAt string
	CreatedAt   string
	UpdatedAt   string
	DeletedAt   string
}

// CoreChapter is the schema definition for core.chapter
var CoreChapter = CoreChapterTable{
	Table:       "core.chapter",
	ID:          "id",
	ComicID:     "comicid",
	Number:      "number",
	Title:       "title",
	PublishedAt: "publishedat",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
	DeletedAt:   "deletedat",
}

// Columns returns all standard column names
func (t CoreChapterTable) Columns() []string {
	return []string{
		t.ID, t.ComicID, t.Number, t.Title, t.PublishedAt,
		t.CreatedAt, t.UpdatedAt, t.DeletedAt,
	}
}
