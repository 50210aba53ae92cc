package schema

// CoreComicCategoryTable represents the 'core.comiccategory' join table.
//
// Each row links one comic to one category.
type CoreComicCategoryTable struct {
	Table      string
	ComicID    string
	CategoryID string
	CreatedAt  string
}

// CoreComicCategory is the schema definition for core.comiccategory
var CoreComicCategory = CoreComicCategoryTable{
	Table:      "core.comiccategory",
	ComicID:    "comicid",
	CategoryID: "categoryid",
	CreatedAt:  "createdat",
}
