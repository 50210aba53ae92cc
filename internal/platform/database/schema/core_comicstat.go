package schema

// CoreComicStatTable represents the 'core.comicstat' table.
//
// One row per comic, provisioned when the comic is created, holding
// denormalized engagement counters.
type CoreComicStatTable struct {
	Table           string
	ComicID         string
	SubscriberCount string
	ViewCount       string
	ChapterCount    string
	UpdatedAt       string
}

// CoreComicStat is the schema definition for core.comicstat
var CoreComicStat = CoreComicStatTable{
	Table:           "core.comicstat",
	ComicID:         "comicid",
	SubscriberCount: "subscribercount",
	ViewCount:       "viewcount",
	ChapterCount:    "chaptercount",
	UpdatedAt:       "updatedat",
}
