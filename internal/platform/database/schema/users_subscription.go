package schema

// UserSubscriptionTable represents the 'users.subscription' table.
//
// Each row is one comic subscription held by a user.
type UserSubscriptionTable struct {
	Table     string
	UserID    string
	ComicID   string
	CreatedAt string
}

// UserSubscription is the schema definition for users.subscription
var UserSubscription = UserSubscriptionTable{
	Table:     "users.subscription",
	UserID:    "userid",
	ComicID:   "comicid",
	CreatedAt: "createdat",
}
