package schema

// UserFollowStatTable represents the 'users.followstat' table.
//
// One row per account, provisioned at registration, holding the
// denormalized follower/following counters.
type UserFollowStatTable struct {
	Table          string
	UserID         string
	FollowerCount  string
	FollowingCount string
	UpdatedAt      string
}

// UserFollowStat is the schema definition for users.followstat
var UserFollowStat = UserFollowStatTable{
	Table:          "users.followstat",
	UserID:         "userid",
	FollowerCount:  "followercount",
	FollowingCount: "followingcount",
	UpdatedAt:      "updatedat",
}
