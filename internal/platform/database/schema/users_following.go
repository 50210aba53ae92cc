package schema

// UserFollowingTable represents the 'users.following' table.
//
// Each row is one directed follow edge (follower -> followee).
type UserFollowingTable struct {
	Table      string
	FollowerID string
	FolloweeID string
	CreatedAt  string
}

// UserFollowing is the schema definition for users.following
var UserFollowing = UserFollowingTable{
	Table:      "users.following",
	FollowerID: "followerid",
	FolloweeID: "followeeid",
	CreatedAt:  "createdat",
}
