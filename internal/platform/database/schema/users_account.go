package schema

// UserAccountTable represents the 'users.account' table
type UserAccountTable struct {
	Table       string
	ID          string
	Username    string
	Role        string
	IsActive    string
	DisplayName string
	AvatarURL   string
	Bio         string
	Birthday    string
	Gender      string
	CreatedAt   string
	UpdatedAt   string
	DeletedAt   string
}

// UserAccount is the schema definition for users.account
var UserAccount = UserAccountTable{
	Table:       "users.account",
	ID:          "id",
	Username:    "username",
	Role:        "role",
	IsActive:    "isactive",
	DisplayName: "displayname",
	AvatarURL:   "avatarurl",
	Bio:         "bio",
	Birthday:    "birthday",
	Gender:      "gender",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
	DeletedAt:   "deletedat",
}

// Columns returns all standard column names
func (t UserAccountTable) Columns() []string {
	return []string{
		t.ID, t.Username, t.Role, t.IsActive, t.DisplayName, t.AvatarURL,
		t.Bio, t.Birthday, t.Gender, t.CreatedAt, t.UpdatedAt, t.DeletedAt,
	}
}
