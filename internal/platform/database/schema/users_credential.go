package schema

// UserCredentialTable represents the 'users.credential' table
type UserCredentialTable struct {
	Table       string
	UserID      string
	Email       string
	Password    string
	IsVerified  string
	LastLoginAt string
	CreatedAt   string
	UpdatedAt   string
}

// UserCredential is the schema definition for users.credential
var UserCredential = UserCredentialTable{
	Table:       "users.credential",
	UserID:      "userid",
	Email:       "email",
	Password:    "passwordhash",
	IsVerified:  "isverified",
	LastLoginAt: "lastloginat",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
}
