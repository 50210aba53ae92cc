// Copyright (c) 2026 Comicbox. All rights reserved.
// Author: huy.ndq.dev@gmail.com

/*
Package account handles user profile management and account lifecycle.

It provides functionalities for users to view and update their private identity
data and to retire their account.

# Architecture

  - Domain: This package depends on the auth package for the User entity.
  - Security: Account deletion revokes every active session as a side effect.
*/
package account

import (
	"context"

	"github.com/huyndq/comicbox/internal/users/auth"
)

// # Repository Contracts

// AccountRepository defines the persistence contract for user accounts.
type AccountRepository interface {
	/*
		FindByID retrieves a user record by their unique ID.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - *User: Loaded account entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*auth.User, error)

	/*
		Update modifies the mutable profile fields of an existing user.

		Parameters:
		  - context: context.Context
		  - user: *User (Hydrated entity with changes)

		Returns:
		  - error: Storage or constraint failures
	*/
	Update(context context.Context, user *auth.User) error

	/*
		SoftDelete flags an account as logically deleted.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Execution failures
	*/
	SoftDelete(context context.Context, id string) error
}

// # Field Identifiers

const (
	FieldDisplayName = "display_name"
	FieldBio         = "bio"
	FieldAvatarURL   = "avatar_url"
)
