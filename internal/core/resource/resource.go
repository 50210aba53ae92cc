// Copyright (c) 2026 Comicbox. All rights reserved.
// Author: huy.ndq.dev@gmail.com

/*
Package resource implements uploaded binary resources.

A resource pairs a metadata row in PostgreSQL with a payload in object
storage. The object key is derived from the resource's pre-generated UUID, so
an upload can be retried against the same key after a metadata failure
without leaking objects, and overwrites replace the payload in place.

# Access Policy

Resources are either PUBLIC (readable by anyone) or OWNER (readable only by
the account that uploaded them). Only the owner can overwrite a resource,
checked before any byte is re-uploaded.
*/
package resource

import (
	"context"
	"time"

	"github.com/huyndq/comicbox/internal/platform/apperr"
)

// # Domain Errors

var (
	// ErrResourceNotFound is returned when no live resource matches the identifier.
	ErrResourceNotFound = apperr.NotFound("Resource")

	// ErrNotResourceOwner is returned when a caller overwrites a resource they
	// do not own.
	ErrNotResourceOwner = apperr.Forbidden("Only the owner can modify this resource")

	// ErrAccessDenied is returned when a caller reads an owner-only resource.
	ErrAccessDenied = apperr.Forbidden("You do not have access to this resource")
)

// # Visibility

// Visibility is the read access policy of a resource.
type Visibility string

const (
	VisibilityPublic Visibility = "PUBLIC"
	VisibilityOwner  Visibility = "OWNER"
)

// # Kind

// Kind classifies what a resource is used for. It namespaces the object key.
type Kind string

const (
	KindAvatar Kind = "avatar"
	KindCover  Kind = "cover"
	KindPage   Kind = "page"
	KindFile   Kind = "file"
)

// # Domain Entities

// Resource is the metadata record of one uploaded binary object.
type Resource struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"owner_id"`
	Kind        Kind       `json:"kind"`
	ObjectKey   string     `json:"-"`
	ContentType string     `json:"content_type"`
	SizeBytes   int64      `json:"size_bytes"`
	Visibility  Visibility `json:"visibility"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Validation field identifiers.
const (
	FieldKind        = "kind"
	FieldVisibility  = "visibility"
	FieldContentType = "content_type"
	FieldData        = "data"
)

// # Repository Contract

// Repository defines the metadata access contract for resources.
//
// Write methods participate in the transaction bound to the context, if any.
type Repository interface {
	Insert(context context.Context, resource *Resource) error
	FindByID(context context.Context, id string) (*Resource, error)
	UpdatePayloadMeta(context context.Context, id, contentType string, sizeBytes int64) error
	SoftDelete(context context.Context, id string) (bool, error)
}
