// Copyright (c) 2026 Comicbox. All rights reserved.
// Author: huy.ndq.dev@gmail.com

/*
Package project implements creator projects.

A project is a creator's workspace entry: a named container with an uploaded
cover file that comics can be published under. Creating a project provisions
the cover resource and the project row together; their store writes share one
transaction.
*/
package project

import (
	"context"
	"time"

	"github.com/huyndq/comicbox/internal/core/resource"
	"github.com/huyndq/comicbox/internal/platform/apperr"
	"github.com/huyndq/comicbox/pkg/pagination"
)

// # Domain Errors

var (
	// ErrProjectNotFound is returned when no live project matches the identifier.
	ErrProjectNotFound = apperr.NotFound("Project")

	// ErrNotProjectOwner is returned when a caller mutates a project they do not own.
	ErrNotProjectOwner = apperr.Forbidden("Only the owner can modify this project")
)

// # Domain Entities

// Project is one creator workspace entry.
type Project struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CoverID     *string   `json:"cover_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Validation field identifiers.
const (
	FieldName        = "name"
	FieldDescription = "description"
)

// # Contracts

// Repository defines the data access contract for projects.
//
// Write methods participate in the transaction bound to the context, if any.
type Repository interface {
	Insert(context context.Context, project *Project) error
	FindByID(context context.Context, id string) (*Project, error)
	Update(context context.Context, project *Project) error
	SoftDelete(context context.Context, id string) (bool, error)
	ListByOwner(context context.Context, ownerID string, params pagination.Params) ([]Project, int64, error)
}

// ResourceProvisioner is the slice of the resource service the project domain
// consumes for cover files.
type ResourceProvisioner interface {
	Create(context context.Context, ownerID string, kind resource.Kind, visibility resource.Visibility, data []byte, contentType string) (*resource.Resource, error)
	Overwrite(context context.Context, callerID, resourceID string, data []byte, contentType string) (*resource.Resource, error)
}
