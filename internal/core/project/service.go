// Copyright (c) 2026 Comicbox. All rights reserved.
// Author: huy.ndq.dev@gmail.com

package project

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/huyndq/comicbox/internal/core/resource"
	"github.com/huyndq/comicbox/internal/platform/apperr"
	"github.com/huyndq/comicbox/internal/platform/txn"
	"github.com/huyndq/comicbox/internal/platform/validate"
	"github.com/huyndq/comicbox/pkg/pagination"
	"github.com/huyndq/comicbox/pkg/uuidv7"
)

// # Service Layer

// Service orchestrates creator projects and their cover files.
type Service struct {
	repository  Repository
	resources   ResourceProvisioner
	coordinator *txn.Coordinator
	logger      *slog.Logger
}

// NewService constructs a new project [Service] with its dependencies.
func NewService(repository Repository, resources ResourceProvisioner, coordinator *txn.Coordinator, logger *slog.Logger) *Service {
	return &Service{
		repository:  repository,
		resources:   resources,
		coordinator: coordinator,
		logger:      logger,
	}
}

// CreateInput carries the attributes of a new project.
type CreateInput struct {
	Name             string
	Description      string
	Cover            []byte
	CoverContentType string
}

// UpdateInput carries the mutable attributes of a project. Nil and empty
// fields are left unchanged.
type UpdateInput struct {
	Name             *string
	Description      *string
	Cover            []byte
	CoverContentType string
}

/*
CreateProject provisions a new workspace entry.

Description: When a cover is supplied, its resource is provisioned through
the resource service inside the project's transaction; the inner provisioning
joins the outer transaction, so the project row and the cover metadata commit
or abort together. The cover payload itself sits under a key derived from the
resource ID, which keeps a failed creation retryable.

Parameters:
  - ctx: context.Context
  - ownerID: string
  - input: CreateInput

Returns:
  - *Project: The created project
  - error: Validation errors, upload failures or persistence failures
*/
func (service *Service) CreateProject(ctx context.Context, ownerID string, input CreateInput) (*Project, error) {

	validator := &validate.Validator{}
	validator.Required(FieldName, input.Name).MaxLen(FieldName, input.Name, 200)
	validator.MaxLen(FieldDescription, input.Description, 5000)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	project := &Project{
		ID:          uuidv7.New(),
		OwnerID:     ownerID,
		Name:        input.Name,
		Description: input.Description,
	}

	err := service.coordinator.RunInTx(ctx, func(txContext context.Context) error {

		if len(input.Cover) > 0 {
			cover, err := service.resources.Create(txContext, ownerID,
				resource.KindCover, resource.VisibilityPublic,
				input.Cover, input.CoverContentType)
			if err != nil {
				return err
			}
			project.CoverID = &cover.ID
		}

		return service.repository.Insert(txContext, project)
	})

	if err != nil {
		if apperr.IsAppError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("project_service_create_failed: %w", err)
	}

	service.logger.Info("project_created",
		slog.String("project_id", project.ID),
		slog.String("owner_id", ownerID),
	)

	return project, nil
}

/*
UpdateProject rewrites the mutable attributes of a project.

Description: Owner only. A new cover overwrites the existing resource in
place when one exists, and provisions a fresh one otherwise; either way the
metadata writes join the project's transaction.

Parameters:
  - ctx: context.Context
  - callerID: string
  - projectID: string
  - input: UpdateInput

Returns:
  - *Project: The updated project
  - error: ErrProjectNotFound, ErrNotProjectOwner, validation errors or
    persistence failures
*/
func (service *Service) UpdateProject(ctx context.Context, callerID, projectID string, input UpdateInput) (*Project, error) {
	var updated *Project

	err := service.coordinator.RunInTx(ctx, func(txContext context.Context) error {

		project, err := service.repository.FindByID(txContext, projectID)
		if err != nil {
			return err
		}

		if project.OwnerID != callerID {
			return ErrNotProjectOwner
		}

		validator := &validate.Validator{}
		if input.Name != nil {
			validator.Required(FieldName, *input.Name).MaxLen(FieldName, *input.Name, 200)
			project.Name = *input.Name
		}
		if input.Description != nil {
			validator.MaxLen(FieldDescription, *input.Description, 5000)
			project.Description = *input.Description
		}
		if err := validator.Err(); err != nil {
			return err
		}

		if len(input.Cover) > 0 {
			if project.CoverID != nil {
				if _, err := service.resources.Overwrite(txContext, callerID, *project.CoverID, input.Cover, input.CoverContentType); err != nil {
					return err
				}
			} else {
				cover, err := service.resources.Create(txContext, callerID,
					resource.KindCover, resource.VisibilityPublic,
					input.Cover, input.CoverContentType)
				if err != nil {
					return err
				}
				project.CoverID = &cover.ID
			}
		}

		if err := service.repository.Update(txContext, project); err != nil {
			return err
		}

		updated = project
		return nil
	})

	if err != nil {
		if apperr.IsAppError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("project_service_update_failed: %w", err)
	}

	return updated, nil
}

// GetProject fetches a single project by UUID.
func (service *Service) GetProject(ctx context.Context, id string) (*Project, error) {
	return service.repository.FindByID(ctx, id)
}

// ListProjects returns one page of the owner's projects, newest first.
func (service *Service) ListProjects(ctx context.Context, ownerID string, params pagination.Params) ([]Project, pagination.Meta, error) {
	projects, total, err := service.repository.ListByOwner(ctx, ownerID, params)
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("project_service_list_failed: %w", err)
	}

	return projects, pagination.NewMeta(params.Page, params.Limit, int(total)), nil
}

/*
DeleteProject soft-deletes a project. Owner only.

Parameters:
  - ctx: context.Context
  - callerID: string
  - projectID: string

Returns:
  - error: ErrProjectNotFound, ErrNotProjectOwner or persistence failures
*/
func (service *Service) DeleteProject(ctx context.Context, callerID, projectID string) error {
	project, err := service.repository.FindByID(ctx, projectID)
	if err != nil {
		return err
	}

	if project.OwnerID != callerID {
		return ErrNotProjectOwner
	}

	marked, err := service.repository.SoftDelete(ctx, projectID)
	if err != nil {
		return fmt.Errorf("project_service_delete_failed: %w", err)
	}
	if !marked {
		return ErrProjectNotFound
	}

	service.logger.Info("project_deleted",
		slog.String("project_id", projectID),
		slog.String("owner_id", callerID),
	)

	return nil
}
