// Copyright (c) 2026 Comicbox. All rights reserved.
// Author: huy.ndq.dev@gmail.com

package resource

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/huyndq/comicbox/internal/platform/apperr"
	"github.com/huyndq/comicbox/internal/platform/storage"
	"github.com/huyndq/comicbox/internal/platform/txn"
	"github.com/huyndq/comicbox/internal/platform/validate"
	"github.com/huyndq/comicbox/pkg/uuidv7"
)

// MaxUploadBytes is the largest payload a single resource may carry.
const MaxUploadBytes = 16 << 20

// # Service Layer

// Service orchestrates resource uploads and the metadata that tracks them.
type Service struct {
	repository  Repository
	objectStore storage.ObjectStore
	coordinator *txn.Coordinator
	logger      *slog.Logger
}

// NewService constructs a new resource [Service] with its dependencies.
func NewService(repository Repository, objectStore storage.ObjectStore, coordinator *txn.Coordinator, logger *slog.Logger) *Service {
	return &Service{
		repository:  repository,
		objectStore: objectStore,
		coordinator: coordinator,
		logger:      logger,
	}
}

// objectKey derives the storage key from the resource identity. The key is a
// pure function of kind and ID, so a retried upload lands on the same object.
func objectKey(kind Kind, id string) string {
	return fmt.Sprintf("%s/%s", kind, id)
}

/*
Create provisions a new resource.

Description: The resource ID is generated before any write and the object key
is derived from it, which makes the two-system write safely repeatable: the
payload is uploaded first, then the metadata row is inserted in a
transaction. If the metadata write fails the caller can retry; the re-upload
targets the same key and replaces the identical payload instead of leaking a
second object.

Parameters:
  - ctx: context.Context
  - ownerID: string
  - kind: Kind
  - visibility: Visibility
  - data: []byte
  - contentType: string

Returns:
  - *Resource: The created resource
  - error: Validation errors, upload failures (apperr.Internal) or
    persistence failures
*/
func (service *Service) Create(ctx context.Context, ownerID string, kind Kind, visibility Visibility, data []byte, contentType string) (*Resource, error) {

	validator := &validate.Validator{}
	validator.OneOf(FieldKind, string(kind),
		string(KindAvatar), string(KindCover), string(KindPage), string(KindFile),
	)
	validator.OneOf(FieldVisibility, string(visibility),
		string(VisibilityPublic), string(VisibilityOwner),
	)
	validator.Required(FieldContentType, contentType)
	validator.Custom(FieldData, len(data) == 0, "payload must not be empty")
	validator.Custom(FieldData, len(data) > MaxUploadBytes, "payload exceeds the upload limit")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	resource := &Resource{
		ID:          uuidv7.New(),
		OwnerID:     ownerID,
		Kind:        kind,
		ContentType: contentType,
		SizeBytes:   int64(len(data)),
		Visibility:  visibility,
	}
	resource.ObjectKey = objectKey(kind, resource.ID)

	// Payload first. Its key is already final, so this step is idempotent.
	if err := service.objectStore.Put(ctx, resource.ObjectKey, data, contentType); err != nil {
		return nil, apperr.Internal(fmt.Errorf("resource_service_upload_failed: %w", err))
	}

	err := service.coordinator.RunInTx(ctx, func(txContext context.Context) error {
		return service.repository.Insert(txContext, resource)
	})
	if err != nil {
		if apperr.IsAppError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("resource_service_create_failed: %w", err)
	}

	service.logger.Info("resource_created",
		slog.String("resource_id", resource.ID),
		slog.String("owner_id", ownerID),
		slog.String("kind", string(kind)),
		slog.Int64("size_bytes", resource.SizeBytes),
	)

	return resource, nil
}

/*
Overwrite replaces the payload of an existing resource.

Description: The ownership guard runs before any byte is uploaded: a caller
who does not own the resource causes no storage traffic and no metadata
change. On success the payload is replaced under the existing key and the
content type and size are updated in one transaction.

Parameters:
  - ctx: context.Context
  - callerID: string
  - resourceID: string
  - data: []byte
  - contentType: string

Returns:
  - *Resource: The updated resource
  - error: ErrResourceNotFound, ErrNotResourceOwner, validation errors,
    upload failures or persistence failures
*/
func (service *Service) Overwrite(ctx context.Context, callerID, resourceID string, data []byte, contentType string) (*Resource, error) {

	validator := &validate.Validator{}
	validator.Required(FieldContentType, contentType)
	validator.Custom(FieldData, len(data) == 0, "payload must not be empty")
	validator.Custom(FieldData, len(data) > MaxUploadBytes, "payload exceeds the upload limit")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	var updated *Resource

	err := service.coordinator.RunInTx(ctx, func(txContext context.Context) error {

		resource, err := service.repository.FindByID(txContext, resourceID)
		if err != nil {
			return err
		}

		if resource.OwnerID != callerID {
			return ErrNotResourceOwner
		}

		// Same key, replaced payload.
		if err := service.objectStore.Put(txContext, resource.ObjectKey, data, contentType); err != nil {
			return apperr.Internal(fmt.Errorf("resource_service_reupload_failed: %w", err))
		}

		if err := service.repository.UpdatePayloadMeta(txContext, resourceID, contentType, int64(len(data))); err != nil {
			return err
		}

		resource.ContentType = contentType
		resource.SizeBytes = int64(len(data))
		updated = resource
		return nil
	})

	if err != nil {
		if apperr.IsAppError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("resource_service_overwrite_failed: %w", err)
	}

	service.logger.Info("resource_overwritten",
		slog.String("resource_id", resourceID),
		slog.String("owner_id", callerID),
	)

	return updated, nil
}

/*
Open returns the payload stream of a resource after enforcing its access
policy.

Description: OWNER resources are readable only by their owner; PUBLIC
resources by anyone, including anonymous callers (empty callerID).

Parameters:
  - ctx: context.Context
  - callerID: string (empty for anonymous callers)
  - resourceID: string

Returns:
  - *Resource: The metadata record
  - io.ReadCloser: The payload stream; the caller must close it
  - error: ErrResourceNotFound, ErrAccessDenied or storage failures
*/
func (service *Service) Open(ctx context.Context, callerID, resourceID string) (*Resource, io.ReadCloser, error) {
	resource, err := service.repository.FindByID(ctx, resourceID)
	if err != nil {
		return nil, nil, err
	}

	if resource.Visibility == VisibilityOwner && resource.OwnerID != callerID {
		return nil, nil, ErrAccessDenied
	}

	stream, err := service.objectStore.Get(ctx, resource.ObjectKey)
	if err != nil {
		return nil, nil, apperr.Internal(fmt.Errorf("resource_service_open_failed: %w", err))
	}

	return resource, stream, nil
}

/*
Delete soft-deletes a resource. Owner only.

Description: The metadata row is marked first; the payload removal is best
effort, since the key is unreachable once the row is gone.

Parameters:
  - ctx: context.Context
  - callerID: string
  - resourceID: string

Returns:
  - error: ErrResourceNotFound, ErrNotResourceOwner or persistence failures
*/
func (service *Service) Delete(ctx context.Context, callerID, resourceID string) error {
	resource, err := service.repository.FindByID(ctx, resourceID)
	if err != nil {
		return err
	}

	if resource.OwnerID != callerID {
		return ErrNotResourceOwner
	}

	marked, err := service.repository.SoftDelete(ctx, resourceID)
	if err != nil {
		return fmt.Errorf("resource_service_delete_failed: %w", err)
	}
	if !marked {
		return ErrResourceNotFound
	}

	if err := service.objectStore.Remove(ctx, resource.ObjectKey); err != nil {
		service.logger.Warn("resource_payload_remove_failed",
			slog.String("resource_id", resourceID),
			slog.String("error", err.Error()),
		)
	}

	return nil
}
