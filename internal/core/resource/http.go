// Copyright (c) 2026 Comicbox. All rights reserved.
// Author: huy.ndq.dev@gmail.com

package resource

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/huyndq/comicbox/internal/platform/apperr"
	"github.com/huyndq/comicbox/internal/platform/middleware"
	requestutil "github.com/huyndq/comicbox/internal/platform/request"
	"github.com/huyndq/comicbox/internal/platform/respond"
	"github.com/huyndq/comicbox/internal/platform/validate"
)

// Handler implements the HTTP layer for resource uploads and downloads.
type Handler struct {
	resourceService *Service
}

// NewHandler constructs a new resource [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{resourceService: service}
}

// Routes returns a [chi.Router] configured with the resource endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Download enforces the access policy itself, so the route stays open to
	// anonymous callers for PUBLIC resources.
	router.Get("/{id}", handler.download)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/", handler.upload)
		r.Put("/{id}", handler.overwrite)
		r.Delete("/{id}", handler.delete)
	})

	return router
}

// readPayload reads the raw request body up to the upload limit.
func readPayload(writer http.ResponseWriter, request *http.Request) ([]byte, error) {
	request.Body = http.MaxBytesReader(writer, request.Body, MaxUploadBytes)

	data, err := io.ReadAll(request.Body)
	if err != nil {
		return nil, apperr.ValidationError("Payload exceeds the upload limit")
	}

	return data, nil
}

/*
POST /api/v1/resources?kind=cover&visibility=PUBLIC.

Description: Uploads the raw request body as a new resource. The Content-Type
header classifies the payload.

Response:
  - 201: Resource: The created metadata record
  - 422: ErrValidation: Unknown kind or visibility, empty payload
*/
func (handler *Handler) upload(writer http.ResponseWriter, request *http.Request) {
	ownerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	kind := Kind(request.URL.Query().Get("kind"))
	visibility := Visibility(request.URL.Query().Get("visibility"))
	if visibility == "" {
		visibility = VisibilityPublic
	}

	data, err := readPayload(writer, request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	resource, err := handler.resourceService.Create(request.Context(), ownerID, kind, visibility, data, request.Header.Get("Content-Type"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, resource)
}

/*
GET /api/v1/resources/{id}.

Description: Streams the payload. OWNER resources require the owner's token;
PUBLIC resources are open.

Response:
  - 200: binary: The payload with its stored Content-Type
  - 403: ErrForbidden: Owner-only resource
  - 404: ErrNotFound: Unknown or deleted resource
*/
func (handler *Handler) download(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.ID(request, "id")

	v := &validate.Validator{}
	if err := v.UUID("id", id).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// Anonymous callers carry an empty ID; the service decides access.
	var callerID string
	if claims := requestutil.Claims(request); claims != nil {
		callerID = claims.UserID
	}

	resource, stream, err := handler.resourceService.Open(request.Context(), callerID, id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	defer stream.Close()

	writer.Header().Set("Content-Type", resource.ContentType)
	writer.Header().Set("Content-Length", strconv.FormatInt(resource.SizeBytes, 10))
	writer.Header().Set("Cache-Control", "private, max-age=3600")
	writer.WriteHeader(http.StatusOK)

	// Headers are already written; a broken client stream cannot be reported.
	_, _ = io.Copy(writer, stream)
}

/*
PUT /api/v1/resources/{id}.

Description: Replaces the payload in place. Owner only; a rejected caller
causes no upload.

Response:
  - 200: Resource: The updated metadata record
  - 403: ErrForbidden: Caller is not the owner
  - 404: ErrNotFound: Unknown or deleted resource
*/
func (handler *Handler) overwrite(writer http.ResponseWriter, request *http.Request) {
	callerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	id := requestutil.ID(request, "id")
	v := &validate.Validator{}
	if err := v.UUID("id", id).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	data, err := readPayload(writer, request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	resource, err := handler.resourceService.Overwrite(request.Context(), callerID, id, data, request.Header.Get("Content-Type"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, resource)
}

/*
DELETE /api/v1/resources/{id}.

Response:
  - 204: No Content: Deleted
  - 403: ErrForbidden: Caller is not the owner
  - 404: ErrNotFound: Unknown or deleted resource
*/
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	callerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	id := requestutil.ID(request, "id")
	v := &validate.Validator{}
	if err := v.UUID("id", id).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.resourceService.Delete(request.Context(), callerID, id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
