// Copyright (c) 2026 Comicbox. All rights reserved.
// Author: huy.ndq.dev@gmail.com

package project

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/huyndq/comicbox/internal/core/resource"
	"github.com/huyndq/comicbox/internal/platform/apperr"
	"github.com/huyndq/comicbox/internal/platform/middleware"
	requestutil "github.com/huyndq/comicbox/internal/platform/request"
	"github.com/huyndq/comicbox/internal/platform/respond"
	"github.com/huyndq/comicbox/internal/platform/validate"
	"github.com/huyndq/comicbox/pkg/pagination"
	"github.com/huyndq/comicbox/pkg/pointer"
)

// Handler implements the HTTP layer for creator projects.
type Handler struct {
	projectService *Service
}

// NewHandler constructs a new project [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{projectService: service}
}

// Register adds the project endpoints to the given router.
//
// The project routes share the /me root with other domains, so they register
// on the composition router instead of mounting a subtree.
func (handler *Handler) Register(router chi.Router) {

	// Public project pages
	router.Get("/projects/{id}", handler.get)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/projects", handler.create)
		r.Patch("/projects/{id}", handler.update)
		r.Delete("/projects/{id}", handler.delete)
		r.Get("/me/projects", handler.listMine)
	})
}

// coverFromForm extracts the optional cover file from a multipart form.
func coverFromForm(request *http.Request) ([]byte, string, error) {
	file, header, err := request.FormFile("cover")
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, "", nil
		}
		return nil, "", apperr.ValidationError("Invalid cover file")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, resource.MaxUploadBytes+1))
	if err != nil {
		return nil, "", apperr.ValidationError("Invalid cover file")
	}
	if len(data) > resource.MaxUploadBytes {
		return nil, "", apperr.ValidationError("Cover exceeds the upload limit")
	}

	return data, header.Header.Get("Content-Type"), nil
}

/*
POST /api/v1/projects.

Description: Creates a workspace entry from a multipart form with "name",
"description" and an optional "cover" file. The cover resource and the
project row are provisioned together.

Response:
  - 201: Project: The created project
  - 422: ErrValidation: Missing name or oversized cover
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	ownerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := request.ParseMultipartForm(resource.MaxUploadBytes); err != nil {
		respond.Error(writer, request, apperr.ValidationError("Invalid multipart payload"))
		return
	}

	cover, coverContentType, err := coverFromForm(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	project, err := handler.projectService.CreateProject(request.Context(), ownerID, CreateInput{
		Name:             request.FormValue("name"),
		Description:      request.FormValue("description"),
		Cover:            cover,
		CoverContentType: coverContentType,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, project)
}

/*
GET /api/v1/projects/{id}.

Response:
  - 200: Project: The workspace entry
  - 404: ErrNotFound: Unknown or deleted project
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.ID(request, "id")

	v := &validate.Validator{}
	if err := v.UUID("id", id).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	project, err := handler.projectService.GetProject(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, project)
}

/*
PATCH /api/v1/projects/{id}.

Description: Rewrites name, description or cover from a multipart form.
Fields left out of the form are unchanged. Owner only.

Response:
  - 200: Project: The updated project
  - 403: ErrForbidden: Caller is not the owner
  - 404: ErrNotFound: Unknown or deleted project
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
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

	if err := request.ParseMultipartForm(resource.MaxUploadBytes); err != nil {
		respond.Error(writer, request, apperr.ValidationError("Invalid multipart payload"))
		return
	}

	cover, coverContentType, err := coverFromForm(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	input := UpdateInput{
		Cover:            cover,
		CoverContentType: coverContentType,
	}
	if values, ok := request.MultipartForm.Value["name"]; ok && len(values) > 0 {
		input.Name = pointer.To(values[0])
	}
	if values, ok := request.MultipartForm.Value["description"]; ok && len(values) > 0 {
		input.Description = pointer.To(values[0])
	}

	project, err := handler.projectService.UpdateProject(request.Context(), callerID, id, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, project)
}

/*
GET /api/v1/me/projects.

Response:
  - 200: []Project: Paginated owned projects, newest first
*/
func (handler *Handler) listMine(writer http.ResponseWriter, request *http.Request) {
	ownerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)

	projects, meta, err := handler.projectService.ListProjects(request.Context(), ownerID, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, projects, meta)
}

/*
DELETE /api/v1/projects/{id}.

Response:
  - 204: No Content: Deleted
  - 403: ErrForbidden: Caller is not the owner
  - 404: ErrNotFound: Unknown or deleted project
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

	if err := handler.projectService.DeleteProject(request.Context(), callerID, id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
