// Copyright (c) 2026 Comicbox. All rights reserved.
// Author: huy.ndq.dev@gmail.com

package comic

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/huyndq/comicbox/internal/platform/middleware"
	requestutil "github.com/huyndq/comicbox/internal/platform/request"
	"github.com/huyndq/comicbox/internal/platform/respond"
	"github.com/huyndq/comicbox/internal/platform/validate"
	"github.com/huyndq/comicbox/pkg/pagination"
)

// Handler implements the HTTP layer for the comic catalogue.
type Handler struct {
	comicService *Service
}

// NewHandler constructs a new comic [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{comicService: service}
}

// Register adds the comic endpoints to the given router.
//
// The /comics root is shared with the chapter and subscription domains, so
// the comic routes register on the composition router instead of mounting a
// subtree.
func (handler *Handler) Register(router chi.Router) {

	// Public catalogue
	router.Get("/comics", handler.list)
	router.Get("/comics/{id}", handler.get)

	// Authoring surface
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/comics", handler.create)
		r.Patch("/comics/{id}", handler.update)
		r.Delete("/comics/{id}", handler.delete)
	})
}

/*
POST /api/v1/comics.

Description: Creates a publication owned by the current user, provisioning
its statistics and category links atomically.

Response:
  - 201: Comic: The created publication
  - 404: ErrNotFound: Unknown category in category_ids
  - 409: ErrConflict: Slug already taken
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	authorID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input CreateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	comic, err := handler.comicService.CreateComic(request.Context(), authorID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, comic)
}

/*
GET /api/v1/comics/{id}.

Response:
  - 200: Comic: The publication with statistics and category links
  - 404: ErrNotFound: Unknown or deleted comic
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.ID(request, "id")

	v := &validate.Validator{}
	if err := v.UUID("id", id).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	comic, err := handler.comicService.GetComic(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, comic)
}

/*
GET /api/v1/comics.

Response:
  - 200: []Comic: Paginated live catalogue, newest first
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	comics, meta, err := handler.comicService.ListComics(request.Context(), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, comics, meta)
}

/*
PATCH /api/v1/comics/{id}.

Description: Rewrites the mutable attributes. Author only.

Response:
  - 200: Comic: The updated publication
  - 403: ErrForbidden: Caller is not the author
  - 404: ErrNotFound: Unknown or deleted comic
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

	var input UpdateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	comic, err := handler.comicService.UpdateComicDetails(request.Context(), callerID, id, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, comic)
}

/*
DELETE /api/v1/comics/{id}.

Description: Soft-deletes the publication and releases its category counts.
Author only.

Response:
  - 204: No Content: Deleted
  - 403: ErrForbidden: Caller is not the author
  - 404: ErrNotFound: Unknown or already deleted comic
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

	if err := handler.comicService.DeleteComic(request.Context(), callerID, id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
