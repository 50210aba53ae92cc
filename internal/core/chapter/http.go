// Copyright (c) 2026 Comicbox. All rights reserved.
// Author: huy.ndq.dev@gmail.com

package chapter

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/huyndq/comicbox/internal/platform/middleware"
	requestutil "github.com/huyndq/comicbox/internal/platform/request"
	"github.com/huyndq/comicbox/internal/platform/respond"
	"github.com/huyndq/comicbox/internal/platform/validate"
	"github.com/huyndq/comicbox/pkg/pagination"
)

// Handler implements the HTTP layer for chapter lists.
type Handler struct {
	chapterService *Service
}

// NewHandler constructs a new chapter [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{chapterService: service}
}

// Register adds the chapter endpoints to the given router.
//
// The chapter routes live under both /comics and /chapters, so they register
// on the composition router instead of mounting a subtree.
func (handler *Handler) Register(router chi.Router) {

	// Public reading surface
	router.Get("/comics/{id}/chapters", handler.listByComic)
	router.Get("/chapters/{id}", handler.get)

	// Authoring surface
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/comics/{id}/chapters", handler.register)
		r.Delete("/chapters/{id}", handler.delete)
	})
}

/*
POST /api/v1/comics/{id}/chapters.

Description: Appends a chapter to the comic's list. Author only.

Response:
  - 201: Chapter: The registered chapter
  - 403: ErrForbidden: Caller is not the author
  - 404: ErrNotFound: Unknown comic
  - 409: ErrConflict: Chapter number already taken
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	callerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	comicID := requestutil.ID(request, "id")
	v := &validate.Validator{}
	if err := v.UUID("id", comicID).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input RegisterInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	chapter, err := handler.chapterService.RegisterChapter(request.Context(), callerID, comicID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, chapter)
}

/*
GET /api/v1/chapters/{id}.

Response:
  - 200: Chapter: The chapter record
  - 404: ErrNotFound: Unknown or deleted chapter
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.ID(request, "id")

	v := &validate.Validator{}
	if err := v.UUID("id", id).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	chapter, err := handler.chapterService.GetChapter(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, chapter)
}

/*
GET /api/v1/comics/{id}/chapters.

Response:
  - 200: []Chapter: Paginated chapter list, ordered by number
*/
func (handler *Handler) listByComic(writer http.ResponseWriter, request *http.Request) {
	comicID := requestutil.ID(request, "id")

	v := &validate.Validator{}
	if err := v.UUID("id", comicID).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)

	chapters, meta, err := handler.chapterService.ListChapters(request.Context(), comicID, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, chapters, meta)
}

/*
DELETE /api/v1/chapters/{id}.

Description: Soft-deletes the chapter and releases the comic's chapter count.
Author only.

Response:
  - 204: No Content: Deleted
  - 403: ErrForbidden: Caller is not the author
  - 404: ErrNotFound: Unknown or deleted chapter
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

	if err := handler.chapterService.DeleteChapter(request.Context(), callerID, id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
