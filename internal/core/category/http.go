// Copyright (c) 2026 Comicbox. All rights reserved.
// Author: huy.ndq.dev@gmail.com

package category

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/huyndq/comicbox/internal/platform/middleware"
	requestutil "github.com/huyndq/comicbox/internal/platform/request"
	"github.com/huyndq/comicbox/internal/platform/respond"
	"github.com/huyndq/comicbox/internal/platform/sec"
	"github.com/huyndq/comicbox/internal/platform/validate"
)

// Handler implements the HTTP layer for the category catalogue.
type Handler struct {
	categoryService *Service
}

// NewHandler constructs a new category [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{categoryService: service}
}

// Routes returns a [chi.Router] configured with the category endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public catalogue
	router.Get("/", handler.list)
	router.Get("/{id}", handler.get)

	// Moderation surface
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Use(middleware.RequireRole(sec.RoleModerator))
		r.Post("/", handler.create)
	})

	return router
}

type createCategoryRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

/*
POST /api/v1/categories.

Description: Registers a new catalogue entry. Moderator role required.

Response:
  - 201: Category: The created entry
  - 409: ErrConflict: Name or slug already taken
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var payload createCategoryRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	category, err := handler.categoryService.CreateCategory(request.Context(), payload.Name, payload.Slug)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, category)
}

/*
GET /api/v1/categories/{id}.

Response:
  - 200: Category: The catalogue entry
  - 404: ErrNotFound: Unknown category
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.ID(request, "id")

	v := &validate.Validator{}
	if err := v.UUID("id", id).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	category, err := handler.categoryService.GetCategory(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, category)
}

/*
GET /api/v1/categories.

Response:
  - 200: []Category: The full catalogue, ordered by name
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	categories, err := handler.categoryService.ListCategories(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, categories)
}
