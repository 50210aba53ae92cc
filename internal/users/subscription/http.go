// Copyright (c) 2026 Comicbox. All rights reserved.
// Author: huy.ndq.dev@gmail.com

/*
HTTP delivery layer for comic subscriptions.

All endpoints require authentication; the subscriber is always the current
user, taken from the verified JWT.
*/
package subscription

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/huyndq/comicbox/internal/platform/middleware"
	requestutil "github.com/huyndq/comicbox/internal/platform/request"
	"github.com/huyndq/comicbox/internal/platform/respond"
	"github.com/huyndq/comicbox/internal/platform/validate"
	"github.com/huyndq/comicbox/pkg/pagination"
)

// Handler implements the HTTP layer for comic subscriptions.
type Handler struct {
	subscriptionService *Service
}

// NewHandler constructs a new subscription [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{subscriptionService: service}
}

// Register adds the subscription endpoints to the given router.
//
// The subscription routes share the /comics and /me roots with other domains,
// so they register on the composition router instead of mounting a subtree.
func (handler *Handler) Register(router chi.Router) {
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Put("/comics/{id}/subscription", handler.subscribe)
		r.Delete("/comics/{id}/subscription", handler.unsubscribe)
		r.Get("/me/subscriptions", handler.listSubscriptions)
	})
}

/*
PUT /api/v1/comics/{id}/subscription.

Description: Subscribes the current user to the comic. Repeating the call is
a silent success.

Response:
  - 204: No Content: Subscribed (or already subscribed)
  - 404: ErrNotFound: Unknown comic
*/
func (handler *Handler) subscribe(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
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

	if err := handler.subscriptionService.Subscribe(request.Context(), userID, comicID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
DELETE /api/v1/comics/{id}/subscription.

Description: Unsubscribes the current user. Removing an absent subscription
is a silent success.

Response:
  - 204: No Content: Unsubscribed (or never subscribed)
*/
func (handler *Handler) unsubscribe(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
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

	if err := handler.subscriptionService.Unsubscribe(request.Context(), userID, comicID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
GET /api/v1/me/subscriptions.

Description: Lists the comics the current user subscribes to, newest first.

Response:
  - 200: []SubscribedComic: Paginated listing
*/
func (handler *Handler) listSubscriptions(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)

	comics, meta, err := handler.subscriptionService.ListSubscriptions(request.Context(), userID, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, comics, meta)
}
