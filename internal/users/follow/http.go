// Copyright (c) 2026 Comicbox. All rights reserved.
// Author: huy.ndq.dev@gmail.com

/*
HTTP delivery layer for the follow graph.

All mutation endpoints require authentication; the follower is always the
current user, taken from the verified JWT rather than the payload.
*/
package follow

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/huyndq/comicbox/internal/platform/middleware"
	requestutil "github.com/huyndq/comicbox/internal/platform/request"
	"github.com/huyndq/comicbox/internal/platform/respond"
	"github.com/huyndq/comicbox/internal/platform/validate"
	"github.com/huyndq/comicbox/pkg/pagination"
)

// Handler implements the HTTP layer for the follow graph.
type Handler struct {
	followService *Service
}

// NewHandler constructs a new follow [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{followService: service}
}

// Register adds the follow domain's endpoints to the given router.
//
// The follow routes share the /users and /me roots with other domains, so
// they register on the composition router instead of mounting a subtree.
func (handler *Handler) Register(router chi.Router) {

	// Public counters
	router.Get("/users/{id}/follow-stats", handler.getStats)

	// Protected graph mutations
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Put("/users/{id}/follow", handler.follow)
		r.Delete("/users/{id}/follow", handler.unfollow)
		r.Get("/me/following", handler.listFollowing)
	})
}

/*
PUT /api/v1/users/{id}/follow.

Description: Creates the follow edge from the current user to {id} and shifts
both counters atomically.

Response:
  - 204: No Content: Edge created
  - 404: ErrNotFound: Unknown followee
  - 409: ErrConflict: Already following
  - 422: ErrUnprocessable: Self-follow attempt
*/
func (handler *Handler) follow(writer http.ResponseWriter, request *http.Request) {
	followerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	followeeID := requestutil.ID(request, "id")
	v := &validate.Validator{}
	if err := v.UUID("id", followeeID).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.followService.Follow(request.Context(), followerID, followeeID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
DELETE /api/v1/users/{id}/follow.

Description: Removes the follow edge and shifts both counters atomically.

Response:
  - 204: No Content: Edge removed
  - 409: ErrConflict: Not currently following
*/
func (handler *Handler) unfollow(writer http.ResponseWriter, request *http.Request) {
	followerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	followeeID := requestutil.ID(request, "id")
	v := &validate.Validator{}
	if err := v.UUID("id", followeeID).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.followService.Unfollow(request.Context(), followerID, followeeID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
GET /api/v1/users/{id}/follow-stats.

Description: Returns the public follower/following counters for any account.

Response:
  - 200: FollowStat: Counter pair
  - 500: ErrDataCorruption: Counter row missing
*/
func (handler *Handler) getStats(writer http.ResponseWriter, request *http.Request) {
	userID := requestutil.ID(request, "id")

	v := &validate.Validator{}
	if err := v.UUID("id", userID).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	stat, err := handler.followService.GetStat(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, stat)
}

/*
GET /api/v1/me/following.

Description: Lists the accounts the current user follows, newest first.

Response:
  - 200: []FollowedUser: Paginated listing
*/
func (handler *Handler) listFollowing(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)

	users, meta, err := handler.followService.ListFollowing(request.Context(), userID, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, users, meta)
}
