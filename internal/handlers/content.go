package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vidtube/backend/internal/catalog"
)

// ContentHandler serves profiles, comments and tweets.
type ContentHandler struct {
	Catalog         CatalogService
	DefaultPageSize int
}

type createUserRequest struct {
	Username   string `json:"username" validate:"required,max=64"`
	FullName   string `json:"fullName" validate:"max=200"`
	Email      string `json:"email" validate:"required,email"`
	Avatar     string `json:"avatar"`
	CoverImage string `json:"coverImage"`
}

type updateProfileRequest struct {
	FullName   *string `json:"fullName" validate:"omitnil,max=200"`
	Email      *string `json:"email" validate:"omitnil,email"`
	Avatar     *string `json:"avatar"`
	CoverImage *string `json:"coverImage"`
}

type contentRequest struct {
	Content string `json:"content" validate:"required"`
}

// CreateUser handles POST /api/v1/users. The profile id is the authenticated subject.
func (h ContentHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}

	user, err := h.Catalog.CreateUser(ctx, catalog.NewUser{
		ID:          actorID(r),
		Username:    req.Username,
		DisplayName: req.FullName,
		Email:       req.Email,
		AvatarRef:   req.Avatar,
		CoverRef:    req.CoverImage,
	})
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusCreated, user)
}

// Me handles GET /api/v1/users/me.
func (h ContentHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := h.Catalog.GetUser(ctx, actorID(r))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, user)
}

// UpdateProfile handles PATCH /api/v1/users/me.
func (h ContentHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req updateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}

	user, err := h.Catalog.UpdateProfile(ctx, actorID(r), catalog.ProfilePatch{
		DisplayName: req.FullName,
		Email:       req.Email,
		AvatarRef:   req.Avatar,
		CoverRef:    req.CoverImage,
	})
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, user)
}

// ListComments handles GET /api/v1/videos/{videoId}/comments?page&limit.
func (h ContentHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	pageSize := h.DefaultPageSize
	if pageSize <= 0 {
		pageSize = 10
	}
	page, err := queryInt(r, "page", 1)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	limit, err := queryInt(r, "limit", pageSize)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	comments, err := h.Catalog.ListComments(ctx, chi.URLParam(r, "videoId"), page, limit)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, comments)
}

// AddComment handles POST /api/v1/videos/{videoId}/comments.
func (h ContentHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req contentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}

	comment, err := h.Catalog.AddComment(ctx, actorID(r), chi.URLParam(r, "videoId"), req.Content)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusCreated, comment)
}

// UpdateComment handles PATCH /api/v1/comments/{commentId}.
func (h ContentHandler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req contentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}

	comment, err := h.Catalog.UpdateComment(ctx, actorID(r), chi.URLParam(r, "commentId"), req.Content)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, comment)
}

// DeleteComment handles DELETE /api/v1/comments/{commentId}.
func (h ContentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.Catalog.DeleteComment(ctx, actorID(r), chi.URLParam(r, "commentId")); err != nil {
		respondError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateTweet handles POST /api/v1/tweets.
func (h ContentHandler) CreateTweet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req contentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}

	tweet, err := h.Catalog.CreateTweet(ctx, actorID(r), req.Content)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusCreated, tweet)
}

// ListTweets handles GET /api/v1/users/{userId}/tweets.
func (h ContentHandler) ListTweets(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tweets, err := h.Catalog.ListTweets(ctx, chi.URLParam(r, "userId"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, map[string]any{"tweets": tweets})
}

// UpdateTweet handles PATCH /api/v1/tweets/{tweetId}.
func (h ContentHandler) UpdateTweet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req contentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}

	tweet, err := h.Catalog.UpdateTweet(ctx, actorID(r), chi.URLParam(r, "tweetId"), req.Content)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, tweet)
}

// DeleteTweet handles DELETE /api/v1/tweets/{tweetId}.
func (h ContentHandler) DeleteTweet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.Catalog.DeleteTweet(ctx, actorID(r), chi.URLParam(r, "tweetId")); err != nil {
		respondError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
