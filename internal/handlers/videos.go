package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vidtube/backend/internal/catalog"
	"github.com/vidtube/backend/internal/feed"
)

// VideoHandler serves the video listing, video metadata and watch history.
type VideoHandler struct {
	Feed            FeedService
	Catalog         CatalogService
	History         HistoryService
	DefaultPageSize int
}

type publishVideoRequest struct {
	Title           string  `json:"title" validate:"required,max=200"`
	Description     string  `json:"description" validate:"max=5000"`
	VideoFile       string  `json:"videoFile" validate:"required"`
	Thumbnail       string  `json:"thumbnail"`
	DurationSeconds float64 `json:"duration" validate:"gte=0"`
}

type updateVideoRequest struct {
	Title       *string `json:"title" validate:"omitnil,max=200"`
	Description *string `json:"description" validate:"omitnil,max=5000"`
	Thumbnail   *string `json:"thumbnail"`
}

// List handles GET /api/v1/videos?query&sortBy&sortType&page&limit&userId.
func (h VideoHandler) List(w http.ResponseWriter, r *http.Request) {
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

	q := r.URL.Query()
	result, err := h.Feed.ListVideos(ctx, feed.Query{
		Text:    q.Get("query"),
		SortBy:  q.Get("sortBy"),
		SortDir: q.Get("sortType"),
		Page:    page,
		Limit:   limit,
		OwnerID: q.Get("userId"),
	})
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, result)
}

// Publish handles POST /api/v1/videos.
func (h VideoHandler) Publish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req publishVideoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}

	video, err := h.Catalog.PublishVideo(ctx, actorID(r), catalog.NewVideo{
		Title:           req.Title,
		Description:     req.Description,
		MediaRef:        req.VideoFile,
		ThumbnailRef:    req.Thumbnail,
		DurationSeconds: req.DurationSeconds,
	})
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusCreated, video)
}

// Get handles GET /api/v1/videos/{videoId}.
func (h VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	video, err := h.Catalog.GetVideo(ctx, chi.URLParam(r, "videoId"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, video)
}

// Update handles PATCH /api/v1/videos/{videoId}.
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req updateVideoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}

	video, err := h.Catalog.UpdateVideo(ctx, actorID(r), chi.URLParam(r, "videoId"), catalog.VideoPatch{
		Title:        req.Title,
		Description:  req.Description,
		ThumbnailRef: req.Thumbnail,
	})
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, video)
}

// Delete handles DELETE /api/v1/videos/{videoId}.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.Catalog.DeleteVideo(ctx, actorID(r), chi.URLParam(r, "videoId")); err != nil {
		respondError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TogglePublish handles POST /api/v1/videos/{videoId}/publish.
func (h VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	video, err := h.Catalog.TogglePublish(ctx, actorID(r), chi.URLParam(r, "videoId"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, video)
}

// RecordView handles POST /api/v1/videos/{videoId}/views.
func (h VideoHandler) RecordView(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.History.RecordView(ctx, actorID(r), chi.URLParam(r, "videoId")); err != nil {
		respondError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// WatchHistory handles GET /api/v1/users/history.
func (h VideoHandler) WatchHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	videos, err := h.History.Expand(ctx, actorID(r))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, map[string]any{"history": videos})
}
