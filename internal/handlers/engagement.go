package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/models"
)

// EngagementHandler exposes the like and subscription toggles.
type EngagementHandler struct {
	Engagement EngagementService
}

type likeResponse struct {
	Liked bool         `json:"liked"`
	Like  *models.Like `json:"like,omitempty"`
}

type subscriptionResponse struct {
	Subscribed   bool                 `json:"subscribed"`
	Subscription *models.Subscription `json:"subscription,omitempty"`
}

// ToggleLike handles POST /api/v1/likes/{kind}/{id}.
func (h EngagementHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	kind, err := models.ParseLikeKind(chi.URLParam(r, "kind"))
	if err != nil {
		respondError(ctx, w, apperr.InvalidArgument("%v", err))
		return
	}

	result, err := h.Engagement.ToggleLike(ctx, actorID(r), kind, chi.URLParam(r, "id"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, likeResponse{Liked: result.Created(), Like: result.Edge})
}

// LikedVideos handles GET /api/v1/likes/videos.
func (h EngagementHandler) LikedVideos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	videos, err := h.Engagement.ListLikedVideos(ctx, actorID(r))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, map[string]any{"videos": videos})
}

// ToggleSubscription handles POST /api/v1/subscriptions/{channelId}.
func (h EngagementHandler) ToggleSubscription(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	result, err := h.Engagement.ToggleSubscription(ctx, actorID(r), chi.URLParam(r, "channelId"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, subscriptionResponse{Subscribed: result.Created(), Subscription: result.Edge})
}

// Subscribers handles GET /api/v1/subscriptions/{channelId}/subscribers.
func (h EngagementHandler) Subscribers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	users, err := h.Engagement.ListSubscribers(ctx, chi.URLParam(r, "channelId"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, map[string]any{"subscribers": users})
}

// Subscriptions handles GET /api/v1/users/{userId}/subscriptions.
func (h EngagementHandler) Subscriptions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	channels, err := h.Engagement.ListSubscriptions(ctx, chi.URLParam(r, "userId"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, map[string]any{"channels": channels})
}

// ChannelHandler exposes channel aggregates.
type ChannelHandler struct {
	Channels ChannelService
}

// Profile handles GET /api/v1/channels/{username}. Anonymous viewers see
// isSubscribed=false.
func (h ChannelHandler) Profile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	profile, err := h.Channels.ChannelProfile(ctx, chi.URLParam(r, "username"), actorID(r))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, profile)
}

// Stats handles GET /api/v1/channels/id/{channelId}/stats.
func (h ChannelHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.Channels.ChannelStats(ctx, chi.URLParam(r, "channelId"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, stats)
}
