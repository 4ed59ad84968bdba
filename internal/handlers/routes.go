package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vidtube/backend/internal/middleware"
)

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Engagement EngagementService
	Channels   ChannelService
	Feed       FeedService
	History    HistoryService
	Playlists  PlaylistService
	Catalog    CatalogService

	// Verifier may be nil, in which case every request is anonymous.
	Verifier *middleware.TokenVerifier
	// ToggleLimiter guards the like and subscription toggles. Nil disables it.
	ToggleLimiter   middleware.RateLimiter
	HealthCheck     func(ctx context.Context) error
	DefaultPageSize int
}

// NewRouter builds the HTTP routing tree. Read routes accept anonymous
// callers; mutations require an authenticated actor.
func NewRouter(deps Dependencies) http.Handler {
	health := HealthHandler{Check: deps.HealthCheck}
	engagement := EngagementHandler{Engagement: deps.Engagement}
	channels := ChannelHandler{Channels: deps.Channels}
	videos := VideoHandler{Feed: deps.Feed, Catalog: deps.Catalog, History: deps.History, DefaultPageSize: deps.DefaultPageSize}
	playlists := PlaylistHandler{Playlists: deps.Playlists}
	content := ContentHandler{Catalog: deps.Catalog, DefaultPageSize: deps.DefaultPageSize}

	r := chi.NewRouter()
	r.Get("/healthz", health.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(deps.Verifier))

		// Anonymous reads.
		r.Get("/videos", videos.List)
		r.Get("/videos/{videoId}", videos.Get)
		r.Get("/videos/{videoId}/comments", content.ListComments)
		r.Get("/channels/{username}", channels.Profile)
		r.Get("/channels/id/{channelId}/stats", channels.Stats)
		r.Get("/subscriptions/{channelId}/subscribers", engagement.Subscribers)
		r.Get("/users/{userId}/subscriptions", engagement.Subscriptions)
		r.Get("/users/{userId}/playlists", playlists.ListByOwner)
		r.Get("/users/{userId}/tweets", content.ListTweets)
		r.Get("/playlists/{playlistId}", playlists.Get)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireActor)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Limit(deps.ToggleLimiter, "toggle"))
				r.Post("/likes/{kind}/{id}", engagement.ToggleLike)
				r.Post("/subscriptions/{channelId}", engagement.ToggleSubscription)
			})
			r.Get("/likes/videos", engagement.LikedVideos)

			r.Post("/users", content.CreateUser)
			r.Get("/users/me", content.Me)
			r.Patch("/users/me", content.UpdateProfile)
			r.Get("/users/history", videos.WatchHistory)

			r.Post("/videos", videos.Publish)
			r.Patch("/videos/{videoId}", videos.Update)
			r.Delete("/videos/{videoId}", videos.Delete)
			r.Post("/videos/{videoId}/publish", videos.TogglePublish)
			r.Post("/videos/{videoId}/views", videos.RecordView)
			r.Post("/videos/{videoId}/comments", content.AddComment)
			r.Patch("/comments/{commentId}", content.UpdateComment)
			r.Delete("/comments/{commentId}", content.DeleteComment)

			r.Post("/tweets", content.CreateTweet)
			r.Patch("/tweets/{tweetId}", content.UpdateTweet)
			r.Delete("/tweets/{tweetId}", content.DeleteTweet)

			r.Post("/playlists", playlists.Create)
			r.Patch("/playlists/{playlistId}", playlists.Update)
			r.Delete("/playlists/{playlistId}", playlists.Delete)
			r.Post("/playlists/{playlistId}/videos/{videoId}", playlists.AddVideo)
			r.Delete("/playlists/{playlistId}/videos/{videoId}", playlists.RemoveVideo)
		})
	})

	return r
}
