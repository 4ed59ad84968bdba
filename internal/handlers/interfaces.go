package handlers

import (
	"context"

	"github.com/vidtube/backend/internal/catalog"
	"github.com/vidtube/backend/internal/channels"
	"github.com/vidtube/backend/internal/engagement"
	"github.com/vidtube/backend/internal/feed"
	"github.com/vidtube/backend/internal/history"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/playlists"
)

// EngagementService toggles like and subscription edges and lists them.
type EngagementService interface {
	ToggleLike(ctx context.Context, actorID string, kind models.LikeKind, targetID string) (engagement.Toggled[models.Like], error)
	ToggleSubscription(ctx context.Context, subscriberID, channelID string) (engagement.Toggled[models.Subscription], error)
	ListLikedVideos(ctx context.Context, actorID string) ([]models.VideoSummary, error)
	ListSubscribers(ctx context.Context, channelID string) ([]models.OwnerSummary, error)
	ListSubscriptions(ctx context.Context, subscriberID string) ([]models.OwnerSummary, error)
}

// ChannelService derives channel aggregates.
type ChannelService interface {
	ChannelProfile(ctx context.Context, username, viewerID string) (models.ChannelProfile, error)
	ChannelStats(ctx context.Context, channelID string) (models.ChannelStats, error)
}

// FeedService lists videos.
type FeedService interface {
	ListVideos(ctx context.Context, q feed.Query) (models.VideoPage, error)
}

// HistoryService records and expands watch history.
type HistoryService interface {
	Expand(ctx context.Context, userID string) ([]models.HydratedVideo, error)
	RecordView(ctx context.Context, userID, videoID string) error
}

// PlaylistService manages playlists.
type PlaylistService interface {
	Create(ctx context.Context, ownerID, name, description string, videoIDs []string) (models.Playlist, error)
	AddVideo(ctx context.Context, actorID, playlistID, videoID string) (models.Playlist, error)
	RemoveVideo(ctx context.Context, actorID, playlistID, videoID string) (models.Playlist, error)
	Update(ctx context.Context, actorID, playlistID string, patch playlists.Patch) (models.Playlist, error)
	Delete(ctx context.Context, actorID, playlistID string) error
	Get(ctx context.Context, playlistID string) (models.Playlist, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Playlist, error)
}

// CatalogService manages profiles, videos, comments and tweets.
type CatalogService interface {
	CreateUser(ctx context.Context, in catalog.NewUser) (models.User, error)
	GetUser(ctx context.Context, id string) (models.User, error)
	UpdateProfile(ctx context.Context, actorID string, patch catalog.ProfilePatch) (models.User, error)

	PublishVideo(ctx context.Context, ownerID string, in catalog.NewVideo) (models.Video, error)
	GetVideo(ctx context.Context, videoID string) (models.HydratedVideo, error)
	UpdateVideo(ctx context.Context, actorID, videoID string, patch catalog.VideoPatch) (models.Video, error)
	TogglePublish(ctx context.Context, actorID, videoID string) (models.Video, error)
	DeleteVideo(ctx context.Context, actorID, videoID string) error

	AddComment(ctx context.Context, actorID, videoID, content string) (models.Comment, error)
	ListComments(ctx context.Context, videoID string, page, limit int) (models.CommentPage, error)
	UpdateComment(ctx context.Context, actorID, commentID, content string) (models.Comment, error)
	DeleteComment(ctx context.Context, actorID, commentID string) error

	CreateTweet(ctx context.Context, actorID, content string) (models.Tweet, error)
	ListTweets(ctx context.Context, ownerID string) ([]models.Tweet, error)
	UpdateTweet(ctx context.Context, actorID, tweetID, content string) (models.Tweet, error)
	DeleteTweet(ctx context.Context, actorID, tweetID string) error
}

var (
	_ EngagementService = (*engagement.Service)(nil)
	_ ChannelService    = (*channels.Service)(nil)
	_ FeedService       = (*feed.Service)(nil)
	_ HistoryService    = (*history.Service)(nil)
	_ PlaylistService   = (*playlists.Service)(nil)
	_ CatalogService    = (*catalog.Service)(nil)
)
