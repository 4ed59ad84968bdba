package repositories

import (
	"context"

	"github.com/vidtube/backend/internal/models"
)

// PlaylistRepository persists playlists and their ordered membership.
type PlaylistRepository interface {
	Create(ctx context.Context, playlist models.Playlist) error
	FindByID(ctx context.Context, id string) (models.Playlist, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Playlist, error)
	// AddVideo appends videoID. It returns ErrConflict when the video is already a member.
	AddVideo(ctx context.Context, playlistID, videoID string) error
	// RemoveVideo removes videoID. It returns ErrNotFound when the video is not a member.
	RemoveVideo(ctx context.Context, playlistID, videoID string) error
	Update(ctx context.Context, playlist models.Playlist) error
	Delete(ctx context.Context, id string) error
}

// HistoryRepository persists each user's ordered watch log.
type HistoryRepository interface {
	// List returns the video ids in stored order, oldest visit first. Duplicates are kept.
	List(ctx context.Context, userID string) ([]string, error)
	// RecordView appends videoID to the log and increments the video's view count atomically.
	RecordView(ctx context.Context, userID, videoID string) error
}

// CommentRepository persists comments on videos.
type CommentRepository interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	ListByVideo(ctx context.Context, videoID string, offset, limit int) ([]models.CommentView, error)
	Update(ctx context.Context, comment models.Comment) error
	Delete(ctx context.Context, id string) error
}

// TweetRepository persists tweets.
type TweetRepository interface {
	Create(ctx context.Context, tweet models.Tweet) error
	FindByID(ctx context.Context, id string) (models.Tweet, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Tweet, error)
	Update(ctx context.Context, tweet models.Tweet) error
	Delete(ctx context.Context, id string) error
}
