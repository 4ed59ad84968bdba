// Package channels derives the public profile and content statistics of a channel.
package channels

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/metrics"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

// UserFinder resolves users by id or username.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
}

// VideoLister lists the videos of an owner.
type VideoLister interface {
	ListByOwner(ctx context.Context, ownerID string) ([]models.Video, error)
}

// LikeCounter counts likes pointing at a set of targets.
type LikeCounter interface {
	CountForTargets(ctx context.Context, kind models.LikeKind, targetIDs []string) (int64, error)
}

// SubscriptionCounter reads the subscription figures of a channel.
type SubscriptionCounter interface {
	Counts(ctx context.Context, channelID, viewerID string) (models.SubscriptionCounts, error)
}

// Service computes channel aggregates. User records looked up by username are
// cached; the derived counts never are.
type Service struct {
	users         UserFinder
	videos        VideoLister
	likes         LikeCounter
	subscriptions SubscriptionCounter
	cache         *cache.Cache
}

// NewService constructs a Service. A non-positive ttl disables the username cache.
func NewService(users UserFinder, videos VideoLister, likes LikeCounter, subscriptions SubscriptionCounter, ttl time.Duration) *Service {
	s := &Service{users: users, videos: videos, likes: likes, subscriptions: subscriptions}
	if ttl > 0 {
		s.cache = cache.New(ttl, 2*ttl)
	}
	return s
}

// ChannelProfile returns the channel named username with its subscriber count,
// the number of channels it subscribes to and whether viewerID is subscribed.
// viewerID may be empty for anonymous viewers.
func (s *Service) ChannelProfile(ctx context.Context, username, viewerID string) (profile models.ChannelProfile, err error) {
	ctx, span := logging.StartSpan(ctx, "channels.profile")
	defer func() {
		span.RecordError(err)
		span.End()
	}()

	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return models.ChannelProfile{}, apperr.InvalidArgument("username is required")
	}
	if viewerID != "" {
		viewerID, err = apperr.RequireID("viewerId", viewerID)
		if err != nil {
			return models.ChannelProfile{}, err
		}
	}

	user, err := s.lookup(ctx, username)
	if err != nil {
		return models.ChannelProfile{}, err
	}

	counts, err := s.subscriptions.Counts(ctx, user.ID, viewerID)
	if err != nil {
		return models.ChannelProfile{}, apperr.Internal(err, "count subscriptions")
	}

	return models.ChannelProfile{
		ID:                        user.ID,
		Username:                  user.Username,
		DisplayName:               user.DisplayName,
		Email:                     user.Email,
		AvatarRef:                 user.AvatarRef,
		CoverRef:                  user.CoverRef,
		CreatedAt:                 user.CreatedAt,
		SubscribersCount:          counts.Subscribers,
		ChannelsSubscribedToCount: counts.SubscribedTo,
		IsSubscribed:              viewerID != "" && counts.IsSubscribed,
	}, nil
}

func (s *Service) lookup(ctx context.Context, username string) (models.User, error) {
	if s.cache != nil {
		if cached, found := s.cache.Get(username); found {
			metrics.RecordChannelCacheLookup(true)
			return cached.(models.User), nil
		}
		metrics.RecordChannelCacheLookup(false)
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.User{}, apperr.NotFound("channel %q not found", username)
		}
		return models.User{}, apperr.Internal(err, "find channel")
	}

	if s.cache != nil {
		s.cache.Set(username, user, cache.DefaultExpiration)
	}
	return user, nil
}

// Invalidate drops the cached record for username. Profile updates call it
// with the old username.
func (s *Service) Invalidate(username string) {
	if s.cache == nil {
		return
	}
	s.cache.Delete(strings.ToLower(strings.TrimSpace(username)))
}

// ChannelStats totals the videos, views and video likes of channelID.
func (s *Service) ChannelStats(ctx context.Context, channelID string) (stats models.ChannelStats, err error) {
	ctx, span := logging.StartSpan(ctx, "channels.stats")
	defer func() {
		span.RecordError(err)
		span.End()
	}()

	channelID, err = apperr.RequireID("channelId", channelID)
	if err != nil {
		return models.ChannelStats{}, err
	}
	if _, err := s.users.FindByID(ctx, channelID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.ChannelStats{}, apperr.NotFound("channel %s not found", channelID)
		}
		return models.ChannelStats{}, apperr.Internal(err, "find channel")
	}

	videos, err := s.videos.ListByOwner(ctx, channelID)
	if err != nil {
		return models.ChannelStats{}, apperr.Internal(err, "list channel videos")
	}

	stats.ChannelID = channelID
	ids := make([]string, 0, len(videos))
	for _, video := range videos {
		stats.TotalVideos++
		stats.TotalViews += video.ViewCount
		ids = append(ids, video.ID)
	}
	if len(ids) == 0 {
		return stats, nil
	}

	stats.TotalLikes, err = s.likes.CountForTargets(ctx, models.LikeKindVideo, ids)
	if err != nil {
		return models.ChannelStats{}, apperr.Internal(err, "count channel likes")
	}
	return stats, nil
}
