package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/vidtube/backend/internal/catalog"
	"github.com/vidtube/backend/internal/channels"
	"github.com/vidtube/backend/internal/config"
	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/engagement"
	"github.com/vidtube/backend/internal/feed"
	"github.com/vidtube/backend/internal/handlers"
	"github.com/vidtube/backend/internal/history"
	"github.com/vidtube/backend/internal/middleware"
	"github.com/vidtube/backend/internal/playlists"
	"github.com/vidtube/backend/internal/repositories"
)

// stores groups one implementation of every repository contract.
type stores struct {
	users         repositories.UserRepository
	videos        repositories.VideoRepository
	subscriptions repositories.SubscriptionRepository
	likes         repositories.LikeRepository
	playlists     repositories.PlaylistRepository
	history       repositories.HistoryRepository
	comments      repositories.CommentRepository
	tweets        repositories.TweetRepository
}

func postgresStores(pool db.Pool) stores {
	return stores{
		users:         repositories.NewPostgresUserRepository(pool),
		videos:        repositories.NewPostgresVideoRepository(pool),
		subscriptions: repositories.NewPostgresSubscriptionRepository(pool),
		likes:         repositories.NewPostgresLikeRepository(pool),
		playlists:     repositories.NewPostgresPlaylistRepository(pool),
		history:       repositories.NewPostgresHistoryRepository(pool),
		comments:      repositories.NewPostgresCommentRepository(pool),
		tweets:        repositories.NewPostgresTweetRepository(pool),
	}
}

func memoryStores() stores {
	store := repositories.NewMemoryStore()
	return stores{
		users:         store.Users(),
		videos:        store.Videos(),
		subscriptions: store.Subscriptions(),
		likes:         store.Likes(),
		playlists:     store.Playlists(),
		history:       store.History(),
		comments:      store.Comments(),
		tweets:        store.Tweets(),
	}
}

// buildDependencies wires together concrete implementations used by the HTTP handlers.
// pool is only consulted for the postgres store and may be nil otherwise.
func buildDependencies(pool db.Pool, cfg config.Config) (handlers.Dependencies, error) {
	var s stores
	var healthCheck func(ctx context.Context) error
	switch cfg.Store {
	case config.StorePostgres:
		if pool == nil {
			return handlers.Dependencies{}, errors.New("postgres store requires a connection pool")
		}
		s = postgresStores(pool)
		if pinger, ok := pool.(interface{ Ping(context.Context) error }); ok {
			healthCheck = pinger.Ping
		}
	case config.StoreMemory:
		s = memoryStores()
	default:
		return handlers.Dependencies{}, fmt.Errorf("unknown store %q", cfg.Store)
	}

	var verifier *middleware.TokenVerifier
	if cfg.JWTSecret != "" {
		v, err := middleware.NewTokenVerifier(cfg.JWTSecret)
		if err != nil {
			return handlers.Dependencies{}, err
		}
		verifier = v
	}

	var toggleLimiter middleware.RateLimiter
	if cfg.ToggleRateRequests > 0 {
		toggleLimiter = middleware.NewKeyedRateLimiter(cfg.ToggleRateRequests, cfg.ToggleRateWindow, cfg.ToggleRateBurst, 10*cfg.ToggleRateWindow)
	}

	channelSvc := channels.NewService(s.users, s.videos, s.likes, s.subscriptions, cfg.ChannelCacheTTL)

	return handlers.Dependencies{
		Engagement: &engagement.Service{
			Users:         s.users,
			Videos:        s.videos,
			Comments:      s.comments,
			Tweets:        s.tweets,
			Likes:         s.likes,
			Subscriptions: s.subscriptions,
		},
		Channels: channelSvc,
		Feed:     feed.NewService(s.videos, cfg.MaxPageSize),
		History:  history.NewService(s.users, s.videos, s.history),
		Playlists: &playlists.Service{
			Users:     s.users,
			Videos:    s.videos,
			Playlists: s.playlists,
		},
		Catalog: &catalog.Service{
			Users:    s.users,
			Videos:   s.videos,
			Comments: s.comments,
			Tweets:   s.tweets,
			Channels: channelSvc,
			MaxLimit: cfg.MaxPageSize,
		},
		Verifier:        verifier,
		ToggleLimiter:   toggleLimiter,
		HealthCheck:     healthCheck,
		DefaultPageSize: cfg.DefaultPageSize,
	}, nil
}
