package repositories

import (
	"context"

	"github.com/vidtube/backend/internal/models"
)

// SubscriptionRepository stores subscriber -> channel edges. The pair is unique.
type SubscriptionRepository interface {
	Create(ctx context.Context, sub models.Subscription) error
	Find(ctx context.Context, subscriberID, channelID string) (models.Subscription, error)
	Delete(ctx context.Context, id string) error
	Counts(ctx context.Context, channelID, viewerID string) (models.SubscriptionCounts, error)
	ListSubscribers(ctx context.Context, channelID string) ([]models.OwnerSummary, error)
	ListChannels(ctx context.Context, subscriberID string) ([]models.OwnerSummary, error)
}

// LikeRepository stores actor -> target like edges. (actor, kind, target) is unique.
type LikeRepository interface {
	Create(ctx context.Context, like models.Like) error
	Find(ctx context.Context, actorID string, kind models.LikeKind, targetID string) (models.Like, error)
	Delete(ctx context.Context, id string) error
	CountForTargets(ctx context.Context, kind models.LikeKind, targetIDs []string) (int64, error)
	ListLikedVideos(ctx context.Context, actorID string) ([]models.VideoSummary, error)
}
