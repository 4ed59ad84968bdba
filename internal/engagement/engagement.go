// Package engagement toggles like and subscription edges and lists them.
//
// A toggle reads the edge by its composite key and then deletes or inserts it.
// Two concurrent toggles may both see the edge absent; the store's unique key
// rejects the second insert and the loser gets a Conflict error to retry.
package engagement

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/metrics"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

const (
	edgeLike         = "like"
	edgeSubscription = "subscription"
)

// Toggled is the result of a toggle. Edge is set when the call created the
// edge; RemovedID is set when it deleted one.
type Toggled[E any] struct {
	Edge      *E
	RemovedID string
}

// Created reports whether the toggle inserted a new edge.
func (t Toggled[E]) Created() bool {
	return t.Edge != nil
}

// UserFinder resolves users by id.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (models.User, error)
}

// VideoFinder resolves videos by id.
type VideoFinder interface {
	FindByID(ctx context.Context, id string) (models.Video, error)
}

// CommentFinder resolves comments by id.
type CommentFinder interface {
	FindByID(ctx context.Context, id string) (models.Comment, error)
}

// TweetFinder resolves tweets by id.
type TweetFinder interface {
	FindByID(ctx context.Context, id string) (models.Tweet, error)
}

// Service implements the like and subscription toggles.
type Service struct {
	Users         UserFinder
	Videos        VideoFinder
	Comments      CommentFinder
	Tweets        TweetFinder
	Likes         repositories.LikeRepository
	Subscriptions repositories.SubscriptionRepository
	NowFunc       func() time.Time
}

func (s *Service) now() time.Time {
	if s.NowFunc != nil {
		return s.NowFunc()
	}
	return time.Now().UTC()
}

// ToggleLike likes targetID on behalf of actorID, or removes the like if it exists.
func (s *Service) ToggleLike(ctx context.Context, actorID string, kind models.LikeKind, targetID string) (result Toggled[models.Like], err error) {
	ctx, span := logging.StartSpan(ctx, "engagement.toggle_like")
	defer func() {
		span.RecordError(err)
		span.End()
		recordOutcome(edgeLike, result.Created(), err)
	}()

	actorID, err = apperr.RequireID("actorId", actorID)
	if err != nil {
		return Toggled[models.Like]{}, err
	}
	kind, err = models.ParseLikeKind(string(kind))
	if err != nil {
		return Toggled[models.Like]{}, apperr.InvalidArgument("%v", err)
	}
	targetID, err = apperr.RequireID(string(kind)+"Id", targetID)
	if err != nil {
		return Toggled[models.Like]{}, err
	}

	if err := s.requireUser(ctx, actorID); err != nil {
		return Toggled[models.Like]{}, err
	}
	if err := s.requireTarget(ctx, kind, targetID); err != nil {
		return Toggled[models.Like]{}, err
	}

	existing, err := s.Likes.Find(ctx, actorID, kind, targetID)
	switch {
	case err == nil:
		if err := s.Likes.Delete(ctx, existing.ID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return Toggled[models.Like]{}, apperr.Conflict(err, "concurrent toggle on %s %s", kind, targetID)
			}
			return Toggled[models.Like]{}, apperr.Internal(err, "delete like")
		}
		logging.FromContext(ctx).Info("like removed", "actorId", actorID, "kind", kind, "targetId", targetID)
		return Toggled[models.Like]{RemovedID: existing.ID}, nil
	case !errors.Is(err, repositories.ErrNotFound):
		return Toggled[models.Like]{}, apperr.Internal(err, "find like")
	}

	like := models.Like{
		ID:        uuid.NewString(),
		ActorID:   actorID,
		Kind:      kind,
		TargetID:  targetID,
		CreatedAt: s.now(),
	}
	if err := s.Likes.Create(ctx, like); err != nil {
		switch {
		case errors.Is(err, repositories.ErrConflict):
			return Toggled[models.Like]{}, apperr.Conflict(err, "concurrent toggle on %s %s", kind, targetID)
		case errors.Is(err, repositories.ErrNotFound):
			return Toggled[models.Like]{}, apperr.NotFound("user %s not found", actorID)
		}
		return Toggled[models.Like]{}, apperr.Internal(err, "create like")
	}

	logging.FromContext(ctx).Info("like created", "actorId", actorID, "kind", kind, "targetId", targetID)
	return Toggled[models.Like]{Edge: &like}, nil
}

// ToggleSubscription subscribes subscriberID to channelID, or unsubscribes if
// the subscription exists. A user cannot subscribe to their own channel.
func (s *Service) ToggleSubscription(ctx context.Context, subscriberID, channelID string) (result Toggled[models.Subscription], err error) {
	ctx, span := logging.StartSpan(ctx, "engagement.toggle_subscription")
	defer func() {
		span.RecordError(err)
		span.End()
		recordOutcome(edgeSubscription, result.Created(), err)
	}()

	subscriberID, err = apperr.RequireID("subscriberId", subscriberID)
	if err != nil {
		return Toggled[models.Subscription]{}, err
	}
	channelID, err = apperr.RequireID("channelId", channelID)
	if err != nil {
		return Toggled[models.Subscription]{}, err
	}
	if subscriberID == channelID {
		return Toggled[models.Subscription]{}, apperr.InvalidArgument("cannot subscribe to your own channel")
	}

	if err := s.requireUser(ctx, subscriberID); err != nil {
		return Toggled[models.Subscription]{}, err
	}
	if err := s.requireUser(ctx, channelID); err != nil {
		return Toggled[models.Subscription]{}, err
	}

	existing, err := s.Subscriptions.Find(ctx, subscriberID, channelID)
	switch {
	case err == nil:
		if err := s.Subscriptions.Delete(ctx, existing.ID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return Toggled[models.Subscription]{}, apperr.Conflict(err, "concurrent toggle on channel %s", channelID)
			}
			return Toggled[models.Subscription]{}, apperr.Internal(err, "delete subscription")
		}
		logging.FromContext(ctx).Info("unsubscribed", "subscriberId", subscriberID, "channelId", channelID)
		return Toggled[models.Subscription]{RemovedID: existing.ID}, nil
	case !errors.Is(err, repositories.ErrNotFound):
		return Toggled[models.Subscription]{}, apperr.Internal(err, "find subscription")
	}

	sub := models.Subscription{
		ID:           uuid.NewString(),
		SubscriberID: subscriberID,
		ChannelID:    channelID,
		CreatedAt:    s.now(),
	}
	if err := s.Subscriptions.Create(ctx, sub); err != nil {
		switch {
		case errors.Is(err, repositories.ErrConflict):
			return Toggled[models.Subscription]{}, apperr.Conflict(err, "concurrent toggle on channel %s", channelID)
		case errors.Is(err, repositories.ErrNotFound):
			return Toggled[models.Subscription]{}, apperr.NotFound("channel %s not found", channelID)
		}
		return Toggled[models.Subscription]{}, apperr.Internal(err, "create subscription")
	}

	logging.FromContext(ctx).Info("subscribed", "subscriberId", subscriberID, "channelId", channelID)
	return Toggled[models.Subscription]{Edge: &sub}, nil
}

// ListLikedVideos returns the videos actorID liked, most recent like first.
func (s *Service) ListLikedVideos(ctx context.Context, actorID string) ([]models.VideoSummary, error) {
	actorID, err := apperr.RequireID("actorId", actorID)
	if err != nil {
		return nil, err
	}
	videos, err := s.Likes.ListLikedVideos(ctx, actorID)
	if err != nil {
		return nil, apperr.Internal(err, "list liked videos")
	}
	return videos, nil
}

// ListSubscribers returns the users subscribed to channelID.
func (s *Service) ListSubscribers(ctx context.Context, channelID string) ([]models.OwnerSummary, error) {
	channelID, err := apperr.RequireID("channelId", channelID)
	if err != nil {
		return nil, err
	}
	if err := s.requireUser(ctx, channelID); err != nil {
		return nil, err
	}
	users, err := s.Subscriptions.ListSubscribers(ctx, channelID)
	if err != nil {
		return nil, apperr.Internal(err, "list subscribers")
	}
	return users, nil
}

// ListSubscriptions returns the channels subscriberID is subscribed to.
func (s *Service) ListSubscriptions(ctx context.Context, subscriberID string) ([]models.OwnerSummary, error) {
	subscriberID, err := apperr.RequireID("subscriberId", subscriberID)
	if err != nil {
		return nil, err
	}
	if err := s.requireUser(ctx, subscriberID); err != nil {
		return nil, err
	}
	channels, err := s.Subscriptions.ListChannels(ctx, subscriberID)
	if err != nil {
		return nil, apperr.Internal(err, "list subscribed channels")
	}
	return channels, nil
}

func (s *Service) requireUser(ctx context.Context, id string) error {
	if _, err := s.Users.FindByID(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperr.NotFound("user %s not found", id)
		}
		return apperr.Internal(err, "find user")
	}
	return nil
}

func (s *Service) requireTarget(ctx context.Context, kind models.LikeKind, id string) error {
	var err error
	switch kind {
	case models.LikeKindVideo:
		_, err = s.Videos.FindByID(ctx, id)
	case models.LikeKindComment:
		_, err = s.Comments.FindByID(ctx, id)
	case models.LikeKindTweet:
		_, err = s.Tweets.FindByID(ctx, id)
	}
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperr.NotFound("%s %s not found", kind, id)
		}
		return apperr.Internal(err, "find %s", kind)
	}
	return nil
}

func recordOutcome(edge string, created bool, err error) {
	switch {
	case err == nil && created:
		metrics.RecordToggle(edge, metrics.OutcomeCreated)
	case err == nil:
		metrics.RecordToggle(edge, metrics.OutcomeRemoved)
	case errors.Is(err, apperr.ErrConflict):
		metrics.RecordToggle(edge, metrics.OutcomeConflict)
	default:
		metrics.RecordToggle(edge, metrics.OutcomeError)
	}
}
