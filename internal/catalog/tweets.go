package catalog

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

func tweetContent(content string) (string, error) {
	content, err := requireText("content", content)
	if err != nil {
		return "", err
	}
	if n := utf8.RuneCountInString(content); n > models.MaxTweetLength {
		return "", apperr.InvalidArgument("content is %d characters, the limit is %d", n, models.MaxTweetLength)
	}
	return content, nil
}

// CreateTweet posts a tweet owned by actorID.
func (s *Service) CreateTweet(ctx context.Context, actorID, content string) (tweet models.Tweet, err error) {
	ctx, span := logging.StartSpan(ctx, "catalog.create_tweet")
	defer func() {
		span.RecordError(err)
		span.End()
	}()

	actorID, err = apperr.RequireID("actorId", actorID)
	if err != nil {
		return models.Tweet{}, err
	}
	if content, err = tweetContent(content); err != nil {
		return models.Tweet{}, err
	}
	if err := s.requireUser(ctx, actorID); err != nil {
		return models.Tweet{}, err
	}

	now := s.now()
	tweet = models.Tweet{ID: uuid.NewString(), OwnerID: actorID, Content: content, CreatedAt: now, UpdatedAt: now}
	if err := s.Tweets.Create(ctx, tweet); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Tweet{}, apperr.NotFound("user %s not found", actorID)
		}
		return models.Tweet{}, apperr.Internal(err, "create tweet")
	}
	return tweet, nil
}

// ListTweets returns the tweets of ownerID, newest first.
func (s *Service) ListTweets(ctx context.Context, ownerID string) ([]models.Tweet, error) {
	ownerID, err := apperr.RequireID("userId", ownerID)
	if err != nil {
		return nil, err
	}
	if err := s.requireUser(ctx, ownerID); err != nil {
		return nil, err
	}
	tweets, err := s.Tweets.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperr.Internal(err, "list tweets")
	}
	if tweets == nil {
		tweets = []models.Tweet{}
	}
	return tweets, nil
}

// UpdateTweet replaces the content of a tweet owned by actorID.
func (s *Service) UpdateTweet(ctx context.Context, actorID, tweetID, content string) (tweet models.Tweet, err error) {
	ctx, span := logging.StartSpan(ctx, "catalog.update_tweet")
	defer func() {
		span.RecordError(err)
		span.End()
	}()

	if content, err = tweetContent(content); err != nil {
		return models.Tweet{}, err
	}
	tweet, err = s.ownedTweet(ctx, actorID, tweetID)
	if err != nil {
		return models.Tweet{}, err
	}
	tweet.Content = content
	tweet.UpdatedAt = s.now()

	if err := s.Tweets.Update(ctx, tweet); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Tweet{}, apperr.NotFound("tweet %s not found", tweetID)
		}
		return models.Tweet{}, apperr.Internal(err, "update tweet")
	}
	return tweet, nil
}

// DeleteTweet removes a tweet owned by actorID and the likes pointing at it.
func (s *Service) DeleteTweet(ctx context.Context, actorID, tweetID string) (err error) {
	ctx, span := logging.StartSpan(ctx, "catalog.delete_tweet")
	defer func() {
		span.RecordError(err)
		span.End()
	}()

	tweet, err := s.ownedTweet(ctx, actorID, tweetID)
	if err != nil {
		return err
	}
	tweetID = tweet.ID
	if err := s.Tweets.Delete(ctx, tweetID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperr.NotFound("tweet %s not found", tweetID)
		}
		return apperr.Internal(err, "delete tweet")
	}
	return nil
}

func (s *Service) ownedTweet(ctx context.Context, actorID, tweetID string) (models.Tweet, error) {
	actorID, err := apperr.RequireID("actorId", actorID)
	if err != nil {
		return models.Tweet{}, err
	}
	tweetID, err = apperr.RequireID("tweetId", tweetID)
	if err != nil {
		return models.Tweet{}, err
	}
	tweet, err := s.Tweets.FindByID(ctx, tweetID)
	if err != nil {
		return models.Tweet{}, lookupError(err, "tweet", tweetID)
	}
	if tweet.OwnerID != actorID {
		return models.Tweet{}, notOwner("tweet", tweetID)
	}
	return tweet, nil
}
