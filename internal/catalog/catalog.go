// Package catalog manages the owned entities of the graph: user profiles,
// videos, comments and tweets. Mutations of an existing record require the
// acting user to own it.
package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/repositories"
)

// DefaultMaxLimit bounds the page size of comment listings when MaxLimit is unset.
const DefaultMaxLimit = 100

// ChannelInvalidator drops cached channel lookups after a profile changes.
type ChannelInvalidator interface {
	Invalidate(username string)
}

// Service implements catalog operations over the entity repositories.
type Service struct {
	Users    repositories.UserRepository
	Videos   repositories.VideoRepository
	Comments repositories.CommentRepository
	Tweets   repositories.TweetRepository
	// Channels is optional.
	Channels ChannelInvalidator
	MaxLimit int
	NowFunc  func() time.Time
}

func (s *Service) now() time.Time {
	if s.NowFunc != nil {
		return s.NowFunc()
	}
	return time.Now().UTC()
}

func (s *Service) maxLimit() int {
	if s.MaxLimit > 0 {
		return s.MaxLimit
	}
	return DefaultMaxLimit
}

func requireText(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", apperr.InvalidArgument("%s is required", field)
	}
	return value, nil
}

// notOwner is returned when actorID attempts to mutate a record owned by someone else.
func notOwner(kind, id string) error {
	return apperr.PermissionDenied("%s %s is owned by another user", kind, id)
}

// lookupError converts a repository read failure into an apperr kind.
func lookupError(err error, kind, id string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperr.NotFound("%s %s not found", kind, id)
	}
	return apperr.Internal(err, "find %s", kind)
}

func (s *Service) requireUser(ctx context.Context, id string) error {
	if _, err := s.Users.FindByID(ctx, id); err != nil {
		return lookupError(err, "user", id)
	}
	return nil
}
