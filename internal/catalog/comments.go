package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

// AddComment attaches a comment by actorID to a video.
func (s *Service) AddComment(ctx context.Context, actorID, videoID, content string) (comment models.Comment, err error) {
	ctx, span := logging.StartSpan(ctx, "catalog.add_comment")
	defer func() {
		span.RecordError(err)
		span.End()
	}()

	actorID, err = apperr.RequireID("actorId", actorID)
	if err != nil {
		return models.Comment{}, err
	}
	videoID, err = apperr.RequireID("videoId", videoID)
	if err != nil {
		return models.Comment{}, err
	}
	if content, err = requireText("content", content); err != nil {
		return models.Comment{}, err
	}
	if err := s.requireUser(ctx, actorID); err != nil {
		return models.Comment{}, err
	}
	if _, err := s.Videos.FindByID(ctx, videoID); err != nil {
		return models.Comment{}, lookupError(err, "video", videoID)
	}

	now := s.now()
	comment = models.Comment{
		ID:        uuid.NewString(),
		VideoID:   videoID,
		OwnerID:   actorID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Comments.Create(ctx, comment); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Comment{}, apperr.NotFound("video %s not found", videoID)
		}
		return models.Comment{}, apperr.Internal(err, "create comment")
	}
	return comment, nil
}

// ListComments returns one page of a video's comments, newest first.
func (s *Service) ListComments(ctx context.Context, videoID string, page, limit int) (models.CommentPage, error) {
	videoID, err := apperr.RequireID("videoId", videoID)
	if err != nil {
		return models.CommentPage{}, err
	}
	if page < 1 {
		return models.CommentPage{}, apperr.InvalidArgument("page must be at least 1")
	}
	if limit < 1 || limit > s.maxLimit() {
		return models.CommentPage{}, apperr.InvalidArgument("limit must be between 1 and %d", s.maxLimit())
	}
	if _, err := s.Videos.FindByID(ctx, videoID); err != nil {
		return models.CommentPage{}, lookupError(err, "video", videoID)
	}

	items, err := s.Comments.ListByVideo(ctx, videoID, (page-1)*limit, limit)
	if err != nil {
		return models.CommentPage{}, apperr.Internal(err, "list comments")
	}
	if items == nil {
		items = []models.CommentView{}
	}
	return models.CommentPage{Items: items, Page: page, Limit: limit}, nil
}

// UpdateComment replaces the content of a comment owned by actorID.
func (s *Service) UpdateComment(ctx context.Context, actorID, commentID, content string) (comment models.Comment, err error) {
	ctx, span := logging.StartSpan(ctx, "catalog.update_comment")
	defer func() {
		span.RecordError(err)
		span.End()
	}()

	if content, err = requireText("content", content); err != nil {
		return models.Comment{}, err
	}
	comment, err = s.ownedComment(ctx, actorID, commentID)
	if err != nil {
		return models.Comment{}, err
	}
	comment.Content = content
	comment.UpdatedAt = s.now()

	if err := s.Comments.Update(ctx, comment); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Comment{}, apperr.NotFound("comment %s not found", commentID)
		}
		return models.Comment{}, apperr.Internal(err, "update comment")
	}
	return comment, nil
}

// DeleteComment removes a comment owned by actorID and the likes pointing at it.
func (s *Service) DeleteComment(ctx context.Context, actorID, commentID string) (err error) {
	ctx, span := logging.StartSpan(ctx, "catalog.delete_comment")
	defer func() {
		span.RecordError(err)
		span.End()
	}()

	comment, err := s.ownedComment(ctx, actorID, commentID)
	if err != nil {
		return err
	}
	commentID = comment.ID
	if err := s.Comments.Delete(ctx, commentID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperr.NotFound("comment %s not found", commentID)
		}
		return apperr.Internal(err, "delete comment")
	}
	return nil
}

func (s *Service) ownedComment(ctx context.Context, actorID, commentID string) (models.Comment, error) {
	actorID, err := apperr.RequireID("actorId", actorID)
	if err != nil {
		return models.Comment{}, err
	}
	commentID, err = apperr.RequireID("commentId", commentID)
	if err != nil {
		return models.Comment{}, err
	}
	comment, err := s.Comments.FindByID(ctx, commentID)
	if err != nil {
		return models.Comment{}, lookupError(err, "comment", commentID)
	}
	if comment.OwnerID != actorID {
		return models.Comment{}, notOwner("comment", commentID)
	}
	return comment, nil
}
