// Package history expands a user's watch log into full video records.
package history

import (
	"context"
	"errors"

	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

// Users resolves a single user and batches of owner summaries.
type Users interface {
	FindByID(ctx context.Context, id string) (models.User, error)
	FindSummaries(ctx context.Context, ids []string) (map[string]models.OwnerSummary, error)
}

// Videos resolves batches of videos by id.
type Videos interface {
	FindByIDs(ctx context.Context, ids []string) (map[string]models.Video, error)
}

// Service reads and appends watch history.
type Service struct {
	users   Users
	videos  Videos
	history repositories.HistoryRepository
}

// NewService constructs a Service.
func NewService(users Users, videos Videos, history repositories.HistoryRepository) *Service {
	return &Service{users: users, videos: videos, history: history}
}

// Expand returns every entry of userID's history as a video with its owner,
// in stored order. Repeated visits appear once per visit.
func (s *Service) Expand(ctx context.Context, userID string) (out []models.HydratedVideo, err error) {
	ctx, span := logging.StartSpan(ctx, "history.expand")
	defer func() {
		span.RecordError(err)
		span.End()
	}()

	userID, err = apperr.RequireID("userId", userID)
	if err != nil {
		return nil, err
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	entries, err := s.history.List(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err, "list watch history")
	}
	if len(entries) == 0 {
		return []models.HydratedVideo{}, nil
	}

	videos, err := s.videos.FindByIDs(ctx, distinct(entries))
	if err != nil {
		return nil, apperr.Internal(err, "load history videos")
	}

	ownerIDs := make([]string, 0, len(videos))
	for _, video := range videos {
		ownerIDs = append(ownerIDs, video.OwnerID)
	}
	owners, err := s.users.FindSummaries(ctx, distinct(ownerIDs))
	if err != nil {
		return nil, apperr.Internal(err, "load history owners")
	}

	logger := logging.FromContext(ctx)
	out = make([]models.HydratedVideo, 0, len(entries))
	for _, videoID := range entries {
		video, ok := videos[videoID]
		if !ok {
			logger.Warn("history entry references missing video", "userId", userID, "videoId", videoID)
			continue
		}
		out = append(out, models.HydratedVideo{Video: video, Owner: owners[video.OwnerID]})
	}
	return out, nil
}

// RecordView appends videoID to userID's history and counts the view.
func (s *Service) RecordView(ctx context.Context, userID, videoID string) (err error) {
	ctx, span := logging.StartSpan(ctx, "history.record_view")
	defer func() {
		span.RecordError(err)
		span.End()
	}()

	userID, err = apperr.RequireID("userId", userID)
	if err != nil {
		return err
	}
	videoID, err = apperr.RequireID("videoId", videoID)
	if err != nil {
		return err
	}

	if err := s.history.RecordView(ctx, userID, videoID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperr.NotFound("user %s or video %s not found", userID, videoID)
		}
		return apperr.Internal(err, "record view")
	}
	return nil
}

func (s *Service) requireUser(ctx context.Context, id string) error {
	if _, err := s.users.FindByID(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperr.NotFound("user %s not found", id)
		}
		return apperr.Internal(err, "find user")
	}
	return nil
}

func distinct(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
