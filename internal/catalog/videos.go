package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

// NewVideo is the metadata of an uploaded video. Media references are opaque.
type NewVideo struct {
	Title           string
	Description     string
	MediaRef        string
	ThumbnailRef    string
	DurationSeconds float64
}

// VideoPatch carries the editable fields of a video. Nil fields are left unchanged.
type VideoPatch struct {
	Title        *string
	Description  *string
	ThumbnailRef *string
}

// PublishVideo stores a published video owned by ownerID.
func (s *Service) PublishVideo(ctx context.Context, ownerID string, in NewVideo) (video models.Video, err error) {
	ctx, span := logging.StartSpan(ctx, "catalog.publish_video")
	defer func() {
		span.RecordError(err)
		span.End()
	}()

	ownerID, err = apperr.RequireID("ownerId", ownerID)
	if err != nil {
		return models.Video{}, err
	}
	title, err := requireText("title", in.Title)
	if err != nil {
		return models.Video{}, err
	}
	mediaRef, err := requireText("videoFile", in.MediaRef)
	if err != nil {
		return models.Video{}, err
	}
	if in.DurationSeconds < 0 {
		return models.Video{}, apperr.InvalidArgument("duration must not be negative")
	}
	if err := s.requireUser(ctx, ownerID); err != nil {
		return models.Video{}, err
	}

	now := s.now()
	video = models.Video{
		ID:              uuid.NewString(),
		OwnerID:         ownerID,
		Title:           title,
		Description:     strings.TrimSpace(in.Description),
		MediaRef:        mediaRef,
		ThumbnailRef:    strings.TrimSpace(in.ThumbnailRef),
		DurationSeconds: in.DurationSeconds,
		IsPublished:     true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.Videos.Create(ctx, video); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Video{}, apperr.NotFound("user %s not found", ownerID)
		}
		return models.Video{}, apperr.Internal(err, "create video")
	}

	logging.FromContext(ctx).Info("video published", "videoId", video.ID, "ownerId", ownerID)
	return video, nil
}

// GetVideo returns the video with its owner projection.
func (s *Service) GetVideo(ctx context.Context, videoID string) (models.HydratedVideo, error) {
	videoID, err := apperr.RequireID("videoId", videoID)
	if err != nil {
		return models.HydratedVideo{}, err
	}
	video, err := s.Videos.FindByID(ctx, videoID)
	if err != nil {
		return models.HydratedVideo{}, lookupError(err, "video", videoID)
	}
	owners, err := s.Users.FindSummaries(ctx, []string{video.OwnerID})
	if err != nil {
		return models.HydratedVideo{}, apperr.Internal(err, "load video owner")
	}
	return models.HydratedVideo{Video: video, Owner: owners[video.OwnerID]}, nil
}

// UpdateVideo applies patch to a video owned by actorID.
func (s *Service) UpdateVideo(ctx context.Context, actorID, videoID string, patch VideoPatch) (video models.Video, err error) {
	ctx, span := logging.StartSpan(ctx, "catalog.update_video")
	defer func() {
		span.RecordError(err)
		span.End()
	}()

	if patch.Title == nil && patch.Description == nil && patch.ThumbnailRef == nil {
		return models.Video{}, apperr.InvalidArgument("title, description or thumbnail is required")
	}
	var title string
	if patch.Title != nil {
		if title, err = requireText("title", *patch.Title); err != nil {
			return models.Video{}, err
		}
	}

	video, err = s.ownedVideo(ctx, actorID, videoID)
	if err != nil {
		return models.Video{}, err
	}
	if patch.Title != nil {
		video.Title = title
	}
	if patch.Description != nil {
		video.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.ThumbnailRef != nil {
		video.ThumbnailRef = strings.TrimSpace(*patch.ThumbnailRef)
	}
	video.UpdatedAt = s.now()

	if err := s.saveVideo(ctx, video); err != nil {
		return models.Video{}, err
	}
	return video, nil
}

// TogglePublish flips the published flag of a video owned by actorID.
func (s *Service) TogglePublish(ctx context.Context, actorID, videoID string) (video models.Video, err error) {
	ctx, span := logging.StartSpan(ctx, "catalog.toggle_publish")
	defer func() {
		span.RecordError(err)
		span.End()
	}()

	video, err = s.ownedVideo(ctx, actorID, videoID)
	if err != nil {
		return models.Video{}, err
	}
	video.IsPublished = !video.IsPublished
	video.UpdatedAt = s.now()

	if err := s.saveVideo(ctx, video); err != nil {
		return models.Video{}, err
	}
	return video, nil
}

// DeleteVideo removes a video owned by actorID together with its likes,
// comments, playlist memberships and history entries.
func (s *Service) DeleteVideo(ctx context.Context, actorID, videoID string) (err error) {
	ctx, span := logging.StartSpan(ctx, "catalog.delete_video")
	defer func() {
		span.RecordError(err)
		span.End()
	}()

	video, err := s.ownedVideo(ctx, actorID, videoID)
	if err != nil {
		return err
	}
	videoID, actorID = video.ID, video.OwnerID
	if err := s.Videos.Delete(ctx, videoID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperr.NotFound("video %s not found", videoID)
		}
		return apperr.Internal(err, "delete video")
	}

	logging.FromContext(ctx).Info("video deleted", "videoId", videoID, "ownerId", actorID)
	return nil
}

func (s *Service) ownedVideo(ctx context.Context, actorID, videoID string) (models.Video, error) {
	actorID, err := apperr.RequireID("actorId", actorID)
	if err != nil {
		return models.Video{}, err
	}
	videoID, err = apperr.RequireID("videoId", videoID)
	if err != nil {
		return models.Video{}, err
	}
	video, err := s.Videos.FindByID(ctx, videoID)
	if err != nil {
		return models.Video{}, lookupError(err, "video", videoID)
	}
	if video.OwnerID != actorID {
		return models.Video{}, notOwner("video", videoID)
	}
	return video, nil
}

func (s *Service) saveVideo(ctx context.Context, video models.Video) error {
	if err := s.Videos.Update(ctx, video); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperr.NotFound("video %s not found", video.ID)
		}
		return apperr.Internal(err, "update video")
	}
	return nil
}
