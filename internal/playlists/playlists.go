// Package playlists maintains ordered, duplicate-free video playlists.
package playlists

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

// UserFinder resolves users by id.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (models.User, error)
}

// VideoFinder resolves videos by id, singly or in batches.
type VideoFinder interface {
	FindByID(ctx context.Context, id string) (models.Video, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]models.Video, error)
}

// Patch carries the fields of an update. Nil fields are left unchanged.
type Patch struct {
	Name        *string
	Description *string
}

// Service implements playlist operations. Every mutation requires the actor
// to own the playlist.
type Service struct {
	Users     UserFinder
	Videos    VideoFinder
	Playlists repositories.PlaylistRepository
	NowFunc   func() time.Time
}

func (s *Service) now() time.Time {
	if s.NowFunc != nil {
		return s.NowFunc()
	}
	return time.Now().UTC()
}

// Create builds a playlist owned by ownerID containing videoIDs in the given order.
func (s *Service) Create(ctx context.Context, ownerID, name, description string, videoIDs []string) (playlist models.Playlist, err error) {
	ctx, span := logging.StartSpan(ctx, "playlists.create")
	defer func() {
		span.RecordError(err)
		span.End()
	}()

	ownerID, err = apperr.RequireID("ownerId", ownerID)
	if err != nil {
		return models.Playlist{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Playlist{}, apperr.InvalidArgument("name is required")
	}

	canonical := make([]string, len(videoIDs))
	firstSeen := make(map[string]int, len(videoIDs))
	for i, raw := range videoIDs {
		id, err := apperr.RequireID("videoIds["+strconv.Itoa(i)+"]", raw)
		if err != nil {
			return models.Playlist{}, err
		}
		if j, dup := firstSeen[id]; dup {
			return models.Playlist{}, apperr.InvalidArgument("videoIds[%d] duplicates videoIds[%d]", i, j)
		}
		firstSeen[id] = i
		canonical[i] = id
	}
	videoIDs = canonical

	if _, err := s.Users.FindByID(ctx, ownerID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Playlist{}, apperr.NotFound("user %s not found", ownerID)
		}
		return models.Playlist{}, apperr.Internal(err, "find owner")
	}

	if len(videoIDs) > 0 {
		found, err := s.Videos.FindByIDs(ctx, videoIDs)
		if err != nil {
			return models.Playlist{}, apperr.Internal(err, "load playlist videos")
		}
		for i, id := range videoIDs {
			if _, ok := found[id]; !ok {
				return models.Playlist{}, apperr.NotFound("videoIds[%d]: video %s not found", i, id)
			}
		}
	}

	now := s.now()
	playlist = models.Playlist{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Name:        name,
		Description: strings.TrimSpace(description),
		VideoIDs:    append([]string{}, videoIDs...),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Playlists.Create(ctx, playlist); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Playlist{}, apperr.NotFound("a playlist video was deleted concurrently")
		}
		return models.Playlist{}, apperr.Internal(err, "create playlist")
	}

	logging.FromContext(ctx).Info("playlist created", "playlistId", playlist.ID, "ownerId", ownerID, "videos", len(videoIDs))
	return playlist, nil
}

// AddVideo appends videoID to the playlist.
func (s *Service) AddVideo(ctx context.Context, actorID, playlistID, videoID string) (playlist models.Playlist, err error) {
	ctx, span := logging.StartSpan(ctx, "playlists.add_video")
	defer func() {
		span.RecordError(err)
		span.End()
	}()

	videoID, err = apperr.RequireID("videoId", videoID)
	if err != nil {
		return models.Playlist{}, err
	}
	playlist, err = s.owned(ctx, actorID, playlistID)
	if err != nil {
		return models.Playlist{}, err
	}
	playlistID = playlist.ID

	if _, err := s.Videos.FindByID(ctx, videoID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Playlist{}, apperr.NotFound("video %s not found", videoID)
		}
		return models.Playlist{}, apperr.Internal(err, "find video")
	}
	if playlist.Contains(videoID) {
		return models.Playlist{}, apperr.Conflict(nil, "video %s is already a member of playlist %s", videoID, playlistID)
	}

	if err := s.Playlists.AddVideo(ctx, playlistID, videoID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrConflict):
			return models.Playlist{}, apperr.Conflict(err, "video %s is already a member of playlist %s", videoID, playlistID)
		case errors.Is(err, repositories.ErrNotFound):
			return models.Playlist{}, apperr.NotFound("playlist %s or video %s no longer exists", playlistID, videoID)
		}
		return models.Playlist{}, apperr.Internal(err, "add playlist video")
	}

	return s.reload(ctx, playlistID)
}

// RemoveVideo removes videoID from the playlist, keeping the order of the rest.
func (s *Service) RemoveVideo(ctx context.Context, actorID, playlistID, videoID string) (playlist models.Playlist, err error) {
	ctx, span := logging.StartSpan(ctx, "playlists.remove_video")
	defer func() {
		span.RecordError(err)
		span.End()
	}()

	videoID, err = apperr.RequireID("videoId", videoID)
	if err != nil {
		return models.Playlist{}, err
	}
	playlist, err = s.owned(ctx, actorID, playlistID)
	if err != nil {
		return models.Playlist{}, err
	}
	playlistID = playlist.ID
	if !playlist.Contains(videoID) {
		return models.Playlist{}, apperr.Conflict(nil, "video %s is not a member of playlist %s", videoID, playlistID)
	}

	if err := s.Playlists.RemoveVideo(ctx, playlistID, videoID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Playlist{}, apperr.Conflict(err, "video %s is not a member of playlist %s", videoID, playlistID)
		}
		return models.Playlist{}, apperr.Internal(err, "remove playlist video")
	}

	return s.reload(ctx, playlistID)
}

// Update applies patch to the playlist's name and description.
func (s *Service) Update(ctx context.Context, actorID, playlistID string, patch Patch) (playlist models.Playlist, err error) {
	ctx, span := logging.StartSpan(ctx, "playlists.update")
	defer func() {
		span.RecordError(err)
		span.End()
	}()

	if patch.Name == nil && patch.Description == nil {
		return models.Playlist{}, apperr.InvalidArgument("name or description is required")
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return models.Playlist{}, apperr.InvalidArgument("name must not be empty")
	}

	playlist, err = s.owned(ctx, actorID, playlistID)
	if err != nil {
		return models.Playlist{}, err
	}
	playlistID = playlist.ID

	if patch.Name != nil {
		playlist.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		playlist.Description = strings.TrimSpace(*patch.Description)
	}
	playlist.UpdatedAt = s.now()

	if err := s.Playlists.Update(ctx, playlist); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Playlist{}, apperr.NotFound("playlist %s not found", playlistID)
		}
		return models.Playlist{}, apperr.Internal(err, "update playlist")
	}
	return playlist, nil
}

// Delete removes the playlist. The videos it referenced are untouched.
func (s *Service) Delete(ctx context.Context, actorID, playlistID string) (err error) {
	ctx, span := logging.StartSpan(ctx, "playlists.delete")
	defer func() {
		span.RecordError(err)
		span.End()
	}()

	playlist, err := s.owned(ctx, actorID, playlistID)
	if err != nil {
		return err
	}
	playlistID = playlist.ID
	if err := s.Playlists.Delete(ctx, playlistID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperr.NotFound("playlist %s not found", playlistID)
		}
		return apperr.Internal(err, "delete playlist")
	}
	return nil
}

// Get returns a playlist by id.
func (s *Service) Get(ctx context.Context, playlistID string) (models.Playlist, error) {
	playlistID, err := apperr.RequireID("playlistId", playlistID)
	if err != nil {
		return models.Playlist{}, err
	}
	return s.reload(ctx, playlistID)
}

// ListByOwner returns the playlists of ownerID, newest first.
func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]models.Playlist, error) {
	ownerID, err := apperr.RequireID("userId", ownerID)
	if err != nil {
		return nil, err
	}
	playlists, err := s.Playlists.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperr.Internal(err, "list playlists")
	}
	return playlists, nil
}

// owned loads the playlist and checks that actorID owns it.
func (s *Service) owned(ctx context.Context, actorID, playlistID string) (models.Playlist, error) {
	actorID, err := apperr.RequireID("actorId", actorID)
	if err != nil {
		return models.Playlist{}, err
	}
	playlistID, err = apperr.RequireID("playlistId", playlistID)
	if err != nil {
		return models.Playlist{}, err
	}
	playlist, err := s.reload(ctx, playlistID)
	if err != nil {
		return models.Playlist{}, err
	}
	if playlist.OwnerID != actorID {
		return models.Playlist{}, apperr.PermissionDenied("playlist %s is owned by another user", playlistID)
	}
	return playlist, nil
}

func (s *Service) reload(ctx context.Context, playlistID string) (models.Playlist, error) {
	playlist, err := s.Playlists.FindByID(ctx, playlistID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Playlist{}, apperr.NotFound("playlist %s not found", playlistID)
		}
		return models.Playlist{}, apperr.Internal(err, "find playlist")
	}
	return playlist, nil
}
