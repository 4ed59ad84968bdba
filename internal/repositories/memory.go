package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vidtube/backend/internal/models"
)

// MemoryStore keeps every table in process memory behind one mutex. It
// enforces the same keys and cascades as the SQL schema and is used for tests
// and local development.
type MemoryStore struct {
	mu            sync.RWMutex
	users         map[string]models.User
	videos        map[string]models.Video
	comments      map[string]models.Comment
	tweets        map[string]models.Tweet
	playlists     map[string]models.Playlist
	subscriptions map[string]models.Subscription
	likes         map[string]models.Like
	history       map[string][]string
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:         make(map[string]models.User),
		videos:        make(map[string]models.Video),
		comments:      make(map[string]models.Comment),
		tweets:        make(map[string]models.Tweet),
		playlists:     make(map[string]models.Playlist),
		subscriptions: make(map[string]models.Subscription),
		likes:         make(map[string]models.Like),
		history:       make(map[string][]string),
	}
}

// Users returns the user repository view of the store.
func (s *MemoryStore) Users() *MemoryUserRepository { return &MemoryUserRepository{s} }

// Videos returns the video repository view of the store.
func (s *MemoryStore) Videos() *MemoryVideoRepository { return &MemoryVideoRepository{s} }

// Subscriptions returns the subscription repository view of the store.
func (s *MemoryStore) Subscriptions() *MemorySubscriptionRepository {
	return &MemorySubscriptionRepository{s}
}

// Likes returns the like repository view of the store.
func (s *MemoryStore) Likes() *MemoryLikeRepository { return &MemoryLikeRepository{s} }

// Playlists returns the playlist repository view of the store.
func (s *MemoryStore) Playlists() *MemoryPlaylistRepository { return &MemoryPlaylistRepository{s} }

// History returns the watch history repository view of the store.
func (s *MemoryStore) History() *MemoryHistoryRepository { return &MemoryHistoryRepository{s} }

// Comments returns the comment repository view of the store.
func (s *MemoryStore) Comments() *MemoryCommentRepository { return &MemoryCommentRepository{s} }

// Tweets returns the tweet repository view of the store.
func (s *MemoryStore) Tweets() *MemoryTweetRepository { return &MemoryTweetRepository{s} }

// deleteLikesLocked removes every like of kind pointing at targetID. Callers hold mu.
func (s *MemoryStore) deleteLikesLocked(kind models.LikeKind, targetID string) {
	for id, like := range s.likes {
		if like.Kind == kind && like.TargetID == targetID {
			delete(s.likes, id)
		}
	}
}

func (s *MemoryStore) summaryLocked(userID string) models.OwnerSummary {
	u := s.users[userID]
	return models.OwnerSummary{Username: u.Username, AvatarRef: u.AvatarRef}
}

func (s *MemoryStore) videoSummaryLocked(v models.Video) models.VideoSummary {
	return models.VideoSummary{
		ID:              v.ID,
		Title:           v.Title,
		Description:     v.Description,
		MediaRef:        v.MediaRef,
		ThumbnailRef:    v.ThumbnailRef,
		DurationSeconds: v.DurationSeconds,
		ViewCount:       v.ViewCount,
		IsPublished:     v.IsPublished,
		CreatedAt:       v.CreatedAt,
		Owner:           s.summaryLocked(v.OwnerID),
	}
}

// newestFirst orders by timestamp descending, then id ascending.
func newestFirst(ai, bi time.Time, aID, bID string) bool {
	if !ai.Equal(bi) {
		return ai.After(bi)
	}
	return aID < bID
}

// MemoryUserRepository implements UserRepository on a MemoryStore.
type MemoryUserRepository struct{ s *MemoryStore }

func (r *MemoryUserRepository) Create(_ context.Context, user models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user.Username = strings.ToLower(user.Username)
	if _, ok := r.s.users[user.ID]; ok {
		return ErrConflict
	}
	for _, existing := range r.s.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return ErrConflict
		}
	}
	r.s.users[user.ID] = user
	return nil
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id string) (models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	user, ok := r.s.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return user, nil
}

func (r *MemoryUserRepository) FindByUsername(_ context.Context, username string) (models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	username = strings.ToLower(username)
	for _, user := range r.s.users {
		if user.Username == username {
			return user, nil
		}
	}
	return models.User{}, ErrNotFound
}

func (r *MemoryUserRepository) FindSummaries(_ context.Context, ids []string) (map[string]models.OwnerSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make(map[string]models.OwnerSummary, len(ids))
	for _, id := range ids {
		if user, ok := r.s.users[id]; ok {
			out[id] = user.Summary()
		}
	}
	return out, nil
}

func (r *MemoryUserRepository) Update(_ context.Context, user models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.users[user.ID]
	if !ok {
		return ErrNotFound
	}
	user.Username = strings.ToLower(user.Username)
	for id, other := range r.s.users {
		if id != user.ID && (other.Username == user.Username || other.Email == user.Email) {
			return ErrConflict
		}
	}
	user.CreatedAt = existing.CreatedAt
	r.s.users[user.ID] = user
	return nil
}

// MemoryVideoRepository implements VideoRepository on a MemoryStore.
type MemoryVideoRepository struct{ s *MemoryStore }

func (r *MemoryVideoRepository) Create(_ context.Context, video models.Video) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.videos[video.ID]; ok {
		return ErrConflict
	}
	if _, ok := r.s.users[video.OwnerID]; !ok {
		return ErrNotFound
	}
	r.s.videos[video.ID] = video
	return nil
}

func (r *MemoryVideoRepository) FindByID(_ context.Context, id string) (models.Video, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	video, ok := r.s.videos[id]
	if !ok {
		return models.Video{}, ErrNotFound
	}
	return video, nil
}

func (r *MemoryVideoRepository) FindByIDs(_ context.Context, ids []string) (map[string]models.Video, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make(map[string]models.Video, len(ids))
	for _, id := range ids {
		if video, ok := r.s.videos[id]; ok {
			out[id] = video
		}
	}
	return out, nil
}

func (r *MemoryVideoRepository) ListByOwner(_ context.Context, ownerID string) ([]models.Video, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var videos []models.Video
	for _, video := range r.s.videos {
		if video.OwnerID == ownerID {
			videos = append(videos, video)
		}
	}
	sort.Slice(videos, func(i, j int) bool {
		return newestFirst(videos[i].CreatedAt, videos[j].CreatedAt, videos[i].ID, videos[j].ID)
	})
	return videos, nil
}

func matchesFilter(video models.Video, filter VideoFilter) bool {
	if filter.OwnerID != "" && video.OwnerID != filter.OwnerID {
		return false
	}
	if filter.Text == "" {
		return true
	}
	needle := strings.ToLower(filter.Text)
	return strings.Contains(strings.ToLower(video.Title), needle) ||
		strings.Contains(strings.ToLower(video.Description), needle)
}

func (r *MemoryVideoRepository) Search(_ context.Context, query VideoQuery) ([]models.VideoSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var matched []models.Video
	for _, video := range r.s.videos {
		if matchesFilter(video, query.Filter) {
			matched = append(matched, video)
		}
	}

	var cmp func(a, b models.Video) int
	switch query.SortBy {
	case SortByCreatedAt:
		cmp = func(a, b models.Video) int { return a.CreatedAt.Compare(b.CreatedAt) }
	case SortByViews:
		cmp = func(a, b models.Video) int {
			switch {
			case a.ViewCount < b.ViewCount:
				return -1
			case a.ViewCount > b.ViewCount:
				return 1
			}
			return 0
		}
	default:
		return nil, ErrUnsupportedSort
	}

	sort.Slice(matched, func(i, j int) bool {
		c := cmp(matched[i], matched[j])
		if query.Descending {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
		return matched[i].ID < matched[j].ID
	})

	items := []models.VideoSummary{}
	for i := query.Offset; i < len(matched) && len(items) < query.Limit; i++ {
		items = append(items, r.s.videoSummaryLocked(matched[i]))
	}
	return items, nil
}

func (r *MemoryVideoRepository) Count(_ context.Context, filter VideoFilter) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var total int64
	for _, video := range r.s.videos {
		if matchesFilter(video, filter) {
			total++
		}
	}
	return total, nil
}

func (r *MemoryVideoRepository) Update(_ context.Context, video models.Video) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.videos[video.ID]
	if !ok {
		return ErrNotFound
	}
	existing.Title = video.Title
	existing.Description = video.Description
	existing.ThumbnailRef = video.ThumbnailRef
	existing.IsPublished = video.IsPublished
	existing.UpdatedAt = video.UpdatedAt
	r.s.videos[video.ID] = existing
	return nil
}

func (r *MemoryVideoRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.videos[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.videos, id)
	r.s.deleteLikesLocked(models.LikeKindVideo, id)

	for commentID, comment := range r.s.comments {
		if comment.VideoID == id {
			r.s.deleteLikesLocked(models.LikeKindComment, commentID)
			delete(r.s.comments, commentID)
		}
	}
	for playlistID, playlist := range r.s.playlists {
		if idx := playlist.IndexOf(id); idx >= 0 {
			playlist.VideoIDs = removeAt(playlist.VideoIDs, idx)
			r.s.playlists[playlistID] = playlist
		}
	}
	for userID, entries := range r.s.history {
		kept := entries[:0:0]
		for _, videoID := range entries {
			if videoID != id {
				kept = append(kept, videoID)
			}
		}
		r.s.history[userID] = kept
	}
	return nil
}

func removeAt(ids []string, idx int) []string {
	out := make([]string, 0, len(ids)-1)
	out = append(out, ids[:idx]...)
	return append(out, ids[idx+1:]...)
}

// MemorySubscriptionRepository implements SubscriptionRepository on a MemoryStore.
type MemorySubscriptionRepository struct{ s *MemoryStore }

func (r *MemorySubscriptionRepository) Create(_ context.Context, sub models.Subscription) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[sub.SubscriberID]; !ok {
		return ErrNotFound
	}
	if _, ok := r.s.users[sub.ChannelID]; !ok {
		return ErrNotFound
	}
	if _, ok := r.s.subscriptions[sub.ID]; ok {
		return ErrConflict
	}
	for _, existing := range r.s.subscriptions {
		if existing.SubscriberID == sub.SubscriberID && existing.ChannelID == sub.ChannelID {
			return ErrConflict
		}
	}
	r.s.subscriptions[sub.ID] = sub
	return nil
}

func (r *MemorySubscriptionRepository) Find(_ context.Context, subscriberID, channelID string) (models.Subscription, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, sub := range r.s.subscriptions {
		if sub.SubscriberID == subscriberID && sub.ChannelID == channelID {
			return sub, nil
		}
	}
	return models.Subscription{}, ErrNotFound
}

func (r *MemorySubscriptionRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.subscriptions[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.subscriptions, id)
	return nil
}

func (r *MemorySubscriptionRepository) Counts(_ context.Context, channelID, viewerID string) (models.SubscriptionCounts, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var counts models.SubscriptionCounts
	for _, sub := range r.s.subscriptions {
		if sub.ChannelID == channelID {
			counts.Subscribers++
			if viewerID != "" && sub.SubscriberID == viewerID {
				counts.IsSubscribed = true
			}
		}
		if sub.SubscriberID == channelID {
			counts.SubscribedTo++
		}
	}
	return counts, nil
}

func (r *MemorySubscriptionRepository) ListSubscribers(_ context.Context, channelID string) ([]models.OwnerSummary, error) {
	return r.list(func(sub models.Subscription) (string, bool) {
		return sub.SubscriberID, sub.ChannelID == channelID
	}), nil
}

func (r *MemorySubscriptionRepository) ListChannels(_ context.Context, subscriberID string) ([]models.OwnerSummary, error) {
	return r.list(func(sub models.Subscription) (string, bool) {
		return sub.ChannelID, sub.SubscriberID == subscriberID
	}), nil
}

func (r *MemorySubscriptionRepository) list(pick func(models.Subscription) (string, bool)) []models.OwnerSummary {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var subs []models.Subscription
	for _, sub := range r.s.subscriptions {
		if _, ok := pick(sub); ok {
			subs = append(subs, sub)
		}
	}
	sort.Slice(subs, func(i, j int) bool {
		return newestFirst(subs[i].CreatedAt, subs[j].CreatedAt, subs[i].ID, subs[j].ID)
	})

	users := []models.OwnerSummary{}
	for _, sub := range subs {
		userID, _ := pick(sub)
		if user, ok := r.s.users[userID]; ok {
			users = append(users, user.Summary())
		}
	}
	return users
}

// MemoryLikeRepository implements LikeRepository on a MemoryStore.
type MemoryLikeRepository struct{ s *MemoryStore }

func (r *MemoryLikeRepository) Create(_ context.Context, like models.Like) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[like.ActorID]; !ok {
		return ErrNotFound
	}
	if _, ok := r.s.likes[like.ID]; ok {
		return ErrConflict
	}
	for _, existing := range r.s.likes {
		if existing.ActorID == like.ActorID && existing.Kind == like.Kind && existing.TargetID == like.TargetID {
			return ErrConflict
		}
	}
	r.s.likes[like.ID] = like
	return nil
}

func (r *MemoryLikeRepository) Find(_ context.Context, actorID string, kind models.LikeKind, targetID string) (models.Like, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, like := range r.s.likes {
		if like.ActorID == actorID && like.Kind == kind && like.TargetID == targetID {
			return like, nil
		}
	}
	return models.Like{}, ErrNotFound
}

func (r *MemoryLikeRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.likes[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.likes, id)
	return nil
}

func (r *MemoryLikeRepository) CountForTargets(_ context.Context, kind models.LikeKind, targetIDs []string) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	targets := make(map[string]struct{}, len(targetIDs))
	for _, id := range targetIDs {
		targets[id] = struct{}{}
	}

	var total int64
	for _, like := range r.s.likes {
		if like.Kind != kind {
			continue
		}
		if _, ok := targets[like.TargetID]; ok {
			total++
		}
	}
	return total, nil
}

func (r *MemoryLikeRepository) ListLikedVideos(_ context.Context, actorID string) ([]models.VideoSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var likes []models.Like
	for _, like := range r.s.likes {
		if like.ActorID == actorID && like.Kind == models.LikeKindVideo {
			likes = append(likes, like)
		}
	}
	sort.Slice(likes, func(i, j int) bool {
		return newestFirst(likes[i].CreatedAt, likes[j].CreatedAt, likes[i].ID, likes[j].ID)
	})

	videos := []models.VideoSummary{}
	for _, like := range likes {
		if video, ok := r.s.videos[like.TargetID]; ok {
			videos = append(videos, r.s.videoSummaryLocked(video))
		}
	}
	return videos, nil
}

// MemoryPlaylistRepository implements PlaylistRepository on a MemoryStore.
type MemoryPlaylistRepository struct{ s *MemoryStore }

func clonePlaylist(p models.Playlist) models.Playlist {
	p.VideoIDs = append([]string{}, p.VideoIDs...)
	return p
}

func (r *MemoryPlaylistRepository) Create(_ context.Context, playlist models.Playlist) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.playlists[playlist.ID]; ok {
		return ErrConflict
	}
	if _, ok := r.s.users[playlist.OwnerID]; !ok {
		return ErrNotFound
	}
	seen := make(map[string]struct{}, len(playlist.VideoIDs))
	for _, id := range playlist.VideoIDs {
		if _, ok := r.s.videos[id]; !ok {
			return ErrNotFound
		}
		if _, dup := seen[id]; dup {
			return ErrConflict
		}
		seen[id] = struct{}{}
	}
	r.s.playlists[playlist.ID] = clonePlaylist(playlist)
	return nil
}

func (r *MemoryPlaylistRepository) FindByID(_ context.Context, id string) (models.Playlist, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	playlist, ok := r.s.playlists[id]
	if !ok {
		return models.Playlist{}, ErrNotFound
	}
	return clonePlaylist(playlist), nil
}

func (r *MemoryPlaylistRepository) ListByOwner(_ context.Context, ownerID string) ([]models.Playlist, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	playlists := []models.Playlist{}
	for _, p := range r.s.playlists {
		if p.OwnerID == ownerID {
			playlists = append(playlists, clonePlaylist(p))
		}
	}
	sort.Slice(playlists, func(i, j int) bool {
		return newestFirst(playlists[i].CreatedAt, playlists[j].CreatedAt, playlists[i].ID, playlists[j].ID)
	})
	return playlists, nil
}

func (r *MemoryPlaylistRepository) AddVideo(_ context.Context, playlistID, videoID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	playlist, ok := r.s.playlists[playlistID]
	if !ok {
		return ErrNotFound
	}
	if _, ok := r.s.videos[videoID]; !ok {
		return ErrNotFound
	}
	if playlist.Contains(videoID) {
		return ErrConflict
	}
	playlist.VideoIDs = append(append([]string{}, playlist.VideoIDs...), videoID)
	playlist.UpdatedAt = time.Now().UTC()
	r.s.playlists[playlistID] = playlist
	return nil
}

func (r *MemoryPlaylistRepository) RemoveVideo(_ context.Context, playlistID, videoID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	playlist, ok := r.s.playlists[playlistID]
	if !ok {
		return ErrNotFound
	}
	idx := playlist.IndexOf(videoID)
	if idx < 0 {
		return ErrNotFound
	}
	playlist.VideoIDs = removeAt(playlist.VideoIDs, idx)
	playlist.UpdatedAt = time.Now().UTC()
	r.s.playlists[playlistID] = playlist
	return nil
}

func (r *MemoryPlaylistRepository) Update(_ context.Context, playlist models.Playlist) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.playlists[playlist.ID]
	if !ok {
		return ErrNotFound
	}
	existing.Name = playlist.Name
	existing.Description = playlist.Description
	existing.UpdatedAt = playlist.UpdatedAt
	r.s.playlists[playlist.ID] = existing
	return nil
}

func (r *MemoryPlaylistRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.playlists[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.playlists, id)
	return nil
}

// MemoryHistoryRepository implements HistoryRepository on a MemoryStore.
type MemoryHistoryRepository struct{ s *MemoryStore }

func (r *MemoryHistoryRepository) List(_ context.Context, userID string) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return append([]string{}, r.s.history[userID]...), nil
}

func (r *MemoryHistoryRepository) RecordView(_ context.Context, userID, videoID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[userID]; !ok {
		return ErrNotFound
	}
	video, ok := r.s.videos[videoID]
	if !ok {
		return ErrNotFound
	}
	video.ViewCount++
	r.s.videos[videoID] = video
	r.s.history[userID] = append(r.s.history[userID], videoID)
	return nil
}

// Append adds entries to a user's history without touching view counts. It
// does not check that the videos exist, so tests can model dangling entries.
func (r *MemoryHistoryRepository) Append(userID string, videoIDs ...string) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.history[userID] = append(r.s.history[userID], videoIDs...)
}

// MemoryCommentRepository implements CommentRepository on a MemoryStore.
type MemoryCommentRepository struct{ s *MemoryStore }

func (r *MemoryCommentRepository) Create(_ context.Context, comment models.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.comments[comment.ID]; ok {
		return ErrConflict
	}
	if _, ok := r.s.videos[comment.VideoID]; !ok {
		return ErrNotFound
	}
	if _, ok := r.s.users[comment.OwnerID]; !ok {
		return ErrNotFound
	}
	r.s.comments[comment.ID] = comment
	return nil
}

func (r *MemoryCommentRepository) FindByID(_ context.Context, id string) (models.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	comment, ok := r.s.comments[id]
	if !ok {
		return models.Comment{}, ErrNotFound
	}
	return comment, nil
}

func (r *MemoryCommentRepository) ListByVideo(_ context.Context, videoID string, offset, limit int) ([]models.CommentView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var matched []models.Comment
	for _, comment := range r.s.comments {
		if comment.VideoID == videoID {
			matched = append(matched, comment)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return newestFirst(matched[i].CreatedAt, matched[j].CreatedAt, matched[i].ID, matched[j].ID)
	})

	views := []models.CommentView{}
	for i := offset; i < len(matched) && len(views) < limit; i++ {
		views = append(views, models.CommentView{Comment: matched[i], Owner: r.s.summaryLocked(matched[i].OwnerID)})
	}
	return views, nil
}

func (r *MemoryCommentRepository) Update(_ context.Context, comment models.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.comments[comment.ID]
	if !ok {
		return ErrNotFound
	}
	existing.Content = comment.Content
	existing.UpdatedAt = comment.UpdatedAt
	r.s.comments[comment.ID] = existing
	return nil
}

func (r *MemoryCommentRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.comments[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.comments, id)
	r.s.deleteLikesLocked(models.LikeKindComment, id)
	return nil
}

// MemoryTweetRepository implements TweetRepository on a MemoryStore.
type MemoryTweetRepository struct{ s *MemoryStore }

func (r *MemoryTweetRepository) Create(_ context.Context, tweet models.Tweet) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tweets[tweet.ID]; ok {
		return ErrConflict
	}
	if _, ok := r.s.users[tweet.OwnerID]; !ok {
		return ErrNotFound
	}
	r.s.tweets[tweet.ID] = tweet
	return nil
}

func (r *MemoryTweetRepository) FindByID(_ context.Context, id string) (models.Tweet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	tweet, ok := r.s.tweets[id]
	if !ok {
		return models.Tweet{}, ErrNotFound
	}
	return tweet, nil
}

func (r *MemoryTweetRepository) ListByOwner(_ context.Context, ownerID string) ([]models.Tweet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	tweets := []models.Tweet{}
	for _, tweet := range r.s.tweets {
		if tweet.OwnerID == ownerID {
			tweets = append(tweets, tweet)
		}
	}
	sort.Slice(tweets, func(i, j int) bool {
		return newestFirst(tweets[i].CreatedAt, tweets[j].CreatedAt, tweets[i].ID, tweets[j].ID)
	})
	return tweets, nil
}

func (r *MemoryTweetRepository) Update(_ context.Context, tweet models.Tweet) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.tweets[tweet.ID]
	if !ok {
		return ErrNotFound
	}
	existing.Content = tweet.Content
	existing.UpdatedAt = tweet.UpdatedAt
	r.s.tweets[tweet.ID] = existing
	return nil
}

func (r *MemoryTweetRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tweets[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.tweets, id)
	r.s.deleteLikesLocked(models.LikeKindTweet, id)
	return nil
}

var (
	_ UserRepository         = (*MemoryUserRepository)(nil)
	_ VideoRepository        = (*MemoryVideoRepository)(nil)
	_ SubscriptionRepository = (*MemorySubscriptionRepository)(nil)
	_ LikeRepository         = (*MemoryLikeRepository)(nil)
	_ PlaylistRepository     = (*MemoryPlaylistRepository)(nil)
	_ HistoryRepository      = (*MemoryHistoryRepository)(nil)
	_ CommentRepository      = (*MemoryCommentRepository)(nil)
	_ TweetRepository        = (*MemoryTweetRepository)(nil)
)
