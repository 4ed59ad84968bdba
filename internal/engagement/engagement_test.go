package engagement

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

func newTestService(t *testing.T) (*Service, *repositories.MemoryStore) {
	t.Helper()
	store := repositories.NewMemoryStore()
	now := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	var mu sync.Mutex
	return &Service{
		Users:         store.Users(),
		Videos:        store.Videos(),
		Comments:      store.Comments(),
		Tweets:        store.Tweets(),
		Likes:         store.Likes(),
		Subscriptions: store.Subscriptions(),
		NowFunc: func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			tick++
			return now.Add(time.Duration(tick) * time.Second)
		},
	}, store
}

func seedUser(t *testing.T, store *repositories.MemoryStore, username string) models.User {
	t.Helper()
	user := models.User{ID: uuid.NewString(), Username: username, Email: username + "@example.com"}
	if err := store.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedVideo(t *testing.T, store *repositories.MemoryStore, ownerID, title string) models.Video {
	t.Helper()
	video := models.Video{ID: uuid.NewString(), OwnerID: ownerID, Title: title, MediaRef: "media/" + title, CreatedAt: time.Now().UTC()}
	if err := store.Videos().Create(context.Background(), video); err != nil {
		t.Fatalf("seed video: %v", err)
	}
	return video
}

func TestToggleLikeIsAnInvolution(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	fan := seedUser(t, store, "fan")
	video := seedVideo(t, store, fan.ID, "clip")

	first, err := svc.ToggleLike(ctx, fan.ID, models.LikeKindVideo, video.ID)
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if !first.Created() || first.Edge.TargetID != video.ID || first.Edge.Kind != models.LikeKindVideo {
		t.Fatalf("expected like to be created, got %+v", first)
	}

	second, err := svc.ToggleLike(ctx, fan.ID, models.LikeKindVideo, video.ID)
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if second.Created() || second.RemovedID != first.Edge.ID {
		t.Fatalf("expected like %s to be removed, got %+v", first.Edge.ID, second)
	}

	total, _ := store.Likes().CountForTargets(ctx, models.LikeKindVideo, []string{video.ID})
	if total != 0 {
		t.Fatalf("expected no likes after two toggles, got %d", total)
	}
}

func TestToggleLikeCanonicalizesIDs(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	fan := seedUser(t, store, "fan")
	video := seedVideo(t, store, fan.ID, "clip")

	first, err := svc.ToggleLike(ctx, strings.ToUpper(fan.ID), models.LikeKindVideo, strings.ToUpper(video.ID))
	if err != nil {
		t.Fatalf("toggle with uppercase ids: %v", err)
	}
	if !first.Created() || first.Edge.TargetID != video.ID || first.Edge.ActorID != fan.ID {
		t.Fatalf("expected like with canonical ids, got %+v", first)
	}

	second, err := svc.ToggleLike(ctx, fan.ID, models.LikeKindVideo, "urn:uuid:"+video.ID)
	if err != nil {
		t.Fatalf("toggle with urn id: %v", err)
	}
	if second.Created() || second.RemovedID != first.Edge.ID {
		t.Fatalf("expected the same like to be removed, got %+v", second)
	}
}

func TestToggleLikeKinds(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	user := seedUser(t, store, "writer")
	video := seedVideo(t, store, user.ID, "clip")

	comment := models.Comment{ID: uuid.NewString(), VideoID: video.ID, OwnerID: user.ID, Content: "first"}
	if err := store.Comments().Create(ctx, comment); err != nil {
		t.Fatalf("seed comment: %v", err)
	}
	tweet := models.Tweet{ID: uuid.NewString(), OwnerID: user.ID, Content: "hello"}
	if err := store.Tweets().Create(ctx, tweet); err != nil {
		t.Fatalf("seed tweet: %v", err)
	}

	cases := []struct {
		name     string
		kind     models.LikeKind
		targetID string
		wantKind error
	}{
		{"comment", models.LikeKindComment, comment.ID, nil},
		{"tweet", models.LikeKindTweet, tweet.ID, nil},
		{"upperCaseKind", "TWEET", uuid.NewString(), apperr.ErrNotFound},
		{"missingComment", models.LikeKindComment, uuid.NewString(), apperr.ErrNotFound},
		{"videoIdAsTweet", models.LikeKindTweet, video.ID, apperr.ErrNotFound},
		{"unknownKind", "playlist", video.ID, apperr.ErrInvalidArgument},
		{"malformedTarget", models.LikeKindVideo, "abc", apperr.ErrInvalidArgument},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := svc.ToggleLike(ctx, user.ID, tc.kind, tc.targetID)
			if tc.wantKind != nil {
				if !errors.Is(err, tc.wantKind) {
					t.Fatalf("expected %v, got %v", tc.wantKind, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !result.Created() {
				t.Fatalf("expected like to be created")
			}
		})
	}
}

func TestToggleLikeUnknownActor(t *testing.T) {
	svc, store := newTestService(t)
	owner := seedUser(t, store, "owner")
	video := seedVideo(t, store, owner.ID, "clip")
	ghost := uuid.NewString()

	_, err := svc.ToggleLike(context.Background(), ghost, models.LikeKindVideo, video.ID)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if got := err.Error(); got != "user "+ghost+" not found" {
		t.Fatalf("expected message to name the missing id, got %q", got)
	}
}

func TestToggleSubscription(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	a := seedUser(t, store, "a")
	b := seedUser(t, store, "b")

	created, err := svc.ToggleSubscription(ctx, b.ID, a.ID)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if !created.Created() || created.Edge.SubscriberID != b.ID || created.Edge.ChannelID != a.ID {
		t.Fatalf("unexpected subscription: %+v", created)
	}

	subs, err := svc.ListSubscribers(ctx, a.ID)
	if err != nil {
		t.Fatalf("list subscribers: %v", err)
	}
	if len(subs) != 1 || subs[0].Username != "b" {
		t.Fatalf("unexpected subscribers: %+v", subs)
	}

	channels, err := svc.ListSubscriptions(ctx, b.ID)
	if err != nil {
		t.Fatalf("list subscriptions: %v", err)
	}
	if len(channels) != 1 || channels[0].ID != a.ID {
		t.Fatalf("unexpected channels: %+v", channels)
	}

	removed, err := svc.ToggleSubscription(ctx, b.ID, a.ID)
	if err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	if removed.RemovedID != created.Edge.ID {
		t.Fatalf("expected %s removed, got %+v", created.Edge.ID, removed)
	}

	subs, err = svc.ListSubscribers(ctx, a.ID)
	if err != nil {
		t.Fatalf("list subscribers after unsubscribe: %v", err)
	}
	if len(subs) != 0 {
		t.Fatalf("expected no subscribers, got %+v", subs)
	}
}

func TestToggleSubscriptionFailures(t *testing.T) {
	svc, store := newTestService(t)
	a := seedUser(t, store, "a")

	cases := []struct {
		name         string
		subscriberID string
		channelID    string
		want         error
	}{
		{"self", a.ID, a.ID, apperr.ErrInvalidArgument},
		{"missingChannel", a.ID, uuid.NewString(), apperr.ErrNotFound},
		{"missingSubscriber", uuid.NewString(), a.ID, apperr.ErrNotFound},
		{"emptyChannel", a.ID, "", apperr.ErrInvalidArgument},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ToggleSubscription(context.Background(), tc.subscriberID, tc.channelID)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestConcurrentTogglesKeepAtMostOneEdge(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	fan := seedUser(t, store, "fan")
	video := seedVideo(t, store, fan.ID, "clip")

	const workers = 32
	var (
		wg               sync.WaitGroup
		mu               sync.Mutex
		created, removed int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := svc.ToggleLike(ctx, fan.ID, models.LikeKindVideo, video.ID)
			if err != nil {
				if !errors.Is(err, apperr.ErrConflict) {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if result.Created() {
				created++
			} else {
				removed++
			}
		}()
	}
	wg.Wait()

	total, err := store.Likes().CountForTargets(ctx, models.LikeKindVideo, []string{video.ID})
	if err != nil {
		t.Fatalf("count likes: %v", err)
	}
	if total > 1 {
		t.Fatalf("expected at most one like edge, got %d", total)
	}
	if int64(created-removed) != total {
		t.Fatalf("expected %d created minus %d removed to equal %d edges", created, removed, total)
	}
}

type conflictingLikes struct {
	repositories.LikeRepository
}

func (conflictingLikes) Find(context.Context, string, models.LikeKind, string) (models.Like, error) {
	return models.Like{}, repositories.ErrNotFound
}

func (conflictingLikes) Create(context.Context, models.Like) error {
	return repositories.ErrConflict
}

func TestToggleLikeSurfacesRaceAsConflict(t *testing.T) {
	svc, store := newTestService(t)
	fan := seedUser(t, store, "fan")
	video := seedVideo(t, store, fan.ID, "clip")
	svc.Likes = conflictingLikes{}

	_, err := svc.ToggleLike(context.Background(), fan.ID, models.LikeKindVideo, video.ID)
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestListLikedVideosNewestFirst(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	fan := seedUser(t, store, "fan")
	older := seedVideo(t, store, fan.ID, "older")
	newer := seedVideo(t, store, fan.ID, "newer")

	for _, id := range []string{older.ID, newer.ID} {
		if _, err := svc.ToggleLike(ctx, fan.ID, models.LikeKindVideo, id); err != nil {
			t.Fatalf("like %s: %v", id, err)
		}
	}

	videos, err := svc.ListLikedVideos(ctx, fan.ID)
	if err != nil {
		t.Fatalf("list liked videos: %v", err)
	}
	if len(videos) != 2 || videos[0].ID != newer.ID || videos[1].ID != older.ID {
		t.Fatalf("unexpected order: %+v", videos)
	}
	if videos[0].Owner.Username != "fan" {
		t.Fatalf("expected owner projection, got %+v", videos[0].Owner)
	}

	empty, err := svc.ListLikedVideos(ctx, uuid.NewString())
	if err != nil {
		t.Fatalf("list for user without likes: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty list, got %+v", empty)
	}
}
