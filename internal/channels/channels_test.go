package channels

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

func newTestService(store *repositories.MemoryStore, ttl time.Duration) *Service {
	return NewService(store.Users(), store.Videos(), store.Likes(), store.Subscriptions(), ttl)
}

func seedUser(t *testing.T, store *repositories.MemoryStore, username string) models.User {
	t.Helper()
	user := models.User{ID: uuid.NewString(), Username: username, DisplayName: username + " display", Email: username + "@example.com"}
	if err := store.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func subscribe(t *testing.T, store *repositories.MemoryStore, subscriberID, channelID string) {
	t.Helper()
	sub := models.Subscription{ID: uuid.NewString(), SubscriberID: subscriberID, ChannelID: channelID, CreatedAt: time.Now().UTC()}
	if err := store.Subscriptions().Create(context.Background(), sub); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
}

func TestChannelProfileCounts(t *testing.T) {
	store := repositories.NewMemoryStore()
	svc := newTestService(store, 0)
	ctx := context.Background()

	a := seedUser(t, store, "alpha")
	b := seedUser(t, store, "beta")

	profile, err := svc.ChannelProfile(ctx, "alpha", "")
	if err != nil {
		t.Fatalf("profile before subscribing: %v", err)
	}
	if profile.SubscribersCount != 0 || profile.ChannelsSubscribedToCount != 0 || profile.IsSubscribed {
		t.Fatalf("expected zero counts, got %+v", profile)
	}

	subscribe(t, store, b.ID, a.ID)

	profile, err = svc.ChannelProfile(ctx, "  ALPHA ", b.ID)
	if err != nil {
		t.Fatalf("profile of a viewed by b: %v", err)
	}
	if profile.ID != a.ID || profile.SubscribersCount != 1 || profile.ChannelsSubscribedToCount != 0 || !profile.IsSubscribed {
		t.Fatalf("unexpected profile of a: %+v", profile)
	}
	if profile.DisplayName != "alpha display" || profile.Email != "alpha@example.com" {
		t.Fatalf("expected user fields to be copied, got %+v", profile)
	}

	profile, err = svc.ChannelProfile(ctx, "beta", a.ID)
	if err != nil {
		t.Fatalf("profile of b viewed by a: %v", err)
	}
	if profile.SubscribersCount != 0 || profile.ChannelsSubscribedToCount != 1 || profile.IsSubscribed {
		t.Fatalf("unexpected profile of b: %+v", profile)
	}

	profile, err = svc.ChannelProfile(ctx, "alpha", "")
	if err != nil {
		t.Fatalf("anonymous profile: %v", err)
	}
	if profile.IsSubscribed {
		t.Fatal("expected anonymous viewer not to be subscribed")
	}
}

func TestChannelProfileErrors(t *testing.T) {
	store := repositories.NewMemoryStore()
	svc := newTestService(store, 0)
	seedUser(t, store, "alpha")

	cases := []struct {
		name     string
		username string
		viewerID string
		want     error
	}{
		{"blankUsername", "   ", "", apperr.ErrInvalidArgument},
		{"unknownUsername", "gamma", "", apperr.ErrNotFound},
		{"malformedViewer", "alpha", "viewer", apperr.ErrInvalidArgument},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ChannelProfile(context.Background(), tc.username, tc.viewerID)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestChannelProfileCachesUserUntilInvalidated(t *testing.T) {
	store := repositories.NewMemoryStore()
	svc := newTestService(store, time.Minute)
	ctx := context.Background()
	a := seedUser(t, store, "alpha")
	b := seedUser(t, store, "beta")

	if _, err := svc.ChannelProfile(ctx, "alpha", ""); err != nil {
		t.Fatalf("warm cache: %v", err)
	}

	renamed := a
	renamed.DisplayName = "Alpha Prime"
	if err := store.Users().Update(ctx, renamed); err != nil {
		t.Fatalf("update user: %v", err)
	}
	subscribe(t, store, b.ID, a.ID)

	profile, err := svc.ChannelProfile(ctx, "alpha", "")
	if err != nil {
		t.Fatalf("cached profile: %v", err)
	}
	if profile.DisplayName != "alpha display" {
		t.Fatalf("expected cached display name, got %q", profile.DisplayName)
	}
	if profile.SubscribersCount != 1 {
		t.Fatalf("expected counts to bypass the cache, got %d", profile.SubscribersCount)
	}

	svc.Invalidate("Alpha")

	profile, err = svc.ChannelProfile(ctx, "alpha", "")
	if err != nil {
		t.Fatalf("profile after invalidate: %v", err)
	}
	if profile.DisplayName != "Alpha Prime" {
		t.Fatalf("expected fresh display name, got %q", profile.DisplayName)
	}
}

func TestChannelStats(t *testing.T) {
	store := repositories.NewMemoryStore()
	svc := newTestService(store, 0)
	ctx := context.Background()

	owner := seedUser(t, store, "owner")
	fan := seedUser(t, store, "fan")
	other := seedUser(t, store, "other")

	stats, err := svc.ChannelStats(ctx, owner.ID)
	if err != nil {
		t.Fatalf("stats without videos: %v", err)
	}
	if stats.TotalVideos != 0 || stats.TotalViews != 0 || stats.TotalLikes != 0 {
		t.Fatalf("expected zero stats, got %+v", stats)
	}

	var ownerVideos []models.Video
	for i, views := range []int64{10, 32} {
		video := models.Video{ID: uuid.NewString(), OwnerID: owner.ID, Title: "v", ViewCount: views, CreatedAt: time.Now().UTC().Add(time.Duration(i) * time.Minute)}
		if err := store.Videos().Create(ctx, video); err != nil {
			t.Fatalf("create video: %v", err)
		}
		ownerVideos = append(ownerVideos, video)
	}
	foreign := models.Video{ID: uuid.NewString(), OwnerID: other.ID, Title: "x", ViewCount: 1000}
	if err := store.Videos().Create(ctx, foreign); err != nil {
		t.Fatalf("create foreign video: %v", err)
	}

	likes := []models.Like{
		{ID: uuid.NewString(), ActorID: fan.ID, Kind: models.LikeKindVideo, TargetID: ownerVideos[0].ID},
		{ID: uuid.NewString(), ActorID: other.ID, Kind: models.LikeKindVideo, TargetID: ownerVideos[0].ID},
		{ID: uuid.NewString(), ActorID: fan.ID, Kind: models.LikeKindVideo, TargetID: ownerVideos[1].ID},
		{ID: uuid.NewString(), ActorID: fan.ID, Kind: models.LikeKindVideo, TargetID: foreign.ID},
	}
	for _, like := range likes {
		if err := store.Likes().Create(ctx, like); err != nil {
			t.Fatalf("create like: %v", err)
		}
	}

	stats, err = svc.ChannelStats(ctx, owner.ID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.ChannelID != owner.ID || stats.TotalVideos != 2 || stats.TotalViews != 42 || stats.TotalLikes != 3 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	if _, err := svc.ChannelStats(ctx, uuid.NewString()); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found for unknown channel, got %v", err)
	}
}
