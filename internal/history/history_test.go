package history

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

func seed(t *testing.T) (*repositories.MemoryStore, models.User, []models.Video) {
	t.Helper()
	ctx := context.Background()
	store := repositories.NewMemoryStore()

	viewer := models.User{ID: uuid.NewString(), Username: "viewer", Email: "viewer@example.com"}
	creator := models.User{ID: uuid.NewString(), Username: "creator", Email: "creator@example.com", AvatarRef: "avatars/creator.png"}
	for _, u := range []models.User{viewer, creator} {
		if err := store.Users().Create(ctx, u); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}

	var videos []models.Video
	for _, title := range []string{"x", "y", "z"} {
		v := models.Video{ID: uuid.NewString(), OwnerID: creator.ID, Title: title, CreatedAt: time.Now().UTC()}
		if err := store.Videos().Create(ctx, v); err != nil {
			t.Fatalf("seed video: %v", err)
		}
		videos = append(videos, v)
	}
	return store, viewer, videos
}

func titles(items []models.HydratedVideo) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Title
	}
	return out
}

func TestExpandPreservesOrderAndDuplicates(t *testing.T) {
	store, viewer, videos := seed(t)
	svc := NewService(store.Users(), store.Videos(), store.History())
	ctx := context.Background()

	for _, v := range []models.Video{videos[0], videos[1], videos[0], videos[2]} {
		if err := svc.RecordView(ctx, viewer.ID, v.ID); err != nil {
			t.Fatalf("record view: %v", err)
		}
	}

	items, err := svc.Expand(ctx, viewer.ID)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	got := titles(items)
	want := []string{"x", "y", "x", "z"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if items[0].Owner.Username != "creator" || items[0].Owner.AvatarRef != "avatars/creator.png" {
		t.Fatalf("expected owner projection, got %+v", items[0].Owner)
	}
	if items[0].ViewCount != 2 {
		t.Fatalf("expected x to have 2 views, got %d", items[0].ViewCount)
	}
}

func TestExpandEmptyHistory(t *testing.T) {
	store, viewer, _ := seed(t)
	svc := NewService(store.Users(), store.Videos(), store.History())

	items, err := svc.Expand(context.Background(), viewer.ID)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", items)
	}
}

func TestExpandSkipsMissingVideos(t *testing.T) {
	store, viewer, videos := seed(t)
	svc := NewService(store.Users(), store.Videos(), store.History())

	store.History().Append(viewer.ID, videos[0].ID, uuid.NewString(), videos[1].ID)

	items, err := svc.Expand(context.Background(), viewer.ID)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if got := titles(items); len(got) != 2 || got[0] != "x" || got[1] != "y" {
		t.Fatalf("expected [x y], got %v", got)
	}
}

func TestExpandAfterVideoDeletion(t *testing.T) {
	store, viewer, videos := seed(t)
	svc := NewService(store.Users(), store.Videos(), store.History())
	ctx := context.Background()

	for _, v := range videos {
		if err := svc.RecordView(ctx, viewer.ID, v.ID); err != nil {
			t.Fatalf("record view: %v", err)
		}
	}
	if err := store.Videos().Delete(ctx, videos[1].ID); err != nil {
		t.Fatalf("delete video: %v", err)
	}

	items, err := svc.Expand(ctx, viewer.ID)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if got := titles(items); len(got) != 2 || got[0] != "x" || got[1] != "z" {
		t.Fatalf("expected [x z], got %v", got)
	}
}

func TestHistoryErrors(t *testing.T) {
	store, viewer, videos := seed(t)
	svc := NewService(store.Users(), store.Videos(), store.History())
	ctx := context.Background()

	if _, err := svc.Expand(ctx, uuid.NewString()); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found for unknown user, got %v", err)
	}
	if _, err := svc.Expand(ctx, "nope"); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for malformed id, got %v", err)
	}
	if err := svc.RecordView(ctx, viewer.ID, uuid.NewString()); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found for unknown video, got %v", err)
	}
	if err := svc.RecordView(ctx, uuid.NewString(), videos[0].ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found for unknown user, got %v", err)
	}
}
