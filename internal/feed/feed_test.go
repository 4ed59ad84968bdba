package feed

import (
	"context"
	"errors"
	"math"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

type fixture struct {
	store *repositories.MemoryStore
	owner models.User
	other models.User
	base  time.Time
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := repositories.NewMemoryStore()
	ctx := context.Background()
	f := fixture{
		store: store,
		owner: models.User{ID: uuid.NewString(), Username: "owner", Email: "owner@example.com", AvatarRef: "avatars/owner.png"},
		other: models.User{ID: uuid.NewString(), Username: "other", Email: "other@example.com"},
		base:  time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, u := range []models.User{f.owner, f.other} {
		if err := store.Users().Create(ctx, u); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}
	return f
}

func (f fixture) addVideo(t *testing.T, ownerID, title, description string, views int64, offset time.Duration) models.Video {
	t.Helper()
	video := models.Video{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		ViewCount:   views,
		CreatedAt:   f.base.Add(offset),
	}
	if err := f.store.Videos().Create(context.Background(), video); err != nil {
		t.Fatalf("seed video: %v", err)
	}
	return video
}

func ids(items []models.VideoSummary) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

func TestListVideosPagination(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 25; i++ {
		f.addVideo(t, f.owner.ID, "video", "", int64(i), time.Duration(i)*time.Minute)
	}
	svc := NewService(f.store.Videos(), 0)

	cases := []struct {
		name      string
		page      int
		limit     int
		wantItems int
		wantPages int
	}{
		{"firstPage", 1, 10, 10, 3},
		{"lastPartialPage", 3, 10, 5, 3},
		{"pastTheEnd", 4, 10, 0, 3},
		{"singlePage", 1, 100, 25, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page, err := svc.ListVideos(context.Background(), Query{SortBy: SortCreatedAt, Page: tc.page, Limit: tc.limit})
			if err != nil {
				t.Fatalf("list videos: %v", err)
			}
			if len(page.Items) != tc.wantItems {
				t.Fatalf("expected %d items, got %d", tc.wantItems, len(page.Items))
			}
			if page.Total != 25 || page.TotalPages != tc.wantPages {
				t.Fatalf("expected total 25 over %d pages, got %d over %d", tc.wantPages, page.Total, page.TotalPages)
			}
			if page.Items == nil {
				t.Fatal("expected an empty slice rather than nil")
			}
		})
	}
}

func TestListVideosPagesPartitionResults(t *testing.T) {
	f := newFixture(t)
	same := time.Duration(0)
	for i := 0; i < 7; i++ {
		f.addVideo(t, f.owner.ID, "tie", "", 5, same)
	}
	svc := NewService(f.store.Videos(), 0)

	seen := map[string]bool{}
	var all []string
	for page := 1; page <= 3; page++ {
		result, err := svc.ListVideos(context.Background(), Query{SortBy: SortViews, SortDir: "desc", Page: page, Limit: 3})
		if err != nil {
			t.Fatalf("page %d: %v", page, err)
		}
		for _, id := range ids(result.Items) {
			if seen[id] {
				t.Fatalf("video %s appeared on two pages", id)
			}
			seen[id] = true
			all = append(all, id)
		}
	}
	if len(all) != 7 {
		t.Fatalf("expected 7 videos across pages, got %d", len(all))
	}
	if !sort.StringsAreSorted(all) {
		t.Fatalf("expected equal sort keys to be ordered by id, got %v", all)
	}
}

func TestListVideosSearchAndSort(t *testing.T) {
	f := newFixture(t)
	golang := f.addVideo(t, f.owner.ID, "Learning GoLang", "", 50, time.Hour)
	desc := f.addVideo(t, f.other.ID, "Weekend vlog", "we talk about golang", 10, 2*time.Hour)
	f.addVideo(t, f.owner.ID, "Cooking", "pasta", 99, 3*time.Hour)
	svc := NewService(f.store.Videos(), 0)

	page, err := svc.ListVideos(context.Background(), Query{Text: "GOLANG", SortBy: SortViews, SortDir: "asc", Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if got := ids(page.Items); len(got) != 2 || got[0] != desc.ID || got[1] != golang.ID {
		t.Fatalf("expected [%s %s], got %v", desc.ID, golang.ID, got)
	}
	if page.Total != 2 {
		t.Fatalf("expected total 2, got %d", page.Total)
	}
	if page.Items[1].Owner.Username != "owner" || page.Items[1].Owner.AvatarRef != "avatars/owner.png" {
		t.Fatalf("expected owner projection, got %+v", page.Items[1].Owner)
	}

	page, err = svc.ListVideos(context.Background(), Query{SortBy: SortCreatedAt, Page: 1, Limit: 10, OwnerID: f.owner.ID})
	if err != nil {
		t.Fatalf("owner filter: %v", err)
	}
	if page.Total != 2 || page.Items[0].Title != "Cooking" {
		t.Fatalf("expected owner videos newest first, got %+v", page.Items)
	}

	page, err = svc.ListVideos(context.Background(), Query{Text: "nothing matches", SortBy: SortViews, Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("empty search: %v", err)
	}
	if page.Total != 0 || len(page.Items) != 0 || page.TotalPages != 0 {
		t.Fatalf("expected an empty page, got %+v", page)
	}
}

func TestListVideosLastAddressablePage(t *testing.T) {
	f := newFixture(t)
	f.addVideo(t, f.owner.ID, "only", "", 0, 0)
	svc := NewService(f.store.Videos(), 50)

	page, err := svc.ListVideos(context.Background(), Query{SortBy: SortCreatedAt, Page: math.MaxInt/10 + 1, Limit: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Items) != 0 || page.Total != 1 {
		t.Fatalf("expected an empty page with the full total, got %+v", page)
	}
}

func TestListVideosRejectsInvalidQueries(t *testing.T) {
	f := newFixture(t)
	svc := NewService(f.store.Videos(), 50)

	cases := []struct {
		name  string
		query Query
	}{
		{"missingSortBy", Query{Page: 1, Limit: 10}},
		{"unknownSortBy", Query{SortBy: "title", Page: 1, Limit: 10}},
		{"badSortDir", Query{SortBy: SortViews, SortDir: "sideways", Page: 1, Limit: 10}},
		{"zeroPage", Query{SortBy: SortViews, Page: 0, Limit: 10}},
		{"zeroLimit", Query{SortBy: SortViews, Page: 1, Limit: 0}},
		{"limitAboveMax", Query{SortBy: SortViews, Page: 1, Limit: 51}},
		{"malformedOwner", Query{SortBy: SortViews, Page: 1, Limit: 10, OwnerID: "abc"}},
		{"offsetOverflow", Query{SortBy: SortCreatedAt, Page: math.MaxInt/10 + 2, Limit: 10}},
		{"maxPage", Query{SortBy: SortCreatedAt, Page: math.MaxInt, Limit: 2}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ListVideos(context.Background(), tc.query)
			if !errors.Is(err, apperr.ErrInvalidArgument) {
				t.Fatalf("expected invalid argument, got %v", err)
			}
		})
	}
}

type failingSearcher struct{}

func (failingSearcher) Search(context.Context, repositories.VideoQuery) ([]models.VideoSummary, error) {
	return nil, errors.New("connection reset")
}

func (failingSearcher) Count(context.Context, repositories.VideoFilter) (int64, error) {
	return 3, nil
}

func TestListVideosWrapsStoreFailures(t *testing.T) {
	svc := NewService(failingSearcher{}, 0)

	_, err := svc.ListVideos(context.Background(), Query{SortBy: SortViews, Page: 1, Limit: 10})
	if !errors.Is(err, apperr.ErrInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestTotalPages(t *testing.T) {
	cases := []struct {
		total int64
		limit int
		want  int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 10, 3},
	}
	for _, tc := range cases {
		if got := TotalPages(tc.total, tc.limit); got != tc.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", tc.total, tc.limit, got, tc.want)
		}
	}
}
