package repositories

import (
	"context"

	"github.com/vidtube/backend/internal/models"
)

// VideoSortField names a column the feed may be ordered by.
type VideoSortField string

const (
	SortByCreatedAt VideoSortField = "created_at"
	SortByViews     VideoSortField = "view_count"
)

// VideoFilter restricts a video search. Empty fields do not filter.
type VideoFilter struct {
	// Text matches a case-insensitive substring of the title or the description.
	Text    string
	OwnerID string
}

// VideoQuery is a filtered, ordered window over the videos table. Ties on
// SortBy are always broken by id ascending.
type VideoQuery struct {
	Filter     VideoFilter
	SortBy     VideoSortField
	Descending bool
	Offset     int
	Limit      int
}

// VideoRepository exposes data access for videos.
type VideoRepository interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]models.Video, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Video, error)
	Search(ctx context.Context, query VideoQuery) ([]models.VideoSummary, error)
	Count(ctx context.Context, filter VideoFilter) (int64, error)
	Update(ctx context.Context, video models.Video) error
	Delete(ctx context.Context, id string) error
}
