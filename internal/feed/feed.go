// Package feed answers searchable, sortable, paginated video listings.
package feed

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/metrics"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

// DefaultMaxLimit caps the page size when the service is built without one.
const DefaultMaxLimit = 100

// Sort keys accepted in Query.SortBy.
const (
	SortCreatedAt = "createdAt"
	SortViews     = "views"
)

var sortColumns = map[string]repositories.VideoSortField{
	SortCreatedAt: repositories.SortByCreatedAt,
	SortViews:     repositories.SortByViews,
}

// Query describes one page of the video listing.
type Query struct {
	// Text is matched case-insensitively against title and description.
	Text string
	// SortBy must be one of SortCreatedAt or SortViews.
	SortBy string
	// SortDir is "asc" or "desc". Empty means "desc".
	SortDir string
	Page    int
	Limit   int
	// OwnerID restricts the listing to one channel when set.
	OwnerID string
}

// VideoSearcher runs filtered, ordered windows and counts over videos.
type VideoSearcher interface {
	Search(ctx context.Context, query repositories.VideoQuery) ([]models.VideoSummary, error)
	Count(ctx context.Context, filter repositories.VideoFilter) (int64, error)
}

// Service lists videos.
type Service struct {
	videos   VideoSearcher
	maxLimit int
}

// NewService constructs a Service. maxLimit <= 0 selects DefaultMaxLimit.
func NewService(videos VideoSearcher, maxLimit int) *Service {
	if maxLimit <= 0 {
		maxLimit = DefaultMaxLimit
	}
	return &Service{videos: videos, maxLimit: maxLimit}
}

// ListVideos returns the requested page and the total number of matches. The
// total is counted separately from the page and may drift under concurrent writes.
func (s *Service) ListVideos(ctx context.Context, q Query) (page models.VideoPage, err error) {
	ctx, span := logging.StartSpan(ctx, "feed.list_videos")
	start := time.Now()
	defer func() {
		span.RecordError(err)
		span.End()
		if err == nil {
			metrics.ObserveFeedQuery(q.SortBy, time.Since(start))
		}
	}()

	vq, err := s.compile(q)
	if err != nil {
		return models.VideoPage{}, err
	}

	total, err := s.videos.Count(ctx, vq.Filter)
	if err != nil {
		return models.VideoPage{}, apperr.Internal(err, "count videos")
	}

	items, err := s.videos.Search(ctx, vq)
	if err != nil {
		return models.VideoPage{}, apperr.Internal(err, "search videos")
	}

	return models.VideoPage{
		Items:      items,
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: TotalPages(total, q.Limit),
	}, nil
}

func (s *Service) compile(q Query) (repositories.VideoQuery, error) {
	if q.SortBy == "" {
		return repositories.VideoQuery{}, apperr.InvalidArgument("sortBy is required")
	}
	column, ok := sortColumns[q.SortBy]
	if !ok {
		return repositories.VideoQuery{}, apperr.InvalidArgument("sortBy must be %q or %q, got %q", SortCreatedAt, SortViews, q.SortBy)
	}

	var descending bool
	switch strings.ToLower(q.SortDir) {
	case "", "desc":
		descending = true
	case "asc":
	default:
		return repositories.VideoQuery{}, apperr.InvalidArgument("sortType must be \"asc\" or \"desc\", got %q", q.SortDir)
	}

	if q.Page < 1 {
		return repositories.VideoQuery{}, apperr.InvalidArgument("page must be at least 1")
	}
	if q.Limit < 1 || q.Limit > s.maxLimit {
		return repositories.VideoQuery{}, apperr.InvalidArgument("limit must be between 1 and %d", s.maxLimit)
	}
	if q.Page-1 > math.MaxInt/q.Limit {
		return repositories.VideoQuery{}, apperr.InvalidArgument("page %d is out of range", q.Page)
	}
	if q.OwnerID != "" {
		ownerID, err := apperr.RequireID("userId", q.OwnerID)
		if err != nil {
			return repositories.VideoQuery{}, err
		}
		q.OwnerID = ownerID
	}

	return repositories.VideoQuery{
		Filter: repositories.VideoFilter{
			Text:    strings.TrimSpace(q.Text),
			OwnerID: q.OwnerID,
		},
		SortBy:     column,
		Descending: descending,
		Offset:     (q.Page - 1) * q.Limit,
		Limit:      q.Limit,
	}, nil
}

// TotalPages returns ceil(total/limit).
func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
