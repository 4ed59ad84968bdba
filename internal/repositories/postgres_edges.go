package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/models"
)

// PostgresSubscriptionRepository persists subscription edges. The
// subscriptions_pair unique constraint is what serialises concurrent toggles.
type PostgresSubscriptionRepository struct {
	pool db.Pool
}

// NewPostgresSubscriptionRepository constructs a subscription repository backed by PostgreSQL.
func NewPostgresSubscriptionRepository(pool db.Pool) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{pool: pool}
}

// Create inserts a new edge, returning ErrConflict when the pair already exists
// and ErrNotFound when either endpoint is missing.
func (r *PostgresSubscriptionRepository) Create(ctx context.Context, sub models.Subscription) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO subscriptions (id, subscriber_id, channel_id, created_at)
        VALUES ($1, $2, $3, $4)
    `, sub.ID, sub.SubscriberID, sub.ChannelID, sub.CreatedAt)
	if err != nil {
		return writeError(err, "insert subscription")
	}
	return nil
}

// Find loads the edge for the exact (subscriber, channel) pair.
func (r *PostgresSubscriptionRepository) Find(ctx context.Context, subscriberID, channelID string) (models.Subscription, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Subscription{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var sub models.Subscription
	err = conn.QueryRow(ctx, `
        SELECT id, subscriber_id, channel_id, created_at
        FROM subscriptions
        WHERE subscriber_id = $1 AND channel_id = $2
    `, subscriberID, channelID).Scan(&sub.ID, &sub.SubscriberID, &sub.ChannelID, &sub.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Subscription{}, ErrNotFound
		}
		return models.Subscription{}, fmt.Errorf("select subscription: %w", err)
	}
	return sub, nil
}

// Delete removes an edge by id.
func (r *PostgresSubscriptionRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM subscriptions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Counts reads the three subscription figures of a channel in a single statement.
func (r *PostgresSubscriptionRepository) Counts(ctx context.Context, channelID, viewerID string) (models.SubscriptionCounts, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.SubscriptionCounts{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var counts models.SubscriptionCounts
	err = conn.QueryRow(ctx, `
        SELECT
            (SELECT count(*) FROM subscriptions WHERE channel_id = $1),
            (SELECT count(*) FROM subscriptions WHERE subscriber_id = $1),
            EXISTS (SELECT 1 FROM subscriptions WHERE channel_id = $1 AND subscriber_id = $2)
    `, channelID, nullableID(viewerID)).Scan(&counts.Subscribers, &counts.SubscribedTo, &counts.IsSubscribed)
	if err != nil {
		return models.SubscriptionCounts{}, fmt.Errorf("count subscriptions: %w", err)
	}
	return counts, nil
}

// ListSubscribers returns the users subscribed to channelID, most recent first.
func (r *PostgresSubscriptionRepository) ListSubscribers(ctx context.Context, channelID string) ([]models.OwnerSummary, error) {
	return r.listUsers(ctx, `
        SELECT u.id, u.username, u.display_name, u.avatar_ref
        FROM subscriptions s
        JOIN users u ON u.id = s.subscriber_id
        WHERE s.channel_id = $1
        ORDER BY s.created_at DESC, s.id ASC
    `, channelID)
}

// ListChannels returns the channels subscriberID is subscribed to, most recent first.
func (r *PostgresSubscriptionRepository) ListChannels(ctx context.Context, subscriberID string) ([]models.OwnerSummary, error) {
	return r.listUsers(ctx, `
        SELECT u.id, u.username, u.display_name, u.avatar_ref
        FROM subscriptions s
        JOIN users u ON u.id = s.channel_id
        WHERE s.subscriber_id = $1
        ORDER BY s.created_at DESC, s.id ASC
    `, subscriberID)
}

func (r *PostgresSubscriptionRepository) listUsers(ctx context.Context, query, id string) ([]models.OwnerSummary, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("query subscription users: %w", err)
	}
	defer rows.Close()

	users := []models.OwnerSummary{}
	for rows.Next() {
		var s models.OwnerSummary
		if err := rows.Scan(&s.ID, &s.Username, &s.DisplayName, &s.AvatarRef); err != nil {
			return nil, fmt.Errorf("scan subscription user: %w", err)
		}
		users = append(users, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscription users: %w", err)
	}
	return users, nil
}

// PostgresLikeRepository persists like edges keyed by (actor, kind, target).
type PostgresLikeRepository struct {
	pool db.Pool
}

// NewPostgresLikeRepository constructs a like repository backed by PostgreSQL.
func NewPostgresLikeRepository(pool db.Pool) *PostgresLikeRepository {
	return &PostgresLikeRepository{pool: pool}
}

// Create inserts a new like, returning ErrConflict when the key already exists.
func (r *PostgresLikeRepository) Create(ctx context.Context, like models.Like) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO likes (id, actor_id, kind, target_id, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `, like.ID, like.ActorID, string(like.Kind), like.TargetID, like.CreatedAt)
	if err != nil {
		return writeError(err, "insert like")
	}
	return nil
}

// Find loads the like for the exact key.
func (r *PostgresLikeRepository) Find(ctx context.Context, actorID string, kind models.LikeKind, targetID string) (models.Like, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Like{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var (
		like    models.Like
		rawKind string
	)
	err = conn.QueryRow(ctx, `
        SELECT id, actor_id, kind, target_id, created_at
        FROM likes
        WHERE actor_id = $1 AND kind = $2 AND target_id = $3
    `, actorID, string(kind), targetID).Scan(&like.ID, &like.ActorID, &rawKind, &like.TargetID, &like.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Like{}, ErrNotFound
		}
		return models.Like{}, fmt.Errorf("select like: %w", err)
	}
	like.Kind = models.LikeKind(rawKind)
	return like, nil
}

// Delete removes a like by id.
func (r *PostgresLikeRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM likes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete like: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountForTargets counts likes of the given kind pointing at any of targetIDs.
func (r *PostgresLikeRepository) CountForTargets(ctx context.Context, kind models.LikeKind, targetIDs []string) (int64, error) {
	if len(targetIDs) == 0 {
		return 0, nil
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var total int64
	if err := conn.QueryRow(ctx, `
        SELECT count(*) FROM likes WHERE kind = $1 AND target_id = ANY($2)
    `, string(kind), targetIDs).Scan(&total); err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}
	return total, nil
}

// ListLikedVideos returns the videos actorID liked, most recent like first.
func (r *PostgresLikeRepository) ListLikedVideos(ctx context.Context, actorID string) ([]models.VideoSummary, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT v.id, v.title, v.description, v.media_ref, v.thumbnail_ref, v.duration_seconds,
               v.view_count, v.is_published, v.created_at, u.username, u.avatar_ref
        FROM likes l
        JOIN videos v ON v.id = l.target_id
        JOIN users u ON u.id = v.owner_id
        WHERE l.actor_id = $1 AND l.kind = 'video'
        ORDER BY l.created_at DESC, l.id ASC
    `, actorID)
	if err != nil {
		return nil, fmt.Errorf("query liked videos: %w", err)
	}
	defer rows.Close()

	videos := []models.VideoSummary{}
	for rows.Next() {
		var s models.VideoSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.Description, &s.MediaRef, &s.ThumbnailRef, &s.DurationSeconds,
			&s.ViewCount, &s.IsPublished, &s.CreatedAt, &s.Owner.Username, &s.Owner.AvatarRef); err != nil {
			return nil, fmt.Errorf("scan liked video: %w", err)
		}
		videos = append(videos, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate liked videos: %w", err)
	}
	return videos, nil
}

var _ SubscriptionRepository = (*PostgresSubscriptionRepository)(nil)
var _ LikeRepository = (*PostgresLikeRepository)(nil)
