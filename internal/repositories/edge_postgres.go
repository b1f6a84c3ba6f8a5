package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/db"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/models"
)

// targetColumn returns the likes column holding the reference for kind.
func targetColumn(kind models.TargetKind) (string, error) {
	switch kind {
	case models.TargetVideo:
		return "video_id", nil
	case models.TargetComment:
		return "comment_id", nil
	default:
		return "", fmt.Errorf("unknown like target kind %q", kind)
	}
}

// PostgresLikeRepository provides PostgreSQL-backed persistence for like edges.
type PostgresLikeRepository struct {
	store
}

// NewPostgresLikeRepository constructs a like repository backed by PostgreSQL.
func NewPostgresLikeRepository(pool db.Pool, timeout time.Duration) *PostgresLikeRepository {
	return &PostgresLikeRepository{store: newStore(pool, timeout)}
}

// HasLike reports whether likerID currently likes target.
func (r *PostgresLikeRepository) HasLike(ctx context.Context, likerID string, target models.LikeTarget) (bool, error) {
	column, err := targetColumn(target.Kind)
	if err != nil {
		return false, err
	}

	var exists bool
	err = r.withConn(ctx, "check like", func(ctx context.Context, conn *pgxpool.Conn) error {
		return conn.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM likes WHERE liked_by = $1 AND `+column+` = $2)`,
			likerID, target.ID).Scan(&exists)
	})
	return exists, err
}

// InsertLike creates the edge unless it already exists. A missing target
// surfaces as ErrNotFound through the foreign key.
func (r *PostgresLikeRepository) InsertLike(ctx context.Context, like models.Like) (bool, error) {
	var videoID, commentID *string
	switch like.Target.Kind {
	case models.TargetVideo:
		videoID = &like.Target.ID
	case models.TargetComment:
		commentID = &like.Target.ID
	default:
		return false, fmt.Errorf("unknown like target kind %q", like.Target.Kind)
	}

	var inserted bool
	err := r.withConn(ctx, "insert like", func(ctx context.Context, conn *pgxpool.Conn) error {
		tag, err := conn.Exec(ctx, `
            INSERT INTO likes (id, liked_by, target_kind, video_id, comment_id, created_at)
            VALUES ($1, $2, $3, $4, $5, $6)
            ON CONFLICT DO NOTHING
        `, like.ID, like.LikedBy, string(like.Target.Kind), videoID, commentID, like.CreatedAt)
		if err != nil {
			return err
		}
		inserted = tag.RowsAffected() == 1
		return nil
	})
	return inserted, err
}

// DeleteLike removes the edge and reports whether one existed.
func (r *PostgresLikeRepository) DeleteLike(ctx context.Context, likerID string, target models.LikeTarget) (bool, error) {
	column, err := targetColumn(target.Kind)
	if err != nil {
		return false, err
	}

	var deleted bool
	err = r.withConn(ctx, "delete like", func(ctx context.Context, conn *pgxpool.Conn) error {
		tag, err := conn.Exec(ctx, `DELETE FROM likes WHERE liked_by = $1 AND `+column+` = $2`, likerID, target.ID)
		if err != nil {
			return err
		}
		deleted = tag.RowsAffected() > 0
		return nil
	})
	return deleted, err
}

// PostgresSubscriptionRepository provides PostgreSQL-backed persistence for subscriptions.
type PostgresSubscriptionRepository struct {
	store
}

// NewPostgresSubscriptionRepository constructs a subscription repository backed by PostgreSQL.
func NewPostgresSubscriptionRepository(pool db.Pool, timeout time.Duration) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{store: newStore(pool, timeout)}
}

// HasSubscription reports whether subscriberID follows channelID.
func (r *PostgresSubscriptionRepository) HasSubscription(ctx context.Context, subscriberID, channelID string) (bool, error) {
	var exists bool
	err := r.withConn(ctx, "check subscription", func(ctx context.Context, conn *pgxpool.Conn) error {
		return conn.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2)`,
			subscriberID, channelID).Scan(&exists)
	})
	return exists, err
}

// InsertSubscription creates the edge unless it already exists.
func (r *PostgresSubscriptionRepository) InsertSubscription(ctx context.Context, subscription models.Subscription) (bool, error) {
	var inserted bool
	err := r.withConn(ctx, "insert subscription", func(ctx context.Context, conn *pgxpool.Conn) error {
		tag, err := conn.Exec(ctx, `
            INSERT INTO subscriptions (id, subscriber_id, channel_id, created_at)
            VALUES ($1, $2, $3, $4)
            ON CONFLICT (subscriber_id, channel_id) DO NOTHING
        `, subscription.ID, subscription.SubscriberID, subscription.ChannelID, subscription.CreatedAt)
		if err != nil {
			return err
		}
		inserted = tag.RowsAffected() == 1
		return nil
	})
	return inserted, err
}

// DeleteSubscription removes the edge and reports whether one existed.
func (r *PostgresSubscriptionRepository) DeleteSubscription(ctx context.Context, subscriberID, channelID string) (bool, error) {
	var deleted bool
	err := r.withConn(ctx, "delete subscription", func(ctx context.Context, conn *pgxpool.Conn) error {
		tag, err := conn.Exec(ctx, `DELETE FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2`, subscriberID, channelID)
		if err != nil {
			return err
		}
		deleted = tag.RowsAffected() > 0
		return nil
	})
	return deleted, err
}

var _ LikeRepository = (*PostgresLikeRepository)(nil)
var _ SubscriptionRepository = (*PostgresSubscriptionRepository)(nil)
