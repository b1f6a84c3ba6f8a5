package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/db"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/models"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/pagination"
)

// PostgresRelations answers feed queries with one count and one page query
// per filter, plus batched aggregate lookups.
type PostgresRelations struct {
	store
}

// NewPostgresRelations constructs the relation reader backed by PostgreSQL.
func NewPostgresRelations(pool db.Pool, timeout time.Duration) *PostgresRelations {
	return &PostgresRelations{store: newStore(pool, timeout)}
}

var sortColumns = map[pagination.SortField]string{
	pagination.SortCreatedAt: "v.created_at",
	pagination.SortViews:     "v.views",
	pagination.SortDuration:  "v.duration",
}

func orderClause(sort pagination.Sort) string {
	column, ok := sortColumns[sort.Field]
	if !ok {
		column = "v.created_at"
	}
	direction := "DESC"
	if sort.Direction == pagination.Asc {
		direction = "ASC"
	}
	return fmt.Sprintf("ORDER BY %s %s, v.created_at DESC, v.id ASC", column, direction)
}

// likePattern escapes LIKE metacharacters so query is matched literally.
func likePattern(query string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(query) + "%"
}

// FilterVideos lists videos visible to filter.ViewerID.
func (r *PostgresRelations) FilterVideos(ctx context.Context, filter VideoFilter, window pagination.Window) ([]models.Video, int64, error) {
	where := []string{"(v.is_published OR v.owner_id = $1)"}
	args := []any{filter.ViewerID}

	if query := strings.TrimSpace(filter.Query); query != "" {
		args = append(args, likePattern(query))
		n := len(args)
		where = append(where, fmt.Sprintf("(v.title ILIKE $%d OR v.description ILIKE $%d)", n, n))
	}
	if filter.OwnerID != "" {
		args = append(args, filter.OwnerID)
		where = append(where, fmt.Sprintf("v.owner_id = $%d", len(args)))
	}

	from := "FROM videos v WHERE " + strings.Join(where, " AND ")
	return r.videoWindow(ctx, "filter videos", from, orderClause(window.Sort), args, window)
}

// FilterLikedVideos lists liked videos that are still visible to userID.
func (r *PostgresRelations) FilterLikedVideos(ctx context.Context, userID string, window pagination.Window) ([]models.Video, int64, error) {
	from := `FROM likes l JOIN videos v ON v.id = l.video_id
        WHERE l.liked_by = $1 AND l.target_kind = 'video' AND (v.is_published OR v.owner_id = $1)`
	return r.videoWindow(ctx, "filter liked videos", from, "ORDER BY l.created_at DESC, v.id ASC", []any{userID}, window)
}

// FilterWatchHistory lists watched videos that are still visible to userID.
func (r *PostgresRelations) FilterWatchHistory(ctx context.Context, userID string, window pagination.Window) ([]models.Video, int64, error) {
	from := `FROM watch_history w JOIN videos v ON v.id = w.video_id
        WHERE w.user_id = $1 AND (v.is_published OR v.owner_id = $1)`
	return r.videoWindow(ctx, "filter watch history", from, "ORDER BY w.watched_at DESC, v.id ASC", []any{userID}, window)
}

func (r *PostgresRelations) videoWindow(ctx context.Context, op, from, order string, args []any, window pagination.Window) ([]models.Video, int64, error) {
	var (
		total  int64
		videos []models.Video
	)
	err := r.withConn(ctx, op, func(ctx context.Context, conn *pgxpool.Conn) error {
		if err := conn.QueryRow(ctx, "SELECT COUNT(*) "+from, args...).Scan(&total); err != nil {
			return err
		}

		n := len(args)
		query := fmt.Sprintf("SELECT %s %s %s OFFSET $%d LIMIT $%d", videoColumns, from, order, n+1, n+2)
		rows, err := conn.Query(ctx, query, append(args, window.Offset, window.Limit)...)
		if err != nil {
			return err
		}
		videos, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Video, error) {
			return scanVideo(row)
		})
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return videos, total, nil
}

// FindVideo fetches a video regardless of publish state.
func (r *PostgresRelations) FindVideo(ctx context.Context, id string) (models.Video, error) {
	var video models.Video
	err := r.withConn(ctx, "select video", func(ctx context.Context, conn *pgxpool.Conn) error {
		var err error
		video, err = scanVideo(conn.QueryRow(ctx, `SELECT `+videoColumns+` FROM videos v WHERE v.id = $1`, id))
		return err
	})
	if err != nil {
		return models.Video{}, err
	}
	return video, nil
}

// FindUserByUsername fetches a channel owner.
func (r *PostgresRelations) FindUserByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	err := r.withConn(ctx, "select user by username", func(ctx context.Context, conn *pgxpool.Conn) error {
		var err error
		user, err = scanUser(conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
		return err
	})
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// FilterComments lists a video's comments newest first.
func (r *PostgresRelations) FilterComments(ctx context.Context, videoID string, window pagination.Window) ([]models.Comment, int64, error) {
	var (
		total    int64
		comments []models.Comment
	)
	err := r.withConn(ctx, "filter comments", func(ctx context.Context, conn *pgxpool.Conn) error {
		if err := conn.QueryRow(ctx, `SELECT COUNT(*) FROM comments c WHERE c.video_id = $1`, videoID).Scan(&total); err != nil {
			return err
		}
		rows, err := conn.Query(ctx, `
            SELECT `+commentColumns+`
            FROM comments c
            WHERE c.video_id = $1
            ORDER BY c.created_at DESC, c.id ASC
            OFFSET $2 LIMIT $3
        `, videoID, window.Offset, window.Limit)
		if err != nil {
			return err
		}
		comments, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Comment, error) {
			return scanComment(row)
		})
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

// Owners loads users by ID.
func (r *PostgresRelations) Owners(ctx context.Context, ids []string) (map[string]models.User, error) {
	owners := make(map[string]models.User, len(ids))
	if len(ids) == 0 {
		return owners, nil
	}
	err := r.withConn(ctx, "select owners", func(ctx context.Context, conn *pgxpool.Conn) error {
		rows, err := conn.Query(ctx, `SELECT `+userColumns+` FROM users WHERE id = ANY($1)`, ids)
		if err != nil {
			return err
		}
		users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.User, error) {
			return scanUser(row)
		})
		for _, user := range users {
			owners[user.ID] = user
		}
		return err
	})
	return owners, err
}

// CountLikes counts like edges per target.
func (r *PostgresRelations) CountLikes(ctx context.Context, kind models.TargetKind, ids []string) (map[string]int64, error) {
	column, err := targetColumn(kind)
	if err != nil {
		return nil, err
	}
	return r.countBy(ctx, "count likes",
		`SELECT `+column+`, COUNT(*) FROM likes WHERE `+column+` = ANY($1) GROUP BY `+column, ids)
}

// LikedBy reports which targets viewerID likes.
func (r *PostgresRelations) LikedBy(ctx context.Context, viewerID string, kind models.TargetKind, ids []string) (map[string]bool, error) {
	column, err := targetColumn(kind)
	if err != nil {
		return nil, err
	}
	return r.presentBy(ctx, "select viewer likes",
		`SELECT `+column+` FROM likes WHERE liked_by = $2 AND `+column+` = ANY($1)`, ids, viewerID)
}

// CountSubscribers counts subscribers per channel.
func (r *PostgresRelations) CountSubscribers(ctx context.Context, channelIDs []string) (map[string]int64, error) {
	return r.countBy(ctx, "count subscribers",
		`SELECT channel_id, COUNT(*) FROM subscriptions WHERE channel_id = ANY($1) GROUP BY channel_id`, channelIDs)
}

// SubscribedBy reports which channels viewerID follows.
func (r *PostgresRelations) SubscribedBy(ctx context.Context, viewerID string, channelIDs []string) (map[string]bool, error) {
	return r.presentBy(ctx, "select viewer subscriptions",
		`SELECT channel_id FROM subscriptions WHERE subscriber_id = $2 AND channel_id = ANY($1)`, channelIDs, viewerID)
}

// CountSubscriptions counts the channels subscriberID follows.
func (r *PostgresRelations) CountSubscriptions(ctx context.Context, subscriberID string) (int64, error) {
	var total int64
	err := r.withConn(ctx, "count subscriptions", func(ctx context.Context, conn *pgxpool.Conn) error {
		return conn.QueryRow(ctx, `SELECT COUNT(*) FROM subscriptions WHERE subscriber_id = $1`, subscriberID).Scan(&total)
	})
	return total, err
}

func (r *PostgresRelations) countBy(ctx context.Context, op, query string, ids []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}
	err := r.withConn(ctx, op, func(ctx context.Context, conn *pgxpool.Conn) error {
		rows, err := conn.Query(ctx, query, ids)
		if err != nil {
			return err
		}
		var (
			id    string
			count int64
		)
		_, err = pgx.ForEachRow(rows, []any{&id, &count}, func() error {
			counts[id] = count
			return nil
		})
		return err
	})
	return counts, err
}

func (r *PostgresRelations) presentBy(ctx context.Context, op, query string, ids []string, viewerID string) (map[string]bool, error) {
	present := make(map[string]bool, len(ids))
	if len(ids) == 0 || viewerID == "" {
		return present, nil
	}
	err := r.withConn(ctx, op, func(ctx context.Context, conn *pgxpool.Conn) error {
		rows, err := conn.Query(ctx, query, ids, viewerID)
		if err != nil {
			return err
		}
		var id string
		_, err = pgx.ForEachRow(rows, []any{&id}, func() error {
			present[id] = true
			return nil
		})
		return err
	})
	return present, err
}

var _ RelationReader = (*PostgresRelations)(nil)
