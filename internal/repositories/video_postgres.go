package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/db"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/models"
)

const videoColumns = `v.id, v.owner_id, v.video_file, v.thumbnail, v.title, v.description, v.duration, v.views, v.is_published, v.created_at, v.updated_at`

func scanVideo(row rowScanner) (models.Video, error) {
	var video models.Video
	err := row.Scan(&video.ID, &video.OwnerID, &video.VideoFile, &video.Thumbnail, &video.Title, &video.Description,
		&video.Duration, &video.Views, &video.IsPublished, &video.CreatedAt, &video.UpdatedAt)
	video.CreatedAt = video.CreatedAt.UTC()
	video.UpdatedAt = video.UpdatedAt.UTC()
	return video, err
}

// PostgresVideoRepository provides PostgreSQL-backed persistence for videos.
type PostgresVideoRepository struct {
	store
}

// NewPostgresVideoRepository constructs a video repository backed by PostgreSQL.
func NewPostgresVideoRepository(pool db.Pool, timeout time.Duration) *PostgresVideoRepository {
	return &PostgresVideoRepository{store: newStore(pool, timeout)}
}

// Create stores a new video record.
func (r *PostgresVideoRepository) Create(ctx context.Context, video models.Video) error {
	return r.withConn(ctx, "insert video", func(ctx context.Context, conn *pgxpool.Conn) error {
		_, err := conn.Exec(ctx, `
            INSERT INTO videos (id, owner_id, video_file, thumbnail, title, description, duration, views, is_published, created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        `, video.ID, video.OwnerID, video.VideoFile, video.Thumbnail, video.Title, video.Description,
			video.Duration, video.Views, video.IsPublished, video.CreatedAt, video.UpdatedAt)
		return err
	})
}

// FindByID fetches a video by primary key regardless of its publish state.
func (r *PostgresVideoRepository) FindByID(ctx context.Context, id string) (models.Video, error) {
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

// Update writes title, description and thumbnail.
func (r *PostgresVideoRepository) Update(ctx context.Context, video models.Video) error {
	return r.withConn(ctx, "update video", func(ctx context.Context, conn *pgxpool.Conn) error {
		tag, err := conn.Exec(ctx, `
            UPDATE videos
            SET title = $2, description = $3, thumbnail = $4, updated_at = $5
            WHERE id = $1
        `, video.ID, video.Title, video.Description, video.Thumbnail, video.UpdatedAt)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// SetPublished sets the publish flag.
func (r *PostgresVideoRepository) SetPublished(ctx context.Context, id string, published bool, updatedAt time.Time) error {
	return r.withConn(ctx, "set video published", func(ctx context.Context, conn *pgxpool.Conn) error {
		tag, err := conn.Exec(ctx, `UPDATE videos SET is_published = $2, updated_at = $3 WHERE id = $1`, id, published, updatedAt)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// DeleteCascade removes the video together with its comments, the likes on
// both and the watch history entries pointing at it.
func (r *PostgresVideoRepository) DeleteCascade(ctx context.Context, id string) error {
	return r.withTx(ctx, "delete video", func(ctx context.Context, tx pgx.Tx) error {
		statements := []string{
			`DELETE FROM likes WHERE comment_id IN (SELECT id FROM comments WHERE video_id = $1)`,
			`DELETE FROM likes WHERE video_id = $1`,
			`DELETE FROM comments WHERE video_id = $1`,
			`DELETE FROM watch_history WHERE video_id = $1`,
		}
		for _, stmt := range statements {
			if _, err := tx.Exec(ctx, stmt, id); err != nil {
				return err
			}
		}

		tag, err := tx.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// IncrementViews adds one to the view counter.
func (r *PostgresVideoRepository) IncrementViews(ctx context.Context, id string) error {
	return r.withConn(ctx, "increment video views", func(ctx context.Context, conn *pgxpool.Conn) error {
		tag, err := conn.Exec(ctx, `UPDATE videos SET views = views + 1 WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// PostgresCommentRepository provides PostgreSQL-backed persistence for comments.
type PostgresCommentRepository struct {
	store
}

// NewPostgresCommentRepository constructs a comment repository backed by PostgreSQL.
func NewPostgresCommentRepository(pool db.Pool, timeout time.Duration) *PostgresCommentRepository {
	return &PostgresCommentRepository{store: newStore(pool, timeout)}
}

const commentColumns = `c.id, c.video_id, c.owner_id, c.content, c.created_at, c.updated_at`

func scanComment(row rowScanner) (models.Comment, error) {
	var comment models.Comment
	err := row.Scan(&comment.ID, &comment.VideoID, &comment.OwnerID, &comment.Content, &comment.CreatedAt, &comment.UpdatedAt)
	comment.CreatedAt = comment.CreatedAt.UTC()
	comment.UpdatedAt = comment.UpdatedAt.UTC()
	return comment, err
}

// Create stores a new comment.
func (r *PostgresCommentRepository) Create(ctx context.Context, comment models.Comment) error {
	return r.withConn(ctx, "insert comment", func(ctx context.Context, conn *pgxpool.Conn) error {
		_, err := conn.Exec(ctx, `
            INSERT INTO comments (id, video_id, owner_id, content, created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5, $6)
        `, comment.ID, comment.VideoID, comment.OwnerID, comment.Content, comment.CreatedAt, comment.UpdatedAt)
		return err
	})
}

// FindByID fetches a comment by primary key.
func (r *PostgresCommentRepository) FindByID(ctx context.Context, id string) (models.Comment, error) {
	var comment models.Comment
	err := r.withConn(ctx, "select comment", func(ctx context.Context, conn *pgxpool.Conn) error {
		var err error
		comment, err = scanComment(conn.QueryRow(ctx, `SELECT `+commentColumns+` FROM comments c WHERE c.id = $1`, id))
		return err
	})
	if err != nil {
		return models.Comment{}, err
	}
	return comment, nil
}

// UpdateContent replaces the comment text.
func (r *PostgresCommentRepository) UpdateContent(ctx context.Context, id, content string, updatedAt time.Time) error {
	return r.withConn(ctx, "update comment", func(ctx context.Context, conn *pgxpool.Conn) error {
		tag, err := conn.Exec(ctx, `UPDATE comments SET content = $2, updated_at = $3 WHERE id = $1`, id, content, updatedAt)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// DeleteCascade removes the comment and the likes pointing at it in one transaction.
func (r *PostgresCommentRepository) DeleteCascade(ctx context.Context, id string) error {
	return r.withTx(ctx, "delete comment", func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM likes WHERE comment_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

var _ VideoRepository = (*PostgresVideoRepository)(nil)
var _ CommentRepository = (*PostgresCommentRepository)(nil)
