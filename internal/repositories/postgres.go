package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/db"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/models"
)

// store carries the pool and per-call timeout shared by every Postgres repository.
type store struct {
	pool    db.Pool
	timeout time.Duration
}

func newStore(pool db.Pool, timeout time.Duration) store {
	if timeout <= 0 {
		timeout = db.DefaultTimeout
	}
	return store{pool: pool, timeout: timeout}
}

// withConn runs fn on a pooled connection inside a bounded context.
func (s store) withConn(ctx context.Context, op string, fn func(ctx context.Context, conn *pgxpool.Conn) error) error {
	ctx, cancel := db.Scope(ctx, s.timeout)
	defer cancel()

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return translate("acquire connection", err)
	}
	defer conn.Release()

	return translate(op, fn(ctx, conn))
}

// withTx runs fn inside a single transaction, committing only when fn succeeds.
func (s store) withTx(ctx context.Context, op string, fn func(ctx context.Context, tx pgx.Tx) error) error {
	return s.withConn(ctx, op, func(ctx context.Context, conn *pgxpool.Conn) error {
		return pgx.BeginTxFunc(ctx, conn, pgx.TxOptions{}, func(tx pgx.Tx) error {
			return fn(ctx, tx)
		})
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

const userColumns = `id, username, email, full_name, avatar, cover_image, password_hash, COALESCE(refresh_token, ''), created_at, updated_at`

func scanUser(row rowScanner) (models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.FullName, &user.Avatar, &user.CoverImage,
		&user.PasswordHash, &user.RefreshToken, &user.CreatedAt, &user.UpdatedAt)
	user.CreatedAt = user.CreatedAt.UTC()
	user.UpdatedAt = user.UpdatedAt.UTC()
	return user, err
}

// PostgresUserRepository provides PostgreSQL-backed persistence for users.
type PostgresUserRepository struct {
	store
}

// NewPostgresUserRepository constructs a user repository backed by PostgreSQL.
func NewPostgresUserRepository(pool db.Pool, timeout time.Duration) *PostgresUserRepository {
	return &PostgresUserRepository{store: newStore(pool, timeout)}
}

// Create persists a new user record.
func (r *PostgresUserRepository) Create(ctx context.Context, user models.User) error {
	return r.withConn(ctx, "insert user", func(ctx context.Context, conn *pgxpool.Conn) error {
		_, err := conn.Exec(ctx, `
            INSERT INTO users (id, username, email, full_name, avatar, cover_image, password_hash, created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        `, user.ID, user.Username, user.Email, user.FullName, user.Avatar, user.CoverImage, user.PasswordHash, user.CreatedAt, user.UpdatedAt)
		return err
	})
}

// FindByID fetches a user by primary key.
func (r *PostgresUserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	return r.findOne(ctx, "select user by id", `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// FindByIdentity fetches a user whose username or email equals identity.
func (r *PostgresUserRepository) FindByIdentity(ctx context.Context, identity string) (models.User, error) {
	return r.findOne(ctx, "select user by identity", `SELECT `+userColumns+` FROM users WHERE username = $1 OR email = $1 LIMIT 1`, identity)
}

// FindByUsername fetches a user by username.
func (r *PostgresUserRepository) FindByUsername(ctx context.Context, username string) (models.User, error) {
	return r.findOne(ctx, "select user by username", `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *PostgresUserRepository) findOne(ctx context.Context, op, query string, arg string) (models.User, error) {
	var user models.User
	err := r.withConn(ctx, op, func(ctx context.Context, conn *pgxpool.Conn) error {
		var err error
		user, err = scanUser(conn.QueryRow(ctx, query, arg))
		return err
	})
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// ExistsByUsernameOrEmail reports whether either identity is already taken.
func (r *PostgresUserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var exists bool
	err := r.withConn(ctx, "check user exists", func(ctx context.Context, conn *pgxpool.Conn) error {
		return conn.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 OR email = $2)`, username, email).Scan(&exists)
	})
	return exists, err
}

// Update writes the mutable profile fields of user.
func (r *PostgresUserRepository) Update(ctx context.Context, user models.User) error {
	return r.withConn(ctx, "update user", func(ctx context.Context, conn *pgxpool.Conn) error {
		tag, err := conn.Exec(ctx, `
            UPDATE users
            SET full_name = $2, email = $3, avatar = $4, cover_image = $5, updated_at = $6
            WHERE id = $1
        `, user.ID, user.FullName, user.Email, user.Avatar, user.CoverImage, user.UpdatedAt)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// UpdatePasswordHash replaces the stored credential hash.
func (r *PostgresUserRepository) UpdatePasswordHash(ctx context.Context, id, hash string, updatedAt time.Time) error {
	return r.withConn(ctx, "update password hash", func(ctx context.Context, conn *pgxpool.Conn) error {
		tag, err := conn.Exec(ctx, `UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`, id, hash, updatedAt)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// AppendWatchHistory records that userID watched videoID. A repeat view moves
// the video to the front of the history.
func (r *PostgresUserRepository) AppendWatchHistory(ctx context.Context, userID, videoID string, watchedAt time.Time) error {
	return r.withConn(ctx, "append watch history", func(ctx context.Context, conn *pgxpool.Conn) error {
		_, err := conn.Exec(ctx, `
            INSERT INTO watch_history (user_id, video_id, watched_at)
            VALUES ($1, $2, $3)
            ON CONFLICT (user_id, video_id) DO UPDATE SET watched_at = EXCLUDED.watched_at
        `, userID, videoID, watchedAt)
		return err
	})
}

var _ UserRepository = (*PostgresUserRepository)(nil)
