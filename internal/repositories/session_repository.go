package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/db"
)

// PostgresSessionStore keeps each user's current refresh token on the users row.
type PostgresSessionStore struct {
	store
}

// NewPostgresSessionStore constructs a session store backed by PostgreSQL.
func NewPostgresSessionStore(pool db.Pool, timeout time.Duration) *PostgresSessionStore {
	return &PostgresSessionStore{store: newStore(pool, timeout)}
}

// SetRefreshToken overwrites the stored refresh token, ending any previous session.
func (s *PostgresSessionStore) SetRefreshToken(ctx context.Context, userID, refreshToken string) error {
	return s.withConn(ctx, "set refresh token", func(ctx context.Context, conn *pgxpool.Conn) error {
		tag, err := conn.Exec(ctx, `UPDATE users SET refresh_token = $2 WHERE id = $1`, userID, refreshToken)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// SwapRefreshToken replaces the stored token with next only if it still equals
// expected. The comparison and write happen in one statement.
func (s *PostgresSessionStore) SwapRefreshToken(ctx context.Context, userID, expected, next string) (bool, error) {
	var swapped bool
	err := s.withConn(ctx, "swap refresh token", func(ctx context.Context, conn *pgxpool.Conn) error {
		tag, err := conn.Exec(ctx, `
            UPDATE users
            SET refresh_token = $3
            WHERE id = $1 AND refresh_token = $2
        `, userID, expected, next)
		if err != nil {
			return err
		}
		swapped = tag.RowsAffected() == 1
		return nil
	})
	return swapped, err
}

// ClearRefreshToken nulls the stored token. Clearing an already empty token succeeds.
func (s *PostgresSessionStore) ClearRefreshToken(ctx context.Context, userID string) error {
	return s.withConn(ctx, "clear refresh token", func(ctx context.Context, conn *pgxpool.Conn) error {
		_, err := conn.Exec(ctx, `UPDATE users SET refresh_token = NULL WHERE id = $1`, userID)
		return err
	})
}

var _ SessionRepository = (*PostgresSessionStore)(nil)
