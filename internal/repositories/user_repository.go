package repositories

import (
	"context"
	"time"

	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/models"
)

// UserRepository defines the data access contract for users.
type UserRepository interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByIdentity(ctx context.Context, identity string) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	Update(ctx context.Context, user models.User) error
	UpdatePasswordHash(ctx context.Context, id, hash string, updatedAt time.Time) error
	AppendWatchHistory(ctx context.Context, userID, videoID string, watchedAt time.Time) error
}

// SessionRepository persists the current refresh token of each user.
type SessionRepository interface {
	SetRefreshToken(ctx context.Context, userID, refreshToken string) error
	SwapRefreshToken(ctx context.Context, userID, expected, next string) (bool, error)
	ClearRefreshToken(ctx context.Context, userID string) error
}
