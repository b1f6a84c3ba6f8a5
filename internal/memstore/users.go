package memstore

import (
	"context"
	"errors"
	"time"

	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/models"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/repositories"
)

// Users implements repositories.UserRepository.
type Users struct{ s *Store }

// Create stores a new user, rejecting a taken username or email.
func (u *Users) Create(ctx context.Context, user models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	if _, ok := u.s.users[user.ID]; ok {
		return repositories.ErrConflict
	}
	for _, existing := range u.s.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return repositories.ErrConflict
		}
	}
	u.s.users[user.ID] = user
	return nil
}

// FindByID returns the user with the given id.
func (u *Users) FindByID(ctx context.Context, id string) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()

	user, ok := u.s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return user, nil
}

// FindByIdentity matches identity against username or email.
func (u *Users) FindByIdentity(ctx context.Context, identity string) (models.User, error) {
	return u.find(ctx, func(user models.User) bool { return user.Username == identity || user.Email == identity })
}

// FindByUsername returns the user with the given username.
func (u *Users) FindByUsername(ctx context.Context, username string) (models.User, error) {
	return u.find(ctx, func(user models.User) bool { return user.Username == username })
}

func (u *Users) find(ctx context.Context, match func(models.User) bool) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()

	for _, user := range u.s.users {
		if match(user) {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

// ExistsByUsernameOrEmail reports whether either value is taken.
func (u *Users) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	_, err := u.find(ctx, func(user models.User) bool { return user.Username == username || user.Email == email })
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, repositories.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Update overwrites the profile fields of an existing user.
func (u *Users) Update(ctx context.Context, user models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	current, ok := u.s.users[user.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	for id, existing := range u.s.users {
		if id != user.ID && existing.Email == user.Email {
			return repositories.ErrConflict
		}
	}
	current.FullName = user.FullName
	current.Email = user.Email
	current.Avatar = user.Avatar
	current.CoverImage = user.CoverImage
	current.UpdatedAt = user.UpdatedAt
	u.s.users[user.ID] = current
	return nil
}

// UpdatePasswordHash replaces the stored credential hash.
func (u *Users) UpdatePasswordHash(ctx context.Context, id, hash string, updatedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	user, ok := u.s.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	user.PasswordHash = hash
	user.UpdatedAt = updatedAt
	u.s.users[id] = user
	return nil
}

// AppendWatchHistory records watchedAt as userID's latest watch of videoID.
func (u *Users) AppendWatchHistory(ctx context.Context, userID, videoID string, watchedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	if _, ok := u.s.users[userID]; !ok {
		return repositories.ErrNotFound
	}
	if _, ok := u.s.videos[videoID]; !ok {
		return repositories.ErrNotFound
	}
	u.s.history[watchKey{user: userID, video: videoID}] = watchedAt
	return nil
}

// Sessions implements repositories.SessionRepository on the users map.
type Sessions struct{ s *Store }

// SetRefreshToken overwrites the user's current refresh token.
func (r *Sessions) SetRefreshToken(ctx context.Context, userID, refreshToken string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user, ok := r.s.users[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	user.RefreshToken = refreshToken
	r.s.users[userID] = user
	return nil
}

// SwapRefreshToken replaces the token only if it still equals expected.
func (r *Sessions) SwapRefreshToken(ctx context.Context, userID, expected, next string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user, ok := r.s.users[userID]
	if !ok || user.RefreshToken == "" || user.RefreshToken != expected {
		return false, nil
	}
	user.RefreshToken = next
	r.s.users[userID] = user
	return true, nil
}

// ClearRefreshToken removes the user's refresh token.
func (r *Sessions) ClearRefreshToken(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if user, ok := r.s.users[userID]; ok {
		user.RefreshToken = ""
		r.s.users[userID] = user
	}
	return nil
}
