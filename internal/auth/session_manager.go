package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/logging"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/models"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/repositories"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/token"
)

var (
	// ErrInvalidCredential is returned for both unknown identities and wrong secrets.
	ErrInvalidCredential = errors.New("invalid credentials")
	// ErrRevoked indicates the presented refresh token is no longer the user's current one.
	ErrRevoked = errors.New("refresh token revoked or already used")
	// ErrWeakSecret indicates a new secret does not meet the minimum length.
	ErrWeakSecret = errors.New("password must be at least 8 characters")
)

// MinSecretLength is the minimum accepted password length.
const MinSecretLength = 8

// UserDirectory resolves users for the session lifecycle.
type UserDirectory interface {
	FindByIdentity(ctx context.Context, identity string) (models.User, error)
	FindByID(ctx context.Context, id string) (models.User, error)
	UpdatePasswordHash(ctx context.Context, id, hash string, updatedAt time.Time) error
}

// SessionStore persists the single current refresh token of each user.
type SessionStore interface {
	SetRefreshToken(ctx context.Context, userID, refreshToken string) error
	// SwapRefreshToken replaces the stored token with next only when it still
	// equals expected. It reports whether the swap happened.
	SwapRefreshToken(ctx context.Context, userID, expected, next string) (bool, error)
	ClearRefreshToken(ctx context.Context, userID string) error
}

// Manager issues, rotates and revokes paired access/refresh tokens. A user has
// at most one live refresh token; logging in again replaces it.
type Manager struct {
	access      *token.Codec
	refresh     *token.Codec
	users       UserDirectory
	sessions    SessionStore
	credentials CredentialStore
	now         func() time.Time

	decoyOnce sync.Once
	decoy     string
}

// NewManager constructs a Manager from its collaborators.
func NewManager(access, refresh *token.Codec, users UserDirectory, sessions SessionStore, credentials CredentialStore) *Manager {
	if access == nil || refresh == nil {
		panic("auth: token codecs must not be nil")
	}
	if access.Kind() != token.KindAccess || refresh.Kind() != token.KindRefresh {
		panic("auth: codecs passed in the wrong order")
	}
	if users == nil || sessions == nil || credentials == nil {
		panic("auth: user directory, session store and credential store must not be nil")
	}
	return &Manager{
		access:      access,
		refresh:     refresh,
		users:       users,
		sessions:    sessions,
		credentials: credentials,
		now:         time.Now,
	}
}

// Login verifies identity (username or email) and secret and starts a new
// session, replacing any previous one.
func (m *Manager) Login(ctx context.Context, identity, secret string) (models.User, models.SessionTokens, error) {
	identity = strings.TrimSpace(strings.ToLower(identity))
	if identity == "" || secret == "" {
		return models.User{}, models.SessionTokens{}, ErrInvalidCredential
	}

	user, err := m.users.FindByIdentity(ctx, identity)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// Burn a comparable amount of time so unknown identities are not distinguishable.
			m.credentials.Verify(secret, m.decoyDigest())
			return models.User{}, models.SessionTokens{}, ErrInvalidCredential
		}
		return models.User{}, models.SessionTokens{}, fmt.Errorf("lookup user: %w", err)
	}

	if !m.credentials.Verify(secret, user.PasswordHash) {
		logging.FromContext(ctx).Warn("login secret mismatch", "userId", user.ID)
		return models.User{}, models.SessionTokens{}, ErrInvalidCredential
	}

	tokens, err := m.issue(user.ID)
	if err != nil {
		return models.User{}, models.SessionTokens{}, err
	}

	if err := m.sessions.SetRefreshToken(ctx, user.ID, tokens.RefreshToken); err != nil {
		return models.User{}, models.SessionTokens{}, fmt.Errorf("persist refresh token: %w", err)
	}

	user.RefreshToken = tokens.RefreshToken
	return user, tokens, nil
}

// Refresh exchanges a refresh token for a new pair. Each refresh token can be
// used for exactly one successful refresh.
func (m *Manager) Refresh(ctx context.Context, presented string) (models.SessionTokens, error) {
	claim, err := m.refresh.Verify(presented)
	if err != nil {
		return models.SessionTokens{}, err
	}

	user, err := m.users.FindByID(ctx, claim.Subject)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.SessionTokens{}, ErrRevoked
		}
		return models.SessionTokens{}, fmt.Errorf("lookup user: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(user.RefreshToken), []byte(presented)) != 1 {
		return models.SessionTokens{}, ErrRevoked
	}

	tokens, err := m.issue(user.ID)
	if err != nil {
		return models.SessionTokens{}, err
	}

	swapped, err := m.sessions.SwapRefreshToken(ctx, user.ID, presented, tokens.RefreshToken)
	if err != nil {
		return models.SessionTokens{}, fmt.Errorf("rotate refresh token: %w", err)
	}
	if !swapped {
		logging.FromContext(ctx).Warn("refresh token rotation lost race", "userId", user.ID)
		return models.SessionTokens{}, ErrRevoked
	}

	return tokens, nil
}

// Logout clears the stored refresh token. It is idempotent.
func (m *Manager) Logout(ctx context.Context, userID string) error {
	if userID == "" {
		return errors.New("user id must be provided")
	}
	if err := m.sessions.ClearRefreshToken(ctx, userID); err != nil {
		return fmt.Errorf("clear refresh token: %w", err)
	}
	return nil
}

// ChangeSecret replaces the stored credential hash after verifying the old
// secret. Outstanding access tokens stay valid until they expire.
func (m *Manager) ChangeSecret(ctx context.Context, userID, oldSecret, newSecret string) error {
	if len(newSecret) < MinSecretLength {
		return ErrWeakSecret
	}

	user, err := m.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if !m.credentials.Verify(oldSecret, user.PasswordHash) {
		return ErrInvalidCredential
	}

	hashed, err := m.credentials.Hash(newSecret)
	if err != nil {
		return fmt.Errorf("hash secret: %w", err)
	}

	return m.users.UpdatePasswordHash(ctx, user.ID, hashed, m.now().UTC())
}

func (m *Manager) issue(userID string) (models.SessionTokens, error) {
	accessToken, accessClaim, err := m.access.Issue(userID)
	if err != nil {
		return models.SessionTokens{}, err
	}

	refreshToken, refreshClaim, err := m.refresh.Issue(userID)
	if err != nil {
		return models.SessionTokens{}, err
	}

	return models.SessionTokens{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessClaim.ExpiresAt,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshClaim.ExpiresAt,
	}, nil
}

func (m *Manager) decoyDigest() string {
	m.decoyOnce.Do(func() {
		digest, err := m.credentials.Hash("decoy-secret-for-timing")
		if err == nil {
			m.decoy = digest
		}
	})
	return m.decoy
}
