// Package accounts registers users and maintains their profiles.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/apierror"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/auth"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/logging"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/models"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/repositories"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/storage"
)

const maxFullNameLength = 100

var usernamePattern = regexp.MustCompile(`^[a-z0-9_.]{3,30}$`)

// Service owns user records outside of the session lifecycle.
type Service struct {
	Users       repositories.UserRepository
	Credentials auth.CredentialStore
	Media       storage.Media
	NowFunc     func() time.Time
}

// RegisterInput carries a registration form.
type RegisterInput struct {
	Username   string
	Email      string
	FullName   string
	Password   string
	Avatar     *storage.Upload
	CoverImage *storage.Upload
}

// Register validates the form, stores the images and creates the user.
func (s Service) Register(ctx context.Context, in RegisterInput) (user models.User, err error) {
	ctx, span := logging.StartSpan(ctx, "accounts.register")
	defer func() { span.End(err) }()

	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FullName = strings.TrimSpace(in.FullName)

	var details []string
	if !usernamePattern.MatchString(in.Username) {
		details = append(details, "username must be 3-30 characters of letters, digits, '_' or '.'")
	}
	if !validEmail(in.Email) {
		details = append(details, "email is invalid")
	}
	if in.FullName == "" || len(in.FullName) > maxFullNameLength {
		details = append(details, fmt.Sprintf("full name must be between 1 and %d characters", maxFullNameLength))
	}
	if len(in.Password) < auth.MinSecretLength {
		details = append(details, fmt.Sprintf("password must be at least %d characters", auth.MinSecretLength))
	}
	if in.Avatar == nil {
		details = append(details, "avatar is required")
	}
	if len(details) > 0 {
		return models.User{}, apierror.New(apierror.Validation, "invalid registration", details...)
	}

	exists, err := s.Users.ExistsByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		return models.User{}, fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		return models.User{}, apierror.New(apierror.Conflict, "username or email already registered")
	}

	hashed, err := s.Credentials.Hash(in.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	avatar, err := s.Media.Store(ctx, storage.FolderAvatars, in.Avatar.Filename, in.Avatar.Body)
	if err != nil {
		return models.User{}, apierror.Wrap(apierror.UpstreamFailure, "failed to upload avatar", err)
	}

	var cover string
	if in.CoverImage != nil {
		cover, err = s.Media.Store(ctx, storage.FolderCovers, in.CoverImage.Filename, in.CoverImage.Body)
		if err != nil {
			err = apierror.Wrap(apierror.UpstreamFailure, "failed to upload cover image", err)
			return models.User{}, s.compensate(ctx, err, avatar)
		}
	}

	now := s.now()
	user = models.User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		Email:        in.Email,
		FullName:     in.FullName,
		Avatar:       avatar,
		CoverImage:   cover,
		PasswordHash: hashed,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Users.Create(ctx, user); err != nil {
		return models.User{}, s.compensate(ctx, fmt.Errorf("create user: %w", err), avatar, cover)
	}

	logging.FromContext(ctx).Info("user registered", "user_id", user.ID)
	return user, nil
}

// Current returns the actor's own record.
func (s Service) Current(ctx context.Context, actorID string) (models.User, error) {
	user, err := s.Users.FindByID(ctx, actorID)
	if err != nil {
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// ProfileInput carries a partial profile update. Nil fields are left as is.
type ProfileInput struct {
	FullName *string
	Email    *string
}

// UpdateProfile changes the actor's full name and/or email.
func (s Service) UpdateProfile(ctx context.Context, actorID string, in ProfileInput) (models.User, error) {
	if in.FullName == nil && in.Email == nil {
		return models.User{}, apierror.Validationf("full name or email is required")
	}

	user, err := s.Current(ctx, actorID)
	if err != nil {
		return models.User{}, err
	}

	if in.FullName != nil {
		fullName := strings.TrimSpace(*in.FullName)
		if fullName == "" || len(fullName) > maxFullNameLength {
			return models.User{}, apierror.Validationf("full name must be between 1 and %d characters", maxFullNameLength)
		}
		user.FullName = fullName
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if !validEmail(email) {
			return models.User{}, apierror.Validationf("email is invalid")
		}
		user.Email = email
	}
	user.UpdatedAt = s.now()

	if err := s.Users.Update(ctx, user); err != nil {
		return models.User{}, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// UpdateAvatar replaces the actor's avatar.
func (s Service) UpdateAvatar(ctx context.Context, actorID string, upload *storage.Upload) (models.User, error) {
	return s.replaceImage(ctx, actorID, upload, storage.FolderAvatars, func(u *models.User) *string { return &u.Avatar })
}

// UpdateCoverImage replaces the actor's cover image.
func (s Service) UpdateCoverImage(ctx context.Context, actorID string, upload *storage.Upload) (models.User, error) {
	return s.replaceImage(ctx, actorID, upload, storage.FolderCovers, func(u *models.User) *string { return &u.CoverImage })
}

func (s Service) replaceImage(ctx context.Context, actorID string, upload *storage.Upload, folder storage.Folder, field func(*models.User) *string) (models.User, error) {
	if upload == nil {
		return models.User{}, apierror.Validationf("%s file is required", strings.TrimSuffix(string(folder), "s"))
	}

	user, err := s.Current(ctx, actorID)
	if err != nil {
		return models.User{}, err
	}

	handle, err := s.Media.Store(ctx, folder, upload.Filename, upload.Body)
	if err != nil {
		return models.User{}, apierror.Wrap(apierror.UpstreamFailure, "failed to upload image", err)
	}

	slot := field(&user)
	previous := *slot
	*slot = handle
	user.UpdatedAt = s.now()

	if err := s.Users.Update(ctx, user); err != nil {
		return models.User{}, s.compensate(ctx, fmt.Errorf("update user: %w", err), handle)
	}

	if err := storage.Discard(ctx, s.Media, previous); err != nil {
		logging.FromContext(ctx).Warn("failed to delete replaced image", "error", err)
	}
	return user, nil
}

func (s Service) compensate(ctx context.Context, cause error, handles ...string) error {
	if err := storage.Discard(ctx, s.Media, handles...); err != nil {
		logging.FromContext(ctx).Error("media compensation failed", "error", err, "handles", handles)
		return errors.Join(cause, fmt.Errorf("remove orphaned media: %w", err))
	}
	return cause
}

func (s Service) now() time.Time {
	if s.NowFunc != nil {
		return s.NowFunc()
	}
	return time.Now().UTC()
}

func validEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
