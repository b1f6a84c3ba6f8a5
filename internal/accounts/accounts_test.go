package accounts

import (
	"context"
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/apierror"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/auth"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/memstore"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/models"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/repositories"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/storage"
)

type conflictingUsers struct {
	repositories.UserRepository
}

func (conflictingUsers) Create(context.Context, models.User) error { return repositories.ErrConflict }

func upload(name string) *storage.Upload {
	return &storage.Upload{Filename: name, Body: strings.NewReader(name)}
}

func newService() (Service, *memstore.Store, *storage.MemoryStorage) {
	store := memstore.New()
	media := storage.NewMemoryStorage()
	return Service{
		Users:       store.Users(),
		Credentials: auth.BcryptCredentials{Cost: bcrypt.MinCost},
		Media:       media,
	}, store, media
}

func validInput() RegisterInput {
	return RegisterInput{
		Username: " Alice ",
		Email:    "Alice@Example.com",
		FullName: "Alice Liddell",
		Password: "password123",
		Avatar:   upload("alice.png"),
	}
}

func TestRegisterNormalizesAndHashes(t *testing.T) {
	svc, _, media := newService()

	user, err := svc.Register(context.Background(), validInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Username != "alice" || user.Email != "alice@example.com" {
		t.Fatalf("expected lowercased identity got %+v", user)
	}
	if user.PasswordHash == "" || user.PasswordHash == "password123" {
		t.Fatal("expected hashed password")
	}
	if !svc.Credentials.Verify("password123", user.PasswordHash) {
		t.Fatal("expected hash to verify")
	}
	if !media.Has(user.Avatar) || user.CoverImage != "" {
		t.Fatalf("unexpected images %q %q", user.Avatar, user.CoverImage)
	}
}

func TestRegisterRejectsInvalidInput(t *testing.T) {
	svc, _, media := newService()

	_, err := svc.Register(context.Background(), RegisterInput{Username: "a", Email: "not-an-email", Password: "short"})
	apiErr := apierror.From(err)
	if apiErr.Kind != apierror.Validation || len(apiErr.Details) != 5 {
		t.Fatalf("expected five validation details got %+v", apiErr)
	}
	if media.Len() != 0 {
		t.Fatal("expected nothing stored")
	}
}

func TestRegisterDuplicateIsConflict(t *testing.T) {
	svc, _, media := newService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, validInput()); err != nil {
		t.Fatalf("register: %v", err)
	}

	in := validInput()
	in.Username = "bob"
	if _, err := svc.Register(ctx, in); apierror.From(err).Kind != apierror.Conflict {
		t.Fatalf("expected Conflict for duplicate email got %v", err)
	}
	if media.Len() != 1 {
		t.Fatalf("expected only the first avatar to be stored, got %d", media.Len())
	}
}

func TestRegisterCompensatesLostRace(t *testing.T) {
	svc, _, media := newService()
	svc.Users = conflictingUsers{UserRepository: svc.Users}

	in := validInput()
	in.CoverImage = upload("cover.png")
	_, err := svc.Register(context.Background(), in)
	if !errors.Is(err, repositories.ErrConflict) {
		t.Fatalf("expected conflict got %v", err)
	}
	if media.Len() != 0 {
		t.Fatalf("expected uploaded images to be removed, %d left", media.Len())
	}
}

func TestUpdateProfile(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()

	user, err := svc.Register(ctx, validInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	name := "Alice L."
	email := "NEW@example.com"
	updated, err := svc.UpdateProfile(ctx, user.ID, ProfileInput{FullName: &name, Email: &email})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.FullName != name || updated.Email != "new@example.com" {
		t.Fatalf("unexpected profile %+v", updated)
	}

	bad := "nope"
	if _, err := svc.UpdateProfile(ctx, user.ID, ProfileInput{Email: &bad}); apierror.From(err).Kind != apierror.Validation {
		t.Fatalf("expected Validation got %v", err)
	}
	if _, err := svc.UpdateProfile(ctx, user.ID, ProfileInput{}); apierror.From(err).Kind != apierror.Validation {
		t.Fatalf("expected Validation got %v", err)
	}
}

func TestImageReplacementReleasesPreviousHandle(t *testing.T) {
	svc, _, media := newService()
	ctx := context.Background()

	in := validInput()
	in.CoverImage = upload("cover.png")
	user, err := svc.Register(ctx, in)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	withAvatar, err := svc.UpdateAvatar(ctx, user.ID, upload("avatar-2.png"))
	if err != nil {
		t.Fatalf("update avatar: %v", err)
	}
	if media.Has(user.Avatar) || !media.Has(withAvatar.Avatar) {
		t.Fatal("expected avatar swap")
	}
	if withAvatar.CoverImage != user.CoverImage {
		t.Fatal("avatar update must not touch the cover image")
	}

	withCover, err := svc.UpdateCoverImage(ctx, user.ID, upload("cover-2.png"))
	if err != nil {
		t.Fatalf("update cover: %v", err)
	}
	if withCover.Avatar != withAvatar.Avatar {
		t.Fatal("cover update must not touch the avatar")
	}
	if media.Has(user.CoverImage) || !media.Has(withCover.CoverImage) {
		t.Fatal("expected cover swap")
	}
	if media.Len() != 2 {
		t.Fatalf("expected exactly two live images got %d", media.Len())
	}

	if _, err := svc.UpdateAvatar(ctx, user.ID, nil); apierror.From(err).Kind != apierror.Validation {
		t.Fatalf("expected Validation got %v", err)
	}
}
