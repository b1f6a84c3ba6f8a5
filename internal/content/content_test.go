package content

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/apierror"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/memstore"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/models"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/repositories"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/storage"
)

type failingVideos struct {
	repositories.VideoRepository
	err error
}

func (f failingVideos) Create(context.Context, models.Video) error { return f.err }

type failingMedia struct {
	*storage.MemoryStorage
	failFolder storage.Folder
}

func (f failingMedia) Store(ctx context.Context, folder storage.Folder, filename string, r io.Reader) (string, error) {
	if folder == f.failFolder {
		return "", errors.New("bucket unavailable")
	}
	return f.MemoryStorage.Store(ctx, folder, filename, r)
}

func upload(name string) *storage.Upload {
	return &storage.Upload{Filename: name, Body: strings.NewReader(name)}
}

func newService(t *testing.T) (Service, *memstore.Store, *storage.MemoryStorage) {
	t.Helper()
	store := memstore.New()
	for _, name := range []string{"owner", "other"} {
		if err := store.Users().Create(context.Background(), models.User{ID: name, Username: name, Email: name + "@example.com"}); err != nil {
			t.Fatalf("create user: %v", err)
		}
	}
	media := storage.NewMemoryStorage()
	return Service{
		Videos:   store.Videos(),
		Comments: store.Comments(),
		Media:    media,
		NowFunc:  func() time.Time { return time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC) },
	}, store, media
}

func publish(t *testing.T, svc Service) models.Video {
	t.Helper()
	video, err := svc.PublishVideo(context.Background(), "owner", PublishInput{
		Title:     " Launch ",
		Duration:  12.5,
		Video:     upload("clip.mp4"),
		Thumbnail: upload("thumb.png"),
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	return video
}

func TestPublishVideoStartsUnpublished(t *testing.T) {
	svc, _, media := newService(t)
	video := publish(t, svc)

	if video.IsPublished || video.Title != "Launch" || video.OwnerID != "owner" {
		t.Fatalf("unexpected video %+v", video)
	}
	if !media.Has(video.VideoFile) || !media.Has(video.Thumbnail) {
		t.Fatal("expected media to be stored")
	}
}

func TestPublishVideoValidation(t *testing.T) {
	svc, _, media := newService(t)

	_, err := svc.PublishVideo(context.Background(), "owner", PublishInput{Duration: -1})
	apiErr := apierror.From(err)
	if apiErr.Kind != apierror.Validation || len(apiErr.Details) != 4 {
		t.Fatalf("expected four validation details, got %+v", apiErr)
	}
	if media.Len() != 0 {
		t.Fatal("expected nothing stored for invalid input")
	}
}

func TestPublishVideoCompensatesFailedWrites(t *testing.T) {
	svc, _, media := newService(t)
	svc.Videos = failingVideos{VideoRepository: svc.Videos, err: errors.New("connection refused")}

	_, err := svc.PublishVideo(context.Background(), "owner", PublishInput{Title: "t", Video: upload("a.mp4"), Thumbnail: upload("a.png")})
	if err == nil {
		t.Fatal("expected failure")
	}
	if media.Len() != 0 {
		t.Fatalf("expected orphaned media to be removed, %d objects left", media.Len())
	}

	failing := failingMedia{MemoryStorage: media, failFolder: storage.FolderThumbnails}
	svc, _, _ = newService(t)
	svc.Media = failing
	_, err = svc.PublishVideo(context.Background(), "owner", PublishInput{Title: "t", Video: upload("a.mp4"), Thumbnail: upload("a.png")})
	if apierror.From(err).Kind != apierror.UpstreamFailure {
		t.Fatalf("expected upstream failure got %v", err)
	}
	if media.Len() != 0 {
		t.Fatalf("expected video file to be removed after thumbnail failure, %d objects left", media.Len())
	}
}

func TestOwnershipChecks(t *testing.T) {
	svc, store, _ := newService(t)
	ctx := context.Background()
	video := publish(t, svc)

	if _, err := svc.TogglePublish(ctx, "other", video.ID); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected unpublished video to be invisible to others, got %v", err)
	}

	published, err := svc.TogglePublish(ctx, "owner", video.ID)
	if err != nil || !published.IsPublished {
		t.Fatalf("toggle publish: %+v %v", published, err)
	}

	title := "Hijacked"
	if _, err := svc.UpdateVideo(ctx, "other", video.ID, UpdateVideoInput{Title: &title}); apierror.From(err).Kind != apierror.Forbidden {
		t.Fatalf("expected Forbidden got %v", err)
	}
	if err := svc.DeleteVideo(ctx, "other", video.ID); apierror.From(err).Kind != apierror.Forbidden {
		t.Fatalf("expected Forbidden got %v", err)
	}

	stored, err := store.Videos().FindByID(ctx, video.ID)
	if err != nil || stored.Title != "Launch" {
		t.Fatalf("expected video untouched, got %+v %v", stored, err)
	}
}

func TestUpdateVideoSwapsThumbnail(t *testing.T) {
	svc, _, media := newService(t)
	video := publish(t, svc)

	updated, err := svc.UpdateVideo(context.Background(), "owner", video.ID, UpdateVideoInput{Thumbnail: upload("new.png")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Thumbnail == video.Thumbnail || !media.Has(updated.Thumbnail) || media.Has(video.Thumbnail) {
		t.Fatalf("expected thumbnail swap, old=%s new=%s", video.Thumbnail, updated.Thumbnail)
	}

	if _, err := svc.UpdateVideo(context.Background(), "owner", video.ID, UpdateVideoInput{}); apierror.From(err).Kind != apierror.Validation {
		t.Fatalf("expected validation error for empty update got %v", err)
	}
}

func TestDeleteVideoRemovesMediaAndComments(t *testing.T) {
	svc, store, media := newService(t)
	ctx := context.Background()
	video := publish(t, svc)
	if _, err := svc.TogglePublish(ctx, "owner", video.ID); err != nil {
		t.Fatalf("publish: %v", err)
	}

	comment, err := svc.AddComment(ctx, "other", video.ID, "great")
	if err != nil {
		t.Fatalf("comment: %v", err)
	}
	if _, err := store.Likes().InsertLike(ctx, models.Like{ID: "l1", LikedBy: "owner", Target: models.CommentTarget(comment.ID)}); err != nil {
		t.Fatalf("like: %v", err)
	}

	if err := svc.DeleteVideo(ctx, "owner", video.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if media.Len() != 0 {
		t.Fatalf("expected media removed, %d left", media.Len())
	}
	if _, err := store.Comments().FindByID(ctx, comment.ID); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected comment removed got %v", err)
	}
	if has, _ := store.Likes().HasLike(ctx, "owner", models.CommentTarget(comment.ID)); has {
		t.Fatal("expected comment like removed")
	}
}

func TestCommentLifecycle(t *testing.T) {
	svc, store, _ := newService(t)
	ctx := context.Background()
	video := publish(t, svc)

	if _, err := svc.AddComment(ctx, "other", video.ID, "early"); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected draft to reject foreign comments, got %v", err)
	}
	if _, err := svc.TogglePublish(ctx, "owner", video.ID); err != nil {
		t.Fatalf("publish: %v", err)
	}

	comment, err := svc.AddComment(ctx, "other", video.ID, "  nice  ")
	if err != nil || comment.Content != "nice" {
		t.Fatalf("add comment: %+v %v", comment, err)
	}
	if _, err := svc.AddComment(ctx, "other", video.ID, "   "); apierror.From(err).Kind != apierror.Validation {
		t.Fatalf("expected validation error got %v", err)
	}

	if _, err := svc.UpdateComment(ctx, "owner", comment.ID, "edited"); apierror.From(err).Kind != apierror.Forbidden {
		t.Fatalf("expected Forbidden got %v", err)
	}
	updated, err := svc.UpdateComment(ctx, "other", comment.ID, "edited")
	if err != nil || updated.Content != "edited" {
		t.Fatalf("update comment: %+v %v", updated, err)
	}

	if _, err := store.Likes().InsertLike(ctx, models.Like{ID: "l1", LikedBy: "owner", Target: models.CommentTarget(comment.ID)}); err != nil {
		t.Fatalf("like: %v", err)
	}
	if err := svc.DeleteComment(ctx, "owner", comment.ID); apierror.From(err).Kind != apierror.Forbidden {
		t.Fatalf("expected Forbidden got %v", err)
	}
	if err := svc.DeleteComment(ctx, "other", comment.ID); err != nil {
		t.Fatalf("delete comment: %v", err)
	}
	if has, _ := store.Likes().HasLike(ctx, "owner", models.CommentTarget(comment.ID)); has {
		t.Fatal("expected like on deleted comment to be removed")
	}
}
