// Package content implements owner-scoped video and comment mutations.
package content

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/apierror"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/logging"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/models"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/repositories"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/storage"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 5000
	maxCommentLength     = 2000
)

// Service mutates videos and comments on behalf of their owners.
type Service struct {
	Videos   repositories.VideoRepository
	Comments repositories.CommentRepository
	Media    storage.Media
	NowFunc  func() time.Time
}

// PublishInput carries a new video upload.
type PublishInput struct {
	Title       string
	Description string
	Duration    float64
	Video       *storage.Upload
	Thumbnail   *storage.Upload
}

// UpdateVideoInput carries a partial video update. Nil fields are left as is.
type UpdateVideoInput struct {
	Title       *string
	Description *string
	Thumbnail   *storage.Upload
}

// PublishVideo stores the media and creates an unpublished video. Stored
// media is removed again when any later step fails.
func (s Service) PublishVideo(ctx context.Context, ownerID string, in PublishInput) (video models.Video, err error) {
	ctx, span := logging.StartSpan(ctx, "content.publish_video")
	defer func() { span.End(err) }()

	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)

	var details []string
	if in.Title == "" {
		details = append(details, "title is required")
	} else if len(in.Title) > maxTitleLength {
		details = append(details, fmt.Sprintf("title must be at most %d characters", maxTitleLength))
	}
	if len(in.Description) > maxDescriptionLength {
		details = append(details, fmt.Sprintf("description must be at most %d characters", maxDescriptionLength))
	}
	if in.Duration < 0 {
		details = append(details, "duration must not be negative")
	}
	if in.Video == nil {
		details = append(details, "video file is required")
	}
	if in.Thumbnail == nil {
		details = append(details, "thumbnail is required")
	}
	if len(details) > 0 {
		return models.Video{}, apierror.New(apierror.Validation, "invalid video", details...)
	}

	videoFile, err := s.Media.Store(ctx, storage.FolderVideos, in.Video.Filename, in.Video.Body)
	if err != nil {
		return models.Video{}, apierror.Wrap(apierror.UpstreamFailure, "failed to upload video file", err)
	}

	thumbnail, err := s.Media.Store(ctx, storage.FolderThumbnails, in.Thumbnail.Filename, in.Thumbnail.Body)
	if err != nil {
		err = apierror.Wrap(apierror.UpstreamFailure, "failed to upload thumbnail", err)
		return models.Video{}, s.compensate(ctx, err, videoFile)
	}

	now := s.now()
	video = models.Video{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		VideoFile:   videoFile,
		Thumbnail:   thumbnail,
		Title:       in.Title,
		Description: in.Description,
		Duration:    in.Duration,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.Videos.Create(ctx, video); err != nil {
		return models.Video{}, s.compensate(ctx, fmt.Errorf("create video: %w", err), videoFile, thumbnail)
	}

	logging.FromContext(ctx).Info("video published", "video_id", video.ID)
	return video, nil
}

// UpdateVideo changes title, description or thumbnail of the actor's video.
func (s Service) UpdateVideo(ctx context.Context, actorID, videoID string, in UpdateVideoInput) (models.Video, error) {
	video, err := s.ownedVideo(ctx, actorID, videoID)
	if err != nil {
		return models.Video{}, err
	}

	if in.Title == nil && in.Description == nil && in.Thumbnail == nil {
		return models.Video{}, apierror.Validationf("nothing to update")
	}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" || len(title) > maxTitleLength {
			return models.Video{}, apierror.Validationf("title must be between 1 and %d characters", maxTitleLength)
		}
		video.Title = title
	}
	if in.Description != nil {
		description := strings.TrimSpace(*in.Description)
		if len(description) > maxDescriptionLength {
			return models.Video{}, apierror.Validationf("description must be at most %d characters", maxDescriptionLength)
		}
		video.Description = description
	}

	previousThumbnail := ""
	if in.Thumbnail != nil {
		thumbnail, err := s.Media.Store(ctx, storage.FolderThumbnails, in.Thumbnail.Filename, in.Thumbnail.Body)
		if err != nil {
			return models.Video{}, apierror.Wrap(apierror.UpstreamFailure, "failed to upload thumbnail", err)
		}
		previousThumbnail = video.Thumbnail
		video.Thumbnail = thumbnail
	}
	video.UpdatedAt = s.now()

	if err := s.Videos.Update(ctx, video); err != nil {
		err = fmt.Errorf("update video: %w", err)
		if in.Thumbnail != nil {
			return models.Video{}, s.compensate(ctx, err, video.Thumbnail)
		}
		return models.Video{}, err
	}

	s.release(ctx, previousThumbnail)
	return video, nil
}

// DeleteVideo removes the actor's video with its comments and likes, then
// its media.
func (s Service) DeleteVideo(ctx context.Context, actorID, videoID string) error {
	video, err := s.ownedVideo(ctx, actorID, videoID)
	if err != nil {
		return err
	}

	if err := s.Videos.DeleteCascade(ctx, video.ID); err != nil {
		return fmt.Errorf("delete video: %w", err)
	}

	s.release(ctx, video.VideoFile, video.Thumbnail)
	logging.FromContext(ctx).Info("video deleted", "video_id", video.ID)
	return nil
}

// TogglePublish flips the publish flag of the actor's video.
func (s Service) TogglePublish(ctx context.Context, actorID, videoID string) (models.Video, error) {
	video, err := s.ownedVideo(ctx, actorID, videoID)
	if err != nil {
		return models.Video{}, err
	}

	video.IsPublished = !video.IsPublished
	video.UpdatedAt = s.now()
	if err := s.Videos.SetPublished(ctx, video.ID, video.IsPublished, video.UpdatedAt); err != nil {
		return models.Video{}, fmt.Errorf("toggle publish: %w", err)
	}
	return video, nil
}

func (s Service) ownedVideo(ctx context.Context, actorID, videoID string) (models.Video, error) {
	if strings.TrimSpace(videoID) == "" {
		return models.Video{}, apierror.Validationf("video id is required")
	}
	video, err := s.Videos.FindByID(ctx, videoID)
	if err != nil {
		return models.Video{}, fmt.Errorf("find video: %w", err)
	}
	if video.OwnerID != actorID {
		if !video.VisibleTo(actorID) {
			return models.Video{}, fmt.Errorf("video %s: %w", videoID, repositories.ErrNotFound)
		}
		return models.Video{}, apierror.Forbiddenf("only the owner may modify this video")
	}
	return video, nil
}

// compensate removes freshly stored media after a failed write. A failed
// removal is reported together with the original failure.
func (s Service) compensate(ctx context.Context, cause error, handles ...string) error {
	if err := storage.Discard(ctx, s.Media, handles...); err != nil {
		logging.FromContext(ctx).Error("media compensation failed", "error", err, "handles", handles)
		return errors.Join(cause, fmt.Errorf("remove orphaned media: %w", err))
	}
	return cause
}

// release deletes media no longer referenced by any record.
func (s Service) release(ctx context.Context, handles ...string) {
	if err := storage.Discard(ctx, s.Media, handles...); err != nil {
		logging.FromContext(ctx).Warn("failed to delete replaced media", "error", err)
	}
}

func (s Service) now() time.Time {
	if s.NowFunc != nil {
		return s.NowFunc()
	}
	return time.Now().UTC()
}
