package content

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/apierror"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/logging"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/models"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/repositories"
)

// AddComment posts content on a video the actor can see.
func (s Service) AddComment(ctx context.Context, actorID, videoID, content string) (models.Comment, error) {
	content, err := validComment(content)
	if err != nil {
		return models.Comment{}, err
	}

	video, err := s.Videos.FindByID(ctx, videoID)
	if err != nil {
		return models.Comment{}, fmt.Errorf("find video: %w", err)
	}
	if !video.VisibleTo(actorID) {
		return models.Comment{}, fmt.Errorf("video %s: %w", videoID, repositories.ErrNotFound)
	}

	now := s.now()
	comment := models.Comment{
		ID:        uuid.NewString(),
		VideoID:   video.ID,
		OwnerID:   actorID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Comments.Create(ctx, comment); err != nil {
		return models.Comment{}, fmt.Errorf("create comment: %w", err)
	}
	return comment, nil
}

// UpdateComment replaces the text of the actor's comment.
func (s Service) UpdateComment(ctx context.Context, actorID, commentID, content string) (models.Comment, error) {
	content, err := validComment(content)
	if err != nil {
		return models.Comment{}, err
	}

	comment, err := s.ownedComment(ctx, actorID, commentID)
	if err != nil {
		return models.Comment{}, err
	}

	comment.Content = content
	comment.UpdatedAt = s.now()
	if err := s.Comments.UpdateContent(ctx, comment.ID, comment.Content, comment.UpdatedAt); err != nil {
		return models.Comment{}, fmt.Errorf("update comment: %w", err)
	}
	return comment, nil
}

// DeleteComment removes the actor's comment and every like on it.
func (s Service) DeleteComment(ctx context.Context, actorID, commentID string) error {
	comment, err := s.ownedComment(ctx, actorID, commentID)
	if err != nil {
		return err
	}
	if err := s.Comments.DeleteCascade(ctx, comment.ID); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	logging.FromContext(ctx).Info("comment deleted", "comment_id", comment.ID)
	return nil
}

func (s Service) ownedComment(ctx context.Context, actorID, commentID string) (models.Comment, error) {
	if strings.TrimSpace(commentID) == "" {
		return models.Comment{}, apierror.Validationf("comment id is required")
	}
	comment, err := s.Comments.FindByID(ctx, commentID)
	if err != nil {
		return models.Comment{}, fmt.Errorf("find comment: %w", err)
	}
	if comment.OwnerID != actorID {
		return models.Comment{}, apierror.Forbiddenf("only the author may modify this comment")
	}
	return comment, nil
}

func validComment(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", apierror.Validationf("content is required")
	}
	if len(content) > maxCommentLength {
		return "", apierror.Validationf("content must be at most %d characters", maxCommentLength)
	}
	return content, nil
}
