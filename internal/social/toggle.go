// Package social toggles like and subscription edges.
package social

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/apierror"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/logging"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/models"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/repositories"
)

// Outcome reports the edge state a toggle left behind.
type Outcome string

const (
	Added   Outcome = "added"
	Removed Outcome = "removed"
)

// TargetLookup resolves like targets so toggles only point at live, visible records.
type TargetLookup interface {
	FindVideo(ctx context.Context, id string) (models.Video, error)
}

// CommentLookup resolves comments by ID.
type CommentLookup interface {
	FindByID(ctx context.Context, id string) (models.Comment, error)
}

// UserLookup resolves channels by ID.
type UserLookup interface {
	FindByID(ctx context.Context, id string) (models.User, error)
}

// Service flips like and subscription edges. Creation is conditional in the
// store, so two concurrent toggles never produce two edges.
type Service struct {
	Likes         repositories.LikeRepository
	Subscriptions repositories.SubscriptionRepository
	Videos        TargetLookup
	Comments      CommentLookup
	Users         UserLookup
	NowFunc       func() time.Time
}

// ToggleLike adds the actor's like on target if absent and removes it otherwise.
func (s Service) ToggleLike(ctx context.Context, actorID string, target models.LikeTarget) (Outcome, error) {
	if actorID == "" {
		return "", apierror.New(apierror.Unauthorized, "sign in to like")
	}
	if !target.Kind.Valid() || target.ID == "" {
		return "", apierror.Validationf("invalid like target")
	}
	if err := s.checkTarget(ctx, actorID, target); err != nil {
		return "", err
	}

	has, err := s.Likes.HasLike(ctx, actorID, target)
	if err != nil {
		return "", fmt.Errorf("check like: %w", err)
	}

	if has {
		if _, err := s.Likes.DeleteLike(ctx, actorID, target); err != nil {
			return "", fmt.Errorf("delete like: %w", err)
		}
		logging.FromContext(ctx).Info("like removed", "target_kind", target.Kind, "target_id", target.ID)
		return Removed, nil
	}

	inserted, err := s.Likes.InsertLike(ctx, models.Like{
		ID:        uuid.NewString(),
		LikedBy:   actorID,
		Target:    target,
		CreatedAt: s.now(),
	})
	if err != nil {
		return "", fmt.Errorf("insert like: %w", err)
	}
	if !inserted {
		logging.FromContext(ctx).Debug("like already present", "target_kind", target.Kind, "target_id", target.ID)
	}
	return Added, nil
}

// ToggleSubscription subscribes the actor to channelID if not yet subscribed
// and unsubscribes otherwise.
func (s Service) ToggleSubscription(ctx context.Context, actorID, channelID string) (Outcome, error) {
	if actorID == "" {
		return "", apierror.New(apierror.Unauthorized, "sign in to subscribe")
	}
	if channelID == "" {
		return "", apierror.Validationf("channel id is required")
	}
	if channelID == actorID {
		return "", apierror.Validationf("you cannot subscribe to your own channel")
	}
	if _, err := s.Users.FindByID(ctx, channelID); err != nil {
		return "", fmt.Errorf("find channel: %w", err)
	}

	has, err := s.Subscriptions.HasSubscription(ctx, actorID, channelID)
	if err != nil {
		return "", fmt.Errorf("check subscription: %w", err)
	}

	if has {
		if _, err := s.Subscriptions.DeleteSubscription(ctx, actorID, channelID); err != nil {
			return "", fmt.Errorf("delete subscription: %w", err)
		}
		logging.FromContext(ctx).Info("unsubscribed", "channel_id", channelID)
		return Removed, nil
	}

	if _, err := s.Subscriptions.InsertSubscription(ctx, models.Subscription{
		ID:           uuid.NewString(),
		SubscriberID: actorID,
		ChannelID:    channelID,
		CreatedAt:    s.now(),
	}); err != nil {
		return "", fmt.Errorf("insert subscription: %w", err)
	}
	logging.FromContext(ctx).Info("subscribed", "channel_id", channelID)
	return Added, nil
}

func (s Service) checkTarget(ctx context.Context, actorID string, target models.LikeTarget) error {
	videoID := target.ID
	if target.Kind == models.TargetComment {
		comment, err := s.Comments.FindByID(ctx, target.ID)
		if err != nil {
			return fmt.Errorf("find comment: %w", err)
		}
		videoID = comment.VideoID
	}

	video, err := s.Videos.FindVideo(ctx, videoID)
	if err != nil {
		return fmt.Errorf("find video: %w", err)
	}
	if !video.VisibleTo(actorID) {
		return fmt.Errorf("video %s: %w", videoID, repositories.ErrNotFound)
	}
	return nil
}

func (s Service) now() time.Time {
	if s.NowFunc != nil {
		return s.NowFunc()
	}
	return time.Now().UTC()
}
