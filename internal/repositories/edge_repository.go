package repositories

import (
	"context"

	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/models"
)

// LikeRepository stores like edges. InsertLike is a conditional create: it
// reports false instead of creating a duplicate edge.
type LikeRepository interface {
	HasLike(ctx context.Context, likerID string, target models.LikeTarget) (bool, error)
	InsertLike(ctx context.Context, like models.Like) (bool, error)
	DeleteLike(ctx context.Context, likerID string, target models.LikeTarget) (bool, error)
}

// SubscriptionRepository stores subscriber -> channel edges with the same
// conditional create semantics as LikeRepository.
type SubscriptionRepository interface {
	HasSubscription(ctx context.Context, subscriberID, channelID string) (bool, error)
	InsertSubscription(ctx context.Context, subscription models.Subscription) (bool, error)
	DeleteSubscription(ctx context.Context, subscriberID, channelID string) (bool, error)
}
