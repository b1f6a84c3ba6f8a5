package handlers

import (
	"context"

	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/accounts"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/content"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/models"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/pagination"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/social"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/storage"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/views"
)

// SessionManager issues, rotates and revokes authentication tokens.
type SessionManager interface {
	Login(ctx context.Context, identity, secret string) (models.User, models.SessionTokens, error)
	Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error)
	Logout(ctx context.Context, userID string) error
	ChangeSecret(ctx context.Context, userID, oldSecret, newSecret string) error
}

// AccountService registers users and edits their profiles.
type AccountService interface {
	Register(ctx context.Context, in accounts.RegisterInput) (models.User, error)
	Current(ctx context.Context, actorID string) (models.User, error)
	UpdateProfile(ctx context.Context, actorID string, in accounts.ProfileInput) (models.User, error)
	UpdateAvatar(ctx context.Context, actorID string, upload *storage.Upload) (models.User, error)
	UpdateCoverImage(ctx context.Context, actorID string, upload *storage.Upload) (models.User, error)
}

// ViewComposer builds the read projections returned by feed and detail endpoints.
type ViewComposer interface {
	ListVideos(ctx context.Context, viewerID string, q views.VideoQuery) (pagination.Page[views.VideoCard], error)
	ListLikedVideos(ctx context.Context, viewerID string, req pagination.Request) (pagination.Page[views.VideoCard], error)
	WatchHistory(ctx context.Context, viewerID string, req pagination.Request) (pagination.Page[views.VideoCard], error)
	GetVideo(ctx context.Context, viewerID, videoID string) (views.VideoDetail, error)
	ListComments(ctx context.Context, viewerID, videoID string, req pagination.Request) (pagination.Page[views.CommentCard], error)
	ChannelProfile(ctx context.Context, viewerID, username string) (views.ChannelProfile, error)
}

// ContentService mutates videos and comments.
type ContentService interface {
	PublishVideo(ctx context.Context, ownerID string, in content.PublishInput) (models.Video, error)
	UpdateVideo(ctx context.Context, actorID, videoID string, in content.UpdateVideoInput) (models.Video, error)
	DeleteVideo(ctx context.Context, actorID, videoID string) error
	TogglePublish(ctx context.Context, actorID, videoID string) (models.Video, error)
	AddComment(ctx context.Context, actorID, videoID, content string) (models.Comment, error)
	UpdateComment(ctx context.Context, actorID, commentID, content string) (models.Comment, error)
	DeleteComment(ctx context.Context, actorID, commentID string) error
}

// SocialService toggles like and subscription edges.
type SocialService interface {
	ToggleLike(ctx context.Context, actorID string, target models.LikeTarget) (social.Outcome, error)
	ToggleSubscription(ctx context.Context, actorID, channelID string) (social.Outcome, error)
}

// ViewRecorder counts a video view without blocking the request.
type ViewRecorder interface {
	RecordView(viewerID, videoID string) error
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
