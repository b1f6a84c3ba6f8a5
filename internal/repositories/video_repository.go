package repositories

import (
	"context"
	"time"

	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/models"
)

// VideoRepository exposes data access for videos.
type VideoRepository interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	Update(ctx context.Context, video models.Video) error
	SetPublished(ctx context.Context, id string, published bool, updatedAt time.Time) error
	// DeleteCascade removes the video, its comments and every like pointing at either.
	DeleteCascade(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
}

// CommentRepository exposes data access for comments.
type CommentRepository interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	UpdateContent(ctx context.Context, id, content string, updatedAt time.Time) error
	// DeleteCascade removes the comment and every like pointing at it.
	DeleteCascade(ctx context.Context, id string) error
}

// VideoFilter narrows a video feed. ViewerID widens visibility to the viewer's
// own unpublished videos.
type VideoFilter struct {
	Query    string
	OwnerID  string
	ViewerID string
}
