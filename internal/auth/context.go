package auth

import (
	"context"

	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/models"
)

type viewerKey struct{}

// WithViewer attaches the authenticated user to the context.
func WithViewer(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, viewerKey{}, user)
}

// ViewerFromContext returns the authenticated user, if any.
func ViewerFromContext(ctx context.Context) (models.User, bool) {
	if ctx == nil {
		return models.User{}, false
	}
	user, ok := ctx.Value(viewerKey{}).(models.User)
	if !ok || user.ID == "" {
		return models.User{}, false
	}
	return user, true
}

// ViewerID returns the authenticated user id or "" for anonymous requests.
func ViewerID(ctx context.Context) string {
	user, _ := ViewerFromContext(ctx)
	return user.ID
}
