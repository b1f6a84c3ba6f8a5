package handlers

import (
	"net/http"

	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/middleware"
)

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Sessions      SessionManager
	Accounts      AccountService
	Views         ViewComposer
	Content       ContentService
	Social        SocialService
	Recorder      ViewRecorder
	Store         Pinger
	Authenticator middleware.Authenticator
	AuthLimiter   middleware.RateLimiter
	CookieSecure  bool
}

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{Store: deps.Store}
	authn := AuthHandler{Sessions: deps.Sessions, Accounts: deps.Accounts, CookieSecure: deps.CookieSecure}
	users := UserHandler{Accounts: deps.Accounts, Views: deps.Views}
	videos := VideoHandler{Content: deps.Content, Views: deps.Views, Recorder: deps.Recorder}
	comments := CommentHandler{Content: deps.Content, Views: deps.Views}
	likes := LikeHandler{Social: deps.Social, Views: deps.Views}
	subscriptions := SubscriptionHandler{Social: deps.Social}

	required := func(h http.HandlerFunc) http.Handler { return deps.Authenticator.Require(h) }
	optional := func(h http.HandlerFunc) http.Handler { return deps.Authenticator.Optional(h) }
	throttled := func(scope string, h http.HandlerFunc) http.Handler {
		return middleware.Throttle(deps.AuthLimiter, scope)(h)
	}

	mux.HandleFunc("GET /healthz", health.Handle)

	mux.Handle("POST /api/v1/users/register", throttled("register", authn.Register))
	mux.Handle("POST /api/v1/users/login", throttled("login", authn.Login))
	mux.Handle("POST /api/v1/users/refresh-token", throttled("refresh", authn.Refresh))
	mux.Handle("POST /api/v1/users/logout", required(authn.Logout))
	mux.Handle("POST /api/v1/users/change-password", required(authn.ChangePassword))
	mux.Handle("GET /api/v1/users/current-user", required(users.Current))
	mux.Handle("PATCH /api/v1/users/update-account", required(users.UpdateAccount))
	mux.Handle("PATCH /api/v1/users/avatar", required(users.UpdateAvatar))
	mux.Handle("PATCH /api/v1/users/cover-image", required(users.UpdateCoverImage))
	mux.Handle("GET /api/v1/users/c/{username}", optional(users.ChannelProfile))
	mux.Handle("GET /api/v1/users/history", required(users.WatchHistory))

	mux.Handle("GET /api/v1/videos", optional(videos.List))
	mux.Handle("POST /api/v1/videos", required(videos.Publish))
	mux.Handle("GET /api/v1/videos/{videoId}", optional(videos.Get))
	mux.Handle("PATCH /api/v1/videos/{videoId}", required(videos.Update))
	mux.Handle("DELETE /api/v1/videos/{videoId}", required(videos.Delete))
	mux.Handle("PATCH /api/v1/videos/toggle/publish/{videoId}", required(videos.TogglePublish))

	mux.Handle("GET /api/v1/comments/{videoId}", optional(comments.List))
	mux.Handle("POST /api/v1/comments/{videoId}", required(comments.Add))
	mux.Handle("PATCH /api/v1/comments/c/{commentId}", required(comments.Update))
	mux.Handle("DELETE /api/v1/comments/c/{commentId}", required(comments.Delete))

	mux.Handle("POST /api/v1/likes/toggle/v/{videoId}", required(likes.ToggleVideoLike))
	mux.Handle("POST /api/v1/likes/toggle/c/{commentId}", required(likes.ToggleCommentLike))
	mux.Handle("GET /api/v1/likes/videos", required(likes.LikedVideos))

	mux.Handle("POST /api/v1/subscriptions/c/{channelId}", required(subscriptions.Toggle))
}
