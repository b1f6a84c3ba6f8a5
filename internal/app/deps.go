package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/accounts"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/activity"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/auth"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/config"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/content"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/db"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/handlers"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/memstore"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/middleware"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/repositories"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/social"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/storage"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/token"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/views"
)

// backend groups the relation stores behind one lifecycle.
type backend struct {
	users         repositories.UserRepository
	sessions      repositories.SessionRepository
	videos        repositories.VideoRepository
	comments      repositories.CommentRepository
	likes         repositories.LikeRepository
	subscriptions repositories.SubscriptionRepository
	relations     repositories.RelationReader
	pinger        handlers.Pinger
	close         func()
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func openBackend(ctx context.Context, cfg config.Config, logger *slog.Logger) (backend, error) {
	if cfg.UsesMemoryStore() {
		logger.Warn("using in-process relation store, data is lost on exit")
		store := memstore.New()
		return backend{
			users:         store.Users(),
			sessions:      store.Sessions(),
			videos:        store.Videos(),
			comments:      store.Comments(),
			likes:         store.Likes(),
			subscriptions: store.Subscriptions(),
			relations:     store.Relations(),
			pinger:        store,
			close:         func() {},
		}, nil
	}

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return backend{}, err
	}
	return postgresBackend(pool, cfg), nil
}

func postgresBackend(pool db.Pool, cfg config.Config) backend {
	timeout := cfg.StoreTimeout
	return backend{
		users:         repositories.NewPostgresUserRepository(pool, timeout),
		sessions:      repositories.NewPostgresSessionStore(pool, timeout),
		videos:        repositories.NewPostgresVideoRepository(pool, timeout),
		comments:      repositories.NewPostgresCommentRepository(pool, timeout),
		likes:         repositories.NewPostgresLikeRepository(pool, timeout),
		subscriptions: repositories.NewPostgresSubscriptionRepository(pool, timeout),
		relations:     repositories.NewPostgresRelations(pool, timeout),
		pinger:        pingFunc(func(ctx context.Context) error { return db.Ping(ctx, pool) }),
		close:         pool.Close,
	}
}

func openMedia(ctx context.Context, cfg config.Config, logger *slog.Logger) (storage.Media, error) {
	if !cfg.ObjectStore.Enabled() {
		logger.Warn("no media bucket configured, keeping uploads in memory")
		return storage.NewMemoryStorage(), nil
	}
	return storage.NewS3Storage(ctx, cfg.ObjectStore)
}

// buildDependencies wires together concrete implementations used by the HTTP
// handlers. The returned cleanup drains background work and closes the store.
func buildDependencies(ctx context.Context, store backend, cfg config.Config, logger *slog.Logger) (handlers.Dependencies, func(context.Context) error, error) {
	access, err := token.NewCodec(token.KindAccess, cfg.AccessTokenSecret, cfg.AccessTokenTTL)
	if err != nil {
		return handlers.Dependencies{}, nil, fmt.Errorf("access token codec: %w", err)
	}
	refresh, err := token.NewCodec(token.KindRefresh, cfg.RefreshTokenSecret, cfg.RefreshTokenTTL)
	if err != nil {
		return handlers.Dependencies{}, nil, fmt.Errorf("refresh token codec: %w", err)
	}

	media, err := openMedia(ctx, cfg, logger)
	if err != nil {
		return handlers.Dependencies{}, nil, fmt.Errorf("media storage: %w", err)
	}

	credentials := auth.NewBcryptCredentials()
	recorder := activity.NewRecorder(store.videos, store.users, cfg.ViewRecorder, logger)

	deps := handlers.Dependencies{
		Sessions: auth.NewManager(access, refresh, store.users, store.sessions, credentials),
		Accounts: accounts.Service{Users: store.users, Credentials: credentials, Media: media},
		Views:    views.NewEngine(store.relations),
		Content:  content.Service{Videos: store.videos, Comments: store.comments, Media: media},
		Social: social.Service{
			Likes:         store.likes,
			Subscriptions: store.subscriptions,
			Videos:        store.relations,
			Comments:      store.comments,
			Users:         store.users,
		},
		Recorder:      recorder,
		Store:         store.pinger,
		Authenticator: middleware.Authenticator{Tokens: access, Users: store.users},
		AuthLimiter:   middleware.NewKeyedRateLimiter(cfg.AuthLimit),
		CookieSecure:  cfg.CookieSecure,
	}

	cleanup := func(ctx context.Context) error {
		defer store.close()
		return recorder.Shutdown(ctx)
	}
	return deps, cleanup, nil
}
