// Package memstore is an in-process implementation of every repository
// interface. It backs tests and the memory:// development mode and follows the
// same ordering and cascade rules as the PostgreSQL repositories.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/models"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/repositories"
)

type subscriptionKey struct {
	subscriber string
	channel    string
}

type likeKey struct {
	liker  string
	target models.LikeTarget
}

type watchKey struct {
	user  string
	video string
}

// Store holds all relations behind one lock.
type Store struct {
	mu            sync.RWMutex
	users         map[string]models.User
	videos        map[string]models.Video
	comments      map[string]models.Comment
	likes         map[likeKey]models.Like
	subscriptions map[subscriptionKey]models.Subscription
	history       map[watchKey]time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		users:         make(map[string]models.User),
		videos:        make(map[string]models.Video),
		comments:      make(map[string]models.Comment),
		likes:         make(map[likeKey]models.Like),
		subscriptions: make(map[subscriptionKey]models.Subscription),
		history:       make(map[watchKey]time.Time),
	}
}

// Ping always succeeds unless ctx is done.
func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

// Users returns the user repository view of the store.
func (s *Store) Users() *Users { return &Users{s} }

// Sessions returns the refresh-token store view of the store.
func (s *Store) Sessions() *Sessions { return &Sessions{s} }

// Videos returns the video repository view of the store.
func (s *Store) Videos() *Videos { return &Videos{s} }

// Comments returns the comment repository view of the store.
func (s *Store) Comments() *Comments { return &Comments{s} }

// Likes returns the like repository view of the store.
func (s *Store) Likes() *Likes { return &Likes{s} }

// Subscriptions returns the subscription repository view of the store.
func (s *Store) Subscriptions() *Subscriptions { return &Subscriptions{s} }

// Relations returns the feed query view of the store.
func (s *Store) Relations() *Relations { return &Relations{s} }

var (
	_ repositories.UserRepository         = (*Users)(nil)
	_ repositories.SessionRepository      = (*Sessions)(nil)
	_ repositories.VideoRepository        = (*Videos)(nil)
	_ repositories.CommentRepository      = (*Comments)(nil)
	_ repositories.LikeRepository         = (*Likes)(nil)
	_ repositories.SubscriptionRepository = (*Subscriptions)(nil)
	_ repositories.RelationReader         = (*Relations)(nil)
)
