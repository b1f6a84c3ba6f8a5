package memstore

import (
	"context"
	"time"

	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/models"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/repositories"
)

// Videos implements repositories.VideoRepository.
type Videos struct{ s *Store }

// Create stores a new video.
func (v *Videos) Create(ctx context.Context, video models.Video) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	if _, ok := v.s.users[video.OwnerID]; !ok {
		return repositories.ErrNotFound
	}
	if _, ok := v.s.videos[video.ID]; ok {
		return repositories.ErrConflict
	}
	v.s.videos[video.ID] = video
	return nil
}

// FindByID returns the video with the given id.
func (v *Videos) FindByID(ctx context.Context, id string) (models.Video, error) {
	if err := ctx.Err(); err != nil {
		return models.Video{}, err
	}
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()

	video, ok := v.s.videos[id]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	return video, nil
}

// Update overwrites the editable fields of an existing video.
func (v *Videos) Update(ctx context.Context, video models.Video) error {
	return v.mutate(ctx, video.ID, func(current *models.Video) {
		current.Title = video.Title
		current.Description = video.Description
		current.Thumbnail = video.Thumbnail
		current.UpdatedAt = video.UpdatedAt
	})
}

// SetPublished flips the publication flag.
func (v *Videos) SetPublished(ctx context.Context, id string, published bool, updatedAt time.Time) error {
	return v.mutate(ctx, id, func(current *models.Video) {
		current.IsPublished = published
		current.UpdatedAt = updatedAt
	})
}

// IncrementViews adds one view to the video.
func (v *Videos) IncrementViews(ctx context.Context, id string) error {
	return v.mutate(ctx, id, func(current *models.Video) { current.Views++ })
}

func (v *Videos) mutate(ctx context.Context, id string, fn func(*models.Video)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	video, ok := v.s.videos[id]
	if !ok {
		return repositories.ErrNotFound
	}
	fn(&video)
	v.s.videos[id] = video
	return nil
}

// DeleteCascade removes the video with its comments, likes and history entries.
func (v *Videos) DeleteCascade(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	if _, ok := v.s.videos[id]; !ok {
		return repositories.ErrNotFound
	}
	for commentID, comment := range v.s.comments {
		if comment.VideoID == id {
			v.s.deleteLikesLocked(models.CommentTarget(commentID))
			delete(v.s.comments, commentID)
		}
	}
	v.s.deleteLikesLocked(models.VideoTarget(id))
	for key := range v.s.history {
		if key.video == id {
			delete(v.s.history, key)
		}
	}
	delete(v.s.videos, id)
	return nil
}

func (s *Store) deleteLikesLocked(target models.LikeTarget) {
	for key := range s.likes {
		if key.target == target {
			delete(s.likes, key)
		}
	}
}

// Comments implements repositories.CommentRepository.
type Comments struct{ s *Store }

// Create stores a new comment on an existing video.
func (c *Comments) Create(ctx context.Context, comment models.Comment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	if _, ok := c.s.videos[comment.VideoID]; !ok {
		return repositories.ErrNotFound
	}
	if _, ok := c.s.users[comment.OwnerID]; !ok {
		return repositories.ErrNotFound
	}
	c.s.comments[comment.ID] = comment
	return nil
}

// FindByID returns the comment with the given id.
func (c *Comments) FindByID(ctx context.Context, id string) (models.Comment, error) {
	if err := ctx.Err(); err != nil {
		return models.Comment{}, err
	}
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()

	comment, ok := c.s.comments[id]
	if !ok {
		return models.Comment{}, repositories.ErrNotFound
	}
	return comment, nil
}

// UpdateContent replaces the comment body.
func (c *Comments) UpdateContent(ctx context.Context, id, content string, updatedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	comment, ok := c.s.comments[id]
	if !ok {
		return repositories.ErrNotFound
	}
	comment.Content = content
	comment.UpdatedAt = updatedAt
	c.s.comments[id] = comment
	return nil
}

// DeleteCascade removes the comment and the likes on it.
func (c *Comments) DeleteCascade(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	if _, ok := c.s.comments[id]; !ok {
		return repositories.ErrNotFound
	}
	c.s.deleteLikesLocked(models.CommentTarget(id))
	delete(c.s.comments, id)
	return nil
}

// Likes implements repositories.LikeRepository.
type Likes struct{ s *Store }

// HasLike reports whether likerID likes target.
func (l *Likes) HasLike(ctx context.Context, likerID string, target models.LikeTarget) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()

	_, ok := l.s.likes[likeKey{liker: likerID, target: target}]
	return ok, nil
}

// InsertLike adds the like unless it already exists. It reports whether it was added.
func (l *Likes) InsertLike(ctx context.Context, like models.Like) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	l.s.mu.Lock()
	defer l.s.mu.Unlock()

	if !l.s.targetExistsLocked(like.Target) {
		return false, repositories.ErrNotFound
	}
	key := likeKey{liker: like.LikedBy, target: like.Target}
	if _, ok := l.s.likes[key]; ok {
		return false, nil
	}
	l.s.likes[key] = like
	return true, nil
}

// DeleteLike removes the like. It reports whether one existed.
func (l *Likes) DeleteLike(ctx context.Context, likerID string, target models.LikeTarget) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	l.s.mu.Lock()
	defer l.s.mu.Unlock()

	key := likeKey{liker: likerID, target: target}
	if _, ok := l.s.likes[key]; !ok {
		return false, nil
	}
	delete(l.s.likes, key)
	return true, nil
}

func (s *Store) targetExistsLocked(target models.LikeTarget) bool {
	switch target.Kind {
	case models.TargetVideo:
		_, ok := s.videos[target.ID]
		return ok
	case models.TargetComment:
		_, ok := s.comments[target.ID]
		return ok
	default:
		return false
	}
}

// Subscriptions implements repositories.SubscriptionRepository.
type Subscriptions struct{ s *Store }

// HasSubscription reports whether subscriberID follows channelID.
func (r *Subscriptions) HasSubscription(ctx context.Context, subscriberID, channelID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.subscriptions[subscriptionKey{subscriber: subscriberID, channel: channelID}]
	return ok, nil
}

// InsertSubscription adds the subscription unless it already exists.
func (r *Subscriptions) InsertSubscription(ctx context.Context, subscription models.Subscription) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[subscription.ChannelID]; !ok {
		return false, repositories.ErrNotFound
	}
	if _, ok := r.s.users[subscription.SubscriberID]; !ok {
		return false, repositories.ErrNotFound
	}
	key := subscriptionKey{subscriber: subscription.SubscriberID, channel: subscription.ChannelID}
	if _, ok := r.s.subscriptions[key]; ok {
		return false, nil
	}
	r.s.subscriptions[key] = subscription
	return true, nil
}

// DeleteSubscription removes the subscription. It reports whether one existed.
func (r *Subscriptions) DeleteSubscription(ctx context.Context, subscriberID, channelID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := subscriptionKey{subscriber: subscriberID, channel: channelID}
	if _, ok := r.s.subscriptions[key]; !ok {
		return false, nil
	}
	delete(r.s.subscriptions, key)
	return true, nil
}
