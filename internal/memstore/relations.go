package memstore

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/models"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/pagination"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/repositories"
)

// Relations implements repositories.RelationReader.
type Relations struct{ s *Store }

func compareVideos(sort pagination.Sort) func(a, b models.Video) int {
	return func(a, b models.Video) int {
		var c int
		switch sort.Field {
		case pagination.SortViews:
			c = cmp.Compare(a.Views, b.Views)
		case pagination.SortDuration:
			c = cmp.Compare(a.Duration, b.Duration)
		default:
			c = a.CreatedAt.Compare(b.CreatedAt)
		}
		if sort.Direction != pagination.Asc {
			c = -c
		}
		if c != 0 {
			return c
		}
		if c = b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	}
}

func window[T any](items []T, w pagination.Window) []T {
	if w.Offset < 0 || w.Offset >= len(items) {
		return []T{}
	}
	end := min(w.Offset+w.Limit, len(items))
	return slices.Clone(items[w.Offset:end])
}

// FilterVideos returns one window of the videos visible under filter, with the total.
func (r *Relations) FilterVideos(ctx context.Context, filter repositories.VideoFilter, w pagination.Window) ([]models.Video, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var matched []models.Video
	for _, video := range r.s.videos {
		if !video.VisibleTo(filter.ViewerID) {
			continue
		}
		if filter.OwnerID != "" && video.OwnerID != filter.OwnerID {
			continue
		}
		if !repositories.MatchesQuery(video, filter.Query) {
			continue
		}
		matched = append(matched, video)
	}
	slices.SortFunc(matched, compareVideos(w.Sort))
	return window(matched, w), int64(len(matched)), nil
}

type stamped struct {
	video models.Video
	at    time.Time
}

func (r *Relations) stampedWindow(items []stamped, w pagination.Window) ([]models.Video, int64) {
	slices.SortFunc(items, func(a, b stamped) int {
		if c := b.at.Compare(a.at); c != 0 {
			return c
		}
		return cmp.Compare(a.video.ID, b.video.ID)
	})
	videos := make([]models.Video, 0, len(items))
	for _, item := range items {
		videos = append(videos, item.video)
	}
	return window(videos, w), int64(len(videos))
}

// FilterLikedVideos returns the videos userID liked, most recent like first.
func (r *Relations) FilterLikedVideos(ctx context.Context, userID string, w pagination.Window) ([]models.Video, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var items []stamped
	for key, like := range r.s.likes {
		if key.liker != userID || key.target.Kind != models.TargetVideo {
			continue
		}
		video, ok := r.s.videos[key.target.ID]
		if !ok || !video.VisibleTo(userID) {
			continue
		}
		items = append(items, stamped{video: video, at: like.CreatedAt})
	}
	videos, total := r.stampedWindow(items, w)
	return videos, total, nil
}

// FilterWatchHistory returns userID's watched videos, most recent first.
func (r *Relations) FilterWatchHistory(ctx context.Context, userID string, w pagination.Window) ([]models.Video, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var items []stamped
	for key, watchedAt := range r.s.history {
		if key.user != userID {
			continue
		}
		video, ok := r.s.videos[key.video]
		if !ok || !video.VisibleTo(userID) {
			continue
		}
		items = append(items, stamped{video: video, at: watchedAt})
	}
	videos, total := r.stampedWindow(items, w)
	return videos, total, nil
}

// FindVideo returns the video with the given id.
func (r *Relations) FindVideo(ctx context.Context, id string) (models.Video, error) {
	return r.s.Videos().FindByID(ctx, id)
}

// FindUserByUsername returns the user with the given username.
func (r *Relations) FindUserByUsername(ctx context.Context, username string) (models.User, error) {
	return r.s.Users().FindByUsername(ctx, username)
}

// FilterComments returns one window of a video's comments, newest first.
func (r *Relations) FilterComments(ctx context.Context, videoID string, w pagination.Window) ([]models.Comment, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var matched []models.Comment
	for _, comment := range r.s.comments {
		if comment.VideoID == videoID {
			matched = append(matched, comment)
		}
	}
	slices.SortFunc(matched, func(a, b models.Comment) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return window(matched, w), int64(len(matched)), nil
}

// Owners resolves user ids to users.
func (r *Relations) Owners(ctx context.Context, ids []string) (map[string]models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	owners := make(map[string]models.User, len(ids))
	for _, id := range ids {
		if user, ok := r.s.users[id]; ok {
			owners[id] = user
		}
	}
	return owners, nil
}

// CountLikes counts likes per target id.
func (r *Relations) CountLikes(ctx context.Context, kind models.TargetKind, ids []string) (map[string]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	wanted := setOf(ids)
	counts := make(map[string]int64, len(ids))
	for key := range r.s.likes {
		if key.target.Kind == kind && wanted[key.target.ID] {
			counts[key.target.ID]++
		}
	}
	return counts, nil
}

// LikedBy reports which of ids viewerID likes.
func (r *Relations) LikedBy(ctx context.Context, viewerID string, kind models.TargetKind, ids []string) (map[string]bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	liked := make(map[string]bool, len(ids))
	if viewerID == "" {
		return liked, nil
	}
	for _, id := range ids {
		if _, ok := r.s.likes[likeKey{liker: viewerID, target: models.LikeTarget{Kind: kind, ID: id}}]; ok {
			liked[id] = true
		}
	}
	return liked, nil
}

// CountSubscribers counts subscribers per channel id.
func (r *Relations) CountSubscribers(ctx context.Context, channelIDs []string) (map[string]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	wanted := setOf(channelIDs)
	counts := make(map[string]int64, len(channelIDs))
	for key := range r.s.subscriptions {
		if wanted[key.channel] {
			counts[key.channel]++
		}
	}
	return counts, nil
}

// SubscribedBy reports which of channelIDs viewerID follows.
func (r *Relations) SubscribedBy(ctx context.Context, viewerID string, channelIDs []string) (map[string]bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	subscribed := make(map[string]bool, len(channelIDs))
	if viewerID == "" {
		return subscribed, nil
	}
	for _, id := range channelIDs {
		if _, ok := r.s.subscriptions[subscriptionKey{subscriber: viewerID, channel: id}]; ok {
			subscribed[id] = true
		}
	}
	return subscribed, nil
}

// CountSubscriptions counts the channels subscriberID follows.
func (r *Relations) CountSubscriptions(ctx context.Context, subscriberID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var total int64
	for key := range r.s.subscriptions {
		if key.subscriber == subscriberID {
			total++
		}
	}
	return total, nil
}

func setOf(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
