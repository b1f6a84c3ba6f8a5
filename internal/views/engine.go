// Package views composes paginated, viewer-relative projections from the
// normalized relations. Every step runs against the store at query time.
package views

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/logging"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/models"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/pagination"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/repositories"
)

// Engine builds feed projections. A viewer ID of "" is the anonymous viewer.
type Engine struct {
	relations repositories.RelationReader
}

// NewEngine constructs an Engine over the relation reader.
func NewEngine(relations repositories.RelationReader) *Engine {
	if relations == nil {
		panic("views: relation reader must not be nil")
	}
	return &Engine{relations: relations}
}

// VideoQuery selects a video feed.
type VideoQuery struct {
	Query   string
	OwnerID string
	Sort    pagination.Sort
	Page    pagination.Request
}

// ListVideos returns one page of videos visible to the viewer.
func (e *Engine) ListVideos(ctx context.Context, viewerID string, q VideoQuery) (page pagination.Page[VideoCard], err error) {
	ctx, span := logging.StartSpan(ctx, "views.list_videos")
	defer func() { span.End(err) }()

	if q.Sort == (pagination.Sort{}) {
		q.Sort = pagination.NewestFirst
	}
	req := pagination.Normalize(q.Page.Page, q.Page.Limit)
	filter := repositories.VideoFilter{Query: strings.TrimSpace(q.Query), OwnerID: q.OwnerID, ViewerID: viewerID}

	videos, total, err := e.relations.FilterVideos(ctx, filter, req.Window(q.Sort))
	if err != nil {
		return pagination.Page[VideoCard]{}, fmt.Errorf("filter videos: %w", err)
	}

	cards, err := e.videoCards(ctx, viewerID, videos)
	if err != nil {
		return pagination.Page[VideoCard]{}, err
	}
	return pagination.NewPage(cards, total, req), nil
}

// ListLikedVideos returns the viewer's liked videos, most recently liked first.
func (e *Engine) ListLikedVideos(ctx context.Context, viewerID string, req pagination.Request) (page pagination.Page[VideoCard], err error) {
	ctx, span := logging.StartSpan(ctx, "views.list_liked_videos")
	defer func() { span.End(err) }()

	req = pagination.Normalize(req.Page, req.Limit)
	videos, total, err := e.relations.FilterLikedVideos(ctx, viewerID, req.Window(pagination.NewestFirst))
	if err != nil {
		return pagination.Page[VideoCard]{}, fmt.Errorf("filter liked videos: %w", err)
	}

	cards, err := e.videoCards(ctx, viewerID, videos)
	if err != nil {
		return pagination.Page[VideoCard]{}, err
	}
	return pagination.NewPage(cards, total, req), nil
}

// WatchHistory returns the viewer's watched videos, most recent first.
func (e *Engine) WatchHistory(ctx context.Context, viewerID string, req pagination.Request) (page pagination.Page[VideoCard], err error) {
	ctx, span := logging.StartSpan(ctx, "views.watch_history")
	defer func() { span.End(err) }()

	req = pagination.Normalize(req.Page, req.Limit)
	videos, total, err := e.relations.FilterWatchHistory(ctx, viewerID, req.Window(pagination.NewestFirst))
	if err != nil {
		return pagination.Page[VideoCard]{}, fmt.Errorf("filter watch history: %w", err)
	}

	cards, err := e.videoCards(ctx, viewerID, videos)
	if err != nil {
		return pagination.Page[VideoCard]{}, err
	}
	return pagination.NewPage(cards, total, req), nil
}

// GetVideo returns a single video with its channel's subscriber state.
// Videos the viewer may not see are reported as not found.
func (e *Engine) GetVideo(ctx context.Context, viewerID, videoID string) (detail VideoDetail, err error) {
	ctx, span := logging.StartSpan(ctx, "views.get_video")
	defer func() { span.End(err) }()

	video, err := e.visibleVideo(ctx, viewerID, videoID)
	if err != nil {
		return VideoDetail{}, err
	}

	cards, err := e.videoCards(ctx, viewerID, []models.Video{video})
	if err != nil {
		return VideoDetail{}, err
	}

	channel, err := e.channelSummary(ctx, viewerID, cards[0].Owner)
	if err != nil {
		return VideoDetail{}, err
	}

	return VideoDetail{VideoCard: cards[0], Owner: channel}, nil
}

// ListComments returns one page of a visible video's comments, newest first.
func (e *Engine) ListComments(ctx context.Context, viewerID, videoID string, req pagination.Request) (page pagination.Page[CommentCard], err error) {
	ctx, span := logging.StartSpan(ctx, "views.list_comments")
	defer func() { span.End(err) }()

	if _, err := e.visibleVideo(ctx, viewerID, videoID); err != nil {
		return pagination.Page[CommentCard]{}, err
	}

	req = pagination.Normalize(req.Page, req.Limit)
	comments, total, err := e.relations.FilterComments(ctx, videoID, req.Window(pagination.NewestFirst))
	if err != nil {
		return pagination.Page[CommentCard]{}, fmt.Errorf("filter comments: %w", err)
	}

	ids := make([]string, len(comments))
	ownerIDs := make([]string, len(comments))
	for i, comment := range comments {
		ids[i] = comment.ID
		ownerIDs[i] = comment.OwnerID
	}

	decor, err := e.decorate(ctx, viewerID, models.TargetComment, ids, ownerIDs)
	if err != nil {
		return pagination.Page[CommentCard]{}, err
	}

	cards := make([]CommentCard, 0, len(comments))
	for _, comment := range comments {
		cards = append(cards, CommentCard{
			ID:         comment.ID,
			VideoID:    comment.VideoID,
			Content:    comment.Content,
			CreatedAt:  comment.CreatedAt,
			UpdatedAt:  comment.UpdatedAt,
			Owner:      summarize(decor.owners[comment.OwnerID]),
			LikesCount: decor.likes[comment.ID],
			IsLiked:    decor.liked[comment.ID],
		})
	}
	return pagination.NewPage(cards, total, req), nil
}

// ChannelProfile returns the public page of the channel named username.
func (e *Engine) ChannelProfile(ctx context.Context, viewerID, username string) (profile ChannelProfile, err error) {
	ctx, span := logging.StartSpan(ctx, "views.channel_profile")
	defer func() { span.End(err) }()

	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return ChannelProfile{}, fmt.Errorf("channel %q: %w", username, repositories.ErrNotFound)
	}

	user, err := e.relations.FindUserByUsername(ctx, username)
	if err != nil {
		return ChannelProfile{}, fmt.Errorf("find channel: %w", err)
	}

	channel, err := e.channelSummary(ctx, viewerID, summarize(user))
	if err != nil {
		return ChannelProfile{}, err
	}

	subscribedTo, err := e.relations.CountSubscriptions(ctx, user.ID)
	if err != nil {
		return ChannelProfile{}, fmt.Errorf("count subscriptions: %w", err)
	}

	profile = ChannelProfile{
		ID:                        user.ID,
		Username:                  user.Username,
		FullName:                  user.FullName,
		Avatar:                    user.Avatar,
		CoverImage:                user.CoverImage,
		SubscribersCount:          channel.SubscribersCount,
		ChannelsSubscribedToCount: subscribedTo,
		IsSubscribed:              channel.IsSubscribed,
	}
	if viewerID != "" && viewerID == user.ID {
		profile.Email = user.Email
	}
	return profile, nil
}

func (e *Engine) visibleVideo(ctx context.Context, viewerID, videoID string) (models.Video, error) {
	video, err := e.relations.FindVideo(ctx, videoID)
	if err != nil {
		return models.Video{}, fmt.Errorf("find video: %w", err)
	}
	if !video.VisibleTo(viewerID) {
		return models.Video{}, fmt.Errorf("video %s: %w", videoID, repositories.ErrNotFound)
	}
	return video, nil
}

func (e *Engine) videoCards(ctx context.Context, viewerID string, videos []models.Video) ([]VideoCard, error) {
	ids := make([]string, len(videos))
	ownerIDs := make([]string, len(videos))
	for i, video := range videos {
		ids[i] = video.ID
		ownerIDs[i] = video.OwnerID
	}

	decor, err := e.decorate(ctx, viewerID, models.TargetVideo, ids, ownerIDs)
	if err != nil {
		return nil, err
	}

	cards := make([]VideoCard, 0, len(videos))
	for _, video := range videos {
		card := newVideoCard(video, decor.owners[video.OwnerID])
		card.LikesCount = decor.likes[video.ID]
		card.IsLiked = decor.liked[video.ID]
		cards = append(cards, card)
	}
	return cards, nil
}

func (e *Engine) channelSummary(ctx context.Context, viewerID string, owner OwnerSummary) (ChannelSummary, error) {
	var (
		counts     map[string]int64
		subscribed map[string]bool
	)
	channelIDs := []string{owner.ID}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		counts, err = e.relations.CountSubscribers(gctx, channelIDs)
		if err != nil {
			return fmt.Errorf("count subscribers: %w", err)
		}
		return nil
	})
	if viewerID != "" {
		g.Go(func() error {
			var err error
			subscribed, err = e.relations.SubscribedBy(gctx, viewerID, channelIDs)
			if err != nil {
				return fmt.Errorf("select viewer subscriptions: %w", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ChannelSummary{}, err
	}

	return ChannelSummary{
		OwnerSummary:     owner,
		SubscribersCount: counts[owner.ID],
		IsSubscribed:     subscribed[owner.ID],
	}, nil
}

// decoration holds the joined owners, like counts and viewer flags of a page.
type decoration struct {
	owners map[string]models.User
	likes  map[string]int64
	liked  map[string]bool
}

// decorate joins one page of records to their owners and like edges. Viewer
// flags are only looked up for a signed-in viewer.
func (e *Engine) decorate(ctx context.Context, viewerID string, kind models.TargetKind, ids, ownerIDs []string) (decoration, error) {
	var d decoration
	if len(ids) == 0 {
		return d, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		d.owners, err = e.relations.Owners(gctx, unique(ownerIDs))
		if err != nil {
			return fmt.Errorf("join owners: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		d.likes, err = e.relations.CountLikes(gctx, kind, ids)
		if err != nil {
			return fmt.Errorf("count likes: %w", err)
		}
		return nil
	})
	if viewerID != "" {
		g.Go(func() error {
			var err error
			d.liked, err = e.relations.LikedBy(gctx, viewerID, kind, ids)
			if err != nil {
				return fmt.Errorf("select viewer likes: %w", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return decoration{}, err
	}
	return d, nil
}

func unique(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
