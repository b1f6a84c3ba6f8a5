package repositories

import (
	"context"
	"strings"

	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/models"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/pagination"
)

// RelationReader is the query/aggregate capability behind the feed views.
// Filter methods return one window of base records plus the total number of
// matching records. Batch methods key their results by record ID and omit
// IDs with no matches.
type RelationReader interface {
	// FilterVideos honours window.Sort; ties fall back to newest first, then ID.
	FilterVideos(ctx context.Context, filter VideoFilter, window pagination.Window) ([]models.Video, int64, error)
	FindVideo(ctx context.Context, id string) (models.Video, error)
	FindUserByUsername(ctx context.Context, username string) (models.User, error)
	// FilterComments lists a video's comments newest first.
	FilterComments(ctx context.Context, videoID string, window pagination.Window) ([]models.Comment, int64, error)
	// FilterLikedVideos lists videos userID liked, most recently liked first.
	FilterLikedVideos(ctx context.Context, userID string, window pagination.Window) ([]models.Video, int64, error)
	// FilterWatchHistory lists videos userID watched, most recently watched first.
	FilterWatchHistory(ctx context.Context, userID string, window pagination.Window) ([]models.Video, int64, error)

	Owners(ctx context.Context, ids []string) (map[string]models.User, error)
	CountLikes(ctx context.Context, kind models.TargetKind, ids []string) (map[string]int64, error)
	LikedBy(ctx context.Context, viewerID string, kind models.TargetKind, ids []string) (map[string]bool, error)
	CountSubscribers(ctx context.Context, channelIDs []string) (map[string]int64, error)
	SubscribedBy(ctx context.Context, viewerID string, channelIDs []string) (map[string]bool, error)
	CountSubscriptions(ctx context.Context, subscriberID string) (int64, error)
}

// MatchesQuery reports whether the video's title or description contains
// query, ignoring case.
func MatchesQuery(video models.Video, query string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(video.Title), query) ||
		strings.Contains(strings.ToLower(video.Description), query)
}
