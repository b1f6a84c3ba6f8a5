package views

import (
	"time"

	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/models"
)

// OwnerSummary is the public projection of a user joined onto a record.
type OwnerSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Avatar   string `json:"avatar"`
}

func summarize(user models.User) OwnerSummary {
	return OwnerSummary{ID: user.ID, Username: user.Username, FullName: user.FullName, Avatar: user.Avatar}
}

// ChannelSummary is an owner projection with the channel's subscriber state.
type ChannelSummary struct {
	OwnerSummary
	SubscribersCount int64 `json:"subscribersCount"`
	IsSubscribed     bool  `json:"isSubscribed"`
}

// VideoCard is one entry of a video feed.
type VideoCard struct {
	ID          string       `json:"id"`
	VideoFile   string       `json:"videoFile"`
	Thumbnail   string       `json:"thumbnail"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Duration    float64      `json:"duration"`
	Views       int64        `json:"views"`
	IsPublished bool         `json:"isPublished"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	Owner       OwnerSummary `json:"owner"`
	LikesCount  int64        `json:"likesCount"`
	IsLiked     bool         `json:"isLiked"`
}

func newVideoCard(video models.Video, owner models.User) VideoCard {
	return VideoCard{
		ID:          video.ID,
		VideoFile:   video.VideoFile,
		Thumbnail:   video.Thumbnail,
		Title:       video.Title,
		Description: video.Description,
		Duration:    video.Duration,
		Views:       video.Views,
		IsPublished: video.IsPublished,
		CreatedAt:   video.CreatedAt,
		UpdatedAt:   video.UpdatedAt,
		Owner:       summarize(owner),
	}
}

// VideoDetail is a single video with its channel's subscriber state.
type VideoDetail struct {
	VideoCard
	Owner ChannelSummary `json:"owner"`
}

// CommentCard is one entry of a comment feed.
type CommentCard struct {
	ID         string       `json:"id"`
	VideoID    string       `json:"videoId"`
	Content    string       `json:"content"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
	Owner      OwnerSummary `json:"owner"`
	LikesCount int64        `json:"likesCount"`
	IsLiked    bool         `json:"isLiked"`
}

// ChannelProfile is the public page of a user. Email is only filled in for the
// channel's owner.
type ChannelProfile struct {
	ID                        string `json:"id"`
	Username                  string `json:"username"`
	FullName                  string `json:"fullName"`
	Avatar                    string `json:"avatar"`
	CoverImage                string `json:"coverImage"`
	Email                     string `json:"email,omitempty"`
	SubscribersCount          int64  `json:"subscribersCount"`
	ChannelsSubscribedToCount int64  `json:"channelsSubscribedToCount"`
	IsSubscribed              bool   `json:"isSubscribed"`
}
