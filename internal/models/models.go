package models

import (
	"fmt"
	"strings"
	"time"
)

// User represents an account within the platform. Every user is also a channel.
type User struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
	Email       string    `json:"email"`
	AvatarRef   string    `json:"avatar"`
	CoverRef    string    `json:"coverImage"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Video stores the metadata of an uploaded video. Media references are opaque.
type Video struct {
	ID              string    `json:"id"`
	OwnerID         string    `json:"ownerId"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	MediaRef        string    `json:"videoFile"`
	ThumbnailRef    string    `json:"thumbnail"`
	DurationSeconds float64   `json:"duration"`
	ViewCount       int64     `json:"views"`
	IsPublished     bool      `json:"isPublished"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Comment is a piece of text left on a video.
type Comment struct {
	ID        string    `json:"id"`
	VideoID   string    `json:"videoId"`
	OwnerID   string    `json:"ownerId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Tweet is a short text post owned by a user.
type Tweet struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MaxTweetLength is the maximum number of characters allowed in a tweet.
const MaxTweetLength = 200

// Playlist is an ordered, duplicate-free collection of videos.
type Playlist struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	VideoIDs    []string  `json:"videos"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Contains reports whether videoID is a member of the playlist.
func (p Playlist) Contains(videoID string) bool {
	return p.IndexOf(videoID) >= 0
}

// IndexOf returns the position of videoID in the playlist or -1.
func (p Playlist) IndexOf(videoID string) int {
	for i, id := range p.VideoIDs {
		if id == videoID {
			return i
		}
	}
	return -1
}

// Subscription is the edge between a subscriber and the channel they follow.
type Subscription struct {
	ID           string    `json:"id"`
	SubscriberID string    `json:"subscriberId"`
	ChannelID    string    `json:"channelId"`
	CreatedAt    time.Time `json:"createdAt"`
}

// LikeKind identifies the type of entity a like points at.
type LikeKind string

const (
	LikeKindVideo   LikeKind = "video"
	LikeKindComment LikeKind = "comment"
	LikeKindTweet   LikeKind = "tweet"
)

// ParseLikeKind converts user input into a LikeKind.
func ParseLikeKind(s string) (LikeKind, error) {
	switch kind := LikeKind(strings.ToLower(strings.TrimSpace(s))); kind {
	case LikeKindVideo, LikeKindComment, LikeKindTweet:
		return kind, nil
	default:
		return "", fmt.Errorf("unknown like kind %q", s)
	}
}

// Like is the edge between an actor and the video, comment or tweet they liked.
type Like struct {
	ID        string    `json:"id"`
	ActorID   string    `json:"likedBy"`
	Kind      LikeKind  `json:"kind"`
	TargetID  string    `json:"targetId"`
	CreatedAt time.Time `json:"createdAt"`
}

// OwnerSummary is the public projection of a user embedded in other records.
type OwnerSummary struct {
	ID          string `json:"id,omitempty"`
	Username    string `json:"username"`
	DisplayName string `json:"fullName,omitempty"`
	AvatarRef   string `json:"avatar,omitempty"`
}

// Summary projects the user to its public fields.
func (u User) Summary() OwnerSummary {
	return OwnerSummary{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		AvatarRef:   u.AvatarRef,
	}
}

// VideoSummary is a feed row: the video with its owner reduced to username and avatar.
type VideoSummary struct {
	ID              string       `json:"id"`
	Title           string       `json:"title"`
	Description     string       `json:"description"`
	MediaRef        string       `json:"videoFile"`
	ThumbnailRef    string       `json:"thumbnail"`
	DurationSeconds float64      `json:"duration"`
	ViewCount       int64        `json:"views"`
	IsPublished     bool         `json:"isPublished"`
	CreatedAt       time.Time    `json:"createdAt"`
	Owner           OwnerSummary `json:"owner"`
}

// VideoPage is one page of a feed query.
type VideoPage struct {
	Items      []VideoSummary `json:"videos"`
	Total      int64          `json:"totalVideos"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"totalPages"`
}

// HydratedVideo is a video joined with a projection of its owner.
type HydratedVideo struct {
	Video
	Owner OwnerSummary `json:"owner"`
}

// ChannelProfile is the public view of a channel with its derived subscription figures.
type ChannelProfile struct {
	ID                        string    `json:"id"`
	Username                  string    `json:"username"`
	DisplayName               string    `json:"fullName"`
	Email                     string    `json:"email"`
	AvatarRef                 string    `json:"avatar"`
	CoverRef                  string    `json:"coverImage"`
	CreatedAt                 time.Time `json:"createdAt"`
	SubscribersCount          int64     `json:"subscribersCount"`
	ChannelsSubscribedToCount int64     `json:"channelsSubscribedToCount"`
	IsSubscribed              bool      `json:"isSubscribed"`
}

// SubscriptionCounts groups the subscription figures of a channel read in one snapshot.
type SubscriptionCounts struct {
	Subscribers  int64
	SubscribedTo int64
	IsSubscribed bool
}

// ChannelStats aggregates the content totals of a channel.
type ChannelStats struct {
	ChannelID   string `json:"channelId"`
	TotalVideos int64  `json:"totalVideos"`
	TotalViews  int64  `json:"totalViews"`
	TotalLikes  int64  `json:"totalLikes"`
}

// CommentPage is one page of comments on a video.
type CommentPage struct {
	Items []CommentView `json:"comments"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// CommentView is a comment with its owner projected in.
type CommentView struct {
	Comment
	Owner OwnerSummary `json:"owner"`
}
