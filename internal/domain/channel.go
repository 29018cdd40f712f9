package domain

// WireTimeFormat is the layout every timestamp carries between the API and the store.
const WireTimeFormat = "2006-01-02T15:04:05Z07:00"

type Channel struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	SubscriptionCount uint64 `json:"subscription_count"`
	ViewCount         uint64 `json:"view_count"`
	Description       string `json:"description"`
}

type Playlist struct {
	ID          string `json:"id"`
	ChannelID   string `json:"channel_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	PublishedAt string `json:"published_at"`
}

// VideoListing is the basic metadata returned by a channel search.
type VideoListing struct {
	ID          string
	Title       string
	Description string
	PublishedAt string
}

type Video struct {
	ID            string `json:"id"`
	ChannelID     string `json:"channel_id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	PublishedAt   string `json:"published_at"`
	ViewCount     uint64 `json:"view_count"`
	LikeCount     uint64 `json:"like_count"`
	DislikeCount  uint64 `json:"dislike_count"`
	FavoriteCount uint64 `json:"favorite_count"`
	CommentCount  uint64 `json:"comment_count"`
	Duration      string `json:"duration"` // raw ISO-8601, e.g. PT4M13S
	Thumbnail     string `json:"thumbnail"`
	CaptionStatus string `json:"caption_status"`
}

type Comment struct {
	ID          string `json:"id"`
	VideoID     string `json:"video_id"`
	Text        string `json:"text"`
	Author      string `json:"author"`
	PublishedAt string `json:"published_at"`
}
