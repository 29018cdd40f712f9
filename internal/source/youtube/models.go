package youtube

import (
	"time"

	"google.golang.org/api/youtube/v3"

	"yt_harvester/internal/domain"
)

// Resource parts requested per endpoint.
var (
	channelParts  = []string{"snippet", "statistics"}
	playlistParts = []string{"id", "snippet"}
	searchParts   = []string{"id", "snippet"}
	videoParts    = []string{"snippet", "statistics", "contentDetails"}
	commentParts  = []string{"snippet"}
)

// normalizeTimestamp rewrites an API timestamp into domain.WireTimeFormat in UTC.
// Unparseable values become "".
func normalizeTimestamp(raw string) string {
	if raw == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return ""
	}
	return t.UTC().Format(domain.WireTimeFormat)
}

func toChannel(item *youtube.Channel) domain.Channel {
	ch := domain.Channel{ID: item.Id}
	if item.Snippet != nil {
		ch.Name = item.Snippet.Title
		ch.Description = item.Snippet.Description
	}
	if item.Statistics != nil {
		ch.SubscriptionCount = item.Statistics.SubscriberCount
		ch.ViewCount = item.Statistics.ViewCount
	}
	return ch
}

func toPlaylist(channelID string, item *youtube.Playlist) domain.Playlist {
	p := domain.Playlist{ID: item.Id, ChannelID: channelID}
	if item.Snippet != nil {
		p.Title = item.Snippet.Title
		p.Description = item.Snippet.Description
		p.PublishedAt = normalizeTimestamp(item.Snippet.PublishedAt)
	}
	return p
}

// toVideoListing returns false for search results that are not videos.
func toVideoListing(item *youtube.SearchResult) (domain.VideoListing, bool) {
	if item.Id == nil || item.Id.VideoId == "" {
		return domain.VideoListing{}, false
	}
	v := domain.VideoListing{ID: item.Id.VideoId}
	if item.Snippet != nil {
		v.Title = item.Snippet.Title
		v.Description = item.Snippet.Description
		v.PublishedAt = normalizeTimestamp(item.Snippet.PublishedAt)
	}
	return v, true
}

func toVideo(item *youtube.Video) domain.Video {
	v := domain.Video{ID: item.Id}
	if s := item.Snippet; s != nil {
		v.ChannelID = s.ChannelId
		v.Title = s.Title
		v.Description = s.Description
		v.PublishedAt = normalizeTimestamp(s.PublishedAt)
		if s.Thumbnails != nil && s.Thumbnails.Default != nil {
			v.Thumbnail = s.Thumbnails.Default.Url
		}
	}
	if st := item.Statistics; st != nil {
		v.ViewCount = st.ViewCount
		v.LikeCount = st.LikeCount
		v.DislikeCount = st.DislikeCount
		v.FavoriteCount = st.FavoriteCount
		v.CommentCount = st.CommentCount
	}
	if cd := item.ContentDetails; cd != nil {
		v.Duration = cd.Duration
		v.CaptionStatus = cd.Caption
	}
	return v
}

// toComment maps the top-level comment of a thread. Threads without one are skipped.
func toComment(videoID string, item *youtube.CommentThread) (domain.Comment, bool) {
	if item.Snippet == nil || item.Snippet.TopLevelComment == nil || item.Snippet.TopLevelComment.Snippet == nil {
		return domain.Comment{}, false
	}
	s := item.Snippet.TopLevelComment.Snippet
	return domain.Comment{
		ID:          item.Id,
		VideoID:     videoID,
		Text:        s.TextDisplay,
		Author:      s.AuthorDisplayName,
		PublishedAt: normalizeTimestamp(s.PublishedAt),
	}, true
}
