package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"yt_harvester/internal/domain"
	"yt_harvester/internal/pagination"
)

// videoBatchSize is the number of ids sent per videos request.
const videoBatchSize = 50

// Harvester builds a Snapshot of one channel with sequential API calls.
type Harvester struct {
	api      VideoAPI
	maxPages int
	logger   *slog.Logger
}

func NewHarvester(api VideoAPI, maxPages int, logger *slog.Logger) *Harvester {
	return &Harvester{
		api:      api,
		maxPages: maxPages,
		logger:   logger.With("component", "harvester"),
	}
}

// HarvestChannel fetches the profile, playlists, videos and comments of a channel.
// Any failure before the comment stage aborts the harvest. Comment failures only
// empty the comments of the affected video.
func (h *Harvester) HarvestChannel(ctx context.Context, channelID string) (*domain.Snapshot, error) {
	startTime := time.Now()
	logger := h.logger.With("channel_id", channelID)
	logger.Info("starting harvest")

	channel, err := h.api.GetChannel(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("get channel: %w", err)
	}

	playlists, err := pagination.FetchAll(ctx, h.maxPages, func(ctx context.Context, token string) (pagination.Page[domain.Playlist], error) {
		return h.api.ListPlaylists(ctx, channel.ID, token)
	})
	if err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}
	for i := range playlists {
		playlists[i].ChannelID = channel.ID
	}
	logger.Debug("fetched playlists", "count", len(playlists))

	listings, err := pagination.FetchAll(ctx, h.maxPages, func(ctx context.Context, token string) (pagination.Page[domain.VideoListing], error) {
		return h.api.SearchVideos(ctx, channel.ID, token)
	})
	if err != nil {
		return nil, fmt.Errorf("search videos: %w", err)
	}
	ids := uniqueVideoIDs(listings)
	logger.Debug("discovered videos", "listed", len(listings), "unique", len(ids))

	videos, err := h.fetchVideoDetails(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get video details: %w", err)
	}
	for i := range videos {
		videos[i].ChannelID = channel.ID
	}

	var comments []domain.Comment
	failed := 0
	for _, v := range videos {
		res := h.fetchComments(ctx, v.ID)
		if res.Err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			failed++
			logger.Warn("comments unavailable, continuing without them",
				"video_id", v.ID,
				"error", res.Err,
			)
			continue
		}
		comments = append(comments, res.Comments...)
	}

	snapshot := &domain.Snapshot{
		Channel:    *channel,
		Videos:     videos,
		Comments:   comments,
		Playlists:  playlists,
		CapturedAt: time.Now().UTC(),
	}

	logger.Info("harvest completed",
		"playlists", len(playlists),
		"videos", len(videos),
		"comments", len(comments),
		"comment_failures", failed,
		"duration", time.Since(startTime),
	)

	return snapshot, nil
}

// fetchVideoDetails requests ids in batches and concatenates the results in batch order.
func (h *Harvester) fetchVideoDetails(ctx context.Context, ids []string) ([]domain.Video, error) {
	var videos []domain.Video
	for start := 0; start < len(ids); start += videoBatchSize {
		end := min(start+videoBatchSize, len(ids))

		batch, err := h.api.GetVideos(ctx, ids[start:end])
		if err != nil {
			return nil, fmt.Errorf("batch %d-%d: %w", start, end, err)
		}
		videos = append(videos, batch...)

		h.logger.Debug("fetched video batch", "from", start, "to", end, "returned", len(batch))
	}
	return videos, nil
}

// commentsResult pairs a comment fetch failure with its empty outcome.
type commentsResult struct {
	Comments []domain.Comment
	Err      error
}

func (h *Harvester) fetchComments(ctx context.Context, videoID string) commentsResult {
	comments, err := pagination.FetchAll(ctx, h.maxPages, func(ctx context.Context, token string) (pagination.Page[domain.Comment], error) {
		return h.api.ListCommentThreads(ctx, videoID, token)
	})
	if err != nil {
		return commentsResult{Err: err}
	}
	for i := range comments {
		comments[i].VideoID = videoID
	}
	return commentsResult{Comments: comments}
}

func uniqueVideoIDs(listings []domain.VideoListing) []string {
	seen := make(map[string]struct{}, len(listings))
	ids := make([]string, 0, len(listings))
	for _, l := range listings {
		if _, ok := seen[l.ID]; ok {
			continue
		}
		seen[l.ID] = struct{}{}
		ids = append(ids, l.ID)
	}
	return ids
}
