// Package youtube talks to the YouTube Data API v3 and maps its resources onto domain records.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"yt_harvester/internal/domain"
	"yt_harvester/internal/pagination"
)

const (
	SourceID = "youtube"

	PlaylistPageSize = 50
	SearchPageSize   = 50
	CommentPageSize  = 100
	// MaxVideoIDsPerCall is the id-list ceiling of videos.list.
	MaxVideoIDsPerCall = 50
)

// Config holds YouTube client configuration.
type Config struct {
	APIKey            string
	Endpoint          string
	HTTPClient        *http.Client
	Timeout           time.Duration
	RequestsPerSecond float64
	MaxAttempts       int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
}

// Client implements the remote API operations the harvester needs.
// Every call waits on a shared token bucket and is retried with exponential backoff.
type Client struct {
	service        *youtube.Service
	limiter        *rate.Limiter
	timeout        time.Duration
	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	logger         *slog.Logger
}

// New creates a client bound to cfg.APIKey.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	var opts []option.ClientOption
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	} else {
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("api key required")
		}
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}

	return &Client{
		service:        service,
		limiter:        rate.NewLimiter(limit, 1),
		timeout:        cfg.Timeout,
		maxAttempts:    cfg.MaxAttempts,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		logger:         logger.With("source", SourceID),
	}, nil
}

// GetChannel fetches the channel profile with its statistics.
func (c *Client) GetChannel(ctx context.Context, channelID string) (*domain.Channel, error) {
	var resp *youtube.ChannelListResponse
	err := c.call(ctx, "channel", func(ctx context.Context) error {
		var err error
		resp, err = c.service.Channels.List(channelParts).Id(channelID).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, &domain.FetchError{Resource: "channel", Key: channelID, Err: err}
	}

	if len(resp.Items) != 1 {
		return nil, fmt.Errorf("%w: %q resolved to %d profiles", domain.ErrChannelNotFound, channelID, len(resp.Items))
	}

	ch := toChannel(resp.Items[0])
	return &ch, nil
}

// ListPlaylists returns one page of the channel's playlists.
func (c *Client) ListPlaylists(ctx context.Context, channelID, pageToken string) (pagination.Page[domain.Playlist], error) {
	var resp *youtube.PlaylistListResponse
	err := c.call(ctx, "playlists", func(ctx context.Context) error {
		var err error
		resp, err = c.service.Playlists.List(playlistParts).
			ChannelId(channelID).
			MaxResults(PlaylistPageSize).
			PageToken(pageToken).
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return pagination.Page[domain.Playlist]{}, &domain.FetchError{Resource: "playlists", Key: channelID, Err: err}
	}

	page := pagination.Page[domain.Playlist]{NextPageToken: resp.NextPageToken}
	for _, item := range resp.Items {
		page.Items = append(page.Items, toPlaylist(channelID, item))
	}
	return page, nil
}

// SearchVideos returns one page of the channel's videos from the search listing.
func (c *Client) SearchVideos(ctx context.Context, channelID, pageToken string) (pagination.Page[domain.VideoListing], error) {
	var resp *youtube.SearchListResponse
	err := c.call(ctx, "search", func(ctx context.Context) error {
		var err error
		resp, err = c.service.Search.List(searchParts).
			ChannelId(channelID).
			Type("video").
			MaxResults(SearchPageSize).
			PageToken(pageToken).
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return pagination.Page[domain.VideoListing]{}, &domain.FetchError{Resource: "search", Key: channelID, Err: err}
	}

	page := pagination.Page[domain.VideoListing]{NextPageToken: resp.NextPageToken}
	for _, item := range resp.Items {
		if v, ok := toVideoListing(item); ok {
			page.Items = append(page.Items, v)
		}
	}
	return page, nil
}

// GetVideos fetches statistics and content details for up to MaxVideoIDsPerCall ids.
func (c *Client) GetVideos(ctx context.Context, ids []string) ([]domain.Video, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > MaxVideoIDsPerCall {
		return nil, fmt.Errorf("get videos: %d ids exceeds limit of %d", len(ids), MaxVideoIDsPerCall)
	}

	var resp *youtube.VideoListResponse
	err := c.call(ctx, "videos", func(ctx context.Context) error {
		var err error
		resp, err = c.service.Videos.List(videoParts).Id(ids...).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, &domain.FetchError{Resource: "videos", Key: strings.Join(ids, ","), Err: err}
	}

	videos := make([]domain.Video, 0, len(resp.Items))
	for _, item := range resp.Items {
		videos = append(videos, toVideo(item))
	}
	return videos, nil
}

// ListCommentThreads returns one page of top-level comments for a video.
func (c *Client) ListCommentThreads(ctx context.Context, videoID, pageToken string) (pagination.Page[domain.Comment], error) {
	var resp *youtube.CommentThreadListResponse
	err := c.call(ctx, "comment_threads", func(ctx context.Context) error {
		var err error
		resp, err = c.service.CommentThreads.List(commentParts).
			VideoId(videoID).
			MaxResults(CommentPageSize).
			PageToken(pageToken).
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return pagination.Page[domain.Comment]{}, &domain.FetchError{Resource: "comment_threads", Key: videoID, Err: err}
	}

	page := pagination.Page[domain.Comment]{NextPageToken: resp.NextPageToken}
	for _, item := range resp.Items {
		if cm, ok := toComment(videoID, item); ok {
			page.Items = append(page.Items, cm)
		}
	}
	return page, nil
}

func (c *Client) call(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	var err error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}

		err = c.attempt(ctx, fn)
		if err == nil {
			return nil
		}

		if !isRetryable(err) {
			return err
		}
		if attempt == c.maxAttempts {
			break
		}

		backoff := c.calculateBackoff(attempt)
		c.logger.Warn("request failed, retrying",
			"op", op,
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}

	return fmt.Errorf("after %d attempts: %w", c.maxAttempts, err)
}

func (c *Client) attempt(ctx context.Context, fn func(ctx context.Context) error) error {
	if c.timeout <= 0 {
		return fn(ctx)
	}
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return fn(callCtx)
}

func (c *Client) calculateBackoff(attempt int) time.Duration {
	backoff := c.initialBackoff
	for i := 1; i < attempt; i++ {
		backoff *= 2
	}
	if c.maxBackoff > 0 && backoff > c.maxBackoff {
		backoff = c.maxBackoff
	}
	return backoff
}

// isRetryable reports whether a failed call may succeed when repeated.
// Client errors such as disabled comments (403) or unknown ids (404) are permanent.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
			return false
		}
	}
	return true
}
