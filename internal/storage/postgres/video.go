package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"yt_harvester/internal/domain"
	"yt_harvester/internal/duration"
)

type VideoStore struct {
	db *sqlx.DB
}

func NewVideoStore(db *sqlx.DB) *VideoStore {
	return &VideoStore{db: db}
}

func (s *VideoStore) ExistingIDs(ctx context.Context, ids []string) (map[string]struct{}, error) {
	return existingIDs(ctx, GetExecutor(ctx, s.db), "videos", ids)
}

// Insert stores the raw duration next to its length in seconds.
func (s *VideoStore) Insert(ctx context.Context, video *domain.Video) error {
	publishedAt, err := wireTime(video.PublishedAt)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO videos (
			id, channel_id, title, description, published_at,
			view_count, like_count, dislike_count, favorite_count, comment_count,
			duration, duration_seconds, thumbnail, caption_status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		)`

	_, err = GetExecutor(ctx, s.db).ExecContext(ctx, query,
		video.ID,
		video.ChannelID,
		video.Title,
		video.Description,
		publishedAt,
		int64(video.ViewCount),
		int64(video.LikeCount),
		int64(video.DislikeCount),
		int64(video.FavoriteCount),
		int64(video.CommentCount),
		video.Duration,
		duration.Parse(video.Duration),
		video.Thumbnail,
		video.CaptionStatus,
	)
	return err
}
