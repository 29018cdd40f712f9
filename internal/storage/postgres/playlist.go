package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"yt_harvester/internal/domain"
)

type PlaylistStore struct {
	db *sqlx.DB
}

func NewPlaylistStore(db *sqlx.DB) *PlaylistStore {
	return &PlaylistStore{db: db}
}

func (s *PlaylistStore) Exists(ctx context.Context, id string) (bool, error) {
	return rowExists(ctx, GetExecutor(ctx, s.db), "playlists", id)
}

func (s *PlaylistStore) Insert(ctx context.Context, playlist *domain.Playlist) error {
	publishedAt, err := wireTime(playlist.PublishedAt)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO playlists (id, channel_id, title, description, published_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err = GetExecutor(ctx, s.db).ExecContext(ctx, query,
		playlist.ID,
		playlist.ChannelID,
		playlist.Title,
		playlist.Description,
		publishedAt,
	)
	return err
}
