package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"yt_harvester/internal/domain"
)

type ChannelStore struct {
	db *sqlx.DB
}

func NewChannelStore(db *sqlx.DB) *ChannelStore {
	return &ChannelStore{db: db}
}

func (s *ChannelStore) Exists(ctx context.Context, id string) (bool, error) {
	return rowExists(ctx, GetExecutor(ctx, s.db), "channels", id)
}

func (s *ChannelStore) Insert(ctx context.Context, channel *domain.Channel) error {
	query := `
		INSERT INTO channels (id, name, subscription_count, view_count, description)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := GetExecutor(ctx, s.db).ExecContext(ctx, query,
		channel.ID,
		channel.Name,
		int64(channel.SubscriptionCount),
		int64(channel.ViewCount),
		channel.Description,
	)
	return err
}

// Lock takes a transaction-scoped advisory lock on the channel id. Outside a
// transaction the lock is released as soon as the statement finishes.
func (s *ChannelStore) Lock(ctx context.Context, channelID string) error {
	_, err := GetExecutor(ctx, s.db).ExecContext(ctx,
		`SELECT pg_advisory_xact_lock(hashtext($1))`,
		channelID,
	)
	return err
}
