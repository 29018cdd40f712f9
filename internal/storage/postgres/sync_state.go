package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"yt_harvester/internal/domain"
)

type SyncStateStore struct {
	db *sqlx.DB
}

func NewSyncStateStore(db *sqlx.DB) *SyncStateStore {
	return &SyncStateStore{db: db}
}

func (s *SyncStateStore) Get(ctx context.Context, channelID string) (*domain.SyncState, error) {
	var state domain.SyncState
	query := `
		SELECT channel_id, last_synced_at, sync_count, total_inserted
		FROM sync_state
		WHERE channel_id = $1`

	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &state, query, channelID)
	if errors.Is(err, sql.ErrNoRows) {
		// first sync of this channel
		return &domain.SyncState{ChannelID: channelID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *SyncStateStore) Update(ctx context.Context, state *domain.SyncState) error {
	query := `
		INSERT INTO sync_state (channel_id, last_synced_at, sync_count, total_inserted)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (channel_id) DO UPDATE SET
			last_synced_at = EXCLUDED.last_synced_at,
			sync_count = EXCLUDED.sync_count,
			total_inserted = EXCLUDED.total_inserted`

	_, err := GetExecutor(ctx, s.db).ExecContext(ctx, query,
		state.ChannelID,
		state.LastSyncedAt,
		state.SyncCount,
		state.TotalInserted,
	)
	return err
}
