package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"yt_harvester/internal/config"
	"yt_harvester/internal/domain"
)

// SyncService merges snapshots into the store. Rows are inserted only when their
// primary key is absent; existing rows are never updated.
type SyncService struct {
	channels  ChannelStore
	videos    VideoStore
	comments  CommentStore
	playlists PlaylistStore
	syncState SyncStateStore
	txManager TransactionManager
	notifier  Notifier
	logger    *slog.Logger
	config    config.SyncConfig

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

func NewSyncService(
	channels ChannelStore,
	videos VideoStore,
	comments CommentStore,
	playlists PlaylistStore,
	syncState SyncStateStore,
	txManager TransactionManager,
	notifier Notifier,
	logger *slog.Logger,
	cfg config.SyncConfig,
) *SyncService {
	return &SyncService{
		channels:  channels,
		videos:    videos,
		comments:  comments,
		playlists: playlists,
		syncState: syncState,
		txManager: txManager,
		notifier:  notifier,
		logger:    logger.With("component", "sync"),
		config:    cfg,
		locks:     make(map[string]*sync.Mutex),
	}
}

// Sync writes the snapshot in one transaction. On any store error nothing is
// committed and a *domain.SyncError carrying the cause is returned.
func (s *SyncService) Sync(ctx context.Context, snapshot *domain.Snapshot) (*domain.SyncStats, error) {
	channelID := snapshot.ChannelID()
	unlock := s.lockChannel(channelID)
	defer unlock()

	startTime := time.Now()
	logger := s.logger.With("channel_id", channelID)
	logger.Info("starting sync",
		"videos", len(snapshot.Videos),
		"comments", len(snapshot.Comments),
		"playlists", len(snapshot.Playlists),
	)

	var stats *domain.SyncStats
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		stats, err = s.merge(txCtx, snapshot)
		return err
	})
	if err != nil {
		logger.Error("sync rolled back", "error", err)
		return nil, &domain.SyncError{ChannelID: channelID, Err: err}
	}

	stats.Duration = time.Since(startTime)

	logger.Info("sync committed",
		"channel_inserted", stats.ChannelInserted,
		"videos_inserted", stats.VideosInserted,
		"videos_skipped", stats.VideosSkipped,
		"comments_inserted", stats.CommentsInserted,
		"comments_skipped", stats.CommentsSkipped,
		"playlists_inserted", stats.PlaylistsInserted,
		"duration", stats.Duration,
	)

	if s.notifier != nil {
		if err := s.notifier.PublishSynced(ctx, stats); err != nil {
			logger.Warn("failed to publish sync event", "error", err)
		}
	}

	return stats, nil
}

func (s *SyncService) merge(ctx context.Context, snapshot *domain.Snapshot) (*domain.SyncStats, error) {
	channel := snapshot.Channel
	stats := &domain.SyncStats{ChannelID: channel.ID}

	if err := s.channels.Lock(ctx, channel.ID); err != nil {
		return nil, fmt.Errorf("lock channel: %w", err)
	}

	channelInserted, err := insertIfAbsent(ctx, s.channels.Exists, s.channels.Insert, channel.ID, &channel)
	if err != nil {
		return nil, fmt.Errorf("channel %q: %w", channel.ID, err)
	}
	stats.ChannelInserted = channelInserted

	if s.config.PersistPlaylists {
		for i := range snapshot.Playlists {
			p := &snapshot.Playlists[i]
			inserted, err := insertIfAbsent(ctx, s.playlists.Exists, s.playlists.Insert, p.ID, p)
			if err != nil {
				return nil, fmt.Errorf("playlist %q: %w", p.ID, err)
			}
			count(inserted, &stats.PlaylistsInserted, &stats.PlaylistsSkipped)
		}
	}

	inserted, skipped, err := insertMissing(ctx, snapshot.Videos, videoID, s.videos.ExistingIDs, s.videos.Insert, "video")
	if err != nil {
		return nil, err
	}
	stats.VideosInserted, stats.VideosSkipped = inserted, skipped

	inserted, skipped, err = insertMissing(ctx, snapshot.Comments, commentID, s.comments.ExistingIDs, s.comments.Insert, "comment")
	if err != nil {
		return nil, err
	}
	stats.CommentsInserted, stats.CommentsSkipped = inserted, skipped

	if err := s.updateSyncState(ctx, stats); err != nil {
		return nil, fmt.Errorf("update sync state: %w", err)
	}

	return stats, nil
}

func insertIfAbsent[T any](
	ctx context.Context,
	exists func(context.Context, string) (bool, error),
	insert func(context.Context, *T) error,
	id string,
	row *T,
) (bool, error) {
	found, err := exists(ctx, id)
	if err != nil {
		return false, fmt.Errorf("check existence: %w", err)
	}
	if found {
		return false, nil
	}
	if err := insert(ctx, row); err != nil {
		return false, fmt.Errorf("insert: %w", err)
	}
	return true, nil
}

// insertMissing looks up which rows already exist with one query and inserts the rest
// in snapshot order. Ids repeated within rows are inserted once.
func insertMissing[T any](
	ctx context.Context,
	rows []T,
	id func(*T) string,
	existing func(context.Context, []string) (map[string]struct{}, error),
	insert func(context.Context, *T) error,
	kind string,
) (inserted, skipped int, err error) {
	if len(rows) == 0 {
		return 0, 0, nil
	}

	ids := make([]string, len(rows))
	for i := range rows {
		ids[i] = id(&rows[i])
	}

	present, err := existing(ctx, ids)
	if err != nil {
		return 0, 0, fmt.Errorf("%ss: check existence: %w", kind, err)
	}
	if present == nil {
		present = make(map[string]struct{})
	}

	for i := range rows {
		row := &rows[i]
		if _, ok := present[ids[i]]; ok {
			skipped++
			continue
		}
		if err := insert(ctx, row); err != nil {
			return 0, 0, fmt.Errorf("%s %q: insert: %w", kind, ids[i], err)
		}
		present[ids[i]] = struct{}{}
		inserted++
	}
	return inserted, skipped, nil
}

func videoID(v *domain.Video) string     { return v.ID }
func commentID(c *domain.Comment) string { return c.ID }

func count(inserted bool, insertedCount, skippedCount *int) {
	if inserted {
		*insertedCount++
	} else {
		*skippedCount++
	}
}

func (s *SyncService) updateSyncState(ctx context.Context, stats *domain.SyncStats) error {
	state, err := s.syncState.Get(ctx, stats.ChannelID)
	if err != nil {
		return err
	}

	state.ChannelID = stats.ChannelID
	state.LastSyncedAt = time.Now().UTC()
	state.SyncCount++
	state.TotalInserted += int64(stats.Inserted())

	return s.syncState.Update(ctx, state)
}

// lockChannel keeps two snapshots of the same channel from merging concurrently in this process.
// Entries are never removed; the map is bounded by the channels this process syncs.
func (s *SyncService) lockChannel(channelID string) func() {
	s.locksMu.Lock()
	mu, ok := s.locks[channelID]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[channelID] = mu
	}
	s.locksMu.Unlock()

	mu.Lock()
	return mu.Unlock
}
