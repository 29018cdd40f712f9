package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"yt_harvester/internal/domain"
	"yt_harvester/internal/pagination"
)

// VideoAPI is the remote API the harvester reads from.
type VideoAPI interface {
	GetChannel(ctx context.Context, channelID string) (*domain.Channel, error)
	ListPlaylists(ctx context.Context, channelID, pageToken string) (pagination.Page[domain.Playlist], error)
	SearchVideos(ctx context.Context, channelID, pageToken string) (pagination.Page[domain.VideoListing], error)
	GetVideos(ctx context.Context, ids []string) ([]domain.Video, error)
	ListCommentThreads(ctx context.Context, videoID, pageToken string) (pagination.Page[domain.Comment], error)
}

type ChannelStore interface {
	Exists(ctx context.Context, id string) (bool, error)
	Insert(ctx context.Context, channel *domain.Channel) error
	// Lock serializes writers of one channel until the surrounding transaction ends.
	Lock(ctx context.Context, channelID string) error
}

type VideoStore interface {
	// ExistingIDs returns the subset of ids already stored.
	ExistingIDs(ctx context.Context, ids []string) (map[string]struct{}, error)
	Insert(ctx context.Context, video *domain.Video) error
}

type CommentStore interface {
	// ExistingIDs returns the subset of ids already stored.
	ExistingIDs(ctx context.Context, ids []string) (map[string]struct{}, error)
	Insert(ctx context.Context, comment *domain.Comment) error
}

type PlaylistStore interface {
	Exists(ctx context.Context, id string) (bool, error)
	Insert(ctx context.Context, playlist *domain.Playlist) error
}

type SyncStateStore interface {
	Get(ctx context.Context, channelID string) (*domain.SyncState, error)
	Update(ctx context.Context, state *domain.SyncState) error
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Notifier announces committed snapshots to downstream consumers.
type Notifier interface {
	PublishSynced(ctx context.Context, stats *domain.SyncStats) error
	Close() error
}

type SnapshotHarvester interface {
	HarvestChannel(ctx context.Context, channelID string) (*domain.Snapshot, error)
}

type SnapshotSyncer interface {
	Sync(ctx context.Context, snapshot *domain.Snapshot) (*domain.SyncStats, error)
}
