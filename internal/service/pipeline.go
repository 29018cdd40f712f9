package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"yt_harvester/internal/domain"
)

// Pipeline threads snapshots from the harvester through a Session into the syncer.
type Pipeline struct {
	harvester SnapshotHarvester
	syncer    SnapshotSyncer
	session   *Session
	logger    *slog.Logger
}

func NewPipeline(harvester SnapshotHarvester, syncer SnapshotSyncer, session *Session, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		harvester: harvester,
		syncer:    syncer,
		session:   session,
		logger:    logger.With("component", "pipeline"),
	}
}

// Harvest fetches a snapshot and keeps it pending in the session.
// A failed harvest leaves any earlier pending snapshot in place.
func (p *Pipeline) Harvest(ctx context.Context, channelID string) (*domain.Snapshot, error) {
	snapshot, err := p.harvester.HarvestChannel(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("harvest %q: %w", channelID, err)
	}
	p.session.Put(snapshot)
	return snapshot, nil
}

// Sync merges the pending snapshot of channelID and drops it from the session on success.
func (p *Pipeline) Sync(ctx context.Context, channelID string) (*domain.SyncStats, error) {
	snapshot, ok := p.session.Get(channelID)
	if !ok {
		return nil, fmt.Errorf("%w for channel %q", domain.ErrNoPendingSnapshot, channelID)
	}

	stats, err := p.syncer.Sync(ctx, snapshot)
	if err != nil {
		return nil, err
	}
	p.session.Remove(snapshot)
	return stats, nil
}

// Run harvests and syncs each channel in turn. A failing channel does not stop the others.
func (p *Pipeline) Run(ctx context.Context, channelIDs []string) error {
	var errs []error
	for _, id := range channelIDs {
		if err := ctx.Err(); err != nil {
			return err
		}

		if _, err := p.Harvest(ctx, id); err != nil {
			p.logger.Error("harvest failed", "channel_id", id, "error", err)
			errs = append(errs, err)
			continue
		}

		if _, err := p.Sync(ctx, id); err != nil {
			p.logger.Error("sync failed", "channel_id", id, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Session exposes the pending snapshots.
func (p *Pipeline) Session() *Session {
	return p.session
}
