package service

import (
	"slices"
	"sync"

	"yt_harvester/internal/domain"
)

// Session holds harvested snapshots that have not been synced yet, keyed by channel id.
// A newer harvest of the same channel replaces the pending one.
type Session struct {
	mu      sync.Mutex
	pending map[string]*domain.Snapshot
}

func NewSession() *Session {
	return &Session{pending: make(map[string]*domain.Snapshot)}
}

func (s *Session) Put(snapshot *domain.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[snapshot.ChannelID()] = snapshot
}

func (s *Session) Get(channelID string) (*domain.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.pending[channelID]
	return snap, ok
}

// Remove drops the pending snapshot only if it is still the given one.
func (s *Session) Remove(snapshot *domain.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending[snapshot.ChannelID()] == snapshot {
		delete(s.pending, snapshot.ChannelID())
	}
}

// Pending returns the channel ids awaiting sync in sorted order.
func (s *Session) Pending() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.pending))
	for id := range s.pending {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
