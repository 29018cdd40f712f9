package domain

import "time"

// Snapshot is everything one harvest run captured for a single channel.
// It is not modified after the harvester returns it.
type Snapshot struct {
	Channel    Channel
	Videos     []Video
	Comments   []Comment
	Playlists  []Playlist
	CapturedAt time.Time
}

// ChannelID returns the id of the channel the snapshot belongs to.
func (s *Snapshot) ChannelID() string {
	return s.Channel.ID
}
