package domain

import "time"

// SyncStats holds statistics about a sync operation.
type SyncStats struct {
	ChannelID         string        `json:"channel_id"`
	ChannelInserted   bool          `json:"channel_inserted"`
	VideosInserted    int           `json:"videos_inserted"`
	VideosSkipped     int           `json:"videos_skipped"`
	CommentsInserted  int           `json:"comments_inserted"`
	CommentsSkipped   int           `json:"comments_skipped"`
	PlaylistsInserted int           `json:"playlists_inserted"`
	PlaylistsSkipped  int           `json:"playlists_skipped"`
	Duration          time.Duration `json:"duration"`
}

// Table is a tabular query result with ordered columns and rows.
type Table struct {
	Columns []string
	Rows    [][]any
}

// ColumnIndex returns the position of name in Columns or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// SyncState is the per-channel bookkeeping row written with every committed sync.
type SyncState struct {
	ChannelID     string    `db:"channel_id"`
	LastSyncedAt  time.Time `db:"last_synced_at"`
	SyncCount     int64     `db:"sync_count"`
	TotalInserted int64     `db:"total_inserted"`
}

// Inserted returns the number of rows the sync added across all tables.
func (s *SyncStats) Inserted() int {
	n := s.VideosInserted + s.CommentsInserted + s.PlaylistsInserted
	if s.ChannelInserted {
		n++
	}
	return n
}
