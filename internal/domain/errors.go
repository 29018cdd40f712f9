package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrChannelNotFound is returned when a channel id does not resolve to exactly one profile.
	ErrChannelNotFound = errors.New("channel not found")
	// ErrTooManyPages is returned when a cursor sequence does not end within the page limit.
	ErrTooManyPages = errors.New("page limit exceeded")
	// ErrNoPendingSnapshot is returned when syncing a channel that has no harvested snapshot.
	ErrNoPendingSnapshot = errors.New("no pending snapshot")
)

// FetchError wraps a failed request against the remote API.
type FetchError struct {
	Resource string
	Key      string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s %q: %v", e.Resource, e.Key, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// SyncError wraps a store failure that rolled back a snapshot merge.
type SyncError struct {
	ChannelID string
	Err       error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync channel %q: %v", e.ChannelID, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}
