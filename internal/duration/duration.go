// Package duration converts ISO-8601 video durations to seconds and seconds to clock strings.
package duration

import (
	"fmt"
	"strings"

	finch "github.com/BrianHicks/finch/duration"
)

const timePrefix = "PT"

// Parse returns the total seconds of a duration such as "PT1H2M5S".
// Any component may be absent. Input that is not of that form yields 0.
func Parse(raw string) int64 {
	if !strings.HasPrefix(raw, timePrefix) {
		return 0
	}

	d, err := finch.FromString(raw)
	if err != nil {
		return 0
	}

	if d.Hours < 0 || d.Minutes < 0 || d.Seconds < 0 {
		return 0
	}
	// summed in seconds: time.Duration overflows past ~2.5M hours
	return int64(d.Hours)*3600 + int64(d.Minutes)*60 + int64(d.Seconds)
}

// FormatSeconds renders seconds as HH:MM:SS. Hours are not wrapped at 24.
func FormatSeconds(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
}
