// Package view holds the presentation helpers shared by the CLI and any
// other front end: search filtering, timestamp formatting and the unsynced
// marker.
package view

import (
	"strings"
	"time"

	"github.com/aretw0/cirrus/pkg/core"
)

// TimeLayout renders timestamps like "Jan 2, 03:04 PM".
const TimeLayout = "Jan 2, 03:04 PM"

// UnsyncedMarker flags a note the remote has not confirmed yet.
const UnsyncedMarker = "●"

// Filter returns the notes matching term, keeping their order.
func Filter(notes []core.Note, term string) []core.Note {
	out := make([]core.Note, 0, len(notes))
	for _, n := range notes {
		if n.Matches(term) {
			out = append(out, n)
		}
	}
	return out
}

// FormatTime renders t in the local time zone.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(TimeLayout)
}

// Marker returns UnsyncedMarker for an unsynced note while connected.
// Offline every note is unsynced, so the marker would carry no information.
func Marker(n core.Note, connected bool) string {
	if n.Synced || !connected {
		return ""
	}
	return UnsyncedMarker
}

// Empty is the message shown when a listing has no rows.
func Empty(term string) string {
	if strings.TrimSpace(term) != "" {
		return "No notes found"
	}
	return "No notes yet"
}

// Excerpt returns the first lines of content, at most width runes in total.
func Excerpt(content string, lines, width int) string {
	parts := strings.Split(strings.TrimSpace(content), "\n")
	if lines > 0 && len(parts) > lines {
		parts = parts[:lines]
	}
	s := strings.Join(parts, " ")
	if r := []rune(s); width > 0 && len(r) > width {
		if width <= 1 {
			return string(r[:width])
		}
		return string(r[:width-1]) + "…"
	}
	return s
}
