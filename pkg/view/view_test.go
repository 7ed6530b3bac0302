package view_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/cirrus/pkg/core"
	"github.com/aretw0/cirrus/pkg/view"
)

func TestFilter(t *testing.T) {
	notes := []core.Note{
		{ID: "1", Title: "Groceries", Content: "Milk, eggs"},
		{ID: "2", Title: "Ideas", Content: "Build a SYNC engine"},
		{ID: "3", Title: "Sync notes", Content: ""},
	}

	tests := []struct {
		name string
		term string
		want []string
	}{
		{"empty term keeps all", "", []string{"1", "2", "3"}},
		{"blank term keeps all", "   ", []string{"1", "2", "3"}},
		{"title match", "grocer", []string{"1"}},
		{"case insensitive on content and title", "sync", []string{"2", "3"}},
		{"no match", "zzz", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := []string{}
			for _, n := range view.Filter(notes, tt.term) {
				got = append(got, n.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatTime(t *testing.T) {
	at := time.Date(2024, time.January, 2, 15, 4, 0, 0, time.Local)
	assert.Equal(t, "Jan 2, 03:04 PM", view.FormatTime(at))
	assert.Equal(t, "", view.FormatTime(time.Time{}))
}

func TestMarker(t *testing.T) {
	pending := core.Note{ID: "p"}
	synced := core.Note{ID: "s", Synced: true}

	assert.Equal(t, view.UnsyncedMarker, view.Marker(pending, true))
	assert.Empty(t, view.Marker(pending, false))
	assert.Empty(t, view.Marker(synced, true))
}

func TestEmpty(t *testing.T) {
	assert.Equal(t, "No notes yet", view.Empty(""))
	assert.Equal(t, "No notes found", view.Empty("x"))
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "one two", view.Excerpt("one\ntwo\nthree", 2, 0))
	assert.Equal(t, "abcd…", view.Excerpt("abcdefgh", 0, 5))
	assert.Equal(t, "short", view.Excerpt("short", 2, 40))
}
