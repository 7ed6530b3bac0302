// Package rest connects the sync engine to a remote note store over HTTP.
//
// Client implements core.Remote against a collection URL:
//
//	GET    {base}        fetch all
//	HEAD   {base}        ping
//	POST   {base}        create
//	PUT    {base}/{id}   update (upsert)
//	DELETE {base}/{id}   delete
//
// Server is the matching reference implementation, backed by any core.Remote
// (usually memory.Remote). It also exposes {base}/events, a WebSocket feed of
// change notifications consumed by Listen.
package rest

import (
	"time"

	"github.com/aretw0/cirrus/pkg/core"
)

// MutationHeader carries a unique id for every mutating request.
const MutationHeader = "X-Mutation-ID"

// Record is the wire shape of a note. The local-only Synced flag is absent
// on purpose.
type Record struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toRecord(n core.Note) Record {
	return Record{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

func (r Record) note() core.Note {
	return core.Note{
		ID:        r.ID,
		Title:     r.Title,
		Content:   r.Content,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
